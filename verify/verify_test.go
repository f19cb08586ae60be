package verify_test

import (
	"math"
	"testing"

	"github.com/sw965/canary/estimate"
	"github.com/sw965/canary/verify"
)

func TestConsistency(t *testing.T) {
	tests := []struct {
		name      string
		rtol      float64
		atol      float64
		pooled    []estimate.Estimate
		wantOK    bool
		wantValue float64
	}{
		{
			name: "正常_単一の推定値は自明に整合",
			rtol: 1e-2, atol: 1e-15,
			pooled: []estimate.Estimate{
				{Source: "forward", Value: 42.0, Size: 1e-5},
			},
			wantOK:    true,
			wantValue: 42.0,
		},
		{
			name: "正常_1グループ内で整合_平均を受理",
			rtol: 1e-2, atol: 1e-15,
			pooled: []estimate.Estimate{
				{Source: "forward", Value: 400.000033, Size: 1e-5},
				{Source: "backward", Value: 399.993990, Size: 1e-5},
			},
			wantOK:    true,
			wantValue: 399.9970115,
		},
		{
			name: "正常_複数グループの代表値が整合_代表値の平均を受理",
			rtol: 1e-2, atol: 1e-15,
			pooled: []estimate.Estimate{
				{Source: "forward", Value: 400.1, Size: 1e-3},
				{Source: "backward", Value: 399.9, Size: 1e-3},
				{Source: "forward", Value: 400.3, Size: 1e-5},
				{Source: "backward", Value: 399.7, Size: 1e-5},
			},
			wantOK:    true,
			wantValue: 400.0,
		},
		{
			name: "正常_不整合なグループは受理プールに寄与しない",
			rtol: 1e-2, atol: 1e-15,
			pooled: []estimate.Estimate{
				// 真の微分値0付近: 相対誤差が巨大で不整合
				{Source: "forward", Value: 1e-3, Size: 1e-5},
				{Source: "backward", Value: -1e-3, Size: 1e-5},
				// こちらは厳密に一致
				{Source: "forward", Value: 0.0, Size: 1e-10},
				{Source: "backward", Value: 0.0, Size: 1e-10},
			},
			wantOK:    true,
			wantValue: 0.0,
		},
		//異常系(エラーではなく、不成功として報告される)
		{
			name: "不成功_グループ代表値同士が不整合",
			rtol: 1e-2, atol: 1e-15,
			pooled: []estimate.Estimate{
				{Source: "forward", Value: 100.0, Size: 1e-3},
				{Source: "forward", Value: 200.0, Size: 1e-6},
			},
			wantOK: false,
		},
		{
			name: "不成功_全グループが内部で不整合",
			rtol: 1e-2, atol: 1e-15,
			pooled: []estimate.Estimate{
				{Source: "forward", Value: 1.0, Size: 1e-3},
				{Source: "backward", Value: -1.0, Size: 1e-3},
				{Source: "forward", Value: 2.0, Size: 1e-6},
				{Source: "backward", Value: -2.0, Size: 1e-6},
			},
			wantOK: false,
		},
		{
			name: "不成功_推定値なし",
			rtol: 1e-2, atol: 1e-15,
			pooled: nil,
			wantOK: false,
		},
		{
			name: "正常_atolで微小な絶対差を許容",
			rtol: 0.0, atol: 1e-6,
			pooled: []estimate.Estimate{
				{Source: "forward", Value: 1e-8, Size: 1e-5},
				{Source: "backward", Value: -1e-8, Size: 1e-5},
			},
			wantOK:    true,
			wantValue: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluator := verify.Consistency(tt.rtol, tt.atol)
			value, ok := evaluator(tt.pooled)
			if ok != tt.wantOK {
				t.Fatalf("want ok=%v, got ok=%v (value=%v)", tt.wantOK, ok, value)
			}
			if !tt.wantOK {
				// 不成功時は推定値を一切返さない
				if !math.IsNaN(value) {
					t.Fatalf("want NaN, got %v", value)
				}
				return
			}
			if math.Abs(value-tt.wantValue) > 1e-9 {
				t.Fatalf("want value %v, got %v", tt.wantValue, value)
			}
		})
	}
}

// 許容誤差は atol + rtol*max(|a|, |b|) の全ペア比較。境界上は整合と扱う。
func TestConsistencyToleranceBoundary(t *testing.T) {
	rtol := 0.0
	atol := 1.0
	evaluator := verify.Consistency(rtol, atol)

	value, ok := evaluator([]estimate.Estimate{
		{Source: "forward", Value: 10.0, Size: 1e-3},
		{Source: "backward", Value: 11.0, Size: 1e-3},
	})
	if !ok {
		t.Fatal("境界ちょうどの差は整合と判定されるべき")
	}
	if math.Abs(value-10.5) > 1e-12 {
		t.Fatalf("want 10.5, got %v", value)
	}

	_, ok = evaluator([]estimate.Estimate{
		{Source: "forward", Value: 10.0, Size: 1e-3},
		{Source: "backward", Value: 11.000001, Size: 1e-3},
	})
	if ok {
		t.Fatal("境界を超えた差は不整合と判定されるべき")
	}
}
