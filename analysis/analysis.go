// Package analysis derives secondary estimates from one direction's raw
// finite-difference results. Analyses are independent and composable: each
// consumes the raw estimates and emits zero or more derived ones, never
// mutating its input.
//
// Package analysis は1方向分の生の有限差分結果から二次的な推定値を
// 導出します。各解析は独立して合成可能であり、入力を変更する事なく
// 0個以上の導出推定値を生成します。
package analysis

import (
	"github.com/sw965/canary/estimate"
	"github.com/sw965/canary/method"
)

// Func is one analysis. Implementations must be deterministic for
// deterministic input.
type Func func(computed []estimate.Estimate) ([]estimate.Estimate, error)

const ApproximateCentralSource = "approximate_central"

// ApproximateCentral synthesizes a central-difference estimate per step
// size: wherever both a forward and a backward estimate exist at the same
// size, it emits their arithmetic mean. Sizes missing either side emit
// nothing. With multiple estimates per side under one size, the first of
// each is paired.
func ApproximateCentral(computed []estimate.Estimate) ([]estimate.Estimate, error) {
	groups := estimate.GroupBySize(computed)

	var derived []estimate.Estimate
	for _, h := range estimate.SizesInOrder(computed) {
		var forward, backward float64
		var hasForward, hasBackward bool
		for _, e := range groups[h] {
			switch method.Kind(e.Source) {
			case method.Forward:
				if !hasForward {
					forward = e.Value
					hasForward = true
				}
			case method.Backward:
				if !hasBackward {
					backward = e.Value
					hasBackward = true
				}
			}
		}

		// 片側しか無い刻み幅からは何も導出しない
		if !hasForward || !hasBackward {
			continue
		}

		derived = append(derived, estimate.Estimate{
			Source: ApproximateCentralSource,
			Value:  (forward + backward) / 2.0,
			Size:   h,
		})
	}
	return derived, nil
}
