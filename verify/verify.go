// Package verify decides whether one direction's pooled estimates agree
// well enough to accept a derivative value. Raw computations and derived
// analyses cross-validate each other here, without ever consulting a
// ground-truth derivative.
//
// Package verify は1方向分のプールされた推定値が、微分値として受理できる
// 程度に一致しているかを判定します。真の微分値を参照する事なく、生の計算
// 結果と導出された解析結果が互いに検証し合います。
package verify

import (
	"math"

	"github.com/sw965/canary/estimate"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultRtol = 1e-2
	DefaultAtol = 1e-15
)

// Evaluator consumes all raw and derived estimates for one direction and
// returns the accepted value. ok=false is a normal, reportable outcome
// (the value is then NaN), never an error.
type Evaluator func(pooled []estimate.Estimate) (value float64, ok bool)

// Consistency builds the reference evaluator: tolerance-based equivalence
// classes keyed by step size.
//
// Estimates are partitioned by size. A group is internally consistent when
// every pair (a, b) satisfies |a-b| <= atol + rtol*max(|a|, |b|); a
// singleton group is trivially consistent. Each consistent group
// contributes its arithmetic mean as a representative; an inconsistent
// group contributes nothing. The direction succeeds when at least one
// representative exists and all representatives are pairwise consistent
// under the same tolerance, in which case the accepted value is the mean
// of the representatives. Known-inconsistent representatives are never
// averaged into a best guess.
func Consistency(rtol, atol float64) Evaluator {
	within := func(a, b float64) bool {
		return math.Abs(a-b) <= atol+rtol*math.Max(math.Abs(a), math.Abs(b))
	}

	// 全ペア比較。基準要素を固定するより対称性が保たれる。
	allPairs := func(values []float64) bool {
		for i, a := range values {
			for _, b := range values[i+1:] {
				if !within(a, b) {
					return false
				}
			}
		}
		return true
	}

	return func(pooled []estimate.Estimate) (float64, bool) {
		groups := estimate.GroupBySize(pooled)

		var representatives []float64
		for _, h := range estimate.SizesInOrder(pooled) {
			values := estimate.Values(groups[h])
			if !allPairs(values) {
				continue
			}
			representatives = append(representatives, stat.Mean(values, nil))
		}

		if len(representatives) == 0 || !allPairs(representatives) {
			return math.NaN(), false
		}
		return stat.Mean(representatives, nil), true
	}
}
