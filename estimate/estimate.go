// Package estimate defines the single record shape shared by raw
// finite-difference computations and derived analyses, so that both can be
// pooled uniformly by a success evaluator.
//
// Package estimate は生の有限差分計算と導出された解析結果が共有する
// レコード型を定義します。両者が同じ形を持つ事で、成功判定器は区別なく
// プールして扱えます。
package estimate

// Estimate is one directional-derivative estimate. Source is the method
// kind for raw computations or the analysis id for derived ones. Size is
// the originating step size and the default grouping key.
type Estimate struct {
	Source string
	Value  float64
	Size   float64
}

// SizesInOrder returns the distinct sizes in first-appearance order.
// 出現順を保つ事で、同じ入力から常に同じ順序の結果が得られる。
func SizesInOrder(es []Estimate) []float64 {
	seen := map[float64]bool{}
	var sizes []float64
	for _, e := range es {
		if seen[e.Size] {
			continue
		}
		seen[e.Size] = true
		sizes = append(sizes, e.Size)
	}
	return sizes
}

func GroupBySize(es []Estimate) map[float64][]Estimate {
	groups := map[float64][]Estimate{}
	for _, e := range es {
		groups[e.Size] = append(groups[e.Size], e)
	}
	return groups
}

func Values(es []Estimate) []float64 {
	vs := make([]float64, len(es))
	for i, e := range es {
		vs[i] = e.Value
	}
	return vs
}
