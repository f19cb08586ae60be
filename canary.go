// Package canary approximates the gradient of a scalar function with
// finite differences and decides whether the approximation is trustworthy
// by cross-checking independent estimates (stencils x step sizes x derived
// analyses) against each other.
//
// Package canary はスカラー関数の勾配を有限差分で近似し、独立した推定値
// (ステンシル×刻み幅×導出解析)を相互に照合する事で、その近似が信頼
// できるかを判定します。真の微分値は一切参照しません。
package canary

import (
	"math"

	"github.com/sw965/canary/analysis"
	"github.com/sw965/canary/diff"
	"github.com/sw965/canary/estimate"
	"github.com/sw965/canary/method"
	"github.com/sw965/canary/vector"
	"github.com/sw965/canary/verify"
)

// DirectionalDerivative is the per-direction aggregate. Computed and
// Derived hold the full provenance in generation order and are frozen once
// the request returns. Value is NaN when OK is false.
type DirectionalDerivative struct {
	Direction vector.Direction
	OK        bool
	Value     float64
	Computed  []estimate.Estimate
	Derived   []estimate.Estimate
}

// Derivative is the request result. OK is the AND over per-direction
// success flags; a failed direction is a normal outcome, not an error.
type Derivative struct {
	OK           bool
	Directionals []DirectionalDerivative
}

// Value returns the accepted value per direction, in direction order.
// Failed directions surface as NaN.
func (d Derivative) Value() vector.Vector {
	values := make(vector.Vector, len(d.Directionals))
	for i, dd := range d.Directionals {
		values[i] = dd.Value
	}
	return values
}

// Engine composes the derivative pipeline. All fields are optional:
// Registry nil means the standard forward/backward/central registry,
// Evaluator nil means Consistency with default tolerances, Analyses run in
// registration order, and Workers > 1 evaluates directions in parallel
// (the target function must then be safe to call concurrently).
type Engine struct {
	Registry  method.Registry
	Analyses  []analysis.Func
	Evaluator verify.Evaluator
	Workers   int
}

// Differentiate evaluates every (direction, size, method) combination,
// derives secondary estimates, and accepts one value per direction.
// dirs nil means the standard basis of the point's dimension.
//
// Errors abort the whole request: configuration errors before the first
// function call, evaluation errors as they occur. Per-direction
// inconsistency does not error; check Derivative.OK and the per-direction
// flags.
func (e Engine) Differentiate(f method.Func, x vector.Vector, sizes []float64, kinds []method.Kind, dirs []vector.Direction) (Derivative, error) {
	if dirs == nil {
		dirs = vector.StandardBasis(len(x))
	}

	runner := diff.Engine{
		Registry: e.Registry,
		Workers:  e.Workers,
	}
	computed, err := runner.Run(f, x, dirs, sizes, kinds)
	if err != nil {
		return Derivative{}, err
	}

	evaluator := e.Evaluator
	if evaluator == nil {
		evaluator = verify.Consistency(verify.DefaultRtol, verify.DefaultAtol)
	}

	derivative := Derivative{
		OK:           true,
		Directionals: make([]DirectionalDerivative, len(dirs)),
	}
	for i, dir := range dirs {
		raw := computed[i]

		var derived []estimate.Estimate
		for _, a := range e.Analyses {
			ds, err := a(raw)
			if err != nil {
				return Derivative{}, err
			}
			derived = append(derived, ds...)
		}

		pooled := make([]estimate.Estimate, 0, len(raw)+len(derived))
		pooled = append(pooled, raw...)
		pooled = append(pooled, derived...)

		value, ok := evaluator(pooled)
		if !ok {
			value = math.NaN()
		}

		derivative.Directionals[i] = DirectionalDerivative{
			Direction: dir,
			OK:        ok,
			Value:     value,
			Computed:  raw,
			Derived:   derived,
		}
		derivative.OK = derivative.OK && ok
	}
	return derivative, nil
}

// Gradient is the one-shot form: forward and backward stencils along the
// standard basis, the approximate-central analysis, and the default
// consistency tolerances.
func Gradient(f method.Func, x vector.Vector, sizes []float64) (Derivative, error) {
	e := Engine{
		Analyses: []analysis.Func{analysis.ApproximateCentral},
	}
	kinds := []method.Kind{method.Forward, method.Backward}
	return e.Differentiate(f, x, sizes, kinds, nil)
}
