// Package method enumerates the supported finite-difference kinds and maps
// each to its stencil formula. The registry is read-only configuration:
// constructed once, shared, and consulted before any function evaluation.
//
// Package method は対応する有限差分の種類を列挙し、それぞれをステンシル
// (差分公式)へ対応付けます。Registryは読み取り専用の設定であり、一度
// 構築して共有し、関数評価の前に参照されます。
package method

import (
	"errors"
	"fmt"

	"github.com/sw965/canary/vector"
)

// Func is the target function being differentiated. It must not retain or
// mutate its argument. When the orchestrator runs with multiple workers,
// it must also be safe to call concurrently on independent inputs.
type Func func(vector.Vector) (float64, error)

// OriginFunc returns f(x) at the unperturbed evaluation point. The value is
// size/direction-invariant for one-sided stencils, so the computation layer
// caches it once per request.
type OriginFunc func() (float64, error)

// Stencil evaluates one finite-difference estimate of the directional
// derivative of f at x along d with step size h.
type Stencil func(f Func, origin OriginFunc, x, d vector.Vector, h float64) (float64, error)

type Kind string

const (
	Forward  Kind = "forward"
	Backward Kind = "backward"
	Central  Kind = "central"
)

var (
	ErrUnknownKind   = errors.New("Methodエラー: 未登録のKindです")
	ErrDuplicateKind = errors.New("Methodエラー: Kindが既に登録されています")
	ErrNilStencil    = errors.New("Methodエラー: Stencilがnilです")
)

type Registry map[Kind]Stencil

// NewStandardRegistry returns the registry holding the built-in kinds.
func NewStandardRegistry() Registry {
	return Registry{
		Forward:  ForwardStencil,
		Backward: BackwardStencil,
		Central:  CentralStencil,
	}
}

// Register adds a new kind. Existing kinds cannot be overwritten, so a
// shared registry never changes meaning under a caller.
func (r Registry) Register(kind Kind, stencil Stencil) error {
	if stencil == nil {
		return fmt.Errorf("%w: %s", ErrNilStencil, kind)
	}
	if _, ok := r[kind]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	r[kind] = stencil
	return nil
}

func (r Registry) Stencil(kind Kind) (Stencil, error) {
	stencil, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return stencil, nil
}

// Validate confirms every requested kind is registered.
func (r Registry) Validate(kinds []Kind) error {
	for _, kind := range kinds {
		if _, err := r.Stencil(kind); err != nil {
			return err
		}
	}
	return nil
}

// ForwardStencil is (f(x+h*d) - f(x)) / h.
func ForwardStencil(f Func, origin OriginFunc, x, d vector.Vector, h float64) (float64, error) {
	y0, err := origin()
	if err != nil {
		return 0.0, err
	}

	xh, err := x.AddScaled(h, d)
	if err != nil {
		return 0.0, err
	}
	yh, err := f(xh)
	if err != nil {
		return 0.0, err
	}
	return (yh - y0) / h, nil
}

// BackwardStencil is (f(x) - f(x-h*d)) / h.
func BackwardStencil(f Func, origin OriginFunc, x, d vector.Vector, h float64) (float64, error) {
	y0, err := origin()
	if err != nil {
		return 0.0, err
	}

	xh, err := x.AddScaled(-h, d)
	if err != nil {
		return 0.0, err
	}
	yh, err := f(xh)
	if err != nil {
		return 0.0, err
	}
	return (y0 - yh) / h, nil
}

// CentralStencil is (f(x+h*d) - f(x-h*d)) / (2*h). It never needs f(x).
func CentralStencil(f Func, origin OriginFunc, x, d vector.Vector, h float64) (float64, error) {
	xPlus, err := x.AddScaled(h, d)
	if err != nil {
		return 0.0, err
	}
	yPlus, err := f(xPlus)
	if err != nil {
		return 0.0, err
	}

	xMinus, err := x.AddScaled(-h, d)
	if err != nil {
		return 0.0, err
	}
	yMinus, err := f(xMinus)
	if err != nil {
		return 0.0, err
	}
	return (yPlus - yMinus) / (2.0 * h), nil
}
