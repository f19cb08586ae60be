// Package diff evaluates finite-difference estimates. Computer produces one
// estimate per (direction, size, method) with the origin value f(x) cached
// for the whole request; Engine drives the full Cartesian expansion,
// validating the request before the first function call and aborting on the
// first evaluation failure.
//
// Package diff は有限差分の推定値を評価します。Computerは(方向, 刻み幅,
// Method)毎に1つの推定値を生成し、原点値 f(x) はリクエスト全体で
// キャッシュされます。Engineは直積展開全体を駆動し、最初の関数評価の前に
// リクエストを検証し、評価に失敗した時点で中断します。
package diff

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sw965/canary/estimate"
	"github.com/sw965/canary/method"
	"github.com/sw965/canary/vector"
	"github.com/sw965/omw/parallel"
	"github.com/sw965/omw/slicesx"
)

var (
	// ErrConfiguration covers every malformed-request failure. These are
	// raised eagerly, before any target-function evaluation.
	ErrConfiguration = errors.New("設定エラー")
	// ErrEvaluation covers target-function failures: the function returned
	// an error, or a NaN/Inf value, at a required evaluation point.
	ErrEvaluation = errors.New("評価エラー: 対象関数の評価に失敗しました")

	ErrNilFunc                = fmt.Errorf("%w: 対象関数がnilです", ErrConfiguration)
	ErrEmptyPoint             = fmt.Errorf("%w: 評価点の要素数が0です", ErrConfiguration)
	ErrNonFinitePoint         = fmt.Errorf("%w: 評価点にNaN/Infが含まれています", ErrConfiguration)
	ErrEmptySizes             = fmt.Errorf("%w: 刻み幅が空です", ErrConfiguration)
	ErrNonPositiveSize        = fmt.Errorf("%w: 刻み幅は正の実数でなければなりません", ErrConfiguration)
	ErrEmptyKinds             = fmt.Errorf("%w: Methodが空です", ErrConfiguration)
	ErrEmptyDirections        = fmt.Errorf("%w: Directionが空です", ErrConfiguration)
	ErrDuplicateDirectionName = fmt.Errorf("%w: Direction名が重複しています", ErrConfiguration)
	ErrDimensionMismatch      = fmt.Errorf("%w: Directionの次元が評価点と一致しません", ErrConfiguration)
)

// Computer evaluates single estimates at a fixed point. The zero value is
// not usable; construct with NewComputer.
type Computer struct {
	f        method.Func
	x        vector.Vector
	registry method.Registry

	// 原点値キャッシュ。並列実行時も1回だけ評価される様に排他する。
	mu       sync.Mutex
	origin   float64
	originOK bool
}

func NewComputer(f method.Func, x vector.Vector, registry method.Registry) *Computer {
	return &Computer{
		f:        screened(f),
		x:        x,
		registry: registry,
	}
}

// screened wraps the target function so that every failure surfaces as
// ErrEvaluation, including NaN/Inf return values.
func screened(f method.Func) method.Func {
	return func(x vector.Vector) (float64, error) {
		y, err := f(x)
		if err != nil {
			return 0.0, fmt.Errorf("%w: %w", ErrEvaluation, err)
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return 0.0, fmt.Errorf("%w: 評価値が不正です: %v", ErrEvaluation, y)
		}
		return y, nil
	}
}

// Origin returns f(x) at the unperturbed point, evaluating it at most once
// for the lifetime of the Computer.
func (c *Computer) Origin() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.originOK {
		y, err := c.f(c.x)
		if err != nil {
			return 0.0, err
		}
		c.origin = y
		c.originOK = true
	}
	return c.origin, nil
}

// Compute evaluates one estimate along d with step size h. The point is
// never mutated.
func (c *Computer) Compute(d vector.Vector, h float64, kind method.Kind) (estimate.Estimate, error) {
	stencil, err := c.registry.Stencil(kind)
	if err != nil {
		return estimate.Estimate{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	value, err := stencil(c.f, c.Origin, c.x, d, h)
	if err != nil {
		return estimate.Estimate{}, err
	}
	return estimate.Estimate{
		Source: string(kind),
		Value:  value,
		Size:   h,
	}, nil
}

// Engine is the computation orchestrator. Registry nil means the standard
// registry. Workers > 1 evaluates directions in parallel; the target
// function is then called concurrently on independent inputs.
type Engine struct {
	Registry method.Registry
	Workers  int
}

func (e Engine) registry() method.Registry {
	if e.Registry == nil {
		return method.NewStandardRegistry()
	}
	return e.Registry
}

func (e Engine) workers() int {
	if e.Workers < 1 {
		return 1
	}
	return e.Workers
}

// Validate rejects malformed requests before any function evaluation.
func (e Engine) Validate(f method.Func, x vector.Vector, dirs []vector.Direction, sizes []float64, kinds []method.Kind) error {
	if f == nil {
		return ErrNilFunc
	}

	if len(x) == 0 {
		return ErrEmptyPoint
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrNonFinitePoint, v)
		}
	}

	if len(sizes) == 0 {
		return ErrEmptySizes
	}
	for _, h := range sizes {
		// NaNもここで弾かれる
		if !(h > 0.0) {
			return fmt.Errorf("%w: %v", ErrNonPositiveSize, h)
		}
		if math.IsInf(h, 0) {
			return fmt.Errorf("%w: %v", ErrNonPositiveSize, h)
		}
	}

	if len(kinds) == 0 {
		return ErrEmptyKinds
	}
	if err := e.registry().Validate(kinds); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if len(dirs) == 0 {
		return ErrEmptyDirections
	}
	names := make([]string, len(dirs))
	for i, dir := range dirs {
		if len(dir.Vec) != len(x) {
			return fmt.Errorf("%w: %s は %d 次元 (評価点は %d 次元)", ErrDimensionMismatch, dir.Name, len(dir.Vec), len(x))
		}
		names[i] = dir.Name
	}
	if !slicesx.IsUnique(names) {
		return ErrDuplicateDirectionName
	}
	return nil
}

// Run evaluates every (direction, size, method) combination and returns the
// results per direction, indexed like dirs. Within one direction the order
// is size-major, method-minor, matching the request order. A single
// evaluation failure aborts the whole request.
func (e Engine) Run(f method.Func, x vector.Vector, dirs []vector.Direction, sizes []float64, kinds []method.Kind) ([][]estimate.Estimate, error) {
	if err := e.Validate(f, x, dirs, sizes, kinds); err != nil {
		return nil, err
	}

	computer := NewComputer(f, x, e.registry())
	results := make([][]estimate.Estimate, len(dirs))

	// 方向毎にシャーディングする事で、ワーカー間で可変状態を共有しない。
	err := parallel.For(len(dirs), e.workers(), func(workerId, idx int) error {
		dir := dirs[idx]
		estimates := make([]estimate.Estimate, 0, len(sizes)*len(kinds))
		for _, h := range sizes {
			for _, kind := range kinds {
				est, err := computer.Compute(dir.Vec, h, kind)
				if err != nil {
					return fmt.Errorf("direction=%s size=%v method=%s: %w", dir.Name, h, kind, err)
				}
				estimates = append(estimates, est)
			}
		}
		results[idx] = estimates
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
