// Package vector provides the float64 vectors used as evaluation points and
// probe directions for finite-difference derivative estimation.
//
// Package vector は有限差分による微分推定で、評価点と探査方向として使う
// float64ベクトルを提供します。
package vector

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrLengthMismatch = errors.New("長さエラー: Vectorの長さが一致しません")
)

type Vector []float64

func (v Vector) Clone() Vector {
	return slices.Clone(v)
}

func (v Vector) Equal(other Vector) bool {
	return floats.Equal(v, other)
}

// AddScaled returns v + alpha*d as a new Vector. v and d are never mutated,
// so a shared evaluation point stays intact across perturbations.
func (v Vector) AddScaled(alpha float64, d Vector) (Vector, error) {
	if len(v) != len(d) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(v), len(d))
	}
	dst := make(Vector, len(v))
	floats.AddScaledTo(dst, v, alpha, d)
	return dst, nil
}

// Direction is a named probe vector. The vector's magnitude scales the
// reported directional derivative linearly.
//
// Direction は名前付きの探査ベクトル。ベクトルの大きさは方向微分に
// 線形に反映される為、呼び出し側が考慮する事。
type Direction struct {
	Name string
	Vec  Vector
}

// StandardBasis returns the unit directions e1..en, named x0..x{n-1}.
func StandardBasis(n int) []Direction {
	dirs := make([]Direction, n)
	for i := range dirs {
		vec := make(Vector, n)
		vec[i] = 1.0
		dirs[i] = Direction{
			Name: fmt.Sprintf("x%d", i),
			Vec:  vec,
		}
	}
	return dirs
}
