// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package autodiff implements forward-mode automatic differentiation with dual numbers.
//
// A dual number 𝐫 = v + dε (ε² = 0) carries a value v together with its directional derivative d
// along one seeded direction. Evaluating a function 𝒇 on a dual argument x + ε yields
// 𝒇(x) + 𝒇′(x)ε, the derivative is therefore exact up to rounding and no step size is involved.
//
// Partial derivatives 𝜕𝒇/𝜕xⱼ of a multivariate function are obtained by evaluating it once per
// direction j with xⱼ seeded (D = 1) and every other argument constant (D = 0).
package autodiff

import "math"

// Real is a dual number with value V and derivative D along the seeded direction.
type Real struct {
	V, D float64
}

// Const returns a dual number with zero derivative.
func Const(v float64) Real {
	return Real{V: v}
}

// Var returns a dual number seeded with derivative d.
func Var(v, d float64) Real {
	return Real{V: v, D: d}
}

// Add returns 𝐚 + 𝐛.
func (a Real) Add(b Real) Real {
	return Real{a.V + b.V, a.D + b.D}
}

// Sub returns 𝐚 - 𝐛.
func (a Real) Sub(b Real) Real {
	return Real{a.V - b.V, a.D - b.D}
}

// Mul returns 𝐚𝐛 with (𝐚𝐛)′ = 𝐚′𝐛 + 𝐚𝐛′.
func (a Real) Mul(b Real) Real {
	return Real{a.V * b.V, a.D*b.V + a.V*b.D}
}

// Div returns 𝐚/𝐛 with (𝐚/𝐛)′ = (𝐚′𝐛 - 𝐚𝐛′)/𝐛².
func (a Real) Div(b Real) Real {
	v := a.V / b.V
	return Real{v, (a.D - v*b.D) / b.V}
}

// Neg returns -𝐚.
func (a Real) Neg() Real {
	return Real{-a.V, -a.D}
}

// Scale returns s𝐚 for a constant s.
func (a Real) Scale(s float64) Real {
	return Real{s * a.V, s * a.D}
}

// Shift returns 𝐚 + c for a constant c.
func (a Real) Shift(c float64) Real {
	return Real{a.V + c, a.D}
}

// Inv returns 1/𝐚.
func (a Real) Inv() Real {
	v := 1 / a.V
	return Real{v, -a.D * v * v}
}

// IsFinite reports whether both value and derivative are finite.
func (a Real) IsFinite() bool {
	return !math.IsNaN(a.V) && !math.IsInf(a.V, 0) && !math.IsNaN(a.D) && !math.IsInf(a.D, 0)
}

// Log returns ln 𝐚.
func Log(a Real) Real {
	return Real{math.Log(a.V), a.D / a.V}
}

// Log10 returns log₁₀ 𝐚.
func Log10(a Real) Real {
	return Real{math.Log10(a.V), a.D / (a.V * math.Ln10)}
}

// Exp returns e^𝐚.
func Exp(a Real) Real {
	v := math.Exp(a.V)
	return Real{v, a.D * v}
}

// Sqrt returns 𝐚¹ᐟ².
func Sqrt(a Real) Real {
	v := math.Sqrt(a.V)
	return Real{v, a.D / (2 * v)}
}

// Pow returns 𝐚ᵖ for a constant exponent p.
func Pow(a Real, p float64) Real {
	switch p {
	case 0:
		return Real{V: 1}
	case 1:
		return a
	case 2:
		return a.Mul(a)
	}
	v := math.Pow(a.V, p)
	return Real{v, a.D * p * math.Pow(a.V, p-1)}
}

// Max returns the larger of 𝐚 and a constant floor c.
// The derivative vanishes when the floor is active.
func Max(a Real, c float64) Real {
	if a.V < c {
		return Real{V: c}
	}
	return a
}

// Sum returns the sum of the given dual numbers.
func Sum(xs ...Real) (s Real) {
	for _, x := range xs {
		s.V += x.V
		s.D += x.D
	}
	return
}

// Dot returns ∑ cᵢ𝐱ᵢ for constant coefficients c.
func Dot(c []float64, xs []Real) (s Real) {
	if len(c) != len(xs) {
		panic("bound check error")
	}
	for i, x := range xs {
		s.V += c[i] * x.V
		s.D += c[i] * x.D
	}
	return
}

// Values copies the values of xs into dst and returns it.
func Values(dst []float64, xs []Real) []float64 {
	if dst == nil {
		dst = make([]float64, len(xs))
	}
	for i, x := range xs {
		dst[i] = x.V
	}
	return dst
}

// Derivatives copies the derivatives of xs into dst and returns it.
func Derivatives(dst []float64, xs []Real) []float64 {
	if dst == nil {
		dst = make([]float64, len(xs))
	}
	for i, x := range xs {
		dst[i] = x.D
	}
	return dst
}

// Seed fills dst with constant duals of values x, seeding index k with derivative d.
// A negative k seeds nothing.
func Seed(dst []Real, x []float64, k int, d float64) []Real {
	if dst == nil {
		dst = make([]Real, len(x))
	}
	for i, v := range x {
		dst[i] = Real{V: v}
	}
	if k >= 0 {
		dst[k].D = d
	}
	return dst
}
