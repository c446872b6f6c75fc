// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fdiff approximates Jacobian matrices by finite differences.
//
// It is a reference for exact derivatives: dual-number gradients of the property
// evaluator and implicit-function sensitivities of the equilibrium solver are
// cross-checked against it, never replaced by it.
package fdiff

import (
	"errors"
	"math"
)

var (
	sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
	cubeEps = math.Cbrt(math.Nextafter(1, 2) - 1)
)

// Method selects the finite difference scheme.
type Method int

const (
	// Forward uses the first order forward difference (𝒇(x+h) - 𝒇(x))/h.
	Forward Method = iota
	// Central uses (𝒇(x+h) - 𝒇(x-h))/2h in the interior and the second order one-sided
	// difference (-3𝒇(x) + 4𝒇(x+h) - 𝒇(x+2h))/2h when x±h leaves the bounds.
	Central
)

// Bound limits the range on which the function may be evaluated.
type Bound struct {
	Lower, Upper float64
}

// Spec describes the function 𝒇 : ℝⁿ → ℝᵐ whose Jacobian is approximated.
type Spec struct {
	N, M int
	// Func evaluates y = 𝒇(x). It must not retain x or y.
	Func func(x, y []float64)
	// Method is the difference scheme.
	Method Method
	// Bounds optionally restrict the evaluation points (NaN means unbounded).
	Bounds []Bound
	// AbsStep is the absolute step. When zero the step is chosen as
	// h = ϵ·sgn(x)·max(1,|x|) with ϵ = √eps (Forward) or ∛eps (Central).
	AbsStep float64
}

// Approximator holds the scratch buffers for repeated approximations.
// It is not safe for concurrent use.
type Approximator struct {
	spec    Spec
	bounds  []Bound
	f0      []float64
	f1, f2  []float64
	step    []float64
	oneSide []bool
}

// New validates the spec and allocates an approximator.
func (s *Spec) New() (a *Approximator, err error) {
	switch {
	case s.N <= 0 || s.M <= 0:
		err = errors.New("fdiff: dimensions must be positive")
	case s.Func == nil:
		err = errors.New("fdiff: function is required")
	case s.Method != Forward && s.Method != Central:
		err = errors.New("fdiff: unknown method")
	case s.Bounds != nil && len(s.Bounds) != s.N:
		err = errors.New("fdiff: bounds size must equal to n")
	}
	if err != nil {
		return
	}

	bounds := make([]Bound, s.N)
	for i := range bounds {
		b := Bound{math.Inf(-1), math.Inf(1)}
		if s.Bounds != nil {
			if !math.IsNaN(s.Bounds[i].Lower) {
				b.Lower = s.Bounds[i].Lower
			}
			if !math.IsNaN(s.Bounds[i].Upper) {
				b.Upper = s.Bounds[i].Upper
			}
		}
		if b.Lower > b.Upper {
			return nil, errors.New("fdiff: invalid bound range")
		}
		bounds[i] = b
	}

	a = &Approximator{
		spec:    *s,
		bounds:  bounds,
		f0:      make([]float64, s.M),
		f1:      make([]float64, s.M),
		f2:      make([]float64, s.M),
		step:    make([]float64, s.N),
		oneSide: make([]bool, s.N),
	}
	return
}

// Jacobian approximates the m×n Jacobian of 𝒇 at x0 into row-major jac (jac[i*n+j] = 𝜕𝒇ᵢ/𝜕xⱼ).
// x0 is restored on return.
func (a *Approximator) Jacobian(x0, jac []float64) error {
	n, m := a.spec.N, a.spec.M
	switch {
	case len(x0) != n:
		return errors.New("fdiff: invalid x0 dimension")
	case len(jac) != n*m:
		return errors.New("fdiff: invalid jacobian dimension")
	}
	for i, x := range x0 {
		if x < a.bounds[i].Lower || x > a.bounds[i].Upper {
			return errors.New("fdiff: x0 violates bound constraints")
		}
	}

	a.chooseStep(x0)
	a.fitBounds(x0)

	f := a.spec.Func
	f(x0, a.f0)
	for j, h := range a.step {
		xj := x0[j]
		switch {
		case a.spec.Method == Forward:
			x0[j] = xj + h
			f(x0, a.f1)
			for i := range m {
				jac[i*n+j] = (a.f1[i] - a.f0[i]) / h
			}
		case a.oneSide[j]:
			x0[j] = xj + h
			f(x0, a.f1)
			x0[j] = xj + 2*h
			f(x0, a.f2)
			for i := range m {
				jac[i*n+j] = (4*a.f1[i] - 3*a.f0[i] - a.f2[i]) / (2 * h)
			}
		default:
			x0[j] = xj - h
			f(x0, a.f1)
			x0[j] = xj + h
			f(x0, a.f2)
			for i := range m {
				jac[i*n+j] = (a.f2[i] - a.f1[i]) / (2 * h)
			}
		}
		x0[j] = xj
	}
	return nil
}

func (a *Approximator) chooseStep(x0 []float64) {
	eps := sqrtEps
	if a.spec.Method == Central {
		eps = cubeEps
	}
	for i, v := range x0 {
		h := a.spec.AbsStep
		if h == 0 || (v+h)-v == 0 {
			h = math.Copysign(eps, v) * math.Max(1, math.Abs(v))
		}
		a.step[i] = h
	}
}

// fitBounds flips or shrinks the steps so that every evaluation point stays inside the bounds.
func (a *Approximator) fitBounds(x0 []float64) {
	h, side := a.step, a.oneSide
	for i, x := range x0 {
		lb, ub := a.bounds[i].Lower, a.bounds[i].Upper
		ld, ud := x-lb, ub-x
		side[i] = false

		if a.spec.Method == Forward {
			t := x + h[i]
			inside := t >= lb && t <= ub
			fits := math.Abs(h[i]) < math.Max(ld, ud)
			switch {
			case !inside && fits:
				h[i] = -h[i]
			case !fits && ud >= ld:
				h[i] = ud
			case !fits:
				h[i] = -ld
			}
			continue
		}

		h[i] = math.Abs(h[i])
		if ld >= h[i] && ud >= h[i] {
			continue
		}
		side[i] = true
		if ud >= ld {
			h[i] = math.Min(h[i], 0.5*ud)
		} else {
			h[i] = -math.Min(h[i], 0.5*ld)
		}
		if d := math.Min(ld, ud); math.Abs(h[i]) <= d {
			h[i] = d
			side[i] = false
		}
	}
}

// Derivative approximates 𝒇′(x) of a scalar function with the central scheme.
func Derivative(f func(float64) float64, x float64) float64 {
	h := cubeEps * math.Max(1, math.Abs(x))
	return (f(x+h) - f(x-h)) / (2 * h)
}
