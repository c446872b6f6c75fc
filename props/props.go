// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package props evaluates the thermodynamic properties of a chemical state.
//
// Every property is a dual number (autodiff.Real). Seeding one of the state variables
// (a species amount, the temperature or the pressure) with a unit derivative yields
// the exact partial derivatives of all properties along that direction, which is how
// the equilibrium solver builds its Hessian and constraint Jacobians.
//
// The Gibbs energy of the system is
//
//	G = ∑ nᵢμᵢ    μᵢ = G°ᵢ(T,P) + RT ln aᵢ
//
// so that ∂G/∂nᵢ = μᵢ. Species amounts enter logarithms through the floor max(nᵢ, ε).
package props

import (
	"math"

	"github.com/curioloop/gibbs/autodiff"
	"github.com/curioloop/gibbs/chemsys"
)

// Props are the properties of one state. All extensive quantities are in SI units:
// J for energies, m³ for volumes, J/K for entropy and heat capacity, mol for amounts.
type Props struct {
	sys     *chemsys.System
	formula []float64
	hydron  int

	T, P autodiff.Real
	N, X []autodiff.Real // amounts and mole fractions in their phase

	G0, H0, V0, Cp0 []autodiff.Real // standard molar properties
	LnG, LnA        []autodiff.Real // ln activity coefficients and activities
	Mu              []autodiff.Real // chemical potentials (J/mol)

	PhaseAmount, PhaseVolume, PhaseEnthalpy, PhaseCp []autodiff.Real

	G, H, V, Cp autodiff.Real
}

// System returns the chemical system the properties belong to.
func (p *Props) System() *chemsys.System { return p.sys }

// U returns the internal energy H - PV.
func (p *Props) U() autodiff.Real { return p.H.Sub(p.P.Mul(p.V)) }

// A returns the Helmholtz energy G - PV.
func (p *Props) A() autodiff.Real { return p.G.Sub(p.P.Mul(p.V)) }

// S returns the entropy (H - G)/T.
func (p *Props) S() autodiff.Real { return p.H.Sub(p.G).Div(p.T) }

// ElementAmount returns the amount of component e (element row or charge row).
func (p *Props) ElementAmount(e int) autodiff.Real {
	return p.ElementAmountIn(e, 0, len(p.N))
}

// ElementAmountInPhase returns the amount of component e held by phase ip.
func (p *Props) ElementAmountInPhase(e, ip int) autodiff.Real {
	begin, end := p.sys.PhaseRange(ip)
	return p.ElementAmountIn(e, begin, end)
}

// ElementAmountIn returns the amount of component e held by species begin ≤ j < end.
func (p *Props) ElementAmountIn(e, begin, end int) (s autodiff.Real) {
	m := p.sys.NumComponents()
	for j := begin; j < end; j++ {
		if c := p.formula[e+j*m]; c != 0 {
			s.V += c * p.N[j].V
			s.D += c * p.N[j].D
		}
	}
	return
}

// Charge returns the total electric charge ∑ zᵢnᵢ.
func (p *Props) Charge() autodiff.Real {
	return p.ElementAmount(p.sys.NumComponents() - 1)
}

// PH returns -log₁₀ a(H⁺) of the aqueous phase, or NaN when the system has no aqueous H⁺.
func (p *Props) PH() autodiff.Real {
	if p.hydron < 0 {
		return autodiff.Const(math.NaN())
	}
	return p.LnA[p.hydron].Scale(-1 / math.Ln10)
}

// Hydron returns the index of the aqueous H⁺ species or -1.
func (p *Props) Hydron() int { return p.hydron }

// Evaluator computes Props for a system. It owns scratch buffers and
// must not be used by concurrent goroutines; the returned Props are overwritten
// by the next evaluation.
type Evaluator struct {
	props Props
	eps   float64
	act   chemsys.ActivityProps
	nf    []autodiff.Real
	xs    []autodiff.Real
	spec  [][]chemsys.Species
}

// NewEvaluator creates an evaluator. Amounts below eps are floored inside logarithms;
// a non-positive eps selects chemsys.DefaultEpsilon.
func NewEvaluator(sys *chemsys.System, eps float64) *Evaluator {
	if !(eps > 0) {
		eps = chemsys.DefaultEpsilon
	}
	ns, np := sys.NumSpecies(), sys.NumPhases()
	buf := make([]autodiff.Real, 10*ns+4*np)
	next := func(n int) (s []autodiff.Real) {
		s, buf = buf[:n:n], buf[n:]
		return
	}

	e := &Evaluator{eps: eps}
	e.props = Props{
		sys:     sys,
		formula: sys.FormulaMatrix(),
		hydron:  HydronIndex(sys),
		N:       next(ns),
		X:       next(ns),
		G0:      next(ns),
		H0:      next(ns),
		V0:      next(ns),
		Cp0:     next(ns),
		LnG:     next(ns),
		LnA:     next(ns),
		Mu:      next(ns),

		PhaseAmount:   next(np),
		PhaseVolume:   next(np),
		PhaseEnthalpy: next(np),
		PhaseCp:       next(np),
	}
	e.nf = next(ns)
	e.xs = make([]autodiff.Real, ns)
	e.spec = make([][]chemsys.Species, np)
	for ip := range np {
		ph := sys.Phase(ip)
		e.spec[ip] = make([]chemsys.Species, ph.NumSpecies())
		for i := range e.spec[ip] {
			e.spec[ip][i] = ph.Species(i)
		}
	}
	return e
}

// Epsilon returns the amount floor used inside logarithms.
func (e *Evaluator) Epsilon() float64 { return e.eps }

// Evaluate computes all properties at (T, P, n).
// User models are called directly: a panicking model propagates to the caller.
func (e *Evaluator) Evaluate(T, P autodiff.Real, n []autodiff.Real) *Props {
	p := &e.props
	sys := p.sys
	if len(n) != len(p.N) {
		panic("bound check error")
	}

	p.T, p.P = T, P
	copy(p.N, n)
	RT := T.Scale(chemsys.R)

	for i := range p.N {
		st := sys.Species(i).StandardThermo().Evaluate(T, P)
		p.G0[i], p.H0[i], p.V0[i], p.Cp0[i] = st.G0, st.H0, st.V0, st.Cp0
		e.nf[i] = autodiff.Max(n[i], e.eps)
	}

	p.G, p.H, p.V, p.Cp = autodiff.Real{}, autodiff.Real{}, autodiff.Real{}, autodiff.Real{}
	for ip, species := range e.spec {
		begin, end := sys.PhaseRange(ip)
		nf := e.nf[begin:end]
		total := autodiff.Sum(nf...)
		for i := begin; i < end; i++ {
			p.X[i] = e.nf[i].Div(total)
		}

		e.act.Reset(end - begin)
		sys.Phase(ip).ActivityModel().Evaluate(&e.act, chemsys.ActivityArgs{
			T: T, P: P, X: p.X[begin:end], N: nf, Species: species,
		})

		amount := autodiff.Sum(n[begin:end]...)
		vol, enth, cp := amount.Mul(e.act.Vx), amount.Mul(e.act.Hx), amount.Mul(e.act.Cpx)
		for k, i := 0, begin; i < end; k, i = k+1, i+1 {
			p.LnG[i], p.LnA[i] = e.act.LnG[k], e.act.LnA[k]
			p.Mu[i] = p.G0[i].Add(RT.Mul(p.LnA[i]))
			vol = vol.Add(n[i].Mul(p.V0[i]))
			enth = enth.Add(n[i].Mul(p.H0[i]))
			cp = cp.Add(n[i].Mul(p.Cp0[i]))
			p.G = p.G.Add(n[i].Mul(p.Mu[i]))
		}
		p.PhaseAmount[ip], p.PhaseVolume[ip] = amount, vol
		p.PhaseEnthalpy[ip], p.PhaseCp[ip] = enth, cp

		p.H = p.H.Add(enth)
		p.V = p.V.Add(vol)
		p.Cp = p.Cp.Add(cp)
	}
	return p
}

// EvaluateAt computes the properties at plain values, seeding nothing.
func (e *Evaluator) EvaluateAt(T, P float64, n []float64) *Props {
	autodiff.Seed(e.xs, n, -1, 0)
	return e.Evaluate(autodiff.Const(T), autodiff.Const(P), e.xs)
}

// Hessian fills hess (column-major N×N) with ∂μᵢ/∂nⱼ at (T, P, n) using one seeded
// evaluation per species, and returns the chemical potentials in mu when it is not nil.
func (e *Evaluator) Hessian(T, P float64, n, hess, mu []float64) {
	ns := len(n)
	if len(hess) < ns*ns {
		panic("bound check error")
	}
	Tr, Pr := autodiff.Const(T), autodiff.Const(P)
	for j := range ns {
		autodiff.Seed(e.xs, n, j, 1)
		props := e.Evaluate(Tr, Pr, e.xs)
		for i := range ns {
			hess[i+j*ns] = props.Mu[i].D
		}
		if j == 0 && mu != nil {
			autodiff.Values(mu, props.Mu)
		}
	}
}

// Compute evaluates the properties of a state with the default amount floor.
// The returned Props are owned by the caller.
func Compute(state *chemsys.State) *Props {
	return NewEvaluator(state.System(), 0).EvaluateAt(state.Temperature(), state.Pressure(), state.AmountsView())
}

var hydronFormula = chemsys.MustParseFormula("H+")

// HydronIndex returns the index of the H⁺ species of the first aqueous phase or -1.
func HydronIndex(sys *chemsys.System) int {
	for ip := range sys.NumPhases() {
		if !sys.Phase(ip).IsAqueous() {
			continue
		}
		begin, end := sys.PhaseRange(ip)
		for i := begin; i < end; i++ {
			if sys.Species(i).Formula().Equivalent(hydronFormula) {
				return i
			}
		}
	}
	return -1
}
