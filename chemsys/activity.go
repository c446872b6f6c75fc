// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chemsys

import (
	"github.com/curioloop/gibbs/autodiff"
)

// ActivityArgs are the inputs of an activity model evaluation for one phase.
//   - T, P: temperature (K) and pressure (Pa)
//   - X: mole fractions of the phase species
//   - N: amounts of the phase species (mol), already floored at ε
type ActivityArgs struct {
	T, P    autodiff.Real
	X, N    []autodiff.Real
	Species []Species
}

// ActivityProps are the outputs of an activity model for one phase.
//   - LnG: ln activity coefficients (zero for ideal models)
//   - LnA: ln activities
//   - Vx, Hx, Cpx: molar excess volume (m³/mol), enthalpy (J/mol) and heat capacity (J/(mol·K))
//
// For ideal gases Vx carries the whole molar volume RT/P, as the standard molar volume of a
// gas species is taken as zero.
type ActivityProps struct {
	LnG, LnA    []autodiff.Real
	Vx, Hx, Cpx autodiff.Real
}

// Reset sizes the outputs for n species and zeroes them.
func (p *ActivityProps) Reset(n int) {
	if cap(p.LnG) < n {
		p.LnG = make([]autodiff.Real, n)
		p.LnA = make([]autodiff.Real, n)
	}
	p.LnG, p.LnA = p.LnG[:n], p.LnA[:n]
	for i := range n {
		p.LnG[i], p.LnA[i] = autodiff.Real{}, autodiff.Real{}
	}
	p.Vx, p.Hx, p.Cpx = autodiff.Real{}, autodiff.Real{}, autodiff.Real{}
}

// ActivityModel computes the activity properties of a phase.
// The model is selected when the phase is built and never switched afterwards.
// Implementations must not keep state between calls.
type ActivityModel interface {
	Evaluate(out *ActivityProps, args ActivityArgs)
}

// ActivityModelFunc adapts a function to ActivityModel.
type ActivityModelFunc func(out *ActivityProps, args ActivityArgs)

func (f ActivityModelFunc) Evaluate(out *ActivityProps, args ActivityArgs) { f(out, args) }

// IdealSolution sets aᵢ = xᵢ.
type IdealSolution struct{}

func (IdealSolution) Evaluate(out *ActivityProps, args ActivityArgs) {
	for i, x := range args.X {
		out.LnA[i] = autodiff.Log(x)
	}
}

// IdealGas sets aᵢ = xᵢP/P° and the molar volume RT/P.
type IdealGas struct{}

func (IdealGas) Evaluate(out *ActivityProps, args ActivityArgs) {
	lnP := autodiff.Log(args.P.Scale(1 / Pref))
	for i, x := range args.X {
		out.LnA[i] = autodiff.Log(x).Add(lnP)
	}
	out.Vx = args.T.Scale(R).Div(args.P)
}

// IdealAqueous is the ideal dilute aqueous solution: the solvent activity is its mole fraction
// and solute activities are molalities mᵢ = nᵢ/(n_w·M_w) in mol/kg.
type IdealAqueous struct{}

func (IdealAqueous) Evaluate(out *ActivityProps, args ActivityArgs) {
	iw := WaterIndex(args.Species)
	if iw < 0 {
		// without solvent the solution degenerates to an ideal mixture
		IdealSolution{}.Evaluate(out, args)
		return
	}
	mw := args.Species[iw].MolarMass()
	lnKgW := autodiff.Log(args.N[iw].Scale(mw))
	for i, n := range args.N {
		if i == iw {
			out.LnA[i] = autodiff.Log(args.X[i])
			continue
		}
		out.LnA[i] = autodiff.Log(n).Sub(lnKgW)
	}
}

var water = MustParseFormula("H2O")

// WaterIndex returns the index of the neutral H2O species in the list or -1.
func WaterIndex(species []Species) int {
	for i, s := range species {
		if s.formula.Equivalent(water) {
			return i
		}
	}
	return -1
}

// DefaultEpsilon is the default floor for species amounts inside logarithms.
const DefaultEpsilon = 1e-16

