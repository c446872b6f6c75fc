// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chemsys

import (
	"github.com/curioloop/gibbs/autodiff"
)

const (
	// R is the universal gas constant in J/(mol·K).
	R = 8.31446261815324
	// Tref is the reference temperature in K.
	Tref = 298.15
	// Pref is the standard pressure in Pa.
	Pref = 1e5
)

// StandardThermoProps holds the standard molar properties of a species at (T, P).
//   - G0: standard molar Gibbs energy (J/mol)
//   - H0: standard molar enthalpy (J/mol)
//   - V0: standard molar volume (m³/mol)
//   - Cp0: standard molar isobaric heat capacity (J/(mol·K))
type StandardThermoProps struct {
	G0, H0, V0, Cp0 autodiff.Real
}

// StandardThermoModel evaluates standard properties of one species.
// Implementations must be pure functions of (T, P) so that systems can be shared.
type StandardThermoModel interface {
	Evaluate(T, P autodiff.Real) StandardThermoProps
}

// StandardThermoFunc adapts a function to StandardThermoModel.
type StandardThermoFunc func(T, P autodiff.Real) StandardThermoProps

func (f StandardThermoFunc) Evaluate(T, P autodiff.Real) StandardThermoProps {
	return f(T, P)
}

// ConstantCp models a species with temperature independent heat capacity and molar volume:
//   - H°(T) = H°ᵣ + Cp°(T - Tᵣ)
//   - S°(T) = S°ᵣ + Cp°ln(T/Tᵣ)  with S°ᵣ = (H°ᵣ - G°ᵣ)/Tᵣ
//   - G°(T) = H°(T) - T·S°(T) + V°(P - Pᵣ)
//
// G°ᵣ and H°ᵣ are apparent properties at (Tᵣ, Pᵣ) following any consistent convention
// (the element reference terms cancel in equilibrium).
type ConstantCp struct {
	G0, H0, V0, Cp0 float64
}

func (m ConstantCp) Evaluate(T, P autodiff.Real) StandardThermoProps {
	S0r := (m.H0 - m.G0) / Tref
	dT := T.Shift(-Tref)
	H := dT.Scale(m.Cp0).Shift(m.H0)
	S := autodiff.Log(T.Scale(1 / Tref)).Scale(m.Cp0).Shift(S0r)
	pv := P.Shift(-Pref).Scale(m.V0)
	return StandardThermoProps{
		G0:  H.Sub(T.Mul(S)).Add(pv),
		H0:  H.Add(pv),
		V0:  autodiff.Const(m.V0),
		Cp0: autodiff.Const(m.Cp0),
	}
}
