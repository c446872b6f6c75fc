// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"errors"
	"math"
	"testing"

	"github.com/curioloop/gibbs/autodiff"
	"github.com/curioloop/gibbs/chemsys"
	"github.com/curioloop/gibbs/chemsys/chemsystest"
	"github.com/curioloop/gibbs/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecsInputs(t *testing.T) {
	sys := chemsystest.CarbonatedBrine()
	specs := NewSpecs(sys)
	require.NoError(t, specs.Temperature())
	require.NoError(t, specs.Pressure())
	require.NoError(t, specs.Volume())
	require.NoError(t, specs.Enthalpy())
	require.NoError(t, specs.GibbsEnergy())
	require.NoError(t, specs.HelmholtzEnergy())
	require.NoError(t, specs.Entropy())
	require.NoError(t, specs.InternalEnergy())
	require.NoError(t, specs.Charge())
	require.NoError(t, specs.PH())
	require.NoError(t, specs.ElementAmount("C"))
	require.NoError(t, specs.ElementAmountInPhase("C", "GaseousPhase"))
	require.NoError(t, specs.PhaseAmount("GaseousPhase"))
	require.NoError(t, specs.PhaseVolume("AqueousPhase"))
	require.NoError(t, specs.LnActivity("CO2(g)"))
	require.NoError(t, specs.ChemicalPotential("H2O(aq)"))
	require.NoError(t, specs.AddInput("x"))
	require.NoError(t, specs.Err())

	assert.Equal(t, []string{
		"T", "P", "V", "H", "G", "A", "S", "U", "charge", "pH",
		"elementAmount[C]", "elementAmountInPhase[C,GaseousPhase]",
		"phaseAmount[GaseousPhase]", "phaseVolume[AqueousPhase]",
		"lnActivity[CO2(g)]", "chemicalPotential[H2O(aq)]", "x",
	}, specs.Inputs())
	assert.Equal(t, 17, specs.NumInputs())
	assert.Len(t, specs.Constraints(), 14)
	assert.False(t, specs.IsTemperatureUnknown())
	assert.False(t, specs.IsPressureUnknown())
	assert.Equal(t, 0, specs.NumControls())
	assert.Same(t, sys, specs.System())

	k, err := specs.InputIndex("pH")
	require.NoError(t, err)
	assert.Equal(t, 9, k)
	_, err = specs.InputIndex("Q")
	assert.ErrorIs(t, err, ErrUnknownInput)

	// 14 constraints for no control
	_, err = NewSolver(specs, nil)
	assert.ErrorIs(t, err, ErrConstraintCount)
}

func TestSpecsErrors(t *testing.T) {
	sys := chemsystest.Brine()
	specs := NewSpecs(sys)
	require.NoError(t, specs.Temperature())
	assert.ErrorIs(t, specs.Temperature(), ErrDuplicateInput)
	assert.ErrorIs(t, specs.ElementAmount("C"), chemsys.ErrUnknownElement)
	assert.ErrorIs(t, specs.PhaseAmount("GaseousPhase"), chemsys.ErrUnknownPhase)
	assert.ErrorIs(t, specs.LnActivity("CO2(aq)"), chemsys.ErrUnknownSpecies)
	assert.ErrorIs(t, specs.OpenTo("Ca+2"), chemsys.ErrUnknownElement)
	assert.ErrorIs(t, specs.OpenTo("h2o"), chemsys.ErrBadFormula)
	require.NoError(t, specs.OpenTo("HCl"))
	assert.ErrorIs(t, specs.OpenTo("ClH"), ErrDuplicateTitrant)
	assert.ErrorIs(t, specs.OpenTo("HCl"), ErrDuplicateTitrant)

	fn := func(ctx *Context) autodiff.Real { return ctx.Q[0] }
	require.NoError(t, specs.AddConstraint(Constraint{ID: "q", Fn: fn}))
	assert.ErrorIs(t, specs.AddConstraint(Constraint{ID: "q", Fn: fn}), ErrDuplicateConstraint)
	assert.ErrorIs(t, specs.AddConstraint(Constraint{ID: "r", Fn: fn, Scale: "V"}), ErrUnknownInput)

	err := specs.Err()
	require.Error(t, err)
	_, err = NewSolver(specs, nil)
	var cfg *ConfigurationError
	require.True(t, errors.As(err, &cfg))
	assert.ErrorIs(t, err, ErrDuplicateInput)
	assert.ErrorIs(t, err, ErrDuplicateTitrant)
	// P unknown and one titrant need two constraints
	assert.ErrorIs(t, err, ErrConstraintCount)
	assert.GreaterOrEqual(t, len(cfg.Errors()), 8)

	gas := NewSpecs(chemsystest.CombustionGases())
	assert.ErrorIs(t, gas.PH(), chemsys.ErrUnknownSpecies)
}

func TestConditions(t *testing.T) {
	sys := chemsystest.CombustionGases()
	specs := NewSpecs(sys)
	require.NoError(t, specs.Temperature())
	require.NoError(t, specs.Pressure())
	require.NoError(t, specs.Volume())
	assert.Same(t, specs, NewConditions(specs).Specs())

	cond := NewConditions(specs)
	require.NoError(t, cond.Temperature(25, "degC"))
	require.NoError(t, cond.Pressure(2, "bar"))
	require.NoError(t, cond.Volume(1.5, "L"))

	for name, want := range map[string]float64{"T": 298.15, "P": 2e5, "V": 1.5e-3} {
		v, ok := cond.Value(name)
		assert.True(t, ok, name)
		assert.InDelta(t, want, v, 1e-12, name)
	}
	_, ok := cond.Value("U")
	assert.False(t, ok)

	assert.ErrorIs(t, cond.Temperature(1, "bar"), units.ErrIncompatible)
	assert.ErrorIs(t, cond.Set("H", 1), ErrUnknownInput)
	assert.ErrorIs(t, cond.SetInitialComponentAmounts([]float64{1}), ErrDimension)
	require.NoError(t, cond.SetLowerBound("T", 500, "degC"))
	require.NoError(t, cond.SetUpperBound("P", 10, "MPa"))
	assert.InDelta(t, 773.15, cond.temp.Lower, 1e-12)
	assert.True(t, math.IsInf(cond.temp.Upper, 1))
	assert.Equal(t, 1e7, cond.pres.Upper)

	err := cond.Validate()
	assert.ErrorIs(t, err, units.ErrIncompatible)
	assert.ErrorIs(t, err, ErrUnknownInput)
	assert.ErrorIs(t, err, ErrDimension)
	assert.NotErrorIs(t, err, ErrMissingInput)

	ok2 := NewConditions(specs)
	require.NoError(t, ok2.Temperature(300))
	require.NoError(t, ok2.Pressure(1e5))
	require.NoError(t, ok2.Volume(1))
	require.NoError(t, ok2.SetInitialComponentAmounts([]float64{1, 1, 1, 0}))
	assert.NoError(t, ok2.Validate())
}
