// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"math"
	"testing"

	"github.com/curioloop/gibbs/chemsys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSensitivityTemperature(t *testing.T) {
	const T, P, dT = 1273.15, 1e7, 0.01

	opts := DefaultOptions()
	opts.Sensitivity = true
	state := combustionState(t, T, P)
	specs := tpSpecs(t, state.System())
	solver, err := NewSolver(specs, &opts)
	require.NoError(t, err)
	r, err := solver.Solve(state, tpConditions(t, specs, T, P))
	require.NoError(t, err)
	require.True(t, r.OK)
	sens := r.Sensitivity()
	require.NotNil(t, sens)

	solve := func(T float64) []float64 {
		s := combustionState(t, T, P)
		plain, err := NewSolver(specs, nil)
		require.NoError(t, err)
		r, err := plain.Solve(s, tpConditions(t, specs, T, P))
		require.NoError(t, err)
		require.True(t, r.OK)
		return s.Amounts()
	}
	hi, lo := solve(T+dT), solve(T-dT)

	dndT, err := sens.DndwAll("T")
	require.NoError(t, err)
	for i := range dndT {
		want := (hi[i] - lo[i]) / (2 * dT)
		assert.InDelta(t, want, dndT[i], 1e-3*math.Abs(want)+1e-8, "species %s", state.System().Species(i).Name())
	}

	v, err := sens.Dndw("T", "H2(g)")
	require.NoError(t, err)
	i, err := state.System().SpeciesIndex("H2(g)")
	require.NoError(t, err)
	assert.Equal(t, dndT[i], v)

	dTdT, err := sens.DTdw("T")
	require.NoError(t, err)
	assert.Equal(t, 1.0, dTdT)
	dPdT, err := sens.DPdw("T")
	require.NoError(t, err)
	assert.Equal(t, 0.0, dPdT)

	_, err = sens.DTdw("V")
	assert.ErrorIs(t, err, ErrUnknownInput)
}

func TestSensitivityComponents(t *testing.T) {
	opts := DefaultOptions()
	opts.Sensitivity = true
	state := combustionState(t, 1000, 1e6)
	sys := state.System()
	specs := tpSpecs(t, sys)
	solver, err := NewSolver(specs, &opts)
	require.NoError(t, err)
	r, err := solver.Solve(state, tpConditions(t, specs, 1000, 1e6))
	require.NoError(t, err)
	require.True(t, r.OK)
	sens := r.Sensitivity()

	// 𝐀 ∂𝐧/∂𝐛 = 𝐈 over the elements
	nc := sys.NumComponents()
	a := sys.FormulaMatrix()
	for _, b := range []string{"H", "C", "O"} {
		cb, err := sys.ComponentIndex(b)
		require.NoError(t, err)
		for _, e := range []string{"H", "C", "O"} {
			ce, err := sys.ComponentIndex(e)
			require.NoError(t, err)
			sum := 0.0
			for i := range sys.NumSpecies() {
				d, err := sens.Dndb(b, sys.Species(i).Name())
				require.NoError(t, err)
				sum += a[ce+i*nc] * d
			}
			want := 0.0
			if cb == ce {
				want = 1
			}
			assert.InDelta(t, want, sum, 1e-6, "∂%s/∂b[%s]", e, b)
		}
	}

	// gases carry no charge, so its row is dependent
	for i := range sys.NumSpecies() {
		d, err := sens.Dndb(chemsys.ChargeComponent, sys.Species(i).Name())
		require.NoError(t, err)
		assert.Equal(t, 0.0, d)
	}
}

func TestSensitivityTitrant(t *testing.T) {
	opts := DefaultOptions()
	opts.Sensitivity = true
	state := brineState(t)
	specs := tpSpecs(t, state.System())
	require.NoError(t, specs.PH())
	require.NoError(t, specs.Charge())
	require.NoError(t, specs.OpenTo("H+"))
	require.NoError(t, specs.OpenTo("Cl-"))

	at := func(pH float64) (*Result, error) {
		cond := NewConditions(specs)
		require.NoError(t, cond.Temperature(298.15))
		require.NoError(t, cond.Pressure(1e5))
		require.NoError(t, cond.PH(pH))
		require.NoError(t, cond.Charge(0))
		solver, err := NewSolver(specs, &opts)
		require.NoError(t, err)
		return solver.Solve(brineState(t), cond)
	}

	r, err := at(4)
	require.NoError(t, err)
	require.True(t, r.OK, "status %v", r.Status)
	hi, err := at(4.001)
	require.NoError(t, err)
	lo, err := at(3.999)
	require.NoError(t, err)

	for _, name := range specs.Titrants() {
		q1, err := hi.TitrantAmount(name)
		require.NoError(t, err)
		q0, err := lo.TitrantAmount(name)
		require.NoError(t, err)
		want := (q1 - q0) / 0.002

		got, err := r.Sensitivity().Dqdw("pH", name)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-3*math.Abs(want)+1e-10, name)
	}
	_, err = r.Sensitivity().Dqdw("pH", "Na+")
	assert.ErrorIs(t, err, ErrUnknownTitrant)
}
