// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package props_test

import (
	"math"
	"testing"

	"github.com/curioloop/gibbs/autodiff"
	"github.com/curioloop/gibbs/chemsys"
	"github.com/curioloop/gibbs/chemsys/chemsystest"
	"github.com/curioloop/gibbs/fdiff"
	"github.com/curioloop/gibbs/props"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdealGasVolume(t *testing.T) {
	sys := chemsystest.CombustionGases()
	state := chemsys.NewState(sys)
	require.NoError(t, state.SetTemperature(1000))
	require.NoError(t, state.SetPressure(1e6))
	require.NoError(t, state.SetSpeciesAmount("CH4(g)", 1))
	require.NoError(t, state.SetSpeciesAmount("O2(g)", 2))

	p := props.Compute(state)
	assert.InDelta(t, 3*chemsys.R*1000/1e6, p.V.V, 1e-15)
	assert.InDelta(t, 3, p.PhaseAmount[0].V, 1e-15)
	assert.InDelta(t, 1.0/3, p.X[0].V, 1e-15)
	assert.InDelta(t, p.H.V-1e6*p.V.V, p.U().V, 1e-9)
	assert.InDelta(t, (p.H.V-p.G.V)/1000, p.S().V, 1e-9)
	assert.True(t, math.IsNaN(p.PH().V))
	assert.Equal(t, -1, p.Hydron())

	h, err := sys.ComponentIndex("H")
	require.NoError(t, err)
	assert.InDelta(t, 4, p.ElementAmount(h).V, 1e-15)
	assert.InDelta(t, 0, p.Charge().V, 1e-15)
}

func TestChemicalPotentialIsGibbsGradient(t *testing.T) {
	sys := chemsystest.CombustionGases()
	ev := props.NewEvaluator(sys, 0)
	n := []float64{0.5, 1e-3, 0.2, 0.3, 1.1, 0.05}
	T, P := autodiff.Const(900), autodiff.Const(2e5)

	mu := autodiff.Values(nil, ev.EvaluateAt(900, 2e5, n).Mu)
	for j := range n {
		p := ev.Evaluate(T, P, autodiff.Seed(nil, n, j, 1))
		assert.InDelta(t, mu[j], p.G.D, 1e-6*math.Abs(mu[j])+1e-9, "species %d", j)

		// Gibbs-Duhem: ∑ nᵢ ∂μᵢ/∂nⱼ = 0
		gd := 0.0
		for i, ni := range n {
			gd += ni * p.Mu[i].D
		}
		assert.InDelta(t, 0, gd, 1e-6, "species %d", j)
	}
}

func TestHessian(t *testing.T) {
	sys := chemsystest.CarbonatedBrine()
	ns := sys.NumSpecies()
	ev := props.NewEvaluator(sys, 0)

	n := make([]float64, ns)
	for i := range n {
		n[i] = 0.01 * float64(i+1)
	}
	iw, err := sys.SpeciesIndex("H2O(aq)")
	require.NoError(t, err)
	n[iw] = 55.5

	hess := make([]float64, ns*ns)
	mu := make([]float64, ns)
	ev.Hessian(350, 5e6, n, hess, mu)

	spec := fdiff.Spec{N: ns, M: ns, Method: fdiff.Central, Func: func(x, y []float64) {
		autodiff.Values(y, props.NewEvaluator(sys, 0).EvaluateAt(350, 5e6, x).Mu)
	}}
	approx, err := spec.New()
	require.NoError(t, err)
	jac := make([]float64, ns*ns)
	require.NoError(t, approx.Jacobian(n, jac))

	for i := range ns {
		for j := range ns {
			want := jac[i*ns+j]
			assert.InDelta(t, want, hess[i+j*ns], 1e-4*math.Abs(want)+1e-3, "(%d,%d)", i, j)
		}
	}
	for i := range ns {
		assert.Greater(t, hess[i+i*ns], 0.0, "species %d", i)
	}
	assert.InDeltaSlice(t, autodiff.Values(nil, ev.EvaluateAt(350, 5e6, n).Mu), mu, 1e-9)
}

func TestHessianSymmetric(t *testing.T) {
	sys := chemsystest.CombustionGases()
	ev := props.NewEvaluator(sys, 0)
	n := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	ns := len(n)
	hess := make([]float64, ns*ns)
	ev.Hessian(1000, 1e5, n, hess, nil)

	// ∂ln xᵢ/∂nⱼ = δᵢⱼ/nᵢ - 1/n
	RT, total := chemsys.R*1000, 2.1
	for i := range ns {
		for j := range ns {
			want := -RT / total
			if i == j {
				want += RT / n[i]
			}
			assert.InDelta(t, want, hess[i+j*ns], 1e-9*math.Abs(want))
			assert.Equal(t, hess[i+j*ns], hess[j+i*ns])
		}
	}
}

func TestTemperatureDerivative(t *testing.T) {
	sys := chemsystest.CombustionGases()
	ev := props.NewEvaluator(sys, 0)
	n := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	xs := autodiff.Seed(nil, n, -1, 0)

	T, P := 1200.0, 3e6
	p := ev.Evaluate(autodiff.Var(T, 1), autodiff.Const(P), xs)
	dG, dH, dV := p.G.D, p.H.D, p.V.D
	S := p.S().V

	at := func(T float64) *props.Props { return ev.EvaluateAt(T, P, n) }
	assert.InDelta(t, fdiff.Derivative(func(T float64) float64 { return at(T).G.V }, T), dG, 1e-5*math.Abs(dG))
	assert.InDelta(t, fdiff.Derivative(func(T float64) float64 { return at(T).H.V }, T), dH, 1e-5*math.Abs(dH))
	assert.InDelta(t, fdiff.Derivative(func(T float64) float64 { return at(T).V.V }, T), dV, 1e-5*math.Abs(dV))
	// (∂G/∂T)ₚ = -S
	assert.InDelta(t, -S, dG, 1e-6*math.Abs(S))
}

func TestPH(t *testing.T) {
	sys := chemsystest.Brine()
	state := chemsys.NewState(sys)
	require.NoError(t, state.SetSpeciesMass("H2O(aq)", 1, "kg"))
	require.NoError(t, state.SetSpeciesAmount("H+", 1e-7))
	require.NoError(t, state.SetSpeciesAmount("OH-", 1e-7))

	p := props.Compute(state)
	assert.InDelta(t, 7, p.PH().V, 1e-9)
	assert.GreaterOrEqual(t, p.Hydron(), 0)
}

func TestAmountFloor(t *testing.T) {
	sys := chemsystest.CombustionGases()
	ev := props.NewEvaluator(sys, 1e-20)
	assert.Equal(t, 1e-20, ev.Epsilon())

	n := []float64{1, 0, 0, 0, 0, 0}
	p := ev.EvaluateAt(500, 1e5, n)
	for i := range n {
		assert.True(t, p.Mu[i].IsFinite(), "species %d", i)
	}
	assert.InDelta(t, math.Log(1e-20), p.LnA[1].V, 1e-9)
	assert.True(t, p.G.IsFinite())
}
