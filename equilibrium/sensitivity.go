// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"fmt"

	"github.com/curioloop/gibbs/linalg"
)

// Sensitivity holds the derivatives of an equilibrium solution with respect to the
// input values 𝐰 and the component amounts 𝐛, obtained from the implicit function
// theorem on the optimality conditions at the converged point.
type Sensitivity struct {
	specs          *Specs
	ns, ni, nc, nq int

	dndw []float64 // ns × ni
	dTdw []float64 // ni
	dPdw []float64 // ni
	dqdw []float64 // nq × ni
	dndb []float64 // ns × nc
}

func (s *Sensitivity) input(name string) (int, error) {
	return s.specs.InputIndex(name)
}

// Dndw returns ∂nᵢ/∂w for a species and an input.
func (s *Sensitivity) Dndw(input, species string) (float64, error) {
	k, err := s.input(input)
	if err != nil {
		return 0, err
	}
	i, err := s.specs.sys.SpeciesIndex(species)
	if err != nil {
		return 0, err
	}
	return s.dndw[i+k*s.ns], nil
}

// DndwAll returns ∂𝐧/∂w for an input, one entry per species.
func (s *Sensitivity) DndwAll(input string) ([]float64, error) {
	k, err := s.input(input)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), s.dndw[k*s.ns:(k+1)*s.ns]...), nil
}

// DTdw returns ∂T/∂w for an input. It is 1 for the temperature input itself
// and 0 for the other inputs when the temperature is given.
func (s *Sensitivity) DTdw(input string) (float64, error) {
	k, err := s.input(input)
	if err != nil {
		return 0, err
	}
	return s.dTdw[k], nil
}

// DPdw returns ∂P/∂w for an input.
func (s *Sensitivity) DPdw(input string) (float64, error) {
	k, err := s.input(input)
	if err != nil {
		return 0, err
	}
	return s.dPdw[k], nil
}

// Dqdw returns ∂q/∂w for a titrant and an input.
func (s *Sensitivity) Dqdw(input, titrant string) (float64, error) {
	k, err := s.input(input)
	if err != nil {
		return 0, err
	}
	for t, tit := range s.specs.titrants {
		if tit.Name == titrant {
			return s.dqdw[t+k*s.nq], nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTitrant, titrant)
}

// Dndb returns ∂nᵢ/∂bⱼ for a species and a component (element symbol or "Z" for charge).
// Components whose conservation row depends on the others have zero sensitivity.
func (s *Sensitivity) Dndb(component, species string) (float64, error) {
	c, err := s.specs.sys.ComponentIndex(component)
	if err != nil {
		return 0, err
	}
	i, err := s.specs.sys.SpeciesIndex(species)
	if err != nil {
		return 0, err
	}
	return s.dndb[i+c*s.ns], nil
}

// sensitivity differentiates the solution at the converged iterate. The Jacobians from
// the last linearization are reused; only the input derivatives are evaluated.
func (s *Solver) sensitivity() (*Sensitivity, error) {
	pb, ws := &s.pb, &s.work
	ns, mb := s.ns, s.mb
	ni, nc := len(pb.w), s.specs.sys.NumComponents()

	if err := s.factorize(ws.x, ws.z, ws.u, pb.tau, false); err != nil {
		return nil, err
	}

	sens := &Sensitivity{
		specs: s.specs,
		ns:    ns,
		ni:    ni,
		nc:    nc,
		nq:    s.nq,
		dndw:  make([]float64, ns*ni),
		dTdw:  make([]float64, ni),
		dPdw:  make([]float64, ni),
		dqdw:  make([]float64, s.nq*ni),
		dndb:  make([]float64, ns*nc),
	}

	// unpack stores the species and control parts of a solution of the Newton system.
	unpack := func(k int) {
		copy(sens.dndw[k*ns:(k+1)*ns], ws.sol[:ns])
		dp := ws.sol[ns+mb:]
		switch {
		case s.iT >= 0:
			sens.dTdw[k] = pb.tscale * dp[s.iT-ns]
		case k == s.wT:
			sens.dTdw[k] = one
		}
		switch {
		case s.iP >= 0:
			sens.dPdw[k] = pb.pscale * dp[s.iP-ns]
		case k == s.wP:
			sens.dPdw[k] = one
		}
		for t := range s.nq {
			sens.dqdw[t+k*s.nq] = dp[s.iq-ns+t]
		}
	}

	for k := range ni {
		if err := s.evaluate(ws.x, -1, k); err != nil {
			return nil, err
		}
		linalg.Zero(ws.sol)
		for i := range ns {
			ws.sol[i] = -ws.dg[i]
		}
		for m := range s.np {
			ws.sol[ns+mb+m] = -ws.dh[m]
		}
		if err := ws.lu.Solve(ws.sol); err != nil {
			return nil, err
		}
		unpack(k)
	}

	for r, c := range s.rows {
		linalg.Zero(ws.sol)
		ws.sol[ns+r] = one
		if err := ws.lu.Solve(ws.sol); err != nil {
			return nil, err
		}
		copy(sens.dndb[c*ns:(c+1)*ns], ws.sol[:ns])
	}
	return sens, nil
}
