// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chemsys

import (
	"fmt"
	"math"

	"github.com/curioloop/gibbs/units"
)

// State is the mutable chemical state of a system: temperature, pressure and species amounts.
// A State must not be shared by concurrent solves.
type State struct {
	sys  *System
	t, p float64
	n    []float64
}

// NewState creates a state at 298.15 K, 1 bar with zero species amounts.
func NewState(sys *System) *State {
	return &State{
		sys: sys,
		t:   Tref,
		p:   Pref,
		n:   make([]float64, sys.NumSpecies()),
	}
}

// System returns the system of the state.
func (s *State) System() *System { return s.sys }

// Temperature returns the temperature in K.
func (s *State) Temperature() float64 { return s.t }

// Pressure returns the pressure in Pa.
func (s *State) Pressure() float64 { return s.p }

// SetTemperature sets the temperature, in K unless a unit is given.
func (s *State) SetTemperature(value float64, unit ...string) error {
	v, err := toSI(value, "K", unit)
	if err != nil {
		return err
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: temperature %v K", ErrNegative, v)
	}
	s.t = v
	return nil
}

// SetPressure sets the pressure, in Pa unless a unit is given.
func (s *State) SetPressure(value float64, unit ...string) error {
	v, err := toSI(value, "Pa", unit)
	if err != nil {
		return err
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: pressure %v Pa", ErrNegative, v)
	}
	s.p = v
	return nil
}

// SetSpeciesAmount sets the amount of a species, in mol unless a unit is given.
func (s *State) SetSpeciesAmount(name string, value float64, unit ...string) error {
	i, err := s.sys.SpeciesIndex(name)
	if err != nil {
		return err
	}
	v, err := toSI(value, "mol", unit)
	if err != nil {
		return err
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("%w: amount of %q", ErrNegative, name)
	}
	s.n[i] = v
	return nil
}

// SetSpeciesMass sets the amount of a species from its mass, in kg unless a unit is given.
func (s *State) SetSpeciesMass(name string, value float64, unit ...string) error {
	i, err := s.sys.SpeciesIndex(name)
	if err != nil {
		return err
	}
	v, err := toSI(value, "kg", unit)
	if err != nil {
		return err
	}
	mm := s.sys.species[i].mm
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) || mm <= 0 {
		return fmt.Errorf("%w: mass of %q", ErrNegative, name)
	}
	s.n[i] = v / mm
	return nil
}

// SpeciesAmount returns the amount of the named species in mol.
func (s *State) SpeciesAmount(name string) (float64, error) {
	i, err := s.sys.SpeciesIndex(name)
	if err != nil {
		return 0, err
	}
	return s.n[i], nil
}

// Amount returns the amount of species i in mol.
func (s *State) Amount(i int) float64 { return s.n[i] }

// Amounts returns a copy of the species amounts.
func (s *State) Amounts() []float64 { return append([]float64(nil), s.n...) }

// AmountsView returns the species amounts without copying. Callers must not retain it.
func (s *State) AmountsView() []float64 { return s.n }

// SetAmounts replaces all species amounts.
func (s *State) SetAmounts(n []float64) error {
	if len(n) != len(s.n) {
		return fmt.Errorf("chemsys: %d amounts for %d species", len(n), len(s.n))
	}
	for i, v := range n {
		if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%w: amount of %q", ErrNegative, s.sys.species[i].name)
		}
	}
	copy(s.n, n)
	return nil
}

// ComponentAmounts returns the amounts of elements followed by the charge, 𝐛 = 𝐀𝐧.
func (s *State) ComponentAmounts() []float64 { return s.sys.ComponentAmounts(s.n) }

// ElementAmount returns the amount of an element in mol.
func (s *State) ElementAmount(symbol string) (float64, error) {
	i, err := s.sys.ElementIndex(symbol)
	if err != nil {
		return 0, err
	}
	return s.ComponentAmounts()[i], nil
}

// Charge returns the total electric charge in mol.
func (s *State) Charge() float64 {
	b := s.ComponentAmounts()
	return b[len(b)-1]
}

// Assign overwrites temperature, pressure and amounts without validation.
// It is meant for solvers writing back an iterate of matching dimension.
func (s *State) Assign(T, P float64, n []float64) {
	if len(n) != len(s.n) {
		panic("bound check error")
	}
	s.t, s.p = T, P
	copy(s.n, n)
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := *s
	c.n = append([]float64(nil), s.n...)
	return &c
}

func toSI(value float64, si string, unit []string) (float64, error) {
	if len(unit) == 0 || unit[0] == si {
		return value, nil
	}
	v, err := units.Convert(value, unit[0], si)
	if err != nil {
		return 0, fmt.Errorf("chemsys: %w", err)
	}
	return v, nil
}
