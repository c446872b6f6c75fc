// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chemsys

import "fmt"

// AggregateState is the physical state in which a species exists.
type AggregateState int

const (
	Aqueous AggregateState = iota
	Gas
	Liquid
	Solid
)

func (s AggregateState) String() string {
	switch s {
	case Aqueous:
		return "aqueous"
	case Gas:
		return "gas"
	case Liquid:
		return "liquid"
	case Solid:
		return "solid"
	}
	return fmt.Sprintf("AggregateState(%d)", int(s))
}

// SpeciesAttrs are the attributes used to create a species.
// The formula defaults to the name (state tags such as "(g)" are ignored).
type SpeciesAttrs struct {
	Name    string
	Formula string
	State   AggregateState
	Thermo  StandardThermoModel
}

// Species is an immutable chemical species.
type Species struct {
	name    string
	formula Formula
	state   AggregateState
	thermo  StandardThermoModel
	mm      float64
}

// NewSpecies creates a species from its attributes.
func NewSpecies(attrs SpeciesAttrs) (Species, error) {
	if attrs.Name == "" {
		return Species{}, fmt.Errorf("%w: species name", ErrEmpty)
	}
	if attrs.Thermo == nil {
		return Species{}, fmt.Errorf("%w: standard thermo model of %q", ErrNoModel, attrs.Name)
	}
	src := attrs.Formula
	if src == "" {
		src = attrs.Name
	}
	f, err := ParseFormula(src)
	if err != nil {
		return Species{}, fmt.Errorf("species %q: %w", attrs.Name, err)
	}
	return Species{
		name:    attrs.Name,
		formula: f,
		state:   attrs.State,
		thermo:  attrs.Thermo,
		mm:      f.MolarMass(),
	}, nil
}

// MustNewSpecies is like NewSpecies but panics on error.
func MustNewSpecies(attrs SpeciesAttrs) Species {
	s, err := NewSpecies(attrs)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Species) Name() string                        { return s.name }
func (s Species) Formula() Formula                    { return s.formula }
func (s Species) Charge() float64                     { return s.formula.charge }
func (s Species) AggregateState() AggregateState      { return s.state }
func (s Species) StandardThermo() StandardThermoModel { return s.thermo }

// MolarMass returns the molar mass in kg/mol.
func (s Species) MolarMass() float64 { return s.mm }

// Elements returns the elemental composition (element → coefficient).
func (s Species) Elements() map[string]float64 { return s.formula.Elements() }

func (s Species) String() string { return s.name }
