// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"fmt"

	"github.com/curioloop/gibbs/autodiff"
	"github.com/curioloop/gibbs/chemsys"
	"github.com/curioloop/gibbs/props"
	"go.uber.org/multierr"
)

// Input is a named scalar whose value is supplied through Conditions.
type Input struct {
	Name string
	Unit string // SI unit symbol, empty for dimensionless inputs
}

// Context is what a constraint function sees: the properties of the current iterate,
// the titrant amounts and the input values. All of them carry the derivative along
// the direction being differentiated.
type Context struct {
	Props *props.Props
	Q     []autodiff.Real // titrant amounts (mol), ordered as Specs.Titrants
	W     []autodiff.Real // input values (SI), ordered as Specs.Inputs
}

// Constraint is an equation h(ctx) = 0 that holds at equilibrium.
type Constraint struct {
	// Unique identifier.
	ID string
	// Residual of the equation.
	Fn func(ctx *Context) autodiff.Real
	// Optional input whose magnitude scales the residual. Unit scale when empty or zero.
	Scale string
}

// Titrant is a substance the system is open to. Its amount 𝒒 is unknown and
// changes the conservation equations into 𝐀𝐧 - 𝐖𝐪 = 𝐛.
type Titrant struct {
	Name    string
	Formula chemsys.Formula
	coef    []float64 // component coefficients
}

// Specs declares the inputs, constraints and titrants of a class of equilibrium problems.
//
// Temperature and pressure are unknown unless Temperature or Pressure is called.
// Every unknown temperature, unknown pressure and titrant needs exactly one constraint.
// Specs must not be modified once a Solver has been created from it; it can then be
// shared by concurrent solvers.
type Specs struct {
	sys         *chemsys.System
	inputs      []Input
	index       map[string]int
	constraints []Constraint
	titrants    []Titrant
	knownT      bool
	knownP      bool
	errs        error
}

// NewSpecs creates an empty specification for a system.
func NewSpecs(sys *chemsys.System) *Specs {
	return &Specs{
		sys:   sys,
		index: map[string]int{},
	}
}

// System returns the chemical system of the specification.
func (s *Specs) System() *chemsys.System { return s.sys }

// Inputs returns the declared input names in declaration order.
func (s *Specs) Inputs() []string {
	names := make([]string, len(s.inputs))
	for i, in := range s.inputs {
		names[i] = in.Name
	}
	return names
}

// NumInputs returns the number of declared inputs.
func (s *Specs) NumInputs() int { return len(s.inputs) }

// InputIndex returns the position of an input.
func (s *Specs) InputIndex(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownInput, name)
	}
	return i, nil
}

// Titrants returns the titrant names in declaration order.
func (s *Specs) Titrants() []string {
	names := make([]string, len(s.titrants))
	for i, t := range s.titrants {
		names[i] = t.Name
	}
	return names
}

// Constraints returns the constraint IDs in declaration order.
func (s *Specs) Constraints() []string {
	ids := make([]string, len(s.constraints))
	for i, c := range s.constraints {
		ids[i] = c.ID
	}
	return ids
}

// IsTemperatureUnknown reports whether the temperature is solved for.
func (s *Specs) IsTemperatureUnknown() bool { return !s.knownT }

// IsPressureUnknown reports whether the pressure is solved for.
func (s *Specs) IsPressureUnknown() bool { return !s.knownP }

// NumControls returns the number of control variables: unknown T, unknown P and titrant amounts.
func (s *Specs) NumControls() int {
	n := len(s.titrants)
	if !s.knownT {
		n++
	}
	if !s.knownP {
		n++
	}
	return n
}

// Err returns the accumulated errors of the builder calls, if any.
func (s *Specs) Err() error { return s.errs }

func (s *Specs) fail(err error) error {
	s.errs = multierr.Append(s.errs, err)
	return err
}

// AddInput declares an input without any constraint.
// Its value is visible to constraints through Context.W.
func (s *Specs) AddInput(name string, unit ...string) error {
	_, err := s.addInput(name, unit...)
	return err
}

func (s *Specs) addInput(name string, unit ...string) (int, error) {
	if name == "" {
		return -1, s.fail(fmt.Errorf("%w: empty name", ErrUnknownInput))
	}
	if _, dup := s.index[name]; dup {
		return -1, s.fail(fmt.Errorf("%w: %q", ErrDuplicateInput, name))
	}
	in := Input{Name: name}
	if len(unit) > 0 {
		in.Unit = unit[0]
	}
	k := len(s.inputs)
	s.index[name] = k
	s.inputs = append(s.inputs, in)
	return k, nil
}

// AddConstraint declares an equation constraint.
func (s *Specs) AddConstraint(c Constraint) error {
	if c.ID == "" || c.Fn == nil {
		return s.fail(fmt.Errorf("%w: constraint %q has no function", ErrUnknownInput, c.ID))
	}
	for _, o := range s.constraints {
		if o.ID == c.ID {
			return s.fail(fmt.Errorf("%w: %q", ErrDuplicateConstraint, c.ID))
		}
	}
	if c.Scale != "" {
		if _, ok := s.index[c.Scale]; !ok {
			return s.fail(fmt.Errorf("%w: scale %q of constraint %q", ErrUnknownInput, c.Scale, c.ID))
		}
	}
	s.constraints = append(s.constraints, c)
	return nil
}

// property declares an input named name and the constraint f(props) = value.
func (s *Specs) property(name, unit string, f func(p *props.Props) autodiff.Real) error {
	k, err := s.addInput(name, unit)
	if err != nil {
		return err
	}
	return s.AddConstraint(Constraint{
		ID:    name,
		Scale: name,
		Fn: func(ctx *Context) autodiff.Real {
			return f(ctx.Props).Sub(ctx.W[k])
		},
	})
}

// Temperature declares the temperature "T" (K) as input.
func (s *Specs) Temperature() error {
	if _, err := s.addInput("T", "K"); err != nil {
		return err
	}
	s.knownT = true
	return nil
}

// Pressure declares the pressure "P" (Pa) as input.
func (s *Specs) Pressure() error {
	if _, err := s.addInput("P", "Pa"); err != nil {
		return err
	}
	s.knownP = true
	return nil
}

// Volume declares the volume "V" (m³) as input.
func (s *Specs) Volume() error {
	return s.property("V", "m3", func(p *props.Props) autodiff.Real { return p.V })
}

// InternalEnergy declares the internal energy "U" (J) as input.
func (s *Specs) InternalEnergy() error {
	return s.property("U", "J", (*props.Props).U)
}

// Enthalpy declares the enthalpy "H" (J) as input.
func (s *Specs) Enthalpy() error {
	return s.property("H", "J", func(p *props.Props) autodiff.Real { return p.H })
}

// GibbsEnergy declares the Gibbs energy "G" (J) as input.
func (s *Specs) GibbsEnergy() error {
	return s.property("G", "J", func(p *props.Props) autodiff.Real { return p.G })
}

// HelmholtzEnergy declares the Helmholtz energy "A" (J) as input.
func (s *Specs) HelmholtzEnergy() error {
	return s.property("A", "J", (*props.Props).A)
}

// Entropy declares the entropy "S" (J/K) as input.
func (s *Specs) Entropy() error {
	return s.property("S", "J/K", (*props.Props).S)
}

// Charge declares the total electric charge "charge" (mol) as input.
func (s *Specs) Charge() error {
	return s.property("charge", "mol", (*props.Props).Charge)
}

// PH declares the pH "pH" of the aqueous phase as input.
func (s *Specs) PH() error {
	if props.HydronIndex(s.sys) < 0 {
		return s.fail(fmt.Errorf("equilibrium: pH: %w: no aqueous H+", chemsys.ErrUnknownSpecies))
	}
	return s.property("pH", "", (*props.Props).PH)
}

// ElementAmount declares the amount "elementAmount[e]" (mol) of an element as input.
func (s *Specs) ElementAmount(symbol string) error {
	e, err := s.sys.ElementIndex(symbol)
	if err != nil {
		return s.fail(err)
	}
	return s.property("elementAmount["+symbol+"]", "mol", func(p *props.Props) autodiff.Real {
		return p.ElementAmount(e)
	})
}

// ElementAmountInPhase declares the amount "elementAmountInPhase[e,phase]" (mol)
// of an element in one phase as input.
func (s *Specs) ElementAmountInPhase(symbol, phase string) error {
	e, err := s.sys.ElementIndex(symbol)
	if err != nil {
		return s.fail(err)
	}
	ip, err := s.sys.PhaseIndex(phase)
	if err != nil {
		return s.fail(err)
	}
	return s.property("elementAmountInPhase["+symbol+","+phase+"]", "mol", func(p *props.Props) autodiff.Real {
		return p.ElementAmountInPhase(e, ip)
	})
}

// PhaseAmount declares the amount "phaseAmount[phase]" (mol) of a phase as input.
func (s *Specs) PhaseAmount(phase string) error {
	ip, err := s.sys.PhaseIndex(phase)
	if err != nil {
		return s.fail(err)
	}
	return s.property("phaseAmount["+phase+"]", "mol", func(p *props.Props) autodiff.Real {
		return p.PhaseAmount[ip]
	})
}

// PhaseVolume declares the volume "phaseVolume[phase]" (m³) of a phase as input.
func (s *Specs) PhaseVolume(phase string) error {
	ip, err := s.sys.PhaseIndex(phase)
	if err != nil {
		return s.fail(err)
	}
	return s.property("phaseVolume["+phase+"]", "m3", func(p *props.Props) autodiff.Real {
		return p.PhaseVolume[ip]
	})
}

// LnActivity declares the ln activity "lnActivity[species]" of a species as input.
func (s *Specs) LnActivity(species string) error {
	i, err := s.sys.SpeciesIndex(species)
	if err != nil {
		return s.fail(err)
	}
	return s.property("lnActivity["+species+"]", "", func(p *props.Props) autodiff.Real {
		return p.LnA[i]
	})
}

// ChemicalPotential declares the chemical potential "chemicalPotential[species]" (J/mol)
// of a species as input.
func (s *Specs) ChemicalPotential(species string) error {
	i, err := s.sys.SpeciesIndex(species)
	if err != nil {
		return s.fail(err)
	}
	return s.property("chemicalPotential["+species+"]", "J/mol", func(p *props.Props) autodiff.Real {
		return p.Mu[i]
	})
}

// OpenTo opens the system to a substance given by its formula, such as "HCl", "CO2",
// "H+" or "Ca+2". The amount of substance entering the system is solved for.
func (s *Specs) OpenTo(formula string) error {
	f, err := chemsys.ParseFormula(formula)
	if err != nil {
		return s.fail(err)
	}
	coef, err := s.sys.FormulaVector(f)
	if err != nil {
		return s.fail(fmt.Errorf("equilibrium: titrant %q: %w", formula, err))
	}
	for _, t := range s.titrants {
		if t.Name == formula || t.Formula.Equivalent(f) {
			return s.fail(fmt.Errorf("%w: %q", ErrDuplicateTitrant, formula))
		}
	}
	s.titrants = append(s.titrants, Titrant{Name: formula, Formula: f, coef: coef})
	return nil
}

// validate checks the structure of the specification.
func (s *Specs) validate() error {
	err := s.errs
	if nc, nh := s.NumControls(), len(s.constraints); nc != nh {
		err = multierr.Append(err, fmt.Errorf("%w: %d constraints for %d controls", ErrConstraintCount, nh, nc))
	}
	return err
}
