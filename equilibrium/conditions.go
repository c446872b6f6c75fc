// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"fmt"
	"math"
	"slices"

	"github.com/curioloop/gibbs/units"
	"go.uber.org/multierr"
)

// Bound is a closed interval. Infinite ends mean no bound.
type Bound struct {
	Lower, Upper float64
}

// Conditions hold the values of the inputs declared in a Specs and optional bounds
// on temperature, pressure and species amounts. One Conditions belongs to one problem.
type Conditions struct {
	specs  *Specs
	values []float64
	set    []bool
	temp   Bound
	pres   Bound
	amount []Bound
	b      []float64
	errs   error
}

// NewConditions creates conditions for the inputs of specs with no value set.
func NewConditions(specs *Specs) *Conditions {
	ns := specs.sys.NumSpecies()
	c := &Conditions{
		specs:  specs,
		values: make([]float64, len(specs.inputs)),
		set:    make([]bool, len(specs.inputs)),
		temp:   Bound{0, math.Inf(1)},
		pres:   Bound{0, math.Inf(1)},
		amount: make([]Bound, ns),
	}
	for i := range c.amount {
		c.amount[i] = Bound{0, math.Inf(1)}
	}
	return c
}

// Specs returns the specification the conditions belong to.
func (c *Conditions) Specs() *Specs { return c.specs }

// Set assigns the value of an input. A unit, when given, is converted to the SI unit of the input.
func (c *Conditions) Set(name string, value float64, unit ...string) error {
	k, err := c.specs.InputIndex(name)
	if err != nil {
		return c.fail(err)
	}
	if len(unit) > 0 && unit[0] != c.specs.inputs[k].Unit {
		v, err := units.Convert(value, unit[0], c.specs.inputs[k].Unit)
		if err != nil {
			return c.fail(fmt.Errorf("equilibrium: input %q: %w", name, err))
		}
		value = v
	}
	c.values[k], c.set[k] = value, true
	return nil
}

// Temperature sets the temperature input T, in K unless a unit is given.
func (c *Conditions) Temperature(value float64, unit ...string) error {
	return c.Set("T", value, unit...)
}

// Pressure sets the pressure input P, in Pa unless a unit is given.
func (c *Conditions) Pressure(value float64, unit ...string) error {
	return c.Set("P", value, unit...)
}

// Volume sets the volume input V, in m3 unless a unit is given.
func (c *Conditions) Volume(value float64, unit ...string) error {
	return c.Set("V", value, unit...)
}

// InternalEnergy sets the internal energy input U, in J unless a unit is given.
func (c *Conditions) InternalEnergy(value float64, unit ...string) error {
	return c.Set("U", value, unit...)
}

// Enthalpy sets the enthalpy input H, in J unless a unit is given.
func (c *Conditions) Enthalpy(value float64, unit ...string) error {
	return c.Set("H", value, unit...)
}

// Charge sets the electric charge input, in mol unless a unit is given.
func (c *Conditions) Charge(value float64, unit ...string) error {
	return c.Set("charge", value, unit...)
}

// PH sets the pH input.
func (c *Conditions) PH(value float64) error {
	return c.Set("pH", value)
}

// Value returns the value of an input and whether it was set.
func (c *Conditions) Value(name string) (float64, bool) {
	k, err := c.specs.InputIndex(name)
	if err != nil || !c.set[k] {
		return math.NaN(), false
	}
	return c.values[k], true
}

// SetLowerBound bounds "T", "P" or the amount of a named species from below.
func (c *Conditions) SetLowerBound(variable string, value float64, unit ...string) error {
	b, si, err := c.bound(variable)
	if err == nil {
		value, err = toSI(value, si, unit)
	}
	if err != nil {
		return c.fail(err)
	}
	b.Lower = value
	return nil
}

// SetUpperBound bounds "T", "P" or the amount of a named species from above.
func (c *Conditions) SetUpperBound(variable string, value float64, unit ...string) error {
	b, si, err := c.bound(variable)
	if err == nil {
		value, err = toSI(value, si, unit)
	}
	if err != nil {
		return c.fail(err)
	}
	b.Upper = value
	return nil
}

func (c *Conditions) bound(variable string) (*Bound, string, error) {
	switch variable {
	case "T":
		return &c.temp, "K", nil
	case "P":
		return &c.pres, "Pa", nil
	}
	i, err := c.specs.sys.SpeciesIndex(variable)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownVariable, variable)
	}
	return &c.amount[i], "mol", nil
}

// SetInitialComponentAmounts overrides the component amounts 𝐛 (elements followed by charge)
// otherwise taken from the initial state.
func (c *Conditions) SetInitialComponentAmounts(b []float64) error {
	if nc := c.specs.sys.NumComponents(); len(b) != nc {
		return c.fail(fmt.Errorf("%w: %d component amounts for %d components", ErrDimension, len(b), nc))
	}
	c.b = slices.Clone(b)
	return nil
}

func (c *Conditions) fail(err error) error {
	c.errs = multierr.Append(c.errs, err)
	return err
}

// Validate reports every missing input, non-finite value and inconsistent bound,
// together with the errors of previous setter calls, as one *ConfigurationError.
func (c *Conditions) Validate() error {
	err := c.errs
	for k, in := range c.specs.inputs {
		switch v := c.values[k]; {
		case !c.set[k]:
			err = multierr.Append(err, fmt.Errorf("%w: %q", ErrMissingInput, in.Name))
		case math.IsNaN(v) || math.IsInf(v, 0):
			err = multierr.Append(err, fmt.Errorf("%w: %q = %v", ErrInvalidValue, in.Name, v))
		}
	}
	check := func(name string, b Bound) {
		if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) || b.Lower > b.Upper {
			err = multierr.Append(err, fmt.Errorf("%w: %s in [%v, %v]", ErrInvalidBounds, name, b.Lower, b.Upper))
		}
	}
	check("T", c.temp)
	check("P", c.pres)
	for i, b := range c.amount {
		check(c.specs.sys.Species(i).Name(), b)
	}
	for i, v := range c.b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			err = multierr.Append(err, fmt.Errorf("%w: amount of component %q", ErrInvalidValue, c.specs.sys.ComponentName(i)))
		}
	}
	return newConfigurationError(err)
}

func toSI(value float64, si string, unit []string) (float64, error) {
	if len(unit) == 0 || unit[0] == si {
		return value, nil
	}
	return units.Convert(value, unit[0], si)
}
