// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package units converts user supplied quantities to SI.
package units

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownUnit is returned for unit symbols not in the table.
	ErrUnknownUnit = errors.New("units: unknown unit")
	// ErrIncompatible is returned when two units measure different dimensions.
	ErrIncompatible = errors.New("units: incompatible dimensions")
)

// Dimension classifies what a unit measures.
type Dimension int

const (
	Dimensionless Dimension = iota
	Temperature
	Pressure
	Volume
	Energy
	Entropy
	Amount
	Mass
	MolarEnergy
)

type unit struct {
	dim    Dimension
	factor float64 // SI = factor·(value + offset)
	offset float64
}

var table = map[string]unit{
	"":       {Dimensionless, 1, 0},
	"1":      {Dimensionless, 1, 0},
	"K":      {Temperature, 1, 0},
	"degC":   {Temperature, 1, 273.15},
	"°C":     {Temperature, 1, 273.15},
	"degF":   {Temperature, 5.0 / 9.0, 459.67},
	"Pa":     {Pressure, 1, 0},
	"kPa":    {Pressure, 1e3, 0},
	"MPa":    {Pressure, 1e6, 0},
	"GPa":    {Pressure, 1e9, 0},
	"bar":    {Pressure, 1e5, 0},
	"atm":    {Pressure, 101325, 0},
	"psi":    {Pressure, 6894.757293168361, 0},
	"m3":     {Volume, 1, 0},
	"cm3":    {Volume, 1e-6, 0},
	"L":      {Volume, 1e-3, 0},
	"mL":     {Volume, 1e-6, 0},
	"J":      {Energy, 1, 0},
	"kJ":     {Energy, 1e3, 0},
	"MJ":     {Energy, 1e6, 0},
	"cal":    {Energy, 4.184, 0},
	"kcal":   {Energy, 4184, 0},
	"J/K":    {Entropy, 1, 0},
	"kJ/K":   {Entropy, 1e3, 0},
	"mol":    {Amount, 1, 0},
	"mmol":   {Amount, 1e-3, 0},
	"umol":   {Amount, 1e-6, 0},
	"kmol":   {Amount, 1e3, 0},
	"kg":     {Mass, 1, 0},
	"g":      {Mass, 1e-3, 0},
	"mg":     {Mass, 1e-6, 0},
	"J/mol":  {MolarEnergy, 1, 0},
	"kJ/mol": {MolarEnergy, 1e3, 0},
}

// Lookup returns the dimension of a unit symbol.
func Lookup(symbol string) (Dimension, error) {
	u, ok := table[strings.TrimSpace(symbol)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
	}
	return u.dim, nil
}

// ToSI converts value expressed in unit symbol into its SI counterpart.
func ToSI(value float64, symbol string) (float64, error) {
	u, ok := table[strings.TrimSpace(symbol)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
	}
	return u.factor * (value + u.offset), nil
}

// Convert converts value from one unit to another of the same dimension.
func Convert(value float64, from, to string) (float64, error) {
	f, ok := table[strings.TrimSpace(from)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, from)
	}
	t, ok := table[strings.TrimSpace(to)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}
	if f.dim != t.dim {
		return 0, fmt.Errorf("%w: %q to %q", ErrIncompatible, from, to)
	}
	si := f.factor * (value + f.offset)
	return si/t.factor - t.offset, nil
}
