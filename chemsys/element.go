// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chemsys describes the chemical system consumed by the equilibrium solver:
// elements, species, phases and the mutable chemical state.
//
// A System is immutable once built and may be shared by concurrent solves.
// A State is owned by one caller at a time.
package chemsys

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownElement = errors.New("chemsys: unknown element")
	ErrUnknownSpecies = errors.New("chemsys: unknown species")
	ErrUnknownPhase   = errors.New("chemsys: unknown phase")
	ErrDuplicate      = errors.New("chemsys: duplicate name")
	ErrBadFormula     = errors.New("chemsys: malformed formula")
	ErrNoModel        = errors.New("chemsys: missing model")
	ErrEmpty          = errors.New("chemsys: empty definition")
	ErrNegative       = errors.New("chemsys: negative or non-finite value")
)

// Element is a chemical element with molar mass in kg/mol.
type Element struct {
	Symbol    string
	Name      string
	MolarMass float64
}

var periodic = map[string]Element{
	"H":  {"H", "Hydrogen", 1.00794e-3},
	"He": {"He", "Helium", 4.002602e-3},
	"Li": {"Li", "Lithium", 6.941e-3},
	"B":  {"B", "Boron", 10.811e-3},
	"C":  {"C", "Carbon", 12.0107e-3},
	"N":  {"N", "Nitrogen", 14.0067e-3},
	"O":  {"O", "Oxygen", 15.9994e-3},
	"F":  {"F", "Fluorine", 18.9984032e-3},
	"Ne": {"Ne", "Neon", 20.1797e-3},
	"Na": {"Na", "Sodium", 22.98977e-3},
	"Mg": {"Mg", "Magnesium", 24.305e-3},
	"Al": {"Al", "Aluminum", 26.981538e-3},
	"Si": {"Si", "Silicon", 28.0855e-3},
	"P":  {"P", "Phosphorus", 30.973761e-3},
	"S":  {"S", "Sulfur", 32.065e-3},
	"Cl": {"Cl", "Chlorine", 35.453e-3},
	"Ar": {"Ar", "Argon", 39.948e-3},
	"K":  {"K", "Potassium", 39.0983e-3},
	"Ca": {"Ca", "Calcium", 40.078e-3},
	"Mn": {"Mn", "Manganese", 54.938049e-3},
	"Fe": {"Fe", "Iron", 55.845e-3},
	"Cu": {"Cu", "Copper", 63.546e-3},
	"Zn": {"Zn", "Zinc", 65.409e-3},
	"Br": {"Br", "Bromine", 79.904e-3},
	"Sr": {"Sr", "Strontium", 87.62e-3},
	"Ba": {"Ba", "Barium", 137.327e-3},
	"U":  {"U", "Uranium", 238.02891e-3},
}

// LookupElement returns the element with the given symbol.
func LookupElement(symbol string) (Element, error) {
	e, ok := periodic[symbol]
	if !ok {
		return Element{}, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
	}
	return e, nil
}
