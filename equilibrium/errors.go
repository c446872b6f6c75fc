// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"errors"

	"go.uber.org/multierr"
)

var (
	// ErrDuplicateInput is returned when an input name is declared twice.
	ErrDuplicateInput = errors.New("equilibrium: duplicate input")
	// ErrDuplicateTitrant is returned when a system is opened twice to the same substance.
	ErrDuplicateTitrant = errors.New("equilibrium: duplicate titrant")
	// ErrDuplicateConstraint is returned when a constraint ID is declared twice.
	ErrDuplicateConstraint = errors.New("equilibrium: duplicate constraint")
	// ErrUnknownInput is returned when a name does not match any declared input.
	ErrUnknownInput = errors.New("equilibrium: unknown input")
	// ErrUnknownTitrant is returned when a name does not match any titrant.
	ErrUnknownTitrant = errors.New("equilibrium: unknown titrant")
	// ErrUnknownVariable is returned when a bound refers to neither T, P nor a species.
	ErrUnknownVariable = errors.New("equilibrium: unknown variable")
	// ErrMissingInput is returned when a declared input has no value.
	ErrMissingInput = errors.New("equilibrium: missing input value")
	// ErrInvalidValue is returned for non-finite input values.
	ErrInvalidValue = errors.New("equilibrium: invalid input value")
	// ErrInvalidBounds is returned when a lower bound exceeds the upper bound.
	ErrInvalidBounds = errors.New("equilibrium: inconsistent bounds")
	// ErrConstraintCount is returned when the number of equation constraints differs from
	// the number of control variables (unknown T, unknown P and titrant amounts).
	ErrConstraintCount = errors.New("equilibrium: constraint count does not match control variables")
	// ErrMismatch is returned when state, conditions and solver do not share one system and specs.
	ErrMismatch = errors.New("equilibrium: mismatched system or specs")
	// ErrDimension is returned when a vector has the wrong size.
	ErrDimension = errors.New("equilibrium: dimension mismatch")
	// ErrInvalidOptions is returned for out of range options.
	ErrInvalidOptions = errors.New("equilibrium: invalid options")
)

// ConfigurationError aggregates every problem found while validating a specification
// or its conditions. It is always returned before the first iteration.
//
// errors.Is reports a match for any of the aggregated errors.
type ConfigurationError struct {
	err error
}

func newConfigurationError(err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{err: err}
}

func (e *ConfigurationError) Error() string {
	return "equilibrium: configuration error: " + e.err.Error()
}

// Errors returns the individual problems.
func (e *ConfigurationError) Errors() []error {
	return multierr.Errors(e.err)
}

func (e *ConfigurationError) Unwrap() []error {
	return e.Errors()
}
