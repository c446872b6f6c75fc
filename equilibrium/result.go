// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"fmt"
	"slices"
)

// Summary reports how a solve ended.
type Summary struct {
	Status  Status
	NumIter int // Number of Newton iterations.
}

// Result is the outcome of one Solve. The equilibrium amounts, temperature and pressure
// are written to the state passed to Solve.
type Result struct {
	OK        bool      // Whether the solve converged.
	Residuals Residuals // Final residual norms.
	Summary             // Solve summary.

	specs *Specs
	q     []float64
	sens  *Sensitivity
}

// Succeeded reports whether the solve converged.
func (r *Result) Succeeded() bool { return r.OK }

// TitrantAmount returns the amount (mol) of a titrant that entered the system.
// A negative amount left the system.
func (r *Result) TitrantAmount(name string) (float64, error) {
	for t, tit := range r.specs.titrants {
		if tit.Name == name {
			return r.q[t], nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTitrant, name)
}

// TitrantAmounts returns the amounts of all titrants ordered as Specs.Titrants.
func (r *Result) TitrantAmounts() []float64 {
	return slices.Clone(r.q)
}

// Sensitivity returns the derivatives of the solution, or nil when Options.Sensitivity
// is disabled or the solve did not converge.
func (r *Result) Sensitivity() *Sensitivity { return r.sens }
