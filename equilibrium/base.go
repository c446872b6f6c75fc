// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package equilibrium computes multiphase chemical equilibrium by minimizing the Gibbs
// energy of a system under conservation of elements and charge and under any number of
// user declared equality constraints.
//
// The unknowns are the species amounts 𝐧, plus the temperature and pressure when they are
// not given, plus one amount per titrant (substance the system is open to):
//
//	minimize    G(𝐧; T, P)/RT
//	subject to  𝐀𝐧 - 𝐖𝐪 = 𝐛
//	            𝐡(𝐧, T, P, 𝐪) = 0
//	            𝐥 ≤ 𝐧 ≤ 𝐮
//
// The problem is solved by a primal-dual interior-point Newton method whose derivatives are
// computed exactly with forward-mode dual numbers.
package equilibrium

import "fmt"

const (
	zero = 0.0
	one  = 1.0
	half = 0.5
)

// Status is the final state of a solve.
type Status int

const (
	// Converged all residuals are below tolerance.
	Converged Status = iota
	// MaxIterationsExceeded the iteration limit was reached before convergence.
	MaxIterationsExceeded
	// StepFailed no acceptable step could be computed, typically because the
	// linear system stayed singular after regularization.
	StepFailed
	// EvaluationFailed a thermodynamic model panicked or returned non-finite values
	// at an accepted iterate.
	EvaluationFailed
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterationsExceeded:
		return "max iterations exceeded"
	case StepFailed:
		return "step failed"
	case EvaluationFailed:
		return "evaluation failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}
