// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chemsys

import (
	"fmt"
	"sort"
)

// ChargeComponent is the name of the charge row in the formula matrix.
const ChargeComponent = "Z"

// System is an immutable catalog of phases, species and elements.
//
// Species are ordered phase by phase. Elements are those present in any species,
// sorted by symbol. The components are the elements followed by the electric charge.
type System struct {
	phases   []Phase
	species  []Species
	phaseOf  []int
	offsets  []int // phase i owns species offsets[i] ≤ k < offsets[i+1]
	elements []Element
	formula  []float64 // (E+1)×N column-major
	index    map[string]int
	phaseIdx map[string]int
	elemIdx  map[string]int
}

// NewSystem builds a system from its phases. Species names must be unique across phases.
func NewSystem(phases ...Phase) (*System, error) {
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: system has no phases", ErrEmpty)
	}

	sys := &System{
		phases:   append([]Phase(nil), phases...),
		offsets:  make([]int, 0, len(phases)+1),
		index:    map[string]int{},
		phaseIdx: map[string]int{},
		elemIdx:  map[string]int{},
	}

	symbols := map[string]bool{}
	for ip, p := range phases {
		if _, dup := sys.phaseIdx[p.name]; dup {
			return nil, fmt.Errorf("%w: phase %q", ErrDuplicate, p.name)
		}
		if len(p.species) == 0 || p.model == nil {
			return nil, fmt.Errorf("%w: phase %q is not initialized", ErrEmpty, p.name)
		}
		sys.phaseIdx[p.name] = ip
		sys.offsets = append(sys.offsets, len(sys.species))
		for _, s := range p.species {
			if _, dup := sys.index[s.name]; dup {
				return nil, fmt.Errorf("%w: species %q", ErrDuplicate, s.name)
			}
			sys.index[s.name] = len(sys.species)
			sys.species = append(sys.species, s)
			sys.phaseOf = append(sys.phaseOf, ip)
			for sym := range s.formula.elements {
				symbols[sym] = true
			}
		}
	}
	sys.offsets = append(sys.offsets, len(sys.species))

	syms := make([]string, 0, len(symbols))
	for s := range symbols {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	for i, s := range syms {
		e, _ := LookupElement(s)
		sys.elements = append(sys.elements, e)
		sys.elemIdx[s] = i
	}

	m, n := len(syms)+1, len(sys.species)
	sys.formula = make([]float64, m*n)
	for j, s := range sys.species {
		for sym, c := range s.formula.elements {
			sys.formula[sys.elemIdx[sym]+j*m] = c
		}
		sys.formula[m-1+j*m] = s.formula.charge
	}
	return sys, nil
}

// MustNewSystem is like NewSystem but panics on error.
func MustNewSystem(phases ...Phase) *System {
	s, err := NewSystem(phases...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *System) NumSpecies() int    { return len(s.species) }
func (s *System) NumPhases() int     { return len(s.phases) }
func (s *System) NumElements() int   { return len(s.elements) }
func (s *System) NumComponents() int { return len(s.elements) + 1 }

func (s *System) Species(i int) Species { return s.species[i] }
func (s *System) Phase(i int) Phase     { return s.phases[i] }
func (s *System) Element(i int) Element { return s.elements[i] }

// PhaseOf returns the index of the phase containing species i.
func (s *System) PhaseOf(i int) int { return s.phaseOf[i] }

// PhaseRange returns the species index range [begin, end) of phase i.
func (s *System) PhaseRange(i int) (begin, end int) { return s.offsets[i], s.offsets[i+1] }

// SpeciesIndex returns the index of the named species.
func (s *System) SpeciesIndex(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
	}
	return i, nil
}

// PhaseIndex returns the index of the named phase.
func (s *System) PhaseIndex(name string) (int, error) {
	i, ok := s.phaseIdx[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownPhase, name)
	}
	return i, nil
}

// ElementIndex returns the index of the element symbol among the system elements.
func (s *System) ElementIndex(symbol string) (int, error) {
	i, ok := s.elemIdx[symbol]
	if !ok {
		return -1, fmt.Errorf("%w: %q not in system", ErrUnknownElement, symbol)
	}
	return i, nil
}

// ComponentIndex returns the row of an element symbol or of ChargeComponent in the formula matrix.
func (s *System) ComponentIndex(name string) (int, error) {
	if name == ChargeComponent {
		return len(s.elements), nil
	}
	return s.ElementIndex(name)
}

// ComponentName returns the element symbol of row i of the formula matrix, or ChargeComponent.
func (s *System) ComponentName(i int) string {
	if i == len(s.elements) {
		return ChargeComponent
	}
	return s.elements[i].Symbol
}

// FormulaMatrix returns a copy of the (E+1)×N column-major formula matrix 𝐀 whose entry
// (e, j) is the coefficient of element e in species j and whose last row holds the charges.
func (s *System) FormulaMatrix() []float64 {
	return append([]float64(nil), s.formula...)
}

// FormulaVector returns the component coefficients (elements then charge) of a formula.
// Elements absent from the system make the formula unrepresentable.
func (s *System) FormulaVector(f Formula) ([]float64, error) {
	v := make([]float64, s.NumComponents())
	for sym, c := range f.elements {
		i, err := s.ElementIndex(sym)
		if err != nil {
			return nil, err
		}
		v[i] = c
	}
	v[len(v)-1] = f.charge
	return v, nil
}

// ComponentAmounts computes 𝐛 = 𝐀𝐧 for species amounts n.
func (s *System) ComponentAmounts(n []float64) []float64 {
	m := s.NumComponents()
	b := make([]float64, m)
	for j, nj := range n {
		for i := range m {
			b[i] += s.formula[i+j*m] * nj
		}
	}
	return b
}
