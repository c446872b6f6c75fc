// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chemsys

import "fmt"

// Phase is an ordered set of species sharing one activity model.
type Phase struct {
	name    string
	species []Species
	model   ActivityModel
}

// NewPhase creates a phase. Species names must be unique within the phase.
func NewPhase(name string, model ActivityModel, species ...Species) (Phase, error) {
	switch {
	case name == "":
		return Phase{}, fmt.Errorf("%w: phase name", ErrEmpty)
	case len(species) == 0:
		return Phase{}, fmt.Errorf("%w: phase %q has no species", ErrEmpty, name)
	case model == nil:
		return Phase{}, fmt.Errorf("%w: activity model of phase %q", ErrNoModel, name)
	}
	seen := make(map[string]bool, len(species))
	for _, s := range species {
		if seen[s.name] {
			return Phase{}, fmt.Errorf("%w: species %q in phase %q", ErrDuplicate, s.name, name)
		}
		seen[s.name] = true
	}
	return Phase{
		name:    name,
		species: append([]Species(nil), species...),
		model:   model,
	}, nil
}

// MustNewPhase is like NewPhase but panics on error.
func MustNewPhase(name string, model ActivityModel, species ...Species) Phase {
	p, err := NewPhase(name, model, species...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Phase) Name() string                 { return p.name }
func (p Phase) NumSpecies() int              { return len(p.species) }
func (p Phase) Species(i int) Species        { return p.species[i] }
func (p Phase) ActivityModel() ActivityModel { return p.model }

// IsAqueous reports whether the phase holds aqueous species with an H2O solvent.
func (p Phase) IsAqueous() bool {
	for _, s := range p.species {
		if s.state == Aqueous {
			return WaterIndex(p.species) >= 0
		}
	}
	return false
}
