// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chemsystest provides small chemical systems with tabulated standard properties
// for tests and examples.
//
// Each fixture is built once: repeated calls return the same *chemsys.System, so states
// and equilibrium specs created from separate calls belong to one system.
package chemsystest

import (
	"sync"

	"github.com/curioloop/gibbs/chemsys"
)

// gas builds an ideal gas species from ΔfH°, S° and Cp° at 298.15 K.
// The apparent Gibbs energy ΔfH° - T·S° is used, which differs from ΔfG° by
// element terms only.
func gas(name string, dfH, S, Cp float64) chemsys.Species {
	return chemsys.MustNewSpecies(chemsys.SpeciesAttrs{
		Name:  name,
		State: chemsys.Gas,
		Thermo: chemsys.ConstantCp{
			G0:  dfH - chemsys.Tref*S,
			H0:  dfH,
			Cp0: Cp,
		},
	})
}

// aqueous builds an aqueous species from ΔfG°, ΔfH°, Cp° and V° at 298.15 K.
func aqueous(name string, dfG, dfH, Cp, V float64) chemsys.Species {
	return chemsys.MustNewSpecies(chemsys.SpeciesAttrs{
		Name:  name,
		State: chemsys.Aqueous,
		Thermo: chemsys.ConstantCp{
			G0:  dfG,
			H0:  dfH,
			V0:  V,
			Cp0: Cp,
		},
	})
}

// CombustionGases returns the ideal gas phase {CH4, O2, CO2, CO, H2O, H2}.
var CombustionGases = sync.OnceValue(func() *chemsys.System {
	return chemsys.MustNewSystem(
		chemsys.MustNewPhase("GaseousPhase", chemsys.IdealGas{},
			gas("CH4(g)", -74873, 186.25, 35.69),
			gas("O2(g)", 0, 205.15, 29.38),
			gas("CO2(g)", -393522, 213.79, 37.12),
			gas("CO(g)", -110527, 197.66, 29.14),
			gas("H2O(g)", -241826, 188.84, 33.58),
			gas("H2(g)", 0, 130.68, 28.84),
		),
	)
})

// Brine returns the ideal aqueous phase {H2O(aq), H+, OH-, Na+, Cl-}.
var Brine = sync.OnceValue(func() *chemsys.System {
	return chemsys.MustNewSystem(
		chemsys.MustNewPhase("AqueousPhase", chemsys.IdealAqueous{},
			aqueous("H2O(aq)", -237181, -285830, 75.3, 18.07e-6),
			aqueous("H+", 0, 0, 0, 0),
			aqueous("OH-", -157220, -230015, -148.5, -4.18e-6),
			aqueous("Na+", -261881, -240340, 38.1, -1.2e-6),
			aqueous("Cl-", -131228, -167080, -136.4, 17.8e-6),
		),
	)
})

// CarbonatedBrine returns an aqueous phase with dissolved carbon in equilibrium with a gas phase.
var CarbonatedBrine = sync.OnceValue(func() *chemsys.System {
	return chemsys.MustNewSystem(
		chemsys.MustNewPhase("AqueousPhase", chemsys.IdealAqueous{},
			aqueous("H2O(aq)", -237181, -285830, 75.3, 18.07e-6),
			aqueous("H+", 0, 0, 0, 0),
			aqueous("OH-", -157220, -230015, -148.5, -4.18e-6),
			aqueous("CO2(aq)", -385974, -413260, 243.1, 32.8e-6),
			aqueous("HCO3-", -586845, -689930, -35.4, 24.2e-6),
			aqueous("CO3-2", -527983, -675230, -290.8, -6.1e-6),
			aqueous("Na+", -261881, -240340, 38.1, -1.2e-6),
			aqueous("Cl-", -131228, -167080, -136.4, 17.8e-6),
		),
		chemsys.MustNewPhase("GaseousPhase", chemsys.IdealGas{},
			chemsys.MustNewSpecies(chemsys.SpeciesAttrs{
				Name:   "CO2(g)",
				State:  chemsys.Gas,
				Thermo: chemsys.ConstantCp{G0: -394359, H0: -393509, Cp0: 37.11},
			}),
			chemsys.MustNewSpecies(chemsys.SpeciesAttrs{
				Name:   "H2O(g)",
				State:  chemsys.Gas,
				Thermo: chemsys.ConstantCp{G0: -228572, H0: -241818, Cp0: 33.58},
			}),
		),
	)
})
