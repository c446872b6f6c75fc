// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"fmt"
	"math"
	"slices"

	"github.com/curioloop/gibbs/autodiff"
	"github.com/curioloop/gibbs/chemsys"
	"github.com/curioloop/gibbs/linalg"
	"github.com/curioloop/gibbs/props"
	"go.uber.org/multierr"
)

// Solver finds chemical equilibrium states for one Specs.
//
// A Solver owns scratch buffers and must not be used by concurrent goroutines.
// Multiple solvers can share one Specs and its System.
type Solver struct {
	specs *Specs
	opts  Options
	log   *Logger
	eval  *props.Evaluator

	ns, nq, np int // species, titrants, controls
	nx, mb, nk int // unknowns (𝐧, 𝐩), independent conservation rows, Newton system order

	iT, iP, iq int // positions of T̂, P̂ and the first titrant in 𝐱 (-1 when absent)
	wT, wP     int // input positions of a known T and P (-1 when unknown)

	rows  []int     // independent rows of [𝐀 | -𝐖]
	abar  []float64 // mb × ns selected rows of 𝐀
	apbar []float64 // mb × np conservation coefficients of the controls

	pb   problem
	work workspace
	warm struct {
		ok      bool
		y, z, w []float64
	}
}

const (
	// Relative lift of the starting amounts off their lower bounds.
	startShift = 1e-6
	// Relative lift when warm starting from a previous solution.
	warmShift = 1e-14
	// Ratio of the starting barrier 𝜏₀ to the lift 𝛿.
	centring = 1e-2
)

// problem holds the data of one solve.
type problem struct {
	w       []float64 // input values
	b       []float64 // selected component amounts
	lower   []float64 // species lower bounds, never below ε
	upper   []float64 // species upper bounds
	hscale  []float64 // constraint residual scales
	tscale  float64
	pscale  float64
	tbound  Bound // bounds of T̂
	pbound  Bound // bounds of P̂
	tau     float64
	tauMin  float64
	nupper  int // number of finite upper bounds
	iterate int
}

type workspace struct {
	x, dx, xt []float64 // nx
	y, dy, yt []float64 // mb
	z, dz, zt []float64 // ns
	u, du, ut []float64 // ns, multipliers of the upper bounds

	g, dg  []float64 // 𝒈 = 𝝁/RT and its derivative along one direction
	h, dh  []float64 // 𝐡 scaled and its derivative along one direction
	hg, jh []float64 // ∂𝒈/∂𝐱 (ns × nx) and ∂𝐡/∂𝐱 (np × nx)

	f   []float64 // 𝑭
	kkt []float64 // nk × nk
	sol []float64 // nk
	lu  linalg.LU

	nr, qr, wr []autodiff.Real
}

// NewSolver creates a solver for specs. A nil opts selects DefaultOptions.
// The specification is checked here: builder errors and a constraint count that differs
// from the number of controls are reported as a *ConfigurationError.
func NewSolver(specs *Specs, opts *Options) (*Solver, error) {
	if specs == nil || specs.sys == nil {
		return nil, newConfigurationError(fmt.Errorf("%w: nil specs", ErrMismatch))
	}
	if err := specs.validate(); err != nil {
		return nil, newConfigurationError(err)
	}

	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if err := o.normalize(); err != nil {
		return nil, err
	}

	sys := specs.sys
	s := &Solver{
		specs: specs,
		opts:  o,
		log:   o.Logger,
		eval:  props.NewEvaluator(sys, o.Epsilon),
		ns:    sys.NumSpecies(),
		nq:    len(specs.titrants),
		np:    specs.NumControls(),
	}
	s.nx = s.ns + s.np
	s.iT, s.iP, s.iq = -1, -1, -1
	s.wT, s.wP = -1, -1

	k := s.ns
	if specs.knownT {
		s.wT = specs.index["T"]
	} else {
		s.iT, k = k, k+1
	}
	if specs.knownP {
		s.wP = specs.index["P"]
	} else {
		s.iP, k = k, k+1
	}
	if s.nq > 0 {
		s.iq = k
	}

	// conservation rows [𝐀 | -𝐖] reduced to a linearly independent subset
	nc, ns := sys.NumComponents(), s.ns
	a := sys.FormulaMatrix()
	aw := make([]float64, nc*(ns+s.nq))
	copy(aw, a)
	for t, tit := range specs.titrants {
		for c := range nc {
			aw[c+(ns+t)*nc] = -tit.coef[c]
		}
	}
	s.rows = linalg.IndependentRows(aw, nc, ns+s.nq, 1e-10)
	s.mb = len(s.rows)
	s.nk = s.ns + s.mb + s.np

	s.abar = make([]float64, s.mb*ns)
	s.apbar = make([]float64, s.mb*s.np)
	for r, c := range s.rows {
		linalg.Copy(ns, a[c:], nc, s.abar[r:], s.mb)
		for t := range s.nq {
			s.apbar[r+(s.iq-ns+t)*s.mb] = aw[c+(ns+t)*nc]
		}
	}

	s.alloc()
	return s, nil
}

func (s *Solver) alloc() {
	ns, nx, mb, np, nk := s.ns, s.nx, s.mb, s.np, s.nk
	ni := len(s.specs.inputs)
	vec := func(n int) []float64 { return make([]float64, n) }

	ws := &s.work
	ws.x, ws.dx, ws.xt = vec(nx), vec(nx), vec(nx)
	ws.y, ws.dy, ws.yt = vec(mb), vec(mb), vec(mb)
	ws.z, ws.dz, ws.zt = vec(ns), vec(ns), vec(ns)
	ws.u, ws.du, ws.ut = vec(ns), vec(ns), vec(ns)
	ws.g, ws.dg = vec(ns), vec(ns)
	ws.h, ws.dh = vec(np), vec(np)
	ws.hg, ws.jh = vec(ns*nx), vec(np*nx)
	ws.f = vec(ns + mb + np + 2*ns)
	ws.kkt, ws.sol = vec(nk*nk), vec(nk)
	ws.nr = make([]autodiff.Real, ns)
	ws.qr = make([]autodiff.Real, s.nq)
	ws.wr = make([]autodiff.Real, ni)

	pb := &s.pb
	pb.w, pb.b = vec(ni), vec(mb)
	pb.lower, pb.upper = vec(ns), vec(ns)
	pb.hscale = vec(np)
}

// Specs returns the specification the solver was created for.
func (s *Solver) Specs() *Specs { return s.specs }

// Options returns the effective options of the solver.
func (s *Solver) Options() Options { return s.opts }

// Solve computes the equilibrium state under the given conditions, starting from state
// and updating it in place.
//
// The state must belong to the very System the specs were built on: systems are compared
// by identity, and a state of another System, even an identical one, is a mismatch.
//
// Configuration problems are returned as a *ConfigurationError before any iteration.
// Convergence failures are reported by Result.Succeeded; the state then holds the last iterate.
func (s *Solver) Solve(state *chemsys.State, cond *Conditions) (*Result, error) {
	if err := s.setup(state, cond); err != nil {
		return nil, err
	}

	pb, ws, log := &s.pb, &s.work, s.log
	tol, maxIter := s.opts.Stop.Tolerance, s.opts.Stop.MaxIterations

	var res Residuals
	status := MaxIterationsExceeded
	for pb.iterate = 0; ; pb.iterate++ {
		if err := s.linearize(ws.x); err != nil {
			if log.enable(LogTrace) {
				log.log("  %v\n", err)
			}
			status = EvaluationFailed
			break
		}

		var merit float64
		merit, res = s.residual(ws.x, ws.y, ws.z, ws.u, pb.tau)
		if math.IsNaN(merit) || math.IsInf(merit, 0) {
			status = EvaluationFailed
			break
		}
		if res.Max() < tol {
			status = Converged
			break
		}
		if pb.iterate >= maxIter {
			break
		}

		if err := s.direction(); err != nil {
			if log.enable(LogTrace) {
				log.log("  %v\n", err)
			}
			status = StepFailed
			break
		}
		alpha, ok := s.lineSearch(merit)
		if !ok {
			status = StepFailed
			break
		}
		s.updateBarrier()

		if log.enable(LogIter) {
			log.log("iter %4d  error %.3e  alpha %.3e  tau %.3e\n", pb.iterate, res.Max(), alpha, pb.tau)
		}
	}

	T, P := s.temperature(ws.x), s.pressure(ws.x)
	state.Assign(T, P, ws.x[:s.ns])

	result := &Result{
		OK:        status == Converged,
		Summary:   Summary{Status: status, NumIter: pb.iterate},
		Residuals: res,
		specs:     s.specs,
	}
	if s.nq > 0 {
		result.q = slices.Clone(ws.x[s.iq : s.iq+s.nq])
	}

	if result.OK {
		s.warm.ok = true
		s.warm.y = append(s.warm.y[:0], ws.y...)
		s.warm.z = append(s.warm.z[:0], ws.z...)
		s.warm.w = append(s.warm.w[:0], ws.u...)
		if s.opts.Sensitivity {
			sens, err := s.sensitivity()
			if err != nil && log.enable(LogTrace) {
				log.log("  sensitivity: %v\n", err)
			}
			result.sens = sens
		}
	}

	if log.enable(LogLast) {
		log.log("status %s  iter %d  error %.3e  T %.6g K  P %.6g Pa\n", status, pb.iterate, res.Max(), T, P)
	}
	return result, nil
}

// setup validates the conditions and initializes the iterate.
func (s *Solver) setup(state *chemsys.State, cond *Conditions) error {
	if state == nil || cond == nil || cond.specs != s.specs || state.System() != s.specs.sys {
		return newConfigurationError(ErrMismatch)
	}
	if err := cond.Validate(); err != nil {
		return err
	}

	pb, ws := &s.pb, &s.work
	ns, eps := s.ns, s.opts.Epsilon
	copy(pb.w, cond.values)

	T, P := state.Temperature(), state.Pressure()
	if s.wT >= 0 {
		T = pb.w[s.wT]
	}
	if s.wP >= 0 {
		P = pb.w[s.wP]
	}

	var err error
	if !(T > zero) {
		err = multierr.Append(err, fmt.Errorf("%w: temperature %v K", ErrInvalidValue, T))
	}
	if !(P > zero) {
		err = multierr.Append(err, fmt.Errorf("%w: pressure %v Pa", ErrInvalidValue, P))
	}

	pb.nupper = 0
	for i := range ns {
		bnd := cond.amount[i]
		pb.lower[i], pb.upper[i] = math.Max(eps, bnd.Lower), bnd.Upper
		if !(pb.upper[i] > pb.lower[i]) {
			err = multierr.Append(err, fmt.Errorf("%w: amount of %q in [%v, %v]",
				ErrInvalidBounds, s.specs.sys.Species(i).Name(), pb.lower[i], pb.upper[i]))
		}
		if !math.IsInf(pb.upper[i], 1) {
			pb.nupper++
		}
	}
	if err != nil {
		return newConfigurationError(err)
	}

	b := cond.b
	if b == nil {
		b = state.ComponentAmounts()
	}
	for r, c := range s.rows {
		pb.b[r] = b[c]
	}

	for m, c := range s.specs.constraints {
		pb.hscale[m] = one
		if c.Scale != "" {
			if v := math.Abs(pb.w[s.specs.index[c.Scale]]); v > zero {
				pb.hscale[m] = v
			}
		}
	}

	// scaled temperature and pressure start from 1 inside their bounds
	pb.tscale, pb.tbound = interior(T, cond.temp)
	pb.pscale, pb.pbound = interior(P, cond.pres)
	if s.iT >= 0 {
		ws.x[s.iT] = one
	}
	if s.iP >= 0 {
		ws.x[s.iP] = one
	}
	for t := range s.nq {
		ws.x[s.iq+t] = zero
	}

	// species amounts strictly inside their bounds, lifted off the floor by 𝛿
	warm := s.opts.WarmStart && s.warm.ok
	shift := startShift
	if warm {
		shift = warmShift
	}
	n := state.AmountsView()
	delta := shift * math.Max(one, floats(n).sum())
	for i := range ns {
		l, u := pb.lower[i], pb.upper[i]
		v := math.Max(n[i], l+delta)
		if v >= u-delta {
			v = math.Min(v, u-delta)
			if v <= l {
				v = half * (l + u)
			}
		}
		ws.x[i] = v
	}

	// bound multipliers centred on 𝜏₀ so that every complementarity product starts equal
	tau0 := centring * delta
	if warm {
		copy(ws.y, s.warm.y)
		copy(ws.z, s.warm.z)
		copy(ws.u, s.warm.w)
		for i := range ns {
			switch {
			case math.IsInf(pb.upper[i], 1):
				ws.u[i] = zero
			case !(ws.u[i] > zero):
				ws.u[i] = tau0 / (pb.upper[i] - ws.x[i])
			}
		}
	} else {
		linalg.Zero(ws.y)
		for i := range ns {
			ws.z[i] = tau0 / (ws.x[i] - pb.lower[i])
			ws.u[i] = zero
			if !math.IsInf(pb.upper[i], 1) {
				ws.u[i] = tau0 / (pb.upper[i] - ws.x[i])
			}
		}
	}

	pb.tauMin = s.opts.Barrier.Min
	pb.tau = math.Max(pb.tauMin, s.opts.Barrier.Sigma*s.meanComplementarity(ws.x, ws.z, ws.u))
	return nil
}

// interior returns the scale of a state variable and its bounds in scaled units.
// A start outside the bounds is moved inside.
func interior(v float64, b Bound) (float64, Bound) {
	switch {
	case v <= b.Lower && !math.IsInf(b.Upper, 1):
		v = half * (b.Lower + b.Upper)
	case v <= b.Lower:
		v = b.Lower*1.1 + 1
	case v >= b.Upper:
		v = half * (b.Lower + b.Upper)
	}
	return v, Bound{b.Lower / v, b.Upper / v}
}

func (s *Solver) temperature(x []float64) float64 {
	if s.iT >= 0 {
		return x[s.iT] * s.pb.tscale
	}
	return s.pb.w[s.wT]
}

func (s *Solver) pressure(x []float64) float64 {
	if s.iP >= 0 {
		return x[s.iP] * s.pb.pscale
	}
	return s.pb.w[s.wP]
}

type floats []float64

func (f floats) sum() (s float64) {
	for _, v := range f {
		s += v
	}
	return
}

func (f floats) finite() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
