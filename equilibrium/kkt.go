// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package equilibrium

import (
	"errors"
	"fmt"
	"math"

	"github.com/curioloop/gibbs/autodiff"
	"github.com/curioloop/gibbs/chemsys"
	"github.com/curioloop/gibbs/linalg"
)

var (
	errEvaluation = errors.New("equilibrium: property evaluation failed")
	errNonFinite  = errors.New("equilibrium: non-finite properties")
)

// evaluate computes 𝒈 = 𝝁/RT and the scaled constraints 𝐡 at x into ws.g and ws.h,
// with their derivatives along the unknown xdir or the input wdir into ws.dg and ws.dh.
// A negative direction seeds nothing. Panics of the thermodynamic models are returned as errors.
func (s *Solver) evaluate(x []float64, xdir, wdir int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errEvaluation, r)
		}
	}()

	pb, ws := &s.pb, &s.work
	ns := s.ns

	ndir := -1
	if xdir >= 0 && xdir < ns {
		ndir = xdir
	}
	autodiff.Seed(ws.nr, x[:ns], ndir, one)
	autodiff.Seed(ws.wr, pb.w, wdir, one)
	if s.nq > 0 {
		qdir := -1
		if xdir >= s.iq {
			qdir = xdir - s.iq
		}
		autodiff.Seed(ws.qr, x[s.iq:s.iq+s.nq], qdir, one)
	}

	var T, P autodiff.Real
	if s.iT >= 0 {
		T = autodiff.Const(x[s.iT] * pb.tscale)
		if xdir == s.iT {
			T.D = pb.tscale
		}
	} else {
		T = ws.wr[s.wT]
	}
	if s.iP >= 0 {
		P = autodiff.Const(x[s.iP] * pb.pscale)
		if xdir == s.iP {
			P.D = pb.pscale
		}
	} else {
		P = ws.wr[s.wP]
	}

	p := s.eval.Evaluate(T, P, ws.nr)
	RT := T.Scale(chemsys.R)
	for i := range ns {
		g := p.Mu[i].Div(RT)
		ws.g[i], ws.dg[i] = g.V, g.D
	}

	ctx := Context{Props: p, Q: ws.qr, W: ws.wr}
	for m, c := range s.specs.constraints {
		h := c.Fn(&ctx).Scale(one / pb.hscale[m])
		ws.h[m], ws.dh[m] = h.V, h.D
	}
	return nil
}

// linearize evaluates 𝒈, 𝐡 and their Jacobians ∂𝒈/∂𝐱, ∂𝐡/∂𝐱 at x,
// one seeded evaluation per unknown.
func (s *Solver) linearize(x []float64) error {
	ws := &s.work
	ns, np := s.ns, s.np
	for j := range s.nx {
		if err := s.evaluate(x, j, -1); err != nil {
			return err
		}
		copy(ws.hg[j*ns:(j+1)*ns], ws.dg)
		copy(ws.jh[j*np:(j+1)*np], ws.dh)
	}
	if !floats(ws.g).finite() || !floats(ws.h).finite() ||
		!floats(ws.hg).finite() || !floats(ws.jh).finite() {
		return errNonFinite
	}
	return nil
}

// Residuals are the infinity norms of the optimality conditions at an iterate.
type Residuals struct {
	Stationarity    float64 // ‖𝒈 + 𝐀ᵀ𝐲 - 𝐳 + 𝐰‖∞
	Conservation    float64 // ‖𝐀𝐧 - 𝐖𝐪 - 𝐛‖∞
	Constraint      float64 // ‖𝐡‖∞ with every constraint scaled by its input
	Complementarity float64 // max of (𝐧 - 𝐥)∘𝐳 and (𝐮 - 𝐧)∘𝐰
}

// Max returns the largest residual.
func (r Residuals) Max() float64 {
	return max(r.Stationarity, r.Conservation, r.Constraint, r.Complementarity)
}

// residual fills ws.f with the perturbed optimality conditions 𝑭_𝜏 at (x, y, z, u)
// using the values of the last evaluation at x. It returns the merit ½‖𝑭_𝜏‖²
// together with the unperturbed residual norms.
func (s *Solver) residual(x, y, z, u []float64, tau float64) (merit float64, res Residuals) {
	pb, ws := &s.pb, &s.work
	ns, mb, np := s.ns, s.mb, s.np
	f := ws.f

	rn := f[:ns]
	for i := range ns {
		v := ws.g[i] - z[i] + u[i] + linalg.Dot(mb, s.abar[i*mb:], 1, y, 1)
		rn[i] = v
		res.Stationarity = max(res.Stationarity, math.Abs(v))
	}

	rb := f[ns : ns+mb]
	for r := range mb {
		v := linalg.Dot(ns, s.abar[r:], mb, x, 1) - pb.b[r]
		if np > 0 {
			v += linalg.Dot(np, s.apbar[r:], mb, x[ns:], 1)
		}
		rb[r] = v
		res.Conservation = max(res.Conservation, math.Abs(v))
	}

	rh := f[ns+mb : ns+mb+np]
	copy(rh, ws.h)
	res.Constraint = linalg.NrmInf(rh)

	cl := f[ns+mb+np : 2*ns+mb+np]
	cu := f[2*ns+mb+np:]
	for i := range ns {
		c := (x[i] - pb.lower[i]) * z[i]
		res.Complementarity = max(res.Complementarity, c)
		cl[i] = c - tau
		cu[i] = zero
		if !math.IsInf(pb.upper[i], 1) {
			c = (pb.upper[i] - x[i]) * u[i]
			res.Complementarity = max(res.Complementarity, c)
			cu[i] = c - tau
		}
	}

	merit = half * linalg.Dot(len(f), f, 1, f, 1)
	return
}

// assemble builds the condensed Newton matrix, with the bound multipliers eliminated,
// into ws.kkt (column-major) and the right-hand side into ws.sol.
//
//	⎡ 𝐇 + 𝐙𝐒ₗ⁻¹ + 𝐖𝐒ᵤ⁻¹ + δ𝐈   𝐀ᵀ     𝐇ₚ     ⎤ ⎡ Δ𝐧 ⎤     ⎡ 𝒈 + 𝐀ᵀ𝐲 - 𝜏𝐒ₗ⁻¹𝐞 + 𝜏𝐒ᵤ⁻¹𝐞 ⎤
//	⎢ 𝐀                       -δ𝐈    𝐀ₚ     ⎥ ⎢ Δ𝐲 ⎥ = - ⎢ 𝐀𝐧 + 𝐀ₚ𝐩 - 𝐛              ⎥
//	⎣ 𝐉ₙ                       0      𝐉ₚ - δ𝐈 ⎦ ⎣ Δ𝐩 ⎦     ⎣ 𝐡                          ⎦
func (s *Solver) assemble(x, z, u []float64, tau, delta float64, rhs bool) {
	pb, ws := &s.pb, &s.work
	ns, mb, np, nk, nx := s.ns, s.mb, s.np, s.nk, s.nx
	kkt := ws.kkt
	linalg.Zero(kkt)

	at := func(i, j int) *float64 { return &kkt[i+j*nk] }
	for j := range nx {
		col := j
		if j >= ns {
			col = j + mb
		}
		for i := range ns {
			*at(i, col) = ws.hg[i+j*ns]
		}
		for m := range np {
			*at(ns+mb+m, col) = ws.jh[m+j*np]
		}
	}
	for i := range ns {
		d := z[i]/(x[i]-pb.lower[i]) + delta
		if !math.IsInf(pb.upper[i], 1) {
			d += u[i] / (pb.upper[i] - x[i])
		}
		*at(i, i) += d
		for r := range mb {
			a := s.abar[r+i*mb]
			*at(i, ns+r) = a
			*at(ns+r, i) = a
		}
	}
	for r := range mb {
		*at(ns+r, ns+r) = -delta
		for k := range np {
			*at(ns+r, ns+mb+k) = s.apbar[r+k*mb]
		}
	}
	for m := range np {
		*at(ns+mb+m, ns+mb+m) -= delta
	}

	if !rhs {
		return
	}
	sol, f := ws.sol, ws.f
	for i := range ns {
		v := f[i] + z[i] - u[i] - tau/(x[i]-pb.lower[i])
		if !math.IsInf(pb.upper[i], 1) {
			v += tau / (pb.upper[i] - x[i])
		}
		sol[i] = -v
	}
	for k := ns; k < nk; k++ {
		sol[k] = -f[k]
	}
}

// factorize assembles and factorizes the Newton matrix, shifting its diagonal by a growing
// regularization while it stays singular.
func (s *Solver) factorize(x, z, u []float64, tau float64, rhs bool) error {
	ws, log := &s.work, s.log
	delta := zero
	for k := 0; ; k++ {
		s.assemble(x, z, u, tau, delta, rhs)
		err := ws.lu.Factorize(ws.kkt, s.nk)
		if err == nil {
			return nil
		}
		if k == regularizationRetries {
			return err
		}
		if k == 0 {
			delta = s.opts.Regularization
		} else {
			delta *= 100
		}
		if log.enable(LogTrace) {
			log.log("  singular Newton matrix, regularization %.1e\n", delta)
		}
	}
}

// direction computes the Newton step (Δ𝐱, Δ𝐲, Δ𝐳, Δ𝐰) at the current iterate
// from the residual in ws.f.
func (s *Solver) direction() error {
	pb, ws := &s.pb, &s.work
	ns, mb := s.ns, s.mb
	x, z, u := ws.x, ws.z, ws.u

	if err := s.factorize(x, z, u, pb.tau, true); err != nil {
		return err
	}
	if err := ws.lu.Solve(ws.sol); err != nil {
		return err
	}
	if !floats(ws.sol).finite() {
		return linalg.ErrSingular
	}

	copy(ws.dx[:ns], ws.sol[:ns])
	copy(ws.dy, ws.sol[ns:ns+mb])
	copy(ws.dx[ns:], ws.sol[ns+mb:])

	for i := range ns {
		sl, dn := x[i]-pb.lower[i], ws.dx[i]
		ws.dz[i] = pb.tau/sl - z[i] - z[i]/sl*dn
		ws.du[i] = zero
		if !math.IsInf(pb.upper[i], 1) {
			su := pb.upper[i] - x[i]
			ws.du[i] = pb.tau/su - u[i] + u[i]/su*dn
		}
	}
	return nil
}

// maxStep returns the largest step α ≤ 1 keeping every bounded quantity a fraction θ
// away from its bounds.
func (s *Solver) maxStep() float64 {
	pb, ws := &s.pb, &s.work
	theta := s.opts.Barrier.Fraction
	alpha := one

	limit := func(v, dv, lower, upper float64) {
		if dv < zero && !math.IsInf(lower, -1) {
			alpha = math.Min(alpha, -theta*(v-lower)/dv)
		}
		if dv > zero && !math.IsInf(upper, 1) {
			alpha = math.Min(alpha, theta*(upper-v)/dv)
		}
	}
	for i := range s.ns {
		limit(ws.x[i], ws.dx[i], pb.lower[i], pb.upper[i])
		limit(ws.z[i], ws.dz[i], zero, math.Inf(1))
		if !math.IsInf(pb.upper[i], 1) {
			limit(ws.u[i], ws.du[i], zero, math.Inf(1))
		}
	}
	if s.iT >= 0 {
		limit(ws.x[s.iT], ws.dx[s.iT], pb.tbound.Lower, pb.tbound.Upper)
	}
	if s.iP >= 0 {
		limit(ws.x[s.iP], ws.dx[s.iP], pb.pbound.Lower, pb.pbound.Upper)
	}
	return alpha
}

// trial moves the trial iterate to the current iterate plus alpha times the step.
func (s *Solver) trial(alpha float64) {
	ws := &s.work
	step := func(dst, v, dv []float64) {
		copy(dst, v)
		linalg.Axpy(len(v), alpha, dv, 1, dst, 1)
	}
	step(ws.xt, ws.x, ws.dx)
	step(ws.yt, ws.y, ws.dy)
	step(ws.zt, ws.z, ws.dz)
	step(ws.ut, ws.u, ws.du)
}

// lineSearch backtracks from the fraction-to-boundary step until the merit decreases
// sufficiently, then moves the iterate. Trials whose evaluation fails are halved away.
// When no trial decreases the merit, the shortest trial with a finite merit is taken.
func (s *Solver) lineSearch(merit float64) (float64, bool) {
	pb, ws, log := &s.pb, &s.work, s.log
	c := s.opts.Line.Armijo

	alpha, fallback := s.maxStep(), zero
	accepted := false
	for k := 0; k <= s.opts.Line.MaxBacktracks; k, alpha = k+1, alpha*half {
		s.trial(alpha)
		if err := s.evaluate(ws.xt, -1, -1); err != nil {
			if log.enable(LogTrace) {
				log.log("  alpha %.3e  %v\n", alpha, err)
			}
			continue
		}
		phi, _ := s.residual(ws.xt, ws.yt, ws.zt, ws.ut, pb.tau)
		if math.IsNaN(phi) || math.IsInf(phi, 0) {
			continue
		}
		fallback = alpha
		if log.enable(LogTrace) {
			log.log("  alpha %.3e  merit %.3e -> %.3e\n", alpha, merit, phi)
		}
		if phi <= (one-2*c*alpha)*merit {
			accepted = true
			break
		}
	}
	if !accepted {
		if fallback == zero {
			return zero, false
		}
		alpha = fallback
		s.trial(alpha)
	}

	copy(ws.x, ws.xt)
	copy(ws.y, ws.yt)
	copy(ws.z, ws.zt)
	copy(ws.u, ws.ut)
	return alpha, true
}

// meanComplementarity returns the mean of the complementarity products over every finite bound.
func (s *Solver) meanComplementarity(x, z, u []float64) float64 {
	pb := &s.pb
	sum := zero
	for i := range s.ns {
		sum += (x[i] - pb.lower[i]) * z[i]
		if !math.IsInf(pb.upper[i], 1) {
			sum += (pb.upper[i] - x[i]) * u[i]
		}
	}
	return sum / float64(s.ns+pb.nupper)
}

// updateBarrier decreases 𝜏 superlinearly with the mean complementarity of the new iterate.
func (s *Solver) updateBarrier() {
	pb, ws := &s.pb, &s.work
	mu := s.meanComplementarity(ws.x, ws.z, ws.u)
	pb.tau = math.Max(pb.tauMin, math.Min(s.opts.Barrier.Sigma*mu, math.Pow(mu, 1.5)))
}
