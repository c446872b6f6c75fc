// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import "math"

// Axpy computes y ← αx + y over n strided elements.
func Axpy(n int, alpha float64, x []float64, incx int, y []float64, incy int) {
	if n <= 0 || alpha == 0 {
		return
	}
	if incx == 1 && incy == 1 {
		x, y = x[:n:n], y[:n:n]
		m := n % 4
		for i := range m {
			y[i] += alpha * x[i]
		}
		for i := m; i < n; i += 4 {
			xs := x[i : i+4 : i+4]
			ys := y[i : i+4 : i+4]
			ys[0] += alpha * xs[0]
			ys[1] += alpha * xs[1]
			ys[2] += alpha * xs[2]
			ys[3] += alpha * xs[3]
		}
		return
	}
	if incx*(n-1) >= len(x) || incy*(n-1) >= len(y) {
		panic("bound check error")
	}
	for i, ix, iy := 0, 0, 0; i < n; i, ix, iy = i+1, ix+incx, iy+incy {
		y[iy] += alpha * x[ix]
	}
}

// Dot computes xᵀy over n strided elements.
func Dot(n int, x []float64, incx int, y []float64, incy int) (dot float64) {
	if n <= 0 {
		return 0
	}
	if incx == 1 && incy == 1 {
		x, y = x[:n:n], y[:n:n]
		m := n % 5
		for i := range m {
			dot += x[i] * y[i]
		}
		for i := m; i < n; i += 5 {
			xs := x[i : i+5 : i+5]
			ys := y[i : i+5 : i+5]
			dot += xs[0]*ys[0] + xs[1]*ys[1] + xs[2]*ys[2] + xs[3]*ys[3] + xs[4]*ys[4]
		}
		return
	}
	if incx*(n-1) >= len(x) || incy*(n-1) >= len(y) {
		panic("bound check error")
	}
	for i, ix, iy := 0, 0, 0; i < n; i, ix, iy = i+1, ix+incx, iy+incy {
		dot += x[ix] * y[iy]
	}
	return
}

// Copy copies n strided elements of x into y.
func Copy(n int, x []float64, incx int, y []float64, incy int) {
	if n <= 0 {
		return
	}
	if incx == 1 && incy == 1 {
		copy(y[:n], x[:n])
		return
	}
	if incx*(n-1) >= len(x) || incy*(n-1) >= len(y) {
		panic("bound check error")
	}
	for i, ix, iy := 0, 0, 0; i < n; i, ix, iy = i+1, ix+incx, iy+incy {
		y[iy] = x[ix]
	}
}

// Scal computes x ← αx over n strided elements.
func Scal(n int, alpha float64, x []float64, incx int) {
	if n <= 0 || incx <= 0 {
		return
	}
	if incx*(n-1) >= len(x) {
		panic("bound check error")
	}
	for i := 0; i < n*incx; i += incx {
		x[i] *= alpha
	}
}

// Nrm2 computes the Euclidean norm ‖x‖₂ without destructive underflow or overflow.
func Nrm2(n int, x []float64, incx int) float64 {
	if n < 1 || incx < 1 {
		return 0
	}
	if incx*(n-1) >= len(x) {
		panic("bound check error")
	}
	if n == 1 {
		return math.Abs(x[0])
	}
	scale, ssq := 0.0, 1.0
	for i := 0; i < n*incx; i += incx {
		if ax := math.Abs(x[i]); ax > 0 {
			if scale < ax {
				r := scale / ax
				ssq = 1 + ssq*r*r
				scale = ax
			} else {
				r := ax / scale
				ssq += r * r
			}
		}
	}
	return scale * math.Sqrt(ssq)
}

// NrmInf computes ‖x‖∞ and propagates NaN.
func NrmInf(x []float64) (m float64) {
	for _, v := range x {
		a := math.Abs(v)
		if a > m || math.IsNaN(a) {
			m = a
		}
	}
	return
}

// Iamax returns the index of the element with the largest magnitude.
func Iamax(n int, x []float64, incx int) int {
	if n <= 0 {
		return -1
	}
	best, bmax := 0, math.Abs(x[0])
	for i, ix := 1, incx; i < n; i, ix = i+1, ix+incx {
		if a := math.Abs(x[ix]); a > bmax {
			best, bmax = i, a
		}
	}
	return best
}

// Zero fills x with zeros.
func Zero(x []float64) {
	for i := range x {
		x[i] = 0
	}
}
