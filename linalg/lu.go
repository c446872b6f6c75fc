// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg provides the dense kernels of the equilibrium solver.
// Matrices are column-major slices: element (i, j) of an m×n matrix lives at a[i+j*m].
package linalg

import (
	"errors"
	"math"
)

var (
	// ErrSingular is returned when a pivot vanishes relative to the matrix scale.
	ErrSingular = errors.New("linalg: singular matrix")
	// ErrDimension is returned when slice sizes do not match the declared shape.
	ErrDimension = errors.New("linalg: dimension mismatch")
)

var eps = math.Nextafter(1, 2) - 1

// LU holds the factorization 𝐏𝐑𝐀 = 𝐋𝐔 of a square matrix with partial pivoting,
// where 𝐑 scales every row of 𝐀 to unit ∞-norm.
// The unit lower triangle 𝐋 and the upper triangle 𝐔 share storage.
// Buffers are reused between factorizations of the same order.
type LU struct {
	n   int
	a   []float64
	r   []float64
	piv []int
}

// Factorize computes the factorization of the n×n column-major matrix a.
// The matrix a is copied and left untouched. A pivot below n·eps of the
// equilibrated matrix is reported as ErrSingular.
func (f *LU) Factorize(a []float64, n int) error {
	if n <= 0 || len(a) != n*n {
		return ErrDimension
	}
	if len(f.a) != n*n {
		f.a = make([]float64, n*n)
		f.r = make([]float64, n)
		f.piv = make([]int, n)
	}
	f.n = n
	copy(f.a, a)

	lu := f.a
	for i := range n {
		s := 0.0
		for j := range n {
			if v := math.Abs(lu[i+j*n]); v > s || math.IsNaN(v) {
				s = v
			}
		}
		if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return ErrSingular
		}
		f.r[i] = 1 / s
		Scal(n, f.r[i], lu[i:], n)
	}
	tiny := float64(n) * eps

	for k := range n {
		col := lu[k*n : (k+1)*n]
		p := k + Iamax(n-k, col[k:], 1)
		f.piv[k] = p
		if math.Abs(col[p]) <= tiny || math.IsNaN(col[p]) {
			return ErrSingular
		}
		if p != k {
			for j := range n {
				lu[k+j*n], lu[p+j*n] = lu[p+j*n], lu[k+j*n]
			}
		}
		Scal(n-k-1, 1/col[k], col[k+1:], 1)
		for j := k + 1; j < n; j++ {
			Axpy(n-k-1, -lu[k+j*n], col[k+1:], 1, lu[k+1+j*n:], 1)
		}
	}
	return nil
}

// Solve overwrites b with the solution of 𝐀𝐱 = 𝐛.
func (f *LU) Solve(b []float64) error {
	n := f.n
	if n == 0 || len(b) != n {
		return ErrDimension
	}
	lu := f.a
	for i := range n {
		b[i] *= f.r[i]
	}
	for k := range n {
		if p := f.piv[k]; p != k {
			b[k], b[p] = b[p], b[k]
		}
	}
	// forward substitution with unit 𝐋
	for k := range n {
		Axpy(n-k-1, -b[k], lu[k+1+k*n:], 1, b[k+1:], 1)
	}
	// backward substitution with 𝐔
	for k := n - 1; k >= 0; k-- {
		b[k] /= lu[k+k*n]
		Axpy(k, -b[k], lu[k*n:], 1, b, 1)
	}
	return nil
}

// Order returns the order of the last factorized matrix.
func (f *LU) Order() int {
	return f.n
}
