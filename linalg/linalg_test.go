// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlas(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7}
	y := []float64{7, 6, 5, 4, 3, 2, 1}

	assert.Equal(t, 84.0, Dot(7, x, 1, y, 1))
	assert.Equal(t, 1*7+3*5+5*3+7*1.0, Dot(4, x, 2, y, 2))

	z := append([]float64(nil), y...)
	Axpy(7, 2, x, 1, z, 1)
	assert.Equal(t, []float64{9, 10, 11, 12, 13, 14, 15}, z)

	Scal(3, 0.5, z, 2)
	assert.Equal(t, []float64{4.5, 10, 5.5, 12, 6.5, 14, 15}, z)

	c := make([]float64, 4)
	Copy(4, x, 2, c, 1)
	assert.Equal(t, []float64{1, 3, 5, 7}, c)

	assert.InDelta(t, math.Sqrt(140), Nrm2(7, x, 1), 1e-12)
	assert.Equal(t, 7.0, NrmInf([]float64{1, -7, 3}))
	assert.True(t, math.IsNaN(NrmInf([]float64{1, math.NaN(), 3})))
	assert.Equal(t, 1, Iamax(3, []float64{1, -7, 3}, 1))

	Zero(c)
	assert.Equal(t, []float64{0, 0, 0, 0}, c)
}

func TestHouse(t *testing.T) {
	v := []float64{3, 4, 0}
	w := append([]float64(nil), v...)
	up := House(0, 1, 3, v, 1)
	assert.InDelta(t, -5, v[0], 1e-15)

	// applying the reflection to the original vector must give (s, 0, 0)
	ApplyHouse(0, 1, 3, v, 1, up, w, 1, 3, 1)
	assert.InDelta(t, -5, w[0], 1e-14)
	assert.InDelta(t, 0, w[1], 1e-14)
	assert.InDelta(t, 0, w[2], 1e-14)
}

func TestLU(t *testing.T) {
	// column-major 3×3
	a := []float64{
		2, 4, -2,
		1, -6, 7,
		1, 0, 2,
	}
	x := []float64{1, -2, 3}
	b := matVec(a, 3, x)

	var f LU
	require.NoError(t, f.Factorize(a, 3))
	require.NoError(t, f.Solve(b))
	assert.InDeltaSlice(t, x, b, 1e-12)
	assert.Equal(t, 3, f.Order())

	// reuse buffers
	a2 := []float64{0, 1, 1, 0}
	b2 := []float64{2, 3}
	require.NoError(t, f.Factorize(a2, 2))
	require.NoError(t, f.Solve(b2))
	assert.InDeltaSlice(t, []float64{3, 2}, b2, 1e-15)
}

func TestLUSingular(t *testing.T) {
	var f LU
	assert.ErrorIs(t, f.Factorize([]float64{1, 2, 2, 4}, 2), ErrSingular)
	assert.ErrorIs(t, f.Factorize([]float64{0, 0, 0, 0}, 2), ErrSingular)
	assert.ErrorIs(t, f.Factorize([]float64{1, 2, 3}, 2), ErrDimension)
}

func TestIndependentRows(t *testing.T) {
	// rows: C, H, O, charge(zero), 2·C
	const m, n = 5, 4
	rows := [][]float64{
		{1, 0, 1, 0},
		{4, 2, 0, 0},
		{0, 1, 2, 1},
		{0, 0, 0, 0},
		{2, 0, 2, 0},
	}
	a := make([]float64, m*n)
	for i, r := range rows {
		for j, v := range r {
			a[i+j*m] = v
		}
	}
	idx := IndependentRows(a, m, n, 1e-12)
	assert.Len(t, idx, 3)
	assert.NotContains(t, idx, 3)
	assert.True(t, !contains(idx, 0) || !contains(idx, 4), "C and 2·C are dependent: %v", idx)
	assert.Equal(t, 4.0, a[1], "input must not be modified")
}

func TestPivotedQRRank(t *testing.T) {
	a := []float64{
		1, 2, 3,
		2, 4, 6,
		0, 1, 1,
	}
	rank, perm := PivotedQR(a, 3, 3, 1e-12)
	assert.Equal(t, 2, rank)
	assert.Len(t, perm, 3)
}

func matVec(a []float64, n int, x []float64) []float64 {
	y := make([]float64, n)
	for j := range n {
		Axpy(n, x[j], a[j*n:], 1, y, 1)
	}
	return y
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
