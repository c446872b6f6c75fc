// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import "math"

// House constructs a Householder transformation 𝐐 = 𝐈 - b⁻¹𝐮𝐮ᵀ (b = s·uₚ) such that
// 𝐐𝐯 = s·𝐞ₚ on the elements p, l, l+1, ..., m-1 of the strided vector v.
//
// On output v[p] holds s, v[l:m] holds the tail of 𝐮 and uₚ is returned separately.
// The transformation is the identity when p ≥ l or l ≥ m or the selected elements are zero.
//
// C.L. Lawson, R.J. Hanson, 'Solving least squares problems' Prentice Hall, 1974. Chapter 10.
func House(p, l, m int, v []float64, inc int) (up float64) {
	if p < 0 || p >= l || l >= m {
		return
	}
	if (m-1)*inc >= len(v) {
		panic("bound check error")
	}

	vmax := math.Abs(v[p*inc])
	for i := l; i < m; i++ {
		vmax = math.Max(vmax, math.Abs(v[i*inc]))
	}
	if vmax <= 0 {
		return
	}

	// s = -sgn(vₚ)(vₚ² + ∑vᵢ²)¹ᐟ² evaluated on the scaled vector
	inv := 1 / vmax
	sum := (v[p*inc] * inv) * (v[p*inc] * inv)
	for i := l; i < m; i++ {
		sum += (v[i*inc] * inv) * (v[i*inc] * inv)
	}
	s := vmax * math.Sqrt(sum)
	if v[p*inc] > 0 {
		s = -s
	}

	up = v[p*inc] - s
	v[p*inc] = s
	return
}

// ApplyHouse applies the transformation built by House to ncv vectors stored in c.
//   - ice: the storage increment between elements of one vector
//   - icv: the storage increment between vectors
func ApplyHouse(p, l, m int, u []float64, inc int, up float64, c []float64, ice, icv, ncv int) {
	if p < 0 || p >= l || l >= m || ncv <= 0 {
		return
	}

	b := u[p*inc] * up
	if b >= 0 {
		return
	}
	b = 1 / b

	for k := range ncv {
		col := k * icv
		if col+(m-1)*ice >= len(c) {
			panic("bound check error")
		}
		// 𝐮ᵀ𝐜 = uₚcₚ + ∑uᵢcᵢ
		sm := c[col+p*ice] * up
		for i := l; i < m; i++ {
			sm += c[col+i*ice] * u[i*inc]
		}
		if sm == 0 {
			continue
		}
		sm *= b
		c[col+p*ice] += sm * up
		for i := l; i < m; i++ {
			c[col+i*ice] += sm * u[i*inc]
		}
	}
}
