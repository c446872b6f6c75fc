// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import "math"

// PivotedQR triangularizes the m×n column-major matrix a in place with Householder
// reflections and column interchanges 𝐐𝐀𝐏 = 𝐑, choosing at each stage the remaining
// column of largest norm.
//
// The pseudo-rank k is the number of stages whose pivot column norm exceeds tol·‖𝐀‖ (largest
// column norm). The first k entries of perm are the indices of a maximal set of linearly
// independent columns of the original matrix.
func PivotedQR(a []float64, m, n int, tol float64) (rank int, perm []int) {
	if m <= 0 || n <= 0 || len(a) != m*n {
		panic("bound check error")
	}

	perm = make([]int, n)
	norms := make([]float64, n)
	amax := 0.0
	for j := range n {
		perm[j] = j
		amax = math.Max(amax, Nrm2(m, a[j*m:], 1))
	}
	if amax == 0 {
		return
	}

	for j := range min(m, n) {
		// norms of the trailing parts are recomputed to avoid cancellation in downdates
		best := j
		for k := j; k < n; k++ {
			norms[k] = Nrm2(m-j, a[j+k*m:], 1)
			if norms[k] > norms[best] {
				best = k
			}
		}
		if norms[best] <= tol*amax {
			break
		}
		if best != j {
			for i := range m {
				a[i+j*m], a[i+best*m] = a[i+best*m], a[i+j*m]
			}
			perm[j], perm[best] = perm[best], perm[j]
		}
		col := a[j*m : (j+1)*m]
		up := House(j, j+1, m, col, 1)
		if j+1 < n {
			ApplyHouse(j, j+1, m, col, 1, up, a[(j+1)*m:], 1, m, n-j-1)
		}
		rank++
	}
	return
}

// IndependentRows returns the indices (ascending) of a maximal set of linearly independent
// rows of the m×n column-major matrix a. The matrix is not modified.
func IndependentRows(a []float64, m, n int, tol float64) []int {
	if m == 0 {
		return nil
	}
	// the rows of 𝐀 are the columns of 𝐀ᵀ
	at := make([]float64, n*m)
	for i := range m {
		for j := range n {
			at[j+i*n] = a[i+j*m]
		}
	}
	rank, perm := PivotedQR(at, n, m, tol)
	rows := append([]int(nil), perm[:rank]...)
	for i := 1; i < len(rows); i++ {
		for k := i; k > 0 && rows[k] < rows[k-1]; k-- {
			rows[k], rows[k-1] = rows[k-1], rows[k]
		}
	}
	return rows
}
