// Copyright (c) 2023 Colin McRae

// Package enum searches a block of a Gram-Schmidt decomposition for a
// short lattice vector. The search is a depth-first traversal of the
// coefficient tree in the Schnorr-Euchner order, where each level zigzags
// outward from the real-valued center, so partial distances along a level
// never decrease and a level can be abandoned as soon as its bound fails.
//
// The inputs are plain float64 slices so the same search serves the
// primal and the dual of a block. Callers obtain them from the exact
// decomposition via gso.BlockFloat and gso.DualBlockFloat.
package enum

import (
	"errors"
	"fmt"
	"math"
)

// ErrNodesExceeded reports that the coefficient tree was larger than the
// node budget.
var ErrNodesExceeded = errors.New("enum: node budget exceeded")

// DefaultMaxNodes is the node budget Enumerate imposes on the search.
const DefaultMaxNodes = int64(1) << 30

// Enumerate returns the coefficients, with respect to the block basis, of
// a shortest non-zero lattice vector with squared length strictly below
// maxDistSq, along with its squared length and the number of tree nodes
// visited. rd holds the squared Gram-Schmidt norms of the block and mu
// its lower unitriangular coefficients, mu[i][j] for j < i.
//
// pruning, if non-nil, holds one bound per tree depth: with t trailing
// coefficients fixed, the partial squared length must stay strictly below
// pruning[t-1] times the current search radius. A nil pruning searches
// the full tree. When no vector qualifies, the returned coefficients are
// nil and the error is nil.
func Enumerate(rd []float64, mu [][]float64, maxDistSq float64, pruning []float64) (
	[]int64, float64, int64, error,
) {
	return EnumerateWithBudget(rd, mu, maxDistSq, pruning, DefaultMaxNodes)
}

// EnumerateWithBudget is Enumerate with an explicit node budget in place
// of DefaultMaxNodes. Exceeding the budget yields ErrNodesExceeded with
// the node count at the point the search stopped.
func EnumerateWithBudget(
	rd []float64, mu [][]float64, maxDistSq float64, pruning []float64, maxNodes int64,
) ([]int64, float64, int64, error) {
	n := len(rd)
	if n == 0 {
		return nil, 0, 0, fmt.Errorf("EnumerateWithBudget: the block is empty")
	}
	if len(mu) != n {
		return nil, 0, 0, fmt.Errorf(
			"EnumerateWithBudget: mu has %d rows for a block of %d", len(mu), n,
		)
	}
	for i := 0; i < n; i++ {
		if len(mu[i]) < i {
			return nil, 0, 0, fmt.Errorf(
				"EnumerateWithBudget: mu row %d has %d entries, needs %d", i, len(mu[i]), i,
			)
		}
		if rd[i] <= 0 {
			return nil, 0, 0, fmt.Errorf(
				"EnumerateWithBudget: rd[%d] = %f is not positive", i, rd[i],
			)
		}
	}
	if maxDistSq <= 0 {
		return nil, 0, 0, fmt.Errorf(
			"EnumerateWithBudget: maxDistSq = %f is not positive", maxDistSq,
		)
	}
	if pruning == nil {
		pruning = make([]float64, n)
		for i := range pruning {
			pruning[i] = 1.0
		}
	} else if len(pruning) != n {
		return nil, 0, 0, fmt.Errorf(
			"EnumerateWithBudget: pruning has %d bounds for a block of %d", len(pruning), n,
		)
	}
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	// dist[k] is the squared length contributed by coefficients
	// {k,...,n-1}; dist[n] = 0. x[k] = base[k] + offset[k] where base is
	// the rounded center and offset zigzags 0, 1, -1, 2, ... on the side
	// of the center, so |x[k] - center[k]| never decreases within a level.
	dist := make([]float64, n+1)
	center := make([]float64, n)
	base := make([]int64, n)
	offset := make([]int64, n)
	side := make([]int64, n)
	x := make([]int64, n)

	k := n - 1
	side[k] = 1
	radius := maxDistSq
	var bestCoeffs []int64
	var bestDist float64
	var nodes int64

	for {
		nodes++
		if nodes > maxNodes {
			return nil, 0, nodes, fmt.Errorf(
				"EnumerateWithBudget: %d nodes: %w", nodes, ErrNodesExceeded,
			)
		}
		d := float64(x[k]) - center[k]
		dist[k] = dist[k+1] + d*d*rd[k]
		if dist[k] < pruning[n-1-k]*radius {
			if k > 0 {
				k--
				c := 0.0
				for j := k + 1; j < n; j++ {
					c -= mu[j][k] * float64(x[j])
				}
				center[k] = c
				rounded := math.Round(c)
				base[k] = int64(rounded)
				offset[k] = 0
				if c >= rounded {
					side[k] = 1
				} else {
					side[k] = -1
				}
				x[k] = base[k]
				continue
			}
			nonZero := false
			for j := 0; j < n; j++ {
				if x[j] != 0 {
					nonZero = true
					break
				}
			}
			if nonZero {
				bestCoeffs = append(bestCoeffs[:0], x...)
				bestDist = dist[0]
				radius = bestDist
			}
		} else {
			k++
			if k == n {
				break
			}
		}

		// advance to the next sibling. The last level only walks the
		// non-negative side, since a vector and its negation have the
		// same length.
		if k == n-1 {
			x[k]++
		} else {
			off := offset[k]
			if side[k]*off <= 0 {
				off = -off + side[k]
			} else {
				off = -off
			}
			offset[k] = off
			x[k] = base[k] + off
		}
	}
	if bestCoeffs == nil {
		return nil, 0, nodes, nil
	}
	return bestCoeffs, bestDist, nodes, nil
}
