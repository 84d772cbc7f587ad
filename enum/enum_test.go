// Copyright (c) 2023 Colin McRae

package enum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	exhaustiveBound = 3
	largeRadius     = 100.0
)

// blockNormSq computes the squared length of the lattice vector with
// block coefficients x the same way the search does, from the squared
// Gram-Schmidt norms and the unitriangular coefficients.
func blockNormSq(x []int64, rd []float64, mu [][]float64) float64 {
	n := len(rd)
	normSq := 0.0
	for k := 0; k < n; k++ {
		coord := float64(x[k])
		for j := k + 1; j < n; j++ {
			coord += mu[j][k] * float64(x[j])
		}
		normSq += coord * coord * rd[k]
	}
	return normSq
}

// shortestByExhaustion scans the coefficient box {-b,...,b}^n for the
// shortest non-zero vector.
func shortestByExhaustion(rd []float64, mu [][]float64, b int64) float64 {
	n := len(rd)
	x := make([]int64, n)
	for i := range x {
		x[i] = -b
	}
	best := -1.0
	for {
		nonZero := false
		for _, xi := range x {
			if xi != 0 {
				nonZero = true
				break
			}
		}
		if nonZero {
			normSq := blockNormSq(x, rd, mu)
			if best < 0 || normSq < best {
				best = normSq
			}
		}
		i := 0
		for i < n {
			x[i]++
			if x[i] <= b {
				break
			}
			x[i] = -b
			i++
		}
		if i == n {
			break
		}
	}
	return best
}

func TestShortestVectorMatchesExhaustive(t *testing.T) {
	// The decomposition of the basis [[2,0,0],[1,2,0],[0,1,2]], plus a
	// skewed block with unequal norms.
	testCases := []struct {
		rd []float64
		mu [][]float64
	}{
		{
			rd: []float64{4, 4, 4},
			mu: [][]float64{{}, {0.5}, {0, 0.5}},
		},
		{
			rd: []float64{1.0, 1.5, 0.8},
			mu: [][]float64{{}, {0.3}, {-0.45, 0.2}},
		},
		{
			rd: []float64{2.5, 0.9, 1.3, 1.1},
			mu: [][]float64{{}, {0.5}, {-0.2, 0.4}, {0.15, -0.35, 0.25}},
		},
	}
	for _, testCase := range testCases {
		expected := shortestByExhaustion(testCase.rd, testCase.mu, exhaustiveBound)
		coeffs, distSq, nodes, err := Enumerate(testCase.rd, testCase.mu, largeRadius, nil)
		require.NoError(t, err)
		require.NotNil(t, coeffs)
		assert.Positive(t, nodes)
		assert.InDelta(t, expected, distSq, 1.e-9)
		assert.InDelta(t, distSq, blockNormSq(coeffs, testCase.rd, testCase.mu), 1.e-9)
	}
}

func TestAllOnesPruningEqualsUnpruned(t *testing.T) {
	rd := []float64{1.0, 1.5, 0.8}
	mu := [][]float64{{}, {0.3}, {-0.45, 0.2}}
	pruning := []float64{1, 1, 1}
	coeffs0, distSq0, nodes0, err := Enumerate(rd, mu, largeRadius, nil)
	require.NoError(t, err)
	coeffs1, distSq1, nodes1, err := Enumerate(rd, mu, largeRadius, pruning)
	require.NoError(t, err)
	assert.Equal(t, coeffs0, coeffs1)
	assert.Equal(t, distSq0, distSq1)
	assert.Equal(t, nodes0, nodes1)
}

func TestSeverePruningVisitsFewerNodes(t *testing.T) {
	rd := []float64{2.5, 0.9, 1.3, 1.1}
	mu := [][]float64{{}, {0.5}, {-0.2, 0.4}, {0.15, -0.35, 0.25}}
	_, _, unprunedNodes, err := Enumerate(rd, mu, largeRadius, nil)
	require.NoError(t, err)
	coeffs, _, prunedNodes, err := Enumerate(
		rd, mu, largeRadius, []float64{1, 1.e-6, 1.e-6, 1.e-6},
	)
	require.NoError(t, err)
	assert.Nil(t, coeffs)
	assert.Less(t, prunedNodes, unprunedNodes)
}

func TestNothingBelowRadius(t *testing.T) {
	// The shortest vector has squared length 4, which is not strictly
	// below the radius.
	rd := []float64{4, 4, 4}
	mu := [][]float64{{}, {0.5}, {0, 0.5}}
	coeffs, distSq, nodes, err := Enumerate(rd, mu, 3.9, nil)
	require.NoError(t, err)
	assert.Nil(t, coeffs)
	assert.Zero(t, distSq)
	assert.Positive(t, nodes)
}

func TestNodeBudget(t *testing.T) {
	rd := []float64{1, 1, 1, 1}
	mu := [][]float64{{}, {0}, {0, 0}, {0, 0, 0}}
	_, _, nodes, err := EnumerateWithBudget(rd, mu, largeRadius, nil, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNodesExceeded))
	assert.Equal(t, int64(4), nodes)
}

func TestValidation(t *testing.T) {
	rd := []float64{1, 1}
	mu := [][]float64{{}, {0}}
	_, _, _, err := Enumerate(nil, nil, 1, nil)
	assert.Error(t, err)
	_, _, _, err = Enumerate(rd, [][]float64{{}}, 1, nil)
	assert.Error(t, err)
	_, _, _, err = Enumerate(rd, [][]float64{{}, {}}, 1, nil)
	assert.Error(t, err)
	_, _, _, err = Enumerate(rd, mu, 0, nil)
	assert.Error(t, err)
	_, _, _, err = Enumerate(rd, mu, 1, []float64{1})
	assert.Error(t, err)
	_, _, _, err = Enumerate([]float64{1, -1}, mu, 1, nil)
	assert.Error(t, err)
}
