// Copyright (c) 2023 Colin McRae

package gso

import (
	"fmt"
	"math"
)

// BlockFloat returns float64 copies of the GSO of the block of rows
// {kappa,...,kappa+beta-1}: a beta x beta lower unitriangular mu and the
// squared norms rd. The block must be below the watermark.
func (m *Mat) BlockFloat(kappa int, beta int) ([][]float64, []float64, error) {
	if kappa < 0 || beta < 1 || m.valid < kappa+beta {
		return nil, nil, fmt.Errorf(
			"Mat.BlockFloat: block {%d,...,%d} is not below the watermark %d",
			kappa, kappa+beta-1, m.valid,
		)
	}
	mu := make([][]float64, beta)
	rd := make([]float64, beta)
	for i := 0; i < beta; i++ {
		mu[i] = make([]float64, beta)
		mu[i][i] = 1.0
		for j := 0; j < i; j++ {
			mu[i][j] = m.mu[kappa+i][kappa+j].Float64()
		}
		rd[i] = m.r[kappa+i].Float64()
	}
	return mu, rd, nil
}

// DualBlockFloat returns the GSO of the reversed dual of the block of rows
// {kappa,...,kappa+beta-1}. A vector short in this view is a short vector
// of the dual lattice of the block, which is what dual enumeration needs.
//
// With M the block's lower unitriangular mu and J the reversal, the dual
// view has mu' = J M^-T J and r'[i] = 1 / r[beta-1-i].
func (m *Mat) DualBlockFloat(kappa int, beta int) ([][]float64, []float64, error) {
	mu, rd, err := m.BlockFloat(kappa, beta)
	if err != nil {
		return nil, nil, fmt.Errorf("Mat.DualBlockFloat: %q", err.Error())
	}

	// forward substitution for the inverse of the unitriangular mu
	muInv := make([][]float64, beta)
	for i := 0; i < beta; i++ {
		muInv[i] = make([]float64, beta)
		muInv[i][i] = 1.0
		for j := 0; j < i; j++ {
			sum := 0.0
			for k := j; k < i; k++ {
				sum += mu[i][k] * muInv[k][j]
			}
			muInv[i][j] = -sum
		}
	}
	dualMu := make([][]float64, beta)
	dualRd := make([]float64, beta)
	for i := 0; i < beta; i++ {
		dualMu[i] = make([]float64, beta)
		for j := 0; j <= i; j++ {
			dualMu[i][j] = muInv[beta-1-j][beta-1-i]
		}
		if rd[beta-1-i] <= 0 {
			return nil, nil, fmt.Errorf(
				"Mat.DualBlockFloat: r[%d] = %g is not positive", kappa+beta-1-i, rd[beta-1-i],
			)
		}
		dualRd[i] = 1.0 / rd[beta-1-i]
	}
	return dualMu, dualRd, nil
}

// GaussianHeuristicSq returns the Gaussian heuristic estimate of the
// squared norm of a shortest vector in the lattice spanned by the block
// of rows {kappa,...,kappa+beta-1}.
func (m *Mat) GaussianHeuristicSq(kappa int, beta int) (float64, error) {
	if kappa < 0 || beta < 1 || m.valid < kappa+beta {
		return 0, fmt.Errorf(
			"Mat.GaussianHeuristicSq: block {%d,...,%d} is not below the watermark %d",
			kappa, kappa+beta-1, m.valid,
		)
	}
	logVol := 0.0
	for i := kappa; i < kappa+beta; i++ {
		logR, err := m.LogR(i)
		if err != nil {
			return 0, fmt.Errorf("Mat.GaussianHeuristicSq: %q", err.Error())
		}
		logVol += 0.5 * logR
	}

	// log of the volume of the unit ball in beta dimensions
	lgamma, _ := math.Lgamma(float64(beta)/2.0 + 1.0)
	logBallVol := float64(beta)/2.0*math.Log(math.Pi) - lgamma
	return math.Exp(2.0 / float64(beta) * (logVol - logBallVol)), nil
}
