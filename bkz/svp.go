// Copyright (c) 2023 Colin McRae

package bkz

import (
	"fmt"
	"math"
	"math/big"

	"github.com/predrag3141/BKZ/enum"
	"github.com/predrag3141/BKZ/lll"
	"github.com/tuneinsight/lattigo/v4/utils"
)

// maxRerandomizations caps the retry loop when the pruning schedule's
// success probabilities never accumulate to 1.
const maxRerandomizations = 10

// svpReduce reduces the block of rows {kappa,...,kappa+beta-1}:
// preprocess, enumerate with rerandomized retries, insert the winner.
// In the dual case the block's reversed dual is searched and the winner
// lands at the tail of the block instead of the head. The returned flag
// is true when the block's leading squared norm (trailing, in the dual
// case) did not improve beyond the delta tolerance.
func (red *Reduction) svpReduce(kappa int, beta int, dual bool) (bool, error) {
	if beta < 2 {
		return true, nil
	}
	if err := red.svpPreprocess(kappa, beta); err != nil {
		return false, err
	}
	if err := red.m.UpdateRows(kappa + beta); err != nil {
		return false, fmt.Errorf("Reduction.svpReduce: could not refresh the block: %q", err.Error())
	}
	watchedRow := kappa
	if dual {
		watchedRow = kappa + beta - 1
	}
	oldR, err := red.rowNormSq(watchedRow)
	if err != nil {
		return false, err
	}

	schedule := red.param.pruningSchedule(beta)
	cumulativeProbability := 0.0
	var solution []int64
	for retry := 0; ; retry++ {
		if retry > 0 {
			prng, err := red.blockPRNG(kappa, retry)
			if err != nil {
				return false, err
			}
			if err = red.rerandomizeBlock(kappa, kappa+beta, prng); err != nil {
				return false, err
			}
			if err = red.svpPreprocess(kappa, beta); err != nil {
				return false, err
			}
			if err = red.m.UpdateRows(kappa + beta); err != nil {
				return false, fmt.Errorf(
					"Reduction.svpReduce: could not refresh the block: %q", err.Error(),
				)
			}
		}
		var mu [][]float64
		var rd []float64
		if dual {
			mu, rd, err = red.m.DualBlockFloat(kappa, beta)
		} else {
			mu, rd, err = red.m.BlockFloat(kappa, beta)
		}
		if err != nil {
			return false, fmt.Errorf("Reduction.svpReduce: could not read the block: %q", err.Error())
		}
		maxDistSq := rd[0]
		if red.param.Flags&GHBound != 0 {
			var ghSq float64
			if dual {
				ghSq = gaussianHeuristicSqFloat(rd)
			} else {
				ghSq, err = red.m.GaussianHeuristicSq(kappa, beta)
				if err != nil {
					return false, fmt.Errorf(
						"Reduction.svpReduce: could not estimate the block: %q", err.Error(),
					)
				}
			}
			maxDistSq = math.Min(maxDistSq, red.param.GHFactor*ghSq)
		}
		pruning := schedule[utils.MinInt(retry, len(schedule)-1)]
		coeffs, _, nodes, err := enum.Enumerate(
			rd, mu, maxDistSq, coefficientsFor(pruning, beta),
		)
		red.Nodes += nodes
		if err != nil {
			return false, fmt.Errorf("Reduction.svpReduce: enumeration failed: %w", err)
		}
		if coeffs != nil {
			solution = coeffs
			break
		}
		cumulativeProbability += pruning.Probability
		if cumulativeProbability >= 1.0 || retry+1 >= maxRerandomizations {
			break
		}
	}

	if solution != nil {
		if dual {
			err = red.dsvpPostprocess(kappa, beta, solution)
		} else {
			err = red.svpPostprocess(kappa, beta, solution)
		}
		if err != nil {
			return false, err
		}
		if err = red.m.UpdateRows(kappa + beta); err != nil {
			return false, fmt.Errorf(
				"Reduction.svpReduce: could not refresh the block: %q", err.Error(),
			)
		}
	}
	newR, err := red.rowNormSq(watchedRow)
	if err != nil {
		return false, err
	}
	if dual {
		return newR*red.param.Delta <= oldR, nil
	}
	return newR >= red.param.Delta*oldR, nil
}

// svpPreprocess LLL-reduces the block and then runs one recursive tour
// per preprocessing block size from the strategy, largest first.
func (red *Reduction) svpPreprocess(kappa int, beta int) error {
	lo := 0
	if red.param.Flags&BoundedLLL != 0 {
		lo = kappa
	}
	if err := red.lllRed.Reduce(lo, kappa, kappa+beta); err != nil {
		return fmt.Errorf("Reduction.svpPreprocess: could not LLL the block: %w", err)
	}
	for _, betaPrime := range red.param.strategyFor(beta).Preprocessing {
		if betaPrime <= 2 || beta <= betaPrime {
			continue
		}
		if _, _, err := red.primalTour(betaPrime, kappa, kappa+beta); err != nil {
			return fmt.Errorf("Reduction.svpPreprocess: tour at size %d failed: %w", betaPrime, err)
		}
	}
	return nil
}

// svpPostprocess replaces a block row with the enumerated combination
// v = sum of s[j] b_{kappa+j} and rotates it to the head of the block.
// When the trailing nonzero coefficient is a unit, replacing that row is
// itself unimodular. Otherwise the combination is accumulated into an
// appended zero row and LLL with removal eliminates the resulting
// dependency.
func (red *Reduction) svpPostprocess(kappa int, beta int, s []int64) error {
	k := len(s) - 1
	for k >= 0 && s[k] == 0 {
		k--
	}
	if k < 0 {
		return fmt.Errorf("Reduction.svpPostprocess: the combination is zero")
	}
	if s[k] == 1 || s[k] == -1 {
		if s[k] == -1 {
			for j := 0; j <= k; j++ {
				s[j] = -s[j]
			}
		}
		if err := red.m.RowOpBegin(kappa, kappa+k+1); err != nil {
			return fmt.Errorf("Reduction.svpPostprocess: %q", err.Error())
		}
		opErr := red.replaceRowWithCombination(kappa, k, s)
		if endErr := red.m.RowOpEnd(); opErr == nil {
			opErr = endErr
		}
		if opErr != nil {
			return fmt.Errorf("Reduction.svpPostprocess: %w", opErr)
		}
		if err := red.m.UpdateRows(kappa + 1); err != nil {
			return fmt.Errorf("Reduction.svpPostprocess: could not refresh the row: %q", err.Error())
		}
		if err := red.m.SizeReduceRow(kappa, red.eta); err != nil {
			return fmt.Errorf("Reduction.svpPostprocess: %q: %w", err.Error(), errBabai)
		}
		return nil
	}

	// generic path: the trailing coefficient is not a unit
	if err := red.m.AppendZeroRow(); err != nil {
		return fmt.Errorf("Reduction.svpPostprocess: could not extend the basis: %q", err.Error())
	}
	appended := red.m.NumRows() - 1
	for j := 0; j <= k; j++ {
		if s[j] == 0 {
			continue
		}
		if err := red.m.RowAddMul(appended, kappa+j, big.NewInt(s[j])); err != nil {
			return fmt.Errorf(
				"Reduction.svpPostprocess: could not accumulate row %d: %q", kappa+j, err.Error(),
			)
		}
	}
	if err := red.m.MoveRow(appended, kappa); err != nil {
		return fmt.Errorf("Reduction.svpPostprocess: could not rotate the row: %q", err.Error())
	}
	newEnd, err := red.lllRed.ReduceWithRemoval(kappa, kappa, kappa+beta+1)
	if err != nil {
		return fmt.Errorf("Reduction.svpPostprocess: removal failed: %w", err)
	}
	if newEnd != kappa+beta {
		return fmt.Errorf(
			"Reduction.svpPostprocess: expected the block to end at %d, got %d: %w",
			kappa+beta, newEnd, lll.ErrLLLFailure,
		)
	}
	return nil
}

// dsvpPostprocess transforms the block so the enumerated dual vector
// becomes the one dual to the block's last row. The dual coefficients
// are first re-indexed to primal order; Euclidean elimination then
// drives them to a single unit while the inverse operations keep the
// primal lattice fixed.
func (red *Reduction) dsvpPostprocess(kappa int, beta int, s []int64) error {
	x := make([]int64, beta)
	for i := 0; i < len(s) && i < beta; i++ {
		x[beta-1-i] = s[i]
	}
	if err := red.m.RowOpBegin(kappa, kappa+beta); err != nil {
		return fmt.Errorf("Reduction.dsvpPostprocess: %q", err.Error())
	}
	opErr := red.dualEliminate(kappa, beta, x)
	if endErr := red.m.RowOpEnd(); opErr == nil {
		opErr = endErr
	}
	if opErr != nil {
		return fmt.Errorf("Reduction.dsvpPostprocess: %w", opErr)
	}
	lo := 0
	if red.param.Flags&BoundedLLL != 0 {
		lo = kappa
	}
	if err := red.lllRed.Reduce(lo, kappa, kappa+beta); err != nil {
		return fmt.Errorf("Reduction.dsvpPostprocess: could not LLL the block: %w", err)
	}
	return nil
}

// replaceRowWithCombination turns row kappa+k into the combination
// sum over j <= k of s[j] times row kappa+j, which requires s[k] = 1,
// and rotates it to the head of the block. The caller owns the row
// operation window.
func (red *Reduction) replaceRowWithCombination(kappa int, k int, s []int64) error {
	for j := 0; j < k; j++ {
		if s[j] == 0 {
			continue
		}
		if err := red.m.RowAddMul(kappa+k, kappa+j, big.NewInt(s[j])); err != nil {
			return fmt.Errorf(
				"Reduction.replaceRowWithCombination: could not accumulate row %d: %q",
				kappa+j, err.Error(),
			)
		}
	}
	if err := red.m.MoveRow(kappa+k, kappa); err != nil {
		return fmt.Errorf(
			"Reduction.replaceRowWithCombination: could not rotate the row: %q", err.Error(),
		)
	}
	return nil
}

// dualEliminate reduces the primal-indexed dual coefficients x to a
// single unit entry by Euclidean steps, applying the matching inverse
// operation to the basis rows, and rotates the surviving row to the tail
// of the block. The caller owns the row operation window.
func (red *Reduction) dualEliminate(kappa int, beta int, x []int64) error {
	for {
		pivot := -1
		count := 0
		for j := 0; j < beta; j++ {
			if x[j] == 0 {
				continue
			}
			count++
			if pivot < 0 || abs64(x[j]) < abs64(x[pivot]) {
				pivot = j
			}
		}
		if count == 0 {
			return fmt.Errorf("Reduction.dualEliminate: the combination is zero")
		}
		if count == 1 {
			if x[pivot] != 1 && x[pivot] != -1 {
				return fmt.Errorf(
					"Reduction.dualEliminate: the combination has content %d", abs64(x[pivot]),
				)
			}
			if x[pivot] == -1 {
				if err := red.m.NegateRow(kappa + pivot); err != nil {
					return fmt.Errorf(
						"Reduction.dualEliminate: could not negate the row: %q", err.Error(),
					)
				}
			}
			if err := red.m.MoveRow(kappa+pivot, kappa+beta-1); err != nil {
				return fmt.Errorf(
					"Reduction.dualEliminate: could not rotate the row: %q", err.Error(),
				)
			}
			return nil
		}
		for j := 0; j < beta; j++ {
			if j == pivot || x[j] == 0 {
				continue
			}
			q := x[j] / x[pivot]
			if q == 0 {
				continue
			}
			x[j] -= q * x[pivot]

			// shrinking x[j] by q x[pivot] corresponds to adding -q
			// times row pivot to row j, which leaves the dual
			// combination the coefficients describe unchanged
			if err := red.m.RowAddMul(kappa+j, kappa+pivot, big.NewInt(-q)); err != nil {
				return fmt.Errorf(
					"Reduction.dualEliminate: could not eliminate row %d: %q", kappa+j, err.Error(),
				)
			}
		}
	}
}

// rowNormSq returns r[i] as a float64, refreshing the row if needed.
func (red *Reduction) rowNormSq(i int) (float64, error) {
	if err := red.m.UpdateRows(i + 1); err != nil {
		return 0, fmt.Errorf("Reduction.rowNormSq: could not refresh row %d: %q", i, err.Error())
	}
	ri, err := red.m.R(i)
	if err != nil {
		return 0, fmt.Errorf("Reduction.rowNormSq: %q", err.Error())
	}
	return ri.Float64(), nil
}

// gaussianHeuristicSqFloat estimates the squared norm of a shortest
// vector of a block given in float form. Used for the dual view, where
// the exact decomposition is not available.
func gaussianHeuristicSqFloat(rd []float64) float64 {
	beta := len(rd)
	logVol := 0.0
	for i := 0; i < beta; i++ {
		logVol += 0.5 * math.Log(rd[i])
	}
	lgamma, _ := math.Lgamma(float64(beta)/2.0 + 1.0)
	logBallVol := float64(beta)/2.0*math.Log(math.Pi) - lgamma
	return math.Exp(2.0 / float64(beta) * (logVol - logBallVol))
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
