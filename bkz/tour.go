// Copyright (c) 2023 Colin McRae

package bkz

import (
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v4/utils"
)

// primalTour sweeps SVP reductions over overlapping blocks
// [kappa, kappa+blockSize) for kappa in {minRow,...,maxRow-2}, shrinking
// the block at the tail. It reports whether every block was already
// reduced, along with the largest kappa whose prefix stayed clean.
func (red *Reduction) primalTour(blockSize int, minRow int, maxRow int) (bool, int, error) {
	clean := true
	kappaMax := minRow
	for kappa := minRow; kappa < maxRow-1; kappa++ {
		width := utils.MinInt(blockSize, maxRow-kappa)
		blockClean, err := red.svpReduce(kappa, width, false)
		if err != nil {
			return false, kappaMax, fmt.Errorf("Reduction.primalTour: %w", err)
		}
		if blockClean {
			if clean {
				kappaMax = kappa
			}
			continue
		}
		clean = false
		lo := 0
		if red.param.Flags&BoundedLLL != 0 {
			lo = minRow
		}
		if err = red.lllRed.Reduce(lo, kappa, kappa+width); err != nil {
			return false, kappaMax, fmt.Errorf("Reduction.primalTour: %w", err)
		}
	}
	return clean, kappaMax, nil
}

// dualTour sweeps DSVP reductions over blocks ending at kappa for kappa
// from maxRow-1 down to minRow+1, shrinking the block at the head.
func (red *Reduction) dualTour(blockSize int, minRow int, maxRow int) (bool, error) {
	clean := true
	for kappa := maxRow - 1; kappa > minRow; kappa-- {
		start := utils.MaxInt(minRow, kappa-blockSize+1)
		width := kappa - start + 1
		if width < 2 {
			continue
		}
		blockClean, err := red.svpReduce(start, width, true)
		if err != nil {
			return false, fmt.Errorf("Reduction.dualTour: %w", err)
		}
		if !blockClean {
			clean = false
		}
	}
	return clean, nil
}

// sdTour is one self-dual tour: a dual sweep followed by a primal sweep.
func (red *Reduction) sdTour(blockSize int, minRow int, maxRow int) (bool, int, error) {
	dualClean, err := red.dualTour(blockSize, minRow, maxRow)
	if err != nil {
		return false, minRow, fmt.Errorf("Reduction.sdTour: %w", err)
	}
	primalClean, kappaMax, err := red.primalTour(blockSize, minRow, maxRow)
	if err != nil {
		return false, kappaMax, fmt.Errorf("Reduction.sdTour: %w", err)
	}
	return dualClean && primalClean, kappaMax, nil
}

// truncTour SVP-reduces the disjoint primal blocks of a slide sweep and
// then couples adjacent blocks with an LLL pass over the whole range.
func (red *Reduction) truncTour(blockSize int, minRow int, maxRow int) (bool, error) {
	clean := true
	for kappa := minRow; kappa+blockSize <= maxRow; kappa += blockSize {
		blockClean, err := red.svpReduce(kappa, blockSize, false)
		if err != nil {
			return false, fmt.Errorf("Reduction.truncTour: %w", err)
		}
		if !blockClean {
			clean = false
		}
	}
	lo := 0
	if red.param.Flags&BoundedLLL != 0 {
		lo = minRow
	}
	if err := red.lllRed.Reduce(lo, minRow, maxRow); err != nil {
		return false, fmt.Errorf("Reduction.truncTour: %w", err)
	}
	return clean, nil
}

// truncDualTour DSVP-reduces the disjoint dual blocks of a slide sweep,
// offset by one row from the primal blocks.
func (red *Reduction) truncDualTour(blockSize int, minRow int, maxRow int) (bool, error) {
	clean := true
	for kappa := minRow + 1; kappa+blockSize <= maxRow; kappa += blockSize {
		blockClean, err := red.svpReduce(kappa, blockSize, true)
		if err != nil {
			return false, fmt.Errorf("Reduction.truncDualTour: %w", err)
		}
		if !blockClean {
			clean = false
		}
	}
	return clean, nil
}

// slideTour is one tour of slide reduction: the primal blocks, the
// offset dual blocks, then a check whether the slide potential still
// decreases. The caller must have verified that blockSize divides the
// number of rows being reduced.
func (red *Reduction) slideTour(blockSize int, minRow int, maxRow int) (bool, error) {
	if _, err := red.truncTour(blockSize, minRow, maxRow); err != nil {
		return false, fmt.Errorf("Reduction.slideTour: %w", err)
	}
	if _, err := red.truncDualTour(blockSize, minRow, maxRow); err != nil {
		return false, fmt.Errorf("Reduction.slideTour: %w", err)
	}
	newPotential, err := red.slidePotential(blockSize, minRow, maxRow)
	if err != nil {
		return false, fmt.Errorf("Reduction.slideTour: %w", err)
	}
	tolerance := red.param.SlideTolerance
	if tolerance == 0 {
		tolerance = DefaultSlideTolerance
	}
	clean := red.sldPotential-newPotential < tolerance*(1.0+math.Abs(newPotential))
	red.sldPotential = newPotential
	return clean, nil
}

// slidePotential sums (maxRow-k)*log r[k] over the block boundaries k.
// The potential strictly decreases while slide reduction makes progress.
func (red *Reduction) slidePotential(blockSize int, minRow int, maxRow int) (float64, error) {
	if err := red.m.UpdateRows(maxRow); err != nil {
		return 0, fmt.Errorf("Reduction.slidePotential: %w", err)
	}
	potential := 0.0
	for k := minRow; k < maxRow; k += blockSize {
		logR, err := red.m.LogR(k)
		if err != nil {
			return 0, fmt.Errorf("Reduction.slidePotential: %w", err)
		}
		potential += float64(maxRow-k) * logR
	}
	return potential, nil
}

// tourEx runs one tour of the variant the flags select and folds any
// fault into the reduction status. It returns whether the basis was
// already reduced and, for primal sweeps, the clean prefix bound.
func (red *Reduction) tourEx(blockSize int, minRow int, maxRow int) (bool, int, bool) {
	var clean bool
	var kappaMax int
	var err error
	switch {
	case red.param.Flags&SlideReduction != 0:
		clean, err = red.slideTour(blockSize, minRow, maxRow)
		kappaMax = minRow
	case red.param.Flags&SDVariant != 0:
		clean, kappaMax, err = red.sdTour(blockSize, minRow, maxRow)
	default:
		clean, kappaMax, err = red.primalTour(blockSize, minRow, maxRow)
	}
	if err != nil {
		red.Status = statusFromError(err)
		return false, kappaMax, false
	}
	return clean, kappaMax, true
}
