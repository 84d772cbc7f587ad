// Copyright (c) 2023 Colin McRae

// Package lll implements the Lenstra-Lenstra-Lovasz reduction of a basis
// held in a gso.Mat. The reducer runs the classic swap loop: size reduce
// the working row, test the Lovasz condition with delta, and either
// advance or swap back. ReduceWithRemoval additionally handles a basis
// with exactly one linear dependency, driving it to a zero row and
// removing it, which is how a candidate vector gets inserted into a
// basis without leaving the lattice.
package lll

import (
	"errors"
	"fmt"

	"github.com/predrag3141/BKZ/bignumber"
	"github.com/predrag3141/BKZ/gso"
)

// ErrLLLFailure reports a numeric fault inside the reduction loop, almost
// always exhausted precision surfacing from the GSO update.
var ErrLLLFailure = errors.New("lll: reduction failed")

const (
	// DefaultDelta and DefaultEta are the usual LLL parameters.
	DefaultDelta = 0.99
	DefaultEta   = 0.51
)

type Reducer struct {
	m     *gso.Mat
	delta *bignumber.BigNumber
	eta   *bignumber.BigNumber
}

// NewReducer returns a Reducer bound to m. delta must lie in (0.25, 1)
// and eta in [0.5, 1); values of 0 select the defaults.
func NewReducer(m *gso.Mat, delta float64, eta float64) (*Reducer, error) {
	if delta == 0 {
		delta = DefaultDelta
	}
	if eta == 0 {
		eta = DefaultEta
	}
	if delta <= 0.25 || 1.0 <= delta {
		return nil, fmt.Errorf("NewReducer: delta = %f outside (0.25, 1)", delta)
	}
	if eta < 0.5 || 1.0 <= eta {
		return nil, fmt.Errorf("NewReducer: eta = %f outside [0.5, 1)", eta)
	}
	deltaAsBigNumber, err := bignumber.NewFromFloat64(delta)
	if err != nil {
		return nil, fmt.Errorf("NewReducer: could not convert delta: %q", err.Error())
	}
	etaAsBigNumber, err := bignumber.NewFromFloat64(eta)
	if err != nil {
		return nil, fmt.Errorf("NewReducer: could not convert eta: %q", err.Error())
	}
	return &Reducer{m: m, delta: deltaAsBigNumber, eta: etaAsBigNumber}, nil
}

// Mat returns the gso.Mat the reducer is bound to.
func (red *Reducer) Mat() *gso.Mat {
	return red.m
}

// Reduce LLL-reduces rows {kappaMin,...,kappaEnd-1}, taking rows
// {kappaMin,...,kappaStart-1} as already reduced. Numeric faults are
// reported wrapping ErrLLLFailure.
func (red *Reducer) Reduce(kappaMin int, kappaStart int, kappaEnd int) error {
	removed, err := red.reduce(kappaMin, kappaStart, kappaEnd, false)
	if err != nil {
		return err
	}
	if removed != 0 {
		return fmt.Errorf(
			"Reducer.Reduce: basis rows {%d,...,%d} are linearly dependent: %w",
			kappaMin, kappaEnd-1, ErrLLLFailure,
		)
	}
	return nil
}

// ReduceWithRemoval LLL-reduces rows {kappaMin,...,kappaEnd-1} like
// Reduce, except that exactly one linear dependency in the range is
// tolerated: the dependent direction is driven to a zero row, moved to
// the last row of the basis and removed, so the rows after it shift up
// by one. The returned value is the end of the
// range after reduction, kappaEnd or kappaEnd-1. A second dependency is
// an error.
func (red *Reducer) ReduceWithRemoval(kappaMin int, kappaStart int, kappaEnd int) (int, error) {
	removed, err := red.reduce(kappaMin, kappaStart, kappaEnd, true)
	if err != nil {
		return 0, err
	}
	return kappaEnd - removed, nil
}

func (red *Reducer) reduce(kappaMin, kappaStart, kappaEnd int, allowRemoval bool) (int, error) {
	numRows := red.m.NumRows()
	if kappaMin < 0 || kappaEnd <= kappaMin || numRows < kappaEnd {
		return 0, fmt.Errorf(
			"Reducer.reduce: invalid range {%d,...,%d} for %d rows", kappaMin, kappaEnd-1, numRows,
		)
	}
	if kappaStart < kappaMin {
		kappaStart = kappaMin
	}
	kappa := kappaStart
	if kappa <= kappaMin {
		kappa = kappaMin + 1
	}
	if err := red.m.UpdateRows(kappa); err != nil {
		return 0, fmt.Errorf("Reducer.reduce: could not prepare rows below %d: %q: %w",
			kappa, err.Error(), ErrLLLFailure)
	}
	removed := 0
	lhs := bignumber.NewFromInt64(0)
	rhs := bignumber.NewFromInt64(0)
	muSq := bignumber.NewFromInt64(0)
	for kappa < kappaEnd-removed {
		if err := red.m.UpdateRows(kappa); err != nil {
			return 0, fmt.Errorf("Reducer.reduce: could not prepare rows below %d: %q: %w",
				kappa, err.Error(), ErrLLLFailure)
		}
		if err := red.m.UpdateRow(kappa); err != nil {
			return 0, fmt.Errorf("Reducer.reduce: could not update row %d: %q: %w",
				kappa, err.Error(), ErrLLLFailure)
		}
		if err := red.m.SizeReduceRow(kappa, red.eta); err != nil {
			return 0, fmt.Errorf("Reducer.reduce: could not size reduce row %d: %q: %w",
				kappa, err.Error(), ErrLLLFailure)
		}
		isZero, err := red.m.Basis().RowIsZero(kappa)
		if err != nil {
			return 0, fmt.Errorf("Reducer.reduce: could not inspect row %d: %q: %w",
				kappa, err.Error(), ErrLLLFailure)
		}
		if isZero {
			if !allowRemoval {
				return 0, fmt.Errorf(
					"Reducer.reduce: row %d collapsed to zero: %w", kappa, ErrLLLFailure,
				)
			}
			removed++
			if removed > 1 {
				return 0, fmt.Errorf(
					"Reducer.reduce: more than one dependency in {%d,...,%d}: %w",
					kappaMin, kappaEnd-1, ErrLLLFailure,
				)
			}
			if err = red.m.MoveRow(kappa, red.m.NumRows()-1); err != nil {
				return 0, fmt.Errorf("Reducer.reduce: could not park zero row: %q: %w",
					err.Error(), ErrLLLFailure)
			}
			if err = red.m.RemoveLastRow(); err != nil {
				return 0, fmt.Errorf("Reducer.reduce: could not drop zero row: %q: %w",
					err.Error(), ErrLLLFailure)
			}
			if kappa <= kappaMin {
				kappa = kappaMin + 1
			}
			continue
		}
		if kappa == kappaMin {
			kappa++
			continue
		}

		// Lovasz condition: delta r[kappa-1] <= r[kappa] + mu^2 r[kappa-1]
		rPrev, err := red.m.R(kappa - 1)
		if err != nil {
			return 0, fmt.Errorf("Reducer.reduce: could not read r[%d]: %q: %w",
				kappa-1, err.Error(), ErrLLLFailure)
		}
		rKappa, err := red.m.R(kappa)
		if err != nil {
			return 0, fmt.Errorf("Reducer.reduce: could not read r[%d]: %q: %w",
				kappa, err.Error(), ErrLLLFailure)
		}
		mu, err := red.m.Mu(kappa, kappa-1)
		if err != nil {
			return 0, fmt.Errorf("Reducer.reduce: could not read mu[%d][%d]: %q: %w",
				kappa, kappa-1, err.Error(), ErrLLLFailure)
		}
		lhs.Mul(red.delta, rPrev)
		muSq.Mul(mu, mu)
		rhs.Set(rKappa)
		rhs.MulAdd(muSq, rPrev)
		if lhs.Cmp(rhs) <= 0 {
			kappa++
			continue
		}
		if err = red.m.SwapRows(kappa-1, kappa); err != nil {
			return 0, fmt.Errorf("Reducer.reduce: could not swap rows %d and %d: %q: %w",
				kappa-1, kappa, err.Error(), ErrLLLFailure)
		}
		if kappa > kappaMin+1 {
			kappa--
		}
	}
	return removed, nil
}

// IsReduced reports whether rows {kappaMin,...,kappaEnd-1} satisfy the
// size reduction bound eta and the Lovasz condition with delta. Intended
// for tests and assertions.
func (red *Reducer) IsReduced(kappaMin int, kappaEnd int) (bool, error) {
	if err := red.m.UpdateRows(kappaEnd); err != nil {
		return false, fmt.Errorf("Reducer.IsReduced: could not update rows: %q", err.Error())
	}
	lhs := bignumber.NewFromInt64(0)
	rhs := bignumber.NewFromInt64(0)
	muSq := bignumber.NewFromInt64(0)
	absMu := bignumber.NewFromInt64(0)

	// eta is compared with a whisker of slack so an exactly-half
	// coefficient left by rounding does not fail the check
	etaSlack := bignumber.NewFromBigNumber(red.eta)
	etaSlack.Add(etaSlack, bignumber.NewPowerOfTwo(-20))
	for kappa := kappaMin + 1; kappa < kappaEnd; kappa++ {
		for j := kappaMin; j < kappa; j++ {
			mu, err := red.m.Mu(kappa, j)
			if err != nil {
				return false, fmt.Errorf("Reducer.IsReduced: could not read mu: %q", err.Error())
			}
			absMu.Abs(mu)
			if absMu.Cmp(etaSlack) > 0 {
				return false, nil
			}
		}
		rPrev, err := red.m.R(kappa - 1)
		if err != nil {
			return false, fmt.Errorf("Reducer.IsReduced: could not read r: %q", err.Error())
		}
		rKappa, err := red.m.R(kappa)
		if err != nil {
			return false, fmt.Errorf("Reducer.IsReduced: could not read r: %q", err.Error())
		}
		mu, err := red.m.Mu(kappa, kappa-1)
		if err != nil {
			return false, fmt.Errorf("Reducer.IsReduced: could not read mu: %q", err.Error())
		}
		lhs.Mul(red.delta, rPrev)
		muSq.Mul(mu, mu)
		rhs.Set(rKappa)
		rhs.MulAdd(muSq, rPrev)
		if lhs.Cmp(rhs) > 0 {
			return false, nil
		}
	}
	return true, nil
}
