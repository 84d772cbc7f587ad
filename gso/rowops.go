// Copyright (c) 2023 Colin McRae

package gso

import (
	"fmt"
	"math/big"

	"github.com/predrag3141/BKZ/bignumber"
	"github.com/predrag3141/BKZ/intmatrix"
)

// SwapRows interchanges rows i and j of the basis, mirroring the swap
// onto the transform and its inverse transpose.
func (m *Mat) SwapRows(i int, j int) error {
	if err := m.b.SwapRows(i, j); err != nil {
		return fmt.Errorf("Mat.SwapRows: could not swap basis rows: %q", err.Error())
	}
	if m.u != nil {
		if err := m.u.SwapRows(i, j); err != nil {
			return fmt.Errorf("Mat.SwapRows: could not swap transform rows: %q", err.Error())
		}
	}
	if m.uInvT != nil {
		// the inverse transpose of a permutation is the permutation
		if err := m.uInvT.SwapRows(i, j); err != nil {
			return fmt.Errorf("Mat.SwapRows: could not swap inverse transform rows: %q", err.Error())
		}
	}
	if !m.inRowOp {
		if i < j {
			m.invalidateFrom(i)
		} else {
			m.invalidateFrom(j)
		}
	}
	return nil
}

// MoveRow moves basis row i to position j, rotating the rows in between.
func (m *Mat) MoveRow(i int, j int) error {
	if err := m.b.MoveRow(i, j); err != nil {
		return fmt.Errorf("Mat.MoveRow: could not move basis row: %q", err.Error())
	}
	if m.u != nil {
		if err := m.u.MoveRow(i, j); err != nil {
			return fmt.Errorf("Mat.MoveRow: could not move transform row: %q", err.Error())
		}
	}
	if m.uInvT != nil {
		if err := m.uInvT.MoveRow(i, j); err != nil {
			return fmt.Errorf("Mat.MoveRow: could not move inverse transform row: %q", err.Error())
		}
	}
	if !m.inRowOp {
		if i < j {
			m.invalidateFrom(i)
		} else {
			m.invalidateFrom(j)
		}
	}
	return nil
}

// RowAddMul adds x times row j to row i of the basis. The transform gets
// the same operation; the inverse transpose gets the contragredient one,
// which subtracts x times row i from row j.
func (m *Mat) RowAddMul(i int, j int, x *big.Int) error {
	if err := m.b.AddMultipleOfRow(x, i, j); err != nil {
		return fmt.Errorf("Mat.RowAddMul: could not update basis: %q", err.Error())
	}
	if m.u != nil {
		if err := m.u.AddMultipleOfRow(x, i, j); err != nil {
			return fmt.Errorf("Mat.RowAddMul: could not update transform: %q", err.Error())
		}
	}
	if m.uInvT != nil {
		minusX := big.NewInt(0).Neg(x)
		if err := m.uInvT.AddMultipleOfRow(minusX, j, i); err != nil {
			return fmt.Errorf("Mat.RowAddMul: could not update inverse transform: %q", err.Error())
		}
	}
	if !m.inRowOp {
		m.invalidateFrom(i)
	}
	return nil
}

// NegateRow multiplies basis row i by -1, mirrored onto the transforms.
func (m *Mat) NegateRow(i int) error {
	if err := m.b.ScaleRow(i, -1); err != nil {
		return fmt.Errorf("Mat.NegateRow: could not scale basis row: %q", err.Error())
	}
	if m.u != nil {
		if err := m.u.ScaleRow(i, -1); err != nil {
			return fmt.Errorf("Mat.NegateRow: could not scale transform row: %q", err.Error())
		}
	}
	if m.uInvT != nil {
		if err := m.uInvT.ScaleRow(i, -1); err != nil {
			return fmt.Errorf("Mat.NegateRow: could not scale inverse transform row: %q", err.Error())
		}
	}
	if !m.inRowOp {
		m.invalidateFrom(i)
	}
	return nil
}

// AppendZeroRow grows the basis by a zero row so a linear combination of
// existing rows can be accumulated into it with RowAddMul. The transforms
// grow by one dimension with a unit in the new corner. Not supported when
// the inverse transpose is tracked, because removing the row later would
// leave it inconsistent.
func (m *Mat) AppendZeroRow() error {
	if m.uInvT != nil {
		return fmt.Errorf("Mat.AppendZeroRow: not supported while the inverse transform is tracked")
	}
	numRows := m.b.NumRows()
	m.b.AppendZeroRow()
	if m.u != nil {
		extended, err := extendSquare(m.u)
		if err != nil {
			return fmt.Errorf("Mat.AppendZeroRow: could not extend the transform: %q", err.Error())
		}
		m.u.Copy(extended)
	}
	m.mu = append(m.mu, make([]*bignumber.BigNumber, numRows))
	for j := 0; j < numRows; j++ {
		m.mu[numRows][j] = bignumber.NewFromInt64(0)
	}
	m.r = append(m.r, bignumber.NewFromInt64(0))
	m.appendedRows++
	return nil
}

// RemoveLastRow drops the last basis row, which must be zero. The
// transform loses its last row and column; the rows that remain still
// express the surviving basis in terms of the basis as it was when the
// zero row was appended.
func (m *Mat) RemoveLastRow() error {
	last := m.b.NumRows() - 1
	if last < 0 {
		return fmt.Errorf("Mat.RemoveLastRow: basis has no rows")
	}
	if m.u != nil && m.appendedRows == 0 {
		// dropping a row and column of the transform is only sound when
		// the row being balanced out was appended as zero
		return fmt.Errorf("Mat.RemoveLastRow: transform cannot survive removing an original row")
	}
	isZero, err := m.b.RowIsZero(last)
	if err != nil {
		return fmt.Errorf("Mat.RemoveLastRow: could not inspect row %d: %q", last, err.Error())
	}
	if !isZero {
		return fmt.Errorf("Mat.RemoveLastRow: row %d is not zero", last)
	}
	if err = m.b.RemoveLastRow(); err != nil {
		return fmt.Errorf("Mat.RemoveLastRow: could not shrink the basis: %q", err.Error())
	}
	if m.u != nil {
		shrunk, err := shrinkSquare(m.u)
		if err != nil {
			return fmt.Errorf("Mat.RemoveLastRow: could not shrink the transform: %q", err.Error())
		}
		m.u.Copy(shrunk)
	}
	m.mu = m.mu[:last]
	m.r = m.r[:last]
	if m.appendedRows > 0 {
		m.appendedRows--
	}
	m.invalidateFrom(last)
	return nil
}

// SizeReduceRow reduces row i against rows {0,...,i-1} with the nearest
// plane step: whenever |mu[i][j]| > eta, round(mu[i][j]) times row j is
// subtracted from row i. mu is maintained exactly so the watermark is
// unaffected; r[i] does not change under size reduction.
func (m *Mat) SizeReduceRow(i int, eta *bignumber.BigNumber) error {
	if i < 0 || m.valid <= i {
		return fmt.Errorf("Mat.SizeReduceRow: row %d is not below the watermark %d", i, m.valid)
	}
	absMu := bignumber.NewFromInt64(0)
	for j := i - 1; j >= 0; j-- {
		absMu.Abs(m.mu[i][j])
		if absMu.Cmp(eta) <= 0 {
			continue
		}
		c := bignumber.NewFromBigNumber(m.mu[i][j]).Round()
		cAsBigInt, err := c.AsBigInt()
		if err != nil {
			return fmt.Errorf("Mat.SizeReduceRow: could not round mu[%d][%d]: %q", i, j, err.Error())
		}
		if cAsBigInt.Sign() == 0 {
			continue
		}
		minusC := big.NewInt(0).Neg(cAsBigInt)
		wasInRowOp := m.inRowOp
		m.inRowOp = true // keep RowAddMul from lowering the watermark
		err = m.RowAddMul(i, j, minusC)
		m.inRowOp = wasInRowOp
		if err != nil {
			return fmt.Errorf("Mat.SizeReduceRow: could not subtract row %d: %q", j, err.Error())
		}

		// b_i -= c b_j shifts mu[i][k] by -c mu[j][k] for k < j and
		// mu[i][j] by -c, and leaves r[i] alone
		cNegated := bignumber.NewFromInt64(0).Neg(c)
		for k := 0; k < j; k++ {
			m.mu[i][k].MulAdd(cNegated, m.mu[j][k])
			m.mu[i][k].Normalize(0)
		}
		m.mu[i][j].Add(m.mu[i][j], cNegated)
	}
	return nil
}

func extendSquare(x *intmatrix.IntMatrix) (*intmatrix.IntMatrix, error) {
	dim := x.NumRows()
	retVal, err := intmatrix.NewIdentity(dim + 1)
	if err != nil {
		return nil, err
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			entry, err := x.Get(i, j)
			if err != nil {
				return nil, err
			}
			if err = retVal.Set(i, j, entry); err != nil {
				return nil, err
			}
		}
	}
	return retVal, nil
}

func shrinkSquare(x *intmatrix.IntMatrix) (*intmatrix.IntMatrix, error) {
	dim := x.NumRows() - 1
	if dim < 1 {
		return nil, fmt.Errorf("shrinkSquare: cannot shrink a %d x %d matrix", x.NumRows(), x.NumCols())
	}
	retVal := intmatrix.NewEmpty(dim, dim)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			entry, err := x.Get(i, j)
			if err != nil {
				return nil, err
			}
			if err = retVal.Set(i, j, entry); err != nil {
				return nil, err
			}
		}
	}
	return retVal, nil
}
