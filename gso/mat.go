// Copyright (c) 2023 Colin McRae

// Package gso maintains the Gram-Schmidt orthogonalization of a lattice
// basis held as exact integers. A Mat borrows the basis B (and an optional
// transform U with its inverse transpose) and keeps the coefficients
// mu[i][j] = <b_i, b*_j> / <b*_j, b*_j> and the squared norms
// r[i] = <b*_i, b*_i> in arbitrary-precision arithmetic.
//
// Row operations go through the Mat so they can be mirrored onto U, and a
// validity watermark records how many leading rows have current mu and r.
package gso

import (
	"errors"
	"fmt"

	"github.com/predrag3141/BKZ/bignumber"
	"github.com/predrag3141/BKZ/intmatrix"
)

// ErrGSOFailure reports that an update produced a squared norm that is
// negative beyond what round-off can explain, which means the working
// precision is exhausted.
var ErrGSOFailure = errors.New("gso: negative squared norm")

type Mat struct {
	b     *intmatrix.IntMatrix
	u     *intmatrix.IntMatrix // optional transform, b = u * (original b)
	uInvT *intmatrix.IntMatrix // optional inverse transpose of u

	mu [][]*bignumber.BigNumber // mu[i][j] for j < i
	r  []*bignumber.BigNumber

	// rows {0,...,valid-1} have current mu and r
	valid      int
	inRowOp    bool
	rowOpFirst int

	// rows added by AppendZeroRow and not yet removed
	appendedRows int
}

// New returns a Mat borrowing basis b. If u is non-nil it is overwritten
// with the identity and every subsequent row operation on b is mirrored
// onto it. If uInvT is non-nil, u must be too, and uInvT receives the
// mirrored operations that keep it the inverse transpose of u.
func New(b *intmatrix.IntMatrix, u *intmatrix.IntMatrix, uInvT *intmatrix.IntMatrix) (*Mat, error) {
	numRows, numCols := b.Dimensions()
	if numRows <= 0 || numCols <= 0 {
		return nil, fmt.Errorf("gso.New: basis is empty")
	}
	if numRows > numCols {
		return nil, fmt.Errorf(
			"gso.New: basis has more rows (%d) than columns (%d)", numRows, numCols,
		)
	}
	if uInvT != nil && u == nil {
		return nil, fmt.Errorf("gso.New: uInvT without u")
	}
	for _, transform := range []*intmatrix.IntMatrix{u, uInvT} {
		if transform == nil {
			continue
		}
		identity, err := intmatrix.NewIdentity(numRows)
		if err != nil {
			return nil, fmt.Errorf("gso.New: could not build the identity: %q", err.Error())
		}
		transform.Copy(identity)
	}
	retVal := &Mat{
		b:     b,
		u:     u,
		uInvT: uInvT,
		mu:    make([][]*bignumber.BigNumber, numRows),
		r:     make([]*bignumber.BigNumber, numRows),
	}
	for i := 0; i < numRows; i++ {
		retVal.mu[i] = make([]*bignumber.BigNumber, i)
		for j := 0; j < i; j++ {
			retVal.mu[i][j] = bignumber.NewFromInt64(0)
		}
		retVal.r[i] = bignumber.NewFromInt64(0)
	}
	return retVal, nil
}

// NumRows returns the number of basis rows.
func (m *Mat) NumRows() int {
	return m.b.NumRows()
}

// Basis returns the borrowed basis. Mutating it directly bypasses the
// watermark and the transform mirroring.
func (m *Mat) Basis() *intmatrix.IntMatrix {
	return m.b
}

// ValidRows returns the watermark: rows {0,...,ValidRows()-1} have
// current mu and r.
func (m *Mat) ValidRows() int {
	return m.valid
}

// R returns r[i], which must be below the watermark.
func (m *Mat) R(i int) (*bignumber.BigNumber, error) {
	if i < 0 || m.valid <= i {
		return nil, fmt.Errorf("Mat.R: row %d is not below the watermark %d", i, m.valid)
	}
	return m.r[i], nil
}

// Mu returns mu[i][j] for j < i, both below the watermark.
func (m *Mat) Mu(i int, j int) (*bignumber.BigNumber, error) {
	if i < 0 || m.valid <= i {
		return nil, fmt.Errorf("Mat.Mu: row %d is not below the watermark %d", i, m.valid)
	}
	if j < 0 || i <= j {
		return nil, fmt.Errorf("Mat.Mu: column %d is not in {0,...,%d}", j, i-1)
	}
	return m.mu[i][j], nil
}

// LogR returns the natural log of r[i] without overflowing float64.
func (m *Mat) LogR(i int) (float64, error) {
	ri, err := m.R(i)
	if err != nil {
		return 0, err
	}
	log2R, err := ri.Log2()
	if err != nil {
		return 0, fmt.Errorf("Mat.LogR: r[%d] is not positive: %q", i, err.Error())
	}
	const ln2 = 0.6931471805599453
	return log2R * ln2, nil
}

// RowOpBegin opens a window of row operations touching rows
// {first,...,last-1}. Until RowOpEnd is called, accessors below first
// remain usable and rows at or above first must not be read.
func (m *Mat) RowOpBegin(first int, last int) error {
	if m.inRowOp {
		return fmt.Errorf("Mat.RowOpBegin: a row operation window is already open")
	}
	if first < 0 || last <= first || m.b.NumRows() < last {
		return fmt.Errorf(
			"Mat.RowOpBegin: invalid window {%d,...,%d} for %d rows", first, last-1, m.b.NumRows(),
		)
	}
	m.inRowOp = true
	m.rowOpFirst = first
	return nil
}

// RowOpEnd closes the window opened by RowOpBegin and lowers the
// watermark to its first row.
func (m *Mat) RowOpEnd() error {
	if !m.inRowOp {
		return fmt.Errorf("Mat.RowOpEnd: no row operation window is open")
	}
	m.inRowOp = false
	m.invalidateFrom(m.rowOpFirst)
	return nil
}

func (m *Mat) invalidateFrom(row int) {
	if row < m.valid {
		m.valid = row
	}
}

// UpdateRow computes mu[i][.] and r[i] from the basis, assuming rows
// {0,...,i-1} are below the watermark, and advances the watermark past
// row i. A squared norm that comes out negative beyond round-off yields
// ErrGSOFailure. Rows whose r has collapsed to zero, as happens to a row
// made linearly dependent on its predecessors, get r[i] = 0 and are
// skipped as projection targets in later updates.
func (m *Mat) UpdateRow(i int) error {
	if i < 0 || m.b.NumRows() <= i {
		return fmt.Errorf("Mat.UpdateRow: row %d outside range {0,...,%d}", i, m.b.NumRows()-1)
	}
	if m.valid < i {
		return fmt.Errorf("Mat.UpdateRow: row %d is above the watermark %d", i, m.valid)
	}

	// s[j] = <b_i, b*_j> satisfies s[j] = <b_i, b_j> - sum over k < j of
	// mu[j][k] s[k], and then mu[i][j] = s[j] / r[j] and
	// r[i] = <b_i, b_i> - sum over k < i of mu[i][k] s[k]
	s := make([]*bignumber.BigNumber, i)
	term := bignumber.NewFromInt64(0)
	for j := 0; j < i; j++ {
		gram, err := m.b.DotRows(i, j)
		if err != nil {
			return fmt.Errorf("Mat.UpdateRow: could not compute <b_%d, b_%d>: %q", i, j, err.Error())
		}
		s[j] = bignumber.NewFromBigInt(gram)
		for k := 0; k < j; k++ {
			term.Mul(m.mu[j][k], s[k])
			s[j].Sub(s[j], term)
		}
		if m.r[j].IsZero() || m.r[j].IsSmall() {
			// row j is a collapsed dependency; it has no projection
			m.mu[i][j].Set(bignumber.NewFromInt64(0))
			s[j].Set(bignumber.NewFromInt64(0))
			continue
		}
		if _, err = m.mu[i][j].Quo(s[j], m.r[j]); err != nil {
			return fmt.Errorf("Mat.UpdateRow: could not compute mu[%d][%d]: %q", i, j, err.Error())
		}
		m.mu[i][j].Normalize(0)
	}
	gram, err := m.b.DotRows(i, i)
	if err != nil {
		return fmt.Errorf("Mat.UpdateRow: could not compute <b_%d, b_%d>: %q", i, i, err.Error())
	}
	m.r[i].Set(bignumber.NewFromBigInt(gram))
	for k := 0; k < i; k++ {
		term.Mul(m.mu[i][k], s[k])
		m.r[i].Sub(m.r[i], term)
	}
	m.r[i].Normalize(0)
	if m.r[i].IsNegative() {
		if !m.r[i].IsSmall() {
			return fmt.Errorf("Mat.UpdateRow: r[%d] is negative: %w", i, ErrGSOFailure)
		}
		m.r[i].Set(bignumber.NewFromInt64(0))
	}
	if i == m.valid {
		m.valid++
	}
	return nil
}

// UpdateRows advances the watermark to cover rows {0,...,last-1},
// computing whatever is stale.
func (m *Mat) UpdateRows(last int) error {
	if last > m.b.NumRows() {
		return fmt.Errorf("Mat.UpdateRows: last = %d exceeds %d rows", last, m.b.NumRows())
	}
	for i := m.valid; i < last; i++ {
		if err := m.UpdateRow(i); err != nil {
			return err
		}
	}
	return nil
}
