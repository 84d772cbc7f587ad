// Copyright (c) 2023 Colin McRae

// Package intmatrix represents a matrix with exact big.Int entries.
// Lattice bases and the unimodular transforms applied to them are
// IntMatrix values, so no row operation ever loses precision.
package intmatrix

import (
	"fmt"
	"math/big"
	"strings"
)

type IntMatrix struct {
	values  []*big.Int
	numRows int
	numCols int
}

// NewEmpty returns a numRows x numCols matrix with 0s in each value. Negative
// numRows or numCols is interpreted as 0, and a 0 x n or n x 0 matrix is
// interpreted as 0 x 0.
func NewEmpty(numRows int, numCols int) *IntMatrix {
	if numRows < 0 {
		numRows = 0
	}
	if numCols < 0 {
		numCols = 0
	}
	if numRows == 0 || numCols == 0 {
		return &IntMatrix{
			values:  nil,
			numRows: 0,
			numCols: 0,
		}
	}
	retVal := &IntMatrix{
		values:  make([]*big.Int, numRows*numCols),
		numRows: numRows,
		numCols: numCols,
	}
	for i := 0; i < numRows*numCols; i++ {
		retVal.values[i] = big.NewInt(0)
	}
	return retVal
}

// NewIdentity returns a dim x dim identity matrix. If dim < 1,
// an error is returned.
func NewIdentity(dim int) (*IntMatrix, error) {
	if dim < 1 {
		return nil, fmt.Errorf("IntMatrix.NewIdentity: dimension %d < 1", dim)
	}
	retVal := NewEmpty(dim, dim)
	for i := 0; i < dim; i++ {
		retVal.values[i*dim+i].SetInt64(1)
	}
	return retVal, nil
}

// NewFromInt64Array creates a matrix from input with dimensions
// numRowsIn x numColsIn. If the number of rows and columns are not
// positive and/or do not match the length of the input, an error is
// returned.
func NewFromInt64Array(input []int64, numRowsIn int, numColsIn int) (*IntMatrix, error) {
	if len(input) != numRowsIn*numColsIn {
		return nil, fmt.Errorf("IntMatrix.NewFromInt64Array: length of input does not match dimensions")
	}
	if numRowsIn <= 0 || numColsIn <= 0 {
		return nil, fmt.Errorf(
			"IntMatrix.NewFromInt64Array: illegal number of rows %d or columns %d",
			numRowsIn, numColsIn,
		)
	}
	retVal := &IntMatrix{
		values:  make([]*big.Int, numRowsIn*numColsIn),
		numRows: numRowsIn,
		numCols: numColsIn,
	}
	for index, value := range input {
		retVal.values[index] = big.NewInt(value)
	}
	return retVal, nil
}

// Set sets the value in row i, column j to x. This is a deep copy.
func (im *IntMatrix) Set(i int, j int, x *big.Int) error {
	if err := im.checkIndices(i, j, "Set"); err != nil {
		return err
	}
	im.values[i*im.numCols+j].Set(x)
	return nil
}

// SetInt64 sets the value in row i, column j to x.
func (im *IntMatrix) SetInt64(i int, j int, x int64) error {
	if err := im.checkIndices(i, j, "SetInt64"); err != nil {
		return err
	}
	im.values[i*im.numCols+j].SetInt64(x)
	return nil
}

// Get returns the pointer to the value in row i, column j of im.
// This is not a deep copy.
func (im *IntMatrix) Get(i int, j int) (*big.Int, error) {
	if err := im.checkIndices(i, j, "Get"); err != nil {
		return nil, err
	}
	return im.values[i*im.numCols+j], nil
}

// GetInt64 returns the value in row i, column j of im as an int64, with
// an error if it does not fit.
func (im *IntMatrix) GetInt64(i int, j int) (int64, error) {
	if err := im.checkIndices(i, j, "GetInt64"); err != nil {
		return 0, err
	}
	entry := im.values[i*im.numCols+j]
	if !entry.IsInt64() {
		return 0, fmt.Errorf(
			"IntMatrix.GetInt64: entry [%d][%d] = %q does not fit in an int64",
			i, j, entry.String(),
		)
	}
	return entry.Int64(), nil
}

// SwapRows interchanges rows i and j of im.
func (im *IntMatrix) SwapRows(i int, j int) error {
	if err := im.checkRow(i, "SwapRows"); err != nil {
		return err
	}
	if err := im.checkRow(j, "SwapRows"); err != nil {
		return err
	}
	if i == j {
		return nil
	}
	for k := 0; k < im.numCols; k++ {
		im.values[i*im.numCols+k], im.values[j*im.numCols+k] =
			im.values[j*im.numCols+k], im.values[i*im.numCols+k]
	}
	return nil
}

// PermuteRows performs the row operation on im:
// row cycles[i][0] -> row cycles[i][1], row cycles[i][1] -> row cycles[i][2], etc.
// for i in {0,...,len(cycles)-1}.
//
// Each cycles[i][j] must contain a valid row number for im, or an error is
// returned. PermuteRows does not verify that cycles represents a valid
// permutation of the rows of im.
func (im *IntMatrix) PermuteRows(cycles [][]int) error {
	if len(cycles) == 0 {
		return fmt.Errorf("IntMatrix.PermuteRows: permutation was empty")
	}
	for i := 0; i < len(cycles); i++ {
		cycleLen := len(cycles[i])
		overwritten := make([]*big.Int, im.numCols)
		for j := 0; j < cycleLen; j++ {
			sourceRow := cycles[i][j]
			if err := im.checkRow(sourceRow, "PermuteRows"); err != nil {
				return err
			}
			var destRow int
			if j+1 == cycleLen {
				destRow = cycles[i][0]
			} else {
				destRow = cycles[i][j+1]
			}
			if err := im.checkRow(destRow, "PermuteRows"); err != nil {
				return err
			}
			for k := 0; k < im.numCols; k++ {
				var sourceEntry *big.Int
				if j == 0 {
					// In this iteration of the cycle, overwritten is an array of nil pointers
					sourceEntry = im.values[sourceRow*im.numCols+k]
				} else {
					// In this iteration of the cycle, overwritten contains the contents
					// of the row just overwritten from before it was overwritten.
					sourceEntry = overwritten[k]
				}
				overwritten[k] = im.values[destRow*im.numCols+k]
				im.values[destRow*im.numCols+k] = sourceEntry
			}
		}
	}
	return nil
}

// MoveRow moves row i to position j, shifting the rows in between by one
// to close the gap. Rows outside {min(i,j),...,max(i,j)} are untouched.
func (im *IntMatrix) MoveRow(i int, j int) error {
	if err := im.checkRow(i, "MoveRow"); err != nil {
		return err
	}
	if err := im.checkRow(j, "MoveRow"); err != nil {
		return err
	}
	if i == j {
		return nil
	}

	// A move is the rotation of rows {min(i,j),...,max(i,j)}
	var cycle []int
	if i < j {
		for k := i; k <= j; k++ {
			cycle = append(cycle, k)
		}

		// Reverse direction: row i lands on row j
		for left, right := 0, len(cycle)-1; left < right; left, right = left+1, right-1 {
			cycle[left], cycle[right] = cycle[right], cycle[left]
		}
	} else {
		for k := j; k <= i; k++ {
			cycle = append(cycle, k)
		}
	}
	if err := im.PermuteRows([][]int{cycle}); err != nil {
		return fmt.Errorf("IntMatrix.MoveRow: could not rotate rows: %q", err.Error())
	}
	return nil
}

// AddMultipleOfRow adds x times row j to row i, for i != j. This is a
// determinant-preserving row operation.
func (im *IntMatrix) AddMultipleOfRow(x *big.Int, i int, j int) error {
	if err := im.checkRow(i, "AddMultipleOfRow"); err != nil {
		return err
	}
	if err := im.checkRow(j, "AddMultipleOfRow"); err != nil {
		return err
	}
	if i == j {
		return fmt.Errorf("IntMatrix.AddMultipleOfRow: source row %d equals destination row", i)
	}
	if x.Sign() == 0 {
		return nil
	}
	term := big.NewInt(0)
	for k := 0; k < im.numCols; k++ {
		term.Mul(x, im.values[j*im.numCols+k])
		entry := im.values[i*im.numCols+k]
		entry.Add(entry, term)
	}
	return nil
}

// AddInt64MultipleOfRow adds x times row j to row i, for i != j.
func (im *IntMatrix) AddInt64MultipleOfRow(x int64, i int, j int) error {
	return im.AddMultipleOfRow(big.NewInt(x), i, j)
}

// ScaleRow multiplies row i by x, which must be 1 or -1 so the operation
// stays unimodular.
func (im *IntMatrix) ScaleRow(i int, x int64) error {
	if err := im.checkRow(i, "ScaleRow"); err != nil {
		return err
	}
	if x != 1 && x != -1 {
		return fmt.Errorf("IntMatrix.ScaleRow: scale factor %d is not a unit", x)
	}
	if x == 1 {
		return nil
	}
	for k := 0; k < im.numCols; k++ {
		entry := im.values[i*im.numCols+k]
		entry.Neg(entry)
	}
	return nil
}

// AppendZeroRow grows im by one row of 0s.
func (im *IntMatrix) AppendZeroRow() {
	for k := 0; k < im.numCols; k++ {
		im.values = append(im.values, big.NewInt(0))
	}
	im.numRows++
}

// RemoveLastRow shrinks im by one row. The removed row need not be zero.
func (im *IntMatrix) RemoveLastRow() error {
	if im.numRows < 1 {
		return fmt.Errorf("IntMatrix.RemoveLastRow: matrix has no rows")
	}
	im.numRows--
	im.values = im.values[:im.numRows*im.numCols]
	if im.numRows == 0 {
		im.values = nil
		im.numCols = 0
	}
	return nil
}

// RowIsZero reports whether every entry of row i is 0.
func (im *IntMatrix) RowIsZero(i int) (bool, error) {
	if err := im.checkRow(i, "RowIsZero"); err != nil {
		return false, err
	}
	for k := 0; k < im.numCols; k++ {
		if im.values[i*im.numCols+k].Sign() != 0 {
			return false, nil
		}
	}
	return true, nil
}

// DotRows returns the dot product of rows i and j of im.
func (im *IntMatrix) DotRows(i int, j int) (*big.Int, error) {
	if err := im.checkRow(i, "DotRows"); err != nil {
		return nil, err
	}
	if err := im.checkRow(j, "DotRows"); err != nil {
		return nil, err
	}
	retVal := big.NewInt(0)
	term := big.NewInt(0)
	for k := 0; k < im.numCols; k++ {
		term.Mul(im.values[i*im.numCols+k], im.values[j*im.numCols+k])
		retVal.Add(retVal, term)
	}
	return retVal, nil
}

// Mul replaces the contents of im with the matrix xy and returns im. If
// dimensions of x and y do not match, an error is returned.
func (im *IntMatrix) Mul(x *IntMatrix, y *IntMatrix) (*IntMatrix, error) {
	if x.numCols != y.numRows {
		return nil, fmt.Errorf(
			"IntMatrix.Mul: mismatched dimensions for operands x (%d x %d) and y (%d x %d)",
			x.numRows, x.numCols, y.numRows, y.numCols,
		)
	}
	retVal := NewEmpty(x.numRows, y.numCols)
	term := big.NewInt(0)
	for i := 0; i < x.numRows; i++ {
		for j := 0; j < y.numCols; j++ {
			entry := retVal.values[i*retVal.numCols+j]
			for k := 0; k < x.numCols; k++ {
				term.Mul(x.values[i*x.numCols+k], y.values[k*y.numCols+j])
				entry.Add(entry, term)
			}
		}
	}
	im.Copy(retVal)
	return im, nil
}

// Transpose replaces the contents of im with the transpose of matrix x
// and returns im.
func (im *IntMatrix) Transpose(x *IntMatrix) *IntMatrix {
	retVal := NewEmpty(x.numCols, x.numRows)
	for i := 0; i < retVal.numRows; i++ {
		for j := 0; j < retVal.numCols; j++ {
			retVal.values[i*retVal.numCols+j].Set(x.values[j*x.numCols+i])
		}
	}
	im.Copy(retVal)
	return im
}

// Copy copies x to im and returns im. This is a deep copy.
func (im *IntMatrix) Copy(x *IntMatrix) *IntMatrix {
	if x.numRows <= 0 || x.numCols <= 0 {
		im.numRows = 0
		im.numCols = 0
		im.values = nil
		return im
	}
	im.numRows = x.numRows
	im.numCols = x.numCols
	im.values = make([]*big.Int, im.numRows*im.numCols)
	for i := 0; i < im.numRows*im.numCols; i++ {
		im.values[i] = big.NewInt(0).Set(x.values[i])
	}
	return im
}

// Equals reports whether im and x have the same dimensions and equal
// corresponding entries.
func (im *IntMatrix) Equals(x *IntMatrix) bool {
	if (im.numRows != x.numRows) || (im.numCols != x.numCols) {
		return false
	}
	for i := 0; i < len(im.values); i++ {
		if im.values[i].Cmp(x.values[i]) != 0 {
			return false
		}
	}
	return true
}

// Dimensions returns the number of rows and columns in im, in that order.
func (im *IntMatrix) Dimensions() (int, int) {
	return im.numRows, im.numCols
}

// NumRows returns the number of rows in im
func (im *IntMatrix) NumRows() int {
	return im.numRows
}

// NumCols returns the number of columns in im
func (im *IntMatrix) NumCols() int {
	return im.numCols
}

// String returns a string representing im with rows separated by newlines.
func (im *IntMatrix) String() string {
	var sb strings.Builder
	for i := 0; i < im.numRows; i++ {
		for j := 0; j < im.numCols; j++ {
			sb.WriteString(fmt.Sprintf("%s, ", im.values[i*im.numCols+j].String()))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (im *IntMatrix) checkIndices(i int, j int, caller string) error {
	if i < 0 || im.numRows <= i {
		return fmt.Errorf(
			"IntMatrix.%s: index i = %d outside range {0, ... %d}", caller, i, im.numRows-1,
		)
	}
	if j < 0 || im.numCols <= j {
		return fmt.Errorf(
			"IntMatrix.%s: index j = %d outside range {0, ... %d}", caller, j, im.numCols-1,
		)
	}
	return nil
}

func (im *IntMatrix) checkRow(i int, caller string) error {
	if i < 0 || im.numRows <= i {
		return fmt.Errorf(
			"IntMatrix.%s: row %d outside range {0, ... %d}", caller, i, im.numRows-1,
		)
	}
	return nil
}
