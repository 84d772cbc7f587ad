// Copyright (c) 2023 Colin McRae

package lll

import (
	"errors"
	"math/big"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/predrag3141/BKZ/bignumber"
	"github.com/predrag3141/BKZ/gso"
	"github.com/predrag3141/BKZ/intmatrix"
	"github.com/predrag3141/BKZ/util"
)

const (
	binaryPrecision = 300
	testSeed        = 24173
	randomDim       = 7
	randomTrials    = 5
)

func TestMain(m *testing.M) {
	if err := bignumber.Init(binaryPrecision); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newMatFromInt64(t *testing.T, entries []int64, numRows, numCols int, trackTransforms bool) (
	*gso.Mat, *intmatrix.IntMatrix, *intmatrix.IntMatrix, *intmatrix.IntMatrix,
) {
	b, err := intmatrix.NewFromInt64Array(entries, numRows, numCols)
	require.NoError(t, err)
	var u, uInvT *intmatrix.IntMatrix
	if trackTransforms {
		u = intmatrix.NewEmpty(numRows, numRows)
		uInvT = intmatrix.NewEmpty(numRows, numRows)
	}
	m, err := gso.New(b, u, uInvT)
	require.NoError(t, err)
	return m, b, u, uInvT
}

func TestKnownTwoDimensional(t *testing.T) {
	m, b, u, uInvT := newMatFromInt64(t, []int64{1, 1, 0, 2}, 2, 2, true)
	original := intmatrix.NewEmpty(2, 2).Copy(b)
	red, err := NewReducer(m, 0, 0)
	require.NoError(t, err)
	require.NoError(t, red.Reduce(0, 0, 2))

	isReduced, err := red.IsReduced(0, 2)
	require.NoError(t, err)
	assert.True(t, isReduced)

	// The shortest vectors in this lattice have squared length 2
	r0, err := m.R(0)
	require.NoError(t, err)
	assert.True(t, r0.Equals(bignumber.NewFromInt64(2), bignumber.NewFromInt64(0)))

	// The reduced basis is the transform applied to the original
	shouldBeBasis, err := intmatrix.NewEmpty(2, 2).Mul(u, original)
	require.NoError(t, err)
	assert.True(t, shouldBeBasis.Equals(b))

	// u and uInvT are inverse transposes of each other
	identity, err := intmatrix.NewIdentity(2)
	require.NoError(t, err)
	shouldBeIdentity, err := intmatrix.NewEmpty(2, 2).Mul(
		intmatrix.NewEmpty(2, 2).Transpose(uInvT), u,
	)
	require.NoError(t, err)
	assert.True(t, shouldBeIdentity.Equals(identity))
}

func TestRandomBases(t *testing.T) {
	rng := util.NewRNG(testSeed)
	for trial := 0; trial < randomTrials; trial++ {
		entries, _, err := util.CreateInversePair(rng, randomDim)
		require.NoError(t, err)
		m, b, u, uInvT := newMatFromInt64(t, entries, randomDim, randomDim, true)
		original := intmatrix.NewEmpty(randomDim, randomDim).Copy(b)
		red, err := NewReducer(m, 0, 0)
		require.NoError(t, err)
		require.NoError(t, red.Reduce(0, 0, randomDim))

		isReduced, err := red.IsReduced(0, randomDim)
		require.NoError(t, err)
		assert.True(t, isReduced)

		shouldBeBasis, err := intmatrix.NewEmpty(randomDim, randomDim).Mul(u, original)
		require.NoError(t, err)
		assert.True(t, shouldBeBasis.Equals(b))

		identity, err := intmatrix.NewIdentity(randomDim)
		require.NoError(t, err)
		shouldBeIdentity, err := intmatrix.NewEmpty(randomDim, randomDim).Mul(
			intmatrix.NewEmpty(randomDim, randomDim).Transpose(uInvT), u,
		)
		require.NoError(t, err)
		assert.True(t, shouldBeIdentity.Equals(identity))
	}
}

func TestPartialRange(t *testing.T) {
	// Rows 2 and 3 of a 4-row basis get reduced; rows 0 and 1 are
	// untouched even though they are far from reduced.
	entries := []int64{
		7, 1, 0, 0,
		12, 2, 0, 0,
		0, 0, 1, 1,
		0, 0, 0, 3,
	}
	m, b, _, _ := newMatFromInt64(t, entries, 4, 4, false)
	original := intmatrix.NewEmpty(4, 4).Copy(b)
	red, err := NewReducer(m, 0, 0)
	require.NoError(t, err)
	require.NoError(t, red.Reduce(2, 2, 4))
	for j := 0; j < 4; j++ {
		expected, err := original.Get(0, j)
		require.NoError(t, err)
		actual, err := b.Get(0, j)
		require.NoError(t, err)
		assert.Zero(t, expected.Cmp(actual))
		expected, err = original.Get(1, j)
		require.NoError(t, err)
		actual, err = b.Get(1, j)
		require.NoError(t, err)
		assert.Zero(t, expected.Cmp(actual))
	}
}

func TestReduceRejectsDependency(t *testing.T) {
	// Row 2 is the sum of rows 0 and 1
	m, _, _, _ := newMatFromInt64(t, []int64{2, 0, 0, 1, 2, 0, 3, 2, 0}, 3, 3, false)
	red, err := NewReducer(m, 0, 0)
	require.NoError(t, err)
	err = red.Reduce(0, 0, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLLLFailure))
}

func TestReduceWithRemoval(t *testing.T) {
	// Row 2 is the sum of rows 0 and 1, so removal leaves two rows
	// spanning the lattice of [[2,0,0],[1,2,0]], whose projection onto
	// the first two coordinates has determinant 4.
	m, b, _, _ := newMatFromInt64(t, []int64{2, 0, 0, 1, 2, 0, 3, 2, 0}, 3, 3, false)
	red, err := NewReducer(m, 0, 0)
	require.NoError(t, err)
	newEnd, err := red.ReduceWithRemoval(0, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, newEnd)
	require.Equal(t, 2, m.NumRows())

	isReduced, err := red.IsReduced(0, 2)
	require.NoError(t, err)
	assert.True(t, isReduced)

	var entry [4]int64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			entry[2*i+j], err = b.GetInt64(i, j)
			require.NoError(t, err)
		}
	}
	det := entry[0]*entry[3] - entry[1]*entry[2]
	if det < 0 {
		det = -det
	}
	assert.Equal(t, int64(4), det)

	// Both surviving rows lie in the original lattice: (x, y) is a
	// member exactly when y is even and x - y/2 is even.
	for i := 0; i < 2; i++ {
		x, y := entry[2*i], entry[2*i+1]
		require.Zero(t, y%2)
		assert.Zero(t, (x-y/2)%2)
	}
}

func TestInsertionViaRemoval(t *testing.T) {
	// The insertion pattern: append a zero row, accumulate a combination
	// of existing rows into it, move it to the front and reduce with
	// removal. The surviving transform still maps the original basis to
	// the reduced one.
	b, err := intmatrix.NewFromInt64Array([]int64{4, 0, 0, 9}, 2, 2)
	require.NoError(t, err)
	u := intmatrix.NewEmpty(2, 2)
	m, err := gso.New(b, u, nil)
	require.NoError(t, err)
	original := intmatrix.NewEmpty(2, 2).Copy(b)

	require.NoError(t, m.AppendZeroRow())
	require.NoError(t, m.RowAddMul(2, 0, big.NewInt(1)))
	require.NoError(t, m.RowAddMul(2, 1, big.NewInt(1)))
	require.NoError(t, m.MoveRow(2, 0))

	red, err := NewReducer(m, 0, 0)
	require.NoError(t, err)
	newEnd, err := red.ReduceWithRemoval(0, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, newEnd)
	require.Equal(t, 2, m.NumRows())

	shouldBeBasis, err := intmatrix.NewEmpty(2, 2).Mul(u, original)
	require.NoError(t, err)
	assert.True(t, shouldBeBasis.Equals(b))

	// (4, 9) entered the basis, so the shortest reduced vector is no
	// longer than it
	r0, err := m.R(0)
	require.NoError(t, err)
	assert.True(t, r0.Cmp(bignumber.NewFromInt64(97)) <= 0)
}

func TestNewReducerValidation(t *testing.T) {
	m, _, _, _ := newMatFromInt64(t, []int64{1, 0, 0, 1}, 2, 2, false)
	_, err := NewReducer(m, 0.2, 0)
	assert.Error(t, err)
	_, err = NewReducer(m, 1.0, 0)
	assert.Error(t, err)
	_, err = NewReducer(m, 0, 0.4)
	assert.Error(t, err)
	_, err = NewReducer(m, 0, 1.0)
	assert.Error(t, err)
	red, err := NewReducer(m, 0, 0)
	require.NoError(t, err)
	assert.Error(t, red.Reduce(-1, 0, 2))
	assert.Error(t, red.Reduce(0, 0, 3))
	assert.Error(t, red.Reduce(1, 1, 1))
}
