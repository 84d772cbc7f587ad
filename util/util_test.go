package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSeed = 41965
	testDim  = 7
)

func TestCreateInversePair(t *testing.T) {
	rng := NewRNG(testSeed)
	for trial := 0; trial < 10; trial++ {
		a, b, err := CreateInversePair(rng, testDim)
		require.NoError(t, err)
		areInverses, err := IsInversePair(a, b, testDim)
		assert.NoError(t, err)
		assert.True(t, areInverses)
		areInverses, err = IsInversePair(b, a, testDim)
		assert.NoError(t, err)
		assert.True(t, areInverses)
	}
}

func TestCreateInversePairIsDeterministic(t *testing.T) {
	a0, b0, err := CreateInversePair(NewRNG(testSeed), testDim)
	require.NoError(t, err)
	a1, b1, err := CreateInversePair(NewRNG(testSeed), testDim)
	require.NoError(t, err)
	assert.True(t, ArraysAreEqual(a0, a1))
	assert.True(t, ArraysAreEqual(b0, b1))
}

func TestGetPermutation(t *testing.T) {
	rng := NewRNG(testSeed)
	for _, size := range []int{2, 3, 8} {
		perm := GetPermutation(rng, size)
		require.Equal(t, size, len(perm))
		seen := make([]bool, size)
		isIdentity := true
		for i, p := range perm {
			require.GreaterOrEqual(t, p, 0)
			require.Less(t, p, size)
			assert.False(t, seen[p])
			seen[p] = true
			if p != i {
				isIdentity = false
			}
		}
		assert.False(t, isIdentity)
	}
}

func TestMultiplyIntInt(t *testing.T) {
	x := []int64{1, 2, 3, 4}
	y := []int64{0, 1, 1, 0}
	xy, err := MultiplyIntInt(x, y, 2)
	require.NoError(t, err)
	assert.True(t, ArraysAreEqual([]int64{2, 1, 4, 3}, xy))
	assert.Equal(t, int64(10), DotProduct(x, 2, x, 2, 0, 1, 0, 2))
	_, err = MultiplyIntInt([]int64{1, 2, 3}, y, 2)
	assert.Error(t, err)
}
