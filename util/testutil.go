package util

import (
	"fmt"
	"math/rand"
)

// RNG is a deterministic random source for tests. The same seed always
// yields the same stream.
type RNG struct {
	*rand.Rand
}

// NewRNG returns an RNG seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{Rand: rand.New(rand.NewSource(seed))}
}

// CreateInversePair creates a pair of inverse matrices with integer
// entries and determinant 1, as flat row-major []int64 of length dim*dim.
//
// The pair is built from random elementary row operations. The inverse
// operation to adding c times row i to row j is to add -c times row i to
// row j, so the product of the inverted operations in reverse order is
// the inverse matrix.
func CreateInversePair(rng *RNG, dim int) ([]int64, []int64, error) {
	const maxRowOpEntry = 10
	const maxRowOps = 10
	const maxMatrixEntry = 100
	retValA := make([]int64, dim*dim)
	retValB := make([]int64, dim*dim)

	for i := 0; i < maxRowOps; i++ {
		srcRow := rng.Intn(dim)
		destRow := rng.Intn(dim)
		multiple := int64(rng.Intn(maxRowOpEntry) - (maxRowOpEntry / 2))
		if multiple == 0 {
			multiple = 1
		}
		if srcRow == destRow {
			if destRow < dim/2 {
				destRow += dim / 2
			} else {
				destRow -= dim / 2
			}
		}
		rowOpMatrixA := make([]int64, dim*dim)
		rowOpMatrixB := make([]int64, dim*dim)
		for j := 0; j < dim; j++ {
			rowOpMatrixA[j*dim+j] = 1
			rowOpMatrixB[j*dim+j] = 1
			if i == 0 {
				retValA[j*dim+j] = 1
				retValB[j*dim+j] = 1
			}
		}
		rowOpMatrixA[destRow*dim+srcRow] = multiple
		rowOpMatrixB[destRow*dim+srcRow] = -multiple
		if i == 0 {
			retValA[destRow*dim+srcRow] = multiple
			retValB[destRow*dim+srcRow] = -multiple
			continue
		}

		// i > 0, so an update of retValA and retValB is required
		var tmpB []int64
		tmpA, err := MultiplyIntInt(rowOpMatrixA, retValA, dim)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"CreateInversePair: could not multiply retValA by rowOpMatrixA: %q", err.Error(),
			)
		}
		tmpB, err = MultiplyIntInt(retValB, rowOpMatrixB, dim)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"CreateInversePair: could not multiply retValB by rowOpMatrixB: %q", err.Error(),
			)
		}

		// An entry in tmpA or tmpB may exceed the maximum desired
		entryTooLarge := false
		for j := 0; j < dim*dim; j++ {
			if (tmpA[j] > maxMatrixEntry) || (tmpA[j] < -maxMatrixEntry) {
				entryTooLarge = true
				break
			}
			if (tmpB[j] > maxMatrixEntry) || (tmpB[j] < -maxMatrixEntry) {
				entryTooLarge = true
				break
			}
		}
		if entryTooLarge {
			return retValA, retValB, nil
		}
		retValA = tmpA
		retValB = tmpB
	}
	return retValA, retValB, nil
}

// IsInversePair returns whether x and y are inverses of each other
func IsInversePair(x, y []int64, dim int) (bool, error) {
	shouldBeInverse, err := MultiplyIntInt(x, y, dim)
	if err != nil {
		return false, fmt.Errorf(
			"IsInversePair: could not multiply x (%d-long) by y (%d-long): %q",
			len(x), len(y), err.Error(),
		)
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if (i == j) && (shouldBeInverse[i*dim+j] != 1) {
				return false, nil
			} else if (i != j) && (shouldBeInverse[i*dim+j] != 0) {
				return false, nil
			}
		}
	}
	return true, nil
}

// GetPermutation returns a random permutation of {0,...,size-1} that is
// guaranteed not to be the identity.
func GetPermutation(rng *RNG, size int) []int {
	permutation := rng.Perm(size)
	isIdentity := true
	for i := 0; i < size; i++ {
		if permutation[i] != i {
			isIdentity = false
		}
	}
	if !isIdentity {
		return permutation
	}

	// The random permutation is the identity. Return a random swap.
	src := rng.Intn(size)
	var dest int
	if size == 2 {
		dest = 0
	} else {
		dest = rng.Intn(size - 1)
	}
	if src <= dest {
		dest++
	}
	permutation[src] = dest
	permutation[dest] = src
	return permutation
}
