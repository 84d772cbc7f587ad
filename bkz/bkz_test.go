// Copyright (c) 2023 Colin McRae

package bkz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/predrag3141/BKZ/bignumber"
	"github.com/predrag3141/BKZ/gso"
	"github.com/predrag3141/BKZ/intmatrix"
	"github.com/predrag3141/BKZ/lll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	binaryPrecision = 300
	testSeed        = 20230601
)

func TestMain(m *testing.M) {
	if err := bignumber.Init(binaryPrecision); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// newBasis returns the basis built from entries and an empty transform
// for gso.New to overwrite.
func newBasis(t *testing.T, entries []int64, dim int) (*intmatrix.IntMatrix, *intmatrix.IntMatrix) {
	b, err := intmatrix.NewFromInt64Array(entries, dim, dim)
	require.NoError(t, err)
	return b, intmatrix.NewEmpty(dim, dim)
}

// assertLatticeWitness checks that u times the original basis
// reproduces b, so the reduction only applied a change of basis.
func assertLatticeWitness(
	t *testing.T, entries []int64, dim int, b *intmatrix.IntMatrix, u *intmatrix.IntMatrix,
) {
	orig, err := intmatrix.NewFromInt64Array(entries, dim, dim)
	require.NoError(t, err)
	product, err := intmatrix.NewEmpty(dim, dim).Mul(u, orig)
	require.NoError(t, err)
	assert.True(t, product.Equals(b))
}

// assertIsLLLReduced rebuilds the GSO of b and checks the LLL conditions
// with default parameters.
func assertIsLLLReduced(t *testing.T, b *intmatrix.IntMatrix) {
	m, err := gso.New(b, nil, nil)
	require.NoError(t, err)
	lllRed, err := lll.NewReducer(m, 0, 0)
	require.NoError(t, err)
	reduced, err := lllRed.IsReduced(0, b.NumRows())
	require.NoError(t, err)
	assert.True(t, reduced)
}

func TestIdentityUnchanged(t *testing.T) {
	entries := []int64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	b, u := newBasis(t, entries, 4)
	status := Reduce(b, u, 3, 0, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)
	identity, err := intmatrix.NewIdentity(4)
	require.NoError(t, err)
	assert.True(t, b.Equals(identity))
	assertLatticeWitness(t, entries, 4, b, u)
}

func TestTwoDimensionalAlreadyReduced(t *testing.T) {
	entries := []int64{
		2, 0,
		0, 3,
	}
	b, u := newBasis(t, entries, 2)
	status := Reduce(b, u, 2, 0, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)
	expected, err := intmatrix.NewFromInt64Array(entries, 2, 2)
	require.NoError(t, err)
	assert.True(t, b.Equals(expected))
	assertLatticeWitness(t, entries, 2, b, u)
}

func TestHKZShortestVector(t *testing.T) {
	entries := []int64{
		5, 0, 0,
		2, 5, 0,
		1, 2, 5,
	}
	b, u := newBasis(t, entries, 3)
	status := HKZ(b, u, 0, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)

	// The shortest vector of this lattice is (5, 0, 0), up to sign.
	normSq := int64(0)
	for j := 0; j < 3; j++ {
		entry, err := b.GetInt64(0, j)
		require.NoError(t, err)
		normSq += entry * entry
	}
	assert.Equal(t, int64(25), normSq)
	assertLatticeWitness(t, entries, 3, b, u)
}

func TestBlockSizeTwoLeavesLLLReduced(t *testing.T) {
	entries := []int64{
		1, 0, 0,
		4, 1, 0,
		7, 4, 1,
	}
	b, u := newBasis(t, entries, 3)
	status := Reduce(b, u, 2, 0, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)
	assertIsLLLReduced(t, b)
	assertLatticeWitness(t, entries, 3, b, u)
}

func TestSelfDualVariant(t *testing.T) {
	entries := []int64{
		4, 1, 1,
		1, 5, 0,
		2, 0, 6,
	}
	b, u := newBasis(t, entries, 3)
	status := Reduce(b, u, 2, SDVariant, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)
	assertIsLLLReduced(t, b)
	assertLatticeWitness(t, entries, 3, b, u)
}

func TestSlideReduction(t *testing.T) {
	entries := []int64{
		8, 1, 0, 0,
		3, 9, 1, 0,
		0, 2, 7, 1,
		1, 0, 3, 8,
	}
	b, u := newBasis(t, entries, 4)
	status := Reduce(b, u, 2, SlideReduction, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)
	assertIsLLLReduced(t, b)
	assertLatticeWitness(t, entries, 4, b, u)
}

func TestSlideDivisibilityFault(t *testing.T) {
	entries := []int64{
		2, 0, 0, 0,
		1, 3, 0, 0,
		0, 1, 4, 0,
		1, 0, 1, 5,
	}
	b, u := newBasis(t, entries, 4)
	status := Reduce(b, u, 3, SlideReduction, FloatTypeDefault, 0)
	require.Equal(t, RedParamError, status)

	// The fault is detected before the basis is touched.
	expected, err := intmatrix.NewFromInt64Array(entries, 4, 4)
	require.NoError(t, err)
	assert.True(t, b.Equals(expected))
}

func TestMPFRPrecision(t *testing.T) {
	entries := []int64{
		3, 1,
		1, 4,
	}
	b, u := newBasis(t, entries, 2)
	status := ReduceWithParam(b, u, NewParam(2), FloatTypeMPFR, 0)
	assert.Equal(t, RedParamError, status)

	// Odd precisions are rounded up, not rejected.
	b, u = newBasis(t, entries, 2)
	status = ReduceWithParam(b, u, NewParam(2), FloatTypeMPFR, 301)
	require.Equal(t, RedSuccess, status)
	assertLatticeWitness(t, entries, 2, b, u)
}

func TestLoopsLimit(t *testing.T) {
	entries := []int64{
		8, 1, 0, 0,
		3, 9, 1, 0,
		0, 2, 7, 1,
		1, 0, 3, 8,
	}
	b, u := newBasis(t, entries, 4)
	param := NewParam(2)
	param.Flags = SlideReduction | MaxLoops
	param.MaxLoops = 1
	status := ReduceWithParam(b, u, param, FloatTypeDefault, 0)
	require.Equal(t, RedBKZLoopsLimit, status)

	// The budget is a status, not a fault: the basis is still consistent
	// and LLL-reduced.
	assertIsLLLReduced(t, b)
	assertLatticeWitness(t, entries, 4, b, u)
}

func TestTimeLimit(t *testing.T) {
	entries := []int64{
		8, 1, 0, 0,
		3, 9, 1, 0,
		0, 2, 7, 1,
		1, 0, 3, 8,
	}
	b, u := newBasis(t, entries, 4)
	param := NewParam(2)
	param.Flags = SlideReduction | MaxTime
	param.MaxTime = 1e-9
	status := ReduceWithParam(b, u, param, FloatTypeDefault, 0)
	require.Equal(t, RedBKZTimeLimit, status)
	assertIsLLLReduced(t, b)
	assertLatticeWitness(t, entries, 4, b, u)
}

func TestAutoAbortCountsFlatSlopes(t *testing.T) {
	entries := []int64{
		3, 0, 1,
		1, 4, 0,
		0, 1, 5,
	}
	b, err := intmatrix.NewFromInt64Array(entries, 3, 3)
	require.NoError(t, err)
	m, err := gso.New(b, nil, nil)
	require.NoError(t, err)

	// An unchanging basis repeats the same slope, so the abort counter
	// reaches maxNoDec after maxNoDec+1 calls.
	abort := newAutoAbort(m, 0, 3)
	const maxNoDec = 2
	for call := 0; call <= maxNoDec; call++ {
		stop, err := abort.testAbort(DefaultAutoAbortScale, maxNoDec)
		require.NoError(t, err)
		if call < maxNoDec {
			assert.False(t, stop)
		} else {
			assert.True(t, stop)
		}
	}
}

func TestSeededRerandomizationIsDeterministic(t *testing.T) {
	entries := []int64{
		9, 0, 0, 0,
		5, 8, 0, 0,
		2, 4, 7, 0,
		1, 3, 5, 6,
	}
	param := NewParam(3)
	param.Seed = testSeed
	param.Strategies = make([]Strategy, 4)
	param.Strategies[3] = Strategy{
		Pruning: []Pruning{
			{Probability: 0.4, Coefficients: []float64{1.0, 1.0, 1.0}},
			{Probability: 0.4, Coefficients: []float64{1.0, 1.0, 1.0}},
			{Probability: 0.4, Coefficients: []float64{1.0, 1.0, 1.0}},
		},
	}

	firstB, firstU := newBasis(t, entries, 4)
	status := ReduceWithParam(firstB, firstU, param, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)
	assertLatticeWitness(t, entries, 4, firstB, firstU)

	secondB, secondU := newBasis(t, entries, 4)
	status = ReduceWithParam(secondB, secondU, param, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)
	assert.True(t, firstB.Equals(secondB))
	assert.True(t, firstU.Equals(secondU))
}

func TestReductionIsIdempotent(t *testing.T) {
	entries := []int64{
		7, 0, 0,
		4, 7, 0,
		1, 4, 7,
	}
	b, u := newBasis(t, entries, 3)
	status := Reduce(b, u, 3, 0, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)

	reduced := intmatrix.NewEmpty(3, 3).Copy(b)
	secondU := intmatrix.NewEmpty(3, 3)
	status = Reduce(b, secondU, 3, 0, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)
	assert.True(t, b.Equals(reduced))
	identity, err := intmatrix.NewIdentity(3)
	require.NoError(t, err)
	assert.True(t, secondU.Equals(identity))
}

func TestDumpGSOWritesProfile(t *testing.T) {
	entries := []int64{
		6, 1, 0,
		2, 5, 1,
		0, 3, 7,
	}
	b, u := newBasis(t, entries, 3)
	param := NewParam(2)
	param.Flags = DumpGSO
	param.DumpGSOFilename = filepath.Join(t.TempDir(), "gso.txt")
	param.DumpGSOPrefix = "profile"
	status := ReduceWithParam(b, u, param, FloatTypeDefault, 0)
	require.Equal(t, RedSuccess, status)

	contents, err := os.ReadFile(param.DumpGSOFilename)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "profile tour 0:"))
	assert.Len(t, strings.Fields(lines[0]), 6)
}

func TestParamValidate(t *testing.T) {
	assert.Error(t, NewParam(1).Validate())

	param := NewParam(2)
	param.Delta = 1.5
	assert.Error(t, param.Validate())

	param = NewParam(2)
	param.Flags = DumpGSO
	assert.Error(t, param.Validate())

	param = NewParam(2)
	param.RerandomizationDensity = 0
	assert.Error(t, param.Validate())

	assert.NoError(t, NewParam(2).Validate())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", StatusString(RedSuccess))
	assert.Equal(t, "time limit exceeded", StatusString(RedBKZTimeLimit))
	assert.Equal(t, "parameter error", StatusString(RedParamError))
	assert.Equal(t, "unknown status", StatusString(Status(99)))
}
