package bignumber

import (
	"fmt"
	"math"
	"math/big"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrecision = 500
)

func TestMain(m *testing.M) {
	err := Init(testPrecision)
	if err != nil {
		fmt.Printf("Invalid input to Init: %q", err.Error())
		return
	}
	code := m.Run()
	os.Exit(code)
}

func checkResult(
	t *testing.T,
	expected *BigNumber,
	actual *BigNumber,
	tolerance *BigNumber,
) {
	receiver := NewFromInt64(0)
	actualError := receiver.Sub(expected, actual)
	actualError.Abs(actualError)
	assert.True(t, actualError.Cmp(tolerance) == -1)
}

func TestInit(t *testing.T) {
	assert.Error(t, Init(0))
	assert.Error(t, Init(-2))
	assert.Error(t, Init(501))
	assert.NoError(t, Init(testPrecision))
	assert.Equal(t, int64(testPrecision), Precision())
}

func TestNewFromInt64(t *testing.T) {
	x := NewFromInt64(-12345)
	assert.True(t, x.IsInt())
	xAsInt64, err := x.AsInt64()
	assert.NoError(t, err)
	assert.Equal(t, int64(-12345), xAsInt64)
}

func TestNewFromBigInt(t *testing.T) {
	input := big.NewInt(0)
	_, ok := input.SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	x := NewFromBigInt(input)
	assert.True(t, x.IsInt())
	xAsBigInt, err := x.AsBigInt()
	assert.NoError(t, err)
	assert.Equal(t, 0, input.Cmp(xAsBigInt))

	// NewFromBigInt must deep-copy its input
	input.SetInt64(0)
	xAsBigInt, err = x.AsBigInt()
	assert.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", xAsBigInt.String())
}

func TestNewFromFloat64(t *testing.T) {
	inputs := []float64{0, 1, -1, 0.5, -0.375, 1048576.25, -3.0517578125e-05}
	for _, input := range inputs {
		x, err := NewFromFloat64(input)
		assert.NoError(t, err)
		assert.Equal(t, input, x.Float64())
	}
	_, err := NewFromFloat64(math.Inf(1))
	assert.Error(t, err)
	_, err = NewFromFloat64(math.NaN())
	assert.Error(t, err)
}

func TestAddSubIdentities(t *testing.T) {
	x, err := NewFromDecimalString("3.14159265358979")
	require.NoError(t, err)
	y, err := NewFromDecimalString("-2.71828182845905")
	require.NoError(t, err)
	tolerance := NewPowerOfTwo(-int64(testPrecision) / 2)

	// (x + y) - y == x
	sum := NewFromInt64(0).Add(x, y)
	diff := NewFromInt64(0).Sub(sum, y)
	checkResult(t, x, diff, tolerance)

	// x - x == 0
	zero := NewFromInt64(0).Sub(x, x)
	assert.True(t, zero.IsZero())

	// x + (-x) == 0
	minusX := NewFromInt64(0).Neg(x)
	zero = NewFromInt64(0).Add(x, minusX)
	assert.True(t, zero.IsZero())
}

func TestMulQuoIdentities(t *testing.T) {
	x, err := NewFromDecimalString("7.25")
	require.NoError(t, err)
	y, err := NewFromDecimalString("-0.8125")
	require.NoError(t, err)
	tolerance := NewPowerOfTwo(-int64(testPrecision) / 2)

	// (xy) / y == x
	product := NewFromInt64(0).Mul(x, y)
	quotient, err := NewFromInt64(0).Quo(product, y)
	assert.NoError(t, err)
	checkResult(t, x, quotient, tolerance)

	// MulAdd accumulates: 0 + xy + xy == 2xy
	accumulator := NewFromInt64(0)
	accumulator.MulAdd(x, y)
	accumulator.MulAdd(x, y)
	twiceProduct := NewFromInt64(0).Int64Mul(2, product)
	checkResult(t, twiceProduct, accumulator, tolerance)

	// Int64MulAdd matches MulAdd with an integer first factor
	accumulator = NewFromInt64(0)
	accumulator.Int64MulAdd(-3, y)
	expected := NewFromInt64(0).Mul(NewFromInt64(-3), y)
	checkResult(t, expected, accumulator, tolerance)

	// Division by zero
	_, err = NewFromInt64(0).Quo(x, NewFromInt64(0))
	assert.Error(t, err)
}

func TestSqrt(t *testing.T) {
	// The error bound for Sqrt(x) is 2^((x.log2scale - precision)/2)
	inputs := []string{"2", "3", "0.0625", "1522756"} // 1522756 == 1234^2
	for _, inputStr := range inputs {
		x, err := NewFromDecimalString(inputStr)
		require.NoError(t, err)
		root, err := NewFromInt64(0).Sqrt(x)
		assert.NoError(t, err)
		squared := NewFromInt64(0).Mul(root, root)
		tolerance := NewPowerOfTwo(-int64(testPrecision)/2 + 4)
		checkResult(t, x, squared, tolerance)
	}

	root, err := NewFromInt64(0).Sqrt(NewFromInt64(1522756))
	assert.NoError(t, err)
	rootAsInt64, err := root.AsInt64()
	assert.NoError(t, err)
	assert.Equal(t, int64(1234), rootAsInt64)

	_, err = NewFromInt64(0).Sqrt(NewFromInt64(-1))
	assert.Error(t, err)
}

func TestRound(t *testing.T) {
	// Round is to the nearest integer with halves away from zero
	testCases := []struct {
		input    string
		expected int64
	}{
		{"0", 0},
		{"2.25", 2},
		{"2.5", 3},
		{"2.75", 3},
		{"-2.25", -2},
		{"-2.5", -3},
		{"-2.75", -3},
		{"7", 7},
	}
	for _, testCase := range testCases {
		x, err := NewFromDecimalString(testCase.input)
		require.NoError(t, err)
		x.Round()
		assert.True(t, x.IsInt())
		xAsInt64, err := x.AsInt64()
		assert.NoError(t, err)
		assert.Equalf(t, testCase.expected, xAsInt64, "Round(%s)", testCase.input)
	}
}

func TestRoundTowardsZero(t *testing.T) {
	testCases := []struct {
		input    string
		expected int64
	}{
		{"2.75", 2},
		{"-2.75", -2},
		{"0.5", 0},
		{"-0.5", 0},
	}
	for _, testCase := range testCases {
		x, err := NewFromDecimalString(testCase.input)
		require.NoError(t, err)
		x.RoundTowardsZero()
		xAsInt64, err := x.AsInt64()
		assert.NoError(t, err)
		assert.Equalf(t, testCase.expected, xAsInt64, "RoundTowardsZero(%s)", testCase.input)
	}
}

func TestCmpAndPredicates(t *testing.T) {
	half := NewPowerOfTwo(-1)
	one := NewFromInt64(1)
	minusOne := NewFromInt64(-1)
	assert.Equal(t, -1, half.Cmp(one))
	assert.Equal(t, 1, one.Cmp(half))
	assert.Equal(t, 0, half.Cmp(NewPowerOfTwo(-1)))
	assert.True(t, minusOne.IsNegative())
	assert.False(t, minusOne.IsNonNegative())
	assert.True(t, half.IsNonNegative())
	assert.False(t, half.IsZero())

	tiny := NewPowerOfTwo(-int64(testPrecision))
	assert.True(t, tiny.IsSmall())
	assert.False(t, one.IsSmall())
}

func TestEquals(t *testing.T) {
	x, err := NewFromDecimalString("1.000001")
	require.NoError(t, err)
	y := NewFromInt64(1)
	coarse, err := NewFromDecimalString("0.01")
	require.NoError(t, err)
	fine, err := NewFromDecimalString("0.0000001")
	require.NoError(t, err)
	assert.True(t, x.Equals(y, coarse))
	assert.False(t, x.Equals(y, fine))
}

func TestNormalize(t *testing.T) {
	x, err := NewFromDecimalString("3.14159265358979")
	require.NoError(t, err)
	before := NewFromBigNumber(x)
	x.Normalize(100)
	tolerance := NewPowerOfTwo(-90)
	checkResult(t, before, x, tolerance)
}
