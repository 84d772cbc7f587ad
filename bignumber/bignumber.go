// Copyright (c) 2023 Colin McRae

// Package bignumber implements arbitrary-precision real numbers as
// an integer numerator times a power of two. A BigNumber
// o Can be integer or floating point, with functions to tell which
//   is which
// o Supports arithmetic operations between
//   - integer and floating point or floating point and floating point,
//     resulting in floating point
//   - integer and integer, resulting in integers with the exact value
//     (no roundoff)
//
// Careful use of big.Float should support the above requirements
// but with this package, no special care is required to achieve the
// same results.
package bignumber

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

var (
	precision             int64    = 1000 // target precision for floats
	log2small             int64    = -333 // below 2^log2small means precision has been used up
	two                   *big.Int        // 2
	twoToPrecision        *big.Int        // 2^precision, a convenience value
	twoToPrecisionPlusOne *big.Int        // 2^(precision + 1), a convenience value
	autoPrecision         int64    = 3000 // precision of outputs of Mul, Int64Mul, MulAdd and Int64MulAdd
)

// BigNumber has value numerator * 2^log2scale. When log2scale is 0,
// the value is an exact integer.
type BigNumber struct {
	numerator big.Int
	log2scale int64
}

// Init sets the global precision for floating point BigNumbers to
// numBits, which must be positive and even.
//
// For faster computation, various powers of 2 are stored as big.Ints;
// Init recomputes them so precision changes take effect immediately.
func Init(numBits int64) error {
	if numBits <= 0 {
		return fmt.Errorf("BigNumber.Init: attempt to set the precision with numBits <= 0")
	}
	if numBits%2 != 0 {
		return fmt.Errorf("BigNumber.Init: attempt to set the precision with odd numBits")
	}
	precision = numBits
	autoPrecision = precision * 3
	log2small = -precision / 3
	two = big.NewInt(2)
	twoToPrecision = powerOf2(precision)
	twoToPrecisionPlusOne = powerOf2(precision + 1)
	return nil
}

// Precision returns the global precision in bits.
func Precision() int64 {
	return precision
}

func lazyInit() {
	if two != nil {
		return
	}
	two = big.NewInt(2)
	twoToPrecision = powerOf2(precision)
	twoToPrecisionPlusOne = powerOf2(precision + 1)
}

// NewFromInt64 constructs an instance equal to the provided int64
// and denominator 1
func NewFromInt64(input int64) *BigNumber {
	a := big.NewInt(input)
	return &BigNumber{
		numerator: *a,
		log2scale: 0,
	}
}

// NewFromBigInt returns a BigNumber with the value of the provided big.Int
// and denominator 1
func NewFromBigInt(input *big.Int) *BigNumber {
	n := big.NewInt(0).Set(input)
	return &BigNumber{
		numerator: *n,
		log2scale: 0,
	}
}

// NewFromFloat64 returns a BigNumber with the exact value of the provided
// float64. Infinities and NaNs are rejected.
func NewFromFloat64(input float64) (*BigNumber, error) {
	if math.IsInf(input, 0) || math.IsNaN(input) {
		return nil, fmt.Errorf("NewFromFloat64: input is not a finite number")
	}
	frac, exp := math.Frexp(input)

	// frac is in [0.5, 1) up to sign and frac * 2^53 is an integer, so
	// input = (frac * 2^53) * 2^(exp - 53) exactly
	retval := &BigNumber{
		numerator: *big.NewInt(int64(frac * (1 << 53))),
		log2scale: int64(exp - 53),
	}
	retval.trimTrailingZeroes()
	return retval, nil
}

func NewFromDecimalString(input string) (*BigNumber, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("NewFromDecimalString: input must have length > 0")
	}
	sign := 1
	if strings.Index(input, "-") == 0 {
		sign = -1
		input = strings.Replace(input, "-", "", 1)
	}
	if strings.Count(input, "-") > 0 {
		return nil, fmt.Errorf("NewFromDecimalString: input has extraneous dashes")
	}
	input = strings.TrimLeft(input, "0")
	if len(input) == 0 {
		retval := &BigNumber{
			numerator: *big.NewInt(0),
			log2scale: 0,
		}
		return retval, nil
	}

	// input has been normalized to have no sign or leading 0s.
	// sign holds input's algebraic sign
	dp := strings.Index(input, ".")
	if dp == -1 {
		retval := &BigNumber{
			numerator: *big.NewInt(0),
			log2scale: 0,
		}
		if _, ok := retval.numerator.SetString(input, 10); !ok {
			return nil, fmt.Errorf("NewFromDecimalString: Could not parse input as an integer")
		}
		if sign == -1 {
			retval.numerator.Mul(&retval.numerator, big.NewInt(-1))
		}
		return retval, nil
	}

	// input is floating point with no dashes or leading 0s.
	// Example 1: input = ".0023340" with value 2334 / 1000000, dp == 0
	// Example 2: input = "2.3340" with value 2334 / 1000, dp == 1
	// Example 3: input = "2334.0" with value 2334 / 1, dp == 4
	var exponentBase10 int
	var mantissa string
	mantissa = strings.TrimRight(input, "0")
	mantissa = strings.Replace(mantissa, ".", "", 1)
	exponentBase10 = -(len(mantissa) - dp)
	mantissa = strings.TrimLeft(mantissa, "0")

	// To use up the bits of precision, define
	//
	// log2scale ~ -log2[2^precision / (mantissa * 10^exponentBase10)]
	//           = log2(10) * (len(mantissa) + exponentBase10) - precision
	retval := &BigNumber{
		numerator: *big.NewInt(0),
		log2scale: int64(math.Log2(10.0)*float64(len(mantissa)+exponentBase10)) - precision,
	}
	if retval.log2scale > 0 {
		return nil, fmt.Errorf("NewFromDecimalString: input is too large to be represented as a float")
	}
	if _, ok := retval.numerator.SetString(mantissa, 10); !ok {
		return nil, fmt.Errorf("NewFromDecimalString: Could not parse mantissa as an integer")
	}
	if sign == -1 {
		retval.numerator.Mul(&retval.numerator, big.NewInt(-1))
	}
	retval.numerator.Mul(&retval.numerator, powerOf2(-retval.log2scale))

	// retval.numerator = 10^exponent * 2^-retval.log2scale * mantissa
	ten := big.NewInt(10)
	exponentBase10AsInt := big.NewInt(int64(-exponentBase10))
	tenToTheExponent := big.NewInt(0)
	tenToTheExponent.Exp(ten, exponentBase10AsInt, nil)
	retval.numerator.Quo(&retval.numerator, tenToTheExponent)
	return retval, nil
}

// NewPowerOfTwo returns a BigNumber whose value is 2^exponent
func NewPowerOfTwo(exponent int64) *BigNumber {
	if exponent == 0 {
		return NewFromInt64(1)
	}
	if exponent < 0 {
		return &BigNumber{
			numerator: *big.NewInt(1),
			log2scale: exponent,
		}
	}
	return &BigNumber{
		numerator: *powerOf2(exponent),
		log2scale: 0,
	}
}

// NewFromBigNumber returns a BigNumber with the value of the provided input
func NewFromBigNumber(input *BigNumber) *BigNumber {
	return &BigNumber{
		numerator: *big.NewInt(0).Set(&input.numerator),
		log2scale: input.log2scale,
	}
}

// Sqrt sets bn to the square root of x, calculated from x.numerator padded
// with precision-many 0s (base 2), and returns bn.
//
// If x < 0, an error is returned and the value of bn is unchanged.
//
// The error in the square root of the value x, excluding error from how x
// or Sqrt(x) is stored in memory, is bounded above by
// 2^((x.log2scale - precision)/2).
func (bn *BigNumber) Sqrt(x *BigNumber) (*BigNumber, error) {
	lazyInit()
	zero := big.NewInt(0)
	if x.numerator.Cmp(zero) == -1 {
		return nil, fmt.Errorf("BigNumber.Sqrt: input was negative")
	}
	xNumeratorPadded := big.NewInt(0)
	if x.log2scale%2 == 0 {
		xNumeratorPadded.Mul(&x.numerator, twoToPrecision)
		bn.log2scale = (x.log2scale - precision) / 2
	} else {
		xNumeratorPadded.Mul(&x.numerator, twoToPrecisionPlusOne)
		bn.log2scale = (x.log2scale - (precision + 1)) / 2
	}
	bn.numerator.Sqrt(xNumeratorPadded)
	return bn, nil
}

// Abs sets bn to |x| (the absolute value of x) and returns bn
func (bn *BigNumber) Abs(x *BigNumber) *BigNumber {
	bn.numerator.Abs(&x.numerator)
	bn.log2scale = x.log2scale
	return bn
}

// Neg sets bn to -x and returns bn
func (bn *BigNumber) Neg(x *BigNumber) *BigNumber {
	bn.numerator.Neg(&x.numerator)
	bn.log2scale = x.log2scale
	return bn
}

// IsInt reports whether bn is stored as an exact integer
func (bn *BigNumber) IsInt() bool {
	return bn.log2scale == 0
}

// AsInt64 returns bn as an int64, if possible; otherwise 0 with an error
// message.
func (bn *BigNumber) AsInt64() (int64, error) {
	if bn.log2scale != 0 {
		// Though unlikely, bn can still be an integer
		twoToTheMinusLog2Scale := powerOf2(-bn.log2scale)
		r := big.NewInt(0)
		q, _ := big.NewInt(0).QuoRem(&bn.numerator, twoToTheMinusLog2Scale, r)
		if (r.BitLen() == 0) && (q.IsInt64()) {
			// bn == q is small enough to be converted to int64
			return q.Int64(), nil
		}

		// Either r == 0 and q is too large to be an int64, or r != 0 so bn is not an integer.
		if r.BitLen() == 0 {
			return 0, fmt.Errorf("AsInt64: could not represent bn = %q as int64", q.String())
		}
		_, bnAsStr := bn.String()
		return 0, fmt.Errorf("AsInt64: bn = %q is not an integer", bnAsStr)
	}

	// bn == bn.numerator, which may or may not be small enough to be represented as int64
	if bn.numerator.IsInt64() {
		return bn.numerator.Int64(), nil
	}
	return 0, fmt.Errorf("AsInt64: could not represent bn = %q as an int64", bn.numerator.String())
}

// AsBigInt returns the value of bn as a big.Int if bn is an integer;
// otherwise nil with an error message.
func (bn *BigNumber) AsBigInt() (*big.Int, error) {
	if bn.log2scale == 0 {
		return big.NewInt(0).Set(&bn.numerator), nil
	}
	if bn.log2scale > 0 {
		return big.NewInt(0).Mul(&bn.numerator, powerOf2(bn.log2scale)), nil
	}
	r := big.NewInt(0)
	q, _ := big.NewInt(0).QuoRem(&bn.numerator, powerOf2(-bn.log2scale), r)
	if r.BitLen() == 0 {
		return q, nil
	}
	_, bnAsStr := bn.String()
	return nil, fmt.Errorf("AsBigInt: bn = %q is not an integer", bnAsStr)
}

// Cmp compares bn and y and returns:
//
// -1 if bn <  y
//
//	0 if bn == y
//
// +1 if bn >  y
func (bn *BigNumber) Cmp(y *BigNumber) int {
	if bn.log2scale == y.log2scale {
		return bn.numerator.Cmp(&y.numerator)
	}
	if y.log2scale > bn.log2scale {
		// bn < y <=> bn.numerator < (y.numerator)(2^(y.log2scale-bn.log2scale))
		rhs := powerOf2Multiple(&y.numerator, y.log2scale-bn.log2scale)
		return bn.numerator.Cmp(rhs)
	}

	// bn.log2scale > y.log2scale, and bn.Cmp(y) = -y.Cmp(bn)
	rhs := powerOf2Multiple(&bn.numerator, bn.log2scale-y.log2scale)
	return -y.numerator.Cmp(rhs)
}

// Set sets bn to x and returns bn. This is a deep copy
func (bn *BigNumber) Set(x *BigNumber) *BigNumber {
	bn.numerator.Set(&x.numerator)
	bn.log2scale = x.log2scale
	return bn
}

// String() formats bn as
//
// - Its value as decimal-formatted numerator/denominator (or just numerator, if bn is an integer)
//
// - An approximate decimal, if bn can be formatted that way; otherwise an empty string
//
// and returns the above two strings.
func (bn *BigNumber) String() (string, string) {
	if bn.log2scale == 0 {
		s := bn.numerator.String()
		return s, s
	}
	f := bn.AsFloat()
	return fmt.Sprintf(
		"%s/%s", bn.numerator.String(), powerOf2(-bn.log2scale).String(),
	), f.String()
}

// Add sets bn to the sum x+y and returns bn.
func (bn *BigNumber) Add(x *BigNumber, y *BigNumber) *BigNumber {
	if x.numerator.BitLen() == 0 {
		bn.numerator.Set(&y.numerator)
		bn.log2scale = y.log2scale
		return bn
	}
	if y.numerator.BitLen() == 0 {
		bn.numerator.Set(&x.numerator)
		bn.log2scale = x.log2scale
		return bn
	}
	if x.log2scale == y.log2scale {
		bn.numerator.Add(&x.numerator, &y.numerator)
		bn.log2scale = x.log2scale
		return bn
	}

	// Let d = x.log2scale - y.log2scale. Converting to the smaller scale
	// keeps the sum exact:
	// x + y = (x.numerator + 2^-d y.numerator)(2^x.log2scale)   if d < 0
	//       = (2^d x.numerator + y.numerator)(2^y.log2scale)    if d > 0
	d := x.log2scale - y.log2scale
	if d < 0 {
		bn.numerator.Add(&x.numerator, powerOf2Multiple(&y.numerator, -d))
		bn.log2scale = x.log2scale
		return bn
	}
	bn.numerator.Add(&y.numerator, powerOf2Multiple(&x.numerator, d))
	bn.log2scale = y.log2scale
	return bn
}

// Sub sets bn to the difference x-y and returns bn.
func (bn *BigNumber) Sub(x *BigNumber, y *BigNumber) *BigNumber {
	if x.numerator.BitLen() == 0 {
		bn.numerator.Sub(big.NewInt(0), &y.numerator)
		bn.log2scale = y.log2scale
		return bn
	}
	if y.numerator.BitLen() == 0 {
		bn.numerator.Set(&x.numerator)
		bn.log2scale = x.log2scale
		return bn
	}
	if x.log2scale == y.log2scale {
		bn.numerator.Sub(&x.numerator, &y.numerator)
		bn.log2scale = x.log2scale
		return bn
	}

	// Same scale conversion as in Add
	d := x.log2scale - y.log2scale
	if d < 0 {
		bn.numerator.Sub(&x.numerator, powerOf2Multiple(&y.numerator, -d))
		bn.log2scale = x.log2scale
		return bn
	}
	bn.numerator.Sub(powerOf2Multiple(&x.numerator, d), &y.numerator)
	bn.log2scale = y.log2scale
	return bn
}

// Mul sets bn to the product x*y and returns bn.
//
// Mul would return a number with the combined precision of x and y,
// but Mul automatically truncates the precision to 3 times the
// precision set for the bignumber package.
//
// After calling bn.Mul(), consider calling bn.Normalize(0), since Mul()
// essentially doubles the precision (though not beyond 3 times the
// precision set for the bignumber package -- see above). However,
// calling bn.Normalize() is not always the right thing to do. For example,
// when computing a dot product, keeping the precision of all the products
// being added up until the end makes sense.
func (bn *BigNumber) Mul(x *BigNumber, y *BigNumber) *BigNumber {
	bn.numerator.Mul(&x.numerator, &y.numerator)
	bn.log2scale = x.log2scale + y.log2scale
	bn.Normalize(autoPrecision)
	return bn
}

// MulAdd sets bn to bn + xy and returns bn.
//
// # Tested only on distinct bn, x and y
//
// Like Mul, MulAdd automatically truncates the precision to 3 times the
// precision set for the bignumber package, and the guidance about calling
// bn.Normalize(0) afterwards applies here too.
func (bn *BigNumber) MulAdd(x *BigNumber, y *BigNumber) *BigNumber {
	xyLog2scale := x.log2scale + y.log2scale
	if bn.numerator.BitLen() == 0 {
		bn.numerator.Mul(&x.numerator, &y.numerator)
		bn.log2scale = xyLog2scale
		bn.Normalize(autoPrecision)
		return bn
	}
	xyNumerator := big.NewInt(0).Mul(&x.numerator, &y.numerator)
	if xyNumerator.BitLen() == 0 {
		return bn
	}
	if bn.log2scale == xyLog2scale {
		bn.numerator.Add(&bn.numerator, xyNumerator)
		bn.Normalize(autoPrecision)
		return bn
	}

	// Same scale conversion as in Add, with xy in place of y
	d := bn.log2scale - xyLog2scale
	if d < 0 {
		bn.numerator.Add(&bn.numerator, powerOf2Multiple(xyNumerator, -d))
		bn.Normalize(autoPrecision)
		return bn
	}
	bn.numerator.Add(xyNumerator, powerOf2Multiple(&bn.numerator, d))
	bn.log2scale = xyLog2scale
	bn.Normalize(autoPrecision)
	return bn
}

// Int64Mul sets bn to the product of int64 x and BigNumber y, and returns bn
// with maximum precision of 3 times the precision set for the bignumber
// package.
func (bn *BigNumber) Int64Mul(x int64, y *BigNumber) *BigNumber {
	bn.numerator.Mul(big.NewInt(x), &y.numerator)
	bn.log2scale = y.log2scale
	bn.Normalize(autoPrecision)
	return bn
}

// Int64MulAdd sets bn to bn + xy and returns bn with maximum precision
// of 3 times the precision set for the bignumber package.
//
// # Tested only on distinct bn, x and y
func (bn *BigNumber) Int64MulAdd(x int64, y *BigNumber) *BigNumber {
	if bn.numerator.BitLen() == 0 {
		bn.numerator.Mul(big.NewInt(x), &y.numerator)
		bn.log2scale = y.log2scale
		bn.Normalize(autoPrecision)
		return bn
	}
	xyNumerator := big.NewInt(0).Mul(big.NewInt(x), &y.numerator)
	if xyNumerator.BitLen() == 0 {
		return bn
	}
	if bn.log2scale == y.log2scale {
		bn.numerator.Add(&bn.numerator, xyNumerator)
		bn.Normalize(autoPrecision)
		return bn
	}

	// Same scale conversion as in Add, with xy in place of y
	d := bn.log2scale - y.log2scale
	if d < 0 {
		bn.numerator.Add(&bn.numerator, powerOf2Multiple(xyNumerator, -d))
		bn.Normalize(autoPrecision)
		return bn
	}
	bn.numerator.Add(xyNumerator, powerOf2Multiple(&bn.numerator, d))
	bn.log2scale = y.log2scale
	bn.Normalize(autoPrecision)
	return bn
}

// Quo sets bn to the quotient x/y for y != 0 and returns bn.
//
// Quo implements truncated division (like Go). This means that the scaled
// quotient is rounded toward 0, not to the closest representable value
// to x/y.
//
// If y == 0, a division-by-zero error is returned.
func (bn *BigNumber) Quo(x *BigNumber, y *BigNumber) (*BigNumber, error) {
	if y.numerator.BitLen() == 0 {
		return nil, fmt.Errorf("BigNumber.Quo: division by zero")
	}

	// Choose p ~ precision - log2(x/y). Then
	//
	// x / y = [(x.numerator)(2^p) / y.numerator] [2^(x.log2scale-(y.log2scale+p))]
	//         [^^^^^^^ new bn.numerator ^^^^^^^] [^^^^^^ new bn.log2scale ^^^^^^^]
	p := precision + int64(y.numerator.BitLen()) - int64(x.numerator.BitLen())
	if p <= 0 {
		p = 0
	}
	numeratorScaledUp := big.NewInt(0).Mul(&x.numerator, powerOf2(p))
	bn.numerator.Quo(numeratorScaledUp, &y.numerator)
	bn.log2scale = x.log2scale - (y.log2scale + p)
	bn.Normalize(autoPrecision)
	return bn, nil
}

// Round converts bn to an integer-valued BigNumber whose value is the
// nearest integer to bn, rounding halves away from zero, and returns bn.
func (bn *BigNumber) Round() *BigNumber {
	if bn.log2scale == 0 {
		return bn
	}
	if bn.log2scale > 0 {
		bn.numerator.Mul(&bn.numerator, powerOf2(bn.log2scale))
		bn.log2scale = 0
		return bn
	}

	// round(n / 2^k) = trunc((2n + sign(n) 2^k) / 2^(k+1))
	doubled := big.NewInt(0).Lsh(&bn.numerator, 1)
	half := powerOf2(-bn.log2scale)
	if bn.numerator.Sign() < 0 {
		doubled.Sub(doubled, half)
	} else {
		doubled.Add(doubled, half)
	}
	bn.numerator.Quo(doubled, powerOf2(-bn.log2scale+1))
	bn.log2scale = 0
	return bn
}

// RoundTowardsZero converts bn to an integer-valued BigNumber whose value is the
// nearest integer to bn that has no larger absolute value than bn. RoundTowardsZero
// returns a pointer to itself.
func (bn *BigNumber) RoundTowardsZero() *BigNumber {
	if bn.log2scale == 0 {
		return bn
	}
	if bn.log2scale < 0 {
		denominator := powerOf2(-bn.log2scale)
		retValAsBigInt := big.NewInt(0).Quo(&bn.numerator, denominator)
		bn.numerator.Set(retValAsBigInt)
		bn.log2scale = 0
		return bn
	}

	// bn.log2scale > 0
	multiplier := powerOf2(bn.log2scale)
	retValAsBigInt := big.NewInt(0).Mul(&bn.numerator, multiplier)
	bn.numerator.Set(retValAsBigInt)
	bn.log2scale = 0
	return bn
}

// Int64RoundTowardsZero returns a pointer to the largest integer in absolute value
// between zero and bn, if that fits in an int64; otherwise nil
func (bn *BigNumber) Int64RoundTowardsZero() *int64 {
	if bn.log2scale < 0 {
		denominator := powerOf2(-bn.log2scale)
		retValAsBigInt := big.NewInt(0).Quo(&bn.numerator, denominator)
		if retValAsBigInt.IsInt64() {
			retVal := retValAsBigInt.Int64()
			return &retVal
		}
		return nil
	}
	if bn.log2scale == 0 {
		if bn.numerator.IsInt64() {
			retVal := bn.numerator.Int64()
			return &retVal
		}
		return nil
	}

	// bn.log2scale > 0
	multiplier := powerOf2(bn.log2scale)
	retValAsBigInt := big.NewInt(0).Mul(&bn.numerator, multiplier)
	if retValAsBigInt.IsInt64() {
		retVal := retValAsBigInt.Int64()
		return &retVal
	}
	return nil
}

// AsFloat returns a big.Float with the value of bn to within 2^-precision.
func (bn *BigNumber) AsFloat() *big.Float {
	var retval big.Float
	retval.SetPrec(uint(2 * precision))
	retval.SetInt(&bn.numerator)
	if bn.log2scale == 0 {
		return &retval
	}
	return retval.SetMantExp(&retval, int(bn.log2scale))
}

// Float64 returns bn as a float64. Values too large in magnitude
// come back as +/-Inf, as in big.Float.Float64.
func (bn *BigNumber) Float64() float64 {
	retval, _ := bn.AsFloat().Float64()
	return retval
}

// Log2 returns the base-2 logarithm of bn as a float64. Unlike
// converting to float64 first, Log2 cannot overflow for large bn.
// If bn <= 0, an error is returned.
func (bn *BigNumber) Log2() (float64, error) {
	if bn.numerator.Sign() <= 0 {
		return 0, fmt.Errorf("BigNumber.Log2: input was not positive")
	}
	bitLen := bn.numerator.BitLen()
	shift := bitLen - 53
	if shift < 0 {
		shift = 0
	}
	mantissa := big.NewInt(0).Rsh(&bn.numerator, uint(shift))
	return math.Log2(float64(mantissa.Int64())) + float64(shift) + float64(bn.log2scale), nil
}

// IsZero reports whether bn is equal to 0
func (bn *BigNumber) IsZero() bool {
	return bn.numerator.BitLen() == 0
}

// IsSmall reports whether |bn| < 2^log2small, i.e. whether bn is so
// close to 0 the precision has been used up
func (bn *BigNumber) IsSmall() bool {
	return bn.IsZero() || int64(bn.numerator.BitLen())+bn.log2scale < log2small
}

// IsNegative reports whether bn is less than 0
func (bn *BigNumber) IsNegative() bool {
	return bn.numerator.Sign() < 0
}

// IsNonNegative reports whether bn is at least 0
func (bn *BigNumber) IsNonNegative() bool {
	return bn.numerator.Sign() > -1
}

// Equals reports whether bn is equal to x, within tolerance t
func (bn *BigNumber) Equals(x *BigNumber, tolerance *BigNumber) bool {
	absDiff := NewFromInt64(0).Sub(bn, x)
	absDiff.Abs(absDiff)
	return absDiff.Cmp(tolerance) <= 0
}

// Normalize truncates the numerator of the fraction that is the value of bn
// to numBits bits, and adjusts the denominator accordingly. If numBits <= 0,
// numBits is set to the global precision, whose value is the default of 1000
// or, if applicable, the value of numBits passed to Init().
func (bn *BigNumber) Normalize(numBits int64) {
	if numBits <= 0 {
		numBits = precision
	}
	log2divisor := int64(bn.numerator.BitLen()) - numBits
	if log2divisor <= 0 {
		return // no round-off required
	}
	divisorAsInt := powerOf2(log2divisor)
	bn.log2scale += log2divisor
	bn.numerator.Quo(&bn.numerator, divisorAsInt)
}

func (bn *BigNumber) trimTrailingZeroes() {
	if bn.numerator.BitLen() == 0 {
		bn.log2scale = 0
		return
	}
	var trailing int64
	for bn.numerator.Bit(int(trailing)) == 0 {
		trailing++
	}
	if trailing == 0 {
		return
	}
	bn.numerator.Rsh(&bn.numerator, uint(trailing))
	bn.log2scale += trailing
}

func powerOf2(exponent int64) *big.Int {
	lazyInit()
	retval := big.NewInt(0)
	exponentAsInt := big.NewInt(exponent)
	retval.Exp(two, exponentAsInt, nil)
	return retval
}

// powerOf2Multiple returns 2^exponent x
func powerOf2Multiple(x *big.Int, exponent int64) *big.Int {
	lazyInit()
	retval := big.NewInt(0)
	exponentAsInt := big.NewInt(exponent)
	multiplierAsInt := big.NewInt(0)
	multiplierAsInt.Exp(two, exponentAsInt, nil)
	retval.Mul(x, multiplierAsInt)
	return retval
}
