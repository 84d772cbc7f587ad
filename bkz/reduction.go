// Copyright (c) 2023 Colin McRae

// Package bkz implements block lattice reduction on top of the gso and
// lll packages: BKZ tours of SVP-reduced blocks, the self-dual variant,
// slide reduction and HKZ as the full-width special case. Blocks are
// reduced by pruned enumeration with rerandomized retries, and the
// driver loops tours until the basis stops improving or a budget runs
// out.
package bkz

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/predrag3141/BKZ/bignumber"
	"github.com/predrag3141/BKZ/gso"
	"github.com/predrag3141/BKZ/intmatrix"
	"github.com/predrag3141/BKZ/lll"
	"github.com/tuneinsight/lattigo/v4/utils"
)

// Reduction holds the state of one block reduction: the GSO-tracked
// basis, the LLL reducer shared by all blocks, the parameters, and the
// telemetry the tours accumulate.
type Reduction struct {
	m      *gso.Mat
	lllRed *lll.Reducer
	param  *Param

	// Status is how the last Reduce ended.
	Status Status

	// Nodes counts enumeration tree nodes across all blocks.
	Nodes int64

	sldPotential float64
	eta          *bignumber.BigNumber
	cputimeStart time.Time
	verboseOut   io.Writer
}

// NewReduction returns a Reduction over m using lllRed for every LLL
// call. The parameters are validated once here.
func NewReduction(m *gso.Mat, lllRed *lll.Reducer, param *Param) (*Reduction, error) {
	if err := param.Validate(); err != nil {
		return nil, fmt.Errorf("NewReduction: %w", err)
	}
	eta, err := bignumber.NewFromFloat64(lll.DefaultEta)
	if err != nil {
		return nil, fmt.Errorf("NewReduction: could not convert eta: %q", err.Error())
	}
	return &Reduction{
		m:            m,
		lllRed:       lllRed,
		param:        param,
		Status:       RedSuccess,
		sldPotential: math.Inf(1),
		eta:          eta,
		verboseOut:   os.Stderr,
	}, nil
}

// Reduce runs tours until one leaves every block unchanged, a budget
// runs out, or a fault occurs. Hitting a time or loop budget leaves the
// basis consistent; the trailing LLL pass still runs.
func (red *Reduction) Reduce() Status {
	red.Status = RedSuccess
	red.Nodes = 0
	red.sldPotential = math.Inf(1)
	red.cputimeStart = time.Now()

	minRow, maxRow := 0, red.m.NumRows()
	if maxRow-minRow < 2 {
		return red.Status
	}
	blockSize := utils.MinInt(red.param.BlockSize, maxRow-minRow)
	if red.param.Flags&SlideReduction != 0 && (maxRow-minRow)%blockSize != 0 {
		red.Status = RedParamError
		return red.Status
	}

	if red.param.Flags&Verbose != 0 {
		fmt.Fprintf(red.verboseOut, "entering bkz: %s\n", red.param.String())
	}
	var abort *autoAbort
	if red.param.Flags&AutoAbort != 0 {
		abort = newAutoAbort(red.m, minRow, maxRow-minRow)
	}

	for loop := 0; ; loop++ {
		if red.param.Flags&MaxLoops != 0 && red.param.MaxLoops > 0 && loop >= red.param.MaxLoops {
			red.Status = RedBKZLoopsLimit
			break
		}
		elapsed := time.Since(red.cputimeStart).Seconds()
		if red.param.Flags&MaxTime != 0 && red.param.MaxTime > 0 && elapsed >= red.param.MaxTime {
			red.Status = RedBKZTimeLimit
			break
		}
		if abort != nil {
			stop, err := abort.testAbort(red.param.AutoAbortScale, red.param.AutoAbortMaxNoDec)
			if err != nil {
				red.Status = statusFromError(err)
				break
			}
			if stop {
				break
			}
		}

		clean, kappaMax, ok := red.tourEx(blockSize, minRow, maxRow)
		if !ok {
			break
		}
		if red.param.Flags&Verbose != 0 {
			fmt.Fprintf(
				red.verboseOut,
				"end of tour %d, time = %.3fs, nodes = %d, kappa max = %d\n",
				loop, time.Since(red.cputimeStart).Seconds(), red.Nodes, kappaMax,
			)
		}
		if red.param.Flags&DumpGSO != 0 {
			prefix := fmt.Sprintf("%s tour %d:", red.param.DumpGSOPrefix, loop)
			if err := red.DumpGSO(red.param.DumpGSOFilename, prefix, loop > 0); err != nil {
				red.Status = RedBKZFailure
				break
			}
		}
		if clean {
			break
		}
	}

	if err := red.lllRed.Reduce(0, minRow, maxRow); err != nil {
		if red.Status == RedSuccess {
			red.Status = RedLLLFailure
		}
	}
	return red.Status
}

// DumpGSO writes one line to filename: the prefix followed by
// log r[i] for every row. With appendToFile false the file is
// truncated first, so each reduction starts its own profile history.
func (red *Reduction) DumpGSO(filename string, prefix string, appendToFile bool) error {
	numRows := red.m.NumRows()
	if err := red.m.UpdateRows(numRows); err != nil {
		return fmt.Errorf("Reduction.DumpGSO: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if appendToFile {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(filename, flags, 0644)
	if err != nil {
		return fmt.Errorf("Reduction.DumpGSO: could not open %q: %q", filename, err.Error())
	}
	defer func() { _ = file.Close() }()
	if _, err = fmt.Fprintf(file, "%s", prefix); err != nil {
		return fmt.Errorf("Reduction.DumpGSO: could not write to %q: %q", filename, err.Error())
	}
	for i := 0; i < numRows; i++ {
		logR, err := red.m.LogR(i)
		if err != nil {
			return fmt.Errorf("Reduction.DumpGSO: %w", err)
		}
		if _, err = fmt.Fprintf(file, " %f", logR); err != nil {
			return fmt.Errorf("Reduction.DumpGSO: could not write to %q: %q", filename, err.Error())
		}
	}
	if _, err = fmt.Fprintln(file); err != nil {
		return fmt.Errorf("Reduction.DumpGSO: could not write to %q: %q", filename, err.Error())
	}
	return nil
}

// FloatType selects the working precision of the GSO arithmetic. The
// first four map to fixed precisions; FloatTypeMPFR uses the precision
// the caller passes alongside it.
type FloatType int

const (
	FloatTypeDefault FloatType = iota
	FloatTypeDouble
	FloatTypeLongDouble
	FloatTypeDPE
	FloatTypeMPFR
)

// precisionFor maps a float type to the bignumber precision backing it.
// Odd MPFR precisions are bumped to the next even value.
func precisionFor(floatType FloatType, precision int) (int64, error) {
	switch floatType {
	case FloatTypeDefault, FloatTypeDouble:
		return 106, nil
	case FloatTypeLongDouble:
		return 128, nil
	case FloatTypeDPE:
		return 212, nil
	case FloatTypeMPFR:
		if precision <= 0 {
			return 0, fmt.Errorf("precisionFor: MPFR requires a positive precision, have %d", precision)
		}
		if precision%2 == 1 {
			precision++
		}
		return int64(precision), nil
	}
	return 0, fmt.Errorf("precisionFor: unknown float type %d", int(floatType))
}

// ReduceWithParam block-reduces b in place under param, tracking the
// applied transformation in u when u is non-nil. The returned status is
// RedSuccess when the reduction converged.
func ReduceWithParam(
	b *intmatrix.IntMatrix, u *intmatrix.IntMatrix, param *Param,
	floatType FloatType, precision int,
) Status {
	if param == nil {
		return RedParamError
	}
	if err := param.Validate(); err != nil {
		return RedParamError
	}
	numBits, err := precisionFor(floatType, precision)
	if err != nil {
		return RedParamError
	}
	if param.Flags&SlideReduction != 0 && b.NumRows() >= 2 {
		blockSize := utils.MinInt(param.BlockSize, b.NumRows())
		if b.NumRows()%blockSize != 0 {
			return RedParamError
		}
	}
	if err = bignumber.Init(numBits); err != nil {
		return RedParamError
	}
	m, err := gso.New(b, u, nil)
	if err != nil {
		return statusFromError(err)
	}
	lllRed, err := lll.NewReducer(m, param.Delta, 0)
	if err != nil {
		return RedParamError
	}
	if err = lllRed.Reduce(0, 0, b.NumRows()); err != nil {
		return statusFromError(err)
	}
	red, err := NewReduction(m, lllRed, param)
	if err != nil {
		return RedParamError
	}
	return red.Reduce()
}

// Reduce is ReduceWithParam with a default parameter set for the given
// block size and flags.
func Reduce(
	b *intmatrix.IntMatrix, u *intmatrix.IntMatrix, blockSize int, flags Flag,
	floatType FloatType, precision int,
) Status {
	param := NewParam(blockSize)
	param.Flags = flags
	return ReduceWithParam(b, u, param, floatType, precision)
}

// HKZ reduces b with the block as wide as the basis, which makes every
// row the shortest vector of the lattice its tail projects into.
func HKZ(b *intmatrix.IntMatrix, u *intmatrix.IntMatrix, flags Flag, floatType FloatType, precision int) Status {
	return Reduce(b, u, b.NumRows(), flags, floatType, precision)
}
