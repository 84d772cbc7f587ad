// Copyright (c) 2023 Colin McRae

package bkz

import (
	"fmt"
	"math"

	"github.com/predrag3141/BKZ/gso"
)

// autoAbort watches the slope of the log GSO profile across tours and
// signals convergence once the slope has failed to improve often enough.
// Slopes are negative for a reduced basis; a tour that steepens the
// profile resets the counter.
type autoAbort struct {
	m        *gso.Mat
	startRow int
	numRows  int
	oldSlope float64
	noDec    int
}

func newAutoAbort(m *gso.Mat, startRow int, numRows int) *autoAbort {
	return &autoAbort{
		m:        m,
		startRow: startRow,
		numRows:  numRows,
		oldSlope: math.Inf(1),
		noDec:    -1,
	}
}

// testAbort fits the current slope and reports whether the reduction
// should stop. The first call only records the slope.
func (a *autoAbort) testAbort(scale float64, maxNoDec int) (bool, error) {
	newSlope, err := a.slope()
	if err != nil {
		return false, fmt.Errorf("autoAbort.testAbort: could not fit the slope: %q", err.Error())
	}
	if newSlope >= scale*a.oldSlope {
		a.noDec++
	} else {
		a.noDec = 0
		a.oldSlope = newSlope
	}
	return a.noDec >= maxNoDec, nil
}

// slope least-squares fits log r[i] against i over the watched rows.
func (a *autoAbort) slope() (float64, error) {
	if err := a.m.UpdateRows(a.startRow + a.numRows); err != nil {
		return 0, err
	}
	n := float64(a.numRows)
	var sumX, sumY, sumXX, sumXY float64
	for i := 0; i < a.numRows; i++ {
		logR, err := a.m.LogR(a.startRow + i)
		if err != nil {
			return 0, err
		}
		x := float64(i)
		sumX += x
		sumY += logR
		sumXX += x * x
		sumXY += x * logR
	}
	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, fmt.Errorf("autoAbort.slope: %d rows are too few to fit", a.numRows)
	}
	return (n*sumXY - sumX*sumY) / denominator, nil
}
