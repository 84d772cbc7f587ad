// Copyright (c) 2023 Colin McRae

package bkz

import (
	"fmt"
)

// Flag selects optional behaviors of a reduction. Flags combine with |.
type Flag int

const (
	Verbose Flag = 1 << iota
	AutoAbort
	MaxLoops
	MaxTime
	BoundedLLL
	GHBound
	SDVariant
	SlideReduction
	DumpGSO
)

// Pruning is one entry of a pruning schedule: coefficient bounds for the
// enumeration tree, one per depth, and the success probability the bounds
// were computed for.
type Pruning struct {
	Probability  float64
	Coefficients []float64
}

// Strategy configures the reduction of blocks of one size: the block
// sizes to preprocess with, in non-increasing order, and the pruning
// schedule tried across rerandomized retries.
type Strategy struct {
	Preprocessing []int
	Pruning       []Pruning
}

const (
	// DefaultDelta is the Lovasz condition slack used throughout.
	DefaultDelta = 0.99

	// DefaultAutoAbortScale and DefaultAutoAbortMaxNoDec control the
	// slope-based convergence test.
	DefaultAutoAbortScale    = 1.0
	DefaultAutoAbortMaxNoDec = 5

	// DefaultGHFactor caps the enumeration radius at this multiple of
	// the Gaussian heuristic when GHBound is set.
	DefaultGHFactor = 1.1

	// DefaultRerandomizationDensity is the number of lower rows mixed
	// into each row by a rerandomization.
	DefaultRerandomizationDensity = 3

	// DefaultSlideTolerance is the relative decrease of the slide
	// potential below which a slide tour counts as converged.
	DefaultSlideTolerance = 1e-10
)

// Param is the configuration bundle for one reduction.
type Param struct {
	// BlockSize is the width of the window each SVP reduction acts on.
	BlockSize int

	// Strategies[beta], when present, configures blocks of size beta.
	// A missing or empty entry means full enumeration with no recursive
	// preprocessing.
	Strategies []Strategy

	Delta float64
	Flags Flag

	// MaxLoops and MaxTime bound the driver loop when the matching flag
	// is set; zero means unlimited.
	MaxLoops int
	MaxTime  float64

	AutoAbortScale    float64
	AutoAbortMaxNoDec int

	GHFactor               float64
	RerandomizationDensity int

	// SlideTolerance is the relative potential decrease below which
	// slide reduction stops; zero selects the default.
	SlideTolerance float64

	DumpGSOFilename string
	DumpGSOPrefix   string

	// Seed makes rerandomization deterministic when non-zero.
	Seed int64
}

// NewParam returns a Param for the given block size with every other
// field at its default.
func NewParam(blockSize int) *Param {
	return &Param{
		BlockSize:              blockSize,
		Delta:                  DefaultDelta,
		AutoAbortScale:         DefaultAutoAbortScale,
		AutoAbortMaxNoDec:      DefaultAutoAbortMaxNoDec,
		GHFactor:               DefaultGHFactor,
		RerandomizationDensity: DefaultRerandomizationDensity,
	}
}

// Validate reports the first parameter fault, if any. It never mutates
// the receiver.
func (p *Param) Validate() error {
	if p.BlockSize < 2 {
		return fmt.Errorf("Param.Validate: block size %d is below 2", p.BlockSize)
	}
	if p.Delta <= 0.25 || 1.0 <= p.Delta {
		return fmt.Errorf("Param.Validate: delta = %f outside (0.25, 1)", p.Delta)
	}
	if p.Flags&MaxLoops != 0 && p.MaxLoops < 0 {
		return fmt.Errorf("Param.Validate: max loops %d is negative", p.MaxLoops)
	}
	if p.Flags&MaxTime != 0 && p.MaxTime < 0 {
		return fmt.Errorf("Param.Validate: max time %f is negative", p.MaxTime)
	}
	if p.Flags&AutoAbort != 0 && p.AutoAbortMaxNoDec < 1 {
		return fmt.Errorf(
			"Param.Validate: auto abort requires max no-dec at least 1, have %d",
			p.AutoAbortMaxNoDec,
		)
	}
	if p.Flags&GHBound != 0 && p.GHFactor <= 0 {
		return fmt.Errorf("Param.Validate: gh factor %f is not positive", p.GHFactor)
	}
	if p.SlideTolerance < 0 {
		return fmt.Errorf("Param.Validate: slide tolerance %g is negative", p.SlideTolerance)
	}
	if p.RerandomizationDensity < 1 {
		return fmt.Errorf(
			"Param.Validate: rerandomization density %d is below 1", p.RerandomizationDensity,
		)
	}
	if p.Flags&DumpGSO != 0 && p.DumpGSOFilename == "" {
		return fmt.Errorf("Param.Validate: DumpGSO set without a filename")
	}
	return nil
}

// String returns the one-line summary printed by the verbose preamble.
func (p *Param) String() string {
	return fmt.Sprintf(
		"block size: %d, flags: 0x%04x, delta: %g, max loops: %d, max time: %g, "+
			"auto abort: (%g, %d), gh factor: %g, rerandomization density: %d, seed: %d",
		p.BlockSize, int(p.Flags), p.Delta, p.MaxLoops, p.MaxTime,
		p.AutoAbortScale, p.AutoAbortMaxNoDec, p.GHFactor, p.RerandomizationDensity, p.Seed,
	)
}

// strategyFor returns the strategy for blocks of size beta, which is
// empty when none was configured.
func (p *Param) strategyFor(beta int) Strategy {
	if 0 <= beta && beta < len(p.Strategies) {
		return p.Strategies[beta]
	}
	return Strategy{}
}

// pruningSchedule returns the pruning entries tried across retries for a
// block of size beta. Without a configured schedule it is a single
// unpruned entry with success probability 1.
func (p *Param) pruningSchedule(beta int) []Pruning {
	strategy := p.strategyFor(beta)
	if len(strategy.Pruning) > 0 {
		return strategy.Pruning
	}
	coefficients := make([]float64, beta)
	for i := range coefficients {
		coefficients[i] = 1.0
	}
	return []Pruning{{Probability: 1.0, Coefficients: coefficients}}
}

// coefficientsFor trims or extends pruning coefficients to the tree depth
// beta, repeating the last bound when the table is shorter.
func coefficientsFor(pruning Pruning, beta int) []float64 {
	coefficients := make([]float64, beta)
	for i := 0; i < beta; i++ {
		if i < len(pruning.Coefficients) {
			coefficients[i] = pruning.Coefficients[i]
		} else if len(pruning.Coefficients) > 0 {
			coefficients[i] = pruning.Coefficients[len(pruning.Coefficients)-1]
		} else {
			coefficients[i] = 1.0
		}
	}
	return coefficients
}
