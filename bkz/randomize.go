// Copyright (c) 2023 Colin McRae

package bkz

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/tuneinsight/lattigo/v4/utils"
	"golang.org/x/crypto/sha3"
)

// blockPRNG returns the random stream driving one rerandomization
// attempt. With a non-zero seed the stream is keyed by SHAKE-256 over
// (seed, kappa, retry), so a run is reproducible attempt by attempt.
func (red *Reduction) blockPRNG(kappa int, retry int) (io.Reader, error) {
	if red.param.Seed == 0 {
		prng, err := utils.NewPRNG()
		if err != nil {
			return nil, fmt.Errorf("Reduction.blockPRNG: could not draw a random key: %q", err.Error())
		}
		return prng, nil
	}
	var material [24]byte
	binary.BigEndian.PutUint64(material[0:8], uint64(red.param.Seed))
	binary.BigEndian.PutUint64(material[8:16], uint64(kappa))
	binary.BigEndian.PutUint64(material[16:24], uint64(retry))
	shake := sha3.NewShake256()
	if _, err := shake.Write(material[:]); err != nil {
		return nil, fmt.Errorf("Reduction.blockPRNG: could not absorb the seed: %q", err.Error())
	}
	key := make([]byte, 64)
	if _, err := shake.Read(key); err != nil {
		return nil, fmt.Errorf("Reduction.blockPRNG: could not derive the key: %q", err.Error())
	}
	prng, err := utils.NewKeyedPRNG(key)
	if err != nil {
		return nil, fmt.Errorf("Reduction.blockPRNG: could not key the stream: %q", err.Error())
	}
	return prng, nil
}

// randIntn returns a uniform value in {0,...,n-1} from the stream.
func randIntn(prng io.Reader, n int) (int, error) {
	var buffer [8]byte
	if _, err := io.ReadFull(prng, buffer[:]); err != nil {
		return 0, fmt.Errorf("randIntn: could not read the stream: %q", err.Error())
	}
	return int(binary.BigEndian.Uint64(buffer[:]) % uint64(n)), nil
}

// rerandomizeBlock randomizes rows {lo+1,...,hi-1}: a random permutation
// of those rows, followed by mixing each row with signed units of
// distinct lower rows in {lo,...,i-1}. The combined transformation is
// unimodular, so the lattice is unchanged. Row lo is never touched, which
// keeps the block's current best leading vector as a candidate. The
// caller re-runs LLL on the block afterwards.
func (red *Reduction) rerandomizeBlock(lo int, hi int, prng io.Reader) error {
	if hi-lo < 2 {
		return nil
	}

	// Fisher-Yates on rows {lo+1,...,hi-1}
	for i := hi - 1; i > lo+1; i-- {
		j, err := randIntn(prng, i-lo)
		if err != nil {
			return fmt.Errorf("Reduction.rerandomizeBlock: %q", err.Error())
		}
		if err = red.m.SwapRows(i, lo+1+j); err != nil {
			return fmt.Errorf("Reduction.rerandomizeBlock: could not permute rows: %q", err.Error())
		}
	}

	plusOne := big.NewInt(1)
	minusOne := big.NewInt(-1)
	density := red.param.RerandomizationDensity
	for i := lo + 1; i < hi; i++ {
		available := i - lo
		count := utils.MinInt(density, available)
		chosen := make(map[int]bool, count)
		for len(chosen) < count {
			j, err := randIntn(prng, available)
			if err != nil {
				return fmt.Errorf("Reduction.rerandomizeBlock: %q", err.Error())
			}
			if chosen[j] {
				continue
			}
			chosen[j] = true
			sign, err := randIntn(prng, 2)
			if err != nil {
				return fmt.Errorf("Reduction.rerandomizeBlock: %q", err.Error())
			}
			x := plusOne
			if sign == 1 {
				x = minusOne
			}
			if err = red.m.RowAddMul(i, lo+j, x); err != nil {
				return fmt.Errorf("Reduction.rerandomizeBlock: could not mix row %d: %q", i, err.Error())
			}
		}
	}
	return nil
}
