// Package planner groups translation units into contiguous batches and
// derives per-batch decode parameters. Batch membership never reorders
// units: concatenating the planned batches reproduces the unit sequence
// exactly once each.
package planner

import "github.com/valpere/nllbd/internal/profile"

// Decode length tiers, bucketed from the longest unit in a batch.
// Token count is estimated at roughly four characters per token.
const (
	TierShort  = 256
	TierMedium = 512
	TierLong   = 1024

	shortTokenCeiling  = 50
	mediumTokenCeiling = 200
)

// Constrained-profile batch size bounds.
const (
	minConstrainedBatch = 6
	maxConstrainedBatch = 10
	acceleratedBatch    = 12
)

// Unit is one independently translatable span. Index is its position in
// the final concatenation order.
type Unit struct {
	Index int
	Text  string
}

// DecodeConfig carries the generation parameters for one batch.
// Decoding is always deterministic; there is no sampling knob.
type DecodeConfig struct {
	MaxLength         int
	NumBeams          int
	RepetitionPenalty float64
	LengthPenalty     float64
}

// Batch is a contiguous group of units submitted to the engine in one
// call, with the decode parameters derived for it.
type Batch struct {
	Index  int
	Units  []Unit
	Decode DecodeConfig
}

// BatchSize returns the effective batch size: the requested size when
// the caller supplied one, otherwise the profile default. Constrained
// backends get half the available parallelism clamped to [6, 10];
// accelerated backends get a fixed 12.
func BatchSize(requested int, prof profile.Profile) int {
	if requested > 0 {
		return requested
	}
	if prof.Class == profile.Constrained {
		size := prof.Parallelism / 2
		if size < minConstrainedBatch {
			size = minConstrainedBatch
		}
		if size > maxConstrainedBatch {
			size = maxConstrainedBatch
		}
		return size
	}
	return acceleratedBatch
}

// Plan chunks texts into batches of at most BatchSize(requested, prof)
// units, in index order, and attaches the decode configuration for each
// batch.
func Plan(texts []string, requested int, prof profile.Profile) []Batch {
	size := BatchSize(requested, prof)

	units := make([]Unit, len(texts))
	for i, t := range texts {
		units[i] = Unit{Index: i, Text: t}
	}

	var batches []Batch
	for start := 0; start < len(units); start += size {
		end := start + size
		if end > len(units) {
			end = len(units)
		}
		chunk := units[start:end]
		batches = append(batches, Batch{
			Index:  len(batches),
			Units:  chunk,
			Decode: decodeFor(chunk, prof),
		})
	}
	return batches
}

// decodeFor derives the decode configuration from the longest unit in
// the batch and the device class.
func decodeFor(units []Unit, prof profile.Profile) DecodeConfig {
	longest := 0
	for _, u := range units {
		if len(u.Text) > longest {
			longest = len(u.Text)
		}
	}

	cfg := DecodeConfig{MaxLength: MaxLengthFor(longest)}
	if prof.Class == profile.Constrained {
		// Greedy decoding with softer penalties keeps the CPU path fast.
		cfg.NumBeams = 1
		cfg.RepetitionPenalty = 1.05
		cfg.LengthPenalty = 0.7
	} else {
		cfg.NumBeams = 2
		cfg.RepetitionPenalty = 1.1
		cfg.LengthPenalty = 0.8
	}
	return cfg
}

// MaxLengthFor buckets a character length into a decode tier.
func MaxLengthFor(chars int) int {
	estimatedTokens := chars / 4
	switch {
	case estimatedTokens < shortTokenCeiling:
		return TierShort
	case estimatedTokens < mediumTokenCeiling:
		return TierMedium
	default:
		return TierLong
	}
}
