package testkit

import (
	"context"
	"math/rand"
)

// RNGAdapter implements ports.RNGPort with plain seeded math/rand streams.
type RNGAdapter struct{}

// NewRNGAdapter returns the default RNG adapter.
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return rand.New(rand.NewSource(seed + int64(hashString(name)))), nil
}

// Stream creates a deterministic RNG stream scoped to a run and stage.
func (r *RNGAdapter) Stream(ctx context.Context, runID, stage, key string, baseSeed int64) (*rand.Rand, error) {
	// Deterministic seed from runID + stage + key + baseSeed so the same
	// tuple always yields the same stream.
	seed := baseSeed
	if runID != "" {
		seed += int64(hashString(runID))
	}
	if stage != "" {
		seed += int64(hashString(stage))
	}
	if key != "" {
		seed += int64(hashString(key))
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding (djb2)
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
