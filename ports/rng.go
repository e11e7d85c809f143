package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for resampling stages.
// Streams derived from the same base seed and name are deterministic; the
// orchestrator derives one stream per worker so resampling is seed-influenced
// even when workers run concurrently.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream scoped to a run and stage.
	// The same (runID, stage, key, baseSeed) tuple always yields the same stream.
	Stream(ctx context.Context, runID, stage, key string, baseSeed int64) (*rand.Rand, error)
}
