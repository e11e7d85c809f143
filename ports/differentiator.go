package ports

import "context"

// Evaluation is the output of one symbolic evaluation: the formula value at
// the given point plus first partial derivatives per variable.
type Evaluation struct {
	Value       float64
	Derivatives map[string]float64
}

// Differentiator is the symbolic differentiation collaborator consumed by
// uncertainty propagation. Implementations live elsewhere in the system; the
// engine treats it as an opaque service returning finite doubles or an error.
type Differentiator interface {
	Evaluate(ctx context.Context, formula string, variables []string, values []float64) (Evaluation, error)
}
