package mathexpr

import (
	"context"
	"math"

	"anastat/internal/errors"
	"anastat/ports"
)

// Adapter implements ports.Differentiator by parsing the formula and taking
// central-difference partial derivatives.
type Adapter struct{}

// NewAdapter creates an expression differentiator.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Evaluate computes f(values) and one first partial derivative per variable.
// Step size is scaled to the magnitude of each value.
func (a *Adapter) Evaluate(ctx context.Context, formula string, variables []string, values []float64) (ports.Evaluation, error) {
	if len(variables) != len(values) {
		return ports.Evaluation{}, errors.InvalidInputf("got %d variables but %d values", len(variables), len(values))
	}
	if err := ctx.Err(); err != nil {
		return ports.Evaluation{}, err
	}

	expr, err := Parse(formula)
	if err != nil {
		return ports.Evaluation{}, err
	}

	binding := make(map[string]float64, len(variables))
	for i, name := range variables {
		binding[name] = values[i]
	}

	value, err := expr.Eval(binding)
	if err != nil {
		return ports.Evaluation{}, err
	}
	if !isFinite(value) {
		return ports.Evaluation{}, errors.NumericDegenerate("formula evaluates to a non-finite value")
	}

	derivatives := make(map[string]float64, len(variables))
	for _, name := range variables {
		d, err := centralDifference(expr, binding, name)
		if err != nil {
			return ports.Evaluation{}, err
		}
		derivatives[name] = d
	}

	return ports.Evaluation{Value: value, Derivatives: derivatives}, nil
}

func centralDifference(expr *Expression, binding map[string]float64, name string) (float64, error) {
	x := binding[name]
	h := 1e-6 * math.Max(math.Abs(x), 1)

	binding[name] = x + h
	fPlus, err := expr.Eval(binding)
	if err != nil {
		binding[name] = x
		return 0, err
	}
	binding[name] = x - h
	fMinus, err := expr.Eval(binding)
	binding[name] = x
	if err != nil {
		return 0, err
	}
	return (fPlus - fMinus) / (2 * h), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
