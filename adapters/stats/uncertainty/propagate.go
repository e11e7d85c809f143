package uncertainty

import (
	"context"
	"fmt"
	"math"
	"strings"

	"anastat/domain/stats"
	"anastat/internal/cache"
	"anastat/internal/errors"
	"anastat/ports"
)

const defaultCacheSize = 256

// Engine propagates measurement uncertainty through a formula by the
// first-order method: sigma^2 = sum (df/dx_i * u_i)^2.
type Engine struct {
	diff  ports.Differentiator
	cache *cache.LRU[ports.Evaluation]
}

// NewEngine creates a propagation engine around a differentiator.
func NewEngine(diff ports.Differentiator) *Engine {
	return &Engine{
		diff:  diff,
		cache: cache.NewLRU[ports.Evaluation](defaultCacheSize),
	}
}

// Propagate evaluates the formula at the given point and combines the
// per-variable uncertainties into one budget. Evaluations are cached by
// formula and point.
func (e *Engine) Propagate(ctx context.Context, formula string, variables []string, values, uncertainties []float64) (*stats.UncertaintyBudget, error) {
	if len(variables) == 0 {
		return nil, errors.InvalidInput("propagation requires at least one variable")
	}
	if len(variables) != len(values) || len(values) != len(uncertainties) {
		return nil, errors.InvalidInput("variables, values and uncertainties must have equal lengths")
	}
	for i, u := range uncertainties {
		if u < 0 {
			return nil, errors.InvalidInputf("uncertainty for %q is negative", variables[i])
		}
	}

	eval, err := e.evaluate(ctx, formula, variables, values)
	if err != nil {
		return nil, err
	}

	contributions := make(map[string]float64, len(variables))
	var varianceSum float64
	for i, name := range variables {
		d, ok := eval.Derivatives[name]
		if !ok {
			return nil, errors.NumericDegenerate(fmt.Sprintf("no derivative returned for %q", name))
		}
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, errors.NumericDegenerate(fmt.Sprintf("derivative for %q is not finite", name))
		}
		contribution := d * uncertainties[i]
		contributions[name] = contribution * contribution
		varianceSum += contribution * contribution
	}

	return &stats.UncertaintyBudget{
		Formula:       formula,
		Value:         eval.Value,
		Combined:      math.Sqrt(varianceSum),
		Contributions: contributions,
	}, nil
}

func (e *Engine) evaluate(ctx context.Context, formula string, variables []string, values []float64) (ports.Evaluation, error) {
	key := cacheKey(formula, variables, values)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	eval, err := e.diff.Evaluate(ctx, formula, variables, values)
	if err != nil {
		return ports.Evaluation{}, err
	}
	e.cache.Put(key, eval)
	return eval, nil
}

func cacheKey(formula string, variables []string, values []float64) string {
	var b strings.Builder
	b.WriteString(formula)
	for i, name := range variables {
		fmt.Fprintf(&b, "|%s=%x", name, math.Float64bits(values[i]))
	}
	return b.String()
}
