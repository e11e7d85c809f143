package descriptive

import (
	"math"
	"sort"

	"anastat/adapters/stats/hypotest"
	"anastat/domain/stats"
)

const (
	yeoJohnsonLambdaMin = -2.0
	yeoJohnsonLambdaMax = 2.0
	goldenTolerance     = 1e-4
)

// AnalyzeDistribution runs the normality battery and, when the data departs
// from normality, scores candidate normalizing transforms by how much they
// improve the normality p-value.
func AnalyzeDistribution(data []float64) (*stats.DistributionAnalysis, error) {
	battery, err := hypotest.NormalityBattery(data)
	if err != nil {
		return nil, err
	}

	result := &stats.DistributionAnalysis{NormalityTests: battery}
	if len(battery) == 0 {
		return result, nil
	}

	alreadyNormal := true
	for _, t := range battery {
		if !t.IsNormal {
			alreadyNormal = false
			break
		}
	}
	if alreadyNormal {
		return result, nil
	}

	result.Transformations = SuggestTransformations(data)
	return result, nil
}

// SuggestTransformations tries log (strictly positive data), square root
// (non-negative data) and Yeo-Johnson (any data) and ranks them by normality
// p-value improvement. Transforms that do not improve are dropped.
func SuggestTransformations(data []float64) []stats.TransformationSuggestion {
	baseline := normalityScore(data)

	var suggestions []stats.TransformationSuggestion
	consider := func(name, rationale string, transformed []float64) {
		score := normalityScore(transformed)
		if score <= baseline {
			return
		}
		suggestions = append(suggestions, stats.TransformationSuggestion{
			Transformation:   name,
			ImprovementScore: score - baseline,
			Rationale:        rationale,
		})
	}

	if allPositive(data) {
		consider("log", "strictly positive data; log compresses right tails", mapValues(data, math.Log))
	}
	if allNonNegative(data) {
		consider("sqrt", "non-negative data; square root moderates right skew", mapValues(data, math.Sqrt))
	}

	lambda := optimizeYeoJohnsonLambda(data)
	transformed := make([]float64, len(data))
	for i, v := range data {
		transformed[i] = YeoJohnson(v, lambda)
	}
	consider("yeo_johnson", "power transform fitted by maximum likelihood", transformed)

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].ImprovementScore > suggestions[j].ImprovementScore
	})
	return suggestions
}

// normalityScore is the Shapiro-Wilk p-value when computable, falling back
// to Jarque-Bera. Zero when neither applies.
func normalityScore(data []float64) float64 {
	if t, err := hypotest.ShapiroWilk(data); err == nil {
		return t.PValue
	}
	if t, err := hypotest.JarqueBera(data); err == nil {
		return t.PValue
	}
	return 0
}

// YeoJohnson applies the Yeo-Johnson power transform at the given lambda.
func YeoJohnson(x, lambda float64) float64 {
	if x >= 0 {
		if lambda != 0 {
			return (math.Pow(x+1, lambda) - 1) / lambda
		}
		return math.Log(x + 1)
	}
	if lambda != 2 {
		return -(math.Pow(-x+1, 2-lambda) - 1) / (2 - lambda)
	}
	return -math.Log(-x + 1)
}

// optimizeYeoJohnsonLambda maximizes the profile log-likelihood over
// [-2, 2] with a golden-section search.
func optimizeYeoJohnsonLambda(data []float64) float64 {
	const invPhi = 0.6180339887498949

	a, b := yeoJohnsonLambdaMin, yeoJohnsonLambdaMax
	c := b - (b-a)*invPhi
	d := a + (b-a)*invPhi
	fc := yeoJohnsonLogLikelihood(data, c)
	fd := yeoJohnsonLogLikelihood(data, d)

	for b-a > goldenTolerance {
		if fc > fd {
			b, d, fd = d, c, fc
			c = b - (b-a)*invPhi
			fc = yeoJohnsonLogLikelihood(data, c)
		} else {
			a, c, fc = c, d, fd
			d = a + (b-a)*invPhi
			fd = yeoJohnsonLogLikelihood(data, d)
		}
	}
	return (a + b) / 2
}

// yeoJohnsonLogLikelihood is the profile log-likelihood of the transform
// under a fitted normal, including the Jacobian term.
func yeoJohnsonLogLikelihood(data []float64, lambda float64) float64 {
	n := float64(len(data))
	transformed := make([]float64, len(data))
	var jacobian float64
	for i, v := range data {
		transformed[i] = YeoJohnson(v, lambda)
		if v >= 0 {
			jacobian += math.Log1p(v)
		} else {
			jacobian += math.Log1p(-v)
		}
	}

	var mean float64
	for _, v := range transformed {
		mean += v
	}
	mean /= n
	var variance float64
	for _, v := range transformed {
		variance += (v - mean) * (v - mean)
	}
	variance /= n
	if variance <= 0 {
		return math.Inf(-1)
	}
	return -n/2*math.Log(variance) + (lambda-1)*jacobian
}

func allPositive(data []float64) bool {
	for _, v := range data {
		if v <= 0 {
			return false
		}
	}
	return true
}

func allNonNegative(data []float64) bool {
	for _, v := range data {
		if v < 0 {
			return false
		}
	}
	return true
}

func mapValues(data []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = fn(v)
	}
	return out
}
