package scoring

import (
	"context"
	"math"
)

// BayesianAlgorithm identifies the fallback scorer in result metadata.
const BayesianAlgorithm = "bayesian_average_tier0"

// Default smoothing parameters. The original production constants are
// unconfirmed, so both are configurable; the defaults pull sparse notes
// toward a neutral 0.5 with the weight of ten pseudo-ratings.
const (
	defaultPriorMean   = 0.5
	defaultPriorWeight = 10.0
)

// BayesianOption applies a configuration option to the Bayesian scorer.
type BayesianOption func(*Bayesian)

// WithPriorMean sets the prior score used before any ratings arrive.
func WithPriorMean(mean float64) BayesianOption {
	return func(b *Bayesian) {
		if mean >= 0 && mean <= 1 {
			b.priorMean = mean
		}
	}
}

// WithPriorWeight sets the pseudo-rating weight of the prior.
func WithPriorWeight(weight float64) BayesianOption {
	return func(b *Bayesian) {
		if weight > 0 {
			b.priorWeight = weight
		}
	}
}

// WithMinRaters sets the rating count at which confidence becomes
// standard rather than provisional.
func WithMinRaters(n int) BayesianOption {
	return func(b *Bayesian) {
		if n > 0 {
			b.minRaters = n
		}
	}
}

// Bayesian is the always-available fallback scorer for low-volume
// communities. It smooths the raw rating mean toward a configurable
// prior and never fails for well-formed input, including zero ratings.
type Bayesian struct {
	priorMean   float64
	priorWeight float64
	minRaters   int
}

// NewBayesian creates a Bayesian fallback scorer with configuration
// options.
func NewBayesian(opts ...BayesianOption) *Bayesian {
	b := &Bayesian{
		priorMean:   defaultPriorMean,
		priorWeight: defaultPriorWeight,
		minRaters:   DefaultMinRatersPerNote,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ScoreNote computes a smoothed helpfulness score for the note.
// With zero ratings the prior is returned with no_data confidence.
func (b *Bayesian) ScoreNote(ctx context.Context, noteID string, ratings []float64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	metadata := map[string]any{
		MetaAlgorithm:  BayesianAlgorithm,
		"rating_count": len(ratings),
		"prior_mean":   b.priorMean,
		"prior_weight": b.priorWeight,
	}

	if len(ratings) == 0 {
		metadata[MetaNoData] = true
		return Result{
			Score:      b.priorMean,
			Confidence: Confidence(0, b.minRaters),
			Metadata:   metadata,
		}, nil
	}

	var sum float64
	for _, v := range ratings {
		sum += clamp01(v)
	}

	score := (b.priorMean*b.priorWeight + sum) / (b.priorWeight + float64(len(ratings)))

	return Result{
		Score:      clamp01(score),
		Confidence: Confidence(len(ratings), b.minRaters),
		Metadata:   metadata,
	}, nil
}

// clamp01 bounds v to [0, 1], mapping NaN to 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
