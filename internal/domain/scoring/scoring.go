// Package scoring defines the contract for computing note helpfulness
// scores from rating values.
package scoring

import (
	"context"

	"github.com/opennotes-ai/opennotes-sub012/internal/domain/model"
)

// DefaultMinRatersPerNote gates standard vs provisional confidence.
const DefaultMinRatersPerNote = 5

// Metadata keys common across scorers.
const (
	MetaAlgorithm = "algorithm"
	MetaNoData    = "no_data"
)

// Result contains the computed score for a note. Score always lies in
// [0, 1].
type Result struct {
	Score      float64
	Confidence model.ConfidenceLevel
	Metadata   map[string]any
}

// NoData reports whether the scorer flagged the result as having no
// rating evidence behind it.
func (r Result) NoData() bool {
	flagged, ok := r.Metadata[MetaNoData].(bool)
	return ok && flagged
}

// Scorer computes a helpfulness score for a single note from its
// numeric rating values. Implementations must be side-effect-free and
// safe to share across communities of the same tier.
type Scorer interface {
	// ScoreNote computes a score, honoring ctx for cancellation.
	ScoreNote(ctx context.Context, noteID string, ratings []float64) (Result, error)
}

// Confidence classifies rating volume: no_data iff zero ratings,
// provisional below minRaters, standard otherwise.
func Confidence(ratingCount, minRaters int) model.ConfidenceLevel {
	switch {
	case ratingCount == 0:
		return model.ConfidenceNoData
	case ratingCount < minRaters:
		return model.ConfidenceProvisional
	default:
		return model.ConfidenceStandard
	}
}
