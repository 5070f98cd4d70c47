// Package validate checks whether a community's rating volume meets
// the statistical minimums required by the heavier scoring path.
package validate

import (
	"sort"

	"github.com/opennotes-ai/opennotes-sub012/internal/domain/table"
)

// Default sufficiency thresholds.
const (
	DefaultMinRatersPerNote   = 5
	DefaultMinRatingsPerRater = 10
)

// Result reports the outcome of a sufficiency check. It is advisory:
// callers decide whether to proceed, fall back, or warn. Insufficiency
// is never an error.
type Result struct {
	IsValid                       bool
	NotesWithInsufficientRatings  []string
	RatersWithInsufficientRatings []string
	TotalNotes                    int
	TotalRaters                   int
	TotalRatings                  int
}

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithMinRatersPerNote sets the minimum distinct raters required per note.
func WithMinRatersPerNote(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.minRatersPerNote = n
		}
	}
}

// WithMinRatingsPerRater sets the minimum ratings required per rater.
func WithMinRatingsPerRater(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.minRatingsPerRater = n
		}
	}
}

// Validator checks rating-volume sufficiency for the heavy scorer.
type Validator struct {
	minRatersPerNote   int
	minRatingsPerRater int
}

// New creates a Validator with default thresholds.
func New(opts ...Option) *Validator {
	v := &Validator{
		minRatersPerNote:   DefaultMinRatersPerNote,
		minRatingsPerRater: DefaultMinRatingsPerRater,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate groups the table by note and by rater, flagging groups below
// the configured minimums. An empty table is invalid with all totals
// zero and both flag lists empty.
func (v *Validator) Validate(t *table.Ratings) Result {
	if t == nil || t.Len() == 0 {
		return Result{}
	}

	byNote := t.GroupByNote()
	byRater := t.GroupByRater()

	res := Result{
		TotalNotes:   len(byNote),
		TotalRaters:  len(byRater),
		TotalRatings: t.Len(),
	}

	for noteID, count := range byNote {
		if count < v.minRatersPerNote {
			res.NotesWithInsufficientRatings = append(res.NotesWithInsufficientRatings, noteID)
		}
	}
	for raterID, count := range byRater {
		if count < v.minRatingsPerRater {
			res.RatersWithInsufficientRatings = append(res.RatersWithInsufficientRatings, raterID)
		}
	}

	// Deterministic ordering for logs and tests.
	sort.Strings(res.NotesWithInsufficientRatings)
	sort.Strings(res.RatersWithInsufficientRatings)

	res.IsValid = len(res.NotesWithInsufficientRatings) == 0 &&
		len(res.RatersWithInsufficientRatings) == 0

	return res
}
