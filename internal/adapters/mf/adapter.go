package mf

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/opennotes-ai/opennotes-sub012/internal/domain/scoring"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/table"
)

// Algorithm identifies the matrix-factorization path in result metadata.
const Algorithm = "matrix_factorization"

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithMinRaters sets the rating count at which confidence becomes
// standard rather than provisional.
func WithMinRaters(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.minRaters = n
		}
	}
}

// Adapter implements scoring.Scorer on top of the external
// matrix-factorization engine. It must be primed with a community's
// ratings table and rosters before scoring; the engine's batch run is
// executed lazily once and its output cached for the adapter's
// lifetime. Engine failures propagate to the caller unchanged — a
// silently wrong score is worse than an explicit failure that lets the
// orchestrator fall back or retry.
type Adapter struct {
	engine    Engine
	minRaters int

	mu     sync.Mutex
	input  *Input
	output *Output
}

// NewAdapter creates an adapter around the external engine.
func NewAdapter(engine Engine, opts ...Option) *Adapter {
	a := &Adapter{
		engine:    engine,
		minRaters: scoring.DefaultMinRatersPerNote,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Prime supplies the community's ratings table and rosters for the
// next batch run. Any previously cached output is discarded.
func (a *Adapter) Prime(ratings *table.Ratings, notes []Note, participants []Participant) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.input = &Input{
		Ratings:      ratings,
		Notes:        notes,
		Participants: participants,
	}
	a.output = nil
}

// ScoreNote answers from the cached batch output, running the engine
// first if needed. Unknown notes and engine failures are errors.
func (a *Adapter) ScoreNote(ctx context.Context, noteID string, ratings []float64) (scoring.Result, error) {
	out, err := a.run(ctx)
	if err != nil {
		return scoring.Result{}, err
	}

	helpful, ok := out.HelpfulScores[noteID]
	if !ok {
		return scoring.Result{}, fmt.Errorf("%w: %s", ErrNoteNotScored, noteID)
	}

	return a.translate(noteID, helpful, len(ratings)), nil
}

// ScoreBatch runs the engine and translates every scored note. Used by
// the orchestrator's community-wide pass to avoid per-note runs.
func (a *Adapter) ScoreBatch(ctx context.Context) (map[string]scoring.Result, error) {
	out, err := a.run(ctx)
	if err != nil {
		return nil, err
	}

	perNote := a.ratingCounts()
	results := make(map[string]scoring.Result, len(out.HelpfulScores))
	for noteID, helpful := range out.HelpfulScores {
		results[noteID] = a.translate(noteID, helpful, perNote[noteID])
	}
	return results, nil
}

// run executes the engine's batch entry point at most once per Prime.
func (a *Adapter) run(ctx context.Context) (*Output, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.input == nil {
		return nil, ErrNotPrimed
	}
	if a.output != nil {
		return a.output, nil
	}

	out, err := a.engine.Run(ctx, *a.input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineFailed, err)
	}

	// Some engine builds only populate the scored-notes rows; derive
	// the per-note map from them so lookups have a single source.
	if out.HelpfulScores == nil {
		out.HelpfulScores = make(map[string]float64, len(out.ScoredNotes))
		for _, sn := range out.ScoredNotes {
			out.HelpfulScores[sn.NoteID] = sn.HelpfulScore
		}
	}

	a.output = &out
	return a.output, nil
}

// translate converts one engine score into the engine-wide Result shape.
func (a *Adapter) translate(noteID string, helpful float64, ratingCount int) scoring.Result {
	score := math.Max(0, math.Min(1, helpful))
	metadata := map[string]any{
		scoring.MetaAlgorithm: Algorithm,
		"rating_count":        ratingCount,
		"raw_helpful_score":   helpful,
	}
	if ratingCount == 0 {
		metadata[scoring.MetaNoData] = true
	}
	return scoring.Result{
		Score:      score,
		Confidence: scoring.Confidence(ratingCount, a.minRaters),
		Metadata:   metadata,
	}
}

// ratingCounts derives per-note rating counts from the primed table.
func (a *Adapter) ratingCounts() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.input == nil || a.input.Ratings == nil {
		return nil
	}
	return a.input.Ratings.GroupByNote()
}
