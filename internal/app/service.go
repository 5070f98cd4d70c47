// Package app drives the per-note and per-community scoring pass,
// wiring the tier model, transformer, validator, scorer factory, and
// scorers together.
package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/opennotes-ai/opennotes-sub012/internal/adapters/mf"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/model"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/scoring"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/table"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/tier"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/validate"
	"github.com/opennotes-ai/opennotes-sub012/pkg/logger"
	"github.com/opennotes-ai/opennotes-sub012/pkg/metrics"
)

// NoteScore is the scoring response for a single note.
type NoteScore struct {
	NoteID          string
	Score           float64
	Confidence      model.ConfidenceLevel
	TierLevel       int
	TierDisplayName string
	Algorithm       string
	Metadata        map[string]any
	CalculatedAt    time.Time
}

// NoteFailure records a note whose scorer invocation failed during a
// community pass.
type NoteFailure struct {
	NoteID string
	Err    error
}

// CommunityReport is the outcome of a community-wide scoring pass.
// A failing note never aborts the batch; its id lands in FailedNoteIDs
// and the rest of the community is still scored.
type CommunityReport struct {
	CommunityServerID string
	Tier              tier.Tier
	NoteCount         int
	Scores            []NoteScore
	FailedNoteIDs     []string
	Failures          []NoteFailure
	Validation        validate.Result
	Warnings          []string
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFactory sets the scorer factory used for community passes.
func WithFactory(f *Factory) Option {
	return func(s *Service) {
		if f != nil {
			s.factory = f
		}
	}
}

// WithValidator sets the data-sufficiency validator.
func WithValidator(v *validate.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithMinRatersPerNote sets the rating count gating standard confidence.
func WithMinRatersPerNote(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minRaters = n
		}
	}
}

// WithHelpfulnessValues overrides the level-to-number mapping applied
// when converting ratings, both for scorer inputs and for the columnar
// table. Empty mappings are ignored.
func WithHelpfulnessValues(m model.ValueMapping) Option {
	return func(s *Service) {
		if len(m) > 0 {
			s.values = m
		}
	}
}

// Service orchestrates note scoring. The computation is synchronous and
// CPU-bound: inputs are immutable snapshots handed in by the caller,
// and all I/O (fetching ratings, persisting scores) belongs to the
// layers around this engine.
type Service struct {
	factory   *Factory
	validator *validate.Validator
	minRaters int
	values    model.ValueMapping
	logger    logger.Logger
}

// New constructs a scoring service with default collaborators.
func New(opts ...Option) *Service {
	s := &Service{
		minRaters: scoring.DefaultMinRatersPerNote,
		values:    model.DefaultValueMapping(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.factory == nil {
		s.factory = NewFactory(WithMinRaters(s.minRaters))
	}
	if s.validator == nil {
		s.validator = validate.New(validate.WithMinRatersPerNote(s.minRaters))
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("scoring")
	}
	return s
}

// CalculateNoteScore scores one note with the supplied scorer and
// derives the response confidence: no_data if the note has zero
// ratings or the scorer flagged no data, provisional if the scorer
// reports provisional, standard otherwise.
func (s *Service) CalculateNoteScore(ctx context.Context, note model.Note, noteCount int, scorer scoring.Scorer) (NoteScore, error) {
	t := tier.ForNoteCount(noteCount)
	values := note.RatingValuesUsing(s.values)

	start := time.Now()
	result, err := scorer.ScoreNote(ctx, note.ID.String(), values)
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordScoringError()
		return NoteScore{}, fmt.Errorf("scoring note %s failed: %w", note.ID, err)
	}

	return s.noteScoreFrom(note, t, values, result), nil
}

// noteScoreFrom assembles the response for one scored note, deriving
// the final confidence from the rating volume and the scorer's own
// classification.
func (s *Service) noteScoreFrom(note model.Note, t tier.Tier, values []float64, result scoring.Result) NoteScore {
	confidence := result.Confidence
	switch {
	case len(values) == 0 || result.NoData():
		confidence = model.ConfidenceNoData
	case result.Confidence == model.ConfidenceProvisional:
		confidence = model.ConfidenceProvisional
	default:
		confidence = scoring.Confidence(len(values), s.minRaters)
	}

	algorithm, _ := result.Metadata[scoring.MetaAlgorithm].(string)
	metrics.RecordNoteScored(t.String())

	return NoteScore{
		NoteID:          note.ID.String(),
		Score:           result.Score,
		Confidence:      confidence,
		TierLevel:       t.Level(),
		TierDisplayName: t.DisplayName(),
		Algorithm:       algorithm,
		Metadata:        result.Metadata,
		CalculatedAt:    note.LastTouched(),
	}
}

// ScoreCommunityServerNotes runs a full scoring pass over one
// community's notes. The sufficiency check is advisory: an invalid
// result is logged and surfaced in the report, never fatal. Scorer
// errors are isolated per note so a single bad note cannot abort the
// batch.
func (s *Service) ScoreCommunityServerNotes(ctx context.Context, communityServerID string, notes []model.Note) (CommunityReport, error) {
	noteCount := len(notes)
	t := tier.ForNoteCount(noteCount)
	metrics.RecordCommunityPass(noteCount)

	report := CommunityReport{
		CommunityServerID: communityServerID,
		Tier:              t,
		NoteCount:         noteCount,
		Warnings:          tier.Warnings(noteCount, t),
	}

	ratings := collectRatings(notes)
	tbl := table.Build(ratings, table.WithValueMapping(s.values))
	report.Validation = s.validator.Validate(tbl)
	if !report.Validation.IsValid {
		metrics.RecordValidationFailure()
		s.logger.Warn(ctx, "community data below sufficiency minimums",
			logger.String("communityServerID", communityServerID),
			logger.Int("insufficientNotes", len(report.Validation.NotesWithInsufficientRatings)),
			logger.Int("insufficientRaters", len(report.Validation.RatersWithInsufficientRatings)),
		)
	}

	scorer, err := s.factory.GetScorer(ctx, communityServerID, noteCount)
	if err != nil {
		return report, fmt.Errorf("selecting scorer for community %s: %w", communityServerID, err)
	}

	// Batch-capable scorers are primed with the community table and run
	// once over the whole community; everything else scores per note.
	if adapter, ok := scorer.(*mf.Adapter); ok {
		adapter.Prime(tbl, noteRoster(notes), participantRoster(tbl))
		report, err = s.scoreBatch(ctx, report, t, adapter, notes)
		if err != nil {
			return report, err
		}
	} else {
		for _, note := range notes {
			score, err := s.CalculateNoteScore(ctx, note, noteCount, scorer)
			if err != nil {
				report.FailedNoteIDs = append(report.FailedNoteIDs, note.ID.String())
				report.Failures = append(report.Failures, NoteFailure{NoteID: note.ID.String(), Err: err})
				s.logger.Error(ctx, "note scoring failed, continuing batch",
					logger.String("noteID", note.ID.String()),
					logger.Error(err),
				)
				continue
			}
			report.Scores = append(report.Scores, score)
		}
	}

	s.logger.Info(ctx, "community scoring pass complete",
		logger.String("communityServerID", communityServerID),
		logger.String("tier", t.String()),
		logger.Int("scored", len(report.Scores)),
		logger.Int("failed", len(report.FailedNoteIDs)),
	)

	return report, nil
}

// scoreBatch runs the engine's batch entry point once and assembles the
// report from its per-note results. A batch-level engine failure fails
// the whole pass; a note missing from the engine output fails only that
// note.
func (s *Service) scoreBatch(ctx context.Context, report CommunityReport, t tier.Tier, adapter *mf.Adapter, notes []model.Note) (CommunityReport, error) {
	start := time.Now()
	results, err := adapter.ScoreBatch(ctx)
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordScoringError()
		return report, fmt.Errorf("batch scoring for community %s failed: %w", report.CommunityServerID, err)
	}

	for _, note := range notes {
		result, ok := results[note.ID.String()]
		if !ok {
			missErr := fmt.Errorf("%w: %s", mf.ErrNoteNotScored, note.ID)
			report.FailedNoteIDs = append(report.FailedNoteIDs, note.ID.String())
			report.Failures = append(report.Failures, NoteFailure{NoteID: note.ID.String(), Err: missErr})
			s.logger.Error(ctx, "note scoring failed, continuing batch",
				logger.String("noteID", note.ID.String()),
				logger.Error(missErr),
			)
			continue
		}
		values := note.RatingValuesUsing(s.values)
		report.Scores = append(report.Scores, s.noteScoreFrom(note, t, values, result))
	}

	return report, nil
}

// TierWarnings exposes the tier diagnostics for a community note count.
func (s *Service) TierWarnings(noteCount int) (tier.Tier, []string) {
	t := tier.ForNoteCount(noteCount)
	return t, tier.Warnings(noteCount, t)
}

// Factory returns the service's scorer factory, e.g. for cache
// invalidation by the layer reacting to rating changes.
func (s *Service) Factory() *Factory {
	return s.factory
}

// collectRatings flattens the notes' rating sets in input order.
func collectRatings(notes []model.Note) []model.Rating {
	var out []model.Rating
	for _, n := range notes {
		out = append(out, n.Ratings...)
	}
	return out
}

// noteRoster builds the note roster handed to the external engine.
func noteRoster(notes []model.Note) []mf.Note {
	roster := make([]mf.Note, 0, len(notes))
	for _, n := range notes {
		roster = append(roster, mf.Note{
			NoteID:          n.ID.String(),
			CreatedAtMillis: n.CreatedAt.UnixMilli(),
		})
	}
	return roster
}

// participantRoster derives the enrollment roster from the distinct
// raters present in the table.
func participantRoster(t *table.Ratings) []mf.Participant {
	byRater := t.GroupByRater()
	ids := make([]string, 0, len(byRater))
	for id := range byRater {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	roster := make([]mf.Participant, 0, len(ids))
	for _, id := range ids {
		roster = append(roster, mf.Participant{
			ParticipantID:   id,
			EnrollmentState: "newUser",
		})
	}
	return roster
}
