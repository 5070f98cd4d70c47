// Package mf adapts the engine's tier/score contract to an external
// matrix-factorization scoring library. The library itself is consumed
// through the narrow Engine interface and is not reimplemented here.
package mf

import (
	"context"

	"github.com/opennotes-ai/opennotes-sub012/internal/domain/table"
)

// Note is one row of the note roster handed to the external engine.
type Note struct {
	NoteID          string
	CreatedAtMillis int64
}

// Participant is one row of the enrollment roster handed to the
// external engine.
type Participant struct {
	ParticipantID   string
	EnrollmentState string
}

// Input is the batch-scoring request for the external engine: the
// canonical ratings table plus the note and participant rosters.
type Input struct {
	Ratings      *table.Ratings
	Notes        []Note
	Participants []Participant
}

// ScoredNote is one row of the engine's scored-notes output.
type ScoredNote struct {
	NoteID        string
	HelpfulScore  float64
	Intercept     float64
	FactorLoading float64
}

// Output is the external engine's tabular batch result.
type Output struct {
	ScoredNotes   []ScoredNote
	HelpfulScores map[string]float64
	AuxiliaryInfo map[string]any
}

// Engine is the batch-scoring entry point of the external
// collaborative-filtering library. Implementations may fail on
// malformed input or internal numerical errors; those failures are
// surfaced to callers unchanged.
type Engine interface {
	Run(ctx context.Context, in Input) (Output, error)
}
