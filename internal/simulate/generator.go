// Package simulate generates synthetic communities, notes, and ratings
// for exercising the scoring engine from the CLI and in smoke runs.
package simulate

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/opennotes-ai/opennotes-sub012/internal/domain/model"
	"github.com/opennotes-ai/opennotes-sub012/pkg/logger"
)

// Default generation parameters.
const (
	defaultNoteCount     = 25
	defaultRaterPoolSize = 40
	defaultRatersPerNote = 4
	defaultHelpfulBias   = 0.6
	defaultRandomSeed    = 42
	somewhatHelpfulShare = 0.2
	ratingSpacingMinutes = 7
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithNoteCount sets how many notes the community gets.
func WithNoteCount(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.noteCount = n
		}
	}
}

// WithRaterPoolSize sets the number of distinct raters available.
func WithRaterPoolSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.raterPoolSize = n
		}
	}
}

// WithRatersPerNote sets the average number of ratings per note.
func WithRatersPerNote(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.ratersPerNote = n
		}
	}
}

// WithHelpfulBias sets the probability of a HELPFUL rating.
func WithHelpfulBias(p float64) Option {
	return func(g *Generator) {
		if p >= 0 && p <= 1 {
			g.helpfulBias = p
		}
	}
}

// WithSeed sets the random seed for reproducible runs.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// Generator produces a synthetic community's notes and ratings with a
// configurable helpfulness skew.
type Generator struct {
	noteCount     int
	raterPoolSize int
	ratersPerNote int
	helpfulBias   float64
	seed          int64
}

// New creates a Generator with default parameters.
func New(opts ...Option) *Generator {
	g := &Generator{
		noteCount:     defaultNoteCount,
		raterPoolSize: defaultRaterPoolSize,
		ratersPerNote: defaultRatersPerNote,
		helpfulBias:   defaultHelpfulBias,
		seed:          defaultRandomSeed,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the community id and its notes with ratings. The
// same seed always yields the same shape (counts and levels); only the
// uuids differ between runs.
func (g *Generator) Generate(ctx context.Context) (uuid.UUID, []model.Note) {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic seed for reproducible simulation

	communityID := uuid.New()
	raters := make([]uuid.UUID, g.raterPoolSize)
	for i := range raters {
		raters[i] = uuid.New()
	}

	base := time.Now().Add(-24 * time.Hour)
	notes := make([]model.Note, g.noteCount)
	for i := range notes {
		noteID := uuid.New()
		createdAt := base.Add(time.Duration(i) * time.Minute)

		// Vary rating volume around the configured average so some
		// notes land below the provisional threshold.
		count := 0
		if g.ratersPerNote > 0 {
			count = rng.Intn(g.ratersPerNote*2 + 1)
		}
		if count > g.raterPoolSize {
			count = g.raterPoolSize
		}

		ratings := make([]model.Rating, count)
		perm := rng.Perm(g.raterPoolSize)
		for j := 0; j < count; j++ {
			ratings[j] = model.Rating{
				ID:        uuid.New(),
				NoteID:    noteID,
				RaterID:   raters[perm[j]],
				Level:     g.level(rng),
				CreatedAt: createdAt.Add(time.Duration(j*ratingSpacingMinutes) * time.Minute),
			}
		}

		notes[i] = model.Note{
			ID:                noteID,
			CommunityServerID: communityID,
			Ratings:           ratings,
			CreatedAt:         createdAt,
		}
	}

	logger.Get().Info(ctx, "generated synthetic community",
		logger.String("communityServerID", communityID.String()),
		logger.Int("notes", len(notes)),
		logger.Int("raterPool", g.raterPoolSize),
	)

	return communityID, notes
}

// level draws a helpfulness level from the configured skew.
func (g *Generator) level(rng *rand.Rand) model.HelpfulnessLevel {
	r := rng.Float64()
	switch {
	case r < g.helpfulBias:
		return model.Helpful
	case r < g.helpfulBias+somewhatHelpfulShare:
		return model.SomewhatHelpful
	default:
		return model.NotHelpful
	}
}
