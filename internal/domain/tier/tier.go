// Package tier maps a community's note volume to a scoring tier and
// exposes each tier's static configuration.
package tier

import (
	"fmt"
)

// MFMinNotes is the hard production threshold below which matrix
// factorization output is not considered reliable.
const MFMinNotes = 200

// approachingBandFraction defines how close (as a fraction of MaxNotes)
// a note count must be to trigger the approaching-next-tier warning.
const approachingBandFraction = 0.95

// Tier is a data-volume band determining the scoring strategy a
// community uses. Tiers are totally ordered by their numeric level.
type Tier int

// Scoring tiers, ordered from least to most community data.
const (
	Minimal Tier = iota
	Limited
	Basic
	Intermediate
	Advanced
	Full
)

// String returns the tier's canonical name.
func (t Tier) String() string {
	switch t {
	case Minimal:
		return "MINIMAL"
	case Limited:
		return "LIMITED"
	case Basic:
		return "BASIC"
	case Intermediate:
		return "INTERMEDIATE"
	case Advanced:
		return "ADVANCED"
	case Full:
		return "FULL"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// DisplayName returns a human-readable tier name.
func (t Tier) DisplayName() string {
	switch t {
	case Minimal:
		return "Minimal"
	case Limited:
		return "Limited"
	case Basic:
		return "Basic"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	case Full:
		return "Full"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// Level returns the tier's numeric level (0..5).
func (t Tier) Level() int { return int(t) }

// Config holds a tier's static metadata.
type Config struct {
	// MinNotes is the inclusive lower bound of the tier's note-count band.
	MinNotes int
	// MaxNotes is the exclusive upper bound; nil means unbounded.
	// Only the terminal tier may be unbounded.
	MaxNotes *int
	// ScorerComponents names the algorithmic modules active at this tier.
	ScorerComponents []string
	// ConfidenceWarnings marks tiers whose scores carry limited-data
	// confidence caveats.
	ConfidenceWarnings bool
	// Description is a human-readable summary of the tier.
	Description string
}

func bound(n int) *int { return &n }

// configs partitions [0, inf) into contiguous, non-overlapping bands.
// Every non-negative note count maps to exactly one tier.
var configs = map[Tier]Config{
	Minimal: {
		MinNotes:         0,
		MaxNotes:         bound(50),
		ScorerComponents: []string{"bayesian_average"},
		Description:      "Bayesian fallback scoring only; too little data for collaborative filtering",
	},
	Limited: {
		MinNotes:           50,
		MaxNotes:           bound(500),
		ScorerComponents:   []string{"matrix_factorization"},
		ConfidenceWarnings: true,
		Description:        "Matrix factorization with limited-data confidence caveats",
	},
	Basic: {
		MinNotes:         500,
		MaxNotes:         bound(2000),
		ScorerComponents: []string{"matrix_factorization", "rater_reputation"},
		Description:      "Matrix factorization with rater reputation weighting",
	},
	Intermediate: {
		MinNotes:         2000,
		MaxNotes:         bound(10000),
		ScorerComponents: []string{"matrix_factorization", "rater_reputation", "tag_consensus"},
		Description:      "Adds tag consensus analysis on top of the basic pipeline",
	},
	Advanced: {
		MinNotes:         10000,
		MaxNotes:         bound(50000),
		ScorerComponents: []string{"matrix_factorization", "rater_reputation", "tag_consensus", "topic_modeling"},
		Description:      "Adds topic modeling for subject-specific rater weighting",
	},
	Full: {
		MinNotes:         50000,
		MaxNotes:         nil,
		ScorerComponents: []string{"matrix_factorization", "rater_reputation", "tag_consensus", "topic_modeling", "final_round"},
		Description:      "Full scoring pipeline with all components active",
	},
}

// ordered lists tiers by ascending level for threshold scans and
// successor lookups.
var ordered = []Tier{Minimal, Limited, Basic, Intermediate, Advanced, Full}

// ForNoteCount resolves the tier for a community's note count.
// Total and pure: every non-negative count maps to exactly one tier;
// negative counts are treated as zero.
func ForNoteCount(count int) Tier {
	if count < 0 {
		count = 0
	}
	for _, t := range ordered {
		cfg := configs[t]
		if cfg.MaxNotes == nil || count < *cfg.MaxNotes {
			return t
		}
	}
	// Unreachable: the terminal tier is unbounded.
	return Full
}

// ConfigFor returns the static configuration for a tier.
// It fails only for values outside the defined enum range, which is a
// programmer error rather than a data condition.
func ConfigFor(t Tier) (Config, error) {
	cfg, ok := configs[t]
	if !ok {
		return Config{}, fmt.Errorf("%w: %d", ErrUnknownTier, int(t))
	}
	return cfg, nil
}

// Warnings composes human-readable diagnostics for a community at the
// given note count and tier. The conditions are independent and may
// combine. The successor lookup is bounds-checked so the terminal tier
// never indexes past the tier list.
func Warnings(noteCount int, t Tier) []string {
	cfg, err := ConfigFor(t)
	if err != nil {
		return nil
	}

	var warnings []string

	if cfg.ConfidenceWarnings {
		warnings = append(warnings, "Limited data confidence: scores at this tier carry reduced statistical confidence")
		if noteCount < MFMinNotes {
			warnings = append(warnings, fmt.Sprintf(
				"Matrix factorization requires at least %d notes for reliable output; community has %d",
				MFMinNotes, noteCount))
		}
	}

	if cfg.MaxNotes != nil {
		if float64(noteCount) >= float64(*cfg.MaxNotes)*approachingBandFraction {
			if next, ok := successor(t); ok {
				warnings = append(warnings, fmt.Sprintf(
					"Approaching next tier: %s begins at %d notes", next.DisplayName(), *cfg.MaxNotes))
			}
		}
	} else {
		warnings = append(warnings, fmt.Sprintf(
			"At maximum tier: %s uses the full scoring pipeline", t.DisplayName()))
	}

	return warnings
}

// successor returns the next tier up, or false at the terminal tier.
func successor(t Tier) (Tier, bool) {
	idx := int(t)
	if idx < 0 || idx >= len(ordered)-1 {
		return t, false
	}
	return ordered[idx+1], true
}

// All returns the tiers in ascending order.
func All() []Tier {
	out := make([]Tier, len(ordered))
	copy(out, ordered)
	return out
}
