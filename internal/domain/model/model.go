// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// HelpfulnessLevel is a rater's judgment of a note.
type HelpfulnessLevel string

// Helpfulness levels submitted by raters.
const (
	Helpful         HelpfulnessLevel = "HELPFUL"
	SomewhatHelpful HelpfulnessLevel = "SOMEWHAT_HELPFUL"
	NotHelpful      HelpfulnessLevel = "NOT_HELPFUL"
)

// ValueMapping converts helpfulness levels to numeric rating values.
type ValueMapping map[HelpfulnessLevel]float64

// defaultValueMapping is the standard level-to-number mapping.
var defaultValueMapping = ValueMapping{
	Helpful:         1.0,
	SomewhatHelpful: 0.5,
	NotHelpful:      0.0,
}

// DefaultValueMapping returns a copy of the standard mapping.
func DefaultValueMapping() ValueMapping {
	m := make(ValueMapping, len(defaultValueMapping))
	for level, v := range defaultValueMapping {
		m[level] = v
	}
	return m
}

// NewValueMapping builds a mapping from level names, as carried by
// configuration. Empty input yields the default mapping.
func NewValueMapping(values map[string]float64) ValueMapping {
	if len(values) == 0 {
		return DefaultValueMapping()
	}
	m := make(ValueMapping, len(values))
	for name, v := range values {
		m[HelpfulnessLevel(name)] = v
	}
	return m
}

// Numeric returns the numeric value for the level. The second return is
// false for levels absent from the mapping.
func (m ValueMapping) Numeric(l HelpfulnessLevel) (float64, bool) {
	v, ok := m[l]
	return v, ok
}

// Numeric returns the numeric helpfulness value for the level under the
// standard mapping. The second return is false for unknown levels.
func (l HelpfulnessLevel) Numeric() (float64, bool) {
	return defaultValueMapping.Numeric(l)
}

// ConfidenceLevel reflects how much rating evidence backs a score.
type ConfidenceLevel string

// Confidence levels attached to score results.
const (
	ConfidenceNoData      ConfidenceLevel = "no_data"
	ConfidenceProvisional ConfidenceLevel = "provisional"
	ConfidenceStandard    ConfidenceLevel = "standard"
)

// Rating is a single rater's helpfulness judgment on a note.
// Ratings are immutable facts; the engine reads them, never mutates them.
type Rating struct {
	ID        uuid.UUID
	NoteID    uuid.UUID
	RaterID   uuid.UUID
	Level     HelpfulnessLevel
	CreatedAt time.Time
}

// Note is a crowd-authored annotation being scored. The engine only
// reads the id and the rating set; the note itself is owned elsewhere.
type Note struct {
	ID                uuid.UUID
	CommunityServerID uuid.UUID
	Ratings           []Rating
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RatingValues maps the note's ratings to their numeric helpfulness
// values under the standard mapping. Ratings with an unknown level are
// skipped.
func (n Note) RatingValues() []float64 {
	return n.RatingValuesUsing(defaultValueMapping)
}

// RatingValuesUsing maps the note's ratings through a custom value
// mapping. Ratings with a level absent from the mapping are skipped.
func (n Note) RatingValuesUsing(m ValueMapping) []float64 {
	values := make([]float64, 0, len(n.Ratings))
	for _, r := range n.Ratings {
		if v, ok := m.Numeric(r.Level); ok {
			values = append(values, v)
		}
	}
	return values
}

// LastTouched returns the most recent update to the note, falling back
// to the creation time if the note was never updated.
func (n Note) LastTouched() time.Time {
	if n.UpdatedAt.IsZero() {
		return n.CreatedAt
	}
	return n.UpdatedAt
}
