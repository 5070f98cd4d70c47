// Package table builds the canonical columnar rating table consumed by
// scorers. The column set is fixed so downstream consumers can group
// and filter without special-casing missing columns.
package table

import (
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/model"
)

// Fixed column values for fields the simplified rating model does not
// track. They keep the table shape compatible with the external
// matrix-factorization engine's expected schema.
const (
	RatingSourceDefault = "DEFAULT"
)

// HelpfulTags is the fixed vocabulary of helpful rating tags.
var HelpfulTags = []string{
	"helpfulOther",
	"helpfulInformative",
	"helpfulClear",
	"helpfulEmpathetic",
	"helpfulGoodSources",
	"helpfulUniqueContext",
	"helpfulAddressesClaim",
	"helpfulImportantContext",
	"helpfulUnbiasedLanguage",
}

// NotHelpfulTags is the fixed vocabulary of not-helpful rating tags.
var NotHelpfulTags = []string{
	"notHelpfulOther",
	"notHelpfulIncorrect",
	"notHelpfulSourcesMissingOrUnreliable",
	"notHelpfulOpinionSpeculationOrBias",
	"notHelpfulMissingKeyPoints",
	"notHelpfulOutdated",
	"notHelpfulHardToUnderstand",
	"notHelpfulArgumentativeOrBiased",
	"notHelpfulOffTopic",
	"notHelpfulSpamHarassmentOrAbuse",
	"notHelpfulIrrelevantSources",
	"notHelpfulNoteNotNeeded",
	"notHelpfulOpinionSpeculation",
}

// Ratings is a struct-of-arrays rating table: one row per rating, all
// columns the same length. The simplified rating entity does not
// capture per-tag detail, high-volume or correlated-rater signals, so
// those columns are populated with defaults.
type Ratings struct {
	NoteID               []string
	RaterParticipantID   []string
	CreatedAtMillis      []int64
	HelpfulNum           []float64
	HelpfulnessLevel     []string
	RatingSourceBucketed []string
	HighVolumeRater      []int
	CorrelatedRater      []int

	// Tags holds one zero-filled column per tag in the fixed
	// vocabulary, keyed by tag name.
	Tags map[string][]int
}

// BuildOption adjusts how the table is built.
type BuildOption func(*buildConfig)

type buildConfig struct {
	values model.ValueMapping
}

// WithValueMapping overrides the level-to-number mapping applied to the
// helpfulNum column. Empty mappings are ignored.
func WithValueMapping(m model.ValueMapping) BuildOption {
	return func(c *buildConfig) {
		if len(m) > 0 {
			c.values = m
		}
	}
}

// Build converts raw rating records into the canonical table shape.
// Empty input yields an empty table with the full column set present.
// UUID identifiers are rendered as their string form.
func Build(ratings []model.Rating, opts ...BuildOption) *Ratings {
	cfg := buildConfig{values: model.DefaultValueMapping()}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(ratings)
	t := &Ratings{
		NoteID:               make([]string, 0, n),
		RaterParticipantID:   make([]string, 0, n),
		CreatedAtMillis:      make([]int64, 0, n),
		HelpfulNum:           make([]float64, 0, n),
		HelpfulnessLevel:     make([]string, 0, n),
		RatingSourceBucketed: make([]string, 0, n),
		HighVolumeRater:      make([]int, 0, n),
		CorrelatedRater:      make([]int, 0, n),
		Tags:                 make(map[string][]int, len(HelpfulTags)+len(NotHelpfulTags)),
	}
	for _, tag := range HelpfulTags {
		t.Tags[tag] = make([]int, n)
	}
	for _, tag := range NotHelpfulTags {
		t.Tags[tag] = make([]int, n)
	}

	for _, r := range ratings {
		value, _ := cfg.values.Numeric(r.Level)
		t.NoteID = append(t.NoteID, r.NoteID.String())
		t.RaterParticipantID = append(t.RaterParticipantID, r.RaterID.String())
		t.CreatedAtMillis = append(t.CreatedAtMillis, r.CreatedAt.UnixMilli())
		t.HelpfulNum = append(t.HelpfulNum, value)
		t.HelpfulnessLevel = append(t.HelpfulnessLevel, string(r.Level))
		t.RatingSourceBucketed = append(t.RatingSourceBucketed, RatingSourceDefault)
		t.HighVolumeRater = append(t.HighVolumeRater, 0)
		t.CorrelatedRater = append(t.CorrelatedRater, 0)
	}

	return t
}

// Len returns the number of rows in the table.
func (t *Ratings) Len() int {
	return len(t.NoteID)
}

// GroupByNote returns the number of rows per note id.
func (t *Ratings) GroupByNote() map[string]int {
	groups := make(map[string]int)
	for _, id := range t.NoteID {
		groups[id]++
	}
	return groups
}

// GroupByRater returns the number of rows per rater participant id.
func (t *Ratings) GroupByRater() map[string]int {
	groups := make(map[string]int)
	for _, id := range t.RaterParticipantID {
		groups[id]++
	}
	return groups
}

// Columns lists the full column set, scalar columns first, then the
// tag columns in vocabulary order.
func (t *Ratings) Columns() []string {
	cols := []string{
		"noteId",
		"raterParticipantId",
		"createdAtMillis",
		"helpfulNum",
		"helpfulnessLevel",
		"ratingSourceBucketed",
		"highVolumeRater",
		"correlatedRater",
	}
	cols = append(cols, HelpfulTags...)
	cols = append(cols, NotHelpfulTags...)
	return cols
}
