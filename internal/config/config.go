// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error kinds.
package config

// Config contains the scoring engine's named configuration values.
// The thresholds here gate strategy selection and confidence levels;
// the algorithms themselves never hard-code them.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MinRatersPerNote gates standard vs provisional confidence and
	// per-note MF eligibility.
	MinRatersPerNote int `koanf:"min_raters_per_note"`

	// MinRatingsPerRater gates rater-level sufficiency.
	MinRatingsPerRater int `koanf:"min_ratings_per_rater"`

	// BayesianPriorMean is the prior score for the fallback scorer.
	BayesianPriorMean float64 `koanf:"bayesian_prior_mean"`

	// BayesianPriorWeight is the pseudo-rating weight of the prior.
	BayesianPriorWeight float64 `koanf:"bayesian_prior_weight"`

	// HelpfulnessValues overrides the level-to-number mapping used when
	// converting ratings, keyed by level name.
	HelpfulnessValues map[string]float64 `koanf:"helpfulness_values"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		MinRatersPerNote:    5,
		MinRatingsPerRater:  10,
		BayesianPriorMean:   0.5,
		BayesianPriorWeight: 10,
		HelpfulnessValues: map[string]float64{
			"HELPFUL":          1.0,
			"SOMEWHAT_HELPFUL": 0.5,
			"NOT_HELPFUL":      0.0,
		},
	}
}
