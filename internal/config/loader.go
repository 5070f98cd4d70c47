package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if OPENNOTES_CONFIG is set
//  3. env (prefix OPENNOTES_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("OPENNOTES_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: OPENNOTES_MIN_RATERS_PER_NOTE, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("OPENNOTES_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "opennotes_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects threshold combinations the engine cannot honor.
func (c *Config) validate() error {
	if c.MinRatersPerNote < 1 {
		return fmt.Errorf("%w: min_raters_per_note must be >= 1", ErrInvalidConfig)
	}
	if c.MinRatingsPerRater < 1 {
		return fmt.Errorf("%w: min_ratings_per_rater must be >= 1", ErrInvalidConfig)
	}
	if c.BayesianPriorMean < 0 || c.BayesianPriorMean > 1 {
		return fmt.Errorf("%w: bayesian_prior_mean must lie in [0, 1]", ErrInvalidConfig)
	}
	if c.BayesianPriorWeight <= 0 {
		return fmt.Errorf("%w: bayesian_prior_weight must be positive", ErrInvalidConfig)
	}
	return nil
}
