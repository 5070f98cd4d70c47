package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/opennotes-ai/opennotes-sub012/internal/adapters/mf"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/scoring"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/tier"
	"github.com/opennotes-ai/opennotes-sub012/pkg/metrics"
)

// Constructor builds a scorer for one (community, tier) cache entry.
// The registry of constructors is the extension seam: a different heavy
// scorer can be substituted per tier without touching tier logic.
type Constructor func(communityServerID string, t tier.Tier) scoring.Scorer

// CacheKey identifies one cached scorer.
type CacheKey struct {
	CommunityServerID string
	Tier              tier.Tier
}

// CacheInfo reports cache contents for observability.
type CacheInfo struct {
	Size int
	Keys []CacheKey
}

// FactoryOption applies a configuration option to the Factory.
type FactoryOption func(*Factory)

// WithEngine sets the external matrix-factorization engine used for
// every tier above Minimal.
func WithEngine(engine mf.Engine) FactoryOption {
	return func(f *Factory) {
		f.engine = engine
	}
}

// WithMinRaters sets the rating count gating standard confidence for
// scorers the factory constructs.
func WithMinRaters(n int) FactoryOption {
	return func(f *Factory) {
		if n > 0 {
			f.minRaters = n
		}
	}
}

// WithBayesianPrior sets the smoothing prior for the fallback scorers
// the factory constructs. Out-of-range values are ignored by the scorer
// and its documented defaults apply.
func WithBayesianPrior(mean, weight float64) FactoryOption {
	return func(f *Factory) {
		f.bayesianOpts = append(f.bayesianOpts,
			scoring.WithPriorMean(mean),
			scoring.WithPriorWeight(weight),
		)
	}
}

// GetScorerOption adjusts a single GetScorer call.
type GetScorerOption func(*getScorerConfig)

type getScorerConfig struct {
	override *tier.Tier
}

// WithTierOverride bypasses note-count-derived tier resolution. The
// override always wins; it exists for testing and operational use.
func WithTierOverride(t tier.Tier) GetScorerOption {
	return func(c *getScorerConfig) {
		c.override = &t
	}
}

// Factory maps (community, tier) to a ready-to-use scorer and caches
// the result so expensive scorer objects are not rebuilt per call.
//
// The cache is an explicit, mutex-guarded map constructed once per
// process and passed by reference; lookups are exactly-once under the
// lock. Scorer instances are stateless and interchangeable, so even a
// duplicate construction would be harmless — the guarantee callers may
// rely on is "at-least-once-correct", not instance identity across
// invalidations.
type Factory struct {
	mu           sync.Mutex
	cache        map[CacheKey]scoring.Scorer
	registry     map[tier.Tier]Constructor
	engine       mf.Engine
	minRaters    int
	bayesianOpts []scoring.BayesianOption
}

// NewFactory creates a Factory with the default per-tier strategy
// registry: Bayesian fallback for Minimal, the matrix-factorization
// adapter for every other tier.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		cache:     make(map[CacheKey]scoring.Scorer),
		minRaters: scoring.DefaultMinRatersPerNote,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.registry = make(map[tier.Tier]Constructor, len(tier.All()))
	for _, t := range tier.All() {
		if t == tier.Minimal {
			f.registry[t] = func(_ string, _ tier.Tier) scoring.Scorer {
				opts := append([]scoring.BayesianOption{scoring.WithMinRaters(f.minRaters)}, f.bayesianOpts...)
				return scoring.NewBayesian(opts...)
			}
			continue
		}
		f.registry[t] = func(_ string, _ tier.Tier) scoring.Scorer {
			return mf.NewAdapter(f.engine, mf.WithMinRaters(f.minRaters))
		}
	}

	return f
}

// Register replaces the constructor for a tier. It fails fast on tiers
// outside the defined enum range; that is a configuration error.
func (f *Factory) Register(t tier.Tier, c Constructor) error {
	if _, err := tier.ConfigFor(t); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("%w: nil constructor for tier %s", ErrUnknownStrategy, t)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[t] = c
	return nil
}

// GetScorer resolves the tier from the note count (unless overridden)
// and returns the cached scorer for (community, tier), constructing and
// caching one on miss.
func (f *Factory) GetScorer(ctx context.Context, communityServerID string, noteCount int, opts ...GetScorerOption) (scoring.Scorer, error) {
	cfg := getScorerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := tier.ForNoteCount(noteCount)
	if cfg.override != nil {
		t = *cfg.override
		if _, err := tier.ConfigFor(t); err != nil {
			return nil, err
		}
	}

	key := CacheKey{CommunityServerID: communityServerID, Tier: t}

	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.cache[key]; ok {
		metrics.RecordScorerCacheHit()
		return s, nil
	}

	construct, ok := f.registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: no scorer registered for tier %s", ErrUnknownStrategy, t)
	}

	s := construct(communityServerID, t)
	f.cache[key] = s
	metrics.RecordScorerCacheMiss()
	metrics.UpdateScorerCacheSize(len(f.cache))
	return s, nil
}

// ClearCache drops every cached scorer.
func (f *Factory) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[CacheKey]scoring.Scorer)
	metrics.UpdateScorerCacheSize(0)
}

// InvalidateCommunity drops only the entries for one community and
// returns how many were removed. Other communities' entries are
// untouched.
func (f *Factory) InvalidateCommunity(communityServerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	removed := 0
	for key := range f.cache {
		if key.CommunityServerID == communityServerID {
			delete(f.cache, key)
			removed++
		}
	}
	metrics.UpdateScorerCacheSize(len(f.cache))
	return removed
}

// CacheInfo returns the cache size and cached keys, sorted for stable
// output.
func (f *Factory) CacheInfo() CacheInfo {
	f.mu.Lock()
	defer f.mu.Unlock()

	info := CacheInfo{
		Size: len(f.cache),
		Keys: make([]CacheKey, 0, len(f.cache)),
	}
	for key := range f.cache {
		info.Keys = append(info.Keys, key)
	}
	sort.Slice(info.Keys, func(i, j int) bool {
		if info.Keys[i].CommunityServerID != info.Keys[j].CommunityServerID {
			return info.Keys[i].CommunityServerID < info.Keys[j].CommunityServerID
		}
		return info.Keys[i].Tier < info.Keys[j].Tier
	})
	return info
}
