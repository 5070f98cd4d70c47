package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/opennotes-ai/opennotes-sub012/internal/adapters/mf"
	"github.com/opennotes-ai/opennotes-sub012/internal/app"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/model"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/scoring"
	"github.com/opennotes-ai/opennotes-sub012/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

// nopEngine satisfies mf.Engine for factory wiring tests.
type nopEngine struct{}

func (nopEngine) Run(_ context.Context, _ mf.Input) (mf.Output, error) {
	return mf.Output{HelpfulScores: map[string]float64{}}, nil
}

func TestFactoryTierSelection(t *testing.T) {
	Convey("Given a factory with the default registry", t, func() {
		f := app.NewFactory(app.WithEngine(nopEngine{}))
		ctx := context.Background()

		Convey("When the community is at the minimal tier", func() {
			s, err := f.GetScorer(ctx, "community-a", 10)

			Convey("Then the Bayesian fallback is constructed", func() {
				So(err, ShouldBeNil)
				_, ok := s.(*scoring.Bayesian)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the community is above the minimal tier", func() {
			s, err := f.GetScorer(ctx, "community-a", 250)

			Convey("Then the MF adapter is constructed", func() {
				So(err, ShouldBeNil)
				_, ok := s.(*mf.Adapter)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a tier override is supplied", func() {
			s, err := f.GetScorer(ctx, "community-a", 10, app.WithTierOverride(tier.Full))

			Convey("Then the override wins over the note-count tier", func() {
				So(err, ShouldBeNil)
				_, ok := s.(*mf.Adapter)
				So(ok, ShouldBeTrue)

				info := f.CacheInfo()
				So(info.Size, ShouldEqual, 1)
				So(info.Keys[0].CommunityServerID, ShouldEqual, "community-a")
				So(info.Keys[0].Tier, ShouldEqual, tier.Full)
			})
		})

		Convey("When the override is an invalid tier value", func() {
			_, err := f.GetScorer(ctx, "community-a", 10, app.WithTierOverride(tier.Tier(99)))

			Convey("Then it fails fast", func() {
				So(errors.Is(err, tier.ErrUnknownTier), ShouldBeTrue)
			})
		})
	})
}

func TestFactoryBayesianPrior(t *testing.T) {
	Convey("Given a factory configured with a custom smoothing prior", t, func() {
		f := app.NewFactory(
			app.WithEngine(nopEngine{}),
			app.WithBayesianPrior(0.9, 2),
		)
		ctx := context.Background()

		Convey("When the minimal-tier scorer scores a note with zero ratings", func() {
			s, err := f.GetScorer(ctx, "community-a", 10)
			So(err, ShouldBeNil)

			result, err := s.ScoreNote(ctx, "note-1", nil)

			Convey("Then the configured prior reaches the scorer", func() {
				So(err, ShouldBeNil)
				So(result.Score, ShouldEqual, 0.9)
				So(result.Confidence, ShouldEqual, model.ConfidenceNoData)
				So(result.Metadata["prior_weight"], ShouldEqual, 2.0)
			})
		})
	})
}

func TestFactoryCache(t *testing.T) {
	Convey("Given a factory", t, func() {
		f := app.NewFactory(app.WithEngine(nopEngine{}))
		ctx := context.Background()

		Convey("When requesting the same community and note count twice", func() {
			first, err1 := f.GetScorer(ctx, "community-a", 10)
			second, err2 := f.GetScorer(ctx, "community-a", 10)

			Convey("Then the same scorer instance is returned", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldEqual, second)
			})
		})

		Convey("When two communities share a tier", func() {
			a, _ := f.GetScorer(ctx, "community-a", 10)
			b, _ := f.GetScorer(ctx, "community-b", 10)

			Convey("Then each community gets its own cache entry", func() {
				So(a, ShouldNotEqual, b)
				So(f.CacheInfo().Size, ShouldEqual, 2)
			})
		})

		Convey("When invalidating one community", func() {
			_, _ = f.GetScorer(ctx, "community-a", 10)
			_, _ = f.GetScorer(ctx, "community-a", 250)
			b, _ := f.GetScorer(ctx, "community-b", 10)

			removed := f.InvalidateCommunity("community-a")

			Convey("Then only that community's entries are dropped", func() {
				So(removed, ShouldEqual, 2)
				info := f.CacheInfo()
				So(info.Size, ShouldEqual, 1)
				So(info.Keys[0].CommunityServerID, ShouldEqual, "community-b")
			})

			Convey("Then the other community still hits cache", func() {
				again, err := f.GetScorer(ctx, "community-b", 10)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, b)
			})
		})

		Convey("When clearing the cache", func() {
			_, _ = f.GetScorer(ctx, "community-a", 10)
			_, _ = f.GetScorer(ctx, "community-b", 250)
			f.ClearCache()

			Convey("Then the cache is empty", func() {
				So(f.CacheInfo().Size, ShouldEqual, 0)
				So(f.CacheInfo().Keys, ShouldBeEmpty)
			})
		})
	})
}

func TestFactoryRegister(t *testing.T) {
	Convey("Given a factory", t, func() {
		f := app.NewFactory(app.WithEngine(nopEngine{}))
		ctx := context.Background()

		Convey("When replacing a tier's constructor", func() {
			custom := scoring.NewBayesian(scoring.WithPriorMean(0.9))
			err := f.Register(tier.Limited, func(_ string, _ tier.Tier) scoring.Scorer {
				return custom
			})

			Convey("Then the substituted scorer is served for that tier", func() {
				So(err, ShouldBeNil)
				s, err := f.GetScorer(ctx, "community-a", 250)
				So(err, ShouldBeNil)
				So(s, ShouldEqual, custom)
			})
		})

		Convey("When registering for an invalid tier", func() {
			err := f.Register(tier.Tier(99), func(_ string, _ tier.Tier) scoring.Scorer {
				return scoring.NewBayesian()
			})

			Convey("Then it fails fast", func() {
				So(errors.Is(err, tier.ErrUnknownTier), ShouldBeTrue)
			})
		})

		Convey("When registering a nil constructor", func() {
			err := f.Register(tier.Limited, nil)

			Convey("Then it is rejected as an unknown strategy", func() {
				So(errors.Is(err, app.ErrUnknownStrategy), ShouldBeTrue)
			})
		})
	})
}
