package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := New()

		Convey("Then the documented defaults apply", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.MinRatersPerNote, ShouldEqual, 5)
			So(cfg.MinRatingsPerRater, ShouldEqual, 10)
			So(cfg.BayesianPriorMean, ShouldEqual, 0.5)
			So(cfg.BayesianPriorWeight, ShouldEqual, 10.0)
		})

		Convey("Then the helpfulness mapping carries the fixed values", func() {
			So(cfg.HelpfulnessValues["HELPFUL"], ShouldEqual, 1.0)
			So(cfg.HelpfulnessValues["SOMEWHAT_HELPFUL"], ShouldEqual, 0.5)
			So(cfg.HelpfulnessValues["NOT_HELPFUL"], ShouldEqual, 0.0)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given no file or env overrides", t, func() {
		os.Unsetenv("OPENNOTES_CONFIG")

		cfg, err := Load(context.Background())

		Convey("Then defaults load cleanly", func() {
			So(err, ShouldBeNil)
			So(cfg.MinRatersPerNote, ShouldEqual, 5)
		})
	})

	Convey("Given an env override", t, func() {
		os.Unsetenv("OPENNOTES_CONFIG")
		os.Setenv("OPENNOTES_MIN_RATERS_PER_NOTE", "7")
		defer os.Unsetenv("OPENNOTES_MIN_RATERS_PER_NOTE")

		cfg, err := Load(context.Background())

		Convey("Then the env value wins over the default", func() {
			So(err, ShouldBeNil)
			So(cfg.MinRatersPerNote, ShouldEqual, 7)
		})
	})

	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "opennotes.yaml")
		body := []byte("min_ratings_per_rater: 3\nlog_level: debug\n")
		So(os.WriteFile(path, body, 0o600), ShouldBeNil)
		os.Setenv("OPENNOTES_CONFIG", path)
		defer os.Unsetenv("OPENNOTES_CONFIG")

		cfg, err := Load(context.Background())

		Convey("Then file values override the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.MinRatingsPerRater, ShouldEqual, 3)
			So(cfg.LogLevel, ShouldEqual, "debug")
		})
	})

	Convey("Given an invalid threshold", t, func() {
		os.Unsetenv("OPENNOTES_CONFIG")
		os.Setenv("OPENNOTES_MIN_RATERS_PER_NOTE", "0")
		defer os.Unsetenv("OPENNOTES_MIN_RATERS_PER_NOTE")

		_, err := Load(context.Background())

		Convey("Then loading fails fast with the invalid-config kind", func() {
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given a missing config file path", t, func() {
		os.Setenv("OPENNOTES_CONFIG", "/nonexistent/opennotes.yaml")
		defer os.Unsetenv("OPENNOTES_CONFIG")

		_, err := Load(context.Background())

		Convey("Then loading fails with the load-config kind", func() {
			So(errors.Is(err, ErrLoadConfig), ShouldBeTrue)
		})
	})
}
