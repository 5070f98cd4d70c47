package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(prometheus.NewRegistry()),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestRecordHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording scoring activity", func() {
			record := func() {
				RecordNoteScored("MINIMAL")
				RecordNoteScored("LIMITED")
				RecordScoringError()
				RecordScoringLatency(12.5)
				RecordValidationFailure()
				RecordScorerCacheHit()
				RecordScorerCacheMiss()
				UpdateScorerCacheSize(3)
				RecordCommunityPass(250)
			}

			Convey("Then the helpers never panic", func() {
				So(record, ShouldNotPanic)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the metrics HTTP handler", t, func() {
		Convey("Then it is non-nil and serves the custom registry", func() {
			So(Handler(), ShouldNotBeNil)
		})
	})
}
