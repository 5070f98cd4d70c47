package tier_test

import (
	"strings"
	"testing"

	"github.com/opennotes-ai/opennotes-sub012/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func TestForNoteCount(t *testing.T) {
	Convey("Given the tier thresholds", t, func() {
		Convey("When resolving representative note counts", func() {
			So(tier.ForNoteCount(0), ShouldEqual, tier.Minimal)
			So(tier.ForNoteCount(49), ShouldEqual, tier.Minimal)
			So(tier.ForNoteCount(50), ShouldEqual, tier.Limited)
			So(tier.ForNoteCount(250), ShouldEqual, tier.Limited)
			So(tier.ForNoteCount(499), ShouldEqual, tier.Limited)
			So(tier.ForNoteCount(500), ShouldEqual, tier.Basic)
			So(tier.ForNoteCount(2000), ShouldEqual, tier.Intermediate)
			So(tier.ForNoteCount(10000), ShouldEqual, tier.Advanced)
			So(tier.ForNoteCount(50000), ShouldEqual, tier.Full)
			So(tier.ForNoteCount(5_000_000), ShouldEqual, tier.Full)
		})

		Convey("When the count is negative", func() {
			So(tier.ForNoteCount(-1), ShouldEqual, tier.Minimal)
		})

		Convey("Then tier level is monotone in note count", func() {
			counts := []int{0, 1, 49, 50, 51, 199, 200, 499, 500, 1999, 2000, 9999, 10000, 49999, 50000, 100000}
			prev := tier.ForNoteCount(counts[0])
			for _, c := range counts[1:] {
				cur := tier.ForNoteCount(c)
				So(cur.Level(), ShouldBeGreaterThanOrEqualTo, prev.Level())
				prev = cur
			}
		})
	})
}

func TestTierCoverage(t *testing.T) {
	Convey("Given all tier configs", t, func() {
		tiers := tier.All()

		Convey("Then bands are contiguous with no gaps or overlaps", func() {
			So(tiers[0], ShouldEqual, tier.Minimal)
			cfgFirst, err := tier.ConfigFor(tiers[0])
			So(err, ShouldBeNil)
			So(cfgFirst.MinNotes, ShouldEqual, 0)

			for i := 0; i < len(tiers)-1; i++ {
				cur, err := tier.ConfigFor(tiers[i])
				So(err, ShouldBeNil)
				next, err := tier.ConfigFor(tiers[i+1])
				So(err, ShouldBeNil)
				So(cur.MaxNotes, ShouldNotBeNil)
				So(*cur.MaxNotes, ShouldEqual, next.MinNotes)
			}
		})

		Convey("Then only the terminal tier is unbounded", func() {
			for i, tr := range tiers {
				cfg, err := tier.ConfigFor(tr)
				So(err, ShouldBeNil)
				if i == len(tiers)-1 {
					So(cfg.MaxNotes, ShouldBeNil)
				} else {
					So(cfg.MaxNotes, ShouldNotBeNil)
				}
			}
		})

		Convey("Then every tier names its scorer components", func() {
			for _, tr := range tiers {
				cfg, err := tier.ConfigFor(tr)
				So(err, ShouldBeNil)
				So(len(cfg.ScorerComponents), ShouldBeGreaterThan, 0)
				So(cfg.Description, ShouldNotBeEmpty)
			}
		})
	})
}

func TestConfigFor(t *testing.T) {
	Convey("Given an out-of-range tier value", t, func() {
		_, err := tier.ConfigFor(tier.Tier(42))

		Convey("Then it fails fast with the sentinel error", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown scoring tier")
		})
	})
}

func TestWarnings(t *testing.T) {
	Convey("Given a confidence-warning tier below the MF threshold", t, func() {
		warnings := tier.Warnings(100, tier.Limited)

		Convey("Then both limited-data warnings appear", func() {
			So(joined(warnings), ShouldContainSubstring, "Limited data confidence")
			So(joined(warnings), ShouldContainSubstring, "at least 200 notes")
		})
	})

	Convey("Given a confidence-warning tier above the MF threshold", t, func() {
		warnings := tier.Warnings(250, tier.Limited)

		Convey("Then only the limited-data warning appears", func() {
			So(joined(warnings), ShouldContainSubstring, "Limited data confidence")
			So(joined(warnings), ShouldNotContainSubstring, "at least 200 notes")
		})
	})

	Convey("Given a note count within 5% of the tier ceiling", t, func() {
		// Limited ends at 500; 475 = 500 * 0.95.
		warnings := tier.Warnings(475, tier.Limited)

		Convey("Then the approaching warning names the successor tier", func() {
			So(joined(warnings), ShouldContainSubstring, "Approaching next tier")
			So(joined(warnings), ShouldContainSubstring, "Basic")
		})
	})

	Convey("Given the terminal tier with a large note count", t, func() {
		warnings := tier.Warnings(1_000_000, tier.Full)

		Convey("Then the at-maximum warning appears and no approaching warning", func() {
			So(joined(warnings), ShouldContainSubstring, "At maximum tier")
			So(joined(warnings), ShouldContainSubstring, "Full")
			So(joined(warnings), ShouldNotContainSubstring, "Approaching next tier")
		})
	})

	Convey("Given a mid-band count in a quiet tier", t, func() {
		warnings := tier.Warnings(1000, tier.Basic)

		Convey("Then no warnings are produced", func() {
			So(warnings, ShouldBeEmpty)
		})
	})
}

func joined(warnings []string) string {
	return strings.Join(warnings, " | ")
}
