package identity_test

import (
	"testing"

	identity "github.com/seambreak/gully/internal/domain/identity"
	model "github.com/seambreak/gully/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given scorecard name variants", t, func() {
		Convey("Punctuated initials collapse to the same form", func() {
			So(identity.Normalize("M.S. Dhoni"), ShouldEqual, "msdhoni")
			So(identity.Normalize("MS Dhoni"), ShouldEqual, "msdhoni")
			So(identity.Normalize("m s dhoni"), ShouldEqual, "msdhoni")
		})

		Convey("Case and spacing are erased", func() {
			So(identity.Normalize("ROHIT  SHARMA"), ShouldEqual, "rohitsharma")
			So(identity.Normalize("rohit sharma"), ShouldEqual, "rohitsharma")
		})

		Convey("Apostrophes and hyphens are stripped", func() {
			So(identity.Normalize("K. O'Brien"), ShouldEqual, "kobrien")
			So(identity.Normalize("Jean-Paul Duminy"), ShouldEqual, "jeanpaulduminy")
		})

		Convey("Blank and punctuation-only names normalize to empty", func() {
			So(identity.Normalize(""), ShouldEqual, "")
			So(identity.Normalize("  "), ShouldEqual, "")
			So(identity.Normalize("..!!"), ShouldEqual, "")
		})
	})
}

func TestTokens(t *testing.T) {
	Convey("Given names to tokenize", t, func() {
		Convey("Words split on anything that is not a letter or digit", func() {
			So(identity.Tokens("R. Sharma"), ShouldResemble, []string{"r", "sharma"})
			So(identity.Tokens("Jean-Paul Duminy"), ShouldResemble, []string{"jean", "paul", "duminy"})
		})

		Convey("Empty input yields no tokens", func() {
			So(identity.Tokens("  . "), ShouldBeEmpty)
		})
	})
}

func TestLevenshteinSimilarity(t *testing.T) {
	Convey("Given the edit-distance ratio", t, func() {
		sim := identity.LevenshteinSimilarity{}

		Convey("Identical strings score one", func() {
			So(sim.Ratio("rohitsharma", "rohitsharma"), ShouldEqual, 1.0)
			So(sim.Ratio("", ""), ShouldEqual, 1.0)
		})

		Convey("One edit over five runes scores point eight", func() {
			So(sim.Ratio("smith", "smyth"), ShouldAlmostEqual, 0.8, 1e-9)
		})

		Convey("The ratio is symmetric", func() {
			So(sim.Ratio("patel", "patil"), ShouldAlmostEqual, sim.Ratio("patil", "patel"), 1e-9)
		})

		Convey("Disjoint strings score near zero", func() {
			So(sim.Ratio("abc", "xyz"), ShouldAlmostEqual, 0.0, 1e-9)
		})
	})
}

func TestFingerprint(t *testing.T) {
	Convey("Given records for the fingerprint", t, func() {
		base := model.PerformanceRecord{MatchID: "match-1", Club: "Northcote CC", Name: "R. Sharma"}

		Convey("Name variants fingerprint identically", func() {
			variant := base
			variant.Name = "r sharma"
			So(identity.Fingerprint(variant), ShouldEqual, identity.Fingerprint(base))
		})

		Convey("A different match changes the fingerprint", func() {
			other := base
			other.MatchID = "match-2"
			So(identity.Fingerprint(other), ShouldNotEqual, identity.Fingerprint(base))
		})

		Convey("A different club changes the fingerprint", func() {
			other := base
			other.Club = "Seddon CC"
			So(identity.Fingerprint(other), ShouldNotEqual, identity.Fingerprint(base))
		})
	})
}
