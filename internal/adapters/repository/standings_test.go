package repository

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/domain/aggregate"
)

func row(country string, gold, silver, bronze int) aggregate.CountryStats {
	return aggregate.CountryStats{
		Country: country,
		MedalTally: aggregate.MedalTally{
			Gold: gold, Silver: silver, Bronze: bronze, Total: gold + silver + bronze,
		},
	}
}

func TestStandingsStore(t *testing.T) {
	Convey("Given an empty standings store", t, func() {
		ctx := context.Background()
		store := NewStandingsStore(WithMaxLimit(5))

		Convey("Then it should hold no countries", func() {
			So(store.Count(ctx), ShouldEqual, 0)
			top, err := store.TopN(ctx, 3)
			So(err, ShouldBeNil)
			So(top, ShouldBeEmpty)
			_, err = store.Rank(ctx, "Kenya")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When a country table is published", func() {
			err := store.Replace(ctx, []aggregate.CountryStats{
				row("Serbia", 0, 1, 0),
				row("United States", 4, 1, 0),
				row("Soviet Union", 0, 0, 2),
				row("East Germany", 1, 1, 0),
				row("United Kingdom", 1, 0, 0),
				row("Trinidad and Tobago", 1, 0, 0),
			})
			So(err, ShouldBeNil)

			Convey("Then TopN should follow total, gold, silver then name", func() {
				top, err := store.TopN(ctx, 5)
				So(err, ShouldBeNil)
				names := []string{}
				for _, e := range top {
					names = append(names, e.Country)
				}
				So(names, ShouldResemble, []string{
					"United States", "East Germany", "Soviet Union", "Trinidad and Tobago", "United Kingdom",
				})
				So(top[0].Rank, ShouldEqual, 1)
			})

			Convey("Then identical medal counts should share a rank", func() {
				tt, err := store.Rank(ctx, "Trinidad and Tobago")
				So(err, ShouldBeNil)
				uk, err := store.Rank(ctx, "united kingdom")
				So(err, ShouldBeNil)
				So(tt.Rank, ShouldEqual, 4)
				So(uk.Rank, ShouldEqual, 4)
				serbia, _ := store.Rank(ctx, "Serbia")
				So(serbia.Rank, ShouldEqual, 5)
			})

			Convey("Then limits should be validated", func() {
				_, err := store.TopN(ctx, 0)
				So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
				_, err = store.TopN(ctx, 6)
				So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 6)
			})

			Convey("Then returned slices should not alias the snapshot", func() {
				top, _ := store.TopN(ctx, 1)
				top[0].Country = "changed"
				again, _ := store.TopN(ctx, 1)
				So(again[0].Country, ShouldEqual, "United States")
			})

			Convey("And the table is replaced", func() {
				So(store.Replace(ctx, []aggregate.CountryStats{row("Kenya", 2, 0, 0)}), ShouldBeNil)

				Convey("Then readers should see the new snapshot", func() {
					So(store.Count(ctx), ShouldEqual, 1)
					_, err := store.Rank(ctx, "Serbia")
					So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				})
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then Replace should refuse to publish", func() {
				So(store.Replace(cctx, []aggregate.CountryStats{row("Kenya", 1, 0, 0)}), ShouldNotBeNil)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})
	})
}
