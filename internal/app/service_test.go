package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/classify"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
)

const samplePath = "../adapters/dataset/testdata/medals_sample.csv"

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func newSampleService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithLogger(logger.Nop()),
		service.WithDataPath(samplePath),
		service.WithMaxLeaderboardLimit(10),
	}
	return service.New(append(base, opts...)...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["target"], ShouldEqual, "gold")
			So(stats["topN"], ShouldEqual, 10)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithTopN(5),
			service.WithTarget("silver_or_better"),
			service.WithEncoding("utf-8"),
			service.WithTopN(-1),
		)

		Convey("Then valid options should apply and invalid ones be ignored", func() {
			stats := svc.GetStats()
			So(stats["topN"], ShouldEqual, 5)
			So(stats["target"], ShouldEqual, "silver_or_better")
			So(stats["encoding"], ShouldEqual, "utf-8")
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service pointed at the sample dataset", t, func() {
		svc := newSampleService()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should report load statistics", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["rawRows"], ShouldEqual, 14)
				So(stats["records"], ShouldEqual, 12)
				So(stats["dropped"], ShouldEqual, 2)
				So(stats["countries"], ShouldEqual, 6)
			})

			Convey("And starting again should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a service pointed at a missing file", t, func() {
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithDataPath("testdata/does-not-exist.csv"),
		)

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should fail and stay stopped", func() {
				So(err, ShouldNotBeNil)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newSampleService()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})

			Convey("And read methods should report it", func() {
				_, err := svc.Summary(ctx)
				So(err, ShouldEqual, service.ErrNotStarted)
			})

			Convey("And stopping twice should be safe", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}

func TestService_ReadModel(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newSampleService()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Summary should count every cleaned record", func() {
			sum, err := svc.Summary(ctx)
			So(err, ShouldBeNil)
			So(sum.TotalMedals, ShouldEqual, 12)
			So(sum.UniqueCountries, ShouldEqual, 6)
			So(sum.UniqueSports, ShouldEqual, 3)
			So(sum.Years.Start, ShouldEqual, 1976)
			So(sum.Years.End, ShouldEqual, 2008)
		})

		Convey("Countries should honour the limit", func() {
			all, err := svc.Countries(ctx, 0)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 6)
			So(all[0].Country, ShouldEqual, "United States")
			So(all[0].Gold, ShouldEqual, 4)

			top, err := svc.Countries(ctx, 2)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 2)
		})

		Convey("Athletes should lead with the most decorated athlete", func() {
			athletes, err := svc.Athletes(ctx, 1)
			So(err, ShouldBeNil)
			So(athletes, ShouldHaveLength, 1)
			So(athletes[0].Athlete, ShouldEqual, "LEWIS, Carl")
			So(athletes[0].Total, ShouldEqual, 3)
		})

		Convey("Yearly trends should sum to the total", func() {
			trends, err := svc.Trends(ctx)
			So(err, ShouldBeNil)
			sum := 0
			for _, tr := range trends {
				sum += tr.TotalMedals
			}
			So(sum, ShouldEqual, 12)
		})

		Convey("CountryTrend should match case-insensitively", func() {
			trend, err := svc.CountryTrend(ctx, "united states")
			So(err, ShouldBeNil)
			So(trend, ShouldHaveLength, 3)
			sum := 0
			for _, y := range trend {
				sum += y.Medals
			}
			So(sum, ShouldEqual, 5)

			unknown, err := svc.CountryTrend(ctx, "Atlantis")
			So(err, ShouldBeNil)
			So(unknown, ShouldBeEmpty)
		})

		Convey("Records should page through the table", func() {
			page, err := svc.Records(ctx, types.RecordQuery{Limit: 5, Offset: 10})
			So(err, ShouldBeNil)
			So(page.Total, ShouldEqual, 12)
			So(page.Offset, ShouldEqual, 10)
			So(page.Records, ShouldHaveLength, 2)

			past, err := svc.Records(ctx, types.RecordQuery{Limit: 5, Offset: 50})
			So(err, ShouldBeNil)
			So(past.Records, ShouldBeEmpty)
		})

		Convey("Records should filter before paging", func() {
			lewis, err := svc.Records(ctx, types.RecordQuery{Search: "lewis"})
			So(err, ShouldBeNil)
			So(lewis.Total, ShouldEqual, 3)

			usa84, err := svc.Records(ctx, types.RecordQuery{Year: 1984, Country: "united states"})
			So(err, ShouldBeNil)
			So(usa84.Total, ShouldEqual, 3)
			for _, r := range usa84.Records {
				So(r.Country, ShouldEqual, "United States")
				So(r.Year, ShouldEqual, 1984)
			}

			butterfly, err := svc.Records(ctx, types.RecordQuery{Search: "Butterfly", Sport: "aquatics", Limit: 2})
			So(err, ShouldBeNil)
			So(butterfly.Total, ShouldEqual, 3)
			So(butterfly.Records, ShouldHaveLength, 2)

			aquatics, err := svc.Records(ctx, types.RecordQuery{Sport: "Aquatics", Limit: 4, Offset: 4})
			So(err, ShouldBeNil)
			So(aquatics.Total, ShouldEqual, 6)
			So(aquatics.Records, ShouldHaveLength, 2)

			none, err := svc.Records(ctx, types.RecordQuery{Search: "curling"})
			So(err, ShouldBeNil)
			So(none.Total, ShouldEqual, 0)
			So(none.Records, ShouldBeEmpty)
		})

		Convey("Predict should resolve names and default the year", func() {
			p, err := svc.Predict(ctx, "united states", "ATHLETICS", "men", 0)
			So(err, ShouldBeNil)
			So(p.Country, ShouldEqual, "United States")
			So(p.Sport, ShouldEqual, "Athletics")
			So(p.Gender, ShouldEqual, model.Men)
			So(p.Year, ShouldEqual, 2008)
			So(p.Target, ShouldEqual, classify.TargetGold)
			So(p.Probability, ShouldBeBetween, 0, 1)

			p, err = svc.Predict(ctx, "Serbia", "Aquatics", "Men", 1992)
			So(err, ShouldBeNil)
			So(p.Year, ShouldEqual, 1992)
		})

		Convey("Predict should reject values the model never saw", func() {
			_, err := svc.Predict(ctx, "Atlantis", "Athletics", "Men", 0)
			So(errors.Is(err, classify.ErrUnknownLabel), ShouldBeTrue)
		})

		Convey("Insights should come in the fixed order", func() {
			ins, err := svc.Insights(ctx)
			So(err, ShouldBeNil)
			So(ins, ShouldHaveLength, 6)
			So(ins[0].Subject, ShouldEqual, "United States")
		})

		Convey("Standings should rank the leader first", func() {
			entries, err := svc.TopN(ctx, 3)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 3)
			So(entries[0].Country, ShouldEqual, "United States")
			So(entries[0].Rank, ShouldEqual, 1)

			entry, err := svc.Rank(ctx, "UNITED STATES")
			So(err, ShouldBeNil)
			So(entry.Rank, ShouldEqual, 1)
		})

		Convey("Unknown countries and oversized limits should surface store errors", func() {
			_, err := svc.Rank(ctx, "Atlantis")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, err = svc.TopN(ctx, 11)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}

func TestService_Model(t *testing.T) {
	Convey("Given a dataset where every medal is gold", t, func() {
		path := filepath.Join(t.TempDir(), "gold.csv")
		csv := "City,Year,Sport,Discipline,Event,Athlete,Gender,Country_Code,Country,Event_gender,Medal\n" +
			"Montreal,1976,Athletics,Athletics,100m,\"A, B\",Men,TRI,Trinidad and Tobago,M,Gold\n" +
			"Moscow,1980,Athletics,Athletics,100m,\"C, D\",Men,GBR,United Kingdom,M,Gold\n" +
			"Seoul,1988,Athletics,Athletics,100m,\"E, F\",Men,USA,United States,M,Gold\n"
		So(os.WriteFile(path, []byte(csv), 0o600), ShouldBeNil)

		svc := service.New(service.WithLogger(logger.Nop()), service.WithDataPath(path))
		defer svc.Stop()
		ctx := context.Background()

		Convey("Then the service should start without a model", func() {
			So(svc.Start(ctx), ShouldBeNil)

			_, err := svc.Predict(ctx, "United States", "Athletics", "Men", 0)
			So(errors.Is(err, classify.ErrSingleClass), ShouldBeTrue)
		})
	})

	Convey("Given an iteration cap too small to converge", t, func() {
		core, logs := observer.New(zapcore.WarnLevel)
		svc := newSampleService(
			service.WithLogger(logger.New(zap.New(core))),
			service.WithModelOptions(classify.WithMaxIterations(1)),
		)
		defer svc.Stop()

		Convey("Then starting should log the convergence warning", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(logs.FilterMessage("model did not converge").Len(), ShouldEqual, 1)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := newSampleService()

		Convey("Then Predict should report it", func() {
			_, err := svc.Predict(context.Background(), "United States", "Athletics", "Men", 0)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}
