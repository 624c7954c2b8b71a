package service_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/adapters/report"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/pkg/logger"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service configured for a small chart", t, func() {
		chartPath := filepath.Join(t.TempDir(), "analysis.png")
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithDataPath(samplePath),
			service.WithChartPath(chartPath),
			service.WithChartSize(12, 8),
			service.WithChartDPI(30),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When running the full analysis", func() {
			var out bytes.Buffer
			err := svc.Analyze(ctx, &out, report.WithColor(false))

			Convey("Then it should succeed", func() {
				So(err, ShouldBeNil)
			})

			Convey("And the chart image should exist and be non-empty", func() {
				info, statErr := os.Stat(chartPath)
				So(statErr, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})

			Convey("And the report should cover every stage", func() {
				text := out.String()
				So(text, ShouldContainSubstring, "OLYMPICS DATA ANALYSIS")
				So(text, ShouldContainSubstring, "Dataset shape: (14, 11)")
				So(text, ShouldContainSubstring, "MEDALS BY YEAR")
				So(text, ShouldContainSubstring, chartPath)
				So(text, ShouldContainSubstring, "MACHINE LEARNING ANALYSIS")
				So(text, ShouldContainSubstring, "KEY INSIGHTS FROM OLYMPICS DATA ANALYSIS")
				So(text, ShouldContainSubstring, "TOP PERFORMING COUNTRY: United States with 5 medals")
				So(text, ShouldContainSubstring, "ANALYSIS COMPLETE!")
			})

			Convey("And the service should be started for reads", func() {
				sum, err := svc.Summary(ctx)
				So(err, ShouldBeNil)
				So(sum.TotalMedals, ShouldEqual, 12)
			})
		})
	})

	Convey("Given a chart path in a missing directory", t, func() {
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithDataPath(samplePath),
			service.WithChartPath(filepath.Join(t.TempDir(), "missing", "analysis.png")),
			service.WithChartSize(12, 8),
			service.WithChartDPI(30),
		)
		defer svc.Stop()

		Convey("When running the analysis", func() {
			err := svc.Analyze(context.Background(), &bytes.Buffer{})

			Convey("Then the chart stage error should surface", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "render charts")
			})
		})
	})
}
