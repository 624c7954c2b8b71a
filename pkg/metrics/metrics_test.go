package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "podium")
				So(manager.subsystem, ShouldEqual, "analysis")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.customLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When passing empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "podium")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestManagerStages(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When observing a known stage", func() {
			err := manager.ObserveStage(StageLoad, 12)

			Convey("Then it should succeed", func() {
				So(err, ShouldBeNil)
				So(testutil.CollectAndCount(manager.stageDuration), ShouldEqual, 1)
			})
		})

		Convey("When observing an unknown stage", func() {
			err := manager.ObserveStage("bogus", 1)

			Convey("Then it should return ErrUnknownStage", func() {
				So(errors.Is(err, ErrUnknownStage), ShouldBeTrue)
			})
		})

		Convey("When marking a stage as failed", func() {
			So(manager.StageFailed(StageChart), ShouldBeNil)
			So(manager.StageFailed(StageChart), ShouldBeNil)

			Convey("Then the counter should reflect both failures", func() {
				So(testutil.ToFloat64(manager.stageErrors.WithLabelValues(StageChart)), ShouldEqual, 2)
			})
		})

		Convey("When setting dataset statistics", func() {
			manager.Dataset(100, 90, 10)

			Convey("Then the gauges should hold the values", func() {
				So(testutil.ToFloat64(manager.rowsRead), ShouldEqual, 100)
				So(testutil.ToFloat64(manager.recordsLoaded), ShouldEqual, 90)
				So(testutil.ToFloat64(manager.rowsDropped), ShouldEqual, 10)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		manager := NewManager(
			WithPrometheusRegistry(prometheus.NewRegistry()),
			WithMetricsEnabled(false),
		)

		Convey("When setting dataset statistics", func() {
			manager.Dataset(5, 4, 1)

			Convey("Then nothing should be recorded", func() {
				So(testutil.ToFloat64(manager.rowsRead), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then recording functions should not panic", func() {
			So(func() {
				RecordStageDuration(StageModel, 3)
				RecordStageDuration("ignored", 3)
				RecordStageError(StageLoad)
				UpdateDataset(10, 9, 1)
				UpdateCountries(3)
				UpdateModelAccuracy(0.75)
				UpdateChartBytes(2048)
				RecordPipelineRun()
				RecordHTTPRequest("summary", "GET", "200")
				RecordHTTPRequestDuration("summary", "GET", "200", 1.5)
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("rank", "GET", "not_found")
				RecordErrorLatency("http", "not_found", 0.2)
				RecordStoreQueryLatency(0.01)
				UpdateProcessMemory(1 << 20)
				UpdateGoroutines(4)
				RecordGCPause(0.3)
			}, ShouldNotPanic)
		})

		Convey("And the accuracy gauge should be readable from the registry", func() {
			UpdateModelAccuracy(0.5)
			So(testutil.ToFloat64(manager().modelAccuracy), ShouldEqual, 0.5)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global manager reconfigured with a namespace and labels", t, func() {
		Configure(WithNamespace("olympics"), WithCustomLabels(map[string]string{"instance": "test"}))
		Reset(func() { Configure() })

		Convey("When recording a value", func() {
			UpdateModelAccuracy(0.25)
			families, err := GetRegistry().Gather()

			Convey("Then it should be exported under the new namespace", func() {
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["olympics_analysis_model_accuracy_ratio"], ShouldBeTrue)
				So(names["podium_analysis_model_accuracy_ratio"], ShouldBeFalse)
				So(testutil.ToFloat64(manager().modelAccuracy), ShouldEqual, 0.25)
			})
		})
	})

	Convey("Given the global manager reconfigured as disabled", t, func() {
		Configure(WithMetricsEnabled(false))
		Reset(func() { Configure() })

		Convey("When recording values", func() {
			UpdateModelAccuracy(0.9)
			RecordHTTPRequest("summary", "GET", "200")

			Convey("Then nothing should be observed", func() {
				So(testutil.ToFloat64(manager().modelAccuracy), ShouldEqual, 0)
				So(testutil.CollectAndCount(manager().httpRequests), ShouldEqual, 0)
			})
		})
	})
}
