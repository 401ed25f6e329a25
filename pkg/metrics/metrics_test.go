package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			registryOpt := WithPrometheusRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording fold pipeline metrics", func() {
			Convey("Then it should record processed performances", func() {
				So(func() {
					RecordPerformanceProcessed()
					RecordPerformanceProcessed()
					RecordPerformanceProcessed()
				}, ShouldNotPanic)
			})

			Convey("And it should record duplicate performances", func() {
				So(func() {
					RecordPerformanceDuplicate()
					RecordPerformanceDuplicate()
				}, ShouldNotPanic)
			})

			Convey("And it should record scoring latency", func() {
				So(func() {
					RecordScoringLatency(0.05)
					RecordScoringLatency(0.2)
					RecordScoringLatency(1.5)
				}, ShouldNotPanic)
			})

			Convey("And it should record dedupe hits and malformed records", func() {
				So(func() {
					RecordDedupeHit()
					RecordMalformedRecord()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording identity metrics", func() {
			Convey("Then it should record resolutions by method", func() {
				So(func() {
					RecordResolution("exact")
					RecordResolution("fuzzy")
					RecordResolution("minted")
				}, ShouldNotPanic)
			})

			Convey("And it should record provenance promotions", func() {
				So(func() {
					RecordPromotion()
					RecordPromotion()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording store metrics", func() {
			Convey("Then it should update player totals", func() {
				So(func() {
					UpdateTotalPlayers(100)
					UpdateTotalPlayers(250)
				}, ShouldNotPanic)
			})

			Convey("And it should record applied folds", func() {
				So(func() {
					RecordFoldApplied()
					RecordFoldApplied()
				}, ShouldNotPanic)
			})

			Convey("And it should record store latencies", func() {
				So(func() {
					RecordStoreUpdateLatency(0.5)
					RecordStoreQueryLatency(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording handicap metrics", func() {
			Convey("Then it should record multiplier shifts", func() {
				So(func() {
					RecordMultiplierShift(0.0)
					RecordMultiplierShift(0.07)
					RecordMultiplierShift(1.5)
				}, ShouldNotPanic)
			})

			Convey("And it should record pass duration and timestamp", func() {
				So(func() {
					RecordHandicapPass(12.0)
					UpdateHandicapLastUnix(1_700_000_000)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should update queue gauges", func() {
				So(func() {
					UpdateQueueCapacity(10000)
					UpdateQueueSize(1000)
					UpdateQueueUtilization(0.1)
				}, ShouldNotPanic)
			})

			Convey("And it should record queue counters", func() {
				So(func() {
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
				}, ShouldNotPanic)
			})

			Convey("And it should record enqueue latency", func() {
				So(func() {
					RecordQueueEnqueueLatency(0.01)
					RecordQueueEnqueueLatency(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording worker metrics", func() {
			Convey("Then it should update worker gauges", func() {
				So(func() {
					UpdateWorkerActiveCount(4)
					UpdateWorkerFoldsPerSecond(1200.5)
				}, ShouldNotPanic)
			})

			Convey("And it should record worker latency and errors", func() {
				So(func() {
					RecordWorkerProcessingLatency(0.4)
					RecordWorkerError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording errors by component", func() {
			So(func() {
				RecordErrorByComponent("queue", "full")
				RecordErrorByComponent("worker", "fold_error")
				RecordErrorByComponent("store", "unknown_player")
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording metrics with edge values", func() {
			Convey("And using zero values", func() {
				So(func() {
					UpdateQueueSize(0)
					UpdateTotalPlayers(0)
					UpdateWorkerActiveCount(0)
					RecordScoringLatency(0.0)
					RecordMultiplierShift(0.0)
				}, ShouldNotPanic)
			})

			Convey("And using negative values", func() {
				So(func() {
					UpdateQueueSize(-100)
					UpdateTotalPlayers(-10)
					UpdateWorkerFoldsPerSecond(-1.0)
				}, ShouldNotPanic)
			})

			Convey("And using very large values", func() {
				So(func() {
					UpdateQueueSize(1000000)
					UpdateTotalPlayers(10000000)
					RecordScoringLatency(10000.0)
					RecordHandicapPass(30000.0)
				}, ShouldNotPanic)
			})

			Convey("And using empty strings in labels", func() {
				So(func() {
					RecordResolution("")
					RecordErrorByComponent("", "")
				}, ShouldNotPanic)
			})

			Convey("And using special characters in labels", func() {
				So(func() {
					RecordErrorByComponent("component-with-dash", "error_with_underscore")
					RecordErrorByComponent("store", "error.with.dots")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			// Start multiple goroutines recording metrics
			for i := 0; i < 10; i++ {
				go func(id int) {
					for j := 0; j < 100; j++ {
						RecordPerformanceProcessed()
						UpdateQueueSize(1000 + j)
						RecordScoringLatency(float64(j))
						RecordResolution("exact")
					}
					done <- true
				}(i)
			}

			// Wait for all goroutines to complete
			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue) // If we get here, no panics occurred
			})
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the package registry", t, func() {
		Convey("When gathering after recording", func() {
			RecordPerformanceProcessed()
			RecordResolution("exact")

			families, err := GetRegistry().Gather()

			Convey("Then it should expose the season metric families", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["gully_season_performances_processed_total"], ShouldBeTrue)
				So(names["gully_season_resolutions_total"], ShouldBeTrue)
			})
		})
	})
}

func TestMetricsOptionsValidation(t *testing.T) {
	Convey("Given metrics options validation", t, func() {
		Convey("When creating with empty namespace", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithPrometheusRegistry(registry))

			Convey("Then it should keep the default and be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty subsystem", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithSubsystem(""), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with nil histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with a nil registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(nil), WithPrometheusRegistry(registry))

			Convey("Then the nil is ignored and creation succeeds", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}
