package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/seambreak/gully/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
				convey.So(cfg.MatchThreshold, convey.ShouldEqual, 0.85)
				convey.So(cfg.MaxStandingsLimit, convey.ShouldEqual, 1_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GULLY_LOG_LEVEL", "debug")
			_ = os.Setenv("GULLY_QUEUE_SIZE", "5000")
			_ = os.Setenv("GULLY_WORKER_COUNT", "16")
			_ = os.Setenv("GULLY_DEDUPE_SIZE", "2500")
			_ = os.Setenv("GULLY_MATCH_THRESHOLD", "0.9")
			_ = os.Setenv("GULLY_MAX_STANDINGS_LIMIT", "50")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 5000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 2500)
				convey.So(cfg.MatchThreshold, convey.ShouldEqual, 0.9)
				convey.So(cfg.MaxStandingsLimit, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
log_level: "warn"
queue_size: 30000
worker_count: 24
dedupe_size: 60000
match_threshold: 0.8
rules_file: "/etc/gully/rules.yaml"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GULLY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 30000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 60000)
				convey.So(cfg.MatchThreshold, convey.ShouldEqual, 0.8)
				convey.So(cfg.RulesFile, convey.ShouldEqual, "/etc/gully/rules.yaml")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
log_level: "warn"
queue_size: 30000
worker_count: 24
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GULLY_CONFIG", tmpFile)
			_ = os.Setenv("GULLY_LOG_LEVEL", "error") // This should override the file
			_ = os.Setenv("GULLY_WORKER_COUNT", "32") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "error") // Overridden by env
				convey.So(cfg.QueueSize, convey.ShouldEqual, 30000)  // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)   // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GULLY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("GULLY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown log level", func() {
			_ = os.Setenv("GULLY_LOG_LEVEL", "loud")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "log_level")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an empty log level", func() {
			_ = os.Setenv("GULLY_LOG_LEVEL", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an out-of-range match threshold", func() {
			defer clearConfigEnvVars()
			for _, v := range []string{"1.5", "-0.1"} {
				_ = os.Setenv("GULLY_MATCH_THRESHOLD", v)

				cfg, err := config.Load(ctx)

				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			}
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
log_level: "debug"
worker_count: 16
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GULLY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")        // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)          // From file
				convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)       // From defaults
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)       // From defaults
				convey.So(cfg.MatchThreshold, convey.ShouldEqual, 0.85)     // From defaults
				convey.So(cfg.MaxStandingsLimit, convey.ShouldEqual, 1_000) // From defaults
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("GULLY_QUEUE_SIZE", "invalid")
			_ = os.Setenv("GULLY_WORKER_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given config loader edge cases", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with zero sizes", func() {
			_ = os.Setenv("GULLY_QUEUE_SIZE", "0")
			_ = os.Setenv("GULLY_WORKER_COUNT", "0")
			_ = os.Setenv("GULLY_DEDUPE_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then sizes pass through for the service to default", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 0)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 0)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with a zero match threshold", func() {
			_ = os.Setenv("GULLY_MATCH_THRESHOLD", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then zero means unset and validates fine", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MatchThreshold, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with YAML file containing comments", func() {
			yamlContent := `
# Season pipeline sizing
queue_size: 30000  # Inline comment
worker_count: 24
# Tighter identity matching
match_threshold: 0.92
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("GULLY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should parse YAML with comments", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 30000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24)
				convey.So(cfg.MatchThreshold, convey.ShouldEqual, 0.92)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"GULLY_CONFIG",
		"GULLY_LOG_LEVEL",
		"GULLY_QUEUE_SIZE",
		"GULLY_WORKER_COUNT",
		"GULLY_DEDUPE_SIZE",
		"GULLY_MATCH_THRESHOLD",
		"GULLY_RULES_FILE",
		"GULLY_MAX_STANDINGS_LIMIT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "gully-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
