// Package config loads service settings from environment variables and the
// per-run experiment file from YAML. All validation happens here, at
// startup, before any data is read.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigError marks rejected configuration: a non-positive window length,
// a threshold outside its range. Raised before any data read.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "config: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}

// IsConfigError reports whether any error in the chain is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Config holds service-level settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	ExperimentFile  string

	// Kafka telemetry configuration (optional, feature-flagged).
	KafkaEnabled          bool
	KafkaBrokers          []string
	KafkaObservationTopic string
	KafkaReportTopic      string
	KafkaGroupID          string
	KafkaDrainTimeout     time.Duration
}

// Load reads service configuration from environment variables, applying
// defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	drainTimeout, err := parseDuration("KAFKA_DRAIN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		ExperimentFile:  envOrDefault("EXPERIMENT_CONFIG", "configs/experiment.yaml"),

		KafkaEnabled:          os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:          parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaObservationTopic: envOrDefault("KAFKA_OBSERVATION_TOPIC", "flood-observations"),
		KafkaReportTopic:      envOrDefault("KAFKA_REPORT_TOPIC", "flood-window-reports"),
		KafkaGroupID:          envOrDefault("KAFKA_GROUP_ID", "flood-inference"),
		KafkaDrainTimeout:     drainTimeout,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, Configf("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, Configf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(value string) []string {
	var brokers []string
	for _, b := range strings.Split(value, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Experiment is the per-run tunable configuration, loaded from YAML. Every
// statistical knob the model depends on lives here by name; nothing is a
// hard-coded constant.
type Experiment struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	RandomSeed  int64  `yaml:"random_seed"`

	TrainingCSV    string `yaml:"training_csv"`
	ObservationCSV string `yaml:"observation_csv"`
	OutputDir      string `yaml:"output_dir"`

	OccurrenceThreshold int     `yaml:"occurrence_threshold"`
	EdgeThreshold       int     `yaml:"edge_threshold"`
	WeightThreshold     float64 `yaml:"weight_threshold"`

	WindowMinutes     int     `yaml:"window_minutes"`
	BaselinePrior     float64 `yaml:"baseline_prior"`
	HighRiskThreshold float64 `yaml:"high_risk_threshold"`
	ClusterBy         string  `yaml:"cluster_by"`
}

// DefaultExperiment returns the reference parameterization. The high-risk
// threshold matches the map renderer's high-risk color band (p ≥ 0.3).
func DefaultExperiment() Experiment {
	return Experiment{
		Name:                "charleston_flood_twin",
		TrainingCSV:         "data/Road_Closures.csv",
		ObservationCSV:      "data/observations.csv",
		OutputDir:           "output/windows",
		OccurrenceThreshold: 5,
		EdgeThreshold:       3,
		WeightThreshold:     0.4,
		WindowMinutes:       10,
		BaselinePrior:       0.05,
		HighRiskThreshold:   0.3,
		ClusterBy:           "date",
	}
}

// LoadExperiment reads and validates the experiment YAML, applying
// defaults for unset fields.
func LoadExperiment(path string) (Experiment, error) {
	exp := DefaultExperiment()

	data, err := os.ReadFile(path)
	if err != nil {
		return Experiment{}, Configf("read experiment file %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return Experiment{}, Configf("parse experiment file %s: %v", path, err)
	}

	if err := exp.Validate(); err != nil {
		return Experiment{}, err
	}
	return exp, nil
}

// Validate enforces the parameter ranges the engine assumes.
func (e Experiment) Validate() error {
	switch {
	case e.Name == "":
		return Configf("experiment name must not be empty")
	case e.TrainingCSV == "":
		return Configf("training_csv must not be empty")
	case e.ObservationCSV == "":
		return Configf("observation_csv must not be empty")
	case e.OutputDir == "":
		return Configf("output_dir must not be empty")
	case e.OccurrenceThreshold < 1:
		return Configf("occurrence_threshold must be at least 1, got %d", e.OccurrenceThreshold)
	case e.EdgeThreshold < 1:
		return Configf("edge_threshold must be at least 1, got %d", e.EdgeThreshold)
	case e.WeightThreshold < 0 || e.WeightThreshold > 1:
		return Configf("weight_threshold must be in [0,1], got %v", e.WeightThreshold)
	case e.WindowMinutes <= 0:
		return Configf("window_minutes must be positive, got %d", e.WindowMinutes)
	case e.BaselinePrior < 0 || e.BaselinePrior > 1:
		return Configf("baseline_prior must be in [0,1], got %v", e.BaselinePrior)
	case e.HighRiskThreshold < 0 || e.HighRiskThreshold > 1:
		return Configf("high_risk_threshold must be in [0,1], got %v", e.HighRiskThreshold)
	case e.ClusterBy != "date":
		return Configf("cluster_by %q is not supported, only \"date\"", e.ClusterBy)
	}
	return nil
}
