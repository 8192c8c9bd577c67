// Package config loads the grading service configuration and its question
// bank.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FAGRADER_"

var configValidate = validator.New()

// Config configures the grading service.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// QuestionsPath is a YAML file or a directory of YAML files holding the
	// question bank. Empty serves no stored questions.
	QuestionsPath string `yaml:"questions_path"`

	Server    ServerConfig    `yaml:"server"`
	Grading   GradingConfig   `yaml:"grading"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string        `yaml:"port" validate:"required,numeric"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes" validate:"gt=0"`

	// GradeTimeout bounds a single grading request.
	GradeTimeout time.Duration `yaml:"grade_timeout" validate:"gt=0"`
}

// GradingConfig tunes the grader.
type GradingConfig struct {
	MaxWordsScanned int   `yaml:"max_words_scanned" validate:"gte=0"`
	Seed            int64 `yaml:"seed"`
}

// TelemetryConfig selects the trace exporter.
type TelemetryConfig struct {
	// Exporter is "none" or "stdout".
	Exporter    string `yaml:"exporter" validate:"oneof=none stdout"`
	ServiceName string `yaml:"service_name" validate:"required"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			GradeTimeout:    20 * time.Second,
		},
		Grading: GradingConfig{
			MaxWordsScanned: 1 << 20,
		},
		Telemetry: TelemetryConfig{
			Exporter:    "none",
			ServiceName: "fagrader",
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return configValidate.Struct(c)
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and FAGRADER_* environment overrides, then validates
// it.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeStrict(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// decodeStrict decodes YAML into v, rejecting unknown keys. An empty
// document leaves v unchanged.
func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overrides fields from the environment.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("LOG_LEVEL", &cfg.LogLevel)
	str("QUESTIONS", &cfg.QuestionsPath)
	str("PORT", &cfg.Server.Port)
	str("TELEMETRY_EXPORTER", &cfg.Telemetry.Exporter)

	if v, ok := lookup(EnvPrefix + "MAX_WORDS_SCANNED"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_WORDS_SCANNED: %w", EnvPrefix, err)
		}
		cfg.Grading.MaxWordsScanned = n
	}
	if v, ok := lookup(EnvPrefix + "GRADE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sGRADE_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Server.GradeTimeout = d
	}
	return nil
}
