// Package config loads planner settings from a YAML file and WFM_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"wfm-planner/analysis"
	"wfm-planner/errors"
	"wfm-planner/models"
	"wfm-planner/staffing"
)

// DefaultPath is read when neither --config nor WFM_CONFIG is set.
const DefaultPath = "wfm.yaml"

type Config struct {
	TargetServiceLevel  float64 `yaml:"target_service_level" validate:"gt=0,lte=100"`
	TargetAnswerSeconds float64 `yaml:"target_answer_seconds" validate:"gt=0"`
	Availability        float64 `yaml:"availability" validate:"gt=0,lte=1"`
	TrafficModel        string  `yaml:"traffic_model" validate:"oneof=operating_hours peak_hour"`
	OperatingHours      float64 `yaml:"operating_hours" validate:"gt=0,lte=24"`
	PeakHourRatio       float64 `yaml:"peak_hour_ratio" validate:"gt=0,lte=1"`
	MaxIterations       int     `yaml:"max_iterations" validate:"gte=1"`

	GapDefaultAHT float64 `yaml:"gap_default_aht" validate:"gt=0"`
	GapMinSamples int     `yaml:"gap_min_samples" validate:"gte=1"`

	ForecastStart string `yaml:"forecast_start" validate:"datetime=2006-01-02"`
	ForecastDays  int    `yaml:"forecast_days" validate:"gte=1,lte=3660"`

	DBPath          string `yaml:"db_path" validate:"required"`
	LogLevel        string `yaml:"log_level" validate:"oneof=debug info warn error"`
	HTTPAddr        string `yaml:"http_addr" validate:"required"`
	RefreshSchedule string `yaml:"refresh_schedule"`
	PushURL         string `yaml:"push_url" validate:"omitempty,url"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TargetServiceLevel:  80,
		TargetAnswerSeconds: staffing.DefaultTargetAnswerSeconds,
		Availability:        staffing.DefaultAvailability,
		TrafficModel:        staffing.ModelOperatingHours,
		OperatingHours:      staffing.DefaultOperatingHours,
		PeakHourRatio:       staffing.DefaultPeakHourRatio,
		MaxIterations:       staffing.DefaultMaxIterations,
		GapDefaultAHT:       analysis.DefaultGapAHT,
		GapMinSamples:       analysis.DefaultMinSamples,
		ForecastStart:       "2025-01-01",
		ForecastDays:        396,
		DBPath:              "wfm.db",
		LogLevel:            "info",
		HTTPAddr:            ":8080",
	}
}

// Load reads path (or WFM_CONFIG, or DefaultPath) over the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("WFM_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return Config{}, fmt.Errorf("error reading %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Env vars override YAML values
func (c *Config) applyEnv() error {
	envOverride(&c.TrafficModel, "WFM_TRAFFIC_MODEL")
	envOverride(&c.ForecastStart, "WFM_FORECAST_START")
	envOverride(&c.DBPath, "WFM_DB_PATH")
	envOverride(&c.LogLevel, "WFM_LOG_LEVEL")
	envOverride(&c.HTTPAddr, "WFM_HTTP_ADDR")
	envOverride(&c.RefreshSchedule, "WFM_REFRESH_SCHEDULE")
	envOverride(&c.PushURL, "WFM_PUSH_URL")

	for _, o := range []struct {
		field *float64
		key   string
	}{
		{&c.TargetServiceLevel, "WFM_TARGET_SL"},
		{&c.TargetAnswerSeconds, "WFM_ANSWER_SECONDS"},
		{&c.Availability, "WFM_AVAILABILITY"},
		{&c.OperatingHours, "WFM_OPERATING_HOURS"},
		{&c.PeakHourRatio, "WFM_PEAK_HOUR_RATIO"},
		{&c.GapDefaultAHT, "WFM_GAP_DEFAULT_AHT"},
	} {
		if err := envOverrideFloat(o.field, o.key); err != nil {
			return err
		}
	}

	for _, o := range []struct {
		field *int
		key   string
	}{
		{&c.MaxIterations, "WFM_MAX_ITERATIONS"},
		{&c.GapMinSamples, "WFM_GAP_MIN_SAMPLES"},
		{&c.ForecastDays, "WFM_FORECAST_DAYS"},
	} {
		if err := envOverrideInt(o.field, o.key); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks field constraints and the refresh cron expression.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	if c.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.RefreshSchedule); err != nil {
			return fmt.Errorf("%w: refresh_schedule %q: %v", errors.ErrInvalidConfig, c.RefreshSchedule, err)
		}
	}
	return nil
}

// Solver builds the staffing solver described by the configuration.
func (c Config) Solver() (*staffing.Solver, error) {
	model, err := staffing.ModelByName(c.TrafficModel, c.OperatingHours, c.PeakHourRatio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return staffing.NewSolver(staffing.Options{
		Model:               model,
		TargetAnswerSeconds: c.TargetAnswerSeconds,
		Availability:        c.Availability,
		MaxIterations:       c.MaxIterations,
	}), nil
}

// GapOptions returns the gap analyzer settings.
func (c Config) GapOptions() analysis.GapOptions {
	return analysis.GapOptions{DefaultAHT: c.GapDefaultAHT, MinSamples: c.GapMinSamples}
}

// ForecastRange returns the default forecast horizon.
func (c Config) ForecastRange() (models.DateRange, error) {
	start, err := models.ParseDateKey(c.ForecastStart)
	if err != nil {
		return models.DateRange{}, err
	}
	return models.NewDateRange(start, c.ForecastDays), nil
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: invalid %s '%s': %v", errors.ErrInvalidConfig, envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid %s '%s': %v", errors.ErrInvalidConfig, envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
