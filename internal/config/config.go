package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration.
// Values come from defaults, then an optional YAML file, then environment
// variables (highest priority). Only DATABASE_URL is always required; the
// generation and publishing credentials are checked by the commands that use them.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database: postgres:// or sqlite://path
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrationsPath string

	// Generative backend (OpenAI-compatible)
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	PostModel           string
	PostTemperature     float64
	PostMaxTokens       int
	TimelineModel       string
	TimelineTemperature float64
	TimelineMaxTokens   int
	TimelineDays        int

	// Publishing backend
	LinkedInAccessToken string
	LinkedInUserURN     string
	LinkedInBaseURL     string
	LinkedInTimeout     time.Duration

	// Triggers
	ScheduleCron         string
	ScheduleTimezone     string
	TriggerRatePerMinute int

	LogLevel string
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingOpenAIKey   = errors.New("OPENAI_API_KEY is required")
	ErrMissingLinkedIn    = errors.New("LINKEDIN_ACCESS_TOKEN and LINKEDIN_USER_URN are required")
)

var defaults = map[string]any{
	"http_port":        "3000",
	"read_timeout":     5 * time.Second,
	"write_timeout":    2 * time.Minute,
	"shutdown_timeout": 30 * time.Second,

	"db_max_conns":    5,
	"db_min_conns":    1,
	"migrations_path": "migrations",

	"openai_base_url":      "",
	"post_model":           "gpt-4o-mini",
	"post_temperature":     0.7,
	"post_max_tokens":      1000,
	"timeline_model":       "gpt-4o",
	"timeline_temperature": 0.6,
	"timeline_max_tokens":  12000,
	"timeline_days":        30,

	"linkedin_base_url": "https://api.linkedin.com",
	"linkedin_timeout":  30 * time.Second,

	"schedule_cron":           "0 9 * * *",
	"schedule_tz":             "Local",
	"trigger_rate_per_minute": 6,

	"log_level": "info",
}

// Load reads configuration. configFile may be empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	// Hosting platforms export PORT; accept it as an alias.
	if err := v.BindEnv("http_port", "HTTP_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		HTTPPort:        v.GetString("http_port"),
		ReadTimeout:     v.GetDuration("read_timeout"),
		WriteTimeout:    v.GetDuration("write_timeout"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),

		DatabaseURL:    v.GetString("database_url"),
		DBMaxConns:     v.GetInt32("db_max_conns"),
		DBMinConns:     v.GetInt32("db_min_conns"),
		MigrationsPath: v.GetString("migrations_path"),

		OpenAIAPIKey:        v.GetString("openai_api_key"),
		OpenAIBaseURL:       v.GetString("openai_base_url"),
		PostModel:           v.GetString("post_model"),
		PostTemperature:     v.GetFloat64("post_temperature"),
		PostMaxTokens:       v.GetInt("post_max_tokens"),
		TimelineModel:       v.GetString("timeline_model"),
		TimelineTemperature: v.GetFloat64("timeline_temperature"),
		TimelineMaxTokens:   v.GetInt("timeline_max_tokens"),
		TimelineDays:        v.GetInt("timeline_days"),

		LinkedInAccessToken: v.GetString("linkedin_access_token"),
		LinkedInUserURN:     v.GetString("linkedin_user_urn"),
		LinkedInBaseURL:     v.GetString("linkedin_base_url"),
		LinkedInTimeout:     v.GetDuration("linkedin_timeout"),

		ScheduleCron:         v.GetString("schedule_cron"),
		ScheduleTimezone:     v.GetString("schedule_tz"),
		TriggerRatePerMinute: v.GetInt("trigger_rate_per_minute"),

		LogLevel: v.GetString("log_level"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.TimelineDays <= 0 {
		return nil, fmt.Errorf("TIMELINE_DAYS must be positive, got %d", cfg.TimelineDays)
	}
	return cfg, nil
}

// RequireGeneration checks the settings needed to call the generative backend.
func (c *Config) RequireGeneration() error {
	if c.OpenAIAPIKey == "" {
		return ErrMissingOpenAIKey
	}
	return nil
}

// RequirePublishing checks the settings needed to call the publishing backend.
func (c *Config) RequirePublishing() error {
	if c.LinkedInAccessToken == "" || c.LinkedInUserURN == "" {
		return ErrMissingLinkedIn
	}
	return nil
}

// Location resolves ScheduleTimezone; "Local" and "" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.ScheduleTimezone == "" || c.ScheduleTimezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ScheduleTimezone)
	if err != nil {
		return nil, fmt.Errorf("load SCHEDULE_TZ %q: %w", c.ScheduleTimezone, err)
	}
	return loc, nil
}
