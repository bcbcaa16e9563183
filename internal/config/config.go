// Package config loads the service configuration and the optional schedules file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Schedule sources.
const (
	ScheduleSourceRemote = "remote"
	ScheduleSourceFile   = "file"
)

type Config struct {
	Server struct {
		Address             string   `yaml:"address"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		CORSOrigins         []string `yaml:"cors_origins"`
	} `yaml:"server"`

	BookingAPI struct {
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		APIExtra       string `yaml:"api_extra"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"booking_api"`

	Schedule struct {
		Source        string `yaml:"source"`
		FilePath      string `yaml:"file_path"`
		ReloadSeconds int    `yaml:"reload_seconds"`
	} `yaml:"schedule"`

	Booking struct {
		SlotMinutes          int `yaml:"slot_minutes"`
		SlotCapacity         int `yaml:"slot_capacity"`
		HorizonMonths        int `yaml:"horizon_months"`
		MaxPartySize         int `yaml:"max_party_size"`
		SubmissionsPerMinute int `yaml:"submissions_per_minute"`
	} `yaml:"booking"`

	Timezone string `yaml:"timezone"`

	Access struct {
		AdminTokens []string `yaml:"admin_tokens"`
	} `yaml:"access"`

	Session struct {
		TTLMinutes     int `yaml:"ttl_minutes"`
		CleanupSeconds int `yaml:"cleanup_seconds"`
	} `yaml:"session"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// LoadEnv reads .env style files into the environment. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.ReadTimeoutSeconds <= 0 {
		c.Server.ReadTimeoutSeconds = 10
	}
	if c.Server.WriteTimeoutSeconds <= 0 {
		c.Server.WriteTimeoutSeconds = 30
	}
	if c.BookingAPI.TimeoutSeconds <= 0 {
		c.BookingAPI.TimeoutSeconds = 10
	}
	if c.Schedule.Source == "" {
		c.Schedule.Source = ScheduleSourceRemote
	}
	if c.Schedule.FilePath == "" {
		c.Schedule.FilePath = "configs/schedules.yaml"
	}
	if c.Schedule.ReloadSeconds <= 0 {
		c.Schedule.ReloadSeconds = 30
	}
	if c.Booking.SlotMinutes <= 0 {
		c.Booking.SlotMinutes = 120
	}
	if c.Booking.SlotCapacity <= 0 {
		c.Booking.SlotCapacity = 2
	}
	if c.Booking.HorizonMonths <= 0 {
		c.Booking.HorizonMonths = 3
	}
	if c.Booking.MaxPartySize <= 0 {
		c.Booking.MaxPartySize = 20
	}
	if c.Booking.SubmissionsPerMinute <= 0 {
		c.Booking.SubmissionsPerMinute = 3
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = 30
	}
	if c.Session.CleanupSeconds <= 0 {
		c.Session.CleanupSeconds = 60
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BookingAPI.BaseURL) == "" {
		return fmt.Errorf("booking_api.base_url is required")
	}
	switch c.Schedule.Source {
	case ScheduleSourceRemote, ScheduleSourceFile:
	default:
		return fmt.Errorf("schedule.source: unknown source '%s', expected remote or file", c.Schedule.Source)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unknown format '%s', expected console or json", c.Logging.Format)
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) BookingAPITimeout() time.Duration {
	return time.Duration(c.BookingAPI.TimeoutSeconds) * time.Second
}

func (c *Config) ScheduleReloadInterval() time.Duration {
	return time.Duration(c.Schedule.ReloadSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c *Config) SessionCleanupInterval() time.Duration {
	return time.Duration(c.Session.CleanupSeconds) * time.Second
}
