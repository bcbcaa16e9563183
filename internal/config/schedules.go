package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"visitbook/internal/models"
)

// SchedulesConfig is the root of schedules.yaml. Months are 1-12.
type SchedulesConfig struct {
	Schedules []models.OpeningSchedule `yaml:"schedules"`
}

// LoadSchedulesConfig loads and validates the schedules file.
func LoadSchedulesConfig(path string) (*SchedulesConfig, error) {
	if path == "" {
		path = "configs/schedules.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedules config: %w", err)
	}

	var cfg SchedulesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse schedules config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate schedules config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *SchedulesConfig) Validate() error {
	if len(c.Schedules) == 0 {
		return fmt.Errorf("no schedules defined")
	}

	names := make(map[string]bool)
	for i := range c.Schedules {
		s := &c.Schedules[i]
		if s.SeasonName == "" {
			return fmt.Errorf("schedule[%d]: season_name is required", i)
		}
		if names[s.SeasonName] {
			return fmt.Errorf("schedule[%d]: duplicate season_name '%s'", i, s.SeasonName)
		}
		names[s.SeasonName] = true

		if len(s.ValidMonths) == 0 {
			return fmt.Errorf("schedule[%d]: valid_months is required", i)
		}
		for j, m := range s.ValidMonths {
			if m < time.January || m > time.December {
				return fmt.Errorf("schedule[%d].valid_months[%d]: invalid month %d, must be 1-12", i, j, m)
			}
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("schedule[%d]: %w", i, err)
		}
	}
	return nil
}
