package models

import (
	"fmt"
	"time"
)

// OpeningSchedule is a seasonal opening-hours record.
type OpeningSchedule struct {
	SeasonName    string       `json:"season_name" yaml:"season_name"`
	WeekdaysOpen  string       `json:"weekdays_open" yaml:"weekdays_open"`   // "09:00"
	WeekdaysClose string       `json:"weekdays_close" yaml:"weekdays_close"` // "18:00"
	WeekendOpen   string       `json:"weekend_open" yaml:"weekend_open"`
	WeekendClose  string       `json:"weekend_close" yaml:"weekend_close"`
	SpecialNotes  string       `json:"special_notes,omitempty" yaml:"special_notes,omitempty"`
	IsActive      bool         `json:"is_active" yaml:"is_active"`
	ValidMonths   []time.Month `json:"valid_months" yaml:"valid_months"`
	// Priority orders candidates when several schedules match a month; lower wins.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// CoversMonth reports whether month is listed in ValidMonths.
func (s *OpeningSchedule) CoversMonth(month time.Month) bool {
	for _, m := range s.ValidMonths {
		if m == month {
			return true
		}
	}
	return false
}

// HoursFor returns the open/close pair that applies to weekday.
// Saturday and Sunday use the weekend pair, every other day the weekday pair.
func (s *OpeningSchedule) HoursFor(weekday time.Weekday) (open, closeAt string) {
	if weekday == time.Saturday || weekday == time.Sunday {
		return s.WeekendOpen, s.WeekendClose
	}
	return s.WeekdaysOpen, s.WeekdaysClose
}

// Validate checks that both hour pairs parse as "HH:MM" and open before they close.
func (s *OpeningSchedule) Validate() error {
	if err := validatePair(s.WeekdaysOpen, s.WeekdaysClose); err != nil {
		return fmt.Errorf("weekdays: %w", err)
	}
	if err := validatePair(s.WeekendOpen, s.WeekendClose); err != nil {
		return fmt.Errorf("weekend: %w", err)
	}
	for _, m := range s.ValidMonths {
		if m < time.January || m > time.December {
			return fmt.Errorf("valid_months: month %d out of range", m)
		}
	}
	return nil
}

func validatePair(openStr, closeStr string) error {
	openAt, err := ParseClock(openStr)
	if err != nil {
		return err
	}
	closeAt, err := ParseClock(closeStr)
	if err != nil {
		return err
	}
	if openAt >= closeAt {
		return fmt.Errorf("open %s must be before close %s", openStr, closeStr)
	}
	return nil
}
