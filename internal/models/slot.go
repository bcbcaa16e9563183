package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds minute-of-day values.
const MinutesPerDay = 24 * 60

// TimeSlot is a half-open interval [StartMinute, EndMinute) within a day.
type TimeSlot struct {
	StartMinute int
	EndMinute   int
}

// Key returns the external "HH:MM-HH:MM" representation.
func (t TimeSlot) Key() string {
	return FormatClock(t.StartMinute) + "-" + FormatClock(t.EndMinute)
}

// String implements fmt.Stringer.
func (t TimeSlot) String() string {
	return t.Key()
}

// Duration returns the slot length in minutes.
func (t TimeSlot) Duration() int {
	return t.EndMinute - t.StartMinute
}

// ParseTimeSlot parses an "HH:MM-HH:MM" key.
func ParseTimeSlot(key string) (TimeSlot, error) {
	parts := strings.Split(strings.TrimSpace(key), "-")
	if len(parts) != 2 {
		return TimeSlot{}, fmt.Errorf("invalid slot format: %q", key)
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return TimeSlot{}, err
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return TimeSlot{}, err
	}
	if end <= start {
		return TimeSlot{}, fmt.Errorf("slot end must be after start: %q", key)
	}
	return TimeSlot{StartMinute: start, EndMinute: end}, nil
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	total := hour*60 + minute
	if total > MinutesPerDay {
		return 0, fmt.Errorf("time out of range: %q", s)
	}
	return total, nil
}

// FormatClock converts minutes since midnight to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SlotOccupancy maps a slot key to the number of bookings already placed in it.
type SlotOccupancy map[string]int
