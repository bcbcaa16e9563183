package availability

import (
	"time"

	"visitbook/internal/calendar"
	"visitbook/internal/models"
)

// MonthView is one loaded month. It is replaced, never mutated, on navigation.
type MonthView struct {
	Year             int
	Month            time.Month
	Schedule         models.OpeningSchedule
	ScheduleFallback bool
	ScheduleCause    error
	Privileged       bool
	// Degraded is set when occupancy was replaced by zeros; DegradedCause tells why.
	Degraded      bool
	DegradedCause error
	Days          []models.DayDensity
	Cells         []calendar.Cell
	LoadedAt      time.Time
}

// Contains reports whether date falls in the viewed month.
func (v *MonthView) Contains(date time.Time) bool {
	return v != nil && date.Year() == v.Year && date.Month() == v.Month
}

// Day returns the classification of date, if it belongs to the month.
func (v *MonthView) Day(date time.Time) (*models.DayDensity, bool) {
	if !v.Contains(date) {
		return nil, false
	}
	idx := date.Day() - 1
	if idx < 0 || idx >= len(v.Days) {
		return nil, false
	}
	return &v.Days[idx], true
}

// DayStatus returns the status of date, if it belongs to the month.
func (v *MonthView) DayStatus(date time.Time) (models.DayStatus, bool) {
	d, ok := v.Day(date)
	if !ok {
		return "", false
	}
	return d.Status, true
}

// Occupancy returns known slot counts for date.
// It is nil when occupancy was not fetched, so callers cannot mistake zeros for real data.
func (v *MonthView) Occupancy(date time.Time) models.SlotOccupancy {
	if v == nil || v.Degraded {
		return nil
	}
	d, ok := v.Day(date)
	if !ok {
		return nil
	}
	return d.PerSlot
}

// Weeks returns the grid split into rows of seven.
func (v *MonthView) Weeks() [][]calendar.Cell {
	return calendar.Weeks(v.Cells)
}
