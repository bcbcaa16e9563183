package models

import "time"

// DayStatus classifies a day for calendar rendering.
type DayStatus string

const (
	StatusAvailable DayStatus = "available"
	StatusPartial   DayStatus = "partial"
	StatusFull      DayStatus = "full"
	StatusPast      DayStatus = "past"
	StatusClosed    DayStatus = "closed"
)

// Bookable reports whether a day with this status can still receive a selection.
func (s DayStatus) Bookable() bool {
	return s == StatusAvailable || s == StatusPartial
}

// DayDensity is the aggregated occupancy of one day.
// For past and closed days the counters and PerSlot are zero.
type DayDensity struct {
	Date          time.Time
	Status        DayStatus
	Slots         []TimeSlot
	PerSlot       SlotOccupancy
	TotalSlots    int
	OccupiedSlots int
	FullSlots     int
}

// SlotKeys returns slot keys in ascending order.
func (d DayDensity) SlotKeys() []string {
	keys := make([]string, len(d.Slots))
	for i, s := range d.Slots {
		keys[i] = s.Key()
	}
	return keys
}
