// Package slots turns opening hours into fixed-length bookable visiting windows.
package slots

import (
	"time"

	"visitbook/internal/models"
)

// DefaultSlotMinutes is the length of one visiting window.
const DefaultSlotMinutes = 120

// Kind tells apart the reasons a day may have no slots.
type Kind string

const (
	KindOpen   Kind = "open"
	KindClosed Kind = "closed"
	KindPast   Kind = "past"
)

// Day holds the generated slots for one date, ascending by start.
type Day struct {
	Date  time.Time
	Kind  Kind
	Slots []models.TimeSlot
}

// Contains reports whether a slot with key was generated.
func (d Day) Contains(key string) bool {
	for _, s := range d.Slots {
		if s.Key() == key {
			return true
		}
	}
	return false
}

// Keys returns the "HH:MM-HH:MM" keys of all slots.
func (d Day) Keys() []string {
	keys := make([]string, len(d.Slots))
	for i, s := range d.Slots {
		keys[i] = s.Key()
	}
	return keys
}

// SlotInfo is a simplified slot representation for UI.
type SlotInfo struct {
	Key       string `json:"key"`   // "09:00-11:00"
	Start     string `json:"start"` // "09:00"
	End       string `json:"end"`   // "11:00"
	Booked    int    `json:"booked"`
	Available bool   `json:"available"`
}

// Generator generates slots for a date.
type Generator struct {
	slotMinutes int
}

// NewGenerator creates a generator; non-positive lengths fall back to DefaultSlotMinutes.
func NewGenerator(slotMinutes int) *Generator {
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}
	return &Generator{slotMinutes: slotMinutes}
}

// SlotMinutes returns the configured window length.
func (g *Generator) SlotMinutes() int {
	return g.slotMinutes
}

// Generate lists the bookable windows of date under schedule.
// Mondays are always closed. Dates before today yield KindPast.
// On today the first window starts at the next full hour at or after now, never before opening.
func (g *Generator) Generate(schedule *models.OpeningSchedule, date, now time.Time) Day {
	date = models.DateOnly(date)
	day := Day{Date: date, Kind: KindOpen}

	if date.Weekday() == time.Monday {
		day.Kind = KindClosed
		return day
	}

	today := models.DateOnly(now.In(date.Location()))
	if date.Before(today) {
		day.Kind = KindPast
		return day
	}

	if schedule == nil {
		return day
	}

	openStr, closeStr := schedule.HoursFor(date.Weekday())
	openAt, err := models.ParseClock(openStr)
	if err != nil {
		return day
	}
	closeAt, err := models.ParseClock(closeStr)
	if err != nil {
		return day
	}

	start := openAt
	if date.Equal(today) {
		if next := NextFullHour(now.In(date.Location())); next > start {
			start = next
		}
	}

	for cursor := start; cursor+g.slotMinutes <= closeAt; cursor += g.slotMinutes {
		day.Slots = append(day.Slots, models.TimeSlot{
			StartMinute: cursor,
			EndMinute:   cursor + g.slotMinutes,
		})
	}

	return day
}

// NextFullHour returns the minute-of-day of the first full hour at or after t.
func NextFullHour(t time.Time) int {
	minutes := t.Hour()*60 + t.Minute()
	if minutes%60 == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return minutes
	}
	return (minutes/60 + 1) * 60
}

// ToSlotInfo converts slots to SlotInfo for UI.
// A slot is available while its occupancy stays below capacity.
func ToSlotInfo(slots []models.TimeSlot, occupancy models.SlotOccupancy, capacity int) []SlotInfo {
	result := make([]SlotInfo, len(slots))
	for i, s := range slots {
		booked := occupancy[s.Key()]
		result[i] = SlotInfo{
			Key:       s.Key(),
			Start:     models.FormatClock(s.StartMinute),
			End:       models.FormatClock(s.EndMinute),
			Booked:    booked,
			Available: booked < capacity,
		}
	}
	return result
}
