// Package density classifies days by how many of their slots are already booked.
package density

import (
	"time"

	"visitbook/internal/models"
	"visitbook/internal/slots"
)

// DefaultCapacity is the booking count at which a slot is saturated.
const DefaultCapacity = 2

// MonthOccupancy maps a YYYY-MM-DD date key to that day's slot counts.
type MonthOccupancy map[string]models.SlotOccupancy

// ZeroOccupancy is the occupancy assumed when the real one cannot be shown.
func ZeroOccupancy() MonthOccupancy {
	return MonthOccupancy{}
}

// Aggregator combines generated slots with occupancy counts.
type Aggregator struct {
	generator *slots.Generator
	capacity  int
}

// NewAggregator creates an aggregator; non-positive capacity falls back to DefaultCapacity.
func NewAggregator(generator *slots.Generator, capacity int) *Aggregator {
	if generator == nil {
		generator = slots.NewGenerator(slots.DefaultSlotMinutes)
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Aggregator{generator: generator, capacity: capacity}
}

// Capacity returns the saturation threshold.
func (a *Aggregator) Capacity() int {
	return a.capacity
}

// Generator returns the slot generator used for each day.
func (a *Aggregator) Generator() *slots.Generator {
	return a.generator
}

// Day classifies one generated day against its occupancy.
// Dates before today are past, Mondays closed. Today without remaining slots is past.
// A later open day without slots has nothing left to book and reports full.
func (a *Aggregator) Day(day slots.Day, occupancy models.SlotOccupancy, now time.Time) models.DayDensity {
	date := models.DateOnly(day.Date)
	today := models.DateOnly(now.In(date.Location()))
	result := models.DayDensity{Date: date}

	switch {
	case date.Before(today) || day.Kind == slots.KindPast:
		result.Status = models.StatusPast
		return result
	case day.Kind == slots.KindClosed:
		result.Status = models.StatusClosed
		return result
	case date.Equal(today) && len(day.Slots) == 0:
		result.Status = models.StatusPast
		return result
	}

	result.Slots = day.Slots
	result.TotalSlots = len(day.Slots)
	result.PerSlot = make(models.SlotOccupancy, len(day.Slots))
	for _, s := range day.Slots {
		count := occupancy[s.Key()]
		result.PerSlot[s.Key()] = count
		if count >= 1 {
			result.OccupiedSlots++
		}
		if count >= a.capacity {
			result.FullSlots++
		}
	}

	result.Status = classify(result.TotalSlots, result.OccupiedSlots, result.FullSlots)
	return result
}

func classify(total, occupied, full int) models.DayStatus {
	half := (total + 1) / 2
	switch {
	case full == total:
		return models.StatusFull
	case occupied >= half || full > 0:
		return models.StatusPartial
	default:
		return models.StatusAvailable
	}
}

// Month classifies every day of (year, month) under schedule.
func (a *Aggregator) Month(year int, month time.Month, schedule *models.OpeningSchedule, occupancy MonthOccupancy, now time.Time) []models.DayDensity {
	loc := now.Location()
	n := models.DaysIn(year, month)
	days := make([]models.DayDensity, 0, n)
	for d := 1; d <= n; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, loc)
		generated := a.generator.Generate(schedule, date, now)
		days = append(days, a.Day(generated, occupancy[models.DateKey(date)], now))
	}
	return days
}
