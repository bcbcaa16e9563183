// Package booking validates visitor selections and submits bookings to the booking service.
package booking

import (
	"context"
	"time"

	"visitbook/internal/models"
	"visitbook/internal/schedule"
	"visitbook/internal/slots"
)

// DefaultHorizonMonths is how far ahead a visit may be booked.
const DefaultHorizonMonths = 3

// ScheduleResolver returns the schedule of a month.
type ScheduleResolver interface {
	Resolve(ctx context.Context, year int, month time.Month) schedule.Resolution
}

// Validator re-derives slots right before submission.
type Validator struct {
	resolver      ScheduleResolver
	generator     *slots.Generator
	clock         models.Clock
	capacity      int
	horizonMonths int
}

// NewValidator creates a validator; capacity is the count at which a slot is full.
func NewValidator(resolver ScheduleResolver, generator *slots.Generator, clock models.Clock, capacity, horizonMonths int) *Validator {
	if clock == nil {
		clock = models.SystemClock{}
	}
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	return &Validator{
		resolver:      resolver,
		generator:     generator,
		clock:         clock,
		capacity:      capacity,
		horizonMonths: horizonMonths,
	}
}

// Bounds returns the first and last bookable dates relative to now.
func (v *Validator) Bounds(now time.Time) (first, last time.Time) {
	first = models.DateOnly(now)
	return first, first.AddDate(0, v.horizonMonths, 0)
}

// Validate checks (date, slotKey) against freshly generated slots and returns the canonical slot key.
// A nil occupancy skips the saturation check.
func (v *Validator) Validate(ctx context.Context, date time.Time, slotKey string, occupancy models.SlotOccupancy) (string, error) {
	slot, err := models.ParseTimeSlot(slotKey)
	if err != nil {
		return "", invalid(ReasonMalformed, "time slot %q is not in HH:MM-HH:MM form", slotKey)
	}

	now := v.clock.Now()
	y, m, d := date.Date()
	date = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	first, last := v.Bounds(now)

	switch {
	case date.Before(first):
		return "", invalid(ReasonPast, "%s is in the past", models.DateKey(date))
	case date.After(last):
		return "", invalid(ReasonOutOfRange, "visits can be booked up to %s", models.DateKey(last))
	case date.Weekday() == time.Monday:
		return "", invalid(ReasonClosed, "closed on Mondays")
	}

	res := v.resolver.Resolve(ctx, date.Year(), date.Month())
	day := v.generator.Generate(&res.Schedule, date, now)
	key := slot.Key()

	if !day.Contains(key) {
		if date.Equal(first) && slot.StartMinute < slots.NextFullHour(now) {
			return "", invalid(ReasonPast, "slot %s has already started", key)
		}
		return "", invalid(ReasonSlotUnavailable, "slot %s is not offered on %s", key, models.DateKey(date))
	}

	if occupancy != nil && v.capacity > 0 && occupancy[key] >= v.capacity {
		return "", invalid(ReasonSlotFull, "slot %s is fully booked", key)
	}

	return key, nil
}
