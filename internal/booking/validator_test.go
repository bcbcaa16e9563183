package booking

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitbook/internal/density"
	"visitbook/internal/models"
	"visitbook/internal/schedule"
	"visitbook/internal/slots"
)

// Wednesday 2026-10-14, 07:00. October falls back to winter hours: weekdays 10:00-17:00.
var testNow = time.Date(2026, time.October, 14, 7, 0, 0, 0, time.UTC)

func newTestValidator(now time.Time) *Validator {
	logger := zerolog.New(io.Discard)
	return NewValidator(
		schedule.NewResolver(nil, &logger),
		slots.NewGenerator(slots.DefaultSlotMinutes),
		models.FixedClock(now),
		density.DefaultCapacity,
		DefaultHorizonMonths,
	)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidate(t *testing.T) {
	afternoon := time.Date(2026, time.October, 14, 14, 20, 0, 0, time.UTC)

	tests := []struct {
		name       string
		now        time.Time
		date       time.Time
		slot       string
		occupancy  models.SlotOccupancy
		wantReason string
		want       string
	}{
		{name: "valid weekday", now: testNow, date: day(2026, 10, 15), slot: "10:00-12:00", want: "10:00-12:00"},
		{name: "whitespace normalized", now: testNow, date: day(2026, 10, 15), slot: " 12:00-14:00 ", want: "12:00-14:00"},
		{name: "last bookable day", now: testNow, date: day(2027, 1, 14), slot: "10:00-12:00", want: "10:00-12:00"},
		{name: "three months and one day", now: testNow, date: day(2027, 1, 15), slot: "10:00-12:00", wantReason: ReasonOutOfRange},
		{name: "yesterday", now: testNow, date: day(2026, 10, 13), slot: "10:00-12:00", wantReason: ReasonPast},
		{name: "monday", now: testNow, date: day(2026, 10, 19), slot: "10:00-12:00", wantReason: ReasonClosed},
		{name: "malformed", now: testNow, date: day(2026, 10, 15), slot: "10-12", wantReason: ReasonMalformed},
		{name: "off grid", now: testNow, date: day(2026, 10, 15), slot: "11:00-13:00", wantReason: ReasonSlotUnavailable},
		{name: "after closing", now: testNow, date: day(2026, 10, 15), slot: "16:00-18:00", wantReason: ReasonSlotUnavailable},
		{name: "started today", now: afternoon, date: day(2026, 10, 14), slot: "14:00-16:00", wantReason: ReasonPast},
		{name: "later today", now: afternoon, date: day(2026, 10, 14), slot: "15:00-17:00", want: "15:00-17:00"},
		{
			name: "saturated", now: testNow, date: day(2026, 10, 15), slot: "10:00-12:00",
			occupancy: models.SlotOccupancy{"10:00-12:00": 2}, wantReason: ReasonSlotFull,
		},
		{
			name: "partially used", now: testNow, date: day(2026, 10, 15), slot: "10:00-12:00",
			occupancy: models.SlotOccupancy{"10:00-12:00": 1}, want: "10:00-12:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestValidator(tt.now).Validate(context.Background(), tt.date, tt.slot, tt.occupancy)
			if tt.wantReason == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSelection))
			var inv *InvalidSelectionError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.wantReason, inv.Reason)
			assert.NotEmpty(t, inv.Message)
		})
	}
}

func TestValidate_AcceptedSelectionRevalidates(t *testing.T) {
	v := newTestValidator(testNow)
	for d := 14; d <= 31; d++ {
		date := day(2026, 10, d)
		for _, slot := range []string{"10:00-12:00", "12:00-14:00", "14:00-16:00"} {
			first, err := v.Validate(context.Background(), date, slot, nil)
			if err != nil {
				continue
			}
			again, err := v.Validate(context.Background(), date, first, nil)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestBounds(t *testing.T) {
	first, last := newTestValidator(testNow).Bounds(testNow)
	assert.Equal(t, day(2026, 10, 14), first)
	assert.Equal(t, day(2027, 1, 14), last)
}
