package density

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitbook/internal/models"
	"visitbook/internal/slots"
)

var testSchedule = &models.OpeningSchedule{
	SeasonName:    "Summer",
	WeekdaysOpen:  "09:00",
	WeekdaysClose: "18:00",
	WeekendOpen:   "10:00",
	WeekendClose:  "18:00",
	IsActive:      true,
}

// 2026-10-14 is a Wednesday.
var now = time.Date(2026, time.October, 14, 7, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2026, time.October, d, 0, 0, 0, 0, time.UTC)
}

func newAggregator() *Aggregator {
	return NewAggregator(slots.NewGenerator(slots.DefaultSlotMinutes), DefaultCapacity)
}

func classifyDay(t *testing.T, a *Aggregator, date time.Time, occ models.SlotOccupancy) models.DayDensity {
	t.Helper()
	generated := a.Generator().Generate(testSchedule, date, now)
	return a.Day(generated, occ, now)
}

func TestDay_Classification(t *testing.T) {
	a := newAggregator()

	tests := []struct {
		name         string
		occupancy    models.SlotOccupancy
		wantStatus   models.DayStatus
		wantOccupied int
		wantFull     int
	}{
		{
			name:       "empty",
			wantStatus: models.StatusAvailable,
		},
		{
			name:         "one saturated slot",
			occupancy:    models.SlotOccupancy{"09:00-11:00": 2},
			wantStatus:   models.StatusPartial,
			wantOccupied: 1,
			wantFull:     1,
		},
		{
			name:         "one single booking",
			occupancy:    models.SlotOccupancy{"09:00-11:00": 1},
			wantStatus:   models.StatusAvailable,
			wantOccupied: 1,
		},
		{
			name:         "half occupied",
			occupancy:    models.SlotOccupancy{"09:00-11:00": 1, "13:00-15:00": 1},
			wantStatus:   models.StatusPartial,
			wantOccupied: 2,
		},
		{
			name: "all saturated",
			occupancy: models.SlotOccupancy{
				"09:00-11:00": 2, "11:00-13:00": 3, "13:00-15:00": 2, "15:00-17:00": 2,
			},
			wantStatus:   models.StatusFull,
			wantOccupied: 4,
			wantFull:     4,
		},
		{
			name:       "unknown slot keys ignored",
			occupancy:  models.SlotOccupancy{"17:00-19:00": 5, "08:00-10:00": 2},
			wantStatus: models.StatusAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyDay(t, a, day(15), tt.occupancy)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, 4, got.TotalSlots)
			assert.Equal(t, tt.wantOccupied, got.OccupiedSlots)
			assert.Equal(t, tt.wantFull, got.FullSlots)
		})
	}
}

func TestDay_PastAndClosed(t *testing.T) {
	a := newAggregator()

	past := classifyDay(t, a, day(13), models.SlotOccupancy{"09:00-11:00": 2})
	assert.Equal(t, models.StatusPast, past.Status)
	assert.Zero(t, past.TotalSlots)
	assert.Empty(t, past.PerSlot)

	pastMonday := classifyDay(t, a, day(12), nil)
	assert.Equal(t, models.StatusPast, pastMonday.Status)

	monday := classifyDay(t, a, day(19), nil)
	assert.Equal(t, models.StatusClosed, monday.Status)
}

func TestDay_TodayWithoutRemainingSlotsIsPast(t *testing.T) {
	a := newAggregator()
	late := time.Date(2026, time.October, 14, 16, 30, 0, 0, time.UTC)

	generated := a.Generator().Generate(testSchedule, day(14), late)
	require.Empty(t, generated.Slots)
	assert.Equal(t, models.StatusPast, a.Day(generated, nil, late).Status)
}

func TestDay_FutureOpenDayWithoutSlotsIsFull(t *testing.T) {
	a := newAggregator()
	short := &models.OpeningSchedule{
		WeekdaysOpen: "09:00", WeekdaysClose: "10:30",
		WeekendOpen: "09:00", WeekendClose: "10:30",
	}
	generated := a.Generator().Generate(short, day(15), now)
	require.Empty(t, generated.Slots)
	assert.Equal(t, models.StatusFull, a.Day(generated, nil, now).Status)
}

func TestDay_MonotonicInOccupancy(t *testing.T) {
	a := newAggregator()
	rank := map[models.DayStatus]int{
		models.StatusAvailable: 0,
		models.StatusPartial:   1,
		models.StatusFull:      2,
	}
	keys := classifyDay(t, a, day(15), nil).SlotKeys()

	occ := models.SlotOccupancy{}
	prev := rank[classifyDay(t, a, day(15), occ).Status]
	for _, key := range keys {
		for level := 1; level <= 2; level++ {
			occ[key] = level
			cur := rank[classifyDay(t, a, day(15), occ).Status]
			assert.GreaterOrEqual(t, cur, prev, "raising %s to %d lowered status", key, level)
			prev = cur
		}
	}
	assert.Equal(t, rank[models.StatusFull], prev)
}

func TestMonth(t *testing.T) {
	a := newAggregator()
	occ := MonthOccupancy{
		"2026-10-15": {"09:00-11:00": 2},
		"2026-10-17": {"10:00-12:00": 2, "12:00-14:00": 2, "14:00-16:00": 2, "16:00-18:00": 2},
	}

	days := a.Month(2026, time.October, testSchedule, occ, now)
	require.Len(t, days, 31)

	assert.Equal(t, models.StatusPast, days[12].Status)      // 13th
	assert.Equal(t, models.StatusAvailable, days[13].Status) // today, 07:00
	assert.Equal(t, models.StatusPartial, days[14].Status)   // 15th
	assert.Equal(t, models.StatusFull, days[16].Status)      // saturday 17th
	assert.Equal(t, models.StatusClosed, days[18].Status)    // monday 19th

	for i, d := range days {
		assert.Equal(t, i+1, d.Date.Day())
	}
}

func TestMonth_ZeroOccupancyIsAvailable(t *testing.T) {
	a := newAggregator()
	for _, d := range a.Month(2026, time.November, testSchedule, ZeroOccupancy(), now) {
		if d.Date.Weekday() == time.Monday {
			assert.Equal(t, models.StatusClosed, d.Status)
			continue
		}
		assert.Equal(t, models.StatusAvailable, d.Status, d.Date.Format(models.DateFormat))
	}
}
