package availability

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"visitbook/internal/access"
	"visitbook/internal/calendar"
	"visitbook/internal/density"
	"visitbook/internal/metrics"
	"visitbook/internal/models"
	"visitbook/internal/schedule"
	"visitbook/internal/slots"
)

type MockDensity struct {
	mock.Mock
}

func (m *MockDensity) Occupancy(ctx context.Context, year int, month time.Month) (density.MonthOccupancy, error) {
	args := m.Called(ctx, year, month)
	occ, _ := args.Get(0).(density.MonthOccupancy)
	return occ, args.Error(1)
}

// Wednesday 2026-10-14, 07:00.
var testNow = time.Date(2026, time.October, 14, 7, 0, 0, 0, time.UTC)

func newTestService(src DensitySource, schedules []models.OpeningSchedule) *Service {
	logger := zerolog.New(io.Discard)
	resolver := schedule.NewResolver(schedule.NewFileSource(schedules), &logger)
	agg := density.NewAggregator(slots.NewGenerator(slots.DefaultSlotMinutes), density.DefaultCapacity)
	return NewService(resolver, src, agg, models.FixedClock(testNow), metrics.New(prometheus.NewRegistry()), logger)
}

var autumn = models.OpeningSchedule{
	SeasonName:    "Autumn",
	WeekdaysOpen:  "09:00",
	WeekdaysClose: "18:00",
	WeekendOpen:   "10:00",
	WeekendClose:  "16:00",
	IsActive:      true,
	ValidMonths:   []time.Month{time.September, time.October, time.November},
}

func date(d int) time.Time {
	return time.Date(2026, time.October, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadMonth_Privileged(t *testing.T) {
	src := new(MockDensity)
	src.On("Occupancy", mock.Anything, 2026, time.October).Return(density.MonthOccupancy{
		"2026-10-15": {"09:00-11:00": 2},
	}, nil)

	view := newTestService(src, []models.OpeningSchedule{autumn}).
		LoadMonth(context.Background(), 2026, time.October, access.Admin)

	assert.False(t, view.ScheduleFallback)
	assert.False(t, view.Degraded)
	assert.Equal(t, "Autumn", view.Schedule.SeasonName)
	require.Len(t, view.Days, 31)
	assert.Len(t, view.Cells, calendar.LeadingBlanks(2026, time.October)+31)

	status, ok := view.DayStatus(date(15))
	require.True(t, ok)
	assert.Equal(t, models.StatusPartial, status)
	assert.Equal(t, models.SlotOccupancy{
		"09:00-11:00": 2, "11:00-13:00": 0, "13:00-15:00": 0, "15:00-17:00": 0,
	}, view.Occupancy(date(15)))

	_, ok = view.DayStatus(time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
	src.AssertExpectations(t)
}

func TestLoadMonth_UnprivilegedSkipsDensity(t *testing.T) {
	src := new(MockDensity)
	view := newTestService(src, []models.OpeningSchedule{autumn}).
		LoadMonth(context.Background(), 2026, time.October, access.Public)

	assert.True(t, view.Degraded)
	assert.ErrorIs(t, view.DegradedCause, ErrOccupancyHidden)
	assert.Nil(t, view.Occupancy(date(15)))
	status, _ := view.DayStatus(date(15))
	assert.Equal(t, models.StatusAvailable, status)
	src.AssertNotCalled(t, "Occupancy", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadMonth_DensityFailureDegrades(t *testing.T) {
	src := new(MockDensity)
	src.On("Occupancy", mock.Anything, 2026, time.October).Return(nil, errors.New("timeout"))

	view := newTestService(src, []models.OpeningSchedule{autumn}).
		LoadMonth(context.Background(), 2026, time.October, access.Admin)

	assert.True(t, view.Degraded)
	assert.ErrorIs(t, view.DegradedCause, ErrDensityUnavailable)
	for _, d := range view.Days {
		switch {
		case d.Date.Before(date(14)):
			assert.Equal(t, models.StatusPast, d.Status)
		case d.Date.Weekday() == time.Monday:
			assert.Equal(t, models.StatusClosed, d.Status)
		default:
			assert.Equal(t, models.StatusAvailable, d.Status)
		}
	}
}

func TestLoadMonth_ScheduleFallback(t *testing.T) {
	view := newTestService(nil, nil).LoadMonth(context.Background(), 2026, time.October, access.Admin)

	assert.True(t, view.ScheduleFallback)
	assert.ErrorIs(t, view.ScheduleCause, schedule.ErrNoMatchingSchedule)
	assert.Equal(t, "Winter", view.Schedule.SeasonName)
	assert.True(t, view.Degraded)
	assert.ErrorIs(t, view.DegradedCause, ErrDensityUnavailable)
}

func TestCalendarMatrix(t *testing.T) {
	cells := newTestService(nil, []models.OpeningSchedule{autumn}).
		CalendarMatrix(context.Background(), 2026, time.November, access.Public)

	blanks := calendar.LeadingBlanks(2026, time.November)
	require.Len(t, cells, blanks+30)
	assert.Equal(t, models.SeasonAutumn, cells[blanks].Season)
	assert.Equal(t, models.StatusClosed, cells[blanks+1].Status) // Monday 2nd
}
