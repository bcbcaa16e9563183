package schedule

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"visitbook/internal/models"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Schedules(ctx context.Context, year int, month time.Month) ([]models.OpeningSchedule, error) {
	args := m.Called(ctx, year, month)
	list, _ := args.Get(0).([]models.OpeningSchedule)
	return list, args.Error(1)
}

func newTestResolver(src Source) *Resolver {
	logger := zerolog.New(io.Discard)
	return NewResolver(src, &logger)
}

func spring(priority int, name string) models.OpeningSchedule {
	return models.OpeningSchedule{
		SeasonName:    name,
		WeekdaysOpen:  "08:00",
		WeekdaysClose: "20:00",
		WeekendOpen:   "09:00",
		WeekendClose:  "19:00",
		IsActive:      true,
		ValidMonths:   []time.Month{time.March, time.April, time.May},
		Priority:      priority,
	}
}

func TestResolve_PicksMatchingSchedule(t *testing.T) {
	src := new(MockSource)
	inactive := spring(0, "Inactive")
	inactive.IsActive = false
	src.On("Schedules", mock.Anything, 2026, time.April).
		Return([]models.OpeningSchedule{inactive, spring(5, "Spring"), spring(1, "Easter")}, nil)

	res := newTestResolver(src).Resolve(context.Background(), 2026, time.April)

	assert.False(t, res.Fallback)
	assert.NoError(t, res.Cause)
	assert.Equal(t, "Easter", res.Schedule.SeasonName)
	src.AssertExpectations(t)
}

func TestResolve_EqualPriorityKeepsSourceOrder(t *testing.T) {
	src := new(MockSource)
	src.On("Schedules", mock.Anything, 2026, time.May).
		Return([]models.OpeningSchedule{spring(0, "First"), spring(0, "Second")}, nil)

	res := newTestResolver(src).Resolve(context.Background(), 2026, time.May)
	assert.Equal(t, "First", res.Schedule.SeasonName)
}

func TestResolve_SkipsInvalidHours(t *testing.T) {
	broken := spring(0, "Broken")
	broken.WeekdaysClose = "07:00"
	src := new(MockSource)
	src.On("Schedules", mock.Anything, 2026, time.March).
		Return([]models.OpeningSchedule{broken, spring(3, "Spring")}, nil)

	res := newTestResolver(src).Resolve(context.Background(), 2026, time.March)
	assert.Equal(t, "Spring", res.Schedule.SeasonName)
}

func TestResolve_NoMatchFallsBack(t *testing.T) {
	src := new(MockSource)
	src.On("Schedules", mock.Anything, 2026, time.July).
		Return([]models.OpeningSchedule{spring(0, "Spring")}, nil)

	res := newTestResolver(src).Resolve(context.Background(), 2026, time.July)

	require.True(t, res.Fallback)
	assert.ErrorIs(t, res.Cause, ErrNoMatchingSchedule)
	assert.Equal(t, "Summer", res.Schedule.SeasonName)
	assert.Equal(t, "09:00", res.Schedule.WeekdaysOpen)
}

func TestResolve_SourceFailureFallsBack(t *testing.T) {
	src := new(MockSource)
	src.On("Schedules", mock.Anything, 2026, time.November).
		Return(nil, errors.New("connection refused"))

	res := newTestResolver(src).Resolve(context.Background(), 2026, time.November)

	require.True(t, res.Fallback)
	assert.ErrorIs(t, res.Cause, ErrScheduleUnavailable)
	assert.Contains(t, res.Cause.Error(), "connection refused")
	assert.Equal(t, "Winter", res.Schedule.SeasonName)
	assert.Equal(t, "17:00", res.Schedule.WeekdaysClose)
}

func TestResolve_NilSource(t *testing.T) {
	res := newTestResolver(nil).Resolve(context.Background(), 2026, time.January)
	assert.True(t, res.Fallback)
	assert.Equal(t, "Winter", res.Schedule.SeasonName)
}

func TestDefault_CoversEveryMonth(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		s := Default(m)
		assert.True(t, s.CoversMonth(m), "default for %s must cover it", m)
		assert.NoError(t, s.Validate())
	}
}

func TestFileSource_Replace(t *testing.T) {
	fs := NewFileSource([]models.OpeningSchedule{spring(0, "Spring")})
	res := newTestResolver(fs).Resolve(context.Background(), 2026, time.April)
	assert.Equal(t, "Spring", res.Schedule.SeasonName)

	fs.Replace(nil)
	res = newTestResolver(fs).Resolve(context.Background(), 2026, time.April)
	assert.True(t, res.Fallback)
}
