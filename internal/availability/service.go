// Package availability loads a month: schedule, occupancy, day statuses and the calendar grid.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"visitbook/internal/access"
	"visitbook/internal/calendar"
	"visitbook/internal/density"
	"visitbook/internal/metrics"
	"visitbook/internal/models"
	"visitbook/internal/schedule"
)

var (
	// ErrDensityUnavailable wraps failures of the density source.
	ErrDensityUnavailable = errors.New("density unavailable")
	// ErrOccupancyHidden is the degradation cause for unprivileged callers.
	ErrOccupancyHidden = errors.New("occupancy hidden for unprivileged caller")
)

// DensitySource fetches per-day slot occupancy for a month.
type DensitySource interface {
	Occupancy(ctx context.Context, year int, month time.Month) (density.MonthOccupancy, error)
}

// Service loads month views.
type Service struct {
	resolver   *schedule.Resolver
	density    DensitySource
	aggregator *density.Aggregator
	clock      models.Clock
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewService wires the month loader. densitySrc may be nil, all months then load with zero occupancy.
func NewService(
	resolver *schedule.Resolver,
	densitySrc DensitySource,
	aggregator *density.Aggregator,
	clock models.Clock,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	if clock == nil {
		clock = models.SystemClock{}
	}
	return &Service{
		resolver:   resolver,
		density:    densitySrc,
		aggregator: aggregator,
		clock:      clock,
		metrics:    m,
		logger:     logger.With().Str("component", "availability").Logger(),
	}
}

// Now returns the current time of the service clock.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// Aggregator returns the density aggregator used for classification.
func (s *Service) Aggregator() *density.Aggregator {
	return s.aggregator
}

// LoadMonth fetches and classifies (year, month). It never fails:
// schedule problems fall back to the default schedule and density problems to zero occupancy.
func (s *Service) LoadMonth(ctx context.Context, year int, month time.Month, privilege access.Privilege) *MonthView {
	started := time.Now()
	res := s.resolver.Resolve(ctx, year, month)
	outcome := "ok"
	if res.Fallback {
		outcome = "fallback"
	}
	s.metrics.ObserveFetch(metrics.FetchSchedule, outcome, time.Since(started))

	view := &MonthView{
		Year:             year,
		Month:            month,
		Schedule:         res.Schedule,
		ScheduleFallback: res.Fallback,
		ScheduleCause:    res.Cause,
		Privileged:       privilege.IsPrivileged(),
	}

	occupancy, cause := s.occupancy(ctx, year, month, privilege)
	if cause != nil {
		view.Degraded = true
		view.DegradedCause = cause
	}

	now := s.clock.Now()
	view.LoadedAt = now
	view.Days = s.aggregator.Month(year, month, &view.Schedule, occupancy, now)
	view.Cells = calendar.Build(year, month, view.Days)

	s.logger.Debug().
		Int("year", year).
		Str("month", month.String()).
		Str("privilege", privilege.String()).
		Bool("schedule_fallback", view.ScheduleFallback).
		Bool("degraded", view.Degraded).
		Msg("month loaded")

	return view
}

func (s *Service) occupancy(ctx context.Context, year int, month time.Month, privilege access.Privilege) (density.MonthOccupancy, error) {
	if !privilege.IsPrivileged() {
		s.metrics.IncFetchSkipped(metrics.FetchDensity)
		return density.ZeroOccupancy(), ErrOccupancyHidden
	}
	if s.density == nil {
		s.metrics.IncFetchSkipped(metrics.FetchDensity)
		return density.ZeroOccupancy(), ErrDensityUnavailable
	}

	started := time.Now()
	occ, err := s.density.Occupancy(ctx, year, month)
	if err != nil {
		s.metrics.ObserveFetch(metrics.FetchDensity, "error", time.Since(started))
		cause := fmt.Errorf("%w: %v", ErrDensityUnavailable, err)
		s.logger.Warn().
			Err(cause).
			Int("year", year).
			Str("month", month.String()).
			Msg("showing month as fully available")
		return density.ZeroOccupancy(), cause
	}
	s.metrics.ObserveFetch(metrics.FetchDensity, "ok", time.Since(started))
	if occ == nil {
		occ = density.ZeroOccupancy()
	}
	return occ, nil
}

// CalendarMatrix returns the grid of (year, month) for rendering.
func (s *Service) CalendarMatrix(ctx context.Context, year int, month time.Month, privilege access.Privilege) []calendar.Cell {
	return s.LoadMonth(ctx, year, month, privilege).Cells
}
