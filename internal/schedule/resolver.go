// Package schedule picks the opening hours that apply to a month.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"visitbook/internal/models"
)

var (
	// ErrScheduleUnavailable wraps failures of the schedule source.
	ErrScheduleUnavailable = errors.New("schedule unavailable")
	// ErrNoMatchingSchedule is the cause when no active record covers the month.
	ErrNoMatchingSchedule = errors.New("no active schedule for month")
)

// Source lists candidate schedules for a month.
type Source interface {
	Schedules(ctx context.Context, year int, month time.Month) ([]models.OpeningSchedule, error)
}

// Resolution is the outcome of resolving a month.
// Fallback is set when Schedule is the built-in default, Cause tells why.
type Resolution struct {
	Schedule models.OpeningSchedule
	Fallback bool
	Cause    error
}

// Resolver selects the active schedule for a month and never fails.
type Resolver struct {
	source Source
	logger zerolog.Logger
}

// NewResolver creates a resolver; a nil source always yields the default.
func NewResolver(source Source, logger *zerolog.Logger) *Resolver {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "schedule_resolver").Logger()
	}
	return &Resolver{source: source, logger: l}
}

// Resolve returns the schedule for (year, month).
func (r *Resolver) Resolve(ctx context.Context, year int, month time.Month) Resolution {
	if r.source == nil {
		return r.fallback(year, month, ErrNoMatchingSchedule)
	}

	candidates, err := r.source.Schedules(ctx, year, month)
	if err != nil {
		return r.fallback(year, month, fmt.Errorf("%w: %v", ErrScheduleUnavailable, err))
	}

	if s, ok := Select(candidates, month); ok {
		return Resolution{Schedule: s}
	}
	return r.fallback(year, month, ErrNoMatchingSchedule)
}

func (r *Resolver) fallback(year int, month time.Month, cause error) Resolution {
	r.logger.Warn().
		Err(cause).
		Int("year", year).
		Str("month", month.String()).
		Msg("using default opening schedule")
	return Resolution{Schedule: Default(month), Fallback: true, Cause: cause}
}

// Select returns the first usable schedule for month.
// Candidates must be active, cover the month and carry valid hours.
// Lower Priority wins; ties keep source order.
func Select(candidates []models.OpeningSchedule, month time.Month) (models.OpeningSchedule, bool) {
	eligible := make([]models.OpeningSchedule, 0, len(candidates))
	for i := range candidates {
		c := candidates[i]
		if !c.IsActive || !c.CoversMonth(month) {
			continue
		}
		if err := c.Validate(); err != nil {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return models.OpeningSchedule{}, false
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Priority < eligible[j].Priority
	})
	return eligible[0], true
}
