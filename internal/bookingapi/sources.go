package bookingapi

import (
	"context"
	"time"

	"visitbook/internal/availability"
	"visitbook/internal/density"
	"visitbook/internal/models"
	"visitbook/internal/schedule"
)

type scheduleSource struct{ c *Client }

// ScheduleSource exposes the client as a schedule.Source.
func (c *Client) ScheduleSource() schedule.Source {
	return scheduleSource{c: c}
}

func (s scheduleSource) Schedules(ctx context.Context, year int, month time.Month) ([]models.OpeningSchedule, error) {
	dtos, err := s.c.GetSchedules(ctx, year, monthQuery(month))
	if err != nil {
		return nil, err
	}
	list := make([]models.OpeningSchedule, len(dtos))
	for i, d := range dtos {
		list[i] = d.ToModel()
	}
	return list, nil
}

type densitySource struct{ c *Client }

// DensitySource exposes the client as an availability.DensitySource.
func (c *Client) DensitySource() availability.DensitySource {
	return densitySource{c: c}
}

func (s densitySource) Occupancy(ctx context.Context, year int, month time.Month) (density.MonthOccupancy, error) {
	days, err := s.c.GetDensity(ctx, year, monthQuery(month))
	if err != nil {
		return nil, err
	}
	out := make(density.MonthOccupancy, len(days))
	for date, d := range days {
		occ := make(models.SlotOccupancy, len(d.PerSlotOccupancy))
		for key, n := range d.PerSlotOccupancy {
			occ[key] = n
		}
		out[date] = occ
	}
	return out, nil
}
