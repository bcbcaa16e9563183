package export

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"visitbook/internal/availability"
	"visitbook/internal/models"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrNoViews is returned when nothing was given to export.
var ErrNoViews = errors.New("no months to export")

// FileName returns the download name for (year, month).
func FileName(view *availability.MonthView) string {
	return fmt.Sprintf("visitbook-%04d-%02d.xlsx", view.Year, int(view.Month))
}

// WriteMonth writes one sheet per view: a row per day with counters and per-slot occupancy.
func WriteMonth(w io.Writer, views ...*availability.MonthView) error {
	if len(views) == 0 {
		return ErrNoViews
	}

	wb := NewWorkbook()
	defer wb.Close()

	for _, view := range views {
		if err := writeSheet(wb, view); err != nil {
			return err
		}
	}
	return wb.Save(w)
}

func writeSheet(wb *Workbook, view *availability.MonthView) error {
	if err := wb.AddSheet(fmt.Sprintf("%s %d", view.Month, view.Year)); err != nil {
		return err
	}

	keys := slotColumns(view.Days)
	header := []string{"Date", "Weekday", "Status", "Total slots", "Occupied slots", "Full slots"}
	header = append(header, keys...)
	if err := wb.WriteHeader(header); err != nil {
		return err
	}

	for _, d := range view.Days {
		row := []any{
			models.DateKey(d.Date),
			d.Date.Weekday().String(),
			string(d.Status),
			d.TotalSlots,
			d.OccupiedSlots,
			d.FullSlots,
		}
		for _, key := range keys {
			if n, ok := d.PerSlot[key]; ok {
				row = append(row, n)
			} else {
				row = append(row, "")
			}
		}
		if err := wb.WriteRow(row); err != nil {
			return err
		}
	}

	if err := wb.WriteRow(nil); err != nil {
		return err
	}
	footer := [][]any{
		{"Schedule", view.Schedule.SeasonName},
		{"Weekdays", view.Schedule.WeekdaysOpen + "-" + view.Schedule.WeekdaysClose},
		{"Weekend", view.Schedule.WeekendOpen + "-" + view.Schedule.WeekendClose},
		{"Default schedule", view.ScheduleFallback},
		{"Occupancy unavailable", view.Degraded},
	}
	for _, row := range footer {
		if err := wb.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// slotColumns lists every slot key of the month ascending by start.
func slotColumns(days []models.DayDensity) []string {
	seen := map[string]models.TimeSlot{}
	for _, d := range days {
		for _, s := range d.Slots {
			seen[s.Key()] = s
		}
	}
	list := make([]models.TimeSlot, 0, len(seen))
	for _, s := range seen {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartMinute != list[j].StartMinute {
			return list[i].StartMinute < list[j].StartMinute
		}
		return list[i].EndMinute < list[j].EndMinute
	})
	keys := make([]string, len(list))
	for i, s := range list {
		keys[i] = s.Key()
	}
	return keys
}
