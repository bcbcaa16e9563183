// Package calendar lays a month out as a Monday-first grid of day cells.
package calendar

import (
	"time"

	"visitbook/internal/models"
)

// WeekdayLabels is the header row of the Monday-first grid.
var WeekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Cell is one position of the grid; blank cells only pad the first week.
type Cell struct {
	Blank  bool             `json:"blank"`
	Day    int              `json:"day,omitempty"`
	Date   string           `json:"date,omitempty"`
	Status models.DayStatus `json:"status,omitempty"`
	Season models.Season    `json:"season,omitempty"`
}

// LeadingBlanks returns how many cells precede the 1st in a Monday-first grid.
func LeadingBlanks(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	if offset == 0 {
		return 6
	}
	return offset - 1
}

// Build lays out (year, month) using days for statuses.
// Days outside the month are ignored; dates without an entry carry no status.
func Build(year int, month time.Month, days []models.DayDensity) []Cell {
	statuses := make(map[int]models.DayStatus, len(days))
	for _, d := range days {
		if d.Date.Year() == year && d.Date.Month() == month {
			statuses[d.Date.Day()] = d.Status
		}
	}

	blanks := LeadingBlanks(year, month)
	n := models.DaysIn(year, month)
	season := models.SeasonOf(month)

	cells := make([]Cell, 0, blanks+n)
	for i := 0; i < blanks; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for d := 1; d <= n; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		cells = append(cells, Cell{
			Day:    d,
			Date:   models.DateKey(date),
			Status: statuses[d],
			Season: season,
		})
	}
	return cells
}

// Weeks splits cells into rows of seven; the last row may be shorter.
func Weeks(cells []Cell) [][]Cell {
	rows := make([][]Cell, 0, (len(cells)+6)/7)
	for start := 0; start < len(cells); start += 7 {
		end := start + 7
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, cells[start:end])
	}
	return rows
}
