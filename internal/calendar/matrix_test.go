package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitbook/internal/models"
)

func TestLeadingBlanks(t *testing.T) {
	assert.Equal(t, 3, LeadingBlanks(2026, time.October)) // Thursday
	assert.Equal(t, 6, LeadingBlanks(2026, time.November)) // Sunday
	assert.Equal(t, 0, LeadingBlanks(2026, time.June))     // Monday
	assert.Equal(t, 5, LeadingBlanks(2026, time.August))   // Saturday
}

func TestBuild_LengthAndBlanks(t *testing.T) {
	for year := 2025; year <= 2028; year++ {
		for m := time.January; m <= time.December; m++ {
			cells := Build(year, m, nil)
			blanks := LeadingBlanks(year, m)
			require.GreaterOrEqual(t, blanks, 0)
			require.LessOrEqual(t, blanks, 6)
			assert.Len(t, cells, blanks+models.DaysIn(year, m))

			for i := 0; i < blanks; i++ {
				assert.True(t, cells[i].Blank)
			}
			assert.Equal(t, 1, cells[blanks].Day)
		}
	}
}

func TestBuild_StatusesAndSeason(t *testing.T) {
	days := []models.DayDensity{
		{Date: time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC), Status: models.StatusPast},
		{Date: time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC), Status: models.StatusPartial},
		{Date: time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC), Status: models.StatusFull},
	}

	cells := Build(2026, time.October, days)
	blanks := LeadingBlanks(2026, time.October)

	first := cells[blanks]
	assert.False(t, first.Blank)
	assert.Equal(t, "2026-10-01", first.Date)
	assert.Equal(t, models.StatusPast, first.Status)
	assert.Equal(t, models.SeasonAutumn, first.Season)

	assert.Equal(t, models.StatusPartial, cells[blanks+14].Status)
	assert.Empty(t, cells[blanks+30].Status)
}

func TestWeeks(t *testing.T) {
	cells := Build(2026, time.November, nil) // 6 blanks + 30 days
	rows := Weeks(cells)
	require.Len(t, rows, 6)
	for _, row := range rows[:5] {
		assert.Len(t, row, 7)
	}
	assert.Len(t, rows[5], 1)
	assert.Equal(t, 1, rows[0][6].Day)
}
