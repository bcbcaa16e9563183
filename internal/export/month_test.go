package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"visitbook/internal/availability"
	"visitbook/internal/models"
)

func testView() *availability.MonthView {
	slot := func(start int) models.TimeSlot {
		return models.TimeSlot{StartMinute: start * 60, EndMinute: (start + 2) * 60}
	}
	return &availability.MonthView{
		Year:  2026,
		Month: time.October,
		Schedule: models.OpeningSchedule{
			SeasonName: "Autumn", WeekdaysOpen: "09:00", WeekdaysClose: "18:00",
			WeekendOpen: "10:00", WeekendClose: "16:00",
		},
		Days: []models.DayDensity{
			{
				Date:          time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC),
				Status:        models.StatusPartial,
				Slots:         []models.TimeSlot{slot(10), slot(12)},
				PerSlot:       models.SlotOccupancy{"10:00-12:00": 2, "12:00-14:00": 0},
				TotalSlots:    2,
				OccupiedSlots: 1,
				FullSlots:     1,
			},
			{
				Date:   time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC),
				Status: models.StatusClosed,
			},
			{
				Date:          time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC),
				Status:        models.StatusAvailable,
				Slots:         []models.TimeSlot{slot(9), slot(11)},
				PerSlot:       models.SlotOccupancy{"09:00-11:00": 0, "11:00-13:00": 1},
				TotalSlots:    2,
				OccupiedSlots: 1,
			},
		},
	}
}

func TestWriteMonth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMonth(&buf, testView()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"October 2026"}, f.GetSheetList())
	rows, err := f.GetRows("October 2026")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Date", "Weekday", "Status", "Total slots", "Occupied slots", "Full slots",
		"09:00-11:00", "10:00-12:00", "11:00-13:00", "12:00-14:00",
	}, rows[0])
	assert.Equal(t, []string{"2026-10-17", "Saturday", "partial", "2", "1", "1", "", "2", "", "0"}, rows[1])
	assert.Equal(t, []string{"2026-10-19", "Monday", "closed", "0", "0", "0"}, rows[2])
	assert.Equal(t, "Autumn", rows[5][1])
}

func TestWriteMonth_SeveralSheets(t *testing.T) {
	second := testView()
	second.Month = time.November

	var buf bytes.Buffer
	require.NoError(t, WriteMonth(&buf, testView(), second))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"October 2026", "November 2026"}, f.GetSheetList())
}

func TestWriteMonth_NoViews(t *testing.T) {
	assert.ErrorIs(t, WriteMonth(&bytes.Buffer{}), ErrNoViews)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "visitbook-2026-10.xlsx", FileName(testView()))
}
