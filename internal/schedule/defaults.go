package schedule

import (
	"time"

	"visitbook/internal/models"
)

var summerMonths = []time.Month{
	time.April, time.May, time.June, time.July, time.August, time.September,
}

var winterMonths = []time.Month{
	time.October, time.November, time.December, time.January, time.February, time.March,
}

// Default returns the built-in schedule for month.
// April through September use summer hours, the remaining months winter hours.
func Default(month time.Month) models.OpeningSchedule {
	if month >= time.April && month <= time.September {
		return models.OpeningSchedule{
			SeasonName:    "Summer",
			WeekdaysOpen:  "09:00",
			WeekdaysClose: "18:00",
			WeekendOpen:   "10:00",
			WeekendClose:  "18:00",
			IsActive:      true,
			ValidMonths:   append([]time.Month(nil), summerMonths...),
		}
	}
	return models.OpeningSchedule{
		SeasonName:    "Winter",
		WeekdaysOpen:  "10:00",
		WeekdaysClose: "17:00",
		WeekendOpen:   "10:00",
		WeekendClose:  "16:00",
		IsActive:      true,
		ValidMonths:   append([]time.Month(nil), winterMonths...),
	}
}
