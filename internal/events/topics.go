package events

import (
	"time"

	"visitbook/internal/models"
)

// MonthLoaded is published after a navigation result was applied.
type MonthLoaded struct {
	SessionID        string
	Year             int
	Month            time.Month
	Sequence         uint64
	Degraded         bool
	ScheduleFallback bool
}

// SelectionChanged carries a new selection; Selection is nil when it was cleared.
type SelectionChanged struct {
	SessionID string
	Selection *models.BookingSelection
}

// BookingCreated is published once the booking service accepted a booking.
type BookingCreated struct {
	SessionID string
	BookingID string
	Date      time.Time
	TimeSlot  string
}

const (
	TopicMonthLoaded      Topic[MonthLoaded]      = "calendar.month_loaded"
	TopicSelectionChanged Topic[SelectionChanged] = "booking.selection_changed"
	TopicBookingCreated   Topic[BookingCreated]   = "booking.created"
)
