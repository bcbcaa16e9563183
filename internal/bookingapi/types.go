package bookingapi

import (
	"time"

	"visitbook/internal/models"
)

// ScheduleDTO is an opening schedule as sent by the booking service.
// ValidMonths are 0-based.
type ScheduleDTO struct {
	SeasonName    string `json:"season_name"`
	WeekdaysOpen  string `json:"weekdays_open"`
	WeekdaysClose string `json:"weekdays_close"`
	WeekendOpen   string `json:"weekend_open"`
	WeekendClose  string `json:"weekend_close"`
	SpecialNotes  string `json:"special_notes,omitempty"`
	IsActive      bool   `json:"is_active"`
	ValidMonths   []int  `json:"valid_months"`
	Priority      int    `json:"priority,omitempty"`
}

// SchedulesResponse is the body of GET /api/v1/schedules.
type SchedulesResponse struct {
	Schedules []ScheduleDTO `json:"schedules"`
}

// ToModel converts the DTO; months outside 0..11 are dropped.
func (d ScheduleDTO) ToModel() models.OpeningSchedule {
	months := make([]time.Month, 0, len(d.ValidMonths))
	for _, m := range d.ValidMonths {
		if m >= 0 && m <= 11 {
			months = append(months, time.Month(m+1))
		}
	}
	return models.OpeningSchedule{
		SeasonName:    d.SeasonName,
		WeekdaysOpen:  d.WeekdaysOpen,
		WeekdaysClose: d.WeekdaysClose,
		WeekendOpen:   d.WeekendOpen,
		WeekendClose:  d.WeekendClose,
		SpecialNotes:  d.SpecialNotes,
		IsActive:      d.IsActive,
		ValidMonths:   months,
		Priority:      d.Priority,
	}
}

// DayDensityDTO is one day of GET /api/v1/density.
// Only PerSlotOccupancy is used; the status is recomputed locally.
type DayDensityDTO struct {
	Status           string         `json:"status,omitempty"`
	PerSlotOccupancy map[string]int `json:"per_slot_occupancy"`
	TotalSlots       int            `json:"total_slots,omitempty"`
	FullSlots        int            `json:"full_slots,omitempty"`
	PartialSlots     int            `json:"partial_slots,omitempty"`
}

// DensityResponse is the body of GET /api/v1/density keyed by YYYY-MM-DD.
type DensityResponse struct {
	Days map[string]DayDensityDTO `json:"days"`
}

// Contact identifies the visitor placing a booking.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CreateBookingRequest is the body of POST /api/v1/bookings.
type CreateBookingRequest struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	Time           string  `json:"time"` // "HH:MM-HH:MM"
	PartySize      int     `json:"party_size"`
	GuideRequested bool    `json:"guide_requested"`
	Contact        Contact `json:"contact"`
	Notes          string  `json:"notes,omitempty"`
}

// CreateBookingResponse is the success body of POST /api/v1/bookings.
type CreateBookingResponse struct {
	BookingID string `json:"booking_id,omitempty"`
	Message   string `json:"message"`
}
