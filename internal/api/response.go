package api

import (
	"encoding/json"
	"net/http"
	"time"

	"visitbook/internal/availability"
	"visitbook/internal/calendar"
	"visitbook/internal/models"
	"visitbook/internal/navigator"
	"visitbook/internal/slots"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

type scheduleResponse struct {
	SeasonName    string `json:"season_name"`
	WeekdaysOpen  string `json:"weekdays_open"`
	WeekdaysClose string `json:"weekdays_close"`
	WeekendOpen   string `json:"weekend_open"`
	WeekendClose  string `json:"weekend_close"`
	SpecialNotes  string `json:"special_notes,omitempty"`
}

type dayResponse struct {
	Date          string           `json:"date"`
	Status        models.DayStatus `json:"status"`
	TotalSlots    int              `json:"total_slots"`
	OccupiedSlots int              `json:"occupied_slots"`
	FullSlots     int              `json:"full_slots"`
}

// monthResponse carries months as 1-12.
type monthResponse struct {
	Year             int              `json:"year"`
	Month            int              `json:"month"`
	MonthName        string           `json:"month_name"`
	Season           models.Season    `json:"season"`
	Schedule         scheduleResponse `json:"schedule"`
	ScheduleFallback bool             `json:"schedule_fallback"`
	Privileged       bool             `json:"privileged"`
	Degraded         bool             `json:"degraded"`
	Weekdays         [7]string        `json:"weekdays"`
	Cells            []calendar.Cell  `json:"cells"`
	Days             []dayResponse    `json:"days"`
	LoadedAt         time.Time        `json:"loaded_at"`
}

func newMonthResponse(v *availability.MonthView) *monthResponse {
	if v == nil {
		return nil
	}
	resp := &monthResponse{
		Year:      v.Year,
		Month:     int(v.Month),
		MonthName: v.Month.String(),
		Season:    models.SeasonOf(v.Month),
		Schedule: scheduleResponse{
			SeasonName:    v.Schedule.SeasonName,
			WeekdaysOpen:  v.Schedule.WeekdaysOpen,
			WeekdaysClose: v.Schedule.WeekdaysClose,
			WeekendOpen:   v.Schedule.WeekendOpen,
			WeekendClose:  v.Schedule.WeekendClose,
			SpecialNotes:  v.Schedule.SpecialNotes,
		},
		ScheduleFallback: v.ScheduleFallback,
		Privileged:       v.Privileged,
		Degraded:         v.Degraded,
		Weekdays:         calendar.WeekdayLabels,
		Cells:            v.Cells,
		Days:             make([]dayResponse, len(v.Days)),
		LoadedAt:         v.LoadedAt,
	}
	for i, d := range v.Days {
		resp.Days[i] = dayResponse{
			Date:          models.DateKey(d.Date),
			Status:        d.Status,
			TotalSlots:    d.TotalSlots,
			OccupiedSlots: d.OccupiedSlots,
			FullSlots:     d.FullSlots,
		}
	}
	return resp
}

type sessionResponse struct {
	ID        string                   `json:"id"`
	Privilege string                   `json:"privilege"`
	Year      int                      `json:"year"`
	Month     int                      `json:"month"`
	Sequence  uint64                   `json:"sequence"`
	Selection *models.BookingSelection `json:"selection,omitempty"`
	View      *monthResponse           `json:"view,omitempty"`
}

func newSessionResponse(nav *navigator.Navigator, view *availability.MonthView) sessionResponse {
	year, month := nav.Cursor()
	issued, _ := nav.Sequence()
	return sessionResponse{
		ID:        nav.SessionID(),
		Privilege: nav.Privilege().String(),
		Year:      year,
		Month:     int(month),
		Sequence:  issued,
		Selection: nav.Selection(),
		View:      newMonthResponse(view),
	}
}

type dayDetailResponse struct {
	dayResponse
	Slots []slots.SlotInfo `json:"slots"`
}

type selectionRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot,omitempty"`
}

type contactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type bookingRequest struct {
	Date           string         `json:"date,omitempty"`
	TimeSlot       string         `json:"time_slot,omitempty"`
	PartySize      int            `json:"party_size"`
	GuideRequested bool           `json:"guide_requested"`
	Contact        contactRequest `json:"contact"`
	Notes          string         `json:"notes,omitempty"`
}
