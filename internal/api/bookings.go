package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"visitbook/internal/booking"
	"visitbook/internal/bookingapi"
	"visitbook/internal/models"
)

func (s *Server) handleBooking(w http.ResponseWriter, r *http.Request) {
	nav, ok := s.navigatorFor(w, r)
	if !ok {
		return
	}
	var body bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Date and time_slot in the body override the session selection.
	sel := nav.Selection()
	if body.Date != "" {
		date, err := models.ParseDate(body.Date, s.loc)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid date", Reason: booking.ReasonMalformed})
			return
		}
		slot := body.TimeSlot
		if slot == "" && sel != nil && sel.DateKey == models.DateKey(date) {
			slot = sel.TimeSlot
		}
		next := models.NewSelection(date, slot)
		sel = &next
	} else if sel != nil && body.TimeSlot != "" {
		sel.TimeSlot = body.TimeSlot
	}
	if sel == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "no date selected", Reason: booking.ReasonMalformed})
		return
	}

	var occupancy models.SlotOccupancy
	if view := nav.View(); view != nil {
		occupancy = view.Occupancy(sel.Date)
	}

	conf, err := s.bookings.Submit(r.Context(), nav.SessionID(), booking.Request{
		Selection:      *sel,
		PartySize:      body.PartySize,
		GuideRequested: body.GuideRequested,
		Contact: bookingapi.Contact{
			Name:  body.Contact.Name,
			Email: body.Contact.Email,
			Phone: body.Contact.Phone,
		},
		Notes:     body.Notes,
		Occupancy: occupancy,
	})
	if err != nil {
		if booking.IsRejected(err) {
			nav.ClearSelection()
			s.persist(r, nav)
		}
		s.writeBookingError(w, err)
		return
	}

	nav.ClearSelection()
	s.persist(r, nav)
	writeJSON(w, http.StatusCreated, conf)
}

func (s *Server) writeBookingError(w http.ResponseWriter, err error) {
	var invalid *booking.InvalidSelectionError
	var rejected *booking.RejectedError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: invalid.Message, Reason: invalid.Reason})
	case errors.As(err, &rejected):
		status := rejected.StatusCode
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		writeError(w, status, rejected.Message)
	case errors.Is(err, booking.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, booking.ErrServiceUnavailable):
		writeError(w, http.StatusBadGateway, "booking service unavailable")
	default:
		s.logger.Error().Err(err).Msg("booking submission failed")
		writeError(w, http.StatusInternalServerError, "booking failed")
	}
}
