package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"visitbook/internal/access"
	"visitbook/internal/availability"
	"visitbook/internal/models"
	"visitbook/internal/navigator"
	"visitbook/internal/session"
	"visitbook/internal/slots"
)

type navAction int

const (
	navPrevious navAction = iota
	navNext
	navToday
	navRefresh
)

func (s *Server) waitContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.waitTimeout)
}

// navigatorFor resolves the session of the request or writes the error response.
func (s *Server) navigatorFor(w http.ResponseWriter, r *http.Request) (*navigator.Navigator, bool) {
	id := mux.Vars(r)["id"]
	nav, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return nil, false
		}
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to load session")
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}
	return nav, true
}

func (s *Server) persist(r *http.Request, nav *navigator.Navigator) {
	if err := s.sessions.Persist(r.Context(), nav); err != nil {
		s.logger.Warn().Err(err).Str("session_id", nav.SessionID()).Msg("failed to persist session")
	}
}

// waitView waits for p and writes the resulting session. A superseded load
// answers 409 with the latest applied view so the client can catch up.
func (s *Server) waitView(w http.ResponseWriter, r *http.Request, nav *navigator.Navigator, p *navigator.Pending, status int) {
	ctx, cancel := s.waitContext(r)
	defer cancel()

	view, err := p.Wait(ctx)
	switch {
	case err == nil:
		writeJSON(w, status, newSessionResponse(nav, view))
	case errors.Is(err, navigator.ErrSuperseded):
		writeJSON(w, http.StatusConflict, struct {
			errorResponse
			Session sessionResponse `json:"session"`
		}{
			errorResponse: errorResponse{Error: "navigation superseded by a newer request"},
			Session:       newSessionResponse(nav, nav.View()),
		})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, "month is still loading")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	nav, pending, err := s.sessions.Create(r.Context(), access.FromContext(r.Context()))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create session")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	s.waitView(w, r, nav, pending, http.StatusCreated)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	nav, ok := s.navigatorFor(w, r)
	if !ok {
		return
	}
	if view := nav.View(); view != nil {
		writeJSON(w, http.StatusOK, newSessionResponse(nav, view))
		return
	}
	s.waitView(w, r, nav, nav.Refresh(), http.StatusOK)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.sessions.Delete(r.Context(), id); err != nil && !errors.Is(err, session.ErrNotFound) {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to delete session")
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNavigate(action navAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nav, ok := s.navigatorFor(w, r)
		if !ok {
			return
		}
		var p *navigator.Pending
		switch action {
		case navPrevious:
			p = nav.Previous()
		case navNext:
			p = nav.Next()
		case navToday:
			p = nav.Today()
		default:
			p = nav.Refresh()
		}
		s.persist(r, nav)
		s.waitView(w, r, nav, p, http.StatusOK)
	}
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	nav, ok := s.navigatorFor(w, r)
	if !ok {
		return
	}
	date, err := models.ParseDate(mux.Vars(r)["date"], s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	view := nav.View()
	if view == nil {
		writeError(w, http.StatusConflict, "month is still loading")
		return
	}
	day, ok := view.Day(date)
	if !ok {
		writeError(w, http.StatusNotFound, "date is outside the current month")
		return
	}
	writeJSON(w, http.StatusOK, s.dayDetail(view, day))
}

func (s *Server) dayDetail(view *availability.MonthView, day *models.DayDensity) dayDetailResponse {
	resp := dayDetailResponse{
		dayResponse: dayResponse{
			Date:          models.DateKey(day.Date),
			Status:        day.Status,
			TotalSlots:    day.TotalSlots,
			OccupiedSlots: day.OccupiedSlots,
			FullSlots:     day.FullSlots,
		},
		Slots: slots.ToSlotInfo(day.Slots, view.Occupancy(day.Date), s.availability.Aggregator().Capacity()),
	}
	return resp
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	nav, ok := s.navigatorFor(w, r)
	if !ok {
		return
	}
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	date, err := models.ParseDate(req.Date, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	var sel models.BookingSelection
	if req.TimeSlot == "" {
		sel, err = nav.SelectDate(date)
	} else {
		sel, err = nav.SelectDateAndTime(date, req.TimeSlot)
	}
	if err != nil {
		writeSelectionError(w, err)
		return
	}
	s.persist(r, nav)
	writeJSON(w, http.StatusOK, sel)
}

func writeSelectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, navigator.ErrNotLoaded):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, navigator.ErrOutsideMonth),
		errors.Is(err, navigator.ErrDayUnavailable),
		errors.Is(err, navigator.ErrSlotUnavailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	nav, ok := s.navigatorFor(w, r)
	if !ok {
		return
	}
	nav.ClearSelection()
	s.persist(r, nav)
	w.WriteHeader(http.StatusNoContent)
}
