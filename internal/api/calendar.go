package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"visitbook/internal/access"
	"visitbook/internal/availability"
	"visitbook/internal/export"
	"visitbook/internal/models"
)

// monthVars parses {year}/{month} with month in 1-12.
func monthVars(r *http.Request) (int, time.Month, error) {
	vars := mux.Vars(r)
	year, err := strconv.Atoi(vars["year"])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", vars["year"])
	}
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", vars["month"])
	}
	return year, time.Month(month), nil
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthVars(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view := s.availability.LoadMonth(r.Context(), year, month, access.FromContext(r.Context()))
	writeJSON(w, http.StatusOK, newMonthResponse(view))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthVars(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count := 1
	if raw := r.URL.Query().Get("months"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 || count > s.maxExport {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("months must be between 1 and %d", s.maxExport))
			return
		}
	}

	views := make([]*availability.MonthView, 0, count)
	for i := 0; i < count; i++ {
		y, m := models.ShiftMonth(year, month, i)
		views = append(views, s.availability.LoadMonth(r.Context(), y, m, access.Admin))
	}

	var buf bytes.Buffer
	if err := export.WriteMonth(&buf, views...); err != nil {
		s.logger.Error().Err(err).Int("year", year).Int("month", int(month)).Msg("export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(views[0])))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
