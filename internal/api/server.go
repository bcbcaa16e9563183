package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"visitbook/internal/access"
	"visitbook/internal/availability"
	"visitbook/internal/booking"
	"visitbook/internal/metrics"
	"visitbook/internal/session"
)

// DefaultWaitTimeout bounds how long a request waits for a month load.
const DefaultWaitTimeout = 10 * time.Second

// Deps are the components served over HTTP.
type Deps struct {
	Sessions     *session.Manager
	Availability *availability.Service
	Bookings     *booking.Service
	Tokens       *access.TokenChecker
	Metrics      *metrics.Metrics
	Location     *time.Location
	WaitTimeout  time.Duration
	// MaxExportMonths caps the months query of the export endpoint.
	MaxExportMonths int
	Logger          zerolog.Logger
}

// Server exposes sessions, calendars and bookings as a JSON API.
type Server struct {
	sessions     *session.Manager
	availability *availability.Service
	bookings     *booking.Service
	tokens       *access.TokenChecker
	metrics      *metrics.Metrics
	loc          *time.Location
	waitTimeout  time.Duration
	maxExport    int
	logger       zerolog.Logger
	router       *mux.Router
}

// NewServer creates the API server and registers its routes.
func NewServer(d Deps) *Server {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.WaitTimeout <= 0 {
		d.WaitTimeout = DefaultWaitTimeout
	}
	if d.MaxExportMonths <= 0 {
		d.MaxExportMonths = 12
	}
	if d.Tokens == nil {
		d.Tokens = access.NewTokenChecker(nil, d.Logger)
	}
	s := &Server{
		sessions:     d.Sessions,
		availability: d.Availability,
		bookings:     d.Bookings,
		tokens:       d.Tokens,
		metrics:      d.Metrics,
		loc:          d.Location,
		waitTimeout:  d.WaitTimeout,
		maxExport:    d.MaxExportMonths,
		logger:       d.Logger.With().Str("component", "api").Logger(),
		router:       mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.instrument)
	r.Use(s.tokens.Middleware)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/calendar/{year:[0-9]{4}}/{month:[0-9]{1,2}}", s.handleCalendar).Methods(http.MethodGet).Name("calendar")

	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost).Name("sessions.create")
	sess := api.PathPrefix("/sessions/{id}").Subrouter()
	sess.HandleFunc("", s.handleGetSession).Methods(http.MethodGet).Name("sessions.get")
	sess.HandleFunc("", s.handleDeleteSession).Methods(http.MethodDelete).Name("sessions.delete")
	sess.HandleFunc("/previous", s.handleNavigate(navPrevious)).Methods(http.MethodPost).Name("sessions.previous")
	sess.HandleFunc("/next", s.handleNavigate(navNext)).Methods(http.MethodPost).Name("sessions.next")
	sess.HandleFunc("/today", s.handleNavigate(navToday)).Methods(http.MethodPost).Name("sessions.today")
	sess.HandleFunc("/refresh", s.handleNavigate(navRefresh)).Methods(http.MethodPost).Name("sessions.refresh")
	sess.HandleFunc("/days/{date}", s.handleDay).Methods(http.MethodGet).Name("sessions.day")
	sess.HandleFunc("/selection", s.handleSelect).Methods(http.MethodPost, http.MethodPut).Name("sessions.select")
	sess.HandleFunc("/selection", s.handleClearSelection).Methods(http.MethodDelete).Name("sessions.clear")
	sess.HandleFunc("/bookings", s.handleBooking).Methods(http.MethodPost).Name("sessions.book")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(access.RequireAdmin)
	admin.HandleFunc("/export/{year:[0-9]{4}}/{month:[0-9]{1,2}}", s.handleExport).Methods(http.MethodGet).Name("admin.export")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Router returns the bare router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler wraps the router with CORS, panic recovery and access logging.
// accessLog may be nil to disable access logging.
func (s *Server) Handler(corsOrigins []string, accessLog io.Writer) http.Handler {
	var h http.Handler = s.router
	if len(corsOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(corsOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Admin-Token"}),
		)(h)
	}
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}), handlers.PrintRecoveryStack(false))(h)
	if accessLog != nil {
		h = handlers.CombinedLoggingHandler(accessLog, h)
	}
	return h
}

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Interface("panic", v).Msg("handler panic")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil && cur.GetName() != "" {
			route = cur.GetName()
		}
		s.metrics.IncHTTP(route, rec.status)
	})
}
