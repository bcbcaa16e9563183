package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"visitbook/internal/bookingapi"
	"visitbook/internal/events"
	"visitbook/internal/metrics"
	"visitbook/internal/models"
)

// Booker creates bookings at the booking service.
type Booker interface {
	CreateBooking(ctx context.Context, req bookingapi.CreateBookingRequest) (*bookingapi.CreateBookingResponse, error)
}

// Request is a visitor's submission.
type Request struct {
	Selection      models.BookingSelection
	PartySize      int
	GuideRequested bool
	Contact        bookingapi.Contact
	Notes          string
	// Occupancy of the selected day, nil when unknown.
	Occupancy models.SlotOccupancy
}

// Confirmation is returned for an accepted booking.
type Confirmation struct {
	BookingID string `json:"booking_id,omitempty"`
	Date      string `json:"date"`
	TimeSlot  string `json:"time_slot"`
	Message   string `json:"message"`
}

// ServiceConfig tunes submission limits.
type ServiceConfig struct {
	MaxPartySize         int
	SubmissionsPerMinute int
}

// Service validates and submits bookings.
type Service struct {
	validator *Validator
	booker    Booker
	bus       *events.EventBus
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	cfg       ServiceConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewService creates a submission service.
func NewService(validator *Validator, booker Booker, bus *events.EventBus, m *metrics.Metrics, cfg ServiceConfig, logger zerolog.Logger) *Service {
	if cfg.MaxPartySize <= 0 {
		cfg.MaxPartySize = 20
	}
	if cfg.SubmissionsPerMinute <= 0 {
		cfg.SubmissionsPerMinute = 3
	}
	return &Service{
		validator: validator,
		booker:    booker,
		bus:       bus,
		metrics:   m,
		logger:    logger.With().Str("component", "booking").Logger(),
		cfg:       cfg,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Validator returns the local selection validator.
func (s *Service) Validator() *Validator {
	return s.validator
}

// Submit validates req locally and posts it. Rejections by the booking service are not retried.
func (s *Service) Submit(ctx context.Context, sessionID string, req Request) (*Confirmation, error) {
	if !s.limiter(sessionID).Allow() {
		s.metrics.IncSubmission("rate_limited")
		return nil, ErrRateLimited
	}

	if err := s.checkRequest(req); err != nil {
		s.metrics.IncSubmission("invalid_request")
		return nil, err
	}

	if !req.Selection.HasSlot() {
		s.metrics.IncRejection(ReasonMalformed)
		return nil, invalid(ReasonMalformed, "a time slot must be selected")
	}

	slotKey, err := s.validator.Validate(ctx, req.Selection.Date, req.Selection.TimeSlot, req.Occupancy)
	if err != nil {
		var inv *InvalidSelectionError
		if errors.As(err, &inv) {
			s.metrics.IncRejection(inv.Reason)
		}
		s.metrics.IncSubmission("invalid_selection")
		return nil, err
	}

	dateKey := models.DateKey(req.Selection.Date)
	resp, err := s.booker.CreateBooking(ctx, bookingapi.CreateBookingRequest{
		Date:           dateKey,
		Time:           slotKey,
		PartySize:      req.PartySize,
		GuideRequested: req.GuideRequested,
		Contact:        req.Contact,
		Notes:          req.Notes,
	})
	if err != nil {
		var apiErr *bookingapi.APIError
		if errors.As(err, &apiErr) {
			s.metrics.IncSubmission("rejected")
			s.logger.Info().
				Str("session_id", sessionID).
				Str("date", dateKey).
				Str("slot", slotKey).
				Int("status", apiErr.StatusCode).
				Msg("booking rejected")
			return nil, &RejectedError{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		s.metrics.IncSubmission("error")
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("booking submission failed")
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	s.metrics.IncSubmission("accepted")
	s.logger.Info().
		Str("session_id", sessionID).
		Str("booking_id", resp.BookingID).
		Str("date", dateKey).
		Str("slot", slotKey).
		Int("party_size", req.PartySize).
		Msg("booking created")

	events.Emit(s.bus, events.TopicBookingCreated, events.BookingCreated{
		SessionID: sessionID,
		BookingID: resp.BookingID,
		Date:      req.Selection.Date,
		TimeSlot:  slotKey,
	})

	return &Confirmation{
		BookingID: resp.BookingID,
		Date:      dateKey,
		TimeSlot:  slotKey,
		Message:   resp.Message,
	}, nil
}

func (s *Service) checkRequest(req Request) error {
	if req.PartySize < 1 || req.PartySize > s.cfg.MaxPartySize {
		return fmt.Errorf("%w: party size must be between 1 and %d", ErrInvalidRequest, s.cfg.MaxPartySize)
	}
	if strings.TrimSpace(req.Contact.Name) == "" {
		return fmt.Errorf("%w: contact name is required", ErrInvalidRequest)
	}
	email := strings.TrimSpace(req.Contact.Email)
	phone := strings.TrimSpace(req.Contact.Phone)
	if email == "" && phone == "" {
		return fmt.Errorf("%w: email or phone is required", ErrInvalidRequest)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: invalid email", ErrInvalidRequest)
		}
	}
	return nil
}

func (s *Service) limiter(sessionID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[sessionID]
	if !ok {
		n := s.cfg.SubmissionsPerMinute
		l = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
		s.limiters[sessionID] = l
	}
	return l
}

// Forget drops the limiter of a session.
func (s *Service) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.limiters, sessionID)
	s.mu.Unlock()
}
