// Package navigator keeps a session's month cursor and applies month loads in request order.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"visitbook/internal/access"
	"visitbook/internal/availability"
	"visitbook/internal/events"
	"visitbook/internal/metrics"
	"visitbook/internal/models"
)

var (
	// ErrSuperseded is returned by Pending.Wait when a newer navigation replaced the request.
	ErrSuperseded = errors.New("navigation superseded by a newer request")
	// ErrNotLoaded means no month view has been applied yet.
	ErrNotLoaded = errors.New("month not loaded yet")
	// ErrOutsideMonth means the date is not in the month under the cursor.
	ErrOutsideMonth = errors.New("date outside current month")
	// ErrDayUnavailable means the day cannot take a selection.
	ErrDayUnavailable = errors.New("day not available")
	// ErrSlotUnavailable means the slot is not offered on the day.
	ErrSlotUnavailable = errors.New("slot not available")
)

// DefaultLoadTimeout bounds one month load.
const DefaultLoadTimeout = 15 * time.Second

// Loader loads a month view; it must not fail.
type Loader interface {
	LoadMonth(ctx context.Context, year int, month time.Month, privilege access.Privilege) *availability.MonthView
}

// Config holds navigator dependencies.
type Config struct {
	SessionID   string
	Privilege   access.Privilege
	Loader      Loader
	Clock       models.Clock
	Bus         *events.EventBus
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	LoadTimeout time.Duration
}

// Navigator is the per-session month cursor.
type Navigator struct {
	sessionID   string
	privilege   access.Privilege
	loader      Loader
	clock       models.Clock
	bus         *events.EventBus
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	loadTimeout time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc
	unsub   func()

	mu        sync.Mutex
	year      int
	month     time.Month
	seq       uint64
	applied   uint64
	view      *availability.MonthView
	selection *models.BookingSelection
	// refreshDue is set when a booking landed in the month of an in-flight load.
	refreshDue bool
}

// New creates a navigator positioned on the current month. No load is issued until a command runs.
func New(cfg Config) *Navigator {
	if cfg.Clock == nil {
		cfg.Clock = models.SystemClock{}
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	now := cfg.Clock.Now()

	n := &Navigator{
		sessionID:   cfg.SessionID,
		privilege:   cfg.Privilege,
		loader:      cfg.Loader,
		clock:       cfg.Clock,
		bus:         cfg.Bus,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger.With().Str("component", "navigator").Str("session_id", cfg.SessionID).Logger(),
		loadTimeout: cfg.LoadTimeout,
		baseCtx:     ctx,
		cancel:      cancel,
		year:        now.Year(),
		month:       now.Month(),
	}
	if n.bus != nil {
		n.unsub = events.On(n.bus, events.TopicBookingCreated, n.onBookingCreated)
	}
	return n
}

// Close stops in-flight loads from being applied and drops the event subscription.
func (n *Navigator) Close() {
	n.cancel()
	if n.unsub != nil {
		n.unsub()
	}
}

// SessionID returns the owning session.
func (n *Navigator) SessionID() string {
	return n.sessionID
}

// Privilege returns the privilege loads are issued with.
func (n *Navigator) Privilege() access.Privilege {
	return n.privilege
}

// Previous moves the cursor one month back.
func (n *Navigator) Previous() *Pending {
	return n.move(func(y int, m time.Month) (int, time.Month) { return models.ShiftMonth(y, m, -1) }, true)
}

// Next moves the cursor one month forward.
func (n *Navigator) Next() *Pending {
	return n.move(func(y int, m time.Month) (int, time.Month) { return models.ShiftMonth(y, m, 1) }, true)
}

// Today moves the cursor to the current month.
func (n *Navigator) Today() *Pending {
	now := n.clock.Now()
	return n.move(func(int, time.Month) (int, time.Month) { return now.Year(), now.Month() }, true)
}

// GoTo moves the cursor to (year, month).
func (n *Navigator) GoTo(year int, month time.Month) *Pending {
	return n.move(func(int, time.Month) (int, time.Month) { return year, month }, true)
}

// Refresh reloads the current month and keeps the selection.
func (n *Navigator) Refresh() *Pending {
	return n.move(func(y int, m time.Month) (int, time.Month) { return y, m }, false)
}

// Restore positions the cursor and selection from saved state and loads the month.
func (n *Navigator) Restore(year int, month time.Month, selection *models.BookingSelection) *Pending {
	n.mu.Lock()
	if selection != nil {
		sel := *selection
		n.selection = &sel
	}
	n.mu.Unlock()
	return n.move(func(int, time.Month) (int, time.Month) { return year, month }, false)
}

func (n *Navigator) move(target func(int, time.Month) (int, time.Month), clearSelection bool) *Pending {
	n.mu.Lock()
	n.year, n.month = target(n.year, n.month)
	n.seq++
	p := newPending(n.seq, n.year, n.month)
	cleared := clearSelection && n.selection != nil
	if clearSelection {
		n.selection = nil
	}
	n.mu.Unlock()

	if cleared {
		events.Emit(n.bus, events.TopicSelectionChanged, events.SelectionChanged{SessionID: n.sessionID})
	}

	go n.load(p)
	return p
}

func (n *Navigator) load(p *Pending) {
	ctx, cancel := context.WithTimeout(n.baseCtx, n.loadTimeout)
	defer cancel()

	view := n.loader.LoadMonth(ctx, p.year, p.month, n.privilege)
	n.apply(p, view)
}

// apply installs view only if p is still the latest request.
func (n *Navigator) apply(p *Pending, view *availability.MonthView) {
	n.mu.Lock()
	latest := n.seq
	closed := n.baseCtx.Err() != nil
	stale := p.seq != latest || closed || view == nil
	refresh := false
	if !stale {
		n.view = view
		n.applied = p.seq
		refresh = n.refreshDue
		n.refreshDue = false
	}
	n.mu.Unlock()

	if stale {
		n.metrics.IncStale()
		n.logger.Debug().
			Uint64("sequence", p.seq).
			Uint64("latest", latest).
			Msg("discarding stale month load")
		p.resolve(nil, ErrSuperseded)
		return
	}

	events.Emit(n.bus, events.TopicMonthLoaded, events.MonthLoaded{
		SessionID:        n.sessionID,
		Year:             view.Year,
		Month:            view.Month,
		Sequence:         p.seq,
		Degraded:         view.Degraded,
		ScheduleFallback: view.ScheduleFallback,
	})
	p.resolve(view, nil)

	if refresh {
		n.Refresh()
	}
}

func (n *Navigator) onBookingCreated(e events.BookingCreated) error {
	n.mu.Lock()
	inMonth := e.Date.Year() == n.year && e.Date.Month() == n.month
	inFlight := n.seq != n.applied
	if inMonth && inFlight {
		// The pending load is not superseded; it is followed by a refresh instead.
		n.refreshDue = true
	}
	n.mu.Unlock()

	if inMonth && !inFlight && n.baseCtx.Err() == nil {
		n.Refresh()
	}
	return nil
}

// Cursor returns the month under the cursor.
func (n *Navigator) Cursor() (int, time.Month) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.year, n.month
}

// View returns the last applied view, nil before the first load completes.
func (n *Navigator) View() *availability.MonthView {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view
}

// Sequence returns the latest issued and the last applied request numbers.
func (n *Navigator) Sequence() (issued, applied uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq, n.applied
}

// DayStatus returns the status of date in the applied view.
func (n *Navigator) DayStatus(date time.Time) (models.DayStatus, error) {
	view := n.View()
	if view == nil {
		return "", ErrNotLoaded
	}
	status, ok := view.DayStatus(date)
	if !ok {
		return "", ErrOutsideMonth
	}
	return status, nil
}

// Selection returns a copy of the current selection.
func (n *Navigator) Selection() *models.BookingSelection {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.selection == nil {
		return nil
	}
	sel := *n.selection
	return &sel
}

// SelectDate selects a bookable day of the current month.
func (n *Navigator) SelectDate(date time.Time) (models.BookingSelection, error) {
	return n.selectDay(date, "")
}

// SelectDateAndTime selects a day and one of its offered slots.
func (n *Navigator) SelectDateAndTime(date time.Time, slotKey string) (models.BookingSelection, error) {
	slot, err := models.ParseTimeSlot(slotKey)
	if err != nil {
		return models.BookingSelection{}, fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	return n.selectDay(date, slot.Key())
}

func (n *Navigator) selectDay(date time.Time, slotKey string) (models.BookingSelection, error) {
	n.mu.Lock()
	view := n.view
	if view == nil {
		n.mu.Unlock()
		return models.BookingSelection{}, ErrNotLoaded
	}
	day, ok := view.Day(date)
	if !ok {
		n.mu.Unlock()
		return models.BookingSelection{}, ErrOutsideMonth
	}
	if !day.Status.Bookable() {
		n.mu.Unlock()
		return models.BookingSelection{}, fmt.Errorf("%w: %s", ErrDayUnavailable, day.Status)
	}
	if slotKey != "" && !hasSlot(day, slotKey) {
		n.mu.Unlock()
		return models.BookingSelection{}, fmt.Errorf("%w: %s", ErrSlotUnavailable, slotKey)
	}

	sel := models.NewSelection(day.Date, slotKey)
	n.selection = &sel
	n.mu.Unlock()

	out := sel
	events.Emit(n.bus, events.TopicSelectionChanged, events.SelectionChanged{SessionID: n.sessionID, Selection: &out})
	return sel, nil
}

func hasSlot(day *models.DayDensity, key string) bool {
	for _, s := range day.Slots {
		if s.Key() == key {
			return true
		}
	}
	return false
}

// ClearSelection discards the selection.
func (n *Navigator) ClearSelection() {
	n.mu.Lock()
	had := n.selection != nil
	n.selection = nil
	n.mu.Unlock()

	if had {
		events.Emit(n.bus, events.TopicSelectionChanged, events.SelectionChanged{SessionID: n.sessionID})
	}
}
