package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"visitbook/internal/access"
	"visitbook/internal/metrics"
	"visitbook/internal/models"
	"visitbook/internal/navigator"
)

// NavigatorFactory builds a navigator for a session.
type NavigatorFactory func(id string, privilege access.Privilege) *navigator.Navigator

type live struct {
	nav       *navigator.Navigator
	createdAt time.Time
	lastSeen  time.Time
}

// Manager maps session IDs to live navigators and persists their state.
type Manager struct {
	store    Store
	factory  NavigatorFactory
	clock    models.Clock
	idle     time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	onForget func(id string)

	mu       sync.Mutex
	sessions map[string]*live
}

// ManagerConfig holds manager dependencies.
type ManagerConfig struct {
	Store   Store
	Factory NavigatorFactory
	Clock   models.Clock
	// IdleTimeout drops live navigators not used for this long; state stays in Store.
	IdleTimeout time.Duration
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
	// OnForget runs after a live session was dropped.
	OnForget func(id string)
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = models.SystemClock{}
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultTTL
	}
	return &Manager{
		store:    cfg.Store,
		factory:  cfg.Factory,
		clock:    cfg.Clock,
		idle:     cfg.IdleTimeout,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With().Str("component", "session").Logger(),
		onForget: cfg.OnForget,
		sessions: make(map[string]*live),
	}
}

// Create starts a session on the current month and returns its first load.
func (m *Manager) Create(ctx context.Context, privilege access.Privilege) (*navigator.Navigator, *navigator.Pending, error) {
	id := uuid.NewString()
	nav := m.factory(id, privilege)
	pending := nav.Refresh()

	now := m.clock.Now()
	m.mu.Lock()
	m.sessions[id] = &live{nav: nav, createdAt: now, lastSeen: now}
	count := len(m.sessions)
	m.mu.Unlock()
	m.metrics.SetActiveSessions(count)

	if err := m.Persist(ctx, nav); err != nil {
		m.drop(id)
		return nil, nil, err
	}

	m.logger.Info().Str("session_id", id).Str("privilege", privilege.String()).Msg("session created")
	return nav, pending, nil
}

// Get returns the navigator of id, reviving it from the store if needed.
// A revived navigator has its month loaded before Get returns.
func (m *Manager) Get(ctx context.Context, id string) (*navigator.Navigator, error) {
	m.mu.Lock()
	if l, ok := m.sessions[id]; ok {
		l.lastSeen = m.clock.Now()
		m.mu.Unlock()
		return l.nav, nil
	}
	m.mu.Unlock()

	st, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	nav := m.factory(id, st.Privilege)
	sel := m.rehydrate(st.Selection)
	pending := nav.Restore(st.Year, st.Month, sel)

	now := m.clock.Now()
	m.mu.Lock()
	if l, ok := m.sessions[id]; ok {
		// Another request revived it first.
		l.lastSeen = now
		m.mu.Unlock()
		nav.Close()
		return l.nav, nil
	}
	m.sessions[id] = &live{nav: nav, createdAt: st.CreatedAt, lastSeen: now}
	count := len(m.sessions)
	m.mu.Unlock()
	m.metrics.SetActiveSessions(count)

	if _, err := pending.Wait(ctx); err != nil && !errors.Is(err, navigator.ErrSuperseded) {
		return nil, err
	}
	m.logger.Debug().Str("session_id", id).Msg("session restored")
	return nav, nil
}

func (m *Manager) rehydrate(sel *models.BookingSelection) *models.BookingSelection {
	if sel == nil {
		return nil
	}
	loc := m.clock.Now().Location()
	date, err := models.ParseDate(sel.DateKey, loc)
	if err != nil {
		return nil
	}
	restored := models.NewSelection(date, sel.TimeSlot)
	return &restored
}

// Persist saves the cursor and selection of nav.
func (m *Manager) Persist(ctx context.Context, nav *navigator.Navigator) error {
	year, month := nav.Cursor()
	id := nav.SessionID()
	now := m.clock.Now()

	m.mu.Lock()
	created := now
	if l, ok := m.sessions[id]; ok {
		created = l.createdAt
		l.lastSeen = now
	}
	m.mu.Unlock()

	st := &State{
		ID:        id,
		Privilege: nav.Privilege(),
		Year:      year,
		Month:     month,
		Selection: nav.Selection(),
		CreatedAt: created,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, st); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Delete ends a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.drop(id)
	return m.store.Delete(ctx, id)
}

func (m *Manager) drop(id string) {
	m.mu.Lock()
	l, ok := m.sessions[id]
	delete(m.sessions, id)
	count := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return
	}
	l.nav.Close()
	m.metrics.SetActiveSessions(count)
	if m.onForget != nil {
		m.onForget(id)
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Cleanup drops live sessions idle longer than the idle timeout.
func (m *Manager) Cleanup() int {
	now := m.clock.Now()
	m.mu.Lock()
	var expired []string
	for id, l := range m.sessions {
		if now.Sub(l.lastSeen) > m.idle {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.drop(id)
	}
	if len(expired) > 0 {
		m.logger.Debug().Int("removed", len(expired)).Msg("idle sessions dropped")
	}
	return len(expired)
}

// Run calls Cleanup every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			m.Cleanup()
			if ms, ok := m.store.(*MemoryStore); ok {
				ms.Cleanup()
			}
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.drop(id)
	}
}
