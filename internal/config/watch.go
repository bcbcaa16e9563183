package config

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ScheduleWatcherConfig configures a ScheduleWatcher.
type ScheduleWatcherConfig struct {
	Path     string
	Interval time.Duration
	Logger   zerolog.Logger
	// OnReload receives every successfully loaded file, the initial one included.
	OnReload func(*SchedulesConfig)
	// OnError receives reload failures after startup.
	OnError func(error)
}

// ScheduleWatcher polls the schedules file by modification time.
type ScheduleWatcher struct {
	path     string
	interval time.Duration
	logger   zerolog.Logger
	onReload func(*SchedulesConfig)
	onError  func(error)

	mu      sync.Mutex
	lastMod time.Time
	current *SchedulesConfig
}

// NewScheduleWatcher creates a watcher. Nothing is read until Load.
func NewScheduleWatcher(cfg ScheduleWatcherConfig) *ScheduleWatcher {
	if cfg.Path == "" {
		cfg.Path = "configs/schedules.yaml"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &ScheduleWatcher{
		path:     cfg.Path,
		interval: cfg.Interval,
		logger:   cfg.Logger.With().Str("component", "schedules_watcher").Str("path", cfg.Path).Logger(),
		onReload: cfg.OnReload,
		onError:  cfg.OnError,
	}
}

// Load reads the file unconditionally.
func (w *ScheduleWatcher) Load() (*SchedulesConfig, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return nil, err
	}
	sc, err := LoadSchedulesConfig(w.path)
	if err != nil {
		return nil, err
	}
	w.install(sc, info.ModTime())
	return sc, nil
}

// Check reloads the file if it changed since the last attempt.
// A broken file keeps the previous schedules and is not retried until it changes again.
func (w *ScheduleWatcher) Check() (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return false, err
	}
	mod := info.ModTime()

	w.mu.Lock()
	changed := mod.After(w.lastMod)
	if changed {
		w.lastMod = mod
	}
	w.mu.Unlock()
	if !changed {
		return false, nil
	}

	sc, err := LoadSchedulesConfig(w.path)
	if err != nil {
		err = fmt.Errorf("reload schedules: %w", err)
		w.logger.Warn().Err(err).Msg("keeping previous schedules")
		if w.onError != nil {
			w.onError(err)
		}
		return false, err
	}
	w.install(sc, mod)
	w.logger.Info().Int("schedules", len(sc.Schedules)).Msg("schedules reloaded")
	return true, nil
}

func (w *ScheduleWatcher) install(sc *SchedulesConfig, mod time.Time) {
	w.mu.Lock()
	w.current = sc
	w.lastMod = mod
	w.mu.Unlock()
	if w.onReload != nil {
		w.onReload(sc)
	}
}

// Current returns the last loaded schedules, nil before Load.
func (w *ScheduleWatcher) Current() *SchedulesConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Run calls Check every interval until ctx is done.
func (w *ScheduleWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Check(); err != nil && os.IsNotExist(err) {
				w.logger.Debug().Err(err).Msg("schedules file missing")
			}
		}
	}
}
