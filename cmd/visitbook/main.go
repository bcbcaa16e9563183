package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"visitbook/internal/access"
	"visitbook/internal/api"
	"visitbook/internal/availability"
	"visitbook/internal/booking"
	"visitbook/internal/bookingapi"
	"visitbook/internal/config"
	"visitbook/internal/density"
	"visitbook/internal/events"
	"visitbook/internal/metrics"
	"visitbook/internal/models"
	"visitbook/internal/navigator"
	"visitbook/internal/schedule"
	"visitbook/internal/session"
	"visitbook/internal/slots"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("visitbook failed")
	}
}

// run owns every deferred cleanup; only main exits.
func run(logger zerolog.Logger) error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(os.Getenv("VISITBOOK_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	clock := models.SystemClock{Location: loc}
	m := metrics.New(nil)

	client := bookingapi.NewClient(cfg.BookingAPI.BaseURL, cfg.BookingAPI.APIKey, cfg.BookingAPI.APIExtra, cfg.BookingAPITimeout())

	var source schedule.Source = client.ScheduleSource()
	if cfg.Schedule.Source == config.ScheduleSourceFile {
		fileSource := schedule.NewFileSource(nil)
		watcher := config.NewScheduleWatcher(config.ScheduleWatcherConfig{
			Path:     cfg.Schedule.FilePath,
			Interval: cfg.ScheduleReloadInterval(),
			Logger:   logger,
			OnReload: func(sc *config.SchedulesConfig) {
				fileSource.Replace(sc.Schedules)
				m.IncScheduleReload("ok")
			},
			OnError: func(error) { m.IncScheduleReload("error") },
		})
		if _, err := watcher.Load(); err != nil {
			return fmt.Errorf("load schedules file %s: %w", cfg.Schedule.FilePath, err)
		}
		go watcher.Run(ctx)
		source = fileSource
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	resolver := schedule.NewResolver(source, &logger)
	gen := slots.NewGenerator(cfg.Booking.SlotMinutes)
	agg := density.NewAggregator(gen, cfg.Booking.SlotCapacity)
	avail := availability.NewService(resolver, client.DensitySource(), agg, clock, m, logger)
	bus := events.NewEventBus(logger)

	validator := booking.NewValidator(resolver, gen, clock, cfg.Booking.SlotCapacity, cfg.Booking.HorizonMonths)
	bookings := booking.NewService(validator, client, bus, m, booking.ServiceConfig{
		MaxPartySize:         cfg.Booking.MaxPartySize,
		SubmissionsPerMinute: cfg.Booking.SubmissionsPerMinute,
	}, logger)

	var store session.Store = session.NewMemoryStore(cfg.SessionTTL(), clock)
	if rdb != nil {
		store = session.NewRedisStore(rdb, "", cfg.SessionTTL())
	}
	manager := session.NewManager(session.ManagerConfig{
		Store: store,
		Factory: func(id string, p access.Privilege) *navigator.Navigator {
			return navigator.New(navigator.Config{
				SessionID: id,
				Privilege: p,
				Loader:    avail,
				Clock:     clock,
				Bus:       bus,
				Metrics:   m,
				Logger:    logger,
			})
		},
		Clock:       clock,
		IdleTimeout: cfg.SessionTTL(),
		Metrics:     m,
		Logger:      logger,
		OnForget:    bookings.Forget,
	})
	go manager.Run(ctx, cfg.SessionCleanupInterval())

	server := api.NewServer(api.Deps{
		Sessions:     manager,
		Availability: avail,
		Bookings:     bookings,
		Tokens:       access.NewTokenChecker(cfg.Access.AdminTokens, logger),
		Metrics:      m,
		Location:     loc,
		Logger:       logger,
	})

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, client, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().
		Str("address", cfg.Server.Address).
		Str("schedule_source", cfg.Schedule.Source).
		Str("timezone", loc.String()).
		Bool("redis", rdb != nil).
		Msg("visitbook started")

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Handler(cfg.Server.CORSOrigins, logger),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	logger.Info().Msg("visitbook stopped")
	return nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if strings.EqualFold(cfg.Logging.Format, "json") {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func startHealthServer(ctx context.Context, port int, client *bookingapi.Client, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.HealthCheck(ctxPing); err != nil {
			http.Error(w, "booking service not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
