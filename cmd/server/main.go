package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"ev-dashboard/internal/alerts"
	"ev-dashboard/internal/config"
	"ev-dashboard/internal/events"
	"ev-dashboard/internal/httpapi"
	"ev-dashboard/internal/hub"
	"ev-dashboard/internal/ledger"
	"ev-dashboard/internal/settings"
)

func main() {
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if err := config.Validate(cfg); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DBDriver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
	}
	store, err := ledger.Open(cfg.DBDriver, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	settingsStore, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		return err
	}
	current := settingsStore.Get()

	notifier := alerts.NewNotifier(cfg.AlertCooldown, current.ValueThreshold)
	go notifier.RunCleanup(ctx, 10*time.Minute)

	h := hub.New(originChecker(cfg.CORSOrigins))
	go h.Run(ctx)

	sinks := ledger.MultiSink{h, notifier}
	if cfg.RedisURL != "" {
		client, err := events.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		sinks = append(sinks, events.NewStreamPublisher(client, cfg.RedisStream))
	}

	svc := ledger.NewService(store, sinks)
	handler := httpapi.NewHandler(svc, settingsStore, notifier)
	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		WebSocket:   h.Handler(ctx),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	notifier.LogStartup(fmt.Sprintf(" port=%s db=%s redis=%s bankroll=%.2f %s policy=%s",
		cfg.Port, cfg.DBDriver, config.FormatDSN(cfg.RedisURL),
		current.Bankroll, current.Currency, current.Policy.Kind))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// originChecker applies the CORS allow-list to websocket upgrades.
func originChecker(origins []string) func(r *http.Request) bool {
	for _, o := range origins {
		if o == "*" {
			return nil
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
