package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	web "gymdesk/internal/adapters/http"
	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/adapters/storage"
	outboxStore "gymdesk/internal/adapters/storage/outbox"
	sessionStore "gymdesk/internal/adapters/storage/session"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/recordstore"
	"gymdesk/internal/config"
	domainOutbox "gymdesk/internal/domain/outbox"
)

const (
	recordTTL       = 5 * time.Minute
	recordIdle      = 30 * time.Minute
	janitorInterval = 10 * time.Minute
	outboxInterval  = time.Minute
	shutdownTimeout = 15 * time.Second
)

func newServeCmd(load func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	sealer, err := sessionStore.NewSealer(cfg.SecretKey)
	if err != nil {
		return err
	}
	sessions := sessionStore.NewSQLiteStore(timedDB, sealer)
	outbox := outboxStore.NewSQLiteStore(timedDB)

	backend, err := newBackend(cfg, collector)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	browser := newBrowser(cfg)
	defer browser.Close()
	exportDeps, err := newExportDeps(cfg, renderer, browser)
	if err != nil {
		return err
	}
	sender := newSender(cfg)

	processor := orchestrators.NewOutboxProcessor(outbox, map[string]orchestrators.ActionExecutor{
		domainOutbox.ActionTypeReceiptEmail: &orchestrators.DocumentEmailExecutor{Kind: domainOutbox.ActionTypeReceiptEmail, Export: exportDeps, Sender: sender},
		domainOutbox.ActionTypeInvoiceEmail: &orchestrators.DocumentEmailExecutor{Kind: domainOutbox.ActionTypeInvoiceEmail, Export: exportDeps, Sender: sender},
	})
	workerDone := orchestrators.StartBackgroundWorker(ctx, processor, outboxInterval)

	records := recordstore.NewRegistry(recordTTL)
	janitorDone := startJanitor(ctx, sessions, records)

	web.RateLimitPerSecond = cfg.RateLimitPerSecond
	handler := web.NewMux(web.Deps{
		Backend:        backend,
		Sessions:       sessions,
		Records:        records,
		Outbox:         outbox,
		Processor:      processor,
		Export:         exportDeps,
		Sender:         sender,
		Documents:      renderer,
		Collector:      collector,
		CSRFKey:        cfg.CSRFKey(),
		TrustedOrigins: cfg.TrustedOrigins,
		Production:     cfg.IsProduction(),
		SlowRequest:    cfg.SlowRequest(),
	})
	defer web.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"backend", backend.Client.BaseURL(), "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err.Error())
	}
	<-workerDone
	<-janitorDone
	return nil
}

// startJanitor drops expired sessions and idle record caches until ctx ends.
func startJanitor(ctx context.Context, sessions sessionStore.Store, records *recordstore.Registry) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := sessions.DeleteExpired(ctx, time.Now())
				if err != nil {
					slog.Error("session_sweep_failed", "error", err.Error())
				} else if n > 0 {
					slog.Info("session_event", "event", "expired_deleted", "count", n)
				}
				if dropped := records.Sweep(recordIdle); dropped > 0 {
					slog.Debug("record_cache_swept", "sessions", dropped)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}
