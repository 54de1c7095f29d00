package main

import (
	"fmt"
	"log/slog"

	"gymdesk/internal/adapters/api"
	"gymdesk/internal/adapters/email"
	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/adapters/pdf"
	"gymdesk/internal/adapters/snapshot"
	"gymdesk/internal/application/document"
	"gymdesk/internal/application/format"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/config"
)

// newBackend builds the backend client. collector may be nil.
func newBackend(cfg config.Config, collector *perf.Collector) (*api.Backend, error) {
	opts := []api.Option{api.WithSlowThreshold(cfg.SlowUpstream())}
	if collector != nil {
		opts = append(opts, api.WithCollector(collector))
	}
	client, err := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, opts...)
	if err != nil {
		return nil, err
	}
	return api.NewBackend(client), nil
}

// newExportDeps wires the document renderer, rasterizer and PDF writer.
func newExportDeps(cfg config.Config, renderer *document.Renderer, raster orchestrators.Rasterizer) (orchestrators.ExportDeps, error) {
	loc, err := cfg.Location()
	if err != nil {
		return orchestrators.ExportDeps{}, err
	}
	receipt, invoice := cfg.Pages()
	return orchestrators.ExportDeps{
		Renderer:    renderer,
		Rasterizer:  raster,
		PDF:         pdf.NewWriter(),
		Guard:       orchestrators.NewInFlight(),
		Formatter:   format.New(loc, cfg.Display.DefaultCurrency),
		Gym:         cfg.GymIdentity(),
		ReceiptPage: receipt,
		InvoicePage: invoice,
		MarginMM:    cfg.Export.MarginMM,
	}, nil
}

func newBrowser(cfg config.Config) *snapshot.Browser {
	return snapshot.NewBrowser(snapshot.Options{Headless: cfg.Export.BrowserHeadless})
}

func newRenderer(cfg config.Config) (*document.Renderer, error) {
	r, err := document.NewRenderer(cfg.Export.Background)
	if err != nil {
		return nil, fmt.Errorf("document renderer: %w", err)
	}
	return r, nil
}

// newSender picks Resend when a key is configured.
func newSender(cfg config.Config) email.Sender {
	if cfg.Email.ResendKey != "" {
		slog.Info("email_sender_configured", "provider", "resend", "from", cfg.Email.From)
		return email.NewResendSender(cfg.Email.ResendKey, cfg.Email.From, cfg.Email.ReplyTo)
	}
	if cfg.IsProduction() {
		slog.Warn("email_sender_configured", "provider", "noop", "hint", "GYMDESK_RESEND_KEY is not set, document emails are disabled")
	} else {
		slog.Info("email_sender_configured", "provider", "noop")
	}
	return email.NewNoopSender()
}
