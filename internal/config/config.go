// Package config loads gymdesk settings from gymdesk.yaml with GYMDESK_*
// environment overrides.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"gymdesk/internal/adapters/pdf"
	"gymdesk/internal/application/document"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "gymdesk.yaml"

// EnvProduction enables secure cookies and requires a configured secret.
const EnvProduction = "production"

type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Display struct {
	Timezone        string `yaml:"timezone"`
	DefaultCurrency string `yaml:"default_currency"`
}

type Export struct {
	ReceiptPage     string  `yaml:"receipt_page"`
	InvoicePage     string  `yaml:"invoice_page"`
	MarginMM        float64 `yaml:"margin_mm"`
	Background      string  `yaml:"background"`
	BrowserHeadless bool    `yaml:"browser_headless"`
}

type Email struct {
	ResendKey string `yaml:"resend_key"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
}

type Gym struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
}

// Config is the full gymdesk configuration.
type Config struct {
	Addr      string `yaml:"addr"`
	Env       string `yaml:"env"`
	DBPath    string `yaml:"db_path"`
	SecretKey string `yaml:"secret_key"`

	API     API     `yaml:"api"`
	Display Display `yaml:"display"`
	Export  Export  `yaml:"export"`
	Email   Email   `yaml:"email"`
	Gym     Gym     `yaml:"gym"`

	LogLevel           string   `yaml:"log_level"`
	LogFormat          string   `yaml:"log_format"`
	SlowRequestMs      int      `yaml:"slow_request_ms"`
	SlowUpstreamMs     int      `yaml:"slow_upstream_ms"`
	RateLimitPerSecond int      `yaml:"rate_limit_per_second"`
	TrustedOrigins     []string `yaml:"trusted_origins"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Addr:   ":8080",
		Env:    "development",
		DBPath: "gymdesk.db",
		API: API{
			BaseURL: "http://localhost:8000/api/",
			Timeout: 15 * time.Second,
		},
		Display: Display{Timezone: "UTC", DefaultCurrency: "USD"},
		Export: Export{
			ReceiptPage:     "A5",
			InvoicePage:     "A4",
			MarginMM:        10,
			Background:      "#ffffff",
			BrowserHeadless: true,
		},
		Email: Email{From: "Gym Desk <desk@gymdesk.local>"},
		Gym:   Gym{Name: "Gym Desk"},

		LogLevel:           "info",
		LogFormat:          "text",
		SlowRequestMs:      500,
		SlowUpstreamMs:     500,
		RateLimitPerSecond: 10,
	}
}

// Load reads path over the defaults, then applies GYMDESK_* overrides.
// A missing file is not an error; the defaults and environment are used.
// POST: Returns a validated Config with SecretKey set
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("config_file_missing", "path", path)
		case err != nil:
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		default:
			// Fields absent from the file keep their defaults.
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.ensureSecret(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("GYMDESK_ADDR", &c.Addr)
	str("GYMDESK_ENV", &c.Env)
	str("GYMDESK_API_URL", &c.API.BaseURL)
	str("GYMDESK_SECRET_KEY", &c.SecretKey)
	str("GYMDESK_DB", &c.DBPath)
	str("GYMDESK_RESEND_KEY", &c.Email.ResendKey)
	str("GYMDESK_EMAIL_FROM", &c.Email.From)
	str("GYMDESK_TIMEZONE", &c.Display.Timezone)
	str("GYMDESK_CURRENCY", &c.Display.DefaultCurrency)
	str("GYMDESK_LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("GYMDESK_RATE_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GYMDESK_RATE_LIMIT: %w", err)
		}
		c.RateLimitPerSecond = n
	}
	return nil
}

// ensureSecret generates a throwaway key outside production. Sessions do not
// survive a restart without a configured key.
func (c *Config) ensureSecret() error {
	if c.SecretKey != "" || c.IsProduction() {
		return nil
	}
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Errorf("generate secret key: %w", err)
	}
	c.SecretKey = hex.EncodeToString(b[:])
	slog.Warn("config_event", "event", "ephemeral_secret_key", "hint", "set GYMDESK_SECRET_KEY to keep sessions across restarts")
	return nil
}

// IsProduction reports whether env is production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout cannot be negative")
	}
	if c.SecretKey == "" {
		return errors.New("secret_key is required in production")
	}
	if _, err := c.secretBytes(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := pdf.ParsePageFormat(c.Export.ReceiptPage); err != nil {
		return fmt.Errorf("export.receipt_page: %w", err)
	}
	if _, err := pdf.ParsePageFormat(c.Export.InvoicePage); err != nil {
		return fmt.Errorf("export.invoice_page: %w", err)
	}
	if c.Export.MarginMM < 0 {
		return errors.New("export.margin_mm cannot be negative")
	}
	if len(c.Display.DefaultCurrency) != 3 {
		return fmt.Errorf("display.default_currency %q is not an ISO 4217 code", c.Display.DefaultCurrency)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q (want text or json)", c.LogFormat)
	}
	if c.RateLimitPerSecond < 1 {
		return errors.New("rate_limit_per_second must be at least 1")
	}
	return nil
}

func (c Config) secretBytes() ([]byte, error) {
	b, err := hex.DecodeString(c.SecretKey)
	if err != nil {
		return nil, errors.New("secret_key must be hex encoded")
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("secret_key must be 32 bytes, got %d", len(b))
	}
	return b, nil
}

// CSRFKey derives the 32-byte form token key from the secret.
// PRE: Validate passed
func (c Config) CSRFKey() []byte {
	secret, _ := c.secretBytes()
	key := make([]byte, 32)
	blake3.DeriveKey("gymdesk 2026 csrf auth key", secret, key)
	return key
}

// Location resolves display.timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("display.timezone: %w", err)
	}
	return loc, nil
}

// Level maps log_level onto slog.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return l, nil
}

// Pages returns the receipt and invoice page formats.
// PRE: Validate passed
func (c Config) Pages() (receipt, invoice pdf.PageFormat) {
	receipt, _ = pdf.ParsePageFormat(c.Export.ReceiptPage)
	invoice, _ = pdf.ParsePageFormat(c.Export.InvoicePage)
	return receipt, invoice
}

// GymIdentity is the header printed on documents.
func (c Config) GymIdentity() document.Gym {
	return document.Gym{Name: c.Gym.Name, Address: c.Gym.Address, Email: c.Gym.Email, Phone: c.Gym.Phone}
}

// SlowRequest is the slow_request warning threshold.
func (c Config) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMs) * time.Millisecond
}

// SlowUpstream is the slow_upstream warning threshold.
func (c Config) SlowUpstream() time.Duration {
	return time.Duration(c.SlowUpstreamMs) * time.Millisecond
}

// NewLogger builds the process logger.
func (c Config) NewLogger() *slog.Logger {
	level, _ := c.Level()
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
