package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gymdesk.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "nope.yaml"), env(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if cfg.Addr != want.Addr || cfg.Export.ReceiptPage != "A5" || cfg.Export.InvoicePage != "A4" || cfg.Display.DefaultCurrency != "USD" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.SecretKey) != 64 {
		t.Errorf("development secret should be generated, got %q", cfg.SecretKey)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
addr: ":9000"
secret_key: "`+testSecret+`"
api:
  base_url: https://api.gym.test/api/
  timeout: 3s
display:
  timezone: Asia/Dhaka
  default_currency: BDT
export:
  margin_mm: 12.5
gym:
  name: Iron Temple
`)
	cfg, err := load(path, env(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.API.Timeout != 3*time.Second || cfg.Display.DefaultCurrency != "BDT" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Export.MarginMM != 12.5 || cfg.Export.ReceiptPage != "A5" {
		t.Errorf("export = %+v", cfg.Export)
	}
	if cfg.GymIdentity().Name != "Iron Temple" {
		t.Errorf("gym = %+v", cfg.GymIdentity())
	}
	loc, _ := cfg.Location()
	if loc.String() != "Asia/Dhaka" {
		t.Errorf("loc = %s", loc)
	}
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := writeFile(t, "addr: \":9000\"\nlog_level: warn\n")
	cfg, err := load(path, env(map[string]string{
		"GYMDESK_ADDR":       ":7000",
		"GYMDESK_SECRET_KEY": testSecret,
		"GYMDESK_CURRENCY":   "EUR",
		"GYMDESK_RATE_LIMIT": "50",
		"GYMDESK_LOG_LEVEL":  "",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7000" || cfg.SecretKey != testSecret || cfg.Display.DefaultCurrency != "EUR" || cfg.RateLimitPerSecond != 50 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("empty env value should not override, log_level = %q", cfg.LogLevel)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		vars    map[string]string
		wantErr string
	}{
		{"bad yaml", "addr: [", nil, "parsing"},
		{"production without secret", "env: production\n", nil, "secret_key is required"},
		{"short secret", "secret_key: abcd\n", nil, "32 bytes"},
		{"non-hex secret", "secret_key: not-hex\n", nil, "hex"},
		{"unknown page", "export:\n  receipt_page: B5\n", nil, "receipt_page"},
		{"negative margin", "export:\n  margin_mm: -1\n", nil, "margin_mm"},
		{"unknown zone", "display:\n  timezone: Mars/Olympus\n", nil, "timezone"},
		{"bad rate env", "", map[string]string{"GYMDESK_RATE_LIMIT": "fast"}, "GYMDESK_RATE_LIMIT"},
		{"bad log format", "log_format: xml\n", nil, "log_format"},
		{"bad log level", "log_level: loud\n", nil, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeFile(t, tt.file), env(tt.vars))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCSRFKey_DerivedFromSecret(t *testing.T) {
	a := Config{SecretKey: testSecret}
	b := Config{SecretKey: strings.Repeat("ab", 32)}
	ka, kb := a.CSRFKey(), b.CSRFKey()
	if len(ka) != 32 {
		t.Fatalf("len = %d", len(ka))
	}
	if bytes.Equal(ka, kb) {
		t.Error("different secrets gave the same key")
	}
	if !bytes.Equal(ka, a.CSRFKey()) {
		t.Error("key is not stable")
	}
	if bytes.Contains([]byte(testSecret), ka) {
		t.Error("key should not be the raw secret")
	}
}

func TestPages(t *testing.T) {
	cfg := Default()
	cfg.Export.InvoicePage = "letter"
	receipt, invoice := cfg.Pages()
	if receipt.Name != "A5" || invoice.Name != "Letter" {
		t.Errorf("pages = %s, %s", receipt.Name, invoice.Name)
	}
}
