package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.BalancePollInterval != 3*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.BalancePollInterval)
	}
	if cfg.SubmitTimeout != 30*time.Second || cfg.LogFormat != "text" {
		t.Fatalf("unexpected submit timeout %s / log format %q", cfg.SubmitTimeout, cfg.LogFormat)
	}
	if cfg.RemoteDefaults.PayExtraPresetsCents != [3]int64{200, 500, 1500} {
		t.Fatalf("unexpected presets %v", cfg.RemoteDefaults.PayExtraPresetsCents)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("BALANCE_POLL_INTERVAL_MS", "250")
	t.Setenv("ALTERNATE_PROCESSOR_ENABLED", "true")
	t.Setenv("ALTERNATE_PROCESSOR_MAX_CENTS", "1000")
	t.Setenv("PAY_EXTRA_PRESETS_CENTS", "100, 300,900")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.BalancePollInterval != 250*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", cfg.BalancePollInterval)
	}
	if !cfg.RemoteDefaults.AlternateProcessorEnabled || cfg.RemoteDefaults.AlternateProcessorMaxCents != 1000 {
		t.Fatalf("unexpected remote defaults %+v", cfg.RemoteDefaults)
	}
	if cfg.RemoteDefaults.PayExtraPresetsCents != [3]int64{100, 300, 900} {
		t.Fatalf("unexpected presets %v", cfg.RemoteDefaults.PayExtraPresetsCents)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnvIgnoresMalformedPresets(t *testing.T) {
	t.Setenv("PAY_EXTRA_PRESETS_CENTS", "1,2")
	if got := FromEnv().RemoteDefaults.PayExtraPresetsCents; got != [3]int64{200, 500, 1500} {
		t.Fatalf("expected defaults, got %v", got)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("MIN_TOP_UP_CENTS=350\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("MIN_TOP_UP_CENTS", "")
	os.Unsetenv("MIN_TOP_UP_CENTS")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RemoteDefaults.MinTopUpCents != 350 {
		t.Fatalf("expected 350, got %d", cfg.RemoteDefaults.MinTopUpCents)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}
