package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port default: got %q", cfg.Port)
	}
	if cfg.CatalogTTL != 5*time.Minute {
		t.Errorf("CatalogTTL default: got %v", cfg.CatalogTTL)
	}
	if cfg.ActivityDebounce != 60*time.Second {
		t.Errorf("ActivityDebounce default: got %v", cfg.ActivityDebounce)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode default: got %q", cfg.GinMode)
	}
}

func TestLoad_NormalizesValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("GIN_MODE", "bogus")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected warning normalized to warn, got %q", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("expected bogus gin mode coerced to release, got %q", cfg.GinMode)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "noisy")
	if _, err := Load(); err == nil {
		t.Error("expected error for bad LOG_LEVEL")
	}
	t.Setenv("LOG_LEVEL", "info")

	t.Setenv("RATE_BURST", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero RATE_BURST")
	}
	t.Setenv("RATE_BURST", "20")

	t.Setenv("CATALOG_TTL", "-5m")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative CATALOG_TTL")
	}
}

func TestLoad_TrimsTrailingSlashes(t *testing.T) {
	t.Setenv("WC_API_URL", "https://shop.example/wp-json/wc/v3/")
	t.Setenv("WEBAPP_URL", "https://app.example/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Woo.APIURL != "https://shop.example/wp-json/wc/v3" {
		t.Errorf("WC_API_URL not trimmed: %q", cfg.Woo.APIURL)
	}
	if cfg.WebAppURL != "https://app.example" {
		t.Errorf("WEBAPP_URL not trimmed: %q", cfg.WebAppURL)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected result: %v", got)
	}
	if splitCSV("") != nil {
		t.Fatal("empty input must yield nil")
	}
}
