// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the
// HTTP server, Telegram bot, Billz inventory provider, WooCommerce backend,
// logging, rate limiting, and the catalog cache.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// BillzConfig defines access to the Billz point-of-sale inventory API.
type BillzConfig struct {
	AuthURL     string // BILLZ_AUTH_URL
	ProductsURL string // BILLZ_PRODUCTS_URL
	SecretToken string // BILLZ_SECRET_TOKEN
	ShopID      string // DESIRED_SHOP_ID (only products stocked here are listed)
}

// WooConfig defines access to the WooCommerce order backend.
type WooConfig struct {
	APIURL         string // WC_API_URL (e.g. https://shop.example/wp-json/wc/v3)
	ConsumerKey    string // WC_CONSUMER_KEY
	ConsumerSecret string // WC_CONSUMER_SECRET
	SiteURL        string // WC_SITE_URL (base for payment-page links)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Telegram
	BotToken  string // TELEGRAM_BOT_TOKEN
	WebAppURL string // WEBAPP_URL (storefront web view base)

	// Upstream providers
	Billz BillzConfig
	Woo   WooConfig

	// App
	DBPath           string        // SQLite path
	CatalogTTL       time.Duration // catalog cache window (default 5m)
	ActivityDebounce time.Duration // min gap between last-activity writes

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS CORSConfig

	// Keep-alive
	SelfPingURL string // SELF_PING_URL (empty disables the pinger)
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "3000"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Telegram
		BotToken:  getenv("TELEGRAM_BOT_TOKEN", ""),
		WebAppURL: strings.TrimRight(getenv("WEBAPP_URL", ""), "/"),

		// Upstream providers
		Billz: BillzConfig{
			AuthURL:     getenv("BILLZ_AUTH_URL", ""),
			ProductsURL: getenv("BILLZ_PRODUCTS_URL", ""),
			SecretToken: getenv("BILLZ_SECRET_TOKEN", ""),
			ShopID:      getenv("DESIRED_SHOP_ID", ""),
		},
		Woo: WooConfig{
			APIURL:         strings.TrimRight(getenv("WC_API_URL", ""), "/"),
			ConsumerKey:    getenv("WC_CONSUMER_KEY", ""),
			ConsumerSecret: getenv("WC_CONSUMER_SECRET", ""),
			SiteURL:        strings.TrimRight(getenv("WC_SITE_URL", "https://mrclub.uz"), "/"),
		},

		// App
		DBPath:           getenv("DB_PATH", "storefront.db"),
		CatalogTTL:       getdur("CATALOG_TTL", 5*time.Minute),
		ActivityDebounce: getdur("ACTIVITY_DEBOUNCE", 60*time.Second),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 10.0),
		RateBurst: getint("RATE_BURST", 20),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},

		// Keep-alive
		SelfPingURL: getenv("SELF_PING_URL", ""),
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.CatalogTTL <= 0 {
		return cfg, errors.New("CATALOG_TTL must be > 0")
	}
	if cfg.ActivityDebounce < 0 {
		return cfg, errors.New("ACTIVITY_DEBOUNCE must be >= 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
