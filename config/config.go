package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultUserAgent is a realistic desktop Chrome user agent. Pages that sniff
// for headless browsers tend to serve a degraded variant otherwise.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Selectors SelectorConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Chromium process launched for every run.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is passed to Chromium as --proxy-server.
	Proxy string

	// Stealth injects the go-rod/stealth evasions before navigation.
	Stealth bool // default: false

	// UserAgent is set on the isolated browsing context.
	UserAgent string

	// ViewportWidth and ViewportHeight size the emulated screen.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080

	// AcceptLanguage is sent as an extra request header.
	AcceptLanguage string // default: "en-US,en;q=0.9"
}

// ScraperConfig controls the extraction timeouts.
type ScraperConfig struct {
	// NavigationTimeout bounds navigation up to the load event.
	NavigationTimeout time.Duration // default: 30s

	// ReadyTimeout bounds the wait for the first loaded song row.
	ReadyTimeout time.Duration // default: 15s

	// SettleDelay is the fixed pause after the first loaded row appears.
	SettleDelay time.Duration // default: 1s

	// HeaderTimeout bounds the lookup of the playlist header element.
	HeaderTimeout time.Duration // default: 5s

	// FieldTimeout bounds every single per-row field read.
	FieldTimeout time.Duration // default: 100ms
}

// SelectorConfig overrides the CSS selectors used by the extractor.
// Empty fields keep the built-in defaults.
type SelectorConfig struct {
	Ready    string
	Header   string
	Rows     string
	Title    string
	Artist   string
	Album    string
	Duration string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per API key.
	Burst int // default: 2
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SETLIST_HOST", "0.0.0.0"),
			Port: envIntOr("SETLIST_PORT", 8080),
			Mode: envOr("SETLIST_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("SETLIST_HEADLESS", true),
			NoSandbox:      envBoolOr("SETLIST_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("SETLIST_BROWSER_BIN"),
			Proxy:          os.Getenv("SETLIST_PROXY"),
			Stealth:        envBoolOr("SETLIST_STEALTH", false),
			UserAgent:      envOr("SETLIST_USER_AGENT", DefaultUserAgent),
			ViewportWidth:  envIntOr("SETLIST_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("SETLIST_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: envOr("SETLIST_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
		},
		Scraper: ScraperConfig{
			NavigationTimeout: envDurationOr("SETLIST_NAV_TIMEOUT", 30*time.Second),
			ReadyTimeout:      envDurationOr("SETLIST_READY_TIMEOUT", 15*time.Second),
			SettleDelay:       envDurationOr("SETLIST_SETTLE_DELAY", 1*time.Second),
			HeaderTimeout:     envDurationOr("SETLIST_HEADER_TIMEOUT", 5*time.Second),
			FieldTimeout:      envDurationOr("SETLIST_FIELD_TIMEOUT", 100*time.Millisecond),
		},
		Selectors: SelectorConfig{
			Ready:    os.Getenv("SETLIST_SELECTOR_READY"),
			Header:   os.Getenv("SETLIST_SELECTOR_HEADER"),
			Rows:     os.Getenv("SETLIST_SELECTOR_ROWS"),
			Title:    os.Getenv("SETLIST_SELECTOR_TITLE"),
			Artist:   os.Getenv("SETLIST_SELECTOR_ARTIST"),
			Album:    os.Getenv("SETLIST_SELECTOR_ALBUM"),
			Duration: os.Getenv("SETLIST_SELECTOR_DURATION"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SETLIST_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SETLIST_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SETLIST_RATE_RPS", 1.0),
			Burst:             envIntOr("SETLIST_RATE_BURST", 2),
		},
		Log: LogConfig{
			Level:  envOr("SETLIST_LOG_LEVEL", "info"),
			Format: envOr("SETLIST_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
