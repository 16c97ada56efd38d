// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Session  SessionConfig
	Run      RunConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Preview  PreviewConfig
	Chart    ChartConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on. PORT is honoured for PaaS hosts.
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request, body included.
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"60s"`

	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`

	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including in-flight runs.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// UploadConfig holds upload size and count limits.
type UploadConfig struct {
	// MaxFileSize is the largest single file accepted, in bytes (default: 200MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"209715200"`

	// MaxRequestSize caps a whole multipart request, in bytes (default: 500MB)
	MaxRequestSize int64 `env:"UPLOAD_MAX_REQUEST_SIZE" default:"524288000"`

	// MaxFiles is the most files one session may hold (default: 20)
	MaxFiles int `env:"UPLOAD_MAX_FILES" default:"20"`
}

// SessionConfig controls the in-memory session store.
type SessionConfig struct {
	// TTL is how long an idle session is kept (default: 1h)
	TTL time.Duration `env:"SESSION_TTL" default:"1h"`

	// CleanupInterval is how often expired sessions are swept (default: 5m)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" default:"5m"`

	// MaxSessions caps live sessions; 0 means unlimited (default: 1000)
	MaxSessions int `env:"SESSION_MAX" default:"1000"`

	// CookieSecure sets the Secure flag on the session cookie.
	CookieSecure bool `env:"SESSION_COOKIE_SECURE" default:"false"`
}

// RunConfig bounds pipeline runs across all sessions.
type RunConfig struct {
	// MaxConcurrent is the number of runs allowed at once (default: 4)
	MaxConcurrent int `env:"RUN_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long a run waits for a slot before failing (default: 30s)
	MaxWait time.Duration `env:"RUN_MAX_WAIT" default:"30s"`

	// Timeout bounds a single file's run (default: 2m)
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// UploadLimit is requests per minute for the upload endpoint (default: 20)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey guards the JSON API with X-API-Key.
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys.
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// PreviewConfig controls the preview table on each file card.
type PreviewConfig struct {
	// Rows is how many leading rows are previewed (default: 5)
	Rows int `env:"PREVIEW_ROWS" default:"5"`
}

// ChartConfig controls rendered charts.
type ChartConfig struct {
	// MaxRows caps the rows drawn in a chart; 0 draws all (default: 100)
	MaxRows int `env:"CHART_MAX_ROWS" default:"100"`

	Width  int `env:"CHART_WIDTH" default:"640"`
	Height int `env:"CHART_HEIGHT" default:"320"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
