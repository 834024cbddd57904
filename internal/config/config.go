// Package config provides centralized configuration management for the console.
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
	API     APIConfig
	Server  ServerConfig
	Import  ImportConfig
	CSV     CSVConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// APIConfig holds settings for the remote SmartMart REST backend.
type APIConfig struct {
	// BaseURL is the root of the remote API (default: http://localhost:8000)
	BaseURL string `env:"SMARTMART_API_URL" envAlt:"VITE_API_URL" default:"http://localhost:8000"`

	// Timeout bounds every remote call (default: 10s)
	Timeout time.Duration `env:"SMARTMART_API_TIMEOUT" default:"10s"`

	// DocsURL is the external API documentation link shown on the dashboard
	DocsURL string `env:"SMARTMART_DOCS_URL" envAlt:"VITE_POSTMAN_URL"`
}

// ServerConfig holds console HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// AllowedOrigins lists the SPA origins allowed by CORS
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173,http://127.0.0.1:3000"`

	// TrustedProxies lists the CIDRs whose X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// ImportConfig holds CSV import forwarding settings.
type ImportConfig struct {
	// MaxFileSize is the maximum accepted upload size in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of imports forwarded at once (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an import waits for a free slot (default: 15s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"15s"`
}

// CSVConfig holds classifier and encoder settings.
type CSVConfig struct {
	// MatchThreshold is the minimum header overlap for a file to be accepted (default: 0.5)
	MatchThreshold float64 `env:"CSV_MATCH_THRESHOLD" default:"0.5"`

	// Locale selects the language of user-facing messages: pt-BR or en (default: pt-BR)
	Locale string `env:"CSV_LOCALE" default:"pt-BR"`

	// QuoteExports enables RFC-4180 quoting in exported CSV files (default: false)
	QuoteExports bool `env:"CSV_QUOTE_EXPORTS" default:"false"`
}

// RateLimitConfig holds console rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// Burst is the number of requests allowed above the sustained rate (default: 20)
	Burst int `env:"RATE_LIMIT_BURST" default:"20"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
