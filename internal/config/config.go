// Package config loads the ingestion service configuration from environment
// variables, applies defaults and validates everything on startup so
// misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ingest   IngestConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Service  ServiceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds non-ingest API requests.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL accepts DATABASE_URL or DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate applies pending schema migrations at startup.
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// IngestConfig holds spreadsheet ingestion settings.
type IngestConfig struct {
	// MaxFileSize accepts plain bytes or a KB/MB/GB suffix.
	MaxFileSize int64 `env:"INGEST_MAX_FILE_SIZE" default:"50MB" unit:"bytes"`

	MaxConcurrent int           `env:"INGEST_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"INGEST_MAX_WAIT_TIME" default:"30s"`
	Timeout       time.Duration `env:"INGEST_TIMEOUT" default:"5m"`

	// OnixDir receives one ONIX file per published book. Empty disables it.
	OnixDir string `env:"INGEST_ONIX_DIR"`

	// SanitizerPolicy names the HTML policy applied to descriptions.
	SanitizerPolicy string `env:"INGEST_SANITIZER_POLICY" default:"description"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	APIKeys        []string `env:"API_KEYS"`
	RequireAPIKey  bool     `env:"REQUIRE_API_KEY" default:"false"`
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ServiceConfig identifies this service on published messages.
type ServiceConfig struct {
	Name    string `env:"SERVICE_NAME" default:"bookingest"`
	Version string `env:"SERVICE_VERSION" default:"dev"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
