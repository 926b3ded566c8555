package entities

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Editor  EditorConfig  `toml:"editor"`
	Display DisplayConfig `toml:"display"`
	Logging LoggingConfig `toml:"logging"`
}

// Validate validates the entire configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	if err := c.Editor.Validate(); err != nil {
		return fmt.Errorf("editor config: %w", err)
	}
	if err := c.Display.Validate(); err != nil {
		return fmt.Errorf("display config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration.
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 {
		return errors.New("read timeout must be non-negative")
	}
	if s.WriteTimeout < 0 {
		return errors.New("write timeout must be non-negative")
	}
	if s.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration.
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration.
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration.
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with localhost defaults if empty.
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:8080",
			"http://127.0.0.1:8080",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server runs in development mode.
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// StorageConfig contains persistence configuration. Path is the sqlite
// database file used by the server-side stores; RemoteURL, when set on a
// device, points at a remote storage server to sync through.
type StorageConfig struct {
	Path      string `toml:"path"`
	RemoteURL string `toml:"remote_url"`
}

// Validate validates storage configuration.
func (s StorageConfig) Validate() error {
	if s.RemoteURL != "" &&
		!strings.HasPrefix(s.RemoteURL, "http://") &&
		!strings.HasPrefix(s.RemoteURL, "https://") {
		return fmt.Errorf("invalid remote url: %s", s.RemoteURL)
	}
	return nil
}

// EditorConfig tunes the text-editing pipeline.
type EditorConfig struct {
	// DebounceMs is the pause after the last keystroke before slide
	// regeneration runs.
	DebounceMs int `toml:"debounce_ms"`
}

// Validate validates editor configuration.
func (e EditorConfig) Validate() error {
	if e.DebounceMs < 0 {
		return errors.New("debounce must be non-negative")
	}
	return nil
}

// DebounceDelay returns the regeneration debounce as a duration.
func (e EditorConfig) DebounceDelay() time.Duration {
	if e.DebounceMs <= 0 {
		return 800 * time.Millisecond
	}
	return time.Duration(e.DebounceMs) * time.Millisecond
}

// DisplayConfig tunes the live display output.
type DisplayConfig struct {
	// CycleIntervalMs is the delay between slides when auto-cycling.
	CycleIntervalMs int `toml:"cycle_interval_ms"`
}

// Validate validates display configuration.
func (d DisplayConfig) Validate() error {
	if d.CycleIntervalMs < 0 {
		return errors.New("cycle interval must be non-negative")
	}
	return nil
}

// CycleInterval returns the auto-cycle interval as a duration.
func (d DisplayConfig) CycleInterval() time.Duration {
	if d.CycleIntervalMs <= 0 {
		return 7 * time.Second
	}
	return time.Duration(d.CycleIntervalMs) * time.Millisecond
}

// LogLevel represents logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level   string `toml:"level"`
	Verbose bool   `toml:"verbose"`
}

// Validate validates logging configuration.
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case "", LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	}
	return fmt.Errorf("unknown log level %q", l.Level)
}

// GetLevel returns the configured level, defaulting to info.
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
