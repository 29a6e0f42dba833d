package types

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Config holds backend selection and parameters for dwitlit.Open.
type Config struct {
	Backend string       `json:"backend" yaml:"backend"`
	DataDir string       `json:"data_dir" yaml:"data_dir"`
	SQLite  SQLiteConfig `json:"sqlite" yaml:"sqlite"`

	// Logger receives backend diagnostics. Defaults to logrus.New().
	Logger *logrus.Logger `json:"-" yaml:"-"`
}

// SQLiteConfig holds parameters for the sqlite backend.
type SQLiteConfig struct {
	// Driver is the database/sql driver name: "sqlite" (modernc, pure Go)
	// or "sqlite3" (mattn, cgo). Empty selects "sqlite".
	Driver string `json:"driver" yaml:"driver"`

	// BusyTimeoutMS is the SQLite busy timeout. Zero selects the default.
	BusyTimeoutMS int `json:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Supported SQL driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// DefaultBusyTimeoutMS is used when SQLiteConfig.BusyTimeoutMS is zero.
const DefaultBusyTimeoutMS = 5000

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrDriverUnknown      = errors.New("unknown sql driver")
	ErrBusyTimeoutInvalid = errors.New("busy timeout must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendSQLite {
		return c.SQLite.Validate()
	}
	return nil
}

// GetLogger returns the configured logger or a fresh logrus logger.
func (c Config) GetLogger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.New()
}

// Validate checks the driver name and timeout.
func (c SQLiteConfig) Validate() error {
	switch c.Driver {
	case "", DriverModernc, DriverMattn:
	default:
		return ErrDriverUnknown
	}
	if c.BusyTimeoutMS < 0 {
		return ErrBusyTimeoutInvalid
	}
	return nil
}

// GetDriver returns the driver name, defaulting to DriverModernc.
func (c SQLiteConfig) GetDriver() string {
	if c.Driver == "" {
		return DriverModernc
	}
	return c.Driver
}

// GetBusyTimeoutMS returns the busy timeout, defaulting to DefaultBusyTimeoutMS.
func (c SQLiteConfig) GetBusyTimeoutMS() int {
	if c.BusyTimeoutMS == 0 {
		return DefaultBusyTimeoutMS
	}
	return c.BusyTimeoutMS
}
