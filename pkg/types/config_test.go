package types

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: "sqlite", DataDir: ""},
			wantErr: nil,
		},
		{
			name:    "memory backend ignores DataDir",
			config:  Config{Backend: "memory"},
			wantErr: nil,
		},
		{
			name:    "mattn driver is accepted",
			config:  Config{Backend: "sqlite", SQLite: SQLiteConfig{Driver: DriverMattn}},
			wantErr: nil,
		},
		{
			name:    "unknown driver returns ErrDriverUnknown",
			config:  Config{Backend: "sqlite", SQLite: SQLiteConfig{Driver: "pgx"}},
			wantErr: ErrDriverUnknown,
		},
		{
			name:    "negative busy timeout returns ErrBusyTimeoutInvalid",
			config:  Config{Backend: "sqlite", SQLite: SQLiteConfig{BusyTimeoutMS: -1}},
			wantErr: ErrBusyTimeoutInvalid,
		},
		{
			name:    "memory backend does not check sqlite settings",
			config:  Config{Backend: "memory", SQLite: SQLiteConfig{Driver: "pgx"}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSQLiteConfigDefaults(t *testing.T) {
	var c SQLiteConfig
	if got := c.GetDriver(); got != DriverModernc {
		t.Errorf("GetDriver() = %q, want %q", got, DriverModernc)
	}
	if got := c.GetBusyTimeoutMS(); got != DefaultBusyTimeoutMS {
		t.Errorf("GetBusyTimeoutMS() = %d, want %d", got, DefaultBusyTimeoutMS)
	}

	c = SQLiteConfig{Driver: DriverMattn, BusyTimeoutMS: 100}
	if got := c.GetDriver(); got != DriverMattn {
		t.Errorf("GetDriver() = %q, want %q", got, DriverMattn)
	}
	if got := c.GetBusyTimeoutMS(); got != 100 {
		t.Errorf("GetBusyTimeoutMS() = %d, want 100", got)
	}
}

func TestConfigGetLogger(t *testing.T) {
	if (Config{}).GetLogger() == nil {
		t.Fatal("GetLogger() returned nil for empty config")
	}
	l := logrus.New()
	if got := (Config{Logger: l}).GetLogger(); got != l {
		t.Error("GetLogger() did not return the configured logger")
	}
}
