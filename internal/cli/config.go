package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/dwitlit/internal/paths"
	"github.com/mesh-intelligence/dwitlit/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeySQLiteDriver = "sqlite.driver"
	cfgKeyBusyTimeout  = "sqlite.busy_timeout_ms"

	envPrefix = "DWITLIT"
)

// fileConfig is the structure written to config.yaml on first run.
type fileConfig struct {
	Backend string       `yaml:"backend"`
	DataDir string       `yaml:"data_dir,omitempty"`
	SQLite  sqliteConfig `yaml:"sqlite"`
}

type sqliteConfig struct {
	Driver        string `yaml:"driver"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// defaultFileConfig returns the values written to a new config.yaml.
func defaultFileConfig() fileConfig {
	return fileConfig{
		Backend: types.BackendSQLite,
		SQLite: sqliteConfig{
			Driver:        types.DriverModernc,
			BusyTimeoutMS: types.DefaultBusyTimeoutMS,
		},
	}
}

// loadConfig reads config.yaml from the config directory into a.v. It
// creates the directory and a default config.yaml on first run. Every key
// can also be set through a DWITLIT_ environment variable.
func (a *app) loadConfig() error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(a.configDir, paths.ConfigFileName), defaultFileConfig()); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	defaults := defaultFileConfig()
	a.v.SetDefault(cfgKeyBackend, defaults.Backend)
	a.v.SetDefault(cfgKeySQLiteDriver, defaults.SQLite.Driver)
	a.v.SetDefault(cfgKeyBusyTimeout, defaults.SQLite.BusyTimeoutMS)
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{cfgKeyBackend, cfgKeySQLiteDriver, cfgKeyBusyTimeout} {
		if err := a.v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	a.v.SetConfigName(configFileName)
	a.v.SetConfigType(configFileType)
	a.v.AddConfigPath(a.configDir)
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// writeConfigIfMissing creates path with cfg if the file does not exist.
func writeConfigIfMissing(path string, cfg fileConfig) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# dwitlit configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
