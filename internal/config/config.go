// Package config loads CLI settings with viper.
//
// Settings come from, in increasing priority: built-in defaults, the YAML file
// ($XDG_CONFIG_HOME/garagedoor/config.yaml or --config), and GARAGEDOOR_* environment
// variables. Only non-secret settings are kept here; credentials go to the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"garagedoor/cli/internal/particle"
	"garagedoor/cli/internal/xdg"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GARAGEDOOR_DEVICE_NAME.
const EnvPrefix = "GARAGEDOOR"

// Config holds non-sensitive CLI settings.
type Config struct {
	APIURL     string        `mapstructure:"api_url"`
	DeviceName string        `mapstructure:"device_name"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// TokenTTL is the requested access token lifetime; zero lets the cloud decide.
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	HistoryDSN string        `mapstructure:"history_dsn"`
	LogLevel   string        `mapstructure:"log_level"`
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", particle.DefaultBaseURL)
	v.SetDefault("device_name", "GarageDoor")
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("token_ttl", time.Duration(0))
	v.SetDefault("log_level", "info")

	if os.Getenv(EnvPrefix+"_HISTORY_DSN") == "" {
		dir, err := xdg.StateDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}
		v.SetDefault("history_dsn", filepath.Join(dir, "history.db"))
	} else {
		v.SetDefault("history_dsn", "")
	}
	return v, nil
}

// Load reads configuration from path, or from the default location when path is
// empty. A missing default file is not an error; a missing explicit file is.
func Load(path string) (Config, error) {
	var c Config
	v, err := newViper()
	if err != nil {
		return c, err
	}

	explicit := path != ""
	if !explicit {
		if path, err = Path(); err != nil {
			return c, err
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate rejects settings the CLI cannot run with.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.APIURL) == "":
		return errors.New("config: api_url must not be empty")
	case strings.TrimSpace(c.DeviceName) == "":
		return errors.New("config: device_name must not be empty")
	case c.Timeout < 0:
		return errors.New("config: timeout must not be negative")
	case c.TokenTTL < 0:
		return errors.New("config: token_ttl must not be negative")
	}
	return nil
}
