package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	envPrefix             = "CATALOG"
	applicationDirectory  = "architecture-guide"
	databaseFileName      = "basic-sample-db"
	defaultLogLevel       = "info"
	defaultSeedDelay      = 4 * time.Second
	defaultLiveBufferSize = 16
)

// AppConfig captures runtime configuration for the catalog CLI.
type AppConfig struct {
	DatabasePath   string
	LogLevel       string
	SeedDelay      time.Duration
	LiveBufferSize int
}

// DefaultDatabasePath places the catalog file under the user's XDG data directory.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, applicationDirectory, databaseFileName)
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("database.path", DefaultDatabasePath())
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("seed.delay", defaultSeedDelay)
	configViper.SetDefault("live.buffer_size", defaultLiveBufferSize)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		DatabasePath:   configViper.GetString("database.path"),
		LogLevel:       configViper.GetString("log.level"),
		SeedDelay:      configViper.GetDuration("seed.delay"),
		LiveBufferSize: configViper.GetInt("live.buffer_size"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.SeedDelay < 0 {
		return fmt.Errorf("seed.delay must not be negative, got %s", c.SeedDelay)
	}
	if c.LiveBufferSize <= 0 {
		return fmt.Errorf("live.buffer_size must be positive, got %d", c.LiveBufferSize)
	}
	return nil
}
