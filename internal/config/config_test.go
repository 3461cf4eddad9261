package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.SeedDelay != 4*time.Second || cfg.LiveBufferSize != 16 {
		t.Fatalf("unexpected defaults %#v", cfg)
	}
	if !strings.HasSuffix(cfg.DatabasePath, filepath.Join("architecture-guide", "basic-sample-db")) {
		t.Fatalf("unexpected default database path %q", cfg.DatabasePath)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("CATALOG_DATABASE_PATH", "/tmp/catalog-test.db")
	t.Setenv("CATALOG_SEED_DELAY", "250ms")
	t.Setenv("CATALOG_LIVE_BUFFER_SIZE", "4")
	t.Setenv("CATALOG_LOG_LEVEL", "debug")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.DatabasePath != "/tmp/catalog-test.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.SeedDelay != 250*time.Millisecond || cfg.LiveBufferSize != 4 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %#v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{name: "blank path", key: "database.path", value: " ", want: "database.path"},
		{name: "negative delay", key: "seed.delay", value: -time.Second, want: "seed.delay"},
		{name: "zero buffer", key: "live.buffer_size", value: 0, want: "live.buffer_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configViper := NewViper()
			configViper.Set(tt.key, tt.value)
			_, err := Load(configViper)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
