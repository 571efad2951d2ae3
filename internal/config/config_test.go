package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ferdiebergado/hbnb/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	opts, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("config.Load() = %v, want: %v", err, nil)
	}

	if opts.Storage.Driver != config.DriverFile {
		t.Errorf("opts.Storage.Driver = %q, want: %q", opts.Storage.Driver, config.DriverFile)
	}
	if opts.Storage.File != "file.json" {
		t.Errorf("opts.Storage.File = %q, want: %q", opts.Storage.File, "file.json")
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `{
		"app": {"env": "production", "log_level": "debug"},
		"storage": {"driver": "postgres"},
		"db": {"driver": "pgx", "max_open_conns": 8, "ping_timeout": "2s"}
	}`)

	opts, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if opts.App.Env != "production" {
		t.Errorf("opts.App.Env = %q, want: %q", opts.App.Env, "production")
	}
	if opts.Storage.Driver != config.DriverPostgres {
		t.Errorf("opts.Storage.Driver = %q, want: %q", opts.Storage.Driver, config.DriverPostgres)
	}
	if opts.DB.MaxOpenConns != 8 {
		t.Errorf("opts.DB.MaxOpenConns = %d, want: %d", opts.DB.MaxOpenConns, 8)
	}
	if opts.DB.PingTimeout.Duration != 2*time.Second {
		t.Errorf("opts.DB.PingTimeout = %v, want: %v", opts.DB.PingTimeout.Duration, 2*time.Second)
	}
	if opts.DB.MaxIdleConns != 5 {
		t.Errorf("opts.DB.MaxIdleConns = %d, want the default %d", opts.DB.MaxIdleConns, 5)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `{"storage": {"driver": "file", "file": "a.json"}}`)

	t.Setenv("STORAGE_FILE", "b.json")
	t.Setenv("LOG_LEVEL", "error")

	opts, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if opts.Storage.File != "b.json" {
		t.Errorf("opts.Storage.File = %q, want: %q", opts.Storage.File, "b.json")
	}
	if opts.App.LogLevel != "error" {
		t.Errorf("opts.App.LogLevel = %q, want: %q", opts.App.LogLevel, "error")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, content string
		wantErr       error
	}{
		{"Unknown driver", `{"storage": {"driver": "mysql"}}`, config.ErrInvalid},
		{"Missing file", `{"storage": {"driver": "file", "file": ""}}`, config.ErrInvalid},
		{"Unknown log level", `{"app": {"log_level": "loud"}}`, config.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("config.Load() = %v, want: %v", err, tt.wantErr)
			}
		})
	}

	t.Run("Malformed JSON", func(t *testing.T) {
		if _, err := config.Load(writeConfig(t, `{`)); err == nil {
			t.Error("config.Load() = nil, want an error")
		}
	})
}
