package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ferdiebergado/hbnb/internal/pkg/env"
	timex "github.com/ferdiebergado/hbnb/internal/pkg/time"
	"github.com/ferdiebergado/hbnb/internal/pkg/validation"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

var ErrInvalid = errors.New("config: invalid options")

type App struct {
	Env      string `json:"env,omitempty" env:"ENV"`
	LogLevel string `json:"log_level,omitempty" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
}

type Storage struct {
	Driver string `json:"driver,omitempty" env:"STORAGE_DRIVER" validate:"required,oneof=file postgres"`
	File   string `json:"file,omitempty" env:"STORAGE_FILE" validate:"required_if=Driver file"`
}

type DB struct {
	Driver          string         `json:"driver,omitempty" validate:"required"`
	MaxOpenConns    int            `json:"max_open_conns,omitempty" validate:"gte=0"`
	MaxIdleConns    int            `json:"max_idle_conns,omitempty" validate:"gte=0"`
	ConnMaxIdleTime timex.Duration `json:"conn_max_idle_time,omitempty"`
	ConnMaxLifetime timex.Duration `json:"conn_max_lifetime,omitempty"`
	PingTimeout     timex.Duration `json:"ping_timeout,omitempty"`
}

type Options struct {
	App     *App     `json:"app,omitempty"`
	Storage *Storage `json:"storage,omitempty"`
	DB      *DB      `json:"db,omitempty"`
}

func (o *Options) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("app", o.App),
		slog.Any("storage", o.Storage),
		slog.Any("db", o.DB),
	)
}

// Default returns the options used when no config file exists.
func Default() *Options {
	return &Options{
		App: &App{
			Env:      "development",
			LogLevel: "info",
		},
		Storage: &Storage{
			Driver: DriverFile,
			File:   "file.json",
		},
		DB: &DB{
			Driver:       "pgx",
			MaxOpenConns: 5,
			MaxIdleConns: 5,
			PingTimeout:  timex.Duration{Duration: 5 * time.Second},
		},
	}
}

// Load reads cfgFile over the defaults, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(cfgFile string) (*Options, error) {
	slog.Info("Loading config...")
	opts := Default()

	if err := parseCfgFile(cfgFile, opts); err != nil {
		return nil, err
	}

	if err := env.OverrideStruct(opts); err != nil {
		return nil, fmt.Errorf("override config with env: %w", err)
	}

	if err := validate(opts); err != nil {
		return nil, err
	}

	slog.Info("Config loaded.", "config_file", cfgFile, slog.Any("config", opts))
	return opts, nil
}

func parseCfgFile(cfgFile string, opts *Options) error {
	cfgFile = filepath.Clean(cfgFile)
	configFile, err := os.ReadFile(cfgFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("Config file not found, using defaults.", "config_file", cfgFile)
			return nil
		}
		return fmt.Errorf("read config file %s: %w", cfgFile, err)
	}

	if err := json.Unmarshal(configFile, opts); err != nil {
		return fmt.Errorf("decode json config %s: %w", cfgFile, err)
	}

	return nil
}

func validate(opts *Options) error {
	v := validation.NewGoPlaygroundValidator()

	var msgs []string
	for _, section := range []any{opts.App, opts.Storage, opts.DB} {
		for field, msg := range v.ValidateStruct(section) {
			msgs = append(msgs, field+": "+msg)
		}
	}

	if len(msgs) > 0 {
		sort.Strings(msgs)
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return nil
}
