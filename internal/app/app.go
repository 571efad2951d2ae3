package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ferdiebergado/gopherkit/env"
	"github.com/ferdiebergado/hbnb/internal/config"
	"github.com/ferdiebergado/hbnb/internal/console"
	errx "github.com/ferdiebergado/hbnb/internal/pkg/error"
	"github.com/ferdiebergado/hbnb/internal/pkg/logging"
)

// Settings are the command line overrides applied on top of the config file.
type Settings struct {
	ConfigFile  string
	StorageFile string
	Quiet       bool
}

type App struct {
	opts     *config.Options
	provider *Provider
	console  *console.Console
}

func New(opts *config.Options, provider *Provider, in io.Reader, out io.Writer, consoleOpts ...console.Option) *App {
	return &App{
		opts:     opts,
		provider: provider,
		console:  console.New(provider.Storage, in, out, consoleOpts...),
	}
}

// Start loads the stored objects and runs the console until it exits.
func (a *App) Start(ctx context.Context) error {
	if err := a.provider.Storage.Reload(ctx); err != nil {
		return fmt.Errorf("load objects: %w", err)
	}

	slog.Info("Objects loaded.", "count", a.provider.Storage.Count(""))

	if err := a.console.Run(ctx); err != nil && !errx.IsContextError(err) {
		return err
	}
	return nil
}

// Run bootstraps the application from settings and runs the console on in
// and out.
func Run(ctx context.Context, settings Settings, in io.Reader, out io.Writer) error {
	if os.Getenv("ENV") != "production" {
		if err := loadEnvFile(".env"); err != nil {
			return err
		}
	}

	opts, err := config.Load(settings.ConfigFile)
	if err != nil {
		return err
	}
	if settings.StorageFile != "" {
		opts.Storage.File = settings.StorageFile
	}

	logging.SetupLogger(opts.App.Env, opts.App.LogLevel, os.Stderr)

	provider, err := NewProvider(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Close(); err != nil {
			slog.Error("Failed to close storage.", "reason", err)
		}
	}()

	var consoleOpts []console.Option
	if settings.Quiet {
		consoleOpts = append(consoleOpts, console.WithPrompt(""))
	}

	return New(opts, provider, in, out, consoleOpts...).Start(ctx)
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := env.Load(path); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}
