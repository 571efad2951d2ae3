package app_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ferdiebergado/hbnb/internal/app"
	"github.com/ferdiebergado/hbnb/internal/config"
	"github.com/ferdiebergado/hbnb/internal/console"
)

func TestNewProvider_UnknownDriver(t *testing.T) {
	t.Parallel()

	opts := config.Default()
	opts.Storage.Driver = "mysql"

	if _, err := app.NewProvider(context.Background(), opts); !errors.Is(err, app.ErrUnknownDriver) {
		t.Errorf("app.NewProvider() = %v, want: %v", err, app.ErrUnknownDriver)
	}
}

func TestApp_Start(t *testing.T) {
	t.Parallel()

	opts := config.Default()
	opts.Storage.File = filepath.Join(t.TempDir(), "file.json")

	provider, err := app.NewProvider(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	in := strings.NewReader("create State\nquit\n")
	if err := app.New(opts, provider, in, &out, console.WithPrompt("")).Start(context.Background()); err != nil {
		t.Fatalf("a.Start() = %v, want: %v", err, nil)
	}

	id := strings.TrimSpace(out.String())
	data, err := os.ReadFile(opts.Storage.File)
	if err != nil {
		t.Fatalf("read storage file: %v", err)
	}
	if !strings.Contains(string(data), `"State.`+id+`"`) {
		t.Errorf("storage file has no State.%s:\n%s", id, data)
	}

	// A second run sees the object created by the first one.
	out.Reset()
	in = strings.NewReader("count State\n")
	if err := app.New(opts, provider, in, &out, console.WithPrompt("")).Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "1" {
		t.Errorf("count State printed %q, want: %q", got, "1")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.json")
	if err := os.WriteFile(cfgFile, []byte(`{"app": {"log_level": "error"}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	settings := app.Settings{
		ConfigFile:  cfgFile,
		StorageFile: filepath.Join(dir, "objects.json"),
		Quiet:       true,
	}

	var out bytes.Buffer
	if err := app.Run(context.Background(), settings, strings.NewReader("create Review\n"), &out); err != nil {
		t.Fatalf("app.Run() = %v, want: %v", err, nil)
	}

	if _, err := os.Stat(settings.StorageFile); err != nil {
		t.Errorf("os.Stat(%q) = %v, want: %v", settings.StorageFile, err, nil)
	}
}
