package env_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/ferdiebergado/hbnb/internal/pkg/env"
	timex "github.com/ferdiebergado/hbnb/internal/pkg/time"
)

func TestOverrideStruct(t *testing.T) {
	type storageOpts struct {
		Driver string `env:"STORAGE_DRIVER"`
		File   string `env:"STORAGE_FILE"`
	}

	type dbOpts struct {
		MaxOpenConns int            `env:"DB_MAX_OPEN_CONNS"`
		PingTimeout  timex.Duration `env:"DB_PING_TIMEOUT"`
	}

	type settings struct {
		Env     string `env:"ENV"`
		Debug   bool   `env:"DEBUG"`
		Storage *storageOpts
		DB      dbOpts
	}

	got := settings{
		Env:     "development",
		Storage: &storageOpts{Driver: "file", File: "file.json"},
		DB:      dbOpts{MaxOpenConns: 3},
	}

	t.Setenv("ENV", "testing")
	t.Setenv("DEBUG", "true")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_MAX_OPEN_CONNS", "10")
	t.Setenv("DB_PING_TIMEOUT", "3s")

	if err := env.OverrideStruct(&got); err != nil {
		t.Fatal(err)
	}

	want := settings{
		Env:     "testing",
		Debug:   true,
		Storage: &storageOpts{Driver: "postgres", File: "file.json"},
		DB:      dbOpts{MaxOpenConns: 10, PingTimeout: timex.Duration{Duration: 3 * time.Second}},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("env.OverrideStruct(&got) = %+v, want: %+v", got, want)
	}
}

func TestOverrideStruct_NilPointer(t *testing.T) {
	type nested struct {
		Name string `env:"NESTED_NAME"`
	}
	type settings struct {
		Nested *nested
	}

	t.Setenv("NESTED_NAME", "hbnb")

	var got settings
	if err := env.OverrideStruct(&got); err != nil {
		t.Fatal(err)
	}

	if got.Nested == nil || got.Nested.Name != "hbnb" {
		t.Errorf("got.Nested = %+v, want: &{Name:hbnb}", got.Nested)
	}
}

func TestOverrideStruct_Errors(t *testing.T) {
	type settings struct {
		Port int `env:"PORT"`
	}

	t.Setenv("PORT", "eighty")

	var s settings
	if err := env.OverrideStruct(&s); err == nil {
		t.Error("env.OverrideStruct(&s) = nil, want an error for a non numeric PORT")
	}

	if err := env.OverrideStruct(s); err == nil {
		t.Error("env.OverrideStruct(s) = nil, want an error for a non pointer")
	}
}

func TestEnv(t *testing.T) {
	const fallback = "file.json"

	tests := []struct {
		name, envVar, envVal, fallback, val string
	}{
		{"EnvVar is set", "STORAGE_FILE", "objects.json", fallback, "objects.json"},
		{"EnvVar is not set", "STORAGE_FILE", "", fallback, fallback},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envVal != "" {
				t.Setenv(tc.envVar, tc.envVal)
			}
			val := env.Env(tc.envVar, tc.fallback)

			if val != tc.val {
				t.Errorf("env.Env(%q, %q) = %q, want: %q", tc.envVar, tc.fallback, val, tc.val)
			}
		})
	}
}
