package validation_test

import (
	"testing"

	"github.com/ferdiebergado/hbnb/internal/pkg/validation"
)

type storageOpts struct {
	Driver string `json:"driver" validate:"required,oneof=file postgres"`
	File   string `json:"file" validate:"required_if=Driver file"`
}

func TestGoplaygroundValidator_ValidateStruct(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name     string
		given    any
		field    string
		hasError bool
		errMsg   string
	}{
		{"Valid options", storageOpts{Driver: "file", File: "file.json"}, "driver", false, ""},
		{"Driver is missing", storageOpts{File: "file.json"}, "driver", true, "driver is required"},
		{"Driver is unknown", storageOpts{Driver: "mysql"}, "driver", true, "driver must be one of: file postgres"},
		{"File is missing for file driver", storageOpts{Driver: "file"}, "file", true, "file is required when Driver file"},
		{"File is optional for postgres driver", storageOpts{Driver: "postgres"}, "file", false, ""},
		{"Negative value", struct {
			Conns int `json:"conns" validate:"gte=0"`
		}{Conns: -1}, "conns", true, "conns must be greater than or equal to 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := validation.NewGoPlaygroundValidator()

			errs := v.ValidateStruct(tt.given)
			if (errs != nil) != tt.hasError {
				t.Errorf("v.ValidateStruct(%v) = %v, want errors: %v", tt.given, errs, tt.hasError)
			}

			gotMsg, wantMsg := errs[tt.field], tt.errMsg
			if gotMsg != wantMsg {
				t.Errorf("errs[%s] = %s\nwant: %s", tt.field, gotMsg, wantMsg)
			}
		})
	}
}
