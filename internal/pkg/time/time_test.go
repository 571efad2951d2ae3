package time_test

import (
	"encoding/json"
	"testing"
	"time"

	timex "github.com/ferdiebergado/hbnb/internal/pkg/time"
)

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	var opts struct {
		Timeout timex.Duration `json:"timeout"`
	}
	if err := json.Unmarshal([]byte(`{"timeout": "1m30s"}`), &opts); err != nil {
		t.Fatal(err)
	}
	if want := 90 * time.Second; opts.Timeout.Duration != want {
		t.Errorf("opts.Timeout = %v, want: %v", opts.Timeout.Duration, want)
	}

	b, err := json.Marshal(opts)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"timeout":"1m30s"}`; string(b) != want {
		t.Errorf("json.Marshal(opts) = %s, want: %s", b, want)
	}
}

func TestDuration_Invalid(t *testing.T) {
	t.Parallel()

	tests := []string{`"soon"`, `30`}
	for _, in := range tests {
		var d timex.Duration
		if err := json.Unmarshal([]byte(in), &d); err == nil {
			t.Errorf("json.Unmarshal(%s) = nil, want an error", in)
		}
	}
}
