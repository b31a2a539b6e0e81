// Package testutil holds shared test helpers.
package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// Recorder opens a VCR cassette under testdata/fixtures and registers
// cleanup with t. Replay is the default; set VCR_MODE=record to capture
// fresh interactions against live backends.
func Recorder(t *testing.T, name string) *recorder.Recorder {
	t.Helper()

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	r, err := recorder.NewAsMode(filepath.Join("testdata", "fixtures", name), mode, nil)
	if err != nil {
		t.Fatalf("open cassette %s: %v", name, err)
	}

	// Match on method and URL only; request bodies carry timestamps and
	// message IDs that vary between runs.
	r.SetMatcher(func(req *http.Request, i cassette.Request) bool {
		return req.Method == i.Method && req.URL.String() == i.URL
	})

	t.Cleanup(func() {
		if err := r.Stop(); err != nil {
			t.Errorf("stop cassette %s: %v", name, err)
		}
	})
	return r
}

// HTTPClient wraps the recorder in an http.Client for injection into
// API clients.
func HTTPClient(r *recorder.Recorder) *http.Client {
	return &http.Client{Transport: r}
}
