package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/auralens/auralens/internal/assemble"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSaveEvents(t *testing.T) (*saveEvents, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.txt")
	return &saveEvents{
		logger:    testLogger(),
		assembler: assemble.New(assemble.DefaultSeparator, testLogger()),
		savePath:  path,
	}, path
}

func readSaved(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read incremental output: %v", err)
	}
	return string(data)
}

func TestSaveEventsBlankPageDoesNotStallPrefix(t *testing.T) {
	ev, path := newSaveEvents(t)

	ev.PageCompleted(1, 3, "")
	ev.PageCompleted(2, 3, "second page")

	got := readSaved(t, path)
	if !strings.Contains(got, "second page") {
		t.Errorf("saved output %q missing page 2 after a blank page 1", got)
	}
	if !strings.Contains(got, "--- Page 2 ---") {
		t.Errorf("saved output %q missing page separator", got)
	}
}

func TestSaveEventsPersistsErrorMarkers(t *testing.T) {
	ev, path := newSaveEvents(t)

	ev.PageError(1, errors.New("upstream hiccup"))
	ev.PageCompleted(2, 2, "fine page")

	got := readSaved(t, path)
	if !strings.Contains(got, "[ERROR: upstream hiccup]") {
		t.Errorf("saved output %q missing the page 1 error marker", got)
	}
	if !strings.Contains(got, "fine page") {
		t.Errorf("saved output %q missing page 2", got)
	}
}

func TestSaveEventsSavesOnlyAttemptedPrefix(t *testing.T) {
	ev, path := newSaveEvents(t)

	// Page 2 finishing out of order must not publish the gap at page 1.
	ev.PageCompleted(2, 2, "later page")
	if _, err := os.Stat(path); err == nil {
		if got := readSaved(t, path); got != "" {
			t.Errorf("saved output %q, want nothing before page 1 is attempted", got)
		}
	}

	ev.PageCompleted(1, 2, "first page")
	got := readSaved(t, path)
	if !strings.Contains(got, "first page") || !strings.Contains(got, "later page") {
		t.Errorf("saved output %q missing pages after prefix completes", got)
	}
}
