// Package fixtures writes bot data files the way the bot does (one JSON
// document per singleton, one JSON object per NDJSON line) and serves a
// directory of them over HTTP for tests and local runs.
package fixtures

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

var mu sync.Mutex

// WriteJSON replaces dir/name with v encoded as a single JSON document.
func WriteJSON(dir, name string, v any) error {
	mu.Lock()
	defer mu.Unlock()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o644)
}

// AppendNDJSON appends each record to dir/name as its own line.
func AppendNDJSON[T any](dir, name string, records ...T) error {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		lines = append(lines, string(b))
	}
	return AppendRaw(dir, name, lines...)
}

// AppendRaw appends lines verbatim, for truncated or malformed records.
func AppendRaw(dir, name string, lines ...string) error {
	mu.Lock()
	defer mu.Unlock()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return err
		}
	}
	return nil
}

// Serve starts a file server over dir and closes it with the test.
func Serve(t testing.TB, dir string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	t.Cleanup(srv.Close)
	return srv
}

// Must fails the test immediately on a fixture write error.
func Must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}
