package server_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/go-storyreel/internal/server"
	"github.com/example/go-storyreel/internal/story"
)

var errRenderFailed = errors.New("render failed")

// capturingHandler captures all slog records during a test.
type capturingHandler struct {
	records []slog.Record
}

func (c *capturingHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (c *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	c.records = append(c.records, r)
	return nil
}
func (c *capturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return c }
func (c *capturingHandler) WithGroup(name string) slog.Handler       { return c }

func (c *capturingHandler) attrMap(idx int) map[string]any {
	m := make(map[string]any)
	c.records[idx].Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value.Any()
		return true
	})
	return m
}

func TestNarrate_LogsRequestIDAndDuration(t *testing.T) {
	cap := &capturingHandler{}
	logger := slog.New(cap)

	h := server.NewHandler(
		&stubNarrator{res: &story.NarrateResult{WAV: []byte("RIFFfake")}},
		server.WithLogger(logger),
	)

	body := bytes.NewBufferString(`{"script":"Hello world."}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/narrate", body)
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	if len(cap.records) == 0 {
		t.Fatal("want at least one log record, got none")
	}

	var found bool
	for i := range cap.records {
		attrs := cap.attrMap(i)
		if id, ok := attrs["request_id"]; ok {
			found = true
			if id == "" {
				t.Error("request_id attribute is empty")
			}
			if _, ok := attrs["script_len"]; !ok {
				t.Error("want script_len attribute in log record")
			}
			if _, ok := attrs["duration_ms"]; !ok {
				t.Error("want duration_ms attribute in log record")
			}
		}
	}
	if !found {
		t.Error("no log record contained a 'request_id' attribute")
	}
}

func TestNarrate_LogsErrorOnFailure(t *testing.T) {
	cap := &capturingHandler{}
	logger := slog.New(cap)

	h := server.NewHandler(
		&stubNarrator{err: errRenderFailed},
		server.WithLogger(logger),
	)

	body := bytes.NewBufferString(`{"script":"Hello."}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/narrate", body)
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}

	var foundError bool
	for i := range cap.records {
		attrs := cap.attrMap(i)
		if _, ok := attrs["error"]; ok {
			foundError = true
		}
	}
	if !foundError {
		t.Error("want a log record with an 'error' attribute on render failure")
	}
}

func TestParseLogLevel_LevelFromString(t *testing.T) {
	cases := []struct {
		level   string
		wantLvl slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo}, // default
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			lvl, err := server.ParseLogLevel(tc.level)
			if err != nil {
				t.Fatalf("ParseLogLevel(%q) error: %v", tc.level, err)
			}
			if lvl != tc.wantLvl {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.level, lvl, tc.wantLvl)
			}
		})
	}
}

func TestParseLogLevel_InvalidLevelReturnsError(t *testing.T) {
	_, err := server.ParseLogLevel("verbose")
	if err == nil {
		t.Error("want error for unknown log level")
	}
}
