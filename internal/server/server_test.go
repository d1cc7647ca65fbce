package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/go-storyreel/internal/server"
	"github.com/example/go-storyreel/internal/story"
)

// stubNarrator implements server.Narrator for tests.
type stubNarrator struct {
	res  *story.NarrateResult
	err  error
	last story.NarrateRequest
}

func (s *stubNarrator) Narrate(_ context.Context, req story.NarrateRequest) (*story.NarrateResult, error) {
	s.last = req
	return s.res, s.err
}

func narrateBody(t *testing.T, fields map[string]any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func TestHealth_Returns200WithStatusOK(t *testing.T) {
	h := server.NewHandler(&stubNarrator{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body map[string]string
	err := json.NewDecoder(rec.Body).Decode(&body)
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("want status=ok, got %q", body["status"])
	}

	if _, ok := body["version"]; !ok {
		t.Error("want version field in response")
	}
}

// ---------------------------------------------------------------------------
// GET /moods
// ---------------------------------------------------------------------------

func TestMoods_ReturnsPresetList(t *testing.T) {
	h := server.NewHandler(&stubNarrator{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/moods", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var got []string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if len(got) == 0 {
		t.Fatal("want at least one mood preset")
	}
}

// ---------------------------------------------------------------------------
// POST /narrate
// ---------------------------------------------------------------------------

func TestNarrate_ReturnsWAVBytes(t *testing.T) {
	wav := []byte("RIFFfakewav")
	h := server.NewHandler(&stubNarrator{res: &story.NarrateResult{WAV: wav}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/narrate",
		narrateBody(t, map[string]any{"script": "Hello world.", "mood": "calm"}))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Content-Type = %q; want audio/wav", ct)
	}

	if !bytes.Equal(rec.Body.Bytes(), wav) {
		t.Error("response body does not match rendered WAV")
	}
}

func TestNarrate_AppliesSynthDefaults(t *testing.T) {
	stub := &stubNarrator{res: &story.NarrateResult{WAV: []byte("x")}}
	h := server.NewHandler(stub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/narrate",
		narrateBody(t, map[string]any{"script": "hi"}))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	if stub.last.Mood == "" {
		t.Error("mood default not applied")
	}
	if stub.last.VoiceVolume == 0 {
		t.Error("voice volume default not applied")
	}
	if stub.last.Tempo == 0 || stub.last.Speed == 0 {
		t.Error("tempo/speed defaults not applied")
	}
}

func TestNarrate_RequestValidation(t *testing.T) {
	h := server.NewHandler(&stubNarrator{res: &story.NarrateResult{WAV: []byte("x")}},
		server.WithMaxScriptBytes(16))

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid JSON", http.MethodPost, "{not json", http.StatusBadRequest},
		{"missing script", http.MethodPost, `{"mood":"calm"}`, http.StatusBadRequest},
		{"oversized script", http.MethodPost, `{"script":"` + strings.Repeat("a", 32) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/narrate", strings.NewReader(tt.body))
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d; want %d", rec.Code, tt.want)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body["error"] == "" {
				t.Error("want error message in body")
			}
		})
	}
}

func TestNarrate_ExplicitZeroVolumeRespected(t *testing.T) {
	stub := &stubNarrator{res: &story.NarrateResult{WAV: []byte("x")}}
	h := server.NewHandler(stub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/narrate",
		narrateBody(t, map[string]any{"script": "hi", "voice_volume": 0, "music_volume": 0}))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	if stub.last.VoiceVolume != 0 {
		t.Errorf("VoiceVolume = %f; want explicit 0 preserved", stub.last.VoiceVolume)
	}
	if stub.last.MusicVolume != 0 {
		t.Errorf("MusicVolume = %f; want explicit 0 preserved", stub.last.MusicVolume)
	}
}

func TestNarrate_NilResultReturns500(t *testing.T) {
	// Narrator misbehaving with (nil, nil) must yield an error response,
	// not a panic.
	h := server.NewHandler(&stubNarrator{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/narrate",
		narrateBody(t, map[string]any{"script": "hi"}))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500 for nil result", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("want error message in body")
	}
}

func TestNarrate_RenderFailureReturns500(t *testing.T) {
	h := server.NewHandler(&stubNarrator{err: context.DeadlineExceeded})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/narrate",
		narrateBody(t, map[string]any{"script": "hi"}))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d; want 504 for deadline exceeded", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /captions
// ---------------------------------------------------------------------------

func TestCaptions_ReturnsSRT(t *testing.T) {
	h := server.NewHandler(&stubNarrator{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/captions",
		narrateBody(t, map[string]any{"script": "Hello world.", "duration": 2.0, "aspect": "16:9"}))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "1\n") {
		t.Errorf("SRT body does not start with an entry index: %q", body)
	}
	if !strings.Contains(body, "Hello world.") {
		t.Errorf("SRT body missing caption text: %q", body)
	}
	if !strings.Contains(body, "00:00:02,000") {
		t.Errorf("SRT body missing end timestamp: %q", body)
	}
}

func TestCaptions_Validation(t *testing.T) {
	h := server.NewHandler(&stubNarrator{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing script", `{"duration":2}`, http.StatusBadRequest},
		{"zero duration", `{"script":"hi"}`, http.StatusBadRequest},
		{"bad aspect", `{"script":"hi","duration":2,"aspect":"4:3"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/captions", strings.NewReader(tt.body))
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d; want %d", rec.Code, tt.want)
			}
		})
	}
}
