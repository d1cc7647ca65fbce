package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/go-storyreel/internal/captions"
	"github.com/example/go-storyreel/internal/config"
	"github.com/example/go-storyreel/internal/story"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Narrator turns a narration request into rendered audio. Satisfied by
// *story.Service.
type Narrator interface {
	Narrate(ctx context.Context, req story.NarrateRequest) (*story.NarrateResult, error)
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxScriptBytes int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
	defaults       config.SynthConfig
}

func defaultOptions() options {
	return options{
		maxScriptBytes: 4096,
		workers:        2,
		requestTimeout: 120 * time.Second,
		logger:         slog.Default(),
		defaults:       config.DefaultConfig().Synth,
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxScriptBytes sets the maximum allowed script length in bytes for POST /narrate.
func WithMaxScriptBytes(n int) Option {
	return func(o *options) { o.maxScriptBytes = n }
}

// WithWorkers sets the maximum number of concurrent render calls.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request render deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSynthDefaults sets the values used for request fields left at zero.
func WithSynthDefaults(d config.SynthConfig) Option {
	return func(o *options) { o.defaults = d }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	narrator Narrator
	opts     options
	sem      chan struct{} // semaphore for worker pool
	log      *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /moods,
// POST /narrate, and POST /captions.
func NewHandler(narrator Narrator, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		narrator: narrator,
		opts:     opts,
		log:      opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/moods", h.handleMoods)
	mux.HandleFunc("/narrate", h.handleNarrate)
	mux.HandleFunc("/captions", h.handleCaptions)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

func (h *handler) handleMoods(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, story.Moods())
}

// Volumes are pointers so their absence can be told apart from an explicit
// zero; silencing a stem is a valid request.
type narrateRequest struct {
	Script      string   `json:"script"`
	Voice       string   `json:"voice"`
	Mood        string   `json:"mood"`
	Tempo       float64  `json:"tempo"`
	Speed       float64  `json:"speed"`
	VoiceVolume *float64 `json:"voice_volume"`
	MusicVolume *float64 `json:"music_volume"`
}

func (h *handler) handleNarrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req narrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Script == "" {
		writeError(w, http.StatusBadRequest, "script field is required")
		return
	}

	if len(req.Script) > h.opts.maxScriptBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("script exceeds maximum size of %d bytes", h.opts.maxScriptBytes))
		return
	}

	// Acquire a worker slot — honour context cancellation while waiting.
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
			// slot acquired
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return
		}
		defer func() { <-h.sem }()
	}

	// Apply per-request timeout.
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	requestID := uuid.NewString()
	start := time.Now()
	res, err := h.narrator.Narrate(ctx, h.narrateParams(req))
	durationMS := time.Since(start).Milliseconds()

	if err == nil && res == nil {
		err = errors.New("narrator returned no result")
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			h.log.WarnContext(r.Context(), "narration timed out",
				slog.String("request_id", requestID),
				slog.Int("script_len", len(req.Script)),
				slog.Int64("duration_ms", durationMS),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusGatewayTimeout, "narration timed out")
			return
		}
		h.log.ErrorContext(r.Context(), "narration failed",
			slog.String("request_id", requestID),
			slog.Int("script_len", len(req.Script)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "narration complete",
		slog.String("request_id", requestID),
		slog.Int("script_len", len(req.Script)),
		slog.Int64("duration_ms", durationMS),
		slog.Int("wav_bytes", len(res.WAV)),
	)

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.WAV)
}

// narrateParams fills absent request fields from the configured defaults.
func (h *handler) narrateParams(req narrateRequest) story.NarrateRequest {
	d := h.opts.defaults
	out := story.NarrateRequest{
		Script:      req.Script,
		Voice:       req.Voice,
		Mood:        req.Mood,
		Tempo:       req.Tempo,
		Speed:       req.Speed,
		VoiceVolume: d.VoiceVolume,
		MusicVolume: d.MusicVolume,
	}
	if out.Mood == "" {
		out.Mood = d.Mood
	}
	if out.Tempo == 0 {
		out.Tempo = d.Tempo
	}
	if out.Speed == 0 {
		out.Speed = d.Speed
	}
	if req.VoiceVolume != nil {
		out.VoiceVolume = *req.VoiceVolume
	}
	if req.MusicVolume != nil {
		out.MusicVolume = *req.MusicVolume
	}
	return out
}

type captionsRequest struct {
	Script   string  `json:"script"`
	Duration float64 `json:"duration"`
	Aspect   string  `json:"aspect"`
}

func (h *handler) handleCaptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req captionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Script == "" {
		writeError(w, http.StatusBadRequest, "script field is required")
		return
	}
	if len(req.Script) > h.opts.maxScriptBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("script exceeds maximum size of %d bytes", h.opts.maxScriptBytes))
		return
	}
	if req.Duration <= 0 {
		writeError(w, http.StatusBadRequest, "duration must be positive")
		return
	}

	aspect := captions.AspectVertical
	if req.Aspect != "" {
		var err error
		aspect, err = captions.ParseAspect(req.Aspect)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	srt, err := story.Captions(req.Script, req.Duration, aspect)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/x-subrip")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(srt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	narrator        Narrator
	shutdownTimeout time.Duration
}

func New(cfg config.Config, narrator Narrator) *Server {
	timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{
		cfg:             cfg,
		narrator:        narrator,
		shutdownTimeout: timeout,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	if s.narrator == nil {
		return errors.New("server: narrator is required")
	}

	h := NewHandler(s.narrator,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxScriptBytes(s.cfg.Server.MaxScriptBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
		WithSynthDefaults(s.cfg.Synth),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks whether a server at addr answers its health endpoint.
func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
