// Package server exposes the phonemization pipeline over HTTP.
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

	"github.com/example/go-matcha-text/internal/cleaners"
	"github.com/example/go-matcha-text/internal/config"
	"github.com/example/go-matcha-text/internal/phonemizer"
	"github.com/example/go-matcha-text/internal/sequence"
	"github.com/example/go-matcha-text/internal/symbols"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

var (
	phonemizeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchatext_phonemize_requests_total",
		Help: "Total number of phonemize requests",
	}, []string{"status"})

	phonemizeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "matchatext_phonemize_latency_seconds",
		Help:    "Phonemize request latency in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
	})
)

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes    int
	workers         int
	requestTimeout  time.Duration
	defaultPipeline string
	logger          *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:    4096,
		workers:         2,
		requestTimeout:  60 * time.Second,
		defaultPipeline: "english_cleaners2",
		logger:          slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /phonemize.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent phonemization calls.
// Each in-flight request owns a distinct worker key, so the backend pool
// never shares an engine handle between concurrent requests.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithDefaultPipeline sets the pipeline used when a request omits one.
func WithDefaultPipeline(name string) Option {
	return func(o *options) { o.defaultPipeline = name }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	enc  *sequence.Encoder
	opts options
	keys chan string // pool of worker keys doubling as a concurrency limit
	log  *slog.Logger
}

// NewHandler returns an http.Handler serving /health, /pipelines, /metrics,
// and POST /phonemize.
func NewHandler(enc *sequence.Encoder, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.workers < 1 {
		opts.workers = 1
	}

	h := &handler{
		enc:  enc,
		opts: opts,
		keys: make(chan string, opts.workers),
		log:  opts.logger,
	}
	for i := 0; i < opts.workers; i++ {
		h.keys <- fmt.Sprintf("http-%d", i)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/pipelines", h.handlePipelines)
	mux.HandleFunc("/phonemize", h.handlePhonemize)
	mux.Handle("/metrics", promhttp.Handler())
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

type pipelineInfo struct {
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
	Markers  bool   `json:"markers"`
}

func (h *handler) handlePipelines(w http.ResponseWriter, _ *http.Request) {
	infos := make([]pipelineInfo, 0, len(cleaners.Names()))
	for _, name := range cleaners.Names() {
		p, err := cleaners.Lookup(name)
		if err != nil {
			continue
		}
		infos = append(infos, pipelineInfo{
			Name:     p.Name,
			Language: p.Language,
			Markers:  p.SupportsMarkers(),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

type phonemizeRequest struct {
	Text        string `json:"text"`
	Pipeline    string `json:"pipeline"`
	Intersperse bool   `json:"intersperse"`
}

type phonemizeResponse struct {
	Phonemes string  `json:"phonemes"`
	IDs      []int64 `json:"ids"`
	Pipeline string  `json:"pipeline"`
}

func (h *handler) handlePhonemize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.reject(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil {
		h.reject(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req phonemizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	text, err := cleaners.Normalize(req.Text)
	if err != nil {
		h.reject(w, http.StatusBadRequest, "text field is required")
		return
	}

	if len(text) > h.opts.maxTextBytes {
		h.reject(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	pipeline := req.Pipeline
	if pipeline == "" {
		pipeline = h.opts.defaultPipeline
	}

	// Acquire a worker key — honour context cancellation while waiting.
	var workerKey string
	select {
	case workerKey = <-h.keys:
	case <-r.Context().Done():
		h.reject(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return
	}
	defer func() { h.keys <- workerKey }()

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	res, err := h.enc.Encode(ctx, text, pipeline, workerKey)
	durationMS := time.Since(start).Milliseconds()
	phonemizeLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		status := http.StatusInternalServerError
		var vocabErr *sequence.VocabularyError
		switch {
		case errors.Is(err, cleaners.ErrUnknownPipeline), errors.Is(err, phonemizer.ErrUnknownLanguage):
			status = http.StatusBadRequest
		case errors.As(err, &vocabErr):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			status = http.StatusGatewayTimeout
		}
		h.log.ErrorContext(r.Context(), "phonemize failed",
			slog.String("pipeline", pipeline),
			slog.Int("text_len", len(text)),
			slog.Int64("duration_ms", durationMS),
			slog.String("error", err.Error()),
		)
		h.reject(w, status, err.Error())
		return
	}

	ids := res.IDs
	if req.Intersperse {
		ids = sequence.Intersperse(ids, symbols.PadID)
	}

	h.log.InfoContext(r.Context(), "phonemize complete",
		slog.String("pipeline", pipeline),
		slog.Int("text_len", len(text)),
		slog.Int("num_ids", len(ids)),
		slog.Int64("duration_ms", durationMS),
	)
	phonemizeRequests.WithLabelValues("ok").Inc()

	writeJSON(w, http.StatusOK, phonemizeResponse{
		Phonemes: res.Phonemes,
		IDs:      ids,
		Pipeline: pipeline,
	})
}

func (h *handler) reject(w http.ResponseWriter, status int, msg string) {
	phonemizeRequests.WithLabelValues("error").Inc()
	writeError(w, status, msg)
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
	shutdownTimeout time.Duration
}

func New(cfg config.Config) *Server {
	return &Server{
		cfg:             cfg,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	backend, err := config.NormalizeBackend(s.cfg.Phonemizer.Backend)
	if err != nil {
		return err
	}

	factory, err := phonemizer.NewFactory(backend, s.cfg.Phonemizer.EspeakPath)
	if err != nil {
		return err
	}

	pool := phonemizer.NewPool(factory, phonemizer.Languages()...)
	defer func() { _ = pool.Close() }()

	enc := sequence.NewEncoder(pool)

	h := NewHandler(enc,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
		WithDefaultPipeline(s.cfg.Text.Pipeline),
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
