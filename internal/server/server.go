package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/agbru/fibdispatch/internal/errors"
	"github.com/agbru/fibdispatch/internal/fibonacci"
	"github.com/agbru/fibdispatch/internal/harness"
	"github.com/agbru/fibdispatch/internal/logging"
	"github.com/agbru/fibdispatch/internal/sysmon"
)

const (
	defaultRequestTimeout  = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultAlgorithm       = "native"
)

// DispatchResponse is the body of a successful /dispatch request.
type DispatchResponse struct {
	Index      uint64 `json:"index"`
	Result     uint64 `json:"result"`
	Algorithm  string `json:"algorithm"`
	Wrapped    bool   `json:"wrapped"`
	Ticks      uint64 `json:"ticks"`
	DurationNS int64  `json:"duration_ns"`
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status     string   `json:"status"`
	Version    string   `json:"version,omitempty"`
	Algorithms []string `json:"algorithms"`
	CPUPercent float64  `json:"cpu_percent"`
	MemPercent float64  `json:"mem_percent"`
	ProcessRSS uint64   `json:"process_rss_bytes"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves the HTTP API.
type Server struct {
	httpServer      *http.Server
	factory         fibonacci.CalculatorFactory
	metrics         *Metrics
	logger          logging.Logger
	security        SecurityConfig
	clock           harness.Clock
	sampler         sysmon.Sampler
	version         string
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option { return func(s *Server) { s.logger = l } }

// WithSecurityConfig replaces DefaultSecurityConfig.
func WithSecurityConfig(c SecurityConfig) Option { return func(s *Server) { s.security = c } }

// WithRequestTimeout bounds each dispatch.
func WithRequestTimeout(d time.Duration) Option { return func(s *Server) { s.requestTimeout = d } }

// WithSampler replaces the gopsutil sampler used by /health.
func WithSampler(sm sysmon.Sampler) Option { return func(s *Server) { s.sampler = sm } }

// WithClock replaces the monotonic clock used to count ticks.
func WithClock(c harness.Clock) Option { return func(s *Server) { s.clock = c } }

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option { return func(s *Server) { s.version = v } }

// New creates a server listening on addr once Start is called.
func New(addr string, factory fibonacci.CalculatorFactory, opts ...Option) *Server {
	s := &Server{
		factory:         factory,
		metrics:         NewMetrics(),
		logger:          logging.NewDefaultLogger(),
		security:        DefaultSecurityConfig(),
		clock:           harness.NewMonotonicClock(),
		requestTimeout:  defaultRequestTimeout,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sampler == nil {
		s.sampler = sysmon.NewSystemSampler()
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(path string, h http.HandlerFunc) {
		mux.HandleFunc(path, SecurityMiddleware(s.security, s.metricsMiddleware(h)))
	}
	route("/dispatch", s.handleDispatch)
	route("/health", s.handleHealth)
	route("/metrics", s.handleMetrics)
	return mux
}

// Start serves until ctx is done, then shuts down gracefully. It returns
// nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next(rec, r)
		s.metrics.ObserveRequest(r.URL.Path, rec.code, time.Since(start))
	}
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	q := r.URL.Query()
	index, err := harness.ParseIndex(q.Get("index"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if s.security.MaxIndex > 0 && index > s.security.MaxIndex {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("index %d exceeds the limit of %d", index, s.security.MaxIndex))
		return
	}

	algo := strings.ToLower(q.Get("algo"))
	if algo == "" {
		algo = defaultAlgorithm
	}
	calc, err := s.factory.Get(algo)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	m, err := harness.Measure(ctx, calc, index, s.clock)
	if err != nil {
		status := http.StatusInternalServerError
		switch apperrors.ExitCode(err) {
		case apperrors.ExitErrorTimeout:
			status = http.StatusGatewayTimeout
		case apperrors.ExitErrorCanceled:
			status = http.StatusServiceUnavailable
		}
		s.logger.Error("dispatch failed", err, logging.Uint64("index", index), logging.String("algo", algo))
		s.writeError(w, status, err)
		return
	}

	wrapped := fibonacci.Wraps(index)
	s.metrics.RecordDispatch(algo, wrapped)
	s.logger.Debug("dispatch",
		logging.Uint64("index", index),
		logging.String("algo", algo),
		logging.Uint64("ticks", m.Ticks))
	s.writeJSON(w, http.StatusOK, DispatchResponse{
		Index:      index,
		Result:     m.Result,
		Algorithm:  algo,
		Wrapped:    wrapped,
		Ticks:      m.Ticks,
		DurationNS: m.Elapsed.Nanoseconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	st := s.sampler.Sample(r.Context())
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Version:    s.version,
		Algorithms: s.factory.List(),
		CPUPercent: st.CPUPercent,
		MemPercent: st.MemPercent,
		ProcessRSS: st.ProcessRSS,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
