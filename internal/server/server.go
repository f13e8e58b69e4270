// Package server exposes the calculator over HTTP.
//
// Endpoints:
//
//	POST /v1/eval   {"expr": "...", "backend": "mpi"} evaluates a script
//	GET  /health    liveness probe
//	GET  /metrics   Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/agbru/mpicalc/internal/calc"
	apperrors "github.com/agbru/mpicalc/internal/errors"
	"github.com/agbru/mpicalc/internal/logging"
	"github.com/agbru/mpicalc/internal/orchestration"
)

// Server timeouts.
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Minute
	IdleTimeout     = 2 * time.Minute
	ShutdownTimeout = 30 * time.Second
)

// Server is the HTTP front end of the calculator.
type Server struct {
	httpServer     *http.Server
	factory        calc.BackendFactory
	defaultBackend string
	evalTimeout    time.Duration
	security       SecurityConfig
	metrics        *Metrics
	logger         logging.Logger
	startTime      time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option { return func(s *Server) { s.logger = l } }

// WithSecurityConfig replaces the default security settings.
func WithSecurityConfig(c SecurityConfig) Option { return func(s *Server) { s.security = c } }

// WithDefaultBackend sets the backend used when a request names none.
func WithDefaultBackend(name string) Option { return func(s *Server) { s.defaultBackend = name } }

// WithEvalTimeout bounds each evaluation.
func WithEvalTimeout(d time.Duration) Option { return func(s *Server) { s.evalTimeout = d } }

// NewServer returns a server listening on addr once Start is called.
func NewServer(addr string, factory calc.BackendFactory, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		defaultBackend: "mpi",
		evalTimeout:    time.Minute,
		security:       DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		logger:         logging.NewDefaultLogger(),
		startTime:      time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}
	return s
}

// Handler returns the routed handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/eval", s.wrap(s.handleEval))
	mux.HandleFunc("/health", s.wrap(s.handleHealth))
	mux.HandleFunc("/metrics", s.wrap(s.handleMetrics))
	return mux
}

func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return s.metricsMiddleware(SecurityMiddleware(s.security, h))
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return apperrors.WrapError(err, "listening on %s", s.httpServer.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

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

	s.logger.Info("shutting down", logging.Duration("grace", ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return apperrors.WrapError(err, "shutdown")
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

// metricsMiddleware tracks active requests, counts and latencies, and logs
// each request.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		elapsed := time.Since(start)

		s.metrics.ObserveRequest(r.URL.Path, rec.code, elapsed)
		if s.logger != nil {
			s.logger.Debug("request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", rec.code),
				logging.Duration("duration", elapsed))
		}
	}
}

// EvalRequest is the body of POST /v1/eval.
type EvalRequest struct {
	Expr    string `json:"expr"`
	Backend string `json:"backend,omitempty"`
	Hex     bool   `json:"hex,omitempty"`
}

// EvalResponse is the reply to a successful evaluation. With backend "all"
// the per-backend outcomes are listed in Backends.
type EvalResponse struct {
	Result     string          `json:"result"`
	Hex        string          `json:"hex,omitempty"`
	Bits       int             `json:"bits"`
	Backend    string          `json:"backend"`
	DurationMS float64         `json:"duration_ms"`
	Assigned   []string        `json:"assigned,omitempty"`
	Backends   []BackendResult `json:"backends,omitempty"`
}

// BackendResult is one row of a comparison.
type BackendResult struct {
	Backend    string  `json:"backend"`
	Result     string  `json:"result,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, apperrors.ValidationError{Field: "method", Message: "use POST"})
		return
	}

	var req EvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, apperrors.ValidationError{Field: "body", Message: err.Error()})
			return
		}
		s.writeError(w, http.StatusBadRequest, apperrors.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}
	if req.Expr == "" {
		s.writeError(w, http.StatusBadRequest, apperrors.ValidationError{Field: "expr", Message: "must not be empty"})
		return
	}
	if m := s.security.MaxExprLength; m > 0 && len(req.Expr) > m {
		s.writeError(w, http.StatusRequestEntityTooLarge, apperrors.ValidationError{Field: "expr", Message: fmt.Sprintf("longer than %d bytes", m)})
		return
	}
	if req.Backend == "" {
		req.Backend = s.defaultBackend
	}
	backends, err := calc.Select(s.factory, req.Backend)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	prog, err := calc.ParseAndValidate(req.Expr, s.security.MaxDigits)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	if s.evalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.evalTimeout)
		defer cancel()
	}

	results := orchestration.ExecuteEvaluations(ctx, backends, prog, nil, nil, io.Discard)
	orchestration.SortResults(results)
	resp, err := buildResponse(results, req.Hex)
	if err != nil {
		err = apperrors.AsTimeout(err, "eval", s.evalTimeout)
		s.writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("evaluated",
		logging.String("backend", resp.Backend),
		logging.Int("bits", resp.Bits),
		logging.Float64("duration_ms", resp.DurationMS))
	writeJSON(w, http.StatusOK, resp)
}

// buildResponse reduces the results to a single reply. With several
// backends every one must succeed with the same value.
func buildResponse(results []orchestration.EvaluationResult, hex bool) (EvalResponse, error) {
	first := results[0]
	if len(results) == 1 && first.Err != nil {
		return EvalResponse{}, first.Err
	}

	var resp EvalResponse
	if len(results) > 1 {
		for _, r := range results {
			row := BackendResult{Backend: r.Backend, DurationMS: ms(r.Duration)}
			if r.Err != nil {
				row.Error = r.Err.Error()
			} else if r.Value != nil {
				row.Result = r.Value.String()
			}
			resp.Backends = append(resp.Backends, row)
		}
		if first.Err != nil {
			return EvalResponse{}, first.Err
		}
		if !orchestration.Consistent(results) || results[len(results)-1].Err != nil {
			return EvalResponse{}, errMismatch
		}
	}

	resp.Backend = first.Backend
	resp.DurationMS = ms(first.Duration)
	resp.Assigned = first.Assigned
	if first.Value != nil {
		resp.Result = first.Value.String()
		resp.Bits = first.Value.BitLen()
		if hex {
			resp.Hex = "0x" + first.Value.Text(16)
		}
	}
	return resp, nil
}

var errMismatch = errors.New("backends disagree")

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// statusFor maps an evaluation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, errMismatch):
		return http.StatusInternalServerError
	case apperrors.IsArithmeticError(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, apperrors.ValidationError{Field: "method", Message: "use GET"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"backends": s.factory.List(),
		"uptime_s": int(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, apperrors.ValidationError{Field: "method", Message: "use GET"})
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	kind := apperrors.KindOf(err)
	if errors.Is(err, errMismatch) {
		kind = "mismatch"
	}
	if s.metrics != nil && code != http.StatusMethodNotAllowed {
		s.metrics.RecordEvalError(kind)
	}
	if s.logger != nil {
		s.logger.Debug("request failed", logging.Int("status", code), logging.String("kind", kind), logging.Err(err))
	}
	writeJSON(w, code, ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
