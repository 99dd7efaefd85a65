// Package server exposes the compiler over HTTP.
//
// Routes:
//
//	GET  /healthz                liveness probe
//	GET  /v1/backends            supported backends as JSON
//	POST /v1/compile?to=<name>   request body is the source, response body the output
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/alnah/go-mato"
)

// DefaultMaxBodyBytes caps request bodies when Config leaves it unset.
const DefaultMaxBodyBytes = 4 << 20

// shutdownTimeout bounds in-flight requests after the context ends.
const shutdownTimeout = 10 * time.Second

// Response headers set on successful compilations.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderDocType   = "X-Mato-Doctype"
	HeaderWarnings  = "X-Mato-Warnings"
)

// Config configures a Server.
type Config struct {
	// Options apply to every compiler; the backend comes from the request.
	Options []mato.Option

	// Workers is the compiler pool size per backend (0 = auto).
	Workers int

	// DefaultBackend is used when the request has no "to" parameter.
	DefaultBackend mato.Backend

	MaxBodyBytes int64
	Logger       *log.Logger
}

// Server compiles documents posted over HTTP. Compilers are pooled per
// backend and created on first use.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router

	mu    sync.Mutex
	pools map[mato.Backend]*mato.CompilerPool
}

// New creates a server. Close releases its compilers.
func New(cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.DefaultBackend == "" {
		cfg.DefaultBackend = mato.BackendPDF
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		pools:  make(map[mato.Backend]*mato.CompilerPool),
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/backends", s.handleBackends)
		r.Post("/compile", s.handleCompile)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases every pooled compiler.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for b, p := range s.pools {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.pools, b)
	}
	return errors.Join(errs...)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) pool(b mato.Backend) *mato.CompilerPool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[b]
	if !ok {
		opts := append(append([]mato.Option{}, s.cfg.Options...), mato.WithBackend(b), mato.WithLogger(s.logger))
		p = mato.NewCompilerPool(mato.ResolvePoolSize(s.cfg.Workers), opts...)
		s.pools[b] = p
	}
	return p
}

func (s *Server) handleBackends(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(mato.Backends()))
	for _, b := range mato.Backends() {
		names = append(names, string(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"backends": names, "default": s.cfg.DefaultBackend})
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	backend := s.cfg.DefaultBackend
	if to := r.URL.Query().Get("to"); to != "" {
		b, err := mato.ParseBackend(to)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		backend = b
	}

	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	pool := s.pool(backend)
	c, err := pool.Acquire()
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	res, err := c.Compile(r.Context(), mato.Input{Source: src})
	pool.Release(c)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	for _, warning := range res.Warnings {
		s.logger.Warn("compile warning", "request_id", w.Header().Get(HeaderRequestID), "err", warning)
	}

	h := w.Header()
	h.Set("Content-Type", contentType(backend))
	h.Set("Content-Length", strconv.Itoa(len(res.Output)))
	h.Set(HeaderDocType, res.DocType.String())
	h.Set(HeaderWarnings, strconv.Itoa(len(res.Warnings)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}

// errorBody is the JSON error response.
type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
	Line      int    `json:"line,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := errorBody{Error: err.Error(), RequestID: w.Header().Get(HeaderRequestID)}
	var pe *mato.ParseError
	if errors.As(err, &pe) {
		body.Line, body.Offset = pe.Line, pe.Offset
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("compile failed", "request_id", body.RequestID, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, body)
}

// statusFor maps compilation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, mato.ErrSyntax):
		return http.StatusUnprocessableEntity
	case errors.Is(err, mato.ErrInvalidBackend),
		errors.Is(err, mato.ErrInvalidEngine),
		errors.Is(err, mato.ErrInvalidLanguage):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, mato.ErrToolNotFound),
		errors.Is(err, mato.ErrBrowserConnect),
		errors.Is(err, mato.ErrPoolClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func contentType(b mato.Backend) string {
	switch b {
	case mato.BackendPDF:
		return "application/pdf"
	case mato.BackendHTML:
		return "text/html; charset=utf-8"
	case mato.BackendSVG:
		return "image/svg+xml"
	case mato.BackendDot:
		return "text/vnd.graphviz; charset=utf-8"
	case mato.BackendMarkdown:
		return "text/markdown; charset=utf-8"
	case mato.BackendTeX:
		return "application/x-tex; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID tags every request with an ID, keeping a valid incoming one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", ww.Header().Get(HeaderRequestID),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start))
	})
}
