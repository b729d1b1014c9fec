// Package http exposes the gateway over HTTP. It parses ask requests from
// query strings, JSON bodies or multipart forms, hands them to the
// dispatcher, and maps the error taxonomy onto status codes. Every request
// is logged through zerolog's hlog middleware.
package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/chatgate"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Dispatcher runs one ask request to completion.
type Dispatcher interface {
	Dispatch(ctx context.Context, req chatgate.Request) (*chatgate.Response, error)
}

// Sessions is the session store as seen by the admin routes.
type Sessions interface {
	chatgate.SessionStore
	Get(id string) (chatgate.Conversation, bool)
	Delete(id string) bool
}

// Renderer converts markdown replies for clients that ask for a format.
type Renderer interface {
	HTML(source string) (string, error)
	Plain(source string) string
}

// Server serves the gateway routes.
type Server struct {
	dispatcher Dispatcher
	sessions   Sessions
	renderer   Renderer
	health     *Health
	logger     zerolog.Logger
	newID      func() string

	addr              string
	maxRequestBytes   int64
	maxQuestionLength int
	shutdownTimeout   time.Duration

	handler http.Handler
}

// Option configures a [Server].
type Option func(*Server)

// WithAddr sets the listen address for Run. Default is :5000.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithLogger sets the base logger for access and error logs.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRenderer enables the format query parameter.
func WithRenderer(r Renderer) Option {
	return func(s *Server) { s.renderer = r }
}

// WithMaxRequestBytes bounds request bodies. 0 disables the limit.
func WithMaxRequestBytes(n int64) Option {
	return func(s *Server) { s.maxRequestBytes = n }
}

// WithMaxQuestionLength bounds the question in grapheme clusters. 0
// disables the limit.
func WithMaxQuestionLength(n int) Option {
	return func(s *Server) { s.maxQuestionLength = n }
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithIDGenerator sets the session id generator used by POST /sessions.
// Default is a random UUID.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// New creates a Server.
func New(dispatcher Dispatcher, sessions Sessions, opts ...Option) *Server {
	s := &Server{
		dispatcher:        dispatcher,
		sessions:          sessions,
		health:            NewHealth(),
		logger:            zerolog.Nop(),
		newID:             uuid.NewString,
		addr:              chatgate.DefaultAddr,
		maxRequestBytes:   chatgate.DefaultMaxRequestBytes,
		maxQuestionLength: chatgate.DefaultMaxQuestionLength,
		shutdownTimeout:   chatgate.DefaultShutdownTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	s.handler = s.middleware(s.routes())
	return s
}

// Handler returns the root handler with logging and recovery applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Health returns the readiness tracker.
func (s *Server) Health() *Health {
	return s.health
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ask", s.handleAskQuery)
	mux.HandleFunc("POST /ask", s.handleAskBody)
	mux.HandleFunc("POST /ask_with_image", s.handleAskBody)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /healthz", s.health.LivenessHandler())
	mux.HandleFunc("GET /readyz", s.health.ReadinessHandler())
	return mux
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then drains: readiness flips to
// draining and in-flight requests get the shutdown timeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.health.SetReady()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("listening")

	select {
	case err := <-errc:
		s.health.SetDraining()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	s.health.SetDraining()
	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	s.logger.Info().Msg("shutdown complete")
	return nil
}
