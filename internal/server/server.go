package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/apidocs/internal/catalog"
)

// Config holds server configuration
type Config struct {
	// Address is the listen address (e.g., "localhost:8000")
	Address string

	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds the graceful shutdown
	ShutdownTimeout time.Duration

	// AllowedOrigins admits cross-origin browser clients (nil for localhost)
	AllowedOrigins []string
}

// DefaultConfig returns the default server configuration. The write timeout
// leaves room for a catalog fetch inside a request.
func DefaultConfig(addr string) Config {
	return Config{
		Address:           addr,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Server serves the session API until its context is cancelled
type Server struct {
	config   Config
	sessions *Sessions
	http     *http.Server
	logger   *zap.Logger
}

// New creates a server whose sessions load catalogs through loader
func New(config Config, loader catalog.Loader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := NewSessions(loader, logger)

	return &Server{
		config:   config,
		sessions: sessions,
		logger:   logger,
		http: &http.Server{
			Addr:              config.Address,
			Handler:           NewHandler(sessions, config.AllowedOrigins, logger).Routes(),
			ReadTimeout:       config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
			IdleTimeout:       config.IdleTimeout,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully and closes every session.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.sessions.CloseAll()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown
	s.sessions.CloseAll()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
