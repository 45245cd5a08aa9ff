package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// shutdownTimeout bounds how long in-flight requests get once the context is
// cancelled. Connections still open after that are dropped.
const shutdownTimeout = 5 * time.Second

// Server owns the listener and http.Server for the static asset handler.
//
// The server is designed for shutdown via context cancellation.
type Server struct {
	port       int
	handler    http.Handler
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	done       chan struct{}
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - port: TCP port to listen on; 0 picks a free port
//   - handler: request pipeline, usually built with [NewHandler]
//   - logger: logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(port int, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		port:    port,
		handler: handler,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start binds the listening socket on all interfaces and begins serving
// requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. When ctx is cancelled the server shuts down and [Server.Done]
// is closed.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		defer close(s.done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http server shutdown incomplete", "error", err)
			_ = s.httpServer.Close()
		}
		<-served
	}()

	s.logger.Debug("listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before [Server.Start] succeeds.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Done is closed once the server has fully stopped after context cancellation.
func (s *Server) Done() <-chan struct{} {
	return s.done
}
