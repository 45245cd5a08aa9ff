package dashserve

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jpalmerr/dashserve/internal/accesslog"
	"github.com/jpalmerr/dashserve/internal/server"
	"github.com/spf13/afero"
)

// DefaultPort is the port used when [WithPort] is not given.
const DefaultPort = 3001

// Ready describes a server that has bound its listening socket.
type Ready struct {
	// URL is the address to open in a browser, e.g. http://localhost:3001.
	URL string

	// Root is the directory being served.
	Root string

	// Addr is the bound listener address.
	Addr net.Addr
}

// DevServer serves a directory of static dashboard assets with permissive
// CORS headers for local development.
//
// DevServer is created using [New] with functional options and started with
// [DevServer.Start]. The typical lifecycle is:
//
//	ds, err := dashserve.New(dashserve.WithPort(3001))
//	if err != nil {
//	    slog.Error("failed to create dev server", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	ds.Start(ctx) // blocks until context cancelled
type DevServer struct {
	port           int
	root           string
	fs             afero.Fs
	logger         *slog.Logger
	accessLog      *accesslog.Logger
	headers        map[string]string
	readyCallbacks []func(Ready)
}

// New creates a new [DevServer] with the given options.
//
// Defaults:
//   - Port: 3001
//   - Root: the directory containing the running executable
//   - Access log: os.Stderr
//
// Returns an error if any option is invalid or if the root directory does
// not exist.
func New(opts ...Option) (*DevServer, error) {
	cfg := &dsConfig{
		port:      DefaultPort,
		accessLog: os.Stderr,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	root := cfg.root
	fsys := cfg.fs
	if fsys == nil {
		if root == "" {
			dir, err := ExecutableDir()
			if err != nil {
				return nil, err
			}
			root = dir
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("root directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root %q is not a directory", root)
		}
		fsys = afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), root))
	}

	logOpts := []accesslog.Option{accesslog.WithLogger(logger)}
	if cfg.color != nil {
		logOpts = append(logOpts, accesslog.WithColor(*cfg.color))
	}

	return &DevServer{
		port:           cfg.port,
		root:           root,
		fs:             fsys,
		logger:         logger,
		accessLog:      accesslog.New(cfg.accessLog, logOpts...),
		headers:        cfg.headers,
		readyCallbacks: cfg.readyCallbacks,
	}, nil
}

// ExecutableDir returns the directory containing the running executable,
// with symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Start binds the listening socket and serves files until ctx is cancelled.
//
// Start blocks. Bind failures (port in use, permission denied) are returned
// immediately and are not retried. Once bound, every callback registered with
// [WithReadyCallback] is invoked. Returns nil after ctx is cancelled and the
// HTTP server has stopped.
func (ds *DevServer) Start(ctx context.Context) error {
	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	handler := server.NewHandler(ds.fs, ds.headers, ds.accessLog.Middleware)
	httpServer := server.NewServer(ds.port, handler, ds.logger)
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	ready := Ready{
		URL:  fmt.Sprintf("http://localhost:%d", ds.port),
		Root: ds.root,
		Addr: httpServer.Addr(),
	}
	ds.logger.Info("dashserve listening", "url", ready.URL, "root", ready.Root)
	for _, cb := range ds.readyCallbacks {
		invokeCallbackSafe(cb, ready, ds.logger)
	}

	<-ctx.Done()
	<-httpServer.Done()
	ds.logger.Info("dashserve stopped")
	return nil
}

// Handler returns the request pipeline without binding a socket, for
// embedding in another server or for tests.
func (ds *DevServer) Handler() http.Handler {
	return server.NewHandler(ds.fs, ds.headers, ds.accessLog.Middleware)
}

// Port returns the configured listening port.
func (ds *DevServer) Port() int {
	return ds.port
}

// Root returns the directory being served. It is empty when the server was
// built with [WithFS] and no [WithRoot].
func (ds *DevServer) Root() string {
	return ds.root
}

// invokeCallbackSafe calls a ready callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Ready), ready Ready, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("ready callback panicked", "panic", r)
		}
	}()
	cb(ready)
}
