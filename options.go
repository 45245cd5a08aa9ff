package dashserve

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jpalmerr/dashserve/internal/server"
	"github.com/spf13/afero"
	"golang.org/x/net/http/httpguts"
)

// dsConfig holds mutable state during DevServer construction.
type dsConfig struct {
	port           int
	root           string
	fs             afero.Fs
	logger         *slog.Logger
	accessLog      io.Writer
	color          *bool
	headers        map[string]string
	readyCallbacks []func(Ready)
}

// Option is a function that configures a [DevServer] instance during construction.
//
// Options return an error if validation fails.
//
// Built-in options: [WithPort], [WithRoot], [WithFS], [WithLogger],
// [WithAccessLog], [WithColor], [WithHeader], [WithReadyCallback].
type Option func(*dsConfig) error

// WithPort sets the TCP port the server listens on.
//
// Defaults to 3001 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *dsConfig) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", port)
		}
		cfg.port = port
		return nil
	}
}

// WithRoot sets the directory whose files are served.
//
// Relative paths are resolved against the working directory. When no root is
// given, the directory containing the running executable is used.
//
// Example:
//
//	ds, err := dashserve.New(dashserve.WithRoot("./dashboard"))
func WithRoot(dir string) Option {
	return func(cfg *dsConfig) error {
		if strings.TrimSpace(dir) == "" {
			return errors.New("root directory cannot be empty")
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve root directory %q: %w", dir, err)
		}
		cfg.root = abs
		return nil
	}
}

// WithFS serves files from fsys instead of the operating system filesystem.
//
// fsys must already be scoped to the directory being served: "/" in fsys is
// the site root. This is mainly useful for tests with afero.NewMemMapFs.
func WithFS(fsys afero.Fs) Option {
	return func(cfg *dsConfig) error {
		if fsys == nil {
			return errors.New("filesystem cannot be nil")
		}
		cfg.fs = fsys
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for lifecycle and debug events.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *dsConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithAccessLog sets where per-request access lines are written.
// Defaults to os.Stderr.
func WithAccessLog(w io.Writer) Option {
	return func(cfg *dsConfig) error {
		if w == nil {
			return errors.New("access log writer cannot be nil")
		}
		cfg.accessLog = w
		return nil
	}
}

// WithColor forces coloured access lines on or off. By default colour is
// used only when the access log writer is a terminal.
func WithColor(enabled bool) Option {
	return func(cfg *dsConfig) error {
		cfg.color = &enabled
		return nil
	}
}

// WithHeader adds a response header sent alongside the CORS headers.
//
// The CORS headers themselves (Access-Control-Allow-Origin,
// Access-Control-Allow-Methods, Access-Control-Allow-Headers and
// Cache-Control) cannot be overridden.
//
// Example:
//
//	ds, err := dashserve.New(
//	    dashserve.WithHeader("Cross-Origin-Opener-Policy", "same-origin"),
//	)
func WithHeader(name, value string) Option {
	return func(cfg *dsConfig) error {
		if err := ValidateHeader(name, value); err != nil {
			return err
		}
		if cfg.headers == nil {
			cfg.headers = make(map[string]string)
		}
		cfg.headers[http.CanonicalHeaderKey(name)] = value
		return nil
	}
}

// WithReadyCallback registers a function called once the listening socket is
// bound, before any request is served.
//
// Multiple callbacks may be registered; they execute in registration order.
// Panics within callbacks are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithReadyCallback(cb func(Ready)) Option {
	return func(cfg *dsConfig) error {
		if cb == nil {
			return nil
		}
		cfg.readyCallbacks = append(cfg.readyCallbacks, cb)
		return nil
	}
}

// ValidateHeader checks that name and value form a legal extra response
// header that does not collide with the headers the server sets itself.
func ValidateHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("invalid header name %q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("invalid value for header %q", name)
	}
	for _, reserved := range server.ReservedHeaders {
		if strings.EqualFold(name, reserved) {
			return fmt.Errorf("header %q is set by the server and cannot be overridden", reserved)
		}
	}
	return nil
}
