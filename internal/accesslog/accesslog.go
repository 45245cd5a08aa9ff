// Package accesslog writes one human-readable line per completed HTTP request.
//
// Lines look like:
//
//	[dashboard] "GET /js/app.js HTTP/1.1" 200
//
// The bracketed prefix is green for 2xx responses and yellow for everything
// else. Colour is only emitted when the destination is a terminal, unless
// forced with [WithColor]. Every request is also recorded as a structured
// debug event on the configured [slog.Logger], tagged with a request ID.
package accesslog

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// DefaultPrefix is the label printed in front of every access line.
const DefaultPrefix = "dashboard"

// Entry describes a single completed request.
//
// Status is carried as its own field so colour selection never depends on
// the position of an argument in a format string.
type Entry struct {
	Method     string
	URI        string
	Proto      string
	Status     int
	Bytes      int64
	Duration   time.Duration
	RemoteAddr string
	RequestID  string
}

// Success reports whether the status code belongs to the 2xx class.
func (e Entry) Success() bool {
	return strconv.Itoa(e.Status)[0] == '2'
}

// Summary returns the quoted request line followed by the status code.
func (e Entry) Summary() string {
	return fmt.Sprintf("%q %d", e.Method+" "+e.URI+" "+e.Proto, e.Status)
}

// Logger writes access lines to an io.Writer.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	prefix  string
	success *color.Color
	failure *color.Color
	logger  *slog.Logger
}

// Option configures a [Logger].
type Option func(*Logger)

// WithPrefix replaces [DefaultPrefix].
func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.prefix = prefix
	}
}

// WithColor forces colour on or off regardless of terminal detection.
func WithColor(enabled bool) Option {
	return func(l *Logger) {
		setColor(l, enabled)
	}
}

// WithLogger sets the structured logger that receives per-request debug
// records. Without it, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Logger writing to out.
func New(out io.Writer, opts ...Option) *Logger {
	l := &Logger{
		out:     out,
		prefix:  DefaultPrefix,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgYellow),
		logger:  slog.Default(),
	}
	setColor(l, isTerminal(out))

	for _, opt := range opts {
		opt(l)
	}
	return l
}

func setColor(l *Logger, enabled bool) {
	if enabled {
		l.success.EnableColor()
		l.failure.EnableColor()
		return
	}
	l.success.DisableColor()
	l.failure.DisableColor()
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Log writes the access line for e and emits its debug record.
func (l *Logger) Log(e Entry) {
	c := l.failure
	if e.Success() {
		c = l.success
	}

	l.mu.Lock()
	_, _ = fmt.Fprintf(l.out, "%s %s\n", c.Sprint("["+l.prefix+"]"), e.Summary())
	l.mu.Unlock()

	l.logger.Debug("request served",
		"request_id", e.RequestID,
		"method", e.Method,
		"uri", e.URI,
		"status", e.Status,
		"bytes", e.Bytes,
		"duration_ms", e.Duration.Milliseconds(),
		"remote_addr", e.RemoteAddr,
	)
}

// Middleware wraps next so that every request it handles is logged once the
// handler returns.
func (l *Logger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &recorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		l.Log(Entry{
			Method:     r.Method,
			URI:        r.RequestURI,
			Proto:      r.Proto,
			Status:     rec.statusCode(),
			Bytes:      rec.bytes,
			Duration:   time.Since(start),
			RemoteAddr: r.RemoteAddr,
			RequestID:  uuid.NewString(),
		})
	})
}

// recorder captures the status code and body size written by a handler.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *recorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// statusCode returns the recorded status, defaulting to 200 when the handler
// wrote nothing at all.
func (r *recorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
