package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// CORS and caching headers attached to every response.
const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
	HeaderCacheControl = "Cache-Control"

	allowOrigin  = "*"
	allowMethods = "GET, OPTIONS"
	allowHeaders = "Content-Type, X-API-Key"
	cacheControl = "no-cache"
)

// ReservedHeaders lists the header names the server always sets itself.
// Extra headers may not use these names.
var ReservedHeaders = []string{
	HeaderAllowOrigin,
	HeaderAllowMethods,
	HeaderAllowHeaders,
	HeaderCacheControl,
}

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// NewHandler builds the request pipeline for serving files from root.
//
// The returned handler is the composition
//
//	middleware[0](...(middleware[n](decorate(methods(fileServer)))))
//
// where fileServer is http.FileServer over root (serving files named
// index.html as themselves rather than redirecting), decorate attaches the
// CORS headers (and any extra headers) at the moment the status line is
// written, and methods restricts the file server to GET and HEAD, answers
// OPTIONS preflights directly and rejects everything else with 501.
//
// root is expected to be already scoped to the directory being served, for
// example an afero.BasePathFs. Paths are cleaned by http.FileServer before
// they reach root, so requests can never name a file outside it.
func NewHandler(root afero.Fs, extraHeaders map[string]string, middleware ...Middleware) http.Handler {
	dir := afero.NewHttpFs(root).Dir("/")
	files := indexFiles(dir, http.FileServer(dir))

	var h http.Handler = decorate(methods(files), headerSet(extraHeaders))
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// headerSet returns the headers applied to every response, with the CORS
// set written last so it always wins.
func headerSet(extra map[string]string) [][2]string {
	headers := make([][2]string, 0, len(extra)+len(ReservedHeaders))
	for k, v := range extra {
		headers = append(headers, [2]string{k, v})
	}
	return append(headers,
		[2]string{HeaderAllowOrigin, allowOrigin},
		[2]string{HeaderAllowMethods, allowMethods},
		[2]string{HeaderAllowHeaders, allowHeaders},
		[2]string{HeaderCacheControl, cacheControl},
	)
}

// methods dispatches on the request method before anything touches the disk.
func methods(files http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			files.ServeHTTP(w, r)
		case http.MethodOptions:
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, fmt.Sprintf("Unsupported method ('%s')", r.Method), http.StatusNotImplemented)
		}
	})
}

// indexPage is the name http.FileServer redirects away from.
const indexPage = "/index.html"

// indexFiles serves requests for files named index.html directly. The file
// server answers those with a redirect to the containing directory, so they
// would otherwise never return the file itself.
func indexFiles(dir http.FileSystem, files http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, indexPage) {
			files.ServeHTTP(w, r)
			return
		}

		name := path.Clean("/" + r.URL.Path)
		f, err := dir.Open(name)
		if err != nil {
			serveError(w, err)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			serveError(w, err)
			return
		}
		if info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

// serveError maps a filesystem error onto the same responses http.FileServer
// gives.
func serveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "404 page not found", http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "403 Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
	}
}

// decorate applies headers to every response produced by next.
//
// The headers are written from WriteHeader rather than up front:
// http.FileServer strips Cache-Control from its error responses, and
// applying them last means they sit on top of whatever next has set.
func decorate(next http.Handler, headers [][2]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dw := &decoratingWriter{ResponseWriter: w, headers: headers}
		next.ServeHTTP(dw, r)
		if !dw.wroteHeader {
			dw.WriteHeader(http.StatusOK)
		}
	})
}

type decoratingWriter struct {
	http.ResponseWriter
	headers     [][2]string
	wroteHeader bool
}

func (d *decoratingWriter) WriteHeader(code int) {
	if d.wroteHeader {
		return
	}
	d.wroteHeader = true

	h := d.ResponseWriter.Header()
	for _, kv := range d.headers {
		h.Set(kv[0], kv[1])
	}
	d.ResponseWriter.WriteHeader(code)
}

func (d *decoratingWriter) Write(b []byte) (int, error) {
	if !d.wroteHeader {
		d.WriteHeader(http.StatusOK)
	}
	return d.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (d *decoratingWriter) Unwrap() http.ResponseWriter {
	return d.ResponseWriter
}
