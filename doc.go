// Package dashserve provides a small development server for dashboard
// front-end assets.
//
// dashserve serves the files of a single directory over plain HTTP and
// attaches permissive CORS headers to every response, so a front-end hosted
// on another origin can fetch them during local development. It is not a
// production web server: there is no TLS, no authentication and no routing.
//
// # Quick Start
//
//	ds, _ := dashserve.New(
//	    dashserve.WithRoot("./dashboard"),
//	    dashserve.WithPort(3001),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	ds.Start(ctx) // blocks until context is cancelled
//
// # Responses
//
// GET and HEAD requests are answered from the root directory: existing files
// return 200 with their contents, missing paths return 404, and paths are
// normalised so requests cannot escape the root. OPTIONS requests on any
// path return 200 with an empty body. Other methods return 501.
//
// Every response, whatever its status, carries:
//
//	Access-Control-Allow-Origin: *
//	Access-Control-Allow-Methods: GET, OPTIONS
//	Access-Control-Allow-Headers: Content-Type, X-API-Key
//	Cache-Control: no-cache
//
// Additional headers can be added with [WithHeader].
//
// # Access Log
//
// Each completed request is written as one line to the access log writer
// (os.Stderr by default), with a green prefix for 2xx responses and a yellow
// one otherwise:
//
//	[dashboard] "GET /index.html HTTP/1.1" 200
//
// # Standalone Binary
//
// The cmd/dashserve binary wraps this package:
//
//	dashserve --port 4000 --dir ./dashboard
//	dashserve validate -c dashserve.yaml
package dashserve
