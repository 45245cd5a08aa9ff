// Package server provides the HTTP server that serves dashboard assets from disk.
//
// This package is internal to dashserve and handles all HTTP concerns:
//
//   - Static files: GET and HEAD are answered by http.FileServer over an afero filesystem
//   - Preflight: OPTIONS on any path returns 200 with an empty body
//   - Other methods: rejected with 501 Not Implemented
//   - Headers: CORS and Cache-Control headers are attached to every response
//
// The server binds synchronously and shuts down via context cancellation,
// with a 5-second timeout for in-flight requests.
//
// Users of the dashserve library should not need to interact with this
// package directly. The server is started by [dashserve.DevServer.Start].
package server
