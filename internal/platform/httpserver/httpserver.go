// Package httpserver constructs the API server with timeouts suited to the
// short, database-bound requests this service handles.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for the given handler. Per-request deadlines are
// enforced by the router's timeout middleware; the server-level timeouts
// below only bound slow or idle clients.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
