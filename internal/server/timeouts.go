// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
// The read timeout is the generous one: content mutations arrive as
// multipart uploads of up to six 2 MB images, and admin connections are
// sometimes slow.  Responses are small JSON bodies, so the write timeout
// stays tight.
//
//   • ReadTimeout   – full multipart body over a slow uplink (30 s)
//   • WriteTimeout  – cap total response time (15 s)
//   • IdleTimeout   – close keep-alives on idle clients (60 s)
//
// This helper centralises those defaults so cmd/web doesn’t repeat
// boilerplate.

package server

import (
	"net/http"
	"time"
)

// New constructs an *http.Server with the defaults above.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		// TLSConfig may be injected by callers (e.g., autocert).
	}
}
