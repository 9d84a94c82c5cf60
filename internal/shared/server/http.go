package server

import (
	"net/http"
	"time"

	"resume-tailor/internal/sessions"
)

const (
	readHeaderTimeout = 10 * time.Second
	// writeSlack covers work around the model calls: job fetches, rendering
	// and store writes.
	writeSlack = 2 * time.Minute
)

// WriteTimeout is the response deadline for a route that runs up to chains
// failover chains, each trying every provider until its timeout.
func WriteTimeout(llmTimeout time.Duration, providers, chains int) time.Duration {
	if providers < 1 {
		providers = 1
	}
	if chains < 1 {
		chains = 1
	}
	return time.Duration(providers*chains)*llmTimeout + writeSlack
}

// NewHTTPServer returns the API server with its write deadline sized for the
// slowest generation route.
func NewHTTPServer(port string, handler http.Handler, llmTimeout time.Duration, providers int) *http.Server {
	return &http.Server{
		Addr:              Addr(port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      WriteTimeout(llmTimeout, providers, sessions.MaxChainsPerRequest()),
	}
}
