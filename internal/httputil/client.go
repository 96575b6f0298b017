package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single upstream request; the retry layer sits
// above it.
const DefaultTimeout = 30 * time.Second

// NewClient returns the shared outbound client for Open-Meteo calls.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
