// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// NewClient returns the outbound client shared by the model providers.
// A zero timeout leaves the call bounded only by the request context.
func NewClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
