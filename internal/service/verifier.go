package service

import (
	"context"
	"net/http"
	"time"
)

const defaultVerifyTimeout = 5 * time.Second

// URLVerifier checks whether a URL is reachable before it is accepted as a
// new redirect target.
type URLVerifier interface {
	// Verify reports whether the URL responds to a probe request. The check
	// completes, or is abandoned, before any record-mutating transaction
	// begins.
	Verify(ctx context.Context, url string) bool
}

// PingVerifier probes URLs with a HEAD request. A timeout or transport
// error counts as unreachable.
type PingVerifier struct {
	client *http.Client
}

// NewPingVerifier creates a PingVerifier with the given probe timeout.
// A non-positive timeout falls back to 5 seconds.
func NewPingVerifier(timeout time.Duration) *PingVerifier {
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}

	return &PingVerifier{
		client: &http.Client{Timeout: timeout},
	}
}

// Verify issues a HEAD request, following redirects, and reports whether
// the final response status is below 400.
func (v *PingVerifier) Verify(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck

	return resp.StatusCode < http.StatusBadRequest
}
