package photostore

import (
	"context"
	"errors"
	"net"

	"github.com/minio/minio-go/v7"
)

// IsRetryable reports whether a storage error is worth retrying: throttling,
// server-side failures and client-side timeouts. Missing objects and access
// errors are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.StatusCode == 429 || resp.StatusCode >= 500
	}

	// a call that outran its deadline says nothing about the object itself
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
