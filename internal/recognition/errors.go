package recognition

import (
	"context"
	"errors"
	"net"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// retryableCodes are the transient service errors worth retrying. Anything
// else (invalid image, bad parameter, access denied) fails immediately.
var retryableCodes = map[string]bool{
	"ThrottlingException":                    true,
	"ProvisionedThroughputExceededException": true,
	"ServiceUnavailableException":            true,
	"ServiceUnavailable":                     true,
	"InternalServerError":                    true,
	"RequestTimeout":                         true,
}

// IsRetryable classifies an error as transient. Throttling, capacity,
// server-side failures and client-side timeouts qualify; client errors do
// not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		if retryableCodes[ae.ErrorCode()] {
			return true
		}
		if ae.ErrorFault() == smithy.FaultServer {
			return true
		}
	}

	var re *smithyhttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode() >= 500
	}

	// the request never got an answer; the next attempt may
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
