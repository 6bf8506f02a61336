package fmp

import (
	"fmt"
	"net/http"

	"github.com/pantainos/fmp/pkg/models"
)

// Kind classifies an upstream failure for observability. Every kind
// resolves to the same fallback behavior; the distinction only matters
// for logging and metrics.
type Kind int

const (
	// KindTransient covers timeouts, connection errors and 5xx responses.
	// Retrying the same call later may succeed.
	KindTransient Kind = iota + 1
	// KindPermanent covers 4xx responses; retrying the identical call will not help.
	KindPermanent
	// KindMalformed covers 2xx responses whose body is not usable JSON,
	// including the upstream's in-band "Error Message" payloads.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return models.OutcomeTransient
	case KindPermanent:
		return models.OutcomePermanent
	case KindMalformed:
		return models.OutcomeMalformed
	default:
		return "unknown"
	}
}

// APIError is a normalized upstream failure. It never escapes Fetch;
// callers see it only inside Result.Err.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fmp: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fmp: %s: %s", e.Kind, e.Message)
}

// Retryable reports whether a future identical call could succeed.
func (e *APIError) Retryable() bool { return e.Kind == KindTransient }

// classifyStatus maps a non-2xx status code to a failure kind.
func classifyStatus(status int) Kind {
	if status >= http.StatusInternalServerError {
		return KindTransient
	}
	return KindPermanent
}
