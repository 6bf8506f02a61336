package fmp

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Descriptor is a request for one piece of upstream data, carrying its
// own cache TTL and fallback value. It is immutable once constructed
// and consumed by exactly one Fetch call.
type Descriptor struct {
	Endpoint string
	Params   map[string]string
	TTL      time.Duration
	// Fallback is substituted for the value when the fetch fails.
	// A nil fallback defaults to an empty JSON array, the upstream's
	// usual list shape.
	Fallback json.RawMessage
}

// Result is the settled outcome of one Fetch. When Succeeded is false,
// Value holds the descriptor's fallback and Err describes the failure;
// callers never receive a hole.
type Result struct {
	Value     json.RawMessage
	Succeeded bool
	Err       *APIError
}

var emptyList = json.RawMessage(`[]`)

// CacheKey builds a deterministic key from an endpoint and its
// parameters. Parameter order does not matter: two logically identical
// requests collide, and requests differing in any parameter never do.
// Credentials are injected at the transport, so keys never embed them.
func CacheKey(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteByte('?')
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
