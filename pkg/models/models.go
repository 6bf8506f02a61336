package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheStats reports response cache performance counters.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Call outcomes recorded by the tracker.
const (
	OutcomeSuccess   = "success"
	OutcomeCacheHit  = "cache_hit"
	OutcomeTransient = "transient"
	OutcomePermanent = "permanent"
	OutcomeMalformed = "malformed"
)

// CallRecord is one upstream API call (or cache hit) observed by the access layer.
type CallRecord struct {
	Endpoint   string
	Outcome    string
	StatusCode int
	LatencyMs  int64
	CreatedAt  time.Time
}

// CallSummary aggregates call records per endpoint.
type CallSummary struct {
	Endpoint     string
	Calls        int64
	Successes    int64
	Failures     int64
	CacheHits    int64
	AvgLatencyMs float64
}

// Duration wraps time.Duration so YAML files can use values like "60s" or "24h".
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
