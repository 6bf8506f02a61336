// Package registry holds the static table of upstream data families:
// which endpoint serves a family and how long its responses stay fresh.
package registry

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pantainos/fmp/pkg/fmp"
	"github.com/pantainos/fmp/pkg/models"
)

// Cache TTL classes by data volatility.
const (
	TTLRealtime = time.Minute    // quotes, trades, fresh news
	TTLHourly   = time.Hour      // statements, insider activity
	TTL6H       = 6 * time.Hour  // analyst data
	TTL12H      = 12 * time.Hour // historical prices
	TTLDaily    = 24 * time.Hour // profiles, rarely changing data
)

// Family maps a logical data-family name to an endpoint and default TTL.
type Family struct {
	Name        string          `yaml:"name"`
	Endpoint    string          `yaml:"endpoint"`
	TTL         models.Duration `yaml:"ttl"`
	Description string          `yaml:"description,omitempty"`
}

// Registry is a read-only family table. It is built once at startup
// and consumed as configuration; nothing mutates it afterwards.
type Registry struct {
	names    []string
	families map[string]Family
}

func newRegistry(families []Family) *Registry {
	r := &Registry{families: make(map[string]Family, len(families))}
	for _, f := range families {
		if _, ok := r.families[f.Name]; !ok {
			r.names = append(r.names, f.Name)
		}
		r.families[f.Name] = f
	}
	return r
}

// Default returns the built-in family table.
func Default() *Registry {
	return newRegistry(defaultFamilies)
}

// Load returns the built-in table with overrides and additions from a
// YAML file applied on top. Environment variables in the file are
// expanded before parsing.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read families file: %w", err)
	}

	var overrides []Family
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &overrides); err != nil {
		return nil, fmt.Errorf("parse families file: %w", err)
	}
	for _, f := range overrides {
		if f.Name == "" || f.Endpoint == "" {
			return nil, fmt.Errorf("family %+v: name and endpoint are required", f)
		}
	}

	merged := make([]Family, 0, len(defaultFamilies)+len(overrides))
	merged = append(merged, defaultFamilies...)
	merged = append(merged, overrides...)
	return newRegistry(merged), nil
}

// Descriptor builds a fetch descriptor for a family, copying params so
// the caller cannot alias registry or descriptor state. The fallback is
// an empty JSON list, the upstream's usual collection shape.
func (r *Registry) Descriptor(family string, params map[string]string) (fmp.Descriptor, error) {
	f, ok := r.families[family]
	if !ok {
		return fmp.Descriptor{}, fmt.Errorf("registry: unknown family %q", family)
	}

	owned := make(map[string]string, len(params))
	for k, v := range params {
		owned[k] = v
	}
	return fmp.Descriptor{
		Endpoint: f.Endpoint,
		Params:   owned,
		TTL:      f.TTL.Std(),
	}, nil
}

// Families returns all families in registration order.
func (r *Registry) Families() []Family {
	out := make([]Family, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.families[name])
	}
	return out
}
