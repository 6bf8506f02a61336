// Package workflow fans out independent fetches and merges their
// settled results into one composite answer.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pantainos/fmp/pkg/fmp"
)

// Fetcher resolves one descriptor into a settled result. fmp.Client
// satisfies this; tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, d fmp.Descriptor) fmp.Result
}

// Field names one piece of a composite response and the descriptor
// that produces it.
type Field struct {
	Name       string
	Descriptor fmp.Descriptor
}

// Programmer errors. These are the only conditions under which a
// workflow aborts; upstream data failures never do.
var (
	ErrNoFields       = errors.New("workflow: no fields requested")
	ErrEmptyFieldName = errors.New("workflow: field with empty name")
)

// Runner dispatches workflow fields concurrently through a Fetcher.
type Runner struct {
	fetcher Fetcher
}

// NewRunner creates a Runner on top of the given fetcher.
func NewRunner(f Fetcher) *Runner {
	return &Runner{fetcher: f}
}

// Run issues every field's fetch concurrently, waits for all of them to
// settle, and merges the results in the caller's field order. A failed
// fetch contributes its fallback; the composite always has an entry for
// every requested field. Fetches run to completion once started.
func (r *Runner) Run(ctx context.Context, fields []Field) (*Composite, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, ErrEmptyFieldName
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("workflow: duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	results := make([]fmp.Result, len(fields))
	var wg sync.WaitGroup
	for i, f := range fields {
		wg.Add(1)
		go func(i int, d fmp.Descriptor) {
			defer wg.Done()
			results[i] = r.fetcher.Fetch(ctx, d)
		}(i, f.Descriptor)
	}
	wg.Wait()

	c := &Composite{
		names:  make([]string, len(fields)),
		values: make(map[string]fmp.Result, len(fields)),
	}
	for i, f := range fields {
		c.names[i] = f.Name
		c.values[f.Name] = results[i]
	}
	return c, nil
}
