package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pantainos/fmp/pkg/fmp"
)

// fakeFetcher resolves descriptors from a script keyed by endpoint.
type fakeFetcher struct {
	delays   map[string]time.Duration
	failures map[string]*fmp.APIError
}

func (f *fakeFetcher) Fetch(ctx context.Context, d fmp.Descriptor) fmp.Result {
	if delay, ok := f.delays[d.Endpoint]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}
	if apiErr, ok := f.failures[d.Endpoint]; ok {
		fallback := d.Fallback
		if fallback == nil {
			fallback = json.RawMessage(`[]`)
		}
		return fmp.Result{Value: fallback, Succeeded: false, Err: apiErr}
	}
	return fmp.Result{Value: json.RawMessage(fmt.Sprintf("%q", d.Endpoint)), Succeeded: true}
}

func field(name, endpoint string) Field {
	return Field{Name: name, Descriptor: fmp.Descriptor{Endpoint: endpoint}}
}

func TestRunMergesAllFields(t *testing.T) {
	r := NewRunner(&fakeFetcher{})
	c, err := r.Run(context.Background(), []Field{
		field("profile", "/stable/profile"),
		field("quote", "/stable/quote"),
		field("news", "/stable/news/stock"),
	})
	if err != nil {
		t.Fatal(err)
	}

	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	res, ok := c.Get("quote")
	if !ok || !res.Succeeded {
		t.Fatalf("quote field missing or failed: %+v", res)
	}
	if string(res.Value) != `"/stable/quote"` {
		t.Errorf("quote value = %s", res.Value)
	}
}

func TestRunNeverAbortsOnFetchFailure(t *testing.T) {
	f := &fakeFetcher{
		failures: map[string]*fmp.APIError{
			"/stable/quote": {Kind: fmp.KindTransient, Message: "timeout"},
			"/stable/news":  {Kind: fmp.KindPermanent, StatusCode: 404, Message: "not found"},
		},
	}
	r := NewRunner(f)

	fields := []Field{
		field("profile", "/stable/profile"),
		{Name: "quote", Descriptor: fmp.Descriptor{Endpoint: "/stable/quote", Fallback: json.RawMessage(`{"stale":true}`)}},
		field("ratios", "/stable/ratios-ttm"),
		field("news", "/stable/news"),
	}
	c, err := r.Run(context.Background(), fields)
	if err != nil {
		t.Fatal(err)
	}

	if c.Len() != 4 {
		t.Fatalf("len = %d, want entry for every requested field", c.Len())
	}

	quote, _ := c.Get("quote")
	if quote.Succeeded {
		t.Error("quote should have failed")
	}
	if string(quote.Value) != `{"stale":true}` {
		t.Errorf("quote value = %s, want its fallback", quote.Value)
	}

	failed := c.Failed()
	want := []string{"quote", "news"}
	if len(failed) != len(want) || failed[0] != want[0] || failed[1] != want[1] {
		t.Errorf("failed = %v, want %v (request order)", failed, want)
	}
}

func TestRunFieldOrderIsDeterministic(t *testing.T) {
	// The slowest field comes first; completion order is reversed
	// relative to request order.
	f := &fakeFetcher{delays: map[string]time.Duration{
		"/a": 60 * time.Millisecond,
		"/b": 30 * time.Millisecond,
		"/c": 0,
	}}
	r := NewRunner(f)

	c, err := r.Run(context.Background(), []Field{field("a", "/a"), field("b", "/b"), field("c", "/c")})
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":"/a","b":"/b","c":"/c"}` {
		t.Errorf("marshal = %s, want request order", data)
	}
}

func TestRunFansOutConcurrently(t *testing.T) {
	f := &fakeFetcher{delays: map[string]time.Duration{
		"/a": 50 * time.Millisecond,
		"/b": 50 * time.Millisecond,
		"/c": 50 * time.Millisecond,
		"/d": 50 * time.Millisecond,
	}}
	r := NewRunner(f)

	start := time.Now()
	_, err := r.Run(context.Background(), []Field{
		field("a", "/a"), field("b", "/b"), field("c", "/c"), field("d", "/d"),
	})
	if err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)

	// Sequential execution would take ~200ms; concurrent dispatch is
	// bounded by the slowest fetch plus scheduling overhead.
	if elapsed > 150*time.Millisecond {
		t.Errorf("run took %v, want ~max(field latencies)", elapsed)
	}
}

func TestRunRejectsProgrammerErrors(t *testing.T) {
	r := NewRunner(&fakeFetcher{})

	if _, err := r.Run(context.Background(), nil); !errors.Is(err, ErrNoFields) {
		t.Errorf("empty field set: err = %v, want ErrNoFields", err)
	}

	if _, err := r.Run(context.Background(), []Field{field("", "/a")}); !errors.Is(err, ErrEmptyFieldName) {
		t.Errorf("empty name: err = %v, want ErrEmptyFieldName", err)
	}

	_, err := r.Run(context.Background(), []Field{field("a", "/a"), field("a", "/b")})
	if err == nil {
		t.Error("duplicate name: expected error")
	}
}

func TestCompositeGetMiss(t *testing.T) {
	r := NewRunner(&fakeFetcher{})
	c, err := r.Run(context.Background(), []Field{field("a", "/a")})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get returned a result for an unknown field")
	}
}
