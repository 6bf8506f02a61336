package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pantainos/fmp/pkg/fmp"
	"github.com/pantainos/fmp/pkg/models"
	"github.com/pantainos/fmp/pkg/registry"
)

// fakeFetcher resolves descriptors from canned bodies keyed by endpoint.
// Endpoints listed in fail return a transient failure.
type fakeFetcher struct {
	bodies map[string]string
	fail   map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, d fmp.Descriptor) fmp.Result {
	if f.fail[d.Endpoint] {
		fallback := d.Fallback
		if fallback == nil {
			fallback = json.RawMessage(`[]`)
		}
		return fmp.Result{
			Value:     fallback,
			Succeeded: false,
			Err:       &fmp.APIError{Kind: fmp.KindTransient, Message: "connection reset"},
		}
	}
	if body, ok := f.bodies[d.Endpoint]; ok {
		return fmp.Result{Value: json.RawMessage(body), Succeeded: true}
	}
	return fmp.Result{Value: json.RawMessage(`[]`), Succeeded: true}
}

// fakeCache implements CacheStatter.
type fakeCache struct {
	stats models.CacheStats
}

func (f *fakeCache) Stats() models.CacheStats { return f.stats }

// fakeTracker implements CallSummarizer.
type fakeTracker struct {
	summaries []models.CallSummary
}

func (f *fakeTracker) Summary(_ context.Context) ([]models.CallSummary, error) {
	return f.summaries, nil
}

func newTestServer(f *fakeFetcher) *Server {
	return New(f, registry.Default(), &fakeCache{}, &fakeTracker{}, "test")
}

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	line = append(line, '\n')

	var out bytes.Buffer
	if err := srv.Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, out.String())
	}
	return resp
}

func callTool(t *testing.T, srv *Server, name string, args string) ToolCallResult {
	t.Helper()
	params, _ := json.Marshal(ToolCallParams{Name: name, Arguments: json.RawMessage(args)})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "tools/call",
		Params:  params,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected rpc error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	return result
}

func TestInitialize(t *testing.T) {
	srv := newTestServer(&fakeFetcher{})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result InitializeResult
	json.Unmarshal(data, &result)

	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocol version = %s, want 2024-11-05", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "pantainos-fmp" {
		t.Errorf("server name = %s, want pantainos-fmp", result.ServerInfo.Name)
	}
}

func TestToolsList(t *testing.T) {
	srv := newTestServer(&fakeFetcher{})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`2`),
		Method:  "tools/list",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolsListResult
	json.Unmarshal(data, &result)

	if len(result.Tools) != len(allTools) {
		t.Errorf("got %d tools, want %d", len(result.Tools), len(allTools))
	}

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"stock_brief", "market_context", "earnings_setup", "company_overview", "stock_quote", "server_stats"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestStockQuoteTool(t *testing.T) {
	srv := newTestServer(&fakeFetcher{bodies: map[string]string{
		"/stable/quote": `[{"symbol":"AAPL","price":228.5}]`,
	}})

	result := callTool(t, srv, "stock_quote", `{"symbol":"aapl"}`)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	text := result.Content[0].Text
	if !strings.Contains(text, `"price": 228.5`) {
		t.Errorf("result missing quote data:\n%s", text)
	}
}

func TestStockBriefDegradesGracefully(t *testing.T) {
	srv := newTestServer(&fakeFetcher{
		bodies: map[string]string{
			"/stable/profile": `[{"symbol":"AAPL","companyName":"Apple Inc."}]`,
		},
		fail: map[string]bool{"/stable/quote": true},
	})

	result := callTool(t, srv, "stock_brief", `{"symbol":"AAPL"}`)
	if result.IsError {
		t.Fatalf("degraded workflow must not be a tool error: %s", result.Content[0].Text)
	}

	text := result.Content[0].Text
	if !strings.Contains(text, "Apple Inc.") {
		t.Errorf("result missing successful field:\n%s", text)
	}
	if !strings.Contains(text, "_warnings") || !strings.Contains(text, "quote unavailable") {
		t.Errorf("result missing degradation warning:\n%s", text)
	}

	// Field order follows the request, not completion.
	if strings.Index(text, `"profile"`) > strings.Index(text, `"quote"`) {
		t.Errorf("fields out of request order:\n%s", text)
	}
}

func TestToolRequiresSymbol(t *testing.T) {
	srv := newTestServer(&fakeFetcher{})
	result := callTool(t, srv, "company_overview", `{}`)
	if !result.IsError {
		t.Error("expected tool error for missing symbol")
	}
}

func TestUnknownTool(t *testing.T) {
	srv := newTestServer(&fakeFetcher{})
	result := callTool(t, srv, "options_chain", `{}`)
	if !result.IsError {
		t.Error("expected tool error for unknown tool")
	}
}

func TestServerStatsTool(t *testing.T) {
	srv := New(&fakeFetcher{}, registry.Default(),
		&fakeCache{stats: models.CacheStats{Entries: 3, Hits: 7, Misses: 3}},
		&fakeTracker{summaries: []models.CallSummary{
			{Endpoint: "/stable/quote", Calls: 10, Successes: 8, Failures: 2, AvgLatencyMs: 84.5},
		}},
		"test")

	result := callTool(t, srv, "server_stats", `{}`)
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}
	text := result.Content[0].Text
	if !strings.Contains(text, "70.0% hit rate") {
		t.Errorf("missing cache hit rate:\n%s", text)
	}
	if !strings.Contains(text, "/stable/quote") {
		t.Errorf("missing endpoint row:\n%s", text)
	}
}

func TestParseError(t *testing.T) {
	srv := newTestServer(&fakeFetcher{})

	var out bytes.Buffer
	if err := srv.Run(context.Background(), strings.NewReader("{not json}\n"), &out); err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Errorf("error = %v, want code %d", resp.Error, CodeParseError)
	}
}

func TestUnknownMethod(t *testing.T) {
	srv := newTestServer(&fakeFetcher{})
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`9`),
		Method:  "resources/list",
	})
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error = %v, want code %d", resp.Error, CodeMethodNotFound)
	}
}
