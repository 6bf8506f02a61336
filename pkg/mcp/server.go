// Package mcp exposes the financial-data tools to agents over a
// JSON-RPC 2.0 stdio transport.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/pantainos/fmp/pkg/fmp"
	"github.com/pantainos/fmp/pkg/models"
	"github.com/pantainos/fmp/pkg/registry"
	"github.com/pantainos/fmp/pkg/workflow"
)

// CacheStatter provides cache statistics without coupling to a
// concrete cache implementation.
type CacheStatter interface {
	Stats() models.CacheStats
}

// CallSummarizer provides upstream-call aggregates. May be absent when
// tracking is disabled.
type CallSummarizer interface {
	Summary(ctx context.Context) ([]models.CallSummary, error)
}

// Server is a minimal MCP server that communicates over stdio using
// JSON-RPC 2.0.
type Server struct {
	runner  *workflow.Runner
	reg     *registry.Registry
	cache   CacheStatter
	tracker CallSummarizer
	version string
}

// New creates an MCP Server. cache and tracker may be nil.
func New(fetcher workflow.Fetcher, reg *registry.Registry, cache CacheStatter, tracker CallSummarizer, version string) *Server {
	return &Server{
		runner:  workflow.NewRunner(fetcher),
		reg:     reg,
		cache:   cache,
		tracker: tracker,
		version: version,
	}
}

// Run reads JSON-RPC requests from r line-by-line and writes responses
// to w. It blocks until r is closed or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(w, Response{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: CodeParseError, Message: "parse error"},
			})
			continue
		}

		resp := s.dispatch(ctx, &req)
		if resp == nil {
			// notification — no response
			continue
		}
		s.writeResponse(w, *resp)
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil // notification, no response
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: InitializeResult{
			ProtocolVersion: "2024-11-05",
			ServerInfo:      ServerInfo{Name: "pantainos-fmp", Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		},
	}
}

func (s *Server) handleToolsList(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  ToolsListResult{Tools: allTools},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeInvalidParams, Message: "invalid params"},
		}
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: ToolCallResult{
				Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("unknown tool: %s", params.Name)}},
				IsError: true,
			},
		}
	}

	result := handler(ctx, s, params.Arguments)
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

func (s *Server) writeResponse(w io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("mcp: marshal error: %v", err)
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		log.Printf("mcp: write error: %v", err)
	}
}

// runFields resolves family descriptors into a composite tool result.
// Registry lookup failures and workflow validation errors are tool
// errors; degraded upstream data is not.
func (s *Server) runFields(ctx context.Context, fields []workflow.Field) ToolCallResult {
	composite, err := s.runner.Run(ctx, fields)
	if err != nil {
		return errorResult("workflow error: " + err.Error())
	}
	return compositeResult(composite)
}

// descriptor looks up a family descriptor in the registry.
func (s *Server) descriptor(family string, params map[string]string) (fmp.Descriptor, error) {
	return s.reg.Descriptor(family, params)
}
