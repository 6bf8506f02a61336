package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pantainos/fmp/pkg/workflow"
)

// Tool argument structs.

type symbolArgs struct {
	Symbol string `json:"symbol"`
}

type statementsArgs struct {
	Symbol    string `json:"symbol"`
	Statement string `json:"statement"`
	Limit     int    `json:"limit"`
}

type priceHistoryArgs struct {
	Symbol string `json:"symbol"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type newsArgs struct {
	Symbol string `json:"symbol"`
	Limit  int    `json:"limit"`
}

// toolHandler is a function that handles a tool call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

// toolHandlers maps tool names to their handlers.
var toolHandlers = map[string]toolHandler{
	"company_overview":     handleCompanyOverview,
	"stock_quote":          handleStockQuote,
	"financial_statements": handleFinancialStatements,
	"analyst_consensus":    handleAnalystConsensus,
	"price_history":        handlePriceHistory,
	"market_news":          handleMarketNews,
	"treasury_rates":       handleTreasuryRates,
	"stock_brief":          handleStockBrief,
	"market_context":       handleMarketContext,
	"earnings_setup":       handleEarningsSetup,
	"server_stats":         handleServerStats,
}

var symbolProperty = map[string]any{
	"type":        "string",
	"description": `Stock ticker symbol (e.g. "AAPL", "MSFT")`,
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "stock_brief",
		Description: "Workflow: a quick comprehensive read on any stock — profile, quote, valuation, price action, analyst view, insider activity, and recent news in one call. Start here for stock questions.",
		InputSchema: map[string]any{
			"type":       "object",
			"required":   []string{"symbol"},
			"properties": map[string]any{"symbol": symbolProperty},
		},
	},
	{
		Name:        "market_context",
		Description: "Workflow: the macro environment in one call — treasury yield curve, equity risk premium, upcoming economic releases, sector performance, and today's biggest movers.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "earnings_setup",
		Description: "Workflow: pre-earnings positioning for a stock — earnings history, analyst grade changes, recent price action, insider activity, and float.",
		InputSchema: map[string]any{
			"type":       "object",
			"required":   []string{"symbol"},
			"properties": map[string]any{"symbol": symbolProperty},
		},
	},
	{
		Name:        "company_overview",
		Description: "Company snapshot: profile, current quote, and TTM valuation ratios.",
		InputSchema: map[string]any{
			"type":       "object",
			"required":   []string{"symbol"},
			"properties": map[string]any{"symbol": symbolProperty},
		},
	},
	{
		Name:        "stock_quote",
		Description: "Current quote for a stock: price, change, volume, day and year ranges.",
		InputSchema: map[string]any{
			"type":       "object",
			"required":   []string{"symbol"},
			"properties": map[string]any{"symbol": symbolProperty},
		},
	},
	{
		Name:        "financial_statements",
		Description: "Financial statements for a company.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"symbol"},
			"properties": map[string]any{
				"symbol": symbolProperty,
				"statement": map[string]any{
					"type":        "string",
					"enum":        []string{"income", "balance", "cash_flow"},
					"description": "Statement type (default income)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Number of periods (default 4)",
				},
			},
		},
	},
	{
		Name:        "analyst_consensus",
		Description: "Analyst grade consensus and price target consensus for a stock.",
		InputSchema: map[string]any{
			"type":       "object",
			"required":   []string{"symbol"},
			"properties": map[string]any{"symbol": symbolProperty},
		},
	},
	{
		Name:        "price_history",
		Description: "End-of-day price history for a stock.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"symbol"},
			"properties": map[string]any{
				"symbol": symbolProperty,
				"from": map[string]any{
					"type":        "string",
					"description": "Start date YYYY-MM-DD (default one year ago)",
				},
				"to": map[string]any{
					"type":        "string",
					"description": "End date YYYY-MM-DD (default today)",
				},
			},
		},
	},
	{
		Name:        "market_news",
		Description: "Recent market news, optionally filtered to one stock.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"symbol": map[string]any{
					"type":        "string",
					"description": "Stock ticker symbol (optional, omit for general news)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Number of articles (default 10)",
				},
			},
		},
	},
	{
		Name:        "treasury_rates",
		Description: "Current US treasury yield curve.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "server_stats",
		Description: "Show response cache statistics and per-endpoint upstream call aggregates.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
}

// fieldSpec names one composite field and the family that produces it.
type fieldSpec struct {
	name   string
	family string
	params map[string]string
}

func (s *Server) buildFields(specs []fieldSpec) ([]workflow.Field, error) {
	fields := make([]workflow.Field, 0, len(specs))
	for _, spec := range specs {
		d, err := s.descriptor(spec.family, spec.params)
		if err != nil {
			return nil, err
		}
		fields = append(fields, workflow.Field{Name: spec.name, Descriptor: d})
	}
	return fields, nil
}

func parseSymbol(rawArgs json.RawMessage) (string, bool) {
	var args symbolArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	sym := strings.ToUpper(strings.TrimSpace(args.Symbol))
	return sym, sym != ""
}

func handleStockQuote(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	symbol, ok := parseSymbol(rawArgs)
	if !ok {
		return errorResult("symbol is required")
	}
	fields, err := s.buildFields([]fieldSpec{
		{"quote", "quote", map[string]string{"symbol": symbol}},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}

func handleCompanyOverview(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	symbol, ok := parseSymbol(rawArgs)
	if !ok {
		return errorResult("symbol is required")
	}
	sym := map[string]string{"symbol": symbol}
	fields, err := s.buildFields([]fieldSpec{
		{"profile", "profile", sym},
		{"quote", "quote", sym},
		{"ratios", "ratios-ttm", sym},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}

func handleFinancialStatements(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args statementsArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	symbol := strings.ToUpper(strings.TrimSpace(args.Symbol))
	if symbol == "" {
		return errorResult("symbol is required")
	}

	family := "income-statement"
	switch args.Statement {
	case "", "income":
	case "balance":
		family = "balance-sheet"
	case "cash_flow":
		family = "cash-flow"
	default:
		return errorResult("statement must be one of income, balance, cash_flow")
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 4
	}
	fields, err := s.buildFields([]fieldSpec{
		{"statements", family, map[string]string{"symbol": symbol, "limit": strconv.Itoa(limit)}},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}

func handleAnalystConsensus(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	symbol, ok := parseSymbol(rawArgs)
	if !ok {
		return errorResult("symbol is required")
	}
	sym := map[string]string{"symbol": symbol}
	fields, err := s.buildFields([]fieldSpec{
		{"grades_consensus", "grades-consensus", sym},
		{"price_target_consensus", "price-target-consensus", sym},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}

func handlePriceHistory(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args priceHistoryArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	symbol := strings.ToUpper(strings.TrimSpace(args.Symbol))
	if symbol == "" {
		return errorResult("symbol is required")
	}

	from, to := args.From, args.To
	if from == "" {
		from = daysAgo(365)
	}
	if to == "" {
		to = daysAgo(0)
	}
	fields, err := s.buildFields([]fieldSpec{
		{"prices", "price-history", map[string]string{"symbol": symbol, "from": from, "to": to}},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}

func handleMarketNews(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args newsArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}

	spec := fieldSpec{name: "news", family: "general-news", params: map[string]string{"limit": strconv.Itoa(limit)}}
	if symbol := strings.ToUpper(strings.TrimSpace(args.Symbol)); symbol != "" {
		spec.family = "stock-news"
		spec.params["symbols"] = symbol
	}
	fields, err := s.buildFields([]fieldSpec{spec})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}

func handleTreasuryRates(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	fields, err := s.buildFields([]fieldSpec{{name: "treasury_rates", family: "treasury-rates"}})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}

func handleServerStats(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	var b strings.Builder

	if s.cache != nil {
		b.WriteString(formatCacheStats(s.cache.Stats()))
	} else {
		b.WriteString("Response cache is not configured.\n")
	}
	b.WriteString("\n")

	if s.tracker == nil {
		b.WriteString("Call tracking is not configured.")
		return textResult(b.String())
	}
	summaries, err := s.tracker.Summary(ctx)
	if err != nil {
		return errorResult("Error fetching call stats: " + err.Error())
	}
	b.WriteString(formatCallSummaries(summaries))
	return textResult(b.String())
}
