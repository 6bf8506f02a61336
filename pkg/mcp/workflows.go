package mcp

import (
	"context"
	"encoding/json"
)

// Workflow tools fan out many independent fetches per call and always
// return a complete composite, degrading failed fields to fallbacks.

func handleStockBrief(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	symbol, ok := parseSymbol(rawArgs)
	if !ok {
		return errorResult("symbol is required")
	}
	sym := map[string]string{"symbol": symbol}

	fields, err := s.buildFields([]fieldSpec{
		{"profile", "profile", sym},
		{"quote", "quote", sym},
		{"ratios", "ratios-ttm", sym},
		{"price_history", "price-history", map[string]string{"symbol": symbol, "from": daysAgo(365), "to": daysAgo(0)}},
		{"grades_consensus", "grades-consensus", sym},
		{"price_target_consensus", "price-target-consensus", sym},
		{"insider_trades", "insider-trades", map[string]string{"symbol": symbol, "limit": "50"}},
		{"news", "stock-news", map[string]string{"symbols": symbol, "limit": "5"}},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}

func handleMarketContext(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	fields, err := s.buildFields([]fieldSpec{
		{"treasury_rates", "treasury-rates", nil},
		{"risk_premium", "market-risk-premium", nil},
		{"economic_calendar", "economic-calendar", map[string]string{"from": daysAgo(0), "to": daysAhead(7)}},
		{"sectors", "sector-performance", nil},
		{"gainers", "biggest-gainers", nil},
		{"losers", "biggest-losers", nil},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}

func handleEarningsSetup(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	symbol, ok := parseSymbol(rawArgs)
	if !ok {
		return errorResult("symbol is required")
	}
	sym := map[string]string{"symbol": symbol}

	fields, err := s.buildFields([]fieldSpec{
		{"profile", "profile", sym},
		{"quote", "quote", sym},
		{"earnings", "earnings", sym},
		{"grades", "grades", sym},
		{"price_history", "price-history", map[string]string{"symbol": symbol, "from": daysAgo(90), "to": daysAgo(0)}},
		{"insider_trades", "insider-trades", map[string]string{"symbol": symbol, "limit": "50"}},
		{"insider_statistics", "insider-statistics", sym},
		{"shares_float", "shares-float", sym},
	})
	if err != nil {
		return errorResult(err.Error())
	}
	return s.runFields(ctx, fields)
}
