package registry

import "github.com/pantainos/fmp/pkg/models"

// defaultFamilies is the built-in catalogue of upstream /stable/* data
// families with their freshness classes.
var defaultFamilies = []Family{
	{Name: "profile", Endpoint: "/stable/profile", TTL: models.Duration(TTLDaily), Description: "Company profile and descriptive data"},
	{Name: "quote", Endpoint: "/stable/quote", TTL: models.Duration(TTLRealtime), Description: "Real-time quote"},
	{Name: "ratios-ttm", Endpoint: "/stable/ratios-ttm", TTL: models.Duration(TTLHourly), Description: "Trailing-twelve-month valuation ratios"},
	{Name: "key-metrics-ttm", Endpoint: "/stable/key-metrics-ttm", TTL: models.Duration(TTLHourly), Description: "Trailing-twelve-month key metrics"},
	{Name: "price-history", Endpoint: "/stable/historical-price-eod/full", TTL: models.Duration(TTL12H), Description: "End-of-day price history"},
	{Name: "income-statement", Endpoint: "/stable/income-statement", TTL: models.Duration(TTLHourly), Description: "Income statements"},
	{Name: "balance-sheet", Endpoint: "/stable/balance-sheet-statement", TTL: models.Duration(TTLHourly), Description: "Balance sheets"},
	{Name: "cash-flow", Endpoint: "/stable/cash-flow-statement", TTL: models.Duration(TTLHourly), Description: "Cash flow statements"},
	{Name: "earnings", Endpoint: "/stable/earnings", TTL: models.Duration(TTLHourly), Description: "Earnings history and upcoming dates"},
	{Name: "grades", Endpoint: "/stable/grades", TTL: models.Duration(TTL6H), Description: "Individual analyst grade changes"},
	{Name: "grades-consensus", Endpoint: "/stable/grades-consensus", TTL: models.Duration(TTL6H), Description: "Analyst grade consensus"},
	{Name: "price-target-consensus", Endpoint: "/stable/price-target-consensus", TTL: models.Duration(TTL6H), Description: "Analyst price target consensus"},
	{Name: "analyst-estimates", Endpoint: "/stable/analyst-estimates", TTL: models.Duration(TTL6H), Description: "Forward analyst estimates"},
	{Name: "insider-trades", Endpoint: "/stable/insider-trading/search", TTL: models.Duration(TTLHourly), Description: "Insider transactions"},
	{Name: "insider-statistics", Endpoint: "/stable/insider-trading/statistics", TTL: models.Duration(TTLHourly), Description: "Aggregated insider buy/sell statistics"},
	{Name: "shares-float", Endpoint: "/stable/shares-float", TTL: models.Duration(TTLDaily), Description: "Shares outstanding and float"},
	{Name: "stock-news", Endpoint: "/stable/news/stock", TTL: models.Duration(TTLRealtime), Description: "Stock-specific news"},
	{Name: "general-news", Endpoint: "/stable/news/general-latest", TTL: models.Duration(TTLRealtime), Description: "General market news"},
	{Name: "stock-peers", Endpoint: "/stable/stock-peers", TTL: models.Duration(TTLDaily), Description: "Peer companies"},
	{Name: "treasury-rates", Endpoint: "/stable/treasury-rates", TTL: models.Duration(TTLHourly), Description: "US treasury yield curve"},
	{Name: "market-risk-premium", Endpoint: "/stable/market-risk-premium", TTL: models.Duration(TTLDaily), Description: "Equity market risk premium"},
	{Name: "economic-calendar", Endpoint: "/stable/economic-calendar", TTL: models.Duration(TTLHourly), Description: "Upcoming economic releases"},
	{Name: "sector-performance", Endpoint: "/stable/sector-performance-snapshot", TTL: models.Duration(TTLHourly), Description: "Sector performance snapshot"},
	{Name: "biggest-gainers", Endpoint: "/stable/biggest-gainers", TTL: models.Duration(TTLRealtime), Description: "Top gaining stocks"},
	{Name: "biggest-losers", Endpoint: "/stable/biggest-losers", TTL: models.Duration(TTLRealtime), Description: "Top losing stocks"},
}
