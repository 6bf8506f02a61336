package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pantainos/fmp/pkg/models"
	"github.com/pantainos/fmp/pkg/workflow"
)

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

// compositeResult renders a composite as indented JSON, fields in
// request order. Degraded fields are annotated in a trailing _warnings
// list so the caller can tell fallback data from real data.
func compositeResult(c *workflow.Composite) ToolCallResult {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return errorResult("render composite: " + err.Error())
		}
		buf.Write(key)
		buf.WriteByte(':')
		res, _ := c.Get(name)
		if len(res.Value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(res.Value)
		}
	}

	if failed := c.Failed(); len(failed) > 0 {
		warnings := make([]string, 0, len(failed))
		for _, name := range failed {
			res, _ := c.Get(name)
			warnings = append(warnings, fmt.Sprintf("%s unavailable (%s)", name, res.Err))
		}
		data, err := json.Marshal(warnings)
		if err != nil {
			return errorResult("render warnings: " + err.Error())
		}
		buf.WriteString(`,"_warnings":`)
		buf.Write(data)
	}
	buf.WriteByte('}')

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf.Bytes(), "", "  "); err != nil {
		return errorResult("render composite: " + err.Error())
	}
	return textResult(pretty.String())
}

// formatCacheStats formats cache counters as text.
func formatCacheStats(stats models.CacheStats) string {
	total := stats.Hits + stats.Misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}
	return fmt.Sprintf("Cache: %d entries, %d hits, %d misses (%.1f%% hit rate)\n",
		stats.Entries, stats.Hits, stats.Misses, hitRate)
}

// formatCallSummaries formats per-endpoint call aggregates as a text table.
func formatCallSummaries(rows []models.CallSummary) string {
	if len(rows) == 0 {
		return "No upstream calls recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-45s %8s %8s %8s %8s %10s\n",
		"Endpoint", "Calls", "OK", "Failed", "Cached", "Avg ms")
	b.WriteString(strings.Repeat("-", 93) + "\n")
	for _, r := range rows {
		endpoint := r.Endpoint
		if len(endpoint) > 45 {
			endpoint = endpoint[:42] + "..."
		}
		fmt.Fprintf(&b, "%-45s %8d %8d %8d %8d %10.1f\n",
			endpoint, r.Calls, r.Successes, r.Failures, r.CacheHits, r.AvgLatencyMs)
	}
	return b.String()
}

func daysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format("2006-01-02")
}

func daysAhead(n int) string {
	return time.Now().UTC().AddDate(0, 0, n).Format("2006-01-02")
}
