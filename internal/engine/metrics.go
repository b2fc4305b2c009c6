package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests atomic.Int64
	SearchErrors   atomic.Int64
	LLMCalls       atomic.Int64
	LLMErrors      atomic.Int64
	ScrapeFetches  atomic.Int64
	ScrapeErrors   atomic.Int64
	SinkSaves      atomic.Int64
	SinkErrors     atomic.Int64
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"search_requests": metrics.SearchRequests.Load(),
		"search_errors":   metrics.SearchErrors.Load(),
		"llm_calls":       metrics.LLMCalls.Load(),
		"llm_errors":      metrics.LLMErrors.Load(),
		"scrape_fetches":  metrics.ScrapeFetches.Load(),
		"scrape_errors":   metrics.ScrapeErrors.Load(),
		"sink_saves":      metrics.SinkSaves.Load(),
		"sink_errors":     metrics.SinkErrors.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests", "search_errors",
		"llm_calls", "llm_errors",
		"scrape_fetches", "scrape_errors",
		"sink_saves", "sink_errors",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the collab package.
func IncrSinkSaves()  { metrics.SinkSaves.Add(1) }
func IncrSinkErrors() { metrics.SinkErrors.Add(1) }
