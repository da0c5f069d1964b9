package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	CrawlRequests      atomic.Int64
	CrawlErrors        atomic.Int64
	ExtractRequests    atomic.Int64
	MultiCrawlRequests atomic.Int64
	RobotsBlocked      atomic.Int64
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	TranslateRequests  atomic.Int64
	SummaryRequests    atomic.Int64
	ProfileLoads       atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"crawl_requests":       metrics.CrawlRequests.Load(),
		"crawl_errors":         metrics.CrawlErrors.Load(),
		"extract_requests":     metrics.ExtractRequests.Load(),
		"multi_crawl_requests": metrics.MultiCrawlRequests.Load(),
		"robots_blocked":       metrics.RobotsBlocked.Load(),
		"fetch_requests":       metrics.FetchRequests.Load(),
		"fetch_errors":         metrics.FetchErrors.Load(),
		"llm_calls":            metrics.LLMCalls.Load(),
		"llm_errors":           metrics.LLMErrors.Load(),
		"transcript_requests":  metrics.TranscriptRequests.Load(),
		"transcript_errors":    metrics.TranscriptErrors.Load(),
		"translate_requests":   metrics.TranslateRequests.Load(),
		"summary_requests":     metrics.SummaryRequests.Load(),
		"profile_loads":        metrics.ProfileLoads.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"crawl_requests", "crawl_errors",
		"extract_requests", "multi_crawl_requests", "robots_blocked",
		"fetch_requests", "fetch_errors",
		"llm_calls", "llm_errors",
		"transcript_requests", "transcript_errors",
		"translate_requests", "summary_requests",
		"profile_loads",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the engine itself.
func IncrFetch()      { metrics.FetchRequests.Add(1) }
func IncrFetchError() { metrics.FetchErrors.Add(1) }
func IncrLLMCall()    { metrics.LLMCalls.Add(1) }
func IncrLLMError()   { metrics.LLMErrors.Add(1) }

// Incrementors for the crawler sub-package.
func IncrCrawl()         { metrics.CrawlRequests.Add(1) }
func IncrCrawlError()    { metrics.CrawlErrors.Add(1) }
func IncrExtract()       { metrics.ExtractRequests.Add(1) }
func IncrMultiCrawl()    { metrics.MultiCrawlRequests.Add(1) }
func IncrRobotsBlocked() { metrics.RobotsBlocked.Add(1) }

// Incrementors for the youtube sub-package and tool layer.
func IncrTranscript()      { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptError() { metrics.TranscriptErrors.Add(1) }
func IncrTranslate()       { metrics.TranslateRequests.Add(1) }
func IncrSummary()         { metrics.SummaryRequests.Add(1) }
func IncrProfileLoad()     { metrics.ProfileLoads.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
