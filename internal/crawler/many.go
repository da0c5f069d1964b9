package crawler

import (
	"context"
	"sync"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_crawl/internal/engine"
)

// Dispatcher bounds concurrency and paces requests for multi-URL crawls.
type Dispatcher struct {
	MaxConcurrent int
	Limiter       *rate.Limiter // optional, shared across workers
}

// Outcome is the per-URL result of a multi-crawl.
type Outcome struct {
	URL   string `json:"url"`
	OK    bool   `json:"ok"`
	Chars int    `json:"chars"`
	Error string `json:"error,omitempty"`
}

// ManyResult aggregates a multi-crawl, outcomes in input order.
type ManyResult struct {
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Many crawls urls with bounded concurrency and reports one Outcome per URL,
// in input order. Failures (robots blocks included) land in the outcome, not
// in an error: a multi-crawl always reports on every URL.
func (c *Crawler) Many(ctx context.Context, urls []string, rc RunConfig, d Dispatcher) *ManyResult {
	engine.IncrMultiCrawl()

	maxConcurrent := d.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = engine.Cfg.CrawlMaxConcurrent
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}

	sem := make(chan struct{}, maxConcurrent)
	outcomes := make([]Outcome, len(urls))
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if d.Limiter != nil {
				if err := d.Limiter.Wait(ctx); err != nil {
					outcomes[i] = Outcome{URL: u, Error: err.Error()}
					return
				}
			}

			var page *Page
			err := engine.TrackOperation(ctx, "crawl "+u, func(ctx context.Context) error {
				p, err := c.Page(ctx, u, rc)
				if err != nil {
					return err
				}
				page = p
				return nil
			})
			if err != nil {
				outcomes[i] = Outcome{URL: u, Error: err.Error()}
				return
			}
			outcomes[i] = Outcome{URL: u, OK: true, Chars: utf8.RuneCountInString(page.Markdown)}
		}(i, u)
	}

	wg.Wait()

	res := &ManyResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.OK {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	return res
}
