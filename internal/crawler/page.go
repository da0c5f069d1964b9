// Package crawler fetches web pages, converts them to markdown and runs
// LLM-based structured extraction over the result. Pages are cached in
// sqlite; multi-URL crawls run through a bounded dispatcher.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/anatolykoptev/go_crawl/internal/profile"
)

// CacheMode controls how Page consults the page cache.
type CacheMode string

const (
	// CacheEnabled reads and writes the page cache.
	CacheEnabled CacheMode = "enabled"
	// CacheBypass skips cache reads but still writes fresh results.
	CacheBypass CacheMode = "bypass"
	// CacheDisabled neither reads nor writes the page cache.
	CacheDisabled CacheMode = "disabled"
)

// ParseCacheMode maps a tool argument to a CacheMode. Empty means enabled.
func ParseCacheMode(s string) (CacheMode, error) {
	switch s {
	case "", string(CacheEnabled):
		return CacheEnabled, nil
	case string(CacheBypass):
		return CacheBypass, nil
	case string(CacheDisabled):
		return CacheDisabled, nil
	}
	return "", fmt.Errorf("unknown cache_mode %q (want enabled, bypass or disabled)", s)
}

// RunConfig adjusts a single crawl.
type RunConfig struct {
	CacheMode   CacheMode
	CheckRobots bool
	Profile     string // named login profile, empty = none
	MaxChars    int    // markdown cap, 0 = engine default
}

// Page is one crawled page rendered to markdown.
type Page struct {
	URL       string    `json:"url"`
	Status    int       `json:"status"`
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	Cached    bool      `json:"cached"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Crawler fetches pages via the stealth browser client when configured,
// falling back to a plain HTTP client.
type Crawler struct {
	cache    *PageCache       // nil = no persistent page cache
	profiles *profile.Manager // nil = profiles disabled
	robots   robotsCache
}

// New returns a Crawler. Both arguments may be nil.
func New(cache *PageCache, profiles *profile.Manager) *Crawler {
	return &Crawler{cache: cache, profiles: profiles}
}

// Page fetches one URL and converts it to markdown. Non-2xx statuses are not
// errors; the status is surfaced on the result.
func (c *Crawler) Page(ctx context.Context, pageURL string, rc RunConfig) (*Page, error) {
	engine.IncrCrawl()

	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		engine.IncrCrawlError()
		return nil, fmt.Errorf("invalid url %q", pageURL)
	}

	mode := rc.CacheMode
	if mode == "" {
		mode = CacheEnabled
	}
	if mode == CacheEnabled && c.cache != nil {
		if p, ok := c.cache.Get(ctx, pageURL); ok {
			return p, nil
		}
	}

	if rc.CheckRobots && !c.robots.allowed(ctx, pageURL) {
		engine.IncrRobotsBlocked()
		return nil, fmt.Errorf("%w: %s", ErrRobotsBlocked, pageURL)
	}

	body, status, err := c.fetch(ctx, pageURL, rc.Profile)
	if err != nil {
		engine.IncrCrawlError()
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	title, md := extractContent(pageURL, body)
	maxChars := rc.MaxChars
	if maxChars <= 0 {
		maxChars = engine.Cfg.MaxContentChars
	}
	if maxChars > 0 {
		md = engine.TruncateRunes(md, maxChars, "...")
	}

	p := &Page{
		URL:       pageURL,
		Status:    status,
		Title:     title,
		Markdown:  md,
		FetchedAt: time.Now().UTC(),
	}
	if mode != CacheDisabled && c.cache != nil {
		if err := c.cache.Put(ctx, p); err != nil {
			slog.Warn("page cache write failed", slog.String("url", pageURL), slog.Any("error", err))
		}
	}
	return p, nil
}

func (c *Crawler) fetch(ctx context.Context, pageURL, profileName string) ([]byte, int, error) {
	if profileName != "" && c.profiles == nil {
		return nil, 0, fmt.Errorf("profiles are not configured")
	}
	if engine.Cfg.BrowserClient != nil {
		return c.fetchStealth(ctx, pageURL, profileName)
	}
	return c.fetchFallback(ctx, pageURL, profileName)
}

type fetchResult struct {
	body   []byte
	status int
}

// fetchStealth goes through the impersonating browser client. Profile headers
// are merged over the Chrome defaults, cookies as a flat Cookie line.
func (c *Crawler) fetchStealth(ctx context.Context, pageURL, profileName string) ([]byte, int, error) {
	headers := engine.ChromeHeaders()
	if profileName != "" {
		extra, err := c.profiles.Headers(profileName)
		if err != nil {
			return nil, 0, err
		}
		engine.IncrProfileLoad()
		for k, v := range extra {
			headers[k] = v
		}
	}

	bc := engine.Cfg.BrowserClient
	res, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() (fetchResult, error) {
		body, _, status, err := bc.Do(http.MethodGet, pageURL, headers, nil)
		if err != nil {
			return fetchResult{}, err
		}
		if engine.IsRetryableStatus(status) {
			return fetchResult{}, fmt.Errorf("retryable status %d", status)
		}
		return fetchResult{body: body, status: status}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return res.body, res.status, nil
}

// fetchFallback uses the plain HTTP client. With a profile, cookies ride in a
// jar so they survive redirects.
func (c *Crawler) fetchFallback(ctx context.Context, pageURL, profileName string) ([]byte, int, error) {
	if profileName == "" {
		resp, err := engine.FetchWithRetry(ctx, pageURL, true)
		if err != nil {
			return nil, 0, err
		}
		defer resp.Body.Close()
		body, err := engine.ReadResponseBody(resp)
		if err != nil {
			return nil, 0, err
		}
		return body, resp.StatusCode, nil
	}

	p, err := c.profiles.Get(profileName)
	if err != nil {
		return nil, 0, err
	}
	jar, err := c.profiles.Jar(profileName)
	if err != nil {
		return nil, 0, err
	}
	engine.IncrProfileLoad()

	timeout := engine.Cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout, Jar: jar}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		for k, v := range p.Headers {
			req.Header.Set(k, v)
		}
		return client.Do(req)
	})
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := engine.ReadResponseBody(resp)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// extractContent turns raw HTML into a title and markdown, trying readability
// first, then goquery, then regex stripping.
func extractContent(pageURL string, body []byte) (title, markdown string) {
	parsed, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err == nil {
		md, mdErr := htmltomarkdown.ConvertString(article.Content)
		if mdErr != nil {
			md = article.TextContent
		}
		if text := strings.TrimSpace(md); text != "" {
			return article.Title, text
		}
	}
	if title, md, ok := extractWithGoquery(body); ok {
		return title, md
	}
	return extractWithRegex(string(body))
}

var removeSelectors = strings.Join([]string{
	"script", "style", "noscript", "iframe", "svg",
	"header", "footer", "nav", "aside",
	".advertisement", ".ad", ".sidebar", ".comments",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
}, ", ")

// extractWithGoquery uses structured HTML parsing when readability comes back empty.
func extractWithGoquery(body []byte) (title, content string, ok bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", false
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		doc.Find(`meta[property='og:title']`).Each(func(i int, s *goquery.Selection) {
			if title == "" {
				title, _ = s.Attr("content")
			}
		})
	}

	doc.Find(removeSelectors).Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	contentSel := doc.Find("article, main, .content, .post-content, .article-content, #content").First()
	if contentSel.Length() == 0 {
		contentSel = doc.Find("body")
	}

	content = engine.CollapseWhitespace(contentSel.Text())
	if content == "" {
		return "", "", false
	}
	return title, content, true
}

var (
	titleRE   = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	ogTitleRE = regexp.MustCompile(`(?i)<meta[^>]*property=["']og:title["'][^>]*content=["']([^"']+)["']`)

	stripBlockREs = func() []*regexp.Regexp {
		tags := []string{"script", "style", "noscript", "header", "footer", "nav", "aside", "iframe"}
		res := make([]*regexp.Regexp, len(tags))
		for i, tag := range tags {
			res[i] = regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		}
		return res
	}()
)

// extractWithRegex is the last resort: strip block elements and tags.
func extractWithRegex(html string) (title, content string) {
	if m := titleRE.FindStringSubmatch(html); len(m) > 1 {
		title = strings.TrimSpace(m[1])
	}
	if title == "" {
		if m := ogTitleRE.FindStringSubmatch(html); len(m) > 1 {
			title = strings.TrimSpace(m[1])
		}
	}

	for _, re := range stripBlockREs {
		html = re.ReplaceAllString(html, "")
	}
	content = engine.CollapseWhitespace(engine.CleanHTML(html))
	return title, content
}
