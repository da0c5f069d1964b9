package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/anatolykoptev/go_crawl/internal/profile"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Fox Story</title></head>
<body>
<nav>Home | About | Contact</nav>
<article>
<h1>Fox Story</h1>
<p>The quick brown fox jumps over the lazy dog. This sentence repeats to give
the extractor something to work with. The quick brown fox jumps over the lazy
dog once more, and keeps on jumping for several lines of honest paragraph text
so the page does not look empty.</p>
</article>
<footer>All rights reserved</footer>
<script>trackEverything();</script>
</body></html>`

func initTestEngine(t *testing.T) {
	t.Helper()
	engine.Init(engine.Config{
		FetchTimeout:    5 * time.Second,
		MaxContentChars: 100000,
		RobotsUserAgent: "TestBot",
	})
}

func TestParseCacheMode(t *testing.T) {
	tests := []struct {
		in      string
		want    CacheMode
		wantErr bool
	}{
		{"", CacheEnabled, false},
		{"enabled", CacheEnabled, false},
		{"bypass", CacheBypass, false},
		{"disabled", CacheDisabled, false},
		{"nuke", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCacheMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestExtractContent(t *testing.T) {
	title, md := extractContent("https://example.com/fox", []byte(articleHTML))
	assert.Equal(t, "Fox Story", title)
	assert.Contains(t, md, "quick brown fox")
	assert.NotContains(t, md, "trackEverything")
}

func TestExtractWithRegex(t *testing.T) {
	title, content := extractWithRegex(
		`<html><head><title> Bare Page </title><style>body{}</style></head>` +
			`<body><script>ignore()</script><p>visible text</p></body></html>`)
	assert.Equal(t, "Bare Page", title)
	assert.Contains(t, content, "visible text")
	assert.NotContains(t, content, "ignore()")
	assert.NotContains(t, content, "body{}")
}

func TestExtractWithGoquery(t *testing.T) {
	title, content, ok := extractWithGoquery([]byte(articleHTML))
	require.True(t, ok)
	assert.Equal(t, "Fox Story", title)
	assert.Contains(t, content, "quick brown fox")
	assert.NotContains(t, content, "All rights reserved")
	assert.NotContains(t, content, "Home | About")
}

func TestExtractWithGoqueryOGTitle(t *testing.T) {
	html := `<html><head><meta property="og:title" content="OG Wins"></head>` +
		`<body><p>some body text here</p></body></html>`
	title, _, ok := extractWithGoquery([]byte(html))
	require.True(t, ok)
	assert.Equal(t, "OG Wins", title)
}

func TestPageRejectsBadURLs(t *testing.T) {
	initTestEngine(t)
	c := New(nil, nil)

	for _, u := range []string{"", "not a url", "ftp://example.com/x", "file:///etc/passwd"} {
		_, err := c.Page(context.Background(), u, RunConfig{})
		assert.Error(t, err, "url %q", u)
	}
}

func TestPageFetchesAndCaches(t *testing.T) {
	initTestEngine(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	cache, err := OpenPageCache(filepath.Join(t.TempDir(), "pages.db"), 0)
	require.NoError(t, err)
	defer cache.Close()

	c := New(cache, nil)
	ctx := context.Background()

	p, err := c.Page(ctx, srv.URL+"/fox", RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Equal(t, "Fox Story", p.Title)
	assert.Contains(t, p.Markdown, "quick brown fox")
	assert.False(t, p.Cached)
	assert.Equal(t, int32(1), hits.Load())

	p2, err := c.Page(ctx, srv.URL+"/fox", RunConfig{})
	require.NoError(t, err)
	assert.True(t, p2.Cached)
	assert.Equal(t, int32(1), hits.Load(), "second crawl should be served from cache")

	p3, err := c.Page(ctx, srv.URL+"/fox", RunConfig{CacheMode: CacheBypass})
	require.NoError(t, err)
	assert.False(t, p3.Cached)
	assert.Equal(t, int32(2), hits.Load(), "bypass should refetch")

	p4, err := c.Page(ctx, srv.URL+"/fox", RunConfig{})
	require.NoError(t, err)
	assert.True(t, p4.Cached, "bypass should still refresh the cache")
	assert.Equal(t, int32(2), hits.Load())
}

func TestPageCacheDisabled(t *testing.T) {
	initTestEngine(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	cache, err := OpenPageCache(filepath.Join(t.TempDir(), "pages.db"), 0)
	require.NoError(t, err)
	defer cache.Close()

	c := New(cache, nil)
	ctx := context.Background()

	_, err = c.Page(ctx, srv.URL, RunConfig{CacheMode: CacheDisabled})
	require.NoError(t, err)
	_, ok := cache.Get(ctx, srv.URL)
	assert.False(t, ok, "disabled mode should not write the cache")
}

func TestPageSurfacesStatus(t *testing.T) {
	initTestEngine(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `<html><head><title>Not Found</title></head><body><p>gone for good</p></body></html>`)
	}))
	defer srv.Close()

	c := New(nil, nil)
	p, err := c.Page(context.Background(), srv.URL+"/missing", RunConfig{})
	require.NoError(t, err, "non-2xx is a result, not an error")
	assert.Equal(t, http.StatusNotFound, p.Status)
}

func TestPageRespectsRobots(t *testing.T) {
	initTestEngine(t)

	var pageHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		pageHits.Add(1)
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	c := New(nil, nil)
	ctx := context.Background()

	_, err := c.Page(ctx, srv.URL+"/private/doc", RunConfig{CheckRobots: true})
	require.ErrorIs(t, err, ErrRobotsBlocked)
	assert.Equal(t, int32(0), pageHits.Load(), "blocked URL should not be fetched")

	_, err = c.Page(ctx, srv.URL+"/public", RunConfig{CheckRobots: true})
	require.NoError(t, err)
	assert.Equal(t, int32(1), pageHits.Load())
}

func TestPageRobotsFailOpen(t *testing.T) {
	initTestEngine(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	c := New(nil, nil)
	_, err := c.Page(context.Background(), srv.URL+"/anything", RunConfig{CheckRobots: true})
	assert.NoError(t, err, "missing robots.txt should not block")
}

// newProfileManager stores a "session" profile whose cookie domain matches
// the test server's host.
func newProfileManager(t *testing.T, serverURL string) *profile.Manager {
	t.Helper()
	u, err := url.Parse(serverURL)
	require.NoError(t, err)

	m, err := profile.NewManager(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, m.Save(&profile.Profile{
		Name:    "session",
		Cookies: []profile.Cookie{{Name: "sid", Value: "abc123", Domain: u.Hostname()}},
		Headers: map[string]string{"X-Token": "tok"},
	}))
	return m
}

func TestPageUsesProfileHeaders(t *testing.T) {
	initTestEngine(t)

	var gotCookie, gotHeader atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie.Store(r.Header.Get("Cookie"))
		gotHeader.Store(r.Header.Get("X-Token"))
		fmt.Fprint(w, articleHTML)
	}))
	defer srv.Close()

	profiles := newProfileManager(t, srv.URL)
	c := New(nil, profiles)

	_, err := c.Page(context.Background(), srv.URL+"/fox", RunConfig{Profile: "session"})
	require.NoError(t, err)
	assert.Contains(t, gotCookie.Load().(string), "sid=abc123")
	assert.Equal(t, "tok", gotHeader.Load().(string))
}

func TestPageUnknownProfile(t *testing.T) {
	initTestEngine(t)

	profiles := newProfileManager(t, "http://127.0.0.1:1")
	c := New(nil, profiles)

	_, err := c.Page(context.Background(), "http://127.0.0.1:1/x", RunConfig{Profile: "nope"})
	assert.Error(t, err)
}
