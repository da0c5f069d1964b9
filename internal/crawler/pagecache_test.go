package crawler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, maxAge time.Duration) *PageCache {
	t.Helper()
	c, err := OpenPageCache(filepath.Join(t.TempDir(), "pages.db"), maxAge)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPageCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t, 0)

	_, ok := c.Get(ctx, "https://example.com/a")
	assert.False(t, ok, "empty cache should miss")

	p := &Page{
		URL:       "https://example.com/a",
		Status:    200,
		Title:     "A",
		Markdown:  "# A\n\nbody",
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, c.Put(ctx, p))

	got, ok := c.Get(ctx, "https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, p.URL, got.URL)
	assert.Equal(t, p.Status, got.Status)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.Markdown, got.Markdown)
	assert.Equal(t, p.FetchedAt, got.FetchedAt)
	assert.True(t, got.Cached, "cache hits should be marked cached")
}

func TestPageCacheOverwrite(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t, 0)

	require.NoError(t, c.Put(ctx, &Page{URL: "https://example.com", Status: 200, Markdown: "old", FetchedAt: time.Now()}))
	require.NoError(t, c.Put(ctx, &Page{URL: "https://example.com", Status: 200, Markdown: "new", FetchedAt: time.Now()}))

	got, ok := c.Get(ctx, "https://example.com")
	require.True(t, ok)
	assert.Equal(t, "new", got.Markdown)
}

func TestPageCacheMaxAge(t *testing.T) {
	ctx := context.Background()
	c := openTestCache(t, time.Hour)

	stale := &Page{
		URL:       "https://example.com/old",
		Status:    200,
		Markdown:  "stale",
		FetchedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, c.Put(ctx, stale))
	_, ok := c.Get(ctx, "https://example.com/old")
	assert.False(t, ok, "entries past max age should miss")

	fresh := &Page{
		URL:       "https://example.com/new",
		Status:    200,
		Markdown:  "fresh",
		FetchedAt: time.Now(),
	}
	require.NoError(t, c.Put(ctx, fresh))
	_, ok = c.Get(ctx, "https://example.com/new")
	assert.True(t, ok)
}
