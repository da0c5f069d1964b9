package crawler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const pagesSchema = `
CREATE TABLE IF NOT EXISTS pages (
	url        TEXT PRIMARY KEY,
	status     INTEGER NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	markdown   TEXT NOT NULL DEFAULT '',
	fetched_at INTEGER NOT NULL
)`

// PageCache persists crawled pages in a local sqlite database so repeat
// crawls of the same URL are served from disk.
type PageCache struct {
	db     *sql.DB
	maxAge time.Duration // 0 = entries never expire
}

// OpenPageCache opens (creating if needed) the sqlite page cache at path.
func OpenPageCache(path string, maxAge time.Duration) (*PageCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open page cache: %w", err)
	}
	// Single connection: sqlite allows one writer, this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(pagesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init page cache schema: %w", err)
	}
	return &PageCache{db: db, maxAge: maxAge}, nil
}

// Get returns the cached page for url, or false on miss or expiry.
func (c *PageCache) Get(ctx context.Context, url string) (*Page, bool) {
	row := c.db.QueryRowContext(ctx,
		`SELECT status, title, markdown, fetched_at FROM pages WHERE url = ?`, url)

	var p Page
	var fetchedAt int64
	if err := row.Scan(&p.Status, &p.Title, &p.Markdown, &fetchedAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("page cache read failed", slog.String("url", url), slog.Any("error", err))
		}
		return nil, false
	}
	p.URL = url
	p.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	p.Cached = true

	if c.maxAge > 0 && time.Since(p.FetchedAt) > c.maxAge {
		return nil, false
	}
	return &p, true
}

// Put stores or replaces the cached page.
func (c *PageCache) Put(ctx context.Context, p *Page) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO pages (url, status, title, markdown, fetched_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			status = excluded.status,
			title = excluded.title,
			markdown = excluded.markdown,
			fetched_at = excluded.fetched_at`,
		p.URL, p.Status, p.Title, p.Markdown, p.FetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("store page: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *PageCache) Close() error {
	return c.db.Close()
}
