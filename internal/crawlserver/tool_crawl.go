package crawlserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_crawl/internal/crawler"
	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerCrawlPage(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "crawl_page",
		Description: "Fetches a web page and returns its readable content as markdown, with the title and HTTP status. Results are cached on disk; pass cache_mode=bypass to refetch or cache_mode=disabled to skip the cache entirely. Set profile to reuse saved cookies and headers, and check_robots=true to honor the site's robots.txt.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.CrawlInput) (*mcp.CallToolResult, *crawler.Page, error) {
		if input.URL == "" {
			return nil, nil, fmt.Errorf("url is required")
		}
		mode, err := crawler.ParseCacheMode(input.CacheMode)
		if err != nil {
			return nil, nil, err
		}

		page, err := deps.Crawler.Page(ctx, input.URL, crawler.RunConfig{
			CacheMode:   mode,
			CheckRobots: input.CheckRobots,
			Profile:     input.Profile,
		})
		if err != nil {
			slog.Warn("crawl_page: fetch error", slog.String("url", input.URL), slog.Any("error", err))
			return nil, nil, err
		}
		return nil, page, nil
	})
}
