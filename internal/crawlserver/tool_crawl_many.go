package crawlserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_crawl/internal/crawler"
	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxManyURLs = 20

func registerCrawlMany(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "crawl_many",
		Description: "Fetches several web pages concurrently and reports a per-URL outcome: success with the content size, or the error that stopped it. Results come back in input order. Concurrency is bounded (default 3, max_concurrent to override) and fetches share the server-wide rate limit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.CrawlManyInput) (*mcp.CallToolResult, *crawler.ManyResult, error) {
		if len(input.URLs) == 0 {
			return nil, nil, fmt.Errorf("urls is required")
		}
		if len(input.URLs) > maxManyURLs {
			return nil, nil, fmt.Errorf("too many urls (max %d)", maxManyURLs)
		}
		mode, err := crawler.ParseCacheMode(input.CacheMode)
		if err != nil {
			return nil, nil, err
		}

		res := deps.Crawler.Many(ctx, input.URLs, crawler.RunConfig{
			CacheMode:   mode,
			CheckRobots: input.CheckRobots,
		}, crawler.Dispatcher{
			MaxConcurrent: input.MaxConcurrent,
			Limiter:       manyLimiter,
		})
		return nil, res, nil
	})
}
