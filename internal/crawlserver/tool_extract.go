package crawlserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_crawl/internal/crawler"
	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerCrawlExtract(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "crawl_extract",
		Description: "Fetches a web page and extracts structured data from it with the LLM. Describe the desired shape in schema (e.g. '{\"name\": string, \"price\": number}') and optionally narrow the scope with instruction. Returns a JSON array of extracted items. Long pages are processed in chunks.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ExtractInput) (*mcp.CallToolResult, *engine.ExtractOutput, error) {
		if input.URL == "" {
			return nil, nil, fmt.Errorf("url is required")
		}
		if input.Schema == "" {
			return nil, nil, fmt.Errorf("schema is required")
		}

		items, err := deps.Crawler.Extract(ctx, input.URL, crawler.ExtractConfig{
			Schema:      input.Schema,
			Instruction: input.Instruction,
		})
		if err != nil {
			slog.Warn("crawl_extract: extraction error", slog.String("url", input.URL), slog.Any("error", err))
			return nil, nil, err
		}
		return nil, &engine.ExtractOutput{URL: input.URL, Count: len(items), Items: items}, nil
	})
}
