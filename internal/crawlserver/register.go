// Package crawlserver exposes the crawling, YouTube transcript, login
// profile and translation tools over MCP.
package crawlserver

import (
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_crawl/internal/crawler"
	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/anatolykoptev/go_crawl/internal/profile"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Deps carries the shared components the tools operate on.
type Deps struct {
	Crawler  *crawler.Crawler
	Profiles *profile.Manager // nil disables the profile tools
}

var (
	deps Deps

	// manyLimiter paces multi-URL crawls across tool calls.
	manyLimiter *rate.Limiter
)

// RegisterTools registers all tools on the given MCP server: youtube_transcript,
// get_youtube_transcript_manual, youtube_summary, crawl_page, crawl_extract,
// crawl_many, profile_save, profile_list, profile_delete, profile_test, translate.
func RegisterTools(server *mcp.Server, d Deps) {
	deps = d
	if every := engine.Cfg.CrawlRateEvery; every > 0 {
		manyLimiter = rate.NewLimiter(rate.Every(every), 1)
	}

	registerTranscript(server)
	registerTranscriptManual(server)
	registerSummary(server)
	registerCrawlPage(server)
	registerCrawlExtract(server)
	registerCrawlMany(server)
	registerProfileSave(server)
	registerProfileList(server)
	registerProfileDelete(server)
	registerProfileTest(server)
	registerTranslate(server)
}
