// go_crawl: Web Crawl & YouTube Transcript MCP server.
//
// Exposes crawl, structured-extraction, transcript, summary, translation and
// browsing-profile tools. Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_crawl/internal/crawler"
	"github.com/anatolykoptev/go_crawl/internal/crawlserver"
	"github.com/anatolykoptev/go_crawl/internal/engine"
	"github.com/anatolykoptev/go_crawl/internal/profile"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	initEngine()

	slog.Info("starting go_crawl",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_crawl",
		Version: version,
	}, nil)

	crawlserver.RegisterTools(server, buildDeps())
	slog.Info("tools registered", slog.Int("count", 11))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_crawl",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 16384),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 50000),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		PageCachePath:        env.Str("PAGE_CACHE_PATH", filepath.Join(dataDir(), "pages.db")),
		PageCacheMaxAge:      env.Duration("PAGE_CACHE_MAX_AGE", 0),
		ProfilesDir:          env.Str("PROFILES_DIR", filepath.Join(dataDir(), "profiles")),
		CrawlMaxConcurrent:   env.Int("CRAWL_MAX_CONCURRENT", 3),
		CrawlRateEvery:       env.Duration("CRAWL_RATE_EVERY", 0),
		RobotsUserAgent:      env.Str("ROBOTS_USER_AGENT", engine.UserAgentBot),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

// buildDeps wires the crawler and profile store. Both degrade gracefully:
// without a page cache crawls are simply uncached, without a profile store
// the profile tools report that profiles are not configured.
func buildDeps() crawlserver.Deps {
	var cache *crawler.PageCache
	if path := engine.Cfg.PageCachePath; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			slog.Warn("page cache dir create failed, caching disabled", slog.Any("error", err))
		} else if pc, err := crawler.OpenPageCache(path, engine.Cfg.PageCacheMaxAge); err != nil {
			slog.Warn("page cache init failed, caching disabled", slog.Any("error", err))
		} else {
			cache = pc
			slog.Info("page cache ready", slog.String("path", path))
		}
	}

	var profiles *profile.Manager
	if dir := engine.Cfg.ProfilesDir; dir != "" {
		m, err := profile.NewManager(dir)
		if err != nil {
			slog.Warn("profile store init failed, profile tools disabled", slog.Any("error", err))
		} else {
			profiles = m
		}
	}

	return crawlserver.Deps{
		Crawler:  crawler.New(cache, profiles),
		Profiles: profiles,
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".go_crawl"
	}
	return filepath.Join(home, ".go_crawl")
}
