package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey            string
	LLMAPIKeyFallbacks   []string
	LLMAPIBase           string
	LLMModel             string
	LLMTemperature       float64
	LLMMaxTokens         int
	MaxContentChars      int
	FetchTimeout         time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	PageCachePath        string
	PageCacheMaxAge      time.Duration // 0 = cached pages never expire
	ProfilesDir          string
	CrawlMaxConcurrent   int
	CrawlRateEvery       time.Duration // min interval between multi-crawl fetches
	RobotsUserAgent      string
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = stealth fetching disabled, plain client only
	LLMClient            *llm.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (crawler, youtube).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
