package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"

	"github.com/anatolykoptev/go_crawl/internal/engine"
)

// ErrRobotsBlocked marks a URL disallowed by the target site's robots.txt.
var ErrRobotsBlocked = errors.New("blocked by robots.txt")

// robotsCache caches parsed robots.txt per origin. Unreachable or unparseable
// robots files are cached as nil and treated as allow-all, so one broken
// robots.txt cannot stall a whole crawl.
type robotsCache struct {
	groups sync.Map // origin → *robotstxt.RobotsData (nil = fail open)
}

func (rc *robotsCache) allowed(ctx context.Context, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return true
	}
	origin := u.Scheme + "://" + u.Host

	v, ok := rc.groups.Load(origin)
	if !ok {
		v = rc.fetch(ctx, origin)
		rc.groups.Store(origin, v)
	}
	data, _ := v.(*robotstxt.RobotsData)
	if data == nil {
		return true
	}

	agent := engine.Cfg.RobotsUserAgent
	if agent == "" {
		agent = engine.UserAgentBot
	}
	return data.TestAgent(u.Path, agent)
}

func (rc *robotsCache) fetch(ctx context.Context, origin string) *robotstxt.RobotsData {
	resp, err := engine.FetchWithRetry(ctx, origin+"/robots.txt", false)
	if err != nil {
		slog.Warn("robots.txt fetch failed", slog.String("origin", origin), slog.Any("error", err))
		return nil
	}
	defer resp.Body.Close()

	body, err := engine.ReadResponseBody(resp)
	if err != nil {
		slog.Warn("robots.txt read failed", slog.String("origin", origin), slog.Any("error", err))
		return nil
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		slog.Warn("robots.txt parse failed", slog.String("origin", origin), slog.Any("error", err))
		return nil
	}
	return data
}
