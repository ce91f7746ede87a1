package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/xbrl-cli/internal/cache"
	"github.com/sells-group/xbrl-cli/internal/config"
	"github.com/sells-group/xbrl-cli/internal/fetcher"
	"github.com/sells-group/xbrl-cli/internal/xbrl"
	"github.com/sells-group/xbrl-cli/internal/xbrl/uri"
)

// env holds the pieces shared by every parse of one command run.
type env struct {
	cache    *cache.HTTPCache
	comparer *uri.Comparer
}

func newEnv(c *config.Config) *env {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.HTTP.UserAgent,
		Timeout:    time.Duration(c.HTTP.TimeoutSecs) * time.Second,
		MaxRetries: c.HTTP.MaxRetries,
	})
	return &env{
		cache:    cache.New(c.Cache.Dir, f),
		comparer: uri.NewComparer(c.URI.CacheSize),
	}
}

// parser returns a fresh Parser; each parse loads its own taxonomy.
func (e *env) parser(log *zap.Logger) *xbrl.Parser {
	return xbrl.NewParser(e.cache, xbrl.WithLogger(log), xbrl.WithComparer(e.comparer))
}

// parse reads target, a URL or a local path. sourceURL is the address a
// local file was downloaded from and is ignored for URLs.
func (e *env) parse(ctx context.Context, target, sourceURL string, log *zap.Logger) (*xbrl.Instance, error) {
	p := e.parser(log)
	if uri.IsRemote(target) {
		return p.ParseInstance(ctx, target)
	}
	return p.ParseInstanceLocally(ctx, target, sourceURL)
}
