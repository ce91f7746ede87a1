// Package cache stores remote filings and taxonomy schemas on disk, keyed by
// host and path, so each URL is downloaded at most once.
package cache

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/xbrl-cli/internal/fetcher"
)

// HTTPCache maps http(s) URLs to files under a cache directory.
type HTTPCache struct {
	dir     string
	fetcher fetcher.Fetcher
	group   singleflight.Group
}

// New creates a cache rooted at dir that downloads misses through f.
func New(dir string, f fetcher.Fetcher) *HTTPCache {
	return &HTTPCache{dir: filepath.Clean(dir), fetcher: f}
}

// Dir returns the cache root.
func (c *HTTPCache) Dir() string {
	return c.dir
}

// Path returns the file a URL is cached at: <dir>/<host>/<path>. URLs whose
// path ends in a slash are stored as "index".
func (c *HTTPCache) Path(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", eris.Wrapf(err, "cache: parse url %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", eris.Errorf("cache: unsupported scheme in %q", rawURL)
	}
	if u.Host == "" {
		return "", eris.Errorf("cache: missing host in %q", rawURL)
	}

	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}
	rel := filepath.Join(u.Host, filepath.FromSlash(filepath.Clean("/"+p)))
	full := filepath.Join(c.dir, rel)
	if !strings.HasPrefix(full, c.dir+string(filepath.Separator)) {
		return "", eris.Errorf("cache: url %q escapes cache dir", rawURL)
	}
	return full, nil
}

// Fetch returns the local path of rawURL, downloading it on a miss.
// Concurrent fetches of the same URL share one download.
func (c *HTTPCache) Fetch(ctx context.Context, rawURL string) (string, error) {
	path, err := c.Path(rawURL)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	_, err, shared := c.group.Do(path, func() (any, error) {
		if _, err := os.Stat(path); err == nil {
			return nil, nil
		}
		return nil, c.download(ctx, rawURL, path)
	})
	if err != nil {
		return "", err
	}
	if shared {
		zap.L().Debug("cache: shared download", zap.String("url", rawURL))
	}
	return path, nil
}

func (c *HTTPCache) download(ctx context.Context, rawURL, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "cache: create dir for %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return eris.Wrap(err, "cache: create temp file")
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpName) //nolint:errcheck

	n, err := c.fetcher.DownloadToFile(ctx, rawURL, tmpName)
	if err != nil {
		return eris.Wrapf(err, "cache: fetch %s", rawURL)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "cache: store %s", rawURL)
	}

	zap.L().Debug("cache: stored",
		zap.String("url", rawURL),
		zap.String("path", path),
		zap.Int64("bytes", n),
	)
	return nil
}

// Purge removes the cached copy of rawURL. It reports whether a file was removed.
func (c *HTTPCache) Purge(rawURL string) bool {
	path, err := c.Path(rawURL)
	if err != nil {
		return false
	}
	return os.Remove(path) == nil
}
