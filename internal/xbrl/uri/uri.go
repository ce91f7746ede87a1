// Package uri resolves relative schema and linkbase references and compares
// namespace and schema addresses.
package uri

import (
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// IsRemote reports whether u is an http(s) address.
func IsRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// Resolve returns the absolute address of rel relative to base. base may be
// a directory or a file (a last segment containing a dot is treated as a
// file name) and may be a local path or a URL. Absolute URLs in rel are
// returned unchanged.
//
//	Resolve("http://abc.org/a/b/c.xsd", "/../lab.xml") == "http://abc.org/a/lab.xml"
func Resolve(base, rel string) string {
	if IsRemote(rel) {
		return rel
	}

	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimPrefix(rel, "./")

	if !IsRemote(base) {
		if strings.Contains(filepath.Base(base), ".") {
			return filepath.Clean(filepath.Join(filepath.Dir(base), rel))
		}
		return filepath.Clean(filepath.Join(base, rel))
	}

	// scheme, empty, host, path...
	parts := strings.Split(base, "/")
	if len(parts) > 3 && strings.Contains(parts[len(parts)-1], ".") {
		base = strings.Join(parts[:len(parts)-1], "/")
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	parts = strings.Split(base+rel, "/")
	// ".." never climbs above the host.
	out := parts[:3:3]
	for _, p := range parts[3:] {
		if p != ".." {
			out = append(out, p)
		} else if len(out) > 3 {
			out = out[:len(out)-1]
		}
	}
	return strings.Join(out, "/")
}

// DefaultCacheSize bounds the number of memoized normal forms.
const DefaultCacheSize = 4096

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Comparer decides whether two addresses denote the same resource,
// ignoring the protocol and every non-alphanumeric character. Normal forms
// are memoized in an LRU owned by the Comparer, so independent callers can
// use independent caches. Safe for concurrent use.
type Comparer struct {
	cache *lru.Cache[string, string]
}

// NewComparer returns a Comparer memoizing up to size normal forms.
func NewComparer(size int) *Comparer {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, string](size)
	return &Comparer{cache: cache}
}

// Normalize returns the comparison form of u:
// "https://abc.org/2020" -> "abcorg2020".
func (c *Comparer) Normalize(u string) string {
	if n, ok := c.cache.Get(u); ok {
		return n
	}
	s := u
	if i := strings.LastIndex(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	n := nonWord.ReplaceAllString(s, "")
	c.cache.Add(u, n)
	return n
}

// Equal reports whether a and b have the same normal form.
func (c *Comparer) Equal(a, b string) bool {
	return c.Normalize(a) == c.Normalize(b)
}

// Len returns the number of memoized entries.
func (c *Comparer) Len() int {
	return c.cache.Len()
}

// Purge drops every memoized entry.
func (c *Comparer) Purge() {
	c.cache.Purge()
}
