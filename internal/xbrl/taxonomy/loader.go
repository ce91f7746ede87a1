package taxonomy

import (
	"context"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/xbrl-cli/internal/xbrl/document"
	"github.com/sells-group/xbrl-cli/internal/xbrl/uri"
)

// Cache resolves a remote address to a local file, downloading it if needed.
type Cache interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Loader parses taxonomy schemas and follows their imports and includes.
// Each schema location is parsed once per Loader.
type Loader struct {
	cache    Cache
	comparer *uri.Comparer
	log      *zap.Logger

	mu   sync.Mutex
	memo map[string]*Taxonomy
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithComparer sets the comparer handed to loaded taxonomies.
func WithComparer(c *uri.Comparer) LoaderOption {
	return func(l *Loader) { l.comparer = c }
}

// WithLogger sets the loader's logger.
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// NewLoader creates a Loader fetching remote schemas through cache.
func NewLoader(cache Cache, opts ...LoaderOption) *Loader {
	l := &Loader{
		cache: cache,
		log:   zap.L(),
		memo:  make(map[string]*Taxonomy),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.comparer == nil {
		l.comparer = uri.NewComparer(uri.DefaultCacheSize)
	}
	return l
}

// Load parses the schema file at path.
func (l *Loader) Load(ctx context.Context, path string) (*Taxonomy, error) {
	return l.load(ctx, path, "")
}

// LoadURL fetches the schema at u through the cache and parses it.
func (l *Loader) LoadURL(ctx context.Context, u string) (*Taxonomy, error) {
	if t := l.memoized(u); t != nil {
		return t, nil
	}
	if l.cache == nil {
		return nil, eris.Errorf("taxonomy: no cache to fetch %s", u)
	}
	path, err := l.cache.Fetch(ctx, u)
	if err != nil {
		return nil, eris.Wrapf(err, "taxonomy: fetch %s", u)
	}
	return l.load(ctx, path, u)
}

// LoadCommon loads the well-known taxonomy declaring namespace. It returns
// nil without error when the namespace is not a known one.
func (l *Loader) LoadCommon(ctx context.Context, namespace string) (*Taxonomy, error) {
	schemaURL, ok := CommonSchemaURL(namespace)
	if !ok {
		return nil, nil
	}
	l.log.Info("taxonomy: loading common taxonomy",
		zap.String("namespace", namespace),
		zap.String("schema", schemaURL),
	)
	return l.LoadURL(ctx, schemaURL)
}

func (l *Loader) memoized(key string) *Taxonomy {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.memo[key]
}

func (l *Loader) load(ctx context.Context, path, schemaURL string) (*Taxonomy, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "taxonomy: load")
	}

	key := schemaURL
	if key == "" {
		key = path
	}
	if t := l.memoized(key); t != nil {
		return t, nil
	}

	doc, err := document.Parse(path)
	if err != nil {
		return nil, eris.Wrapf(err, "taxonomy: parse schema %s", key)
	}
	root := doc.Root
	if !document.Is(root, document.NSXSD, "schema") {
		return nil, eris.Errorf("taxonomy: %s is not an xml schema", key)
	}

	ns, _ := document.Attr(root, "targetNamespace")
	tax := New(ns, key, l.comparer)

	// Registered before following imports so that cycles terminate.
	l.mu.Lock()
	l.memo[key] = tax
	l.mu.Unlock()

	for _, el := range root.ChildElements() {
		if document.Is(el, document.NSXSD, "element") {
			if c := l.concept(el, doc.NSMap, ns, key); c != nil {
				tax.AddConcept(c)
			}
		}
	}

	for _, el := range root.ChildElements() {
		isImport := document.Is(el, document.NSXSD, "import")
		if !isImport && !document.Is(el, document.NSXSD, "include") {
			continue
		}
		loc, _ := document.Attr(el, "schemaLocation")
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		child, err := l.follow(ctx, path, schemaURL, loc)
		if err != nil {
			return nil, err
		}
		if isImport {
			tax.AddImport(child)
		} else {
			tax.merge(child)
		}
	}

	l.log.Debug("taxonomy: loaded schema",
		zap.String("schema", key),
		zap.String("namespace", ns),
		zap.Int("concepts", len(tax.Concepts)),
	)
	return tax, nil
}

// follow loads a schema referenced from the schema at path (fetched from
// schemaURL when set).
func (l *Loader) follow(ctx context.Context, path, schemaURL, loc string) (*Taxonomy, error) {
	switch {
	case uri.IsRemote(loc):
		return l.LoadURL(ctx, loc)
	case schemaURL != "":
		return l.LoadURL(ctx, uri.Resolve(schemaURL, loc))
	default:
		return l.Load(ctx, uri.Resolve(path, loc))
	}
}

func (l *Loader) concept(el *etree.Element, nsMap map[string]string, ns, schemaURL string) *Concept {
	name, ok := document.Attr(el, "name")
	if !ok || name == "" {
		return nil
	}
	id, _ := document.Attr(el, "id")
	typ, _ := document.Attr(el, "type")
	group, _ := document.Attr(el, "substitutionGroup")
	abstract, _ := document.Attr(el, "abstract")
	nillable, _ := document.Attr(el, "nillable")
	periodType, _ := document.AttrNS(el, document.NSXBRLI, "periodType", nsMap)
	balance, _ := document.AttrNS(el, document.NSXBRLI, "balance", nsMap)

	return &Concept{
		ID:                id,
		Name:              name,
		Namespace:         ns,
		SchemaURL:         schemaURL,
		Type:              typ,
		SubstitutionGroup: group,
		PeriodType:        periodType,
		Balance:           balance,
		Abstract:          abstract == "true",
		Nillable:          nillable == "true",
	}
}
