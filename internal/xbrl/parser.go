package xbrl

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/xbrl-cli/internal/xbrl/document"
	"github.com/sells-group/xbrl-cli/internal/xbrl/taxonomy"
	"github.com/sells-group/xbrl-cli/internal/xbrl/uri"
)

// Cache maps remote addresses to local files.
type Cache interface {
	Fetch(ctx context.Context, url string) (string, error)
	Dir() string
}

// TaxonomyLoader loads taxonomy schemas.
type TaxonomyLoader interface {
	Load(ctx context.Context, path string) (*taxonomy.Taxonomy, error)
	LoadURL(ctx context.Context, url string) (*taxonomy.Taxonomy, error)
	LoadCommon(ctx context.Context, namespace string) (*taxonomy.Taxonomy, error)
}

// Parser parses instance documents. Without WithLoader every parse gets
// its own taxonomy loader, so parses never share taxonomy objects.
type Parser struct {
	cache    Cache
	loader   TaxonomyLoader
	comparer *uri.Comparer
	log      *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the parser's logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// WithLoader makes every parse use loader.
func WithLoader(loader TaxonomyLoader) Option {
	return func(p *Parser) { p.loader = loader }
}

// WithComparer shares a URI comparer between the loaders of every parse.
// Only normalized addresses are shared, never taxonomy objects.
func WithComparer(c *uri.Comparer) Option {
	return func(p *Parser) { p.comparer = c }
}

// NewParser creates a Parser that fetches remote files through cache.
func NewParser(cache Cache, opts ...Option) *Parser {
	p := &Parser{cache: cache, log: zap.L()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) String() string {
	dir := ""
	if p.cache != nil {
		dir = p.cache.Dir()
	}
	return fmt.Sprintf("XbrlParser with cache dir at %s", dir)
}

func (p *Parser) newLoader() TaxonomyLoader {
	if p.loader != nil {
		return p.loader
	}
	var c taxonomy.Cache
	if p.cache != nil {
		c = p.cache
	}
	opts := []taxonomy.LoaderOption{taxonomy.WithLogger(p.log)}
	if p.comparer != nil {
		opts = append(opts, taxonomy.WithComparer(p.comparer))
	}
	return taxonomy.NewLoader(c, opts...)
}

// IsXBRLPath reports whether a path or URL names a plain XBRL instance
// (.xml or .xbrl) rather than an inline XBRL document.
func IsXBRLPath(p string) bool {
	if u, err := url.Parse(p); err == nil && uri.IsRemote(p) {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".xml", ".xbrl":
		return true
	}
	return false
}

// ParseInstance fetches the instance at a URL and parses it as XBRL or
// inline XBRL by extension.
func (p *Parser) ParseInstance(ctx context.Context, instanceURL string) (*Instance, error) {
	if IsXBRLPath(instanceURL) {
		return p.ParseXBRLURL(ctx, instanceURL)
	}
	return p.ParseIXBRLURL(ctx, instanceURL)
}

// ParseInstanceLocally parses a local instance file as XBRL or inline XBRL
// by extension. sourceURL, when set, is the address the file was
// downloaded from and is used to resolve a relative schema reference.
func (p *Parser) ParseInstanceLocally(ctx context.Context, filePath, sourceURL string) (*Instance, error) {
	if IsXBRLPath(filePath) {
		return p.ParseXBRL(ctx, filePath, sourceURL)
	}
	return p.ParseIXBRL(ctx, filePath, sourceURL)
}

// ParseXBRLURL fetches a plain XBRL instance and parses it.
func (p *Parser) ParseXBRLURL(ctx context.Context, instanceURL string) (*Instance, error) {
	filePath, err := p.fetch(ctx, instanceURL)
	if err != nil {
		return nil, err
	}
	return p.ParseXBRL(ctx, filePath, instanceURL)
}

// ParseIXBRLURL fetches an inline XBRL document and parses it.
func (p *Parser) ParseIXBRLURL(ctx context.Context, instanceURL string) (*Instance, error) {
	filePath, err := p.fetch(ctx, instanceURL)
	if err != nil {
		return nil, err
	}
	return p.ParseIXBRL(ctx, filePath, instanceURL)
}

func (p *Parser) fetch(ctx context.Context, instanceURL string) (string, error) {
	if p.cache == nil {
		return "", eris.Errorf("xbrl: no cache to fetch %s", instanceURL)
	}
	filePath, err := p.cache.Fetch(ctx, instanceURL)
	if err != nil {
		return "", eris.Wrapf(err, "xbrl: fetch %s", instanceURL)
	}
	return filePath, nil
}

// ParseXBRL parses a plain XBRL instance file.
func (p *Parser) ParseXBRL(ctx context.Context, filePath, sourceURL string) (*Instance, error) {
	doc, err := document.ParseAs(filePath, false)
	if err != nil {
		return nil, err
	}
	loader := p.newLoader()
	tax, err := p.schemaTaxonomy(ctx, loader, doc, filePath, sourceURL)
	if err != nil {
		return nil, err
	}

	r := &resolver{tax: tax, loader: loader, nsMap: doc.NSMap, log: p.log}
	contexts, err := r.resolveContexts(ctx, document.Children(doc.Root, document.NSXBRLI, "context"))
	if err != nil {
		return nil, err
	}
	units, err := resolveUnits(document.Children(doc.Root, document.NSXBRLI, "unit"))
	if err != nil {
		return nil, err
	}
	facts, err := r.extractXBRL(ctx, doc.Root, contexts, units)
	if err != nil {
		return nil, err
	}
	return p.instance(filePath, sourceURL, tax, facts, contexts, units), nil
}

// ParseIXBRL parses an inline XBRL document.
func (p *Parser) ParseIXBRL(ctx context.Context, filePath, sourceURL string) (*Instance, error) {
	doc, err := document.ParseAs(filePath, true)
	if err != nil {
		return nil, err
	}
	loader := p.newLoader()
	tax, err := p.schemaTaxonomy(ctx, loader, doc, filePath, sourceURL)
	if err != nil {
		return nil, err
	}

	resources := document.Find(doc.Root, func(e *etree.Element) bool { return document.IsInline(e, "resources") })
	if resources == nil {
		return nil, eris.Wrapf(ErrResourceBlockNotFound, "xbrl: %s", filePath)
	}

	r := &resolver{tax: tax, loader: loader, nsMap: maps.Clone(doc.NSMap), log: p.log}
	contexts, err := r.resolveContexts(ctx, document.Children(resources, document.NSXBRLI, "context"))
	if err != nil {
		return nil, err
	}
	units, err := resolveUnits(document.Children(resources, document.NSXBRLI, "unit"))
	if err != nil {
		return nil, err
	}
	facts, err := r.extractIXBRL(ctx, doc.Root, contexts, units)
	if err != nil {
		return nil, err
	}
	return p.instance(filePath, sourceURL, tax, facts, contexts, units), nil
}

func (p *Parser) instance(filePath, sourceURL string, tax *taxonomy.Taxonomy, facts []*Fact, contexts map[string]*Context, units map[string]*Unit) *Instance {
	u := sourceURL
	if u == "" {
		u = filePath
	}
	p.log.Debug("xbrl: parsed instance",
		zap.String("instance", u),
		zap.Int("facts", len(facts)),
		zap.Int("contexts", len(contexts)),
		zap.Int("units", len(units)),
	)
	return &Instance{URL: u, Taxonomy: tax, Facts: facts, Contexts: contexts, Units: units}
}

// schemaTaxonomy loads the taxonomy named by the document's link:schemaRef.
// Absolute references are fetched; relative ones are resolved against the
// source URL when known and against the local file otherwise.
func (p *Parser) schemaTaxonomy(ctx context.Context, loader TaxonomyLoader, doc *document.Document, filePath, sourceURL string) (*taxonomy.Taxonomy, error) {
	ref := document.Find(doc.Root, func(e *etree.Element) bool { return document.Is(e, document.NSLink, "schemaRef") })
	if ref == nil {
		return nil, eris.Wrapf(ErrMalformedDocument, "xbrl: %s has no schemaRef", filePath)
	}
	href, ok := document.AttrNS(ref, document.NSXLink, "href", doc.NSMap)
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return nil, eris.Wrapf(ErrMalformedDocument, "xbrl: %s: schemaRef without href", filePath)
	}

	var (
		tax *taxonomy.Taxonomy
		err error
	)
	switch {
	case uri.IsRemote(href):
		tax, err = loader.LoadURL(ctx, href)
	case sourceURL != "":
		tax, err = loader.LoadURL(ctx, uri.Resolve(sourceURL, href))
	default:
		tax, err = loader.Load(ctx, uri.Resolve(filePath, href))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "xbrl: load schema %s", href)
	}
	p.log.Debug("xbrl: resolved taxonomy",
		zap.String("schema", href),
		zap.String("namespace", tax.Namespace),
	)
	return tax, nil
}
