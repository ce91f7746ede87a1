package xbrl

import (
	"context"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/xbrl-cli/internal/xbrl/document"
	"github.com/sells-group/xbrl-cli/internal/xbrl/taxonomy"
)

// resolver looks up concepts for one parse. Namespaces the instance
// taxonomy does not reach are loaded as common taxonomies and registered as
// imports of the instance taxonomy.
type resolver struct {
	tax    *taxonomy.Taxonomy
	loader TaxonomyLoader
	nsMap  map[string]string
	log    *zap.Logger
}

func (r *resolver) taxonomyFor(ctx context.Context, ns string) (*taxonomy.Taxonomy, error) {
	if t := r.tax.GetTaxonomy(ns); t != nil {
		return t, nil
	}
	t, err := r.loader.LoadCommon(ctx, ns)
	if err != nil {
		return nil, eris.Wrapf(err, "xbrl: load taxonomy for %s", ns)
	}
	if t == nil {
		return nil, eris.Wrapf(ErrTaxonomyNotFound, "xbrl: namespace %s", ns)
	}
	r.tax.AddImport(t)
	r.log.Debug("xbrl: registered common taxonomy", zap.String("namespace", ns))
	return t, nil
}

func (r *resolver) namespace(prefix string) (string, error) {
	ns, ok := r.nsMap[prefix]
	if !ok || ns == "" {
		return "", eris.Wrapf(ErrTaxonomyNotFound, "xbrl: unbound prefix %q", prefix)
	}
	return ns, nil
}

func lookup(t *taxonomy.Taxonomy, name string) (*taxonomy.Concept, error) {
	c, ok := t.Concept(name)
	if !ok {
		return nil, eris.Wrapf(ErrConceptNotFound, "xbrl: %s in %s", name, t.Namespace)
	}
	return c, nil
}

// concept resolves {ns}name.
func (r *resolver) concept(ctx context.Context, ns, name string) (*taxonomy.Concept, error) {
	t, err := r.taxonomyFor(ctx, ns)
	if err != nil {
		return nil, err
	}
	return lookup(t, name)
}

// conceptQName resolves a prefixed name through the namespace map.
func (r *resolver) conceptQName(ctx context.Context, qname string) (*taxonomy.Concept, error) {
	prefix, name := document.SplitQName(qname)
	ns, err := r.namespace(prefix)
	if err != nil {
		return nil, err
	}
	return r.concept(ctx, ns, name)
}

// resolveContexts builds the context map from xbrli:context elements.
func (r *resolver) resolveContexts(ctx context.Context, elements []*etree.Element) (map[string]*Context, error) {
	out := make(map[string]*Context, len(elements))
	for _, el := range elements {
		c, err := r.context(ctx, el)
		if err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, nil
}

func (r *resolver) context(ctx context.Context, el *etree.Element) (*Context, error) {
	id, ok := document.Attr(el, "id")
	if !ok {
		return nil, eris.Wrap(ErrMalformedDocument, "xbrl: context without id")
	}

	ident := document.Path(el, document.NSXBRLI, "entity", "identifier")
	if ident == nil {
		return nil, eris.Wrapf(ErrMalformedDocument, "xbrl: context %q has no entity identifier", id)
	}

	period, err := parsePeriod(id, document.Child(el, document.NSXBRLI, "period"))
	if err != nil {
		return nil, err
	}

	c := &Context{
		ID:     id,
		Entity: strings.TrimSpace(document.Text(ident)),
		Period: period,
	}

	segment := document.Path(el, document.NSXBRLI, "entity", "segment")
	if segment == nil {
		return c, nil
	}
	for _, m := range document.Children(segment, document.NSXBRLDI, "explicitMember") {
		member, err := r.explicitMember(ctx, id, m)
		if err != nil {
			return nil, err
		}
		c.Segments = append(c.Segments, member)
	}
	return c, nil
}

func (r *resolver) explicitMember(ctx context.Context, contextID string, el *etree.Element) (ExplicitMember, error) {
	document.MergeNamespaces(r.nsMap, el)

	dim, ok := document.Attr(el, "dimension")
	if !ok {
		return ExplicitMember{}, eris.Wrapf(ErrMalformedDocument, "xbrl: context %q: explicit member without dimension", contextID)
	}
	dimPrefix, dimName := document.SplitQName(dim)
	memPrefix, memName := document.SplitQName(document.Text(el))

	dimNS, err := r.namespace(dimPrefix)
	if err != nil {
		return ExplicitMember{}, err
	}
	dimTax, err := r.taxonomyFor(ctx, dimNS)
	if err != nil {
		return ExplicitMember{}, err
	}

	memTax := dimTax
	if memPrefix != dimPrefix {
		memNS, err := r.namespace(memPrefix)
		if err != nil {
			return ExplicitMember{}, err
		}
		if memTax, err = r.taxonomyFor(ctx, memNS); err != nil {
			return ExplicitMember{}, err
		}
	}

	dimension, err := lookup(dimTax, dimName)
	if err != nil {
		return ExplicitMember{}, err
	}
	member, err := lookup(memTax, memName)
	if err != nil {
		return ExplicitMember{}, err
	}
	return ExplicitMember{Dimension: dimension, Member: member}, nil
}

func parsePeriod(contextID string, el *etree.Element) (Period, error) {
	if el == nil {
		return Period{}, eris.Wrapf(ErrMalformedDocument, "xbrl: context %q has no period", contextID)
	}
	instant := document.Children(el, document.NSXBRLI, "instant")
	start := document.Children(el, document.NSXBRLI, "startDate")
	end := document.Children(el, document.NSXBRLI, "endDate")
	forever := document.Children(el, document.NSXBRLI, "forever")

	if len(instant) > 1 || len(start) > 1 || len(end) > 1 || len(forever) > 1 || len(start) != len(end) {
		return Period{}, eris.Wrapf(ErrMalformedDocument, "xbrl: context %q has an invalid period", contextID)
	}
	if len(instant)+len(start)+len(forever) != 1 {
		return Period{}, eris.Wrapf(ErrMalformedDocument, "xbrl: context %q needs exactly one period kind", contextID)
	}

	switch {
	case len(instant) == 1:
		d, err := parseDate(contextID, document.Text(instant[0]))
		if err != nil {
			return Period{}, err
		}
		return Period{Kind: PeriodInstant, Instant: d}, nil
	case len(start) == 1:
		s, err := parseDate(contextID, document.Text(start[0]))
		if err != nil {
			return Period{}, err
		}
		e, err := parseDate(contextID, document.Text(end[0]))
		if err != nil {
			return Period{}, err
		}
		return Period{Kind: PeriodDuration, Start: s, End: e}, nil
	default:
		return Period{Kind: PeriodForever}, nil
	}
}

// parseDate reads YYYY-MM-DD, dropping a trailing time of day.
func parseDate(contextID, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == 'T' {
		s = s[:10]
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(ErrParse, "xbrl: context %q: date %q", contextID, s)
	}
	return d, nil
}

// resolveUnits builds the unit map from xbrli:unit elements.
func resolveUnits(elements []*etree.Element) (map[string]*Unit, error) {
	out := make(map[string]*Unit, len(elements))
	for _, el := range elements {
		id, ok := document.Attr(el, "id")
		if !ok {
			return nil, eris.Wrap(ErrMalformedDocument, "xbrl: unit without id")
		}

		if m := document.Child(el, document.NSXBRLI, "measure"); m != nil {
			out[id] = &Unit{ID: id, Kind: UnitSimple, Measure: strings.TrimSpace(document.Text(m))}
			continue
		}

		divide := document.Child(el, document.NSXBRLI, "divide")
		num := document.Path(divide, document.NSXBRLI, "unitNumerator", "measure")
		den := document.Path(divide, document.NSXBRLI, "unitDenominator", "measure")
		if num == nil || den == nil {
			return nil, eris.Wrapf(ErrMalformedDocument, "xbrl: unit %q has no measure", id)
		}
		out[id] = &Unit{
			ID:          id,
			Kind:        UnitDivide,
			Numerator:   strings.TrimSpace(document.Text(num)),
			Denominator: strings.TrimSpace(document.Text(den)),
		}
	}
	return out, nil
}
