package xbrl

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/xbrl-cli/internal/xbrl/document"
	"github.com/sells-group/xbrl-cli/internal/xbrl/transform"
)

// extractIXBRL reads the facts of an inline XBRL document. Every
// ix:nonFraction is extracted before any ix:nonNumeric, each group in
// document order.
func (r *resolver) extractIXBRL(ctx context.Context, root *etree.Element, contexts map[string]*Context, units map[string]*Unit) ([]*Fact, error) {
	numeric := document.FindAll(root, func(e *etree.Element) bool { return document.IsInline(e, "nonFraction") })
	text := document.FindAll(root, func(e *etree.Element) bool { return document.IsInline(e, "nonNumeric") })

	facts := make([]*Fact, 0, len(numeric)+len(text))
	for _, el := range numeric {
		f, err := r.nonFraction(ctx, el, contexts, units)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	for _, el := range text {
		f, err := r.nonNumeric(ctx, el, contexts)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, nil
}

// inlineHead resolves the concept and context shared by both fact kinds.
func (r *resolver) inlineHead(ctx context.Context, el *etree.Element, contexts map[string]*Context) (*Fact, string, error) {
	document.MergeNamespaces(r.nsMap, el)

	name, ok := document.Attr(el, "name")
	if !ok {
		return nil, "", eris.Wrapf(ErrMalformedDocument, "xbrl: ix:%s without name", el.Tag)
	}
	concept, err := r.conceptQName(ctx, name)
	if err != nil {
		return nil, "", err
	}
	ref, ok := document.Attr(el, "contextRef")
	if !ok {
		return nil, "", eris.Wrapf(ErrMalformedDocument, "xbrl: fact %s without contextRef", name)
	}
	c, err := contextFor(contexts, ref)
	if err != nil {
		return nil, "", err
	}
	return &Fact{Concept: concept, Context: c}, name, nil
}

func (r *resolver) nonFraction(ctx context.Context, el *etree.Element, contexts map[string]*Context, units map[string]*Unit) (*Fact, error) {
	f, name, err := r.inlineHead(ctx, el, contexts)
	if err != nil {
		return nil, err
	}
	f.Kind = FactNumeric

	unitRef, _ := document.Attr(el, "unitRef")
	if f.Unit, err = unitFor(units, unitRef); err != nil {
		return nil, err
	}

	decimals := "0"
	if raw, ok := document.Attr(el, "decimals"); ok {
		decimals = raw
	}
	if f.Decimals, err = parseDecimals(decimals); err != nil {
		return nil, eris.Wrapf(err, "xbrl: fact %s", name)
	}

	if isNil(el, r.nsMap) {
		return f, nil
	}

	value, err := r.display(el, name)
	if err != nil {
		return nil, err
	}
	v, ok := parseNumber(value)
	if !ok {
		return nil, eris.Wrapf(ErrValue, "xbrl: fact %s: %q", name, value)
	}

	scale := 0
	if raw, ok := document.Attr(el, "scale"); ok {
		if scale, err = strconv.Atoi(strings.TrimSpace(raw)); err != nil {
			return nil, eris.Wrapf(ErrParse, "xbrl: fact %s: scale %q", name, raw)
		}
	}
	sign, _ := document.Attr(el, "sign")

	v = transform.Scale(v, scale, sign)
	if math.IsInf(v, 0) {
		return nil, eris.Wrapf(ErrValue, "xbrl: fact %s: %q scaled by %d", name, value, scale)
	}
	f.Value = floatPtr(v)
	return f, nil
}

func (r *resolver) nonNumeric(ctx context.Context, el *etree.Element, contexts map[string]*Context) (*Fact, error) {
	f, name, err := r.inlineHead(ctx, el, contexts)
	if err != nil {
		return nil, err
	}
	f.Kind = FactText
	if f.Text, err = r.display(el, name); err != nil {
		return nil, err
	}
	return f, nil
}

// display returns the text content of an inline fact, normalized by its
// format attribute when present.
func (r *resolver) display(el *etree.Element, name string) (string, error) {
	value := document.Text(el)
	format, ok := document.Attr(el, "format")
	if !ok || strings.TrimSpace(format) == "" {
		return value, nil
	}
	format = strings.TrimSpace(format)

	out, applied, err := transform.Apply(value, format, r.nsMap)
	if err != nil {
		return "", eris.Wrapf(err, "xbrl: fact %s: format %s", name, format)
	}
	if !applied {
		r.log.Debug("xbrl: transform not supported, keeping value",
			zap.String("fact", name),
			zap.String("format", format),
		)
	}
	return out, nil
}

func isNil(el *etree.Element, nsMap map[string]string) bool {
	v, ok := document.AttrNS(el, document.NSXSI, "nil", nsMap)
	return ok && strings.TrimSpace(v) == "true"
}
