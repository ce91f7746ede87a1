package xbrl

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"

	"github.com/sells-group/xbrl-cli/internal/xbrl/document"
)

// skipXBRL reports whether a root child is instance plumbing rather than a fact.
func skipXBRL(el *etree.Element, ns string) bool {
	switch ns {
	case document.NSXBRLI:
		return el.Tag == "context" || el.Tag == "unit"
	case document.NSLink:
		switch el.Tag {
		case "schemaRef", "linkbaseRef", "roleRef", "arcroleRef", "footnoteLink":
			return true
		}
	}
	return false
}

// extractXBRL reads the facts of a plain XBRL instance: the root's direct
// children that carry a contextRef and a non-blank value.
func (r *resolver) extractXBRL(ctx context.Context, root *etree.Element, contexts map[string]*Context, units map[string]*Unit) ([]*Fact, error) {
	var facts []*Fact
	for _, el := range root.ChildElements() {
		ns := document.Namespace(el, r.nsMap)
		if skipXBRL(el, ns) {
			continue
		}
		ref, ok := document.Attr(el, "contextRef")
		if !ok {
			continue
		}
		text := strings.TrimSpace(el.Text())
		if text == "" {
			continue
		}

		concept, err := r.concept(ctx, ns, el.Tag)
		if err != nil {
			return nil, err
		}
		c, err := contextFor(contexts, ref)
		if err != nil {
			return nil, err
		}

		unitRef, numeric := document.Attr(el, "unitRef")
		if !numeric {
			facts = append(facts, &Fact{Kind: FactText, Concept: concept, Context: c, Text: text})
			continue
		}

		unit, err := unitFor(units, unitRef)
		if err != nil {
			return nil, err
		}
		raw, hasDecimals := document.Attr(el, "decimals")
		var decimals *int
		if hasDecimals {
			if decimals, err = parseDecimals(raw); err != nil {
				return nil, eris.Wrapf(err, "xbrl: fact %s", el.Tag)
			}
		}
		v, ok := parseNumber(text)
		if !ok {
			return nil, eris.Wrapf(ErrValue, "xbrl: fact %s: %q", el.Tag, text)
		}
		facts = append(facts, &Fact{
			Kind:     FactNumeric,
			Concept:  concept,
			Context:  c,
			Unit:     unit,
			Decimals: decimals,
			Value:    floatPtr(v),
		})
	}
	return facts, nil
}

func contextFor(contexts map[string]*Context, ref string) (*Context, error) {
	c, ok := contexts[strings.TrimSpace(ref)]
	if !ok {
		return nil, eris.Wrapf(ErrContextNotFound, "xbrl: context %q", ref)
	}
	return c, nil
}

func unitFor(units map[string]*Unit, ref string) (*Unit, error) {
	u, ok := units[strings.TrimSpace(ref)]
	if !ok {
		return nil, eris.Wrapf(ErrUnitNotFound, "xbrl: unit %q", ref)
	}
	return u, nil
}

// parseDecimals reads a decimals attribute. INF means exact and yields nil.
func parseDecimals(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "inf") {
		return nil, nil
	}
	d, err := strconv.Atoi(raw)
	if err != nil {
		return nil, eris.Wrapf(ErrParse, "decimals %q", raw)
	}
	return intPtr(d), nil
}

var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseNumber reads a finite decimal number. NaN, infinities and Go-only
// forms such as hex floats or digit underscores are refused.
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if !decimalNumber.MatchString(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
