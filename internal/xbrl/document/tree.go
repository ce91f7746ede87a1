package document

import (
	"strings"

	"github.com/beevik/etree"
)

// Namespace returns the namespace URI of el, resolving its prefix through
// the in-scope declarations and then nsMap.
func Namespace(el *etree.Element, nsMap map[string]string) string {
	if uri := el.NamespaceURI(); uri != "" {
		return uri
	}
	return nsMap[el.Space]
}

// Is reports whether el is the element {ns}local.
func Is(el *etree.Element, ns, local string) bool {
	return el.Tag == local && Namespace(el, nil) == ns
}

// IsInline reports whether el is the inline XBRL element ix:local, for
// either inline XBRL version.
func IsInline(el *etree.Element, local string) bool {
	if el.Tag != local {
		return false
	}
	ns := Namespace(el, nil)
	return ns == NSInline || ns == NSInline0 || (ns == "" && el.Space == "ix")
}

// FindAll returns every descendant of el accepted by match, in document order.
func FindAll(el *etree.Element, match func(*etree.Element) bool) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			if match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(el)
	return out
}

// Find returns the first descendant of el accepted by match.
func Find(el *etree.Element, match func(*etree.Element) bool) *etree.Element {
	for _, c := range el.ChildElements() {
		if match(c) {
			return c
		}
		if found := Find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// Children returns the direct children of el named {ns}local.
func Children(el *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if Is(c, ns, local) {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first direct child of el named {ns}local, or nil.
func Child(el *etree.Element, ns, local string) *etree.Element {
	for _, c := range el.ChildElements() {
		if Is(c, ns, local) {
			return c
		}
	}
	return nil
}

// Path follows a chain of {ns}local children, returning nil when a step is missing.
func Path(el *etree.Element, ns string, locals ...string) *etree.Element {
	for _, local := range locals {
		if el == nil {
			return nil
		}
		el = Child(el, ns, local)
	}
	return el
}

// Attr returns the value of the unprefixed attribute local. Names are
// compared case-insensitively because HTML parsers fold them.
func Attr(el *etree.Element, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Space == "" && strings.EqualFold(a.Key, local) {
			return a.Value, true
		}
	}
	return "", false
}

// AttrNS returns the value of the attribute {ns}local.
func AttrNS(el *etree.Element, ns, local string, nsMap map[string]string) (string, bool) {
	for _, a := range el.Attr {
		if a.Space == "" || a.Space == "xmlns" || !strings.EqualFold(a.Key, local) {
			continue
		}
		uri := a.NamespaceURI()
		if uri == "" {
			uri = nsMap[a.Space]
		}
		if uri == ns {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns all character data inside el in document order.
func Text(el *etree.Element) string {
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return b.String()
}

// DeclaredNamespaces collects every xmlns:prefix declaration in the tree
// under el. The first declaration of a prefix wins.
func DeclaredNamespaces(el *etree.Element) map[string]string {
	out := make(map[string]string)
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		addDeclarations(out, e)
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(el)
	return out
}

// LocalNamespaces returns the declarations in scope at el: its own and its
// ancestors', the nearest declaration winning. The default namespace is
// stored under the empty prefix.
func LocalNamespaces(el *etree.Element) map[string]string {
	out := make(map[string]string)
	for e := el; e != nil; e = e.Parent() {
		addDeclarations(out, e)
	}
	return out
}

// MergeNamespaces adds the declarations in scope at el to nsMap for
// prefixes nsMap does not know yet.
func MergeNamespaces(nsMap map[string]string, el *etree.Element) {
	for prefix, uri := range LocalNamespaces(el) {
		if _, ok := nsMap[prefix]; !ok {
			nsMap[prefix] = uri
		}
	}
}

func addDeclarations(dst map[string]string, e *etree.Element) {
	for _, a := range e.Attr {
		var prefix string
		switch {
		case a.Space == "xmlns":
			prefix = a.Key
		case a.Space == "" && a.Key == "xmlns":
			prefix = ""
		default:
			continue
		}
		if _, ok := dst[prefix]; !ok {
			dst[prefix] = a.Value
		}
	}
}

// SplitQName splits "prefix:local". A name without prefix returns an empty prefix.
func SplitQName(qname string) (prefix, local string) {
	qname = strings.TrimSpace(qname)
	if p, l, ok := strings.Cut(qname, ":"); ok {
		return p, l
	}
	return "", qname
}
