// Package document loads XBRL instance, schema and inline XBRL files into an
// element tree plus the namespace prefix map declared by the document.
package document

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
)

// Well-known namespaces.
const (
	NSXBRLI   = "http://www.xbrl.org/2003/instance"
	NSLink    = "http://www.xbrl.org/2003/linkbase"
	NSXLink   = "http://www.w3.org/1999/xlink"
	NSXSD     = "http://www.w3.org/2001/XMLSchema"
	NSXSI     = "http://www.w3.org/2001/XMLSchema-instance"
	NSXBRLDI  = "http://xbrl.org/2006/xbrldi"
	NSXBRLDT  = "http://xbrl.org/2005/xbrldt"
	NSInline  = "http://www.xbrl.org/2013/inlineXBRL"
	NSInline0 = "http://www.xbrl.org/2008/inlineXBRL"
)

// Document is a parsed file.
type Document struct {
	Path string
	// HTML is true when the file was not well-formed XML and went through
	// the lenient HTML parser.
	HTML  bool
	Root  *etree.Element
	NSMap map[string]string
}

// IsHTMLPath reports whether path names an HTML file by extension.
func IsHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".htm", ".html":
		return true
	}
	return false
}

// Parse reads the file at path. HTML files (by extension) are read as XHTML
// first and fall back to the HTML5 parser when they are not well-formed.
func Parse(path string) (*Document, error) {
	return ParseAs(path, IsHTMLPath(path))
}

// ParseAs reads the file at path, allowing the HTML fallback when isHTML
// is set regardless of the extension.
func ParseAs(path string, isHTML bool) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "document: read %s", path)
	}
	doc, err := ParseBytes(data, isHTML)
	if err != nil {
		return nil, eris.Wrapf(err, "document: parse %s", path)
	}
	doc.Path = path
	return doc, nil
}

// ParseBytes parses data as XML, or as (X)HTML when isHTML is set.
func ParseBytes(data []byte, isHTML bool) (*Document, error) {
	root, err := readXML(data, isHTML)
	if err == nil {
		return &Document{Root: root, NSMap: LocalNamespaces(root)}, nil
	}
	if !isHTML {
		return nil, err
	}

	zap.L().Debug("document: not well-formed xhtml, using html parser", zap.Error(err))
	root, err = readHTML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Document{HTML: true, Root: root, NSMap: DeclaredNamespaces(root)}, nil
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "document: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}

func readXML(data []byte, isHTML bool) (*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if isHTML {
		doc.ReadSettings.Entity = xml.HTMLEntity
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, eris.Wrap(err, "document: read xml")
	}
	root := doc.Root()
	if root == nil {
		return nil, eris.New("document: no root element")
	}
	return root, nil
}

func readHTML(r io.Reader) (*etree.Element, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "document: read html")
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return fromHTML(c), nil
		}
	}
	return nil, eris.New("document: no root element")
}

// fromHTML copies an HTML node tree into etree elements. The HTML parser
// lower-cases names, so the camel case of the XBRL vocabulary is restored.
func fromHTML(n *html.Node) *etree.Element {
	el := etree.NewElement(canonical(n.Data))
	for _, a := range n.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + key
		}
		el.CreateAttr(canonical(key), a.Val)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			el.AddChild(fromHTML(c))
		case html.TextNode:
			el.CreateText(c.Data)
		}
	}
	return el
}

var camelCase = map[string]string{}

func init() {
	for _, name := range []string{
		"nonFraction", "nonNumeric", "schemaRef", "startDate", "endDate",
		"explicitMember", "typedMember", "unitNumerator", "unitDenominator",
		"contextRef", "unitRef", "footnoteLink", "roleRef", "arcroleRef",
		"linkbaseRef", "continuedAt", "excludedContents",
	} {
		camelCase[strings.ToLower(name)] = name
	}
}

func canonical(name string) string {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		local, prefix = prefix, ""
	}
	if c, found := camelCase[local]; found {
		local = c
	}
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
