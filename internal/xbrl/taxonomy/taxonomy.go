// Package taxonomy loads XBRL taxonomy schemas into concept dictionaries
// and tracks the schemas they import.
package taxonomy

import (
	"fmt"
	"sync"

	"github.com/sells-group/xbrl-cli/internal/xbrl/uri"
)

// Concept is an element declared by a taxonomy schema.
type Concept struct {
	ID                string
	Name              string
	Namespace         string
	SchemaURL         string
	Type              string
	SubstitutionGroup string
	PeriodType        string
	Balance           string
	Abstract          bool
	Nillable          bool
}

func (c *Concept) String() string {
	return c.Name
}

// Taxonomy is one schema: its concepts keyed by ID, a name to ID index and
// the schemas it imports. Imports may be added after loading, while
// resolving namespaces the instance uses but the schema never imported.
type Taxonomy struct {
	Namespace string
	SchemaURL string
	Concepts  map[string]*Concept
	NameIDMap map[string]string

	mu       sync.RWMutex
	imports  []*Taxonomy
	comparer *uri.Comparer
}

// New creates an empty taxonomy. A nil comparer gives the taxonomy a
// private one.
func New(namespace, schemaURL string, comparer *uri.Comparer) *Taxonomy {
	if comparer == nil {
		comparer = uri.NewComparer(uri.DefaultCacheSize)
	}
	return &Taxonomy{
		Namespace: namespace,
		SchemaURL: schemaURL,
		Concepts:  make(map[string]*Concept),
		NameIDMap: make(map[string]string),
		comparer:  comparer,
	}
}

// AddConcept registers c under its ID, or its name when it has no ID.
func (t *Taxonomy) AddConcept(c *Concept) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addConcept(c)
}

func (t *Taxonomy) addConcept(c *Concept) {
	key := c.ID
	if key == "" {
		key = c.Name
	}
	t.Concepts[key] = c
	t.NameIDMap[c.Name] = key
}

// Concept looks up a concept by element name.
func (t *Taxonomy) Concept(name string) (*Concept, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.NameIDMap[name]
	if !ok {
		return nil, false
	}
	c, ok := t.Concepts[id]
	return c, ok
}

// AddImport registers child as imported by t.
func (t *Taxonomy) AddImport(child *Taxonomy) {
	if child == nil || child == t {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, imp := range t.imports {
		if imp == child {
			return
		}
	}
	t.imports = append(t.imports, child)
}

// Imports returns a snapshot of the directly imported taxonomies.
func (t *Taxonomy) Imports() []*Taxonomy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Taxonomy, len(t.imports))
	copy(out, t.imports)
	return out
}

// GetTaxonomy returns the taxonomy among t and everything it imports,
// transitively, whose namespace or schema URL matches u. Matching ignores
// the protocol and punctuation. Returns nil when nothing matches.
func (t *Taxonomy) GetTaxonomy(u string) *Taxonomy {
	if u == "" {
		return nil
	}
	return t.find(u, make(map[*Taxonomy]bool))
}

func (t *Taxonomy) find(u string, seen map[*Taxonomy]bool) *Taxonomy {
	if seen[t] {
		return nil
	}
	seen[t] = true

	if (t.Namespace != "" && t.comparer.Equal(t.Namespace, u)) ||
		(t.SchemaURL != "" && t.comparer.Equal(t.SchemaURL, u)) {
		return t
	}
	for _, imp := range t.Imports() {
		if found := imp.find(u, seen); found != nil {
			return found
		}
	}
	return nil
}

// merge copies the concepts and imports of an included schema into t.
func (t *Taxonomy) merge(inc *Taxonomy) {
	if inc == nil || inc == t {
		return
	}
	inc.mu.RLock()
	concepts := make([]*Concept, 0, len(inc.Concepts))
	for _, c := range inc.Concepts {
		concepts = append(concepts, c)
	}
	imports := append([]*Taxonomy(nil), inc.imports...)
	inc.mu.RUnlock()

	t.mu.Lock()
	for _, c := range concepts {
		t.addConcept(c)
	}
	t.mu.Unlock()
	for _, imp := range imports {
		t.AddImport(imp)
	}
}

func (t *Taxonomy) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return fmt.Sprintf("%s (%d concepts, %d imports)", t.Namespace, len(t.Concepts), len(t.imports))
}
