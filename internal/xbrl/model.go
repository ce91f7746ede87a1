// Package xbrl parses XBRL instance documents and inline XBRL filings into
// facts, contexts and units resolved against the filing's taxonomy.
package xbrl

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/xbrl-cli/internal/xbrl/taxonomy"
)

// DateLayout is the layout of XBRL period dates.
const DateLayout = "2006-01-02"

// PeriodKind distinguishes the three XBRL period shapes.
type PeriodKind int

// Period kinds.
const (
	PeriodInstant PeriodKind = iota + 1
	PeriodDuration
	PeriodForever
)

func (k PeriodKind) String() string {
	switch k {
	case PeriodInstant:
		return "instant"
	case PeriodDuration:
		return "duration"
	case PeriodForever:
		return "forever"
	}
	return "unknown"
}

// Period is the time a context refers to. Instant is set for instant
// periods, Start and End for durations; forever periods carry no dates.
type Period struct {
	Kind    PeriodKind
	Instant time.Time
	Start   time.Time
	End     time.Time
}

func (p Period) String() string {
	switch p.Kind {
	case PeriodInstant:
		return p.Instant.Format(DateLayout)
	case PeriodDuration:
		return p.Start.Format(DateLayout) + "/" + p.End.Format(DateLayout)
	case PeriodForever:
		return "forever"
	}
	return ""
}

// ExplicitMember is one dimension/member pair of a context segment.
type ExplicitMember struct {
	Dimension *taxonomy.Concept
	Member    *taxonomy.Concept
}

func (m ExplicitMember) String() string {
	return m.Dimension.Name + " " + m.Member.Name
}

// Context identifies the entity and period a fact reports on, narrowed by
// explicit dimension members.
type Context struct {
	ID       string
	Entity   string
	Period   Period
	Segments []ExplicitMember
}

func (c *Context) String() string {
	return c.Period.String()
}

// UnitKind distinguishes simple and ratio units.
type UnitKind int

// Unit kinds.
const (
	UnitSimple UnitKind = iota + 1
	UnitDivide
)

// Unit is the measure of a numeric fact: a single measure such as
// iso4217:USD, or a ratio such as iso4217:USD/xbrli:shares.
type Unit struct {
	ID          string
	Kind        UnitKind
	Measure     string
	Numerator   string
	Denominator string
}

func (u *Unit) String() string {
	switch u.Kind {
	case UnitSimple:
		return u.Measure
	case UnitDivide:
		return u.Numerator + "/" + u.Denominator
	}
	return u.ID
}

// Footnote is text attached to a fact.
type Footnote struct {
	Content string
	Lang    string
}

// FactKind distinguishes numeric and text facts.
type FactKind int

// Fact kinds.
const (
	FactNumeric FactKind = iota + 1
	FactText
)

// Fact is a reported value. Numeric facts carry Unit, Decimals and Value;
// text facts carry Text. A nil Decimals means the value is exact; a nil
// Value marks an inline XBRL fact reported as nil.
type Fact struct {
	Kind     FactKind
	Concept  *taxonomy.Concept
	Context  *Context
	Footnote *Footnote

	Unit     *Unit
	Decimals *int
	Value    *float64

	Text string
}

// IsNumeric reports whether f is a numeric fact.
func (f *Fact) IsNumeric() bool {
	return f.Kind == FactNumeric
}

// ValueString renders the fact value: the number for numeric facts
// (empty for nil values) or the text.
func (f *Fact) ValueString() string {
	switch f.Kind {
	case FactNumeric:
		if f.Value == nil {
			return ""
		}
		return strconv.FormatFloat(*f.Value, 'f', -1, 64)
	case FactText:
		return f.Text
	}
	return ""
}

func (f *Fact) String() string {
	return fmt.Sprintf("%s: %s", f.Concept.Name, f.ValueString())
}

// Instance is a parsed filing. It is not modified after parsing.
type Instance struct {
	URL      string
	Taxonomy *taxonomy.Taxonomy
	Facts    []*Fact
	Contexts map[string]*Context
	Units    map[string]*Unit
}

// FactsByConcept returns the facts reporting the concept with the given
// element name, in extraction order.
func (i *Instance) FactsByConcept(name string) []*Fact {
	var out []*Fact
	for _, f := range i.Facts {
		if f.Concept != nil && f.Concept.Name == name {
			out = append(out, f)
		}
	}
	return out
}

func (i *Instance) String() string {
	name := i.URL
	if strings.Contains(name, "/") {
		name = path.Base(name)
	}
	return fmt.Sprintf("%s with %d facts", name, len(i.Facts))
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
