// Package export renders parsed instances as JSON, YAML, XLSX or a text table.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/xbrl-cli/internal/xbrl"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatXLSX  = "xlsx"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatTable, FormatJSON, FormatYAML, FormatXLSX:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", eris.Errorf("export: unknown format %q (want table, json, yaml or xlsx)", s)
}

// Record is one fact flattened for output.
type Record struct {
	Concept    string   `json:"concept" yaml:"concept"`
	Namespace  string   `json:"namespace" yaml:"namespace"`
	Kind       string   `json:"kind" yaml:"kind"`
	Context    string   `json:"context" yaml:"context"`
	Entity     string   `json:"entity" yaml:"entity"`
	Period     string   `json:"period" yaml:"period"`
	Dimensions []string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Unit       string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Decimals   *int     `json:"decimals,omitempty" yaml:"decimals,omitempty"`
	Value      *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`
}

// ContextRecord is one context flattened for output.
type ContextRecord struct {
	ID         string   `json:"id" yaml:"id"`
	Entity     string   `json:"entity" yaml:"entity"`
	PeriodType string   `json:"period_type" yaml:"period_type"`
	Period     string   `json:"period" yaml:"period"`
	Dimensions []string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// UnitRecord is one unit flattened for output.
type UnitRecord struct {
	ID      string `json:"id" yaml:"id"`
	Measure string `json:"measure" yaml:"measure"`
}

// Document is the serialized form of an instance.
type Document struct {
	URL      string          `json:"url" yaml:"url"`
	Taxonomy string          `json:"taxonomy" yaml:"taxonomy"`
	Facts    []Record        `json:"facts" yaml:"facts"`
	Contexts []ContextRecord `json:"contexts" yaml:"contexts"`
	Units    []UnitRecord    `json:"units" yaml:"units"`
}

func dimensions(c *xbrl.Context) []string {
	if c == nil || len(c.Segments) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Segments))
	for _, m := range c.Segments {
		out = append(out, m.Dimension.Name+"="+m.Member.Name)
	}
	return out
}

func kind(f *xbrl.Fact) string {
	switch f.Kind {
	case xbrl.FactNumeric:
		return "numeric"
	case xbrl.FactText:
		return "text"
	}
	return "unknown"
}

// NewRecord flattens a fact.
func NewRecord(f *xbrl.Fact) Record {
	r := Record{Kind: kind(f)}
	if f.Concept != nil {
		r.Concept = f.Concept.Name
		r.Namespace = f.Concept.Namespace
	}
	if f.Context != nil {
		r.Context = f.Context.ID
		r.Entity = f.Context.Entity
		r.Period = f.Context.Period.String()
		r.Dimensions = dimensions(f.Context)
	}
	switch f.Kind {
	case xbrl.FactNumeric:
		if f.Unit != nil {
			r.Unit = f.Unit.String()
		}
		r.Decimals = f.Decimals
		r.Value = f.Value
	case xbrl.FactText:
		r.Text = f.Text
	}
	return r
}

// Records flattens every fact of inst in extraction order.
func Records(inst *xbrl.Instance) []Record {
	out := make([]Record, 0, len(inst.Facts))
	for _, f := range inst.Facts {
		out = append(out, NewRecord(f))
	}
	return out
}

// NewDocument builds the serialized form of inst. Contexts and units are
// ordered by ID.
func NewDocument(inst *xbrl.Instance) Document {
	doc := Document{URL: inst.URL, Facts: Records(inst)}
	if inst.Taxonomy != nil {
		doc.Taxonomy = inst.Taxonomy.Namespace
	}

	ids := make([]string, 0, len(inst.Contexts))
	for id := range inst.Contexts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := inst.Contexts[id]
		doc.Contexts = append(doc.Contexts, ContextRecord{
			ID:         c.ID,
			Entity:     c.Entity,
			PeriodType: c.Period.Kind.String(),
			Period:     c.Period.String(),
			Dimensions: dimensions(c),
		})
	}

	ids = ids[:0]
	for id := range inst.Units {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		doc.Units = append(doc.Units, UnitRecord{ID: id, Measure: inst.Units[id].String()})
	}
	return doc
}

// Write renders inst to w in a text format. XLSX output needs a file; use XLSX.
func Write(w io.Writer, format string, inst *xbrl.Instance) error {
	switch format {
	case FormatJSON:
		return JSON(w, inst)
	case FormatYAML:
		return YAML(w, inst)
	case FormatTable:
		return Table(w, inst)
	case FormatXLSX:
		return eris.New("export: xlsx output needs a file path")
	}
	return eris.Errorf("export: unknown format %q", format)
}

// JSON writes inst as indented JSON.
func JSON(w io.Writer, inst *xbrl.Instance) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(inst)); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}

// YAML writes inst as YAML.
func YAML(w io.Writer, inst *xbrl.Instance) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(inst)); err != nil {
		return eris.Wrap(err, "export: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "export: flush yaml")
	}
	return nil
}

const maxCell = 60

// cell collapses whitespace and shortens long text for table output.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxCell {
		return string(r[:maxCell-3]) + "..."
	}
	return s
}

func decimals(d *int) string {
	if d == nil {
		return "INF"
	}
	return fmt.Sprint(*d)
}

// Table writes one line per fact.
func Table(w io.Writer, inst *xbrl.Instance) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "%s\n", inst)
	_, _ = fmt.Fprintln(tw, "CONCEPT\tPERIOD\tDIMENSIONS\tUNIT\tDECIMALS\tVALUE")
	_, _ = fmt.Fprintln(tw, "-------\t------\t----------\t----\t--------\t-----")

	for _, r := range Records(inst) {
		dec, value := "", cell(r.Text)
		if r.Kind == "numeric" {
			dec = decimals(r.Decimals)
			value = "nil"
			if r.Value != nil {
				value = strconv.FormatFloat(*r.Value, 'f', -1, 64)
			}
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Concept, r.Period, strings.Join(r.Dimensions, ","), r.Unit, dec, value)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "export: write table")
	}
	return nil
}

// SummaryTable writes summary rows.
func SummaryTable(w io.Writer, rows []xbrl.SummaryRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CONCEPT\tPERIOD\tUNIT\tVALUE")
	_, _ = fmt.Fprintln(tw, "-------\t------\t----\t-----")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Concept, r.Period, r.Unit, cell(r.Value))
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "export: write summary")
	}
	return nil
}
