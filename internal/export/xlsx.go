package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/xbrl-cli/internal/xbrl"
)

// Sheet names of the XLSX workbook.
const (
	SheetFacts    = "facts"
	SheetContexts = "contexts"
	SheetUnits    = "units"
)

// XLSX writes inst to a workbook at path with one sheet each for facts,
// contexts and units. Numeric values are stored as numbers.
func XLSX(path string, inst *xbrl.Instance) error {
	doc := NewDocument(inst)
	f := xlsx.NewFile()

	facts, err := addSheet(f, SheetFacts, "concept", "namespace", "kind", "context", "entity", "period", "dimensions", "unit", "decimals", "value")
	if err != nil {
		return err
	}
	for _, r := range doc.Facts {
		row := facts.AddRow()
		for _, s := range []string{r.Concept, r.Namespace, r.Kind, r.Context, r.Entity, r.Period, strings.Join(r.Dimensions, ";"), r.Unit} {
			row.AddCell().SetString(s)
		}
		dec := row.AddCell()
		if r.Kind == "numeric" {
			if r.Decimals == nil {
				dec.SetString("INF")
			} else {
				dec.SetInt(*r.Decimals)
			}
		}
		val := row.AddCell()
		switch {
		case r.Value != nil:
			val.SetFloat(*r.Value)
		case r.Kind == "text":
			val.SetString(r.Text)
		}
	}

	contexts, err := addSheet(f, SheetContexts, "id", "entity", "period_type", "period", "dimensions")
	if err != nil {
		return err
	}
	for _, c := range doc.Contexts {
		row := contexts.AddRow()
		for _, s := range []string{c.ID, c.Entity, c.PeriodType, c.Period, strings.Join(c.Dimensions, ";")} {
			row.AddCell().SetString(s)
		}
	}

	units, err := addSheet(f, SheetUnits, "id", "measure")
	if err != nil {
		return err
	}
	for _, u := range doc.Units {
		row := units.AddRow()
		row.AddCell().SetString(u.ID)
		row.AddCell().SetString(u.Measure)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addSheet(f *xlsx.File, name string, header ...string) (*xlsx.Sheet, error) {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "export: add sheet %s", name)
	}
	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
	return sheet, nil
}
