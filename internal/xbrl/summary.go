package xbrl

// TargetConcepts lists the US-GAAP and DEI concepts reported by the
// summary view.
var TargetConcepts = []string{
	"EntityRegistrantName",
	"EntityCommonStockSharesOutstanding",
	"Assets",
	"Liabilities",
	"StockholdersEquity",
	"Revenues",
	"RevenueFromContractWithCustomerExcludingAssessedTax",
	"NetIncomeLoss",
	"OperatingIncomeLoss",
	"EarningsPerShareBasic",
	"EarningsPerShareDiluted",
	"CommonStockSharesOutstanding",
	"CashAndCashEquivalentsAtCarryingValue",
	"LongTermDebt",
	"InvestmentIncomeNet",
	"InterestExpense",
	"NetCashProvidedByUsedInOperatingActivities",
	"PaymentsToAcquirePropertyPlantAndEquipment",
}

// SummaryRow is one reported value of a target concept.
type SummaryRow struct {
	Concept string
	Period  string
	Unit    string
	Value   string
}

// Summarize returns the non-dimensional facts reporting one of targets,
// grouped by target in the order given and by extraction order within a
// target.
func Summarize(inst *Instance, targets []string) []SummaryRow {
	if inst == nil || len(inst.Facts) == 0 {
		return nil
	}

	var rows []SummaryRow
	for _, name := range targets {
		for _, f := range inst.FactsByConcept(name) {
			if f.Context == nil || len(f.Context.Segments) > 0 {
				continue
			}
			row := SummaryRow{
				Concept: name,
				Period:  f.Context.Period.String(),
				Value:   f.ValueString(),
			}
			if f.Unit != nil {
				row.Unit = f.Unit.String()
			}
			rows = append(rows, row)
		}
	}
	return rows
}
