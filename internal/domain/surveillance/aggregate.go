package surveillance

import "github.com/shopspring/decimal"

// Totals is the billing contribution of a set of surveillance sheets.
type Totals struct {
	Medications       decimal.Decimal `json:"medications_total"`
	Acts              decimal.Decimal `json:"acts_total"`
	MiniConsultations decimal.Decimal `json:"mini_consultations_total"`
}

// Aggregate sums the line items of the given sheets. Medication and act
// entries contribute their pre-computed totals; mini consultations are flat
// fees. Each of the three sums is rounded to 2 decimal places, half up.
// Empty or absent collections contribute zero. Read-only.
func Aggregate(sheets []*Sheet) Totals {
	meds := decimal.Zero
	acts := decimal.Zero
	minis := decimal.Zero

	for _, sheet := range sheets {
		if sheet == nil {
			continue
		}
		for _, m := range sheet.Medications {
			meds = meds.Add(m.Total)
		}
		for _, a := range sheet.Acts {
			acts = acts.Add(a.Total)
		}
		for _, mc := range sheet.MiniConsultations {
			minis = minis.Add(mc.Price)
		}
	}

	return Totals{
		Medications:       meds.Round(2),
		Acts:              acts.Round(2),
		MiniConsultations: minis.Round(2),
	}
}

// Sum returns the combined line-item contribution.
func (t Totals) Sum() decimal.Decimal {
	return t.Medications.Add(t.Acts).Add(t.MiniConsultations)
}
