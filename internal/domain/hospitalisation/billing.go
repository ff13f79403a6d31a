package hospitalisation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/domain/surveillance"
)

// BillingSummary is the computed breakdown for an admission: per-diem
// charges, fixed fees, line-item totals and the insurance-adjusted total.
type BillingSummary struct {
	Days                     int             `json:"days"`
	PerDiemTotal             decimal.Decimal `json:"per_diem_total"`
	ComfortFees              decimal.Decimal `json:"comfort_fees"`
	FeeOverrun               decimal.Decimal `json:"fee_overrun"`
	MedicationsTotal         decimal.Decimal `json:"medications_total"`
	ActsTotal                decimal.Decimal `json:"acts_total"`
	MiniConsultationsTotal   decimal.Decimal `json:"mini_consultations_total"`
	Subtotal                 decimal.Decimal `json:"subtotal"`
	InsuranceCoveragePercent decimal.Decimal `json:"insurance_coverage_percent"`
	TotalAmount              decimal.Decimal `json:"total_amount"`
}

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// ComputeSummary derives the billing summary for an admission from its
// stored fields and the aggregated line items of its surveillance sheets.
// It is pure: the same inputs always produce the same summary, and nothing
// is persisted. An admission without a release date has no defined duration
// and is rejected.
//
// Duration counts civil calendar days in loc, not elapsed hours: a stay
// crossing midnight spans two civil dates even if it lasts twenty minutes.
// The minimum billed duration is one day. The final total is rounded to
// whole currency units.
func ComputeSummary(h *Hospitalisation, totals surveillance.Totals, loc *time.Location) (*BillingSummary, error) {
	if h.ReleaseDate == nil {
		return nil, apperr.InvalidStatef("admission %s has no release date, billing duration is undefined", h.ID)
	}
	if loc == nil {
		loc = time.UTC
	}

	days := civilDays(h.EntryDate, *h.ReleaseDate, loc)
	if days < 1 {
		days = 1
	}

	perDiem := h.DailyRate.Mul(decimal.NewFromInt(int64(days))).Round(2)
	subtotal := perDiem.
		Add(h.ComfortFees).
		Add(h.FeeOverrun).
		Add(totals.Medications).
		Add(totals.Acts).
		Add(totals.MiniConsultations).
		Round(2)

	coverage := h.InsuranceCoveragePercent.DivRound(hundred, 6)
	total := subtotal.Mul(one.Sub(coverage)).Round(0)

	return &BillingSummary{
		Days:                     days,
		PerDiemTotal:             perDiem,
		ComfortFees:              h.ComfortFees,
		FeeOverrun:               h.FeeOverrun,
		MedicationsTotal:         totals.Medications,
		ActsTotal:                totals.Acts,
		MiniConsultationsTotal:   totals.MiniConsultations,
		Subtotal:                 subtotal,
		InsuranceCoveragePercent: h.InsuranceCoveragePercent,
		TotalAmount:              total,
	}, nil
}

// civilDays returns the calendar-date delta between entry and release as
// observed in loc. Same civil date yields 0.
func civilDays(entry, release time.Time, loc *time.Location) int {
	e := entry.In(loc)
	r := release.In(loc)
	eMidnight := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	rMidnight := time.Date(r.Year(), r.Month(), r.Day(), 0, 0, 0, 0, time.UTC)
	return int(rMidnight.Sub(eMidnight).Hours() / 24)
}
