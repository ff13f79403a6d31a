package hospitalisation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/domain/surveillance"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strptr(s string) *string { return &s }

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func admission(entry, release string) *Hospitalisation {
	h := &Hospitalisation{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		EntryDate: ts(entry),
	}
	if release != "" {
		r := ts(release)
		h.ReleaseDate = &r
	}
	return h
}

func TestComputeSummary_NoReleaseDate(t *testing.T) {
	h := admission("2024-01-01T08:00:00Z", "")
	_, err := ComputeSummary(h, surveillance.Totals{}, time.UTC)
	if !apperr.IsInvalidState(err) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestComputeSummary_SameCivilDay(t *testing.T) {
	h := admission("2024-01-01T08:00:00Z", "2024-01-01T19:30:00Z")
	h.DailyRate = dec("10000")

	summary, err := ComputeSummary(h, surveillance.Totals{}, time.UTC)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if summary.Days != 1 {
		t.Errorf("days = %d, want 1", summary.Days)
	}
	if !summary.PerDiemTotal.Equal(dec("10000.00")) {
		t.Errorf("per diem = %s, want 10000.00", summary.PerDiemTotal)
	}
}

// A twenty-minute stay crossing midnight spans two civil dates: the delta is
// one calendar day and one day is billed.
func TestComputeSummary_MidnightCrossing(t *testing.T) {
	h := admission("2024-01-01T23:50:00Z", "2024-01-02T00:10:00Z")
	h.DailyRate = dec("10000")

	summary, err := ComputeSummary(h, surveillance.Totals{}, time.UTC)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if summary.Days != 1 {
		t.Errorf("days = %d, want 1", summary.Days)
	}
	if !summary.TotalAmount.Equal(dec("10000")) {
		t.Errorf("total = %s, want 10000", summary.TotalAmount)
	}
}

// The civil calendar, not UTC, decides the date boundary: 23:30Z on Jan 1 is
// already Jan 2 in a UTC+1 zone.
func TestComputeSummary_LocalCalendarBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	h := admission("2024-01-01T12:00:00Z", "2024-01-01T23:30:00Z")
	h.DailyRate = dec("10000")

	summary, err := ComputeSummary(h, surveillance.Totals{}, loc)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if summary.Days != 1 {
		t.Errorf("days = %d, want 1", summary.Days)
	}

	utcSummary, err := ComputeSummary(h, surveillance.Totals{}, time.UTC)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if utcSummary.Days != 1 {
		t.Errorf("utc days = %d, want 1", utcSummary.Days)
	}
}

func TestComputeSummary_FullBreakdown(t *testing.T) {
	h := admission("2024-03-01T09:00:00Z", "2024-03-04T11:00:00Z")
	h.DailyRate = dec("10000")
	h.ComfortFees = dec("2000")
	h.InsuranceCoveragePercent = dec("20")

	totals := surveillance.Totals{
		Medications: dec("5000"),
		Acts:        dec("3000"),
	}

	summary, err := ComputeSummary(h, totals, time.UTC)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if summary.Days != 3 {
		t.Errorf("days = %d, want 3", summary.Days)
	}
	if !summary.PerDiemTotal.Equal(dec("30000.00")) {
		t.Errorf("per diem = %s, want 30000.00", summary.PerDiemTotal)
	}
	if !summary.Subtotal.Equal(dec("40000.00")) {
		t.Errorf("subtotal = %s, want 40000.00", summary.Subtotal)
	}
	if !summary.TotalAmount.Equal(dec("32000")) {
		t.Errorf("total = %s, want 32000", summary.TotalAmount)
	}
}

func TestComputeSummary_CoverageRounding(t *testing.T) {
	h := admission("2024-01-01T08:00:00Z", "2024-01-01T18:00:00Z")
	h.DailyRate = dec("10000")
	h.InsuranceCoveragePercent = dec("33.333")

	summary, err := ComputeSummary(h, surveillance.Totals{}, time.UTC)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	// 10000 x (1 - 0.33333) = 6666.7, rounded to whole units half up
	if !summary.TotalAmount.Equal(dec("6667")) {
		t.Errorf("total = %s, want 6667", summary.TotalAmount)
	}
}

func TestComputeSummary_FullCoverage(t *testing.T) {
	h := admission("2024-01-01T08:00:00Z", "2024-01-02T18:00:00Z")
	h.DailyRate = dec("15000")
	h.InsuranceCoveragePercent = dec("100")

	summary, err := ComputeSummary(h, surveillance.Totals{}, time.UTC)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if !summary.TotalAmount.IsZero() {
		t.Errorf("total = %s, want 0", summary.TotalAmount)
	}
}

func TestComputeSummary_Deterministic(t *testing.T) {
	build := func() (*Hospitalisation, surveillance.Totals) {
		h := admission("2024-05-10T07:00:00Z", "2024-05-13T16:00:00Z")
		h.DailyRate = dec("12500.50")
		h.ComfortFees = dec("1750.25")
		h.FeeOverrun = dec("300")
		h.InsuranceCoveragePercent = dec("45.5")
		return h, surveillance.Totals{
			Medications:       dec("8123.45"),
			Acts:              dec("2400"),
			MiniConsultations: dec("5000"),
		}
	}

	h1, t1 := build()
	h2, t2 := build()
	s1, err := ComputeSummary(h1, t1, time.UTC)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	s2, err := ComputeSummary(h2, t2, time.UTC)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}
	if !s1.TotalAmount.Equal(s2.TotalAmount) || s1.Days != s2.Days || !s1.Subtotal.Equal(s2.Subtotal) {
		t.Errorf("summaries differ: %+v vs %+v", s1, s2)
	}
}
