package hospitalisation

import (
	"testing"
	"time"

	"github.com/ngirwi/medrecord/internal/domain/surveillance"
)

func TestSummaryWorkbook(t *testing.T) {
	h := admission("2024-03-01T09:00:00Z", "2024-03-04T11:00:00Z")
	h.DoctorName = "Dr. Fall"
	h.DailyRate = dec("10000")
	h.ComfortFees = dec("2000")
	h.InsuranceCoveragePercent = dec("20")

	summary, err := ComputeSummary(h, surveillance.Totals{
		Medications: dec("5000"),
		Acts:        dec("3000"),
	}, time.UTC)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}

	f, err := SummaryWorkbook(h, summary)
	if err != nil {
		t.Fatalf("SummaryWorkbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(summarySheet, "B16")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "32000" {
		t.Errorf("total cell = %q, want %q", got, "32000")
	}
	doctor, err := f.GetCellValue(summarySheet, "B3")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if doctor != "Dr. Fall" {
		t.Errorf("doctor cell = %q, want %q", doctor, "Dr. Fall")
	}
}
