package hospitalisation

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Billing Summary"

// SummaryWorkbook renders an admission's billing summary as a spreadsheet
// for the front desk. The caller owns the returned file and must Close it.
func SummaryWorkbook(h *Hospitalisation, summary *BillingSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", summarySheet)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	release := ""
	if h.ReleaseDate != nil {
		release = h.ReleaseDate.Format(time.RFC3339)
	}

	rows := [][2]interface{}{
		{"Hospitalisation", h.ID.String()},
		{"Patient", h.PatientID.String()},
		{"Doctor", h.DoctorName},
		{"Entry date", h.EntryDate.Format(time.RFC3339)},
		{"Release date", release},
		{"Days billed", summary.Days},
		{"", ""},
		{"Per diem total", summary.PerDiemTotal.StringFixed(2)},
		{"Comfort fees", summary.ComfortFees.StringFixed(2)},
		{"Fee overrun", summary.FeeOverrun.StringFixed(2)},
		{"Medications", summary.MedicationsTotal.StringFixed(2)},
		{"Acts", summary.ActsTotal.StringFixed(2)},
		{"Mini consultations", summary.MiniConsultationsTotal.StringFixed(2)},
		{"Subtotal", summary.Subtotal.StringFixed(2)},
		{"Insurance coverage %", summary.InsuranceCoveragePercent.String()},
		{"Total due", summary.TotalAmount.StringFixed(0)},
	}

	for i, row := range rows {
		labelCell := fmt.Sprintf("A%d", i+1)
		valueCell := fmt.Sprintf("B%d", i+1)
		if err := f.SetCellValue(summarySheet, labelCell, row[0]); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(summarySheet, valueCell, row[1]); err != nil {
			f.Close()
			return nil, err
		}
	}

	for _, cell := range []string{"A1", "A8", "A16", "B16"} {
		if err := f.SetCellStyle(summarySheet, cell, cell, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 40); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
