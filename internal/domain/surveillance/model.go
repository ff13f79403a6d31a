package surveillance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sheet maps to the surveillance_sheet table. A sheet is a dated record of
// vitals and billable line items. HospitalisationID is nil until the sheet is
// attached to an admission; attaching is a one-way binding.
type Sheet struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	HospitalisationID   *uuid.UUID `db:"hospitalisation_id" json:"hospitalisation_id,omitempty"`
	SheetDate           time.Time  `db:"sheet_date" json:"sheet_date"`
	Temperature         *float64   `db:"temperature" json:"temperature,omitempty"`
	SystolicBP          *int       `db:"systolic_bp" json:"systolic_bp,omitempty"`
	DiastolicBP         *int       `db:"diastolic_bp" json:"diastolic_bp,omitempty"`
	PulseRate           *int       `db:"pulse_rate" json:"pulse_rate,omitempty"`
	RespirationRate     *int       `db:"respiration_rate" json:"respiration_rate,omitempty"`
	SpO2                *int       `db:"spo2" json:"spo2,omitempty"`
	NursingNotes        *string    `db:"nursing_notes" json:"nursing_notes,omitempty"`
	MedicalObservations *string    `db:"medical_observations" json:"medical_observations,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`

	Medications       []*MedicationEntry  `db:"-" json:"medications,omitempty"`
	Acts              []*ActEntry         `db:"-" json:"acts,omitempty"`
	MiniConsultations []*MiniConsultation `db:"-" json:"mini_consultations,omitempty"`
}

// MedicationEntry maps to the sheet_medication table. Total is derived
// (unit_price x quantity, 2dp) at write time.
type MedicationEntry struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	SheetID   uuid.UUID       `db:"sheet_id" json:"sheet_id"`
	Name      string          `db:"name" json:"name"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Total     decimal.Decimal `db:"total" json:"total"`
}

// ActEntry maps to the sheet_act table (nursing/medical acts).
type ActEntry struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	SheetID   uuid.UUID       `db:"sheet_id" json:"sheet_id"`
	Name      string          `db:"name" json:"name"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Total     decimal.Decimal `db:"total" json:"total"`
}

// MiniConsultation maps to the sheet_mini_consultation table. A mini
// consultation is a flat fee, no quantity.
type MiniConsultation struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	SheetID   uuid.UUID       `db:"sheet_id" json:"sheet_id"`
	Summary   *string         `db:"summary" json:"summary,omitempty"`
	Diagnosis *string         `db:"diagnosis" json:"diagnosis,omitempty"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

// entryTotal computes a line item total at write time.
func entryTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
