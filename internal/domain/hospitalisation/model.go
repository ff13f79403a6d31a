package hospitalisation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an admission. STARTED and ONGOING both
// count as active; DONE is terminal.
type Status string

const (
	StatusStarted Status = "STARTED"
	StatusOngoing Status = "ONGOING"
	StatusDone    Status = "DONE"
)

// ActiveStatuses are the states that block a second admission for the same
// patient.
var ActiveStatuses = []Status{StatusStarted, StatusOngoing}

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusStarted, StatusOngoing, StatusDone:
		return true
	}
	return false
}

// IsActive reports whether the admission is still open.
func (s Status) IsActive() bool {
	return s == StatusStarted || s == StatusOngoing
}

// Hospitalisation maps to the hospitalisation table. An admission belongs to
// exactly one patient and inherits its tenant through that patient's
// hospital. HospitalID is populated by the repository from the patient join
// and is never written back.
type Hospitalisation struct {
	ID                       uuid.UUID        `db:"id" json:"id"`
	PatientID                uuid.UUID        `db:"patient_id" json:"patient_id"`
	Status                   Status           `db:"status" json:"status"`
	EntryDate                time.Time        `db:"entry_date" json:"entry_date"`
	ReleaseDate              *time.Time       `db:"release_date" json:"release_date,omitempty"`
	DoctorName               string           `db:"doctor_name" json:"doctor_name"`
	ServiceName              *string          `db:"service" json:"service,omitempty"`
	AdmissionReason          *string          `db:"admission_reason" json:"admission_reason,omitempty"`
	EntryDiagnosis           *string          `db:"entry_diagnosis" json:"entry_diagnosis,omitempty"`
	FinalDiagnosis           *string          `db:"final_diagnosis" json:"final_diagnosis,omitempty"`
	DailyRate                decimal.Decimal  `db:"daily_rate" json:"daily_rate"`
	ComfortFees              decimal.Decimal  `db:"comfort_fees" json:"comfort_fees"`
	FeeOverrun               decimal.Decimal  `db:"fee_overrun" json:"fee_overrun"`
	InsuranceCoveragePercent decimal.Decimal  `db:"insurance_coverage_percent" json:"insurance_coverage_percent"`
	TotalAmount              *decimal.Decimal `db:"total_amount" json:"total_amount,omitempty"`
	MedicalRecordID          *uuid.UUID       `db:"medical_record_id" json:"medical_record_id,omitempty"`
	CreatedAt                time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time        `db:"updated_at" json:"updated_at"`

	HospitalID *uuid.UUID `db:"-" json:"-"`
}

// Patch is an explicit field-by-field merge for partial updates. Nil fields
// are preserved on the stored admission.
type Patch struct {
	Status                   *Status          `json:"status,omitempty"`
	EntryDate                *time.Time       `json:"entry_date,omitempty"`
	ReleaseDate              *time.Time       `json:"release_date,omitempty"`
	DoctorName               *string          `json:"doctor_name,omitempty"`
	ServiceName              *string          `json:"service,omitempty"`
	AdmissionReason          *string          `json:"admission_reason,omitempty"`
	EntryDiagnosis           *string          `json:"entry_diagnosis,omitempty"`
	FinalDiagnosis           *string          `json:"final_diagnosis,omitempty"`
	DailyRate                *decimal.Decimal `json:"daily_rate,omitempty"`
	ComfortFees              *decimal.Decimal `json:"comfort_fees,omitempty"`
	FeeOverrun               *decimal.Decimal `json:"fee_overrun,omitempty"`
	InsuranceCoveragePercent *decimal.Decimal `json:"insurance_coverage_percent,omitempty"`
	MedicalRecordID          *uuid.UUID       `json:"medical_record_id,omitempty"`
}

// SearchFilter is the composite filter for admission searches. The hospital
// scope is merged in by the service from the caller, never from client input.
type SearchFilter struct {
	PatientID   *uuid.UUID
	Status      *Status
	ActiveOnly  bool
	ServiceName *string
	From        *time.Time
	To          *time.Time
	HospitalID  *uuid.UUID
}
