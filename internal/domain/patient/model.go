package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. HospitalID is the tenant the patient
// belongs to; it is set at creation and never changes.
type Patient struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	FirstName       string     `db:"first_name" json:"first_name"`
	LastName        string     `db:"last_name" json:"last_name"`
	BirthDate       *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	BirthPlace      *string    `db:"birth_place" json:"birth_place,omitempty"`
	Gender          *string    `db:"gender" json:"gender,omitempty"`
	Profession      *string    `db:"profession" json:"profession,omitempty"`
	MaritalStatus   *string    `db:"marital_status" json:"marital_status,omitempty"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	Address         *string    `db:"address" json:"address,omitempty"`
	HospitalID      *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	MedicalRecordID *uuid.UUID `db:"medical_record_id" json:"medical_record_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// MedicalRecord maps to the medical_record table (the patient's dossier).
type MedicalRecord struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PatientID        uuid.UUID `db:"patient_id" json:"patient_id"`
	MedicalHistory   *string   `db:"medical_history" json:"medical_history,omitempty"`
	SurgicalHistory  *string   `db:"surgical_history" json:"surgical_history,omitempty"`
	Allergies        *string   `db:"allergies" json:"allergies,omitempty"`
	CurrentTreatment *string   `db:"current_treatment" json:"current_treatment,omitempty"`
	FamilyHistory    *string   `db:"family_history" json:"family_history,omitempty"`
	Lifestyle        *string   `db:"lifestyle" json:"lifestyle,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
