package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Patient, int, error)

	// Medical records (dossier)
	CreateRecord(ctx context.Context, rec *MedicalRecord) error
	GetRecordByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	GetRecordByPatient(ctx context.Context, patientID uuid.UUID) (*MedicalRecord, error)
	UpdateRecord(ctx context.Context, rec *MedicalRecord) error
	DeleteRecord(ctx context.Context, id uuid.UUID) error
}
