package surveillance

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, sheet *Sheet) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sheet, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Sheet, error)
	Update(ctx context.Context, sheet *Sheet) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByHospitalisation(ctx context.Context, hospitalisationID uuid.UUID) ([]*Sheet, error)
	Attach(ctx context.Context, sheetID, hospitalisationID uuid.UUID) error

	// Line items
	AddMedication(ctx context.Context, entry *MedicationEntry) error
	AddAct(ctx context.Context, entry *ActEntry) error
	AddMiniConsultation(ctx context.Context, entry *MiniConsultation) error
	ListMedications(ctx context.Context, sheetID uuid.UUID) ([]*MedicationEntry, error)
	ListActs(ctx context.Context, sheetID uuid.UUID) ([]*ActEntry, error)
	ListMiniConsultations(ctx context.Context, sheetID uuid.UUID) ([]*MiniConsultation, error)
	RemoveMedication(ctx context.Context, id uuid.UUID) error
	RemoveAct(ctx context.Context, id uuid.UUID) error
	RemoveMiniConsultation(ctx context.Context, id uuid.UUID) error
}
