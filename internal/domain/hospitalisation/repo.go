package hospitalisation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, h *Hospitalisation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospitalisation, error)
	Update(ctx context.Context, h *Hospitalisation) error
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error

	ExistsActiveForPatient(ctx context.Context, patientID uuid.UUID) (bool, error)
	// LatestForPatient returns the patient's most recent admission by entry
	// date, restricted to the given statuses. An empty status list matches
	// every admission.
	LatestForPatient(ctx context.Context, patientID uuid.UUID, statuses []Status) (*Hospitalisation, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Hospitalisation, error)
	Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*Hospitalisation, int, error)
}
