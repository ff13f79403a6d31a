package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, bill *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	Update(ctx context.Context, bill *Bill) error
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Bill, error)

	AddElement(ctx context.Context, el *BillElement) error
	ListElements(ctx context.Context, billID uuid.UUID) ([]*BillElement, error)
	RemoveElement(ctx context.Context, id uuid.UUID) error
}
