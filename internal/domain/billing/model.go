package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill maps to the bill table. A bill is a patient-level invoice with its
// own lifecycle; closing an admission may create one as a zero-total stub
// that the billing desk fills in later. The tenant is inherited through the
// patient; HospitalID is populated from the join and never written back.
type Bill struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	PatientID         uuid.UUID       `db:"patient_id" json:"patient_id"`
	HospitalisationID *uuid.UUID      `db:"hospitalisation_id" json:"hospitalisation_id,omitempty"`
	BillDate          time.Time       `db:"bill_date" json:"bill_date"`
	Author            string          `db:"author" json:"author"`
	Description       *string         `db:"description" json:"description,omitempty"`
	Total             decimal.Decimal `db:"total" json:"total"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`

	Elements []*BillElement `db:"-" json:"elements,omitempty"`

	HospitalID *uuid.UUID `db:"-" json:"-"`
}

// BillElement maps to the bill_element table. Percentage, when set, is the
// share of the price covered by a third party; it does not change the bill
// total.
type BillElement struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	BillID     uuid.UUID        `db:"bill_id" json:"bill_id"`
	Name       string           `db:"name" json:"name"`
	Price      decimal.Decimal  `db:"price" json:"price"`
	Percentage *decimal.Decimal `db:"percentage" json:"percentage,omitempty"`
}

// recomputeTotal is the bill total derived from its elements, 2dp half up.
func recomputeTotal(elements []*BillElement) decimal.Decimal {
	total := decimal.Zero
	for _, el := range elements {
		total = total.Add(el.Price)
	}
	return total.Round(2)
}
