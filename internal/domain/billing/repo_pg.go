package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ngirwi/medrecord/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const billCols = `b.id, b.patient_id, b.hospitalisation_id, b.bill_date, b.author,
	b.description, b.total, b.created_at, b.updated_at, p.hospital_id`

const billFrom = ` FROM bill b JOIN patient p ON p.id = b.patient_id`

func (r *repoPG) Create(ctx context.Context, bill *Bill) error {
	bill.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bill (id, patient_id, hospitalisation_id, bill_date, author, description, total)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		bill.ID, bill.PatientID, bill.HospitalisationID, bill.BillDate, bill.Author,
		bill.Description, bill.Total,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	bill, err := scanBill(r.conn(ctx).QueryRow(ctx,
		`SELECT `+billCols+billFrom+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, err
	}
	elements, err := r.ListElements(ctx, id)
	if err != nil {
		return nil, err
	}
	bill.Elements = elements
	return bill, nil
}

func (r *repoPG) Update(ctx context.Context, bill *Bill) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bill SET
			hospitalisation_id=$2, bill_date=$3, author=$4, description=$5,
			total=$6, updated_at=NOW()
		WHERE id = $1`,
		bill.ID, bill.HospitalisationID, bill.BillDate, bill.Author, bill.Description,
		bill.Total,
	)
	return err
}

func (r *repoPG) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE bill SET total=$2, updated_at=NOW() WHERE id = $1`, id, total)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM bill WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Bill, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+billCols+billFrom+` WHERE b.patient_id = $1 ORDER BY b.bill_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*Bill
	for rows.Next() {
		var b Bill
		err := rows.Scan(
			&b.ID, &b.PatientID, &b.HospitalisationID, &b.BillDate, &b.Author,
			&b.Description, &b.Total, &b.CreatedAt, &b.UpdatedAt, &b.HospitalID,
		)
		if err != nil {
			return nil, err
		}
		bills = append(bills, &b)
	}
	return bills, rows.Err()
}

func (r *repoPG) AddElement(ctx context.Context, el *BillElement) error {
	el.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bill_element (id, bill_id, name, price, percentage)
		VALUES ($1,$2,$3,$4,$5)`,
		el.ID, el.BillID, el.Name, el.Price, el.Percentage,
	)
	return err
}

func (r *repoPG) ListElements(ctx context.Context, billID uuid.UUID) ([]*BillElement, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, bill_id, name, price, percentage
		FROM bill_element WHERE bill_id = $1 ORDER BY name`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var elements []*BillElement
	for rows.Next() {
		var el BillElement
		if err := rows.Scan(&el.ID, &el.BillID, &el.Name, &el.Price, &el.Percentage); err != nil {
			return nil, err
		}
		elements = append(elements, &el)
	}
	return elements, rows.Err()
}

func (r *repoPG) RemoveElement(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM bill_element WHERE id = $1`, id)
	return err
}

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(
		&b.ID, &b.PatientID, &b.HospitalisationID, &b.BillDate, &b.Author,
		&b.Description, &b.Total, &b.CreatedAt, &b.UpdatedAt, &b.HospitalID,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
