package hospitalisation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
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

const hospCols = `h.id, h.patient_id, h.status, h.entry_date, h.release_date, h.doctor_name,
	h.service, h.admission_reason, h.entry_diagnosis, h.final_diagnosis,
	h.daily_rate, h.comfort_fees, h.fee_overrun, h.insurance_coverage_percent,
	h.total_amount, h.medical_record_id, h.created_at, h.updated_at, p.hospital_id`

const hospFrom = ` FROM hospitalisation h JOIN patient p ON p.id = h.patient_id`

func (r *repoPG) Create(ctx context.Context, h *Hospitalisation) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospitalisation (
			id, patient_id, status, entry_date, release_date, doctor_name,
			service, admission_reason, entry_diagnosis, final_diagnosis,
			daily_rate, comfort_fees, fee_overrun, insurance_coverage_percent,
			total_amount, medical_record_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		h.ID, h.PatientID, h.Status, h.EntryDate, h.ReleaseDate, h.DoctorName,
		h.ServiceName, h.AdmissionReason, h.EntryDiagnosis, h.FinalDiagnosis,
		h.DailyRate, h.ComfortFees, h.FeeOverrun, h.InsuranceCoveragePercent,
		h.TotalAmount, h.MedicalRecordID,
	)
	return mapUniqueActive(err, h.PatientID)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospitalisation, error) {
	return scanHosp(r.conn(ctx).QueryRow(ctx,
		`SELECT `+hospCols+hospFrom+` WHERE h.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, h *Hospitalisation) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospitalisation SET
			status=$2, entry_date=$3, release_date=$4, doctor_name=$5,
			service=$6, admission_reason=$7, entry_diagnosis=$8, final_diagnosis=$9,
			daily_rate=$10, comfort_fees=$11, fee_overrun=$12,
			insurance_coverage_percent=$13, total_amount=$14, medical_record_id=$15,
			updated_at=NOW()
		WHERE id = $1`,
		h.ID, h.Status, h.EntryDate, h.ReleaseDate, h.DoctorName,
		h.ServiceName, h.AdmissionReason, h.EntryDiagnosis, h.FinalDiagnosis,
		h.DailyRate, h.ComfortFees, h.FeeOverrun,
		h.InsuranceCoveragePercent, h.TotalAmount, h.MedicalRecordID,
	)
	return mapUniqueActive(err, h.PatientID)
}

func (r *repoPG) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE hospitalisation SET total_amount=$2, updated_at=NOW() WHERE id = $1`, id, total)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM hospitalisation WHERE id = $1`, id)
	return err
}

func (r *repoPG) ExistsActiveForPatient(ctx context.Context, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM hospitalisation
			WHERE patient_id = $1 AND status IN ('STARTED','ONGOING')
		)`, patientID).Scan(&exists)
	return exists, err
}

func (r *repoPG) LatestForPatient(ctx context.Context, patientID uuid.UUID, statuses []Status) (*Hospitalisation, error) {
	if len(statuses) == 0 {
		return scanHosp(r.conn(ctx).QueryRow(ctx,
			`SELECT `+hospCols+hospFrom+`
			WHERE h.patient_id = $1
			ORDER BY h.entry_date DESC
			LIMIT 1`, patientID))
	}
	return scanHosp(r.conn(ctx).QueryRow(ctx,
		`SELECT `+hospCols+hospFrom+`
		WHERE h.patient_id = $1 AND h.status = ANY($2)
		ORDER BY h.entry_date DESC
		LIMIT 1`, patientID, statusStrings(statuses)))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Hospitalisation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+hospCols+hospFrom+` WHERE h.patient_id = $1 ORDER BY h.entry_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHosps(rows)
}

func (r *repoPG) Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*Hospitalisation, int, error) {
	where, args := buildSearchWhere(filter)

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*)`+hospFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT `+hospCols+hospFrom+where+` ORDER BY h.entry_date DESC LIMIT $%d OFFSET $%d`,
			len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	hosps, err := collectHosps(rows)
	if err != nil {
		return nil, 0, err
	}
	return hosps, total, nil
}

func buildSearchWhere(filter SearchFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.PatientID != nil {
		add("h.patient_id = $%d", *filter.PatientID)
	}
	if filter.Status != nil {
		add("h.status = $%d", *filter.Status)
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "h.status IN ('STARTED','ONGOING')")
	}
	if filter.ServiceName != nil {
		add("h.service = $%d", *filter.ServiceName)
	}
	if filter.From != nil {
		add("h.entry_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("h.entry_date <= $%d", *filter.To)
	}
	if filter.HospitalID != nil {
		add("p.hospital_id = $%d", *filter.HospitalID)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// mapUniqueActive translates the partial unique index on active admissions
// into the business-rule error the caller expects.
func mapUniqueActive(err error, patientID uuid.UUID) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.InvariantViolationf("patient %s already has an active admission", patientID)
	}
	return err
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanHosp(row pgx.Row) (*Hospitalisation, error) {
	var h Hospitalisation
	err := row.Scan(
		&h.ID, &h.PatientID, &h.Status, &h.EntryDate, &h.ReleaseDate, &h.DoctorName,
		&h.ServiceName, &h.AdmissionReason, &h.EntryDiagnosis, &h.FinalDiagnosis,
		&h.DailyRate, &h.ComfortFees, &h.FeeOverrun, &h.InsuranceCoveragePercent,
		&h.TotalAmount, &h.MedicalRecordID, &h.CreatedAt, &h.UpdatedAt, &h.HospitalID,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func collectHosps(rows pgx.Rows) ([]*Hospitalisation, error) {
	var hosps []*Hospitalisation
	for rows.Next() {
		var h Hospitalisation
		err := rows.Scan(
			&h.ID, &h.PatientID, &h.Status, &h.EntryDate, &h.ReleaseDate, &h.DoctorName,
			&h.ServiceName, &h.AdmissionReason, &h.EntryDiagnosis, &h.FinalDiagnosis,
			&h.DailyRate, &h.ComfortFees, &h.FeeOverrun, &h.InsuranceCoveragePercent,
			&h.TotalAmount, &h.MedicalRecordID, &h.CreatedAt, &h.UpdatedAt, &h.HospitalID,
		)
		if err != nil {
			return nil, err
		}
		hosps = append(hosps, &h)
	}
	return hosps, rows.Err()
}
