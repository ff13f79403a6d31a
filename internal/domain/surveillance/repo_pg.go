package surveillance

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

const sheetCols = `id, hospitalisation_id, sheet_date, temperature, systolic_bp, diastolic_bp,
	pulse_rate, respiration_rate, spo2, nursing_notes, medical_observations, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, sheet *Sheet) error {
	sheet.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO surveillance_sheet (
			id, hospitalisation_id, sheet_date, temperature, systolic_bp, diastolic_bp,
			pulse_rate, respiration_rate, spo2, nursing_notes, medical_observations
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		sheet.ID, sheet.HospitalisationID, sheet.SheetDate, sheet.Temperature,
		sheet.SystolicBP, sheet.DiastolicBP, sheet.PulseRate, sheet.RespirationRate,
		sheet.SpO2, sheet.NursingNotes, sheet.MedicalObservations,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Sheet, error) {
	sheet, err := scanSheet(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sheetCols+` FROM surveillance_sheet WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadEntries(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (r *repoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Sheet, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sheetCols+` FROM surveillance_sheet WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sheets, err := collectSheets(rows)
	if err != nil {
		return nil, err
	}
	for _, sheet := range sheets {
		if err := r.loadEntries(ctx, sheet); err != nil {
			return nil, err
		}
	}
	return sheets, nil
}

func (r *repoPG) Update(ctx context.Context, sheet *Sheet) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE surveillance_sheet SET
			sheet_date=$2, temperature=$3, systolic_bp=$4, diastolic_bp=$5,
			pulse_rate=$6, respiration_rate=$7, spo2=$8,
			nursing_notes=$9, medical_observations=$10, updated_at=NOW()
		WHERE id = $1`,
		sheet.ID, sheet.SheetDate, sheet.Temperature, sheet.SystolicBP, sheet.DiastolicBP,
		sheet.PulseRate, sheet.RespirationRate, sheet.SpO2,
		sheet.NursingNotes, sheet.MedicalObservations,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM surveillance_sheet WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByHospitalisation(ctx context.Context, hospitalisationID uuid.UUID) ([]*Sheet, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sheetCols+` FROM surveillance_sheet WHERE hospitalisation_id = $1 ORDER BY sheet_date`,
		hospitalisationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sheets, err := collectSheets(rows)
	if err != nil {
		return nil, err
	}
	for _, sheet := range sheets {
		if err := r.loadEntries(ctx, sheet); err != nil {
			return nil, err
		}
	}
	return sheets, nil
}

func (r *repoPG) Attach(ctx context.Context, sheetID, hospitalisationID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE surveillance_sheet SET hospitalisation_id = $2, updated_at = NOW() WHERE id = $1`,
		sheetID, hospitalisationID)
	return err
}

// -- Line items --

func (r *repoPG) AddMedication(ctx context.Context, entry *MedicationEntry) error {
	entry.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sheet_medication (id, sheet_id, name, unit_price, quantity, total)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		entry.ID, entry.SheetID, entry.Name, entry.UnitPrice, entry.Quantity, entry.Total,
	)
	return err
}

func (r *repoPG) AddAct(ctx context.Context, entry *ActEntry) error {
	entry.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sheet_act (id, sheet_id, name, unit_price, quantity, total)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		entry.ID, entry.SheetID, entry.Name, entry.UnitPrice, entry.Quantity, entry.Total,
	)
	return err
}

func (r *repoPG) AddMiniConsultation(ctx context.Context, entry *MiniConsultation) error {
	entry.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sheet_mini_consultation (id, sheet_id, summary, diagnosis, price)
		VALUES ($1,$2,$3,$4,$5)`,
		entry.ID, entry.SheetID, entry.Summary, entry.Diagnosis, entry.Price,
	)
	return err
}

func (r *repoPG) ListMedications(ctx context.Context, sheetID uuid.UUID) ([]*MedicationEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, sheet_id, name, unit_price, quantity, total
		FROM sheet_medication WHERE sheet_id = $1 ORDER BY name`, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*MedicationEntry
	for rows.Next() {
		var e MedicationEntry
		if err := rows.Scan(&e.ID, &e.SheetID, &e.Name, &e.UnitPrice, &e.Quantity, &e.Total); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *repoPG) ListActs(ctx context.Context, sheetID uuid.UUID) ([]*ActEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, sheet_id, name, unit_price, quantity, total
		FROM sheet_act WHERE sheet_id = $1 ORDER BY name`, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ActEntry
	for rows.Next() {
		var e ActEntry
		if err := rows.Scan(&e.ID, &e.SheetID, &e.Name, &e.UnitPrice, &e.Quantity, &e.Total); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *repoPG) ListMiniConsultations(ctx context.Context, sheetID uuid.UUID) ([]*MiniConsultation, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, sheet_id, summary, diagnosis, price
		FROM sheet_mini_consultation WHERE sheet_id = $1`, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*MiniConsultation
	for rows.Next() {
		var e MiniConsultation
		if err := rows.Scan(&e.ID, &e.SheetID, &e.Summary, &e.Diagnosis, &e.Price); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *repoPG) RemoveMedication(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM sheet_medication WHERE id = $1`, id)
	return err
}

func (r *repoPG) RemoveAct(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM sheet_act WHERE id = $1`, id)
	return err
}

func (r *repoPG) RemoveMiniConsultation(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM sheet_mini_consultation WHERE id = $1`, id)
	return err
}

func (r *repoPG) loadEntries(ctx context.Context, sheet *Sheet) error {
	meds, err := r.ListMedications(ctx, sheet.ID)
	if err != nil {
		return err
	}
	acts, err := r.ListActs(ctx, sheet.ID)
	if err != nil {
		return err
	}
	minis, err := r.ListMiniConsultations(ctx, sheet.ID)
	if err != nil {
		return err
	}
	sheet.Medications = meds
	sheet.Acts = acts
	sheet.MiniConsultations = minis
	return nil
}

func scanSheet(row pgx.Row) (*Sheet, error) {
	var s Sheet
	err := row.Scan(
		&s.ID, &s.HospitalisationID, &s.SheetDate, &s.Temperature, &s.SystolicBP, &s.DiastolicBP,
		&s.PulseRate, &s.RespirationRate, &s.SpO2, &s.NursingNotes, &s.MedicalObservations,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSheets(rows pgx.Rows) ([]*Sheet, error) {
	var sheets []*Sheet
	for rows.Next() {
		var s Sheet
		err := rows.Scan(
			&s.ID, &s.HospitalisationID, &s.SheetDate, &s.Temperature, &s.SystolicBP, &s.DiastolicBP,
			&s.PulseRate, &s.RespirationRate, &s.SpO2, &s.NursingNotes, &s.MedicalObservations,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, &s)
	}
	return sheets, rows.Err()
}
