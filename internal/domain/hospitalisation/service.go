package hospitalisation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/domain/surveillance"
	"github.com/ngirwi/medrecord/internal/domain/tenancy"
)

// PatientInfo is the slice of a patient the lifecycle needs: identity,
// tenant, and the linked dossier.
type PatientInfo struct {
	ID              uuid.UUID
	HospitalID      *uuid.UUID
	MedicalRecordID *uuid.UUID
}

// PatientDirectory resolves patients without importing the patient package's
// service layer.
type PatientDirectory interface {
	Info(ctx context.Context, id uuid.UUID) (*PatientInfo, error)
}

// SheetStore is the surveillance-sheet access the lifecycle needs; the
// surveillance repository satisfies it as-is.
type SheetStore interface {
	ListByHospitalisation(ctx context.Context, hospitalisationID uuid.UUID) ([]*surveillance.Sheet, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*surveillance.Sheet, error)
	Attach(ctx context.Context, sheetID, hospitalisationID uuid.UUID) error
}

// BillIssuer materializes a placeholder invoice when an admission closes
// with bill generation requested.
type BillIssuer interface {
	IssuePlaceholder(ctx context.Context, patientID uuid.UUID, author string, admissionID uuid.UUID) error
}

// TxRunner executes fn atomically against the backing store. The db package
// provides one over a pgx pool; repositories pick the transaction up from
// the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo     Repository
	patients PatientDirectory
	sheets   SheetStore
	issuer   BillIssuer
	tx       TxRunner
	loc      *time.Location
}

// NewService wires the admission lifecycle. loc is the civil calendar used
// for billing-day arithmetic; issuer may be nil when bill generation is
// disabled, tx when single writes need no transaction boundary.
func NewService(repo Repository, patients PatientDirectory, sheets SheetStore, issuer BillIssuer, tx TxRunner, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, patients: patients, sheets: sheets, issuer: issuer, tx: tx, loc: loc}
}

// Open admits a patient. At most one admission per patient may be active;
// the check here races with concurrent opens, so the partial unique index on
// active admissions is the authoritative guard and its violation surfaces as
// the same business-rule error. The admission row and its sheet attachments
// are written in one transaction: a failed open leaves no record behind.
func (s *Service) Open(ctx context.Context, caller tenancy.Caller, h *Hospitalisation, sheetIDs []uuid.UUID) error {
	info, err := s.patients.Info(ctx, h.PatientID)
	if err != nil {
		return apperr.NotFoundf("patient %s not found", h.PatientID)
	}
	if err := tenancy.Authorize(caller, info.HospitalID); err != nil {
		return err
	}
	if strings.TrimSpace(h.DoctorName) == "" {
		return apperr.Validationf("doctor_name is required")
	}
	if h.EntryDate.IsZero() {
		h.EntryDate = time.Now().UTC()
	}
	if h.ReleaseDate != nil {
		if h.ReleaseDate.Before(h.EntryDate) {
			return apperr.Validationf("release_date precedes entry_date")
		}
		// admitted and released in one call: never counts as active
		h.Status = StatusDone
	} else {
		h.Status = StatusStarted
	}
	if h.MedicalRecordID == nil {
		h.MedicalRecordID = info.MedicalRecordID
	}

	if h.Status.IsActive() {
		active, err := s.repo.ExistsActiveForPatient(ctx, h.PatientID)
		if err != nil {
			return err
		}
		if active {
			return apperr.InvariantViolationf("patient %s already has an active admission", h.PatientID)
		}
	}

	// sheets are validated before anything is written: a bad sheet id must
	// not leave an admission behind
	if err := s.validateSheetsUnbound(ctx, sheetIDs); err != nil {
		return err
	}

	if err := s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, h); err != nil {
			return err
		}
		for _, sheetID := range sheetIDs {
			if err := s.sheets.Attach(ctx, sheetID, h.ID); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	h.HospitalID = info.HospitalID
	return nil
}

func (s *Service) Get(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*Hospitalisation, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFoundf("hospitalisation %s not found", id)
	}
	if err := tenancy.Authorize(caller, h.HospitalID); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) Update(ctx context.Context, caller tenancy.Caller, h *Hospitalisation) error {
	existing, err := s.repo.GetByID(ctx, h.ID)
	if err != nil {
		return apperr.NotFoundf("hospitalisation %s not found", h.ID)
	}
	if err := tenancy.Authorize(caller, existing.HospitalID); err != nil {
		return err
	}
	if existing.Status == StatusDone {
		return apperr.InvalidStatef("hospitalisation %s is closed", h.ID)
	}
	if h.PatientID != uuid.Nil && h.PatientID != existing.PatientID {
		return apperr.Validationf("the owning patient cannot be changed")
	}
	h.PatientID = existing.PatientID
	if strings.TrimSpace(h.DoctorName) == "" {
		return apperr.Validationf("doctor_name is required")
	}
	if !h.Status.Valid() {
		return apperr.Validationf("unknown status %q", h.Status)
	}
	if h.EntryDate.IsZero() {
		h.EntryDate = existing.EntryDate
	}
	if h.ReleaseDate != nil && h.ReleaseDate.Before(h.EntryDate) {
		return apperr.Validationf("release_date precedes entry_date")
	}
	if err := s.repo.Update(ctx, h); err != nil {
		return err
	}
	h.HospitalID = existing.HospitalID
	return nil
}

// PartialUpdate merges the patch into the stored admission field by field.
// Setting a release date closes the admission as a side effect.
func (s *Service) PartialUpdate(ctx context.Context, caller tenancy.Caller, id uuid.UUID, patch Patch) (*Hospitalisation, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFoundf("hospitalisation %s not found", id)
	}
	if err := tenancy.Authorize(caller, h.HospitalID); err != nil {
		return nil, err
	}
	if h.Status == StatusDone {
		return nil, apperr.InvalidStatef("hospitalisation %s is closed", id)
	}

	if patch.DoctorName != nil {
		if strings.TrimSpace(*patch.DoctorName) == "" {
			return nil, apperr.Validationf("doctor_name is required")
		}
		h.DoctorName = *patch.DoctorName
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperr.Validationf("unknown status %q", *patch.Status)
		}
		h.Status = *patch.Status
	}
	if patch.EntryDate != nil {
		h.EntryDate = *patch.EntryDate
	}
	if patch.ReleaseDate != nil {
		h.ReleaseDate = patch.ReleaseDate
		h.Status = StatusDone
	}
	if patch.ServiceName != nil {
		h.ServiceName = patch.ServiceName
	}
	if patch.AdmissionReason != nil {
		h.AdmissionReason = patch.AdmissionReason
	}
	if patch.EntryDiagnosis != nil {
		h.EntryDiagnosis = patch.EntryDiagnosis
	}
	if patch.FinalDiagnosis != nil {
		h.FinalDiagnosis = patch.FinalDiagnosis
	}
	if patch.DailyRate != nil {
		h.DailyRate = *patch.DailyRate
	}
	if patch.ComfortFees != nil {
		h.ComfortFees = *patch.ComfortFees
	}
	if patch.FeeOverrun != nil {
		h.FeeOverrun = *patch.FeeOverrun
	}
	if patch.InsuranceCoveragePercent != nil {
		h.InsuranceCoveragePercent = *patch.InsuranceCoveragePercent
	}
	if patch.MedicalRecordID != nil {
		h.MedicalRecordID = patch.MedicalRecordID
	}

	if h.ReleaseDate != nil && h.ReleaseDate.Before(h.EntryDate) {
		return nil, apperr.Validationf("release_date precedes entry_date")
	}

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// Close releases the patient. The billing total is computed best-effort: a
// computation failure is logged and the close still succeeds without a
// total, which FinalizeBilling can fill in later.
func (s *Service) Close(ctx context.Context, caller tenancy.Caller, id uuid.UUID, releaseDate time.Time, finalDiagnosis *string, generateBill bool) (*Hospitalisation, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFoundf("hospitalisation %s not found", id)
	}
	if err := tenancy.Authorize(caller, h.HospitalID); err != nil {
		return nil, err
	}
	if h.Status == StatusDone {
		return nil, apperr.InvalidStatef("hospitalisation %s is already closed", id)
	}
	if releaseDate.IsZero() {
		return nil, apperr.Validationf("release_date is required")
	}
	if releaseDate.Before(h.EntryDate) {
		return nil, apperr.Validationf("release_date precedes entry_date")
	}

	h.ReleaseDate = &releaseDate
	if finalDiagnosis != nil {
		h.FinalDiagnosis = finalDiagnosis
	}
	h.Status = StatusDone

	if summary, err := s.computeSummary(ctx, h); err != nil {
		log.Warn().Err(err).
			Str("hospitalisation_id", id.String()).
			Msg("billing summary not computed on close")
	} else {
		h.TotalAmount = &summary.TotalAmount
	}

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}

	if generateBill && s.issuer != nil {
		// the close itself is already persisted and is not rolled back
		if err := s.issuer.IssuePlaceholder(ctx, h.PatientID, h.DoctorName, h.ID); err != nil {
			log.Warn().Err(err).
				Str("hospitalisation_id", id.String()).
				Msg("placeholder bill not issued on close")
		}
	}
	return h, nil
}

// Summary computes the billing breakdown without persisting anything.
func (s *Service) Summary(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*BillingSummary, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFoundf("hospitalisation %s not found", id)
	}
	if err := tenancy.Authorize(caller, h.HospitalID); err != nil {
		return nil, err
	}
	return s.computeSummary(ctx, h)
}

// FinalizeBilling recomputes the summary and persists the total. Repeated
// calls with unchanged inputs persist the same amount.
func (s *Service) FinalizeBilling(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*BillingSummary, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFoundf("hospitalisation %s not found", id)
	}
	if err := tenancy.Authorize(caller, h.HospitalID); err != nil {
		return nil, err
	}
	summary, err := s.computeSummary(ctx, h)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTotal(ctx, id, summary.TotalAmount); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Service) Delete(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFoundf("hospitalisation %s not found", id)
	}
	if err := tenancy.Authorize(caller, h.HospitalID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, caller tenancy.Caller, patientID uuid.UUID) ([]*Hospitalisation, error) {
	info, err := s.patients.Info(ctx, patientID)
	if err != nil {
		return nil, apperr.NotFoundf("patient %s not found", patientID)
	}
	if err := tenancy.Authorize(caller, info.HospitalID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// ActiveForPatient returns the patient's most recent active admission,
// falling back to the most recent admission of any status when none is
// active.
func (s *Service) ActiveForPatient(ctx context.Context, caller tenancy.Caller, patientID uuid.UUID) (*Hospitalisation, error) {
	info, err := s.patients.Info(ctx, patientID)
	if err != nil {
		return nil, apperr.NotFoundf("patient %s not found", patientID)
	}
	if err := tenancy.Authorize(caller, info.HospitalID); err != nil {
		return nil, err
	}
	h, err := s.repo.LatestForPatient(ctx, patientID, ActiveStatuses)
	if err == nil {
		return h, nil
	}
	h, err = s.repo.LatestForPatient(ctx, patientID, nil)
	if err != nil {
		return nil, apperr.NotFoundf("patient %s has no admissions", patientID)
	}
	return h, nil
}

// Search applies the caller's hospital scope as an implicit filter on top of
// whatever the caller asked for. Unscoped admins search across hospitals.
func (s *Service) Search(ctx context.Context, caller tenancy.Caller, filter SearchFilter, limit, offset int) ([]*Hospitalisation, int, error) {
	if scope, ok := caller.Scope(); ok {
		filter.HospitalID = &scope
	}
	return s.repo.Search(ctx, filter, limit, offset)
}

func (s *Service) computeSummary(ctx context.Context, h *Hospitalisation) (*BillingSummary, error) {
	sheets, err := s.sheets.ListByHospitalisation(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	return ComputeSummary(h, surveillance.Aggregate(sheets), s.loc)
}

// inTx runs fn inside one storage transaction when a runner is wired and
// directly otherwise.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx(ctx, fn)
}

// validateSheetsUnbound rejects any requested sheet that is missing or
// already bound to an admission. A freshly opened admission can only claim
// unattached sheets.
func (s *Service) validateSheetsUnbound(ctx context.Context, sheetIDs []uuid.UUID) error {
	if len(sheetIDs) == 0 {
		return nil
	}
	sheets, err := s.sheets.GetByIDs(ctx, sheetIDs)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]*surveillance.Sheet, len(sheets))
	for _, sheet := range sheets {
		found[sheet.ID] = sheet
	}
	for _, id := range sheetIDs {
		sheet, ok := found[id]
		if !ok {
			return apperr.NotFoundf("surveillance sheet %s not found", id)
		}
		if sheet.HospitalisationID != nil {
			return apperr.Validationf("sheet %s is already attached to another admission", id)
		}
	}
	return nil
}
