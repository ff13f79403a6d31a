package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/domain/tenancy"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, caller tenancy.Caller, p *Patient) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return apperr.Validationf("first_name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return apperr.Validationf("last_name is required")
	}
	// A scoped caller can only create patients in their own hospital.
	if scope, ok := caller.Scope(); ok {
		p.HospitalID = &scope
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFoundf("patient %s not found", id)
	}
	if err := tenancy.Authorize(caller, p.HospitalID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, caller tenancy.Caller, p *Patient) error {
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return apperr.NotFoundf("patient %s not found", p.ID)
	}
	if err := tenancy.Authorize(caller, existing.HospitalID); err != nil {
		return err
	}
	if strings.TrimSpace(p.FirstName) == "" {
		return apperr.Validationf("first_name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return apperr.Validationf("last_name is required")
	}
	// hospital binding is immutable after creation
	p.HospitalID = existing.HospitalID
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFoundf("patient %s not found", id)
	}
	if err := tenancy.Authorize(caller, existing.HospitalID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListPatients returns the caller's hospital roster, or every patient for an
// unscoped admin.
func (s *Service) ListPatients(ctx context.Context, caller tenancy.Caller, limit, offset int) ([]*Patient, int, error) {
	if scope, ok := caller.Scope(); ok {
		return s.repo.ListByHospital(ctx, scope, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}

// -- Medical records (dossier) --

func (s *Service) CreateRecord(ctx context.Context, caller tenancy.Caller, rec *MedicalRecord) error {
	if rec.PatientID == uuid.Nil {
		return apperr.Validationf("patient_id is required")
	}
	p, err := s.repo.GetByID(ctx, rec.PatientID)
	if err != nil {
		return apperr.NotFoundf("patient %s not found", rec.PatientID)
	}
	if err := tenancy.Authorize(caller, p.HospitalID); err != nil {
		return err
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return err
	}
	p.MedicalRecordID = &rec.ID
	return s.repo.Update(ctx, p)
}

func (s *Service) GetRecord(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFoundf("medical record %s not found", id)
	}
	if err := s.authorizeRecord(ctx, caller, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) GetRecordByPatient(ctx context.Context, caller tenancy.Caller, patientID uuid.UUID) (*MedicalRecord, error) {
	if _, err := s.GetPatient(ctx, caller, patientID); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetRecordByPatient(ctx, patientID)
	if err != nil {
		return nil, apperr.NotFoundf("patient %s has no medical record", patientID)
	}
	return rec, nil
}

func (s *Service) UpdateRecord(ctx context.Context, caller tenancy.Caller, rec *MedicalRecord) error {
	existing, err := s.repo.GetRecordByID(ctx, rec.ID)
	if err != nil {
		return apperr.NotFoundf("medical record %s not found", rec.ID)
	}
	if err := s.authorizeRecord(ctx, caller, existing); err != nil {
		return err
	}
	rec.PatientID = existing.PatientID
	return s.repo.UpdateRecord(ctx, rec)
}

func (s *Service) authorizeRecord(ctx context.Context, caller tenancy.Caller, rec *MedicalRecord) error {
	p, err := s.repo.GetByID(ctx, rec.PatientID)
	if err != nil {
		return apperr.NotFoundf("patient %s not found", rec.PatientID)
	}
	return tenancy.Authorize(caller, p.HospitalID)
}
