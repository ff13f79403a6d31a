package surveillance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/domain/tenancy"
)

// AdmissionInfo is the slice of an admission the sheet service needs for
// tenant checks.
type AdmissionInfo struct {
	ID         uuid.UUID
	PatientID  uuid.UUID
	HospitalID *uuid.UUID
}

// AdmissionDirectory resolves admissions without importing the
// hospitalisation package.
type AdmissionDirectory interface {
	Info(ctx context.Context, id uuid.UUID) (*AdmissionInfo, error)
}

type Service struct {
	repo       Repository
	admissions AdmissionDirectory
}

func NewService(repo Repository, admissions AdmissionDirectory) *Service {
	return &Service{repo: repo, admissions: admissions}
}

func (s *Service) CreateSheet(ctx context.Context, caller tenancy.Caller, sheet *Sheet) error {
	if sheet.SheetDate.IsZero() {
		sheet.SheetDate = time.Now().UTC()
	}
	if sheet.HospitalisationID != nil {
		if err := s.authorizeAdmission(ctx, caller, *sheet.HospitalisationID); err != nil {
			return err
		}
	}
	return s.repo.Create(ctx, sheet)
}

func (s *Service) GetSheet(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*Sheet, error) {
	sheet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFoundf("surveillance sheet %s not found", id)
	}
	if err := s.authorizeSheet(ctx, caller, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *Service) UpdateSheet(ctx context.Context, caller tenancy.Caller, sheet *Sheet) error {
	existing, err := s.repo.GetByID(ctx, sheet.ID)
	if err != nil {
		return apperr.NotFoundf("surveillance sheet %s not found", sheet.ID)
	}
	if err := s.authorizeSheet(ctx, caller, existing); err != nil {
		return err
	}
	// the admission binding only moves through Attach
	sheet.HospitalisationID = existing.HospitalisationID
	return s.repo.Update(ctx, sheet)
}

func (s *Service) DeleteSheet(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFoundf("surveillance sheet %s not found", id)
	}
	if err := s.authorizeSheet(ctx, caller, existing); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByAdmission(ctx context.Context, caller tenancy.Caller, hospitalisationID uuid.UUID) ([]*Sheet, error) {
	if err := s.authorizeAdmission(ctx, caller, hospitalisationID); err != nil {
		return nil, err
	}
	return s.repo.ListByHospitalisation(ctx, hospitalisationID)
}

// Attach binds a sheet to an admission. The binding is one-way: a sheet
// already attached to a different admission is rejected.
func (s *Service) Attach(ctx context.Context, caller tenancy.Caller, sheetID, hospitalisationID uuid.UUID) error {
	sheet, err := s.repo.GetByID(ctx, sheetID)
	if err != nil {
		return apperr.NotFoundf("surveillance sheet %s not found", sheetID)
	}
	if err := s.authorizeAdmission(ctx, caller, hospitalisationID); err != nil {
		return err
	}
	if sheet.HospitalisationID != nil {
		if *sheet.HospitalisationID == hospitalisationID {
			return nil
		}
		return apperr.Validationf("sheet %s is already attached to another admission", sheetID)
	}
	return s.repo.Attach(ctx, sheetID, hospitalisationID)
}

// -- Line items --

func (s *Service) AddMedication(ctx context.Context, caller tenancy.Caller, entry *MedicationEntry) error {
	if strings.TrimSpace(entry.Name) == "" {
		return apperr.Validationf("medication name is required")
	}
	if entry.Quantity <= 0 {
		return apperr.Validationf("quantity must be positive")
	}
	sheet, err := s.repo.GetByID(ctx, entry.SheetID)
	if err != nil {
		return apperr.NotFoundf("surveillance sheet %s not found", entry.SheetID)
	}
	if err := s.authorizeSheet(ctx, caller, sheet); err != nil {
		return err
	}
	entry.Total = entryTotal(entry.UnitPrice, entry.Quantity)
	return s.repo.AddMedication(ctx, entry)
}

func (s *Service) AddAct(ctx context.Context, caller tenancy.Caller, entry *ActEntry) error {
	if strings.TrimSpace(entry.Name) == "" {
		return apperr.Validationf("act name is required")
	}
	if entry.Quantity <= 0 {
		return apperr.Validationf("quantity must be positive")
	}
	sheet, err := s.repo.GetByID(ctx, entry.SheetID)
	if err != nil {
		return apperr.NotFoundf("surveillance sheet %s not found", entry.SheetID)
	}
	if err := s.authorizeSheet(ctx, caller, sheet); err != nil {
		return err
	}
	entry.Total = entryTotal(entry.UnitPrice, entry.Quantity)
	return s.repo.AddAct(ctx, entry)
}

func (s *Service) AddMiniConsultation(ctx context.Context, caller tenancy.Caller, entry *MiniConsultation) error {
	sheet, err := s.repo.GetByID(ctx, entry.SheetID)
	if err != nil {
		return apperr.NotFoundf("surveillance sheet %s not found", entry.SheetID)
	}
	if err := s.authorizeSheet(ctx, caller, sheet); err != nil {
		return err
	}
	entry.Price = entry.Price.Round(2)
	return s.repo.AddMiniConsultation(ctx, entry)
}

func (s *Service) RemoveMedication(ctx context.Context, caller tenancy.Caller, sheetID, entryID uuid.UUID) error {
	if err := s.authorizeSheetID(ctx, caller, sheetID); err != nil {
		return err
	}
	return s.repo.RemoveMedication(ctx, entryID)
}

func (s *Service) RemoveAct(ctx context.Context, caller tenancy.Caller, sheetID, entryID uuid.UUID) error {
	if err := s.authorizeSheetID(ctx, caller, sheetID); err != nil {
		return err
	}
	return s.repo.RemoveAct(ctx, entryID)
}

func (s *Service) RemoveMiniConsultation(ctx context.Context, caller tenancy.Caller, sheetID, entryID uuid.UUID) error {
	if err := s.authorizeSheetID(ctx, caller, sheetID); err != nil {
		return err
	}
	return s.repo.RemoveMiniConsultation(ctx, entryID)
}

// -- Tenant checks --

func (s *Service) authorizeSheetID(ctx context.Context, caller tenancy.Caller, sheetID uuid.UUID) error {
	sheet, err := s.repo.GetByID(ctx, sheetID)
	if err != nil {
		return apperr.NotFoundf("surveillance sheet %s not found", sheetID)
	}
	return s.authorizeSheet(ctx, caller, sheet)
}

// authorizeSheet checks tenant access through the owning admission. An
// unattached sheet has no tenant and is treated as accessible.
func (s *Service) authorizeSheet(ctx context.Context, caller tenancy.Caller, sheet *Sheet) error {
	if sheet.HospitalisationID == nil {
		return tenancy.Authorize(caller, nil)
	}
	return s.authorizeAdmission(ctx, caller, *sheet.HospitalisationID)
}

func (s *Service) authorizeAdmission(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	info, err := s.admissions.Info(ctx, id)
	if err != nil {
		return apperr.NotFoundf("hospitalisation %s not found", id)
	}
	return tenancy.Authorize(caller, info.HospitalID)
}
