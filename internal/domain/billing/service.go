package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/domain/tenancy"
)

// PatientInfo is the slice of a patient the billing service needs for
// tenant checks.
type PatientInfo struct {
	ID         uuid.UUID
	HospitalID *uuid.UUID
}

type PatientDirectory interface {
	Info(ctx context.Context, id uuid.UUID) (*PatientInfo, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{repo: repo, patients: patients}
}

func (s *Service) CreateBill(ctx context.Context, caller tenancy.Caller, bill *Bill) error {
	if bill.PatientID == uuid.Nil {
		return apperr.Validationf("patient_id is required")
	}
	if strings.TrimSpace(bill.Author) == "" {
		return apperr.Validationf("author is required")
	}
	if err := s.authorizePatient(ctx, caller, bill.PatientID); err != nil {
		return err
	}
	if bill.BillDate.IsZero() {
		bill.BillDate = time.Now().UTC()
	}
	return s.repo.Create(ctx, bill)
}

func (s *Service) GetBill(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (*Bill, error) {
	bill, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFoundf("bill %s not found", id)
	}
	if err := tenancy.Authorize(caller, bill.HospitalID); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Service) UpdateBill(ctx context.Context, caller tenancy.Caller, bill *Bill) error {
	existing, err := s.repo.GetByID(ctx, bill.ID)
	if err != nil {
		return apperr.NotFoundf("bill %s not found", bill.ID)
	}
	if err := tenancy.Authorize(caller, existing.HospitalID); err != nil {
		return err
	}
	if bill.PatientID != uuid.Nil && bill.PatientID != existing.PatientID {
		return apperr.Validationf("the owning patient cannot be changed")
	}
	bill.PatientID = existing.PatientID
	if strings.TrimSpace(bill.Author) == "" {
		return apperr.Validationf("author is required")
	}
	return s.repo.Update(ctx, bill)
}

func (s *Service) DeleteBill(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.NotFoundf("bill %s not found", id)
	}
	if err := tenancy.Authorize(caller, existing.HospitalID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, caller tenancy.Caller, patientID uuid.UUID) ([]*Bill, error) {
	if err := s.authorizePatient(ctx, caller, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// AddElement appends a line to the bill and re-derives the total from the
// full element set.
func (s *Service) AddElement(ctx context.Context, caller tenancy.Caller, el *BillElement) (*Bill, error) {
	bill, err := s.GetBill(ctx, caller, el.BillID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(el.Name) == "" {
		return nil, apperr.Validationf("element name is required")
	}
	el.Price = el.Price.Round(2)
	if err := s.repo.AddElement(ctx, el); err != nil {
		return nil, err
	}
	return s.refreshTotal(ctx, bill)
}

func (s *Service) RemoveElement(ctx context.Context, caller tenancy.Caller, billID, elementID uuid.UUID) (*Bill, error) {
	bill, err := s.GetBill(ctx, caller, billID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveElement(ctx, elementID); err != nil {
		return nil, err
	}
	return s.refreshTotal(ctx, bill)
}

// IssuePlaceholder creates a zero-total invoice stub when an admission
// closes. Reconciliation with the computed hospitalisation total happens
// through the bill's own lifecycle, not here. Internal callers only, so no
// tenant check applies.
func (s *Service) IssuePlaceholder(ctx context.Context, patientID uuid.UUID, author string, admissionID uuid.UUID) error {
	if patientID == uuid.Nil {
		return apperr.Validationf("a bill requires a patient")
	}
	desc := fmt.Sprintf("Hospitalisation %s", admissionID)
	bill := &Bill{
		PatientID:         patientID,
		HospitalisationID: &admissionID,
		BillDate:          time.Now().UTC(),
		Author:            author,
		Description:       &desc,
		Total:             decimal.Zero,
	}
	return s.repo.Create(ctx, bill)
}

func (s *Service) refreshTotal(ctx context.Context, bill *Bill) (*Bill, error) {
	elements, err := s.repo.ListElements(ctx, bill.ID)
	if err != nil {
		return nil, err
	}
	bill.Elements = elements
	bill.Total = recomputeTotal(elements)
	if err := s.repo.UpdateTotal(ctx, bill.ID, bill.Total); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Service) authorizePatient(ctx context.Context, caller tenancy.Caller, patientID uuid.UUID) error {
	info, err := s.patients.Info(ctx, patientID)
	if err != nil {
		return apperr.NotFoundf("patient %s not found", patientID)
	}
	return tenancy.Authorize(caller, info.HospitalID)
}
