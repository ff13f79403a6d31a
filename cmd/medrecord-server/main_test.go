package main

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ngirwi/medrecord/internal/domain/hospitalisation"
	"github.com/ngirwi/medrecord/internal/domain/patient"
)

type stubPatientRepo struct {
	patient.Repository
	stored *patient.Patient
}

func (s *stubPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	return s.stored, nil
}

type stubHospRepo struct {
	hospitalisation.Repository
	stored *hospitalisation.Hospitalisation
}

func (s *stubHospRepo) GetByID(_ context.Context, id uuid.UUID) (*hospitalisation.Hospitalisation, error) {
	return s.stored, nil
}

func TestHospPatientAdapter(t *testing.T) {
	hospital := uuid.New()
	record := uuid.New()
	p := &patient.Patient{ID: uuid.New(), HospitalID: &hospital, MedicalRecordID: &record}

	adapter := &hospPatientAdapter{repo: &stubPatientRepo{stored: p}}
	info, err := adapter.Info(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.ID != p.ID || info.HospitalID != p.HospitalID || info.MedicalRecordID != p.MedicalRecordID {
		t.Errorf("adapter dropped fields: %+v", info)
	}
}

func TestAdmissionAdapter(t *testing.T) {
	hospital := uuid.New()
	h := &hospitalisation.Hospitalisation{
		ID:         uuid.New(),
		PatientID:  uuid.New(),
		HospitalID: &hospital,
	}

	adapter := &admissionAdapter{repo: &stubHospRepo{stored: h}}
	info, err := adapter.Info(context.Background(), h.ID)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.ID != h.ID || info.PatientID != h.PatientID || info.HospitalID != h.HospitalID {
		t.Errorf("adapter dropped fields: %+v", info)
	}
}
