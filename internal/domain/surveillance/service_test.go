package surveillance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/domain/tenancy"
)

type mockRepo struct {
	sheets      map[uuid.UUID]*Sheet
	medications map[uuid.UUID]*MedicationEntry
	acts        map[uuid.UUID]*ActEntry
	minis       map[uuid.UUID]*MiniConsultation
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		sheets:      make(map[uuid.UUID]*Sheet),
		medications: make(map[uuid.UUID]*MedicationEntry),
		acts:        make(map[uuid.UUID]*ActEntry),
		minis:       make(map[uuid.UUID]*MiniConsultation),
	}
}

func (m *mockRepo) Create(_ context.Context, sheet *Sheet) error {
	if sheet.ID == uuid.Nil {
		sheet.ID = uuid.New()
	}
	sheet.CreatedAt = time.Now()
	m.sheets[sheet.ID] = sheet
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Sheet, error) {
	sheet, ok := m.sheets[id]
	if !ok {
		return nil, apperr.NotFoundf("not found")
	}
	return sheet, nil
}

func (m *mockRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*Sheet, error) {
	var out []*Sheet
	for _, id := range ids {
		if sheet, ok := m.sheets[id]; ok {
			out = append(out, sheet)
		}
	}
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, sheet *Sheet) error {
	if _, ok := m.sheets[sheet.ID]; !ok {
		return apperr.NotFoundf("not found")
	}
	m.sheets[sheet.ID] = sheet
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.sheets, id)
	return nil
}

func (m *mockRepo) ListByHospitalisation(_ context.Context, hospitalisationID uuid.UUID) ([]*Sheet, error) {
	var out []*Sheet
	for _, sheet := range m.sheets {
		if sheet.HospitalisationID != nil && *sheet.HospitalisationID == hospitalisationID {
			out = append(out, sheet)
		}
	}
	return out, nil
}

func (m *mockRepo) Attach(_ context.Context, sheetID, hospitalisationID uuid.UUID) error {
	sheet, ok := m.sheets[sheetID]
	if !ok {
		return apperr.NotFoundf("not found")
	}
	sheet.HospitalisationID = &hospitalisationID
	return nil
}

func (m *mockRepo) AddMedication(_ context.Context, entry *MedicationEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	m.medications[entry.ID] = entry
	return nil
}

func (m *mockRepo) AddAct(_ context.Context, entry *ActEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	m.acts[entry.ID] = entry
	return nil
}

func (m *mockRepo) AddMiniConsultation(_ context.Context, entry *MiniConsultation) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	m.minis[entry.ID] = entry
	return nil
}

func (m *mockRepo) ListMedications(_ context.Context, sheetID uuid.UUID) ([]*MedicationEntry, error) {
	var out []*MedicationEntry
	for _, e := range m.medications {
		if e.SheetID == sheetID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) ListActs(_ context.Context, sheetID uuid.UUID) ([]*ActEntry, error) {
	var out []*ActEntry
	for _, e := range m.acts {
		if e.SheetID == sheetID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) ListMiniConsultations(_ context.Context, sheetID uuid.UUID) ([]*MiniConsultation, error) {
	var out []*MiniConsultation
	for _, e := range m.minis {
		if e.SheetID == sheetID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) RemoveMedication(_ context.Context, id uuid.UUID) error {
	delete(m.medications, id)
	return nil
}

func (m *mockRepo) RemoveAct(_ context.Context, id uuid.UUID) error {
	delete(m.acts, id)
	return nil
}

func (m *mockRepo) RemoveMiniConsultation(_ context.Context, id uuid.UUID) error {
	delete(m.minis, id)
	return nil
}

type mockDirectory struct {
	admissions map[uuid.UUID]*AdmissionInfo
}

func (m *mockDirectory) Info(_ context.Context, id uuid.UUID) (*AdmissionInfo, error) {
	info, ok := m.admissions[id]
	if !ok {
		return nil, apperr.NotFoundf("not found")
	}
	return info, nil
}

func newTestService() (*Service, *mockRepo, *mockDirectory) {
	repo := newMockRepo()
	dir := &mockDirectory{admissions: make(map[uuid.UUID]*AdmissionInfo)}
	return NewService(repo, dir), repo, dir
}

func scopedCaller(hospitalID uuid.UUID) tenancy.Caller {
	return tenancy.Caller{UserID: "user-1", Roles: []string{"doctor"}, HospitalID: &hospitalID}
}

func adminCaller() tenancy.Caller {
	return tenancy.Caller{UserID: "admin-1", Roles: []string{"admin"}}
}

func seedAdmission(dir *mockDirectory, hospitalID *uuid.UUID) uuid.UUID {
	id := uuid.New()
	dir.admissions[id] = &AdmissionInfo{ID: id, PatientID: uuid.New(), HospitalID: hospitalID}
	return id
}

func TestCreateSheet_AttachedOnCreate(t *testing.T) {
	svc, repo, dir := newTestService()
	hospital := uuid.New()
	admissionID := seedAdmission(dir, &hospital)

	sheet := &Sheet{HospitalisationID: &admissionID}
	if err := svc.CreateSheet(context.Background(), scopedCaller(hospital), sheet); err != nil {
		t.Fatalf("CreateSheet: %v", err)
	}
	if sheet.SheetDate.IsZero() {
		t.Error("expected sheet date to be defaulted")
	}
	if _, ok := repo.sheets[sheet.ID]; !ok {
		t.Error("sheet not persisted")
	}
}

func TestCreateSheet_CrossTenantDenied(t *testing.T) {
	svc, _, dir := newTestService()
	hospitalA := uuid.New()
	hospitalB := uuid.New()
	admissionID := seedAdmission(dir, &hospitalA)

	sheet := &Sheet{HospitalisationID: &admissionID}
	err := svc.CreateSheet(context.Background(), scopedCaller(hospitalB), sheet)
	if !apperr.IsAccessDenied(err) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestGetSheet_UnattachedAccessible(t *testing.T) {
	svc, repo, _ := newTestService()
	sheet := &Sheet{ID: uuid.New(), SheetDate: time.Now()}
	repo.sheets[sheet.ID] = sheet

	got, err := svc.GetSheet(context.Background(), scopedCaller(uuid.New()), sheet.ID)
	if err != nil {
		t.Fatalf("GetSheet: %v", err)
	}
	if got.ID != sheet.ID {
		t.Errorf("got sheet %s, want %s", got.ID, sheet.ID)
	}
}

func TestGetSheet_CrossTenantDenied(t *testing.T) {
	svc, repo, dir := newTestService()
	hospitalA := uuid.New()
	admissionID := seedAdmission(dir, &hospitalA)
	sheet := &Sheet{ID: uuid.New(), HospitalisationID: &admissionID}
	repo.sheets[sheet.ID] = sheet

	_, err := svc.GetSheet(context.Background(), scopedCaller(uuid.New()), sheet.ID)
	if !apperr.IsAccessDenied(err) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestGetSheet_AdminUnscoped(t *testing.T) {
	svc, repo, dir := newTestService()
	hospital := uuid.New()
	admissionID := seedAdmission(dir, &hospital)
	sheet := &Sheet{ID: uuid.New(), HospitalisationID: &admissionID}
	repo.sheets[sheet.ID] = sheet

	if _, err := svc.GetSheet(context.Background(), adminCaller(), sheet.ID); err != nil {
		t.Fatalf("GetSheet as admin: %v", err)
	}
}

func TestAttach_BindsSheet(t *testing.T) {
	svc, repo, dir := newTestService()
	hospital := uuid.New()
	admissionID := seedAdmission(dir, &hospital)
	sheet := &Sheet{ID: uuid.New()}
	repo.sheets[sheet.ID] = sheet

	if err := svc.Attach(context.Background(), scopedCaller(hospital), sheet.ID, admissionID); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if sheet.HospitalisationID == nil || *sheet.HospitalisationID != admissionID {
		t.Error("sheet not bound to admission")
	}
}

func TestAttach_AlreadyBoundElsewhere(t *testing.T) {
	svc, repo, dir := newTestService()
	hospital := uuid.New()
	first := seedAdmission(dir, &hospital)
	second := seedAdmission(dir, &hospital)
	sheet := &Sheet{ID: uuid.New(), HospitalisationID: &first}
	repo.sheets[sheet.ID] = sheet

	err := svc.Attach(context.Background(), scopedCaller(hospital), sheet.ID, second)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if *sheet.HospitalisationID != first {
		t.Error("binding must not change")
	}
}

func TestAttach_Idempotent(t *testing.T) {
	svc, repo, dir := newTestService()
	hospital := uuid.New()
	admissionID := seedAdmission(dir, &hospital)
	sheet := &Sheet{ID: uuid.New(), HospitalisationID: &admissionID}
	repo.sheets[sheet.ID] = sheet

	if err := svc.Attach(context.Background(), scopedCaller(hospital), sheet.ID, admissionID); err != nil {
		t.Fatalf("re-attach to same admission: %v", err)
	}
}

func TestUpdateSheet_BindingImmutable(t *testing.T) {
	svc, repo, dir := newTestService()
	hospital := uuid.New()
	admissionID := seedAdmission(dir, &hospital)
	sheet := &Sheet{ID: uuid.New(), HospitalisationID: &admissionID}
	repo.sheets[sheet.ID] = sheet

	other := uuid.New()
	upd := &Sheet{ID: sheet.ID, HospitalisationID: &other, NursingNotes: strptr("stable overnight")}
	if err := svc.UpdateSheet(context.Background(), scopedCaller(hospital), upd); err != nil {
		t.Fatalf("UpdateSheet: %v", err)
	}
	if upd.HospitalisationID == nil || *upd.HospitalisationID != admissionID {
		t.Error("admission binding changed through update")
	}
}

func TestAddMedication_ComputesTotal(t *testing.T) {
	svc, repo, _ := newTestService()
	sheet := &Sheet{ID: uuid.New()}
	repo.sheets[sheet.ID] = sheet

	entry := &MedicationEntry{SheetID: sheet.ID, Name: "Ceftriaxone", UnitPrice: dec("2500"), Quantity: 3}
	if err := svc.AddMedication(context.Background(), adminCaller(), entry); err != nil {
		t.Fatalf("AddMedication: %v", err)
	}
	if !entry.Total.Equal(dec("7500.00")) {
		t.Errorf("total = %s, want 7500.00", entry.Total)
	}
}

func TestAddMedication_NameRequired(t *testing.T) {
	svc, repo, _ := newTestService()
	sheet := &Sheet{ID: uuid.New()}
	repo.sheets[sheet.ID] = sheet

	entry := &MedicationEntry{SheetID: sheet.ID, Name: "  ", UnitPrice: dec("100"), Quantity: 1}
	if err := svc.AddMedication(context.Background(), adminCaller(), entry); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddAct_QuantityMustBePositive(t *testing.T) {
	svc, repo, _ := newTestService()
	sheet := &Sheet{ID: uuid.New()}
	repo.sheets[sheet.ID] = sheet

	entry := &ActEntry{SheetID: sheet.ID, Name: "Infusion", UnitPrice: dec("1000"), Quantity: 0}
	if err := svc.AddAct(context.Background(), adminCaller(), entry); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddMiniConsultation_RoundsPrice(t *testing.T) {
	svc, repo, _ := newTestService()
	sheet := &Sheet{ID: uuid.New()}
	repo.sheets[sheet.ID] = sheet

	entry := &MiniConsultation{SheetID: sheet.ID, Summary: strptr("ENT opinion"), Price: dec("4999.999")}
	if err := svc.AddMiniConsultation(context.Background(), adminCaller(), entry); err != nil {
		t.Fatalf("AddMiniConsultation: %v", err)
	}
	if !entry.Price.Equal(dec("5000.00")) {
		t.Errorf("price = %s, want 5000.00", entry.Price)
	}
}

func TestListByAdmission_CrossTenantDenied(t *testing.T) {
	svc, _, dir := newTestService()
	hospitalA := uuid.New()
	admissionID := seedAdmission(dir, &hospitalA)

	_, err := svc.ListByAdmission(context.Background(), scopedCaller(uuid.New()), admissionID)
	if !apperr.IsAccessDenied(err) {
		t.Fatalf("expected access denied, got %v", err)
	}
}
