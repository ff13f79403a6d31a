package tenancy

import (
	"testing"

	"github.com/google/uuid"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
)

func scoped(id uuid.UUID) Caller {
	return Caller{UserID: "nurse-1", Roles: []string{"nurse"}, HospitalID: &id}
}

func TestAuthorize_SameHospital(t *testing.T) {
	hid := uuid.New()
	if err := Authorize(scoped(hid), &hid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthorize_CrossTenantDenied(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	err := Authorize(scoped(a), &b)
	if err == nil {
		t.Fatal("expected access denied")
	}
	if !apperr.IsAccessDenied(err) {
		t.Errorf("expected AccessDenied kind, got %v", err)
	}
}

func TestAuthorize_UnscopedAdmin(t *testing.T) {
	entity := uuid.New()
	admin := Caller{UserID: "root", Roles: []string{"admin"}}
	if err := Authorize(admin, &entity); err != nil {
		t.Fatalf("unscoped admin must pass, got %v", err)
	}
}

func TestAuthorize_NilEntityTenantAccessible(t *testing.T) {
	hid := uuid.New()
	if err := Authorize(scoped(hid), nil); err != nil {
		t.Fatalf("nil entity tenant must be accessible, got %v", err)
	}
}

func TestScope(t *testing.T) {
	hid := uuid.New()
	if _, ok := (Caller{}).Scope(); ok {
		t.Error("empty caller must be unscoped")
	}
	got, ok := scoped(hid).Scope()
	if !ok || got != hid {
		t.Errorf("Scope() = %v, %v; want %v, true", got, ok, hid)
	}
}
