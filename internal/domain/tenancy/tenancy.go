// Package tenancy implements the hospital-scoping guard every domain
// operation passes through. A Caller is an explicit value built at the HTTP
// boundary from the authenticated session and handed to services, so the
// guard never reads ambient global state.
package tenancy

import (
	"context"

	"github.com/google/uuid"

	"github.com/ngirwi/medrecord/internal/domain/apperr"
	"github.com/ngirwi/medrecord/internal/platform/auth"
)

// Caller identifies the authenticated user a request runs as.
type Caller struct {
	UserID string
	Roles  []string
	// HospitalID is the caller's tenant. Nil means the caller is an
	// unscoped administrator and no tenant filter applies.
	HospitalID *uuid.UUID
}

// Scope returns the caller's hospital scope. ok is false for unscoped
// administrators.
func (c Caller) Scope() (uuid.UUID, bool) {
	if c.HospitalID == nil {
		return uuid.Nil, false
	}
	return *c.HospitalID, true
}

// HasRole reports whether the caller carries the given role.
func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CallerFromContext rebuilds the Caller from the values the auth middleware
// stored on the request context. An admin without a hospital claim is
// unscoped; everyone else is bound to their hospital.
func CallerFromContext(ctx context.Context) Caller {
	caller := Caller{
		UserID: auth.UserIDFromContext(ctx),
		Roles:  auth.RolesFromContext(ctx),
	}
	if hid, ok := auth.HospitalIDFromContext(ctx); ok {
		caller.HospitalID = &hid
	}
	return caller
}

// Authorize rejects access when both the caller scope and the entity tenant
// are present and differ. A nil entity tenant is treated as accessible:
// legacy records predating hospital linkage stay reachable.
func Authorize(caller Caller, entityHospitalID *uuid.UUID) error {
	scope, scoped := caller.Scope()
	if !scoped || entityHospitalID == nil {
		return nil
	}
	if *entityHospitalID != scope {
		return apperr.AccessDeniedf("access denied: resource not in your hospital")
	}
	return nil
}
