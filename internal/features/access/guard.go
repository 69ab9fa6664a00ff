package access

import (
	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

// Requirement describes what an operation needs from its caller.
// A zero Requirement still demands an authenticated admin.
type Requirement struct {
	// Permission the actor must hold, if any
	Permission Permission
	// Target, when set, must be manageable by the actor
	Target Subject
	// AnyOf passes when the actor holds at least one of these
	AnyOf []Permission
}

// Decision is the tagged outcome of Authorize
type Decision struct {
	Allowed bool
	Code    string
	Reason  string

	unauthenticated bool
}

// Err converts a denial into the matching application error
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.unauthenticated {
		return apperrors.Authentication(d.Code, d.Reason)
	}
	return apperrors.Authorization(d.Code, d.Reason)
}

func deny(code, reason string) Decision {
	return Decision{Code: code, Reason: reason}
}

// Authorize checks actor against req. Every state changing admin operation
// goes through here before reading or writing the store.
func Authorize(actor Subject, req Requirement) Decision {
	if actor == nil {
		return Decision{Code: "AUTH_REQUIRED", Reason: "Authentication required", unauthenticated: true}
	}

	if !IsAdmin(actor) {
		return deny("ADMIN_REQUIRED", "Admin access required")
	}

	if req.Permission != "" && !HasPermission(actor, req.Permission) {
		return deny("PERMISSION_DENIED", "Missing permission: "+string(req.Permission))
	}

	if len(req.AnyOf) > 0 {
		ok := false
		for _, p := range req.AnyOf {
			if HasPermission(actor, p) {
				ok = true
				break
			}
		}
		if !ok {
			return deny("PERMISSION_DENIED", "Insufficient permissions")
		}
	}

	if req.Target != nil && !CanManageUser(actor, req.Target) {
		return deny("CANNOT_MANAGE_USER", "You cannot manage this user")
	}

	return Decision{Allowed: true}
}

// Check is Authorize(...).Err()
func Check(actor Subject, req Requirement) error {
	return Authorize(actor, req).Err()
}
