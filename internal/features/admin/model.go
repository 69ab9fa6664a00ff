package admin

import (
	"github.com/onthebell/onthebell-api/internal/features/access"
)

// Actions accepted by PUT /admin/users
const (
	ActionUpdateRole = "update_role"
	ActionSuspend    = "suspend"
	ActionUnsuspend  = "unsuspend"
	ActionVerify     = "verify"
	ActionUnverify   = "unverify"
)

// RoleChange overwrites only the fields that are set
type RoleChange struct {
	Role        *access.Role
	Permissions *[]access.Permission
}

// UserActionRequest is the body of PUT /admin/users. Which fields are read
// depends on Action.
type UserActionRequest struct {
	UserID       string    `json:"userId" binding:"required,objectid"`
	Action       string    `json:"action" binding:"required,oneof=update_role suspend unsuspend verify unverify"`
	Role         *string   `json:"role" binding:"omitempty,role"`
	Permissions  *[]string `json:"permissions"`
	Reason       string    `json:"reason" binding:"max=500"`
	DurationDays int       `json:"durationDays" binding:"gte=0,lte=3650"`
}

func (r UserActionRequest) roleChange() RoleChange {
	var change RoleChange
	if r.Role != nil {
		role := access.Role(*r.Role)
		change.Role = &role
	}
	if r.Permissions != nil {
		perms := make([]access.Permission, 0, len(*r.Permissions))
		for _, p := range *r.Permissions {
			perms = append(perms, access.Permission(p))
		}
		change.Permissions = &perms
	}
	return change
}
