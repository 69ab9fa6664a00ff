package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/features/audit"
	"github.com/onthebell/onthebell-api/internal/features/notifications"
	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/logger"
	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*users.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, typ, title, message string) error
}

// Service applies admin moderation to user accounts. Every action checks the
// actor against the target before writing.
type Service struct {
	users    UserStore
	notifier Notifier
	audit    audit.Recorder
	now      func() time.Time
}

func NewService(store UserStore, notifier Notifier, recorder audit.Recorder) *Service {
	return &Service{
		users:    store,
		notifier: notifier,
		audit:    recorder,
		now:      time.Now,
	}
}

// target authorizes actor and loads the account it wants to act on
func (s *Service) target(ctx context.Context, actor *users.User, targetID primitive.ObjectID) (*users.User, error) {
	if err := access.Check(subject(actor), access.Requirement{Permission: access.PermManageUsers}); err != nil {
		return nil, err
	}
	if actor.ID == targetID {
		return nil, apperrors.Authorization("CANNOT_MANAGE_SELF", "You cannot moderate your own account")
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, apperrors.External("DATABASE_ERROR", "Failed to load user", err)
	}
	if target == nil {
		return nil, apperrors.NotFound("USER_NOT_FOUND", "User not found")
	}

	if err := access.Check(actor, access.Requirement{Permission: access.PermManageUsers, Target: target}); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Service) update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) error {
	if err := s.users.Update(ctx, id, set, unset...); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apperrors.NotFound("USER_NOT_FOUND", "User not found")
		}
		return apperrors.External("DATABASE_ERROR", "Failed to update user", err)
	}
	return nil
}

// UpdateRole changes the target's role and extra permissions
func (s *Service) UpdateRole(ctx context.Context, actor *users.User, targetID primitive.ObjectID, change RoleChange) (*users.User, error) {
	target, err := s.target(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}

	if change.Role == nil && change.Permissions == nil {
		return nil, apperrors.Validation("NOTHING_TO_UPDATE", "Provide a role or permissions")
	}

	set := bson.M{}
	if change.Role != nil {
		role := *change.Role
		if !role.Valid() {
			return nil, apperrors.Validation("INVALID_ROLE", "Unknown role")
		}
		if !access.CanAssignRole(actor.Role, role) {
			return nil, apperrors.Authorization("ROLE_NOT_ASSIGNABLE", "You cannot assign the "+string(role)+" role")
		}
		set["role"] = role
	}
	if change.Permissions != nil {
		perms := *change.Permissions
		for _, p := range perms {
			if !access.ValidPermission(p) {
				return nil, apperrors.Validation("INVALID_PERMISSION", "Unknown permission: "+string(p))
			}
			if !access.HasPermission(actor, p) {
				return nil, apperrors.Authorization("PERMISSION_NOT_GRANTABLE", "You cannot grant "+string(p))
			}
		}
		if perms == nil {
			perms = []access.Permission{}
		}
		set["permissions"] = perms
	}

	if err := s.update(ctx, target.ID, set); err != nil {
		return nil, err
	}

	if change.Role != nil {
		target.Role = *change.Role
	}
	if change.Permissions != nil {
		target.Permissions = *change.Permissions
	}

	s.record(ctx, actor, ActionUpdateRole, target.ID, map[string]interface{}{
		"role":        string(target.Role),
		"permissions": target.Permissions,
	})
	return target, nil
}

// Suspend blocks the target from acting. durationDays > 0 sets an expiry that
// many calendar days from now, otherwise the suspension is indefinite.
func (s *Service) Suspend(ctx context.Context, actor *users.User, targetID primitive.ObjectID, reason string, durationDays int) (*users.User, error) {
	target, err := s.target(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.Validation("REASON_REQUIRED", "A suspension reason is required")
	}
	if durationDays < 0 {
		return nil, apperrors.Validation("INVALID_DURATION", "Duration cannot be negative")
	}

	set := bson.M{
		"isSuspended":      true,
		"suspensionReason": reason,
	}
	var unset []string
	var expiresAt *time.Time
	if durationDays > 0 {
		at := s.now().AddDate(0, 0, durationDays)
		expiresAt = &at
		set["suspensionExpiresAt"] = at
	} else {
		unset = append(unset, "suspensionExpiresAt")
	}

	if err := s.update(ctx, target.ID, set, unset...); err != nil {
		return nil, err
	}

	target.IsSuspended = true
	target.SuspensionReason = reason
	target.SuspensionExpiresAt = expiresAt

	msg := "Your account has been suspended. Reason: " + reason
	if expiresAt != nil {
		msg += ". The suspension ends on " + expiresAt.Format("2 January 2006") + "."
	}
	s.notify(ctx, target.ID, "Account suspended", msg)
	s.record(ctx, actor, ActionSuspend, target.ID, map[string]interface{}{
		"reason":       reason,
		"durationDays": durationDays,
	})
	return target, nil
}

// Unsuspend lifts a suspension and clears its reason and expiry
func (s *Service) Unsuspend(ctx context.Context, actor *users.User, targetID primitive.ObjectID) (*users.User, error) {
	target, err := s.target(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.update(ctx, target.ID, bson.M{"isSuspended": false}, "suspensionReason", "suspensionExpiresAt"); err != nil {
		return nil, err
	}

	target.IsSuspended = false
	target.SuspensionReason = ""
	target.SuspensionExpiresAt = nil

	s.notify(ctx, target.ID, "Account restored", "Your account suspension has been lifted.")
	s.record(ctx, actor, ActionUnsuspend, target.ID, nil)
	return target, nil
}

// Verify marks the target verified without a verification request
func (s *Service) Verify(ctx context.Context, actor *users.User, targetID primitive.ObjectID) (*users.User, error) {
	return s.setVerified(ctx, actor, targetID, true)
}

// Unverify clears the target's verification
func (s *Service) Unverify(ctx context.Context, actor *users.User, targetID primitive.ObjectID) (*users.User, error) {
	return s.setVerified(ctx, actor, targetID, false)
}

func (s *Service) setVerified(ctx context.Context, actor *users.User, targetID primitive.ObjectID, verified bool) (*users.User, error) {
	target, err := s.target(ctx, actor, targetID)
	if err != nil {
		return nil, err
	}

	status := users.VerificationNone
	action := ActionUnverify
	if verified {
		status = users.VerificationApproved
		action = ActionVerify
	}

	if err := s.update(ctx, target.ID, bson.M{"isVerified": verified, "verificationStatus": status}); err != nil {
		return nil, err
	}

	target.IsVerified = verified
	target.VerificationStatus = status

	s.record(ctx, actor, action, target.ID, nil)
	return target, nil
}

// Delete permanently removes the target account
func (s *Service) Delete(ctx context.Context, actor *users.User, targetID primitive.ObjectID) error {
	target, err := s.target(ctx, actor, targetID)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, target.ID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apperrors.NotFound("USER_NOT_FOUND", "User not found")
		}
		return apperrors.External("DATABASE_ERROR", "Failed to delete user", err)
	}

	s.record(ctx, actor, "delete", target.ID, map[string]interface{}{
		"email": target.Email,
		"role":  string(target.Role),
	})
	return nil
}

func (s *Service) notify(ctx context.Context, userID primitive.ObjectID, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, notifications.TypeModeration, title, message); err != nil {
		logger.BestEffortFailure(ctx, err, "moderation notice failed", map[string]interface{}{
			"user_id": userID.Hex(),
		})
	}
}

func (s *Service) record(ctx context.Context, actor *users.User, action string, targetID primitive.ObjectID, details map[string]interface{}) {
	audit.Log(ctx, s.audit, &audit.Entry{
		ActorID:    actor.ID,
		Action:     "user." + action,
		TargetType: "user",
		TargetID:   targetID,
		Details:    details,
	})
}

func subject(u *users.User) access.Subject {
	if u == nil {
		return nil
	}
	return u
}
