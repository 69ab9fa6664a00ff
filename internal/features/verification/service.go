package verification

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/features/audit"
	"github.com/onthebell/onthebell-api/internal/features/notifications"
	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/logger"
	"github.com/onthebell/onthebell-api/internal/pkg/pagination"
	"github.com/onthebell/onthebell-api/internal/pkg/storage"
	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

type Store interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Request, error)
	HasPending(ctx context.Context, userID primitive.ObjectID) (bool, error)
	Decide(ctx context.Context, id primitive.ObjectID, status Status, notes string, adminID primitive.ObjectID, at time.Time) error
	MarkProofDeleted(ctx context.Context, id primitive.ObjectID, at time.Time) error
	List(ctx context.Context, status Status, page pagination.Cursor) ([]Request, bool, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page pagination.Cursor) ([]Request, bool, error)
}

// UserUpdater writes the verification fields on the user record
type UserUpdater interface {
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) error
}

type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, typ, title, message string) error
}

type Service struct {
	store    Store
	users    UserUpdater
	notifier Notifier
	proofs   storage.Store
	audit    audit.Recorder
	now      func() time.Time
}

func NewService(store Store, userUpdater UserUpdater, notifier Notifier, proofs storage.Store, recorder audit.Recorder) *Service {
	return &Service{
		store:    store,
		users:    userUpdater,
		notifier: notifier,
		proofs:   proofs,
		audit:    recorder,
		now:      time.Now,
	}
}

func dbError(msg string, err error) error {
	return apperrors.External("DATABASE_ERROR", msg, err)
}

// Submit opens a pending request for user. The proof, when given, is
// validated and uploaded before the request is stored.
func (s *Service) Submit(ctx context.Context, user *users.User, in SubmitInput) (*Request, error) {
	if user == nil {
		return nil, apperrors.Authentication("AUTH_REQUIRED", "Authentication required")
	}
	if !in.Method.Valid() {
		return nil, apperrors.Validation("INVALID_METHOD", "Unknown verification method")
	}
	if in.Method == MethodDocument && in.Proof == nil {
		return nil, apperrors.Validation("PROOF_REQUIRED", "A proof document is required")
	}
	if in.Method != MethodDocument && in.Proof != nil {
		return nil, apperrors.Validation("PROOF_NOT_ALLOWED", "A proof document is only accepted for document verification")
	}
	if user.IsVerified {
		return nil, apperrors.State("ALREADY_VERIFIED", "Your account is already verified")
	}

	pending, err := s.store.HasPending(ctx, user.ID)
	if err != nil {
		return nil, dbError("Failed to check verification requests", err)
	}
	if pending {
		return nil, apperrors.State("VERIFICATION_PENDING", "You already have a pending verification request")
	}

	req := &Request{
		UserID: user.ID,
		Method: in.Method,
	}

	if in.Proof != nil {
		obj, err := s.uploadProof(ctx, user.ID, in.Proof)
		if err != nil {
			return nil, err
		}
		req.ProofDocument = obj
	}

	if err := s.store.Create(ctx, req); err != nil {
		if req.ProofDocument != nil {
			s.deleteOrphan(ctx, req.ProofDocument)
		}
		return nil, dbError("Failed to create verification request", err)
	}

	if err := s.users.Update(ctx, user.ID, bson.M{"verificationStatus": users.VerificationPending}); err != nil {
		return nil, dbError("Failed to update user", err)
	}

	logger.FromContext(ctx).Info().
		Str("request_id", req.ID.Hex()).
		Str("user_id", user.ID.Hex()).
		Str("method", string(req.Method)).
		Msg("verification submitted")

	return req, nil
}

func (s *Service) uploadProof(ctx context.Context, userID primitive.ObjectID, r io.Reader) (*storage.Object, error) {
	buf, mimeType, err := storage.ValidateProof(r)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return nil, apperrors.Validation("FILE_TOO_LARGE", "Proof document must be 10MB or smaller")
		case errors.Is(err, storage.ErrInvalidMimeType):
			return nil, apperrors.Validation("INVALID_FILE_TYPE", "Proof must be a PDF, JPEG, PNG or WebP file")
		case errors.Is(err, storage.ErrEmptyFile):
			return nil, apperrors.Validation("EMPTY_FILE", "Proof document is empty")
		default:
			return nil, apperrors.Validation("INVALID_FILE", "Could not read proof document")
		}
	}

	if s.proofs == nil {
		return nil, apperrors.External("STORAGE_UNAVAILABLE", "Document storage is not configured", storage.ErrNotConfigured)
	}

	obj, err := s.proofs.Put(ctx, "verification/"+userID.Hex(), buf, mimeType)
	if err != nil {
		return nil, apperrors.External("UPLOAD_FAILED", "Failed to upload proof document", err)
	}
	return obj, nil
}

func (s *Service) deleteOrphan(ctx context.Context, obj *storage.Object) {
	if err := s.proofs.Delete(ctx, obj.Key); err != nil {
		logger.BestEffortFailure(ctx, err, "orphan proof cleanup failed", map[string]interface{}{
			"key": obj.Key,
		})
	}
}

// Decide approves or rejects a pending request. The requester is told the
// outcome before an approved document proof is deleted, and a failed
// deletion does not undo the approval.
func (s *Service) Decide(ctx context.Context, actor *users.User, in DecideInput) (*Request, error) {
	if err := access.Check(subject(actor), access.Requirement{Permission: access.PermManageUsers}); err != nil {
		return nil, err
	}
	if !in.Status.Decision() {
		return nil, apperrors.Validation("INVALID_STATUS", "Status must be approved or rejected")
	}

	req, err := s.store.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, dbError("Failed to load verification request", err)
	}
	if req == nil {
		return nil, apperrors.NotFound("VERIFICATION_NOT_FOUND", "Verification request not found")
	}
	if req.Status != StatusPending {
		return nil, apperrors.State("VERIFICATION_ALREADY_DECIDED", "Verification request has already been "+string(req.Status))
	}

	now := s.now()
	notes := strings.TrimSpace(in.AdminNotes)
	if err := s.store.Decide(ctx, req.ID, in.Status, notes, actor.ID, now); err != nil {
		if errors.Is(err, ErrNotPending) {
			return nil, apperrors.State("VERIFICATION_ALREADY_DECIDED", "Verification request has already been decided")
		}
		return nil, dbError("Failed to update verification request", err)
	}
	req.Status = in.Status
	req.AdminNotes = notes
	req.DecidedAt = &now
	req.DecidedBy = &actor.ID
	req.UpdatedAt = now

	if err := s.users.Update(ctx, req.UserID, userFields(in.Status)); err != nil {
		return nil, dbError("Failed to update user verification", err)
	}

	title, message := decisionText(in.Status, notes)
	if err := s.notifier.Notify(ctx, req.UserID, notifications.TypeVerification, title, message); err != nil {
		return nil, apperrors.External("NOTIFICATION_FAILED", "Failed to notify user", err)
	}

	if in.Status == StatusApproved && req.Method == MethodDocument && req.ProofDocument != nil {
		s.deleteProof(ctx, req)
	}

	audit.Log(ctx, s.audit, &audit.Entry{
		ActorID:    actor.ID,
		Action:     "verification." + string(in.Status),
		TargetType: "verification_request",
		TargetID:   req.ID,
		Details:    map[string]interface{}{"userId": req.UserID.Hex()},
	})

	return req, nil
}

func (s *Service) deleteProof(ctx context.Context, req *Request) {
	fields := map[string]interface{}{
		"request_id": req.ID.Hex(),
		"key":        req.ProofDocument.Key,
	}

	if s.proofs == nil {
		logger.BestEffortFailure(ctx, storage.ErrNotConfigured, "proof deletion skipped", fields)
		return
	}
	if err := s.proofs.Delete(ctx, req.ProofDocument.Key); err != nil {
		logger.BestEffortFailure(ctx, err, "proof deletion failed", fields)
		return
	}

	if err := s.notifier.Notify(ctx, req.UserID, notifications.TypeVerification,
		"Verification document deleted",
		"The document you uploaded for verification has been permanently deleted.",
	); err != nil {
		logger.BestEffortFailure(ctx, err, "proof deletion notice failed", fields)
	}

	at := s.now()
	if err := s.store.MarkProofDeleted(ctx, req.ID, at); err != nil {
		logger.BestEffortFailure(ctx, err, "proof deletion stamp failed", fields)
		return
	}
	req.ProofDeletedAt = &at
}

func userFields(status Status) bson.M {
	if status == StatusApproved {
		return bson.M{"isVerified": true, "verificationStatus": users.VerificationApproved}
	}
	return bson.M{"isVerified": false, "verificationStatus": users.VerificationRejected}
}

func decisionText(status Status, notes string) (string, string) {
	if status == StatusApproved {
		return "Verification approved", "Your address has been verified. Welcome to the neighbourhood!"
	}
	msg := "Your verification request was not approved."
	if notes != "" {
		msg += " Reason: " + notes
	}
	return "Verification rejected", msg
}

// List returns requests for the admin queue
func (s *Service) List(ctx context.Context, actor *users.User, status Status, page pagination.Cursor) ([]Request, bool, error) {
	if err := access.Check(subject(actor), access.Requirement{Permission: access.PermManageUsers}); err != nil {
		return nil, false, err
	}
	if status != "" && status != StatusPending && !status.Decision() {
		return nil, false, apperrors.Validation("INVALID_STATUS", "Unknown verification status")
	}

	items, hasMore, err := s.store.List(ctx, status, page)
	if err != nil {
		return nil, false, dbError("Failed to list verification requests", err)
	}
	return items, hasMore, nil
}

// ListMine returns the caller's own requests
func (s *Service) ListMine(ctx context.Context, user *users.User, page pagination.Cursor) ([]Request, bool, error) {
	if user == nil {
		return nil, false, apperrors.Authentication("AUTH_REQUIRED", "Authentication required")
	}

	items, hasMore, err := s.store.ListByUser(ctx, user.ID, page)
	if err != nil {
		return nil, false, dbError("Failed to list verification requests", err)
	}
	return items, hasMore, nil
}

func subject(u *users.User) access.Subject {
	if u == nil {
		return nil
	}
	return u
}
