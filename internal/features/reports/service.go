package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/features/audit"
	"github.com/onthebell/onthebell-api/internal/features/content"
	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/logger"
	"github.com/onthebell/onthebell-api/internal/pkg/pagination"
	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

type Store interface {
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Report, error)
	FindPending(ctx context.Context, reporterID primitive.ObjectID, contentType ContentType, contentID primitive.ObjectID) (*Report, error)
	Close(ctx context.Context, id primitive.ObjectID, status Status, action Action, reason string, moderatorID primitive.ObjectID, at time.Time) error
	List(ctx context.Context, f ListFilter, page pagination.Cursor) ([]Report, bool, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// ContentStore is the post and comment store moderation acts on
type ContentStore interface {
	Get(ctx context.Context, kind content.Kind, id primitive.ObjectID) (*content.Item, error)
	ApplyModeration(ctx context.Context, kind content.Kind, id primitive.ObjectID, m content.Moderation) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*users.User, error)
}

type Service struct {
	store   Store
	content ContentStore
	users   UserLookup
	audit   audit.Recorder
	now     func() time.Time
}

func NewService(store Store, contentStore ContentStore, userLookup UserLookup, recorder audit.Recorder) *Service {
	return &Service{
		store:   store,
		content: contentStore,
		users:   userLookup,
		audit:   recorder,
		now:     time.Now,
	}
}

func dbError(msg string, err error) error {
	return apperrors.External("DATABASE_ERROR", msg, err)
}

// Create files a pending report from reporter
func (s *Service) Create(ctx context.Context, reporter *users.User, in CreateInput) (*Report, error) {
	if reporter == nil {
		return nil, apperrors.Authentication("AUTH_REQUIRED", "Authentication required")
	}

	if !in.ContentType.Valid() {
		return nil, apperrors.Validation("INVALID_CONTENT_TYPE", "Unknown content type")
	}
	if !in.Reason.Valid() {
		return nil, apperrors.Validation("INVALID_REASON", "Unknown report reason")
	}
	in.CustomReason = strings.TrimSpace(in.CustomReason)
	if in.Reason == ReasonOther && in.CustomReason == "" {
		return nil, apperrors.Validation("CUSTOM_REASON_REQUIRED", "Please describe the reason")
	}

	authorID, err := s.resolveAuthor(ctx, in.ContentType, in.ContentID)
	if err != nil {
		return nil, err
	}
	if in.ContentType != ContentUser && authorID == reporter.ID {
		return nil, apperrors.Validation("SELF_REPORT", "You cannot report your own content")
	}

	existing, err := s.store.FindPending(ctx, reporter.ID, in.ContentType, in.ContentID)
	if err != nil {
		return nil, dbError("Failed to check existing reports", err)
	}
	if existing != nil {
		return nil, apperrors.State("DUPLICATE_REPORT", "You have already reported this content")
	}

	report := &Report{
		ReporterID:      reporter.ID,
		ContentType:     in.ContentType,
		ContentID:       in.ContentID,
		ContentAuthorID: authorID,
		Reason:          in.Reason,
		CustomReason:    in.CustomReason,
		Description:     strings.TrimSpace(in.Description),
	}
	if err := s.store.Create(ctx, report); err != nil {
		return nil, dbError("Failed to create report", err)
	}

	logger.FromContext(ctx).Info().
		Str("report_id", report.ID.Hex()).
		Str("content_type", string(report.ContentType)).
		Str("content_id", report.ContentID.Hex()).
		Msg("report created")

	return report, nil
}

func (s *Service) resolveAuthor(ctx context.Context, ct ContentType, id primitive.ObjectID) (primitive.ObjectID, error) {
	if ct == ContentUser {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return primitive.NilObjectID, dbError("Failed to load user", err)
		}
		if user == nil {
			return primitive.NilObjectID, apperrors.NotFound("CONTENT_NOT_FOUND", "Reported user not found")
		}
		return user.ID, nil
	}

	item, err := s.content.Get(ctx, content.Kind(ct), id)
	if err != nil {
		return primitive.NilObjectID, dbError("Failed to load content", err)
	}
	if item == nil {
		return primitive.NilObjectID, apperrors.NotFound("CONTENT_NOT_FOUND", "Reported content not found")
	}
	return item.AuthorID, nil
}

// Resolve closes a pending report. Hiding or removing the content is best
// effort: the report closes even when the content update fails.
func (s *Service) Resolve(ctx context.Context, actor *users.User, in ResolveInput) (*Report, error) {
	if err := access.Check(subject(actor), access.Requirement{Permission: access.PermManageReports}); err != nil {
		return nil, err
	}

	if !in.Action.Valid() {
		return nil, apperrors.Validation("INVALID_ACTION", "Unknown moderation action")
	}

	report, err := s.store.GetByID(ctx, in.ReportID)
	if err != nil {
		return nil, dbError("Failed to load report", err)
	}
	if report == nil {
		return nil, apperrors.NotFound("REPORT_NOT_FOUND", "Report not found")
	}
	if report.Status != StatusPending {
		return nil, apperrors.State("REPORT_ALREADY_CLOSED", "Report has already been "+string(report.Status))
	}
	if in.Action.TouchesContent() && report.ContentType == ContentUser {
		return nil, apperrors.Validation("INVALID_ACTION", "Use user moderation actions for reported accounts")
	}

	now := s.now()
	status := in.Action.Outcome()
	reason := strings.TrimSpace(in.ModerationReason)
	if err := s.store.Close(ctx, report.ID, status, in.Action, reason, actor.ID, now); err != nil {
		if errors.Is(err, ErrNotPending) {
			return nil, apperrors.State("REPORT_ALREADY_CLOSED", "Report has already been closed")
		}
		return nil, dbError("Failed to update report", err)
	}

	report.Status = status
	report.ModerationAction = in.Action
	report.ModerationReason = reason
	report.ModeratedAt = &now
	report.ModeratedBy = &actor.ID
	report.UpdatedAt = now

	if in.Action.TouchesContent() {
		s.moderateContent(ctx, report, now)
	}

	audit.Log(ctx, s.audit, &audit.Entry{
		ActorID:    actor.ID,
		Action:     "report." + string(in.Action),
		TargetType: "report",
		TargetID:   report.ID,
		Details: map[string]interface{}{
			"status":      string(status),
			"contentType": string(report.ContentType),
			"contentId":   report.ContentID.Hex(),
		},
	})

	return report, nil
}

func (s *Service) moderateContent(ctx context.Context, report *Report, at time.Time) {
	err := s.content.ApplyModeration(ctx, content.Kind(report.ContentType), report.ContentID, content.Moderation{
		Action:      string(report.ModerationAction),
		Reason:      report.ModerationReason,
		ModeratedBy: *report.ModeratedBy,
		ModeratedAt: at,
	})
	if err != nil {
		logger.BestEffortFailure(ctx, err, "content moderation failed", map[string]interface{}{
			"report_id":  report.ID.Hex(),
			"content_id": report.ContentID.Hex(),
			"action":     string(report.ModerationAction),
		})
	}
}

// List returns reports for the moderation queue
func (s *Service) List(ctx context.Context, actor *users.User, f ListFilter, page pagination.Cursor) ([]Report, bool, error) {
	if err := access.Check(subject(actor), access.Requirement{Permission: access.PermManageReports}); err != nil {
		return nil, false, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, false, apperrors.Validation("INVALID_STATUS", "Unknown report status")
	}
	if f.ContentType != "" && !f.ContentType.Valid() {
		return nil, false, apperrors.Validation("INVALID_CONTENT_TYPE", "Unknown content type")
	}

	items, hasMore, err := s.store.List(ctx, f, page)
	if err != nil {
		return nil, false, dbError("Failed to list reports", err)
	}
	return items, hasMore, nil
}

// Stats counts reports per status
func (s *Service) Stats(ctx context.Context, actor *users.User) (*Stats, error) {
	req := access.Requirement{AnyOf: []access.Permission{access.PermViewAnalytics, access.PermManageReports}}
	if err := access.Check(subject(actor), req); err != nil {
		return nil, err
	}

	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, dbError("Failed to count reports", err)
	}

	stats := &Stats{
		Pending:   counts[StatusPending],
		Resolved:  counts[StatusResolved],
		Dismissed: counts[StatusDismissed],
	}
	stats.Total = stats.Pending + stats.Resolved + stats.Dismissed
	return stats, nil
}

// subject avoids handing access a typed nil
func subject(u *users.User) access.Subject {
	if u == nil {
		return nil
	}
	return u
}
