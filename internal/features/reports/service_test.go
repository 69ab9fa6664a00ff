package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/features/content"
	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/pagination"
	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

type memoryStore struct {
	reports map[primitive.ObjectID]*Report
	closes  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reports: map[primitive.ObjectID]*Report{}}
}

func (m *memoryStore) Create(_ context.Context, r *Report) error {
	r.ID = primitive.NewObjectID()
	r.Status = StatusPending
	r.CreatedAt = time.Now()
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id primitive.ObjectID) (*Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memoryStore) FindPending(_ context.Context, reporterID primitive.ObjectID, ct ContentType, contentID primitive.ObjectID) (*Report, error) {
	for _, r := range m.reports {
		if r.ReporterID == reporterID && r.ContentType == ct && r.ContentID == contentID && r.Status == StatusPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) Close(_ context.Context, id primitive.ObjectID, status Status, action Action, reason string, by primitive.ObjectID, at time.Time) error {
	m.closes++
	r, ok := m.reports[id]
	if !ok || r.Status != StatusPending {
		return ErrNotPending
	}
	r.Status = status
	r.ModerationAction = action
	r.ModerationReason = reason
	r.ModeratedBy = &by
	r.ModeratedAt = &at
	return nil
}

func (m *memoryStore) List(context.Context, ListFilter, pagination.Cursor) ([]Report, bool, error) {
	out := make([]Report, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, *r)
	}
	return out, false, nil
}

func (m *memoryStore) CountByStatus(context.Context) (map[Status]int64, error) {
	counts := map[Status]int64{}
	for _, r := range m.reports {
		counts[r.Status]++
	}
	return counts, nil
}

type memoryContent struct {
	items    map[primitive.ObjectID]*content.Item
	applied  []content.Moderation
	applyErr error
}

func (m *memoryContent) Get(_ context.Context, _ content.Kind, id primitive.ObjectID) (*content.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return item, nil
}

func (m *memoryContent) ApplyModeration(_ context.Context, _ content.Kind, _ primitive.ObjectID, mod content.Moderation) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	m.applied = append(m.applied, mod)
	return nil
}

type userMap map[primitive.ObjectID]*users.User

func (u userMap) GetByID(_ context.Context, id primitive.ObjectID) (*users.User, error) {
	return u[id], nil
}

type fixture struct {
	svc      *Service
	store    *memoryStore
	content  *memoryContent
	reporter *users.User
	author   *users.User
	mod      *users.User
	postID   primitive.ObjectID
}

func newFixture() *fixture {
	f := &fixture{
		store:    newMemoryStore(),
		reporter: &users.User{ID: primitive.NewObjectID(), Role: access.RoleUser},
		author:   &users.User{ID: primitive.NewObjectID(), Role: access.RoleUser},
		mod:      &users.User{ID: primitive.NewObjectID(), Role: access.RoleModerator},
		postID:   primitive.NewObjectID(),
	}
	f.content = &memoryContent{items: map[primitive.ObjectID]*content.Item{
		f.postID: {ID: f.postID, AuthorID: f.author.ID},
	}}
	f.svc = NewService(f.store, f.content, userMap{
		f.reporter.ID: f.reporter,
		f.author.ID:   f.author,
	}, nil)
	return f
}

func (f *fixture) pendingReport(t *testing.T) *Report {
	t.Helper()
	r, err := f.svc.Create(context.Background(), f.reporter, CreateInput{
		ContentType: ContentPost,
		ContentID:   f.postID,
		Reason:      ReasonSpam,
	})
	require.NoError(t, err)
	return r
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperrors.KindOf(err), err.Error())
}

func TestCreate_StoresPendingWithAuthor(t *testing.T) {
	f := newFixture()

	r := f.pendingReport(t)

	require.Equal(t, StatusPending, r.Status)
	require.Equal(t, f.author.ID, r.ContentAuthorID)
	require.Equal(t, f.reporter.ID, r.ReporterID)
}

func TestCreate_SelfReportRejected(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.author, CreateInput{
		ContentType: ContentPost,
		ContentID:   f.postID,
		Reason:      ReasonSpam,
	})
	requireKind(t, err, apperrors.KindValidation)
	require.Empty(t, f.store.reports)
}

func TestCreate_UserReportAllowsAnyReporter(t *testing.T) {
	f := newFixture()

	r, err := f.svc.Create(context.Background(), f.reporter, CreateInput{
		ContentType: ContentUser,
		ContentID:   f.author.ID,
		Reason:      ReasonHarassment,
	})
	require.NoError(t, err)
	require.Equal(t, f.author.ID, r.ContentAuthorID)
}

func TestCreate_Failures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.reporter, CreateInput{ContentType: ContentPost, ContentID: primitive.NewObjectID(), Reason: ReasonSpam})
	requireKind(t, err, apperrors.KindNotFound)

	_, err = f.svc.Create(ctx, f.reporter, CreateInput{ContentType: ContentUser, ContentID: primitive.NewObjectID(), Reason: ReasonSpam})
	requireKind(t, err, apperrors.KindNotFound)

	_, err = f.svc.Create(ctx, f.reporter, CreateInput{ContentType: ContentPost, ContentID: f.postID, Reason: ReasonOther, CustomReason: "  "})
	requireKind(t, err, apperrors.KindValidation)

	_, err = f.svc.Create(ctx, f.reporter, CreateInput{ContentType: "event", ContentID: f.postID, Reason: ReasonSpam})
	requireKind(t, err, apperrors.KindValidation)

	_, err = f.svc.Create(ctx, nil, CreateInput{ContentType: ContentPost, ContentID: f.postID, Reason: ReasonSpam})
	requireKind(t, err, apperrors.KindAuthentication)
}

func TestCreate_DuplicatePendingRejected(t *testing.T) {
	f := newFixture()
	f.pendingReport(t)

	_, err := f.svc.Create(context.Background(), f.reporter, CreateInput{
		ContentType: ContentPost,
		ContentID:   f.postID,
		Reason:      ReasonScam,
	})
	requireKind(t, err, apperrors.KindState)
}

func TestResolve_RejectDismisses(t *testing.T) {
	f := newFixture()
	r := f.pendingReport(t)

	got, err := f.svc.Resolve(context.Background(), f.mod, ResolveInput{ReportID: r.ID, Action: ActionReject})
	require.NoError(t, err)
	require.Equal(t, StatusDismissed, got.Status)
	require.Equal(t, StatusDismissed, f.store.reports[r.ID].Status)
	require.Empty(t, f.content.applied)
}

func TestResolve_HideStampsContent(t *testing.T) {
	f := newFixture()
	r := f.pendingReport(t)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	got, err := f.svc.Resolve(context.Background(), f.mod, ResolveInput{
		ReportID:         r.ID,
		Action:           ActionContentHidden,
		ModerationReason: "spam link",
	})
	require.NoError(t, err)
	require.Equal(t, StatusResolved, got.Status)
	require.Equal(t, now, *got.ModeratedAt)
	require.Equal(t, f.mod.ID, *got.ModeratedBy)

	require.Len(t, f.content.applied, 1)
	require.Equal(t, content.Moderation{
		Action:      content.ActionHide,
		Reason:      "spam link",
		ModeratedBy: f.mod.ID,
		ModeratedAt: now,
	}, f.content.applied[0])
}

func TestResolve_ContentFailureStillCommits(t *testing.T) {
	f := newFixture()
	r := f.pendingReport(t)
	f.content.applyErr = content.ErrNotFound

	got, err := f.svc.Resolve(context.Background(), f.mod, ResolveInput{ReportID: r.ID, Action: ActionContentRemoved})
	require.NoError(t, err)
	require.Equal(t, StatusResolved, got.Status)
	require.Equal(t, StatusResolved, f.store.reports[r.ID].Status)
}

func TestResolve_SecondTransitionIsStateError(t *testing.T) {
	f := newFixture()
	r := f.pendingReport(t)
	ctx := context.Background()

	_, err := f.svc.Resolve(ctx, f.mod, ResolveInput{ReportID: r.ID, Action: ActionApprove})
	require.NoError(t, err)

	_, err = f.svc.Resolve(ctx, f.mod, ResolveInput{ReportID: r.ID, Action: ActionReject})
	requireKind(t, err, apperrors.KindState)
	require.Equal(t, StatusResolved, f.store.reports[r.ID].Status)
}

func TestResolve_AuthorizationBeforeLookup(t *testing.T) {
	f := newFixture()
	r := f.pendingReport(t)
	ctx := context.Background()

	_, err := f.svc.Resolve(ctx, f.reporter, ResolveInput{ReportID: r.ID, Action: ActionApprove})
	requireKind(t, err, apperrors.KindAuthorization)

	_, err = f.svc.Resolve(ctx, nil, ResolveInput{ReportID: r.ID, Action: ActionApprove})
	requireKind(t, err, apperrors.KindAuthentication)

	require.Zero(t, f.store.closes)
	require.Equal(t, StatusPending, f.store.reports[r.ID].Status)
}

func TestResolve_NotFoundAndUserContentAction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Resolve(ctx, f.mod, ResolveInput{ReportID: primitive.NewObjectID(), Action: ActionApprove})
	requireKind(t, err, apperrors.KindNotFound)

	r, err := f.svc.Create(ctx, f.reporter, CreateInput{ContentType: ContentUser, ContentID: f.author.ID, Reason: ReasonScam})
	require.NoError(t, err)

	_, err = f.svc.Resolve(ctx, f.mod, ResolveInput{ReportID: r.ID, Action: ActionContentHidden})
	requireKind(t, err, apperrors.KindValidation)
	require.Equal(t, StatusPending, f.store.reports[r.ID].Status)
}

func TestList_RequiresManageReports(t *testing.T) {
	f := newFixture()
	f.pendingReport(t)
	ctx := context.Background()

	_, _, err := f.svc.List(ctx, f.reporter, ListFilter{}, pagination.Cursor{Limit: 20})
	requireKind(t, err, apperrors.KindAuthorization)

	items, hasMore, err := f.svc.List(ctx, f.mod, ListFilter{Status: StatusPending}, pagination.Cursor{Limit: 20})
	require.NoError(t, err)
	require.False(t, hasMore)
	require.Len(t, items, 1)

	_, _, err = f.svc.List(ctx, f.mod, ListFilter{Status: "archived"}, pagination.Cursor{Limit: 20})
	requireKind(t, err, apperrors.KindValidation)
}

func TestStats(t *testing.T) {
	f := newFixture()
	r := f.pendingReport(t)
	ctx := context.Background()
	_, err := f.svc.Resolve(ctx, f.mod, ResolveInput{ReportID: r.ID, Action: ActionReject})
	require.NoError(t, err)
	f.pendingReport(t)

	stats, err := f.svc.Stats(ctx, f.mod)
	require.NoError(t, err)
	require.Equal(t, &Stats{Pending: 1, Dismissed: 1, Total: 2}, stats)

	_, err = f.svc.Stats(ctx, f.reporter)
	requireKind(t, err, apperrors.KindAuthorization)
}
