package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/features/users"
	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

// memoryUsers applies $set and $unset like the Mongo repository
type memoryUsers struct {
	docs   map[primitive.ObjectID]bson.M
	writes int
}

func newMemoryUsers(us ...*users.User) *memoryUsers {
	m := &memoryUsers{docs: map[primitive.ObjectID]bson.M{}}
	for _, u := range us {
		raw, _ := bson.Marshal(u)
		var doc bson.M
		_ = bson.Unmarshal(raw, &doc)
		m.docs[u.ID] = doc
	}
	return m
}

func (m *memoryUsers) GetByID(_ context.Context, id primitive.ObjectID) (*users.User, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var u users.User
	return &u, bson.Unmarshal(raw, &u)
}

func (m *memoryUsers) Update(_ context.Context, id primitive.ObjectID, set bson.M, unset ...string) error {
	m.writes++
	doc, ok := m.docs[id]
	if !ok {
		return users.ErrNotFound
	}
	for k, v := range set {
		doc[k] = v
	}
	for _, k := range unset {
		delete(doc, k)
	}
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.writes++
	if _, ok := m.docs[id]; !ok {
		return users.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

type notices struct{ titles []string }

func (n *notices) Notify(_ context.Context, _ primitive.ObjectID, _, title, _ string) error {
	n.titles = append(n.titles, title)
	return nil
}

func newUser(role access.Role) *users.User {
	return &users.User{
		ID:                 primitive.NewObjectID(),
		Role:               role,
		VerificationStatus: users.VerificationNone,
	}
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperrors.KindOf(err), err.Error())
}

func TestSuspend_SevenDaysExact(t *testing.T) {
	admin, member := newUser(access.RoleAdmin), newUser(access.RoleUser)
	store := newMemoryUsers(admin, member)
	svc := NewService(store, &notices{}, nil)
	now := time.Date(2024, 3, 28, 15, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return now }

	got, err := svc.Suspend(context.Background(), admin, member.ID, "spamming", 7)
	require.NoError(t, err)

	want := time.Date(2024, 4, 4, 15, 4, 5, 0, time.UTC)
	require.Equal(t, want, *got.SuspensionExpiresAt)
	require.Equal(t, want, store.docs[member.ID]["suspensionExpiresAt"])
	require.Equal(t, true, store.docs[member.ID]["isSuspended"])
	require.Equal(t, access.RoleUser, got.Role)
}

func TestSuspend_IndefiniteClearsExpiry(t *testing.T) {
	admin, member := newUser(access.RoleAdmin), newUser(access.RoleUser)
	expires := time.Now().Add(time.Hour)
	member.IsSuspended = true
	member.SuspensionExpiresAt = &expires
	store := newMemoryUsers(admin, member)
	svc := NewService(store, nil, nil)

	got, err := svc.Suspend(context.Background(), admin, member.ID, "repeat offender", 0)
	require.NoError(t, err)
	require.Nil(t, got.SuspensionExpiresAt)
	require.NotContains(t, store.docs[member.ID], "suspensionExpiresAt")
}

func TestSuspendUnsuspendRoundTrip(t *testing.T) {
	admin, member := newUser(access.RoleAdmin), newUser(access.RoleUser)
	store := newMemoryUsers(admin, member)
	n := &notices{}
	svc := NewService(store, n, nil)
	ctx := context.Background()

	_, err := svc.Suspend(ctx, admin, member.ID, "spamming", 3)
	require.NoError(t, err)
	_, err = svc.Unsuspend(ctx, admin, member.ID)
	require.NoError(t, err)

	after, err := store.GetByID(ctx, member.ID)
	require.NoError(t, err)
	require.False(t, after.IsSuspended)
	require.Empty(t, after.SuspensionReason)
	require.Nil(t, after.SuspensionExpiresAt)
	require.Equal(t, member.Role, after.Role)
	require.Equal(t, member.IsVerified, after.IsVerified)
	require.Equal(t, []string{"Account suspended", "Account restored"}, n.titles)
}

func TestAuthorizationBeforeMutation(t *testing.T) {
	admin, moderator, member, other := newUser(access.RoleAdmin), newUser(access.RoleModerator), newUser(access.RoleUser), newUser(access.RoleAdmin)
	store := newMemoryUsers(admin, moderator, member, other)
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	// moderators lack manage_users
	_, err := svc.Suspend(ctx, moderator, member.ID, "spam", 1)
	requireKind(t, err, apperrors.KindAuthorization)

	// admins cannot act on peers
	_, err = svc.Suspend(ctx, admin, other.ID, "spam", 1)
	requireKind(t, err, apperrors.KindAuthorization)

	err = svc.Delete(ctx, member, admin.ID)
	requireKind(t, err, apperrors.KindAuthorization)

	err = svc.Delete(ctx, nil, member.ID)
	requireKind(t, err, apperrors.KindAuthentication)

	_, err = svc.Verify(ctx, admin, admin.ID)
	requireKind(t, err, apperrors.KindAuthorization)

	_, err = svc.Unsuspend(ctx, admin, primitive.NewObjectID())
	requireKind(t, err, apperrors.KindNotFound)

	require.Zero(t, store.writes)
}

func TestUpdateRole(t *testing.T) {
	admin, super, member := newUser(access.RoleAdmin), newUser(access.RoleSuperAdmin), newUser(access.RoleUser)
	store := newMemoryUsers(admin, super, member)
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	moderator := access.RoleModerator
	got, err := svc.UpdateRole(ctx, admin, member.ID, RoleChange{Role: &moderator})
	require.NoError(t, err)
	require.Equal(t, access.RoleModerator, got.Role)
	require.Nil(t, got.Permissions)

	adminRole := access.RoleAdmin
	_, err = svc.UpdateRole(ctx, admin, member.ID, RoleChange{Role: &adminRole})
	requireKind(t, err, apperrors.KindAuthorization)

	_, err = svc.UpdateRole(ctx, super, member.ID, RoleChange{Role: &adminRole})
	require.NoError(t, err)

	perms := []access.Permission{access.PermManageModerators}
	_, err = svc.UpdateRole(ctx, super, member.ID, RoleChange{Permissions: &perms})
	require.NoError(t, err)
	after, _ := store.GetByID(ctx, member.ID)
	require.Equal(t, access.RoleAdmin, after.Role)
	require.Equal(t, perms, after.Permissions)

	bogus := []access.Permission{"launch_rockets"}
	_, err = svc.UpdateRole(ctx, super, member.ID, RoleChange{Permissions: &bogus})
	requireKind(t, err, apperrors.KindValidation)

	_, err = svc.UpdateRole(ctx, super, member.ID, RoleChange{})
	requireKind(t, err, apperrors.KindValidation)
}

func TestVerifyUnverifyAndDelete(t *testing.T) {
	admin, member := newUser(access.RoleAdmin), newUser(access.RoleUser)
	store := newMemoryUsers(admin, member)
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	got, err := svc.Verify(ctx, admin, member.ID)
	require.NoError(t, err)
	require.True(t, got.IsVerified)
	require.Equal(t, users.VerificationApproved, got.VerificationStatus)

	got, err = svc.Unverify(ctx, admin, member.ID)
	require.NoError(t, err)
	require.False(t, got.IsVerified)
	require.Equal(t, users.VerificationNone, got.VerificationStatus)

	require.NoError(t, svc.Delete(ctx, admin, member.ID))
	require.NotContains(t, store.docs, member.ID)

	err = svc.Delete(ctx, admin, member.ID)
	requireKind(t, err, apperrors.KindNotFound)
}
