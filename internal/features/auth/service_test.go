package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/jwt"
	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

type fakeStore struct {
	byID map[primitive.ObjectID]*users.User
}

func newFakeStore(us ...*users.User) *fakeStore {
	s := &fakeStore{byID: map[primitive.ObjectID]*users.User{}}
	for _, u := range us {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		s.byID[u.ID] = u
	}
	return s
}

func (s *fakeStore) Create(_ context.Context, u *users.User) error {
	u.ID = primitive.NewObjectID()
	s.byID[u.ID] = u
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id primitive.ObjectID) (*users.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) GetByFirebaseUID(_ context.Context, uid string) (*users.User, error) {
	for _, u := range s.byID {
		if u.FirebaseUID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Update(_ context.Context, id primitive.ObjectID, set bson.M, unset ...string) error {
	u, ok := s.byID[id]
	if !ok {
		return users.ErrNotFound
	}
	if v, ok := set["isSuspended"].(bool); ok {
		u.IsSuspended = v
	}
	for _, f := range unset {
		switch f {
		case "suspensionReason":
			u.SuspensionReason = ""
		case "suspensionExpiresAt":
			u.SuspensionExpiresAt = nil
		}
	}
	return nil
}

type fakeVerifier map[string]*Identity

func (v fakeVerifier) VerifyIDToken(_ context.Context, token string) (*Identity, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func TestSession_CreatesUserOnFirstSignIn(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fakeVerifier{"good": {UID: "fb-1", Email: "sam@example.com"}}, jwt.DefaultConfig("s"))

	session, err := svc.Session(context.Background(), "good")
	require.NoError(t, err)
	require.True(t, session.IsNewUser)
	require.Equal(t, access.RoleUser, session.User.Role)
	require.Equal(t, users.VerificationNone, session.User.VerificationStatus)
	require.Equal(t, "sam", session.User.DisplayName)

	claims, err := jwt.ValidateAccessToken(session.AccessToken, "s")
	require.NoError(t, err)
	require.Equal(t, session.User.ID.Hex(), claims.UserID)

	again, err := svc.Session(context.Background(), "good")
	require.NoError(t, err)
	require.False(t, again.IsNewUser)
	require.Len(t, store.byID, 1)
}

func TestSession_InvalidToken(t *testing.T) {
	svc := NewService(newFakeStore(), fakeVerifier{}, jwt.DefaultConfig("s"))
	_, err := svc.Session(context.Background(), "bad")
	require.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))
}

func TestAuthenticate_LiftsExpiredSuspension(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	u := &users.User{Role: access.RoleUser, IsSuspended: true, SuspensionReason: "spam", SuspensionExpiresAt: &past}
	store := newFakeStore(u)
	cfg := jwt.DefaultConfig("s")
	svc := NewService(store, nil, cfg)

	token, err := jwt.GenerateToken(u.ID.Hex(), "", "user", cfg)
	require.NoError(t, err)

	got, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.False(t, got.IsSuspended)
	require.Nil(t, got.SuspensionExpiresAt)
	require.False(t, store.byID[u.ID].IsSuspended)
	require.Empty(t, store.byID[u.ID].SuspensionReason)
}

func TestAuthenticate_KeepsIndefiniteSuspension(t *testing.T) {
	u := &users.User{Role: access.RoleUser, IsSuspended: true, SuspensionReason: "abuse"}
	store := newFakeStore(u)
	cfg := jwt.DefaultConfig("s")
	svc := NewService(store, nil, cfg)

	token, _ := jwt.GenerateToken(u.ID.Hex(), "", "user", cfg)
	got, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.True(t, got.IsSuspended)
}

func TestAuthenticate_RejectsRefreshTokenAndUnknownUser(t *testing.T) {
	cfg := jwt.DefaultConfig("s")
	svc := NewService(newFakeStore(), nil, cfg)

	refresh, _ := jwt.GenerateRefreshToken(primitive.NewObjectID().Hex(), "", cfg)
	_, err := svc.Authenticate(context.Background(), refresh)
	require.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))

	token, _ := jwt.GenerateToken(primitive.NewObjectID().Hex(), "", "user", cfg)
	_, err = svc.Authenticate(context.Background(), token)
	require.True(t, apperrors.IsKind(err, apperrors.KindAuthentication))
}

func TestRefresh_ReadsRoleFromStore(t *testing.T) {
	u := &users.User{Role: access.RoleModerator}
	cfg := jwt.DefaultConfig("s")
	svc := NewService(newFakeStore(u), nil, cfg)

	refresh, _ := jwt.GenerateRefreshToken(u.ID.Hex(), "", cfg)
	session, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := jwt.ValidateAccessToken(session.AccessToken, "s")
	require.NoError(t, err)
	require.Equal(t, "moderator", claims.Role)
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(NewService(newFakeStore(), nil, jwt.DefaultConfig("s"))))
	r.GET("/protected", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, 401, w.Code)
	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	require.Equal(t, false, body["success"])
	require.Equal(t, float64(401), body["statusCode"])
	require.Equal(t, "Authorization header required", body["message"])
}

func TestRequireActive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	serve := func(u *users.User) int {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if u != nil {
				c.Set("user", u)
			}
		})
		r.POST("/", RequireActive(), func(c *gin.Context) { c.Status(201) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/", nil))
		return w.Code
	}

	require.Equal(t, 401, serve(nil))
	require.Equal(t, 403, serve(&users.User{IsSuspended: true}))
	require.Equal(t, 201, serve(&users.User{}))
}
