package auth

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/access"
	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/jwt"
	"github.com/onthebell/onthebell-api/internal/pkg/logger"
	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

// UserStore is the slice of the users repository auth needs
type UserStore interface {
	Create(ctx context.Context, user *users.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*users.User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*users.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) error
}

type Service struct {
	users    UserStore
	verifier TokenVerifier
	jwtCfg   *jwt.Config
	now      func() time.Time
}

func NewService(store UserStore, verifier TokenVerifier, jwtCfg *jwt.Config) *Service {
	return &Service{
		users:    store,
		verifier: verifier,
		jwtCfg:   jwtCfg,
		now:      time.Now,
	}
}

// Session verifies an ID token, creating the user on first sign in, and
// issues an access/refresh pair
func (s *Service) Session(ctx context.Context, idToken string) (*SessionResponse, error) {
	if s.verifier == nil {
		return nil, apperrors.External("AUTH_PROVIDER_UNAVAILABLE", "Identity provider not configured", nil)
	}

	identity, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, apperrors.Authentication("INVALID_ID_TOKEN", "Invalid identity token")
	}

	user, err := s.users.GetByFirebaseUID(ctx, identity.UID)
	if err != nil {
		return nil, apperrors.External("DATABASE_ERROR", "Failed to load user", err)
	}

	isNew := false
	if user == nil {
		user = &users.User{
			FirebaseUID:        identity.UID,
			Email:              identity.Email,
			DisplayName:        displayNameFor(identity),
			Role:               access.RoleUser,
			VerificationStatus: users.VerificationNone,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperrors.External("DATABASE_ERROR", "Failed to create user", err)
		}
		isNew = true
		logger.FromContext(ctx).Info().Str("user_id", user.ID.Hex()).Msg("user registered")
	} else if err := s.liftExpiredSuspension(ctx, user); err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := jwt.GenerateTokenPair(user.ID.Hex(), user.Email, string(user.Role), s.jwtCfg)
	if err != nil {
		return nil, apperrors.External("TOKEN_ERROR", "Failed to generate token", err)
	}

	return &SessionResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IsNewUser:    isNew,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The role claim is read
// fresh from the store.
func (s *Service) Refresh(ctx context.Context, token string) (*SessionResponse, error) {
	claims, err := jwt.ValidateRefreshToken(token, s.jwtCfg.Secret)
	if err != nil {
		return nil, apperrors.Authentication("INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	}

	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, refreshToken, err := jwt.GenerateTokenPair(user.ID.Hex(), user.Email, string(user.Role), s.jwtCfg)
	if err != nil {
		return nil, apperrors.External("TOKEN_ERROR", "Failed to generate token", err)
	}

	return &SessionResponse{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Authenticate resolves an access token to the current user record. An
// expired timed suspension is lifted here.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*users.User, error) {
	claims, err := jwt.ValidateAccessToken(accessToken, s.jwtCfg.Secret)
	if err != nil {
		return nil, apperrors.Authentication("INVALID_TOKEN", "Invalid or expired token")
	}

	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.liftExpiredSuspension(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) loadUser(ctx context.Context, id string) (*users.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Authentication("INVALID_TOKEN", "Invalid or expired token")
	}

	user, err := s.users.GetByID(ctx, oid)
	if err != nil {
		return nil, apperrors.External("DATABASE_ERROR", "Failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.Authentication("USER_NOT_FOUND", "User not found")
	}
	return user, nil
}

func (s *Service) liftExpiredSuspension(ctx context.Context, user *users.User) error {
	if !user.SuspensionExpired(s.now()) {
		return nil
	}

	err := s.users.Update(ctx, user.ID,
		bson.M{"isSuspended": false},
		"suspensionReason", "suspensionExpiresAt",
	)
	if err != nil {
		return apperrors.External("DATABASE_ERROR", "Failed to update user", err)
	}

	user.IsSuspended = false
	user.SuspensionReason = ""
	user.SuspensionExpiresAt = nil
	logger.FromContext(ctx).Info().Str("user_id", user.ID.Hex()).Msg("suspension expired")
	return nil
}

func displayNameFor(id *Identity) string {
	if name := strings.TrimSpace(id.Name); name != "" {
		return name
	}
	if at := strings.Index(id.Email, "@"); at > 0 {
		return id.Email[:at]
	}
	return "Neighbour"
}
