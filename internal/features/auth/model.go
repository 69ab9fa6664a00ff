package auth

import (
	"github.com/onthebell/onthebell-api/internal/features/users"
)

// SessionRequest exchanges an identity provider token for API tokens
type SessionRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// RefreshRequest represents the payload for refreshing tokens
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// SessionResponse represents the response after successful authentication
type SessionResponse struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	IsNewUser    bool        `json:"isNewUser"`
}
