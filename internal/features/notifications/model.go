package notifications

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/users"
)

// Notification type constants
const (
	TypeNewPost      = "new_post"
	TypeLike         = "like"
	TypeComment      = "comment"
	TypeFollow       = "follow"
	TypeInfo         = "info"
	TypeVerification = "verification"
	TypeModeration   = "moderation"
)

// Notification represents a user notification. Only IsRead changes after
// creation.
type Notification struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	Type         string              `bson:"type" json:"type"`
	Title        string              `bson:"title" json:"title"`
	Message      string              `bson:"message" json:"message"`
	PostCategory string              `bson:"postCategory,omitempty" json:"postCategory,omitempty"`
	ResourceType string              `bson:"resourceType,omitempty" json:"resourceType,omitempty"`
	ResourceID   *primitive.ObjectID `bson:"resourceId,omitempty" json:"resourceId,omitempty"`
	IsRead       bool                `bson:"isRead" json:"isRead"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}

// Request DTOs

type ListQuery struct {
	Limit      string `form:"limit"`
	Cursor     string `form:"cursor"`
	UnreadOnly bool   `form:"unreadOnly"`
}

// PreferencesRequest replaces the caller's notification preferences
type PreferencesRequest struct {
	NewPosts map[string]bool `json:"newPosts"`
	Likes    *bool           `json:"likes"`
	Comments *bool           `json:"comments"`
	Follows  *bool           `json:"follows"`
}

func (r PreferencesRequest) toPreferences() *users.Preferences {
	return &users.Preferences{
		NewPosts: r.NewPosts,
		Likes:    r.Likes,
		Comments: r.Comments,
		Follows:  r.Follows,
	}
}

// Response DTOs

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

type MarkReadResponse struct {
	ID     primitive.ObjectID `json:"id"`
	IsRead bool               `json:"isRead"`
}

type MarkAllReadResponse struct {
	MarkedCount int64 `json:"markedCount"`
}
