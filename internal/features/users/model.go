package users

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/access"
)

// VerificationStatus tracks a user's address verification
type VerificationStatus string

const (
	VerificationNone     VerificationStatus = "none"
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// Preferences controls which notifications a user sees. Absent entries
// default to shown.
type Preferences struct {
	NewPosts map[string]bool `bson:"newPosts,omitempty" json:"newPosts,omitempty"`
	Likes    *bool           `bson:"likes,omitempty" json:"likes,omitempty"`
	Comments *bool           `bson:"comments,omitempty" json:"comments,omitempty"`
	Follows  *bool           `bson:"follows,omitempty" json:"follows,omitempty"`
}

// User represents a registered community member
type User struct {
	ID                      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FirebaseUID             string              `bson:"firebaseUid" json:"-"`
	Email                   string              `bson:"email" json:"email"`
	DisplayName             string              `bson:"displayName" json:"displayName"`
	Role                    access.Role         `bson:"role" json:"role"`
	Permissions             []access.Permission `bson:"permissions,omitempty" json:"permissions,omitempty"`
	IsVerified              bool                `bson:"isVerified" json:"isVerified"`
	VerificationStatus      VerificationStatus  `bson:"verificationStatus" json:"verificationStatus"`
	IsSuspended             bool                `bson:"isSuspended" json:"isSuspended"`
	SuspensionReason        string              `bson:"suspensionReason,omitempty" json:"suspensionReason,omitempty"`
	SuspensionExpiresAt     *time.Time          `bson:"suspensionExpiresAt,omitempty" json:"suspensionExpiresAt,omitempty"`
	NotificationPreferences *Preferences        `bson:"notificationPreferences,omitempty" json:"notificationPreferences,omitempty"`
	CreatedAt               time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// AccessRole implements access.Subject
func (u *User) AccessRole() access.Role {
	if u == nil {
		return ""
	}
	return u.Role
}

// ExtraPermissions implements access.Subject
func (u *User) ExtraPermissions() []access.Permission {
	if u == nil {
		return nil
	}
	return u.Permissions
}

// SuspensionExpired reports whether a timed suspension has run out at now
func (u *User) SuspensionExpired(now time.Time) bool {
	return u.IsSuspended && u.SuspensionExpiresAt != nil && !now.Before(*u.SuspensionExpiresAt)
}

// PublicProfile is the view of a user other members may see
type PublicProfile struct {
	ID          primitive.ObjectID `json:"id"`
	DisplayName string             `json:"displayName"`
	Role        access.Role        `json:"role"`
	IsVerified  bool               `json:"isVerified"`
	JoinedAt    time.Time          `json:"joinedAt"`
}

// ToPublic returns the fields safe for public display
func (u *User) ToPublic() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
		JoinedAt:    u.CreatedAt,
	}
}

// UpdateProfileRequest represents the payload for updating one's own profile
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required,min=2,max=50"`
}
