package reports

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContentType string

const (
	ContentPost    ContentType = "post"
	ContentComment ContentType = "comment"
	ContentUser    ContentType = "user"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentPost, ContentComment, ContentUser:
		return true
	}
	return false
}

type Reason string

const (
	ReasonSpam           Reason = "spam"
	ReasonHarassment     Reason = "harassment"
	ReasonInappropriate  Reason = "inappropriate"
	ReasonMisinformation Reason = "misinformation"
	ReasonScam           Reason = "scam"
	ReasonOther          Reason = "other"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonHarassment, ReasonInappropriate, ReasonMisinformation, ReasonScam, ReasonOther:
		return true
	}
	return false
}

// Status only moves forward: pending to resolved or dismissed
type Status string

const (
	StatusPending   Status = "pending"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

type Action string

const (
	ActionApprove        Action = "approve"
	ActionContentHidden  Action = "content_hidden"
	ActionContentRemoved Action = "content_removed"
	ActionReject         Action = "reject"
)

func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionContentHidden, ActionContentRemoved, ActionReject:
		return true
	}
	return false
}

// TouchesContent reports whether the action mutates the reported content
func (a Action) TouchesContent() bool {
	return a == ActionContentHidden || a == ActionContentRemoved
}

// Outcome is the status a report ends in after a
func (a Action) Outcome() Status {
	if a == ActionReject {
		return StatusDismissed
	}
	return StatusResolved
}

// Report is a user's complaint about a post, comment or account
type Report struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ReporterID       primitive.ObjectID  `bson:"reporterId" json:"reporterId"`
	ContentType      ContentType         `bson:"contentType" json:"contentType"`
	ContentID        primitive.ObjectID  `bson:"contentId" json:"contentId"`
	ContentAuthorID  primitive.ObjectID  `bson:"contentAuthorId" json:"contentAuthorId"`
	Reason           Reason              `bson:"reason" json:"reason"`
	CustomReason     string              `bson:"customReason,omitempty" json:"customReason,omitempty"`
	Description      string              `bson:"description,omitempty" json:"description,omitempty"`
	Status           Status              `bson:"status" json:"status"`
	ModerationAction Action              `bson:"moderationAction,omitempty" json:"moderationAction,omitempty"`
	ModerationReason string              `bson:"moderationReason,omitempty" json:"moderationReason,omitempty"`
	ModeratedAt      *time.Time          `bson:"moderatedAt,omitempty" json:"moderatedAt,omitempty"`
	ModeratedBy      *primitive.ObjectID `bson:"moderatedBy,omitempty" json:"moderatedBy,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Service inputs

type CreateInput struct {
	ContentType  ContentType
	ContentID    primitive.ObjectID
	Reason       Reason
	CustomReason string
	Description  string
}

type ResolveInput struct {
	ReportID         primitive.ObjectID
	Action           Action
	ModerationReason string
}

type ListFilter struct {
	Status      Status
	ContentType ContentType
}

// Request DTOs

type CreateReportRequest struct {
	ContentType  string `json:"contentType" binding:"required,oneof=post comment user"`
	ContentID    string `json:"contentId" binding:"required,objectid"`
	Reason       string `json:"reason" binding:"required,report_reason"`
	CustomReason string `json:"customReason" binding:"max=200"`
	Description  string `json:"description" binding:"max=1000"`
}

type ResolveReportRequest struct {
	ReportID         string `json:"reportId" binding:"required,objectid"`
	Action           string `json:"action" binding:"required,oneof=approve content_hidden content_removed reject"`
	ModerationReason string `json:"moderationReason" binding:"max=500"`
}

type ListReportsQuery struct {
	Status      string `form:"status" binding:"omitempty,oneof=pending resolved dismissed"`
	ContentType string `form:"contentType" binding:"omitempty,oneof=post comment user"`
	Limit       string `form:"limit"`
	Cursor      string `form:"cursor"`
}

// Response DTOs

type ListResponse struct {
	Reports []Report `json:"reports"`
	HasMore bool     `json:"hasMore"`
	LastID  string   `json:"lastId,omitempty"`
}

type Stats struct {
	Pending   int64 `json:"pending"`
	Resolved  int64 `json:"resolved"`
	Dismissed int64 `json:"dismissed"`
	Total     int64 `json:"total"`
}
