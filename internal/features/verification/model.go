package verification

import (
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/pkg/storage"
)

type Method string

const (
	MethodDocument Method = "document"
	MethodPostal   Method = "postal"
	MethodOther    Method = "other"
)

func (m Method) Valid() bool {
	switch m {
	case MethodDocument, MethodPostal, MethodOther:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision reports whether s is a valid outcome for Decide
func (s Status) Decision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is a user's application to have their address verified
type Request struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID  `bson:"userId" json:"userId"`
	Method         Method              `bson:"method" json:"method"`
	Status         Status              `bson:"status" json:"status"`
	ProofDocument  *storage.Object     `bson:"proofDocument,omitempty" json:"proofDocument,omitempty"`
	AdminNotes     string              `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
	DecidedAt      *time.Time          `bson:"decidedAt,omitempty" json:"decidedAt,omitempty"`
	DecidedBy      *primitive.ObjectID `bson:"decidedBy,omitempty" json:"decidedBy,omitempty"`
	ProofDeletedAt *time.Time          `bson:"proofDeletedAt,omitempty" json:"proofDeletedAt,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Service inputs

type SubmitInput struct {
	Method Method
	// Proof is the uploaded document, nil when none was sent
	Proof io.Reader
}

type DecideInput struct {
	RequestID  primitive.ObjectID
	Status     Status
	AdminNotes string
}

// Request DTOs

type DecideRequest struct {
	RequestID  string `json:"requestId" binding:"required,objectid"`
	Status     string `json:"status" binding:"required,oneof=approved rejected"`
	AdminNotes string `json:"adminNotes" binding:"max=1000"`
}

type ListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	Limit  string `form:"limit"`
	Cursor string `form:"cursor"`
}
