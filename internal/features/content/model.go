package content

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind names a moderatable content collection
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// Moderation actions that touch a content record
const (
	ActionHide   = "content_hidden"
	ActionRemove = "content_removed"
)

// Moderation is the metadata stamped on content by a moderator
type Moderation struct {
	Action      string             `bson:"action" json:"action"`
	Reason      string             `bson:"reason,omitempty" json:"reason,omitempty"`
	ModeratedBy primitive.ObjectID `bson:"moderatedBy" json:"moderatedBy"`
	ModeratedAt time.Time          `bson:"moderatedAt" json:"moderatedAt"`
}

// Item is the part of a post or comment moderation reads and writes. Other
// fields belong to the content services and are left untouched.
type Item struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID   primitive.ObjectID `bson:"authorId" json:"authorId"`
	IsHidden   bool               `bson:"isHidden" json:"isHidden"`
	IsDeleted  bool               `bson:"isDeleted" json:"isDeleted"`
	Moderation *Moderation        `bson:"moderation,omitempty" json:"moderation,omitempty"`
}
