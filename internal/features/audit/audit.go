package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/onthebell/onthebell-api/internal/pkg/logger"
)

// Entry is one admin action in the audit trail
type Entry struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	ActorID    primitive.ObjectID     `bson:"actorId" json:"actorId"`
	Action     string                 `bson:"action" json:"action"`
	TargetType string                 `bson:"targetType" json:"targetType"`
	TargetID   primitive.ObjectID     `bson:"targetId" json:"targetId"`
	Details    map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
}

// Recorder persists audit entries
type Recorder interface {
	Record(ctx context.Context, e *Entry) error
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("audit_logs")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "actorId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "targetId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Record(ctx context.Context, e *Entry) error {
	e.ID = primitive.NewObjectID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, e)
	return err
}

// Log records e without failing the caller. A nil recorder is a no-op.
func Log(ctx context.Context, rec Recorder, e *Entry) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, e); err != nil {
		logger.BestEffortFailure(ctx, err, "audit record failed", map[string]interface{}{
			"action":    e.Action,
			"actor_id":  e.ActorID.Hex(),
			"target_id": e.TargetID.Hex(),
		})
	}
}
