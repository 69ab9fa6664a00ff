package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("content not found")
	ErrUnknownKind   = errors.New("unknown content kind")
	ErrUnknownAction = errors.New("unknown moderation action")
)

// Repository reads and moderates posts and comments
type Repository struct {
	collections map[Kind]*mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		collections: map[Kind]*mongo.Collection{
			KindPost:    db.Collection("posts"),
			KindComment: db.Collection("comments"),
		},
	}
}

func (r *Repository) collection(kind Kind) (*mongo.Collection, error) {
	coll, ok := r.collections[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return coll, nil
}

// Get loads the moderation view of a content record. A missing record is
// (nil, nil).
func (r *Repository) Get(ctx context.Context, kind Kind, id primitive.ObjectID) (*Item, error) {
	coll, err := r.collection(kind)
	if err != nil {
		return nil, err
	}

	opts := options.FindOne().SetProjection(bson.M{
		"authorId":   1,
		"isHidden":   1,
		"isDeleted":  1,
		"moderation": 1,
	})

	var item Item
	if err := coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ApplyModeration hides or removes a content record and stamps the
// moderation metadata
func (r *Repository) ApplyModeration(ctx context.Context, kind Kind, id primitive.ObjectID, m Moderation) error {
	coll, err := r.collection(kind)
	if err != nil {
		return err
	}

	update, err := moderationUpdate(m)
	if err != nil {
		return err
	}

	result, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func moderationUpdate(m Moderation) (bson.M, error) {
	if m.ModeratedAt.IsZero() {
		m.ModeratedAt = time.Now()
	}

	set := bson.M{
		"moderation": m,
		"updatedAt":  m.ModeratedAt,
	}
	switch m.Action {
	case ActionHide:
		set["isHidden"] = true
	case ActionRemove:
		set["isDeleted"] = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, m.Action)
	}
	return bson.M{"$set": set}, nil
}
