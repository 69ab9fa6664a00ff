package verification

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/onthebell/onthebell-api/internal/pkg/pagination"
)

// ErrNotPending is returned when a decision finds the request already decided
var ErrNotPending = errors.New("verification request is not pending")

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("verification_requests")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "_id", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "_id", Value: -1},
			},
		},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, req *Request) error {
	now := time.Now()
	req.ID = primitive.NewObjectID()
	req.Status = StatusPending
	req.CreatedAt = now
	req.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, req)
	return err
}

// GetByID returns (nil, nil) when the request does not exist
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Request, error) {
	var req Request
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// HasPending reports whether the user has an undecided request
func (r *Repository) HasPending(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"userId": userID, "status": StatusPending},
		options.Count().SetLimit(1),
	)
	return n > 0, err
}

// Decide records the outcome of a pending request
func (r *Repository) Decide(ctx context.Context, id primitive.ObjectID, status Status, notes string, adminID primitive.ObjectID, at time.Time) error {
	set := bson.M{
		"status":    status,
		"decidedAt": at,
		"decidedBy": adminID,
		"updatedAt": at,
	}
	if notes != "" {
		set["adminNotes"] = notes
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *Repository) MarkProofDeleted(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"proofDeletedAt": at, "updatedAt": at}},
	)
	return err
}

// List returns a page of requests, newest first
func (r *Repository) List(ctx context.Context, status Status, page pagination.Cursor) ([]Request, bool, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter, page)
}

// ListByUser returns a page of one user's requests, newest first
func (r *Repository) ListByUser(ctx context.Context, userID primitive.ObjectID, page pagination.Cursor) ([]Request, bool, error) {
	return r.find(ctx, bson.M{"userId": userID}, page)
}

func (r *Repository) find(ctx context.Context, filter bson.M, page pagination.Cursor) ([]Request, bool, error) {
	filter, opts := page.Apply(filter)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cursor.Close(ctx)

	var out []Request
	if err := cursor.All(ctx, &out); err != nil {
		return nil, false, err
	}

	out, hasMore := pagination.Trim(out, page.Limit)
	return out, hasMore, nil
}
