package notifications

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/onthebell/onthebell-api/internal/pkg/pagination"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("notifications")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "_id", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "isRead", Value: 1},
			},
		},
	})

	return &Repository{collection: collection}
}

// Create inserts a notification, assigning its ID and timestamp
func (r *Repository) Create(ctx context.Context, n *Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	n.IsRead = false

	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// GetByID retrieves a notification. A missing one is (nil, nil).
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Notification, error) {
	var n Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// ListForUser returns a page of a user's notifications, newest first
func (r *Repository) ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page pagination.Cursor) ([]Notification, bool, error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["isRead"] = false
	}

	filter, opts := page.Apply(filter)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cursor.Close(ctx)

	var out []Notification
	if err := cursor.All(ctx, &out); err != nil {
		return nil, false, err
	}

	out, hasMore := pagination.Trim(out, page.Limit)
	return out, hasMore, nil
}

// CountUnread counts unread notifications for a user
func (r *Repository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"userId": userID,
		"isRead": false,
	})
}

// MarkAsRead marks a notification as read
func (r *Repository) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("notification not found")
	}
	return nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *Repository) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
