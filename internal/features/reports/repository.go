package reports

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/onthebell/onthebell-api/internal/pkg/pagination"
)

// ErrNotPending is returned when a transition finds the report already closed
var ErrNotPending = errors.New("report is not pending")

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("reports")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "_id", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "reporterId", Value: 1},
				{Key: "contentId", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, report *Report) error {
	now := time.Now()
	report.ID = primitive.NewObjectID()
	report.Status = StatusPending
	report.CreatedAt = now
	report.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, report)
	return err
}

// GetByID returns (nil, nil) when the report does not exist
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Report, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindPending returns the reporter's open report on a piece of content, if any
func (r *Repository) FindPending(ctx context.Context, reporterID primitive.ObjectID, contentType ContentType, contentID primitive.ObjectID) (*Report, error) {
	return r.findOne(ctx, bson.M{
		"reporterId":  reporterID,
		"contentType": contentType,
		"contentId":   contentID,
		"status":      StatusPending,
	})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*Report, error) {
	var report Report
	if err := r.collection.FindOne(ctx, filter).Decode(&report); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// Close moves a pending report to its final status. The status filter makes
// the transition happen at most once.
func (r *Repository) Close(ctx context.Context, id primitive.ObjectID, status Status, action Action, reason string, moderatorID primitive.ObjectID, at time.Time) error {
	set := bson.M{
		"status":           status,
		"moderationAction": action,
		"moderatedAt":      at,
		"moderatedBy":      moderatorID,
		"updatedAt":        at,
	}
	if reason != "" {
		set["moderationReason"] = reason
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

// List returns a page of reports, newest first
func (r *Repository) List(ctx context.Context, f ListFilter, page pagination.Cursor) ([]Report, bool, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ContentType != "" {
		filter["contentType"] = f.ContentType
	}

	filter, opts := page.Apply(filter)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cursor.Close(ctx)

	var out []Report
	if err := cursor.All(ctx, &out); err != nil {
		return nil, false, err
	}

	out, hasMore := pagination.Trim(out, page.Limit)
	return out, hasMore, nil
}

// CountByStatus groups all reports by status
func (r *Repository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status Status `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// BackfillStatus sets status=pending on reports written before the field
// existed
func (r *Repository) BackfillStatus(ctx context.Context) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"status": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"status": StatusPending}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
