package users

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

// ErrNotFound is returned by writes that match no user
var ErrNotFound = errors.New("user not found")

// Repository handles database interactions for users
type Repository struct {
	collection *mongo.Collection
}

// NewRepository initializes the repository and creates necessary indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("users")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "firebaseUid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
	})

	return &Repository{collection: collection}
}

// Create inserts a new user
func (r *Repository) Create(ctx context.Context, user *User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user duplicate key error: %w", err)
		}
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// GetByID finds a user by id. A missing user is (nil, nil).
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByFirebaseUID finds a user by identity provider subject
func (r *Repository) GetByFirebaseUID(ctx context.Context, uid string) (*User, error) {
	return r.findOne(ctx, bson.M{"firebaseUid": uid})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Update sets and unsets fields on a user. Only the named fields change.
func (r *Repository) Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) error {
	if set == nil {
		set = bson.M{}
	}
	set["updatedAt"] = time.Now()

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		u := bson.M{}
		for _, field := range unset {
			u[field] = ""
		}
		update["$unset"] = u
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes a user
func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPreferences replaces a user's notification preferences
func (r *Repository) SetPreferences(ctx context.Context, id primitive.ObjectID, prefs *Preferences) error {
	return r.Update(ctx, id, bson.M{"notificationPreferences": prefs})
}

// BackfillDefaults sets role and verification fields on records written
// before those fields existed. Returns the number of users changed.
func (r *Repository) BackfillDefaults(ctx context.Context) (int64, error) {
	var changed int64

	res, err := r.collection.UpdateMany(ctx,
		bson.M{"role": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"role": "user"}},
	)
	if err != nil {
		return changed, err
	}
	changed += res.ModifiedCount

	res, err = r.collection.UpdateMany(ctx,
		bson.M{"verificationStatus": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"verificationStatus": VerificationNone}},
	)
	if err != nil {
		return changed, err
	}
	changed += res.ModifiedCount

	return changed, nil
}
