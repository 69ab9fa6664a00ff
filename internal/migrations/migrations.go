package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Migration is a named one-off data change
type Migration struct {
	Name string
	Up   func(ctx context.Context) error
}

// Ledger records which migrations have run. Claim returns false when the
// name was already claimed by this or another instance.
type Ledger interface {
	Claim(ctx context.Context, name string) (bool, error)
	Complete(ctx context.Context, name string) error
	Release(ctx context.Context, name string) error
}

const (
	statusRunning   = "running"
	statusCompleted = "completed"
)

type record struct {
	Name        string     `bson:"name"`
	Status      string     `bson:"status"`
	StartedAt   time.Time  `bson:"startedAt"`
	CompletedAt *time.Time `bson:"completedAt,omitempty"`
}

// MongoLedger keeps the ledger in schema_migrations with a unique name index
type MongoLedger struct {
	collection *mongo.Collection
}

func NewMongoLedger(ctx context.Context, db *mongo.Database) (*MongoLedger, error) {
	collection := db.Collection("schema_migrations")

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("schema_migrations index: %w", err)
	}

	return &MongoLedger{collection: collection}, nil
}

func (l *MongoLedger) Claim(ctx context.Context, name string) (bool, error) {
	_, err := l.collection.InsertOne(ctx, record{
		Name:      name,
		Status:    statusRunning,
		StartedAt: time.Now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l *MongoLedger) Complete(ctx context.Context, name string) error {
	_, err := l.collection.UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{"status": statusCompleted, "completedAt": time.Now()}},
	)
	return err
}

func (l *MongoLedger) Release(ctx context.Context, name string) error {
	_, err := l.collection.DeleteOne(ctx, bson.M{"name": name, "status": statusRunning})
	return err
}

// Run applies each migration not yet in the ledger, in order. A failed
// migration releases its claim so the next start retries it.
func Run(ctx context.Context, ledger Ledger, migrations []Migration) error {
	for _, m := range migrations {
		claimed, err := ledger.Claim(ctx, m.Name)
		if err != nil {
			return fmt.Errorf("claim %s: %w", m.Name, err)
		}
		if !claimed {
			log.Debug().Str("migration", m.Name).Msg("Migration already applied")
			continue
		}

		log.Info().Str("migration", m.Name).Msg("Applying migration")
		start := time.Now()

		if err := m.Up(ctx); err != nil {
			if relErr := ledger.Release(ctx, m.Name); relErr != nil {
				log.Error().Err(relErr).Str("migration", m.Name).Msg("Failed to release migration claim")
			}
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}

		if err := ledger.Complete(ctx, m.Name); err != nil {
			return fmt.Errorf("complete %s: %w", m.Name, err)
		}

		log.Info().
			Str("migration", m.Name).
			Dur("took", time.Since(start)).
			Msg("Migration applied")
	}
	return nil
}
