package pagination

import (
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is a keyset page request over _id descending.
// The cursor value is the lastId of the previous page.
type Cursor struct {
	Limit int
	After *primitive.ObjectID
}

// FromRequest parses limit and cursor query values. Limit is clamped to
// [1, MaxLimit]; an empty cursor starts from the newest record.
func FromRequest(limitStr, cursor string) (Cursor, error) {
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	page := Cursor{Limit: limit}
	if cursor == "" {
		return page, nil
	}

	oid, err := primitive.ObjectIDFromHex(cursor)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	page.After = &oid
	return page, nil
}

// Apply adds the keyset condition to filter and returns find options that
// fetch one record beyond the page so callers can tell if more exist.
func (p Cursor) Apply(filter bson.M) (bson.M, *options.FindOptions) {
	if filter == nil {
		filter = bson.M{}
	}
	if p.After != nil {
		filter["_id"] = bson.M{"$lt": *p.After}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(p.Limit + 1))
	return filter, opts
}

// Trim cuts a page fetched with Apply back to limit and reports whether more
// records follow
func Trim[T any](items []T, limit int) ([]T, bool) {
	if len(items) > limit {
		return items[:limit], true
	}
	return items, false
}
