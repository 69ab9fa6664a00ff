package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromRequest_ClampsLimit(t *testing.T) {
	p, err := FromRequest("", "")
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, p.Limit)
	require.Nil(t, p.After)

	p, err = FromRequest("500", "")
	require.NoError(t, err)
	require.Equal(t, MaxLimit, p.Limit)

	p, err = FromRequest("-3", "")
	require.NoError(t, err)
	require.Equal(t, DefaultLimit, p.Limit)
}

func TestFromRequest_Cursor(t *testing.T) {
	oid := primitive.NewObjectID()

	p, err := FromRequest("10", oid.Hex())
	require.NoError(t, err)
	require.Equal(t, oid, *p.After)

	_, err = FromRequest("10", "not-an-id")
	require.ErrorIs(t, err, ErrInvalidCursor)
}

func TestApplyAndTrim(t *testing.T) {
	oid := primitive.NewObjectID()
	p := Cursor{Limit: 2, After: &oid}

	filter, opts := p.Apply(bson.M{"status": "pending"})
	require.Equal(t, bson.M{"$lt": oid}, filter["_id"])
	require.Equal(t, "pending", filter["status"])
	require.Equal(t, int64(3), *opts.Limit)

	items, more := Trim([]int{1, 2, 3}, 2)
	require.Equal(t, []int{1, 2}, items)
	require.True(t, more)

	items, more = Trim([]int{1}, 2)
	require.Equal(t, []int{1}, items)
	require.False(t, more)
}
