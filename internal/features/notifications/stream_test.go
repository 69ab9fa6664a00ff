package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/users"
)

type memoryUsers struct {
	user *users.User
	err  error
}

func (m *memoryUsers) GetByID(context.Context, primitive.ObjectID) (*users.User, error) {
	return m.user, m.err
}

func TestStreamerPreferences_FollowsUpdates(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()
	lookup := &memoryUsers{user: &users.User{ID: id}}
	s := NewStreamer(nil, lookup, nil)
	follow := Notification{Type: TypeFollow}

	atConnect := &users.Preferences{Follows: boolPtr(true)}
	prefs := s.preferences(ctx, id, atConnect)
	require.True(t, Visible(follow, prefs))

	// follows turned off after the stream opened
	lookup.user = &users.User{ID: id, NotificationPreferences: &users.Preferences{Follows: boolPtr(false)}}
	prefs = s.preferences(ctx, id, prefs)
	require.False(t, Visible(follow, prefs))
}

func TestStreamerPreferences_KeepsCachedOnFailure(t *testing.T) {
	ctx := context.Background()
	id := primitive.NewObjectID()
	cached := &users.Preferences{Likes: boolPtr(false)}

	s := NewStreamer(nil, &memoryUsers{err: errors.New("mongo down")}, nil)
	require.Same(t, cached, s.preferences(ctx, id, cached))

	s = NewStreamer(nil, &memoryUsers{}, nil)
	require.Same(t, cached, s.preferences(ctx, id, cached))

	s = NewStreamer(nil, nil, nil)
	require.Same(t, cached, s.preferences(ctx, id, cached))
}
