package notifications

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onthebell/onthebell-api/internal/features/users"
)

func boolPtr(b bool) *bool { return &b }

func TestFilter_PreferencesApplied(t *testing.T) {
	prefs := &users.Preferences{
		NewPosts: map[string]bool{"deals": true, "marketplace": false},
		Likes:    boolPtr(true),
		Follows:  boolPtr(false),
	}
	ns := []Notification{
		{Type: TypeNewPost, PostCategory: "deals", Title: "deals"},
		{Type: TypeNewPost, PostCategory: "marketplace", Title: "marketplace"},
		{Type: TypeFollow, Title: "follow"},
		{Type: TypeLike, Title: "like"},
	}

	out := Filter(ns, prefs)

	require.Len(t, out, 2)
	require.Equal(t, "deals", out[0].Title)
	require.Equal(t, "like", out[1].Title)
}

func TestFilter_NilPreferencesReturnsInput(t *testing.T) {
	ns := []Notification{
		{Type: TypeFollow},
		{Type: TypeNewPost, PostCategory: "marketplace"},
	}

	require.Equal(t, ns, Filter(ns, nil))
}

func TestFilter_EmptyInput(t *testing.T) {
	out := Filter([]Notification{}, &users.Preferences{Likes: boolPtr(false)})
	require.Empty(t, out)
}

func TestVisible_UnsetEntriesAreEnabled(t *testing.T) {
	prefs := &users.Preferences{NewPosts: map[string]bool{"deals": false}}

	require.True(t, Visible(Notification{Type: TypeNewPost, PostCategory: "events"}, prefs))
	require.True(t, Visible(Notification{Type: TypeNewPost}, prefs))
	require.True(t, Visible(Notification{Type: TypeComment}, prefs))
	require.False(t, Visible(Notification{Type: TypeNewPost, PostCategory: "deals"}, prefs))
}

func TestVisible_SystemTypesAlwaysPass(t *testing.T) {
	prefs := &users.Preferences{
		Likes:    boolPtr(false),
		Comments: boolPtr(false),
		Follows:  boolPtr(false),
	}

	for _, typ := range []string{TypeInfo, TypeVerification, TypeModeration} {
		require.True(t, Visible(Notification{Type: typ}, prefs), typ)
	}
}
