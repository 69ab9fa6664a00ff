package notifications

import (
	"github.com/onthebell/onthebell-api/internal/features/users"
)

// Filter returns the notifications prefs allows, in input order. With no
// preferences everything is shown, and any flag or category that is not set
// counts as enabled.
func Filter(ns []Notification, prefs *users.Preferences) []Notification {
	if prefs == nil {
		return ns
	}

	out := make([]Notification, 0, len(ns))
	for _, n := range ns {
		if Visible(n, prefs) {
			out = append(out, n)
		}
	}
	return out
}

// Visible reports whether a single notification passes prefs
func Visible(n Notification, prefs *users.Preferences) bool {
	if prefs == nil {
		return true
	}

	switch n.Type {
	case TypeNewPost:
		if n.PostCategory == "" {
			return true
		}
		enabled, ok := prefs.NewPosts[n.PostCategory]
		return !ok || enabled
	case TypeLike:
		return flagOn(prefs.Likes)
	case TypeComment:
		return flagOn(prefs.Comments)
	case TypeFollow:
		return flagOn(prefs.Follows)
	default:
		return true
	}
}

func flagOn(b *bool) bool {
	return b == nil || *b
}
