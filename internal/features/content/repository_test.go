package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestModerationUpdate(t *testing.T) {
	moderator := primitive.NewObjectID()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	update, err := moderationUpdate(Moderation{
		Action:      ActionHide,
		Reason:      "spam",
		ModeratedBy: moderator,
		ModeratedAt: at,
	})
	require.NoError(t, err)

	set := update["$set"].(bson.M)
	require.Equal(t, true, set["isHidden"])
	require.NotContains(t, set, "isDeleted")
	require.Equal(t, at, set["updatedAt"])
	require.Equal(t, moderator, set["moderation"].(Moderation).ModeratedBy)

	update, err = moderationUpdate(Moderation{Action: ActionRemove, ModeratedBy: moderator})
	require.NoError(t, err)
	set = update["$set"].(bson.M)
	require.Equal(t, true, set["isDeleted"])
	require.False(t, set["moderation"].(Moderation).ModeratedAt.IsZero())
}

func TestModerationUpdate_UnknownAction(t *testing.T) {
	_, err := moderationUpdate(Moderation{Action: "warning"})
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestRepository_UnknownKind(t *testing.T) {
	r := &Repository{collections: map[Kind]*mongo.Collection{}}
	_, err := r.collection("user")
	require.ErrorIs(t, err, ErrUnknownKind)
}
