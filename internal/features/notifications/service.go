package notifications

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/pkg/logger"
)

// Store is the persistence the service writes through
type Store interface {
	Create(ctx context.Context, n *Notification) error
}

type Service struct {
	store  Store
	broker Broker
}

func NewService(store Store, broker Broker) *Service {
	return &Service{store: store, broker: broker}
}

// Send stores a notification and pushes it to live subscribers. A failed push
// is logged only; the stored notification is the source of truth.
func (s *Service) Send(ctx context.Context, n *Notification) error {
	if err := s.store.Create(ctx, n); err != nil {
		return err
	}

	if s.broker != nil {
		if err := s.broker.Publish(ctx, n); err != nil {
			logger.BestEffortFailure(ctx, err, "notification publish failed", map[string]interface{}{
				"notification_id": n.ID.Hex(),
				"user_id":         n.UserID.Hex(),
			})
		}
	}
	return nil
}

// Notify sends a typed message to a user
func (s *Service) Notify(ctx context.Context, userID primitive.ObjectID, typ, title, message string) error {
	return s.Send(ctx, &Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	})
}

// Subscribe opens a live stream for userID, or nil when no broker is set
func (s *Service) Subscribe(ctx context.Context, userID primitive.ObjectID) (*Subscription, error) {
	if s.broker == nil {
		return nil, nil
	}
	return s.broker.Subscribe(ctx, userID)
}
