package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	channelPrefix  = "notifications:"
	subscriberSize = 16
)

// Broker fans new notifications out to live subscribers. Delivery is best
// effort: a slow subscriber drops messages rather than blocking publishers,
// and clients recover missed ones from the list endpoint.
type Broker interface {
	Publish(ctx context.Context, n *Notification) error
	Subscribe(ctx context.Context, userID primitive.ObjectID) (*Subscription, error)
}

// Subscription is a stream of notifications for one user. Close stops it and
// closes C.
type Subscription struct {
	C <-chan Notification

	once  sync.Once
	close func()
}

func (s *Subscription) Close() {
	s.once.Do(s.close)
}

func channelFor(userID primitive.ObjectID) string {
	return channelPrefix + userID.Hex()
}

// LocalBroker delivers within this process only
type LocalBroker struct {
	mu   sync.Mutex
	subs map[primitive.ObjectID]map[chan Notification]struct{}
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[primitive.ObjectID]map[chan Notification]struct{})}
}

func (b *LocalBroker) Publish(_ context.Context, n *Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[n.UserID] {
		select {
		case ch <- *n:
		default:
			log.Warn().Str("user_id", n.UserID.Hex()).Msg("notification subscriber full, dropping")
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, userID primitive.ObjectID) (*Subscription, error) {
	ch := make(chan Notification, subscriberSize)

	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan Notification]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()

	sub := &Subscription{C: ch}
	sub.close = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[userID], ch)
		if len(b.subs[userID]) == 0 {
			delete(b.subs, userID)
		}
		close(ch)
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// RedisBroker delivers across instances over Redis Pub/Sub, one channel per
// recipient
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, n *Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelFor(n.UserID), payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, userID primitive.ObjectID) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channelFor(userID))

	// Wait for confirmation so messages published after Subscribe returns
	// are not missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channelFor(userID), err)
	}

	out := make(chan Notification, subscriberSize)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var n Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					log.Warn().Err(err).Str("channel", msg.Channel).Msg("bad notification payload")
					continue
				}
				select {
				case out <- n:
				default:
					log.Warn().Str("user_id", userID.Hex()).Msg("notification subscriber full, dropping")
				}
			}
		}
	}()

	sub := &Subscription{C: out}
	sub.close = func() {
		close(done)
		_ = pubsub.Close()
	}
	return sub, nil
}
