package notifications

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/logger"
	"github.com/onthebell/onthebell-api/internal/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// UserLookup loads the current user record so preference changes apply to
// open streams
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*users.User, error)
}

// Streamer upgrades requests to websockets and relays a user's notifications
type Streamer struct {
	service  *Service
	users    UserLookup
	upgrader websocket.Upgrader
}

func NewStreamer(service *Service, lookup UserLookup, allowedOrigins []string) *Streamer {
	return &Streamer{
		service: service,
		users:   lookup,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range allowedOrigins {
					if allowed == "*" || origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

// Serve blocks until the client goes away or the request context ends
func (s *Streamer) Serve(c *gin.Context, user *users.User) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	sub, err := s.service.Subscribe(ctx, user.ID)
	if err != nil {
		response.InternalServerError(c, "Realtime stream unavailable", "STREAM_UNAVAILABLE")
		return
	}
	if sub == nil {
		response.Error(c, http.StatusServiceUnavailable, "Realtime stream not enabled", "STREAM_DISABLED")
		return
	}
	defer sub.Close()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Reader only services control frames and notices disconnects
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Msg("websocket read error")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	prefs := user.NotificationPreferences
	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case n, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			prefs = s.preferences(ctx, user.ID, prefs)
			if !Visible(n, prefs) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// preferences returns the user's stored preferences, or cached when they
// cannot be read
func (s *Streamer) preferences(ctx context.Context, userID primitive.ObjectID, cached *users.Preferences) *users.Preferences {
	if s.users == nil {
		return cached
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("stream preferences reload failed")
		return cached
	}
	if u == nil {
		return cached
	}
	return u.NotificationPreferences
}
