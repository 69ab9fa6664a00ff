package notifications

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/pagination"
	"github.com/onthebell/onthebell-api/internal/pkg/response"
)

// PreferenceStore persists notification preferences on the user record
type PreferenceStore interface {
	SetPreferences(ctx context.Context, id primitive.ObjectID, prefs *users.Preferences) error
}

type Handler struct {
	repo    *Repository
	service *Service
	prefs   PreferenceStore
	stream  *Streamer
}

func NewHandler(repo *Repository, service *Service, prefs PreferenceStore, stream *Streamer) *Handler {
	return &Handler{
		repo:    repo,
		service: service,
		prefs:   prefs,
		stream:  stream,
	}
}

// ListNotifications godoc
// @Summary List notifications
// @Description Cursor paginated notifications for the caller, filtered by their preferences
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Items per page (default 20, max 100)"
// @Param cursor query string false "lastId of the previous page"
// @Param unreadOnly query bool false "Only show unread"
// @Success 200 {object} response.APIResponse{data=response.CursorPage}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	currentUser := users.FromContext(c)
	if currentUser == nil {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	page, err := pagination.FromRequest(query.Limit, query.Cursor)
	if err != nil {
		response.BadRequest(c, "Invalid cursor", "INVALID_CURSOR")
		return
	}

	items, hasMore, err := h.repo.ListForUser(c.Request.Context(), currentUser.ID, query.UnreadOnly, page)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch notifications", "FETCH_FAILED")
		return
	}

	// The cursor follows the raw page so hidden items are never refetched
	lastID := ""
	if len(items) > 0 {
		lastID = items[len(items)-1].ID.Hex()
	}

	visible := Filter(items, currentUser.NotificationPreferences)
	if visible == nil {
		visible = []Notification{}
	}
	response.Cursor(c, visible, hasMore, lastID)
}

// GetUnreadCount godoc
// @Summary Get unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=UnreadCountResponse}
// @Failure 401 {object} response.APIResponse
// @Router /notifications/unread-count [get]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	currentUser := users.FromContext(c)
	if currentUser == nil {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	count, err := h.repo.CountUnread(c.Request.Context(), currentUser.ID)
	if err != nil {
		response.InternalServerError(c, "Failed to count notifications", "COUNT_FAILED")
		return
	}

	response.Success(c, UnreadCountResponse{UnreadCount: count})
}

// MarkAsRead godoc
// @Summary Mark notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.APIResponse{data=MarkReadResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /notifications/{id}/read [patch]
func (h *Handler) MarkAsRead(c *gin.Context) {
	currentUser := users.FromContext(c)
	if currentUser == nil {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid notification ID", "INVALID_ID")
		return
	}

	notification, err := h.repo.GetByID(c.Request.Context(), notificationID)
	if err != nil {
		response.InternalServerError(c, "Failed to load notification", "FETCH_FAILED")
		return
	}
	if notification == nil {
		response.NotFound(c, "Notification not found", "NOT_FOUND")
		return
	}

	if notification.UserID != currentUser.ID {
		response.Forbidden(c, "Cannot mark others' notifications", "FORBIDDEN")
		return
	}

	if err := h.repo.MarkAsRead(c.Request.Context(), notificationID); err != nil {
		response.InternalServerError(c, "Failed to mark as read", "UPDATE_FAILED")
		return
	}

	response.Success(c, MarkReadResponse{ID: notificationID, IsRead: true})
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=MarkAllReadResponse}
// @Failure 401 {object} response.APIResponse
// @Router /notifications/read-all [patch]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	currentUser := users.FromContext(c)
	if currentUser == nil {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	count, err := h.repo.MarkAllAsRead(c.Request.Context(), currentUser.ID)
	if err != nil {
		response.InternalServerError(c, "Failed to mark all as read", "UPDATE_FAILED")
		return
	}

	response.Success(c, MarkAllReadResponse{MarkedCount: count})
}

// GetPreferences godoc
// @Summary Get notification preferences
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=users.Preferences}
// @Failure 401 {object} response.APIResponse
// @Router /notifications/preferences [get]
func (h *Handler) GetPreferences(c *gin.Context) {
	currentUser := users.FromContext(c)
	if currentUser == nil {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	prefs := currentUser.NotificationPreferences
	if prefs == nil {
		prefs = &users.Preferences{}
	}
	response.Success(c, prefs)
}

// UpdatePreferences godoc
// @Summary Replace notification preferences
// @Description Omitted flags and categories count as enabled
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PreferencesRequest true "Preferences"
// @Success 200 {object} response.APIResponse{data=users.Preferences}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /notifications/preferences [put]
func (h *Handler) UpdatePreferences(c *gin.Context) {
	currentUser := users.FromContext(c)
	if currentUser == nil {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	prefs := req.toPreferences()
	if err := h.prefs.SetPreferences(c.Request.Context(), currentUser.ID, prefs); err != nil {
		response.InternalServerError(c, "Failed to save preferences", "UPDATE_FAILED")
		return
	}

	response.Success(c, prefs, "Preferences updated")
}

// Stream godoc
// @Summary Stream new notifications
// @Description Websocket stream of new notifications that pass the caller's preferences. Browsers may pass the access token as ?token=.
// @Tags notifications
// @Security BearerAuth
// @Success 101
// @Failure 401 {object} response.APIResponse
// @Router /notifications/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	currentUser := users.FromContext(c)
	if currentUser == nil {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	h.stream.Serve(c, currentUser)
}
