package admin

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/response"
	"github.com/onthebell/onthebell-api/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UpdateUser godoc
// @Summary Moderate a user account
// @Description Applies one action to the target: update_role (role, permissions), suspend (reason, durationDays), unsuspend, verify or unverify. Requires manage_users and a role above the target's.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UserActionRequest true "Action"
// @Success 200 {object} response.APIResponse{data=users.User}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /admin/users [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	var req UserActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FirstError(err), "VALIDATION_ERROR")
		return
	}

	targetID, _ := primitive.ObjectIDFromHex(req.UserID)
	actor := users.FromContext(c)
	ctx := c.Request.Context()

	var (
		target  *users.User
		err     error
		message string
	)
	switch req.Action {
	case ActionUpdateRole:
		target, err = h.service.UpdateRole(ctx, actor, targetID, req.roleChange())
		message = "User role updated"
	case ActionSuspend:
		target, err = h.service.Suspend(ctx, actor, targetID, req.Reason, req.DurationDays)
		message = "User suspended"
	case ActionUnsuspend:
		target, err = h.service.Unsuspend(ctx, actor, targetID)
		message = "User unsuspended"
	case ActionVerify:
		target, err = h.service.Verify(ctx, actor, targetID)
		message = "User verified"
	case ActionUnverify:
		target, err = h.service.Unverify(ctx, actor, targetID)
		message = "User unverified"
	default:
		response.BadRequest(c, "Unknown action", "INVALID_ACTION")
		return
	}
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, target, message)
}

// DeleteUser godoc
// @Summary Permanently delete a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId query string true "User ID"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /admin/users [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Query("userId"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), users.FromContext(c), targetID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, nil, "User deleted")
}
