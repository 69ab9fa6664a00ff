package users

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/pkg/response"
	"github.com/onthebell/onthebell-api/internal/pkg/validator"
)

// FromContext returns the authenticated user set by the auth middleware
func FromContext(c *gin.Context) *User {
	v, exists := c.Get("user")
	if !exists {
		return nil
	}
	u, _ := v.(*User)
	return u
}

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// GetProfile godoc
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse{data=PublicProfile}
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /users/{id} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID", "INVALID_ID")
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "Failed to load user", "DATABASE_ERROR")
		return
	}
	if user == nil {
		response.NotFound(c, "User not found", "USER_NOT_FOUND")
		return
	}

	response.Success(c, user.ToPublic())
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.APIResponse{data=User}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /users/me [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	user := FromContext(c)
	if user == nil {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FirstError(err), "VALIDATION_ERROR")
		return
	}

	if err := h.repo.Update(c.Request.Context(), user.ID, bson.M{"displayName": req.DisplayName}); err != nil {
		response.InternalServerError(c, "Failed to update profile", "DATABASE_ERROR")
		return
	}

	user.DisplayName = req.DisplayName
	response.Success(c, user, "Profile updated")
}
