package auth

import (
	"github.com/gin-gonic/gin"

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

// CreateSession godoc
// @Summary Sign in with a Firebase ID token
// @Description Verifies the ID token, creates the user on first sign in, and returns API tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Firebase ID token"
// @Success 200 {object} response.APIResponse{data=SessionResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/session [post]
func (h *Handler) CreateSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FirstError(err), "VALIDATION_ERROR")
		return
	}

	session, err := h.service.Session(c.Request.Context(), req.IDToken)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, session, "Signed in")
}

// Refresh godoc
// @Summary Refresh API tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} response.APIResponse{data=SessionResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FirstError(err), "VALIDATION_ERROR")
		return
	}

	session, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, session)
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=users.User}
// @Failure 401 {object} response.APIResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user := users.FromContext(c)
	if user == nil {
		response.Unauthorized(c, "Authentication required", "AUTH_REQUIRED")
		return
	}
	response.Success(c, user)
}
