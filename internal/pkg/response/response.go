package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onthebell/onthebell-api/internal/pkg/logger"
	apperrors "github.com/onthebell/onthebell-api/pkg/errors"
)

// APIResponse is the envelope every endpoint answers with
type APIResponse struct {
	Success    bool        `json:"success" example:"true"`
	StatusCode int         `json:"statusCode" example:"200"`
	Message    string      `json:"message,omitempty" example:"ok"`
	Data       interface{} `json:"data,omitempty"`
	Code       string      `json:"code,omitempty" example:"REPORT_NOT_FOUND"`
}

// CursorPage is the data payload of cursor paginated lists
type CursorPage struct {
	Items   interface{} `json:"items"`
	HasMore bool        `json:"hasMore"`
	LastID  string      `json:"lastId,omitempty"`
}

// Success sends a 200 OK response with data
func Success(c *gin.Context, data interface{}, message ...string) {
	c.JSON(http.StatusOK, APIResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    first(message),
		Data:       data,
	})
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}, message ...string) {
	c.JSON(http.StatusCreated, APIResponse{
		Success:    true,
		StatusCode: http.StatusCreated,
		Message:    first(message),
		Data:       data,
	})
}

// Cursor sends a cursor paginated list
func Cursor(c *gin.Context, items interface{}, hasMore bool, lastID string) {
	Success(c, CursorPage{Items: items, HasMore: hasMore, LastID: lastID})
}

// Error sends an error response with custom status code and message
func Error(c *gin.Context, statusCode int, message string, errorCode ...string) {
	c.JSON(statusCode, APIResponse{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
		Code:       first(errorCode),
	})
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusBadRequest, message, errorCode...)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnauthorized, message, errorCode...)
}

// Forbidden sends a 403 Forbidden error
func Forbidden(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusForbidden, message, errorCode...)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusNotFound, message, errorCode...)
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusConflict, message, errorCode...)
}

// InternalServerError sends a 500 Internal Server Error
func InternalServerError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusInternalServerError, message, errorCode...)
}

// BindJSONError handles JSON decode errors in request body
func BindJSONError(c *gin.Context, err error) {
	BadRequest(c, "Invalid request format", "INVALID_JSON")
}

// StatusFor maps an error kind onto its HTTP status
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindAuthentication:
		return http.StatusUnauthorized
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the response for an error returned by a service.
// Internal and external failures are logged and hidden from the client.
func FromError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("unhandled error")
		_ = c.Error(err)
		InternalServerError(c, "Internal server error", "INTERNAL_ERROR")
		return
	}

	status := StatusFor(appErr.Kind)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error().
			Err(err).
			Str("code", appErr.Code).
			Msg("request failed")
		_ = c.Error(err)
	}

	Error(c, status, appErr.Message, appErr.Code)
}

func first(values []string) string {
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
