package verification

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/pagination"
	"github.com/onthebell/onthebell-api/internal/pkg/response"
	"github.com/onthebell/onthebell-api/internal/pkg/storage"
	"github.com/onthebell/onthebell-api/internal/pkg/validator"
)

// multipart overhead allowed on top of the proof itself
const formOverhead = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitVerification godoc
// @Summary Request address verification
// @Description Opens a pending verification request. The document method requires a proof file (PDF, JPEG, PNG or WebP, 10MB max).
// @Tags verification
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param method formData string true "document, postal or other"
// @Param proofDocument formData file false "Proof document"
// @Success 201 {object} response.APIResponse{data=Request}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 429 {object} response.APIResponse
// @Router /verifications [post]
func (h *Handler) SubmitVerification(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxProofSize+formOverhead)

	if err := c.Request.ParseMultipartForm(storage.MaxProofSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.BadRequest(c, "Proof document must be 10MB or smaller", "FILE_TOO_LARGE")
			return
		}
		response.BadRequest(c, "Invalid multipart form", "INVALID_FORM")
		return
	}

	in := SubmitInput{Method: Method(c.PostForm("method"))}

	if c.Request.MultipartForm != nil {
		file, _, err := c.Request.FormFile("proofDocument")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(c, "Invalid proof document", "INVALID_FILE")
			return
		}
		if file != nil {
			defer file.Close()
			in.Proof = file
		}
	}

	req, err := h.service.Submit(c.Request.Context(), users.FromContext(c), in)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, req, "Verification request submitted")
}

// ListMine godoc
// @Summary List my verification requests
// @Tags verification
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Items per page (default 20, max 100)"
// @Param cursor query string false "lastId of the previous page"
// @Success 200 {object} response.APIResponse{data=response.CursorPage}
// @Failure 401 {object} response.APIResponse
// @Router /verifications/me [get]
func (h *Handler) ListMine(c *gin.Context) {
	page, err := pagination.FromRequest(c.Query("limit"), c.Query("cursor"))
	if err != nil {
		response.BadRequest(c, "Invalid cursor", "INVALID_CURSOR")
		return
	}

	items, hasMore, err := h.service.ListMine(c.Request.Context(), users.FromContext(c), page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	respondPage(c, items, hasMore)
}

// ListRequests godoc
// @Summary List verification requests
// @Description Admin queue, newest first. Requires manage_users.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param limit query int false "Items per page (default 20, max 100)"
// @Param cursor query string false "lastId of the previous page"
// @Success 200 {object} response.APIResponse{data=response.CursorPage}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /admin/verifications [get]
func (h *Handler) ListRequests(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, validator.FirstError(err), "VALIDATION_ERROR")
		return
	}

	page, err := pagination.FromRequest(query.Limit, query.Cursor)
	if err != nil {
		response.BadRequest(c, "Invalid cursor", "INVALID_CURSOR")
		return
	}

	items, hasMore, err := h.service.List(c.Request.Context(), users.FromContext(c), Status(query.Status), page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	respondPage(c, items, hasMore)
}

// DecideRequest godoc
// @Summary Approve or reject a verification request
// @Description Notifies the requester. Approving a document request also deletes the stored proof.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DecideRequest true "Decision"
// @Success 200 {object} response.APIResponse{data=Request}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /admin/verifications [patch]
func (h *Handler) DecideRequest(c *gin.Context) {
	var body DecideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, validator.FirstError(err), "VALIDATION_ERROR")
		return
	}

	requestID, _ := primitive.ObjectIDFromHex(body.RequestID)

	req, err := h.service.Decide(c.Request.Context(), users.FromContext(c), DecideInput{
		RequestID:  requestID,
		Status:     Status(body.Status),
		AdminNotes: body.AdminNotes,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, req, "Verification "+string(req.Status))
}

func respondPage(c *gin.Context, items []Request, hasMore bool) {
	if items == nil {
		items = []Request{}
	}
	lastID := ""
	if len(items) > 0 {
		lastID = items[len(items)-1].ID.Hex()
	}
	response.Cursor(c, items, hasMore, lastID)
}
