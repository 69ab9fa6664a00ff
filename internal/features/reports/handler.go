package reports

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/onthebell/onthebell-api/internal/features/users"
	"github.com/onthebell/onthebell-api/internal/pkg/pagination"
	"github.com/onthebell/onthebell-api/internal/pkg/response"
	"github.com/onthebell/onthebell-api/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateReport godoc
// @Summary Report content or a user
// @Description Files a pending report. A user may hold one open report per piece of content.
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReportRequest true "Report details"
// @Success 201 {object} response.APIResponse{data=Report}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 429 {object} response.APIResponse
// @Router /reports [post]
func (h *Handler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FirstError(err), "VALIDATION_ERROR")
		return
	}

	contentID, _ := primitive.ObjectIDFromHex(req.ContentID)

	report, err := h.service.Create(c.Request.Context(), users.FromContext(c), CreateInput{
		ContentType:  ContentType(req.ContentType),
		ContentID:    contentID,
		Reason:       Reason(req.Reason),
		CustomReason: req.CustomReason,
		Description:  req.Description,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, report, "Report submitted")
}

// ListReports godoc
// @Summary List reports
// @Description Moderation queue, newest first. Requires manage_reports.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, resolved or dismissed"
// @Param contentType query string false "post, comment or user"
// @Param limit query int false "Items per page (default 20, max 100)"
// @Param cursor query string false "lastId of the previous page"
// @Success 200 {object} response.APIResponse{data=ListResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /admin/reports [get]
func (h *Handler) ListReports(c *gin.Context) {
	var query ListReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, validator.FirstError(err), "VALIDATION_ERROR")
		return
	}

	page, err := pagination.FromRequest(query.Limit, query.Cursor)
	if err != nil {
		response.BadRequest(c, "Invalid cursor", "INVALID_CURSOR")
		return
	}

	items, hasMore, err := h.service.List(c.Request.Context(), users.FromContext(c), ListFilter{
		Status:      Status(query.Status),
		ContentType: ContentType(query.ContentType),
	}, page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	out := ListResponse{Reports: items, HasMore: hasMore}
	if out.Reports == nil {
		out.Reports = []Report{}
	}
	if len(items) > 0 {
		out.LastID = items[len(items)-1].ID.Hex()
	}
	response.Success(c, out)
}

// ResolveReport godoc
// @Summary Resolve or dismiss a report
// @Description reject dismisses the report. content_hidden and content_removed also moderate the reported post or comment.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ResolveReportRequest true "Resolution"
// @Success 200 {object} response.APIResponse{data=Report}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /admin/reports/resolve [post]
func (h *Handler) ResolveReport(c *gin.Context) {
	var req ResolveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FirstError(err), "VALIDATION_ERROR")
		return
	}

	reportID, _ := primitive.ObjectIDFromHex(req.ReportID)

	report, err := h.service.Resolve(c.Request.Context(), users.FromContext(c), ResolveInput{
		ReportID:         reportID,
		Action:           Action(req.Action),
		ModerationReason: req.ModerationReason,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, report, "Report "+string(report.Status))
}

// GetStats godoc
// @Summary Report counts per status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=Stats}
// @Failure 401 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Router /admin/reports/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), users.FromContext(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, stats)
}
