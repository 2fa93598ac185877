package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/campusdesk-api/internal/dto"
	"github.com/campusdesk/campusdesk-api/internal/models"
	"github.com/campusdesk/campusdesk-api/internal/service"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
	"github.com/campusdesk/campusdesk-api/pkg/response"
)

// ComplaintHandler wires HTTP endpoints to the complaint service.
type ComplaintHandler struct {
	service *service.ComplaintService
	exports *service.ExportService
}

// NewComplaintHandler constructs a complaint handler.
func NewComplaintHandler(svc *service.ComplaintService, exports *service.ExportService) *ComplaintHandler {
	return &ComplaintHandler{service: svc, exports: exports}
}

// Create godoc
// @Summary Raise complaint
// @Description Submit a new complaint as a student
// @Tags Complaints
// @Accept json
// @Produce json
// @Param payload body dto.CreateComplaintRequest true "Complaint payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid complaint payload"))
		return
	}

	detail, err := h.service.Create(c.Request.Context(), user.Actor(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, detail)
}

// ListMine godoc
// @Summary List own complaints
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /complaints/my-complaints [get]
func (h *ComplaintHandler) ListMine(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	details, err := h.service.ListMine(c.Request.Context(), user.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, details, len(details))
}

// ListAll godoc
// @Summary List all complaints
// @Tags Complaints
// @Produce json
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /complaints/all [get]
func (h *ComplaintHandler) ListAll(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ComplaintFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}
	details, err := h.service.ListAll(c.Request.Context(), user.Actor(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, details, len(details))
}

// Get godoc
// @Summary Get complaint by id
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), user.Actor(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail)
}

// UpdateStatus godoc
// @Summary Update complaint status
// @Description Set status and optional admin response
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /complaints/{id}/status [put]
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	detail, err := h.service.UpdateStatus(c.Request.Context(), user.Actor(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail)
}

// Stats godoc
// @Summary Global complaint statistics
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /complaints/stats [get]
func (h *ComplaintHandler) Stats(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, cacheHit, err := h.service.StatsGlobal(c.Request.Context(), user.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, map[string]interface{}{"cache_hit": cacheHit})
}

// StudentStats godoc
// @Summary Own complaint statistics
// @Tags Complaints
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /complaints/student-stats [get]
func (h *ComplaintHandler) StudentStats(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.service.StatsMine(c.Request.Context(), user.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats)
}

// Export godoc
// @Summary Export complaints
// @Description Download the filtered complaint list as CSV or PDF
// @Tags Complaints
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /complaints/export [get]
func (h *ComplaintHandler) Export(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ComplaintFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	result, err := h.exports.Complaints(c.Request.Context(), user.Actor(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
