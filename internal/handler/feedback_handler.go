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

// FeedbackHandler wires HTTP endpoints to the feedback service.
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler constructs a feedback handler.
func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: svc}
}

// Submit godoc
// @Summary Submit feedback
// @Description Rate a resolved complaint
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body dto.SubmitFeedbackRequest true "Feedback payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid feedback payload"))
		return
	}

	detail, err := h.service.Submit(c.Request.Context(), user.Actor(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, detail)
}

// ListAll godoc
// @Summary List all feedback
// @Tags Feedback
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /feedback/all [get]
func (h *FeedbackHandler) ListAll(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.FeedbackFilter{Category: c.Query("category")}
	details, err := h.service.ListAll(c.Request.Context(), user.Actor(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, details, len(details))
}

// GetByComplaint godoc
// @Summary Get feedback for complaint
// @Tags Feedback
// @Produce json
// @Param complaintId path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /feedback/complaint/{complaintId} [get]
func (h *FeedbackHandler) GetByComplaint(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.GetByComplaint(c.Request.Context(), user.Actor(), c.Param("complaintId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail)
}

// Stats godoc
// @Summary Feedback statistics
// @Tags Feedback
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /feedback/stats [get]
func (h *FeedbackHandler) Stats(c *gin.Context) {
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
