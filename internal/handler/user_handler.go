package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/campusdesk-api/internal/service"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
	"github.com/campusdesk/campusdesk-api/pkg/response"
)

// UserHandler wires the admin student-management endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// ListStudents godoc
// @Summary List students
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/students [get]
func (h *UserHandler) ListStudents(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	students, err := h.service.ListStudents(c.Request.Context(), user.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, students, len(students))
}

// GetStudent godoc
// @Summary Get student by id
// @Tags Users
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/students/{id} [get]
func (h *UserHandler) GetStudent(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	student, err := h.service.GetStudent(c.Request.Context(), user.Actor(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, student)
}

// ToggleStatus godoc
// @Summary Toggle student activation
// @Tags Users
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/students/{id}/toggle-status [put]
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	student, err := h.service.ToggleActive(c.Request.Context(), user.Actor(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, student)
}

// DeleteStudent godoc
// @Summary Delete student
// @Tags Users
// @Produce json
// @Param id path string true "Student ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/students/{id} [delete]
func (h *UserHandler) DeleteStudent(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DeleteStudent(c.Request.Context(), user.Actor(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
