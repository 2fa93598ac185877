package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campusdesk/campusdesk-api/internal/middleware"
	"github.com/campusdesk/campusdesk-api/internal/models"
	"github.com/campusdesk/campusdesk-api/internal/service"
)

// RouterDeps bundles everything route registration needs.
type RouterDeps struct {
	Auth       *AuthHandler
	Complaints *ComplaintHandler
	Feedback   *FeedbackHandler
	Users      *UserHandler

	AuthService *service.AuthService
	Metrics     *service.MetricsService

	APIPrefix      string
	ExportsEnabled bool
}

// RegisterRoutes mounts the API under deps.APIPrefix. Authentication runs as
// group middleware; role gates are attached per route and ownership checks
// happen inside the services.
func RegisterRoutes(r *gin.Engine, deps RouterDeps) {
	api := r.Group(deps.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", deps.Auth.Register)
	auth.POST("/login", deps.Auth.Login)

	authed := auth.Group("")
	authed.Use(middleware.JWT(deps.AuthService))
	authed.GET("/me", deps.Auth.Me)
	authed.PUT("/profile", deps.Auth.UpdateProfile)

	studentOnly := middleware.RequireRoles(models.RoleStudent)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	complaints := api.Group("/complaints")
	complaints.Use(middleware.JWT(deps.AuthService))
	complaints.POST("", studentOnly, deps.Complaints.Create)
	complaints.GET("/my-complaints", studentOnly, deps.Complaints.ListMine)
	complaints.GET("/student-stats", studentOnly, deps.Complaints.StudentStats)
	complaints.GET("/all", adminOnly, deps.Complaints.ListAll)
	complaints.GET("/stats", adminOnly, deps.Complaints.Stats)
	complaints.PUT("/:id/status", adminOnly, deps.Complaints.UpdateStatus)
	complaints.GET("/:id", deps.Complaints.Get)
	if deps.ExportsEnabled {
		complaints.GET("/export", adminOnly, deps.Complaints.Export)
	}

	feedback := api.Group("/feedback")
	feedback.Use(middleware.JWT(deps.AuthService))
	feedback.POST("", studentOnly, deps.Feedback.Submit)
	feedback.GET("/all", adminOnly, deps.Feedback.ListAll)
	feedback.GET("/stats", adminOnly, deps.Feedback.Stats)
	feedback.GET("/complaint/:complaintId", adminOnly, deps.Feedback.GetByComplaint)

	users := api.Group("/users")
	users.Use(middleware.JWT(deps.AuthService), adminOnly)
	users.GET("/students", deps.Users.ListStudents)
	users.GET("/students/:id", deps.Users.GetStudent)
	users.PUT("/students/:id/toggle-status", deps.Users.ToggleStatus)
	users.DELETE("/students/:id", deps.Users.DeleteStudent)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
}
