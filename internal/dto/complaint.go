package dto

import (
	"time"

	"github.com/campusdesk/campusdesk-api/internal/models"
)

// StudentRef is the partial student projection joined onto complaint and
// feedback responses. Optional fields are filled only by queries whose
// projection includes them.
type StudentRef struct {
	ID               string  `db:"id" json:"id"`
	Name             string  `db:"name" json:"name"`
	Email            string  `db:"email" json:"email"`
	EnrollmentNumber *string `db:"enrollment_number" json:"enrollment_number,omitempty"`
	Department       *string `db:"department" json:"department,omitempty"`
	Phone            *string `db:"phone" json:"phone,omitempty"`
}

// ComplaintDetail joins a complaint with its owning student projection.
type ComplaintDetail struct {
	models.Complaint
	Student StudentRef `db:"student" json:"student"`
}

// CreateComplaintRequest is the student submission payload.
type CreateComplaintRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
}

// UpdateStatusRequest is the admin triage payload.
type UpdateStatusRequest struct {
	Status        string `json:"status" validate:"required"`
	AdminResponse string `json:"admin_response"`
}

// ComplaintStatsResponse is the admin dashboard aggregate.
type ComplaintStatsResponse struct {
	models.ComplaintStats
	CategoryStats []models.CategoryCount `json:"categoryStats"`
	GeneratedAt   time.Time              `json:"generatedAt"`
}
