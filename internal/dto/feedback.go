package dto

import (
	"time"

	"github.com/campusdesk/campusdesk-api/internal/models"
)

// ComplaintRef is the partial complaint projection joined onto feedback
// responses.
type ComplaintRef struct {
	ID          string                   `db:"id" json:"id"`
	Title       string                   `db:"title" json:"title"`
	Description *string                  `db:"description" json:"description,omitempty"`
	Category    models.ComplaintCategory `db:"category" json:"category"`
	Status      *models.ComplaintStatus  `db:"status" json:"status,omitempty"`
}

// FeedbackDetail joins a feedback record with its student and complaint
// projections.
type FeedbackDetail struct {
	models.Feedback
	Student   StudentRef   `db:"student" json:"student"`
	Complaint ComplaintRef `db:"complaint" json:"complaint"`
}

// SubmitFeedbackRequest is the student rating payload.
type SubmitFeedbackRequest struct {
	ComplaintID string `json:"complaint_id" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Comment     string `json:"comment" validate:"required"`
}

// FeedbackStatsResponse is the admin feedback aggregate.
type FeedbackStatsResponse struct {
	models.FeedbackStats
	GeneratedAt time.Time `json:"generatedAt"`
}
