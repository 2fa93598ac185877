package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdesk/campusdesk-api/internal/dto"
	"github.com/campusdesk/campusdesk-api/internal/models"
)

const feedbackColumns = `f.id, f.complaint_id, f.student_id, f.category, f.rating, f.comment, f.created_at, f.updated_at`

const complaintRefProjection = `c.id AS "complaint.id", c.title AS "complaint.title", c.category AS "complaint.category"`

const complaintRefProjectionFull = complaintRefProjection + `, c.description AS "complaint.description", c.status AS "complaint.status"`

// FeedbackRepository provides database access for feedback records.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new instance of FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts the feedback row and flips the complaint's has_feedback
// flag in one transaction. The unique index on complaint_id decides races:
// when two submissions land concurrently the second insert fails with a
// unique violation and is reported as ErrDuplicateFeedback.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feedback tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertQuery = `INSERT INTO feedbacks (id, complaint_id, student_id, category, rating, comment, created_at, updated_at)
		VALUES (:id, :complaint_id, :student_id, :category, :rating, :comment, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, feedback); err != nil {
		if uniqueViolation(err) == "feedbacks_complaint_id_key" {
			return ErrDuplicateFeedback
		}
		return fmt.Errorf("create feedback: %w", err)
	}

	const flagQuery = `UPDATE complaints SET has_feedback = TRUE, updated_at = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, flagQuery, feedback.ComplaintID, now); err != nil {
		return fmt.Errorf("mark complaint feedback: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit feedback tx: %w", err)
	}
	return nil
}

// FindDetailByComplaint returns the single feedback for a complaint joined
// with its projections.
func (r *FeedbackRepository) FindDetailByComplaint(ctx context.Context, complaintID string) (*dto.FeedbackDetail, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM feedbacks f
		JOIN users u ON u.id = f.student_id
		JOIN complaints c ON c.id = f.complaint_id
		WHERE f.complaint_id = $1 LIMIT 1`, feedbackColumns, studentProjection, complaintRefProjection)
	var detail dto.FeedbackDetail
	if err := r.db.GetContext(ctx, &detail, query, complaintID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find feedback by complaint: %w", err)
	}
	return &detail, nil
}

// List returns all feedback matching the filter, newest first.
func (r *FeedbackRepository) List(ctx context.Context, filter models.FeedbackFilter) ([]dto.FeedbackDetail, error) {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(`SELECT %s, %s, %s FROM feedbacks f
		JOIN users u ON u.id = f.student_id
		JOIN complaints c ON c.id = f.complaint_id
		WHERE 1=1`, feedbackColumns, studentProjectionWithDept, complaintRefProjectionFull))
	var args []interface{}

	if filter.Category != "" && filter.Category != "All" {
		args = append(args, filter.Category)
		builder.WriteString(fmt.Sprintf(" AND f.category = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY f.created_at DESC")

	var details []dto.FeedbackDetail
	if err := r.db.SelectContext(ctx, &details, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return details, nil
}

// Stats computes the feedback aggregates: total count, overall average
// rating, per-category averages and the ascending rating histogram. The
// average is 0 when no feedback exists.
func (r *FeedbackRepository) Stats(ctx context.Context) (*models.FeedbackStats, error) {
	stats := &models.FeedbackStats{}

	const summaryQuery = `SELECT COUNT(*) AS total, COALESCE(AVG(rating), 0) AS average_rating FROM feedbacks`
	summary := struct {
		Total         int     `db:"total"`
		AverageRating float64 `db:"average_rating"`
	}{}
	if err := r.db.GetContext(ctx, &summary, summaryQuery); err != nil {
		return nil, fmt.Errorf("feedback summary: %w", err)
	}
	stats.Total = summary.Total
	stats.AverageRating = summary.AverageRating

	const categoryQuery = `SELECT category, AVG(rating) AS average_rating, COUNT(*) AS count FROM feedbacks GROUP BY category ORDER BY category`
	if err := r.db.SelectContext(ctx, &stats.CategoryRatings, categoryQuery); err != nil {
		return nil, fmt.Errorf("feedback category ratings: %w", err)
	}

	const histogramQuery = `SELECT rating, COUNT(*) AS count FROM feedbacks GROUP BY rating ORDER BY rating ASC`
	if err := r.db.SelectContext(ctx, &stats.RatingDistribution, histogramQuery); err != nil {
		return nil, fmt.Errorf("feedback rating distribution: %w", err)
	}

	return stats, nil
}
