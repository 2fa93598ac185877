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

const complaintColumns = `c.id, c.title, c.description, c.category, c.status, c.student_id, c.admin_response, c.resolved_at, c.has_feedback, c.created_at, c.updated_at`

// Student projection tiers. Listings carry the lean projection; the detail
// view additionally exposes department and phone.
const (
	studentProjection = `u.id AS "student.id", u.name AS "student.name", u.email AS "student.email", u.enrollment_number AS "student.enrollment_number"`

	studentProjectionWithDept = studentProjection + `, u.department AS "student.department"`

	studentProjectionFull = studentProjectionWithDept + `, u.phone AS "student.phone"`
)

// ComplaintRepository provides database access for complaints.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository creates a new instance of ComplaintRepository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a new complaint.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now

	const query = `INSERT INTO complaints (id, title, description, category, status, student_id, admin_response, resolved_at, has_feedback, created_at, updated_at)
		VALUES (:id, :title, :description, :category, :status, :student_id, :admin_response, :resolved_at, :has_feedback, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// FindByID returns a bare complaint row.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	const query = `SELECT id, title, description, category, status, student_id, admin_response, resolved_at, has_feedback, created_at, updated_at FROM complaints WHERE id = $1 LIMIT 1`
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint by id: %w", err)
	}
	return &complaint, nil
}

// FindDetailByID returns a complaint joined with the full student projection.
func (r *ComplaintRepository) FindDetailByID(ctx context.Context, id string) (*dto.ComplaintDetail, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM complaints c JOIN users u ON u.id = c.student_id WHERE c.id = $1 LIMIT 1`, complaintColumns, studentProjectionFull)
	var detail dto.ComplaintDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint detail: %w", err)
	}
	return &detail, nil
}

// ListByStudent returns a student's complaints, newest first.
func (r *ComplaintRepository) ListByStudent(ctx context.Context, studentID string) ([]dto.ComplaintDetail, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM complaints c JOIN users u ON u.id = c.student_id WHERE c.student_id = $1 ORDER BY c.created_at DESC`, complaintColumns, studentProjection)
	var details []dto.ComplaintDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID); err != nil {
		return nil, fmt.Errorf("list complaints by student: %w", err)
	}
	return details, nil
}

// List returns all complaints matching the filter, newest first. Empty or
// "All" filter values leave that dimension unfiltered.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]dto.ComplaintDetail, error) {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(`SELECT %s, %s FROM complaints c JOIN users u ON u.id = c.student_id WHERE 1=1`, complaintColumns, studentProjectionWithDept))
	var args []interface{}

	if filter.Category != "" && filter.Category != "All" {
		args = append(args, filter.Category)
		builder.WriteString(fmt.Sprintf(" AND c.category = $%d", len(args)))
	}
	if filter.Status != "" && filter.Status != "All" {
		args = append(args, filter.Status)
		builder.WriteString(fmt.Sprintf(" AND c.status = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY c.created_at DESC")

	var details []dto.ComplaintDetail
	if err := r.db.SelectContext(ctx, &details, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return details, nil
}

// Update persists the mutable triage fields of a complaint.
func (r *ComplaintRepository) Update(ctx context.Context, complaint *models.Complaint) error {
	complaint.UpdatedAt = time.Now().UTC()
	const query = `UPDATE complaints SET status = :status, admin_response = :admin_response, resolved_at = :resolved_at, has_feedback = :has_feedback, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	return nil
}

// Stats aggregates complaint counts by status across all complaints.
func (r *ComplaintRepository) Stats(ctx context.Context) (*models.ComplaintStats, error) {
	const query = `SELECT COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'Pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'In Progress') AS in_progress,
		COUNT(*) FILTER (WHERE status = 'Resolved') AS resolved
		FROM complaints`
	var stats models.ComplaintStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("complaint stats: %w", err)
	}
	return &stats, nil
}

// StatsByStudent aggregates complaint counts by status for one student.
func (r *ComplaintRepository) StatsByStudent(ctx context.Context, studentID string) (*models.ComplaintStats, error) {
	const query = `SELECT COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'Pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'In Progress') AS in_progress,
		COUNT(*) FILTER (WHERE status = 'Resolved') AS resolved
		FROM complaints WHERE student_id = $1`
	var stats models.ComplaintStats
	if err := r.db.GetContext(ctx, &stats, query, studentID); err != nil {
		return nil, fmt.Errorf("complaint stats by student: %w", err)
	}
	return &stats, nil
}

// CategoryCounts tallies complaints per category regardless of status.
func (r *ComplaintRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `SELECT category, COUNT(*) AS count FROM complaints GROUP BY category ORDER BY category`
	var counts []models.CategoryCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("complaint category counts: %w", err)
	}
	return counts, nil
}
