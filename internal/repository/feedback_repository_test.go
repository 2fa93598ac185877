package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/campusdesk-api/internal/models"
)

func TestFeedbackCreateCommitsRowAndFlag(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedbacks").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE complaints SET has_feedback = TRUE").
		WithArgs("c1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	feedback := &models.Feedback{
		ComplaintID: "c1",
		StudentID:   "u1",
		Category:    models.CategoryIT,
		Rating:      4,
		Comment:     "Resolved quickly",
	}
	err := repo.Create(context.Background(), feedback)
	require.NoError(t, err)
	assert.NotEmpty(t, feedback.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackCreateDuplicateRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedbacks").
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "feedbacks_complaint_id_key"})
	mock.ExpectRollback()

	feedback := &models.Feedback{ComplaintID: "c1", StudentID: "u1", Category: models.CategoryIT, Rating: 4, Comment: "Resolved quickly"}
	err := repo.Create(context.Background(), feedback)
	assert.ErrorIs(t, err, ErrDuplicateFeedback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackFindDetailByComplaintNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery("SELECT .+ FROM feedbacks f").
		WithArgs("c1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindDetailByComplaint(context.Background(), "c1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestFeedbackList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	now := time.Now()
	description := "Room 204 projector flickers"
	status := "Resolved"
	rows := sqlmock.NewRows([]string{
		"id", "complaint_id", "student_id", "category", "rating", "comment", "created_at", "updated_at",
		"student.id", "student.name", "student.email", "student.enrollment_number", "student.department",
		"complaint.id", "complaint.title", "complaint.category", "complaint.description", "complaint.status",
	}).AddRow("f1", "c1", "u1", "Infrastructure", 5, "Resolved quickly", now, now,
		"u1", "Asha", "asha@example.com", "CS2021001", nil,
		"c1", "Broken projector", "Infrastructure", description, status)

	mock.ExpectQuery("SELECT .+ FROM feedbacks f").
		WithArgs("Infrastructure").
		WillReturnRows(rows)

	details, err := repo.List(context.Background(), models.FeedbackFilter{Category: "Infrastructure"})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "f1", details[0].ID)
	assert.Equal(t, "Broken projector", details[0].Complaint.Title)
	require.NotNil(t, details[0].Complaint.Status)
	assert.Equal(t, models.StatusResolved, *details[0].Complaint.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackStats(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS total, COALESCE\\(AVG\\(rating\\), 0\\)").
		WillReturnRows(sqlmock.NewRows([]string{"total", "average_rating"}).AddRow(3, 4.33))
	mock.ExpectQuery("SELECT category, AVG\\(rating\\)").
		WillReturnRows(sqlmock.NewRows([]string{"category", "average_rating", "count"}).AddRow("IT", 4.5, 2))
	mock.ExpectQuery("SELECT rating, COUNT\\(\\*\\) AS count FROM feedbacks GROUP BY rating").
		WillReturnRows(sqlmock.NewRows([]string{"rating", "count"}).AddRow(4, 1).AddRow(5, 2))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.InDelta(t, 4.33, stats.AverageRating, 0.001)
	require.Len(t, stats.CategoryRatings, 1)
	assert.Equal(t, models.CategoryIT, stats.CategoryRatings[0].Category)
	require.Len(t, stats.RatingDistribution, 2)
	assert.Equal(t, 4, stats.RatingDistribution[0].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackStatsEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS total, COALESCE\\(AVG\\(rating\\), 0\\)").
		WillReturnRows(sqlmock.NewRows([]string{"total", "average_rating"}).AddRow(0, 0.0))
	mock.ExpectQuery("SELECT category, AVG\\(rating\\)").
		WillReturnRows(sqlmock.NewRows([]string{"category", "average_rating", "count"}))
	mock.ExpectQuery("SELECT rating, COUNT\\(\\*\\) AS count FROM feedbacks GROUP BY rating").
		WillReturnRows(sqlmock.NewRows([]string{"rating", "count"}))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Zero(t, stats.AverageRating)
	assert.Empty(t, stats.CategoryRatings)
	assert.NoError(t, mock.ExpectationsWereMet())
}
