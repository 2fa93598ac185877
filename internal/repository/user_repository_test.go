package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/campusdesk-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userRows(now time.Time) *sqlmock.Rows {
	enrollment := "CS2021001"
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "phone", "enrollment_number", "department", "semester", "is_active", "created_at", "updated_at"}).
		AddRow("u1", "Asha", "asha@example.com", "hash", string(models.RoleStudent), nil, enrollment, nil, nil, true, now, now)
}

func TestUserFindByEmailLowercasesInput(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, role, phone, enrollment_number, department, semester, is_active, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("asha@example.com").
		WillReturnRows(userRows(now))

	user, err := repo.FindByEmail(context.Background(), "  Asha@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserCreateMintsIDAndLowercasesEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Name: "Asha", Email: "Asha@Example.com", PasswordHash: "hash", Role: models.RoleStudent, IsActive: true}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateMapsDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "users_email_key"})

	err := repo.Create(context.Background(), &models.User{Name: "Asha", Email: "asha@example.com", Role: models.RoleStudent})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserCreateMapsDuplicateEnrollment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "users_enrollment_number_uniq"})

	err := repo.Create(context.Background(), &models.User{Name: "Asha", Email: "asha@example.com", Role: models.RoleStudent})
	assert.ErrorIs(t, err, ErrDuplicateEnrollment)
}

func TestListStudents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM users WHERE role").
		WithArgs("student").
		WillReturnRows(userRows(now))

	students, err := repo.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, models.RoleStudent, students[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET is_active").
		WithArgs("u1", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetActive(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
