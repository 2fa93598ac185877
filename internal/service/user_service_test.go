package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusdesk/campusdesk-api/internal/models"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]*models.User
	deleted []string
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) ListStudents(ctx context.Context) ([]models.User, error) {
	var students []models.User
	for _, u := range m.users {
		if u.Role == models.RoleStudent {
			students = append(students, *u)
		}
	}
	return students, nil
}

func (m *mockUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	if user, ok := m.users[id]; ok {
		user.IsActive = active
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func student() *models.User {
	return &models.User{ID: "u1", Name: "Asha", Email: "asha@example.com", Role: models.RoleStudent, IsActive: true}
}

func admin() *models.User {
	return &models.User{ID: "a1", Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true}
}

func newUserService(repo *mockUserRepo) *UserService {
	return NewUserService(repo, validator.New(), zap.NewNop())
}

func TestGetSelfStripsCredentials(t *testing.T) {
	repo := newMockUserRepo(student())
	repo.users["u1"].PasswordHash = "hash"
	svc := newUserService(repo)

	view, err := svc.GetSelf(context.Background(), studentActor)
	require.NoError(t, err)
	assert.Equal(t, "Asha", view.Name)
}

func TestUpdateProfilePartial(t *testing.T) {
	repo := newMockUserRepo(student())
	svc := newUserService(repo)

	phone := "555-0101"
	view, err := svc.UpdateProfile(context.Background(), studentActor, models.UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Asha", view.Name)
	require.NotNil(t, view.Phone)
	assert.Equal(t, phone, *view.Phone)
}

func TestUpdateProfileIgnoresBlankName(t *testing.T) {
	repo := newMockUserRepo(student())
	svc := newUserService(repo)

	blank := "   "
	view, err := svc.UpdateProfile(context.Background(), studentActor, models.UpdateProfileRequest{Name: &blank})
	require.NoError(t, err)
	assert.Equal(t, "Asha", view.Name)
}

func TestUpdateProfileValidatesSemester(t *testing.T) {
	svc := newUserService(newMockUserRepo(student()))

	semester := 13
	_, err := svc.UpdateProfile(context.Background(), studentActor, models.UpdateProfileRequest{Semester: &semester})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListStudentsForbiddenForStudent(t *testing.T) {
	svc := newUserService(newMockUserRepo(student()))

	_, err := svc.ListStudents(context.Background(), studentActor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGetStudentHidesAdminAccounts(t *testing.T) {
	svc := newUserService(newMockUserRepo(student(), admin()))

	_, err := svc.GetStudent(context.Background(), adminActor, "a1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "student not found", appErr.Message)
}

func TestGetStudentNotFound(t *testing.T) {
	svc := newUserService(newMockUserRepo())

	_, err := svc.GetStudent(context.Background(), adminActor, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestToggleActiveTwiceRestoresState(t *testing.T) {
	repo := newMockUserRepo(student())
	svc := newUserService(repo)

	view, err := svc.ToggleActive(context.Background(), adminActor, "u1")
	require.NoError(t, err)
	assert.False(t, view.IsActive)

	view, err = svc.ToggleActive(context.Background(), adminActor, "u1")
	require.NoError(t, err)
	assert.True(t, view.IsActive)
}

func TestDeleteStudent(t *testing.T) {
	repo := newMockUserRepo(student())
	svc := newUserService(repo)

	err := svc.DeleteStudent(context.Background(), adminActor, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, repo.deleted)
}

func TestDeleteStudentForbiddenForStudent(t *testing.T) {
	svc := newUserService(newMockUserRepo(student()))

	err := svc.DeleteStudent(context.Background(), studentActor, "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
