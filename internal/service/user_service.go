package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/campusdesk-api/internal/models"
	"github.com/campusdesk/campusdesk-api/internal/policy"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	ListStudents(ctx context.Context) ([]models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// UserService handles profile and student-management use cases.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// GetSelf returns the actor's own record minus the credential hash.
func (s *UserService) GetSelf(ctx context.Context, actor models.Actor) (*models.UserView, error) {
	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return models.NewUserView(user), nil
}

// UpdateProfile applies a partial profile update. Only provided fields
// change; email, role and enrollment number are immutable here.
func (s *UserService) UpdateProfile(ctx context.Context, actor models.Actor, req models.UpdateProfileRequest) (*models.UserView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if req.Name != nil {
		if trimmed := strings.TrimSpace(*req.Name); trimmed != "" {
			user.Name = trimmed
		}
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	if req.Semester != nil {
		user.Semester = req.Semester
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return models.NewUserView(user), nil
}

// ListStudents returns every student account, newest first.
func (s *UserService) ListStudents(ctx context.Context, actor models.Actor) ([]*models.UserView, error) {
	if err := policy.CanManageStudents(actor); err != nil {
		return nil, err
	}
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	views := make([]*models.UserView, 0, len(students))
	for i := range students {
		views = append(views, models.NewUserView(&students[i]))
	}
	return views, nil
}

// GetStudent returns one student account. A missing user and a non-student
// user look identical.
func (s *UserService) GetStudent(ctx context.Context, actor models.Actor, id string) (*models.UserView, error) {
	student, err := s.loadStudent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return models.NewUserView(student), nil
}

// ToggleActive flips a student's activation flag.
func (s *UserService) ToggleActive(ctx context.Context, actor models.Actor, id string) (*models.UserView, error) {
	student, err := s.loadStudent(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	student.IsActive = !student.IsActive
	if err := s.repo.SetActive(ctx, student.ID, student.IsActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle student")
	}

	s.logger.Info("student status toggled", zap.String("student_id", student.ID), zap.Bool("is_active", student.IsActive))
	return models.NewUserView(student), nil
}

// DeleteStudent removes a student account permanently.
func (s *UserService) DeleteStudent(ctx context.Context, actor models.Actor, id string) error {
	student, err := s.loadStudent(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, student.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	s.logger.Info("student deleted", zap.String("student_id", student.ID))
	return nil
}

func (s *UserService) loadStudent(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	if err := policy.CanManageStudents(actor); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := policy.CanTargetUser(user); err != nil {
		return nil, err
	}
	return user, nil
}
