package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/campusdesk-api/internal/dto"
	"github.com/campusdesk/campusdesk-api/internal/models"
	"github.com/campusdesk/campusdesk-api/internal/policy"
	"github.com/campusdesk/campusdesk-api/internal/repository"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
)

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	FindDetailByID(ctx context.Context, id string) (*dto.ComplaintDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]dto.ComplaintDetail, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]dto.ComplaintDetail, error)
	Update(ctx context.Context, complaint *models.Complaint) error
	Stats(ctx context.Context) (*models.ComplaintStats, error)
	StatsByStudent(ctx context.Context, studentID string) (*models.ComplaintStats, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ComplaintService orchestrates the complaint lifecycle.
type ComplaintService struct {
	repo      complaintRepository
	users     userReader
	cache     statsCache
	metrics   *MetricsService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewComplaintService constructs the complaint service.
func NewComplaintService(repo complaintRepository, users userReader, cache statsCache, metrics *MetricsService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{repo: repo, users: users, cache: cache, metrics: metrics, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Create registers a new complaint for the acting student.
func (s *ComplaintService) Create(ctx context.Context, actor models.Actor, req dto.CreateComplaintRequest) (*dto.ComplaintDetail, error) {
	if err := policy.CanCreateComplaint(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and description are required")
	}
	category := models.ComplaintCategory(req.Category)
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown complaint category")
	}

	complaint := &models.Complaint{
		Title:       title,
		Description: description,
		Category:    category,
		Status:      models.StatusPending,
		StudentID:   actor.ID,
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}

	s.invalidateStats(ctx)
	s.logger.Info("complaint created", zap.String("complaint_id", complaint.ID), zap.String("category", string(category)))

	student, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return &dto.ComplaintDetail{
		Complaint: *complaint,
		Student: dto.StudentRef{
			ID:               student.ID,
			Name:             student.Name,
			Email:            student.Email,
			EnrollmentNumber: student.EnrollmentNumber,
		},
	}, nil
}

// ListMine returns the acting student's complaints, newest first.
func (s *ComplaintService) ListMine(ctx context.Context, actor models.Actor) ([]dto.ComplaintDetail, error) {
	if err := policy.CanListOwnComplaints(actor); err != nil {
		return nil, err
	}
	details, err := s.repo.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return details, nil
}

// ListAll returns every complaint matching the filter, newest first.
func (s *ComplaintService) ListAll(ctx context.Context, actor models.Actor, filter models.ComplaintFilter) ([]dto.ComplaintDetail, error) {
	if err := policy.CanListAllComplaints(actor); err != nil {
		return nil, err
	}
	details, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return details, nil
}

// Get returns a single complaint, applying the read policy.
func (s *ComplaintService) Get(ctx context.Context, actor models.Actor, id string) (*dto.ComplaintDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	if err := policy.CanViewComplaint(actor, detail.StudentID); err != nil {
		return nil, err
	}
	return detail, nil
}

// UpdateStatus sets a complaint's status and optionally overwrites the admin
// response. Any status value is settable at any time; the lifecycle has no
// forward-only restriction. resolved_at is stamped only on a transition into
// Resolved from a different prior state, so the first resolution timestamp
// survives repeated saves.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor models.Actor, id string, req dto.UpdateStatusRequest) (*dto.ComplaintDetail, error) {
	if err := policy.CanUpdateStatus(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	status := models.ComplaintStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown complaint status")
	}

	complaint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}

	previous := complaint.Status
	complaint.Status = status
	if response := strings.TrimSpace(req.AdminResponse); response != "" {
		complaint.AdminResponse = response
	}
	if status == models.StatusResolved && previous != models.StatusResolved {
		now := time.Now().UTC()
		complaint.ResolvedAt = &now
	}

	if err := s.repo.Update(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update complaint")
	}

	s.invalidateStats(ctx)
	s.logger.Info("complaint status updated",
		zap.String("complaint_id", complaint.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	return detail, nil
}

// StatsGlobal returns the admin dashboard counts, cached when a cache is
// wired. Returns whether the payload came from cache.
func (s *ComplaintService) StatsGlobal(ctx context.Context, actor models.Actor) (*dto.ComplaintStatsResponse, bool, error) {
	if err := policy.CanViewGlobalStats(actor); err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		var cached dto.ComplaintStatsResponse
		if err := s.cache.Get(ctx, repository.CacheKeyComplaintStats, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, true, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("complaint stats cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate complaints")
	}
	categories, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate categories")
	}

	resp := &dto.ComplaintStatsResponse{
		ComplaintStats: *stats,
		CategoryStats:  categories,
		GeneratedAt:    time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, repository.CacheKeyComplaintStats, resp, s.cacheTTL); err != nil {
			s.logger.Warn("complaint stats cache write failed", zap.Error(err))
		}
	}
	return resp, false, nil
}

// StatsMine returns the acting student's own complaint counts.
func (s *ComplaintService) StatsMine(ctx context.Context, actor models.Actor) (*models.ComplaintStats, error) {
	if err := policy.CanViewOwnStats(actor); err != nil {
		return nil, err
	}
	stats, err := s.repo.StatsByStudent(ctx, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate complaints")
	}
	return stats, nil
}

func (s *ComplaintService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.CachePatternStats); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
