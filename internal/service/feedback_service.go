package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdesk/campusdesk-api/internal/dto"
	"github.com/campusdesk/campusdesk-api/internal/models"
	"github.com/campusdesk/campusdesk-api/internal/policy"
	"github.com/campusdesk/campusdesk-api/internal/repository"
	appErrors "github.com/campusdesk/campusdesk-api/pkg/errors"
)

type feedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	FindDetailByComplaint(ctx context.Context, complaintID string) (*dto.FeedbackDetail, error)
	List(ctx context.Context, filter models.FeedbackFilter) ([]dto.FeedbackDetail, error)
	Stats(ctx context.Context) (*models.FeedbackStats, error)
}

type complaintReader interface {
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
}

// FeedbackService orchestrates feedback submission and review.
type FeedbackService struct {
	repo       feedbackRepository
	complaints complaintReader
	cache      statsCache
	metrics    *MetricsService
	cacheTTL   time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewFeedbackService constructs the feedback service.
func NewFeedbackService(repo feedbackRepository, complaints complaintReader, cache statsCache, metrics *MetricsService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, complaints: complaints, cache: cache, metrics: metrics, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Submit records a student's rating of their resolved complaint. The
// feedback row and the complaint's has_feedback flag are written in one
// transaction, and the unique constraint on the complaint reference makes
// the loser of a concurrent double-submit receive a conflict.
func (s *FeedbackService) Submit(ctx context.Context, actor models.Actor, req dto.SubmitFeedbackRequest) (*dto.FeedbackDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}

	complaint, err := s.complaints.FindByID(ctx, req.ComplaintID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}

	if err := policy.CanSubmitFeedback(actor, complaint); err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		ComplaintID: complaint.ID,
		StudentID:   actor.ID,
		Category:    complaint.Category,
		Rating:      req.Rating,
		Comment:     req.Comment,
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		if errors.Is(err, repository.ErrDuplicateFeedback) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "feedback already submitted for this complaint")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create feedback")
	}

	s.invalidateStats(ctx)
	s.logger.Info("feedback submitted", zap.String("complaint_id", complaint.ID), zap.Int("rating", req.Rating))

	detail, err := s.repo.FindDetailByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback")
	}
	return detail, nil
}

// ListAll returns every feedback record matching the filter, newest first.
func (s *FeedbackService) ListAll(ctx context.Context, actor models.Actor, filter models.FeedbackFilter) ([]dto.FeedbackDetail, error) {
	if err := policy.CanReviewFeedback(actor); err != nil {
		return nil, err
	}
	details, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	return details, nil
}

// GetByComplaint returns the single feedback record for a complaint.
func (s *FeedbackService) GetByComplaint(ctx context.Context, actor models.Actor, complaintID string) (*dto.FeedbackDetail, error) {
	if err := policy.CanReviewFeedback(actor); err != nil {
		return nil, err
	}
	detail, err := s.repo.FindDetailByComplaint(ctx, complaintID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no feedback found for this complaint")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback")
	}
	return detail, nil
}

// StatsGlobal returns the feedback aggregates, cached when a cache is wired.
// Returns whether the payload came from cache.
func (s *FeedbackService) StatsGlobal(ctx context.Context, actor models.Actor) (*dto.FeedbackStatsResponse, bool, error) {
	if err := policy.CanReviewFeedback(actor); err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		var cached dto.FeedbackStatsResponse
		if err := s.cache.Get(ctx, repository.CacheKeyFeedbackStats, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, true, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("feedback stats cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate feedback")
	}

	resp := &dto.FeedbackStatsResponse{
		FeedbackStats: *stats,
		GeneratedAt:   time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, repository.CacheKeyFeedbackStats, resp, s.cacheTTL); err != nil {
			s.logger.Warn("feedback stats cache write failed", zap.Error(err))
		}
	}
	return resp, false, nil
}

func (s *FeedbackService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.CachePatternStats); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}
