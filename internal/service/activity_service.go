package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/repository"
	"go.uber.org/zap"
)

type ActivityService struct {
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewActivityService(activityRepo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *ActivityService) Create(ctx context.Context, req *domain.CreateActivityRequest) (*domain.Activity, error) {
	if !req.TargetType.IsValid() {
		return nil, fmt.Errorf("%w: unknown target type %q", ErrInvalidInput, req.TargetType)
	}

	activity := &domain.Activity{
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Title:      req.Title,
		Body:       req.Body,
		OccurredAt: time.Now(),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("creating activity: %w", err)
	}
	return activity, nil
}

func (s *ActivityService) GetByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.Activity, error) {
	if !targetType.IsValid() {
		return nil, fmt.Errorf("%w: unknown target type %q", ErrInvalidInput, targetType)
	}
	return s.activityRepo.GetByTarget(ctx, targetType, targetID, limit)
}

func (s *ActivityService) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.activityRepo.ListRecent(ctx, limit)
}
