package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"gorm.io/gorm"
)

type QuoteStageHistoryRepository struct {
	db *gorm.DB
}

func NewQuoteStageHistoryRepository(db *gorm.DB) *QuoteStageHistoryRepository {
	return &QuoteStageHistoryRepository{db: db}
}

// Create records a new status transition
func (r *QuoteStageHistoryRepository) Create(ctx context.Context, history *domain.QuoteStageHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// GetByQuoteID returns all stage history for a quote, ordered by change time
func (r *QuoteStageHistoryRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) ([]domain.QuoteStageHistory, error) {
	var history []domain.QuoteStageHistory
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("changed_at DESC").
		Find(&history).Error
	return history, err
}

// RecordTransition is a convenience method to create a stage history record
func (r *QuoteStageHistoryRepository) RecordTransition(
	ctx context.Context,
	quoteID uuid.UUID,
	fromStatus *domain.QuoteStatus,
	toStatus domain.QuoteStatus,
	notes string,
) error {
	history := &domain.QuoteStageHistory{
		QuoteID:    quoteID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Notes:      notes,
		ChangedAt:  time.Now(),
	}
	return r.Create(ctx, history)
}

// DeleteByQuoteID removes all history for a quote (used when a draft is deleted)
func (r *QuoteStageHistoryRepository) DeleteByQuoteID(ctx context.Context, quoteID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Delete(&domain.QuoteStageHistory{}).Error
}
