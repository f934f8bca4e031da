package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuoteFilters contains the filtering options for quote queries
type QuoteFilters struct {
	Status          *domain.QuoteStatus
	PaymentStatus   *domain.PaymentStatus
	AgreementStatus *domain.AgreementStatus
	CustomerID      *uuid.UUID
}

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(quote).Error
}

// UpdateFields updates specific columns without touching the rest of the row
func (r *QuoteRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.Quote{}).Where("id = ?", id).Updates(fields).Error
}

func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Quote{}, "id = ?", id).Error
}

func (r *QuoteRepository) List(ctx context.Context, filters QuoteFilters, page, pageSize int) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.AgreementStatus != nil {
		query = query.Where("agreement_status = ?", *filters.AgreementStatus)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Customer").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&quotes).Error

	return quotes, total, err
}

// TransitionStatus atomically moves a quote from one of the expected statuses
// to the target status. Returns false when the quote was not in an expected
// status (or doesn't exist), which callers treat as a conflict.
func (r *QuoteRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.QuoteStatus, to domain.QuoteStatus, extra map[string]interface{}) (bool, error) {
	fields := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	result := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *QuoteRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) GetByAgreementID(ctx context.Context, agreementID string) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Where("agreement_id = ?", agreementID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListByAgreementStatus returns quotes whose agreement is in one of the given
// statuses and has a vendor reference. Used by the reconciliation sweep.
func (r *QuoteRepository) ListByAgreementStatus(ctx context.Context, statuses []domain.AgreementStatus) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("agreement_status IN ? AND agreement_id <> ''", statuses).
		Find(&quotes).Error
	return quotes, err
}
