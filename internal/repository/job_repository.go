package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobFilters contains the filtering options for job queries
type JobFilters struct {
	Status     *domain.JobStatus
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(job).Error
}

// UpdateFields updates specific columns without touching the rest of the row
func (r *JobRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.Job{}).Where("id = ?", id).Updates(fields).Error
}

func (r *JobRepository) List(ctx context.Context, filters JobFilters, page, pageSize int) ([]domain.Job, int64, error) {
	var jobs []domain.Job
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Job{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.From != nil {
		query = query.Where("scheduled_installation_date >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("scheduled_installation_date <= ?", *filters.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Customer").
		Offset(offset).Limit(pageSize).
		Order("scheduled_installation_date ASC").
		Find(&jobs).Error

	return jobs, total, err
}

// CreateFromQuote creates the job and flips the quote to job_created in one
// transaction. The quote must still be in accepted status when the update
// lands; a concurrent job creation loses the race and gets ErrRecordNotFound.
func (r *JobRepository) CreateFromQuote(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(job).Error; err != nil {
			return err
		}
		result := tx.Model(&domain.Quote{}).
			Where("id = ? AND status = ?", job.QuoteID, domain.QuoteStatusAccepted).
			Updates(map[string]interface{}{
				"status": domain.QuoteStatusJobCreated,
				"job_id": job.ID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
