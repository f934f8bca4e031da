package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"gorm.io/gorm"
)

// RentalRequestFilters contains the filtering options for rental request queries
type RentalRequestFilters struct {
	Status *domain.RentalRequestStatus
	Search *string
}

type RentalRequestRepository struct {
	db *gorm.DB
}

func NewRentalRequestRepository(db *gorm.DB) *RentalRequestRepository {
	return &RentalRequestRepository{db: db}
}

func (r *RentalRequestRepository) Create(ctx context.Context, request *domain.RentalRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *RentalRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalRequest, error) {
	var request domain.RentalRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *RentalRequestRepository) Update(ctx context.Context, request *domain.RentalRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *RentalRequestRepository) List(ctx context.Context, filters RentalRequestFilters, page, pageSize int) ([]domain.RentalRequest, int64, error) {
	var requests []domain.RentalRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.RentalRequest{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Search != nil && *filters.Search != "" {
		searchPattern := "%" + *filters.Search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&requests).Error

	return requests, total, err
}

// ConvertToCustomer creates the customer and links the rental request in one
// transaction. The caller checks the converted precondition; the WHERE guard
// here closes the race with a concurrent conversion.
func (r *RentalRequestRepository) ConvertToCustomer(ctx context.Context, request *domain.RentalRequest, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer.RentalRequestID = &request.ID
		if err := tx.Create(customer).Error; err != nil {
			return err
		}
		result := tx.Model(&domain.RentalRequest{}).
			Where("id = ? AND status <> ?", request.ID, domain.RentalRequestStatusConverted).
			Updates(map[string]interface{}{
				"status":      domain.RentalRequestStatusConverted,
				"customer_id": customer.ID,
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
