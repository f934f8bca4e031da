package repository

import (
	"context"

	"github.com/samedayramps/ramp-api/internal/domain"
	"gorm.io/gorm"
)

// PricingVariablesRepository manages the single pricing configuration row.
// There is no Create/Delete; Upsert keeps the table at exactly one row.
type PricingVariablesRepository struct {
	db *gorm.DB
}

func NewPricingVariablesRepository(db *gorm.DB) *PricingVariablesRepository {
	return &PricingVariablesRepository{db: db}
}

func (r *PricingVariablesRepository) GetCurrent(ctx context.Context) (*domain.PricingVariables, error) {
	var vars domain.PricingVariables
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&vars).Error
	if err != nil {
		return nil, err
	}
	return &vars, nil
}

func (r *PricingVariablesRepository) Upsert(ctx context.Context, vars *domain.PricingVariables) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.PricingVariables
		err := tx.Order("created_at ASC").First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(vars).Error
		}
		if err != nil {
			return err
		}
		vars.ID = existing.ID
		vars.CreatedAt = existing.CreatedAt
		return tx.Save(vars).Error
	})
}
