package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samedayramps/ramp-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PricingConfigStore provides access to the pricing configuration singleton
type PricingConfigStore interface {
	GetCurrent(ctx context.Context) (*domain.PricingVariables, error)
	Upsert(ctx context.Context, vars *domain.PricingVariables) error
}

// PricingService computes the price breakdown for a ramp configuration.
// Calculation is deterministic for fixed inputs and never writes.
type PricingService struct {
	store    PricingConfigStore
	distance DistanceProvider
	logger   *zap.Logger
}

func NewPricingService(store PricingConfigStore, distance DistanceProvider, logger *zap.Logger) *PricingService {
	return &PricingService{
		store:    store,
		distance: distance,
		logger:   logger,
	}
}

// GetVariables returns the current pricing configuration
func (s *PricingService) GetVariables(ctx context.Context) (*domain.PricingVariables, error) {
	vars, err := s.store.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPricingNotConfigured
		}
		return nil, fmt.Errorf("getting pricing variables: %w", err)
	}
	return vars, nil
}

// UpdateVariables validates and upserts the pricing configuration singleton
func (s *PricingService) UpdateVariables(ctx context.Context, req *domain.UpdatePricingVariablesRequest) (*domain.PricingVariables, error) {
	vars := &domain.PricingVariables{
		WarehouseAddress:       req.WarehouseAddress,
		BaseDeliveryFee:        req.BaseDeliveryFee,
		DeliveryFeePerMile:     req.DeliveryFeePerMile,
		BaseInstallFee:         req.BaseInstallFee,
		InstallFeePerComponent: req.InstallFeePerComponent,
		RentalRatePerFt:        req.RentalRatePerFt,
	}
	if err := s.store.Upsert(ctx, vars); err != nil {
		return nil, fmt.Errorf("upserting pricing variables: %w", err)
	}
	s.logger.Info("pricing variables updated",
		zap.String("warehouseAddress", vars.WarehouseAddress),
		zap.Float64("rentalRatePerFt", vars.RentalRatePerFt))
	return vars, nil
}

// Calculate computes the full price breakdown for one configuration.
//
//	deliveryFee       = baseDeliveryFee + deliveryFeePerMile * distanceMiles
//	installFee        = baseInstallFee + installFeePerComponent * sum(quantities)
//	monthlyRentalRate = rentalRatePerFt * totalLengthFt (0 with no components)
//	totalUpfront      = deliveryFee + installFee
//
// warehouseAddress overrides the configured warehouse when non-empty.
func (s *PricingService) Calculate(ctx context.Context, components domain.RampComponents, totalLengthFt float64, installAddress, warehouseAddress string) (*domain.PricingResult, error) {
	if installAddress == "" {
		return nil, fmt.Errorf("%w: install address is required", ErrInvalidInput)
	}
	if totalLengthFt < 0 {
		return nil, fmt.Errorf("%w: total length cannot be negative", ErrInvalidInput)
	}
	rampLength := 0.0
	for i, comp := range components {
		if !comp.Kind.IsValid() {
			return nil, fmt.Errorf("%w: component %d has unknown kind %q", ErrInvalidInput, i, comp.Kind)
		}
		if comp.LengthFeet < 0 {
			return nil, fmt.Errorf("%w: component %d has negative length", ErrInvalidInput, i)
		}
		if comp.Quantity < 1 {
			return nil, fmt.Errorf("%w: component %d has quantity below 1", ErrInvalidInput, i)
		}
		if comp.Kind == domain.RampComponentKindRamp {
			rampLength += comp.LengthFeet * float64(comp.Quantity)
		}
	}
	if len(components) > 0 && math.Abs(rampLength-totalLengthFt) > 1e-9 {
		return nil, fmt.Errorf("%w: total length %.2f does not match ramp component sum %.2f",
			ErrInvalidInput, totalLengthFt, rampLength)
	}

	vars, err := s.store.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPricingNotConfigured
		}
		return nil, fmt.Errorf("getting pricing variables: %w", err)
	}

	warehouse := warehouseAddress
	if warehouse == "" {
		warehouse = vars.WarehouseAddress
	}
	if warehouse == "" {
		return nil, fmt.Errorf("%w: warehouse address missing", ErrPricingNotConfigured)
	}

	distanceMiles, err := s.distance.Distance(ctx, warehouse, installAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: distance lookup: %v", ErrUpstream, err)
	}

	deliveryFee := vars.BaseDeliveryFee + vars.DeliveryFeePerMile*distanceMiles
	installFee := vars.BaseInstallFee + vars.InstallFeePerComponent*float64(components.TotalQuantity())
	monthlyRate := 0.0
	if len(components) > 0 {
		monthlyRate = vars.RentalRatePerFt * totalLengthFt
	}

	// Raw floats throughout; currency rounding is a presentation concern
	result := &domain.PricingResult{
		DeliveryFee:       deliveryFee,
		InstallFee:        installFee,
		MonthlyRentalRate: monthlyRate,
		TotalUpfront:      deliveryFee + installFee,
		DistanceMiles:     distanceMiles,
		WarehouseAddress:  warehouse,
	}

	s.logger.Debug("pricing calculated",
		zap.Float64("distanceMiles", result.DistanceMiles),
		zap.Float64("totalUpfront", result.TotalUpfront),
		zap.Float64("monthlyRentalRate", result.MonthlyRentalRate))

	return result, nil
}
