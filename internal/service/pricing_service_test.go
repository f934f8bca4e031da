package service

import (
	"context"
	"errors"
	"testing"

	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPricingVars() *domain.PricingVariables {
	return &domain.PricingVariables{
		WarehouseAddress:       "100 Warehouse Rd, Dallas, TX",
		BaseDeliveryFee:        30,
		DeliveryFeePerMile:     2,
		BaseInstallFee:         50,
		InstallFeePerComponent: 15,
		RentalRatePerFt:        10,
	}
}

func threeComponents() domain.RampComponents {
	return domain.RampComponents{
		{Kind: domain.RampComponentKindRamp, LengthFeet: 8, Quantity: 1},
		{Kind: domain.RampComponentKindRamp, LengthFeet: 12, Quantity: 1},
		{Kind: domain.RampComponentKindLanding, LengthFeet: 5, Quantity: 1},
	}
}

func TestPricingService_Calculate(t *testing.T) {
	store := &fakePricingStore{vars: testPricingVars()}
	distance := &fakeDistance{miles: 10}
	svc := NewPricingService(store, distance, zap.NewNop())

	result, err := svc.Calculate(context.Background(), threeComponents(), 20, "200 Elm St, Dallas, TX", "")
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.DeliveryFee)        // 30 + 2*10
	assert.Equal(t, 95.0, result.InstallFee)         // 50 + 15*3
	assert.Equal(t, 200.0, result.MonthlyRentalRate) // 10*20
	assert.Equal(t, 145.0, result.TotalUpfront)      // 50 + 95
	assert.Equal(t, 10.0, result.DistanceMiles)
	assert.Equal(t, "100 Warehouse Rd, Dallas, TX", result.WarehouseAddress)
}

func TestPricingService_Calculate_EmptyComponents(t *testing.T) {
	store := &fakePricingStore{vars: testPricingVars()}
	svc := NewPricingService(store, &fakeDistance{miles: 10}, zap.NewNop())

	result, err := svc.Calculate(context.Background(), domain.RampComponents{}, 20, "200 Elm St", "")
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.InstallFee, "install fee falls back to the base fee")
	assert.Equal(t, 0.0, result.MonthlyRentalRate, "no components means nothing to rent")
	assert.Equal(t, 100.0, result.TotalUpfront)
}

func TestPricingService_Calculate_WarehouseOverride(t *testing.T) {
	store := &fakePricingStore{vars: testPricingVars()}
	distance := &fakeDistance{miles: 5}
	svc := NewPricingService(store, distance, zap.NewNop())

	_, err := svc.Calculate(context.Background(), threeComponents(), 20, "200 Elm St", "999 Override Ave")
	require.NoError(t, err)
	require.Len(t, distance.origins, 1)
	assert.Equal(t, "999 Override Ave", distance.origins[0])
}

func TestPricingService_Calculate_Validation(t *testing.T) {
	store := &fakePricingStore{vars: testPricingVars()}
	distance := &fakeDistance{miles: 10}
	svc := NewPricingService(store, distance, zap.NewNop())
	ctx := context.Background()

	t.Run("empty install address", func(t *testing.T) {
		_, err := svc.Calculate(ctx, threeComponents(), 20, "", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("negative total length", func(t *testing.T) {
		_, err := svc.Calculate(ctx, threeComponents(), -1, "200 Elm St", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("negative component length", func(t *testing.T) {
		components := domain.RampComponents{{Kind: domain.RampComponentKindRamp, LengthFeet: -4, Quantity: 1}}
		_, err := svc.Calculate(ctx, components, 20, "200 Elm St", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero quantity", func(t *testing.T) {
		components := domain.RampComponents{{Kind: domain.RampComponentKindRamp, LengthFeet: 4, Quantity: 0}}
		_, err := svc.Calculate(ctx, components, 20, "200 Elm St", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown kind", func(t *testing.T) {
		components := domain.RampComponents{{Kind: "stairs", LengthFeet: 4, Quantity: 1}}
		_, err := svc.Calculate(ctx, components, 20, "200 Elm St", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("total length disagrees with ramp components", func(t *testing.T) {
		_, err := svc.Calculate(ctx, threeComponents(), 25, "200 Elm St", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("quantity counts toward ramp length", func(t *testing.T) {
		components := domain.RampComponents{{Kind: domain.RampComponentKindRamp, LengthFeet: 4, Quantity: 3}}
		_, err := svc.Calculate(ctx, components, 4, "200 Elm St", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	assert.Equal(t, 0, distance.calls, "validation failures never reach the distance provider")
}

func TestPricingService_Calculate_NotConfigured(t *testing.T) {
	svc := NewPricingService(&fakePricingStore{}, &fakeDistance{miles: 10}, zap.NewNop())

	_, err := svc.Calculate(context.Background(), threeComponents(), 20, "200 Elm St", "")
	assert.ErrorIs(t, err, ErrPricingNotConfigured)
}

func TestPricingService_Calculate_DistanceFailure(t *testing.T) {
	store := &fakePricingStore{vars: testPricingVars()}
	distance := &fakeDistance{err: errors.New("maps unavailable")}
	svc := NewPricingService(store, distance, zap.NewNop())

	_, err := svc.Calculate(context.Background(), threeComponents(), 20, "200 Elm St", "")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestPricingService_Calculate_NoRounding(t *testing.T) {
	store := &fakePricingStore{vars: &domain.PricingVariables{
		WarehouseAddress:       "100 Warehouse Rd",
		BaseDeliveryFee:        50.004,
		DeliveryFeePerMile:     0,
		BaseInstallFee:         95.004,
		InstallFeePerComponent: 0,
		RentalRatePerFt:        10.333,
	}}
	svc := NewPricingService(store, &fakeDistance{miles: 0}, zap.NewNop())

	result, err := svc.Calculate(context.Background(), domain.RampComponents{}, 0, "200 Elm St", "")
	require.NoError(t, err)

	assert.Equal(t, 50.004, result.DeliveryFee, "fees carry through unrounded")
	assert.Equal(t, 95.004, result.InstallFee)
	assert.Equal(t, result.DeliveryFee+result.InstallFee, result.TotalUpfront,
		"upfront total is exactly the sum of its parts")
}

func TestPricingService_Calculate_Deterministic(t *testing.T) {
	store := &fakePricingStore{vars: testPricingVars()}
	svc := NewPricingService(store, &fakeDistance{miles: 10}, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Calculate(ctx, threeComponents(), 20, "200 Elm St", "")
	require.NoError(t, err)
	second, err := svc.Calculate(ctx, threeComponents(), 20, "200 Elm St", "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPricingService_GetVariables_NotConfigured(t *testing.T) {
	svc := NewPricingService(&fakePricingStore{}, &fakeDistance{}, zap.NewNop())

	_, err := svc.GetVariables(context.Background())
	assert.ErrorIs(t, err, ErrPricingNotConfigured)
}

func TestPricingService_UpdateVariables(t *testing.T) {
	store := &fakePricingStore{}
	svc := NewPricingService(store, &fakeDistance{}, zap.NewNop())

	vars, err := svc.UpdateVariables(context.Background(), &domain.UpdatePricingVariablesRequest{
		WarehouseAddress:       "100 Warehouse Rd",
		BaseDeliveryFee:        30,
		DeliveryFeePerMile:     2,
		BaseInstallFee:         50,
		InstallFeePerComponent: 15,
		RentalRatePerFt:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, store.vars, vars)

	got, err := svc.GetVariables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "100 Warehouse Rd", got.WarehouseAddress)
}
