package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteService handles quote CRUD. The pricing snapshot is computed at create
// and update time and then frozen; configuration changes never touch existing
// quotes. Lifecycle transitions live in QuoteLifecycleService.
type QuoteService struct {
	quoteRepo    *repository.QuoteRepository
	customerRepo *repository.CustomerRepository
	historyRepo  *repository.QuoteStageHistoryRepository
	pricing      *PricingService
	logger       *zap.Logger
}

func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	customerRepo *repository.CustomerRepository,
	historyRepo *repository.QuoteStageHistoryRepository,
	pricing *PricingService,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		historyRepo:  historyRepo,
		pricing:      pricing,
		logger:       logger,
	}
}

func componentsFromRequests(reqs []domain.CreateRampComponentRequest) domain.RampComponents {
	components := make(domain.RampComponents, len(reqs))
	for i, c := range reqs {
		components[i] = domain.RampComponent{
			Kind:       c.Kind,
			LengthFeet: c.LengthFeet,
			Quantity:   c.Quantity,
		}
	}
	return components
}

// Create builds a new draft quote with a fresh pricing snapshot
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.Quote, error) {
	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, req.CustomerID)
		}
		return nil, fmt.Errorf("getting customer: %w", err)
	}

	components := componentsFromRequests(req.Components)
	pricing, err := s.pricing.Calculate(ctx, components, req.TotalLengthFt, req.InstallAddress, "")
	if err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		CustomerID:        customer.ID,
		InstallAddress:    req.InstallAddress,
		Components:        components,
		TotalLengthFt:     req.TotalLengthFt,
		DeliveryFee:       pricing.DeliveryFee,
		InstallFee:        pricing.InstallFee,
		MonthlyRentalRate: pricing.MonthlyRentalRate,
		TotalUpfront:      pricing.TotalUpfront,
		DistanceMiles:     pricing.DistanceMiles,
		WarehouseAddress:  pricing.WarehouseAddress,
		Status:            domain.QuoteStatusDraft,
		PaymentStatus:     domain.PaymentStatusPending,
		AgreementStatus:   domain.AgreementStatusPending,
		Notes:             req.Notes,
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("creating quote: %w", err)
	}

	s.logger.Info("quote created",
		zap.String("quoteId", quote.ID.String()),
		zap.String("customerId", customer.ID.String()),
		zap.Float64("totalUpfront", quote.TotalUpfront))

	quote.Customer = customer
	return quote, nil
}

func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quote %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("getting quote: %w", err)
	}
	return quote, nil
}

func (s *QuoteService) List(ctx context.Context, filters repository.QuoteFilters, page, pageSize int) ([]domain.Quote, int64, error) {
	return s.quoteRepo.List(ctx, filters, page, pageSize)
}

// Update replaces the configuration of a draft quote and recomputes the
// pricing snapshot. Quotes past draft are immutable.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.Quote, error) {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusDraft {
		return nil, fmt.Errorf("%w: only draft quotes can be updated", ErrConflict)
	}

	components := componentsFromRequests(req.Components)
	pricing, err := s.pricing.Calculate(ctx, components, req.TotalLengthFt, req.InstallAddress, "")
	if err != nil {
		return nil, err
	}

	quote.InstallAddress = req.InstallAddress
	quote.Components = components
	quote.TotalLengthFt = req.TotalLengthFt
	quote.DeliveryFee = pricing.DeliveryFee
	quote.InstallFee = pricing.InstallFee
	quote.MonthlyRentalRate = pricing.MonthlyRentalRate
	quote.TotalUpfront = pricing.TotalUpfront
	quote.DistanceMiles = pricing.DistanceMiles
	quote.WarehouseAddress = pricing.WarehouseAddress
	quote.Notes = req.Notes

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("updating quote: %w", err)
	}

	s.logger.Info("quote updated", zap.String("quoteId", quote.ID.String()))
	return quote, nil
}

// Delete removes a draft quote and its history. Quotes past draft cannot be
// deleted, only cancelled.
func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if quote.Status != domain.QuoteStatusDraft {
		return fmt.Errorf("%w: only draft quotes can be deleted", ErrConflict)
	}
	if err := s.historyRepo.DeleteByQuoteID(ctx, id); err != nil {
		return fmt.Errorf("deleting quote history: %w", err)
	}
	if err := s.quoteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}
	s.logger.Info("quote deleted", zap.String("quoteId", id.String()))
	return nil
}

// GetStageHistory returns the transition log for a quote
func (s *QuoteService) GetStageHistory(ctx context.Context, id uuid.UUID) ([]domain.QuoteStageHistory, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.GetByQuoteID(ctx, id)
}
