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

// RentalRequestStore is the persistence surface for intake requests
type RentalRequestStore interface {
	Create(ctx context.Context, request *domain.RentalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalRequest, error)
	Update(ctx context.Context, request *domain.RentalRequest) error
	List(ctx context.Context, filters repository.RentalRequestFilters, page, pageSize int) ([]domain.RentalRequest, int64, error)
	ConvertToCustomer(ctx context.Context, request *domain.RentalRequest, customer *domain.Customer) error
}

// RentalRequestService handles public intake and conversion to customers
type RentalRequestService struct {
	requestRepo RentalRequestStore
	push        PushSender
	logger      *zap.Logger
}

func NewRentalRequestService(requestRepo RentalRequestStore, push PushSender, logger *zap.Logger) *RentalRequestService {
	return &RentalRequestService{
		requestRepo: requestRepo,
		push:        push,
		logger:      logger,
	}
}

// Create records a new intake submission and notifies the operator
func (s *RentalRequestService) Create(ctx context.Context, req *domain.CreateRentalRequestRequest) (*domain.RentalRequest, error) {
	request := &domain.RentalRequest{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Phone:             req.Phone,
		InstallAddress:    req.InstallAddress,
		EstimatedLengthFt: req.EstimatedLengthFt,
		Timeline:          req.Timeline,
		RampPurpose:       req.RampPurpose,
		MobilityAids:      req.MobilityAids,
		Notes:             req.Notes,
		Status:            domain.RentalRequestStatusNew,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("creating rental request: %w", err)
	}

	if s.push != nil {
		if err := s.push.Notify(ctx, "New rental request",
			fmt.Sprintf("%s requested a ramp at %s", request.FullName(), request.InstallAddress)); err != nil {
			s.logger.Warn("push notification failed", zap.Error(err))
		}
	}

	s.logger.Info("rental request created",
		zap.String("requestId", request.ID.String()),
		zap.String("email", request.Email))
	return request, nil
}

func (s *RentalRequestService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RentalRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rental request %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("getting rental request: %w", err)
	}
	return request, nil
}

func (s *RentalRequestService) List(ctx context.Context, filters repository.RentalRequestFilters, page, pageSize int) ([]domain.RentalRequest, int64, error) {
	return s.requestRepo.List(ctx, filters, page, pageSize)
}

// UpdateStatus moves the request between intake statuses. Converted is set
// through ConvertToCustomer only.
func (s *RentalRequestService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RentalRequestStatus) (*domain.RentalRequest, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if status == domain.RentalRequestStatusConverted {
		return nil, fmt.Errorf("%w: use the convert operation to mark a request converted", ErrInvalidInput)
	}

	request, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status == domain.RentalRequestStatusConverted {
		return nil, fmt.Errorf("%w: converted requests cannot change status", ErrConflict)
	}

	request.Status = status
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("updating rental request: %w", err)
	}
	s.logger.Info("rental request status updated",
		zap.String("requestId", id.String()),
		zap.String("status", string(status)))
	return request, nil
}

// ConvertToCustomer creates a customer from the request's contact details and
// links the two records. A request converts at most once.
func (s *RentalRequestService) ConvertToCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	request, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status == domain.RentalRequestStatusConverted {
		return nil, fmt.Errorf("%w: rental request %s", ErrAlreadyConverted, id)
	}

	customer := &domain.Customer{
		FirstName:      request.FirstName,
		LastName:       request.LastName,
		Email:          request.Email,
		Phone:          request.Phone,
		InstallAddress: request.InstallAddress,
		MobilityAids:   request.MobilityAids,
		Notes:          request.Notes,
	}

	if err := s.requestRepo.ConvertToCustomer(ctx, request, customer); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rental request %s", ErrAlreadyConverted, id)
		}
		return nil, fmt.Errorf("converting rental request: %w", err)
	}

	s.logger.Info("rental request converted",
		zap.String("requestId", id.String()),
		zap.String("customerId", customer.ID.String()))
	return customer, nil
}
