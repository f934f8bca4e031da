package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses

type RentalRequestDTO struct {
	ID                uuid.UUID           `json:"id"`
	FirstName         string              `json:"firstName"`
	LastName          string              `json:"lastName"`
	FullName          string              `json:"fullName"`
	Email             string              `json:"email"`
	Phone             string              `json:"phone"`
	InstallAddress    string              `json:"installAddress"`
	EstimatedLengthFt float64             `json:"estimatedLengthFt,omitempty"`
	Timeline          string              `json:"timeline,omitempty"`
	RampPurpose       string              `json:"rampPurpose,omitempty"`
	MobilityAids      []string            `json:"mobilityAids,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	Status            RentalRequestStatus `json:"status"`
	CustomerID        *uuid.UUID          `json:"customerId,omitempty"`
	CreatedAt         string              `json:"createdAt"` // ISO 8601
	UpdatedAt         string              `json:"updatedAt"` // ISO 8601
}

type CustomerDTO struct {
	ID              uuid.UUID  `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	InstallAddress  string     `json:"installAddress,omitempty"`
	MobilityAids    []string   `json:"mobilityAids,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	RentalRequestID *uuid.UUID `json:"rentalRequestId,omitempty"`
	CreatedAt       string     `json:"createdAt"` // ISO 8601
	UpdatedAt       string     `json:"updatedAt"` // ISO 8601
}

// CustomerWithQuotesDTO includes customer data with their quotes
type CustomerWithQuotesDTO struct {
	CustomerDTO
	Quotes []QuoteDTO `json:"quotes,omitempty"`
}

type RampComponentDTO struct {
	Kind       RampComponentKind `json:"kind"`
	LengthFeet float64           `json:"lengthFeet"`
	Quantity   int               `json:"quantity"`
}

type QuoteDTO struct {
	ID             uuid.UUID          `json:"id"`
	CustomerID     uuid.UUID          `json:"customerId"`
	CustomerName   string             `json:"customerName,omitempty"`
	InstallAddress string             `json:"installAddress"`
	Components     []RampComponentDTO `json:"components"`
	TotalLengthFt  float64            `json:"totalLengthFt"`

	DeliveryFee       float64 `json:"deliveryFee"`
	InstallFee        float64 `json:"installFee"`
	MonthlyRentalRate float64 `json:"monthlyRentalRate"`
	TotalUpfront      float64 `json:"totalUpfront"`
	DistanceMiles     float64 `json:"distanceMiles"`

	Status          QuoteStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	AgreementStatus AgreementStatus `json:"agreementStatus"`

	SentAt     *string `json:"sentAt,omitempty"`     // ISO 8601
	AcceptedAt *string `json:"acceptedAt,omitempty"` // ISO 8601

	PaymentLinkURL string     `json:"paymentLinkUrl,omitempty"`
	SigningURL     string     `json:"signingUrl,omitempty"`
	JobID          *uuid.UUID `json:"jobId,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      string     `json:"createdAt"` // ISO 8601
	UpdatedAt      string     `json:"updatedAt"` // ISO 8601
}

type QuoteStageHistoryDTO struct {
	ID         uuid.UUID    `json:"id"`
	QuoteID    uuid.UUID    `json:"quoteId"`
	FromStatus *QuoteStatus `json:"fromStatus,omitempty"`
	ToStatus   QuoteStatus  `json:"toStatus"`
	Notes      string       `json:"notes,omitempty"`
	ChangedAt  string       `json:"changedAt"`
}

type JobDTO struct {
	ID                        uuid.UUID          `json:"id"`
	QuoteID                   uuid.UUID          `json:"quoteId"`
	CustomerID                uuid.UUID          `json:"customerId"`
	CustomerName              string             `json:"customerName,omitempty"`
	InstallAddress            string             `json:"installAddress"`
	Components                []RampComponentDTO `json:"components"`
	TotalLengthFt             float64            `json:"totalLengthFt"`
	Status                    JobStatus          `json:"status"`
	ScheduledInstallationDate string             `json:"scheduledInstallationDate"` // ISO 8601
	CompletedAt               *string            `json:"completedAt,omitempty"`     // ISO 8601
	Notes                     string             `json:"notes,omitempty"`
	CreatedAt                 string             `json:"createdAt"` // ISO 8601
	UpdatedAt                 string             `json:"updatedAt"` // ISO 8601
}

type PricingVariablesDTO struct {
	WarehouseAddress       string  `json:"warehouseAddress"`
	BaseDeliveryFee        float64 `json:"baseDeliveryFee"`
	DeliveryFeePerMile     float64 `json:"deliveryFeePerMile"`
	BaseInstallFee         float64 `json:"baseInstallFee"`
	InstallFeePerComponent float64 `json:"installFeePerComponent"`
	RentalRatePerFt        float64 `json:"rentalRatePerFt"`
	UpdatedAt              string  `json:"updatedAt"` // ISO 8601
}

type ActivityDTO struct {
	ID         uuid.UUID          `json:"id"`
	TargetType ActivityTargetType `json:"targetType"`
	TargetID   uuid.UUID          `json:"targetId"`
	Title      string             `json:"title"`
	Body       string             `json:"body,omitempty"`
	OccurredAt string             `json:"occurredAt"` // ISO 8601
	CreatedAt  string             `json:"createdAt"`  // ISO 8601
}

// AcceptQuoteResponse is returned to the customer after accepting a quote.
// SignatureLink falls back to the manual signing page when the e-signature
// vendor is unavailable.
type AcceptQuoteResponse struct {
	Quote         *QuoteDTO `json:"quote"`
	PaymentLink   string    `json:"paymentLink"`
	SignatureLink string    `json:"signatureLink"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// API Response wrapper
type APIResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
}

// Request DTOs

type CreateRentalRequestRequest struct {
	FirstName         string   `json:"firstName" validate:"required,max=100"`
	LastName          string   `json:"lastName" validate:"required,max=100"`
	Email             string   `json:"email" validate:"required,email,max=255"`
	Phone             string   `json:"phone" validate:"required,max=50"`
	InstallAddress    string   `json:"installAddress" validate:"required,max=500"`
	EstimatedLengthFt float64  `json:"estimatedLengthFt,omitempty" validate:"gte=0"`
	Timeline          string   `json:"timeline,omitempty" validate:"max=100"`
	RampPurpose       string   `json:"rampPurpose,omitempty" validate:"max=500"`
	MobilityAids      []string `json:"mobilityAids,omitempty" validate:"dive,max=100"`
	Notes             string   `json:"notes,omitempty"`
}

type UpdateRentalRequestStatusRequest struct {
	Status RentalRequestStatus `json:"status" validate:"required,oneof=new contacted converted archived"`
}

type CreateCustomerRequest struct {
	FirstName      string   `json:"firstName" validate:"required,max=100"`
	LastName       string   `json:"lastName" validate:"required,max=100"`
	Email          string   `json:"email" validate:"required,email,max=255"`
	Phone          string   `json:"phone" validate:"required,max=50"`
	InstallAddress string   `json:"installAddress,omitempty" validate:"max=500"`
	MobilityAids   []string `json:"mobilityAids,omitempty" validate:"dive,max=100"`
	Notes          string   `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	FirstName      string   `json:"firstName" validate:"required,max=100"`
	LastName       string   `json:"lastName" validate:"required,max=100"`
	Email          string   `json:"email" validate:"required,email,max=255"`
	Phone          string   `json:"phone" validate:"required,max=50"`
	InstallAddress string   `json:"installAddress,omitempty" validate:"max=500"`
	MobilityAids   []string `json:"mobilityAids,omitempty" validate:"dive,max=100"`
	Notes          string   `json:"notes,omitempty"`
}

type CreateRampComponentRequest struct {
	Kind       RampComponentKind `json:"kind" validate:"required,oneof=ramp landing"`
	LengthFeet float64           `json:"lengthFeet" validate:"gte=0"`
	Quantity   int               `json:"quantity" validate:"required,min=1"`
}

type CreateQuoteRequest struct {
	CustomerID     uuid.UUID                    `json:"customerId" validate:"required"`
	InstallAddress string                       `json:"installAddress" validate:"required,max=500"`
	Components     []CreateRampComponentRequest `json:"components" validate:"dive"`
	TotalLengthFt  float64                      `json:"totalLengthFt" validate:"gte=0"`
	Notes          string                       `json:"notes,omitempty"`
}

type UpdateQuoteRequest struct {
	InstallAddress string                       `json:"installAddress" validate:"required,max=500"`
	Components     []CreateRampComponentRequest `json:"components" validate:"dive"`
	TotalLengthFt  float64                      `json:"totalLengthFt" validate:"gte=0"`
	Notes          string                       `json:"notes,omitempty"`
}

// AcceptQuoteRequest carries the acceptance token minted when the quote was sent
type AcceptQuoteRequest struct {
	Token string `json:"token" validate:"required"`
}

type CreateJobRequest struct {
	ScheduledInstallationDate *time.Time `json:"scheduledInstallationDate,omitempty"`
	Notes                     string     `json:"notes,omitempty"`
}

type ScheduleJobRequest struct {
	ScheduledInstallationDate time.Time `json:"scheduledInstallationDate" validate:"required"`
}

type UpdatePricingVariablesRequest struct {
	WarehouseAddress       string  `json:"warehouseAddress" validate:"required,max=500"`
	BaseDeliveryFee        float64 `json:"baseDeliveryFee" validate:"gte=0"`
	DeliveryFeePerMile     float64 `json:"deliveryFeePerMile" validate:"gte=0"`
	BaseInstallFee         float64 `json:"baseInstallFee" validate:"gte=0"`
	InstallFeePerComponent float64 `json:"installFeePerComponent" validate:"gte=0"`
	RentalRatePerFt        float64 `json:"rentalRatePerFt" validate:"gte=0"`
}

// CalculatePricingRequest is the ad-hoc calculator input for the frontend
type CalculatePricingRequest struct {
	InstallAddress string                       `json:"installAddress" validate:"required,max=500"`
	Components     []CreateRampComponentRequest `json:"components" validate:"dive"`
	TotalLengthFt  float64                      `json:"totalLengthFt" validate:"gte=0"`
}

type CreateActivityRequest struct {
	TargetType ActivityTargetType `json:"targetType" validate:"required"`
	TargetID   uuid.UUID          `json:"targetId" validate:"required"`
	Title      string             `json:"title" validate:"required,max=200"`
	Body       string             `json:"body,omitempty" validate:"max=2000"`
}

// ManualSignatureRequest is the fallback signing form submission
type ManualSignatureRequest struct {
	SignatureName string `json:"signatureName" validate:"required,max=200"`
}
