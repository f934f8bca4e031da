package service

import (
	"context"
	"time"

	"github.com/samedayramps/ramp-api/internal/domain"
)

// External collaborator interfaces. Concrete clients live in internal/maps,
// internal/payments, internal/esign, internal/gcal and internal/notify and are
// injected in cmd/api. Keeping the interfaces here lets the services be tested
// with in-memory fakes.

// DistanceProvider resolves driving distance between two addresses
type DistanceProvider interface {
	// Distance returns the driving distance in miles from origin to destination
	Distance(ctx context.Context, origin, destination string) (float64, error)
}

// PaymentLink is a hosted checkout page for a quote's upfront amount
type PaymentLink struct {
	URL             string
	PaymentIntentID string
}

// PaymentProvider creates hosted payment links and is the source of payment
// webhook events
type PaymentProvider interface {
	// CreatePaymentLink creates a hosted checkout link for the given amount
	// in cents. Metadata is attached to the payment for webhook correlation.
	CreatePaymentLink(ctx context.Context, amountCents int64, description string, metadata map[string]string) (*PaymentLink, error)
}

// AgreementRequest carries everything the e-signature vendor needs to render
// the rental agreement
type AgreementRequest struct {
	QuoteID           string
	CustomerName      string
	CustomerEmail     string
	InstallAddress    string
	TotalLengthFt     float64
	LandingCount      int
	MonthlyRentalRate float64
	TotalUpfront      float64
}

// Agreement is the vendor's view of a signature contract
type Agreement struct {
	ID         string
	SigningURL string
	Status     domain.AgreementStatus
}

// AgreementProvider creates and polls e-signature contracts
type AgreementProvider interface {
	CreateAgreement(ctx context.Context, req AgreementRequest) (*Agreement, error)
	GetAgreementStatus(ctx context.Context, agreementID string) (domain.AgreementStatus, error)
}

// CalendarEvent describes an installation appointment
type CalendarEvent struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// CalendarProvider manages installation appointments on the operations calendar
type CalendarProvider interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (string, error)
	UpdateEvent(ctx context.Context, eventID string, event CalendarEvent) error
	DeleteEvent(ctx context.Context, eventID string) error
}

// EmailSender delivers transactional HTML email to customers
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// PushSender notifies the operator about pipeline events
type PushSender interface {
	Notify(ctx context.Context, title, message string) error
}

// TokenSource mints and verifies quote acceptance tokens
type TokenSource interface {
	Generate(quoteID string) (string, error)
	Verify(token, quoteID string) error
}

// PaymentEventType classifies incoming payment webhook events
type PaymentEventType string

const (
	PaymentEventSucceeded PaymentEventType = "succeeded"
	PaymentEventFailed    PaymentEventType = "failed"
	PaymentEventCanceled  PaymentEventType = "canceled"
	PaymentEventRefunded  PaymentEventType = "refunded"
)

// PaymentEvent is a normalized payment webhook event
type PaymentEvent struct {
	Type            PaymentEventType
	PaymentIntentID string
	QuoteID         string // from payment metadata, may be empty
	AmountCents     int64
}

// AgreementEvent is a normalized e-signature webhook event
type AgreementEvent struct {
	AgreementID string
	QuoteID     string // from contract metadata, may be empty
	Status      domain.AgreementStatus
	SignerName  string
}
