package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// RentalRequestStatus represents the intake status of a rental request
type RentalRequestStatus string

const (
	RentalRequestStatusNew       RentalRequestStatus = "new"
	RentalRequestStatusContacted RentalRequestStatus = "contacted"
	RentalRequestStatusConverted RentalRequestStatus = "converted"
	RentalRequestStatusArchived  RentalRequestStatus = "archived"
)

// IsValid checks if the RentalRequestStatus is a valid enum value
func (s RentalRequestStatus) IsValid() bool {
	switch s {
	case RentalRequestStatusNew, RentalRequestStatusContacted, RentalRequestStatusConverted, RentalRequestStatusArchived:
		return true
	}
	return false
}

// RentalRequest is the raw intake record from the public request form.
// Immutable after creation except for status and the customer back-reference.
type RentalRequest struct {
	BaseModel
	FirstName         string              `gorm:"type:varchar(100);not null;column:first_name"`
	LastName          string              `gorm:"type:varchar(100);not null;column:last_name"`
	Email             string              `gorm:"type:varchar(255);not null;index"`
	Phone             string              `gorm:"type:varchar(50);not null"`
	InstallAddress    string              `gorm:"type:varchar(500);not null;column:install_address"`
	EstimatedLengthFt float64             `gorm:"type:decimal(10,2);column:estimated_length_ft"`
	Timeline          string              `gorm:"type:varchar(100)"`
	RampPurpose       string              `gorm:"type:varchar(500);column:ramp_purpose"`
	MobilityAids      pq.StringArray      `gorm:"type:text[];column:mobility_aids"`
	Notes             string              `gorm:"type:text"`
	Status            RentalRequestStatus `gorm:"type:varchar(50);not null;default:'new';index"`
	CustomerID        *uuid.UUID          `gorm:"type:uuid;index;column:customer_id"`
	Customer          *Customer           `gorm:"foreignKey:CustomerID"`
}

// FullName returns the requester's full name
func (r *RentalRequest) FullName() string {
	return r.FirstName + " " + r.LastName
}

// Customer is the durable identity a quote and job hang off
type Customer struct {
	BaseModel
	FirstName       string         `gorm:"type:varchar(100);not null;column:first_name"`
	LastName        string         `gorm:"type:varchar(100);not null;column:last_name"`
	Email           string         `gorm:"type:varchar(255);not null;index"`
	Phone           string         `gorm:"type:varchar(50);not null"`
	InstallAddress  string         `gorm:"type:varchar(500);column:install_address"`
	MobilityAids    pq.StringArray `gorm:"type:text[];column:mobility_aids"`
	Notes           string         `gorm:"type:text"`
	RentalRequestID *uuid.UUID     `gorm:"type:uuid;index;column:rental_request_id"`
	Quotes          []Quote        `gorm:"foreignKey:CustomerID"`
}

// FullName returns the customer's full name
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// RampComponentKind classifies a segment of a ramp configuration
type RampComponentKind string

const (
	RampComponentKindRamp    RampComponentKind = "ramp"
	RampComponentKindLanding RampComponentKind = "landing"
)

// IsValid checks if the RampComponentKind is a valid enum value
func (k RampComponentKind) IsValid() bool {
	switch k {
	case RampComponentKindRamp, RampComponentKindLanding:
		return true
	}
	return false
}

// RampComponent is one physical segment of an installation
type RampComponent struct {
	Kind       RampComponentKind `json:"kind"`
	LengthFeet float64           `json:"lengthFeet"`
	Quantity   int               `json:"quantity"`
}

// RampComponents is a jsonb-backed list of ramp components
type RampComponents []RampComponent

// Value implements driver.Valuer for jsonb storage
func (c RampComponents) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal(RampComponents{})
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for jsonb storage
func (c *RampComponents) Scan(value interface{}) error {
	if value == nil {
		*c = RampComponents{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into RampComponents", value)
	}
	return json.Unmarshal(bytes, c)
}

// TotalQuantity returns the number of physical pieces across all components
func (c RampComponents) TotalQuantity() int {
	total := 0
	for _, comp := range c {
		total += comp.Quantity
	}
	return total
}

// RampLengthFeet returns the total rampable length (landings excluded)
func (c RampComponents) RampLengthFeet() float64 {
	total := 0.0
	for _, comp := range c {
		if comp.Kind == RampComponentKindRamp {
			total += comp.LengthFeet * float64(comp.Quantity)
		}
	}
	return total
}

// LandingCount returns the number of landing pieces
func (c RampComponents) LandingCount() int {
	count := 0
	for _, comp := range c {
		if comp.Kind == RampComponentKindLanding {
			count += comp.Quantity
		}
	}
	return count
}

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft      QuoteStatus = "draft"
	QuoteStatusSent       QuoteStatus = "sent"
	QuoteStatusAccepted   QuoteStatus = "accepted"
	QuoteStatusJobCreated QuoteStatus = "job_created"
	QuoteStatusCompleted  QuoteStatus = "completed"
	QuoteStatusCancelled  QuoteStatus = "cancelled"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusJobCreated, QuoteStatusCompleted, QuoteStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks the upfront payment independently of the quote status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// IsValid checks if the PaymentStatus is a valid enum value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// AgreementStatus tracks the e-signature contract independently of the quote status
type AgreementStatus string

const (
	AgreementStatusPending  AgreementStatus = "pending"
	AgreementStatusSent     AgreementStatus = "sent"
	AgreementStatusViewed   AgreementStatus = "viewed"
	AgreementStatusSigned   AgreementStatus = "signed"
	AgreementStatusDeclined AgreementStatus = "declined"
)

// IsValid checks if the AgreementStatus is a valid enum value
func (s AgreementStatus) IsValid() bool {
	switch s {
	case AgreementStatusPending, AgreementStatusSent, AgreementStatusViewed, AgreementStatusSigned, AgreementStatusDeclined:
		return true
	}
	return false
}

// Quote owns one ramp configuration and one pricing snapshot.
// The pricing fields are frozen at create/update time, never recomputed
// automatically.
type Quote struct {
	BaseModel
	CustomerID     uuid.UUID      `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer       *Customer      `gorm:"foreignKey:CustomerID"`
	InstallAddress string         `gorm:"type:varchar(500);not null;column:install_address"`
	Components     RampComponents `gorm:"type:jsonb;not null;default:'[]'"`
	TotalLengthFt  float64        `gorm:"type:decimal(10,2);not null;column:total_length_ft"`

	// Pricing snapshot
	DeliveryFee       float64 `gorm:"type:decimal(10,2);not null;column:delivery_fee"`
	InstallFee        float64 `gorm:"type:decimal(10,2);not null;column:install_fee"`
	MonthlyRentalRate float64 `gorm:"type:decimal(10,2);not null;column:monthly_rental_rate"`
	TotalUpfront      float64 `gorm:"type:decimal(10,2);not null;column:total_upfront"`
	DistanceMiles     float64 `gorm:"type:decimal(10,2);not null;column:distance_miles"`
	WarehouseAddress  string  `gorm:"type:varchar(500);column:warehouse_address"`

	Status          QuoteStatus     `gorm:"type:varchar(50);not null;default:'draft';index"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(50);not null;default:'pending';column:payment_status;index"`
	AgreementStatus AgreementStatus `gorm:"type:varchar(50);not null;default:'pending';column:agreement_status;index"`

	SentAt     *time.Time `gorm:"column:sent_at"`
	AcceptedAt *time.Time `gorm:"column:accepted_at"`

	// External references for webhook reconciliation
	PaymentIntentID string `gorm:"type:varchar(255);index;column:payment_intent_id"`
	PaymentLinkURL  string `gorm:"type:varchar(1000);column:payment_link_url"`
	AgreementID     string `gorm:"type:varchar(255);index;column:agreement_id"`
	SigningURL      string `gorm:"type:varchar(1000);column:signing_url"`

	// Manual signature fallback (used when the e-signature vendor is down)
	ManualSignatureName string     `gorm:"type:varchar(200);column:manual_signature_name"`
	ManualSignedAt      *time.Time `gorm:"column:manual_signed_at"`

	JobID *uuid.UUID `gorm:"type:uuid;index;column:job_id"`
	Notes string     `gorm:"type:text"`
}

// QuoteStageHistory tracks quote status transitions for audit purposes
type QuoteStageHistory struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	QuoteID    uuid.UUID    `gorm:"type:uuid;not null;index;column:quote_id"`
	Quote      *Quote       `gorm:"foreignKey:QuoteID"`
	FromStatus *QuoteStatus `gorm:"type:varchar(50);column:from_status"`
	ToStatus   QuoteStatus  `gorm:"type:varchar(50);not null;column:to_status"`
	Notes      string       `gorm:"type:text"`
	ChangedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP;column:changed_at"`
}

// TableName overrides the default table name to match the migration
func (QuoteStageHistory) TableName() string {
	return "quote_stage_history"
}

// JobStatus represents the scheduling state of an installation job
type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsValid checks if the JobStatus is a valid enum value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusScheduled, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// Job is a scheduled physical installation created from an accepted quote.
// Install address and ramp configuration are copied from the quote at
// creation time.
type Job struct {
	BaseModel
	QuoteID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:quote_id"`
	Quote          *Quote         `gorm:"foreignKey:QuoteID"`
	CustomerID     uuid.UUID      `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer       *Customer      `gorm:"foreignKey:CustomerID"`
	InstallAddress string         `gorm:"type:varchar(500);not null;column:install_address"`
	Components     RampComponents `gorm:"type:jsonb;not null;default:'[]'"`
	TotalLengthFt  float64        `gorm:"type:decimal(10,2);not null;column:total_length_ft"`
	Status         JobStatus      `gorm:"type:varchar(50);not null;default:'scheduled';index"`

	ScheduledInstallationDate time.Time  `gorm:"not null;column:scheduled_installation_date"`
	CompletedAt               *time.Time `gorm:"column:completed_at"`
	CalendarEventID           string     `gorm:"type:varchar(255);column:calendar_event_id"`
	Notes                     string     `gorm:"type:text"`
}

// PricingVariables is the singleton pricing configuration. Exactly one row
// exists; the repository only exposes get and upsert.
type PricingVariables struct {
	BaseModel
	WarehouseAddress       string  `gorm:"type:varchar(500);not null;column:warehouse_address"`
	BaseDeliveryFee        float64 `gorm:"type:decimal(10,2);not null;column:base_delivery_fee"`
	DeliveryFeePerMile     float64 `gorm:"type:decimal(10,2);not null;column:delivery_fee_per_mile"`
	BaseInstallFee         float64 `gorm:"type:decimal(10,2);not null;column:base_install_fee"`
	InstallFeePerComponent float64 `gorm:"type:decimal(10,2);not null;column:install_fee_per_component"`
	RentalRatePerFt        float64 `gorm:"type:decimal(10,2);not null;column:rental_rate_per_ft"`
}

// PricingResult is the derived price breakdown for one configuration.
// totalUpfront is always deliveryFee + installFee; the monthly rate is
// billed separately.
type PricingResult struct {
	DeliveryFee       float64 `json:"deliveryFee"`
	InstallFee        float64 `json:"installFee"`
	MonthlyRentalRate float64 `json:"monthlyRentalRate"`
	TotalUpfront      float64 `json:"totalUpfront"`
	DistanceMiles     float64 `json:"distanceMiles"`
	WarehouseAddress  string  `json:"warehouseAddress"`
}

// ActivityTargetType represents the type of entity an activity is associated with
type ActivityTargetType string

const (
	ActivityTargetRentalRequest ActivityTargetType = "RentalRequest"
	ActivityTargetCustomer      ActivityTargetType = "Customer"
	ActivityTargetQuote         ActivityTargetType = "Quote"
	ActivityTargetJob           ActivityTargetType = "Job"
)

// IsValid checks if the ActivityTargetType is a valid enum value
func (t ActivityTargetType) IsValid() bool {
	switch t {
	case ActivityTargetRentalRequest, ActivityTargetCustomer, ActivityTargetQuote, ActivityTargetJob:
		return true
	}
	return false
}

// Activity represents an event log entry for any entity
type Activity struct {
	BaseModel
	TargetType ActivityTargetType `gorm:"type:varchar(50);not null;index;column:target_type"`
	TargetID   uuid.UUID          `gorm:"type:uuid;not null;index;column:target_id"`
	Title      string             `gorm:"type:varchar(200);not null"`
	Body       string             `gorm:"type:varchar(2000)"`
	OccurredAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
}
