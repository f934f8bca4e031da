package service

import "errors"

// Common service errors. Handlers map these onto HTTP statuses, so services
// wrap them with context via fmt.Errorf("%w: ...") rather than inventing new
// error types.
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when an operation conflicts with the current
	// state of the resource
	ErrConflict = errors.New("operation conflicts with current state")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the current status
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidToken is returned when an acceptance token is missing,
	// malformed, expired, or minted for a different quote
	ErrInvalidToken = errors.New("invalid acceptance token")

	// ErrQuoteAlreadyAccepted is returned when a quote has already moved
	// past the acceptable statuses
	ErrQuoteAlreadyAccepted = errors.New("quote already accepted")

	// ErrPaymentRequired is returned when a job is requested for a quote
	// whose upfront payment has not cleared
	ErrPaymentRequired = errors.New("upfront payment not completed")

	// ErrAlreadyConverted is returned when a rental request has already
	// been converted to a customer
	ErrAlreadyConverted = errors.New("rental request already converted")

	// ErrPricingNotConfigured is returned when no pricing variables row
	// exists yet
	ErrPricingNotConfigured = errors.New("pricing variables not configured")

	// ErrUpstream is returned when an external collaborator call fails
	ErrUpstream = errors.New("upstream service error")
)
