package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteStore is the persistence surface the lifecycle orchestrator needs
type QuoteStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from []domain.QuoteStatus, to domain.QuoteStatus, extra map[string]interface{}) (bool, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Quote, error)
	GetByAgreementID(ctx context.Context, agreementID string) (*domain.Quote, error)
	ListByAgreementStatus(ctx context.Context, statuses []domain.AgreementStatus) ([]domain.Quote, error)
}

// StageHistoryStore records quote status transitions
type StageHistoryStore interface {
	RecordTransition(ctx context.Context, quoteID uuid.UUID, fromStatus *domain.QuoteStatus, toStatus domain.QuoteStatus, notes string) error
}

// ActivityStore records timeline entries
type ActivityStore interface {
	Create(ctx context.Context, activity *domain.Activity) error
}

// QuoteLinksConfig holds the URL bases customer-facing links are built from
type QuoteLinksConfig struct {
	// FrontendURL is the base of the customer-facing web app
	FrontendURL string
	// AppBaseURL is the base of this API, used for the manual signing page
	AppBaseURL string
}

// validStatusTransitions defines the allowed quote status changes
var validStatusTransitions = map[domain.QuoteStatus][]domain.QuoteStatus{
	domain.QuoteStatusDraft:      {domain.QuoteStatusSent, domain.QuoteStatusAccepted, domain.QuoteStatusCancelled},
	domain.QuoteStatusSent:       {domain.QuoteStatusAccepted, domain.QuoteStatusCancelled},
	domain.QuoteStatusAccepted:   {domain.QuoteStatusJobCreated, domain.QuoteStatusCancelled},
	domain.QuoteStatusJobCreated: {domain.QuoteStatusCompleted, domain.QuoteStatusCancelled},
	domain.QuoteStatusCompleted:  {},
	domain.QuoteStatusCancelled:  {},
}

// IsValidStatusTransition checks if a status change is allowed
func IsValidStatusTransition(from, to domain.QuoteStatus) bool {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// QuoteLifecycleService drives quotes through send, accept, payment and
// signature. Collaborator failures on the critical path abort the operation;
// everything after the state change is best-effort and only logged.
type QuoteLifecycleService struct {
	quotes     QuoteStore
	history    StageHistoryStore
	activities ActivityStore
	tokens     TokenSource
	payments   PaymentProvider
	agreements AgreementProvider
	email      EmailSender
	push       PushSender
	links      QuoteLinksConfig
	logger     *zap.Logger
}

func NewQuoteLifecycleService(
	quotes QuoteStore,
	history StageHistoryStore,
	activities ActivityStore,
	tokens TokenSource,
	payments PaymentProvider,
	agreements AgreementProvider,
	email EmailSender,
	push PushSender,
	links QuoteLinksConfig,
	logger *zap.Logger,
) *QuoteLifecycleService {
	return &QuoteLifecycleService{
		quotes:     quotes,
		history:    history,
		activities: activities,
		tokens:     tokens,
		payments:   payments,
		agreements: agreements,
		email:      email,
		push:       push,
		links:      links,
		logger:     logger,
	}
}

func (s *QuoteLifecycleService) getQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quote %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("getting quote: %w", err)
	}
	return quote, nil
}

func (s *QuoteLifecycleService) recordTransition(ctx context.Context, quoteID uuid.UUID, from *domain.QuoteStatus, to domain.QuoteStatus, notes string) {
	if err := s.history.RecordTransition(ctx, quoteID, from, to, notes); err != nil {
		s.logger.Warn("failed to record stage transition",
			zap.String("quoteId", quoteID.String()),
			zap.String("toStatus", string(to)),
			zap.Error(err))
	}
}

func (s *QuoteLifecycleService) recordActivity(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType: targetType,
		TargetID:   targetID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now(),
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("targetId", targetID.String()),
			zap.String("title", title),
			zap.Error(err))
	}
}

func (s *QuoteLifecycleService) notifyOperator(ctx context.Context, title, message string) {
	if s.push == nil {
		return
	}
	if err := s.push.Notify(ctx, title, message); err != nil {
		s.logger.Warn("push notification failed", zap.String("title", title), zap.Error(err))
	}
}

// AcceptanceURL builds the customer-facing acceptance link for a quote
func (s *QuoteLifecycleService) AcceptanceURL(quoteID uuid.UUID, token string) string {
	return fmt.Sprintf("%s/quotes/%s/accept?token=%s", s.links.FrontendURL, quoteID, token)
}

// ManualSignatureURL builds the fallback signing page link for a quote
func (s *QuoteLifecycleService) ManualSignatureURL(quoteID uuid.UUID) string {
	return fmt.Sprintf("%s/manual-signature/%s", s.links.AppBaseURL, quoteID)
}

// SendQuote emails the quote to the customer and transitions it to sent.
// The email is the point of the operation, so a delivery failure aborts and
// the quote stays in draft.
func (s *QuoteLifecycleService) SendQuote(ctx context.Context, quoteID uuid.UUID) (*domain.Quote, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusDraft {
		return nil, fmt.Errorf("%w: quote is %s, only draft quotes can be sent", ErrConflict, quote.Status)
	}
	if quote.Customer == nil {
		return nil, fmt.Errorf("%w: quote has no customer loaded", ErrNotFound)
	}

	token, err := s.tokens.Generate(quoteID.String())
	if err != nil {
		return nil, fmt.Errorf("generating acceptance token: %w", err)
	}

	subject, html, err := notify.RenderQuoteEmail(notify.QuoteEmailData{
		CustomerName:      quote.Customer.FullName(),
		InstallAddress:    quote.InstallAddress,
		TotalLengthFt:     quote.TotalLengthFt,
		DeliveryFee:       quote.DeliveryFee,
		InstallFee:        quote.InstallFee,
		MonthlyRentalRate: quote.MonthlyRentalRate,
		TotalUpfront:      quote.TotalUpfront,
		AcceptanceURL:     s.AcceptanceURL(quoteID, token),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering quote email: %w", err)
	}

	if err := s.email.Send(ctx, quote.Customer.Email, subject, html); err != nil {
		return nil, fmt.Errorf("%w: sending quote email: %v", ErrUpstream, err)
	}

	now := time.Now()
	ok, err := s.quotes.TransitionStatus(ctx, quoteID,
		[]domain.QuoteStatus{domain.QuoteStatusDraft},
		domain.QuoteStatusSent,
		map[string]interface{}{"sent_at": now})
	if err != nil {
		return nil, fmt.Errorf("transitioning quote to sent: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: quote left draft status concurrently", ErrConflict)
	}

	from := domain.QuoteStatusDraft
	s.recordTransition(ctx, quoteID, &from, domain.QuoteStatusSent, "quote emailed to customer")
	s.recordActivity(ctx, domain.ActivityTargetQuote, quoteID, "Quote sent",
		fmt.Sprintf("Quote emailed to %s", quote.Customer.Email))
	s.notifyOperator(ctx, "Quote sent",
		fmt.Sprintf("Quote for %s sent to %s", quote.InstallAddress, quote.Customer.Email))

	quote.Status = domain.QuoteStatusSent
	quote.SentAt = &now

	s.logger.Info("quote sent",
		zap.String("quoteId", quoteID.String()),
		zap.String("customerEmail", quote.Customer.Email))

	return quote, nil
}

// AcceptQuote verifies the acceptance token, moves the quote to accepted and
// sets up payment and signature. The payment link is critical; the signature
// agreement falls back to the manual signing page when the vendor is down.
func (s *QuoteLifecycleService) AcceptQuote(ctx context.Context, quoteID uuid.UUID, token string) (*domain.AcceptQuoteResponse, error) {
	if err := s.tokens.Verify(token, quoteID.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ok, err := s.quotes.TransitionStatus(ctx, quoteID,
		[]domain.QuoteStatus{domain.QuoteStatusDraft, domain.QuoteStatusSent},
		domain.QuoteStatusAccepted,
		map[string]interface{}{"accepted_at": now})
	if err != nil {
		return nil, fmt.Errorf("transitioning quote to accepted: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: quote is %s", ErrQuoteAlreadyAccepted, quote.Status)
	}

	from := quote.Status
	s.recordTransition(ctx, quoteID, &from, domain.QuoteStatusAccepted, "customer accepted quote")
	quote.Status = domain.QuoteStatusAccepted
	quote.AcceptedAt = &now

	amountCents := int64(math.Round(quote.TotalUpfront * 100))
	link, err := s.payments.CreatePaymentLink(ctx, amountCents,
		fmt.Sprintf("Ramp rental setup, %s", quote.InstallAddress),
		map[string]string{"quote_id": quoteID.String()})
	if err != nil {
		return nil, fmt.Errorf("%w: creating payment link: %v", ErrUpstream, err)
	}

	fields := map[string]interface{}{
		"payment_intent_id": link.PaymentIntentID,
		"payment_link_url":  link.URL,
	}
	quote.PaymentIntentID = link.PaymentIntentID
	quote.PaymentLinkURL = link.URL

	signatureLink := s.ManualSignatureURL(quoteID)
	customerName := ""
	customerEmail := ""
	if quote.Customer != nil {
		customerName = quote.Customer.FullName()
		customerEmail = quote.Customer.Email
	}

	agreement, err := s.agreements.CreateAgreement(ctx, AgreementRequest{
		QuoteID:           quoteID.String(),
		CustomerName:      customerName,
		CustomerEmail:     customerEmail,
		InstallAddress:    quote.InstallAddress,
		TotalLengthFt:     quote.TotalLengthFt,
		LandingCount:      quote.Components.LandingCount(),
		MonthlyRentalRate: quote.MonthlyRentalRate,
		TotalUpfront:      quote.TotalUpfront,
	})
	if err != nil {
		s.logger.Warn("agreement creation failed, falling back to manual signature",
			zap.String("quoteId", quoteID.String()),
			zap.Error(err))
	} else {
		signatureLink = agreement.SigningURL
		fields["agreement_id"] = agreement.ID
		fields["signing_url"] = agreement.SigningURL
		fields["agreement_status"] = domain.AgreementStatusSent
		quote.AgreementID = agreement.ID
		quote.SigningURL = agreement.SigningURL
		quote.AgreementStatus = domain.AgreementStatusSent
	}

	if err := s.quotes.UpdateFields(ctx, quoteID, fields); err != nil {
		return nil, fmt.Errorf("persisting payment and agreement references: %w", err)
	}

	s.recordActivity(ctx, domain.ActivityTargetQuote, quoteID, "Quote accepted",
		fmt.Sprintf("Accepted with total upfront %.2f", quote.TotalUpfront))
	s.notifyOperator(ctx, "Quote accepted",
		fmt.Sprintf("Quote for %s was accepted", quote.InstallAddress))

	if customerEmail != "" {
		subject, html, renderErr := notify.RenderAcceptanceEmail(notify.AcceptanceEmailData{
			CustomerName: customerName,
			PaymentURL:   link.URL,
			SignatureURL: signatureLink,
			TotalUpfront: quote.TotalUpfront,
		})
		if renderErr != nil {
			s.logger.Warn("failed to render acceptance email", zap.Error(renderErr))
		} else if sendErr := s.email.Send(ctx, customerEmail, subject, html); sendErr != nil {
			s.logger.Warn("failed to send acceptance email",
				zap.String("quoteId", quoteID.String()),
				zap.Error(sendErr))
		}
	}

	s.logger.Info("quote accepted",
		zap.String("quoteId", quoteID.String()),
		zap.Int64("amountCents", amountCents))

	return &domain.AcceptQuoteResponse{
		PaymentLink:   link.URL,
		SignatureLink: signatureLink,
	}, nil
}

// CancelQuote moves a quote to cancelled from any non-terminal status
func (s *QuoteLifecycleService) CancelQuote(ctx context.Context, quoteID uuid.UUID, reason string) (*domain.Quote, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	ok, err := s.quotes.TransitionStatus(ctx, quoteID,
		[]domain.QuoteStatus{domain.QuoteStatusDraft, domain.QuoteStatusSent, domain.QuoteStatusAccepted, domain.QuoteStatusJobCreated},
		domain.QuoteStatusCancelled, nil)
	if err != nil {
		return nil, fmt.Errorf("cancelling quote: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: quote is %s and cannot be cancelled", ErrConflict, quote.Status)
	}

	from := quote.Status
	s.recordTransition(ctx, quoteID, &from, domain.QuoteStatusCancelled, reason)
	s.recordActivity(ctx, domain.ActivityTargetQuote, quoteID, "Quote cancelled", reason)
	quote.Status = domain.QuoteStatusCancelled

	s.logger.Info("quote cancelled", zap.String("quoteId", quoteID.String()))
	return quote, nil
}

// HandlePaymentEvent applies a normalized payment webhook event. Events that
// don't match any quote are logged and dropped so the provider stops retrying.
func (s *QuoteLifecycleService) HandlePaymentEvent(ctx context.Context, event PaymentEvent) error {
	quote, err := s.resolveByPayment(ctx, event)
	if err != nil {
		return err
	}
	if quote == nil {
		s.logger.Info("payment event matched no quote, ignoring",
			zap.String("paymentIntentId", event.PaymentIntentID),
			zap.String("quoteId", event.QuoteID))
		return nil
	}

	switch event.Type {
	case PaymentEventSucceeded:
		if quote.PaymentStatus == domain.PaymentStatusPaid {
			return nil
		}
		fields := map[string]interface{}{"payment_status": domain.PaymentStatusPaid}
		if quote.PaymentIntentID == "" && event.PaymentIntentID != "" {
			fields["payment_intent_id"] = event.PaymentIntentID
		}
		if err := s.quotes.UpdateFields(ctx, quote.ID, fields); err != nil {
			return fmt.Errorf("marking quote paid: %w", err)
		}
		s.recordActivity(ctx, domain.ActivityTargetQuote, quote.ID, "Payment received",
			fmt.Sprintf("Upfront payment of %.2f received", float64(event.AmountCents)/100))
		s.notifyOperator(ctx, "Payment received",
			fmt.Sprintf("Upfront payment received for %s", quote.InstallAddress))
		s.logger.Info("quote marked paid", zap.String("quoteId", quote.ID.String()))

	case PaymentEventFailed, PaymentEventCanceled:
		if quote.PaymentStatus == domain.PaymentStatusPaid {
			s.logger.Warn("payment failure event for already paid quote, ignoring",
				zap.String("quoteId", quote.ID.String()))
			return nil
		}
		if err := s.quotes.UpdateFields(ctx, quote.ID, map[string]interface{}{
			"payment_status": domain.PaymentStatusFailed,
		}); err != nil {
			return fmt.Errorf("marking quote payment failed: %w", err)
		}
		s.recordActivity(ctx, domain.ActivityTargetQuote, quote.ID, "Payment failed", string(event.Type))
		s.logger.Info("quote payment failed", zap.String("quoteId", quote.ID.String()))

	case PaymentEventRefunded:
		s.recordActivity(ctx, domain.ActivityTargetQuote, quote.ID, "Payment refunded",
			fmt.Sprintf("Refund of %.2f issued", float64(event.AmountCents)/100))
		s.logger.Info("quote payment refunded", zap.String("quoteId", quote.ID.String()))

	default:
		s.logger.Debug("unhandled payment event type", zap.String("type", string(event.Type)))
	}

	return nil
}

func (s *QuoteLifecycleService) resolveByPayment(ctx context.Context, event PaymentEvent) (*domain.Quote, error) {
	if event.PaymentIntentID != "" {
		quote, err := s.quotes.GetByPaymentIntentID(ctx, event.PaymentIntentID)
		if err == nil {
			return quote, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("looking up quote by payment intent: %w", err)
		}
	}
	if event.QuoteID != "" {
		id, err := uuid.Parse(event.QuoteID)
		if err != nil {
			return nil, nil
		}
		quote, err := s.quotes.GetByID(ctx, id)
		if err == nil {
			return quote, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("looking up quote by metadata: %w", err)
		}
	}
	return nil, nil
}

// HandleAgreementEvent applies a normalized e-signature webhook event
func (s *QuoteLifecycleService) HandleAgreementEvent(ctx context.Context, event AgreementEvent) error {
	quote, err := s.resolveByAgreement(ctx, event)
	if err != nil {
		return err
	}
	if quote == nil {
		s.logger.Info("agreement event matched no quote, ignoring",
			zap.String("agreementId", event.AgreementID),
			zap.String("quoteId", event.QuoteID))
		return nil
	}
	if !event.Status.IsValid() {
		s.logger.Warn("agreement event carried unknown status, ignoring",
			zap.String("status", string(event.Status)))
		return nil
	}
	return s.applyAgreementStatus(ctx, quote, event.Status, event.SignerName)
}

func (s *QuoteLifecycleService) resolveByAgreement(ctx context.Context, event AgreementEvent) (*domain.Quote, error) {
	if event.AgreementID != "" {
		quote, err := s.quotes.GetByAgreementID(ctx, event.AgreementID)
		if err == nil {
			return quote, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("looking up quote by agreement: %w", err)
		}
	}
	if event.QuoteID != "" {
		id, err := uuid.Parse(event.QuoteID)
		if err != nil {
			return nil, nil
		}
		quote, err := s.quotes.GetByID(ctx, id)
		if err == nil {
			return quote, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("looking up quote by metadata: %w", err)
		}
	}
	return nil, nil
}

func (s *QuoteLifecycleService) applyAgreementStatus(ctx context.Context, quote *domain.Quote, status domain.AgreementStatus, signerName string) error {
	if quote.AgreementStatus == status {
		return nil
	}
	// A signed agreement is final; later viewed/declined events are stale
	if quote.AgreementStatus == domain.AgreementStatusSigned {
		s.logger.Debug("ignoring agreement event for already signed quote",
			zap.String("quoteId", quote.ID.String()),
			zap.String("status", string(status)))
		return nil
	}

	if err := s.quotes.UpdateFields(ctx, quote.ID, map[string]interface{}{
		"agreement_status": status,
	}); err != nil {
		return fmt.Errorf("updating agreement status: %w", err)
	}

	switch status {
	case domain.AgreementStatusSigned:
		body := "Rental agreement signed"
		if signerName != "" {
			body = fmt.Sprintf("Rental agreement signed by %s", signerName)
		}
		s.recordActivity(ctx, domain.ActivityTargetQuote, quote.ID, "Agreement signed", body)
		s.notifyOperator(ctx, "Agreement signed",
			fmt.Sprintf("Rental agreement signed for %s", quote.InstallAddress))
	case domain.AgreementStatusDeclined:
		s.recordActivity(ctx, domain.ActivityTargetQuote, quote.ID, "Agreement declined", "")
		s.notifyOperator(ctx, "Agreement declined",
			fmt.Sprintf("Rental agreement declined for %s", quote.InstallAddress))
	}

	s.logger.Info("agreement status updated",
		zap.String("quoteId", quote.ID.String()),
		zap.String("from", string(quote.AgreementStatus)),
		zap.String("to", string(status)))

	quote.AgreementStatus = status
	return nil
}

// RecordManualSignature records a signature captured through the fallback
// signing page. The quote must have been accepted first.
func (s *QuoteLifecycleService) RecordManualSignature(ctx context.Context, quoteID uuid.UUID, signatureName string) error {
	if signatureName == "" {
		return fmt.Errorf("%w: signature name is required", ErrInvalidInput)
	}

	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return err
	}
	switch quote.Status {
	case domain.QuoteStatusAccepted, domain.QuoteStatusJobCreated, domain.QuoteStatusCompleted:
	default:
		return fmt.Errorf("%w: quote is %s, it must be accepted before signing", ErrConflict, quote.Status)
	}
	if quote.AgreementStatus == domain.AgreementStatusSigned {
		return fmt.Errorf("%w: agreement already signed", ErrConflict)
	}

	now := time.Now()
	if err := s.quotes.UpdateFields(ctx, quoteID, map[string]interface{}{
		"agreement_status":      domain.AgreementStatusSigned,
		"manual_signature_name": signatureName,
		"manual_signed_at":      now,
	}); err != nil {
		return fmt.Errorf("recording manual signature: %w", err)
	}

	s.recordActivity(ctx, domain.ActivityTargetQuote, quoteID, "Agreement signed",
		fmt.Sprintf("Manually signed by %s", signatureName))
	s.notifyOperator(ctx, "Agreement signed",
		fmt.Sprintf("Manual signature recorded for %s", quote.InstallAddress))

	s.logger.Info("manual signature recorded",
		zap.String("quoteId", quoteID.String()),
		zap.String("signatureName", signatureName))
	return nil
}

// SyncAgreementStatuses polls the e-signature vendor for quotes whose
// agreement is still in flight and applies any changes. Used by the
// reconciliation sweep to catch missed webhooks.
func (s *QuoteLifecycleService) SyncAgreementStatuses(ctx context.Context) error {
	quotes, err := s.quotes.ListByAgreementStatus(ctx, []domain.AgreementStatus{
		domain.AgreementStatusSent,
		domain.AgreementStatusViewed,
	})
	if err != nil {
		return fmt.Errorf("listing quotes pending signature: %w", err)
	}

	var failures int
	for i := range quotes {
		quote := &quotes[i]
		status, err := s.agreements.GetAgreementStatus(ctx, quote.AgreementID)
		if err != nil {
			failures++
			s.logger.Warn("agreement status poll failed",
				zap.String("quoteId", quote.ID.String()),
				zap.String("agreementId", quote.AgreementID),
				zap.Error(err))
			continue
		}
		if err := s.applyAgreementStatus(ctx, quote, status, ""); err != nil {
			failures++
			s.logger.Warn("failed to apply polled agreement status",
				zap.String("quoteId", quote.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("agreement status sweep finished",
		zap.Int("checked", len(quotes)),
		zap.Int("failures", failures))
	return nil
}
