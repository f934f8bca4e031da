package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type lifecycleFixture struct {
	svc        *QuoteLifecycleService
	quotes     *fakeQuoteStore
	history    *fakeHistoryStore
	activities *fakeActivityStore
	tokens     *fakeTokens
	payments   *fakePayments
	agreements *fakeAgreements
	email      *fakeEmail
	push       *fakePush
}

func newLifecycleFixture(quotes ...*domain.Quote) *lifecycleFixture {
	f := &lifecycleFixture{
		quotes:     newFakeQuoteStore(quotes...),
		history:    &fakeHistoryStore{},
		activities: &fakeActivityStore{},
		tokens:     newFakeTokens(),
		payments: &fakePayments{link: &PaymentLink{
			URL:             "https://pay.example.com/link-1",
			PaymentIntentID: "pi_123",
		}},
		agreements: &fakeAgreements{agreement: &Agreement{
			ID:         "contract-1",
			SigningURL: "https://sign.example.com/contract-1",
			Status:     domain.AgreementStatusSent,
		}},
		email: &fakeEmail{},
		push:  &fakePush{},
	}
	f.svc = NewQuoteLifecycleService(
		f.quotes, f.history, f.activities, f.tokens,
		f.payments, f.agreements, f.email, f.push,
		QuoteLinksConfig{
			FrontendURL: "https://app.example.com",
			AppBaseURL:  "https://api.example.com",
		},
		zap.NewNop(),
	)
	return f
}

func draftQuote() *domain.Quote {
	quote := &domain.Quote{
		CustomerID:        uuid.New(),
		InstallAddress:    "200 Elm St, Dallas, TX",
		Components:        domain.RampComponents{{Kind: domain.RampComponentKindRamp, LengthFeet: 20, Quantity: 1}},
		TotalLengthFt:     20,
		DeliveryFee:       50,
		InstallFee:        95,
		MonthlyRentalRate: 200,
		TotalUpfront:      145,
		Status:            domain.QuoteStatusDraft,
		PaymentStatus:     domain.PaymentStatusPending,
		AgreementStatus:   domain.AgreementStatusPending,
		Customer: &domain.Customer{
			FirstName: "Pat",
			LastName:  "Jones",
			Email:     "pat@example.com",
		},
	}
	quote.ID = uuid.New()
	return quote
}

func sentQuote(f *lifecycleFixture) *domain.Quote {
	quote := draftQuote()
	quote.Status = domain.QuoteStatusSent
	f.quotes.quotes[quote.ID] = quote
	return quote
}

func TestSendQuote(t *testing.T) {
	quote := draftQuote()
	f := newLifecycleFixture(quote)

	result, err := f.svc.SendQuote(context.Background(), quote.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.QuoteStatusSent, result.Status)
	assert.NotNil(t, result.SentAt)
	assert.Equal(t, domain.QuoteStatusSent, f.quotes.quotes[quote.ID].Status)

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "pat@example.com", f.email.sent[0].to)
	assert.Contains(t, f.email.sent[0].html, "/quotes/"+quote.ID.String()+"/accept?token=")

	require.Len(t, f.history.transitions, 1)
	assert.Equal(t, domain.QuoteStatusSent, f.history.transitions[0].to)
	require.NotNil(t, f.history.transitions[0].from)
	assert.Equal(t, domain.QuoteStatusDraft, *f.history.transitions[0].from)
}

func TestSendQuote_NotDraft(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)

	_, err := f.svc.SendQuote(context.Background(), quote.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, f.email.sent)
}

func TestSendQuote_EmailFailureKeepsDraft(t *testing.T) {
	quote := draftQuote()
	f := newLifecycleFixture(quote)
	f.email.err = errors.New("smtp down")

	_, err := f.svc.SendQuote(context.Background(), quote.ID)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, domain.QuoteStatusDraft, f.quotes.quotes[quote.ID].Status)
	assert.Empty(t, f.history.transitions)
}

func TestSendQuote_NotFound(t *testing.T) {
	f := newLifecycleFixture()
	_, err := f.svc.SendQuote(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptQuote(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	token, err := f.tokens.Generate(quote.ID.String())
	require.NoError(t, err)

	resp, err := f.svc.AcceptQuote(context.Background(), quote.ID, token)
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example.com/link-1", resp.PaymentLink)
	assert.Equal(t, "https://sign.example.com/contract-1", resp.SignatureLink)

	stored := f.quotes.quotes[quote.ID]
	assert.Equal(t, domain.QuoteStatusAccepted, stored.Status)
	assert.NotNil(t, stored.AcceptedAt)
	assert.Equal(t, "pi_123", stored.PaymentIntentID)
	assert.Equal(t, "contract-1", stored.AgreementID)
	assert.Equal(t, domain.AgreementStatusSent, stored.AgreementStatus)

	require.Len(t, f.email.sent, 1, "follow-up email with both links")
	assert.Contains(t, f.email.sent[0].html, resp.PaymentLink)
	assert.Contains(t, f.email.sent[0].html, resp.SignatureLink)
}

func TestAcceptQuote_InvalidToken(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)

	_, err := f.svc.AcceptQuote(context.Background(), quote.ID, "forged")
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.Equal(t, domain.QuoteStatusSent, f.quotes.quotes[quote.ID].Status)
	assert.Equal(t, 0, f.payments.calls)
	assert.Equal(t, 0, f.agreements.calls)
	assert.Empty(t, f.email.sent)
}

func TestAcceptQuote_AlreadyAccepted(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	token, _ := f.tokens.Generate(quote.ID.String())

	_, err := f.svc.AcceptQuote(context.Background(), quote.ID, token)
	require.NoError(t, err)

	_, err = f.svc.AcceptQuote(context.Background(), quote.ID, token)
	assert.ErrorIs(t, err, ErrQuoteAlreadyAccepted)
	assert.Equal(t, 1, f.payments.calls, "second accept never reaches the payment provider")
}

func TestAcceptQuote_PaymentFailure(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	token, _ := f.tokens.Generate(quote.ID.String())
	f.payments.err = errors.New("stripe down")

	_, err := f.svc.AcceptQuote(context.Background(), quote.ID, token)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, domain.QuoteStatusAccepted, f.quotes.quotes[quote.ID].Status,
		"the acceptance itself stands even when the payment link fails")
}

func TestAcceptQuote_AgreementFallback(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	token, _ := f.tokens.Generate(quote.ID.String())
	f.agreements.createErr = errors.New("esignatures down")

	resp, err := f.svc.AcceptQuote(context.Background(), quote.ID, token)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/manual-signature/"+quote.ID.String(), resp.SignatureLink)
	stored := f.quotes.quotes[quote.ID]
	assert.Equal(t, domain.QuoteStatusAccepted, stored.Status)
	assert.Empty(t, stored.AgreementID)
	assert.Equal(t, domain.AgreementStatusPending, stored.AgreementStatus)
}

func TestCancelQuote(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)

	result, err := f.svc.CancelQuote(context.Background(), quote.ID, "customer changed plans")
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusCancelled, result.Status)
	assert.Equal(t, domain.QuoteStatusCancelled, f.quotes.quotes[quote.ID].Status)
}

func TestCancelQuote_Terminal(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.Status = domain.QuoteStatusCompleted

	_, err := f.svc.CancelQuote(context.Background(), quote.ID, "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestHandlePaymentEvent_Succeeded(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.Status = domain.QuoteStatusAccepted
	quote.PaymentIntentID = "pi_123"

	err := f.svc.HandlePaymentEvent(context.Background(), PaymentEvent{
		Type:            PaymentEventSucceeded,
		PaymentIntentID: "pi_123",
		AmountCents:     14500,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, f.quotes.quotes[quote.ID].PaymentStatus)

	// Redelivery is a no-op
	activityCount := len(f.activities.activities)
	require.NoError(t, f.svc.HandlePaymentEvent(context.Background(), PaymentEvent{
		Type:            PaymentEventSucceeded,
		PaymentIntentID: "pi_123",
	}))
	assert.Equal(t, domain.PaymentStatusPaid, f.quotes.quotes[quote.ID].PaymentStatus)
	assert.Len(t, f.activities.activities, activityCount)
}

func TestHandlePaymentEvent_MetadataFallback(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.Status = domain.QuoteStatusAccepted

	err := f.svc.HandlePaymentEvent(context.Background(), PaymentEvent{
		Type:            PaymentEventSucceeded,
		PaymentIntentID: "pi_unknown",
		QuoteID:         quote.ID.String(),
	})
	require.NoError(t, err)
	stored := f.quotes.quotes[quote.ID]
	assert.Equal(t, domain.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, "pi_unknown", stored.PaymentIntentID, "intent id backfilled from the event")
}

func TestHandlePaymentEvent_NoMatch(t *testing.T) {
	f := newLifecycleFixture()

	err := f.svc.HandlePaymentEvent(context.Background(), PaymentEvent{
		Type:            PaymentEventSucceeded,
		PaymentIntentID: "pi_unknown",
		QuoteID:         "not-a-uuid",
	})
	assert.NoError(t, err, "unmatched events are dropped so the provider stops retrying")
}

func TestHandlePaymentEvent_FailedAfterPaid(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.PaymentStatus = domain.PaymentStatusPaid
	quote.PaymentIntentID = "pi_123"

	err := f.svc.HandlePaymentEvent(context.Background(), PaymentEvent{
		Type:            PaymentEventFailed,
		PaymentIntentID: "pi_123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, f.quotes.quotes[quote.ID].PaymentStatus,
		"a stale failure never downgrades a paid quote")
}

func TestHandlePaymentEvent_Failed(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.PaymentIntentID = "pi_123"

	err := f.svc.HandlePaymentEvent(context.Background(), PaymentEvent{
		Type:            PaymentEventFailed,
		PaymentIntentID: "pi_123",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, f.quotes.quotes[quote.ID].PaymentStatus)
}

func TestHandleAgreementEvent_Signed(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.AgreementID = "contract-1"
	quote.AgreementStatus = domain.AgreementStatusSent

	err := f.svc.HandleAgreementEvent(context.Background(), AgreementEvent{
		AgreementID: "contract-1",
		Status:      domain.AgreementStatusSigned,
		SignerName:  "Pat Jones",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementStatusSigned, f.quotes.quotes[quote.ID].AgreementStatus)
}

func TestHandleAgreementEvent_StaleAfterSigned(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.AgreementID = "contract-1"
	quote.AgreementStatus = domain.AgreementStatusSigned

	err := f.svc.HandleAgreementEvent(context.Background(), AgreementEvent{
		AgreementID: "contract-1",
		Status:      domain.AgreementStatusViewed,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AgreementStatusSigned, f.quotes.quotes[quote.ID].AgreementStatus)
}

func TestHandleAgreementEvent_NoMatch(t *testing.T) {
	f := newLifecycleFixture()

	err := f.svc.HandleAgreementEvent(context.Background(), AgreementEvent{
		AgreementID: "contract-unknown",
		Status:      domain.AgreementStatusSigned,
	})
	assert.NoError(t, err)
}

func TestRecordManualSignature(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.Status = domain.QuoteStatusAccepted

	err := f.svc.RecordManualSignature(context.Background(), quote.ID, "Pat Jones")
	require.NoError(t, err)

	stored := f.quotes.quotes[quote.ID]
	assert.Equal(t, domain.AgreementStatusSigned, stored.AgreementStatus)
	assert.Equal(t, "Pat Jones", stored.ManualSignatureName)
	assert.NotNil(t, stored.ManualSignedAt)
}

func TestRecordManualSignature_NotAccepted(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)

	err := f.svc.RecordManualSignature(context.Background(), quote.ID, "Pat Jones")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRecordManualSignature_AlreadySigned(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.Status = domain.QuoteStatusAccepted
	quote.AgreementStatus = domain.AgreementStatusSigned

	err := f.svc.RecordManualSignature(context.Background(), quote.ID, "Pat Jones")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSyncAgreementStatuses(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.AgreementID = "contract-1"
	quote.AgreementStatus = domain.AgreementStatusSent
	f.agreements.status = domain.AgreementStatusSigned

	err := f.svc.SyncAgreementStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.agreements.statusCalls)
	assert.Equal(t, domain.AgreementStatusSigned, f.quotes.quotes[quote.ID].AgreementStatus)
}

func TestSyncAgreementStatuses_SkipsSettled(t *testing.T) {
	f := newLifecycleFixture()
	quote := sentQuote(f)
	quote.AgreementID = "contract-1"
	quote.AgreementStatus = domain.AgreementStatusSigned

	require.NoError(t, f.svc.SyncAgreementStatuses(context.Background()))
	assert.Equal(t, 0, f.agreements.statusCalls)
}

func TestIsValidStatusTransition(t *testing.T) {
	assert.True(t, IsValidStatusTransition(domain.QuoteStatusDraft, domain.QuoteStatusSent))
	assert.True(t, IsValidStatusTransition(domain.QuoteStatusSent, domain.QuoteStatusAccepted))
	assert.True(t, IsValidStatusTransition(domain.QuoteStatusAccepted, domain.QuoteStatusJobCreated))
	assert.True(t, IsValidStatusTransition(domain.QuoteStatusJobCreated, domain.QuoteStatusCompleted))
	assert.False(t, IsValidStatusTransition(domain.QuoteStatusCompleted, domain.QuoteStatusDraft))
	assert.False(t, IsValidStatusTransition(domain.QuoteStatusCancelled, domain.QuoteStatusSent))
	assert.False(t, IsValidStatusTransition(domain.QuoteStatusSent, domain.QuoteStatusJobCreated))
}
