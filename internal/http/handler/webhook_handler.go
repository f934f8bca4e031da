package handler

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/samedayramps/ramp-api/internal/esign"
	"github.com/samedayramps/ramp-api/internal/payments"
	"github.com/samedayramps/ramp-api/internal/service"
	"go.uber.org/zap"
)

// maxWebhookBody caps webhook payloads at 64 KiB
const maxWebhookBody = 64 << 10

// WebhookHandler receives payment and e-signature vendor callbacks. Handlers
// always return 200 for events that verify but don't match a quote, so the
// vendor doesn't retry forever.
type WebhookHandler struct {
	lifecycle           *service.QuoteLifecycleService
	stripeWebhookSecret string
	esignatureToken     string
	logger              *zap.Logger
}

func NewWebhookHandler(
	lifecycle *service.QuoteLifecycleService,
	stripeWebhookSecret string,
	esignatureToken string,
	logger *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		lifecycle:           lifecycle,
		stripeWebhookSecret: stripeWebhookSecret,
		esignatureToken:     esignatureToken,
		logger:              logger,
	}
}

// Stripe godoc
// @Summary Stripe webhook
// @Description Receives payment events from Stripe. The signature header is verified against the webhook secret.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 "Event processed"
// @Failure 400 {object} domain.APIError "Invalid signature or payload"
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := payments.ParseWebhookEvent(payload, r.Header.Get("Stripe-Signature"), h.stripeWebhookSecret)
	if err != nil {
		h.logger.Warn("stripe webhook rejected", zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}
	if event == nil {
		// Event type we don't track
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.lifecycle.HandlePaymentEvent(r.Context(), *event); err != nil {
		h.logger.Error("failed to handle payment event",
			zap.String("eventType", string(event.Type)),
			zap.String("paymentIntentId", event.PaymentIntentID),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to process event")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Esignature godoc
// @Summary E-signature webhook
// @Description Receives agreement events from the e-signature vendor. Authenticated by the token query parameter.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 "Event processed"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError "Missing or invalid token"
// @Router /webhooks/esignature [post]
func (h *WebhookHandler) Esignature(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if h.esignatureToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.esignatureToken)) != 1 {
		h.logger.Warn("esignature webhook rejected, bad token")
		respondWithError(w, http.StatusUnauthorized, "Invalid webhook token")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := esign.ParseWebhookPayload(payload)
	if err != nil {
		h.logger.Warn("esignature webhook rejected", zap.Error(err))
		respondWithError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}
	if event == nil {
		// Status we don't track
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.lifecycle.HandleAgreementEvent(r.Context(), *event); err != nil {
		h.logger.Error("failed to handle agreement event",
			zap.String("agreementId", event.AgreementID),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to process event")
		return
	}

	w.WriteHeader(http.StatusOK)
}
