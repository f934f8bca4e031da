package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samedayramps/ramp-api/internal/service"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

// StripeClient creates hosted payment links for quote upfront amounts
type StripeClient struct {
	api    *client.API
	logger *zap.Logger
}

func NewStripeClient(apiKey string, logger *zap.Logger) *StripeClient {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeClient{api: api, logger: logger}
}

// CreatePaymentLink creates an ad-hoc price and a hosted payment link for it.
// Metadata lands on the payment intent so webhook events can be correlated
// back to the quote.
func (c *StripeClient) CreatePaymentLink(ctx context.Context, amountCents int64, description string, metadata map[string]string) (*service.PaymentLink, error) {
	priceParams := &stripe.PriceParams{
		Params:     stripe.Params{Context: ctx},
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		UnitAmount: stripe.Int64(amountCents),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(description),
		},
	}
	price, err := c.api.Prices.New(priceParams)
	if err != nil {
		return nil, fmt.Errorf("creating price: %w", err)
	}

	linkParams := &stripe.PaymentLinkParams{
		Params: stripe.Params{Context: ctx},
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(price.ID),
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.PaymentLinkPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	for k, v := range metadata {
		linkParams.AddMetadata(k, v)
	}

	link, err := c.api.PaymentLinks.New(linkParams)
	if err != nil {
		return nil, fmt.Errorf("creating payment link: %w", err)
	}

	c.logger.Info("payment link created",
		zap.String("paymentLinkId", link.ID),
		zap.Int64("amountCents", amountCents))

	return &service.PaymentLink{URL: link.URL}, nil
}

// ParseWebhookEvent verifies the webhook signature and normalizes the event.
// Returns nil for event types the pipeline doesn't care about.
func ParseWebhookEvent(payload []byte, signatureHeader, webhookSecret string) (*service.PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verifying webhook signature: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("decoding payment intent: %w", err)
		}
		eventType := service.PaymentEventSucceeded
		switch event.Type {
		case "payment_intent.payment_failed":
			eventType = service.PaymentEventFailed
		case "payment_intent.canceled":
			eventType = service.PaymentEventCanceled
		}
		return &service.PaymentEvent{
			Type:            eventType,
			PaymentIntentID: intent.ID,
			QuoteID:         intent.Metadata["quote_id"],
			AmountCents:     intent.Amount,
		}, nil

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("decoding charge: %w", err)
		}
		paymentIntentID := ""
		if charge.PaymentIntent != nil {
			paymentIntentID = charge.PaymentIntent.ID
		}
		return &service.PaymentEvent{
			Type:            service.PaymentEventRefunded,
			PaymentIntentID: paymentIntentID,
			QuoteID:         charge.Metadata["quote_id"],
			AmountCents:     charge.AmountRefunded,
		}, nil
	}

	return nil, nil
}
