// Package gateway talks to the card payment provider.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const EventPaymentSucceeded = "payment_intent.succeeded"

var ErrInvalidSignature = errors.New("invalid webhook signature")

type Intent struct {
	ID           string
	ClientSecret string
}

// Event is the part of a provider event the store acts on.
type Event struct {
	ID       string
	Type     string
	IntentID string
	OrderID  string
	Amount   int64
	Currency string
}

type Gateway interface {
	CreatePaymentIntent(ctx context.Context, orderID string, amountMinor int64, currency string) (Intent, error)
	ParseEvent(payload []byte, signature string) (Event, error)
}

type stripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) Gateway {
	return &stripeGateway{api: client.New(secretKey, nil), webhookSecret: webhookSecret}
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, orderID string, amountMinor int64, currency string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID)
	// One intent per order and amount, so retried checkouts reuse it.
	params.SetIdempotencyKey(fmt.Sprintf("order-%s-%d", orderID, amountMinor))

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *stripeGateway) ParseEvent(payload []byte, signature string) (Event, error) {
	return parseEvent(payload, signature, g.webhookSecret)
}

func parseEvent(payload []byte, signature, secret string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := Event{ID: ev.ID, Type: string(ev.Type)}
	if strings.HasPrefix(out.Type, "payment_intent.") && ev.Data != nil {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return Event{}, fmt.Errorf("decode payment intent: %w", err)
		}
		out.IntentID = pi.ID
		out.OrderID = pi.Metadata["order_id"]
		out.Amount = pi.AmountReceived
		if out.Amount == 0 {
			out.Amount = pi.Amount
		}
		out.Currency = strings.ToUpper(string(pi.Currency))
	}
	return out, nil
}
