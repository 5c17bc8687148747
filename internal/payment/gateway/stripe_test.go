package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const secret = "whsec_test"

func signed(t *testing.T, payload string) (body []byte, header string) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return sp.Payload, sp.Header
}

func TestParseEvent_PaymentSucceeded(t *testing.T) {
	body, header := signed(t, `{
		"id": "evt_1", "object": "event", "type": "payment_intent.succeeded", "api_version": "`+stripe.APIVersion+`",
		"data": {"object": {"id": "pi_1", "object": "payment_intent", "amount": 106650, "amount_received": 106650,
			"currency": "ils", "metadata": {"order_id": "order-1"}}}
	}`)

	ev, err := parseEvent(body, header, secret)

	require.NoError(t, err)
	assert.Equal(t, Event{ID: "evt_1", Type: EventPaymentSucceeded, IntentID: "pi_1", OrderID: "order-1", Amount: 106650, Currency: "ILS"}, ev)
}

func TestParseEvent_OtherEvent(t *testing.T) {
	body, header := signed(t, `{"id": "evt_2", "object": "event", "type": "charge.refunded", "data": {"object": {"id": "ch_1", "object": "charge"}}}`)

	ev, err := parseEvent(body, header, secret)

	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Empty(t, ev.OrderID)
}

func TestParseEvent_BadSignature(t *testing.T) {
	body, _ := signed(t, `{"id": "evt_3", "object": "event", "type": "payment_intent.succeeded"}`)

	_, err := parseEvent(body, "t=1,v1=deadbeef", secret)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}
