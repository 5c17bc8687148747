package service

import (
	"context"
	"errors"
	"fmt"

	oDomain "github.com/ridloal/woodkits-store/internal/order/domain"
	oRepo "github.com/ridloal/woodkits-store/internal/order/repository"
	oService "github.com/ridloal/woodkits-store/internal/order/service"
	"github.com/ridloal/woodkits-store/internal/payment/gateway"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/platform/money"
)

var ErrOrderNotPayable = errors.New("order is not awaiting payment")

// OrderStore is the order functionality payments depend on.
type OrderStore interface {
	GetOrder(ctx context.Context, orderID string) (*oDomain.Order, error)
	AttachPaymentRef(ctx context.Context, orderID, paymentRef string) error
	ConfirmPayment(ctx context.Context, orderID, paymentRef string) (*oDomain.Order, error)
}

type IntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"` // minor units
	Currency        string `json:"currency"`
}

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, orderID string) (*IntentResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentServiceImpl struct {
	orders  OrderStore
	gateway gateway.Gateway
}

func NewPaymentService(orders OrderStore, gw gateway.Gateway) PaymentService {
	return &paymentServiceImpl{orders: orders, gateway: gw}
}

func (s *paymentServiceImpl) CreatePaymentIntent(ctx context.Context, orderID string) (*IntentResponse, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != oDomain.StatusPendingPayment {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotPayable, orderID, order.Status)
	}
	amount := money.ToMinorUnits(order.TotalAmount, order.Currency)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: order %s has nothing to pay", ErrOrderNotPayable, orderID)
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, order.ID, amount, order.Currency)
	if err != nil {
		logger.Error("CreatePaymentIntent: gateway error", err, logger.Fields{"order_id": orderID})
		return nil, err
	}
	if err := s.orders.AttachPaymentRef(ctx, order.ID, intent.ID); err != nil {
		logger.Error("CreatePaymentIntent: failed to store payment ref", err, logger.Fields{"order_id": orderID, "payment_intent": intent.ID})
		return nil, err
	}

	return &IntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount,
		Currency:        order.Currency,
	}, nil
}

// HandleWebhook applies a provider event. Events that can never succeed are
// acknowledged so the provider stops retrying them; transient failures are
// returned.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		return err
	}
	fields := logger.Fields{"event_id": ev.ID, "event_type": ev.Type, "order_id": ev.OrderID, "payment_intent": ev.IntentID}

	if ev.Type != gateway.EventPaymentSucceeded {
		logger.Debug("webhook: ignoring event", fields)
		return nil
	}
	if ev.OrderID == "" {
		logger.Warn("webhook: payment without order reference", fields)
		return nil
	}

	order, err := s.orders.GetOrder(ctx, ev.OrderID)
	if err != nil {
		if errors.Is(err, oRepo.ErrOrderNotFound) {
			logger.Warn("webhook: payment for unknown order", fields)
			return nil
		}
		return err
	}
	if expected := money.ToMinorUnits(order.TotalAmount, order.Currency); expected != ev.Amount || money.Normalize(ev.Currency) != money.Normalize(order.Currency) {
		fields["expected_amount"] = expected
		fields["received_amount"] = ev.Amount
		logger.Error("webhook: paid amount does not match order total", errors.New("amount mismatch"), fields)
		return nil
	}

	if _, err := s.orders.ConfirmPayment(ctx, ev.OrderID, ev.IntentID); err != nil {
		if errors.Is(err, oService.ErrOrderCannotBeConfirmed) {
			logger.Warn("webhook: order cannot be confirmed: "+err.Error(), fields)
			return nil
		}
		return err
	}
	return nil
}
