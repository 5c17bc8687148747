package service

import (
	"context"

	"github.com/ridloal/woodkits-store/internal/order/domain"
)

// StockClient reserves and releases product stock for order lines.
type StockClient interface {
	ReserveStock(ctx context.Context, productID string, quantity int) error
	ReleaseStock(ctx context.Context, productID string, quantity int) error
}

// EventPublisher announces placed orders to downstream consumers.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
}

// Notifier sends customer and shop notifications about an order.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order) error
	PaymentReceived(ctx context.Context, order *domain.Order) error
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderPlaced(context.Context, *domain.Order) error { return nil }

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(context.Context, *domain.Order) error     { return nil }
func (noopNotifier) PaymentReceived(context.Context, *domain.Order) error { return nil }

type Option func(*orderServiceImpl)

func WithPublisher(p EventPublisher) Option {
	return func(s *orderServiceImpl) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *orderServiceImpl) {
		if n != nil {
			s.notifier = n
		}
	}
}
