package mocks

import (
	"context"
	"time"

	"github.com/ridloal/woodkits-store/internal/order/domain"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrderWithItems(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	args := m.Called(ctx, order, items)
	if order != nil && args.Error(0) == nil {
		order.ID = "mock-order-id"
		order.Status = domain.StatusPendingPayment
		order.Items = items
		order.CreatedAt = time.Now()
		order.UpdatedAt = order.CreatedAt
	}
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetPendingOrdersOlderThan(ctx context.Context, duration time.Duration) ([]domain.Order, error) {
	args := m.Called(ctx, duration)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

func (m *MockOrderRepository) SetPaymentRef(ctx context.Context, orderID, paymentRef string) error {
	args := m.Called(ctx, orderID, paymentRef)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if oi := args.Get(0); oi != nil {
		return oi.([]domain.OrderItem), args.Error(1)
	}
	return nil, args.Error(1)
}
