package mocks

import (
	"context"
	"io"

	"github.com/ridloal/woodkits-store/internal/order/domain"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.CreateOrderResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*domain.CreateOrderResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, orderID, status)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) AttachPaymentRef(ctx context.Context, orderID, paymentRef string) error {
	args := m.Called(ctx, orderID, paymentRef)
	return args.Error(0)
}

func (m *MockOrderService) ConfirmPayment(ctx context.Context, orderID, paymentRef string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, paymentRef)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) ExportOrders(ctx context.Context, filter domain.OrderFilter, w io.Writer) error {
	args := m.Called(ctx, filter, w)
	return args.Error(0)
}

func (m *MockOrderService) ProcessPaymentTimeouts(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockOrderService) StartScheduler(spec string) error {
	args := m.Called(spec)
	return args.Error(0)
}

func (m *MockOrderService) StopScheduler() {
	m.Called()
}
