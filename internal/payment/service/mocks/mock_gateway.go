package mocks

import (
	"context"

	"github.com/ridloal/woodkits-store/internal/payment/gateway"
	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, orderID string, amountMinor int64, currency string) (gateway.Intent, error) {
	args := m.Called(ctx, orderID, amountMinor, currency)
	return args.Get(0).(gateway.Intent), args.Error(1)
}

func (m *MockGateway) ParseEvent(payload []byte, signature string) (gateway.Event, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(gateway.Event), args.Error(1)
}
