package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ridloal/woodkits-store/internal/pricing"
	"github.com/ridloal/woodkits-store/internal/pricing/service"
)

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) CalculatePrice(ctx context.Context, productID string, cfg pricing.Configuration) (*service.Quote, error) {
	args := m.Called(ctx, productID, cfg)
	if q := args.Get(0); q != nil {
		return q.(*service.Quote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPricingService) QuoteLines(ctx context.Context, lines []service.LineRequest) ([]service.Quote, error) {
	args := m.Called(ctx, lines)
	if q := args.Get(0); q != nil {
		return q.([]service.Quote), args.Error(1)
	}
	return nil, args.Error(1)
}
