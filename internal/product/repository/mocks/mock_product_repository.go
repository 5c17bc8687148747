package mocks

import (
	"context"

	pDomain "github.com/ridloal/woodkits-store/internal/product/domain"

	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListProducts(ctx context.Context, filter pDomain.ProductFilter) ([]pDomain.Product, error) {
	args := m.Called(ctx, filter)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id string) (*pDomain.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]pDomain.Product, error) {
	args := m.Called(ctx, ids)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) CreateProduct(ctx context.Context, p *pDomain.Product) error {
	args := m.Called(ctx, p)
	if p != nil && args.Error(0) == nil && p.ID == "" {
		p.ID = "mock-product-id"
	}
	return args.Error(0)
}

func (m *MockProductRepository) UpdateProduct(ctx context.Context, p *pDomain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) DeactivateProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) SetStock(ctx context.Context, id string, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

func (m *MockProductRepository) ReserveStock(ctx context.Context, id string, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) ReleaseStock(ctx context.Context, id string, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}
