package mocks

import (
	"context"
	"time"

	"github.com/ridloal/woodkits-store/internal/review/domain"
	"github.com/stretchr/testify/mock"
)

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) CreateReview(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	if r != nil && args.Error(0) == nil {
		r.ID = "mock-review-id"
		r.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockReviewRepository) ListByProduct(ctx context.Context, productID string, approvedOnly bool) ([]domain.Review, error) {
	args := m.Called(ctx, productID, approvedOnly)
	if r := args.Get(0); r != nil {
		return r.([]domain.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewRepository) ListReviews(ctx context.Context, pendingOnly bool) ([]domain.Review, error) {
	args := m.Called(ctx, pendingOnly)
	if r := args.Get(0); r != nil {
		return r.([]domain.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewRepository) Approve(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
