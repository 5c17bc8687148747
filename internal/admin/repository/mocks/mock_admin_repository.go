package mocks

import (
	"context"
	"time"

	"github.com/ridloal/woodkits-store/internal/admin/domain"
	"github.com/stretchr/testify/mock"
)

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	args := m.Called(ctx, admin)
	if admin != nil && args.Error(0) == nil {
		admin.ID = "mocked-admin-id"
		admin.CreatedAt = time.Now()
		admin.UpdatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockAdminRepository) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if a := args.Get(0); a != nil {
		return a.(*domain.Admin), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminRepository) GetAdminByID(ctx context.Context, id string) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*domain.Admin), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminRepository) CountAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
