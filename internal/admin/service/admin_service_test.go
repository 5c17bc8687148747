package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ridloal/woodkits-store/internal/admin/domain"
	"github.com/ridloal/woodkits-store/internal/admin/repository"
	"github.com/ridloal/woodkits-store/internal/admin/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func TestAdminService_CreateAdmin(t *testing.T) {
	mockRepo := new(mocks.MockAdminRepository)
	svc := NewAdminService(mockRepo, testSecret, time.Hour)

	ctx := context.TODO()
	req := domain.CreateAdminRequest{
		Email:    "  Owner@Example.com ",
		Name:     "Owner",
		Password: "password123",
	}

	t.Run("Successful creation", func(t *testing.T) {
		mockRepo.On("CreateAdmin", ctx, mock.MatchedBy(func(a *domain.Admin) bool {
			return a.Email == "owner@example.com" &&
				bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("password123")) == nil
		})).Return(nil).Once()

		admin, err := svc.CreateAdmin(ctx, req)

		assert.NoError(t, err)
		require.NotNil(t, admin)
		assert.Equal(t, "owner@example.com", admin.Email)
		assert.NotEmpty(t, admin.ID)
		assert.Empty(t, admin.PasswordHash)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Admin already exists", func(t *testing.T) {
		mockRepo.On("CreateAdmin", ctx, mock.AnythingOfType("*domain.Admin")).Return(repository.ErrAdminConflict).Once()

		admin, err := svc.CreateAdmin(ctx, req)

		assert.Nil(t, admin)
		assert.ErrorIs(t, err, ErrAdminAlreadyExists)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository error on CreateAdmin", func(t *testing.T) {
		mockRepo.On("CreateAdmin", ctx, mock.AnythingOfType("*domain.Admin")).Return(errors.New("database error")).Once()

		admin, err := svc.CreateAdmin(ctx, req)

		assert.Nil(t, admin)
		assert.Contains(t, err.Error(), "could not save admin")
		mockRepo.AssertExpectations(t)
	})
}

func TestAdminService_Login(t *testing.T) {
	mockRepo := new(mocks.MockAdminRepository)
	svc := NewAdminService(mockRepo, testSecret, time.Hour)
	ctx := context.TODO()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	stored := func() *domain.Admin {
		return &domain.Admin{ID: "admin-1", Email: "owner@example.com", PasswordHash: string(hashedPassword)}
	}

	t.Run("Successful login", func(t *testing.T) {
		mockRepo.On("GetAdminByEmail", ctx, "owner@example.com").Return(stored(), nil).Once()

		resp, err := svc.Login(ctx, domain.LoginRequest{Email: "Owner@example.com", Password: "password123"})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "admin-1", resp.Admin.ID)
		assert.Empty(t, resp.Admin.PasswordHash)
		assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

		claims, err := svc.ParseToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", claims.AdminID)
		assert.Equal(t, "owner@example.com", claims.Email)
		assert.Equal(t, "admin", claims.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Unknown email", func(t *testing.T) {
		mockRepo.On("GetAdminByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrAdminNotFound).Once()

		resp, err := svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "password123"})

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Wrong password", func(t *testing.T) {
		mockRepo.On("GetAdminByEmail", ctx, "owner@example.com").Return(stored(), nil).Once()

		resp, err := svc.Login(ctx, domain.LoginRequest{Email: "owner@example.com", Password: "wrong"})

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})
}

func TestAdminService_ParseToken(t *testing.T) {
	svc := NewAdminService(new(mocks.MockAdminRepository), testSecret, time.Hour)

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign("other", jwt.MapClaims{"sub": "a", "role": "admin", "exp": future})},
		{"expired", sign(testSecret, jwt.MapClaims{"sub": "a", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()})},
		{"missing exp", sign(testSecret, jwt.MapClaims{"sub": "a", "role": "admin"})},
		{"wrong role", sign(testSecret, jwt.MapClaims{"sub": "a", "role": "customer", "exp": future})},
		{"missing subject", sign(testSecret, jwt.MapClaims{"role": "admin", "exp": future})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ParseToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAdminService_EnsureBootstrapAdmin(t *testing.T) {
	ctx := context.TODO()

	t.Run("Creates the first admin", func(t *testing.T) {
		mockRepo := new(mocks.MockAdminRepository)
		svc := NewAdminService(mockRepo, testSecret, time.Hour)
		mockRepo.On("CountAdmins", ctx).Return(0, nil).Once()
		mockRepo.On("CreateAdmin", ctx, mock.AnythingOfType("*domain.Admin")).Return(nil).Once()

		assert.NoError(t, svc.EnsureBootstrapAdmin(ctx, "owner@example.com", "password123"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Skips when admins exist", func(t *testing.T) {
		mockRepo := new(mocks.MockAdminRepository)
		svc := NewAdminService(mockRepo, testSecret, time.Hour)
		mockRepo.On("CountAdmins", ctx).Return(2, nil).Once()

		assert.NoError(t, svc.EnsureBootstrapAdmin(ctx, "owner@example.com", "password123"))
		mockRepo.AssertNotCalled(t, "CreateAdmin", mock.Anything, mock.Anything)
	})

	t.Run("Skips without credentials", func(t *testing.T) {
		mockRepo := new(mocks.MockAdminRepository)
		svc := NewAdminService(mockRepo, testSecret, time.Hour)

		assert.NoError(t, svc.EnsureBootstrapAdmin(ctx, "", ""))
		mockRepo.AssertExpectations(t)
	})
}
