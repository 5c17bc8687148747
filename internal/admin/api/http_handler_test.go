package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ridloal/woodkits-store/internal/admin/domain"
	"github.com/ridloal/woodkits-store/internal/admin/repository/mocks"
	"github.com/ridloal/woodkits-store/internal/admin/service"
)

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockAdminRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := new(mocks.MockAdminRepository)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	owner := func() *domain.Admin {
		return &domain.Admin{ID: "admin-1", Email: "owner@example.com", Name: "Owner", PasswordHash: string(hash)}
	}
	repo.On("GetAdminByEmail", mock.Anything, "owner@example.com").Return(owner(), nil).Maybe()
	repo.On("GetAdminByID", mock.Anything, "admin-1").Return(owner(), nil).Maybe()

	svc := service.NewAdminService(repo, "handler-secret", time.Hour)
	r := gin.New()
	v1 := r.Group("/api/v1")
	protected := v1.Group("/admin", RequireAdmin(svc))
	NewAdminHandler(svc).RegisterRoutes(v1, protected)
	return r, repo
}

func do(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := do(r, http.MethodPost, "/api/v1/admin/login", "", `{"email":"owner@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data domain.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func TestAdminHandler_LoginAndMe(t *testing.T) {
	r, _ := setupRouter(t)
	token := login(t, r)

	w := do(r, http.MethodGet, "/api/v1/admin/me", token, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"owner@example.com"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAdminHandler_LoginRejectsBadPassword(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, http.MethodPost, "/api/v1/admin/login", "", `{"email":"owner@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestRequireAdmin(t *testing.T) {
	r, _ := setupRouter(t)

	t.Run("missing token", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/v1/admin/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/v1/admin/me", "abc.def.ghi", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminHandler_CreateAdmin(t *testing.T) {
	r, repo := setupRouter(t)
	token := login(t, r)

	repo.On("CreateAdmin", mock.Anything, mock.AnythingOfType("*domain.Admin")).Return(nil).Once()
	w := do(r, http.MethodPost, "/api/v1/admin/admins", token, `{"email":"helper@example.com","name":"Helper","password":"longenough"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/api/v1/admin/admins", token, `{"email":"not-an-email","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertExpectations(t)
}
