package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	pDomain "github.com/ridloal/woodkits-store/internal/product/domain"
	pMocks "github.com/ridloal/woodkits-store/internal/product/repository/mocks"
	"github.com/ridloal/woodkits-store/internal/review/domain"
	"github.com/ridloal/woodkits-store/internal/review/repository"
	"github.com/ridloal/woodkits-store/internal/review/repository/mocks"
	"github.com/ridloal/woodkits-store/internal/review/service"
)

func setupRouter() (*gin.Engine, *mocks.MockReviewRepository) {
	gin.SetMode(gin.TestMode)
	products := new(pMocks.MockProductRepository)
	products.On("GetProductByID", mock.Anything, "stairs").Return(&pDomain.Product{ID: "stairs", Active: true}, nil)
	repo := new(mocks.MockReviewRepository)

	r := gin.New()
	v1 := r.Group("/api/v1")
	h := NewReviewHandler(service.NewReviewService(repo, products, false))
	h.RegisterRoutes(v1)
	h.RegisterAdminRoutes(v1.Group("/admin"))
	return r, repo
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReviewHandler_Create(t *testing.T) {
	r, repo := setupRouter()
	repo.On("CreateReview", mock.Anything, mock.Anything).Return(nil).Once()

	w := do(r, http.MethodPost, "/api/v1/products/stairs/reviews", `{"authorName":"Noa","rating":4,"comment":"ok"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"approved":false`)

	w = do(r, http.MethodPost, "/api/v1/products/stairs/reviews", `{"authorName":"Noa","rating":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	repo.AssertExpectations(t)
}

func TestReviewHandler_List(t *testing.T) {
	r, repo := setupRouter()
	repo.On("ListByProduct", mock.Anything, "stairs", true).Return([]domain.Review{{ID: "r1", Rating: 5, Approved: true}}, nil).Once()

	w := do(r, http.MethodGet, "/api/v1/products/stairs/reviews", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"summary":{"count":1,"average":5}`)
}

func TestReviewHandler_Admin(t *testing.T) {
	r, repo := setupRouter()
	repo.On("ListReviews", mock.Anything, true).Return([]domain.Review{}, nil).Once()
	repo.On("Approve", mock.Anything, "missing").Return(repository.ErrReviewNotFound).Once()
	repo.On("Delete", mock.Anything, "r1").Return(nil).Once()

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/admin/reviews?pending=true", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/api/v1/admin/reviews/missing/approve", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/v1/admin/reviews/r1", "").Code)
	repo.AssertExpectations(t)
}
