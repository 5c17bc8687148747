package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pDomain "github.com/ridloal/woodkits-store/internal/product/domain"
	pRepo "github.com/ridloal/woodkits-store/internal/product/repository"
	"github.com/ridloal/woodkits-store/internal/product/repository/mocks"
)

func validInput() pDomain.ProductInput {
	return pDomain.ProductInput{
		Slug:      "Stairs-Classic",
		Name:      pDomain.LocalizedText{He: "מדרגות", En: "Stairs"},
		Category:  "stairs",
		BasePrice: decimal.NewFromInt(500),
		Currency:  "nis",
		Images: []pDomain.Image{
			{URL: "https://cdn.example/1.jpg"},
			{URL: "https://cdn.example/2.jpg"},
		},
		Dimensions: map[string]pDomain.DimensionSpec{
			"width": {
				Min: decimal.NewFromInt(60), Max: decimal.NewFromInt(120), Default: decimal.NewFromInt(80),
				Step: decimal.NewFromInt(10), Multiplier: decimal.NewFromInt(2), Visible: true, Editable: true,
			},
		},
		Options: map[string]pDomain.OptionSpec{"lacquer": {Cost: decimal.NewFromInt(50)}},
	}
}

func TestProductService_GetProductDetails(t *testing.T) {
	ctx := context.TODO()

	t.Run("Active product", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo)
		mockRepo.On("GetProductByID", ctx, "prod1").Return(&pDomain.Product{ID: "prod1", Active: true}, nil).Once()

		p, err := svc.GetProductDetails(ctx, "prod1")

		require.NoError(t, err)
		assert.Equal(t, "prod1", p.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Inactive product is hidden", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo)
		mockRepo.On("GetProductByID", ctx, "prod1").Return(&pDomain.Product{ID: "prod1"}, nil).Once()

		p, err := svc.GetProductDetails(ctx, "prod1")

		assert.Nil(t, p)
		assert.ErrorIs(t, err, pRepo.ErrProductNotFound)
	})

	t.Run("Product not found", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo)
		mockRepo.On("GetProductByID", ctx, "prod1").Return(nil, pRepo.ErrProductNotFound).Once()

		_, err := svc.GetProductDetails(ctx, "prod1")

		assert.ErrorIs(t, err, pRepo.ErrProductNotFound)
	})
}

func TestProductService_ListProducts(t *testing.T) {
	ctx := context.TODO()
	mockRepo := new(mocks.MockProductRepository)
	svc := NewProductService(mockRepo)
	filter := pDomain.ProductFilter{Category: "beds", InStockOnly: true}

	mockRepo.On("ListProducts", ctx, filter).Return([]pDomain.Product{{ID: "a"}, {ID: "b"}}, nil).Once()
	products, err := svc.ListProducts(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	mockRepo.On("ListProducts", ctx, filter).Return(nil, errors.New("db error")).Once()
	_, err = svc.ListProducts(ctx, filter)
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.TODO()

	t.Run("Normalises and stores", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo)
		mockRepo.On("CreateProduct", ctx, mock.AnythingOfType("*domain.Product")).Return(nil).Once()

		p, err := svc.CreateProduct(ctx, validInput())

		require.NoError(t, err)
		assert.Equal(t, "mock-product-id", p.ID)
		assert.Equal(t, "stairs-classic", p.Slug)
		assert.Equal(t, "ILS", p.Currency)
		assert.True(t, p.Active)
		assert.True(t, p.Images[0].IsPrimary)
		assert.False(t, p.Images[1].IsPrimary)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Slug conflict", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo)
		mockRepo.On("CreateProduct", ctx, mock.AnythingOfType("*domain.Product")).Return(pRepo.ErrSlugConflict).Once()

		_, err := svc.CreateProduct(ctx, validInput())

		assert.ErrorIs(t, err, pRepo.ErrSlugConflict)
	})

	invalid := []struct {
		name   string
		mutate func(in *pDomain.ProductInput)
		field  string
	}{
		{"zero base price", func(in *pDomain.ProductInput) { in.BasePrice = decimal.Zero }, "basePrice"},
		{"bad slug", func(in *pDomain.ProductInput) { in.Slug = "two words" }, "slug"},
		{"missing name", func(in *pDomain.ProductInput) { in.Name = pDomain.LocalizedText{} }, "name"},
		{"default outside range", func(in *pDomain.ProductInput) {
			d := in.Dimensions["width"]
			d.Default = decimal.NewFromInt(200)
			in.Dimensions["width"] = d
		}, "dimensions.width"},
		{"zero step", func(in *pDomain.ProductInput) {
			d := in.Dimensions["width"]
			d.Step = decimal.Zero
			in.Dimensions["width"] = d
		}, "dimensions.width"},
		{"negative option cost", func(in *pDomain.ProductInput) {
			in.Options["lacquer"] = pDomain.OptionSpec{Cost: decimal.NewFromInt(-1)}
		}, "options.lacquer"},
		{"image without url", func(in *pDomain.ProductInput) { in.Images[1].URL = "" }, "images[1].url"},
	}
	for _, tt := range invalid {
		t.Run("Invalid: "+tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockProductRepository)
			svc := NewProductService(mockRepo)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.CreateProduct(ctx, in)

			assert.ErrorIs(t, err, ErrInvalidProduct)
			assert.Contains(t, err.Error(), tt.field)
			mockRepo.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	ctx := context.TODO()
	mockRepo := new(mocks.MockProductRepository)
	svc := NewProductService(mockRepo)

	mockRepo.On("UpdateProduct", ctx, mock.MatchedBy(func(p *pDomain.Product) bool { return p.ID == "prod1" })).Return(nil).Once()
	p, err := svc.UpdateProduct(ctx, "prod1", validInput())
	require.NoError(t, err)
	assert.Equal(t, "prod1", p.ID)

	mockRepo.On("DeactivateProduct", ctx, "prod1").Return(nil).Once()
	assert.NoError(t, svc.DeleteProduct(ctx, "prod1"))

	mockRepo.On("SetStock", ctx, "prod1", 7).Return(nil).Once()
	assert.NoError(t, svc.SetStock(ctx, "prod1", 7))
	assert.ErrorIs(t, svc.SetStock(ctx, "prod1", -1), ErrInvalidProduct)

	mockRepo.AssertExpectations(t)
}
