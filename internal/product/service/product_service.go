package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/platform/money"
	"github.com/ridloal/woodkits-store/internal/product/domain"
	"github.com/ridloal/woodkits-store/internal/product/repository"
)

var ErrInvalidProduct = errors.New("invalid product")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type ProductService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProductDetails(ctx context.Context, productID string) (*domain.Product, error)

	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	SetStock(ctx context.Context, productID string, count int) error
}

type productServiceImpl struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productServiceImpl{repo: repo}
}

func (s *productServiceImpl) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *productServiceImpl) GetProductDetails(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	p, err := buildProduct(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		if !errors.Is(err, repository.ErrSlugConflict) {
			logger.Error("CreateProduct: repo error", err)
		}
		return nil, err
	}
	logger.Info("product created", logger.Fields{"product_id": p.ID, "slug": p.Slug})
	return p, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, productID string, in domain.ProductInput) (*domain.Product, error) {
	p, err := buildProduct(in)
	if err != nil {
		return nil, err
	}
	p.ID = productID
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, productID string) error {
	return s.repo.DeactivateProduct(ctx, productID)
}

func (s *productServiceImpl) SetStock(ctx context.Context, productID string, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: stockCount must not be negative", ErrInvalidProduct)
	}
	return s.repo.SetStock(ctx, productID, count)
}

// buildProduct validates the admin payload and turns it into a product.
func buildProduct(in domain.ProductInput) (*domain.Product, error) {
	invalid := func(field, reason string) error {
		return fmt.Errorf("%w: %s %s", ErrInvalidProduct, field, reason)
	}

	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, invalid("slug", "must be lowercase words separated by dashes")
	}
	if strings.TrimSpace(in.Name.He) == "" && strings.TrimSpace(in.Name.En) == "" {
		return nil, invalid("name", "is required")
	}
	if !in.BasePrice.IsPositive() {
		return nil, invalid("basePrice", "must be positive")
	}
	if strings.TrimSpace(in.Currency) == "" {
		return nil, invalid("currency", "is required")
	}
	if in.StockCount < 0 {
		return nil, invalid("stockCount", "must not be negative")
	}

	for name, d := range in.Dimensions {
		field := "dimensions." + name
		switch {
		case strings.TrimSpace(name) == "":
			return nil, invalid("dimensions", "names must not be empty")
		case d.Min.GreaterThan(d.Max):
			return nil, invalid(field, "min must not exceed max")
		case d.Default.LessThan(d.Min) || d.Default.GreaterThan(d.Max):
			return nil, invalid(field, "default must lie within [min, max]")
		case !d.Step.IsPositive():
			return nil, invalid(field, "step must be positive")
		}
	}
	for name, o := range in.Options {
		if o.Cost.IsNegative() {
			return nil, invalid("options."+name, "cost must not be negative")
		}
	}

	images := make([]domain.Image, 0, len(in.Images))
	primary := -1
	for i, img := range in.Images {
		if strings.TrimSpace(img.URL) == "" {
			return nil, invalid(fmt.Sprintf("images[%d].url", i), "is required")
		}
		if img.IsPrimary {
			if primary >= 0 {
				img.IsPrimary = false // only the first flagged image stays primary
			} else {
				primary = i
			}
		}
		images = append(images, img)
	}
	if primary < 0 && len(images) > 0 {
		images[0].IsPrimary = true
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	return &domain.Product{
		Slug:        slug,
		Name:        in.Name,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		BasePrice:   in.BasePrice,
		Currency:    money.Normalize(in.Currency),
		StockCount:  in.StockCount,
		InStock:     in.StockCount > 0,
		Images:      images,
		Dimensions:  in.Dimensions,
		Options:     in.Options,
		Active:      active,
	}, nil
}
