package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/pricing"
	pDomain "github.com/ridloal/woodkits-store/internal/product/domain"
	pRepo "github.com/ridloal/woodkits-store/internal/product/repository"
)

// Quote is a priced configuration of one product.
type Quote struct {
	Product *pDomain.Product
	Result  pricing.Result
}

// LineRequest asks for the price of Quantity units of one configuration.
type LineRequest struct {
	ProductID     string
	Quantity      int
	Configuration pricing.Configuration
}

type PricingService interface {
	CalculatePrice(ctx context.Context, productID string, cfg pricing.Configuration) (*Quote, error)
	// QuoteLines prices several lines with a single catalog lookup. The
	// returned slice is index aligned with lines.
	QuoteLines(ctx context.Context, lines []LineRequest) ([]Quote, error)
}

type pricingServiceImpl struct {
	products pRepo.ProductRepository
}

func NewPricingService(products pRepo.ProductRepository) PricingService {
	return &pricingServiceImpl{products: products}
}

func (s *pricingServiceImpl) CalculatePrice(ctx context.Context, productID string, cfg pricing.Configuration) (*Quote, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pRepo.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s", pricing.ErrProductNotFound, productID)
		}
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: %s", pricing.ErrProductNotFound, productID)
	}
	return s.quote(product, cfg)
}

func (s *pricingServiceImpl) QuoteLines(ctx context.Context, lines []LineRequest) ([]Quote, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*pDomain.Product, len(products))
	for i := range products {
		if products[i].Active {
			byID[products[i].ID] = &products[i]
		}
	}

	quotes := make([]Quote, len(lines))
	for i, l := range lines {
		product, ok := byID[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", pricing.ErrProductNotFound, l.ProductID)
		}
		q, err := s.quote(product, l.Configuration)
		if err != nil {
			return nil, err
		}
		quotes[i] = *q
	}
	return quotes, nil
}

func (s *pricingServiceImpl) quote(product *pDomain.Product, cfg pricing.Configuration) (*Quote, error) {
	res, err := pricing.Calculate(product, cfg)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidSchema) {
			logger.Error("pricing: product schema cannot be priced", err, logger.Fields{"product_id": product.ID})
		}
		return nil, err
	}
	if res.Clamped {
		logger.Warn("pricing: negative total clamped to zero", logger.Fields{
			"product_id":      product.ID,
			"base_price":      res.BasePrice.String(),
			"size_adjustment": res.SizeAdjustment.String(),
			"option_cost":     res.OptionCost.String(),
		})
	}
	return &Quote{Product: product, Result: res}, nil
}
