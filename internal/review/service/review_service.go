package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ridloal/woodkits-store/internal/platform/logger"
	pRepo "github.com/ridloal/woodkits-store/internal/product/repository"
	"github.com/ridloal/woodkits-store/internal/review/domain"
	"github.com/ridloal/woodkits-store/internal/review/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrInvalidReview   = errors.New("invalid review")
)

type ReviewService interface {
	CreateReview(ctx context.Context, productID string, req domain.CreateReviewRequest) (*domain.Review, error)
	ListProductReviews(ctx context.Context, productID string) (*domain.ProductReviews, error)
	ListReviews(ctx context.Context, pendingOnly bool) ([]domain.Review, error)
	ApproveReview(ctx context.Context, id string) error
	DeleteReview(ctx context.Context, id string) error
}

type reviewServiceImpl struct {
	repo        repository.ReviewRepository
	products    pRepo.ProductRepository
	autoApprove bool
}

func NewReviewService(repo repository.ReviewRepository, products pRepo.ProductRepository, autoApprove bool) ReviewService {
	return &reviewServiceImpl{repo: repo, products: products, autoApprove: autoApprove}
}

func (s *reviewServiceImpl) ensureProduct(ctx context.Context, productID string) error {
	p, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pRepo.ErrProductNotFound) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return err
	}
	if !p.Active {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return nil
}

func (s *reviewServiceImpl) CreateReview(ctx context.Context, productID string, req domain.CreateReviewRequest) (*domain.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	author := strings.TrimSpace(req.AuthorName)
	if author == "" {
		return nil, fmt.Errorf("%w: authorName is required", ErrInvalidReview)
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}

	review := &domain.Review{
		ProductID:  productID,
		AuthorName: author,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		Approved:   s.autoApprove,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("could not save review: %w", err)
	}
	logger.Info("review submitted", logger.Fields{"review_id": review.ID, "product_id": productID, "approved": review.Approved})
	return review, nil
}

func (s *reviewServiceImpl) ListProductReviews(ctx context.Context, productID string) (*domain.ProductReviews, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := s.repo.ListByProduct(ctx, productID, true)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return &domain.ProductReviews{Reviews: reviews, Summary: summarize(reviews)}, nil
}

// summarize averages ratings to one decimal place.
func summarize(reviews []domain.Review) domain.Summary {
	if len(reviews) == 0 {
		return domain.Summary{}
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	avg := float64(total) / float64(len(reviews))
	return domain.Summary{Count: len(reviews), Average: math.Round(avg*10) / 10}
}

func (s *reviewServiceImpl) ListReviews(ctx context.Context, pendingOnly bool) ([]domain.Review, error) {
	return s.repo.ListReviews(ctx, pendingOnly)
}

func (s *reviewServiceImpl) ApproveReview(ctx context.Context, id string) error {
	return s.repo.Approve(ctx, id)
}

func (s *reviewServiceImpl) DeleteReview(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
