package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/review/domain"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewRepository interface {
	CreateReview(ctx context.Context, r *domain.Review) error
	ListByProduct(ctx context.Context, productID string, approvedOnly bool) ([]domain.Review, error)
	ListReviews(ctx context.Context, pendingOnly bool) ([]domain.Review, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type postgresReviewRepository struct {
	db *sql.DB
}

func NewPostgresReviewRepository(db *sql.DB) ReviewRepository {
	return &postgresReviewRepository{db: db}
}

const reviewColumns = `id, product_id, author_name, rating, comment, approved, created_at`

func (r *postgresReviewRepository) CreateReview(ctx context.Context, rv *domain.Review) error {
	query := `INSERT INTO reviews (product_id, author_name, rating, comment, approved, created_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	rv.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query, rv.ProductID, rv.AuthorName, rv.Rating, rv.Comment, rv.Approved, rv.CreatedAt).
		Scan(&rv.ID, &rv.CreatedAt)
	if err != nil {
		logger.Error("CreateReview: insert failed", err, logger.Fields{"product_id": rv.ProductID})
		return err
	}
	return nil
}

func (r *postgresReviewRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error(op+": query failed", err)
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.Approved, &rv.CreatedAt); err != nil {
			logger.Error(op+": scan failed", err)
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *postgresReviewRepository) ListByProduct(ctx context.Context, productID string, approvedOnly bool) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = $1 AND (approved OR NOT $2) ORDER BY created_at DESC`
	return r.query(ctx, "ListByProduct", query, productID, approvedOnly)
}

func (r *postgresReviewRepository) ListReviews(ctx context.Context, pendingOnly bool) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE (NOT approved OR NOT $1) ORDER BY created_at DESC`
	return r.query(ctx, "ListReviews", query, pendingOnly)
}

func (r *postgresReviewRepository) exec(ctx context.Context, op, query, id string) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error(op+": exec failed", err, logger.Fields{"review_id": id})
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *postgresReviewRepository) Approve(ctx context.Context, id string) error {
	return r.exec(ctx, "Approve", `UPDATE reviews SET approved = TRUE WHERE id = $1`, id)
}

func (r *postgresReviewRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "Delete", `DELETE FROM reviews WHERE id = $1`, id)
}
