package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/ridloal/woodkits-store/internal/platform/database"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/product/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSlugConflict      = errors.New("product with this slug already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductRepository interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeactivateProduct(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, count int) error

	// ReserveStock decrements stock only when enough units remain.
	ReserveStock(ctx context.Context, id string, quantity int) error
	ReleaseStock(ctx context.Context, id string, quantity int) error
}

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

const productColumns = `id, slug, name, description, category, base_price, currency, stock_count,
	images, dimensions, options, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p                                        domain.Product
		name, description, images, dims, options []byte
	)
	err := row.Scan(&p.ID, &p.Slug, &name, &description, &p.Category, &p.BasePrice, &p.Currency, &p.StockCount,
		&images, &dims, &options, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, part := range []struct {
		field string
		raw   []byte
		dest  interface{}
	}{
		{"name", name, &p.Name},
		{"description", description, &p.Description},
		{"images", images, &p.Images},
		{"dimensions", dims, &p.Dimensions},
		{"options", options, &p.Options},
	} {
		if len(part.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(part.raw, part.dest); err != nil {
			return nil, fmt.Errorf("decode product %s.%s: %w", p.ID, part.field, err)
		}
	}
	p.InStock = p.StockCount > 0
	return &p, nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var (
		conds []string
		args  []interface{}
	)
	if !filter.IncludeInactive {
		conds = append(conds, "active = TRUE")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.InStockOnly {
		conds = append(conds, "stock_count > 0")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("ListProducts: query failed", err)
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			logger.Error("ListProducts: scan failed", err)
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		logger.Error("ListProducts: rows iteration error", err)
		return nil, err
	}
	return products, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetProductByID: query failed", err, logger.Fields{"product_id": id})
		return nil, err
	}
	return p, nil
}

func (r *postgresProductRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		logger.Error("GetProductsByIDs: query failed", err)
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			logger.Error("GetProductsByIDs: scan failed", err)
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func marshalJSONColumns(p *domain.Product) ([][]byte, error) {
	values := []interface{}{p.Name, p.Description, p.Images, p.Dimensions, p.Options}
	out := make([][]byte, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	cols, err := marshalJSONColumns(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	query := `INSERT INTO products (slug, name, description, category, base_price, currency, stock_count,
	              images, dimensions, options, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id, created_at, updated_at`

	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()

	err = r.db.QueryRowContext(ctx, query, p.Slug, cols[0], cols[1], p.Category, p.BasePrice, p.Currency, p.StockCount,
		cols[2], cols[3], cols[4], p.Active, p.CreatedAt, p.UpdatedAt).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrSlugConflict
		}
		logger.Error("CreateProduct: failed to insert product", err)
		return err
	}
	p.InStock = p.StockCount > 0
	return nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	cols, err := marshalJSONColumns(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	query := `UPDATE products SET slug = $1, name = $2, description = $3, category = $4, base_price = $5,
	              currency = $6, stock_count = $7, images = $8, dimensions = $9, options = $10, active = $11,
	              updated_at = NOW()
	          WHERE id = $12
	          RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query, p.Slug, cols[0], cols[1], p.Category, p.BasePrice, p.Currency, p.StockCount,
		cols[2], cols[3], cols[4], p.Active, p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if database.IsUniqueViolation(err) {
			return ErrSlugConflict
		}
		logger.Error("UpdateProduct: failed to update product", err, logger.Fields{"product_id": p.ID})
		return err
	}
	p.InStock = p.StockCount > 0
	return nil
}

func (r *postgresProductRepository) execAffectingOne(ctx context.Context, op, query string, args ...interface{}) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error(op+": exec failed", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *postgresProductRepository) DeactivateProduct(ctx context.Context, id string) error {
	ok, err := r.execAffectingOne(ctx, "DeactivateProduct",
		`UPDATE products SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresProductRepository) SetStock(ctx context.Context, id string, count int) error {
	ok, err := r.execAffectingOne(ctx, "SetStock",
		`UPDATE products SET stock_count = $1, updated_at = NOW() WHERE id = $2`, count, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresProductRepository) ReserveStock(ctx context.Context, id string, quantity int) error {
	ok, err := r.execAffectingOne(ctx, "ReserveStock",
		`UPDATE products SET stock_count = stock_count - $1, updated_at = NOW()
		 WHERE id = $2 AND active = TRUE AND stock_count >= $1`, quantity, id)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	// Distinguish a missing product from an exhausted one.
	if _, err := r.GetProductByID(ctx, id); err != nil {
		return err
	}
	return ErrInsufficientStock
}

func (r *postgresProductRepository) ReleaseStock(ctx context.Context, id string, quantity int) error {
	ok, err := r.execAffectingOne(ctx, "ReleaseStock",
		`UPDATE products SET stock_count = stock_count + $1, updated_at = NOW() WHERE id = $2`, quantity, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}
