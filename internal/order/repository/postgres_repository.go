package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ridloal/woodkits-store/internal/order/domain"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrStatusChanged is returned when a conditional status update finds the
	// order in a different status than expected.
	ErrStatusChanged = errors.New("order status changed concurrently")
)

type OrderRepository interface {
	CreateOrderWithItems(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error)

	GetPendingOrdersOlderThan(ctx context.Context, duration time.Duration) ([]domain.Order, error)
	// UpdateOrderStatus moves the order from one status to another and fails
	// with ErrStatusChanged when the stored status is not from.
	UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error
	SetPaymentRef(ctx context.Context, orderID, paymentRef string) error
}

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) OrderRepository {
	return &postgresOrderRepository{db: db}
}

const orderColumns = `id, customer_name, customer_email, customer_phone, customer_address, customer_city,
       customer_notes, total_amount, currency, status, payment_ref, locale, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.Customer.Address,
		&o.Customer.City, &o.Customer.Notes, &o.TotalAmount, &o.Currency, &o.Status, &o.PaymentRef,
		&o.Locale, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrderWithItems stores the order and its items in one transaction.
func (r *postgresOrderRepository) CreateOrderWithItems(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("CreateOrderWithItems: failed to begin tx", err)
		return err
	}
	defer tx.Rollback()

	orderQuery := `INSERT INTO orders (customer_name, customer_email, customer_phone, customer_address, customer_city,
                       customer_notes, total_amount, currency, status, payment_ref, locale, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
                   RETURNING id, created_at, updated_at, status`

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = domain.StatusPendingPayment
	}

	c := order.Customer
	err = tx.QueryRowContext(ctx, orderQuery, c.Name, c.Email, c.Phone, c.Address, c.City, c.Notes,
		order.TotalAmount, order.Currency, order.Status, order.PaymentRef, order.Locale, order.CreatedAt, order.UpdatedAt).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.Status)
	if err != nil {
		logger.Error("CreateOrderWithItems: failed to insert order", err)
		return err
	}

	itemStmt, err := tx.PrepareContext(ctx, `INSERT INTO order_items (order_id, product_id, product_name, quantity,
                                                 configuration, unit_price, line_total, created_at)
                                            VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`)
	if err != nil {
		logger.Error("CreateOrderWithItems: failed to prepare item statement", err)
		return err
	}
	defer itemStmt.Close()

	for i := range items {
		items[i].OrderID = order.ID
		items[i].CreatedAt = now
		cfg, err := json.Marshal(items[i].Configuration)
		if err != nil {
			return fmt.Errorf("encode configuration for %s: %w", items[i].ProductID, err)
		}
		err = itemStmt.QueryRowContext(ctx, items[i].OrderID, items[i].ProductID, items[i].ProductName, items[i].Quantity,
			cfg, items[i].UnitPrice, items[i].LineTotal, items[i].CreatedAt).
			Scan(&items[i].ID, &items[i].CreatedAt)
		if err != nil {
			logger.Error("CreateOrderWithItems: failed to insert order item", err, logger.Fields{"item_product_id": items[i].ProductID})
			return err
		}
	}
	order.Items = items

	return tx.Commit()
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrderByID: query failed", err, logger.Fields{"order_id": orderID})
		return nil, err
	}

	order.Items, err = r.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *postgresOrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.CreatedBefore.IsZero() {
		args = append(args, filter.CreatedBefore)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.After != nil {
		args = append(args, filter.After.CreatedAt, filter.After.ID)
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.queryOrders(ctx, "ListOrders", query, args...)
}

func (r *postgresOrderRepository) queryOrders(ctx context.Context, op, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error(op+": query failed", err)
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			logger.Error(op+": scan failed", err)
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *postgresOrderRepository) GetPendingOrdersOlderThan(ctx context.Context, duration time.Duration) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + `
              FROM orders
              WHERE status = $1 AND created_at < $2
              ORDER BY created_at ASC`

	thresholdTime := time.Now().Add(-duration)
	return r.queryOrders(ctx, "GetPendingOrdersOlderThan", query, domain.StatusPendingPayment, thresholdTime)
}

func (r *postgresOrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, to, orderID, from)
	if err != nil {
		logger.Error("UpdateOrderStatus: exec failed", err, logger.Fields{"order_id": orderID, "new_status": to})
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrStatusChanged
	}
	return nil
}

func (r *postgresOrderRepository) SetPaymentRef(ctx context.Context, orderID, paymentRef string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET payment_ref = $1, updated_at = NOW() WHERE id = $2`, paymentRef, orderID)
	if err != nil {
		logger.Error("SetPaymentRef: exec failed", err, logger.Fields{"order_id": orderID})
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresOrderRepository) GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, product_name, quantity, configuration, unit_price, line_total, created_at
              FROM order_items WHERE order_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		logger.Error("GetOrderItemsByOrderID: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			i   domain.OrderItem
			cfg []byte
		)
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.Quantity, &cfg, &i.UnitPrice, &i.LineTotal, &i.CreatedAt); err != nil {
			logger.Error("GetOrderItemsByOrderID: scan failed", err)
			return nil, err
		}
		if len(cfg) > 0 {
			if err := json.Unmarshal(cfg, &i.Configuration); err != nil {
				return nil, fmt.Errorf("decode configuration of item %s: %w", i.ID, err)
			}
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
