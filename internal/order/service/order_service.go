package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/ridloal/woodkits-store/internal/order/domain"
	"github.com/ridloal/woodkits-store/internal/order/repository"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/ridloal/woodkits-store/internal/platform/money"
	"github.com/ridloal/woodkits-store/internal/pricing"
	pricingService "github.com/ridloal/woodkits-store/internal/pricing/service"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrder            = errors.New("invalid order")
	ErrOrderCreationFailed     = errors.New("order creation failed")
	ErrStockReservationFailed  = errors.New("stock reservation failed for one or more items")
	ErrMixedCurrency           = errors.New("order items must share one currency")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrOrderCannotBeConfirmed  = errors.New("order cannot be confirmed")
)

type OrderService interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.CreateOrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	AttachPaymentRef(ctx context.Context, orderID, paymentRef string) error
	ConfirmPayment(ctx context.Context, orderID, paymentRef string) (*domain.Order, error)
	ExportOrders(ctx context.Context, filter domain.OrderFilter, w io.Writer) error

	ProcessPaymentTimeouts(ctx context.Context)
	StartScheduler(spec string) error
	StopScheduler()
}

type orderServiceImpl struct {
	orderRepo              repository.OrderRepository
	pricer                 pricingService.PricingService
	stock                  StockClient
	publisher              EventPublisher
	notifier               Notifier
	scheduler              *cron.Cron
	paymentTimeoutDuration time.Duration
}

func NewOrderService(or repository.OrderRepository, pricer pricingService.PricingService, stock StockClient, paymentTimeout time.Duration, opts ...Option) OrderService {
	s := &orderServiceImpl{
		orderRepo:              or,
		pricer:                 pricer,
		stock:                  stock,
		publisher:              noopPublisher{},
		notifier:               noopNotifier{},
		paymentTimeoutDuration: paymentTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateCustomer(c domain.Customer) error {
	required := []struct{ field, value string }{
		{"customer.name", c.Name},
		{"customer.email", c.Email},
		{"customer.phone", c.Phone},
		{"customer.address", c.Address},
		{"customer.city", c.City},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidOrder, r.field)
		}
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: customer.email is not a valid address", ErrInvalidOrder)
	}
	return nil
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.CreateOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidOrder)
	}
	if err := validateCustomer(req.Customer); err != nil {
		return nil, err
	}
	lines := make([]pricingService.LineRequest, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: items[%d].quantity must be positive", ErrInvalidOrder, i)
		}
		lines[i] = pricingService.LineRequest{ProductID: item.ProductID, Quantity: item.Quantity, Configuration: item.Configuration}
	}

	// Prices always come from the catalog, never from the client.
	quotes, err := s.pricer.QuoteLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	currency := money.Normalize(quotes[0].Result.Currency)
	total := decimal.Zero
	orderItems := make([]domain.OrderItem, len(req.Items))
	for i, q := range quotes {
		if money.Normalize(q.Result.Currency) != currency {
			return nil, fmt.Errorf("%w: %s and %s", ErrMixedCurrency, currency, money.Normalize(q.Result.Currency))
		}
		lineTotal := q.Result.TotalPrice.Mul(decimal.NewFromInt(int64(req.Items[i].Quantity)))
		total = total.Add(lineTotal)
		orderItems[i] = domain.OrderItem{
			ProductID:     req.Items[i].ProductID,
			ProductName:   q.Product.Name.Pick(req.Locale),
			Quantity:      req.Items[i].Quantity,
			Configuration: effectiveConfiguration(q.Result.Effective),
			UnitPrice:     q.Result.TotalPrice,
			LineTotal:     money.Round(lineTotal, currency),
		}
	}

	reserved, err := s.reserveAll(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	newOrder := &domain.Order{
		Customer:    trimCustomer(req.Customer),
		TotalAmount: money.Round(total, currency),
		Currency:    currency,
		Status:      domain.StatusPendingPayment,
		Locale:      req.Locale,
	}

	if err := s.orderRepo.CreateOrderWithItems(ctx, newOrder, orderItems); err != nil {
		logger.Error("CreateOrder: failed to save order to repository", err)
		s.releaseAll(reserved, "")
		return nil, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}
	logger.Info("order created", logger.Fields{"order_id": newOrder.ID, "total": newOrder.TotalAmount.String(), "currency": currency})

	if err := s.publisher.PublishOrderPlaced(ctx, newOrder); err != nil {
		logger.Error("CreateOrder: failed to publish order event", err, logger.Fields{"order_id": newOrder.ID})
	}
	if err := s.notifier.OrderPlaced(ctx, newOrder); err != nil {
		logger.Error("CreateOrder: failed to send order notifications", err, logger.Fields{"order_id": newOrder.ID})
	}

	return &domain.CreateOrderResponse{Order: *newOrder}, nil
}

func effectiveConfiguration(e pricing.Effective) pricing.Configuration {
	cfg := pricing.Configuration{
		Dimensions: make(map[string]interface{}, len(e.Dimensions)),
		Options:    make(map[string]bool, len(e.Options)),
	}
	for name, v := range e.Dimensions {
		cfg.Dimensions[name] = v.String()
	}
	for name, on := range e.Options {
		cfg.Options[name] = on
	}
	return cfg
}

func trimCustomer(c domain.Customer) domain.Customer {
	return domain.Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(strings.ToLower(c.Email)),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
		City:    strings.TrimSpace(c.City),
		Notes:   strings.TrimSpace(c.Notes),
	}
}

// reserveAll reserves stock line by line and releases what it already
// reserved when a later line fails.
func (s *orderServiceImpl) reserveAll(ctx context.Context, items []domain.CreateOrderItemRequest) ([]domain.CreateOrderItemRequest, error) {
	reserved := make([]domain.CreateOrderItemRequest, 0, len(items))
	for _, itemReq := range items {
		if err := s.stock.ReserveStock(ctx, itemReq.ProductID, itemReq.Quantity); err != nil {
			logger.Warn("CreateOrder: stock reservation failed", logger.Fields{"product_id": itemReq.ProductID, "quantity": itemReq.Quantity, "error": err.Error()})
			s.releaseAll(reserved, "")
			return nil, fmt.Errorf("%w: product_id %s, quantity %d: %v", ErrStockReservationFailed, itemReq.ProductID, itemReq.Quantity, err)
		}
		reserved = append(reserved, itemReq)
	}
	return reserved, nil
}

// releaseAll is best effort. The request context may already be done, so it
// runs on a background context.
func (s *orderServiceImpl) releaseAll(items []domain.CreateOrderItemRequest, orderID string) bool {
	ok := true
	for _, item := range items {
		if err := s.stock.ReleaseStock(context.Background(), item.ProductID, item.Quantity); err != nil {
			logger.Error("CRITICAL: failed to release reserved stock", err, logger.Fields{"product_id": item.ProductID, "quantity": item.Quantity, "order_id": orderID})
			ok = false
		}
	}
	return ok
}

func (s *orderServiceImpl) releaseOrderStock(ctx context.Context, orderID string) bool {
	items, err := s.orderRepo.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		logger.Error("failed to load order items for stock release", err, logger.Fields{"order_id": orderID})
		return false
	}
	reqs := make([]domain.CreateOrderItemRequest, len(items))
	for i, it := range items {
		reqs[i] = domain.CreateOrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return s.releaseAll(reqs, orderID)
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, filter.Status)
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.orderRepo.ListOrders(ctx, filter)
}

func (s *orderServiceImpl) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, status)
	}
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, status)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, order.Status, status); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStatusTransition, err)
		}
		return nil, err
	}

	if status == domain.StatusCancelled && order.Status.HoldsStock() {
		if !s.releaseOrderStock(ctx, orderID) {
			logger.Warn("order cancelled but some stock may not have been released", logger.Fields{"order_id": orderID})
		}
	}
	logger.Info("order status updated", logger.Fields{"order_id": orderID, "from": order.Status, "to": status})

	order.Status = status
	return order, nil
}

func (s *orderServiceImpl) AttachPaymentRef(ctx context.Context, orderID, paymentRef string) error {
	return s.orderRepo.SetPaymentRef(ctx, orderID, paymentRef)
}

// ConfirmPayment marks a pending order as paid. Confirming an order that is
// already paid with the same reference is a no-op so webhook retries succeed.
func (s *orderServiceImpl) ConfirmPayment(ctx context.Context, orderID, paymentRef string) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.StatusPaid && paymentRef != "" && order.PaymentRef == paymentRef {
		return order, nil
	}
	if order.Status != domain.StatusPendingPayment {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderCannotBeConfirmed, orderID, order.Status)
	}

	if paymentRef != "" && paymentRef != order.PaymentRef {
		if err := s.orderRepo.SetPaymentRef(ctx, orderID, paymentRef); err != nil {
			return nil, err
		}
		order.PaymentRef = paymentRef
	}
	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, domain.StatusPendingPayment, domain.StatusPaid); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, fmt.Errorf("%w: %v", ErrOrderCannotBeConfirmed, err)
		}
		return nil, err
	}
	order.Status = domain.StatusPaid
	logger.Info("payment confirmed", logger.Fields{"order_id": orderID, "payment_ref": paymentRef})

	if err := s.notifier.PaymentReceived(ctx, order); err != nil {
		logger.Error("ConfirmPayment: failed to send payment notification", err, logger.Fields{"order_id": orderID})
	}
	return order, nil
}
