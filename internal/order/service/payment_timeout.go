package service

import (
	"context"
	"fmt"

	"github.com/ridloal/woodkits-store/internal/order/domain"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/robfig/cron/v3"
)

// StartScheduler runs ProcessPaymentTimeouts on the given cron spec (with
// seconds field).
func (s *orderServiceImpl) StartScheduler(spec string) error {
	if s.scheduler != nil {
		return fmt.Errorf("payment timeout scheduler already running")
	}
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		s.ProcessPaymentTimeouts(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid payment timeout schedule %q: %w", spec, err)
	}
	c.Start()
	s.scheduler = c
	logger.Info(fmt.Sprintf("Payment timeout scheduler initialized with spec '%s' and timeout duration %v", spec, s.paymentTimeoutDuration))
	return nil
}

func (s *orderServiceImpl) StopScheduler() {
	if s.scheduler == nil {
		return
	}
	<-s.scheduler.Stop().Done()
	s.scheduler = nil
}

func (s *orderServiceImpl) ProcessPaymentTimeouts(ctx context.Context) {
	orders, err := s.orderRepo.GetPendingOrdersOlderThan(ctx, s.paymentTimeoutDuration)
	if err != nil {
		logger.Error("ProcessPaymentTimeouts: failed to get pending orders", err)
		return
	}

	if len(orders) == 0 {
		logger.Debug("ProcessPaymentTimeouts: no orders past payment timeout")
		return
	}

	logger.Info(fmt.Sprintf("ProcessPaymentTimeouts: found %d orders to process for timeout", len(orders)))

	for _, order := range orders {
		// Flip the status first so a concurrent payment confirmation wins and
		// the stock of a paid order is never released.
		err := s.orderRepo.UpdateOrderStatus(ctx, order.ID, domain.StatusPendingPayment, domain.StatusPaymentTimeout)
		if err != nil {
			logger.Error(fmt.Sprintf("ProcessPaymentTimeouts: failed to update order status for %s", order.ID), err)
			continue
		}

		if s.releaseOrderStock(ctx, order.ID) {
			logger.Info(fmt.Sprintf("Order %s marked as PAYMENT_TIMEOUT and stock released.", order.ID))
		} else {
			logger.Warn(fmt.Sprintf("Order %s marked as PAYMENT_TIMEOUT, but some stock items may not have been released successfully. Needs review.", order.ID))
		}
	}
}
