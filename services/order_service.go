package services

import (
	"canteen-storefront/libs"
	"canteen-storefront/models"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// OrderBackend is the slice of the remote API used for orders and payments.
type OrderBackend interface {
	CreateOrder(ctx context.Context, token string, req models.CreateOrderRequest) (*models.CreatedOrder, error)
	GetOrder(ctx context.Context, token string, orderID int) (*models.Order, error)
	ListOrders(ctx context.Context, token string) ([]models.Order, error)
	CreatePayment(ctx context.Context, token string, orderID int) (*models.PaymentOrder, error)
	VerifyPayment(ctx context.Context, token string, req models.PaymentVerification) (*models.PaymentResult, error)
}

type OrderService struct {
	backend  OrderBackend
	interval time.Duration
	logger   *zap.Logger
}

func NewOrderService(backend OrderBackend, interval time.Duration, logger *zap.Logger) *OrderService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OrderService{backend: backend, interval: interval, logger: logger}
}

func (s *OrderService) History(ctx context.Context, token string) ([]models.Order, error) {
	return s.backend.ListOrders(ctx, token)
}

func (s *OrderService) Get(ctx context.Context, token string, orderID int) (*models.Order, error) {
	return s.backend.GetOrder(ctx, token, orderID)
}

// Track polls an order at a fixed interval and calls emit whenever its status
// differs from the last one seen, starting from known. It returns nil when
// the order reaches a terminal status or ctx ends, and the backend error when
// the order cannot be read with this credential.
func (s *OrderService) Track(ctx context.Context, token string, orderID int, known models.OrderStatus, emit func(models.Order) error) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := known
	for {
		order, err := s.backend.GetOrder(ctx, token, orderID)
		switch {
		case err == nil:
			if order.Status != last {
				last = order.Status
				if err := emit(*order); err != nil {
					return err
				}
			}
			if order.Status.Terminal() {
				return nil
			}
		case errors.Is(err, libs.ErrUnauthorized), errors.Is(err, libs.ErrNotFound):
			return err
		case ctx.Err() != nil:
			return nil
		default:
			s.logger.Warn("order status poll failed", zap.Int("order_id", orderID), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
