package services

import (
	"canteen-storefront/models"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrNoCanteen          = errors.New("no canteen selected")
	ErrGuestCheckout      = errors.New("sign in to place an order")
	ErrPaymentNotVerified = errors.New("payment could not be verified")
)

// CheckoutService hands the assembled cart to the remote API and the payment
// gateway. The cart is only cleared once the payment is verified.
type CheckoutService struct {
	backend  OrderBackend
	notifier Notifier
	logger   *zap.Logger
}

func NewCheckoutService(backend OrderBackend, notifier Notifier, logger *zap.Logger) *CheckoutService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &CheckoutService{backend: backend, notifier: notifier, logger: logger}
}

// PlaceOrder creates the order and its gateway payment order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, session models.Session, cart *Cart, notes string) (*models.CheckoutResponse, error) {
	if session.IsGuest {
		return nil, ErrGuestCheckout
	}

	state := cart.State()
	if state.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if state.SelectedCanteenID == nil {
		return nil, ErrNoCanteen
	}

	req := models.CreateOrderRequest{
		Canteen:     *state.SelectedCanteenID,
		TableNumber: state.TableNumber,
		Notes:       notes,
		Items:       make([]models.OrderItemRequest, 0, len(state.Lines)),
	}
	for _, line := range state.Lines {
		req.Items = append(req.Items, models.OrderItemRequest{MenuItemID: line.MenuItemID, Quantity: line.Quantity})
	}

	created, err := s.backend.CreateOrder(ctx, session.Token, req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	payment, err := s.backend.CreatePayment(ctx, session.Token, created.ID)
	if err != nil {
		return nil, fmt.Errorf("create payment for order %d: %w", created.ID, err)
	}

	s.logger.Info("order placed",
		zap.Int("order_id", created.ID),
		zap.Int("canteen_id", req.Canteen),
		zap.Int("lines", len(req.Items)),
		zap.String("total", state.TotalPrice().StringFixed(2)))

	return &models.CheckoutResponse{
		OrderID:    created.ID,
		TotalPrice: state.TotalPrice(),
		Payment:    *payment,
	}, nil
}

// ConfirmPayment verifies the gateway callback with the remote API. On
// success the cart is cleared and the customer is notified.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, session models.Session, cart *Cart, req models.VerifyPaymentRequest) (*models.ConfirmationResponse, error) {
	result, err := s.backend.VerifyPayment(ctx, session.Token, models.PaymentVerification{
		OrderID:          req.OrderID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !result.Verified {
		return nil, ErrPaymentNotVerified
	}

	if err := cart.Clear(ctx); err != nil {
		s.logger.Error("payment verified but cart could not be cleared",
			zap.Int("order_id", result.OrderID), zap.Error(err))
	}

	if session.User != nil {
		s.notify(ctx, session, result.OrderID)
	}

	return &models.ConfirmationResponse{
		OrderID:    result.OrderID,
		RedirectTo: fmt.Sprintf("/order-confirmation/%d", result.OrderID),
	}, nil
}

func (s *CheckoutService) notify(ctx context.Context, session models.Session, orderID int) {
	order, err := s.backend.GetOrder(ctx, session.Token, orderID)
	if err != nil {
		s.logger.Warn("could not load order for confirmation", zap.Int("order_id", orderID), zap.Error(err))
		return
	}
	if err := s.notifier.OrderConfirmed(ctx, *session.User, *order); err != nil {
		s.logger.Warn("order confirmation not sent", zap.Int("order_id", orderID), zap.Error(err))
	}
}
