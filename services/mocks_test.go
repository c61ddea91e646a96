package services

import (
	"canteen-storefront/models"
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type mockAuthBackend struct{ mock.Mock }

func (m *mockAuthBackend) Login(ctx context.Context, creds models.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *mockAuthBackend) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockAuthBackend) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type mockOrderBackend struct{ mock.Mock }

func (m *mockOrderBackend) CreateOrder(ctx context.Context, token string, req models.CreateOrderRequest) (*models.CreatedOrder, error) {
	args := m.Called(ctx, token, req)
	created, _ := args.Get(0).(*models.CreatedOrder)
	return created, args.Error(1)
}

func (m *mockOrderBackend) GetOrder(ctx context.Context, token string, orderID int) (*models.Order, error) {
	args := m.Called(ctx, token, orderID)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *mockOrderBackend) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	args := m.Called(ctx, token)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *mockOrderBackend) CreatePayment(ctx context.Context, token string, orderID int) (*models.PaymentOrder, error) {
	args := m.Called(ctx, token, orderID)
	payment, _ := args.Get(0).(*models.PaymentOrder)
	return payment, args.Error(1)
}

func (m *mockOrderBackend) VerifyPayment(ctx context.Context, token string, req models.PaymentVerification) (*models.PaymentResult, error) {
	args := m.Called(ctx, token, req)
	result, _ := args.Get(0).(*models.PaymentResult)
	return result, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) OrderConfirmed(ctx context.Context, user models.User, order models.Order) error {
	return m.Called(ctx, user, order).Error(0)
}

// tokenMap is a TokenStore that records every write, for asserting on what
// reached durable storage.
type tokenMap struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func newTokenMap() *tokenMap { return &tokenMap{tokens: map[string]string{}} }

func (t *tokenMap) GetToken(_ context.Context, deviceID string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tokens[deviceID], t.err
}

func (t *tokenMap) SaveToken(_ context.Context, deviceID, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[deviceID] = token
	return nil
}

func (t *tokenMap) DeleteToken(_ context.Context, deviceID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tokens, deviceID)
	return nil
}

func (t *tokenMap) CompareAndDeleteToken(_ context.Context, deviceID, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tokens[deviceID] == token {
		delete(t.tokens, deviceID)
	}
	return nil
}

func (t *tokenMap) get(deviceID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	token, ok := t.tokens[deviceID]
	return token, ok
}

type failingCartStore struct{ err error }

func (f failingCartStore) LoadCart(context.Context, string) (models.CartState, error) {
	return models.CartState{}, nil
}

func (f failingCartStore) SaveCart(context.Context, string, models.CartState) error {
	return f.err
}
