package services

import (
	"canteen-storefront/models"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.sent = append(r.sent, m...)
	return r.err
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "Rs. 0.00"},
		{"45", "Rs. 45.00"},
		{"1234.5", "Rs. 1,234.50"},
		{"1234567.891", "Rs. 1,234,567.89"},
		{"-999.1", "Rs. -999.10"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestEmailService_OrderConfirmed(t *testing.T) {
	sender := &recordingSender{}
	svc := &EmailService{sender: sender, from: "canteen@example.com"}

	order := models.Order{
		ID:          42,
		Status:      models.StatusPending,
		TotalPrice:  decimal.NewFromInt(1500),
		Canteen:     &models.Canteen{ID: 1, Name: "North Block"},
		TableNumber: strPtr("7"),
		Items: []models.OrderItem{
			{MenuItem: &models.MenuItem{ID: 1, Name: "Thali"}, Quantity: 2, Price: decimal.NewFromInt(750)},
		},
	}

	require.NoError(t, svc.OrderConfirmed(context.Background(), *customer, order))
	require.Len(t, sender.sent, 1)

	m := sender.sent[0]
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Order Confirmation #ORD-42"}, m.GetHeader("Subject"))
}

func TestEmailService_SkipsUsersWithoutEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := &EmailService{sender: sender, from: "canteen@example.com"}

	require.NoError(t, svc.OrderConfirmed(context.Background(), models.User{ID: 1, Username: "x"}, models.Order{ID: 1}))
	assert.Empty(t, sender.sent)
}

func TestEmailService_SendFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("535 auth failed")}
	svc := &EmailService{sender: sender, from: "canteen@example.com"}

	err := svc.OrderConfirmed(context.Background(), *customer, models.Order{ID: 1})
	assert.ErrorContains(t, err, "failed to send email")
}
