package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusReady      OrderStatus = "READY"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses never change again.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Canteen struct {
	ID          int    `json:"id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type MenuItem struct {
	ID          int             `json:"id" validate:"required,gt=0"`
	Canteen     string          `json:"canteen"`
	Category    *string         `json:"category"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       *string         `json:"image"`
	IsAvailable bool            `json:"is_available"`
}

type Category struct {
	ID   int    `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required"`
}

// MenuItemInput is a validated admin edit of a menu item.
type MenuItemInput struct {
	CanteenID   int
	CategoryID  *int
	Name        string
	Description string
	Price       decimal.Decimal
	IsAvailable bool
}

// SavedMenuItem is the remote API's answer to a menu item write; relations
// come back as ids.
type SavedMenuItem struct {
	ID          int             `json:"id" validate:"required,gt=0"`
	Canteen     int             `json:"canteen" validate:"required,gt=0"`
	Category    *int            `json:"category"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       *string         `json:"image"`
	IsAvailable bool            `json:"is_available"`
}

type Order struct {
	ID          int             `json:"id" validate:"required,gt=0"`
	Customer    *User           `json:"customer,omitempty"`
	Canteen     *Canteen        `json:"canteen,omitempty"`
	Status      OrderStatus     `json:"status" validate:"required,oneof=PENDING PROCESSING READY COMPLETED CANCELLED"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Notes       *string         `json:"notes"`
	TableNumber *string         `json:"table_number"`
	Items       []OrderItem     `json:"items" validate:"dive"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID       int             `json:"id"`
	MenuItem *MenuItem       `json:"menu_item,omitempty"`
	Quantity int             `json:"quantity" validate:"gte=1"`
	Price    decimal.Decimal `json:"price_at_time_of_order"`
}

type OrderItemRequest struct {
	MenuItemID int `json:"menu_item_id"`
	Quantity   int `json:"quantity"`
}

// CreateOrderRequest is the payload of POST /orders/ on the remote API.
type CreateOrderRequest struct {
	Canteen     int                `json:"canteen"`
	TableNumber *string            `json:"table_number"`
	Notes       string             `json:"notes"`
	Items       []OrderItemRequest `json:"items"`
}

type CreatedOrder struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// PaymentOrder is the gateway order issued by the remote API for a placed order.
type PaymentOrder struct {
	OrderID        int             `json:"order_id" validate:"required,gt=0"`
	GatewayOrderID string          `json:"razorpay_order_id" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency" validate:"required"`
	KeyID          string          `json:"key_id"`
}

type PaymentVerification struct {
	OrderID          int    `json:"order_id"`
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
}

type PaymentResult struct {
	Verified bool   `json:"verified"`
	OrderID  int    `json:"order_id" validate:"required,gt=0"`
	Status   string `json:"status"`
}

type ChartPoint struct {
	Name    string  `json:"name" validate:"required"`
	Orders  int     `json:"orders,omitempty"`
	Revenue float64 `json:"revenue,omitempty"`
}

type DashboardStats struct {
	TotalOrdersToday       int          `json:"total_orders_today" validate:"gte=0"`
	TotalRevenueToday      float64      `json:"total_revenue_today" validate:"gte=0"`
	AverageOrderValue      float64      `json:"average_order_value" validate:"gte=0"`
	PendingOrders          int          `json:"pending_orders" validate:"gte=0"`
	TotalCustomers         int          `json:"total_customers" validate:"gte=0"`
	OrderTrendPercentage   float64      `json:"order_trend_percentage"`
	RevenueTrendPercentage float64      `json:"revenue_trend_percentage"`
	DailyOrdersChart       []ChartPoint `json:"daily_orders_chart" validate:"dive"`
	WeeklyRevenueChart     []ChartPoint `json:"weekly_revenue_chart" validate:"dive"`
}
