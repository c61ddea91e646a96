package models

import "github.com/shopspring/decimal"

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Credentials is the body of POST /auth/login/ on the remote API.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Key string `json:"key" validate:"required"`
}

type SelectCanteenRequest struct {
	CanteenID *int `json:"canteen_id" binding:"omitempty,gt=0"`
}

type SelectTableRequest struct {
	TableNumber *string `json:"table_number" binding:"omitempty,max=10"`
}

type AddItemRequest struct {
	MenuItemID int             `json:"menu_item_id" binding:"required,gt=0"`
	Name       string          `json:"name" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity" binding:"required,gte=1"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CheckoutRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

type VerifyPaymentRequest struct {
	OrderID          int    `json:"order_id" binding:"required,gt=0"`
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature        string `json:"razorpay_signature" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" form:"status" binding:"required,oneof=PENDING PROCESSING READY COMPLETED CANCELLED"`
}

type TableQRRequest struct {
	CanteenID   int    `form:"canteen_id" binding:"required,gt=0"`
	TableNumber string `form:"table" binding:"required,max=10"`
	Size        int    `form:"size" binding:"omitempty,min=128,max=1024"`
}

type CheckoutResponse struct {
	OrderID    int             `json:"order_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Payment    PaymentOrder    `json:"payment"`
}

type ConfirmationResponse struct {
	OrderID    int    `json:"order_id"`
	RedirectTo string `json:"redirect_to"`
}

// RegisterRequest is forwarded to the remote API's registration endpoint
// as is.
type RegisterRequest struct {
	Username  string `json:"username" form:"username" binding:"required,max=150"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password" binding:"required,min=8"`
	Password2 string `json:"password2" form:"password2" binding:"required,eqfield=Password"`
	FirstName string `json:"first_name,omitempty" form:"first_name" binding:"max=150"`
	LastName  string `json:"last_name,omitempty" form:"last_name" binding:"max=150"`
}

type CategoryRequest struct {
	Name string `json:"name" form:"name" binding:"required,max=50"`
}

// MenuItemForm is the admin's multipart create/update form. The image part
// is read separately.
type MenuItemForm struct {
	CanteenID   int    `form:"canteen" binding:"required,gt=0"`
	CategoryID  *int   `form:"category" binding:"omitempty,gt=0"`
	Name        string `form:"name" binding:"required,max=100"`
	Description string `form:"description"`
	Price       string `form:"price" binding:"required"`
	IsAvailable *bool  `form:"is_available"`
}
