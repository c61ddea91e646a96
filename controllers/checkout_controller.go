package controllers

import (
	"canteen-storefront/models"
	"canteen-storefront/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	Carts    *services.CartService
	Checkout *services.CheckoutService
}

// @Summary Checkout
// @Description Place the cart as an order and create its payment
// @Tags Checkout
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest false "Order notes"
// @Success 201 {object} models.Response{data=models.CheckoutResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /checkout [post]
func (ctrl *CheckoutController) PlaceOrder(c *gin.Context) {
	var req models.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	cart, ok := openCart(c, ctrl.Carts)
	if !ok {
		return
	}
	auth := mustAuth(c)

	resp, err := ctrl.Checkout.PlaceOrder(c.Request.Context(), auth.Snapshot(), cart, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrNoCanteen):
			bindError(c, err)
		case errors.Is(err, services.ErrGuestCheckout):
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Success:  false,
				Message:  "Please sign in to place an order",
				Redirect: "/login?next=%2Forder-summary",
			})
		default:
			backendError(c, auth, err)
		}
		return
	}

	success(c, http.StatusCreated, "Order placed", resp)
}

// @Summary Verify payment
// @Description Confirm the gateway payment. On success the cart is cleared.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param request body models.VerifyPaymentRequest true "Gateway callback"
// @Success 200 {object} models.Response{data=models.ConfirmationResponse}
// @Failure 402 {object} models.ErrorResponse
// @Router /checkout/verify [post]
func (ctrl *CheckoutController) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cart, ok := openCart(c, ctrl.Carts)
	if !ok {
		return
	}
	auth := mustAuth(c)

	resp, err := ctrl.Checkout.ConfirmPayment(c.Request.Context(), auth.Snapshot(), cart, req)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotVerified) {
			c.JSON(http.StatusPaymentRequired, models.ErrorResponse{
				Success: false,
				Message: "Payment verification failed",
			})
			return
		}
		backendError(c, auth, err)
		return
	}

	success(c, http.StatusOK, "Payment verified", resp)
}
