package controllers

import (
	"canteen-storefront/libs"
	"canteen-storefront/models"
	"canteen-storefront/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Orders *services.OrderService
}

// @Summary Order history
// @Tags Orders
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Order}
// @Failure 401 {object} models.ErrorResponse
// @Router /orders [get]
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	auth := mustAuth(c)

	orders, err := ctrl.Orders.History(c.Request.Context(), auth.Snapshot().Token)
	if err != nil {
		backendError(c, auth, err)
		return
	}
	success(c, http.StatusOK, "Orders retrieved successfully", orders)
}

// @Summary Order detail
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	auth := mustAuth(c)

	order, err := ctrl.Orders.Get(c.Request.Context(), auth.Snapshot().Token, id)
	if err != nil {
		backendError(c, auth, err)
		return
	}
	success(c, http.StatusOK, "Order retrieved successfully", order)
}

// @Summary Track order
// @Description Server-sent events stream with one "status" event per status change. The stream ends once the order is completed or cancelled.
// @Tags Orders
// @Produce text/event-stream
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Router /orders/{id}/track [get]
func (ctrl *OrderController) TrackOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	auth := mustAuth(c)
	token := auth.Snapshot().Token

	// The first read decides between a JSON error and a stream.
	first, err := ctrl.Orders.Get(c.Request.Context(), token, id)
	if err != nil {
		backendError(c, auth, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	emit := func(order models.Order) error {
		c.SSEvent("status", order)
		c.Writer.Flush()
		return c.Request.Context().Err()
	}

	if err := emit(*first); err != nil || first.Status.Terminal() {
		return
	}

	err = ctrl.Orders.Track(c.Request.Context(), token, id, first.Status, emit)
	if err == nil || c.Request.Context().Err() != nil {
		return
	}
	if errors.Is(err, libs.ErrUnauthorized) {
		auth.Invalidate(c.Request.Context())
	}
	c.SSEvent("error", gin.H{"message": err.Error()})
	c.Writer.Flush()
}
