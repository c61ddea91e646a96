package controllers

import (
	"canteen-storefront/libs"
	"canteen-storefront/models"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	Backend *libs.BackendClient
	QR      libs.TableQRGenerator
	Logger  *zap.Logger
}

// @Summary Dashboard
// @Description Today's order and revenue figures with trend charts (Admin)
// @Tags Admin
// @Produce json
// @Success 200 {object} models.Response{data=models.DashboardStats}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/dashboard [get]
func (ctrl *AdminController) GetDashboard(c *gin.Context) {
	auth := mustAuth(c)

	stats, err := ctrl.Backend.DashboardStats(c.Request.Context(), auth.Snapshot().Token)
	if err != nil {
		backendError(c, auth, err)
		return
	}
	success(c, http.StatusOK, "Dashboard retrieved successfully", stats)
}

// @Summary List orders
// @Description Orders of the admin's canteens, optionally filtered by status (Admin)
// @Tags Admin
// @Produce json
// @Param status query string false "Filter by status" Enums(PENDING, PROCESSING, READY, COMPLETED, CANCELLED)
// @Success 200 {object} models.Response{data=[]models.Order}
// @Router /admin/orders [get]
func (ctrl *AdminController) GetOrders(c *gin.Context) {
	status := models.OrderStatus(strings.ToUpper(c.Query("status")))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid status filter",
		})
		return
	}
	auth := mustAuth(c)

	orders, err := ctrl.Backend.AdminListOrders(c.Request.Context(), auth.Snapshot().Token, status)
	if err != nil {
		backendError(c, auth, err)
		return
	}
	success(c, http.StatusOK, "Orders retrieved successfully", orders)
}

// @Summary Update order status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.Response{data=models.Order}
// @Router /admin/orders/{id}/status [patch]
func (ctrl *AdminController) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	auth := mustAuth(c)

	order, err := ctrl.Backend.AdminUpdateOrderStatus(c.Request.Context(), auth.Snapshot().Token, id, req.Status)
	if err != nil {
		backendError(c, auth, err)
		return
	}

	ctrl.Logger.Info("order status updated",
		zap.Int("order_id", id),
		zap.String("status", string(order.Status)))
	success(c, http.StatusOK, "Order status updated successfully", order)
}

// @Summary Table QR code
// @Description PNG QR code that opens the storefront with the canteen and table preselected (Admin)
// @Tags Admin
// @Produce png
// @Param canteen_id query int true "Canteen ID"
// @Param table query string true "Table number"
// @Param size query int false "Image size in pixels"
// @Success 200 {file} binary
// @Router /admin/tables/qr [get]
func (ctrl *AdminController) GetTableQR(c *gin.Context) {
	var req models.TableQRRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	png, err := ctrl.QR.Generate(req.CanteenID, req.TableNumber, req.Size)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "Failed to generate QR code",
		})
		return
	}

	filename := fmt.Sprintf("canteen-%d-table-%s.png", req.CanteenID, req.TableNumber)
	if disposition := mime.FormatMediaType("inline", map[string]string{"filename": filename}); disposition != "" {
		c.Header("Content-Disposition", disposition)
	}
	c.Data(http.StatusOK, "image/png", png)
}
