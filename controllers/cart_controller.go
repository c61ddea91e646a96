package controllers

import (
	"canteen-storefront/models"
	"canteen-storefront/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	Carts *services.CartService
}

// @Summary Get cart
// @Description Current cart of the browsing session with its computed total
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, ok := openCart(c, ctrl.Carts)
	if !ok {
		return
	}
	success(c, http.StatusOK, "Cart retrieved successfully", cart.State().View())
}

// @Summary Select canteen
// @Description Select the canteen to order from. Switching canteens empties the cart.
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.SelectCanteenRequest true "Canteen"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/canteen [put]
func (ctrl *CartController) SelectCanteen(c *gin.Context) {
	var req models.SelectCanteenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctrl.mutate(c, "Canteen selected", func(cart *services.Cart) error {
		return cart.SelectCanteen(c.Request.Context(), req.CanteenID)
	})
}

// @Summary Select table
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.SelectTableRequest true "Table"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/table [put]
func (ctrl *CartController) SelectTable(c *gin.Context) {
	var req models.SelectTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctrl.mutate(c, "Table selected", func(cart *services.Cart) error {
		return cart.SelectTable(c.Request.Context(), req.TableNumber)
	})
}

// @Summary Add item
// @Description Add a menu item. Adding an item already in the cart increases its quantity.
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.AddItemRequest true "Item"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctrl.mutate(c, "Item added to cart", func(cart *services.Cart) error {
		return cart.AddItem(c.Request.Context(), models.CartLine{
			MenuItemID: req.MenuItemID,
			Name:       req.Name,
			UnitPrice:  req.UnitPrice,
			Quantity:   req.Quantity,
		})
	})
}

// @Summary Update item quantity
// @Description Set the absolute quantity of a line. Zero or less removes it.
// @Tags Cart
// @Accept json
// @Produce json
// @Param id path int true "Menu item ID"
// @Param request body models.UpdateQuantityRequest true "Quantity"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/items/{id} [patch]
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctrl.mutate(c, "Cart updated", func(cart *services.Cart) error {
		return cart.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	})
}

// @Summary Remove item
// @Tags Cart
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctrl.mutate(c, "Item removed from cart", func(cart *services.Cart) error {
		return cart.RemoveItem(c.Request.Context(), id)
	})
}

// @Summary Clear cart
// @Description Remove all lines and forget the selected canteen and table
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	ctrl.mutate(c, "Cart cleared", func(cart *services.Cart) error {
		return cart.Clear(c.Request.Context())
	})
}

func (ctrl *CartController) mutate(c *gin.Context, message string, apply func(*services.Cart) error) {
	cart, ok := openCart(c, ctrl.Carts)
	if !ok {
		return
	}

	if err := apply(cart); err != nil {
		if errors.Is(err, services.ErrInvalidQuantity) || errors.Is(err, services.ErrInvalidPrice) {
			bindError(c, err)
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "Failed to save cart",
		})
		return
	}

	success(c, http.StatusOK, message, cart.State().View())
}
