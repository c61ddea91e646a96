package controllers

import (
	"canteen-storefront/libs"
	"canteen-storefront/middleware"
	"canteen-storefront/models"
	"canteen-storefront/services"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func mustSessionID(c *gin.Context) string {
	id := c.GetString(middleware.ContextSessionID)
	if id == "" {
		panic("controllers: session middleware is not installed")
	}
	return id
}

func mustAuth(c *gin.Context) *services.Auth {
	auth, ok := c.MustGet(middleware.ContextAuth).(*services.Auth)
	if !ok {
		panic("controllers: auth middleware is not installed")
	}
	return auth
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid " + name,
		})
		return 0, false
	}
	return id, true
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Message: "Invalid request",
		Error:   err.Error(),
	})
}

func success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// backendError maps a failed remote API call onto a response. A rejected
// credential clears the device's session.
func backendError(c *gin.Context, auth *services.Auth, err error) {
	var apiErr *libs.APIError

	switch {
	case errors.Is(err, libs.ErrUnauthorized):
		if auth != nil {
			auth.Invalidate(c.Request.Context())
		}
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Success:  false,
			Message:  "Your session has expired, please sign in again",
			Redirect: middleware.LoginTarget(c.Request.URL.RequestURI()),
		})
	case errors.Is(err, libs.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Message: "Not found",
		})
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		c.JSON(apiErr.Status, models.ErrorResponse{
			Success: false,
			Message: "Request rejected",
			Error:   apiErr.Detail,
		})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
			Success: false,
			Message: "The canteen service took too long to answer, please try again",
		})
	default:
		c.Error(err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Message: "The canteen service is unavailable, please try again",
		})
	}
}

func openCart(c *gin.Context, carts *services.CartService) (*services.Cart, bool) {
	cart, err := carts.Open(c.Request.Context(), mustSessionID(c))
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "Failed to load cart",
		})
		return nil, false
	}
	return cart, true
}
