package controllers

import (
	"canteen-storefront/libs"
	"net/http"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	Backend *libs.BackendClient
}

// @Summary List canteens
// @Tags Menu
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Canteen}
// @Failure 502 {object} models.ErrorResponse
// @Router /canteens [get]
func (ctrl *MenuController) GetCanteens(c *gin.Context) {
	canteens, err := ctrl.Backend.ListCanteens(c.Request.Context())
	if err != nil {
		backendError(c, nil, err)
		return
	}
	success(c, http.StatusOK, "Canteens retrieved successfully", canteens)
}

// @Summary Canteen menu
// @Description Available menu items of one canteen
// @Tags Menu
// @Produce json
// @Param id path int true "Canteen ID"
// @Success 200 {object} models.Response{data=[]models.MenuItem}
// @Failure 404 {object} models.ErrorResponse
// @Router /canteens/{id}/menu [get]
func (ctrl *MenuController) GetMenu(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	items, err := ctrl.Backend.ListMenuItems(c.Request.Context(), id)
	if err != nil {
		backendError(c, nil, err)
		return
	}
	success(c, http.StatusOK, "Menu retrieved successfully", items)
}

// @Summary List categories
// @Tags Menu
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Category}
// @Router /categories [get]
func (ctrl *MenuController) GetCategories(c *gin.Context) {
	categories, err := ctrl.Backend.ListCategories(c.Request.Context())
	if err != nil {
		backendError(c, nil, err)
		return
	}
	success(c, http.StatusOK, "Categories retrieved successfully", categories)
}
