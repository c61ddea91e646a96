package controllers

import (
	"canteen-storefront/libs"
	"canteen-storefront/models"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxImageSize = 5 << 20

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

var maxPrice = decimal.RequireFromString("9999.99")

// @Summary List categories
// @Tags Admin
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Category}
// @Router /admin/categories [get]
func (ctrl *AdminController) GetCategories(c *gin.Context) {
	auth := mustAuth(c)

	categories, err := ctrl.Backend.AdminListCategories(c.Request.Context(), auth.Snapshot().Token)
	if err != nil {
		backendError(c, auth, err)
		return
	}
	success(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// @Summary Create category
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body models.CategoryRequest true "Category"
// @Success 201 {object} models.Response{data=models.Category}
// @Router /admin/categories [post]
func (ctrl *AdminController) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	auth := mustAuth(c)

	category, err := ctrl.Backend.AdminCreateCategory(c.Request.Context(), auth.Snapshot().Token, strings.TrimSpace(req.Name))
	if err != nil {
		backendError(c, auth, err)
		return
	}
	success(c, http.StatusCreated, "Category created successfully", category)
}

// @Summary Rename category
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param request body models.CategoryRequest true "Category"
// @Success 200 {object} models.Response{data=models.Category}
// @Router /admin/categories/{id} [put]
func (ctrl *AdminController) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	auth := mustAuth(c)

	category, err := ctrl.Backend.AdminUpdateCategory(c.Request.Context(), auth.Snapshot().Token, id, strings.TrimSpace(req.Name))
	if err != nil {
		backendError(c, auth, err)
		return
	}
	success(c, http.StatusOK, "Category updated successfully", category)
}

// @Summary Delete category
// @Tags Admin
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Response
// @Router /admin/categories/{id} [delete]
func (ctrl *AdminController) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	auth := mustAuth(c)

	if err := ctrl.Backend.AdminDeleteCategory(c.Request.Context(), auth.Snapshot().Token, id); err != nil {
		backendError(c, auth, err)
		return
	}
	success(c, http.StatusOK, "Category deleted successfully", nil)
}

// @Summary List menu items
// @Description Every menu item, available or not, optionally of one canteen (Admin)
// @Tags Admin
// @Produce json
// @Param canteen query int false "Canteen ID"
// @Success 200 {object} models.Response{data=[]models.MenuItem}
// @Router /admin/menu-items [get]
func (ctrl *AdminController) GetMenuItems(c *gin.Context) {
	canteenID := 0
	if raw := c.Query("canteen"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Message: "Invalid canteen filter",
			})
			return
		}
		canteenID = id
	}
	auth := mustAuth(c)

	items, err := ctrl.Backend.AdminListMenuItems(c.Request.Context(), auth.Snapshot().Token, canteenID)
	if err != nil {
		backendError(c, auth, err)
		return
	}
	success(c, http.StatusOK, "Menu items retrieved successfully", items)
}

// @Summary Create menu item
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param canteen formData int true "Canteen ID"
// @Param category formData int false "Category ID"
// @Param name formData string true "Name"
// @Param description formData string false "Description"
// @Param price formData string true "Price"
// @Param is_available formData bool false "Available"
// @Param image formData file false "Image"
// @Success 201 {object} models.Response{data=models.SavedMenuItem}
// @Router /admin/menu-items [post]
func (ctrl *AdminController) CreateMenuItem(c *gin.Context) {
	ctrl.saveMenuItem(c, 0)
}

// @Summary Replace menu item
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Menu item ID"
// @Param canteen formData int true "Canteen ID"
// @Param category formData int false "Category ID"
// @Param name formData string true "Name"
// @Param description formData string false "Description"
// @Param price formData string true "Price"
// @Param is_available formData bool false "Available"
// @Param image formData file false "Image"
// @Success 200 {object} models.Response{data=models.SavedMenuItem}
// @Router /admin/menu-items/{id} [put]
func (ctrl *AdminController) UpdateMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctrl.saveMenuItem(c, id)
}

// @Summary Delete menu item
// @Tags Admin
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} models.Response
// @Router /admin/menu-items/{id} [delete]
func (ctrl *AdminController) DeleteMenuItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	auth := mustAuth(c)

	if err := ctrl.Backend.AdminDeleteMenuItem(c.Request.Context(), auth.Snapshot().Token, id); err != nil {
		backendError(c, auth, err)
		return
	}
	ctrl.Logger.Info("menu item deleted", zap.Int("menu_item_id", id))
	success(c, http.StatusOK, "Menu item deleted successfully", nil)
}

func (ctrl *AdminController) saveMenuItem(c *gin.Context, id int) {
	var form models.MenuItemForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}
	input, err := parseMenuItemForm(form)
	if err != nil {
		bindError(c, err)
		return
	}

	var image *libs.FilePart
	if file, err := c.FormFile("image"); err == nil {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !imageExts[ext] {
			bindError(c, errors.New("invalid file type, only jpg, jpeg, png, gif, webp allowed"))
			return
		}
		if file.Size > maxImageSize {
			bindError(c, errors.New("file size too large, maximum 5MB"))
			return
		}
		f, err := file.Open()
		if err != nil {
			bindError(c, err)
			return
		}
		defer f.Close()
		image = &libs.FilePart{Filename: filepath.Base(file.Filename), Content: f}
	}

	auth := mustAuth(c)
	item, err := ctrl.Backend.AdminSaveMenuItem(c.Request.Context(), auth.Snapshot().Token, id, input, image)
	if err != nil {
		backendError(c, auth, err)
		return
	}

	ctrl.Logger.Info("menu item saved",
		zap.Int("menu_item_id", item.ID),
		zap.Int("canteen_id", item.Canteen),
		zap.Bool("image", image != nil))
	if id == 0 {
		success(c, http.StatusCreated, "Menu item created successfully", item)
		return
	}
	success(c, http.StatusOK, "Menu item updated successfully", item)
}

// parseMenuItemForm checks the price the way the remote API stores it: two
// decimal places, at most 9999.99.
func parseMenuItemForm(form models.MenuItemForm) (models.MenuItemInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(form.Price))
	if err != nil {
		return models.MenuItemInput{}, fmt.Errorf("invalid price %q", form.Price)
	}
	switch {
	case price.IsNegative():
		return models.MenuItemInput{}, errors.New("price must not be negative")
	case !price.Equal(price.Round(2)):
		return models.MenuItemInput{}, errors.New("price has more than two decimal places")
	case price.GreaterThan(maxPrice):
		return models.MenuItemInput{}, errors.New("price must not exceed 9999.99")
	}

	available := true
	if form.IsAvailable != nil {
		available = *form.IsAvailable
	}
	return models.MenuItemInput{
		CanteenID:   form.CanteenID,
		CategoryID:  form.CategoryID,
		Name:        strings.TrimSpace(form.Name),
		Description: form.Description,
		Price:       price,
		IsAvailable: available,
	}, nil
}
