package controllers

import (
	"canteen-storefront/libs"
	"canteen-storefront/middleware"
	"canteen-storefront/models"
	"canteen-storefront/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auths   *services.AuthService
	Backend *libs.BackendClient
}

// @Summary Current session
// @Description Authentication state of this device
// @Tags Auth
// @Produce json
// @Success 200 {object} models.Response{data=models.SessionView}
// @Router /auth/session [get]
func (ctrl *AuthController) GetSession(c *gin.Context) {
	success(c, http.StatusOK, "Session retrieved successfully", mustAuth(c).Snapshot().View())
}

// @Summary Login
// @Description Sign in with the canteen account credentials
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.Response{data=models.SessionView}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := ctrl.Auths.SignIn(c.Request.Context(), c.GetString(middleware.ContextDeviceID), models.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Invalid username or password",
			})
			return
		}
		backendError(c, nil, err)
		return
	}

	if !session.Authenticated() {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Message: "Could not load your profile, please try again",
		})
		return
	}

	success(c, http.StatusOK, "Login successful", session.View())
}

// @Summary Register
// @Description Create a customer account. The new account signs in through /auth/login.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account"
// @Success 201 {object} models.Response{data=models.RegisteredUser}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := ctrl.Backend.Register(c.Request.Context(), req)
	if err != nil {
		backendError(c, nil, err)
		return
	}
	success(c, http.StatusCreated, "Account created, please sign in", user)
}

// @Summary Continue as guest
// @Tags Auth
// @Produce json
// @Success 200 {object} models.Response{data=models.SessionView}
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/guest [post]
func (ctrl *AuthController) Guest(c *gin.Context) {
	auth := mustAuth(c)
	if err := auth.LoginAsGuest(c.Request.Context()); err != nil {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Success: false,
			Message: "Guest access is disabled",
			Error:   err.Error(),
		})
		return
	}
	success(c, http.StatusOK, "Continuing as guest", auth.Snapshot().View())
}

// @Summary Logout
// @Tags Auth
// @Produce json
// @Success 200 {object} models.Response{data=models.SessionView}
// @Router /auth/logout [post]
func (ctrl *AuthController) Logout(c *gin.Context) {
	auth := mustAuth(c)
	auth.Logout(c.Request.Context())
	success(c, http.StatusOK, "Logged out", auth.Snapshot().View())
}
