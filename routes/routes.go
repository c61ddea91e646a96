package routes

import (
	"canteen-storefront/config"
	"canteen-storefront/controllers"
	"canteen-storefront/libs"
	"canteen-storefront/middleware"
	"canteen-storefront/models"
	"canteen-storefront/services"
	"canteen-storefront/utils"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Signer   *utils.TokenSigner
	Backend  *libs.BackendClient
	Auths    *services.AuthService
	Carts    *services.CartService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	cartCtrl := &controllers.CartController{Carts: deps.Carts}
	authCtrl := &controllers.AuthController{Auths: deps.Auths, Backend: deps.Backend}
	menuCtrl := &controllers.MenuController{Backend: deps.Backend}
	checkoutCtrl := &controllers.CheckoutController{Carts: deps.Carts, Checkout: deps.Checkout}
	orderCtrl := &controllers.OrderController{Orders: deps.Orders}
	adminCtrl := &controllers.AdminController{
		Backend: deps.Backend,
		QR:      libs.TableQRGenerator{BaseURL: deps.Config.PublicURL},
		Logger:  deps.Logger,
	}
	pageCtrl := &controllers.PageController{StaticDir: deps.Config.StaticDir}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/api", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Canteen Storefront API"})
	})
	router.Static("/assets", filepath.Join(deps.Config.StaticDir, "assets"))

	app := router.Group("/")
	app.Use(
		middleware.SessionMiddleware(deps.Signer, middleware.CookieOptions{
			Secure:    deps.Config.IsProduction(),
			DeviceTTL: deps.Config.DeviceTTL,
		}),
		middleware.AuthMiddleware(deps.Auths),
	)

	api := app.Group("/api")
	{
		api.GET("/cart", cartCtrl.GetCart)
		api.DELETE("/cart", cartCtrl.ClearCart)
		api.PUT("/cart/canteen", cartCtrl.SelectCanteen)
		api.PUT("/cart/table", cartCtrl.SelectTable)
		api.POST("/cart/items", cartCtrl.AddItem)
		api.PATCH("/cart/items/:id", cartCtrl.UpdateQuantity)
		api.DELETE("/cart/items/:id", cartCtrl.RemoveItem)

		api.GET("/auth/session", authCtrl.GetSession)
		api.POST("/auth/login", authCtrl.Login)
		api.POST("/auth/register", authCtrl.Register)
		api.POST("/auth/guest", authCtrl.Guest)
		api.POST("/auth/logout", authCtrl.Logout)

		api.GET("/canteens", menuCtrl.GetCanteens)
		api.GET("/canteens/:id/menu", menuCtrl.GetMenu)
		api.GET("/categories", menuCtrl.GetCategories)
	}

	customer := api.Group("/")
	customer.Use(middleware.RequireRoles(models.RoleCustomer), middleware.RequireAccount())
	{
		customer.POST("/checkout", checkoutCtrl.PlaceOrder)
		customer.POST("/checkout/verify", checkoutCtrl.VerifyPayment)
		customer.GET("/orders", orderCtrl.GetOrders)
		customer.GET("/orders/:id", orderCtrl.GetOrderByID)
		customer.GET("/orders/:id/track", orderCtrl.TrackOrder)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard", adminCtrl.GetDashboard)
		admin.GET("/orders", adminCtrl.GetOrders)
		admin.PATCH("/orders/:id/status", adminCtrl.UpdateOrderStatus)
		admin.GET("/tables/qr", adminCtrl.GetTableQR)

		admin.GET("/categories", adminCtrl.GetCategories)
		admin.POST("/categories", adminCtrl.CreateCategory)
		admin.PUT("/categories/:id", adminCtrl.UpdateCategory)
		admin.DELETE("/categories/:id", adminCtrl.DeleteCategory)

		admin.GET("/menu-items", adminCtrl.GetMenuItems)
		admin.POST("/menu-items", adminCtrl.CreateMenuItem)
		admin.PUT("/menu-items/:id", adminCtrl.UpdateMenuItem)
		admin.DELETE("/menu-items/:id", adminCtrl.DeleteMenuItem)
	}

	for _, path := range []string{"/", "/login", "/register", "/admin/login", "/table-selection", "/menu"} {
		app.GET(path, pageCtrl.Index)
	}

	customerPages := app.Group("/")
	customerPages.Use(middleware.RequireRoles(models.RoleCustomer))
	for _, path := range []string{"/order-summary", "/payment", "/order-confirmation/:id", "/order-status/:id", "/orders"} {
		customerPages.GET(path, pageCtrl.Index)
	}

	adminPages := app.Group("/admin")
	adminPages.Use(middleware.RequireRoles(models.RoleAdmin))
	for _, path := range []string{"/dashboard", "/orders", "/menu", "/transactions"} {
		adminPages.GET(path, pageCtrl.Index)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Message: "Route not found",
			})
			return
		}
		c.Redirect(http.StatusFound, "/")
	})
}
