package api

import (
	"net/http"

	"delivery-marketplace/internal/api/middleware"
	"delivery-marketplace/internal/modules/accounts"
	"delivery-marketplace/internal/modules/cart"
	"delivery-marketplace/internal/modules/catalog"
	"delivery-marketplace/internal/modules/checkout"
	"delivery-marketplace/internal/modules/orders"

	"github.com/labstack/echo/v4"
)

// Handlers bundles every module handler the router mounts.
type Handlers struct {
	Accounts   *accounts.Handler
	Catalog    *catalog.Handler
	Cart       *cart.Handler
	CartEvents *cart.EventsHandler
	Checkout   *checkout.Handler
	Orders     *orders.Handler
}

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	authMiddleware := middleware.JWTMAuth(jwtSecret)

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the Delivery Marketplace!"})
	})

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", h.Accounts.Signup)
		authGroup.POST("/login", h.Accounts.Login)
		authGroup.POST("/logout", h.Accounts.Logout, authMiddleware)
		authGroup.GET("/me", h.Accounts.Me, authMiddleware)
	}

	// --- Catalog Routes ---
	e.GET("/foods", h.Catalog.ListFoods)
	e.GET("/vendors/:vendorId/availability", h.Catalog.GetAvailability)

	// --- Cart Routes ---
	cartGroup := e.Group("/cart", authMiddleware)
	{
		cartGroup.GET("", h.Cart.GetCart)
		cartGroup.POST("/items", h.Cart.AddItem)
		cartGroup.POST("/preorders", h.Cart.AddPreOrder)
		cartGroup.DELETE("", h.Cart.ClearCart)
		cartGroup.GET("/events", h.CartEvents.StreamEvents) // WebSocket
	}

	// --- Checkout Routes ---
	checkoutGroup := e.Group("/checkout", authMiddleware)
	{
		checkoutGroup.GET("", h.Checkout.GetCheckout)
		checkoutGroup.POST("/start", h.Checkout.Start)
		checkoutGroup.POST("/location", h.Checkout.ReportLocation)
		checkoutGroup.POST("/proceed", h.Checkout.ProceedToPayment)
		checkoutGroup.POST("/payment", h.Checkout.SubmitPayment)
		checkoutGroup.POST("/confirm", h.Checkout.Confirm)
		checkoutGroup.DELETE("/confirm", h.Checkout.CancelConfirm)
		checkoutGroup.POST("/back", h.Checkout.BackToCart)
	}

	// --- Order Routes ---
	orderGroup := e.Group("/orders", authMiddleware)
	{
		orderGroup.GET("", h.Orders.ListMyOrders)
		orderGroup.GET("/:orderId", h.Orders.GetOrderDetails)
		orderGroup.PUT("/:orderId/cancel", h.Orders.CancelOrder)
	}
}
