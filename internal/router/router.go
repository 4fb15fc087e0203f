package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	cartController     *controller.CartController
	checkoutController *controller.CheckoutController
	orderController    *controller.OrderController
	userController     *controller.UserController
	addressController  *controller.AddressController
	authMiddleware     *middleware.AuthMiddleware
	idempotencyStore   middleware.IdempotencyStore
	config             *config.Config
}

// NewRouter wires the HTTP surface. idempotencyStore may be nil, in which
// case Idempotency-Key headers are ignored.
func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	orderController *controller.OrderController,
	userController *controller.UserController,
	addressController *controller.AddressController,
	authMiddleware *middleware.AuthMiddleware,
	idempotencyStore middleware.IdempotencyStore,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		cartController:     cartController,
		checkoutController: checkoutController,
		orderController:    orderController,
		userController:     userController,
		addressController:  addressController,
		authMiddleware:     authMiddleware,
		idempotencyStore:   idempotencyStore,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})

	idempotent := middleware.Idempotency(r.idempotencyStore)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/featured", r.productController.GetFeaturedProducts)
			products.GET("/:id", r.productController.GetProductByID)
		}

		// guests reach the cart with a guestId, so the token is optional here
		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.OptionalAuthenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("", r.cartController.UpdateCartItem)
			cart.DELETE("", r.cartController.RemoveFromCart)
			cart.DELETE("/clear", r.cartController.ClearCart)
		}
		v1.POST("/cart/merge", r.authMiddleware.Authenticate(), r.cartController.MergeCart)

		checkout := v1.Group("/checkout")
		checkout.Use(r.authMiddleware.Authenticate())
		{
			checkout.POST("", idempotent, r.checkoutController.CreateCheckout)
			checkout.GET("/:id", r.checkoutController.GetCheckout)
			checkout.PUT("/:id/pay", r.checkoutController.PayCheckout)
			checkout.POST("/:id/finalize", idempotent, r.checkoutController.FinalizeCheckout)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(r.authMiddleware.Authenticate())
		{
			addresses.GET("", r.addressController.ListAddresses)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.PUT("/:id", r.addressController.UpdateAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
			addresses.PUT("/:id/default", r.addressController.SetDefaultAddress)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("/my-orders", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetOrder)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleAdmin))
		{
			adminOrders := admin.Group("/orders")
			adminOrders.GET("", r.orderController.ListOrders)
			adminOrders.GET("/analytics", r.orderController.GetAnalytics)
			adminOrders.GET("/:id", r.orderController.GetOrderAdmin)
			adminOrders.PUT("/:id", r.orderController.UpdateOrderStatus)
			adminOrders.DELETE("/:id", r.orderController.DeleteOrder)

			adminProducts := admin.Group("/products")
			adminProducts.POST("", r.productController.CreateProduct)
			adminProducts.PUT("/:id", r.productController.UpdateProduct)
			adminProducts.DELETE("/:id", r.productController.DeleteProduct)

			adminUsers := admin.Group("/users")
			adminUsers.GET("", r.userController.ListUsers)
			adminUsers.PUT("/:id/role", r.userController.UpdateRole)
			adminUsers.DELETE("/:id", r.userController.DeleteUser)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, Idempotency-Key, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
