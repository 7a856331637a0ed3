// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/config"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/branch"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/cart"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/coupon"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/notification"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/order"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/payment"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/product"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/user"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/interfaces/http/handlers"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/interfaces/http/middleware"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/pkg/pdf"
)

// Setup wires every service and mounts the API surface on the router
// group. Services are constructed once here and shared across handlers.
func Setup(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	userService := user.NewService(db, cfg)
	productService := product.NewService(db, cfg)
	branchService := branch.NewService(db)
	couponService := coupon.NewService(db)
	cartService := cart.NewService(db)
	relay := notification.NewRedisRelay(redisClient, logger)
	orderService := order.NewService(db, cfg, cartService, couponService, userService, relay, logger)

	gatewayAdapter := payment.NewAdapter(cfg.Gateway)
	pendingRegister := payment.NewRegister(redisClient, cfg.Gateway.PendingTTL)
	paymentService := payment.NewService(gatewayAdapter, pendingRegister, orderService, orderService, logger)

	pdfService := pdf.NewService(cfg)

	authHandler := handlers.NewAuthHandler(userService)
	catalogHandler := handlers.NewCatalogHandler(productService, branchService, couponService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, pdfService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(orderService, couponService, productService)

	setupAuthRoutes(rg, authHandler, cfg)
	setupCatalogRoutes(rg, catalogHandler)
	setupCartRoutes(rg, cartHandler, cfg)
	setupOrderRoutes(rg, orderHandler, paymentHandler, cfg)
	setupAdminRoutes(rg, adminHandler, cfg)
}

func setupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler, cfg *config.Config) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", h.GetProfile)
			protected.PUT("/profile", h.UpdateProfile)
			protected.PUT("/password", h.ChangePassword)
		}
	}
}

func setupCatalogRoutes(rg *gin.RouterGroup, h *handlers.CatalogHandler) {
	rg.GET("/products", h.GetProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.GET("/toppings", h.GetToppings)
	rg.GET("/categories", h.GetCategories)
	rg.GET("/branches", h.GetBranches)
	rg.GET("/coupons/:code", h.GetCoupon)
}

func setupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, cfg *config.Config) {
	c := rg.Group("/cart")
	c.Use(middleware.AuthMiddleware(cfg))
	{
		c.GET("", h.GetCart)
		c.POST("/items", h.AddItem)
		c.PUT("/items/:id", h.UpdateItem)
		c.DELETE("/items/:id", h.RemoveItem)
		c.DELETE("", h.ClearCart)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler, ph *handlers.PaymentHandler, cfg *config.Config) {
	// The callback is public; the provider authenticates by signature
	rg.POST("/order/gateway-callback", ph.GatewayCallback)

	o := rg.Group("/order")
	o.Use(middleware.AuthMiddleware(cfg))
	{
		o.POST("/quote", h.Quote)
		o.POST("/create/cod", h.CreateCOD)
		o.POST("/create/gateway", ph.InitiateGateway)
		o.GET("", h.ListOrders)
		o.GET("/:id", h.GetOrder)
		o.GET("/:id/invoice", h.GetInvoice)
		o.PUT("/:id/cancel", h.CancelOrder)
		o.PUT("/:id/cancel-request", h.RequestCancellation)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, h *handlers.AdminHandler, cfg *config.Config) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/orders", h.ListOrders)
		admin.GET("/orders/:orderId", h.GetOrder)
		admin.PUT("/orders/:orderId/status", h.UpdateOrderStatus)

		admin.GET("/coupons", h.ListCoupons)
		admin.POST("/coupons", h.CreateCoupon)
		admin.DELETE("/coupons/:id", h.DeactivateCoupon)

		admin.POST("/products", h.CreateProduct)
		admin.PUT("/products/:id", h.UpdateProduct)
	}
}
