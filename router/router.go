package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/controllers"
	"github.com/seblak-delivery/api/middlewares"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/realtime"
	"github.com/seblak-delivery/api/services"
	"github.com/seblak-delivery/api/utils"
)

// SetupRouter wires every route group. The hub is injected so handlers and
// tests share one publisher.
func SetupRouter(db *gorm.DB, hub *realtime.Hub, otp *services.OTPService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.SecurityHeaders())

	limiter := middlewares.NewRateLimiter(100, 60)
	r.Use(limiter.RateLimit())

	authController := controllers.NewAuthController(db, otp)
	restaurantController := controllers.NewRestaurantController(db, hub)
	orderController := controllers.NewOrderController(db, hub)
	paymentController := controllers.NewPaymentController(db, hub)
	adminController := controllers.NewAdminController(db)
	wsController := controllers.NewWSController(db, hub)

	r.GET("/health", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "OK", gin.H{"status": "healthy"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		strict := middlewares.NewStrictRateLimiter()
		auth.POST("/register", strict, authController.Register)
		auth.POST("/login", strict, authController.Login)
		auth.POST("/otp/send", strict, authController.SendOTP)
		auth.POST("/otp/verify", strict, authController.VerifyOTP)

		me := auth.Group("/me", middlewares.AuthMiddleware())
		{
			me.GET("", authController.GetProfile)
			me.PATCH("", authController.UpdateProfile)
			me.PUT("/fcm-token", authController.UpdateFCMToken)
		}
	}

	restaurants := api.Group("/restaurants")
	{
		restaurants.GET("", restaurantController.GetRestaurants)
		restaurants.GET("/:id", restaurantController.GetRestaurantByID)

		owner := restaurants.Group("", middlewares.AuthMiddleware(),
			middlewares.RequireRole(models.RoleRestaurantOwner))
		{
			owner.POST("", restaurantController.CreateRestaurant)
			owner.PATCH("/:id", restaurantController.UpdateRestaurant)
			owner.POST("/:id/menu", restaurantController.AddMenuItem)
			owner.PATCH("/:id/menu/:itemId", restaurantController.UpdateMenuItem)
			owner.DELETE("/:id/menu/:itemId", restaurantController.DeleteMenuItem)
			owner.GET("/:id/orders", restaurantController.GetRestaurantOrders)
			owner.PATCH("/:id/orders/:orderId/status", restaurantController.UpdateOrderStatus)
			owner.GET("/:id/analytics", restaurantController.GetRestaurantAnalytics)
		}
	}

	orders := api.Group("/orders", middlewares.AuthMiddleware())
	{
		orders.POST("", middlewares.RequireRole(models.RoleCustomer), orderController.CreateOrder)
		orders.GET("", middlewares.RequireRole(models.RoleCustomer), orderController.GetCustomerOrders)
		orders.GET("/:id", orderController.GetOrderByID)
		orders.PATCH("/:id/status", orderController.UpdateOrderStatus)
		orders.POST("/:id/cancel", middlewares.RequireRole(models.RoleCustomer), orderController.CancelOrder)
		orders.POST("/:id/rating", middlewares.RequireRole(models.RoleCustomer), orderController.RateOrder)
	}

	delivery := api.Group("/delivery", middlewares.AuthMiddleware(),
		middlewares.RequireRole(models.RoleDeliveryPartner))
	{
		delivery.GET("/orders/available", orderController.GetAvailableOrders)
		delivery.POST("/orders/:id/accept", orderController.AcceptOrder)
	}

	payments := api.Group("/payments")
	{
		payments.GET("/methods", paymentController.GetPaymentMethods)

		authed := payments.Group("", middlewares.AuthMiddleware())
		{
			authed.POST("/orders/:id", middlewares.RequireRole(models.RoleCustomer),
				paymentController.ProcessPayment)
			authed.GET("/orders/:id", paymentController.VerifyPayment)
		}
	}

	admin := api.Group("/admin", middlewares.AuthMiddleware(),
		middlewares.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", adminController.GetDashboardStats)
		admin.GET("/orders", adminController.ListOrders)
		admin.GET("/users", adminController.ListUsers)
		admin.GET("/restaurants", adminController.ListRestaurants)
		admin.GET("/reports/sales", adminController.ExportSalesReport)
	}

	ws := r.Group("/ws", middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/orders/:id", wsController.SubscribeOrder)
		ws.GET("/restaurants/:id", wsController.SubscribeRestaurant)
		ws.GET("/delivery/:id", wsController.SubscribeDelivery)
	}

	return r
}
