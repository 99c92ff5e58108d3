package routes

import (
	"net/http"
	"time"

	"keja/handlers"
	"keja/middleware"
	"keja/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		// Tenant-facing endpoints; tenants are not authenticated accounts.
		api.POST("", hb.CreateBooking)
		api.GET("/:id", hb.GetBooking)
		api.GET("", hb.ListTenantBookings)
		api.POST("/:id/cancel", hb.CancelBooking)

		// Payment surface.
		api.POST("/:id/payment", hb.InitiatePayment)
		api.GET("/:id/payment", hb.WaitForPayment)

		// Landlord decision requires authentication.
		protected := api.Group("")
		protected.Use(middleware.LandlordAuth())
		protected.POST("/:id/decision", hb.DecideBooking)
	}

	landlord := r.Group("/api/landlord")
	{
		landlord.Use(middleware.LandlordAuth())
		landlord.GET("/bookings", hb.ListLandlordBookings)
	}
}

// RegisterPaymentRoutes registers the gateway callback and support endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		// The gateway posts asynchronous results here.
		api.POST("/mpesa/callback", hb.MpesaCallback)

		status := api.Group("")
		status.Use(middleware.LandlordAuth())
		status.GET("/status/:checkoutRequestID", hb.QueryPaymentStatus)
	}
}

// RegisterSubscriptionRoutes registers the landlord subscription endpoints.
func RegisterSubscriptionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/subscriptions")
	{
		api.Use(middleware.LandlordAuth())
		api.GET("/me", hb.GetSubscription)
		api.POST("/upgrade", hb.UpgradeTier)
		api.POST("/cancel", hb.CancelSubscription)
		api.GET("/commissions", hb.ListCommissions)
		api.GET("/commissions/summary", hb.CommissionSummary)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes wires the CORS policy and all route groups.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterSubscriptionRoutes(r, hb)
}
