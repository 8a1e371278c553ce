package routes

import (
	"net/http"
	"time"

	"solobuddy/handlers"
	"solobuddy/middleware"
	"solobuddy/models"
	"solobuddy/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the booking and payment webhook endpoints.
func RegisterBookingRoutes(v1 *gin.RouterGroup, hb *handlers.HandlerBundle) {
	bookingGroup := v1.Group("/bookings")
	{
		// Stripe authenticates itself with the signature header.
		bookingGroup.POST("/webhook", hb.StripeWebhook)

		protected := bookingGroup.Group("")
		protected.Use(middleware.JWTAuthMiddleware())
		protected.POST("", middleware.RequireRole(models.RoleTraveler), hb.CreateBooking)
		protected.GET("", middleware.AttachGuide(hb.GuideIdentity), hb.ListBookings)
		protected.GET("/:id", middleware.AttachGuide(hb.GuideIdentity), hb.GetBooking)
		protected.PATCH("/:id/status", middleware.RequireGuide(hb.GuideIdentity), hb.UpdateBookingStatus)
	}
}

// RegisterGuideRoutes registers tour guide profile, schedule and search endpoints.
func RegisterGuideRoutes(v1 *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api := v1.Group("/tour-guides")
	{
		api.GET("/:id", hb.GetGuide)
		api.GET("/:id/tours", hb.ListGuideTours)
		api.GET("/:id/reviews", hb.ListGuideReviews)
		api.POST("/search", hb.SearchGuides)

		owner := api.Group("")
		owner.Use(middleware.JWTAuthMiddleware(), middleware.RequireGuide(hb.GuideIdentity))
		owner.PATCH("/availability", hb.UpdateAvailability)
		owner.PATCH("/work-days", hb.SetWorkDays)
		owner.PATCH("/profile", hb.UpdateGuideProfile)
	}
}

// RegisterTourRoutes registers the tour catalog.
func RegisterTourRoutes(v1 *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api := v1.Group("/tours")
	{
		api.GET("/:id", hb.GetTour)

		owner := api.Group("")
		owner.Use(middleware.JWTAuthMiddleware(), middleware.RequireGuide(hb.GuideIdentity))
		owner.POST("", hb.CreateTour)
		owner.PATCH("/:id", hb.UpdateTour)
		owner.DELETE("/:id", hb.DeleteTour)
	}
}

func RegisterReviewRoutes(v1 *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api := v1.Group("/reviews")
	{
		api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleTraveler))
		api.POST("", hb.CreateReview)
	}
}

// RegisterAIRoutes registers AI endpoints.
func RegisterAIRoutes(v1 *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api := v1.Group("/ai")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/answer", hb.AIAnswer)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(v1 *gin.RouterGroup) {
	v1.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "Hi, I'm SoloBuddy"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := r.Group("/v1")
	RegisterHealthRoute(v1)
	RegisterBookingRoutes(v1, hb)
	RegisterGuideRoutes(v1, hb)
	RegisterTourRoutes(v1, hb)
	RegisterReviewRoutes(v1, hb)
	RegisterAIRoutes(v1, hb)
}
