// File: solobuddy/handlers/bundle.go
package handlers

import (
	"strconv"

	"solobuddy/middleware"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// GuideIdentity resolves guide-scoped callers.
	GuideIdentity middleware.GuideIdentityResolver

	// Booking endpoints
	CreateBooking       gin.HandlerFunc
	ListBookings        gin.HandlerFunc
	GetBooking          gin.HandlerFunc
	UpdateBookingStatus gin.HandlerFunc
	StripeWebhook       gin.HandlerFunc

	// Tour guide endpoints
	UpdateAvailability gin.HandlerFunc
	SetWorkDays        gin.HandlerFunc
	UpdateGuideProfile gin.HandlerFunc
	GetGuide           gin.HandlerFunc
	SearchGuides       gin.HandlerFunc

	// Tour endpoints
	CreateTour     gin.HandlerFunc
	UpdateTour     gin.HandlerFunc
	DeleteTour     gin.HandlerFunc
	GetTour        gin.HandlerFunc
	ListGuideTours gin.HandlerFunc

	// Review endpoints
	CreateReview     gin.HandlerFunc
	ListGuideReviews gin.HandlerFunc

	// AI endpoints
	AIAnswer gin.HandlerFunc
}

// pageParams reads ?page=&limit=; bad values fall back to defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}
