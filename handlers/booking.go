package handlers

import (
	"errors"
	"io"
	"net/http"

	"solobuddy/middleware"
	"solobuddy/models"
	"solobuddy/services/booking"
	"solobuddy/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBytes caps the webhook body; Stripe events are far smaller.
const maxWebhookBytes = 65536

type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// CreateBooking reserves a guide and returns the checkout URL.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.Validation("invalid booking request", err.Error()))
		return
	}
	resp, err := h.Service.CreateBooking(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	page, limit := pageParams(c)
	out, err := h.Service.ListBookings(c.Request.Context(), middleware.ActorFrom(c), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	out, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateStatus applies a guide transition; the route runs RequireGuide first.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var input struct {
		Status models.BookingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.Validation("status is required", err.Error()))
		return
	}
	actor := middleware.ActorFrom(c)
	out, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), actor.GuideID, input.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// StripeWebhook reads the raw body untouched so the signature can be checked.
// Only signature and parse failures are 400; other failures are 500 so
// Stripe retries.
func (h *BookingHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Logger.Warn("Payment webhook body too large", zap.Int64("limit", tooLarge.Limit))
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "webhook body too large")
		return
	}
	if err != nil {
		utils.RespondError(c, utils.Validation("could not read webhook body"))
		return
	}
	err = h.Service.HandlePaymentEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if utils.KindOf(err) == utils.KindValidation {
			utils.RespondError(c, err)
			return
		}
		h.Logger.Error("Payment webhook processing failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorResponse{Message: "webhook processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
