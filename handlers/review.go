package handlers

import (
	"net/http"

	"solobuddy/middleware"
	"solobuddy/models"
	"solobuddy/services/review"
	"solobuddy/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Service review.ReviewService
}

func NewReviewHandler(svc review.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: svc}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var in models.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, utils.Validation("invalid review", err.Error()))
		return
	}
	out, err := h.Service.Create(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *ReviewHandler) ListByGuide(c *gin.Context) {
	page, limit := pageParams(c)
	out, err := h.Service.ListByGuide(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
