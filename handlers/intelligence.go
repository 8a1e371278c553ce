package handlers

import (
	"net/http"

	"solobuddy/middleware"
	"solobuddy/models"
	ai "solobuddy/services/intelligence"
	"solobuddy/utils"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	Service ai.AIService
}

func NewAIHandler(svc ai.AIService) *AIHandler {
	return &AIHandler{Service: svc}
}

// Answer turns a free-text request into a guide search.
func (h *AIHandler) Answer(c *gin.Context) {
	var req models.AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.Validation("message is required", err.Error()))
		return
	}
	req.UserID = middleware.ActorFrom(c).UserID
	out, err := h.Service.Answer(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
