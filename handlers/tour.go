package handlers

import (
	"net/http"

	"solobuddy/middleware"
	"solobuddy/models"
	"solobuddy/services/tour"
	"solobuddy/utils"

	"github.com/gin-gonic/gin"
)

type TourHandler struct {
	Service tour.TourService
}

func NewTourHandler(svc tour.TourService) *TourHandler {
	return &TourHandler{Service: svc}
}

func (h *TourHandler) Create(c *gin.Context) {
	var in models.TourInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, utils.Validation("invalid tour", err.Error()))
		return
	}
	out, err := h.Service.Create(c.Request.Context(), middleware.ActorFrom(c).GuideID, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *TourHandler) Update(c *gin.Context) {
	var in models.TourInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, utils.Validation("invalid tour", err.Error()))
		return
	}
	out, err := h.Service.Update(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c).GuideID, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *TourHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id"), middleware.ActorFrom(c).GuideID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TourHandler) Get(c *gin.Context) {
	out, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *TourHandler) ListByGuide(c *gin.Context) {
	page, limit := pageParams(c)
	out, err := h.Service.ListByGuide(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
