package handlers

import (
	"net/http"

	"solobuddy/middleware"
	"solobuddy/models"
	"solobuddy/services/guide"
	"solobuddy/utils"

	"github.com/gin-gonic/gin"
)

type GuideHandler struct {
	Service guide.GuideService
}

func NewGuideHandler(svc guide.GuideService) *GuideHandler {
	return &GuideHandler{Service: svc}
}

// UpdateAvailability adds and removes explicit work dates in one batch.
func (h *GuideHandler) UpdateAvailability(c *gin.Context) {
	var input struct {
		AddDates    []string `json:"addDates"`
		RemoveDates []string `json:"removeDates"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.Validation("invalid availability request", err.Error()))
		return
	}
	actor := middleware.ActorFrom(c)
	schedule, err := h.Service.ApplyEdits(c.Request.Context(), actor.GuideID, input.AddDates, input.RemoveDates)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func (h *GuideHandler) SetWorkDays(c *gin.Context) {
	var input struct {
		IsRecurring *bool `json:"isRecurring" binding:"required"`
		Weekdays    []int `json:"weekdays"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.Validation("isRecurring is required", err.Error()))
		return
	}
	actor := middleware.ActorFrom(c)
	schedule, err := h.Service.SetWorkDays(c.Request.Context(), actor.GuideID, *input.IsRecurring, input.Weekdays)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func (h *GuideHandler) UpdateProfile(c *gin.Context) {
	var upd models.GuideProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		utils.RespondError(c, utils.Validation("invalid profile update", err.Error()))
		return
	}
	out, err := h.Service.UpdateProfile(c.Request.Context(), middleware.ActorFrom(c).GuideID, upd)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *GuideHandler) GetGuide(c *gin.Context) {
	out, err := h.Service.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *GuideHandler) Search(c *gin.Context) {
	var input struct {
		Filter models.GuideFilter `json:"filter"`
		Page   int                `json:"page"`
		Limit  int                `json:"limit"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, utils.Validation("invalid search request", err.Error()))
		return
	}
	out, err := h.Service.Search(c.Request.Context(), input.Filter, input.Page, input.Limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
