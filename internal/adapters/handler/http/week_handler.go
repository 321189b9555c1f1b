package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/services"
)

type WeekHandler struct {
	svc *services.WeekService
}

func NewWeekHandler(svc *services.WeekService) *WeekHandler {
	return &WeekHandler{
		svc: svc,
	}
}

type CreateWeekRequest struct {
	StartDate string `json:"start_date" binding:"required" example:"2024-03-10"`
	EndDate   string `json:"end_date,omitempty" example:"2024-03-16"`
}

func (h *WeekHandler) RegisterRoutes(router *gin.RouterGroup) {
	weeks := router.Group("/weeks")
	{
		weeks.GET("", h.List)
		weeks.POST("", h.Create)
		weeks.GET("/:id", h.Get)
		weeks.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary  List weeks
// @Tags     weeks
// @Produce  json
// @Success  200  {array}   domain.Week
// @Router   /weeks [get]
func (h *WeekHandler) List(c *gin.Context) {
	weeks, err := h.svc.ListWeeks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if weeks == nil {
		weeks = []*domain.Week{}
	}
	c.JSON(http.StatusOK, weeks)
}

// Create godoc
// @Summary  Create a week and its days
// @Tags     weeks
// @Accept   json
// @Produce  json
// @Param    week  body      CreateWeekRequest  true  "Date range, end date optional"
// @Success  201   {object}  domain.Week
// @Failure  400   {object}  errorResponse
// @Failure  500   {object}  PartialWeekResponse
// @Router   /weeks [post]
func (h *WeekHandler) Create(c *gin.Context) {
	var req CreateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	week, err := h.svc.CreateWeek(c.Request.Context(), services.CreateWeekInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		var partial *domain.PartialCreationError
		if errors.As(err, &partial) {
			c.JSON(http.StatusInternalServerError, PartialWeekResponse{Error: err.Error(), Week: partial.Week})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, week)
}

// Get godoc
// @Summary  Week with its days, habit statuses and progress
// @Tags     weeks
// @Produce  json
// @Param    id   path      string  true  "Week ID"
// @Success  200  {object}  WeekTreeResponse
// @Failure  404  {object}  errorResponse
// @Router   /weeks/{id} [get]
func (h *WeekHandler) Get(c *gin.Context) {
	tree, err := h.svc.FetchWeekWithDays(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWeekTreeResponse(tree))
}

// Delete godoc
// @Summary  Delete a week with all its days and habits
// @Tags     weeks
// @Param    id   path  string  true  "Week ID"
// @Success  204
// @Failure  404  {object}  errorResponse
// @Router   /weeks/{id} [delete]
func (h *WeekHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteWeek(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
