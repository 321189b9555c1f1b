package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/services"
)

type DayHandler struct {
	weeks  *services.WeekService
	habits *services.HabitService
}

func NewDayHandler(weeks *services.WeekService, habits *services.HabitService) *DayHandler {
	return &DayHandler{
		weeks:  weeks,
		habits: habits,
	}
}

type UpdateDayRequest struct {
	IsCompleted *bool `json:"is_completed" binding:"required"`
}

type CreateHabitRequest struct {
	Name string `json:"name" binding:"required" example:"Read 20 pages"`
}

func (h *DayHandler) RegisterRoutes(router *gin.RouterGroup) {
	days := router.Group("/days")
	{
		days.GET("/:id", h.Get)
		days.PATCH("/:id", h.Update)
		days.GET("/:id/habits", h.ListHabits)
		days.POST("/:id/habits", h.CreateHabit)
	}
}

// Get godoc
// @Summary  Day with its habits and progress
// @Tags     days
// @Produce  json
// @Param    id   path      string  true  "Day ID"
// @Success  200  {object}  DayTreeResponse
// @Failure  404  {object}  errorResponse
// @Router   /days/{id} [get]
func (h *DayHandler) Get(c *gin.Context) {
	tree, err := h.weeks.FetchDayWithHabits(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDayTreeResponse(tree))
}

// Update godoc
// @Summary  Set the manual completion flag of a day
// @Tags     days
// @Accept   json
// @Param    id   path  string            true  "Day ID"
// @Param    day  body  UpdateDayRequest  true  "Completion flag"
// @Success  204
// @Failure  400  {object}  errorResponse
// @Failure  404  {object}  errorResponse
// @Router   /days/{id} [patch]
func (h *DayHandler) Update(c *gin.Context) {
	var req UpdateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := h.weeks.SetDayCompletion(c.Request.Context(), c.Param("id"), *req.IsCompleted); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListHabits godoc
// @Summary  Habits of a day in creation order
// @Tags     days
// @Produce  json
// @Param    id   path   string  true  "Day ID"
// @Success  200  {array}  domain.Habit
// @Router   /days/{id}/habits [get]
func (h *DayHandler) ListHabits(c *gin.Context) {
	habits, err := h.habits.ListByDay(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if habits == nil {
		habits = []*domain.Habit{}
	}
	c.JSON(http.StatusOK, habits)
}

// CreateHabit godoc
// @Summary  Add a habit to a day
// @Tags     days
// @Accept   json
// @Produce  json
// @Param    id     path      string              true  "Day ID"
// @Param    habit  body      CreateHabitRequest  true  "Habit name"
// @Success  201    {object}  domain.Habit
// @Failure  400    {object}  errorResponse
// @Failure  404    {object}  errorResponse
// @Router   /days/{id}/habits [post]
func (h *DayHandler) CreateHabit(c *gin.Context) {
	var req CreateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	habit, err := h.habits.Create(c.Request.Context(), services.CreateHabitInput{
		DayID: c.Param("id"),
		Name:  req.Name,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, habit)
}
