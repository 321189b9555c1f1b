package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type UpdateHabitRequest struct {
	Name   *string `json:"name,omitempty"`
	IsDone *bool   `json:"is_done,omitempty"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.GET("/:id", h.Get)
		habits.PATCH("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
	}
}

// Get godoc
// @Summary  Get a habit
// @Tags     habits
// @Produce  json
// @Param    id   path      string  true  "Habit ID"
// @Success  200  {object}  domain.Habit
// @Failure  404  {object}  errorResponse
// @Router   /habits/{id} [get]
func (h *HabitHandler) Get(c *gin.Context) {
	habit, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// Update godoc
// @Summary  Rename a habit and/or set its done flag
// @Tags     habits
// @Accept   json
// @Param    id     path  string              true  "Habit ID"
// @Param    habit  body  UpdateHabitRequest  true  "Fields to change"
// @Success  204
// @Failure  400  {object}  errorResponse
// @Failure  404  {object}  errorResponse
// @Router   /habits/{id} [patch]
func (h *HabitHandler) Update(c *gin.Context) {
	var req UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:     c.Param("id"),
		Name:   req.Name,
		IsDone: req.IsDone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary  Delete a habit
// @Tags     habits
// @Param    id   path  string  true  "Habit ID"
// @Success  204
// @Failure  404  {object}  errorResponse
// @Router   /habits/{id} [delete]
func (h *HabitHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
