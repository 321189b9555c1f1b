package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// DayResponse is a day with its habit projection and derived progress.
type DayResponse struct {
	domain.DaySummary
	Progress int `json:"progress"`
}

type WeekTreeResponse struct {
	Week *domain.Week   `json:"week"`
	Days []DayResponse `json:"days"`
}

type DayTreeResponse struct {
	Day      *domain.Day     `json:"day"`
	Habits   []*domain.Habit `json:"habits"`
	Progress int             `json:"progress"`
}

type PartialWeekResponse struct {
	Error string       `json:"error"`
	Week  *domain.Week `json:"week"`
}

func newWeekTreeResponse(tree *domain.WeekTree) WeekTreeResponse {
	days := make([]DayResponse, 0, len(tree.Days))
	for _, d := range tree.Days {
		if d.Habits == nil {
			d.Habits = []domain.HabitStatus{}
		}
		days = append(days, DayResponse{DaySummary: d, Progress: domain.DayProgress(d.Habits)})
	}
	return WeekTreeResponse{Week: tree.Week, Days: days}
}

func newDayTreeResponse(tree *domain.DayTree) DayTreeResponse {
	habits := tree.Habits
	if habits == nil {
		habits = []*domain.Habit{}
	}
	return DayTreeResponse{
		Day:      tree.Day,
		Habits:   habits,
		Progress: domain.DayProgress(domain.HabitStatuses(habits)),
	}
}

// respondError maps error kinds to status codes. Store failures are logged
// and hidden from the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
