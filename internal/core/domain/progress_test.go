package domain_test

import (
	"testing"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func statuses(done ...bool) []domain.HabitStatus {
	out := make([]domain.HabitStatus, 0, len(done))
	for _, d := range done {
		out = append(out, domain.HabitStatus{IsDone: d})
	}
	return out
}

func TestDayProgress(t *testing.T) {
	tests := []struct {
		name   string
		habits []domain.HabitStatus
		want   int
	}{
		{"No habits is zero", nil, 0},
		{"Empty slice is zero", []domain.HabitStatus{}, 0},
		{"None done", statuses(false, false), 0},
		{"All done", statuses(true, true, true), 100},
		{"Two of three rounds up", statuses(true, false, true), 67},
		{"One of three rounds down", statuses(true, false, false), 33},
		{"Exact half", statuses(true, false), 50},
		{"Half point rounds up", statuses(true, false, false, false, false, false, false, false), 13},
		{"Just under half point", statuses(true, false, false, false, false, false, false, false, false, false, false, false, false, false, false, false), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.DayProgress(tt.habits))
		})
	}
}

func TestWeekProgress(t *testing.T) {
	days := []domain.DaySummary{
		{Day: domain.Day{ID: "d1", Date: domain.NewDate(2024, 1, 1)}, Habits: statuses(true)},
		{Day: domain.Day{ID: "d2", Date: domain.NewDate(2024, 1, 2)}},
		{Day: domain.Day{ID: "d3", Date: domain.NewDate(2024, 1, 3)}, Habits: statuses(true, false, true)},
	}

	got := domain.WeekProgress(days)

	assert.Equal(t, []domain.DayProgressEntry{
		{DayID: "d1", Date: domain.NewDate(2024, 1, 1), Percent: 100},
		{DayID: "d2", Date: domain.NewDate(2024, 1, 2), Percent: 0},
		{DayID: "d3", Date: domain.NewDate(2024, 1, 3), Percent: 67},
	}, got)
}
