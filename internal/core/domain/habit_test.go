package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Trims name and starts not done", func(t *testing.T) {
		h, err := domain.NewHabit("day-1", "  Drink Water  ")

		require.NoError(t, err)
		assert.Equal(t, "Drink Water", h.Name)
		assert.Equal(t, "day-1", h.DayID)
		assert.False(t, h.IsDone)
		assert.Empty(t, h.ID, "ids are assigned by the store")
	})

	t.Run("Error: Empty and whitespace-only names", func(t *testing.T) {
		for _, name := range []string{"", "   ", "\t\n"} {
			_, err := domain.NewHabit("day-1", name)
			assert.ErrorIs(t, err, domain.ErrHabitNameEmpty)
			assert.ErrorIs(t, err, domain.ErrValidation)
		}
	})

	t.Run("Error: Name too long", func(t *testing.T) {
		_, err := domain.NewHabit("day-1", strings.Repeat("a", domain.MaxHabitNameLen+1))
		assert.ErrorIs(t, err, domain.ErrHabitNameTooLong)
	})

	t.Run("Success: Length is counted in characters", func(t *testing.T) {
		h, err := domain.NewHabit("day-1", strings.Repeat("è", domain.MaxHabitNameLen))
		require.NoError(t, err)
		assert.Equal(t, domain.MaxHabitNameLen, len([]rune(h.Name)))
	})

	t.Run("Error: Missing day", func(t *testing.T) {
		_, err := domain.NewHabit(" ", "Read")
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})
}

func TestHabit_RenameAndToggle(t *testing.T) {
	h := &domain.Habit{ID: "h1", DayID: "d1", Name: "Run"}

	require.NoError(t, h.Rename(" Walk "))
	assert.Equal(t, "Walk", h.Name)

	err := h.Rename("  ")
	assert.ErrorIs(t, err, domain.ErrHabitNameEmpty)
	assert.Equal(t, "Walk", h.Name, "a rejected rename leaves the name untouched")

	h.Toggle()
	assert.True(t, h.IsDone)
	h.Toggle()
	assert.False(t, h.IsDone)

	assert.Equal(t, domain.HabitStatus{ID: "h1", IsDone: false}, h.Status())
}

func TestSortHabits(t *testing.T) {
	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	habits := []*domain.Habit{
		{ID: "c", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "b", CreatedAt: base},
		{ID: "a", CreatedAt: base},
		{ID: "d", CreatedAt: base.Add(time.Minute)},
	}

	domain.SortHabits(habits)

	var ids []string
	for _, h := range habits {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids)
}
