package domain_test

import (
	"testing"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanWeek(t *testing.T) {
	t.Run("Default week has seven days and computed end", func(t *testing.T) {
		week, days, err := domain.PlanWeek(mustDate(t, "2024-03-10"), nil)
		require.NoError(t, err)

		assert.Equal(t, "Week of 10/3/2024", week.Name)
		assert.Equal(t, "2024-03-10", week.StartDate.String())
		assert.Equal(t, "2024-03-16", week.EndDate.String())
		require.Len(t, days, 7)
		for i, d := range days {
			assert.Equal(t, week.StartDate.AddDays(i), d.Date)
			assert.False(t, d.IsCompleted)
		}
	})

	t.Run("Stored end equals last generated day", func(t *testing.T) {
		end := mustDate(t, "2024-03-12")
		week, days, err := domain.PlanWeek(mustDate(t, "2024-03-10"), &end)
		require.NoError(t, err)

		require.Len(t, days, 3)
		assert.Equal(t, days[len(days)-1].Date, week.EndDate)
	})

	t.Run("Dates are unique", func(t *testing.T) {
		end := mustDate(t, "2024-04-30")
		_, days, err := domain.PlanWeek(mustDate(t, "2024-03-01"), &end)
		require.NoError(t, err)

		seen := make(map[domain.Date]bool)
		for _, d := range days {
			assert.False(t, seen[d.Date], "duplicate %s", d.Date)
			seen[d.Date] = true
		}
	})

	t.Run("Error: Inverted range creates nothing", func(t *testing.T) {
		end := mustDate(t, "2024-03-01")
		week, days, err := domain.PlanWeek(mustDate(t, "2024-03-10"), &end)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
		assert.Nil(t, week)
		assert.Nil(t, days)
	})

	t.Run("AttachDays tags the week id", func(t *testing.T) {
		_, days, err := domain.PlanWeek(mustDate(t, "2024-03-10"), nil)
		require.NoError(t, err)

		domain.AttachDays("w1", days)
		for _, d := range days {
			assert.Equal(t, "w1", d.WeekID)
		}
	})
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, domain.ErrWeekNotFound, domain.ErrNotFound)
	assert.Equal(t, "week not found", domain.ErrWeekNotFound.Error())

	storeErr := domain.NewStoreError("insert days", assert.AnError)
	assert.ErrorIs(t, storeErr, domain.ErrStore)
	assert.ErrorIs(t, storeErr, assert.AnError)

	partial := &domain.PartialCreationError{Week: &domain.Week{ID: "w1"}, Err: storeErr}
	assert.ErrorIs(t, partial, domain.ErrStore)
	assert.Contains(t, partial.Error(), "w1")
}
