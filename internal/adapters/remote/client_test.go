package remote_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-weeks/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-weeks/internal/adapters/remote"
	"github.com/comitanigiacomo/kanso-weeks/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/reconciler"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/services"
)

func startServer(t *testing.T, store domain.EntityStore) *remote.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	weekSvc := services.NewWeekService(store, nil)
	habitSvc := services.NewHabitService(store)
	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		WeekHandler:  adapterHTTP.NewWeekHandler(weekSvc),
		DayHandler:   adapterHTTP.NewDayHandler(weekSvc, habitSvc),
		HabitHandler: adapterHTTP.NewHabitHandler(habitSvc),
		Registry:     prometheus.NewRegistry(),
		StartTime:    time.Now(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return remote.NewClientWithHTTP(srv.URL, srv.Client())
}

func TestClient_WeekRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := startServer(t, repository.NewInMemoryStore())

	week, err := client.CreateWeek(ctx, services.CreateWeekInput{StartDate: "2024-03-10"})
	require.NoError(t, err)
	assert.Equal(t, "Week of 10/3/2024", week.Name)
	assert.Equal(t, "2024-03-16", week.EndDate.String())

	weeks, err := client.ListWeeks(ctx)
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.Equal(t, week.ID, weeks[0].ID)

	tree, err := client.FetchWeekWithDays(ctx, week.ID)
	require.NoError(t, err)
	require.Len(t, tree.Days, 7)
	assert.Equal(t, "2024-03-10", tree.Days[0].Date.String())
	assert.Equal(t, week.ID, tree.Days[0].WeekID)

	dayID := tree.Days[0].ID
	require.NoError(t, client.SetDayCompletion(ctx, dayID, true))

	day, err := client.FetchDayWithHabits(ctx, dayID)
	require.NoError(t, err)
	assert.True(t, day.Day.IsCompleted)
	assert.Empty(t, day.Habits)

	require.NoError(t, client.DeleteWeek(ctx, week.ID))

	_, err = client.FetchWeekWithDays(ctx, week.ID)
	assert.ErrorIs(t, err, domain.ErrWeekNotFound)
	_, err = client.FetchDayWithHabits(ctx, dayID)
	assert.ErrorIs(t, err, domain.ErrDayNotFound)
	assert.ErrorIs(t, client.DeleteWeek(ctx, week.ID), domain.ErrWeekNotFound)
}

func TestClient_ErrorKinds(t *testing.T) {
	ctx := context.Background()

	t.Run("Validation", func(t *testing.T) {
		client := startServer(t, repository.NewInMemoryStore())

		_, err := client.CreateWeek(ctx, services.CreateWeekInput{StartDate: "2024-03-10", EndDate: "2024-03-01"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "end date cannot be before start date")
	})

	t.Run("Partial creation", func(t *testing.T) {
		client := startServer(t, &brokenStore{EntityStore: repository.NewInMemoryStore()})

		week, err := client.CreateWeek(ctx, services.CreateWeekInput{StartDate: "2024-03-10"})
		require.NotNil(t, week)
		assert.NotEmpty(t, week.ID)

		var partial *domain.PartialCreationError
		require.ErrorAs(t, err, &partial)
		assert.ErrorIs(t, err, domain.ErrStore)
	})

	t.Run("Unreachable server", func(t *testing.T) {
		client := remote.NewClient("http://127.0.0.1:1", time.Second)

		_, err := client.ListWeeks(ctx)
		assert.ErrorIs(t, err, domain.ErrStore)
	})
}

type brokenStore struct {
	domain.EntityStore
}

func (s *brokenStore) CreateDays(ctx context.Context, days []*domain.Day) error {
	return errors.New("disk full")
}

func (s *brokenStore) DeleteWeek(ctx context.Context, id string) error {
	return errors.New("disk full")
}

func TestClient_HabitGateway(t *testing.T) {
	ctx := context.Background()
	client := startServer(t, repository.NewInMemoryStore())

	week, err := client.CreateWeek(ctx, services.CreateWeekInput{StartDate: "2024-03-10"})
	require.NoError(t, err)
	tree, err := client.FetchWeekWithDays(ctx, week.ID)
	require.NoError(t, err)
	dayID := tree.Days[0].ID

	habit := &domain.Habit{DayID: dayID, Name: "Read"}
	require.NoError(t, client.CreateHabit(ctx, habit))
	assert.NotEmpty(t, habit.ID)
	assert.False(t, habit.CreatedAt.IsZero())

	require.NoError(t, client.SetHabitDone(ctx, habit.ID, true))
	require.NoError(t, client.RenameHabit(ctx, habit.ID, "Write"))

	habits, err := client.ListHabitsByDay(ctx, dayID)
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "Write", habits[0].Name)
	assert.True(t, habits[0].IsDone)

	err = client.CreateHabit(ctx, &domain.Habit{DayID: "ghost", Name: "Read"})
	assert.ErrorIs(t, err, domain.ErrDayNotFound)
	assert.ErrorIs(t, client.SetHabitDone(ctx, "ghost", true), domain.ErrHabitNotFound)

	require.NoError(t, client.DeleteHabit(ctx, habit.ID))
	assert.ErrorIs(t, client.DeleteHabit(ctx, habit.ID), domain.ErrHabitNotFound)
}

func TestClient_DrivesReconciler(t *testing.T) {
	ctx := context.Background()
	client := startServer(t, repository.NewInMemoryStore())

	week, err := client.CreateWeek(ctx, services.CreateWeekInput{StartDate: "2024-03-10"})
	require.NoError(t, err)
	tree, err := client.FetchWeekWithDays(ctx, week.ID)
	require.NoError(t, err)

	view := reconciler.NewDayView(client, tree.Days[0].ID, reconciler.RollbackOnFailure)
	require.NoError(t, view.Load(ctx))

	read, res := view.Create(ctx, "Read")
	require.True(t, res.OK())
	_, res = view.Create(ctx, "Run")
	require.True(t, res.OK())

	assert.True(t, view.Toggle(ctx, read.ID).OK())
	assert.Equal(t, 50, view.Progress())

	other := reconciler.NewDayView(client, tree.Days[0].ID, reconciler.RollbackOnFailure)
	require.NoError(t, other.Load(ctx))
	assert.Equal(t, 50, other.Progress(), "a fresh view sees the remote state")

	res = view.Toggle(ctx, "ghost")
	assert.Equal(t, reconciler.Rejected, res.Outcome)

	require.True(t, other.Delete(ctx, read.ID).OK())
	res = view.Toggle(ctx, read.ID)
	assert.Equal(t, reconciler.RolledBack, res.Outcome)
	assert.ErrorIs(t, res.Err, domain.ErrHabitNotFound)
	assert.Len(t, view.Habits(), 1, "refresh drops the habit deleted elsewhere")
}
