package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

// OrphanQueue receives weeks that were created without their days and could
// not be removed on the spot.
type OrphanQueue interface {
	Enqueue(weekID string)
}

type WeekService struct {
	store   domain.EntityStore
	orphans OrphanQueue
}

func NewWeekService(store domain.EntityStore, orphans OrphanQueue) *WeekService {
	return &WeekService{
		store:   store,
		orphans: orphans,
	}
}

type CreateWeekInput struct {
	StartDate string
	EndDate   string
}

func (in CreateWeekInput) dates() (domain.Date, *domain.Date, error) {
	start, err := domain.ParseDate(strings.TrimSpace(in.StartDate))
	if err != nil {
		return domain.Date{}, nil, err
	}

	if strings.TrimSpace(in.EndDate) == "" {
		return start, nil, nil
	}

	end, err := domain.ParseDate(strings.TrimSpace(in.EndDate))
	if err != nil {
		return domain.Date{}, nil, err
	}
	return start, &end, nil
}

// CreateWeek stores a week with one day per date of its range.
//
// On stores without transactions a failed day batch triggers a compensating
// delete of the week. When that delete fails too, the week is returned along
// with a *domain.PartialCreationError and handed to the orphan queue.
func (s *WeekService) CreateWeek(ctx context.Context, input CreateWeekInput) (*domain.Week, error) {
	start, end, err := input.dates()
	if err != nil {
		return nil, err
	}

	week, days, err := domain.PlanWeek(start, end)
	if err != nil {
		return nil, err
	}

	if tx, ok := s.store.(domain.WeekTransactor); ok {
		if err := tx.CreateWeekWithDays(ctx, week, days); err != nil {
			return nil, err
		}
		return week, nil
	}

	if err := s.store.CreateWeek(ctx, week); err != nil {
		return nil, err
	}

	domain.AttachDays(week.ID, days)
	if err := s.store.CreateDays(ctx, days); err != nil {
		return s.compensate(ctx, week, err)
	}

	return week, nil
}

func (s *WeekService) compensate(ctx context.Context, week *domain.Week, cause error) (*domain.Week, error) {
	// the caller may already be gone; the cleanup still has to run
	delErr := s.store.DeleteWeek(context.WithoutCancel(ctx), week.ID)
	if delErr == nil || errors.Is(delErr, domain.ErrWeekNotFound) {
		return nil, fmt.Errorf("create days of week %s: %w", week.ID, cause)
	}

	log.Printf("[WEEKS] Compensating delete of week %s failed: %v", week.ID, delErr)
	if s.orphans != nil {
		s.orphans.Enqueue(week.ID)
	}

	return week, &domain.PartialCreationError{Week: week, Err: cause}
}

func (s *WeekService) DeleteWeek(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidID
	}
	return s.store.DeleteWeek(ctx, id)
}

func (s *WeekService) ListWeeks(ctx context.Context) ([]*domain.Week, error) {
	return s.store.ListWeeks(ctx)
}

func (s *WeekService) GetWeek(ctx context.Context, id string) (*domain.Week, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidID
	}
	return s.store.GetWeek(ctx, id)
}

// FetchWeekWithDays returns the week and its days in date order, each with
// the id and completion flag of its habits.
func (s *WeekService) FetchWeekWithDays(ctx context.Context, id string) (*domain.WeekTree, error) {
	week, err := s.GetWeek(ctx, id)
	if err != nil {
		return nil, err
	}

	days, err := s.store.ListDaySummaries(ctx, week.ID)
	if err != nil {
		return nil, err
	}

	return &domain.WeekTree{Week: week, Days: days}, nil
}

func (s *WeekService) FetchDayWithHabits(ctx context.Context, id string) (*domain.DayTree, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidID
	}

	day, err := s.store.GetDay(ctx, id)
	if err != nil {
		return nil, err
	}

	habits, err := s.store.ListHabitsByDay(ctx, day.ID)
	if err != nil {
		return nil, err
	}

	return &domain.DayTree{Day: day, Habits: habits}, nil
}

// SetDayCompletion sets the manual day flag. It is never derived from habits.
func (s *WeekService) SetDayCompletion(ctx context.Context, dayID string, completed bool) error {
	if strings.TrimSpace(dayID) == "" {
		return domain.ErrInvalidID
	}
	return s.store.SetDayCompleted(ctx, dayID, completed)
}
