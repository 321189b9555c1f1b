package services

import (
	"context"
	"strings"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

type HabitService struct {
	repo domain.HabitRepository
}

func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{
		repo: repo,
	}
}

type CreateHabitInput struct {
	DayID string
	Name  string
}

// UpdateHabitInput is a partial update; nil fields are left untouched.
type UpdateHabitInput struct {
	ID     string
	Name   *string
	IsDone *bool
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.DayID, input.Name)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateHabit(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) Get(ctx context.Context, id string) (*domain.Habit, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.GetHabit(ctx, id)
}

func (s *HabitService) ListByDay(ctx context.Context, dayID string) ([]*domain.Habit, error) {
	if strings.TrimSpace(dayID) == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListHabitsByDay(ctx, dayID)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) error {
	if strings.TrimSpace(input.ID) == "" {
		return domain.ErrInvalidID
	}
	if input.Name == nil && input.IsDone == nil {
		return domain.ErrEmptyUpdate
	}

	patch := domain.HabitPatch{IsDone: input.IsDone}
	if input.Name != nil {
		clean, err := domain.NormalizeHabitName(*input.Name)
		if err != nil {
			return err
		}
		patch.Name = &clean
	}

	return s.repo.UpdateHabit(ctx, input.ID, patch)
}

func (s *HabitService) Rename(ctx context.Context, id, name string) error {
	return s.Update(ctx, UpdateHabitInput{ID: id, Name: &name})
}

func (s *HabitService) SetDone(ctx context.Context, id string, done bool) error {
	return s.Update(ctx, UpdateHabitInput{ID: id, IsDone: &done})
}

// Toggle flips is_done against the stored value and returns the result.
func (s *HabitService) Toggle(ctx context.Context, id string) (*domain.Habit, error) {
	habit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	habit.Toggle()
	if err := s.repo.SetHabitDone(ctx, habit.ID, habit.IsDone); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteHabit(ctx, id)
}
