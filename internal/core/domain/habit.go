package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxHabitNameLen = 100

type Habit struct {
	ID        string    `json:"id" db:"id" yaml:"id"`
	DayID     string    `json:"day_id" db:"day_id" yaml:"day_id"`
	Name      string    `json:"name" db:"name" yaml:"name"`
	IsDone    bool      `json:"is_done" db:"is_done" yaml:"is_done"`
	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
}

// HabitPatch lists the fields of a habit to change. Nil fields are kept.
type HabitPatch struct {
	Name   *string
	IsDone *bool
}

func (p HabitPatch) IsEmpty() bool {
	return p.Name == nil && p.IsDone == nil
}

// HabitStatus is the projection week level reads carry for each habit.
type HabitStatus struct {
	ID     string `json:"id" db:"id" yaml:"id"`
	IsDone bool   `json:"is_done" db:"is_done" yaml:"is_done"`
}

// NormalizeHabitName trims name and checks it against the naming rules.
func NormalizeHabitName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrHabitNameEmpty
	}
	if utf8.RuneCountInString(trimmed) > MaxHabitNameLen {
		return "", ErrHabitNameTooLong
	}
	return trimmed, nil
}

// NewHabit builds an unsaved habit. The store assigns ID and CreatedAt.
func NewHabit(dayID, name string) (*Habit, error) {
	if strings.TrimSpace(dayID) == "" {
		return nil, ErrInvalidID
	}

	cleanName, err := NormalizeHabitName(name)
	if err != nil {
		return nil, err
	}

	return &Habit{
		DayID:  dayID,
		Name:   cleanName,
		IsDone: false,
	}, nil
}

func (h *Habit) Rename(name string) error {
	cleanName, err := NormalizeHabitName(name)
	if err != nil {
		return err
	}
	h.Name = cleanName
	return nil
}

func (h *Habit) Toggle() {
	h.IsDone = !h.IsDone
}

func (h *Habit) Status() HabitStatus {
	return HabitStatus{ID: h.ID, IsDone: h.IsDone}
}

// SortHabits orders by creation time, then id for habits created in the same instant.
func SortHabits(habits []*Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		return habits[i].ID < habits[j].ID
	})
}

func HabitStatuses(habits []*Habit) []HabitStatus {
	statuses := make([]HabitStatus, 0, len(habits))
	for _, h := range habits {
		statuses = append(statuses, h.Status())
	}
	return statuses
}
