package domain

import (
	"context"
)

type WeekRepository interface {
	// CreateWeek persists a new week and assigns its ID and CreatedAt.
	CreateWeek(ctx context.Context, week *Week) error

	// GetWeek retrieves a week by its unique identifier.
	GetWeek(ctx context.Context, id string) (*Week, error)

	// ListWeeks returns every week, most recent start date first.
	ListWeeks(ctx context.Context) ([]*Week, error)

	// DeleteWeek removes the week together with all of its days and their habits.
	// The cascade must be atomic at the storage layer.
	DeleteWeek(ctx context.Context, id string) error
}

type DayRepository interface {
	// CreateDays inserts a batch of days. Either all of them are stored or none.
	CreateDays(ctx context.Context, days []*Day) error

	GetDay(ctx context.Context, id string) (*Day, error)

	// ListDaySummaries returns the days of a week ordered by date, each with
	// the id and completion flag of its habits.
	ListDaySummaries(ctx context.Context, weekID string) ([]DaySummary, error)

	SetDayCompleted(ctx context.Context, id string, completed bool) error

	// DeleteDay removes a day and all of its habits.
	DeleteDay(ctx context.Context, id string) error
}

type HabitRepository interface {
	// CreateHabit persists a habit and assigns its ID and CreatedAt.
	CreateHabit(ctx context.Context, habit *Habit) error

	GetHabit(ctx context.Context, id string) (*Habit, error)

	// ListHabitsByDay returns the habits of a day ordered by creation time.
	ListHabitsByDay(ctx context.Context, dayID string) ([]*Habit, error)

	SetHabitDone(ctx context.Context, id string, done bool) error

	RenameHabit(ctx context.Context, id string, name string) error

	// UpdateHabit applies every field of the patch in one write, or none.
	UpdateHabit(ctx context.Context, id string, patch HabitPatch) error

	DeleteHabit(ctx context.Context, id string) error
}

// EntityStore is the full gateway to Week, Day and Habit records.
type EntityStore interface {
	WeekRepository
	DayRepository
	HabitRepository
}

// WeekTransactor is implemented by stores able to write a week and its days
// as a single atomic unit.
type WeekTransactor interface {
	CreateWeekWithDays(ctx context.Context, week *Week, days []*Day) error
}

type TransactionalStore interface {
	EntityStore
	WeekTransactor
}
