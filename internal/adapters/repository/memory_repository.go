package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

var _ domain.TransactionalStore = (*InMemoryStore)(nil)

// InMemoryStore keeps the whole week tree in maps. Cascades happen under a
// single write lock, so they are atomic for concurrent readers.
type InMemoryStore struct {
	weeks  map[string]*domain.Week
	days   map[string]*domain.Day
	habits map[string]*domain.Habit

	lastCreated time.Time
	mu          sync.RWMutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		weeks:  make(map[string]*domain.Week),
		days:   make(map[string]*domain.Day),
		habits: make(map[string]*domain.Habit),
	}
}

// now hands out strictly increasing timestamps so creation order is total.
func (r *InMemoryStore) now() time.Time {
	t := time.Now().UTC()
	if !t.After(r.lastCreated) {
		t = r.lastCreated.Add(time.Nanosecond)
	}
	r.lastCreated = t
	return t
}

func (r *InMemoryStore) CreateWeek(ctx context.Context, week *domain.Week) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insertWeek(week)
	return nil
}

func (r *InMemoryStore) insertWeek(week *domain.Week) {
	if week.ID == "" {
		week.ID = uuid.NewString()
	}
	week.CreatedAt = r.now()

	clone := *week
	r.weeks[week.ID] = &clone
}

func (r *InMemoryStore) CreateWeekWithDays(ctx context.Context, week *domain.Week, days []*domain.Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insertWeek(week)
	domain.AttachDays(week.ID, days)
	if err := r.insertDays(days); err != nil {
		delete(r.weeks, week.ID)
		return err
	}
	return nil
}

func (r *InMemoryStore) GetWeek(ctx context.Context, id string) (*domain.Week, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.weeks[id]
	if !ok {
		return nil, domain.ErrWeekNotFound
	}
	clone := *w
	return &clone, nil
}

func (r *InMemoryStore) ListWeeks(ctx context.Context) ([]*domain.Week, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	weeks := make([]*domain.Week, 0, len(r.weeks))
	for _, w := range r.weeks {
		clone := *w
		weeks = append(weeks, &clone)
	}

	sort.Slice(weeks, func(i, j int) bool {
		if weeks[i].StartDate != weeks[j].StartDate {
			return weeks[i].StartDate.After(weeks[j].StartDate)
		}
		return weeks[i].CreatedAt.After(weeks[j].CreatedAt)
	})

	return weeks, nil
}

func (r *InMemoryStore) DeleteWeek(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.weeks[id]; !ok {
		return domain.ErrWeekNotFound
	}

	for dayID, d := range r.days {
		if d.WeekID == id {
			r.deleteDayLocked(dayID)
		}
	}
	delete(r.weeks, id)
	return nil
}

func (r *InMemoryStore) deleteDayLocked(dayID string) {
	for habitID, h := range r.habits {
		if h.DayID == dayID {
			delete(r.habits, habitID)
		}
	}
	delete(r.days, dayID)
}

func (r *InMemoryStore) CreateDays(ctx context.Context, days []*domain.Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insertDays(days)
}

// insertDays validates the whole batch before writing any of it.
func (r *InMemoryStore) insertDays(days []*domain.Day) error {
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		if _, ok := r.weeks[d.WeekID]; !ok {
			return domain.ErrWeekNotFound
		}
		key := d.WeekID + "|" + d.Date.String()
		if seen[key] || r.dayExistsLocked(d.WeekID, d.Date) {
			return domain.NewStoreError("create days", errDuplicateDay)
		}
		seen[key] = true
	}

	for _, d := range days {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		clone := *d
		r.days[d.ID] = &clone
	}
	return nil
}

func (r *InMemoryStore) dayExistsLocked(weekID string, date domain.Date) bool {
	for _, d := range r.days {
		if d.WeekID == weekID && d.Date == date {
			return true
		}
	}
	return false
}

func (r *InMemoryStore) GetDay(ctx context.Context, id string) (*domain.Day, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.days[id]
	if !ok {
		return nil, domain.ErrDayNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *InMemoryStore) ListDaySummaries(ctx context.Context, weekID string) ([]domain.DaySummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := []domain.DaySummary{}
	for _, d := range r.days {
		if d.WeekID != weekID {
			continue
		}
		habits := r.habitsOfDayLocked(d.ID)
		summaries = append(summaries, domain.DaySummary{
			Day:    *d,
			Habits: domain.HabitStatuses(habits),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.Before(summaries[j].Date)
	})

	return summaries, nil
}

func (r *InMemoryStore) SetDayCompleted(ctx context.Context, id string, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.days[id]
	if !ok {
		return domain.ErrDayNotFound
	}
	d.IsCompleted = completed
	return nil
}

func (r *InMemoryStore) CreateHabit(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.days[habit.DayID]; !ok {
		return domain.ErrDayNotFound
	}

	if habit.ID == "" {
		habit.ID = uuid.NewString()
	}
	habit.CreatedAt = r.now()

	clone := *habit
	r.habits[habit.ID] = &clone
	return nil
}

func (r *InMemoryStore) GetHabit(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.habits[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *h
	return &clone, nil
}

func (r *InMemoryStore) ListHabitsByDay(ctx context.Context, dayID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.habitsOfDayLocked(dayID), nil
}

func (r *InMemoryStore) habitsOfDayLocked(dayID string) []*domain.Habit {
	habits := []*domain.Habit{}
	for _, h := range r.habits {
		if h.DayID == dayID {
			clone := *h
			habits = append(habits, &clone)
		}
	}
	domain.SortHabits(habits)
	return habits
}

func (r *InMemoryStore) SetHabitDone(ctx context.Context, id string, done bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.habits[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.IsDone = done
	return nil
}

func (r *InMemoryStore) RenameHabit(ctx context.Context, id string, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.habits[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.Name = name
	return nil
}

func (r *InMemoryStore) UpdateHabit(ctx context.Context, id string, patch domain.HabitPatch) error {
	if patch.IsEmpty() {
		return domain.ErrEmptyUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.habits[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if patch.Name != nil {
		h.Name = *patch.Name
	}
	if patch.IsDone != nil {
		h.IsDone = *patch.IsDone
	}
	return nil
}

func (r *InMemoryStore) DeleteHabit(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.habits[id]; !ok {
		return domain.ErrHabitNotFound
	}
	delete(r.habits, id)
	return nil
}

func (r *InMemoryStore) DeleteDay(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.days[id]; !ok {
		return domain.ErrDayNotFound
	}
	r.deleteDayLocked(id)
	return nil
}
