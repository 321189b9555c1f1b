package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
)

var _ domain.TransactionalStore = (*SQLStore)(nil)

// SQLStore is the entity store for Postgres (pgx or lib/pq) and SQLite.
// Cascading deletes are delegated to the foreign keys created by Migrate.
type SQLStore struct {
	db *sqlx.DB

	clockMu     sync.Mutex
	lastCreated time.Time
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLStore connects, tunes the pool for the dialect and applies the schema.
func OpenSQLStore(ctx context.Context, driverName, dsn string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driverName, err)
	}

	if dialectOf(driverName) == dialectSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return NewSQLStore(db), nil
}

// SQLiteDSN enables foreign keys, which SQLite leaves off by default.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// now returns strictly increasing timestamps at the microsecond precision
// Postgres keeps, so habits created back to back never tie.
func (r *SQLStore) now() time.Time {
	r.clockMu.Lock()
	defer r.clockMu.Unlock()

	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(r.lastCreated) {
		t = r.lastCreated.Add(time.Microsecond)
	}
	r.lastCreated = t
	return t
}

func (r *SQLStore) DB() *sqlx.DB {
	return r.db
}

func (r *SQLStore) Close() error {
	return r.db.Close()
}

func (r *SQLStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLStore) CreateWeek(ctx context.Context, week *domain.Week) error {
	return r.insertWeek(ctx, r.db, week)
}

func (r *SQLStore) insertWeek(ctx context.Context, ext sqlx.ExtContext, week *domain.Week) error {
	if week.ID == "" {
		week.ID = uuid.NewString()
	}
	week.CreatedAt = r.now()

	query := `
		INSERT INTO weeks (id, name, start_date, end_date, created_at)
		VALUES (:id, :name, :start_date, :end_date, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, ext, query, week); err != nil {
		return domain.NewStoreError("insert week", err)
	}
	return nil
}

func (r *SQLStore) CreateWeekWithDays(ctx context.Context, week *domain.Week, days []*domain.Day) (retErr error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewStoreError("begin week transaction", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if err := r.insertWeek(ctx, tx, week); err != nil {
		return err
	}

	domain.AttachDays(week.ID, days)
	if err := r.insertDays(ctx, tx, days); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreError("commit week transaction", err)
	}
	return nil
}

func (r *SQLStore) GetWeek(ctx context.Context, id string) (*domain.Week, error) {
	var week domain.Week
	query := r.db.Rebind(`SELECT id, name, start_date, end_date, created_at FROM weeks WHERE id = ?`)

	if err := r.db.GetContext(ctx, &week, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWeekNotFound
		}
		return nil, domain.NewStoreError("get week", err)
	}
	return &week, nil
}

func (r *SQLStore) ListWeeks(ctx context.Context) ([]*domain.Week, error) {
	weeks := []*domain.Week{}
	query := `
		SELECT id, name, start_date, end_date, created_at FROM weeks
		ORDER BY start_date DESC, created_at DESC`

	if err := r.db.SelectContext(ctx, &weeks, query); err != nil {
		return nil, domain.NewStoreError("list weeks", err)
	}
	return weeks, nil
}

func (r *SQLStore) DeleteWeek(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM weeks WHERE id = ?`), id)
	if err != nil {
		return domain.NewStoreError("delete week", err)
	}
	return expectOneRow(res, "delete week", domain.ErrWeekNotFound)
}

func (r *SQLStore) CreateDays(ctx context.Context, days []*domain.Day) (retErr error) {
	if len(days) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.NewStoreError("begin days transaction", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if err := r.insertDays(ctx, tx, days); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStoreError("commit days transaction", err)
	}
	return nil
}

func (r *SQLStore) insertDays(ctx context.Context, ext sqlx.ExtContext, days []*domain.Day) error {
	for _, d := range days {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
	}

	query := `
		INSERT INTO days (id, week_id, date, is_completed)
		VALUES (:id, :week_id, :date, :is_completed)`

	if _, err := sqlx.NamedExecContext(ctx, ext, query, days); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrWeekNotFound
		}
		if isUniqueViolation(err) {
			return domain.NewStoreError("insert days", fmt.Errorf("%w: %v", errDuplicateDay, err))
		}
		return domain.NewStoreError("insert days", err)
	}
	return nil
}

func (r *SQLStore) GetDay(ctx context.Context, id string) (*domain.Day, error) {
	var day domain.Day
	query := r.db.Rebind(`SELECT id, week_id, date, is_completed FROM days WHERE id = ?`)

	if err := r.db.GetContext(ctx, &day, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDayNotFound
		}
		return nil, domain.NewStoreError("get day", err)
	}
	return &day, nil
}

type habitStatusRow struct {
	ID     string `db:"id"`
	DayID  string `db:"day_id"`
	IsDone bool   `db:"is_done"`
}

func (r *SQLStore) ListDaySummaries(ctx context.Context, weekID string) ([]domain.DaySummary, error) {
	var days []domain.Day
	daysQuery := r.db.Rebind(`
		SELECT id, week_id, date, is_completed FROM days
		WHERE week_id = ?
		ORDER BY date ASC`)

	if err := r.db.SelectContext(ctx, &days, daysQuery, weekID); err != nil {
		return nil, domain.NewStoreError("list days", err)
	}

	var rows []habitStatusRow
	habitsQuery := r.db.Rebind(`
		SELECT h.id, h.day_id, h.is_done FROM habits h
		JOIN days d ON d.id = h.day_id
		WHERE d.week_id = ?
		ORDER BY h.created_at ASC, h.id ASC`)

	if err := r.db.SelectContext(ctx, &rows, habitsQuery, weekID); err != nil {
		return nil, domain.NewStoreError("list day habits", err)
	}

	byDay := make(map[string][]domain.HabitStatus, len(days))
	for _, row := range rows {
		byDay[row.DayID] = append(byDay[row.DayID], domain.HabitStatus{ID: row.ID, IsDone: row.IsDone})
	}

	summaries := make([]domain.DaySummary, 0, len(days))
	for _, d := range days {
		habits := byDay[d.ID]
		if habits == nil {
			habits = []domain.HabitStatus{}
		}
		summaries = append(summaries, domain.DaySummary{Day: d, Habits: habits})
	}
	return summaries, nil
}

func (r *SQLStore) SetDayCompleted(ctx context.Context, id string, completed bool) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE days SET is_completed = ? WHERE id = ?`), completed, id)
	if err != nil {
		return domain.NewStoreError("update day", err)
	}
	return expectOneRow(res, "update day", domain.ErrDayNotFound)
}

func (r *SQLStore) DeleteDay(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM days WHERE id = ?`), id)
	if err != nil {
		return domain.NewStoreError("delete day", err)
	}
	return expectOneRow(res, "delete day", domain.ErrDayNotFound)
}

func (r *SQLStore) CreateHabit(ctx context.Context, habit *domain.Habit) error {
	if habit.ID == "" {
		habit.ID = uuid.NewString()
	}
	habit.CreatedAt = r.now()

	query := `
		INSERT INTO habits (id, day_id, name, is_done, created_at)
		VALUES (:id, :day_id, :name, :is_done, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, habit); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrDayNotFound
		}
		return domain.NewStoreError("insert habit", err)
	}
	return nil
}

func (r *SQLStore) GetHabit(ctx context.Context, id string) (*domain.Habit, error) {
	var habit domain.Habit
	query := r.db.Rebind(`SELECT id, day_id, name, is_done, created_at FROM habits WHERE id = ?`)

	if err := r.db.GetContext(ctx, &habit, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, domain.NewStoreError("get habit", err)
	}
	return &habit, nil
}

func (r *SQLStore) ListHabitsByDay(ctx context.Context, dayID string) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}
	query := r.db.Rebind(`
		SELECT id, day_id, name, is_done, created_at FROM habits
		WHERE day_id = ?
		ORDER BY created_at ASC, id ASC`)

	if err := r.db.SelectContext(ctx, &habits, query, dayID); err != nil {
		return nil, domain.NewStoreError("list habits", err)
	}
	return habits, nil
}

func (r *SQLStore) SetHabitDone(ctx context.Context, id string, done bool) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE habits SET is_done = ? WHERE id = ?`), done, id)
	if err != nil {
		return domain.NewStoreError("update habit status", err)
	}
	return expectOneRow(res, "update habit status", domain.ErrHabitNotFound)
}

func (r *SQLStore) RenameHabit(ctx context.Context, id string, name string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE habits SET name = ? WHERE id = ?`), name, id)
	if err != nil {
		return domain.NewStoreError("rename habit", err)
	}
	return expectOneRow(res, "rename habit", domain.ErrHabitNotFound)
}

func (r *SQLStore) UpdateHabit(ctx context.Context, id string, patch domain.HabitPatch) error {
	if patch.IsEmpty() {
		return domain.ErrEmptyUpdate
	}

	var sets []string
	var args []interface{}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.IsDone != nil {
		sets = append(sets, "is_done = ?")
		args = append(args, *patch.IsDone)
	}
	args = append(args, id)

	query := r.db.Rebind(`UPDATE habits SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.NewStoreError("update habit", err)
	}
	return expectOneRow(res, "update habit", domain.ErrHabitNotFound)
}

func (r *SQLStore) DeleteHabit(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM habits WHERE id = ?`), id)
	if err != nil {
		return domain.NewStoreError("delete habit", err)
	}
	return expectOneRow(res, "delete habit", domain.ErrHabitNotFound)
}

func expectOneRow(res sql.Result, op string, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.NewStoreError(op, err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
