package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func dialectOf(driverName string) dialect {
	switch driverName {
	case "pgx", "postgres":
		return dialectPostgres
	default:
		return dialectSQLite
	}
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS weeks (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		start_date DATE NOT NULL,
		end_date   DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (start_date <= end_date)
	)`,
	`CREATE TABLE IF NOT EXISTS days (
		id           TEXT PRIMARY KEY,
		week_id      TEXT NOT NULL REFERENCES weeks(id) ON DELETE CASCADE,
		date         DATE NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE (week_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS habits (
		id         TEXT PRIMARY KEY,
		day_id     TEXT NOT NULL REFERENCES days(id) ON DELETE CASCADE,
		name       TEXT NOT NULL CHECK (length(trim(name)) > 0),
		is_done    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_weeks_start_date ON weeks (start_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_habits_day_created ON habits (day_id, created_at)`,
}

// SQLite keeps dates as TEXT so the driver hands back the canonical string.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS weeks (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		CHECK (start_date <= end_date)
	)`,
	`CREATE TABLE IF NOT EXISTS days (
		id           TEXT PRIMARY KEY,
		week_id      TEXT NOT NULL REFERENCES weeks(id) ON DELETE CASCADE,
		date         TEXT NOT NULL,
		is_completed INTEGER NOT NULL DEFAULT 0,
		UNIQUE (week_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS habits (
		id         TEXT PRIMARY KEY,
		day_id     TEXT NOT NULL REFERENCES days(id) ON DELETE CASCADE,
		name       TEXT NOT NULL CHECK (length(trim(name)) > 0),
		is_done    INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_weeks_start_date ON weeks (start_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_habits_day_created ON habits (day_id, created_at)`,
}

// Migrate creates the week, day and habit tables with cascading foreign keys.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := postgresSchema
	if dialectOf(db.DriverName()) == dialectSQLite {
		statements = sqliteSchema
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
