package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var errDuplicateDay = errors.New("a day with this date already exists in the week")

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// sqlState extracts the SQLSTATE from either Postgres driver.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func sqliteCode(err error) int {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()
	}
	return 0
}

// sqliteConstraint matches extended result codes, and falls back to the
// message when only the primary SQLITE_CONSTRAINT code is reported.
func sqliteConstraint(err error, extended int, marker string) bool {
	code := sqliteCode(err)
	if code == extended {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), marker)
}

func isForeignKeyViolation(err error) bool {
	return sqlState(err) == pgForeignKeyViolation ||
		sqliteConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY")
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == pgUniqueViolation ||
		sqliteConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE") ||
		sqliteConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, "PRIMARY KEY")
}
