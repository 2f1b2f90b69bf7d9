package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// Conn returns a gorm handle bound to ctx. When tx is non-nil every statement
// issued through the handle runs inside that transaction, so services can
// keep opening transactions on *sql.DB while repositories stay on gorm.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	if tx == nil {
		return db.WithContext(ctx)
	}

	txDB := db.Session(&gorm.Session{Context: ctx, NewDB: true})
	txDB.Statement.ConnPool = tx
	return txDB
}

// IsUniqueViolation reports whether err is a postgres unique violation on
// constraint. An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode &&
			(constraint == "" || pgErr.ConstraintName == constraint)
	}

	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "duplicate key value") {
		return false
	}
	return constraint == "" || strings.Contains(msg, constraint)
}
