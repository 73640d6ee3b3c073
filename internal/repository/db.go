package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	uniqueViolationCode = "23505"
	invalidTextCode     = "22P02"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// IsUniqueViolation reports whether err is a PostgreSQL unique violation and
// returns the name of the offending constraint.
func IsUniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return pqErr.Constraint, true
	}
	return "", false
}

// IsInvalidID reports whether err is PostgreSQL rejecting a malformed uuid
// literal. Such an id can never match a row.
func IsInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == invalidTextCode
}

func exists(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (bool, error) {
	var found int
	if err := sqlx.GetContext(ctx, q, &found, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) || IsInvalidID(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func existsExcluding(ctx context.Context, q sqlx.QueryerContext, table, column, value, excludeID string) (bool, error) {
	query := "SELECT 1 FROM " + table + " WHERE " + column + " = $1"
	args := []interface{}{value}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	return exists(ctx, q, query, args...)
}

// affectedOne converts a zero-row write into sql.ErrNoRows.
func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func count(ctx context.Context, q sqlx.QueryerContext, table string) (int64, error) {
	var total int64
	if err := sqlx.GetContext(ctx, q, &total, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, err
	}
	return total, nil
}
