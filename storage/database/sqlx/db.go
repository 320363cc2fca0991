// Package sqlxrepos implements the repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

// where accumulates AND-ed conditions written with `?` bindvars.
type where struct {
	clauses []string
	args    []interface{}
}

func (w *where) add(clause string, args ...interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// school scopes w to schoolID when set. It reports false when no row can match.
func (w *where) school(schoolID string) bool {
	if schoolID == "" {
		return true
	}
	if !isUUID(schoolID) {
		return false
	}
	w.add("school_id = ?", schoolID)
	return true
}

// dateRange adds the inclusive YYYY-MM-DD bounds on column.
func (w *where) dateRange(column, from, to string) {
	if from != "" {
		w.add(column+" >= ?", from)
	}
	if to != "" {
		w.add(column+" <= ?", to)
	}
}

// likePattern returns an ILIKE pattern matching s anywhere.
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// isUUID reports whether id can be looked up at all; anything else is simply not found.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func newID() string {
	return uuid.New().String()
}

func trapNoRowsErr(err, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// violatedConstraint returns the name of the constraint err violates, if any.
func violatedConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// selectAll runs query (`?` bindvars) and scans every row into a non-nil slice.
func selectAll[T any](ctx context.Context, db sqlx.ExtContext, query string, args ...interface{}) ([]T, error) {
	rows := make([]T, 0)
	if err := sqlx.SelectContext(ctx, db, &rows, db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func getOne[T any](ctx context.Context, db sqlx.ExtContext, notFound error, query string, args ...interface{}) (T, error) {
	var row T
	err := sqlx.GetContext(ctx, db, &row, db.Rebind(query), args...)
	return row, trapNoRowsErr(err, notFound)
}

func exec(ctx context.Context, db sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// execOne runs a write that must touch a row; notFound is returned otherwise.
func execOne(ctx context.Context, db sqlx.ExtContext, notFound error, query string, args ...interface{}) error {
	n, err := exec(ctx, db, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// namedExecOne is execOne with `:name` bindvars read from arg.
func namedExecOne(ctx context.Context, db sqlx.ExtContext, notFound error, query string, arg interface{}) error {
	q, args, err := db.BindNamed(query, arg)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// upsertReturning runs a named INSERT ... RETURNING and scans the returned columns into dest.
func upsertReturning(ctx context.Context, db sqlx.ExtContext, query string, arg interface{}, dest ...interface{}) error {
	q, args, err := db.BindNamed(query, arg)
	if err != nil {
		return err
	}
	return db.QueryRowxContext(ctx, q, args...).Scan(dest...)
}

// inTx runs fn within a transaction, committed when fn returns no error.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
