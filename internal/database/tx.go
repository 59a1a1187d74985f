package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is the query surface shared by *sql.DB and *sql.Tx. Repositories are
// written against it so the same code runs inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is an open transaction handle. Savepoint runs fn inside a nested scope:
// when fn fails only the writes made by fn are undone and the transaction
// stays usable.
type Tx interface {
	DBTX
	Savepoint(ctx context.Context, fn func() error) error
}

// Transactor opens transaction scopes
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// SavepointError means the savepoint machinery itself failed. The enclosing
// transaction can no longer be trusted and must be abandoned.
type SavepointError struct {
	Op  string
	Err error
}

func (e *SavepointError) Error() string {
	return fmt.Sprintf("savepoint %s: %v", e.Op, e.Err)
}

func (e *SavepointError) Unwrap() error {
	return e.Err
}

type transactor struct {
	db *sql.DB
}

// NewTransactor creates a Transactor over a connection pool
func NewTransactor(db *sql.DB) Transactor {
	return &transactor{db: db}
}

// WithTx commits when fn returns nil and rolls back on error or panic.
func (t *transactor) WithTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
			}
			return
		}
		if commitErr := sqlTx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	return fn(&tx{Tx: sqlTx})
}

type tx struct {
	*sql.Tx
	savepoints int
}

// Savepoint returns fn's error unchanged once the savepoint has been rolled
// back, or a *SavepointError if SAVEPOINT/RELEASE/ROLLBACK TO failed.
func (t *tx) Savepoint(ctx context.Context, fn func() error) error {
	t.savepoints++
	name := fmt.Sprintf("sp_%d", t.savepoints)

	if _, err := t.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return &SavepointError{Op: "create", Err: err}
	}

	if fnErr := fn(); fnErr != nil {
		if _, err := t.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
			return &SavepointError{Op: "rollback", Err: errors.Join(fnErr, err)}
		}
		if _, err := t.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
			return &SavepointError{Op: "release", Err: err}
		}
		return fnErr
	}

	if _, err := t.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return &SavepointError{Op: "release", Err: err}
	}
	return nil
}
