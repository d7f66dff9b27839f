package testutil

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/phaseline/internal/db"
)

// FailOnNthExecUoW runs the real SQLite unit of work but makes the Nth
// ExecContext inside it return Err (counting from 1; reads are not
// counted). Saving a project writes the project row and then its revision
// row, so FailOn 2 fails after the first write has landed.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	execs := 0
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, execHook{DBTX: tx, before: func() error {
			execs++
			if execs == u.FailOn {
				return u.Err
			}
			return nil
		}})
	})
}

// execHook calls before ahead of every write and aborts it on error.
type execHook struct {
	db.DBTX
	before func() error
}

func (h execHook) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := h.before(); err != nil {
		return nil, err
	}
	return h.DBTX.ExecContext(ctx, query, args...)
}
