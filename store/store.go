// Package store holds the SQL behind every resource. Functions take a
// Querier so they run the same against the pool or inside a transaction.
package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InTx runs fn in a transaction, committing only when fn succeeds.
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	err = fn(tx)
	if err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "db.commit")
}

func exists(ctx context.Context, q Querier, table string, id int) (bool, error) {
	var found bool
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return found, errors.Wrapf(err, "db.exists.%s", table)
}

// deleteByID removes one row, reporting model.ErrNotFound when there was none.
func deleteByID(ctx context.Context, q Querier, table string, id int) error {
	res, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return errors.Wrapf(err, "db.delete_%s", table)
	}
	return verifyAffected(res, "db.delete_"+table+".verify")
}
