// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
)

// Conn wraps a single *sql.Conn connection, adapting it to the
// repo.Conn interface. It is unsafe for concurrent use.
type Conn struct {
	conn *sql.Conn
}

// Tx begins a transaction, runs the f handler in its scope, and
// commits it if the handler returns without an error, rolling it back
// otherwise. A panicking handler causes a rollback too, reporting the
// panic value as an error. Isolation levels other than the default
// are requested as serializable, which is the only level SQLite
// implements.
func (c *Conn) Tx(
	ctx context.Context, opts repo.TxOptions, f repo.TxHandler,
) (err error) {
	txo := &sql.TxOptions{}
	if opts.Isolation != model.IsolationDefault {
		txo.Isolation = sql.LevelSerializable
	}
	tx, err := c.conn.BeginTx(ctx, txo)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = tx.Rollback()
			if err == nil {
				err = fmt.Errorf("panicked: %v", r)
				return
			}
			err = fmt.Errorf("panicked: %v, rollback: %w", r, err)
			return
		}
		if err != nil {
			if err2 := tx.Rollback(); err2 != nil {
				err = fmt.Errorf("handler: %w, rollback: %w", err, err2)
				return
			}
			err = fmt.Errorf("handler: %w", err)
			return
		}
		err = tx.Commit()
		if err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()
	tt := &Tx{tx: tx}
	return f(ctx, tt)
}

// Exec runs the sql statement with the given args and returns the
// number of affected rows. Parameters are placeholded with ? marks as
// the SQLite driver accepts them natively.
func (c *Conn) Exec(
	ctx context.Context, query string, args ...any,
) (int64, error) {
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Query runs the sql query with the given args and returns its result
// set. The repo.Rows must be closed before another statement may run
// on this connection.
func (c *Conn) Query(
	ctx context.Context, query string, args ...any,
) (repo.Rows, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

// IsConn method prevents a non-Conn object (such as a Tx) to
// mistakenly implement the Conn interface.
func (c *Conn) IsConn() {
}

// Tx represents a database transaction over one SQLite connection.
// It is unsafe to be used concurrently.
type Tx struct {
	tx *sql.Tx
}

// Exec runs the sql statement with the given args in the transaction
// scope and returns the number of affected rows.
func (tx *Tx) Exec(
	ctx context.Context, query string, args ...any,
) (int64, error) {
	res, err := tx.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Query runs the sql query with the given args in the transaction
// scope and returns its result set.
func (tx *Tx) Query(
	ctx context.Context, query string, args ...any,
) (repo.Rows, error) {
	rows, err := tx.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

// IsTx method prevents a non-Tx object (such as a Conn) to
// mistakenly implement the Tx interface.
func (tx *Tx) IsTx() {
}
