// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/repo"
	"gorm.io/gorm"
)

// Conn wraps a single-connection *gorm.DB instance, adapting it to
// the repo.Conn interface. It is unsafe for concurrent use.
type Conn struct {
	*gorm.DB
}

// Tx begins a transaction with the requested options, runs the f
// handler in its scope, and commits it if the handler returns without
// an error, rolling it back otherwise. A panicking handler causes a
// rollback too, reporting the panic value as an error.
func (c *Conn) Tx(
	ctx context.Context, opts repo.TxOptions, f repo.TxHandler,
) (err error) {
	txo := &sql.TxOptions{Isolation: sqlIsolation(opts.Isolation)}
	tx := c.DB.WithContext(ctx).Begin(txo)
	if err = tx.Error; err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = tx.Rollback().Error
			if err == nil {
				err = fmt.Errorf("panicked: %v", r)
				return
			}
			err = fmt.Errorf("panicked: %v, rollback: %w", r, err)
			return
		}
		if err != nil {
			if err2 := tx.Rollback().Error; err2 != nil {
				err = fmt.Errorf("handler: %w, rollback: %w", err, err2)
				return
			}
			err = fmt.Errorf("handler: %w", err)
			return
		}
		err = tx.Commit().Error
		if err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
	}()
	tt := &Tx{DB: tx}
	return f(ctx, tt)
}

// Exec runs SQL statements with given args given ctx context.
// Number of affected rows and possible errors will be returned.
// If args is provided, sql will be prepared and args will be passed
// separately to the DBMS in order to prevent SQL injection.
// In this case, sql must contain exactly one statement.
// In absence of args, sql may contain multiple semi-colon separated
// statements too.
//
// Parameters in sql should be numbered like $1, $2, etc. as they
// are supported by the PostgreSQL wire protocol natively.
// This implementation additionally supports the ? and @name parameter
// placeholders using the GORM framework.
func (c *Conn) Exec(
	ctx context.Context, sql string, args ...any,
) (int64, error) {
	tt := c.DB.WithContext(ctx).Exec(sql, args...)
	if err := tt.Error; err != nil {
		return 0, err
	}
	return tt.RowsAffected, nil
}

// Query runs SQL statement with given args given ctx context.
// The result set is returned as the repo.Rows interface, while errors
// are returned as the second return value (if any).
// The Query or Exec may not be called again until the repo.Rows is
// closed since only one ongoing statement may be used on each
// connection.
func (c *Conn) Query(
	ctx context.Context, sql string, args ...any,
) (repo.Rows, error) {
	rows, err := c.DB.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

// IsConn method prevents a non-Conn object (such as a Tx) to
// mistakenly implement the Conn interface.
func (c *Conn) IsConn() {
}

// GORM returns the embedded *gorm.DB instance, configuring it
// to operate on the given ctx context (in a gorm.Session).
func (c *Conn) GORM(ctx context.Context) *gorm.DB {
	return c.DB.WithContext(ctx)
}
