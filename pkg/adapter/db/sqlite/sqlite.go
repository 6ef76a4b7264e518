// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sqlite provides the SQLite engine adapter, realizing the
// repo.Pool, repo.Conn, and repo.Tx capability contracts over the
// database/sql package with the pure-Go modernc.org/sqlite driver.
// It keeps the lifecycle manager usable without a DBMS server, e.g.,
// for embedded deployments and tests.
//
// SQLite serializes writers and only supports the serializable
// isolation level; the requested repo.TxOptions isolation levels
// other than the default one are mapped to it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/repo"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Pool wraps a *sql.DB instance over one SQLite database file,
// adapting it to the repo.Pool interface.
type Pool struct {
	db *sql.DB
}

// NewPool opens the SQLite database addressed by the dsn (a file path
// or a file: URI) and verifies it with one ping. The pool is limited
// to one open connection as SQLite handles no write concurrency
// anyways and a single connection keeps the borrowed-connection
// semantics deterministic.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return &Pool{db: db}, nil
}

// Conn borrows the connection, runs the f handler with it, and
// releases it when the handler returns.
func (p *Pool) Conn(ctx context.Context, f repo.ConnHandler) error {
	c, err := p.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("borrowing connection: %w", err)
	}
	defer func() {
		_ = c.Close()
	}()
	return f(ctx, &Conn{conn: c})
}

// Close closes the pool and its underlying connection.
func (p *Pool) Close() error {
	return p.db.Close()
}
