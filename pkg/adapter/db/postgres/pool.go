// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres provides the PostgreSQL engine adapter, realizing
// the repo.Pool, repo.Conn, and repo.Tx capability contracts over the
// GORM framework with its PostgreSQL driver (which uses pgx under the
// hood). The lifecycle manager core stays engine-agnostic, while this
// package binds it to an actual PostgreSQL DBMS server.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool wraps a *gorm.DB connection pool, adapting it to the repo.Pool
// interface.
type Pool struct {
	*gorm.DB
}

// NewPool opens a connection pool to the PostgreSQL server which is
// addressed by the url connection string and verifies it by borrowing
// one connection. The pool is configured with the GORM logger writing
// parameterized queries to the standard output at the warning level.
func NewPool(ctx context.Context, url string) (*Pool, error) {
	gdb, err := gorm.Open(postgres.Open(url), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	gdb = gdb.Session(&gorm.Session{
		Logger: logger.New(
			stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: false,
				Colorful:                  true,
				// Set to false in order to log with replaced vars
				ParameterizedQueries: true,
			}),
	})
	pool := &Pool{DB: gdb}
	err = pool.Conn(ctx, noOpConnHandler)
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return pool, nil
}

func noOpConnHandler(context.Context, repo.Conn) error {
	return nil
}

// Conn borrows a connection from the pool, runs the f handler with
// it, and releases it when the handler returns.
func (p *Pool) Conn(ctx context.Context, f repo.ConnHandler) error {
	return p.DB.WithContext(ctx).Connection(func(c *gorm.DB) error {
		cc := &Conn{DB: c}
		return f(ctx, cc)
	})
}

// Close closes the pool and its underlying idle connections.
func (p *Pool) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// sqlIsolation maps the engine-agnostic isolation levels to their
// database/sql counterparts.
func sqlIsolation(l model.IsolationLevel) sql.IsolationLevel {
	switch l {
	case model.IsolationReadUncommitted:
		return sql.LevelReadUncommitted
	case model.IsolationReadCommitted:
		return sql.LevelReadCommitted
	case model.IsolationRepeatableRead:
		return sql.LevelRepeatableRead
	case model.IsolationSerializable:
		return sql.LevelSerializable
	}
	return sql.LevelDefault
}
