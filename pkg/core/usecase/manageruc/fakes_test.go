// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package manageruc_test

import (
	"context"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
)

// fakePool hands out one fake connection, or fails all borrowing
// attempts with connErr.
type fakePool struct {
	conn    *fakeConn
	connErr error
	borrows int
	closed  bool
}

func (p *fakePool) Conn(ctx context.Context, f repo.ConnHandler) error {
	if p.connErr != nil {
		return p.connErr
	}
	p.borrows++
	return f(ctx, p.conn)
}

func (p *fakePool) Close() error {
	p.closed = true
	return nil
}

// txState records the outcome of one fake transaction.
type txState struct {
	committed  bool
	rolledBack bool
}

// fakeConn scripts its statement outcomes by the exact statement text:
// statements found in fail return their error, statements found in
// results return a copy of their canned row set, and anything else
// succeeds with one affected row. All successfully started statements
// are journaled in execd, in execution order.
type fakeConn struct {
	execd   []string
	fail    map[string]error
	results map[string]fakeResult
	txs     []*txState
}

// fakeResult is a canned query result.
type fakeResult struct {
	cols []string
	rows [][]any
}

func (c *fakeConn) run(sql string) error {
	if err := c.fail[sql]; err != nil {
		return err
	}
	c.execd = append(c.execd, sql)
	return nil
}

func (c *fakeConn) Exec(
	ctx context.Context, sql string, args ...any,
) (int64, error) {
	if err := c.run(sql); err != nil {
		return 0, err
	}
	return 1, nil
}

func (c *fakeConn) Query(
	ctx context.Context, sql string, args ...any,
) (repo.Rows, error) {
	if err := c.run(sql); err != nil {
		return nil, err
	}
	r, ok := c.results[sql]
	if !ok {
		r = fakeResult{cols: []string{"n"}, rows: [][]any{{int64(1)}}}
	}
	return &fakeRows{result: r}, nil
}

func (c *fakeConn) Tx(
	ctx context.Context, opts repo.TxOptions, f repo.TxHandler,
) error {
	st := &txState{}
	c.txs = append(c.txs, st)
	err := f(ctx, &fakeTx{c: c})
	if err != nil {
		st.rolledBack = true
		return err
	}
	st.committed = true
	return nil
}

func (c *fakeConn) IsConn() {
}

// fakeTx runs statements on the shared fake connection journal.
type fakeTx struct {
	c *fakeConn
}

func (t *fakeTx) Exec(
	ctx context.Context, sql string, args ...any,
) (int64, error) {
	return t.c.Exec(ctx, sql, args...)
}

func (t *fakeTx) Query(
	ctx context.Context, sql string, args ...any,
) (repo.Rows, error) {
	return t.c.Query(ctx, sql, args...)
}

func (t *fakeTx) IsTx() {
}

// fakeRows iterates a canned result.
type fakeRows struct {
	result fakeResult
	i      int
}

func (r *fakeRows) Close() {
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Next() bool {
	if r.i >= len(r.result.rows) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return fmt.Errorf("scan is not supported by fakeRows")
}

func (r *fakeRows) Values() ([]any, error) {
	return r.result.rows[r.i-1], nil
}

func (r *fakeRows) Columns() ([]string, error) {
	return r.result.cols, nil
}

// fakeSchemaDB emulates the version bookkeeping of a target database.
// A zero version stands for a not yet created database and the broken
// flag puts the bookkeeping in an uninterpretable shape.
type fakeSchemaDB struct {
	version model.Version
	broken  bool
}

// fakeDetector reports the fakeSchemaDB version.
type fakeDetector struct {
	db *fakeSchemaDB
}

func (d *fakeDetector) Detect(
	ctx context.Context, c repo.Conn,
) (model.Version, model.DetectOutcome, error) {
	switch {
	case d.db.broken:
		return model.VersionUnknown, model.OutcomeInconclusive,
			fmt.Errorf("mangled version bookkeeping")
	case d.db.version == model.VersionNotCreated:
		return model.VersionNotCreated,
			model.OutcomeDatabaseAbsent, nil
	}
	return d.db.version, model.OutcomeVersionKnown, nil
}

// fakeUpgrader bumps the fakeSchemaDB version one step at a time. A
// step starting from failAt fails without any effect and a step
// starting from skipAt bumps by two versions, emulating a defective
// upgrade script.
type fakeUpgrader struct {
	db     *fakeSchemaDB
	rng    model.VersionRange
	failAt model.Version
	skipAt model.Version
	steps  int
}

func (u *fakeUpgrader) Range() model.VersionRange {
	return u.rng
}

func (u *fakeUpgrader) Upgrade(
	ctx context.Context, c repo.Conn, from model.Version,
) error {
	u.steps++
	switch {
	case u.failAt != 0 && from == u.failAt:
		return fmt.Errorf("step batch failed")
	case u.skipAt != 0 && from == u.skipAt:
		u.db.version = from + 2
		return nil
	}
	u.db.version = from + 1
	return nil
}

// fakeLocator resolves batches from a plain map.
type fakeLocator map[string]*repo.Batch

func (l fakeLocator) Locate(name string) (*repo.Batch, error) {
	if b, ok := l[name]; ok {
		return b, nil
	}
	return nil, cerr.BatchNotFoundError(name)
}
