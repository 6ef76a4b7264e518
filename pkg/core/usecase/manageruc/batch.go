// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package manageruc

import (
	"context"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/log"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
)

// BatchOptions controls one ExecuteBatch call.
type BatchOptions struct {
	// WantResult asks for the batch result value: the fully
	// materialized row set of the last reader command if the batch
	// has any, or the last captured command value otherwise.
	WantResult bool

	// ReadOnly marks the batch as read-only, routing it to the
	// read-only connection pool. When the manager is composed without
	// read-only connection support, the normal read-write pool serves
	// read-only callers too.
	ReadOnly bool
}

// RunOptions controls one RunBatch call on an existing connection.
type RunOptions struct {
	// WantResult asks for the batch result value.
	WantResult bool

	// DefaultTx is the transaction policy which applies when the
	// batch commands merge to no hard requirement. A
	// model.TxDontCare value falls back to model.TxDisallowed.
	DefaultTx model.TxRequirement

	// DefaultIsolation is the ambient transaction isolation level
	// which applies when no batch command overrides it.
	DefaultIsolation model.IsolationLevel
}

// ExecuteBatch validates and executes the b batch against the target
// database. The batch is validated (including the transaction
// requirements conflict check) before any connection is acquired.
// The resolved transaction policy decides the execution shape: under
// model.TxRequired, one ambient transaction spans all commands and is
// committed only if every command succeeds; under model.TxDisallowed,
// commands run autonomously and already-executed commands stay
// committed when a later one fails. A merge without hard requirements
// applies the manager configured default policy.
//
// Commands execute strictly in order. A failing command surfaces as a
// *cerr.BatchCommandError telling how many commands completed and
// whether their effects were rolled back. The returned result is nil
// unless opts.WantResult is set.
func (m *Manager) ExecuteBatch(
	ctx context.Context, b *repo.Batch, opts BatchOptions,
) (any, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validating batch: %w", err)
	}
	pool := m.pool
	if opts.ReadOnly && m.ropool != nil {
		pool = m.ropool
	}
	var result any
	err := pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		r, err := RunBatch(ctx, c, b, RunOptions{
			WantResult:       opts.WantResult,
			DefaultTx:        m.txPolicy,
			DefaultIsolation: m.isolation,
		})
		result = r
		return err
	})
	if err != nil {
		log.Warn(ctx, "batch execution failed", log.Err("error", err))
		return nil, err
	}
	return result, nil
}

// ExecuteNamed resolves the named batch through the locator registry
// and executes it like ExecuteBatch.
func (m *Manager) ExecuteNamed(
	ctx context.Context, name string, opts BatchOptions,
) (any, error) {
	b, err := m.locator.Locate(name)
	if err != nil {
		return nil, fmt.Errorf("locating %q batch: %w", name, err)
	}
	return m.ExecuteBatch(ctx, b, opts)
}

// RunBatch executes the b batch on the already borrowed c connection.
// It implements the same validation and transaction semantics as
// ExecuteBatch and exists as a separate entry point, so version
// upgraders and processors may run batches on the connection of an
// ongoing operation instead of borrowing a second one.
func RunBatch(
	ctx context.Context,
	c repo.Conn,
	b *repo.Batch,
	opts RunOptions,
) (any, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validating batch: %w", err)
	}
	policy, err := b.ResolveTx()
	if err != nil {
		return nil, err
	}
	if policy == model.TxDontCare {
		policy = opts.DefaultTx
	}
	if policy != model.TxRequired {
		return runCommands(ctx, c, nil, b, opts.WantResult)
	}
	txo := repo.TxOptions{Isolation: b.Isolation(opts.DefaultIsolation)}
	var result any
	err = c.Tx(ctx, txo, func(ctx context.Context, tx repo.Tx) error {
		r, err := runCommands(ctx, tx, tx, b, opts.WantResult)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// runCommands executes the batch commands in order on the q queryer.
// The tx value is non-nil exactly when an ambient transaction spans
// the batch (in that case q and tx are the same transaction). The
// returned result follows the capture rules of ExecuteBatch.
func runCommands(
	ctx context.Context,
	q repo.Queryer,
	tx repo.Tx,
	b *repo.Batch,
	want bool,
) (any, error) {
	var (
		last       any
		lastReader any
		hasReader  bool
	)
	for i := 0; i < b.Len(); i++ {
		cmd := b.Command(i)
		val, err := runCommand(ctx, q, tx, cmd)
		if err != nil {
			return nil, &cerr.BatchCommandError{
				Index:      i,
				Completed:  i,
				RolledBack: tx != nil,
				Err:        err,
			}
		}
		if !want {
			continue
		}
		if cmd.Script != "" && cmd.Type == model.ExecReader {
			lastReader, hasReader = val, true
		}
		if val != nil {
			last = val
		}
	}
	if !want {
		return nil, nil
	}
	if hasReader {
		return lastReader, nil
	}
	return last, nil
}

// runCommand executes one command and returns its captured value: the
// affected rows count for a non-query script, the first column of the
// first row for a scalar script (nil when the query yields no rows),
// the materialized model.RowSet for a reader script, or the callback
// returned value for a code command.
func runCommand(
	ctx context.Context,
	q repo.Queryer,
	tx repo.Tx,
	cmd *repo.Command,
) (any, error) {
	if cmd.Code != nil {
		return cmd.Code(ctx, q, tx, cmd.Params)
	}
	switch cmd.Type {
	case model.ExecScalar:
		return queryScalar(ctx, q, cmd)
	case model.ExecReader:
		return queryRowSet(ctx, q, cmd)
	}
	count, err := q.Exec(ctx, cmd.Script, cmd.Args()...)
	if err != nil {
		return nil, err
	}
	return count, nil
}

// queryScalar runs the command script as a query and returns the
// first column of its first row, or nil for an empty result set.
func queryScalar(
	ctx context.Context, q repo.Queryer, cmd *repo.Command,
) (any, error) {
	rows, err := q.Query(ctx, cmd.Script, cmd.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var val any
	if rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading scalar row: %w", err)
		}
		if len(vals) > 0 {
			val = vals[0]
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return val, nil
}

// queryRowSet runs the command script as a query and materializes all
// of its rows before returning, so the shared connection is free for
// the next command of the batch.
func queryRowSet(
	ctx context.Context, q repo.Queryer, cmd *repo.Command,
) (*model.RowSet, error) {
	rows, err := q.Query(ctx, cmd.Script, cmd.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading column names: %w", err)
	}
	rs := &model.RowSet{Columns: cols}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf(
				"reading row %d: %w", len(rs.Rows), err,
			)
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}
