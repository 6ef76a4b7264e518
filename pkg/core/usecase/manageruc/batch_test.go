// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package manageruc_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
	"github.com/momeni/db-manager/pkg/core/usecase/manageruc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newNonQueryBatch builds a batch with one non-query command per
// script.
func newNonQueryBatch(scripts ...string) *repo.Batch {
	b := repo.NewBatch()
	for _, s := range scripts {
		b.Add(repo.Command{Script: s})
	}
	return b
}

func TestExecuteBatchInOrder(t *testing.T) {
	conn := &fakeConn{}
	b, _ := newTestComposition(&fakeSchemaDB{version: 1}, conn)
	m, err := b.Build()
	require.NoError(t, err)

	batch := newNonQueryBatch("CREATE", "INSERT", "UPDATE")
	_, err = m.ExecuteBatch(
		context.Background(), batch, manageruc.BatchOptions{},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"CREATE", "INSERT", "UPDATE"}, conn.execd)
	assert.Empty(t, conn.txs, "no hard requirement, no ambient tx")
}

func TestExecuteBatchTxConflictBeforeConnection(t *testing.T) {
	b, pool := newTestComposition(&fakeSchemaDB{version: 1}, &fakeConn{})
	m, err := b.Build()
	require.NoError(t, err)

	batch := repo.NewBatch(
		repo.Command{Script: "A", Tx: model.TxRequired},
		repo.Command{Script: "B", Tx: model.TxDisallowed},
	)
	_, err = m.ExecuteBatch(
		context.Background(), batch, manageruc.BatchOptions{},
	)
	var tce *cerr.TxConflictError
	require.ErrorAs(t, err, &tce)
	assert.Zero(t, pool.borrows, "no connection for an invalid batch")
}

func TestExecuteBatchRequiredTxRollsBack(t *testing.T) {
	conn := &fakeConn{
		fail: map[string]error{"B": fmt.Errorf("constraint violation")},
	}
	b, _ := newTestComposition(&fakeSchemaDB{version: 1}, conn)
	m, err := b.Build()
	require.NoError(t, err)

	batch := repo.NewBatch(
		repo.Command{Script: "A", Tx: model.TxRequired},
		repo.Command{Script: "B"},
		repo.Command{Script: "C"},
	)
	_, err = m.ExecuteBatch(
		context.Background(), batch, manageruc.BatchOptions{},
	)
	var bce *cerr.BatchCommandError
	require.ErrorAs(t, err, &bce)
	assert.Equal(t, 1, bce.Index)
	assert.Equal(t, 1, bce.Completed)
	assert.True(t, bce.RolledBack)

	require.Len(t, conn.txs, 1)
	assert.True(t, conn.txs[0].rolledBack)
	assert.False(t, conn.txs[0].committed)
	assert.Equal(t, []string{"A"}, conn.execd, "C is never reached")
}

func TestExecuteBatchAutonomousCommandsRetainProgress(t *testing.T) {
	conn := &fakeConn{
		fail: map[string]error{"C": fmt.Errorf("table is missing")},
	}
	b, _ := newTestComposition(&fakeSchemaDB{version: 1}, conn)
	m, err := b.Build()
	require.NoError(t, err)

	batch := repo.NewBatch(
		repo.Command{Script: "A", Tx: model.TxDisallowed},
		repo.Command{Script: "B"},
		repo.Command{Script: "C"},
	)
	_, err = m.ExecuteBatch(
		context.Background(), batch, manageruc.BatchOptions{},
	)
	var bce *cerr.BatchCommandError
	require.ErrorAs(t, err, &bce)
	assert.Equal(t, 2, bce.Index)
	assert.Equal(t, 2, bce.Completed)
	assert.False(t, bce.RolledBack)
	assert.Equal(t, []string{"A", "B"}, conn.execd)
	assert.Empty(t, conn.txs)
}

func TestExecuteBatchResultCapture(t *testing.T) {
	conn := &fakeConn{
		results: map[string]fakeResult{
			"R1": {cols: []string{"a"}, rows: [][]any{{int64(1)}}},
			"R2": {
				cols: []string{"a", "b"},
				rows: [][]any{{int64(2), "x"}, {int64(3), "y"}},
			},
			"S": {cols: []string{"n"}, rows: [][]any{{int64(42)}}},
		},
	}
	b, _ := newTestComposition(&fakeSchemaDB{version: 1}, conn)
	m, err := b.Build()
	require.NoError(t, err)
	ctx := context.Background()
	opts := manageruc.BatchOptions{WantResult: true}

	// the last reader wins over later non-reader commands
	batch := repo.NewBatch(
		repo.Command{Script: "R1", Type: model.ExecReader},
		repo.Command{Script: "R2", Type: model.ExecReader},
		repo.Command{Script: "S", Type: model.ExecScalar},
	)
	result, err := m.ExecuteBatch(ctx, batch, opts)
	require.NoError(t, err)
	rs, ok := result.(*model.RowSet)
	require.True(t, ok, "result type %T", result)
	assert.Equal(t, []string{"a", "b"}, rs.Columns)
	assert.Equal(
		t, [][]any{{int64(2), "x"}, {int64(3), "y"}}, rs.Rows,
	)

	// without a reader, the last captured value wins
	batch = repo.NewBatch(
		repo.Command{Script: "S", Type: model.ExecScalar},
		repo.Command{Script: "A"},
	)
	result, err = m.ExecuteBatch(ctx, batch, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result, "affected rows of A")

	// a scalar over an empty result set captures nil
	conn.results["E"] = fakeResult{cols: []string{"n"}}
	batch = repo.NewBatch(
		repo.Command{Script: "S", Type: model.ExecScalar},
		repo.Command{Script: "E", Type: model.ExecScalar},
	)
	result, err = m.ExecuteBatch(ctx, batch, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result, "nil values are not captured")
}

func TestExecuteBatchCodeCommands(t *testing.T) {
	conn := &fakeConn{}
	b, _ := newTestComposition(&fakeSchemaDB{version: 1}, conn)
	m, err := b.Build()
	require.NoError(t, err)
	ctx := context.Background()

	var sawTx, sawParams bool
	code := func(
		ctx context.Context, q repo.Queryer, tx repo.Tx, ps []repo.Param,
	) (any, error) {
		sawTx = tx != nil
		sawParams = len(ps) == 1 && ps[0].Name == "who"
		if _, err := q.Exec(ctx, "FROM-CODE"); err != nil {
			return nil, err
		}
		return "done", nil
	}
	batch := repo.NewBatch(repo.Command{
		Code:   code,
		Tx:     model.TxRequired,
		Params: []repo.Param{{Name: "who", Value: "tester"}},
	})
	result, err := m.ExecuteBatch(
		ctx, batch, manageruc.BatchOptions{WantResult: true},
	)
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.True(t, sawTx, "ambient tx is passed to code commands")
	assert.True(t, sawParams)
	assert.Equal(t, []string{"FROM-CODE"}, conn.execd)
	require.Len(t, conn.txs, 1)
	assert.True(t, conn.txs[0].committed)
}

func TestExecuteNamedRoutesReadOnly(t *testing.T) {
	rwConn, roConn := &fakeConn{}, &fakeConn{}
	roPool := &fakePool{conn: roConn}
	b, _ := newTestComposition(&fakeSchemaDB{version: 1}, rwConn)
	b = b.WithReadOnlyPool(roPool).WithLocator(fakeLocator{
		"report": newNonQueryBatch("SELECT-REPORT"),
	})
	m, err := b.Build()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = m.ExecuteNamed(ctx, "report", manageruc.BatchOptions{
		ReadOnly: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT-REPORT"}, roConn.execd)
	assert.Empty(t, rwConn.execd)

	_, err = m.ExecuteNamed(ctx, "report", manageruc.BatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT-REPORT"}, rwConn.execd)

	_, err = m.ExecuteNamed(ctx, "missing", manageruc.BatchOptions{})
	var bnfe cerr.BatchNotFoundError
	assert.ErrorAs(t, err, &bnfe)
}

func TestRunBatchDefaultTxPolicy(t *testing.T) {
	conn := &fakeConn{}
	ctx := context.Background()
	batch := newNonQueryBatch("A", "B")

	_, err := manageruc.RunBatch(ctx, conn, batch, manageruc.RunOptions{
		DefaultTx: model.TxRequired,
	})
	require.NoError(t, err)
	require.Len(t, conn.txs, 1)
	assert.True(t, conn.txs[0].committed)

	conn = &fakeConn{}
	_, err = manageruc.RunBatch(ctx, conn, batch, manageruc.RunOptions{
		DefaultTx: model.TxDisallowed,
	})
	require.NoError(t, err)
	assert.Empty(t, conn.txs)
}
