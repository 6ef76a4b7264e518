// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package vertab_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/momeni/db-manager/pkg/adapter/db/sqlite"
	"github.com/momeni/db-manager/pkg/adapter/locator/memloc"
	"github.com/momeni/db-manager/pkg/adapter/vertab"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool opens a fresh temporary SQLite database, so the version
// table semantics are verified against a real engine.
func newTestPool(t *testing.T) *sqlite.Pool {
	t.Helper()
	ctx := context.Background()
	p, err := sqlite.NewPool(
		ctx, filepath.Join(t.TempDir(), "vertab.db"),
	)
	require.NoError(t, err, "opening temporary sqlite database")
	t.Cleanup(func() {
		assert.NoError(t, p.Close())
	})
	return p
}

// detect borrows one connection and runs the d detector with it.
func detect(
	t *testing.T, p *sqlite.Pool, d *vertab.Detector,
) (model.Version, model.DetectOutcome, error) {
	t.Helper()
	var (
		v       model.Version
		outcome model.DetectOutcome
		derr    error
	)
	err := p.Conn(
		context.Background(),
		func(ctx context.Context, c repo.Conn) error {
			v, outcome, derr = d.Detect(ctx, c)
			return nil
		},
	)
	require.NoError(t, err)
	return v, outcome, derr
}

// exec borrows one connection and runs one statement with it.
func exec(t *testing.T, p *sqlite.Pool, sql string, args ...any) {
	t.Helper()
	err := p.Conn(
		context.Background(),
		func(ctx context.Context, c repo.Conn) error {
			_, err := c.Exec(ctx, sql, args...)
			return err
		},
	)
	require.NoError(t, err, "running %q", sql)
}

func TestDetectAbsentDatabase(t *testing.T) {
	p := newTestPool(t)
	d := vertab.NewDetector("")

	v, outcome, err := detect(t, p, d)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeDatabaseAbsent, outcome)
	assert.Equal(t, model.VersionNotCreated, v)
}

func TestDetectKnownVersion(t *testing.T) {
	p := newTestPool(t)
	exec(t, p, "CREATE TABLE schema_version (version BIGINT NOT NULL)")
	exec(t, p, "INSERT INTO schema_version (version) VALUES (3)")
	d := vertab.NewDetector("")

	v, outcome, err := detect(t, p, d)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeVersionKnown, outcome)
	assert.Equal(t, model.Version(3), v)
}

func TestDetectInconclusiveShapes(t *testing.T) {
	tests := []struct {
		name string
		prep []string
	}{
		{
			"empty version table",
			nil,
		},
		{
			"multiple version rows",
			[]string{
				"INSERT INTO vt (version) VALUES (1)",
				"INSERT INTO vt (version) VALUES (2)",
			},
		},
		{
			"non-positive version",
			[]string{"INSERT INTO vt (version) VALUES (0)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPool(t)
			exec(t, p, "CREATE TABLE vt (version BIGINT NOT NULL)")
			for _, sql := range tt.prep {
				exec(t, p, sql)
			}
			d := vertab.NewDetector("vt")

			v, outcome, err := detect(t, p, d)
			assert.Error(t, err)
			assert.Equal(t, model.OutcomeInconclusive, outcome)
			assert.Equal(t, model.VersionUnknown, v)
		})
	}
}

func TestUpgraderWalksOneStepAtATime(t *testing.T) {
	p := newTestPool(t)
	loc := memloc.New().
		Set("upgrade_to_1", repo.NewBatch(repo.Command{
			Script: "CREATE TABLE cars (cid INTEGER PRIMARY KEY," +
				" name TEXT NOT NULL)",
		})).
		Set("upgrade_to_2", repo.NewBatch(repo.Command{
			Script: "ALTER TABLE cars ADD COLUMN color TEXT",
		}))
	rng := model.VersionRange{Min: 1, Max: 2}
	u := vertab.NewUpgrader("", rng, loc, "")
	d := vertab.NewDetector("")
	assert.Equal(t, rng, u.Range())

	ctx := context.Background()
	err := p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		if err := u.Upgrade(ctx, c, 0); err != nil {
			return err
		}
		v, outcome, err := d.Detect(ctx, c)
		require.NoError(t, err)
		require.Equal(t, model.OutcomeVersionKnown, outcome)
		require.Equal(t, model.Version(1), v)

		if err := u.Upgrade(ctx, c, 1); err != nil {
			return err
		}
		v, outcome, err = d.Detect(ctx, c)
		require.NoError(t, err)
		require.Equal(t, model.OutcomeVersionKnown, outcome)
		require.Equal(t, model.Version(2), v)
		return nil
	})
	require.NoError(t, err)
}

func TestUpgraderReportsMissingStepBatch(t *testing.T) {
	p := newTestPool(t)
	u := vertab.NewUpgrader(
		"", model.VersionRange{Min: 1, Max: 2}, memloc.New(), "",
	)
	ctx := context.Background()
	err := p.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		return u.Upgrade(ctx, c, 0)
	})
	assert.ErrorContains(t, err, "upgrade_to_1")
}
