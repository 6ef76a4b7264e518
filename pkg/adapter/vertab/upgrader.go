// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package vertab

import (
	"context"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
	"github.com/momeni/db-manager/pkg/core/usecase/manageruc"
)

// DefaultBatchPattern is the fmt pattern which forms the upgrade batch
// names from the target version, when the composition does not
// configure another one.
const DefaultBatchPattern = "upgrade_to_%d"

// Upgrader advances a database one schema version per call by running
// a named batch for each step and recording the reached version in
// the version table afterwards. It implements the repo.VersionUpgrader
// interface.
type Upgrader struct {
	table   string
	vrange  model.VersionRange
	locator repo.Locator
	pattern string
}

// NewUpgrader instantiates an Upgrader for the given supported
// versions range, resolving the per-step batches from the l locator.
// The table and pattern arguments fall back to DefaultTable and
// DefaultBatchPattern when empty.
func NewUpgrader(
	table string,
	vrange model.VersionRange,
	l repo.Locator,
	pattern string,
) *Upgrader {
	if table == "" {
		table = DefaultTable
	}
	if pattern == "" {
		pattern = DefaultBatchPattern
	}
	return &Upgrader{
		table:   table,
		vrange:  vrange,
		locator: l,
		pattern: pattern,
	}
}

// Range returns the inclusive range of versions which this upgrader
// can walk a database through.
func (u *Upgrader) Range() model.VersionRange {
	return u.vrange
}

// Upgrade takes the database from the `from` version to the `from+1`
// version, locating and running the step batch in one transaction and
// recording the new version in the version table. The first step,
// taking a not-created database to version one, expects its batch to
// create the base schema; the version table itself is created by this
// method.
func (u *Upgrader) Upgrade(
	ctx context.Context, c repo.Conn, from model.Version,
) error {
	target := from + 1
	name := fmt.Sprintf(u.pattern, target)
	b, err := u.locator.Locate(name)
	if err != nil {
		return fmt.Errorf("locating %q batch: %w", name, err)
	}
	_, err = manageruc.RunBatch(ctx, c, b, manageruc.RunOptions{
		DefaultTx: model.TxRequired,
	})
	if err != nil {
		return fmt.Errorf("running %q batch: %w", name, err)
	}
	return u.record(ctx, c, from, target)
}

// record persists the target version in the version table, creating
// the table first when the database was not created before this step.
func (u *Upgrader) record(
	ctx context.Context, c repo.Conn, from, target model.Version,
) error {
	if from == model.VersionNotCreated {
		_, err := c.Exec(
			ctx,
			"CREATE TABLE IF NOT EXISTS "+u.table+
				" (version BIGINT NOT NULL)",
		)
		if err != nil {
			return fmt.Errorf("creating %s table: %w", u.table, err)
		}
		if _, err = c.Exec(ctx, "DELETE FROM "+u.table); err != nil {
			return fmt.Errorf("clearing %s table: %w", u.table, err)
		}
		_, err = c.Exec(
			ctx,
			"INSERT INTO "+u.table+" (version) VALUES (?)",
			int64(target),
		)
		if err != nil {
			return fmt.Errorf("inserting version row: %w", err)
		}
		return nil
	}
	n, err := c.Exec(
		ctx,
		"UPDATE "+u.table+" SET version = ?",
		int64(target),
	)
	if err != nil {
		return fmt.Errorf("updating version row: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("updated %d version rows instead of one", n)
	}
	return nil
}
