// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package vertab provides the version-table collaborators: a
// repo.VersionDetector which reads the current schema version from a
// single-row table and a repo.VersionUpgrader which advances a
// database one version at a time by running named upgrade batches and
// recording the reached version in that same table.
//
// The table holds exactly one row with one version column while the
// database is in a consistent state. The first upgrade step creates
// the table, so a database without it is reported as not created yet.
package vertab

import (
	"context"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
)

// DefaultTable is the version table name which is used when the
// composition does not configure another one.
const DefaultTable = "schema_version"

// Detector reads the schema version from a single-row version table.
// It implements the repo.VersionDetector interface.
type Detector struct {
	table string
}

// NewDetector instantiates a Detector reading from the given table,
// falling back to DefaultTable for an empty name.
func NewDetector(table string) *Detector {
	if table == "" {
		table = DefaultTable
	}
	return &Detector{table: table}
}

// Detect queries the version table and classifies the result. A
// failing table query on an otherwise responsive connection indicates
// an uninitialized database and reports the not-created outcome. A
// table with zero rows, multiple rows, or a non-positive version is
// reported as inconclusive since it indicates a half-done operation
// or a foreign schema.
func (d *Detector) Detect(ctx context.Context, c repo.Conn) (
	model.Version, model.DetectOutcome, error,
) {
	rows, err := c.Query(ctx, "SELECT version FROM "+d.table)
	if err != nil {
		if perr := probe(ctx, c); perr != nil {
			return model.VersionUnknown,
				model.OutcomeInconclusive,
				fmt.Errorf("querying %s table: %w", d.table, err)
		}
		return model.VersionNotCreated, model.OutcomeDatabaseAbsent, nil
	}
	defer rows.Close()
	count := 0
	v := model.VersionUnknown
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return model.VersionUnknown,
				model.OutcomeInconclusive,
				fmt.Errorf("reading version row: %w", err)
		}
		count++
		if count > 1 {
			continue
		}
		if len(vals) != 1 {
			return model.VersionUnknown,
				model.OutcomeInconclusive,
				fmt.Errorf(
					"version row has %d columns", len(vals),
				)
		}
		ver, ok := asVersion(vals[0])
		if !ok {
			return model.VersionUnknown,
				model.OutcomeInconclusive,
				fmt.Errorf(
					"version column has %T type", vals[0],
				)
		}
		v = ver
	}
	if err := rows.Err(); err != nil {
		return model.VersionUnknown,
			model.OutcomeInconclusive,
			fmt.Errorf("iterating version rows: %w", err)
	}
	if count != 1 {
		return model.VersionUnknown,
			model.OutcomeInconclusive,
			fmt.Errorf(
				"%s table has %d rows instead of one",
				d.table, count,
			)
	}
	if v <= model.VersionNotCreated {
		return model.VersionUnknown,
			model.OutcomeInconclusive,
			fmt.Errorf("non-positive version: %d", v)
	}
	return v, model.OutcomeVersionKnown, nil
}

// probe runs a trivial query in order to distinguish a missing table
// from a dead connection.
func probe(ctx context.Context, c repo.Conn) error {
	rows, err := c.Query(ctx, "SELECT 1")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

// asVersion converts a scanned version column value, accepting the
// integral types which the supported drivers may report.
func asVersion(val any) (model.Version, bool) {
	switch v := val.(type) {
	case int64:
		return model.Version(v), true
	case int32:
		return model.Version(v), true
	case int:
		return model.Version(v), true
	case uint64:
		return model.Version(v), true
	}
	return model.VersionUnknown, false
}
