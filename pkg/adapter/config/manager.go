// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/momeni/db-manager/pkg/adapter/db/postgres"
	"github.com/momeni/db-manager/pkg/adapter/db/sqlite"
	"github.com/momeni/db-manager/pkg/adapter/locator/scriptfs"
	"github.com/momeni/db-manager/pkg/adapter/process"
	"github.com/momeni/db-manager/pkg/adapter/vertab"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
	"github.com/momeni/db-manager/pkg/core/usecase/manageruc"
)

// NewManager composes a lifecycle manager from the c settings,
// opening the configured connection pools and registering the
// collaborators with the manageruc.Builder. The returned closer
// releases the opened pools; it must be called when the manager is
// not needed anymore, also if a later composition step failed.
func (c *Config) NewManager(ctx context.Context) (
	m *manageruc.Manager, closer func() error, err error,
) {
	var pools []repo.Pool
	closer = func() error {
		var errs []error
		for _, p := range pools {
			errs = append(errs, p.Close())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closer()
		}
	}()
	pool, err := c.Database.connectionPool(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("opening connection pool: %w", err)
	}
	pools = append(pools, pool)
	b := manageruc.NewBuilder().WithPool(pool)
	if c.ReadOnly != nil {
		ropool, err := c.ReadOnly.connectionPool(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"opening read-only connection pool: %w", err,
			)
		}
		pools = append(pools, ropool)
		b = b.WithReadOnlyPool(ropool)
	}
	loc := scriptfs.New(os.DirFS(c.Scripts.Dir), ".")
	b = b.WithLocator(loc)
	table := vertab.DefaultTable
	if c.Upgrades != nil && c.Upgrades.Table != "" {
		table = c.Upgrades.Table
	}
	b = b.WithVersionDetector(vertab.NewDetector(table))
	if c.Upgrades != nil {
		b = b.WithVersionUpgrader(vertab.NewUpgrader(
			table,
			model.VersionRange{
				Min: model.Version(c.Upgrades.Min),
				Max: model.Version(c.Upgrades.Max),
			},
			loc,
			c.Upgrades.BatchPattern,
		))
	}
	if name := c.Processors.Backup; name != "" {
		b = b.WithBackupCreator(process.NewBackup(
			name, c.Processors.BackupLabelParam,
		))
	}
	if name := c.Processors.Cleanup; name != "" {
		b = b.WithCleanupProcessor(process.NewCleanup(name))
	}
	if name := c.Processors.Create; name != "" {
		b = b.WithDatabaseCreator(process.NewCreator(name))
	}
	b = b.WithDefaultTxPolicy(txRequirement(c.Batches.DefaultTx)).
		WithDefaultIsolation(isolationLevel(c.Batches.DefaultIsolation))
	m, err = b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building manager: %w", err)
	}
	return m, closer, nil
}

// connectionPool opens a connection pool for the configured engine.
func (d *Database) connectionPool(ctx context.Context) (
	repo.Pool, error,
) {
	switch d.Engine {
	case "sqlite":
		return sqlite.NewPool(ctx, d.URL)
	}
	return postgres.NewPool(ctx, d.URL)
}

// txRequirement maps a validated default-tx setting to its model
// counterpart, defaulting to disallowed.
func txRequirement(s string) model.TxRequirement {
	switch s {
	case "dont-care":
		return model.TxDontCare
	case "required":
		return model.TxRequired
	}
	return model.TxDisallowed
}

// isolationLevel maps a validated default-isolation setting to its
// model counterpart.
func isolationLevel(s string) model.IsolationLevel {
	switch s {
	case "read-uncommitted":
		return model.IsolationReadUncommitted
	case "read-committed":
		return model.IsolationReadCommitted
	case "repeatable-read":
		return model.IsolationRepeatableRead
	case "serializable":
		return model.IsolationSerializable
	}
	return model.IsolationDefault
}
