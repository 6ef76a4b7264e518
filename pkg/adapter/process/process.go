// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package process provides script-driven implementations of the
// manageruc.Processor interface. Each processor resolves one named
// batch through the manager locator registry and executes it, so the
// backup, cleanup, and database creation behaviors are defined by
// deployable script files instead of compiled code.
package process

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/momeni/db-manager/pkg/core/log"
	"github.com/momeni/db-manager/pkg/core/repo"
	"github.com/momeni/db-manager/pkg/core/usecase/manageruc"
)

// Backup creates database backups by running a named batch. Each run
// generates a fresh UUID as the backup label; when the composition
// configures a label parameter name, the label is appended as the
// trailing parameter of every command of the batch, so the scripts
// may record or embed it.
type Backup struct {
	batch      string
	labelParam string
}

// NewBackup instantiates a Backup processor running the named batch.
// An empty labelParam disables the label parameter passing, leaving
// the label for logging purposes only.
func NewBackup(batch, labelParam string) *Backup {
	return &Backup{batch: batch, labelParam: labelParam}
}

// Perform resolves and runs the backup batch.
func (p *Backup) Perform(
	ctx context.Context, m *manageruc.Manager,
) error {
	b, err := m.Locator().Locate(p.batch)
	if err != nil {
		return fmt.Errorf("locating %q batch: %w", p.batch, err)
	}
	label := uuid.NewString()
	if p.labelParam != "" {
		b = withParam(b, repo.Param{Name: p.labelParam, Value: label})
	}
	_, err = m.ExecuteBatch(ctx, b, manageruc.BatchOptions{})
	if err != nil {
		return err
	}
	log.Info(ctx, "backup batch completed",
		slog.String("batch", p.batch),
		slog.String("label", label),
	)
	return nil
}

// RequiresScriptLocator reports that this processor resolves named
// batches through the manager locator registry.
func (p *Backup) RequiresScriptLocator() bool {
	return true
}

// Cleanup removes stale or transient database artifacts by running a
// named batch.
type Cleanup struct {
	batch string
}

// NewCleanup instantiates a Cleanup processor running the named batch.
func NewCleanup(batch string) *Cleanup {
	return &Cleanup{batch: batch}
}

// Perform resolves and runs the cleanup batch.
func (p *Cleanup) Perform(
	ctx context.Context, m *manageruc.Manager,
) error {
	_, err := m.ExecuteNamed(ctx, p.batch, manageruc.BatchOptions{})
	if err != nil {
		return err
	}
	log.Info(ctx, "cleanup batch completed",
		slog.String("batch", p.batch),
	)
	return nil
}

// RequiresScriptLocator reports that this processor resolves named
// batches through the manager locator registry.
func (p *Cleanup) RequiresScriptLocator() bool {
	return true
}

// Creator initializes a fresh database by running a named batch, e.g.,
// creating roles or extensions which the versioned schema upgrade
// steps may take for granted.
type Creator struct {
	batch string
}

// NewCreator instantiates a Creator processor running the named batch.
func NewCreator(batch string) *Creator {
	return &Creator{batch: batch}
}

// Perform resolves and runs the creation batch.
func (p *Creator) Perform(
	ctx context.Context, m *manageruc.Manager,
) error {
	_, err := m.ExecuteNamed(ctx, p.batch, manageruc.BatchOptions{})
	if err != nil {
		return err
	}
	log.Info(ctx, "database creation batch completed",
		slog.String("batch", p.batch),
	)
	return nil
}

// RequiresScriptLocator reports that this processor resolves named
// batches through the manager locator registry.
func (p *Creator) RequiresScriptLocator() bool {
	return true
}

// withParam copies the b batch, appending the param as the trailing
// parameter of every command.
func withParam(b *repo.Batch, param repo.Param) *repo.Batch {
	nb := repo.NewBatch()
	for i := 0; i < b.Len(); i++ {
		cmd := *b.Command(i)
		params := make([]repo.Param, 0, len(cmd.Params)+1)
		params = append(params, cmd.Params...)
		params = append(params, param)
		cmd.Params = params
		nb.Add(cmd)
	}
	return nb
}
