// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package manageruc

import (
	"context"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/cerr"
)

// Processor is a single-purpose collaborator which a manager invokes
// at a well-defined point: backup creation, cleanup processing, or
// database creation. Each processor slot accepts at most one
// registration; a missing registration makes the corresponding
// manager operation report cerr.ErrUnsupported instead of
// substituting a polymorphic no-op object.
type Processor interface {
	// Perform runs the processor against the m manager. The processor
	// may execute batches through the manager and inspect its state,
	// range, and locator registry.
	Perform(ctx context.Context, m *Manager) error

	// RequiresScriptLocator reports whether this processor resolves
	// named batches through the manager locator registry. It is
	// consulted at composition build time.
	RequiresScriptLocator() bool
}

// SupportsBackup reports whether a backup creator was registered.
func (m *Manager) SupportsBackup() bool {
	return m.backup != nil
}

// SupportsCleanup reports whether a cleanup processor was registered.
func (m *Manager) SupportsCleanup() bool {
	return m.cleanup != nil
}

// SupportsCreate reports whether a database creator was registered.
func (m *Manager) SupportsCreate() bool {
	return m.creator != nil
}

// Backup delegates to the registered backup creator, or reports
// cerr.ErrUnsupported when the manager was composed without one.
func (m *Manager) Backup(ctx context.Context) error {
	if m.backup == nil {
		return fmt.Errorf("backup: %w", cerr.ErrUnsupported)
	}
	if err := m.backup.Perform(ctx, m); err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}
	return nil
}

// Cleanup delegates to the registered cleanup processor, or reports
// cerr.ErrUnsupported when the manager was composed without one.
func (m *Manager) Cleanup(ctx context.Context) error {
	if m.cleanup == nil {
		return fmt.Errorf("cleanup: %w", cerr.ErrUnsupported)
	}
	if err := m.cleanup.Perform(ctx, m); err != nil {
		return fmt.Errorf("cleaning up: %w", err)
	}
	return nil
}

// Create delegates to the registered database creator, or reports
// cerr.ErrUnsupported when the manager was composed without one.
func (m *Manager) Create(ctx context.Context) error {
	if m.creator == nil {
		return fmt.Errorf("create: %w", cerr.ErrUnsupported)
	}
	if err := m.creator.Perform(ctx, m); err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	return nil
}
