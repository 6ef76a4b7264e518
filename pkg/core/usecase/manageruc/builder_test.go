// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package manageruc_test

import (
	"context"
	"testing"

	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/usecase/manageruc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestComposition returns a builder with the minimal valid
// registrations: one pool over the given fake connection, one
// detector over the given fake database, and one locator.
func newTestComposition(
	db *fakeSchemaDB, conn *fakeConn,
) (*manageruc.Builder, *fakePool) {
	pool := &fakePool{conn: conn}
	b := manageruc.NewBuilder().
		WithPool(pool).
		WithVersionDetector(&fakeDetector{db: db}).
		WithLocator(fakeLocator{})
	return b, pool
}

func TestBuildMinimalComposition(t *testing.T) {
	b, _ := newTestComposition(&fakeSchemaDB{}, &fakeConn{})
	m, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, model.StateUninitialized, m.State())
	assert.Equal(t, model.VersionUnknown, m.Version())
	assert.True(t, m.Range().Unbounded())
	assert.False(t, m.SupportsBackup())
	assert.False(t, m.SupportsCleanup())
	assert.False(t, m.SupportsCreate())
}

func TestBuildMissingPool(t *testing.T) {
	b := manageruc.NewBuilder().
		WithVersionDetector(&fakeDetector{db: &fakeSchemaDB{}}).
		WithLocator(fakeLocator{})
	_, err := b.Build()
	var mce cerr.MissingCollaboratorError
	require.ErrorAs(t, err, &mce)
	assert.Contains(t, mce.Error(), "connection pool")
}

func TestBuildMissingDetector(t *testing.T) {
	b := manageruc.NewBuilder().
		WithPool(&fakePool{conn: &fakeConn{}}).
		WithLocator(fakeLocator{})
	_, err := b.Build()
	var mce cerr.MissingCollaboratorError
	require.ErrorAs(t, err, &mce)
	assert.Contains(t, mce.Error(), "version detector")
}

func TestBuildDuplicateDetector(t *testing.T) {
	db := &fakeSchemaDB{}
	b, _ := newTestComposition(db, &fakeConn{})
	b = b.WithVersionDetector(&fakeDetector{db: db})
	_, err := b.Build()
	var dce *cerr.DuplicateCollaboratorError
	require.ErrorAs(t, err, &dce)
	assert.Equal(t, 2, dce.Count)
	assert.Equal(t, "version detector", dce.Collaborator)
}

func TestBuildDuplicateOptionalProcessor(t *testing.T) {
	b, _ := newTestComposition(&fakeSchemaDB{}, &fakeConn{})
	b = b.
		WithBackupCreator(manageruc.PlaceholderProcessor()).
		WithBackupCreator(manageruc.PlaceholderProcessor())
	_, err := b.Build()
	var dce *cerr.DuplicateCollaboratorError
	require.ErrorAs(t, err, &dce)
	assert.Equal(t, "backup creator", dce.Collaborator)
}

func TestBuildRetainedPlaceholder(t *testing.T) {
	b := manageruc.NewBuilder().
		WithPool(&fakePool{conn: &fakeConn{}}).
		WithVersionDetector(manageruc.PlaceholderDetector()).
		WithLocator(fakeLocator{})
	_, err := b.Build()
	var pe cerr.PlaceholderError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "version detector")
}

func TestBuildMissingLocatorNamesProcessor(t *testing.T) {
	b := manageruc.NewBuilder().
		WithPool(&fakePool{conn: &fakeConn{}}).
		WithVersionDetector(&fakeDetector{db: &fakeSchemaDB{}}).
		WithCleanupProcessor(scriptedProcessor{})
	_, err := b.Build()
	var mce cerr.MissingCollaboratorError
	require.ErrorAs(t, err, &mce)
	assert.Contains(t, mce.Error(), "batch locator")
	assert.Contains(t, mce.Error(), "cleanup processor")
}

func TestBuildInvalidVersionRange(t *testing.T) {
	db := &fakeSchemaDB{}
	b, _ := newTestComposition(db, &fakeConn{})
	b = b.WithVersionUpgrader(&fakeUpgrader{
		db:  db,
		rng: model.VersionRange{Min: 5, Max: 2},
	})
	_, err := b.Build()
	var vre *cerr.VersionRangeError
	assert.ErrorAs(t, err, &vre)
}

func TestUnsupportedProcessorOperations(t *testing.T) {
	b, _ := newTestComposition(&fakeSchemaDB{version: 1}, &fakeConn{})
	m, err := b.Build()
	require.NoError(t, err)
	ctx := context.Background()
	assert.ErrorIs(t, m.Backup(ctx), cerr.ErrUnsupported)
	assert.ErrorIs(t, m.Cleanup(ctx), cerr.ErrUnsupported)
	assert.ErrorIs(t, m.Create(ctx), cerr.ErrUnsupported)
}

// scriptedProcessor stands in for a processor which resolves its
// batches through the manager locator registry.
type scriptedProcessor struct{}

func (scriptedProcessor) Perform(
	context.Context, *manageruc.Manager,
) error {
	return nil
}

func (scriptedProcessor) RequiresScriptLocator() bool {
	return true
}
