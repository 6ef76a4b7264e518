// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package manageruc

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
)

// Builder collects the collaborator registrations of one manager
// composition and validates them as an explicit registration table:
// exactly one connection pool and version detector, one or more batch
// locators (merged into one composite registry), and at most one
// version upgrader and one of each optional processor. The validation
// is a plain counting pass over the table, runs strictly before any
// database I/O, and a failed validation never yields a partially
// usable manager.
type Builder struct {
	pools     []repo.Pool
	ropools   []repo.Pool
	detectors []repo.VersionDetector
	upgraders []repo.VersionUpgrader
	locators  []repo.Locator
	backups   []Processor
	cleanups  []Processor
	creators  []Processor

	txPolicy  model.TxRequirement
	isolation model.IsolationLevel
}

// NewBuilder creates an empty Builder. All registrations are missing
// initially, so a forgotten required registration is reported as such
// by the Build method.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithPool registers the read-write connection pool of the target
// database. Exactly one pool must be registered.
func (b *Builder) WithPool(p repo.Pool) *Builder {
	b.pools = append(b.pools, p)
	return b
}

// WithReadOnlyPool registers an optional read-only connection pool,
// e.g., one which connects to a read replica. When present, read-only
// batch executions are routed to it; otherwise the read-write pool
// serves all callers.
func (b *Builder) WithReadOnlyPool(p repo.Pool) *Builder {
	b.ropools = append(b.ropools, p)
	return b
}

// WithVersionDetector registers the version detector. Exactly one
// detector must be registered.
func (b *Builder) WithVersionDetector(
	d repo.VersionDetector,
) *Builder {
	b.detectors = append(b.detectors, d)
	return b
}

// WithVersionUpgrader registers the optional version upgrader. At
// most one upgrader may be registered; without one, the manager
// versions range is unbounded and upgrade requests are rejected.
func (b *Builder) WithVersionUpgrader(
	u repo.VersionUpgrader,
) *Builder {
	b.upgraders = append(b.upgraders, u)
	return b
}

// WithLocator registers one batch locator. At least one locator must
// be registered; all registered locators are merged into a composite
// registry which consults them in registration order.
func (b *Builder) WithLocator(l repo.Locator) *Builder {
	b.locators = append(b.locators, l)
	return b
}

// WithBackupCreator registers the optional backup creator processor.
func (b *Builder) WithBackupCreator(p Processor) *Builder {
	b.backups = append(b.backups, p)
	return b
}

// WithCleanupProcessor registers the optional cleanup processor.
func (b *Builder) WithCleanupProcessor(p Processor) *Builder {
	b.cleanups = append(b.cleanups, p)
	return b
}

// WithDatabaseCreator registers the optional database creator
// processor.
func (b *Builder) WithDatabaseCreator(p Processor) *Builder {
	b.creators = append(b.creators, p)
	return b
}

// WithDefaultTxPolicy configures the transaction policy which applies
// to batches whose commands merge to no hard requirement. The default
// of the default is model.TxDisallowed.
func (b *Builder) WithDefaultTxPolicy(
	r model.TxRequirement,
) *Builder {
	b.txPolicy = r
	return b
}

// WithDefaultIsolation configures the ambient transaction isolation
// level which applies when no batch command overrides it.
func (b *Builder) WithDefaultIsolation(
	l model.IsolationLevel,
) *Builder {
	b.isolation = l
	return b
}

// Build validates the registration table and constructs a ready to
// use Manager. Violations are reported with the typed configuration
// errors of the cerr package: a missing or duplicate required
// collaborator, a duplicate optional collaborator, a retained
// placeholder registration, or an invalid supported versions range.
// Build performs no database I/O.
func (b *Builder) Build() (*Manager, error) {
	pool, err := exactlyOne(b.pools, "connection pool")
	if err != nil {
		return nil, err
	}
	detector, err := exactlyOne(b.detectors, "version detector")
	if err != nil {
		return nil, err
	}
	ropool, err := atMostOne(b.ropools, "read-only connection pool")
	if err != nil {
		return nil, err
	}
	upgrader, err := atMostOne(b.upgraders, "version upgrader")
	if err != nil {
		return nil, err
	}
	backup, err := atMostOne(b.backups, "backup creator")
	if err != nil {
		return nil, err
	}
	cleanup, err := atMostOne(b.cleanups, "cleanup processor")
	if err != nil {
		return nil, err
	}
	creator, err := atMostOne(b.creators, "database creator")
	if err != nil {
		return nil, err
	}
	if err := b.validateLocators(backup, cleanup, creator); err != nil {
		return nil, err
	}
	vrange := model.VersionRange{
		Min: model.VersionNotCreated,
		Max: model.VersionUnknown,
	}
	if upgrader != nil {
		vrange = upgrader.Range()
		if err := vrange.Validate(); err != nil {
			return nil, &cerr.VersionRangeError{Err: err}
		}
	}
	txPolicy := b.txPolicy
	if txPolicy == model.TxDontCare {
		txPolicy = model.TxDisallowed
	}
	m := &Manager{
		pool:      pool,
		ropool:    ropool,
		detector:  detector,
		upgrader:  upgrader,
		locator:   locators(b.locators),
		backup:    backup,
		cleanup:   cleanup,
		creator:   creator,
		txPolicy:  txPolicy,
		isolation: b.isolation,
		vrange:    vrange,
		state:     model.StateUninitialized,
		version:   model.VersionUnknown,
	}
	return m, nil
}

// validateLocators checks the batch locator slot: at least one real
// (non-placeholder) locator must be registered. When the slot is
// empty and a registered processor declares a script locator
// dependency, the error names that processor in order to point at the
// actual unsatisfied dependency.
func (b *Builder) validateLocators(procs ...Processor) error {
	if len(b.locators) == 0 {
		for i, p := range procs {
			if p != nil && p.RequiresScriptLocator() {
				name := []string{
					"backup creator",
					"cleanup processor",
					"database creator",
				}[i]
				return cerr.MissingCollaboratorError(
					"batch locator (required by the " + name + ")",
				)
			}
		}
		return cerr.MissingCollaboratorError("batch locator")
	}
	for _, l := range b.locators {
		if err := rejectPlaceholder(l); err != nil {
			return err
		}
	}
	return nil
}

// exactlyOne takes the single registration of a required slot,
// reporting missing and duplicate registrations and rejecting
// placeholders.
func exactlyOne[T any](regs []T, name string) (T, error) {
	var zero T
	switch len(regs) {
	case 0:
		return zero, cerr.MissingCollaboratorError(name)
	case 1:
		if err := rejectPlaceholder(regs[0]); err != nil {
			return zero, err
		}
		return regs[0], nil
	}
	return zero, &cerr.DuplicateCollaboratorError{
		Collaborator: name, Count: len(regs),
	}
}

// atMostOne takes the single registration of an optional slot (or its
// zero value for an empty slot), reporting duplicate registrations
// and rejecting placeholders.
func atMostOne[T any](regs []T, name string) (T, error) {
	var zero T
	switch len(regs) {
	case 0:
		return zero, nil
	case 1:
		if err := rejectPlaceholder(regs[0]); err != nil {
			return zero, err
		}
		return regs[0], nil
	}
	return zero, &cerr.DuplicateCollaboratorError{
		Collaborator: name, Count: len(regs),
	}
}

// placeholder is implemented by the temporary registrations which
// composition helpers seed in order to detect missing user
// configuration. A placeholder which survives until Build indicates a
// composition layer bug, distinct from a missing registration.
type placeholder interface {
	placeholderSlot() string
}

// rejectPlaceholder reports a *cerr.PlaceholderError when the v
// registration is a placeholder.
func rejectPlaceholder(v any) error {
	if p, ok := v.(placeholder); ok {
		return cerr.PlaceholderError(p.placeholderSlot())
	}
	return nil
}

// PlaceholderDetector returns a temporary version detector
// registration which must be replaced before Build.
func PlaceholderDetector() repo.VersionDetector {
	return phDetector{}
}

// PlaceholderUpgrader returns a temporary version upgrader
// registration which must be replaced before Build.
func PlaceholderUpgrader() repo.VersionUpgrader {
	return phUpgrader{}
}

// PlaceholderLocator returns a temporary batch locator registration
// which must be replaced before Build.
func PlaceholderLocator() repo.Locator {
	return phLocator{}
}

// PlaceholderProcessor returns a temporary processor registration
// which must be replaced before Build.
func PlaceholderProcessor() Processor {
	return phProcessor{}
}

type phDetector struct{}

func (phDetector) placeholderSlot() string { return "version detector" }

func (phDetector) Detect(context.Context, repo.Conn) (
	model.Version, model.DetectOutcome, error,
) {
	return model.VersionUnknown, model.OutcomeInconclusive,
		errPlaceholder("version detector")
}

type phUpgrader struct{}

func (phUpgrader) placeholderSlot() string { return "version upgrader" }

func (phUpgrader) Range() model.VersionRange {
	return model.VersionRange{}
}

func (phUpgrader) Upgrade(
	context.Context, repo.Conn, model.Version,
) error {
	return errPlaceholder("version upgrader")
}

type phLocator struct{}

func (phLocator) placeholderSlot() string { return "batch locator" }

func (phLocator) Locate(string) (*repo.Batch, error) {
	return nil, errPlaceholder("batch locator")
}

type phProcessor struct{}

func (phProcessor) placeholderSlot() string { return "processor" }

func (phProcessor) Perform(context.Context, *Manager) error {
	return errPlaceholder("processor")
}

func (phProcessor) RequiresScriptLocator() bool { return false }

// errPlaceholder reports usage of a placeholder collaborator which
// must have been rejected at build time.
func errPlaceholder(slot string) error {
	return fmt.Errorf(
		"%s placeholder may not be used: %w",
		slot, cerr.PlaceholderError(slot),
	)
}

// locators is the composite batch locator registry which consults its
// sources in registration order, moving past the sources which report
// a cerr.BatchNotFoundError.
type locators []repo.Locator

// Locate resolves the named batch from the first source which knows
// it. When all sources pass, the name is reported as not found.
func (ls locators) Locate(name string) (*repo.Batch, error) {
	for _, l := range ls {
		b, err := l.Locate(name)
		switch {
		case err == nil:
			return b, nil
		case isNotFound(err):
			continue
		default:
			return nil, err
		}
	}
	return nil, cerr.BatchNotFoundError(name)
}

// isNotFound reports whether err is a batch-not-found condition.
func isNotFound(err error) bool {
	var bnfe cerr.BatchNotFoundError
	return errors.As(err, &bnfe)
}
