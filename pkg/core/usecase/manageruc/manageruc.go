// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package manageruc provides the database lifecycle manager use case.
// A Manager tracks the schema version of one target database, drives
// it from whatever state it is found in toward the target version
// through an ordered sequence of single-version upgrade steps, and
// executes multi-command batches under well-defined transaction
// semantics. Managers are composed from pluggable collaborators (a
// version detector, an optional version upgrader, batch locators, and
// optional backup/cleanup/creation processors) by the Builder type
// which validates the composition before any database is touched.
//
// Every Manager operation runs to completion on the calling
// goroutine; there is no internal queue or background worker. A
// Manager instance is not safe for concurrent use and callers which
// need concurrent access must serialize the calls externally.
package manageruc

import (
	"context"

	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/log"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
)

// Manager is the database lifecycle orchestrator. It owns the
// connection lifecycle of its operations, runs the readiness state
// machine and the upgrade loop, executes batches, and delegates to
// the optional processors. Instances are created by Builder.Build
// after the composition validation passes.
type Manager struct {
	pool   repo.Pool
	ropool repo.Pool // nil unless read-only connections are supported

	detector repo.VersionDetector
	upgrader repo.VersionUpgrader // nil if no upgrade capability
	locator  repo.Locator         // composite registry, never nil

	backup  Processor // nil if backup is unsupported
	cleanup Processor // nil if cleanup is unsupported
	creator Processor // nil if creation is unsupported

	txPolicy  model.TxRequirement
	isolation model.IsolationLevel
	vrange    model.VersionRange

	state   model.DbState
	version model.Version
}

// State returns the database state as observed by the last detection
// or upgrade operation, or model.StateUninitialized before the first
// detection.
func (m *Manager) State() model.DbState {
	return m.state
}

// Version returns the schema version as observed by the last
// detection or upgrade operation, or model.VersionUnknown before the
// first detection.
func (m *Manager) Version() model.Version {
	return m.version
}

// Range returns the inclusive range of schema versions which this
// manager supports, as derived from the configured version upgrader.
// Without an upgrader, the range is unbounded.
func (m *Manager) Range() model.VersionRange {
	return m.vrange
}

// Locator returns the composite batch locator registry of this
// manager, so upgraders and processors may resolve their named
// batches through the same sources which the manager uses.
func (m *Manager) Locator() repo.Locator {
	return m.locator
}

// DetectState opens a connection to the target database and
// classifies its readiness. A connection failure yields the
// model.StateConnectionError state which is terminal until the caller
// retries. Otherwise, the configured version detector inspects the
// database and its report is classified against the supported
// versions range. The classified state is returned and also recorded,
// together with the detected version, for the subsequent operations.
func (m *Manager) DetectState(ctx context.Context) (
	model.DbState, error,
) {
	var (
		connected bool
		detErr    error
	)
	err := m.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		connected = true
		v, outcome, err := m.detector.Detect(ctx, c)
		switch outcome {
		case model.OutcomeDatabaseAbsent:
			m.state, m.version = model.StateNew, model.VersionNotCreated
		case model.OutcomeVersionKnown:
			m.version = v
			m.state = m.classify(v)
		default:
			m.state, m.version = model.StateDamagedOrInvalid,
				model.VersionUnknown
			detErr = &cerr.DetectionError{Err: err}
		}
		return nil
	})
	switch {
	case err != nil && !connected:
		m.state, m.version = model.StateConnectionError,
			model.VersionUnknown
		log.Warn(ctx, "cannot connect to the target database",
			log.Err("error", err),
		)
		return m.state, err
	case err != nil:
		// the connection release itself failed after detection
		m.state, m.version = model.StateConnectionError,
			model.VersionUnknown
		return m.state, err
	case detErr != nil:
		log.Warn(ctx, "database version detection was inconclusive",
			log.Err("error", detErr),
		)
		return m.state, detErr
	}
	log.Debug(ctx, "database state detected",
		log.State("state", m.state),
		log.Version("version", m.version),
	)
	return m.state, nil
}

// classify maps a successfully detected version to a database state
// by comparing it against the supported versions range. Equal to the
// upper bound means ready, within the range means outdated, below the
// range means too old, and above the upper bound means too new. An
// unbounded range (no upgrader) cannot name a target version, hence,
// any detected version is usable but unclassifiable.
func (m *Manager) classify(v model.Version) model.DbState {
	r := m.vrange
	switch {
	case v == model.VersionNotCreated:
		return model.StateNew
	case r.Unbounded():
		return model.StateReadyUnknown
	case v == r.Max:
		return model.StateReady
	case v > r.Max:
		return model.StateTooNew
	case v >= r.Min:
		return model.StateOutdated
	}
	return model.StateTooOld
}
