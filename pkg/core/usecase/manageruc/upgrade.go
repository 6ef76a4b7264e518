// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package manageruc

import (
	"context"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/log"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
)

// Upgrade walks the database forward, one version at a time, until it
// reaches the upper bound of the supported versions range. See the
// UpgradeTo method for the exact semantics; Upgrade is equivalent to
// UpgradeTo with the model.VersionUnknown ceiling which selects the
// range upper bound as the target.
func (m *Manager) Upgrade(ctx context.Context) error {
	return m.UpgradeTo(ctx, model.VersionUnknown)
}

// UpgradeTo walks the database forward, one version at a time, until
// it reaches the ceiling version (or the range upper bound for the
// model.VersionUnknown ceiling). The state machine is consulted
// first: an uninitialized manager runs DetectState implicitly, a
// ready database is a no-op success, and a new or an outdated
// database starts the upgrade loop. All other states reject the call
// with a *cerr.StateConflictError without touching the database.
//
// Each upgrade step is applied by the configured version upgrader and
// is itself a batch execution, inheriting the batch transaction
// semantics: a step which requires a transaction is atomic and a step
// which disallows one is not. After each step, the version is
// re-detected and compared against the expected value; a mismatch is
// a fatal upgrade error rather than a silently trusted counter.
//
// On a step failure, the loop stops immediately and the database is
// left at the last successfully completed version. No automatic
// rollback spans multiple steps; this forward-only partial progress
// is retained deliberately, so a later UpgradeTo call resumes from
// where the failed one stopped.
func (m *Manager) UpgradeTo(
	ctx context.Context, ceiling model.Version,
) error {
	if m.state == model.StateUninitialized {
		if _, err := m.DetectState(ctx); err != nil {
			return fmt.Errorf("detecting database state: %w", err)
		}
	}
	if m.state.IsReady() && m.state != model.StateReadyUnknown {
		return nil // idempotent no-op
	}
	if !m.state.CanUpgrade() || m.upgrader == nil {
		return &cerr.StateConflictError{Op: "upgrade", State: m.state}
	}
	t, err := m.upgradeTarget(ceiling)
	if err != nil {
		return err
	}
	initial := m.state
	if err := m.runUpgradeLoop(ctx, t); err != nil {
		return err
	}
	if m.version == m.vrange.Max {
		switch initial {
		case model.StateNew:
			m.state = model.StateReadyNew
		default:
			m.state = model.StateReadyOld
		}
	} else {
		m.state = model.StateOutdated // a lower ceiling was asked
	}
	log.Info(ctx, "database upgraded",
		log.State("state", m.state),
		log.Version("version", m.version),
	)
	return nil
}

// upgradeTarget validates the requested ceiling against the supported
// versions range and the current version, returning the effective
// target version of the upgrade loop. The model.VersionUnknown
// ceiling selects the range upper bound.
func (m *Manager) upgradeTarget(ceiling model.Version) (
	model.Version, error,
) {
	r := m.vrange
	t := r.Max
	if ceiling != model.VersionUnknown {
		if ceiling > r.Max || ceiling < r.Min {
			return 0, &cerr.VersionOutOfRangeError{
				Version: ceiling, Range: r,
			}
		}
		t = ceiling
	}
	v := m.version
	if v != t && (v > t || (v < r.Min && v != model.VersionNotCreated)) {
		return 0, &cerr.VersionOutOfRangeError{Version: v, Range: r}
	}
	return t, nil
}

// runUpgradeLoop borrows one connection and applies upgrade steps on
// it until the t target version is reached or a step fails. Failures
// are reported with the version which the failing step started from,
// while m.version tracks the last successfully reached version.
func (m *Manager) runUpgradeLoop(
	ctx context.Context, t model.Version,
) error {
	if m.version == t {
		return nil
	}
	err := m.pool.Conn(ctx, func(ctx context.Context, c repo.Conn) error {
		for m.version != t {
			v := m.version
			if err := m.upgrader.Upgrade(ctx, c, v); err != nil {
				return &cerr.UpgradeStepError{Version: v, Err: err}
			}
			if err := m.assertVersion(ctx, c, v+1); err != nil {
				return &cerr.UpgradeStepError{Version: v, Err: err}
			}
			m.version = v + 1
			log.Debug(ctx, "upgrade step completed",
				log.Version("version", m.version),
			)
		}
		return nil
	})
	if err != nil {
		log.Warn(ctx, "database upgrade stopped",
			log.Version("version", m.version),
			log.Err("error", err),
		)
		return fmt.Errorf("upgrading to version %s: %w", t, err)
	}
	return nil
}

// assertVersion re-detects the on-disk version after one upgrade step
// and compares it with the expected value. A missing or mismatching
// version indicates a defective upgrade step and is fatal for the
// upgrade operation.
func (m *Manager) assertVersion(
	ctx context.Context, c repo.Conn, expected model.Version,
) error {
	v, outcome, err := m.detector.Detect(ctx, c)
	if outcome != model.OutcomeVersionKnown {
		return &cerr.DetectionError{Err: err}
	}
	if v != expected {
		return &cerr.MismatchingVersionError{expected, v}
	}
	return nil
}
