// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package model provides the core domain model types of the database
// lifecycle manager, namely the schema Version and VersionRange, the
// DbState readiness classification, the version DetectOutcome, and the
// batch command enumerations (ExecutionType, TxRequirement, and
// IsolationLevel) with their merging logic. These types are pure data
// and contain no database or framework dependencies, so they can be
// used uniformly by the use cases and adapters layers.
package model

// DbState classifies the readiness of a target database as observed by
// the last state detection (or upgrade) operation of a manager. It is
// derived from the detected version and the detection outcome and is
// never set directly by application code.
type DbState int

// The recognized database states. A freshly built manager starts at
// StateUninitialized until its DetectState operation runs. The three
// Ready variants are all usable states: StateReady is reported when
// the database is found at the target version, while StateReadyNew and
// StateReadyOld record that the manager itself drove a new or an
// outdated database to the target version during this session.
// StateReadyUnknown is reported when a version was detected but no
// upgrader is configured, so there is no target version to compare
// against.
const (
	StateUninitialized DbState = iota
	StateNew
	StateReadyNew
	StateReady
	StateReadyOld
	StateReadyUnknown
	StateOutdated
	StateTooOld
	StateTooNew
	StateDamagedOrInvalid
	StateConnectionError
)

var stateNames = map[DbState]string{
	StateUninitialized:    "uninitialized",
	StateNew:              "new",
	StateReadyNew:         "ready-new",
	StateReady:            "ready",
	StateReadyOld:         "ready-old",
	StateReadyUnknown:     "ready-unknown",
	StateOutdated:         "outdated",
	StateTooOld:           "too-old",
	StateTooNew:           "too-new",
	StateDamagedOrInvalid: "damaged-or-invalid",
	StateConnectionError:  "connection-error",
}

// String returns the kebab-case name of the s state.
func (s DbState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "invalid"
}

// IsReady reports whether s is one of the usable Ready variants.
// A manager accepts batch execution requests in all of them and
// treats an upgrade request as a no-op success in all but the
// StateReadyUnknown state (which has no known target version and so
// cannot claim that the database matches it).
func (s DbState) IsReady() bool {
	switch s {
	case StateReady, StateReadyNew, StateReadyOld, StateReadyUnknown:
		return true
	}
	return false
}

// CanUpgrade reports whether an upgrade operation is legal to start
// from the s state. Only a new or an outdated database may be walked
// forward. The Ready variants (except StateReadyUnknown) also permit
// the call itself, but as an idempotent no-op.
func (s DbState) CanUpgrade() bool {
	switch s {
	case StateNew, StateOutdated:
		return true
	case StateReady, StateReadyNew, StateReadyOld:
		return true // no-op success
	}
	return false
}

// DetectOutcome is reported by a version detector alongside the
// detected version, distinguishing a successfully read version from
// an absent database and from an inconclusive inspection.
type DetectOutcome int

// The recognized detection outcomes.
const (
	// OutcomeVersionKnown indicates that the database exists and its
	// schema version was read successfully.
	OutcomeVersionKnown DetectOutcome = iota

	// OutcomeDatabaseAbsent indicates that the database (or its
	// version bookkeeping) does not exist yet, hence, the database is
	// at the VersionNotCreated version.
	OutcomeDatabaseAbsent

	// OutcomeInconclusive indicates that the database exists, but its
	// version could not be classified, e.g., due to a corrupt or
	// manually altered version bookkeeping.
	OutcomeInconclusive
)

// String returns the kebab-case name of the o outcome.
func (o DetectOutcome) String() string {
	switch o {
	case OutcomeVersionKnown:
		return "version-known"
	case OutcomeDatabaseAbsent:
		return "database-absent"
	case OutcomeInconclusive:
		return "inconclusive"
	}
	return "invalid"
}
