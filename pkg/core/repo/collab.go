// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/db-manager/pkg/core/model"
)

// VersionDetector inspects a live connection and reports the current
// schema version of the target database. Exactly one detector must be
// registered with every manager composition.
type VersionDetector interface {
	// Detect returns the detected version together with an outcome
	// classification. The version value is only meaningful for the
	// model.OutcomeVersionKnown outcome; an absent database reports
	// model.VersionNotCreated and an inconclusive inspection reports
	// model.VersionUnknown. A non-nil error accompanies the
	// inconclusive outcome with the concrete failure, if one exists.
	Detect(ctx context.Context, c Conn) (
		model.Version, model.DetectOutcome, error,
	)
}

// VersionUpgrader advances a database by exactly one schema version
// per call. At most one upgrader may be registered with a manager
// composition; without one, the manager cannot upgrade and accepts
// any successfully detected version.
type VersionUpgrader interface {
	// Range returns the inclusive range of versions which this
	// upgrader can walk a database through. The Min bound is the
	// oldest version which Upgrade accepts as a source and the Max
	// bound is the version which no more steps lead out of.
	Range() model.VersionRange

	// Upgrade applies the single step which takes a database from the
	// `from` version to `from+1`, typically by executing a named
	// batch on the c connection. It must not skip versions and must
	// not proceed after a failure.
	Upgrade(ctx context.Context, c Conn, from model.Version) error
}

// Locator resolves a batch by its logical name from one source, such
// as embedded script resources, an in-memory dictionary, or a
// callback. Multiple locators may be registered with one manager
// composition; they are merged into one composite registry which
// consults them in registration order.
type Locator interface {
	// Locate returns the named batch. When the source has no batch by
	// that name, a cerr.BatchNotFoundError is returned, which lets a
	// composite registry consult the next source; any other error
	// aborts the resolution.
	Locate(name string) (*Batch, error)
}
