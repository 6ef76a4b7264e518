// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import (
	"fmt"

	"github.com/momeni/db-manager/pkg/core/model"
)

// StateConflictError indicates that an operation was requested from a
// database state which does not permit it, e.g., upgrading a database
// which is too new. The database is not touched at all in this case.
type StateConflictError struct {
	Op    string        // the rejected operation
	State model.DbState // the observed database state
}

// Error returns a string representation of the e error instance.
func (e *StateConflictError) Error() string {
	return fmt.Sprintf(
		"%s is not legal in the %s state", e.Op, e.State,
	)
}

// VersionOutOfRangeError indicates that an upgrade operation found the
// current or requested target version outside of the supported
// versions range before running any upgrade step.
type VersionOutOfRangeError struct {
	Version model.Version      // the out of range version
	Range   model.VersionRange // the supported versions range
}

// Error returns a string representation of the e error instance.
func (e *VersionOutOfRangeError) Error() string {
	return fmt.Sprintf(
		"version %s is out of the supported [%s, %s] range",
		e.Version, e.Range.Min, e.Range.Max,
	)
}

// MismatchingVersionError indicates an error condition where a
// specific schema version was expected, but another version was
// present. This type is defined as an array containing two version
// elements. The first element is the expected version and the second
// element is the actual version.
type MismatchingVersionError [2]model.Version

// Error returns a string representation of `mve` error instance. This
// method causes *MismatchingVersionError to implement error interface.
func (mve *MismatchingVersionError) Error() string {
	expected := (*mve)[0]
	actual := (*mve)[1]
	return fmt.Sprintf(
		"expected version %s, but got version %s", expected, actual,
	)
}

// UpgradeStepError indicates that a single upgrade step has failed
// while the database stays at the last successfully reached version.
// The Version field names the version which the failing step tried to
// move away from, so a caller may retry the upgrade operation later
// and resume from that version.
type UpgradeStepError struct {
	Version model.Version // source version of the failing step
	Err     error         // the step failure
}

// Error returns a string representation of the e error instance.
func (e *UpgradeStepError) Error() string {
	return fmt.Sprintf(
		"upgrade step from version %s failed: %s",
		e.Version, e.Err.Error(),
	)
}

// Unwrap returns the wrapped step failure error.
func (e *UpgradeStepError) Unwrap() error {
	return e.Err
}

// DetectionError indicates that a version detector could not classify
// the target database. It surfaces as the damaged-or-invalid state
// and is supposed to require manual intervention.
type DetectionError struct {
	Err error // the detector failure, may be nil for an
	// inconclusive outcome without a concrete error
}

// Error returns a string representation of the e error instance.
func (e *DetectionError) Error() string {
	if e.Err == nil {
		return "version detection was inconclusive"
	}
	return fmt.Sprintf("version detection failed: %s", e.Err.Error())
}

// Unwrap returns the wrapped detector failure error (if any).
func (e *DetectionError) Unwrap() error {
	return e.Err
}
