// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr provides the common typed errors of the database
// lifecycle manager. Composition validation failures are reported
// before any database I/O with the configuration error types, while
// the remaining types classify runtime failures of the detection,
// upgrade, and batch execution operations. All errors are returned to
// the caller of the failing operation; none of them is retried
// automatically and none of them crashes the process.
package cerr

import (
	"errors"
	"fmt"
)

// ErrUnsupported indicates that an optional capability, such as backup
// creation, was requested from a manager which was composed without
// the corresponding optional processor.
var ErrUnsupported = errors.New("operation is not supported")

// MissingCollaboratorError indicates that a required collaborator was
// not registered with the composition builder at all. Its value names
// the missing collaborator slot.
type MissingCollaboratorError string

// Error returns a string representation of the e error instance.
func (e MissingCollaboratorError) Error() string {
	return fmt.Sprintf("no %s is registered", string(e))
}

// DuplicateCollaboratorError indicates that a collaborator slot which
// accepts at most one registration saw more than one.
type DuplicateCollaboratorError struct {
	Collaborator string // name of the violated slot
	Count        int    // number of observed registrations
}

// Error returns a string representation of the e error instance.
func (e *DuplicateCollaboratorError) Error() string {
	return fmt.Sprintf(
		"%d %s instances are registered, want at most one",
		e.Count, e.Collaborator,
	)
}

// PlaceholderError indicates that a temporary placeholder registration
// survived until the composition resolution. Placeholders are seeded
// by composition helpers in order to be replaced by real collaborators
// before building a manager; a retained placeholder is distinct from a
// missing registration as it signals a composition layer bug instead
// of a forgotten registration.
type PlaceholderError string

// Error returns a string representation of the e error instance.
func (e PlaceholderError) Error() string {
	return fmt.Sprintf(
		"placeholder %s registration was not replaced", string(e),
	)
}

// VersionRangeError indicates an invalid supported versions range,
// wrapping the concrete bounds violation.
type VersionRangeError struct {
	Err error // the violated bounds description
}

// Error returns a string representation of the e error instance.
func (e *VersionRangeError) Error() string {
	return fmt.Sprintf("invalid version range: %s", e.Err.Error())
}

// Unwrap returns the wrapped bounds violation error.
func (e *VersionRangeError) Unwrap() error {
	return e.Err
}
