// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"fmt"
	"strconv"
)

// Version represents a database schema version as a plain counter.
// Schema versions form a single forward-only line, hence, a scalar
// counter (in contrast to a semantic version) suffices. Version zero
// is reserved for a database which is not created yet, so the first
// real schema version is one. The VersionUnknown sentinel indicates
// that a version detection attempt has failed.
type Version int

// These sentinel versions delimit the normal version values. All
// detected versions are either VersionNotCreated (for an absent or
// empty database) or a positive number. VersionUnknown never leaves
// the detection code path as a successfully detected version.
const (
	// VersionUnknown indicates a failed or not yet performed
	// version detection.
	VersionUnknown Version = -1

	// VersionNotCreated indicates an absent or empty database
	// which is not created yet.
	VersionNotCreated Version = 0
)

// String returns the decimal representation of v. The sentinel values
// are represented as "unknown" and "not-created" respectively.
func (v Version) String() string {
	switch v {
	case VersionUnknown:
		return "unknown"
	case VersionNotCreated:
		return "not-created"
	default:
		return strconv.Itoa(int(v))
	}
}

// VersionRange represents the inclusive range of schema versions which
// are supported by a database manager instance. The Min and Max bounds
// are usually taken from the configured version upgrader. A Max value
// of VersionUnknown (-1) indicates an unbounded range, that is, no
// upgrader is configured and any successfully detected version has to
// be accepted as-is.
type VersionRange struct {
	Min Version
	Max Version
}

// Unbounded reports whether vr has no upper bound. Managers without a
// version upgrader cannot name a target version and operate with an
// unbounded range.
func (vr VersionRange) Unbounded() bool {
	return vr.Max == VersionUnknown
}

// Validate checks the range invariants. The Min bound may not be
// negative and the Max bound, when it is set, may not be smaller than
// the Min bound. A violation is reported before any database is
// touched, as part of the manager composition validation.
func (vr VersionRange) Validate() error {
	if vr.Min < 0 {
		return fmt.Errorf("negative min version: %d", vr.Min)
	}
	if !vr.Unbounded() && vr.Max < vr.Min {
		return fmt.Errorf(
			"max version %d is below min version %d", vr.Max, vr.Min,
		)
	}
	return nil
}

// Contains reports whether the v version falls in the vr range,
// considering an unbounded range to contain all versions at or above
// its Min bound.
func (vr VersionRange) Contains(v Version) bool {
	if v < vr.Min {
		return false
	}
	return vr.Unbounded() || v <= vr.Max
}
