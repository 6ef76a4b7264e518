// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"log/slog"

	"github.com/momeni/db-manager/pkg/core/model"
)

// Valuer returns an Attr for the given slog.LogValuer value.
func Valuer(key string, value slog.LogValuer) slog.Attr {
	return slog.Any(key, value)
}

// Err returns an Attr for the given error value.
// The error value is resolved as a string by its Error() method.
// If error value is nil, the constant "no-error" value will be used.
func Err(key string, value error) slog.Attr {
	if value == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, value.Error())
}

// State returns an Attr for the given database state, resolved to its
// kebab-case name.
func State(key string, value model.DbState) slog.Attr {
	return slog.String(key, value.String())
}

// Version returns an Attr for the given schema version. The sentinel
// versions are resolved to their "unknown" and "not-created" names
// instead of the raw negative or zero numbers.
func Version(key string, value model.Version) slog.Attr {
	return slog.String(key, value.String())
}
