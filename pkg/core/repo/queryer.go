// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package repo provides the engine capability contracts (connection
// pools, connections, transactions, and statement execution) together
// with the collaborator contracts (version detectors, version
// upgraders, and batch locators) and the batch model which the
// database lifecycle manager core is written against. Concrete engine
// adapters implement these contracts once per database engine, while
// the core never depends on a concrete driver.
package repo

import "context"

// Queryer is the common interface of connections and transactions for
// execution of SQL statements.
type Queryer interface {
	// Exec runs the sql statement with the given args and returns the
	// number of affected rows. Parameters placeholding syntax depends
	// on the engine adapter.
	Exec(ctx context.Context, sql string, args ...any) (
		count int64, err error,
	)

	// Query runs the sql query with the given args and returns its
	// result set. The returned Rows must be closed before another
	// statement may run on the same connection.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Rows represents a forward-only result set of one query.
type Rows interface {
	// Close releases the result set. The returned error, if any, may
	// be checked by calling the Err method.
	Close()

	// Err returns the error, if any, which was encountered during
	// iteration.
	Err() error

	// Next prepares the next row for Scan or Values, reporting false
	// when no row remains.
	Next() bool

	// Scan copies the current row columns into the dest pointers.
	Scan(dest ...any) error

	// Values returns the current row as a slice of driver values.
	Values() ([]any, error)

	// Columns returns the column names of the result set.
	Columns() ([]string, error)
}
