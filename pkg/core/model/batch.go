// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// ExecutionType selects how the result of a script command is obtained
// from the database engine.
type ExecutionType int

// The recognized execution types. ExecNonQuery is the zero value and
// so the default for commands which do not select one explicitly.
const (
	// ExecNonQuery runs the script as a statement and yields the
	// affected rows count.
	ExecNonQuery ExecutionType = iota

	// ExecScalar runs the script as a query and yields the first
	// column of its first row.
	ExecScalar

	// ExecReader runs the script as a query and yields the fully
	// materialized row set.
	ExecReader
)

// String returns the conventional name of the t execution type, as it
// also appears in script directive comments.
func (t ExecutionType) String() string {
	switch t {
	case ExecNonQuery:
		return "NonQuery"
	case ExecScalar:
		return "Scalar"
	case ExecReader:
		return "Reader"
	}
	return "invalid"
}

// TxRequirement is the per-command transaction policy. Requirements of
// all commands of one batch are merged in order to decide whether one
// ambient transaction must span the whole batch, and two commands with
// opposite hard requirements make the batch unexecutable.
type TxRequirement int

// The recognized transaction requirements. TxDontCare is the zero
// value and is compatible with anything.
const (
	TxDontCare TxRequirement = iota
	TxRequired
	TxDisallowed
)

// String returns the kebab-case name of the r requirement.
func (r TxRequirement) String() string {
	switch r {
	case TxDontCare:
		return "dont-care"
	case TxRequired:
		return "required"
	case TxDisallowed:
		return "disallowed"
	}
	return "invalid"
}

// Merge combines the r requirement with the o requirement of another
// command. A TxDontCare value yields to the other requirement, equal
// requirements merge to themselves, and opposite hard requirements
// are irreconcilable, reported by the ok return value.
func (r TxRequirement) Merge(o TxRequirement) (
	merged TxRequirement, ok bool,
) {
	switch {
	case r == TxDontCare:
		return o, true
	case o == TxDontCare || o == r:
		return r, true
	}
	return TxDontCare, false
}

// IsolationLevel abstracts the transaction isolation levels which may
// be requested by a batch command or configured as a manager default.
// Engine adapters map these levels to their driver counterparts and
// IsolationDefault defers to the engine default level.
type IsolationLevel int

// The recognized isolation levels.
const (
	IsolationDefault IsolationLevel = iota
	IsolationReadUncommitted
	IsolationReadCommitted
	IsolationRepeatableRead
	IsolationSerializable
)

// String returns the SQL standard name of the l level.
func (l IsolationLevel) String() string {
	switch l {
	case IsolationDefault:
		return "DEFAULT"
	case IsolationReadUncommitted:
		return "READ UNCOMMITTED"
	case IsolationReadCommitted:
		return "READ COMMITTED"
	case IsolationRepeatableRead:
		return "REPEATABLE READ"
	case IsolationSerializable:
		return "SERIALIZABLE"
	}
	return "invalid"
}

// RowSet holds the fully materialized result of an ExecReader command.
// Rows are read completely before the next command of a batch may run
// because all commands of one batch share a single connection (and
// possibly a single transaction) and an open row set would conflict
// with subsequent statements on most engines.
type RowSet struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether rs holds no rows.
func (rs *RowSet) Empty() bool {
	return rs == nil || len(rs.Rows) == 0
}
