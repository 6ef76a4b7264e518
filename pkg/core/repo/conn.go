// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"

	"github.com/momeni/db-manager/pkg/core/model"
)

// TxHandler is a handler function which runs in the scope of one
// transaction. A non-nil returned error causes a rollback, otherwise
// the transaction is committed when the handler returns.
type TxHandler func(context.Context, Tx) error

// TxOptions carries the options of one transaction. The zero value
// requests a transaction with the engine default isolation level.
type TxOptions struct {
	Isolation model.IsolationLevel
}

// Conn represents a single database connection. It is not safe for
// concurrent use. A connection is obtained from a Pool for the scope
// of one handler function and is released when that handler returns,
// so no code path may leak it.
type Conn interface {
	Queryer

	// Tx begins a transaction with the given options, runs the f
	// handler in its scope, and commits or rolls back based on the
	// handler outcome. A panicking handler causes a rollback too,
	// with the panic reported as an error.
	Tx(ctx context.Context, opts TxOptions, f TxHandler) error

	// IsConn method prevents a non-Conn object (such as a Tx) to
	// mistakenly implement the Conn interface.
	IsConn()
}
