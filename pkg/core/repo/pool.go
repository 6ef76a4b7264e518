// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import "context"

// ConnHandler is a handler function which runs in the scope of one
// borrowed connection.
type ConnHandler func(context.Context, Conn) error

// Pool represents a database connection pool. Connections are borrowed
// for the scope of one handler function, so they are guaranteed to be
// released on every exit path including panics.
type Pool interface {
	// Conn borrows a connection, runs the f handler with it, and
	// releases the connection when the handler returns.
	Conn(ctx context.Context, f ConnHandler) error

	// Close closes the pool and all of its idle connections.
	Close() error
}
