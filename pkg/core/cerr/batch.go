// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import "fmt"

// BatchNotFoundError indicates that no registered batch locator could
// resolve the named batch. A composite locator registry also uses this
// error type in order to recognize that one source has no opinion
// about a name and the next source should be consulted.
type BatchNotFoundError string

// Error returns a string representation of the e error instance.
func (e BatchNotFoundError) Error() string {
	return fmt.Sprintf("no batch is known by the %q name", string(e))
}

// TxConflictError indicates that two commands of one batch carry
// opposite hard transaction requirements, so no transaction policy can
// satisfy the whole batch. It is detected statically, before any of
// the batch commands may execute.
type TxConflictError struct {
	// RequiredAt and DisallowedAt are the zero-based indexes of the
	// earliest commands carrying the conflicting requirements.
	RequiredAt   int
	DisallowedAt int
}

// Error returns a string representation of the e error instance.
func (e *TxConflictError) Error() string {
	return fmt.Sprintf(
		"command %d requires a transaction, "+
			"but command %d disallows it",
		e.RequiredAt, e.DisallowedAt,
	)
}

// BatchCommandError indicates that a command failed during a batch
// execution. The Completed field counts the commands which had already
// completed; under an ambient transaction their effects are rolled
// back, otherwise they remain committed and only the remaining
// commands are skipped.
type BatchCommandError struct {
	Index      int   // zero-based index of the failing command
	Completed  int   // number of completed predecessor commands
	RolledBack bool  // whether an ambient tx undid their effects
	Err        error // the command failure
}

// Error returns a string representation of the e error instance.
func (e *BatchCommandError) Error() string {
	outcome := "their effects are retained"
	if e.RolledBack {
		outcome = "their effects are rolled back"
	}
	return fmt.Sprintf(
		"batch command %d failed after %d completed commands (%s): %s",
		e.Index, e.Completed, outcome, e.Err.Error(),
	)
}

// Unwrap returns the wrapped command failure error.
func (e *BatchCommandError) Unwrap() error {
	return e.Err
}
