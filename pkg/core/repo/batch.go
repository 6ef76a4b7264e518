// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/model"
)

// Param is one named parameter of a script command, bound by the
// engine adapter when the script executes.
type Param struct {
	Name  string
	Value any
}

// CodeFunc is a procedural batch command. It receives the shared
// connection of the batch as the q Queryer and, when the batch runs
// under an ambient transaction, that transaction as tx (nil
// otherwise; in that case q is the transaction itself, so statements
// issued via q always observe the ambient transaction). A non-nil
// returned error terminates the batch immediately; the returned value
// is captured as this command result.
type CodeFunc func(
	ctx context.Context, q Queryer, tx Tx, params []Param,
) (any, error)

// Command is one step of a Batch: either a script text or a callback,
// never both. The zero value of the remaining fields selects a
// non-query execution with no transaction opinion.
type Command struct {
	// Script is the verbatim statement text. It is mutually exclusive
	// with Code; exactly one of them must be set.
	Script string

	// Code is the procedural command callback.
	Code CodeFunc

	// Type selects how a script command result is obtained. It is
	// ignored for Code commands which compute their result directly.
	Type model.ExecutionType

	// Tx is this command transaction requirement, merged across the
	// batch in order to resolve the effective transaction policy.
	Tx model.TxRequirement

	// Isolation optionally overrides the ambient transaction isolation
	// level. Among multiple overrides in one batch, the last explicit
	// one wins.
	Isolation model.IsolationLevel

	// Params holds the named parameters of a script command. They are
	// also passed through to Code commands.
	Params []Param
}

// Validate checks that the c command is well-formed, that is, exactly
// one of its Script and Code variants is set.
func (c *Command) Validate() error {
	switch {
	case c.Script == "" && c.Code == nil:
		return errors.New("command has neither script nor code")
	case c.Script != "" && c.Code != nil:
		return errors.New("command has both script and code")
	}
	return nil
}

// Args returns the positional argument values which should be bound
// when the command script executes, in their declaration order.
func (c *Command) Args() []any {
	if len(c.Params) == 0 {
		return nil
	}
	args := make([]any, 0, len(c.Params))
	for _, p := range c.Params {
		args = append(args, p.Value)
	}
	return args
}

// Batch is an ordered list of commands which execute as one logical
// unit against a database. Insertion order is execution order. A batch
// is built once, by a locator or by application code, and is treated
// as read-only after it is handed to a manager.
type Batch struct {
	commands []Command
}

// NewBatch creates a batch holding the given commands in order.
func NewBatch(commands ...Command) *Batch {
	b := &Batch{}
	b.commands = append(b.commands, commands...)
	return b
}

// Add appends a command to the b batch and returns b for chaining.
// It may only be used during the batch construction, before the batch
// is handed to a manager.
func (b *Batch) Add(c Command) *Batch {
	b.commands = append(b.commands, c)
	return b
}

// Len returns the number of commands of the b batch.
func (b *Batch) Len() int {
	return len(b.commands)
}

// Command returns the i-th command of the b batch.
func (b *Batch) Command(i int) *Command {
	return &b.commands[i]
}

// Validate checks all commands of the b batch for well-formedness and
// resolves the batch transaction policy, reporting a conflict between
// opposite hard requirements as a *cerr.TxConflictError. It runs
// before any command may execute and before any connection is opened.
func (b *Batch) Validate() error {
	for i := range b.commands {
		if err := b.commands[i].Validate(); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	}
	_, err := b.ResolveTx()
	return err
}

// ResolveTx merges the per-command transaction requirements from left
// to right and returns the effective transaction policy of the whole
// batch. A model.TxDontCare result defers the decision to the manager
// configured default policy. Two commands with opposite hard
// requirements yield a *cerr.TxConflictError naming both commands.
func (b *Batch) ResolveTx() (model.TxRequirement, error) {
	merged := model.TxDontCare
	decidedAt := -1
	for i := range b.commands {
		m, ok := merged.Merge(b.commands[i].Tx)
		if !ok {
			e := &cerr.TxConflictError{
				RequiredAt:   decidedAt,
				DisallowedAt: i,
			}
			if merged == model.TxDisallowed {
				e.RequiredAt, e.DisallowedAt = i, decidedAt
			}
			return model.TxDontCare, e
		}
		if merged == model.TxDontCare && m != model.TxDontCare {
			decidedAt = i
		}
		merged = m
	}
	return merged, nil
}

// Isolation returns the isolation level of the ambient transaction of
// the b batch, taking the last explicit per-command override if any
// and the def manager default level otherwise.
func (b *Batch) Isolation(
	def model.IsolationLevel,
) model.IsolationLevel {
	iso := def
	for i := range b.commands {
		if l := b.commands[i].Isolation; l != model.IsolationDefault {
			iso = l
		}
	}
	return iso
}
