// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package funcloc provides a batch locator which delegates the
// resolution to a callback function, so batches may be computed
// lazily or dispatched by bespoke naming schemes without implementing
// the repo.Locator interface by a new type.
package funcloc

import "github.com/momeni/db-manager/pkg/core/repo"

// Func is a batch resolution callback. It follows the contract of
// the repo.Locator Locate method: unknown names are reported with a
// cerr.BatchNotFoundError, letting a composite registry consult its
// next source.
type Func func(name string) (*repo.Batch, error)

// Locator adapts a Func callback to the repo.Locator interface.
type Locator struct {
	f Func
}

// New creates a Locator delegating to the f callback.
func New(f Func) *Locator {
	return &Locator{f: f}
}

// Locate resolves the named batch by calling the wrapped callback.
func (l *Locator) Locate(name string) (*repo.Batch, error) {
	return l.f(name)
}
