// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memloc provides a batch locator which resolves batches from
// an in-memory dictionary. It suits application code which builds its
// batches programmatically and still wants to expose them through the
// manager locator registry, e.g., to the script processors.
package memloc

import (
	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/repo"
)

// Locator resolves named batches from an in-memory dictionary.
type Locator struct {
	batches map[string]*repo.Batch
}

// New creates an empty Locator.
func New() *Locator {
	return &Locator{batches: make(map[string]*repo.Batch)}
}

// Set registers the b batch under the given name, replacing any
// previously registered batch of that name. It returns the locator
// for chaining.
func (l *Locator) Set(name string, b *repo.Batch) *Locator {
	l.batches[name] = b
	return l
}

// Locate returns the named batch, or a cerr.BatchNotFoundError when
// no batch was registered under that name.
func (l *Locator) Locate(name string) (*repo.Batch, error) {
	if b, ok := l.batches[name]; ok {
		return b, nil
	}
	return nil, cerr.BatchNotFoundError(name)
}
