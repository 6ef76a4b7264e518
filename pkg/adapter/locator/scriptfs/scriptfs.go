// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scriptfs provides a batch locator which resolves batches
// from script files of an fs.FS instance, such as an embedded
// resources tree or an os.DirFS directory. A batch with the logical
// name `n` is read from the `n.sql` file. One file may contain
// multiple commands separated by the GO delimiter token written on
// its own line (the SQL Server scripting convention), and each
// command block may start with a directive comment which selects its
// execution type:
//
//	-- @Scalar
//	SELECT count(*) FROM cars;
//	GO
//	DELETE FROM cars WHERE archived;
//
// Recognized directives are `-- @NonQuery`, `-- @Scalar`, and
// `-- @Reader`; blocks without a directive default to the non-query
// execution type.
package scriptfs

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/momeni/db-manager/pkg/core/repo"
)

// Locator resolves named batches from script files.
type Locator struct {
	fsys fs.FS
	dir  string
}

// New creates a Locator reading `<name>.sql` files from the dir
// directory of the fsys filesystem. An empty dir addresses the fsys
// root.
func New(fsys fs.FS, dir string) *Locator {
	return &Locator{fsys: fsys, dir: dir}
}

// Locate reads and parses the named batch script file. A missing file
// is reported as a cerr.BatchNotFoundError, so a composite registry
// may consult its next source.
func (l *Locator) Locate(name string) (*repo.Batch, error) {
	p := name + ".sql"
	if l.dir != "" {
		p = path.Join(l.dir, p)
	}
	b, err := fs.ReadFile(l.fsys, p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, cerr.BatchNotFoundError(name)
	case err != nil:
		return nil, fmt.Errorf("reading %q script: %w", p, err)
	}
	batch, err := Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parsing %q script: %w", p, err)
	}
	return batch, nil
}

// directives maps the recognized directive comments to their
// execution types.
var directives = map[string]model.ExecutionType{
	"-- @NonQuery": model.ExecNonQuery,
	"-- @Scalar":   model.ExecScalar,
	"-- @Reader":   model.ExecReader,
}

// Parse splits the text script into its GO-delimited command blocks
// and builds a batch with one script command per non-empty block, in
// source order. The leading directive comment of a block, if any, is
// stripped from the command script text.
func Parse(text string) (*repo.Batch, error) {
	batch := repo.NewBatch()
	for _, seg := range splitOnGo(text) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		cmd := repo.Command{Type: model.ExecNonQuery}
		first, rest, _ := strings.Cut(seg, "\n")
		if t, ok := directives[strings.TrimSpace(first)]; ok {
			cmd.Type = t
			seg = strings.TrimSpace(rest)
			if seg == "" {
				return nil, fmt.Errorf(
					"directive %q with an empty command block", first,
				)
			}
		}
		cmd.Script = seg
		batch.Add(cmd)
	}
	if batch.Len() == 0 {
		return nil, errors.New("script contains no commands")
	}
	return batch, nil
}

// splitOnGo splits text on the lines which hold exactly the GO token
// (surrounding blanks allowed, case-insensitive as the conventional
// scripting tools accept it).
func splitOnGo(text string) []string {
	var (
		segs  []string
		block []string
	)
	for _, line := range strings.Split(text, "\n") {
		if strings.EqualFold(strings.TrimSpace(line), "GO") {
			segs = append(segs, strings.Join(block, "\n"))
			block = block[:0]
			continue
		}
		block = append(block, line)
	}
	segs = append(segs, strings.Join(block, "\n"))
	return segs
}
