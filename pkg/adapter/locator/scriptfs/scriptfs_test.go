// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scriptfs_test

import (
	"testing"
	"testing/fstest"

	"github.com/momeni/db-manager/pkg/adapter/locator/scriptfs"
	"github.com/momeni/db-manager/pkg/core/cerr"
	"github.com/momeni/db-manager/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleCommand(t *testing.T) {
	b, err := scriptfs.Parse("SELECT * FROM cars;")
	require.NoError(t, err)
	require.Equal(t, 1, b.Len())
	cmd := b.Command(0)
	assert.Equal(t, "SELECT * FROM cars;", cmd.Script)
	assert.Equal(t, model.ExecNonQuery, cmd.Type)
}

func TestParseGoDelimitedCommands(t *testing.T) {
	text := `-- @Scalar
SELECT count(*) FROM cars;
GO
DELETE FROM cars WHERE archived;
go
-- @Reader
SELECT cid, name
FROM cars;
`
	b, err := scriptfs.Parse(text)
	require.NoError(t, err)
	require.Equal(t, 3, b.Len())

	assert.Equal(t, model.ExecScalar, b.Command(0).Type)
	assert.Equal(
		t, "SELECT count(*) FROM cars;", b.Command(0).Script,
	)
	assert.Equal(t, model.ExecNonQuery, b.Command(1).Type)
	assert.Equal(t, model.ExecReader, b.Command(2).Type)
	assert.Equal(
		t, "SELECT cid, name\nFROM cars;", b.Command(2).Script,
	)
}

func TestParseSkipsEmptyBlocks(t *testing.T) {
	b, err := scriptfs.Parse("SELECT 1;\nGO\n\nGO\nSELECT 2;\nGO\n")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
}

func TestParseGoInsideStatementIsNotADelimiter(t *testing.T) {
	b, err := scriptfs.Parse(
		"INSERT INTO words (w) VALUES ('GO THERE');",
	)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}

func TestParseErrors(t *testing.T) {
	_, err := scriptfs.Parse("")
	assert.Error(t, err, "no commands at all")

	_, err = scriptfs.Parse("GO\n\nGO")
	assert.Error(t, err, "only empty blocks")

	_, err = scriptfs.Parse("-- @Scalar\nGO\nSELECT 1;")
	assert.Error(t, err, "directive with an empty block")
}

func TestLocate(t *testing.T) {
	fsys := fstest.MapFS{
		"scripts/cleanup.sql": &fstest.MapFile{
			Data: []byte("DELETE FROM sessions;\nGO\nVACUUM;"),
		},
	}
	l := scriptfs.New(fsys, "scripts")

	b, err := l.Locate("cleanup")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	_, err = l.Locate("missing")
	var bnfe cerr.BatchNotFoundError
	require.ErrorAs(t, err, &bnfe)
	assert.Equal(t, "missing", string(bnfe))
}

func TestLocateRootDir(t *testing.T) {
	fsys := fstest.MapFS{
		"init.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
	}
	l := scriptfs.New(fsys, "")
	b, err := l.Locate("init")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}
