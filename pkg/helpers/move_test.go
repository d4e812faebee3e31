// Zaparoo MediaLib
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo MediaLib.
//
// Zaparoo MediaLib is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo MediaLib is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo MediaLib.  If not, see <http://www.gnu.org/licenses/>.

package helpers

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exdevFs fails every rename as if src and dst were on different devices.
type exdevFs struct {
	afero.Fs
}

func (exdevFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: syscall.EXDEV}
}

func TestMoveFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/a.mkv", []byte("data"), 0o644))
	require.NoError(t, fs.MkdirAll("/dst", 0o755))

	require.NoError(t, MoveFile(fs, "/src/a.mkv", "/dst/a.mkv"))

	exists, err := afero.Exists(fs, "/src/a.mkv")
	require.NoError(t, err)
	assert.False(t, exists)
	data, err := afero.ReadFile(fs, "/dst/a.mkv")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestMoveFileCrossDevice(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	mtime := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, afero.WriteFile(base, "/src/a.mkv", []byte("payload"), 0o644))
	require.NoError(t, base.Chtimes("/src/a.mkv", mtime, mtime))
	fs := exdevFs{Fs: base}

	require.NoError(t, MoveFile(fs, "/src/a.mkv", "/other/disk/a.mkv"))

	exists, err := afero.Exists(base, "/src/a.mkv")
	require.NoError(t, err)
	assert.False(t, exists)

	info, err := base.Stat("/other/disk/a.mkv")
	require.NoError(t, err)
	assert.Equal(t, int64(len("payload")), info.Size())
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestMoveFileMissingSource(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	err := MoveFile(fs, "/nope.mkv", "/dst/nope.mkv")
	require.Error(t, err)
}

func TestKeepPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/keep/a.mkv", KeepPath("/tv/a.mkv", "/keep"))
	assert.Equal(t, "/tv/keep/a.mkv", KeepPath("/tv/a.mkv", "keep"))
	assert.Equal(t, "/tv/keep/a.mkv", KeepPath("/tv/a.mkv", ""))
}
