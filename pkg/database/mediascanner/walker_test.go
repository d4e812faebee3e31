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

package mediascanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/helpers"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkLibrary(t *testing.T) afero.Fs {
	t.Helper()
	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure(map[string]any{
		"/lib": map[string]any{
			"a.mkv":  "a",
			"b.txt":  "b",
			".trash": map[string]any{"x.mkv": "x"},
			"show": map[string]any{
				"e1.mkv": "1",
				"e2.MKV": "2",
			},
			"sub": map[string]any{
				"deep": map[string]any{"c.mp4": "c"},
			},
		},
	}))
	return h.Fs
}

func collect(t *testing.T, afs afero.Fs, root string, opts WalkOptions) ([]string, ScanStats) {
	t.Helper()
	var got []string
	stats, err := Walk(context.Background(), afs, root, opts, func(path string, _ fs.FileInfo) error {
		got = append(got, filepath.ToSlash(path))
		return nil
	})
	require.NoError(t, err)
	return got, stats
}

func TestWalk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     WalkOptions
		expected []string
		stats    ScanStats
	}{
		{
			name: "extensions and folder exclude",
			opts: WalkOptions{Extensions: []string{".mkv", "mp4"}, Exclude: []string{".trash"}},
			expected: []string{
				"/lib/a.mkv", "/lib/show/e1.mkv", "/lib/show/e2.MKV", "/lib/sub/deep/c.mp4",
			},
			stats: ScanStats{Files: 4, FilteredFiles: 1, Folders: 4, FilteredFolders: 1},
		},
		{
			name:     "include glob",
			opts:     WalkOptions{Extensions: []string{".mkv", ".mp4"}, Include: []string{"*/show/*"}},
			expected: []string{"/lib/show/e1.mkv", "/lib/show/e2.MKV"},
			stats:    ScanStats{Files: 2, FilteredFiles: 4, Folders: 5},
		},
		{
			name: "no filters",
			opts: WalkOptions{},
			expected: []string{
				"/lib/a.mkv", "/lib/b.txt", "/lib/.trash/x.mkv",
				"/lib/show/e1.mkv", "/lib/show/e2.MKV", "/lib/sub/deep/c.mp4",
			},
			stats: ScanStats{Files: 6, Folders: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, stats := collect(t, walkLibrary(t), "/lib", tt.opts)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.stats, stats)
		})
	}
}

func TestWalkSingleFileRoot(t *testing.T) {
	t.Parallel()

	got, stats := collect(t, walkLibrary(t), "/lib/a.mkv", WalkOptions{})
	assert.Equal(t, []string{"/lib/a.mkv"}, got)
	assert.Equal(t, 1, stats.Files)

	got, stats = collect(t, walkLibrary(t), "/lib/b.txt", WalkOptions{Extensions: []string{".mkv"}})
	assert.Empty(t, got)
	assert.Equal(t, 1, stats.FilteredFiles)
}

func TestWalkMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Walk(context.Background(), afero.NewMemMapFs(), "/nope", WalkOptions{},
		func(string, fs.FileInfo) error { return nil })
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWalkCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Walk(ctx, walkLibrary(t), "/lib", WalkOptions{},
		func(string, fs.FileInfo) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestWalkCallbackErrorStops(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	calls := 0
	_, err := Walk(context.Background(), walkLibrary(t), "/lib", WalkOptions{},
		func(string, fs.FileInfo) error {
			calls++
			return stop
		})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestWalkSkipsSymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "real"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real", "a.mkv"), []byte("a"), 0o600))
	require.NoError(t, os.Symlink(filepath.Join(dir, "real"), filepath.Join(dir, "loop")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "real", "a.mkv"), filepath.Join(dir, "link.mkv")))

	var got []string
	_, err := Walk(context.Background(), afero.NewOsFs(), dir, WalkOptions{},
		func(path string, _ fs.FileInfo) error {
			got = append(got, path)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "real", "a.mkv")}, got)
}

func TestWalkProgressIsThrottled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	_, err := Walk(context.Background(), walkLibrary(t), "/lib",
		WalkOptions{Progress: &buf, Clock: clock},
		func(string, fs.FileInfo) error { return nil })
	require.NoError(t, err)

	// first directory and the final summary; the clock never moved
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, "6 files, 5 folders", string(lines[1]))
}

func TestSkippable(t *testing.T) {
	t.Parallel()

	assert.True(t, skippable(&fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}))
	assert.True(t, skippable(&fs.PathError{Op: "open", Path: "/x", Err: fs.ErrPermission}))
	assert.True(t, skippable(fmt.Errorf("read: %w", syscall.EIO)))
	assert.False(t, skippable(&fs.PathError{Op: "open", Path: "/x", Err: syscall.EMFILE}))
	assert.False(t, skippable(errors.New("boom")))
}

func TestWalkMediaLibrary(t *testing.T) {
	t.Parallel()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateMediaDirectory("/media"))

	got, stats := collect(t, h.Fs, "/media", WalkOptions{
		Extensions: []string{".mkv", ".mp4", ".webm"},
		Exclude:    []string{".hidden"},
	})
	assert.ElementsMatch(t, []string{
		"/media/Movies/Heat (1995).mkv",
		"/media/Movies/Alien (1979).mp4",
		"/media/Movies/Extras/trailer.webm",
	}, got)
	assert.Equal(t, 1, stats.FilteredFolders)
}
