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
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/probe"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/helpers"
	"pgregory.net/rapid"
)

type genFile struct {
	path string
	size int
}

func libraryGen() *rapid.Generator[[]genFile] {
	return rapid.Custom(func(t *rapid.T) []genFile {
		n := rapid.IntRange(1, 12).Draw(t, "files")
		files := make([]genFile, 0, n)
		for i := range n {
			dir := rapid.SampledFrom([]string{"", "a/", "a/b/", "c/"}).Draw(t, "dir")
			files = append(files, genFile{
				path: fmt.Sprintf("/lib/%sf%d.mp4", dir, i),
				size: rapid.IntRange(1, 512).Draw(t, "size"),
			})
		}
		return files
	})
}

// TestPropertyRescanIsStable verifies a rescan of an unchanged tree marks
// nothing deleted and probes nothing.
//
//nolint:paralleltest // goose keeps global state
func TestPropertyRescanIsStable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		files := libraryGen().Draw(rt, "library")

		db, clock, cleanup := helpers.NewClockedMediaDB(t, scanStart)
		defer cleanup()
		h := helpers.NewMemoryFS()
		for _, f := range files {
			if err := h.CreateSizedFile(f.path, f.size, time.Unix(scanStart, 0)); err != nil {
				rt.Fatal(err)
			}
		}
		scanner := NewScanner(db, h.Fs, newStatProber(h.Fs), scanConfig(), WithClock(clock))
		ctx := context.Background()

		first, err := scanner.Scan(ctx, "/lib", probe.ProfileVideo)
		if err != nil {
			rt.Fatal(err)
		}
		if first.Added != len(files) {
			rt.Fatalf("first scan added %d of %d", first.Added, len(files))
		}

		clock.Advance(time.Hour)
		second, err := scanner.Scan(ctx, "/lib", probe.ProfileVideo)
		if err != nil {
			rt.Fatal(err)
		}
		if second.Deleted != 0 || second.Added != 0 || second.Updated != 0 || second.Resurrected != 0 {
			rt.Fatalf("second scan changed rows: %+v", second)
		}
	})
}

// TestPropertyReappearingPathIsResurrected verifies deleted rows come back
// live with the new file's stats.
//
//nolint:paralleltest // goose keeps global state
func TestPropertyReappearingPathIsResurrected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		files := libraryGen().Draw(rt, "library")
		mask := rapid.SliceOfN(rapid.Bool(), len(files), len(files)).Draw(rt, "removed")
		var removed []genFile
		for i, f := range files {
			if mask[i] {
				removed = append(removed, f)
			}
		}

		db, clock, cleanup := helpers.NewClockedMediaDB(t, scanStart)
		defer cleanup()
		h := helpers.NewMemoryFS()
		for _, f := range files {
			if err := h.CreateSizedFile(f.path, f.size, time.Unix(scanStart, 0)); err != nil {
				rt.Fatal(err)
			}
		}
		// keep one file per directory so parents survive the removal
		for _, dir := range []string{"/lib", "/lib/a", "/lib/a/b", "/lib/c"} {
			if err := h.CreateSizedFile(dir+"/anchor.mp4", 1, time.Unix(scanStart, 0)); err != nil {
				rt.Fatal(err)
			}
		}
		scanner := NewScanner(db, h.Fs, newStatProber(h.Fs), scanConfig(), WithClock(clock))
		ctx := context.Background()

		if _, err := scanner.Scan(ctx, "/lib", probe.ProfileVideo); err != nil {
			rt.Fatal(err)
		}
		for _, f := range removed {
			if err := h.Fs.Remove(f.path); err != nil {
				rt.Fatal(err)
			}
		}
		clock.Advance(time.Hour)
		counts, err := scanner.Scan(ctx, "/lib", probe.ProfileVideo)
		if err != nil {
			rt.Fatal(err)
		}
		if counts.Deleted != len(removed) {
			rt.Fatalf("deleted %d, want %d", counts.Deleted, len(removed))
		}

		restored := time.Unix(scanStart+86400, 0)
		for _, f := range removed {
			if err := h.CreateSizedFile(f.path, f.size+1000, restored); err != nil {
				rt.Fatal(err)
			}
		}
		clock.Advance(time.Hour)
		counts, err = scanner.Scan(ctx, "/lib", probe.ProfileVideo)
		if err != nil {
			rt.Fatal(err)
		}
		if counts.Resurrected != len(removed) {
			rt.Fatalf("resurrected %d, want %d", counts.Resurrected, len(removed))
		}

		for _, f := range removed {
			m, err := db.FindMedia(ctx, f.path)
			if err != nil {
				rt.Fatal(err)
			}
			if m.TimeDeleted != 0 {
				rt.Fatalf("%s still deleted", f.path)
			}
			if m.Size != int64(f.size+1000) || m.TimeModified != restored.Unix() {
				rt.Fatalf("%s has stale stats: size %d mtime %d", f.path, m.Size, m.TimeModified)
			}
		}
	})
}
