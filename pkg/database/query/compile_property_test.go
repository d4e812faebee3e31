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

package query

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/helpers"
	"pgregory.net/rapid"
)

func uploaderGen() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{"alice", "bob", "carol", "dave", ""})
}

// TestPropertySelectionNeverReturnsBlocked verifies no selected row matches
// a blocklist entry on a configured key.
//
//nolint:paralleltest // goose keeps global state
func TestPropertySelectionNeverReturnsBlocked(t *testing.T) {
	db, cleanup := helpers.NewInMemoryMediaDB(t)
	defer cleanup()
	ctx := context.Background()
	raw := db.UnsafeGetSQLDb()

	rapid.Check(t, func(rt *rapid.T) {
		if _, err := raw.ExecContext(ctx, "DELETE FROM media; DELETE FROM blocklist;"); err != nil {
			rt.Fatalf("reset: %v", err)
		}

		n := rapid.IntRange(1, 20).Draw(rt, "rows")
		batch := make([]database.Media, 0, n)
		for i := range n {
			batch = append(batch, database.Media{
				Path:     fmt.Sprintf("/d%d/f%d.mkv", rapid.IntRange(0, 3).Draw(rt, "dir"), i),
				Uploader: uploaderGen().Draw(rt, "uploader"),
			})
		}
		if err := db.UpsertMediaBatch(ctx, batch); err != nil {
			rt.Fatalf("seed: %v", err)
		}

		blockedUploaders := rapid.SliceOfDistinct(
			rapid.SampledFrom([]string{"alice", "bob", "carol", "dave"}),
			func(s string) string { return s },
		).Draw(rt, "blocked")
		blockedDir := fmt.Sprintf("/d%d/%%", rapid.IntRange(0, 3).Draw(rt, "blockedDir"))

		entries := []database.BlocklistEntry{{Key: "path", Value: blockedDir}}
		for _, u := range blockedUploaders {
			entries = append(entries, database.BlocklistEntry{Key: "uploader", Value: u})
		}
		if err := db.AddBlocklist(ctx, entries...); err != nil {
			rt.Fatalf("blocklist: %v", err)
		}

		rows, err := Select(ctx, db, &SelectionSpec{
			Blocklist: []string{"uploader", "path"},
			Cols:      []string{"uploader"},
		})
		if err != nil && !errors.Is(err, database.ErrNoMediaFound) {
			rt.Fatalf("select: %v", err)
		}
		for _, r := range rows {
			for _, u := range blockedUploaders {
				if r.String("uploader") == u {
					rt.Fatalf("row %s has blocked uploader %s", r.Path(), u)
				}
			}
			if filepath.Dir(r.Path())+"/%" == blockedDir {
				rt.Fatalf("row %s is under blocked path %s", r.Path(), blockedDir)
			}
		}
	})
}

// TestPropertySiblingBounds verifies every kept row's parent count is within
// the requested bounds.
func TestPropertySiblingBounds(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "rows")
		rows := make([]database.Row, 0, n)
		for i := range n {
			dir := rapid.IntRange(0, 5).Draw(t, "dir")
			rows = append(rows, database.Row{"path": fmt.Sprintf("/lib/%d/%d.mp3", dir, i)})
		}
		lower := rapid.IntRange(0, 6).Draw(t, "lower")
		upper := rapid.IntRange(0, 10).Draw(t, "upper")

		counts := map[string]int{}
		for _, r := range rows {
			counts[r.Parent()]++
		}

		kept := FilterSiblings(rows, lower, upper)
		for _, r := range kept {
			c := counts[r.Parent()]
			if c < lower || (upper > 0 && c > upper) {
				t.Fatalf("kept %s with %d siblings outside [%d, %d]", r.Path(), c, lower, upper)
			}
		}
		// nothing eligible is dropped
		want := 0
		for _, r := range rows {
			c := counts[r.Parent()]
			if c >= lower && (upper == 0 || c <= upper) {
				want++
			}
		}
		if len(kept) != want {
			t.Fatalf("kept %d rows, want %d", len(kept), want)
		}
	})
}
