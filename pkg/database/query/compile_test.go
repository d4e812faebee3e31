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
	"testing"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/filters"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileDefaults(t *testing.T) {
	t.Parallel()

	c, err := Compile(&SelectionSpec{Action: ActionPrint})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT m.id, m.path, m.title, m.playhead, m.play_count, m.time_deleted, m.duration, m.size "+
			"FROM media m WHERE m.time_deleted = 0 ORDER BY m.path, random()",
		c.SQL)
	assert.Empty(t, c.Params)
}

func TestCompileRandomRowidConstraint(t *testing.T) {
	t.Parallel()

	c, err := Compile(&SelectionSpec{Action: ActionWatch, RandomRowidLimit: 60000, Limit: 5})
	require.NoError(t, err)
	assert.Contains(t, c.SQL, "m.rowid IN (SELECT rowid FROM media ORDER BY random() LIMIT :rowid_limit)")
	assert.Contains(t, c.SQL, "ORDER BY m.play_count, m.playhead DESC, random() LIMIT :limit")
	assert.Equal(t, 60000, c.Params["rowid_limit"])
	assert.Equal(t, 5, c.Params["limit"])

	c, err = Compile(&SelectionSpec{Action: ActionWatch, RandomRowidLimit: 60000, Sort: []string{"size desc"}})
	require.NoError(t, err)
	assert.NotContains(t, c.SQL, "rowid_limit")
	assert.Contains(t, c.SQL, "ORDER BY size desc, random()")

	c, err = Compile(&SelectionSpec{Action: ActionPrint, RandomRowidLimit: 60000})
	require.NoError(t, err)
	assert.NotContains(t, c.SQL, "rowid_limit")
}

func TestCompileSortTokens(t *testing.T) {
	t.Parallel()

	c, err := Compile(&SelectionSpec{Sort: []string{"month_created desc", "random"}})
	require.NoError(t, err)
	assert.Contains(t, c.SQL,
		"ORDER BY CAST(strftime('%Y%m', datetime(m.time_created, 'unixepoch')) AS INT) desc, random()")
	assert.NotContains(t, c.SQL, "random(), random()")

	c, err = Compile(&SelectionSpec{Sort: []string{"priority"}})
	require.NoError(t, err)
	assert.Contains(t, c.SQL, "ntile(1000) OVER")
}

func TestCompileRejectsInvalidSpecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec *SelectionSpec
		name string
	}{
		{name: "upper below lower", spec: &SelectionSpec{Lower: 5, Upper: 2}},
		{name: "online and local", spec: &SelectionSpec{OnlineOnly: true, LocalOnly: true}},
		{name: "unknown action", spec: &SelectionSpec{Action: "dance"}},
		{name: "negative limit", spec: &SelectionSpec{Limit: -1}},
		{name: "unknown column", spec: &SelectionSpec{Cols: []string{"nope"}}},
		{name: "unknown blocklist key", spec: &SelectionSpec{Blocklist: []string{"size;drop"}}},
		{name: "empty include", spec: &SelectionSpec{Include: []string{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Compile(tt.spec)
			require.ErrorIs(t, err, database.ErrInvalidQuery)
		})
	}
}

func TestCompileSiblingBoundsMoveLimitOutOfSQL(t *testing.T) {
	t.Parallel()

	c, err := Compile(&SelectionSpec{Lower: 2, Limit: 3, Offset: 1})
	require.NoError(t, err)
	assert.NotContains(t, c.SQL, "LIMIT")
	assert.Equal(t, 3, c.Limit)
	assert.Equal(t, 1, c.Offset)
}

func TestCompileEscapesColonsInWhere(t *testing.T) {
	t.Parallel()

	c, err := Compile(&SelectionSpec{Where: []string{"title = 'a:b'"}})
	require.NoError(t, err)
	assert.Contains(t, c.SQL, "(title = 'a::b')")
}

func seedMedia(t *testing.T, db database.CatalogDBI) {
	t.Helper()
	require.NoError(t, db.UpsertMediaBatch(context.Background(), []database.Media{
		{Path: "/tv/show/e1.mkv", Title: "Pilot", Size: 5_000_000, Duration: 1_200, Width: 1920, Height: 1080},
		{Path: "/tv/show/e2.mkv", Title: "Second", Size: 6_000_000, Duration: 1_300, Uploader: "spam"},
		{Path: "/tv/show/e3.mkv", Title: "Third: Finale", Size: 7_000_000, Duration: 1_400},
		{Path: "/tv/movie/m.mkv", Title: "Heat", Size: 9_000_000, Duration: 6_000, Width: 1080, Height: 1920},
		{Path: "https://example.com/v/1", Title: "Remote pilot", Duration: 100},
	}))
}

func paths(rows []database.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Path())
	}
	return out
}

//nolint:paralleltest // goose keeps global state
func TestSelectAgainstCatalog(t *testing.T) {
	db, cleanup := helpers.NewInMemoryMediaDB(t)
	defer cleanup()
	ctx := context.Background()
	seedMedia(t, db)

	plus6, err := filters.ParseSizeRange("+6MB")
	require.NoError(t, err)

	tests := []struct {
		name     string
		spec     SelectionSpec
		expected []string
	}{
		{
			name:     "include like",
			spec:     SelectionSpec{Include: []string{"pilot"}},
			expected: []string{"/tv/show/e1.mkv", "https://example.com/v/1"},
		},
		{
			name:     "include fts",
			spec:     SelectionSpec{Include: []string{"pilot"}, FTS: true},
			expected: []string{"/tv/show/e1.mkv", "https://example.com/v/1"},
		},
		{
			name:     "exclude fts",
			spec:     SelectionSpec{Exclude: []string{"pilot"}, FTS: true, LocalOnly: true},
			expected: []string{"/tv/movie/m.mkv", "/tv/show/e2.mkv", "/tv/show/e3.mkv"},
		},
		{
			name:     "size range",
			spec:     SelectionSpec{Size: plus6},
			expected: []string{"/tv/movie/m.mkv", "/tv/show/e2.mkv", "/tv/show/e3.mkv"},
		},
		{
			name:     "portrait",
			spec:     SelectionSpec{Portrait: true},
			expected: []string{"/tv/movie/m.mkv"},
		},
		{
			name:     "online only",
			spec:     SelectionSpec{OnlineOnly: true},
			expected: []string{"https://example.com/v/1"},
		},
		{
			name:     "where with colon",
			spec:     SelectionSpec{Where: []string{"title = 'Third: Finale'"}},
			expected: []string{"/tv/show/e3.mkv"},
		},
		{
			name:     "keep dir",
			spec:     SelectionSpec{KeepDir: "/tv/show/", LocalOnly: true},
			expected: []string{"/tv/movie/m.mkv"},
		},
		{
			name:     "keep dir is case sensitive",
			spec:     SelectionSpec{KeepDir: "/TV/show", LocalOnly: true},
			expected: []string{"/tv/movie/m.mkv", "/tv/show/e1.mkv", "/tv/show/e2.mkv", "/tv/show/e3.mkv"},
		},
		{
			name:     "relative keep dir",
			spec:     SelectionSpec{KeepDir: "show", LocalOnly: true},
			expected: []string{"/tv/movie/m.mkv"},
		},
		{
			name:     "siblings",
			spec:     SelectionSpec{Lower: 2, LocalOnly: true},
			expected: []string{"/tv/show/e1.mkv", "/tv/show/e2.mkv", "/tv/show/e3.mkv"},
		},
		{
			name:     "siblings paged",
			spec:     SelectionSpec{Lower: 2, LocalOnly: true, Limit: 1, Offset: 1},
			expected: []string{"/tv/show/e2.mkv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Select(ctx, db, &tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, paths(rows))
		})
	}
}

//nolint:paralleltest // goose keeps global state
func TestSelectAppliesBlocklist(t *testing.T) {
	db, cleanup := helpers.NewInMemoryMediaDB(t)
	defer cleanup()
	ctx := context.Background()
	seedMedia(t, db)

	require.NoError(t, db.AddBlocklist(ctx,
		database.BlocklistEntry{Key: "uploader", Value: "spam"},
		database.BlocklistEntry{Key: "path", Value: "https://%"},
	))

	rows, err := Select(ctx, db, &SelectionSpec{Blocklist: []string{"uploader", "path"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/tv/movie/m.mkv", "/tv/show/e1.mkv", "/tv/show/e3.mkv"}, paths(rows))
}

//nolint:paralleltest // goose keeps global state
func TestSelectNoMedia(t *testing.T) {
	db, cleanup := helpers.NewInMemoryMediaDB(t)
	defer cleanup()

	_, err := Select(context.Background(), db, &SelectionSpec{Include: []string{"nothing"}})
	require.ErrorIs(t, err, database.ErrNoMediaFound)
}

//nolint:paralleltest // goose keeps global state
func TestSelectInvalidWhereSurfaces(t *testing.T) {
	db, cleanup := helpers.NewInMemoryMediaDB(t)
	defer cleanup()

	_, err := Select(context.Background(), db, &SelectionSpec{Where: []string{"nope ="}})
	require.ErrorIs(t, err, database.ErrInvalidQuery)
}
