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

package printer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []database.Row {
	return []database.Row{
		{"path": "/a.mkv", "size": int64(100)},
		{"path": "/bb.mkv", "size": int64(2)},
	}
}

func TestFromRowsPutsPathFirst(t *testing.T) {
	t.Parallel()

	tbl := FromRows([]database.Row{{"size": int64(1), "path": "/a", "duration": int64(3)}}, nil)
	assert.Equal(t, []string{"path", "duration", "size"}, tbl.Names)
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"/a", "3", "1"}, tbl.Cells(0))
}

func TestPrintFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format Format
		want   string
	}{
		{format: FormatTable, want: "path     size\n/a.mkv   100\n/bb.mkv  2\n"},
		{format: FormatCSV, want: "path,size\n/a.mkv,100\n/bb.mkv,2\n"},
		{format: FormatJSON, want: `[{"path":"/a.mkv","size":100},{"path":"/bb.mkv","size":2}]` + "\n"},
		{format: FormatLines, want: "/a.mkv\n/bb.mkv\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, Print(&buf, FromRows(sampleRows(), []string{"path", "size"}), tt.format))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrintYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FromRows(sampleRows()[:1], []string{"path", "size"}), FormatYAML))
	assert.Equal(t, "- path: /a.mkv\n  size: 100\n", buf.String())
}

func TestPrintLinesNeedsPath(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Print(&buf, FromRows(sampleRows(), []string{"size"}), FormatLines)
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("xml")
	require.Error(t, err)
}

func TestHumanize(t *testing.T) {
	t.Parallel()

	tbl := FromRows([]database.Row{{
		"path": "/a", "size": int64(6_000_000), "duration": int64(125),
		"play_count": int64(12_345), "playhead": int64(0), "title": nil,
	}}, []string{"path", "size", "duration", "play_count", "playhead", "title"})
	tbl.Humanize()
	assert.Equal(t, []string{"/a", "6.0 MB", "2:05", "12,345", "", ""}, tbl.Cells(0))
}

func TestNaturalize(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	tbl := FromRows([]database.Row{
		{"time_played": int64(1_700_000_000 - 3*86_400)},
		{"time_played": int64(0)},
	}, []string{"time_played"})
	tbl.Naturalize(now)
	assert.Equal(t, "3 days ago", tbl.Cells(0)[0])
	assert.Empty(t, tbl.Cells(1)[0])
}

func TestResizeFitsWidth(t *testing.T) {
	t.Parallel()

	rows := []database.Row{
		{"path": "/videos/" + strings.Repeat("very long name ", 3) + ".mkv", "size": int64(1)},
		{"path": "/v/短い名前の動画ファイルです.mkv", "size": int64(22)},
	}
	tbl := FromRows(rows, []string{"path", "size"})
	tbl.Resize(20)

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, tbl, FormatTable))
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, helpers.StringWidth(line), 20, line)
	}
	assert.True(t, strings.HasSuffix(tbl.Cells(0)[0], "…"))
}

func TestResizeLeavesNarrowTables(t *testing.T) {
	t.Parallel()

	tbl := FromRows(sampleRows(), []string{"path", "size"})
	tbl.Resize(0)
	tbl.Resize(80)
	assert.Equal(t, []string{"/a.mkv", "100"}, tbl.Cells(0))
}

func TestDrop(t *testing.T) {
	t.Parallel()

	tbl := FromRows(sampleRows(), []string{"path", "size"})
	tbl.Drop("size", "missing")
	assert.Equal(t, []string{"path"}, tbl.Names)
	assert.Nil(t, tbl.Column("size"))
}
