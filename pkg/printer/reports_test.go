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
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unix(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Unix()
}

func TestStatsByMonth(t *testing.T) {
	t.Parallel()

	rows := []database.Row{
		{"path": "/v/c.mkv", "size": int64(30), "duration": int64(3), "time_created": unix(2024, time.March, 2)},
		{"path": "/v/a.mkv", "size": int64(10), "duration": int64(1), "time_created": unix(2024, time.January, 5)},
		{"path": "/v/b.mkv", "size": int64(20), "duration": int64(2), "time_created": unix(2024, time.January, 30)},
		{"path": "/v/d.mkv", "size": int64(1), "duration": int64(1), "time_created": int64(0)},
	}
	tbl := Stats(rows, ByMonthCreated)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"month_created", "count", "size", "duration"}, tbl.Names)
	assert.Equal(t, []string{"2024-01", "2", "30", "3"}, tbl.Cells(0))
	assert.Equal(t, []string{"2024-03", "1", "30", "3"}, tbl.Cells(1))
	assert.Equal(t, []string{"unknown", "1", "1", "1"}, tbl.Cells(2))
}

func TestStatsByParent(t *testing.T) {
	t.Parallel()

	rows := []database.Row{
		{"path": "/a/1.mkv", "size": int64(1)},
		{"path": "/b/1.mkv", "size": int64(1)},
		{"path": "/b/2.mkv", "size": int64(1)},
	}
	tbl := Stats(rows, "")
	assert.Equal(t, "parent", tbl.Names[0])
	assert.Equal(t, []any{"/b", "/a"}, tbl.Column("parent"))
}

func TestStatsColumns(t *testing.T) {
	t.Parallel()

	cols, err := StatsColumns(ByPlaylist)
	require.NoError(t, err)
	assert.Equal(t, []string{"playlist_id"}, cols)

	_, err = StatsColumns("weekday")
	require.Error(t, err)
}

func TestHistoryAndCaptionTables(t *testing.T) {
	t.Parallel()

	h := HistoryTable([]database.HistoryEntry{{Path: "/v/a.mkv", TimePlayed: 5, Playhead: 60, Done: true}})
	assert.Equal(t, []string{"/v/a.mkv", "5", "60", "true"}, h.Cells(0))

	c := CaptionTable([]database.CaptionHit{{Path: "/v/a.mkv", Time: 12.7, Text: "hello"}})
	assert.Equal(t, []string{"/v/a.mkv", "12", "hello"}, c.Cells(0))
}
