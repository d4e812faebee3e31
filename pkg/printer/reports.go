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
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
)

// Stats groupings.
const (
	ByMonthCreated  = "month_created"
	ByMonthModified = "month_modified"
	ByPlaylist      = "playlist"
	ByParent        = "parent"
)

// StatsColumns are the columns a stats query must project for by.
func StatsColumns(by string) ([]string, error) {
	switch by {
	case ByMonthCreated:
		return []string{"time_created"}, nil
	case ByMonthModified:
		return []string{"time_modified"}, nil
	case ByPlaylist:
		return []string{"playlist_id"}, nil
	case ByParent, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown stats grouping %q", by)
	}
}

type group struct {
	key      string
	count    int64
	size     int64
	duration int64
}

func month(ts int64) string {
	if ts <= 0 {
		return "unknown"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01")
}

func groupKey(r database.Row, by string) string {
	switch by {
	case ByMonthCreated:
		return month(r.Int("time_created"))
	case ByMonthModified:
		return month(r.Int("time_modified"))
	case ByPlaylist:
		if id := r.Int("playlist_id"); id > 0 {
			return fmt.Sprintf("playlist %d", id)
		}
		return "none"
	default:
		return r.Parent()
	}
}

// Stats aggregates count, total size and total duration per group. Month
// groups are in calendar order; the rest are largest first.
func Stats(rows []database.Row, by string) *Table {
	index := map[string]int{}
	var groups []group
	for _, r := range rows {
		k := groupKey(r, by)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k})
		}
		groups[i].count++
		groups[i].size += r.Int("size")
		groups[i].duration += r.Int("duration")
	}

	if by == ByMonthCreated || by == ByMonthModified {
		slices.SortFunc(groups, func(a, b group) int {
			return cmp.Compare(a.key, b.key)
		})
	} else {
		slices.SortStableFunc(groups, func(a, b group) int {
			return cmp.Or(cmp.Compare(b.count, a.count), cmp.Compare(a.key, b.key))
		})
	}

	name := by
	if name == "" {
		name = ByParent
	}
	t := &Table{Names: []string{name, "count", "size", "duration"}, Values: make([][]any, 4)}
	for _, g := range groups {
		t.Values[0] = append(t.Values[0], g.key)
		t.Values[1] = append(t.Values[1], g.count)
		t.Values[2] = append(t.Values[2], g.size)
		t.Values[3] = append(t.Values[3], g.duration)
	}
	return t
}

func HistoryTable(entries []database.HistoryEntry) *Table {
	t := &Table{Names: []string{"path", "time_played", "playhead", "done"}, Values: make([][]any, 4)}
	for _, e := range entries {
		t.Values[0] = append(t.Values[0], e.Path)
		t.Values[1] = append(t.Values[1], e.TimePlayed)
		t.Values[2] = append(t.Values[2], e.Playhead)
		t.Values[3] = append(t.Values[3], e.Done)
	}
	return t
}

func CaptionTable(hits []database.CaptionHit) *Table {
	t := &Table{Names: []string{"path", "time", "text"}, Values: make([][]any, 3)}
	for _, h := range hits {
		t.Values[0] = append(t.Values[0], h.Path)
		t.Values[1] = append(t.Values[1], int64(h.Time))
		t.Values[2] = append(t.Values[2], h.Text)
	}
	return t
}
