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

// Package printer renders query results as aligned tables, delimited text,
// path lists and aggregate reports.
package printer

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/spf13/cast"
)

// minColumnWidth is the narrowest a column is shrunk to by Resize.
const minColumnWidth = 6

// columnGap separates table columns.
const columnGap = "  "

// Table is column oriented: Values[i] holds every cell of Names[i].
type Table struct {
	Names  []string
	Values [][]any
}

// FromRows builds a table from query rows. With no cols given, every column
// present in the first row is used, path first.
func FromRows(rows []database.Row, cols []string) *Table {
	if len(cols) == 0 {
		cols = rowColumns(rows)
	}
	t := &Table{Names: slices.Clone(cols), Values: make([][]any, len(cols))}
	for i, c := range cols {
		vals := make([]any, len(rows))
		for j, r := range rows {
			vals[j] = r[c]
		}
		t.Values[i] = vals
	}
	return t
}

func rowColumns(rows []database.Row) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for c := range rows[0] {
		if c != "path" {
			cols = append(cols, c)
		}
	}
	slices.Sort(cols)
	if _, ok := rows[0]["path"]; ok {
		cols = append([]string{"path"}, cols...)
	}
	return cols
}

// Len is the number of rows.
func (t *Table) Len() int {
	if len(t.Values) == 0 {
		return 0
	}
	return len(t.Values[0])
}

// Column returns the cells of name, nil when it is not in the table.
func (t *Table) Column(name string) []any {
	if i := slices.Index(t.Names, name); i >= 0 {
		return t.Values[i]
	}
	return nil
}

// Drop removes the named columns.
func (t *Table) Drop(names ...string) {
	for _, n := range names {
		if i := slices.Index(t.Names, n); i >= 0 {
			t.Names = slices.Delete(t.Names, i, i+1)
			t.Values = slices.Delete(t.Values, i, i+1)
		}
	}
}

// Record returns row i keyed by column name.
func (t *Table) Record(i int) map[string]any {
	rec := make(map[string]any, len(t.Names))
	for c, name := range t.Names {
		rec[name] = t.Values[c][i]
	}
	return rec
}

// Cells renders row i as strings.
func (t *Table) Cells(i int) []string {
	cells := make([]string, len(t.Names))
	for c := range t.Names {
		cells[c] = cellString(t.Values[c][i])
	}
	return cells
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%.2f", x)
	case []byte:
		return string(x)
	default:
		return cast.ToString(v)
	}
}

func isSizeColumn(name string) bool {
	return name == "size" || strings.HasSuffix(name, "_size")
}

func isDurationColumn(name string) bool {
	return name == "duration" || name == "playhead" || strings.HasSuffix(name, "_duration")
}

func isCountColumn(name string) bool {
	return strings.HasSuffix(name, "_count") || name == "count"
}

func isTimeColumn(name string) bool {
	return strings.HasPrefix(name, "time_")
}

// Humanize rewrites sizes, durations and counts into readable units. Zero
// sizes and durations render empty.
func (t *Table) Humanize() {
	for c, name := range t.Names {
		var format func(int64) string
		switch {
		case isSizeColumn(name):
			format = helpers.FormatSize
		case isDurationColumn(name):
			format = helpers.FormatDuration
		case isCountColumn(name):
			format = helpers.FormatCount
		default:
			continue
		}
		for i, v := range t.Values[c] {
			if v == nil {
				continue
			}
			t.Values[c][i] = format(cast.ToInt64(v))
		}
	}
}

// Naturalize rewrites unix timestamps as times relative to now.
func (t *Table) Naturalize(now time.Time) {
	for c, name := range t.Names {
		if !isTimeColumn(name) {
			continue
		}
		for i, v := range t.Values[c] {
			if v == nil {
				continue
			}
			t.Values[c][i] = helpers.FormatRelative(cast.ToInt64(v), now)
		}
	}
}

// widths are the natural cell widths of every column, header included.
func (t *Table) widths() []int {
	ws := make([]int, len(t.Names))
	for c, name := range t.Names {
		ws[c] = helpers.StringWidth(name)
		for i := range t.Len() {
			ws[c] = max(ws[c], helpers.StringWidth(cellString(t.Values[c][i])))
		}
	}
	return ws
}

// Resize truncates the widest columns until a rendered line fits in width
// cells. A width of zero or less leaves the table alone.
func (t *Table) Resize(width int) {
	if width <= 0 || len(t.Names) == 0 {
		return
	}
	ws := t.widths()
	total := func() int {
		n := len(columnGap) * (len(ws) - 1)
		for _, w := range ws {
			n += w
		}
		return n
	}
	for total() > width {
		widest := 0
		for c, w := range ws {
			if w > ws[widest] {
				widest = c
			}
		}
		if ws[widest] <= minColumnWidth {
			break
		}
		ws[widest] = max(minColumnWidth, ws[widest]-(total()-width))
	}
	for c := range t.Names {
		t.Names[c] = helpers.Truncate(t.Names[c], ws[c])
		for i, v := range t.Values[c] {
			s := cellString(v)
			if helpers.StringWidth(s) > ws[c] {
				t.Values[c][i] = helpers.Truncate(s, ws[c])
			}
		}
	}
}
