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
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
)

// Compiled is one parameterized SELECT over media with the sibling bounds
// that still have to be applied to its rows.
type Compiled struct {
	Params map[string]any
	SQL    string
	Lower  int
	Upper  int
	Limit  int
	Offset int
}

// priority orders unplayed items first, then by bitrate bucket.
const prioritySort = "m.play_count, ntile(1000) OVER (ORDER BY m.size / NULLIF(m.duration, 0)) DESC"

// sortTokens are shorthand sort keys expanded to SQL.
var sortTokens = map[string]string{
	"random":          "random()",
	"priority":        prioritySort,
	"month_created":   "CAST(strftime('%Y%m', datetime(m.time_created, 'unixepoch')) AS INT)",
	"month_modified":  "CAST(strftime('%Y%m', datetime(m.time_modified, 'unixepoch')) AS INT)",
	"month_played":    "CAST(strftime('%Y%m', datetime(m.time_played, 'unixepoch')) AS INT)",
	"month_uploaded":  "CAST(strftime('%Y%m', datetime(m.time_uploaded, 'unixepoch')) AS INT)",
	"month_deleted":   "CAST(strftime('%Y%m', datetime(m.time_deleted, 'unixepoch')) AS INT)",
	"bitrate":         "m.size / NULLIF(m.duration, 0)",
	"subtitles":       "m.subtitle_count > 0",
	"path_depth":      "length(m.path) - length(replace(m.path, '/', ''))",
	"played_recently": "m.time_played",
}

// readDuration estimates reading time for text rows.
const readDuration = "CAST(length(m.tags) / 4.2 / 220 * 60 AS INT) + 10"

// baseColumns are projected for every action.
var baseColumns = []string{"m.id", "m.path", "m.title", "m.playhead", "m.play_count", "m.time_deleted"}

var actionColumns = map[Action][]string{
	ActionWatch:      {"m.duration", "m.size", "m.subtitle_count"},
	ActionCable:      {"m.duration", "m.size", "m.subtitle_count"},
	ActionListen:     {"m.duration", "m.size"},
	ActionFilesystem: {"m.size", "m.sparseness", "m.is_dir"},
	ActionRead:       {readDuration + " AS duration", "m.size"},
	ActionDownload:   {"m.webpath", "m.duration", "m.size", "m.playlist_id"},
	ActionPrint:      {"m.duration", "m.size"},
	ActionDedupe:     {"m.duration", "m.size"},
}

// defaultSorts apply when the user gave no sort. Actions listed in
// playOrderActions also get the random rowid constraint.
var defaultSorts = map[Action][]string{
	ActionWatch:  {"m.play_count", "m.playhead DESC"},
	ActionListen: {"m.play_count", "m.playhead DESC"},
	ActionRead:   {"m.play_count"},
	ActionCable:  {"random()"},
}

var playOrderActions = []Action{ActionWatch, ActionListen, ActionRead, ActionCable}

type builder struct {
	params     map[string]any
	predicates []string
}

func (b *builder) add(sql string, params map[string]any) {
	if sql == "" {
		return
	}
	b.predicates = append(b.predicates, sql)
	maps.Copy(b.params, params)
}

// escapeNamed protects literal colons in user SQL from named binding.
func escapeNamed(s string) string {
	return strings.ReplaceAll(s, ":", "::")
}

// Compile turns spec into a single SELECT. It never touches the database.
func Compile(spec *SelectionSpec) (Compiled, error) {
	if spec == nil {
		spec = &SelectionSpec{}
	}
	if err := config.Validate(spec); err != nil {
		return Compiled{}, fmt.Errorf("%w: %w", database.ErrInvalidQuery, err)
	}

	b := &builder{params: map[string]any{}}

	if err := addTextFilters(b, spec); err != nil {
		return Compiled{}, err
	}
	if err := addBlocklist(b, spec.Blocklist); err != nil {
		return Compiled{}, err
	}

	for _, w := range spec.Where {
		b.add("("+escapeNamed(w)+")", nil)
	}

	if !spec.IncludeDeleted {
		b.add("m.time_deleted = 0", nil)
	}

	size := spec.Size.Predicate("m.size", "size")
	b.add(size.SQL, size.Params)
	duration := spec.Duration.Predicate(durationColumn(spec.Action), "duration")
	b.add(duration.SQL, duration.Params)

	for _, w := range spec.Windows {
		p := w.Predicate("m", spec.Now)
		b.add(p.SQL, p.Params)
	}

	if spec.Portrait {
		b.add("m.width < m.height", nil)
	}
	if spec.OnlineOnly {
		b.add("m.path LIKE 'http%' AND m.time_downloaded = 0", nil)
	}
	if spec.LocalOnly {
		b.add("m.path NOT LIKE 'http%'", nil)
	}
	if spec.KeepDir != "" {
		b.add(keepDirPredicate(spec.KeepDir))
	}

	orderBy, defaultOrder, err := compileSort(spec)
	if err != nil {
		return Compiled{}, err
	}
	if defaultOrder && spec.RandomRowidLimit > 0 && slices.Contains(playOrderActions, spec.Action) {
		b.add(
			"m.rowid IN (SELECT rowid FROM media ORDER BY random() LIMIT :rowid_limit)",
			map[string]any{"rowid_limit": spec.RandomRowidLimit},
		)
	}

	cols, err := projection(spec)
	if err != nil {
		return Compiled{}, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM media m")
	if len(b.predicates) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.predicates, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(orderBy, ", "))

	out := Compiled{
		Params: b.params,
		Lower:  spec.Lower,
		Upper:  spec.Upper,
	}
	// sibling bounds need every candidate, so paging happens after them
	if spec.HasSiblingFilter() {
		out.Limit = spec.Limit
		out.Offset = spec.Offset
	} else {
		if spec.Limit > 0 {
			sb.WriteString(" LIMIT :limit")
			b.params["limit"] = spec.Limit
		}
		if spec.Offset > 0 {
			if spec.Limit == 0 {
				sb.WriteString(" LIMIT -1")
			}
			sb.WriteString(" OFFSET :offset")
			b.params["offset"] = spec.Offset
		}
	}
	out.SQL = sb.String()
	return out, nil
}

func durationColumn(action Action) string {
	if action == ActionRead {
		return "(" + readDuration + ")"
	}
	return "m.duration"
}

func addTextFilters(b *builder, spec *SelectionSpec) error {
	if len(spec.Include) == 0 && len(spec.Exclude) == 0 {
		return nil
	}

	if spec.FTS {
		terms := make([]string, 0, len(spec.Include))
		for _, inc := range spec.Include {
			if q := database.QuoteFTSTerm(inc); q != "" {
				terms = append(terms, q)
			}
		}
		if len(terms) > 0 {
			b.add(
				"m.rowid IN (SELECT docid FROM media_fts WHERE media_fts MATCH :fts)",
				map[string]any{"fts": strings.Join(terms, " OR ")},
			)
		}
		for i, exc := range spec.Exclude {
			q := database.QuoteFTSTerm(exc)
			if q == "" {
				continue
			}
			name := fmt.Sprintf("fts_exclude%d", i)
			b.add(
				fmt.Sprintf("m.rowid NOT IN (SELECT docid FROM media_fts WHERE media_fts MATCH :%s)", name),
				map[string]any{name: q},
			)
		}
		return nil
	}

	if len(spec.Include) > 0 {
		var ors []string
		params := map[string]any{}
		for i, inc := range spec.Include {
			name := fmt.Sprintf("include%d", i)
			params[name] = "%" + inc + "%"
			for _, col := range database.MediaFTSColumns {
				ors = append(ors, fmt.Sprintf("m.%s LIKE :%s", col, name))
			}
		}
		b.add("("+strings.Join(ors, " OR ")+")", params)
	}
	for i, exc := range spec.Exclude {
		name := fmt.Sprintf("exclude%d", i)
		ands := make([]string, 0, len(database.MediaFTSColumns))
		for _, col := range database.MediaFTSColumns {
			ands = append(ands, fmt.Sprintf("m.%s NOT LIKE :%s", col, name))
		}
		b.add(strings.Join(ands, " AND "), map[string]any{name: "%" + exc + "%"})
	}
	return nil
}

func blocklistColumn(key string) (string, error) {
	if key == BlocklistPlaylistPath {
		return "COALESCE((SELECT p.path FROM playlists p WHERE p.id = m.playlist_id), '')", nil
	}
	if !database.IsMediaColumn(key) {
		return "", fmt.Errorf("%w: unknown blocklist key %q", database.ErrInvalidQuery, key)
	}
	return "m." + key, nil
}

func addBlocklist(b *builder, keys []string) error {
	for i, key := range keys {
		col, err := blocklistColumn(key)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("block_key%d", i)
		b.add(
			fmt.Sprintf(
				"NOT EXISTS (SELECT 1 FROM blocklist b WHERE b.key = :%s AND (%s = b.value OR %s LIKE b.value))",
				name, col, col,
			),
			map[string]any{name: key},
		)
	}
	return nil
}

// compileSort expands sort tokens and appends a random tiebreaker. The
// second result reports whether the default order for the action was used.
func compileSort(spec *SelectionSpec) (order []string, isDefault bool, err error) {
	sorts := spec.Sort
	if len(sorts) == 0 {
		sorts = defaultSorts[spec.Action]
		isDefault = true
	}
	if len(sorts) == 0 {
		sorts = []string{"m.path"}
	}

	hasRandom := false
	for _, s := range sorts {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, false, errors.New("empty sort expression")
		}
		token, rest, _ := strings.Cut(s, " ")
		if expanded, ok := sortTokens[strings.ToLower(token)]; ok {
			s = strings.TrimSpace(expanded + " " + rest)
		} else {
			s = escapeNamed(s)
		}
		if strings.Contains(strings.ToLower(s), "random()") {
			hasRandom = true
		}
		order = append(order, s)
	}
	if !hasRandom {
		order = append(order, "random()")
	}
	return order, isDefault, nil
}

func projection(spec *SelectionSpec) ([]string, error) {
	cols := slices.Clone(baseColumns)
	cols = append(cols, actionColumns[spec.Action]...)
	seen := map[string]bool{}
	for _, c := range cols {
		seen[strings.TrimPrefix(c, "m.")] = true
	}
	if spec.Action == ActionRead {
		seen["duration"] = true
	}
	for _, c := range spec.Cols {
		c = strings.TrimSpace(c)
		if seen[c] {
			continue
		}
		if !database.IsMediaColumn(c) {
			return nil, fmt.Errorf("%w: unknown column %q", database.ErrInvalidQuery, c)
		}
		seen[c] = true
		cols = append(cols, "m."+c)
	}
	return cols, nil
}

// keepDirPredicate hides rows already moved into keepDir. An absolute
// keepDir is a case-sensitive path prefix. A relative one matches that
// folder name under any parent.
func keepDirPredicate(keepDir string) (string, map[string]any) {
	params := map[string]any{"keep_dir": "/" + strings.Trim(keepDir, "/") + "/"}
	if filepath.IsAbs(keepDir) {
		return "substr(m.path, 1, length(:keep_dir)) != :keep_dir", params
	}
	return "instr(m.path, :keep_dir) = 0", params
}
