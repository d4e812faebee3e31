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

// Package dedupe finds duplicate media rows and removes the worse copy of
// each pair.
package dedupe

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/query"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
)

type Strategy string

const (
	StrategyAudio       Strategy = "audio"
	StrategyExtractorID Strategy = "extractor_id"
	StrategyTitle       Strategy = "title"
	StrategyDuration    Strategy = "duration"
	StrategyFTS         Strategy = "fts"
)

// durationSlack is how far apart in seconds two copies may run.
const durationSlack = 4

// joinConditions pair rows a and b of the candidate set.
var joinConditions = map[Strategy]string{
	StrategyAudio: "a.title != '' AND a.title = b.title AND a.artist = b.artist AND a.album = b.album" +
		" AND abs(a.duration - b.duration) <= :slack",
	StrategyExtractorID: "a.extractor_id != '' AND a.extractor_id = b.extractor_id" +
		" AND abs(a.duration - b.duration) <= :slack",
	StrategyTitle:    "a.title != '' AND a.title = b.title AND abs(a.duration - b.duration) <= :slack",
	StrategyDuration: "a.duration > 0 AND a.duration = b.duration",
}

func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := joinConditions[st]; ok || st == StrategyFTS {
		return st, nil
	}
	return "", fmt.Errorf("unknown dedupe strategy %q", s)
}

// entryColumns are projected for both sides of every pair.
var entryColumns = []string{
	"id", "path", "title", "uploader", "size", "duration", "time_created", "time_modified",
	"video_count", "audio_count", "subtitle_count", "artist", "album", "extractor_id",
}

// Entry is one side of a duplicate pair.
type Entry struct {
	Path          string
	Title         string
	Uploader      string
	ID            int64
	Size          int64
	Duration      int64
	TimeCreated   int64
	TimeModified  int64
	VideoCount    int64
	AudioCount    int64
	SubtitleCount int64
}

func entryFromRow(r database.Row, prefix string) Entry {
	return Entry{
		Path:          r.String(prefix + "path"),
		Title:         r.String(prefix + "title"),
		Uploader:      r.String(prefix + "uploader"),
		ID:            r.Int(prefix + "id"),
		Size:          r.Int(prefix + "size"),
		Duration:      r.Int(prefix + "duration"),
		TimeCreated:   r.Int(prefix + "time_created"),
		TimeModified:  r.Int(prefix + "time_modified"),
		VideoCount:    r.Int(prefix + "video_count"),
		AudioCount:    r.Int(prefix + "audio_count"),
		SubtitleCount: r.Int(prefix + "subtitle_count"),
	}
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}

func knownUploader(e *Entry) int {
	if helpers.IsUnknown(e.Uploader) {
		return 0
	}
	return 1
}

// Prefer orders copies: it is positive when a is the one to keep.
func Prefer(a, b *Entry) int {
	return cmp.Or(
		cmp.Compare(a.VideoCount, b.VideoCount),
		cmp.Compare(a.SubtitleCount, b.SubtitleCount),
		cmp.Compare(a.AudioCount, b.AudioCount),
		cmp.Compare(knownUploader(a), knownUploader(b)),
		cmp.Compare(depth(a.Path), depth(b.Path)),
		cmp.Compare(len(b.Path), len(a.Path)),
		cmp.Compare(a.Size, b.Size),
		cmp.Compare(a.TimeModified, b.TimeModified),
		cmp.Compare(a.TimeCreated, b.TimeCreated),
		cmp.Compare(a.Duration, b.Duration),
		cmp.Compare(a.Path, b.Path),
	)
}

// Pair is a kept row and the copy that would be removed.
type Pair struct {
	Strategy  Strategy
	Keep      Entry
	Duplicate Entry
	// Distance ranks pairs, closest first: seconds apart for the SQL
	// strategies, one minus the text score for fts.
	Distance float64
}

// Savings is the bytes freed by removing the duplicate.
func (p *Pair) Savings() int64 {
	return p.Duplicate.Size
}

func newPair(strategy Strategy, a, b Entry, distance float64) Pair {
	if Prefer(&a, &b) < 0 {
		a, b = b, a
	}
	return Pair{Strategy: strategy, Keep: a, Duplicate: b, Distance: distance}
}

// Find pairs up duplicates among the rows spec selects. Each row appears in
// at most one pair; among overlapping candidates the closest pair wins.
func Find(ctx context.Context, db query.Querier, spec *query.SelectionSpec, strategy Strategy) ([]Pair, error) {
	candidates := *spec
	candidates.Action = query.ActionDedupe
	candidates.Cols = append(slices.Clone(spec.Cols), entryColumns...)

	var pairs []Pair
	var err error
	if strategy == StrategyFTS {
		pairs, err = findFTS(ctx, db, &candidates)
	} else {
		pairs, err = findJoin(ctx, db, &candidates, strategy)
	}
	if err != nil {
		return nil, err
	}
	return pick(pairs), nil
}

func findJoin(ctx context.Context, db query.Querier, spec *query.SelectionSpec, strategy Strategy) ([]Pair, error) {
	cond, ok := joinConditions[strategy]
	if !ok {
		return nil, fmt.Errorf("unknown dedupe strategy %q", strategy)
	}
	if spec.HasSiblingFilter() {
		return nil, fmt.Errorf("%w: sibling bounds are not supported by dedupe", database.ErrInvalidQuery)
	}
	compiled, err := query.Compile(spec)
	if err != nil {
		return nil, err
	}

	cols := make([]string, 0, 2*len(entryColumns))
	for _, c := range entryColumns {
		cols = append(cols, fmt.Sprintf("a.%[1]s AS a_%[1]s, b.%[1]s AS b_%[1]s", c))
	}
	// materialized so a random order or limit is drawn once for both sides
	sql := fmt.Sprintf(
		"WITH c AS MATERIALIZED (%s) SELECT %s FROM c a JOIN c b ON a.id < b.id AND %s",
		compiled.SQL, strings.Join(cols, ", "), cond,
	)
	params := compiled.Params
	params["slack"] = durationSlack

	rows, err := db.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicates: %w", err)
	}
	pairs := make([]Pair, 0, len(rows))
	for _, r := range rows {
		a, b := entryFromRow(r, "a_"), entryFromRow(r, "b_")
		distance := float64(a.Duration - b.Duration)
		if distance < 0 {
			distance = -distance
		}
		pairs = append(pairs, newPair(strategy, a, b, distance))
	}
	return pairs, nil
}

// pick keeps the closest pair for every row.
func pick(pairs []Pair) []Pair {
	slices.SortStableFunc(pairs, func(a, b Pair) int {
		return cmp.Or(
			cmp.Compare(a.Distance, b.Distance),
			cmp.Compare(a.Keep.Path, b.Keep.Path),
			cmp.Compare(a.Duplicate.Path, b.Duplicate.Path),
		)
	})
	used := map[int64]bool{}
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if used[p.Keep.ID] || used[p.Duplicate.ID] {
			continue
		}
		used[p.Keep.ID] = true
		used[p.Duplicate.ID] = true
		out = append(out, p)
	}
	return out
}

// TotalSavings sums the bytes every pair would free.
func TotalSavings(pairs []Pair) int64 {
	var n int64
	for i := range pairs {
		n += pairs[i].Savings()
	}
	return n
}
