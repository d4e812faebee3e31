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

package dedupe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/matcher"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/query"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
)

const (
	// ftsMinScore is the token overlap needed to call two rows copies.
	ftsMinScore = 0.8
	// ftsMinSimilarity guards against token soups that overlap by chance.
	ftsMinSimilarity = 0.85
	ftsMatchTokens   = 8
	ftsCandidates    = 100
)

// matchText is the name a row is compared by: its title, or the file name
// without extension.
func matchText(e *Entry) string {
	if !helpers.IsUnknown(e.Title) {
		return e.Title
	}
	base := filepath.Base(e.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func ftsQuery() string {
	cols := make([]string, 0, len(entryColumns))
	for _, c := range entryColumns {
		cols = append(cols, "m."+c)
	}
	return "SELECT " + strings.Join(cols, ", ") +
		" FROM media m WHERE m.rowid IN (SELECT docid FROM media_fts WHERE media_fts MATCH :match)" +
		" AND m.time_deleted = 0 AND m.id != :id LIMIT :limit"
}

func durationsAgree(a, b *Entry) bool {
	if a.Duration <= 0 || b.Duration <= 0 {
		return true
	}
	d := a.Duration - b.Duration
	return d <= durationSlack && d >= -durationSlack
}

// findFTS searches the full-text index with each candidate's name tokens
// and scores the hits by word overlap and edit similarity.
func findFTS(ctx context.Context, db query.Querier, spec *query.SelectionSpec) ([]Pair, error) {
	rows, err := query.Select(ctx, db, spec)
	if err != nil {
		return nil, err
	}

	seen := map[[2]int64]bool{}
	var pairs []Pair
	stmt := ftsQuery()
	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("dedupe cancelled: %w", err)
		}
		a := entryFromRow(r, "")
		text := matchText(&a)
		expr := matcher.MatchExpression(matcher.Tokens(text), ftsMatchTokens)
		if expr == "" {
			continue
		}

		hits, err := db.Query(ctx, stmt, map[string]any{"match": expr, "id": a.ID, "limit": ftsCandidates})
		if err != nil {
			return nil, fmt.Errorf("failed to search duplicates of %s: %w", a.Path, err)
		}
		for _, h := range hits {
			b := entryFromRow(h, "")
			key := [2]int64{min(a.ID, b.ID), max(a.ID, b.ID)}
			if seen[key] || !durationsAgree(&a, &b) {
				continue
			}
			other := matchText(&b)
			score := matcher.ScoreTokenMatch(text, other)
			if score < ftsMinScore || matcher.Similarity(text, other) < ftsMinSimilarity {
				continue
			}
			seen[key] = true
			pairs = append(pairs, newPair(StrategyFTS, a, b, 1-score))
		}
	}
	return pairs, nil
}
