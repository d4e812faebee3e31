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

package playback

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/query"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
)

const (
	// ordinalLimit caps the siblings fetched per candidate prefix.
	ordinalLimit = 1000
	// minSeriesName is the shortest common basename treated as a series.
	minSeriesName = 3
)

// nameGroups splits a file name into episode tokens, separator runs,
// digit runs and letter runs.
var nameGroups = regexp.MustCompile(`(?i)ep\d+|x\d+|\.\d+|[^\p{L}\p{N}]+|\p{N}+|\p{L}+`)

// PrefixLister lists live paths starting with prefix, in path order.
type PrefixLister interface {
	PathsWithPrefix(ctx context.Context, prefix string, limit int) ([]string, error)
}

// QueryLister runs prefix lookups through a catalog's Query.
type QueryLister struct {
	DB query.Querier
}

func (l QueryLister) PathsWithPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	rows, err := l.DB.Query(ctx, `
		SELECT path FROM media
		WHERE substr(path, 1, length(:prefix)) = :prefix AND time_deleted = 0
		ORDER BY path
		LIMIT :limit`,
		map[string]any{"prefix": prefix, "limit": limit},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list paths under %s: %w", prefix, err)
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Path())
	}
	return out, nil
}

// trimGroup drops trailing name groups from path until at least one
// non-empty group is gone. It returns "" when the file name is used up.
func trimGroup(path string) string {
	slash := strings.LastIndexAny(path, `/\`)
	dir, name := path[:slash+1], path[slash+1:]
	groups := nameGroups.FindAllString(name, -1)
	if len(groups) == 0 {
		return ""
	}
	suffix := ""
	for len(groups) > 0 && suffix == "" {
		suffix = groups[len(groups)-1] + suffix
		groups = groups[:len(groups)-1]
	}
	return dir + name[:len(name)-len(suffix)]
}

// seriesName is the part of the common prefix after the last separator.
func seriesName(paths []string) string {
	prefix := helpers.CommonPrefix(paths)
	return prefix[strings.LastIndexAny(prefix, `/\`)+1:]
}

// Ordinal finds the first item of the series path belongs to by trimming
// trailing name groups until the trimmed prefix matches a family of files
// that share a name. Paths with no such family are returned unchanged.
func Ordinal(ctx context.Context, lister PrefixLister, path string) (string, error) {
	candidate := path
	for {
		candidate = trimGroup(candidate)
		if candidate == "" || strings.HasSuffix(candidate, "/") || strings.HasSuffix(candidate, `\`) {
			return path, nil
		}

		siblings, err := lister.PathsWithPrefix(ctx, candidate, ordinalLimit)
		if err != nil {
			return path, err
		}
		if len(siblings) <= 1 {
			continue
		}
		if len([]rune(seriesName(siblings))) < minSeriesName {
			return path, nil
		}
		if len(siblings) < ordinalLimit {
			return siblings[0], nil
		}
	}
}

// ordinalItems swaps every item for the first of its series, keeping the
// original order and dropping repeats.
func ordinalItems(ctx context.Context, db database.CatalogDBI, lister PrefixLister, items []Item) ([]Item, error) {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		first, err := Ordinal(ctx, lister, it.Path)
		if err != nil {
			return nil, err
		}
		if first != it.Path {
			m, err := db.FindMedia(ctx, first)
			if err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", first, err)
			}
			it = itemFromMedia(&m)
		}
		if seen[it.Path] {
			continue
		}
		seen[it.Path] = true
		out = append(out, it)
	}
	return out, nil
}
