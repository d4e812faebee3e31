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
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/query"
	"github.com/rs/zerolog/log"
)

// PartialMode controls how watch-later state shapes the queue.
type PartialMode int

const (
	PartialNone PartialMode = iota
	// PartialSort puts the most recently touched resume points first.
	PartialSort
	// PartialSkip keeps only items with a resume point.
	PartialSkip
)

// Item is one entry of a play queue.
type Item struct {
	Row          database.Row
	Path         string
	Title        string
	ID           int64
	Duration     int64
	Playhead     int64
	PlayCount    int64
	Size         int64
	Touched      int64
	Start        float64
	HasSubtitles bool
	Resumable    bool
}

// StartAt is where playback should begin in seconds: the player's resume
// point when there is one, else the stored playhead.
func (it *Item) StartAt() float64 {
	if it.Start > 0 {
		return it.Start
	}
	return float64(it.Playhead)
}

func itemFromRow(r database.Row) Item {
	return Item{
		Row:          r,
		ID:           r.Int("id"),
		Path:         r.Path(),
		Title:        r.String("title"),
		Duration:     r.Int("duration"),
		Playhead:     r.Int("playhead"),
		PlayCount:    r.Int("play_count"),
		Size:         r.Int("size"),
		HasSubtitles: r.Int("subtitle_count") > 0,
	}
}

func itemFromMedia(m *database.Media) Item {
	return itemFromRow(database.Row{
		"id":             m.ID,
		"path":           m.Path,
		"title":          m.Title,
		"duration":       m.Duration,
		"playhead":       m.Playhead,
		"play_count":     m.PlayCount,
		"size":           m.Size,
		"subtitle_count": m.SubtitleCount,
		"time_deleted":   m.TimeDeleted,
	})
}

type QueueOptions struct {
	Partial PartialMode
	// InOrder replaces each item with the first episode of its series.
	InOrder bool
}

// Queue assembles play queues from catalog selections.
type Queue struct {
	db     database.CatalogDBI
	wl     *WatchLater
	lister PrefixLister
}

func NewQueue(db database.CatalogDBI, wl *WatchLater) *Queue {
	return &Queue{db: db, wl: wl, lister: QueryLister{DB: db}}
}

// Build runs the selection and applies the partial and in-order passes.
// An empty queue is database.ErrNoMediaFound.
func (q *Queue) Build(ctx context.Context, spec *query.SelectionSpec, opts QueueOptions) ([]Item, error) {
	rows, err := query.Select(ctx, q.db, spec)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, itemFromRow(r))
	}

	if opts.InOrder {
		items, err = ordinalItems(ctx, q.db, q.lister, items)
		if err != nil {
			return nil, err
		}
	}

	if q.wl != nil {
		q.resume(items)
	}
	switch opts.Partial {
	case PartialSkip:
		items = slices.DeleteFunc(items, func(it Item) bool { return !it.Resumable })
	case PartialSort:
		slices.SortStableFunc(items, func(a, b Item) int {
			return cmp.Compare(b.Touched, a.Touched)
		})
	case PartialNone:
	}

	if len(items) == 0 {
		return nil, database.ErrNoMediaFound
	}
	log.Debug().Int("items", len(items)).Msg("built play queue")
	return items, nil
}

func (q *Queue) resume(items []Item) {
	for i := range items {
		point, ok, err := q.wl.Lookup(items[i].Path)
		if err != nil {
			log.Warn().Err(err).Str("path", items[i].Path).Msg("ignoring watch-later state")
			continue
		}
		if !ok {
			continue
		}
		items[i].Resumable = true
		items[i].Start = point.Start
		items[i].Touched = point.Touched
	}
}

// Lookup fetches a single item by path, for playing a path given directly.
func (q *Queue) Lookup(ctx context.Context, path string) (Item, error) {
	m, err := q.db.FindMedia(ctx, path)
	if err != nil {
		return Item{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	items := []Item{itemFromMedia(&m)}
	if q.wl != nil {
		q.resume(items)
	}
	return items[0], nil
}
