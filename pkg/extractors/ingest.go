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

package extractors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchSize is the number of extracted rows committed per
	// transaction.
	DefaultBatchSize = 320
	DefaultTimeout   = 30 * time.Minute
)

// Resolver follows redirects of shortened playlist links.
type Resolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// IngestCounts summarizes one ingest run.
type IngestCounts struct {
	Playlists int
	Media     int
	Posts     int
	Errors    int
}

// Ingester fetches online playlists on a worker pool and commits what they
// yield from a single writer.
type Ingester struct {
	db         database.CatalogDBI
	polite     *Politeness
	resolver   Resolver
	extractors []Extractor
	defaults   Options
	threads    int
	batchSize  int
	timeout    time.Duration
	// deleteBlocked tombstones playlists the site refuses to serve.
	deleteBlocked bool
}

type IngestOption func(*Ingester)

func WithResolver(r Resolver) IngestOption {
	return func(in *Ingester) {
		in.resolver = r
	}
}

func WithIngestBatchSize(n int) IngestOption {
	return func(in *Ingester) {
		if n > 0 {
			in.batchSize = n
		}
	}
}

func WithIngestThreads(n int) IngestOption {
	return func(in *Ingester) {
		if n > 0 {
			in.threads = n
		}
	}
}

func WithDeleteBlocked(enabled bool) IngestOption {
	return func(in *Ingester) {
		in.deleteBlocked = enabled
	}
}

func WithFetchTimeout(d time.Duration) IngestOption {
	return func(in *Ingester) {
		in.timeout = d
	}
}

// NewIngester picks the first extractor whose Match accepts a URL, so
// catch-all extractors go last.
func NewIngester(
	db database.CatalogDBI,
	polite *Politeness,
	cfg *config.Instance,
	extractors []Extractor,
	opts ...IngestOption,
) *Ingester {
	in := &Ingester{
		db:         db,
		polite:     polite,
		extractors: extractors,
		threads:    cfg.ExtractorThreads(),
		batchSize:  DefaultBatchSize,
		timeout:    DefaultTimeout,
		defaults: Options{
			PageKey:          cfg.PageKey(),
			StopPagesNoNew:   cfg.StopPagesNoNew(),
			StopPagesNoMatch: cfg.StopPagesNoMatch(),
		},
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Defaults returns the options every fetch starts from.
func (in *Ingester) Defaults() Options {
	return in.defaults
}

// Find returns the extractor registered under key, or the first one that
// matches url when key is empty.
func (in *Ingester) Find(key, url string) (Extractor, error) {
	for _, ex := range in.extractors {
		if key != "" {
			if ex.Key() == key {
				return ex, nil
			}
			continue
		}
		if ex.Match(url) {
			return ex, nil
		}
	}
	if key != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoExtractor, key)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoExtractor, url)
}

func (in *Ingester) isKnown(ctx context.Context, path string) (bool, error) {
	known, err := in.db.MediaExists(ctx, path)
	if err != nil || known {
		return known, err //nolint:wrapcheck // store errors are already wrapped
	}
	return in.db.RedditPostExists(ctx, path) //nolint:wrapcheck // store errors are already wrapped
}

type job struct {
	extractor Extractor
	playlist  database.Playlist
}

type ingestItem struct {
	playlist *database.Playlist
	entry    Entry
	id       int64
	blocked  bool
}

// Ingest fetches every URL, using the extractor registered under key or
// the first that matches. Playlist failures are logged and counted; a store
// error or cancellation stops the run.
func (in *Ingester) Ingest(
	ctx context.Context,
	urls []string,
	key string,
	category string,
	opts Options,
) (IngestCounts, error) {
	var counts IngestCounts

	// Playlist rows are created up front so entries can reference them.
	jobs := make([]job, 0, len(urls))
	for _, u := range urls {
		if in.resolver != nil && database.IsURL(u) {
			if final, err := in.resolver.Resolve(ctx, u); err == nil && final != "" {
				u = final
			} else if err != nil {
				log.Debug().Err(err).Str("url", u).Msg("failed to resolve playlist url")
			}
		}
		ex, err := in.Find(key, u)
		if err != nil {
			log.Warn().Err(err).Msg("skipping playlist")
			counts.Errors++
			continue
		}
		pl := database.Playlist{Path: u, ExtractorKey: ex.Key(), Category: category}
		if _, err := in.db.UpsertPlaylist(ctx, &pl); err != nil {
			return counts, fmt.Errorf("failed to create playlist %s: %w", u, err)
		}
		jobs = append(jobs, job{extractor: ex, playlist: pl})
	}

	opts.IsKnown = in.isKnown
	opts.KnownPaths = in.db.KnownPaths

	g, gctx := errgroup.WithContext(ctx)
	items := make(chan ingestItem, in.threads*2)

	var (
		mu     syncutil.Mutex
		failed []string
	)
	g.Go(func() error {
		defer close(items)
		pool, pctx := errgroup.WithContext(gctx)
		pool.SetLimit(in.threads)
		for _, j := range jobs {
			if pctx.Err() != nil {
				break
			}
			if in.polite != nil {
				if err := in.polite.BeforePlaylist(pctx); err != nil {
					break
				}
			}
			pool.Go(func() error {
				err := in.fetch(pctx, j, opts, items)
				if err == nil {
					return nil
				}
				if ctxErr := pctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				failed = append(failed, j.playlist.Path)
				mu.Unlock()
				log.Warn().Err(err).Str("playlist", j.playlist.Path).Msg("playlist fetch failed")
				if in.deleteBlocked && errors.Is(err, ErrExtractorBlocked) {
					return send(pctx, items, ingestItem{playlist: &j.playlist, blocked: true})
				}
				return nil
			})
		}
		return pool.Wait()
	})

	g.Go(func() error {
		return in.write(gctx, items, &counts)
	})

	err := g.Wait()
	counts.Errors += len(failed)
	if len(failed) > 0 {
		slices.Sort(failed)
		log.Warn().Strs("playlists", failed).Msg("some playlists failed")
	}
	log.Info().
		Int("playlists", counts.Playlists).
		Int("media", counts.Media).
		Int("posts", counts.Posts).
		Int("errors", counts.Errors).
		Msg("ingest complete")
	if err != nil {
		return counts, err
	}
	return counts, nil
}

func send(ctx context.Context, items chan<- ingestItem, it ingestItem) error {
	select {
	case items <- it:
		return nil
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // cancellation is passed through
	}
}

func (in *Ingester) fetch(ctx context.Context, j job, opts Options, items chan<- ingestItem) error {
	fetch := WithEncodingRetry(WithTimeout(in.timeout, j.extractor.Fetch))
	pl, err := fetch(ctx, j.playlist.Path, opts, func(ctx context.Context, e Entry) error {
		return send(ctx, items, ingestItem{entry: e, id: j.playlist.ID})
	})
	if err != nil && !errors.Is(err, ErrKnownItemReached) {
		return err
	}
	if errors.Is(err, ErrKnownItemReached) {
		log.Debug().Str("playlist", j.playlist.Path).Msg("reached known item")
	}

	pl.ID = j.playlist.ID
	pl.Path = j.playlist.Path
	pl.ExtractorKey = j.extractor.Key()
	pl.Category = j.playlist.Category
	return send(ctx, items, ingestItem{playlist: &pl})
}

// write is the only goroutine that mutates the catalog during a run.
func (in *Ingester) write(ctx context.Context, items <-chan ingestItem, counts *IngestCounts) error {
	batch := make([]database.Media, 0, in.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := in.db.UpsertMediaBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to commit extracted batch: %w", err)
		}
		counts.Media += len(batch)
		batch = batch[:0]
		return nil
	}

	for it := range items {
		switch {
		case it.playlist != nil && it.blocked:
			if err := in.db.SoftDeletePlaylist(ctx, it.playlist.Path); err != nil {
				log.Warn().Err(err).Str("playlist", it.playlist.Path).Msg("failed to delete blocked playlist")
			}
		case it.playlist != nil:
			if _, err := in.db.UpsertPlaylist(ctx, it.playlist); err != nil {
				return err //nolint:wrapcheck // store errors are already wrapped
			}
			counts.Playlists++
		case it.entry.Post != nil:
			post := *it.entry.Post
			post.PlaylistID = it.id
			if err := in.db.UpsertRedditPost(ctx, &post); err != nil {
				return err //nolint:wrapcheck // store errors are already wrapped
			}
			counts.Posts++
		default:
			m := it.entry.Media
			m.PlaylistID = it.id
			batch = append(batch, m)
			if len(batch) >= in.batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // cancellation is passed through
	}
	return flush()
}
