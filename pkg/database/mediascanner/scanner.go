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

package mediascanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/probe"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of probed records committed per
// transaction.
const DefaultBatchSize = 320

// Prober turns a path into a catalog record.
type Prober interface {
	Probe(ctx context.Context, path string, profile probe.Profile) (database.Media, error)
}

type Scanner struct {
	db     database.CatalogDBI
	fs     afero.Fs
	prober Prober
	clock  clockwork.Clock

	// Progress receives walker status lines; nil is quiet.
	Progress io.Writer

	include   []string
	exclude   []string
	exts      map[probe.Profile][]string
	threads   int
	batchSize int
}

type Option func(*Scanner)

func WithBatchSize(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithThreads(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.threads = n
		}
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(s *Scanner) {
		s.clock = c
	}
}

func NewScanner(
	db database.CatalogDBI,
	afs afero.Fs,
	prober Prober,
	cfg *config.Instance,
	opts ...Option,
) *Scanner {
	s := &Scanner{
		db:        db,
		fs:        afs,
		prober:    prober,
		clock:     clockwork.NewRealClock(),
		include:   cfg.ScanInclude(),
		exclude:   cfg.ScanExclude(),
		exts:      make(map[probe.Profile][]string),
		threads:   cfg.ProbeThreads(),
		batchSize: DefaultBatchSize,
	}
	for _, p := range probe.Profiles {
		s.exts[p] = cfg.Extensions(string(p))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type changeKind int

const (
	kindAdd changeKind = iota
	kindUpdate
	kindResurrect
)

// Scan walks root, reconciles it against the catalog and probes whatever
// is new or changed. Rows under root that vanished are soft-deleted only
// after every probed record is committed. A cancelled context discards the
// uncommitted batch; earlier batches survive.
func (s *Scanner) Scan(ctx context.Context, root string, profile probe.Profile) (database.ScanCounts, error) {
	var counts database.ScanCounts

	root, err := filepath.Abs(root)
	if err != nil {
		return counts, fmt.Errorf("failed to resolve scan root: %w", err)
	}
	info, err := s.fs.Stat(root)
	if err != nil {
		return counts, fmt.Errorf("failed to stat scan root: %w", err)
	}

	var found []FoundFile
	stats, err := Walk(ctx, s.fs, root, WalkOptions{
		Progress:   s.Progress,
		Clock:      s.clock,
		Extensions: s.exts[profile],
		Include:    s.include,
		Exclude:    s.exclude,
	}, func(path string, fi fs.FileInfo) error {
		found = append(found, FoundFile{
			Path:         path,
			Size:         fi.Size(),
			TimeModified: fi.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return counts, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	log.Debug().
		Str("root", root).
		Int("files", stats.Files).
		Int("filteredFiles", stats.FilteredFiles).
		Int("folders", stats.Folders).
		Int("filteredFolders", stats.FilteredFolders).
		Msg("walk finished")

	prefix := root
	if info.IsDir() {
		prefix = root + string(filepath.Separator)
	}
	plan, err := Reconcile(ctx, s.db, s.fs, prefix, found)
	if err != nil {
		return counts, err
	}
	if plan.Unmounted > 0 {
		log.Info().Int("rows", plan.Unmounted).Str("root", root).
			Msg("parent directories missing, leaving rows alone")
	}

	playlistID := int64(0)
	if info.IsDir() {
		playlistID, err = s.db.UpsertPlaylist(ctx, &database.Playlist{
			Path:         root,
			ExtractorKey: database.ExtractorLocal,
			Title:        filepath.Base(root),
		})
		if err != nil {
			return counts, fmt.Errorf("failed to upsert scan root playlist: %w", err)
		}
	}

	vanished, err := s.probeAndWrite(ctx, &plan, profile, playlistID, &counts)
	if err != nil {
		return counts, err
	}

	toDelete := append(plan.Delete, vanished...)
	if err := ctx.Err(); err != nil {
		return counts, err
	}
	n, err := s.db.SoftDeleteMedia(ctx, toDelete)
	if err != nil {
		return counts, fmt.Errorf("failed to mark deleted files: %w", err)
	}
	counts.Deleted = int(n)

	log.Info().
		Str("root", root).
		Int("added", counts.Added).
		Int("updated", counts.Updated).
		Int("resurrected", counts.Resurrected).
		Int("deleted", counts.Deleted).
		Int("errors", counts.Errors).
		Msg("scan complete")
	return counts, nil
}

// probeAndWrite fans probes out over the worker pool and commits results
// from a single writer. It returns stored paths that disappeared between
// walking and probing.
func (s *Scanner) probeAndWrite(
	ctx context.Context,
	plan *Plan,
	profile probe.Profile,
	playlistID int64,
	counts *database.ScanCounts,
) ([]string, error) {
	kinds := make(map[string]changeKind)
	for _, p := range plan.Add {
		kinds[p] = kindAdd
	}
	for _, p := range plan.Update {
		kinds[p] = kindUpdate
	}
	for _, p := range plan.Resurrect {
		kinds[p] = kindResurrect
	}

	var (
		mu       sync.Mutex
		vanished []string
		failed   int
	)

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan database.Media, s.threads*2)

	g.Go(func() error {
		defer close(results)
		pool, pctx := errgroup.WithContext(gctx)
		pool.SetLimit(s.threads)
		for _, path := range plan.Probe() {
			if pctx.Err() != nil {
				break
			}
			pool.Go(func() error {
				m, err := s.prober.Probe(pctx, path, profile)
				if err != nil {
					if ctxErr := pctx.Err(); ctxErr != nil {
						return ctxErr
					}
					mu.Lock()
					defer mu.Unlock()
					if errors.Is(err, database.ErrPathMissing) {
						if kinds[path] != kindAdd && helpers.ParentExists(s.fs, path) {
							vanished = append(vanished, path)
						}
						return nil
					}
					failed++
					log.Warn().Err(err).Str("path", path).Msg("probe failed")
					return nil
				}
				m.Path = path
				m.PlaylistID = playlistID
				m.TimeDeleted = 0
				select {
				case results <- m:
					return nil
				case <-pctx.Done():
					return pctx.Err()
				}
			})
		}
		return pool.Wait()
	})

	g.Go(func() error {
		batch := make([]database.Media, 0, s.batchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := s.db.UpsertMediaBatch(gctx, batch); err != nil {
				return fmt.Errorf("failed to commit scan batch: %w", err)
			}
			for i := range batch {
				switch kinds[batch[i].Path] {
				case kindAdd:
					counts.Added++
				case kindUpdate:
					counts.Updated++
				case kindResurrect:
					counts.Resurrected++
				}
			}
			batch = batch[:0]
			return nil
		}

		for m := range results {
			batch = append(batch, m)
			if len(batch) >= s.batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		return flush()
	})

	err := g.Wait()
	counts.Errors = failed
	if err != nil {
		return nil, err
	}
	return vanished, nil
}

// ScanAll scans every root in order, stopping at the first store error.
// Roots that fail to walk are logged and skipped.
func (s *Scanner) ScanAll(ctx context.Context, roots []string, profile probe.Profile) (database.ScanCounts, error) {
	var total database.ScanCounts
	for _, root := range roots {
		c, err := s.Scan(ctx, root, profile)
		total.Added += c.Added
		total.Updated += c.Updated
		total.Resurrected += c.Resurrected
		total.Deleted += c.Deleted
		total.Errors += c.Errors
		if err != nil {
			if ctx.Err() != nil || !errors.Is(err, fs.ErrNotExist) {
				return total, err
			}
			log.Warn().Err(err).Str("root", root).Msg("skipping missing scan root")
			total.Errors++
		}
	}
	return total, nil
}
