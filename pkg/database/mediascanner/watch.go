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
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// debouncer fires once per root after quiet has passed without a touch.
type debouncer struct {
	clock  clockwork.Clock
	fire   func(root string)
	timers map[string]clockwork.Timer
	quiet  time.Duration
	mu     sync.Mutex
}

func newDebouncer(clock clockwork.Clock, quiet time.Duration, fire func(string)) *debouncer {
	return &debouncer{
		clock:  clock,
		quiet:  quiet,
		fire:   fire,
		timers: make(map[string]clockwork.Timer),
	}
}

func (d *debouncer) touch(root string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[root]; ok && t.Reset(d.quiet) {
		return
	}
	var t clockwork.Timer
	t = d.clock.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		if d.timers[root] == t {
			delete(d.timers, root)
		}
		d.mu.Unlock()
		d.fire(root)
	})
	d.timers[root] = t
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for root, t := range d.timers {
		t.Stop()
		delete(d.timers, root)
	}
}

// RescanFunc rescans one watched root.
type RescanFunc func(ctx context.Context, root string) error

// Watch watches every directory under roots and calls rescan for a root
// once it has been quiet for the given period. Rescans run one at a time
// on the calling goroutine. Watch returns when ctx is done.
func Watch(
	ctx context.Context,
	clock clockwork.Clock,
	roots []string,
	quiet time.Duration,
	rescan RescanFunc,
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Error().Err(err).Msg("error closing file watcher")
		}
	}()

	for _, root := range roots {
		if err := addTree(watcher, root); err != nil {
			return err
		}
	}
	log.Info().Strs("roots", roots).Msg("watching for changes")

	pending := make(chan string, len(roots))
	var queued sync.Map
	deb := newDebouncer(clock, quiet, func(root string) {
		if _, dup := queued.LoadOrStore(root, struct{}{}); dup {
			return
		}
		select {
		case pending <- root:
		case <-ctx.Done():
		}
	})
	defer deb.stop()

	rootOf := func(path string) string {
		for _, root := range roots {
			if helpers.PathHasPrefix(path, root) {
				return root
			}
		}
		return ""
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
					}
				}
			}
			if root := rootOf(event.Name); root != "" {
				deb.touch(root)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("file watcher error")
		case root := <-pending:
			queued.Delete(root)
			log.Info().Str("root", root).Msg("changes settled, rescanning")
			if err := rescan(ctx, root); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				log.Error().Err(err).Str("root", root).Msg("rescan failed")
			}
		}
	}
}

// addTree registers dir and every directory below it. Symlinked
// directories are not followed.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
