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
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const progressInterval = 250 * time.Millisecond

// ScanStats counts what a walk saw and what its filters dropped.
type ScanStats struct {
	Files           int
	FilteredFiles   int
	Folders         int
	FilteredFolders int
}

type WalkOptions struct {
	// Progress receives throttled status lines, usually os.Stderr. Nil
	// disables progress output.
	Progress   io.Writer
	Clock      clockwork.Clock
	Extensions []string
	Include    []string
	Exclude    []string
}

// WalkFunc is called for every kept file. Returning an error stops the walk.
type WalkFunc func(path string, info fs.FileInfo) error

type progress struct {
	out   io.Writer
	clock clockwork.Clock
	last  time.Time
	tty   bool
}

func newProgress(out io.Writer, clock clockwork.Clock) *progress {
	if out == nil {
		return nil
	}
	p := &progress{out: out, clock: clock}
	if f, ok := out.(*os.File); ok {
		p.tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

func (p *progress) update(stats *ScanStats, dir string, final bool) {
	if p == nil {
		return
	}
	now := p.clock.Now()
	if !final && now.Sub(p.last) < progressInterval {
		return
	}
	p.last = now

	line := fmt.Sprintf("%d files, %d folders", stats.Files, stats.Folders)
	if !final && dir != "" {
		line += " " + helpers.Truncate(dir, 60)
	}
	if p.tty {
		_, _ = fmt.Fprintf(p.out, "\r\033[K%s", line)
		if final {
			_, _ = fmt.Fprintln(p.out)
		}
		return
	}
	_, _ = fmt.Fprintln(p.out, line)
}

// skippable reports directory errors that drop a subtree without failing
// the walk. EMFILE is never skippable.
func skippable(err error) bool {
	if errors.Is(err, syscall.EMFILE) {
		return false
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return true
	}
	if errors.Is(err, syscall.EIO) {
		log.Warn().Err(err).Msg("i/o error reading directory, skipping")
		return true
	}
	return false
}

// Walk visits every file under root depth first without recursion.
// Symlinks are never followed. Folders matching an exclude pattern are not
// entered; files must pass the extension filter and then include/exclude.
func Walk(ctx context.Context, afs afero.Fs, root string, opts WalkOptions, fn WalkFunc) (ScanStats, error) {
	var stats ScanStats
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	prog := newProgress(opts.Progress, opts.Clock)

	info, err := afs.Stat(root)
	if err != nil {
		return stats, fmt.Errorf("failed to stat scan root: %w", err)
	}
	if !info.IsDir() {
		if keepFile(root, opts) {
			stats.Files++
			return stats, fn(root, info)
		}
		stats.FilteredFiles++
		return stats, nil
	}

	stack := []string{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stats.Folders++

		entries, err := afero.ReadDir(afs, dir)
		if err != nil {
			if skippable(err) {
				log.Debug().Err(err).Str("path", dir).Msg("skipping unreadable directory")
				continue
			}
			return stats, fmt.Errorf("failed to read directory %s: %w", dir, err)
		}

		// reverse so the stack pops subdirectories in name order
		var subdirs []string
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			switch {
			case entry.Mode()&fs.ModeSymlink != 0:
				continue
			case entry.IsDir():
				if helpers.MatchAny(opts.Exclude, path) {
					stats.FilteredFolders++
					continue
				}
				subdirs = append(subdirs, path)
			case entry.Mode().IsRegular():
				if !keepFile(path, opts) {
					stats.FilteredFiles++
					continue
				}
				stats.Files++
				if err := fn(path, entry); err != nil {
					return stats, err
				}
			}
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}

		prog.update(&stats, dir, false)
	}

	prog.update(&stats, "", true)
	return stats, nil
}

func keepFile(path string, opts WalkOptions) bool {
	if !helpers.HasExtension(path, opts.Extensions) {
		return false
	}
	if len(opts.Include) > 0 && !helpers.MatchAny(opts.Include, path) {
		return false
	}
	return !helpers.MatchAny(opts.Exclude, path)
}
