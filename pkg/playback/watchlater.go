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
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

func init() {
	// mpv reads key=value with no padding
	ini.PrettyFormat = false
}

// ResumePoint is what the player saved for a partially played file.
type ResumePoint struct {
	// Start is the resume position in seconds.
	Start float64
	// Touched is the unix mtime of the state file.
	Touched int64
}

// WatchLater reads the player's watch-later directory: one key=value file
// per media path, named after the hex md5 of the path.
type WatchLater struct {
	fs  afero.Fs
	dir string
}

func NewWatchLater(afs afero.Fs, dir string) *WatchLater {
	return &WatchLater{fs: afs, dir: dir}
}

// Filename is the state file for path. mpv writes upper case hex.
func (w *WatchLater) Filename(path string) string {
	return filepath.Join(w.dir, strings.ToUpper(helpers.MD5Hex(path)))
}

func (w *WatchLater) find(path string) (string, fs.FileInfo, error) {
	var lastErr error
	for _, name := range []string{w.Filename(path), filepath.Join(w.dir, helpers.MD5Hex(path))} {
		info, err := w.fs.Stat(name)
		if err == nil {
			return name, info, nil
		}
		lastErr = err
	}
	return "", nil, lastErr
}

// Lookup returns the resume point for path. ok is false when the player
// has no state for it.
func (w *WatchLater) Lookup(path string) (point ResumePoint, ok bool, err error) {
	name, info, err := w.find(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ResumePoint{}, false, nil
	} else if err != nil {
		return ResumePoint{}, false, fmt.Errorf("failed to stat watch-later file: %w", err)
	}

	data, err := afero.ReadFile(w.fs, name)
	if err != nil {
		return ResumePoint{}, false, fmt.Errorf("failed to read watch-later file: %w", err)
	}
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:    true,
		IgnoreInlineComment: true,
		Loose:               true,
	}, data)
	if err != nil {
		return ResumePoint{}, false, fmt.Errorf("failed to parse watch-later file %s: %w", name, err)
	}

	point.Touched = info.ModTime().Unix()
	if key := f.Section(ini.DefaultSection).Key("start"); key.String() != "" {
		start, err := key.Float64()
		if err != nil {
			return ResumePoint{}, false, fmt.Errorf("invalid start in %s: %w", name, err)
		}
		point.Start = start
	}
	return point, true, nil
}

// Save writes a resume point the way the player does.
func (w *WatchLater) Save(path string, start float64) error {
	f := ini.Empty()
	f.Section(ini.DefaultSection).Key("start").SetValue(strconv.FormatFloat(start, 'f', 6, 64))

	var buf bytes.Buffer
	buf.WriteString("# " + path + "\n")
	if _, err := f.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode watch-later file: %w", err)
	}
	if err := w.fs.MkdirAll(w.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create watch-later dir: %w", err)
	}
	if err := afero.WriteFile(w.fs, w.Filename(path), buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write watch-later file: %w", err)
	}
	return nil
}

// Forget removes any state kept for path.
func (w *WatchLater) Forget(path string) error {
	name, _, err := w.find(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to stat watch-later file: %w", err)
	}
	if err := w.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove watch-later file: %w", err)
	}
	return nil
}
