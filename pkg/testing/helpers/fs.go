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

package helpers

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// CreateSizedFile writes size zero bytes to path and sets its mtime.
func (h *FSHelper) CreateSizedFile(path string, size int, mtime time.Time) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, make([]byte, size), 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	if !mtime.IsZero() {
		if err := h.Fs.Chtimes(path, mtime, mtime); err != nil {
			return fmt.Errorf("failed to set mtime of %s: %w", path, err)
		}
	}
	return nil
}

// CreateMediaDirectory creates a small library of video and audio files
// under basePath.
func (h *FSHelper) CreateMediaDirectory(basePath string) error {
	return h.CreateDirectoryStructure(map[string]any{
		basePath: GetBasicTestStructure(),
	})
}

// CreateDirectoryStructure creates a directory tree. Values are file
// contents (string or []byte), nested maps for directories, or nil for an
// empty directory.
func (h *FSHelper) CreateDirectoryStructure(structure map[string]any) error {
	return h.createStructureRecursive("", structure)
}

func (h *FSHelper) createStructureRecursive(basePath string, structure map[string]any) error {
	for name, content := range structure {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := h.WriteFile(fullPath, []byte(v)); err != nil {
				return err
			}
		case []byte:
			if err := h.WriteFile(fullPath, v); err != nil {
				return err
			}
		case map[string]any:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
			}
			if err := h.createStructureRecursive(fullPath, v); err != nil {
				return err
			}
		case nil:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create empty directory %s: %w", fullPath, err)
			}
		}
	}
	return nil
}

// WriteFile writes content to a file, creating parent directories.
func (h *FSHelper) WriteFile(path string, content []byte) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// GetBasicTestStructure returns a small media library layout.
func GetBasicTestStructure() map[string]any {
	return map[string]any{
		"Movies": map[string]any{
			"Heat (1995).mkv":    []byte("matroska"),
			"Heat (1995).en.srt": "1\n00:00:01,000 --> 00:00:02,000\nhello\n",
			"Alien (1979).mp4":   []byte("mp4"),
			"notes.txt":          "not media",
			".hidden": map[string]any{
				"skip.mkv": []byte("x"),
			},
			"Extras": map[string]any{
				"trailer.webm":    []byte("webm"),
				"poster.jpg":      []byte{0xFF, 0xD8},
				"sample.mkv.part": []byte("partial"),
			},
		},
		"Music": map[string]any{
			"Album": map[string]any{
				"01 Intro.flac": []byte("fLaC"),
				"02 Song.mp3":   []byte("ID3"),
			},
		},
		"Empty": nil,
	}
}
