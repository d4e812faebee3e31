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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// MoveFile renames src to dst. Across devices it copies then unlinks, and a
// missing destination parent is created once before retrying.
func MoveFile(fs afero.Fs, src, dst string) error {
	err := fs.Rename(src, dst)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if _, statErr := fs.Stat(src); statErr != nil {
			return fmt.Errorf("failed to move %s: %w", src, statErr)
		}
		if mkErr := fs.MkdirAll(filepath.Dir(dst), 0o750); mkErr != nil {
			return fmt.Errorf("failed to create destination directory: %w", mkErr)
		}
		err = fs.Rename(src, dst)
		if err == nil {
			return nil
		}
	}

	if errors.Is(err, syscall.EXDEV) {
		log.Debug().Str("src", src).Str("dst", dst).Msg("cross-device move, copying")
		if cpErr := CopyFile(fs, src, dst); cpErr != nil {
			return cpErr
		}
		if rmErr := fs.Remove(src); rmErr != nil {
			return fmt.Errorf("failed to remove %s after copy: %w", src, rmErr)
		}
		return nil
	}

	return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
}

// CopyFile copies src to dst keeping mode and modification time.
func CopyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close source file")
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	if err := fs.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = fs.Remove(dst)
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}

	if err := fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		log.Warn().Err(err).Str("path", dst).Msg("failed to preserve mtime")
	}
	return nil
}

// DefaultKeepDir is used when no keep dir is configured.
const DefaultKeepDir = "keep"

// KeepPath is where a file lands when moved into keepDir. A relative
// keepDir is resolved against the file's own parent.
func KeepPath(path, keepDir string) string {
	if keepDir == "" {
		keepDir = DefaultKeepDir
	}
	if !filepath.IsAbs(keepDir) {
		keepDir = filepath.Join(filepath.Dir(path), keepDir)
	}
	return filepath.Join(keepDir, filepath.Base(path))
}
