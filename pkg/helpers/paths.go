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
	"crypto/md5" //nolint:gosec // mpv keys watch-later files by md5
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/spf13/afero"
)

// NormalizePathForComparison lowercases and forward-slashes a path.
func NormalizePathForComparison(path string) string {
	p := filepath.ToSlash(filepath.Clean(path))
	return strings.ToLower(p)
}

// PathHasPrefix reports whether path is root or inside it. "/a/b2" is not
// inside "/a/b".
func PathHasPrefix(path, root string) bool {
	normPath := filepath.ToSlash(filepath.Clean(path))
	normRoot := filepath.ToSlash(filepath.Clean(root))
	if normPath == normRoot {
		return true
	}
	if normRoot == "" || normRoot == "." {
		return false
	}
	if !strings.HasSuffix(normRoot, "/") {
		normRoot += "/"
	}
	return strings.HasPrefix(normPath, normRoot)
}

// CleanPath expands a leading "~", resolves relative paths against the
// working directory and cleans the result. URLs are returned untouched.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", errors.New("empty path")
	}
	if database.IsURL(p) {
		return p, nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", p, err)
	}
	return abs, nil
}

// NormalizeExtension lowercases an extension and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// HasExtension reports whether path ends with one of exts, ignoring case.
// An empty list matches everything.
func HasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if NormalizeExtension(e) == ext {
			return true
		}
	}
	return false
}

// GlobToRegex converts an fnmatch-style pattern into an anchored regexp.
// Unlike filepath.Match, "*" also crosses path separators.
func GlobToRegex(pattern string) string {
	var sb strings.Builder
	sb.WriteString("(?s)^")
	inClass := false
	for _, r := range pattern {
		switch {
		case inClass:
			if r == ']' {
				inClass = false
			}
			sb.WriteRune(r)
		case r == '*':
			sb.WriteString(".*")
		case r == '?':
			sb.WriteString(".")
		case r == '[':
			inClass = true
			sb.WriteRune(r)
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if inClass {
		// unterminated class, treat literally
		return "(?s)^" + regexp.QuoteMeta(pattern) + "$"
	}
	sb.WriteString("$")
	return sb.String()
}

// MatchPattern reports whether pattern equals the basename of path or
// matches the full path as a glob.
func MatchPattern(pattern, path string) bool {
	if pattern == filepath.Base(path) {
		return true
	}
	re, err := CachedCompile(GlobToRegex(pattern))
	if err != nil {
		return false
	}
	return re.MatchString(path)
}

// MatchAny reports whether any pattern matches path.
func MatchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if MatchPattern(p, path) {
			return true
		}
	}
	return false
}

// CommonPrefix returns the longest common string prefix of xs.
func CommonPrefix(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	prefix := xs[0]
	for _, s := range xs[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}

// ParentExists reports whether the directory holding path is present.
// A missing parent usually means an unmounted volume.
func ParentExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(filepath.Dir(path))
	return err == nil && info.IsDir()
}

// MD5Hex is the lowercase hex md5 of s.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // not used for security
	return hex.EncodeToString(sum[:])
}

// IsNetworkPath reports paths on network mounts, which are never trashed.
func IsNetworkPath(path string) bool {
	return strings.HasPrefix(filepath.ToSlash(path), "/net/")
}
