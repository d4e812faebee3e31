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
	"regexp"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/syncutil"
)

// RegexCache holds compiled patterns for repeated include/exclude and
// filename matching.
type RegexCache struct {
	cache map[string]*regexp.Regexp
	mu    syncutil.RWMutex
}

var GlobalRegexCache = NewRegexCache()

func NewRegexCache() *RegexCache {
	return &RegexCache{cache: make(map[string]*regexp.Regexp)}
}

func (rc *RegexCache) Compile(pattern string) (*regexp.Regexp, error) {
	rc.mu.RLock()
	re, ok := rc.cache[pattern]
	rc.mu.RUnlock()
	if ok {
		return re, nil
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if re, ok := rc.cache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile regex pattern %q: %w", pattern, err)
	}
	rc.cache[pattern] = re
	return re, nil
}

func (rc *RegexCache) Size() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.cache)
}

func CachedCompile(pattern string) (*regexp.Regexp, error) {
	return GlobalRegexCache.Compile(pattern)
}
