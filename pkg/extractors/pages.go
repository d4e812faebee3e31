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
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// PageStyle says where a page number lives in a URL.
type PageStyle int

const (
	// PageQuery sets the ?<key>=N query parameter.
	PageQuery PageStyle = iota
	// PagePath sets the path element following the <key> element.
	PagePath
	// PagePlaceholder replaces %<key>% in the URL template.
	PagePlaceholder
)

func ParsePageStyle(s string) (PageStyle, error) {
	switch strings.ToLower(s) {
	case "", "query":
		return PageQuery, nil
	case "path":
		return PagePath, nil
	case "placeholder":
		return PagePlaceholder, nil
	default:
		return PageQuery, fmt.Errorf("unknown page style: %s", s)
	}
}

// SetPage rewrites rawURL to point at page n. In query style a path
// segment equal to key takes precedence over the query parameter. It is
// idempotent: applying it twice with the same arguments gives the same URL
// as applying it once.
func SetPage(rawURL, key string, n int, style PageStyle) (string, error) {
	page := strconv.Itoa(n)
	if style == PagePlaceholder {
		return strings.ReplaceAll(rawURL, "%"+key+"%", page), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	switch style {
	case PagePath:
		setPathPage(u, key, page, true)
	case PageQuery, PagePlaceholder:
		if setPathPage(u, key, page, false) {
			break
		}
		q := u.Query()
		q.Set(key, page)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// setPathPage sets the path element following the key element. When the
// path has no key element it appends one if add is set, and reports
// whether the path was changed.
func setPathPage(u *url.URL, key, page string, add bool) bool {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 1 && segments[0] == "" {
		segments = nil
	}
	i := slices.Index(segments, key)
	switch {
	case i >= 0 && i+1 < len(segments):
		segments[i+1] = page
	case i >= 0:
		segments = append(segments, page)
	case add:
		segments = append(segments, key, page)
	default:
		return false
	}
	trailing := strings.HasSuffix(u.Path, "/") && len(u.Path) > 1
	u.Path = "/" + strings.Join(segments, "/")
	if trailing {
		u.Path += "/"
	}
	u.RawPath = ""
	return true
}
