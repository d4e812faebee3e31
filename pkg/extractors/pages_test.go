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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSetPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		url   string
		key   string
		want  string
		page  int
		style PageStyle
	}{
		{
			name: "query appended",
			url:  "https://example.com/list?sort=new",
			key:  "page", page: 2, style: PageQuery,
			want: "https://example.com/list?page=2&sort=new",
		},
		{
			name: "query replaced",
			url:  "https://example.com/list?p=9",
			key:  "p", page: 3, style: PageQuery,
			want: "https://example.com/list?p=3",
		},
		{
			name: "path segment replaced",
			url:  "https://example.com/list/page/3/",
			key:  "page", page: 5, style: PagePath,
			want: "https://example.com/list/page/5/",
		},
		{
			name: "path segment appended",
			url:  "https://example.com/list",
			key:  "page", page: 2, style: PagePath,
			want: "https://example.com/list/page/2",
		},
		{
			name: "path key is last",
			url:  "https://example.com/list/page",
			key:  "page", page: 4, style: PagePath,
			want: "https://example.com/list/page/4",
		},
		{
			name: "query style rewrites path key",
			url:  "https://example.com/list/page/3?sort=new",
			key:  "page", page: 5, style: PageQuery,
			want: "https://example.com/list/page/5?sort=new",
		},
		{
			name: "query negative page",
			url:  "https://example.com/list",
			key:  "page", page: -1, style: PageQuery,
			want: "https://example.com/list?page=-1",
		},
		{
			name: "placeholder",
			url:  "https://example.com/list-%n%.html",
			key:  "n", page: 4, style: PagePlaceholder,
			want: "https://example.com/list-4.html",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SetPage(tt.url, tt.key, tt.page, tt.style)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetPageInvalidURL(t *testing.T) {
	t.Parallel()

	_, err := SetPage("http://[::1", "page", 1, PageQuery)
	require.Error(t, err)
}

func TestParsePageStyle(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]PageStyle{
		"":            PageQuery,
		"query":       PageQuery,
		"Path":        PagePath,
		"placeholder": PagePlaceholder,
	} {
		got, err := ParsePageStyle(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePageStyle("fragment")
	require.Error(t, err)
}

// TestPropertySetPageIdempotent checks that rewriting an already rewritten
// URL to the same page changes nothing.
func TestPropertySetPageIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		host := rapid.StringMatching(`[a-z]{1,8}\.(com|org)`).Draw(t, "host")
		segments := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9]{1,6}`), 0, 4).Draw(t, "segments")
		key := rapid.SampledFrom([]string{"page", "p", "offset"}).Draw(t, "key")
		style := PageStyle(rapid.IntRange(0, 2).Draw(t, "style"))
		n := rapid.IntRange(-5, 1000).Draw(t, "n")

		if rapid.Bool().Draw(t, "keyInPath") {
			segments = append(segments, key)
		}
		raw := "https://" + host + "/" + strings.Join(segments, "/")
		if rapid.Bool().Draw(t, "trailing") {
			raw += "/"
		}
		if style == PagePlaceholder {
			raw += "?page=%" + key + "%"
		} else if rapid.Bool().Draw(t, "query") {
			raw += "?" + rapid.StringMatching(`[a-z]{1,4}=[a-z0-9]{0,4}`).Draw(t, "query")
		}

		once, err := SetPage(raw, key, n, style)
		if err != nil {
			t.Fatalf("SetPage(%q): %v", raw, err)
		}
		twice, err := SetPage(once, key, n, style)
		if err != nil {
			t.Fatalf("SetPage(%q): %v", once, err)
		}
		if once != twice {
			t.Fatalf("not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	})
}
