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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Link is an anchor scraped from a page.
type Link struct {
	URL  string
	Text string
}

// LinksDB scrapes the links of paginated HTML listings.
type LinksDB struct {
	fetcher Fetcher
	polite  *Politeness
}

var _ Extractor = (*LinksDB)(nil)

func NewLinksDB(fetcher Fetcher, polite *Politeness) *LinksDB {
	return &LinksDB{fetcher: fetcher, polite: polite}
}

func (*LinksDB) Key() string {
	return database.ExtractorLinksDB
}

// Match accepts any http(s) URL; LinksDB is the fallback extractor.
func (*LinksDB) Match(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// pageStats tracks the stop conditions across pages.
type pageStats struct {
	noNew   int
	noMatch int
}

// Fetch walks the listing page by page and emits every new link. Paging
// stops at MaxPages or FixedPages, at StopLink, after StopPagesNoNew pages
// in a row without new links, or after StopPagesNoMatch pages in a row
// with no links at all. Later pages that 404 end the walk cleanly; other
// failures of later pages are logged and skipped.
func (l *LinksDB) Fetch(
	ctx context.Context,
	rawURL string,
	opts Options,
	emit EmitFunc,
) (database.Playlist, error) {
	pl := database.Playlist{Path: rawURL, ExtractorKey: l.Key()}
	key := opts.PageKey
	if key == "" {
		key = "page"
	}
	maxPages := opts.MaxPages
	if opts.FixedPages > 0 {
		maxPages = opts.FixedPages
	}

	start := opts.PageStart
	if start == 0 {
		start = 1
	}
	step := opts.PageStep
	if step == 0 {
		step = 1
	}

	seen := make(map[string]bool)
	var stats pageStats
	for page := 1; maxPages == 0 || page <= maxPages; page++ {
		n := start + (page-1)*step
		if n < 0 {
			log.Debug().Str("url", rawURL).Int("pages", page-1).Msg("page numbers exhausted")
			return pl, nil
		}
		pageURL := rawURL
		if n != 1 || opts.PageStyle == PagePlaceholder {
			var err error
			pageURL, err = SetPage(rawURL, key, n, opts.PageStyle)
			if err != nil {
				return pl, err
			}
		}

		if l.polite != nil {
			if err := l.polite.BeforeRequest(ctx, pageURL); err != nil {
				return pl, err
			}
		}
		body, finalURL, err := l.fetcher.GetBody(ctx, pageURL)
		if err != nil {
			var statusErr *httpclient.StatusError
			if page > 1 && errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
				log.Debug().Str("url", pageURL).Msg("page not found, end of listing")
				return pl, nil
			}
			err = classifyHTTP(err)
			if page == 1 || ctx.Err() != nil || errors.Is(err, ErrExtractorBlocked) {
				return pl, err
			}
			log.Warn().Err(err).Str("url", pageURL).Msg("skipping page")
			if opts.FixedPages == 0 && stats.next(0, 0, opts) {
				log.Info().Str("url", rawURL).Int("pages", page).Msg("no more new links")
				return pl, nil
			}
			continue
		}
		if page == 1 && pl.Title == "" {
			pl.Title = pageTitle(body)
		}

		links, err := ParseLinks(bytes.NewReader(body), finalURL)
		if err != nil {
			return pl, fmt.Errorf("failed to parse %s: %w", pageURL, err)
		}
		links = filterLinks(links, rawURL, opts)

		fresh, stop, err := l.freshLinks(ctx, links, seen, opts)
		if err != nil {
			return pl, err
		}
		for _, link := range fresh {
			m := database.Media{Path: link.URL, Title: link.Text}
			if err := emit(ctx, Entry{Media: m}); err != nil {
				return pl, err
			}
		}
		log.Debug().Str("url", pageURL).Int("links", len(links)).Int("new", len(fresh)).Msg("scraped page")

		if stop {
			log.Info().Str("url", pageURL).Msg("stop link reached")
			return pl, nil
		}
		if opts.FixedPages > 0 {
			continue
		}
		if done := stats.next(len(links), len(fresh), opts); done {
			log.Info().Str("url", rawURL).Int("pages", page).Msg("no more new links")
			return pl, nil
		}
	}
	return pl, nil
}

// next records one page and reports whether paging should stop.
func (s *pageStats) next(links, fresh int, opts Options) bool {
	if fresh == 0 {
		s.noNew++
	} else {
		s.noNew = 0
	}
	if links == 0 {
		s.noMatch++
	} else {
		s.noMatch = 0
	}
	return (opts.StopPagesNoNew > 0 && s.noNew >= opts.StopPagesNoNew) ||
		(opts.StopPagesNoMatch > 0 && s.noMatch >= opts.StopPagesNoMatch)
}

// freshLinks drops links seen earlier in this walk or already in the
// catalog. It also reports whether the stop link was on the page; links
// after it are dropped.
func (*LinksDB) freshLinks(
	ctx context.Context,
	links []Link,
	seen map[string]bool,
	opts Options,
) (fresh []Link, stop bool, err error) {
	var candidates []Link
	for _, link := range links {
		if opts.StopLink != "" && link.URL == opts.StopLink {
			stop = true
			break
		}
		if seen[link.URL] {
			continue
		}
		seen[link.URL] = true
		candidates = append(candidates, link)
	}
	if len(candidates) == 0 {
		return nil, stop, nil
	}

	known := map[string]bool{}
	if opts.KnownPaths != nil {
		paths := make([]string, len(candidates))
		for i, c := range candidates {
			paths[i] = c.URL
		}
		known, err = opts.KnownPaths(ctx, paths)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check known links: %w", err)
		}
	}
	for _, c := range candidates {
		if !known[c.URL] {
			fresh = append(fresh, c)
		}
	}
	return fresh, stop, nil
}

func filterLinks(links []Link, playlistURL string, opts Options) []Link {
	var host string
	if u, err := url.Parse(playlistURL); err == nil {
		host = u.Hostname()
	}
	out := links[:0]
	for _, link := range links {
		if opts.SameDomain {
			if u, err := url.Parse(link.URL); err != nil || u.Hostname() != host {
				continue
			}
		}
		if len(opts.Include) > 0 && !containsAny(link.URL+" "+link.Text, opts.Include) {
			continue
		}
		if len(opts.Exclude) > 0 && containsAny(link.URL+" "+link.Text, opts.Exclude) {
			continue
		}
		out = append(out, link)
	}
	return out
}

func containsAny(s string, terms []string) bool {
	s = strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// ParseLinks returns the absolute http(s) targets of every anchor in the
// document, in document order, resolved against base. Fragment-only links
// and duplicates are dropped.
func ParseLinks(r io.Reader, base string) ([]Link, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var links []Link
	dupes := make(map[string]bool)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "base" {
			if href := attr(n, "href"); href != "" {
				if u, err := baseURL.Parse(href); err == nil {
					baseURL = u
				}
			}
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if link, ok := resolveLink(baseURL, attr(n, "href")); ok && !dupes[link] {
				dupes[link] = true
				links = append(links, Link{URL: link, Text: helpers.CollapseSpaces(nodeText(n))})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	u, err := base.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	u.Fragment = ""
	return u.String(), true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func pageTitle(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			title = helpers.CollapseSpaces(nodeText(n))
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}
