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
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/rs/zerolog/log"
)

const (
	redditBase     = "https://old.reddit.com"
	redditPageSize = 100
	// RedditInterval is the request spacing reddit asks unauthenticated
	// clients to keep.
	RedditInterval = 2 * time.Second
)

var redditHosts = []string{"old.reddit.com", "www.reddit.com", "reddit.com"}

// LimitReddit holds every reddit host to RedditInterval.
func LimitReddit(p *Politeness) {
	for _, h := range redditHosts {
		p.SetLimit(h, RedditInterval, 1)
	}
}

// Reddit reads subreddit and user listings through the public JSON API.
// Link posts become media rows; self posts are stored as reddit posts.
type Reddit struct {
	fetcher Fetcher
	polite  *Politeness
}

var _ Extractor = (*Reddit)(nil)

func NewReddit(fetcher Fetcher, polite *Politeness) *Reddit {
	return &Reddit{fetcher: fetcher, polite: polite}
}

func (*Reddit) Key() string {
	return database.ExtractorReddit
}

func (*Reddit) Match(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "reddit.com" || strings.HasSuffix(host, ".reddit.com")
}

// ExpandRedditURL turns a bare token into a listing URL. Tokens may be a
// full URL, "r/name", "u/name" or a bare name, which is a subreddit unless
// user is set.
func ExpandRedditURL(token string, user bool) string {
	token = strings.TrimSpace(token)
	if database.IsURL(token) {
		return token
	}
	token = strings.Trim(token, "/")
	switch {
	case strings.HasPrefix(token, "r/"):
		return fmt.Sprintf("%s/r/%s/", redditBase, strings.TrimPrefix(token, "r/"))
	case strings.HasPrefix(token, "u/"), strings.HasPrefix(token, "user/"):
		name := strings.TrimPrefix(strings.TrimPrefix(token, "u/"), "user/")
		return fmt.Sprintf("%s/user/%s/", redditBase, name)
	case user:
		return fmt.Sprintf("%s/user/%s/", redditBase, token)
	default:
		return fmt.Sprintf("%s/r/%s/", redditBase, token)
	}
}

// listingURL points a reddit page at its JSON form.
func listingURL(rawURL, after string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid reddit url: %w", err)
	}
	if !strings.HasSuffix(u.Path, ".json") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/.json"
	}
	q := u.Query()
	q.Set("limit", fmt.Sprint(redditPageSize))
	q.Set("raw_json", "1")
	if after != "" {
		q.Set("after", after)
	} else {
		q.Del("after")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string         `json:"kind"`
			Data redditPostData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostData struct {
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Score       float64 `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int64   `json:"num_comments"`
	IsSelf      bool    `json:"is_self"`
	Over18      bool    `json:"over_18"`
}

// Fetch pages through the listing until it runs out, MaxPages is reached
// or a known post is met.
func (r *Reddit) Fetch(
	ctx context.Context,
	rawURL string,
	opts Options,
	emit EmitFunc,
) (database.Playlist, error) {
	pl := database.Playlist{Path: rawURL, ExtractorKey: r.Key()}
	if u, err := url.Parse(rawURL); err == nil {
		pl.Title = strings.Trim(u.Path, "/")
	}

	after := ""
	for page := 1; opts.MaxPages == 0 || page <= opts.MaxPages; page++ {
		pageURL, err := listingURL(rawURL, after)
		if err != nil {
			return pl, err
		}
		if r.polite != nil {
			if err := r.polite.BeforeRequest(ctx, pageURL); err != nil {
				return pl, err
			}
		}
		body, _, err := r.fetcher.GetBody(ctx, pageURL)
		if err != nil {
			return pl, classifyHTTP(err)
		}
		var listing redditListing
		if err := json.Unmarshal(body, &listing); err != nil {
			return pl, fmt.Errorf("%w: failed to parse reddit listing: %w", ErrHTTP, err)
		}

		for _, child := range listing.Data.Children {
			if child.Kind != "t3" {
				continue
			}
			entry := redditEntry(child.Data)
			path := entry.Media.Path
			if entry.Post != nil {
				path = entry.Post.Path
			}
			if err := checkKnown(ctx, opts, path); err != nil {
				return pl, err
			}
			if err := emit(ctx, entry); err != nil {
				return pl, err
			}
		}
		log.Debug().Str("url", pageURL).Int("posts", len(listing.Data.Children)).Msg("fetched reddit page")

		after = listing.Data.After
		if after == "" {
			return pl, nil
		}
	}
	return pl, nil
}

func redditEntry(d redditPostData) Entry {
	permalink := redditBase + d.Permalink
	created := int64(math.Round(d.CreatedUTC))
	if d.IsSelf || d.URL == "" || d.URL == permalink {
		return Entry{Post: &database.RedditPost{
			Path:        permalink,
			Title:       d.Title,
			Selftext:    d.Selftext,
			Author:      d.Author,
			Subreddit:   d.Subreddit,
			Score:       int64(d.Score),
			NumComments: d.NumComments,
			TimeCreated: created,
		}}
	}

	m := database.Media{
		Path:         html.UnescapeString(d.URL),
		ExtractorID:  d.Name,
		Title:        d.Title,
		Uploader:     d.Author,
		Score:        d.Score,
		UpvoteRatio:  d.UpvoteRatio,
		TimeUploaded: created,
		Tags:         d.Subreddit,
	}
	if d.Over18 {
		m.AgeLimit = 18
	}
	if extra, err := json.Marshal(map[string]string{"permalink": permalink}); err == nil {
		m.Extra = string(extra)
	}
	return Entry{Media: m}
}
