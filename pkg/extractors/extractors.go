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
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/shared/httpclient"
)

var (
	// ErrKnownItemReached stops a playlist at the first entry already in
	// the catalog. It is a normal end of fetch, not a failure.
	ErrKnownItemReached = errors.New("known item reached")
	// ErrExtractorBlocked means the site refused or rate limited us.
	ErrExtractorBlocked = errors.New("extractor blocked")
	ErrHTTP             = errors.New("http error")
	// ErrEncoding marks extractor output that failed on a text encoding
	// problem and may succeed when forced to UTF-8.
	ErrEncoding     = errors.New("extractor encoding error")
	ErrNoExtractor  = errors.New("no extractor for url")
	errFetchTimeout = errors.New("extractor timed out")
)

// Entry is one record yielded by an extractor. Reddit self posts carry a
// Post and no media path.
type Entry struct {
	Post  *database.RedditPost
	Media database.Media
}

// EmitFunc receives entries as they are extracted. Returning an error stops
// the extractor, which passes the error back to its caller.
type EmitFunc func(ctx context.Context, e Entry) error

// IsKnownFunc reports whether the catalog already holds path.
type IsKnownFunc func(ctx context.Context, path string) (bool, error)

// Options tune a single playlist fetch.
type Options struct {
	IsKnown          IsKnownFunc
	KnownPaths       func(ctx context.Context, paths []string) (map[string]bool, error)
	PageKey          string
	StopLink         string
	Include          []string
	Exclude          []string
	PageStyle        PageStyle
	MaxPages         int
	FixedPages       int
	StopPagesNoNew   int
	StopPagesNoMatch int
	// ForceUTF8 is set by WithEncodingRetry on its second attempt.
	ForceUTF8 bool
	// SameDomain keeps only links on the playlist's host.
	SameDomain bool
	// PageStart is the first page number, 1 when unset.
	PageStart int
	// PageStep is added to the page number after each page, 1 when unset.
	// A negative step pages backwards and stops below page 0.
	PageStep int
}

// FetchFunc fetches one playlist URL, emitting entries in source order.
type FetchFunc func(ctx context.Context, url string, opts Options, emit EmitFunc) (database.Playlist, error)

// Extractor is a source of playlists.
type Extractor interface {
	Key() string
	Match(url string) bool
	Fetch(ctx context.Context, url string, opts Options, emit EmitFunc) (database.Playlist, error)
}

// Fetcher downloads a page body. *httpclient.Client satisfies it.
type Fetcher interface {
	GetBody(ctx context.Context, url string) (body []byte, finalURL string, err error)
}

// WithTimeout bounds a whole playlist fetch by d.
func WithTimeout(d time.Duration, fn FetchFunc) FetchFunc {
	return func(ctx context.Context, url string, opts Options, emit EmitFunc) (database.Playlist, error) {
		ctx, cancel := context.WithTimeoutCause(ctx, d, errFetchTimeout)
		defer cancel()
		pl, err := fn(ctx, url, opts, emit)
		if err != nil && errors.Is(context.Cause(ctx), errFetchTimeout) {
			return pl, fmt.Errorf("%w after %s: %w", errFetchTimeout, d, err)
		}
		return pl, err
	}
}

// WithEncodingRetry retries a fetch once with ForceUTF8 set when the first
// attempt fails with ErrEncoding.
func WithEncodingRetry(fn FetchFunc) FetchFunc {
	return func(ctx context.Context, url string, opts Options, emit EmitFunc) (database.Playlist, error) {
		pl, err := fn(ctx, url, opts, emit)
		if err == nil || !errors.Is(err, ErrEncoding) || opts.ForceUTF8 {
			return pl, err
		}
		opts.ForceUTF8 = true
		return fn(ctx, url, opts, emit)
	}
}

// classifyHTTP maps fetch errors onto the extractor error kinds.
func classifyHTTP(err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusForbidden, http.StatusTooManyRequests, http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", ErrExtractorBlocked, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrHTTP, err)
}

// checkKnown returns ErrKnownItemReached when the path is already stored.
func checkKnown(ctx context.Context, opts Options, path string) error {
	if opts.IsKnown == nil || path == "" {
		return nil
	}
	known, err := opts.IsKnown(ctx, path)
	if err != nil {
		return err
	}
	if known {
		return fmt.Errorf("%w: %s", ErrKnownItemReached, path)
	}
	return nil
}
