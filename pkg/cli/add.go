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

package cli

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/mediascanner"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/extractors"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/probe"
	"github.com/rs/zerolog/log"
)

func runFsAdd(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("fsadd", env.Stderr)
	profileName := fs.String("profile", string(probe.ProfileVideo),
		"scan profile: video, audio, image, text, filesystem or torrent")
	watch := fs.Bool("watch", false, "keep watching the folders and rescan on changes")
	slow := fs.Bool("slow", false, "use the slow probe timeout")
	deleteUnplayable := fs.Bool("delete-unplayable", false, "trash files the probe cannot parse")
	threads := fs.Int("threads", 0, "probe workers (default from config)")
	if err := parse(fs, args); err != nil {
		return err
	}
	profile, err := probe.ParseProfile(*profileName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	dbPath, roots := splitDB(env, "fs", fs.Args())
	if len(roots) == 0 {
		return fmt.Errorf("%w: fsadd needs at least one folder", ErrUsage)
	}
	if *deleteUnplayable {
		env.Cfg.SetDeleteUnplayable(true)
	}

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	trasher := helpers.NewTrasher(env.Fs, env.Exec, env.Cfg.TrashCommand())
	prober := probe.NewProber(env.Cfg, env.Exec, env.Fs, trasher, probe.WithSlow(*slow))
	opts := []mediascanner.Option{mediascanner.WithClock(env.Clock)}
	if *threads > 0 {
		opts = append(opts, mediascanner.WithThreads(*threads))
	}
	scanner := mediascanner.NewScanner(db, env.Fs, prober, env.Cfg, opts...)

	counts, err := scanner.ScanAll(ctx, roots, profile)
	printScanCounts(env, counts)
	if err != nil || !*watch {
		return err
	}

	abs := make([]string, 0, len(roots))
	for _, r := range roots {
		a, err := filepath.Abs(r)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", r, err)
		}
		abs = append(abs, a)
	}
	err = mediascanner.Watch(ctx, env.Clock, abs, env.Cfg.WatchQuiet(), func(ctx context.Context, root string) error {
		c, err := scanner.Scan(ctx, root, profile)
		printScanCounts(env, c)
		return err
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}

func printScanCounts(env *Env, c database.ScanCounts) {
	_, _ = fmt.Fprintf(env.Stderr, "added %d, updated %d, resurrected %d, deleted %d, errors %d\n",
		c.Added, c.Updated, c.Resurrected, c.Deleted, c.Errors)
}

// ingestFlags are shared by the online adders.
type ingestFlags struct {
	category      string
	threads       int
	fetchTimeout  time.Duration
	deleteBlocked bool
	noSleep       bool
}

func addIngestFlags(fs *flag.FlagSet) *ingestFlags {
	f := &ingestFlags{}
	fs.StringVar(&f.category, "category", "", "label stored on new playlists")
	fs.IntVar(&f.threads, "threads", 0, "playlists fetched at once (default from config)")
	fs.BoolVar(&f.deleteBlocked, "delete-blocked", false, "mark playlists deleted when the site refuses them")
	fs.BoolVar(&f.noSleep, "no-sleep", false, "skip politeness delays between requests")
	fs.DurationVar(&f.fetchTimeout, "fetch-timeout", 0, "give up on one playlist after this long")
	return f
}

// ingest opens the catalog and runs an ingester over urls with exs.
func ingest(
	ctx context.Context,
	env *Env,
	f *ingestFlags,
	dbPath string,
	urls []string,
	key string,
	configure func(p *extractors.Politeness) []extractors.Extractor,
	tune func(o *extractors.Options),
) error {
	if len(urls) == 0 {
		return fmt.Errorf("%w: no urls given", ErrUsage)
	}
	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	polite := extractors.NewPoliteness(env.Clock, env.Cfg.PolitenessSleep() && !f.noSleep)
	opts := []extractors.IngestOption{
		extractors.WithResolver(env.HTTP),
		extractors.WithDeleteBlocked(f.deleteBlocked),
	}
	if f.threads > 0 {
		opts = append(opts, extractors.WithIngestThreads(f.threads))
	}
	if f.fetchTimeout > 0 {
		opts = append(opts, extractors.WithFetchTimeout(f.fetchTimeout))
	}
	in := extractors.NewIngester(db, polite, env.Cfg, configure(polite), opts...)

	fetchOpts := in.Defaults()
	if tune != nil {
		tune(&fetchOpts)
	}
	counts, err := in.Ingest(ctx, urls, key, f.category, fetchOpts)
	_, _ = fmt.Fprintf(env.Stderr, "playlists %d, media %d, posts %d, errors %d\n",
		counts.Playlists, counts.Media, counts.Posts, counts.Errors)
	if err != nil {
		return err
	}
	log.Info().Str("extractor", key).Int("media", counts.Media).Msg("ingest finished")
	return nil
}

func runTubeAdd(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("tubeadd", env.Stderr)
	f := addIngestFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	dbPath, urls := splitDB(env, "tube", fs.Args())
	ytdlp := extractors.NewYtDlp(env.Exec, env.Cfg.YtDlpBinary())
	return ingest(ctx, env, f, dbPath, urls, ytdlp.Key(),
		func(*extractors.Politeness) []extractors.Extractor {
			return []extractors.Extractor{ytdlp}
		}, nil)
}

func runLinksAdd(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("linksadd", env.Stderr)
	f := addIngestFlags(fs)
	pageKey := fs.String("page-key", "", "query key or path segment holding the page number")
	pageStyle := fs.String("page-style", "query", "how pages are addressed: query, path or placeholder")
	pageStart := fs.Int("page-start", 1, "number of the first page")
	pageStep := fs.Int("page-step", 1, "added to the page number after each page, negative pages backwards")
	maxPages := fs.Int("max-pages", 0, "stop after this many pages")
	fixedPages := fs.Int("fixed-pages", 0, "fetch exactly this many pages")
	noNew := fs.Int("stop-pages-no-new", 0, "stop after this many pages without new links")
	noMatch := fs.Int("stop-pages-no-match", 0, "stop after this many pages without any links")
	stopLink := fs.String("stop-link", "", "stop when this link is seen")
	sameDomain := fs.Bool("same-domain", false, "only keep links on the page's host")
	var include, exclude stringList
	fs.Var(&include, "path-include", "keep links containing this text (repeatable)")
	fs.Var(&exclude, "path-exclude", "drop links containing this text (repeatable)")
	if err := parse(fs, args); err != nil {
		return err
	}
	style, err := extractors.ParsePageStyle(*pageStyle)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if *pageStep == 0 {
		return fmt.Errorf("%w: -page-step must not be 0", ErrUsage)
	}
	dbPath, urls := splitDB(env, "tabs", fs.Args())

	return ingest(ctx, env, f, dbPath, urls, database.ExtractorLinksDB,
		func(p *extractors.Politeness) []extractors.Extractor {
			return []extractors.Extractor{extractors.NewLinksDB(env.HTTP, p)}
		},
		func(o *extractors.Options) {
			if *pageKey != "" {
				o.PageKey = *pageKey
			}
			if *noNew > 0 {
				o.StopPagesNoNew = *noNew
			}
			if *noMatch > 0 {
				o.StopPagesNoMatch = *noMatch
			}
			o.PageStyle = style
			o.PageStart = *pageStart
			o.PageStep = *pageStep
			o.MaxPages = *maxPages
			o.FixedPages = *fixedPages
			o.StopLink = *stopLink
			o.SameDomain = *sameDomain
			o.Include = include
			o.Exclude = exclude
		})
}

func runRedditAdd(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("redditadd", env.Stderr)
	f := addIngestFlags(fs)
	user := fs.Bool("user", false, "treat bare names as users instead of subreddits")
	if err := parse(fs, args); err != nil {
		return err
	}
	dbPath, tokens := splitDB(env, "tabs", fs.Args())
	urls := make([]string, 0, len(tokens))
	for _, t := range tokens {
		urls = append(urls, extractors.ExpandRedditURL(t, *user))
	}

	return ingest(ctx, env, f, dbPath, urls, database.ExtractorReddit,
		func(p *extractors.Politeness) []extractors.Extractor {
			extractors.LimitReddit(p)
			return []extractors.Extractor{extractors.NewReddit(env.HTTP, p)}
		}, nil)
}
