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

// Package cli parses the medialib command line and runs one action against
// a catalog.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/mediadb"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/player"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/shared/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Exit codes returned by the medialib binary.
const (
	ExitOK            = 0
	ExitError         = 1
	ExitNoMedia       = 2
	ExitPlaybackError = 3
	ExitPlayerFailed  = 4
	ExitTimeout       = 124
	ExitInterrupted   = 130
	ExitBrokenPipe    = 141
)

var ErrUsage = errors.New("usage error")

// Env is everything an action needs from the outside world.
type Env struct {
	Cfg    *config.Instance
	Fs     afero.Fs
	Exec   command.Executor
	Clock  clockwork.Clock
	HTTP   *httpclient.Client
	Prompt helpers.Prompter
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Width is the terminal width tables are fitted to; 0 leaves them.
	Width int
}

// NewEnv is the environment of a real process.
func NewEnv(cfg *config.Instance) *Env {
	return &Env{
		Cfg:    cfg,
		Fs:     afero.NewOsFs(),
		Exec:   &command.RealExecutor{},
		Clock:  clockwork.NewRealClock(),
		HTTP:   httpclient.NewClient(httpclient.DefaultTimeoutSeconds * time.Second),
		Prompt: helpers.NewStdinPrompter(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

type actionFunc func(ctx context.Context, env *Env, args []string) error

type actionDef struct {
	run   actionFunc
	about string
}

var actions = map[string]actionDef{
	"fsadd":           {run: runFsAdd, about: "scan folders into a catalog"},
	"tubeadd":         {run: runTubeAdd, about: "add online playlists through yt-dlp"},
	"linksadd":        {run: runLinksAdd, about: "add the links of paginated web pages"},
	"redditadd":       {run: runRedditAdd, about: "add subreddit or user listings"},
	"watch":           {run: runWatch, about: "play videos"},
	"listen":          {run: runListen, about: "play audio"},
	"read":            {run: runRead, about: "open text and images"},
	"cable":           {run: runCable, about: "play random slices of videos"},
	"print":           {run: runPrint, about: "print selected media"},
	"search-captions": {run: runSearchCaptions, about: "search subtitle text"},
	"dedupe":          {run: runDedupe, about: "find and remove duplicate media"},
	"stats":           {run: runStats, about: "summarize the catalog"},
	"history":         {run: runHistory, about: "list recent plays"},
	"block":           {run: runBlock, about: "add blocklist entries"},
	"purge":           {run: runPurge, about: "hard-delete old tombstones"},
	"download":        {run: runDownload, about: "download remote media"},
	"optimize":        {run: runOptimize, about: "rebuild search indexes and vacuum"},
}

func usage(w io.Writer) {
	names := make([]string, 0, len(actions))
	for n := range actions {
		names = append(names, n)
	}
	sort.Strings(names)
	_, _ = fmt.Fprintln(w, "Usage: medialib <action> [flags] <db> [args...]")
	_, _ = fmt.Fprintln(w, "\nActions:")
	for _, n := range names {
		_, _ = fmt.Fprintf(w, "  %-16s %s\n", n, actions[n].about)
	}
}

// Run executes the action named by args[0].
func Run(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		usage(env.Stderr)
		return ErrUsage
	}
	name := args[0]
	if name == "-h" || name == "--help" || name == "help" {
		usage(env.Stdout)
		return nil
	}
	def, ok := actions[name]
	if !ok {
		usage(env.Stderr)
		return fmt.Errorf("%w: unknown action %q", ErrUsage, name)
	}
	log.Debug().Str("action", name).Strs("args", args[1:]).Msg("running action")
	return def.run(ctx, env, args[1:])
}

// parse parses the flags of an action. Help is reported as flag.ErrHelp.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err //nolint:wrapcheck // sentinel checked by ExitCode
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return nil
}

// splitDB takes the catalog path off the positional args. A first argument
// that does not look like a catalog file leaves the default for family.
func splitDB(env *Env, family string, args []string) (string, []string) {
	if len(args) > 0 && (strings.HasSuffix(args[0], ".db") || args[0] == ":memory:") {
		return args[0], args[1:]
	}
	return env.Cfg.DefaultDatabasePath(family), args
}

// openDB opens the catalog at path, creating its directory when needed.
func openDB(ctx context.Context, env *Env, path string) (*mediadb.MediaDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	db, err := mediadb.OpenMediaDB(ctx, path,
		mediadb.WithClock(env.Clock),
		mediadb.WithLockRetries(env.Cfg.LockRetries()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	return db, nil
}

func closeDB(db database.CatalogDBI) {
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing catalog")
	}
}

// timeoutContext bounds an action by the --timeout flag; zero is unbounded.
func timeoutContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// ExitCode maps an action error onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return ExitOK
	case errors.Is(err, syscall.EPIPE):
		return ExitBrokenPipe
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.Is(err, database.ErrNoMediaFound):
		return ExitNoMedia
	case errors.Is(err, player.ErrPlaybackError):
		return ExitPlaybackError
	case errors.Is(err, player.ErrPlayerFailed):
		return ExitPlayerFailed
	default:
		return ExitError
	}
}

// Quiet reports errors that need no message beyond their exit code.
func Quiet(err error) bool {
	return slices.ContainsFunc([]error{flag.ErrHelp, syscall.EPIPE, context.Canceled}, func(target error) bool {
		return errors.Is(err, target)
	})
}
