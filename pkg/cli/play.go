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
	"cmp"
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database/query"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/playback"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/player"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/player/kodi"
	"github.com/rs/zerolog/log"
)

// playOptions are the validated choices of a play action.
type playOptions struct {
	PostAction string `validate:"oneof=keep softdelete delete askkeep askdelete move askmove ask_move_or_delete"`
	Partial    string `validate:"omitempty,oneof=sort skip"`
	KeepDir    string
}

type playFlags struct {
	sel          *selectionFlags
	postAction   string
	keepDir      string
	partial      string
	castTo       string
	opener       string
	timeout      time.Duration
	inOrder      bool
	cast         bool
	castLocal    bool
	ignoreErrors bool
}

func addPlayFlags(fs *flag.FlagSet) *playFlags {
	f := &playFlags{sel: addSelectionFlags(fs)}
	fs.StringVar(&f.postAction, "post-action", "", "what to do after playing (default from config)")
	fs.StringVar(&f.postAction, "k", "", "alias of -post-action")
	fs.StringVar(&f.keepDir, "keep-dir", "", "folder the move actions put files in")
	fs.StringVar(&f.partial, "partial", "", "resume points: sort puts them first, skip plays only them")
	fs.StringVar(&f.partial, "P", "", "alias of -partial")
	fs.BoolVar(&f.inOrder, "in-order", false, "start series at their first episode")
	fs.BoolVar(&f.inOrder, "O", false, "alias of -in-order")
	fs.BoolVar(&f.cast, "cast", false, "play on a Kodi device")
	fs.StringVar(&f.castTo, "cast-to", "", "Kodi JSON-RPC URL (default from config or discovery)")
	fs.BoolVar(&f.castLocal, "cast-with-local", false, "also play locally while casting")
	fs.BoolVar(&f.ignoreErrors, "ignore-errors", false, "keep going when the player fails")
	fs.DurationVar(&f.timeout, "timeout", 0, "stop playing after this long")
	return f
}

func (f *playFlags) options(cfg *config.Instance) (playOptions, error) {
	opts := playOptions{
		PostAction: cmp.Or(strings.ToLower(f.postAction), cfg.PostAction()),
		Partial:    strings.ToLower(f.partial),
		KeepDir:    cmp.Or(f.keepDir, cfg.KeepDir()),
	}
	if err := config.Validate(&opts); err != nil {
		return opts, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return opts, nil
}

func (o *playOptions) queueOptions(inOrder bool) playback.QueueOptions {
	q := playback.QueueOptions{InOrder: inOrder}
	switch o.Partial {
	case "sort":
		q.Partial = playback.PartialSort
	case "skip":
		q.Partial = playback.PartialSkip
	}
	return q
}

func (o *playOptions) moves() bool {
	switch o.PostAction {
	case config.PostActionMove, config.PostActionAskKeep, config.PostActionAskMove, config.PostActionAskMoveOrDelete:
		return true
	}
	return false
}

// kodiClient connects to the configured device, falling back to network
// discovery.
func kodiClient(ctx context.Context, env *Env, url string) (kodi.KodiClient, error) {
	url = cmp.Or(url, env.Cfg.KodiURL())
	if url == "" && env.Cfg.CastDiscovery() {
		found, err := player.DiscoverKodi(ctx)
		if err != nil {
			return nil, err
		}
		url = found
	}
	if url == "" {
		return nil, player.ErrNoCastDevice
	}
	return kodi.NewClient(url, env.HTTP.StandardClient()), nil
}

type playMode struct {
	name   string
	family string
	action query.Action
	audio  bool
	read   bool
}

func runWatch(ctx context.Context, env *Env, args []string) error {
	return runPlay(ctx, env, args, playMode{name: "watch", family: "video", action: query.ActionWatch})
}

func runListen(ctx context.Context, env *Env, args []string) error {
	return runPlay(ctx, env, args, playMode{name: "listen", family: "audio", action: query.ActionListen, audio: true})
}

func runRead(ctx context.Context, env *Env, args []string) error {
	return runPlay(ctx, env, args, playMode{name: "read", family: "fs", action: query.ActionRead, read: true})
}

func runPlay(ctx context.Context, env *Env, args []string, mode playMode) error {
	fs := newFlagSet(mode.name, env.Stderr)
	f := addPlayFlags(fs)
	if mode.read {
		fs.StringVar(&f.opener, "opener", "", "command that opens each file (default: the desktop opener)")
	}
	if err := parse(fs, args); err != nil {
		return err
	}
	opts, err := f.options(env.Cfg)
	if err != nil {
		return err
	}
	dbPath, rest := splitDB(env, mode.family, fs.Args())
	f.sel.spec.Include = append(f.sel.spec.Include, rest...)

	ctx, cancel := timeoutContext(ctx, f.timeout)
	defer cancel()

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	spec := f.sel.build(env, mode.action)
	if opts.moves() {
		spec.KeepDir = cmp.Or(opts.KeepDir, helpers.DefaultKeepDir)
	}

	wl := playback.NewWatchLater(env.Fs, env.Cfg.WatchLaterDir())
	items, err := playback.NewQueue(db, wl).Build(ctx, spec, opts.queueOptions(f.inOrder))
	if err != nil {
		return err
	}

	var p playback.Player
	switch {
	case mode.read:
		p = player.NewOpener(env.Exec, strings.Fields(f.opener))
	case mode.audio:
		p = player.NewMpv(env.Cfg, env.Exec, player.WithNoVideo())
	default:
		p = player.NewMpv(env.Cfg, env.Exec)
	}
	if f.cast {
		client, err := kodiClient(ctx, env, f.castTo)
		if err != nil {
			return err
		}
		var castOpts []player.CastOption
		if f.castLocal || env.Cfg.CastWithLocal() {
			castOpts = append(castOpts, player.WithLocal(p))
		}
		p = player.NewCast(client, castOpts...)
	}

	trasher := helpers.NewTrasher(env.Fs, env.Exec, env.Cfg.TrashCommand())
	actor := playback.NewActor(db, env.Fs, trasher, opts.PostAction, opts.KeepDir,
		playback.WithPrompter(env.Prompt), playback.WithWatchLater(wl))
	session := playback.NewSession(db, p, actor,
		playback.WithClock(env.Clock),
		playback.WithIgnoreErrors(f.ignoreErrors || env.Cfg.IgnoreErrors()),
		playback.WithSessionWatchLater(wl),
	)

	played, err := session.Run(ctx, items)
	for i := range played {
		log.Info().Str("path", played[i].Item.Path).Int64("playhead", played[i].Playhead).
			Bool("done", played[i].Done).Stringer("outcome", played[i].Outcome).Msg("played")
	}
	return err
}

func runCable(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet("cable", env.Stderr)
	sel := addSelectionFlags(fs)
	timeout := fs.Duration("timeout", 0, "stop after this long")
	if err := parse(fs, args); err != nil {
		return err
	}
	dbPath, rest := splitDB(env, "video", fs.Args())
	sel.spec.Include = append(sel.spec.Include, rest...)

	ctx, cancel := timeoutContext(ctx, *timeout)
	defer cancel()

	db, err := openDB(ctx, env, dbPath)
	if err != nil {
		return err
	}
	defer closeDB(db)

	items, err := playback.NewQueue(db, nil).Build(ctx, sel.build(env, query.ActionCable), playback.QueueOptions{})
	if err != nil {
		return err
	}
	cable, err := player.StartCable(ctx, env.Cfg, env.Exec)
	if err != nil {
		return err
	}
	defer func() {
		if err := cable.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing cable player")
		}
	}()

	actor := playback.NewActor(db, env.Fs, nil, config.PostActionKeep, "", playback.WithPrompter(env.Prompt))
	session := playback.NewSession(db, cable, actor, playback.WithClock(env.Clock), playback.WithoutHistory())
	played, err := session.Run(ctx, items)
	log.Info().Int("segments", len(played)).Msg("cable finished")
	return err
}
