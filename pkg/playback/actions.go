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

package playback

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Outcome is what happened to an item after it was played.
type Outcome int

const (
	Kept Outcome = iota
	SoftDeleted
	Deleted
	Moved
)

func (o Outcome) String() string {
	switch o {
	case Kept:
		return "kept"
	case SoftDeleted:
		return "soft-deleted"
	case Deleted:
		return "deleted"
	case Moved:
		return "moved"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// question is the prompt an ask action shows, with the concrete action
// taken on each answer.
type question struct {
	label string
	yes   string
	no    string
	def   bool
}

var questions = map[string]question{
	config.PostActionAskKeep:         {label: "Keep", yes: config.PostActionMove, no: config.PostActionDelete, def: true},
	config.PostActionAskDelete:       {label: "Delete", yes: config.PostActionDelete, no: config.PostActionKeep},
	config.PostActionAskMove:         {label: "Move to keep dir", yes: config.PostActionMove, no: config.PostActionKeep},
	config.PostActionAskMoveOrDelete: {label: "Keep (n deletes)", yes: config.PostActionMove, no: config.PostActionDelete, def: true},
}

// Actor applies the configured post action to played items.
type Actor struct {
	db      database.CatalogDBI
	fs      afero.Fs
	trasher *helpers.Trasher
	prompt  helpers.Prompter
	wl      *WatchLater
	action  string
	keepDir string
}

type ActorOption func(*Actor)

func WithPrompter(p helpers.Prompter) ActorOption {
	return func(a *Actor) {
		a.prompt = p
	}
}

// WithWatchLater clears player state for files that are deleted.
func WithWatchLater(wl *WatchLater) ActorOption {
	return func(a *Actor) {
		a.wl = wl
	}
}

func NewActor(
	db database.CatalogDBI,
	afs afero.Fs,
	trasher *helpers.Trasher,
	action string,
	keepDir string,
	opts ...ActorOption,
) *Actor {
	a := &Actor{
		db:      db,
		fs:      afs,
		trasher: trasher,
		action:  action,
		keepDir: keepDir,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.prompt == nil {
		a.prompt = helpers.NewStdinPrompter()
	}
	return a
}

// Action is the configured post action.
func (a *Actor) Action() string {
	return a.action
}

// resolve turns ask actions into a concrete action by prompting.
func (a *Actor) resolve(it *Item) (string, error) {
	q, ok := questions[a.action]
	if !ok {
		return a.action, nil
	}
	yes, err := a.prompt.Confirm(fmt.Sprintf("%s %s?", q.label, displayName(it)), q.def)
	if err != nil {
		return "", fmt.Errorf("failed to prompt for post action: %w", err)
	}
	if yes {
		return q.yes, nil
	}
	return q.no, nil
}

func displayName(it *Item) string {
	if it.Title != "" && !helpers.IsUnknown(it.Title) {
		return it.Title
	}
	return it.Path
}

// Apply runs the post action for one played item.
func (a *Actor) Apply(ctx context.Context, it *Item) (Outcome, error) {
	action, err := a.resolve(it)
	if err != nil {
		return Kept, err
	}
	remote := database.IsURL(it.Path)

	switch action {
	case config.PostActionKeep, "":
		return Kept, nil
	case config.PostActionSoftDelete:
		return a.softDelete(ctx, it)
	case config.PostActionDelete:
		if !remote {
			if err := a.trasher.Trash(ctx, it.Path); err != nil {
				return Kept, fmt.Errorf("failed to trash %s: %w", it.Path, err)
			}
		}
		if _, err := a.softDelete(ctx, it); err != nil {
			return Kept, err
		}
		if a.wl != nil {
			if err := a.wl.Forget(it.Path); err != nil {
				log.Warn().Err(err).Str("path", it.Path).Msg("failed to clear watch-later state")
			}
		}
		return Deleted, nil
	case config.PostActionMove:
		if remote {
			log.Info().Str("path", it.Path).Msg("not moving remote item")
			return Kept, nil
		}
		return a.move(ctx, it)
	default:
		return Kept, fmt.Errorf("unknown post action: %s", action)
	}
}

func (a *Actor) softDelete(ctx context.Context, it *Item) (Outcome, error) {
	if _, err := a.db.SoftDeleteMedia(ctx, []string{it.Path}); err != nil {
		return Kept, fmt.Errorf("failed to soft-delete %s: %w", it.Path, err)
	}
	return SoftDeleted, nil
}

func (a *Actor) move(ctx context.Context, it *Item) (Outcome, error) {
	dst := helpers.KeepPath(it.Path, a.keepDir)
	if dst == it.Path {
		return Kept, nil
	}
	if err := helpers.MoveFile(a.fs, it.Path, dst); err != nil {
		return Kept, err
	}
	if err := a.db.MoveMedia(ctx, it.Path, dst); err != nil {
		return Moved, fmt.Errorf("moved %s but failed to update catalog: %w", it.Path, err)
	}
	log.Info().Str("from", it.Path).Str("to", dst).Msg("moved to keep dir")
	it.Path = dst
	return Moved, nil
}
