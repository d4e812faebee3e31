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
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Player plays one item and returns when playback ends. Cancelling ctx
// stops the player.
type Player interface {
	Play(ctx context.Context, it *Item) error
}

// Session plays a queue item by item, recording play state and applying
// the post action after each one.
type Session struct {
	db           database.CatalogDBI
	player       Player
	actor        *Actor
	wl           *WatchLater
	clock        clockwork.Clock
	ignoreErrors bool
	record       bool
}

type SessionOption func(*Session)

func WithClock(clock clockwork.Clock) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithIgnoreErrors keeps going when the player fails on an item.
func WithIgnoreErrors(ignore bool) SessionOption {
	return func(s *Session) {
		s.ignoreErrors = ignore
	}
}

// WithoutHistory plays without touching playheads or history, for
// channel-surfing modes.
func WithoutHistory() SessionOption {
	return func(s *Session) {
		s.record = false
	}
}

func WithSessionWatchLater(wl *WatchLater) SessionOption {
	return func(s *Session) {
		s.wl = wl
	}
}

func NewSession(db database.CatalogDBI, player Player, actor *Actor, opts ...SessionOption) *Session {
	s := &Session{
		db:     db,
		player: player,
		actor:  actor,
		clock:  clockwork.NewRealClock(),
		record: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Played is the result of one item of a session.
type Played struct {
	Item     Item
	Outcome  Outcome
	Playhead int64
	Done     bool
}

// Run plays items in order. On cancellation the current item's playhead
// is written before returning the context error.
func (s *Session) Run(ctx context.Context, items []Item) ([]Played, error) {
	results := make([]Played, 0, len(items))
	for i := range items {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("playback interrupted: %w", err)
		}
		it := items[i]

		started := s.clock.Now()
		playErr := s.player.Play(ctx, &it)
		elapsed := int64(s.clock.Since(started) / time.Second)

		if ctx.Err() != nil {
			if s.record {
				// a stopped play never counts as done
				playhead, _ := ComputePlayhead(s.existing(&it), elapsed, it.Duration)
				if err := s.db.RecordPlayback(context.WithoutCancel(ctx), database.PlaybackResult{
					MediaID:  it.ID,
					Playhead: playhead,
				}); err != nil {
					log.Error().Err(err).Str("path", it.Path).Msg("failed to save playhead")
				}
			}
			return results, fmt.Errorf("playback interrupted: %w", ctx.Err())
		}

		if playErr != nil {
			if !s.ignoreErrors {
				return results, playErr
			}
			log.Warn().Err(playErr).Str("path", it.Path).Msg("player failed, continuing")
			continue
		}

		played, err := s.finish(ctx, &it, elapsed)
		if err != nil {
			return results, err
		}
		results = append(results, played)
	}
	return results, nil
}

func (s *Session) existing(it *Item) int64 {
	return max(it.Playhead, int64(it.Start))
}

func (s *Session) finish(ctx context.Context, it *Item, elapsed int64) (Played, error) {
	played := Played{Item: *it}
	if s.record {
		played.Playhead, played.Done = ComputePlayhead(s.existing(it), elapsed, it.Duration)
		err := s.db.RecordPlayback(ctx, database.PlaybackResult{
			MediaID:  it.ID,
			Playhead: played.Playhead,
			Done:     played.Done,
		})
		if err != nil && !errors.Is(err, database.ErrNoMediaFound) {
			return played, fmt.Errorf("failed to record playback: %w", err)
		} else if err != nil {
			log.Warn().Err(err).Str("path", it.Path).Msg("played item is not in the catalog")
		}
		if played.Done && s.wl != nil {
			if err := s.wl.Forget(it.Path); err != nil {
				log.Warn().Err(err).Str("path", it.Path).Msg("failed to clear watch-later state")
			}
		}
	}

	if s.actor == nil {
		return played, nil
	}
	outcome, err := s.actor.Apply(ctx, it)
	played.Outcome = outcome
	played.Item = *it
	if err != nil {
		return played, err
	}
	log.Debug().Str("path", it.Path).Stringer("outcome", outcome).
		Int64("playhead", played.Playhead).Bool("done", played.Done).Msg("finished item")
	return played, nil
}
