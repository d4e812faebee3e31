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

package player

import (
	"context"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/playback"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/player/kodi"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	castPollInterval = time.Second
	// castStartTimeout is how long a device may take to begin playing.
	castStartTimeout = 30 * time.Second
)

// Cast plays items on a Kodi device. With a local player attached the
// local copy decides when the item ends.
type Cast struct {
	kodi  kodi.KodiClient
	local playback.Player
	clock clockwork.Clock
}

type CastOption func(*Cast)

// WithLocal mirrors playback in a local player.
func WithLocal(p playback.Player) CastOption {
	return func(c *Cast) {
		c.local = p
	}
}

func WithCastClock(clock clockwork.Clock) CastOption {
	return func(c *Cast) {
		c.clock = clock
	}
}

func NewCast(client kodi.KodiClient, opts ...CastOption) *Cast {
	c := &Cast{kodi: client, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cast) Play(ctx context.Context, it *playback.Item) error {
	if err := c.kodi.Open(ctx, it.Path, it.StartAt()); err != nil {
		return fmt.Errorf("%w: failed to cast %s: %w", ErrPlayerFailed, it.Path, err)
	}
	log.Info().Str("device", c.kodi.URL()).Str("path", it.Path).Msg("casting")

	if c.local != nil {
		err := c.local.Play(ctx, it)
		c.stop(ctx)
		return err
	}
	return c.wait(ctx, it)
}

// wait polls the device until its players go idle.
func (c *Cast) wait(ctx context.Context, it *playback.Item) error {
	ticker := c.clock.NewTicker(castPollInterval)
	defer ticker.Stop()
	opened := c.clock.Now()
	started := false

	for {
		select {
		case <-ctx.Done():
			c.stop(ctx)
			return fmt.Errorf("cast stopped: %w", ctx.Err())
		case <-ticker.Chan():
		}

		players, err := c.kodi.ActivePlayers(ctx)
		if err != nil {
			return fmt.Errorf("%w: lost cast device: %w", ErrPlayerFailed, err)
		}
		switch {
		case len(players) > 0:
			started = true
		case started:
			return nil
		case c.clock.Since(opened) > castStartTimeout:
			return fmt.Errorf("%w: %s never started on %s", ErrPlaybackError, it.Path, c.kodi.URL())
		}
	}
}

func (c *Cast) stop(ctx context.Context) {
	if err := c.kodi.Stop(context.WithoutCancel(ctx)); err != nil {
		log.Warn().Err(err).Str("device", c.kodi.URL()).Msg("failed to stop cast")
	}
}
