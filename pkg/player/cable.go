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
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/playback"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Cable feeds random segments of each item to one idle player, like
// flicking through channels.
type Cable struct {
	ipc     *IPC
	proc    command.Process
	clock   clockwork.Clock
	rnd     func(n int64) int64
	segment int64
}

type CableOption func(*Cable)

func WithCableClock(clock clockwork.Clock) CableOption {
	return func(c *Cable) {
		c.clock = clock
	}
}

// WithRandom replaces the segment start picker, which returns [0, n).
func WithRandom(rnd func(n int64) int64) CableOption {
	return func(c *Cable) {
		c.rnd = rnd
	}
}

// NewCable drives an already running player through ipc.
func NewCable(ipc *IPC, segmentSeconds int, opts ...CableOption) *Cable {
	c := &Cable{
		ipc:     ipc,
		clock:   clockwork.NewRealClock(),
		rnd:     rand.Int64N,
		segment: int64(segmentSeconds),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartCable launches an idle player with an IPC socket and connects to it.
func StartCable(ctx context.Context, cfg *config.Instance, exec command.Executor, opts ...CableOption) (*Cable, error) {
	socket := cfg.IPCSocket()
	if socket == "" {
		socket = DefaultSocket()
	}
	args := []string{"--idle=yes", "--force-window=yes", "--input-ipc-server=" + socket}
	if cfg.Fullscreen() {
		args = append(args, "--fs")
	}
	args = append(args, cfg.PlayerArgs()...)

	proc, err := exec.Spawn(context.WithoutCancel(ctx), command.StartOptions{}, cfg.Player(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %w", ErrPlayerFailed, cfg.Player(), err)
	}
	ipc, err := DialIPC(ctx, socket)
	if err != nil {
		_ = proc.Stop()
		return nil, err
	}
	c := NewCable(ipc, cfg.CableSegmentSeconds(), opts...)
	c.proc = proc
	return c, nil
}

// window picks where the segment for an item starts and ends.
func (c *Cable) window(duration int64) (start, end int64) {
	span := duration - c.segment
	if span > 0 {
		start = c.rnd(span + 1)
	}
	return start, start + c.segment
}

// Play loads a segment of it and holds it for the segment length.
func (c *Cable) Play(ctx context.Context, it *playback.Item) error {
	start, end := c.window(it.Duration)
	opts := "start=" + strconv.FormatInt(start, 10) + ",end=" + strconv.FormatInt(end, 10)
	if err := c.ipc.Send("loadfile", Quote(it.Path), "replace", Quote(opts)); err != nil {
		return fmt.Errorf("%w: %w", ErrPlayerFailed, err)
	}
	log.Debug().Str("path", it.Path).Int64("start", start).Msg("cable segment")

	select {
	case <-ctx.Done():
		return fmt.Errorf("cable stopped: %w", ctx.Err())
	case <-c.clock.After(time.Duration(c.segment) * time.Second):
		return nil
	}
}

// Close stops playback, closes the socket and ends the player if this
// process started it.
func (c *Cable) Close() error {
	var errs []error
	if err := c.ipc.Send("stop"); err != nil {
		errs = append(errs, err)
	}
	if c.proc != nil {
		if err := c.ipc.Send("quit"); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.ipc.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.proc != nil {
		// quit usually got there first
		if err := c.proc.Stop(); err != nil {
			log.Debug().Err(err).Msg("cable player already stopped")
		}
		if err := c.proc.Wait(); err != nil {
			log.Debug().Err(err).Msg("cable player exited")
		}
	}
	return errors.Join(errs...)
}
