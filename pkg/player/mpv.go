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
	"os"
	"strconv"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/playback"
	"github.com/rs/zerolog/log"
)

// Mpv plays each item in a fresh player process.
type Mpv struct {
	exec       command.Executor
	speed      func(hasSubtitles bool) float64
	binary     string
	watchLater string
	socket     string
	extra      []string
	fullscreen bool
	noVideo    bool
}

type MpvOption func(*Mpv)

// WithNoVideo plays audio only.
func WithNoVideo() MpvOption {
	return func(m *Mpv) {
		m.noVideo = true
	}
}

// WithSocket exposes the player's IPC socket at path.
func WithSocket(path string) MpvOption {
	return func(m *Mpv) {
		m.socket = path
	}
}

func NewMpv(cfg *config.Instance, exec command.Executor, opts ...MpvOption) *Mpv {
	m := &Mpv{
		exec:       exec,
		speed:      cfg.PlaybackSpeed,
		binary:     cfg.Player(),
		watchLater: cfg.WatchLaterDir(),
		socket:     cfg.IPCSocket(),
		extra:      cfg.PlayerArgs(),
		fullscreen: cfg.Fullscreen(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Args is the command line for playing it.
func (m *Mpv) Args(it *playback.Item) []string {
	args := []string{
		"--save-position-on-quit",
		"--watch-later-directory=" + m.watchLater,
		"--speed=" + strconv.FormatFloat(m.speed(it.HasSubtitles), 'f', -1, 64),
	}
	if start := it.StartAt(); start > 0 {
		args = append(args, "--start="+strconv.FormatFloat(start, 'f', -1, 64))
	}
	if m.noVideo {
		args = append(args, "--video=no")
	} else if m.fullscreen {
		args = append(args, "--fs")
	}
	if m.socket != "" {
		args = append(args, "--input-ipc-server="+m.socket)
	}
	args = append(args, m.extra...)
	return append(args, "--", it.Path)
}

// Play runs the player until it exits. Cancelling ctx asks the player to
// quit so it can save its position, then waits for it.
func (m *Mpv) Play(ctx context.Context, it *playback.Item) error {
	args := m.Args(it)
	log.Debug().Str("player", m.binary).Strs("args", args).Msg("starting player")

	proc, err := m.exec.Spawn(context.WithoutCancel(ctx), command.StartOptions{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, m.binary, args...)
	if err != nil {
		if command.IsNotFound(err) {
			return fmt.Errorf("%w: %s is not installed", ErrPlayerFailed, m.binary)
		}
		return fmt.Errorf("%w: failed to start %s: %w", ErrPlayerFailed, m.binary, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- proc.Wait()
	}()

	select {
	case err := <-done:
		return exitError(it.Path, err)
	case <-ctx.Done():
		if stopErr := proc.Stop(); stopErr != nil {
			log.Warn().Err(stopErr).Int("pid", proc.Pid()).Msg("failed to stop player")
		}
		<-done
		return fmt.Errorf("playback stopped: %w", ctx.Err())
	}
}
