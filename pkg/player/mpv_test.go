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
	"os/exec"
	"runtime"
	"testing"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/playback"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testMpv(exec command.Executor, vals config.Playback, opts ...MpvOption) *Mpv {
	vals.Player = "mpv"
	vals.WatchLaterDir = "/state/wl"
	return NewMpv(config.NewInMemory(config.Values{Playback: vals}), exec, opts...)
}

func TestMpvArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vals config.Playback
		opts []MpvOption
		item playback.Item
		want []string
	}{
		{
			name: "subtitles play at normal speed",
			item: playback.Item{Path: "/v/a.mkv", HasSubtitles: true},
			want: []string{
				"--save-position-on-quit", "--watch-later-directory=/state/wl", "--speed=1",
				"--", "/v/a.mkv",
			},
		},
		{
			name: "resume without subtitles",
			item: playback.Item{Path: "/v/a.mkv", Playhead: 42},
			want: []string{
				"--save-position-on-quit", "--watch-later-directory=/state/wl", "--speed=1.46",
				"--start=42", "--", "/v/a.mkv",
			},
		},
		{
			name: "audio only ignores fullscreen",
			vals: config.Playback{Fullscreen: true, PlayerArgs: []string{"--volume=50"}},
			opts: []MpvOption{WithNoVideo(), WithSocket("/tmp/mpv.sock")},
			item: playback.Item{Path: "/m/song.opus", Start: 1.5, HasSubtitles: true},
			want: []string{
				"--save-position-on-quit", "--watch-later-directory=/state/wl", "--speed=1",
				"--start=1.5", "--video=no", "--input-ipc-server=/tmp/mpv.sock", "--volume=50",
				"--", "/m/song.opus",
			},
		},
		{
			name: "fullscreen",
			vals: config.Playback{Fullscreen: true},
			item: playback.Item{Path: "-weird.mkv", HasSubtitles: true},
			want: []string{
				"--save-position-on-quit", "--watch-later-directory=/state/wl", "--speed=1",
				"--fs", "--", "-weird.mkv",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := testMpv(nil, tt.vals, tt.opts...)
			assert.Equal(t, tt.want, m.Args(&tt.item))
		})
	}
}

func TestMpvPlay(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	proc := mocks.NewFakeProcess(7)
	proc.Exit(nil)
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Spawn", mock.Anything, mock.Anything, "mpv", mock.MatchedBy(func(args []string) bool {
		return len(args) > 0 && args[len(args)-1] == "/v/a.mkv"
	})).Return(proc, nil).Once()

	err := testMpv(cmd, config.Playback{}).Play(context.Background(), &playback.Item{Path: "/v/a.mkv"})
	require.NoError(t, err)
	cmd.AssertExpectations(t)
}

func TestMpvPlayFailures(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	proc := mocks.NewFakeProcess(7)
	proc.Exit(errors.New("signal: killed"))
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Spawn", mock.Anything, mock.Anything, "mpv", mock.Anything).Return(proc, nil).Once()
	cmd.On("Spawn", mock.Anything, mock.Anything, "mpv", mock.Anything).Return(nil, exec.ErrNotFound).Once()

	m := testMpv(cmd, config.Playback{})
	err := m.Play(context.Background(), &playback.Item{Path: "/v/a.mkv"})
	require.ErrorIs(t, err, ErrPlayerFailed)

	err = m.Play(context.Background(), &playback.Item{Path: "/v/a.mkv"})
	require.ErrorIs(t, err, ErrPlayerFailed)
	assert.Contains(t, err.Error(), "not installed")
}

func TestMpvPlayCancelStopsPlayer(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	proc := mocks.NewFakeProcess(7)
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Spawn", mock.Anything, mock.Anything, "mpv", mock.Anything).Return(proc, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := testMpv(cmd, config.Playback{}).Play(ctx, &playback.Item{Path: "/v/a.mkv"})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, proc.Stopped())
}

func TestExitError(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}

	var real command.RealExecutor
	ctx := context.Background()

	err := exitError("/v/a.mkv", real.Run(ctx, "sh", "-c", "exit 2"))
	require.ErrorIs(t, err, ErrPlaybackError)

	err = exitError("/v/a.mkv", real.Run(ctx, "sh", "-c", "exit 3"))
	require.ErrorIs(t, err, ErrPlaybackError)

	err = exitError("/v/a.mkv", real.Run(ctx, "sh", "-c", "exit 1"))
	require.ErrorIs(t, err, ErrPlayerFailed)

	assert.NoError(t, exitError("/v/a.mkv", nil))
}
