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
	"bufio"
	"context"
	"net"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/playback"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// readLines collects every line written to conn until it closes.
func readLines(conn net.Conn) <-chan []string {
	out := make(chan []string, 1)
	go func() {
		var lines []string
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		_ = conn.Close()
		out <- lines
	}()
	return out
}

func half(n int64) int64 {
	return n / 2
}

func TestCableWindow(t *testing.T) {
	t.Parallel()

	c := NewCable(nil, 10, WithRandom(half))

	start, end := c.window(100)
	assert.Equal(t, int64(45), start)
	assert.Equal(t, int64(55), end)

	start, end = c.window(5)
	assert.Zero(t, start)
	assert.Equal(t, int64(10), end)

	c = NewCable(nil, 10)
	for range 50 {
		start, end = c.window(30)
		assert.GreaterOrEqual(t, start, int64(0))
		assert.LessOrEqual(t, end, int64(30))
	}
}

func TestCablePlaysSegments(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	client, server := net.Pipe()
	lines := readLines(server)
	clock := clockwork.NewFakeClock()
	c := NewCable(NewIPC(client), 10, WithCableClock(clock), WithRandom(half))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.Play(ctx, &playback.Item{Path: `/v/a "b".mkv`, Duration: 100})
	}()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(10 * time.Second)
	require.NoError(t, <-done)

	require.NoError(t, c.Close())
	assert.Equal(t, []string{
		`raw loadfile "/v/a \"b\".mkv" replace "start=45,end=55"`,
		"raw stop",
	}, <-lines)
}

func TestCablePlayCancelled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	client, server := net.Pipe()
	lines := readLines(server)
	c := NewCable(NewIPC(client), 10, WithCableClock(clockwork.NewFakeClock()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Play(ctx, &playback.Item{Path: "/v/a.mkv"})
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, c.Close())
	assert.Len(t, <-lines, 2)
}

func TestStartCable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix sockets")
	}
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	socket := filepath.Join(t.TempDir(), "mpv.sock")
	ln, err := net.Listen("unix", socket)
	require.NoError(t, err)
	defer func() {
		_ = ln.Close()
	}()
	accepted := make(chan (<-chan []string), 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- readLines(conn)
	}()

	proc := mocks.NewFakeProcess(3)
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Spawn", mock.Anything, mock.Anything, "mpv", []string{
		"--idle=yes", "--force-window=yes", "--input-ipc-server=" + socket,
	}).Return(proc, nil).Once()

	cfg := config.NewInMemory(config.Values{Playback: config.Playback{Player: "mpv", IPCSocket: socket}})
	c, err := StartCable(context.Background(), cfg, cmd)
	require.NoError(t, err)

	lines, ok := <-accepted
	require.True(t, ok)
	require.NoError(t, c.Close())
	assert.Equal(t, []string{"raw stop", "raw quit"}, <-lines)
	assert.True(t, proc.Stopped())
	cmd.AssertExpectations(t)
}

func TestQuote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"plain"`, Quote("plain"))
	assert.Equal(t, `"a \"b\" c\\d"`, Quote(`a "b" c\d`))
	assert.Equal(t, `"line\nbreak"`, Quote("line\nbreak"))
}
