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

package mediascanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestDebouncerWaitsForQuiet(t *testing.T) {
	t.Parallel()

	fired := make(chan string, 4)
	clock := clockwork.NewFakeClock()
	d := newDebouncer(clock, 2*time.Second, func(root string) { fired <- root })

	d.touch("/a")
	clock.Advance(time.Second)
	d.touch("/a")
	clock.Advance(1500 * time.Millisecond)

	select {
	case root := <-fired:
		t.Fatalf("fired before quiet period: %s", root)
	case <-time.After(50 * time.Millisecond):
	}

	clock.Advance(time.Second)
	select {
	case root := <-fired:
		assert.Equal(t, "/a", root)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never fired")
	}
}

func TestDebouncerStop(t *testing.T) {
	t.Parallel()

	fired := make(chan string, 1)
	clock := clockwork.NewFakeClock()
	d := newDebouncer(clock, time.Second, func(root string) { fired <- root })

	d.touch("/a")
	d.stop()
	clock.Advance(2 * time.Second)

	select {
	case root := <-fired:
		t.Fatalf("stopped debouncer fired: %s", root)
	case <-time.After(50 * time.Millisecond):
	}
}

//nolint:paralleltest // uses real inotify watches
func TestWatchRescansAfterChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "show"), 0o750))

	rescanned := make(chan string, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, clockwork.NewRealClock(), []string{root}, 50*time.Millisecond,
			func(_ context.Context, r string) error {
				rescanned <- r
				return nil
			})
	}()

	// keep touching until the watcher is up and a rescan lands
	i := 0
	require.Eventually(t, func() bool {
		i++
		name := filepath.Join(root, "show", fmt.Sprintf("e%d.mkv", i))
		if err := os.WriteFile(name, []byte("x"), 0o600); err != nil {
			return false
		}
		select {
		case r := <-rescanned:
			return r == root
		default:
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchMissingRoot(t *testing.T) {
	t.Parallel()

	err := Watch(context.Background(), clockwork.NewRealClock(),
		[]string{filepath.Join(t.TempDir(), "missing")}, time.Second,
		func(context.Context, string) error { return nil })
	require.Error(t, err)
}
