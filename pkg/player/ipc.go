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
	"io"
	"net"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/syncutil"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// dialTimeout bounds the wait for a freshly started player to open its
// socket.
const dialTimeout = 10 * time.Second

// IPC sends text commands to a running player. Commands are fire and
// forget; replies are drained and discarded.
type IPC struct {
	conn net.Conn
	mu   syncutil.Mutex
}

func NewIPC(conn net.Conn) *IPC {
	c := &IPC{conn: conn}
	go func() {
		if _, err := io.Copy(io.Discard, conn); err != nil {
			log.Trace().Err(err).Msg("player socket closed")
		}
	}()
	return c
}

// DialIPC connects to the player socket at path, retrying until the player
// has created it.
func DialIPC(ctx context.Context, path string) (*IPC, error) {
	conn, err := backoff.Retry(ctx, func() (net.Conn, error) {
		return dialSocket(ctx, path)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(dialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to player socket %s: %w", ErrPlayerFailed, path, err)
	}
	return NewIPC(conn), nil
}

// Send writes one "raw" command line.
func (c *IPC) Send(args ...string) error {
	line := "raw " + strings.Join(args, " ") + "\n"
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.conn, line); err != nil {
		return fmt.Errorf("failed to send player command: %w", err)
	}
	return nil
}

func (c *IPC) Close() error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close player socket: %w", err)
	}
	return nil
}

// Quote makes s a single argument for the player's command parser.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
