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

package extractors

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// requests a site gets before every further request is delayed
	freeRequests  = 5
	freePlaylists = 5
)

var (
	requestJitter  = [2]time.Duration{300 * time.Millisecond, 4550 * time.Millisecond}
	playlistJitter = [2]time.Duration{50 * time.Millisecond, 2 * time.Second}
)

// Politeness spaces out requests per site. After the fifth request to a
// host each further request waits a random delay, and after five playlists
// each playlist start waits a shorter one. Hosts with a registered limit
// are also held to that rate.
type Politeness struct {
	clock     clockwork.Clock
	jitter    func(lo, hi time.Duration) time.Duration
	requests  map[string]int
	limiters  map[string]*rate.Limiter
	mu        syncutil.Mutex
	playlists int
	enabled   bool
}

func NewPoliteness(clock clockwork.Clock, enabled bool) *Politeness {
	return &Politeness{
		clock:    clock,
		enabled:  enabled,
		jitter:   randomBetween,
		requests: make(map[string]int),
		limiters: make(map[string]*rate.Limiter),
	}
}

func randomBetween(lo, hi time.Duration) time.Duration {
	return lo + rand.N(hi-lo) //nolint:gosec // politeness jitter
}

// SetLimit holds host to one request per every, with the given burst.
func (p *Politeness) SetLimit(host string, every time.Duration, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limiters[host] = rate.NewLimiter(rate.Every(every), burst)
}

// BeforeRequest blocks until a request to rawURL may be sent.
func (p *Politeness) BeforeRequest(ctx context.Context, rawURL string) error {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Hostname()
	}

	p.mu.Lock()
	p.requests[host]++
	n := p.requests[host]
	var wait time.Duration
	if lim, ok := p.limiters[host]; ok {
		now := p.clock.Now()
		wait = lim.ReserveN(now, 1).DelayFrom(now)
	}
	if p.enabled && n > freeRequests {
		wait = max(wait, p.jitter(requestJitter[0], requestJitter[1]))
	}
	p.mu.Unlock()

	if wait > 0 {
		log.Trace().Str("host", host).Int("request", n).Dur("wait", wait).Msg("politeness delay")
	}
	return p.sleep(ctx, wait)
}

// BeforePlaylist blocks before starting the next playlist.
func (p *Politeness) BeforePlaylist(ctx context.Context) error {
	p.mu.Lock()
	p.playlists++
	var wait time.Duration
	if p.enabled && p.playlists > freePlaylists {
		wait = p.jitter(playlistJitter[0], playlistJitter[1])
	}
	p.mu.Unlock()
	return p.sleep(ctx, wait)
}

func (p *Politeness) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := p.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("politeness wait cancelled: %w", ctx.Err())
	}
}
