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
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog/log"
)

const (
	// KodiService is the DNS-SD type Kodi advertises its HTTP JSON-RPC on.
	KodiService     = "_xbmc-jsonrpc-h._tcp"
	DiscoverTimeout = 3 * time.Second
)

// DiscoverKodi browses the local network and returns the JSON-RPC URL of
// the first Kodi instance that answers.
func DiscoverKodi(ctx context.Context) (string, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	bctx, cancel := context.WithTimeout(ctx, DiscoverTimeout)
	defer cancel()
	entries := make(chan *zeroconf.ServiceEntry, 8)
	if err := resolver.Browse(bctx, KodiService, "local.", entries); err != nil {
		return "", fmt.Errorf("failed to browse for %s: %w", KodiService, err)
	}

	for {
		select {
		case <-bctx.Done():
			return "", ErrNoCastDevice
		case e, ok := <-entries:
			if !ok {
				return "", ErrNoCastDevice
			}
			if u := entryURL(e); u != "" {
				log.Info().Str("instance", e.Instance).Str("url", u).Msg("found kodi")
				return u, nil
			}
		}
	}
}

func entryURL(e *zeroconf.ServiceEntry) string {
	if e == nil || e.Port == 0 {
		return ""
	}
	var host string
	switch {
	case len(e.AddrIPv4) > 0:
		host = e.AddrIPv4[0].String()
	case len(e.AddrIPv6) > 0:
		host = e.AddrIPv6[0].String()
	default:
		host = strings.TrimSuffix(e.HostName, ".")
	}
	if host == "" {
		return ""
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(e.Port)) + "/jsonrpc"
}
