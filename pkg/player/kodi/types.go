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

package kodi

import "encoding/json"

// Player is an active Kodi player.
type Player struct {
	Type string `json:"type"`
	ID   int    `json:"playerid"`
}

// APIMethod is a Kodi JSON-RPC method name.
type APIMethod string

const (
	APIMethodPlayerOpen             APIMethod = "Player.Open"
	APIMethodPlayerGetActivePlayers APIMethod = "Player.GetActivePlayers"
	APIMethodPlayerStop             APIMethod = "Player.Stop"
)

type APIPayload struct {
	Params  any       `json:"params,omitempty"`
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  APIMethod `json:"method"`
}

type APIError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type APIResponse struct {
	Error   *APIError       `json:"error,omitempty"`
	ID      string          `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
}

// Item is something Kodi can open.
type Item struct {
	File string `json:"file"`
}

// Time is Kodi's split duration.
type Time struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	Milliseconds int `json:"milliseconds"`
}

// TimeFromSeconds splits secs into a Kodi time.
func TimeFromSeconds(secs float64) Time {
	ms := int(secs * 1000)
	return Time{
		Hours:        ms / 3_600_000,
		Minutes:      ms / 60_000 % 60,
		Seconds:      ms / 1000 % 60,
		Milliseconds: ms % 1000,
	}
}

type OpenOptions struct {
	Resume any `json:"resume,omitempty"`
}

type PlayerOpenParams struct {
	Options *OpenOptions `json:"options,omitempty"`
	Item    Item         `json:"item"`
}

type PlayerIDParams struct {
	PlayerID int `json:"playerid"`
}
