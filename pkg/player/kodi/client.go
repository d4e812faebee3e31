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

// Package kodi is a minimal Kodi JSON-RPC client for casting media.
package kodi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// KodiClient is the cast surface used by the player.
//
//nolint:revive // matches the device name
type KodiClient interface {
	// Open starts playing file, resuming from start seconds when > 0.
	Open(ctx context.Context, file string, start float64) error
	ActivePlayers(ctx context.Context) ([]Player, error)
	// Stop stops every active player.
	Stop(ctx context.Context) error
	URL() string
}

// Client talks to one Kodi instance.
type Client struct {
	http *http.Client
	url  string
}

var _ KodiClient = (*Client)(nil)

// NewClient uses hc for requests, http.DefaultClient when nil.
func NewClient(url string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{url: url, http: hc}
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) Open(ctx context.Context, file string, start float64) error {
	params := PlayerOpenParams{Item: Item{File: file}}
	if start > 0 {
		params.Options = &OpenOptions{Resume: TimeFromSeconds(start)}
	}
	_, err := c.APIRequest(ctx, APIMethodPlayerOpen, params)
	return err
}

func (c *Client) ActivePlayers(ctx context.Context) ([]Player, error) {
	result, err := c.APIRequest(ctx, APIMethodPlayerGetActivePlayers, nil)
	if err != nil {
		return nil, err
	}
	var players []Player
	if err := json.Unmarshal(result, &players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal GetActivePlayers response: %w", err)
	}
	return players, nil
}

func (c *Client) Stop(ctx context.Context) error {
	players, err := c.ActivePlayers(ctx)
	if err != nil {
		return err
	}
	for _, p := range players {
		if _, err := c.APIRequest(ctx, APIMethodPlayerStop, PlayerIDParams{PlayerID: p.ID}); err != nil {
			return err
		}
	}
	return nil
}

// APIRequest makes a raw JSON-RPC request.
func (c *Client) APIRequest(ctx context.Context, method APIMethod, params any) (json.RawMessage, error) {
	reqJSON, err := json.Marshal(APIPayload{
		JSONRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kodi returned status %d", resp.StatusCode)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("error from kodi api: %s", apiResp.Error.Message)
	}
	return apiResp.Result, nil
}
