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

package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/player/kodi"
)

// MockKodiServer is a fake Kodi JSON-RPC endpoint. Player.Open starts a
// video player that stays active until Finish or Player.Stop.
type MockKodiServer struct {
	*httptest.Server
	opened  []string
	methods []kodi.APIMethod
	players []kodi.Player
	mu      syncutil.Mutex
}

func NewMockKodiServer(t *testing.T) *MockKodiServer {
	t.Helper()
	m := &MockKodiServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/jsonrpc", m.handleJSONRPC)
	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Close)
	return m
}

// URL is the JSON-RPC endpoint.
func (m *MockKodiServer) URL() string {
	return m.Server.URL + "/jsonrpc"
}

// Finish ends playback as if the item ran to completion.
func (m *MockKodiServer) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = nil
}

// Opened lists the files passed to Player.Open.
func (m *MockKodiServer) Opened() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

// Methods lists every method called, in order.
func (m *MockKodiServer) Methods() []kodi.APIMethod {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kodi.APIMethod(nil), m.methods...)
}

func (m *MockKodiServer) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Params json.RawMessage `json:"params"`
		ID     string          `json:"id"`
		Method kodi.APIMethod  `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	resp := kodi.APIResponse{ID: payload.ID, JSONRPC: "2.0"}
	m.mu.Lock()
	m.methods = append(m.methods, payload.Method)
	switch payload.Method {
	case kodi.APIMethodPlayerOpen:
		var params kodi.PlayerOpenParams
		if err := json.Unmarshal(payload.Params, &params); err != nil || params.Item.File == "" {
			resp.Error = &kodi.APIError{Code: -32602, Message: "Invalid params."}
			break
		}
		m.opened = append(m.opened, params.Item.File)
		m.players = []kodi.Player{{Type: "video", ID: 1}}
		resp.Result = json.RawMessage(`"OK"`)
	case kodi.APIMethodPlayerGetActivePlayers:
		result, _ := json.Marshal(append([]kodi.Player{}, m.players...))
		resp.Result = result
	case kodi.APIMethodPlayerStop:
		m.players = nil
		resp.Result = json.RawMessage(`"OK"`)
	default:
		resp.Error = &kodi.APIError{Code: -32601, Message: "Method not found."}
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
