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

package mocks

import (
	"context"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/database"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/probe"
	"github.com/stretchr/testify/mock"
)

// ProbeFunc can be passed to Return in place of a record to compute one
// per call.
type ProbeFunc func(ctx context.Context, path string, profile probe.Profile) (database.Media, error)

// MockProber is a testify mock for the scanner's prober.
type MockProber struct {
	mock.Mock
}

func (m *MockProber) Probe(ctx context.Context, path string, profile probe.Profile) (database.Media, error) {
	called := m.Called(ctx, path, profile)
	if fn, ok := called.Get(0).(ProbeFunc); ok {
		return fn(ctx, path, profile)
	}
	media, _ := called.Get(0).(database.Media)
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return media, called.Error(1)
}
