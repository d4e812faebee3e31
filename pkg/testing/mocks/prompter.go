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
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/stretchr/testify/mock"
)

// MockPrompter is a testify mock for helpers.Prompter.
type MockPrompter struct {
	mock.Mock
}

var _ helpers.Prompter = (*MockPrompter)(nil)

func (m *MockPrompter) Confirm(label string, def bool) (bool, error) {
	called := m.Called(label, def)
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return called.Bool(0), called.Error(1)
}
