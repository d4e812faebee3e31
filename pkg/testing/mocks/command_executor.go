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

	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers/command"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
//
//	mockCmd := &MockCommandExecutor{}
//	mockCmd.On("Output", mock.Anything, "ffprobe", mock.Anything).Return(probeJSON, nil)
type MockCommandExecutor struct {
	mock.Mock
}

var _ command.Executor = (*MockCommandExecutor)(nil)

func (m *MockCommandExecutor) Run(ctx context.Context, name string, args ...string) error {
	called := m.Called(ctx, name, args)
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return called.Error(0)
}

func (m *MockCommandExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(ctx, name, args)
	var out []byte
	if v := called.Get(0); v != nil {
		out = v.([]byte) //nolint:forcetypeassert // test mock
	}
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return out, called.Error(1)
}

func (m *MockCommandExecutor) Spawn(
	ctx context.Context,
	opts command.StartOptions,
	name string,
	args ...string,
) (command.Process, error) {
	called := m.Called(ctx, opts, name, args)
	var proc command.Process
	if v := called.Get(0); v != nil {
		proc = v.(command.Process) //nolint:forcetypeassert // test mock
	}
	//nolint:wrapcheck // mock returns are wrapped by the caller
	return proc, called.Error(1)
}

// FakeProcess is a command.Process whose Wait blocks until Exit or Stop.
type FakeProcess struct {
	done    chan struct{}
	err     error
	PID     int
	stopped bool
}

func NewFakeProcess(pid int) *FakeProcess {
	return &FakeProcess{PID: pid, done: make(chan struct{})}
}

// Exit releases Wait with err. Calling it twice is a no-op.
func (p *FakeProcess) Exit(err error) {
	select {
	case <-p.done:
	default:
		p.err = err
		close(p.done)
	}
}

func (p *FakeProcess) Wait() error {
	<-p.done
	return p.err
}

func (p *FakeProcess) Stop() error {
	p.stopped = true
	p.Exit(nil)
	return nil
}

func (p *FakeProcess) Stopped() bool {
	return p.stopped
}

func (p *FakeProcess) Pid() int {
	return p.PID
}
