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

// Package command wraps os/exec behind an interface so probes, players and
// extractors can be tested without spawning real binaries.
package command

import (
	"context"
	"errors"
	"io"
	"os/exec"
)

// StartOptions configures a spawned process.
type StartOptions struct {
	Stdout io.Writer
	Stderr io.Writer
	// HideWindow prevents a console window from appearing (Windows-only).
	HideWindow bool
}

// Process is a running child started by Spawn.
type Process interface {
	// Wait blocks until the process exits.
	Wait() error
	// Stop asks the process to exit, killing it where signals are unsupported.
	Stop() error
	Pid() int
}

type Executor interface {
	// Run executes a command and waits for it to complete.
	Run(ctx context.Context, name string, args ...string) error

	// Output runs a command and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Spawn starts a command without waiting for it.
	Spawn(ctx context.Context, opts StartOptions, name string, args ...string) (Process, error)
}

// RealExecutor runs actual system commands.
type RealExecutor struct{}

var _ Executor = (*RealExecutor)(nil)

//nolint:wrapcheck // exec errors carry the exit status callers inspect
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

//nolint:wrapcheck // exec errors carry the exit status callers inspect
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

//nolint:wrapcheck // exec errors carry the exit status callers inspect
func (*RealExecutor) Spawn(
	ctx context.Context,
	opts StartOptions,
	name string,
	args ...string,
) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	applyStartOptions(cmd, opts)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &process{cmd: cmd}, nil
}

type process struct {
	cmd *exec.Cmd
}

//nolint:wrapcheck // exec errors carry the exit status callers inspect
func (p *process) Wait() error {
	return p.cmd.Wait()
}

func (p *process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// ExitCode extracts the exit status of a finished command, -1 when err is
// not an exit error and 0 when err is nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// IsNotFound reports whether err means the binary is not installed.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
