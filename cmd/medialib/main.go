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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zaparoo-medialib/pkg/cli"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/config"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-medialib/pkg/printer"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	verbose := flag.Bool("v", false, "log debug output to stderr")
	flag.BoolVar(verbose, "verbose", false, "log debug output to stderr")
	version := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		_ = cli.Run(context.Background(), &cli.Env{Stdout: os.Stderr, Stderr: os.Stderr}, []string{"help"})
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		_, _ = fmt.Printf("medialib v%s\n", config.AppVersion)
		return cli.ExitOK
	}

	var writers []io.Writer
	if *verbose {
		writers = append(writers, helpers.ConsoleWriter())
	}
	cfg, err := cli.Setup(config.BaseDefaults, *verbose, writers...)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return cli.ExitError
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	// writes to a closed pipe return EPIPE instead of killing the process
	signal.Ignore(syscall.SIGPIPE)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := cli.NewEnv(cfg)
	env.Width = printer.TerminalWidth(os.Stdout)

	err = cli.Run(ctx, env, flag.Args())
	code := cli.ExitCode(err)
	if err != nil && !cli.Quiet(err) {
		log.Error().Err(err).Int("exit", code).Msg("action failed")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	return code
}
