// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshow/main.go
// Summary: texelshow command: compile, play, edit and preview presentations.
// Usage: texelshow <compile|play|edit|serve|config> [flags] args...

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `Usage: texelshow <command> [flags] args...

Commands:
  compile <source> <output>   Compile a .json/.yaml source to a .json or .tsp presentation
  play <file>                 Play a compiled presentation or a source file
  edit <source> <op> [args]   Apply a structural edit to a source file ("edit <source> help")
  serve <file>                Serve an HTTP preview, recompiling sources on change
  config                      Print the configuration path and contents
`

var errUsage = errors.New("invalid arguments")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "compile":
		return runCompile(ctx, rest, stderr)
	case "play":
		return runPlay(ctx, rest, stderr)
	case "edit":
		return runEdit(rest, stdout, stderr)
	case "serve":
		return runServe(ctx, rest, stderr)
	case "config":
		return runConfig(stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprint(stderr, usage)
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// parseArgs parses fs allowing flags before, between and after positional
// arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
