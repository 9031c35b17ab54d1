// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// ion is the interactive-shell-core reference binary built on top of
// internal/shellenv: an interactive REPL backed by
// github.com/chzyer/readline, a -c one-liner mode, and a script-file
// mode, following the invocation shape of the teacher's own cmd/gosh.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/redox-os/ion-sub002/internal/history"
	"github.com/redox-os/ion-sub002/internal/scope"
	"github.com/redox-os/ion-sub002/internal/shellenv"
	"github.com/redox-os/ion-sub002/internal/value"
)

const version = "ion-sub002 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

// cliArgs is the parsed result of the teacher's own hand-rolled
// flag loop style (cmd/shfmt/main.go), not a third-party flag package
// (SPEC_FULL.md ambient-stack CLI section).
type cliArgs struct {
	command    string
	noExecute  bool
	printHelp  bool
	printVer   bool
	scriptPath string
	scriptArgs []string
}

func parseArgs(argv []string) (cliArgs, error) {
	var a cliArgs
	i := 0
	for ; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-c":
			if i+1 >= len(argv) {
				return a, fmt.Errorf("ion: -c requires an argument")
			}
			i++
			a.command = argv[i]
		case strings.HasPrefix(arg, "-c="):
			a.command = strings.TrimPrefix(arg, "-c=")
		case arg == "-n" || arg == "--no-execute":
			a.noExecute = true
		case arg == "--version":
			a.printVer = true
		case arg == "-h" || arg == "--help":
			a.printHelp = true
		case arg == "--":
			i++
			goto positional
		case strings.HasPrefix(arg, "-"):
			return a, fmt.Errorf("ion: unknown flag %q", arg)
		default:
			goto positional
		}
	}
positional:
	if i < len(argv) {
		a.scriptPath = argv[i]
		a.scriptArgs = argv[i+1:]
	}
	return a, nil
}

func run(argv []string) int {
	args, err := parseArgs(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if args.printVer {
		fmt.Println(version)
		return 0
	}
	if args.printHelp {
		printUsage(os.Stdout)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	login := len(os.Args) > 0 && strings.HasPrefix(os.Args[0], "-")
	interactive := args.command == "" && args.scriptPath == "" && term.IsTerminal(int(os.Stdin.Fd()))

	sh := shellenv.New(login, interactive)
	sh.Scope.Set("args", argsValue(args.scriptArgs))
	if args.noExecute {
		return 0
	}
	sh.History = &history.File{Path: historyFilePath(sh), MaxEntries: histSize(sh), UseTimestamps: true}

	switch {
	case args.command != "":
		return runScript(ctx, sh, strings.NewReader(args.command))
	case args.scriptPath != "":
		f, err := os.Open(args.scriptPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		return runScript(ctx, sh, f)
	case interactive:
		return runInteractive(ctx, sh)
	default:
		return runScript(ctx, sh, os.Stdin)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: ion [-c command | -n | --version] [script [args...]]")
}

// runScript feeds a non-interactive input line by line, stopping at the
// first exit request (spec.md §6 exit built-in).
func runScript(ctx context.Context, sh *shellenv.Shell, r io.Reader) int {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	last := 0
	for scanner.Scan() {
		code, err := sh.RunLine(ctx, scanner.Text())
		last = code
		if exitCode, isExit := asExitErr(err); isExit {
			return exitCode
		}
		if ctx.Err() != nil {
			return 130
		}
	}
	return last
}

// runInteractive drives a chzyer/readline REPL. readline is given the
// history file path and loads its history ring from that file itself;
// each line read is run through sh.RunLine, which appends it to
// sh.History when sh.Ignore allows it.
func runInteractive(ctx context.Context, sh *shellenv.Shell) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ion> ",
		HistoryFile:     historyFilePath(sh),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rl.Close()

	last := 0
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if errors.Is(err, io.EOF) {
			return last
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		code, runErr := sh.RunLine(ctx, line)
		last = code
		if exitCode, isExit := asExitErr(runErr); isExit {
			return exitCode
		}
	}
}

func historyFilePath(sh *shellenv.Shell) string {
	if v, ok := sh.Scope.Get("HISTFILE", scope.Any, 0); ok {
		if s := v.String(); s != "" {
			return s
		}
	}
	home, _ := os.UserHomeDir()
	return home + "/.ion_history"
}

// histSize reads HISTORY_SIZE (spec.md §6 config vars, carried through
// internal/scope per SPEC_FULL.md's config section), defaulting to 1000.
func histSize(sh *shellenv.Shell) int {
	if v, ok := sh.Scope.Get("HISTORY_SIZE", scope.Any, 0); ok {
		if n, err := strconv.Atoi(v.String()); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

// argsValue builds the $args array positional-parameter binding
// (spec.md §6 "args array binding").
func argsValue(argv []string) value.Value {
	elems := make([]value.Value, len(argv))
	for i, a := range argv {
		elems[i] = value.Str(a)
	}
	return value.Array(elems)
}

type exitSignal interface{ ExitCode() int }

func asExitErr(err error) (int, bool) {
	if e, ok := err.(exitSignal); ok {
		return e.ExitCode(), true
	}
	return 0, false
}
