// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package shellenv

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/redox-os/ion-sub002/internal/builtin"
	"github.com/redox-os/ion-sub002/internal/expand"
	"github.com/redox-os/ion-sub002/internal/interp"
	"github.com/redox-os/ion-sub002/internal/lexer"
	"github.com/redox-os/ion-sub002/internal/pipeline"
	"github.com/redox-os/ion-sub002/internal/scope"
	"github.com/redox-os/ion-sub002/internal/value"
)

// expander builds the internal/expand.Config wired to this shell's
// store and to RunCommand/Glob, fresh each call so UnboundIsError can
// vary per invocation (err_exit toggling, spec.md §7).
func (sh *Shell) expander(ctx context.Context) *expand.Config {
	errExit := false
	if v, ok := sh.Scope.Get("ERR_EXIT", scope.Any, 0); ok {
		errExit = v.String() == "1" || strings.EqualFold(v.String(), "true")
	}
	return &expand.Config{
		Store: sh.Scope,
		RunCommand: func(cmdText string) (string, error) {
			return sh.captureCommand(ctx, cmdText)
		},
		Glob:           expand.DefaultGlob,
		UnboundIsError: errExit,
	}
}

// expandFunc adapts Config.Arg to internal/pipeline.ExpandFunc's
// single-argument shape.
func expandFunc(cfg *expand.Config) pipeline.ExpandFunc {
	return func(raw string) ([]string, error) {
		return cfg.Arg(raw, false)
	}
}

// RunLine runs one terminated statement (a full pipeline, possibly an
// assignment) against the shell, updating $? and the history log. It
// is the entry point cmd/ion feeds completed lines to (spec.md §4.I/§4.J).
func (sh *Shell) RunLine(ctx context.Context, line string) (int, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return sh.LastStatus(), nil
	}

	resolved, err := expand.ResolveAlias(sh.Scope, trimmed)
	if err != nil {
		fmt.Fprintln(sh.Exec.Stderr, err)
		sh.setLastStatus(1)
		return 1, nil
	}

	code, runErr := sh.runStatement(ctx, resolved)
	sh.setLastStatus(code)
	sh.logHistory(resolved, code)
	return code, runErr
}

func (sh *Shell) runStatement(ctx context.Context, stmt string) (int, error) {
	if assign := lexer.SplitAssign(stmt); assign.HasOp {
		return sh.runAssignment(ctx, assign)
	}

	cfg := sh.expander(ctx)
	p, err := pipeline.Collect(stmt, expandFunc(cfg), sh)
	if err != nil {
		fmt.Fprintln(sh.Exec.Stderr, err)
		return 1, nil
	}
	code, err := sh.Exec.Run(builtin.WithShell(ctx, sh), sh.Dir(), sh.Scope.Env(), p)
	if exitCode, isExit := asExitErr(err); isExit {
		return exitCode, err
	}
	if err != nil {
		fmt.Fprintln(sh.Exec.Stderr, err)
	}
	return code, nil
}

// runBody runs a function body's statements in sequence, stopping
// early (and propagating its status) on an exit request.
func (sh *Shell) runBody(ctx context.Context, body string) (int, error) {
	last := 0
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		code, err := sh.runStatement(ctx, line)
		last = code
		if err != nil {
			return last, err
		}
	}
	return last, nil
}

// captureCommand runs cmdText to completion with its stdout captured,
// used by the Expander for $(...) / @(...) substitution (spec.md §4.M).
func (sh *Shell) captureCommand(ctx context.Context, cmdText string) (string, error) {
	res, err := sh.Exec.ForkCapture(interp.CaptureStdout, sh.Dir(), sh.Scope.Env(), func(ec *interp.ExecContext) (int, error) {
		cfg := sh.expander(ctx)
		p, err := pipeline.Collect(cmdText, expandFunc(cfg), sh)
		if err != nil {
			return 1, err
		}
		sub := *sh.Exec
		sub.Stdout = ec.Stdout
		sub.Stderr = ec.Stderr
		sub.Stdin = ec.Stdin
		return sub.Run(builtin.WithShell(ctx, sh), sh.Dir(), sh.Scope.Env(), p)
	})
	if err != nil {
		return "", err
	}
	out, readErr := io.ReadAll(res.Stdout)
	res.Wait()
	if readErr != nil {
		return "", readErr
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

func (sh *Shell) runAssignment(ctx context.Context, a lexer.Assignment) (int, error) {
	cfg := sh.expander(ctx)
	var v value.Value
	if a.HasRHS {
		words, err := cfg.Arg(a.RHS, false)
		if err != nil {
			fmt.Fprintln(sh.Exec.Stderr, err)
			return 1, nil
		}
		if len(words) == 1 {
			v = value.Str(words[0])
		} else {
			elems := make([]value.Value, len(words))
			for i, w := range words {
				elems[i] = value.Str(w)
			}
			v = value.Array(elems)
		}
	} else {
		v = value.Str("")
	}
	sh.Scope.Set(a.LHS, v)
	return 0, nil
}

type exitSignal interface{ ExitCode() int }

func asExitErr(err error) (int, bool) {
	if e, ok := err.(exitSignal); ok {
		return e.ExitCode(), true
	}
	return 0, false
}

func (sh *Shell) logHistory(line string, status int) {
	if sh.Ignore == nil || sh.History == nil {
		return
	}
	if !sh.Ignore.ShouldSave(line, status) {
		return
	}
	if err := sh.History.Append(line); err != nil {
		sh.Log.WithError(err).Debug("history append failed")
	}
}
