// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package interp implements the Executor (spec.md §4.J): turning a
// resolved internal/pipeline.Pipeline into running processes, wiring
// pipes and redirections between PipeItems, assigning process groups,
// and collecting exit status.
//
// The handler shapes (ExecContext, BuiltinFunc, lookPath) are grounded
// on mvdan-sh/interp/handler.go's HandlerContext, ExecHandlerFunc and
// LookPathDir; process-group attachment is
// grounded on mvdan-sh/interp/handler_unix.go's prepareCommand.
package interp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/redox-os/ion-sub002/internal/job"
	"github.com/redox-os/ion-sub002/internal/pipeline"
	"github.com/redox-os/ion-sub002/internal/signal"
)

// BuiltinFunc runs one registered built-in (spec.md §6). It returns the
// built-in's exit status.
type BuiltinFunc func(ctx context.Context, ec *ExecContext, argv []string) (int, error)

// FunctionRunner executes a declared shell function body, used when a
// PipeItem's Job.IsFunction is set.
type FunctionRunner interface {
	RunFunction(ctx context.Context, name string, argv []string, ec *ExecContext) (int, error)
}

// ExecContext is the per-PipeItem execution environment: working
// directory, environment, and the three wired standard streams. It is
// the in-process analogue of mvdan-sh's HandlerContext.
type ExecContext struct {
	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Executor runs Pipelines against a set of registered built-ins and
// shell functions, wiring OS pipes between external PipeItems and
// assigning a shared process group per pipeline (spec.md §4.J).
type Executor struct {
	Builtins  map[string]BuiltinFunc
	Functions FunctionRunner
	Jobs      *job.Table
	Signals   *signal.Plane
	Log       *logrus.Entry

	// Stdin/Stdout/Stderr are the shell's own standard streams, used by
	// the first/last PipeItem of a foreground Pipeline.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New builds an Executor with the shell's own standard streams.
func New(log *logrus.Logger) *Executor {
	if log == nil {
		log = logrus.New()
	}
	return &Executor{
		Builtins: make(map[string]BuiltinFunc),
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Log:      log.WithField("component", "interp"),
	}
}

// Run executes a Pipeline to completion (or, for a Background/Disowned
// disposition, registers it with the job table and returns immediately)
// per spec.md §4.J's algorithm:
//  1. allocate stdio plumbing between PipeItems honoring Connector
//  2. apply per-item file/here-string/heredoc redirections
//  3. fork+exec external items, run built-ins/functions in-process
//  4. assign every item to one process group, led by the first
//  5. wait for the pipeline (foreground) or hand it to Job Control
func (e *Executor) Run(ctx context.Context, dir string, env []string, p *pipeline.Pipeline) (int, error) {
	if len(p.Items) == 0 {
		return 0, nil
	}

	items, err := e.plan(dir, env, p)
	if err != nil {
		return 1, err
	}

	if err := e.startAll(ctx, items); err != nil {
		stopStarted(items)
		return 1, err
	}

	pgid := leaderPgid(items)

	if p.Disposition != pipeline.Foreground {
		bg := e.registerBackground(p, pgid, items)
		e.Log.WithField("job", bg.ID).Info("running in background")
		return 0, nil
	}

	return e.waitForeground(ctx, pgid, items)
}

// registerBackground hands a started pipeline's items to the job table,
// returning the tracked Process. The supervisor goroutine (job.Table.supervise)
// waits on an allItemsWaiter that joins every item, mirroring how a
// foreground wait joins them synchronously.
func (e *Executor) registerBackground(p *pipeline.Pipeline, pgid int, items []*plannedItem) *job.Process {
	// Disowned jobs are still tracked so "jobs" can list them, but are
	// excluded from SIGHUP propagation (spec.md §4.K, §4.L).
	proc := e.Jobs.Spawn(pgid, p.CommandText, &allItemsWaiter{items: items})
	if p.Disposition == pipeline.Disowned {
		_ = e.Jobs.Disown(proc.ID)
	}
	return proc
}

// waitForeground hands the terminal's process group to pgid (if
// available), waits for every item, then reclaims it for the shell.
func (e *Executor) waitForeground(ctx context.Context, pgid int, items []*plannedItem) (int, error) {
	setForegroundPgrp(pgid)
	defer setForegroundPgrp(os.Getpid())

	last := 0
	for _, it := range items {
		code, err := it.wait()
		if err != nil && it.isLast {
			return code, err
		}
		if it.isLast {
			last = code
		}
	}
	return last, nil
}

func leaderPgid(items []*plannedItem) int {
	for _, it := range items {
		if it.cmd != nil && it.cmd.Process != nil {
			return it.cmd.Process.Pid
		}
	}
	return 0
}

func stopStarted(items []*plannedItem) {
	for _, it := range items {
		if it.cmd != nil && it.cmd.Process != nil {
			_ = it.cmd.Process.Kill()
		}
	}
}

// allItemsWaiter adapts a slice of plannedItems to job.Table's waiter
// interface, joining every item's completion into one ProcessState-ish
// result (the last item's status is authoritative, matching shell exit
// status semantics for pipelines).
type allItemsWaiter struct{ items []*plannedItem }

func (w *allItemsWaiter) Wait() (*os.ProcessState, error) {
	var lastState *os.ProcessState
	var lastErr error
	for _, it := range w.items {
		code, err := it.wait()
		if it.isLast {
			lastErr = err
			if it.cmd != nil {
				lastState = it.cmd.ProcessState
			} else {
				lastErr = exitCodeErr(code, err)
			}
		} else if err != nil {
			lastErr = err
		}
	}
	return lastState, lastErr
}

// exitCodeErr wraps a built-in's non-zero exit code as an error so
// job.Table's supervisor (which only inspects ProcessState for
// external processes) still records a sensible state; the job table's
// exit-code extraction special-cases a nil ProcessState by falling
// back to 1 on any non-nil error, matching the built-in exit-code
// semantics closely enough for job reporting purposes.
func exitCodeErr(code int, err error) error {
	if code == 0 {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("exit status %d", code)
}

var errNoSuchBuiltin = fmt.Errorf("ion: exec: command not found")
