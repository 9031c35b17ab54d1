package interp

import (
	"io"
	"sync/atomic"
)

// CaptureSpec selects which of a forked child's streams the parent
// keeps a read end for (spec.md §4.M).
type CaptureSpec int

const (
	CaptureNone CaptureSpec = iota
	CaptureStdout
	CaptureStderr
	CaptureBoth
	CaptureIgnoreStdout
	CaptureIgnoreStderr
	CaptureIgnoreBoth
	CaptureStdoutThenIgnoreStderr
	CaptureStderrThenIgnoreStdout
)

// CaptureResult is what fork_with_capture returns per spec.md §4.M.
type CaptureResult struct {
	PID    int
	Stdout io.ReadCloser // nil unless capture_spec captures stdout
	Stderr io.ReadCloser // nil unless capture_spec captures stderr

	done chan int
}

// Wait blocks until the captured child finishes and returns its exit
// status. Callers that captured a stream should drain it to EOF first,
// since the child's goroutine may be blocked writing into a full pipe.
func (r *CaptureResult) Wait() int {
	code := <-r.done
	r.done <- code // allow repeat calls to Wait to see the same result
	return code
}

var capturePIDCounter int64

// ForkCapture runs fn as a "child": Go has no raw fork(), so the
// in-process analogue is a goroutine given its own ExecContext
// (stdout/stderr wired per spec, working directory and environment
// copied by value). No scope or other shell state is cloned: fn works
// on whatever it closes over, so mutations it makes to shared state
// remain visible to the caller after collection. Used by command
// substitution (internal/shellenv's captureCommand, reached from
// internal/expand's applyProcess).
func (e *Executor) ForkCapture(spec CaptureSpec, dir string, env []string, fn func(ec *ExecContext) (int, error)) (*CaptureResult, error) {
	res := &CaptureResult{PID: int(atomic.AddInt64(&capturePIDCounter, 1)), done: make(chan int, 1)}

	ec := &ExecContext{Dir: dir, Env: env, Stdin: e.Stdin}

	var stdoutR, stderrR *io.PipeReader
	var stdoutW, stderrW *io.PipeWriter

	switch spec {
	case CaptureStdout, CaptureBoth, CaptureStdoutThenIgnoreStderr:
		stdoutR, stdoutW = io.Pipe()
		ec.Stdout = stdoutW
	case CaptureIgnoreStdout, CaptureIgnoreBoth, CaptureStderrThenIgnoreStdout:
		ec.Stdout = io.Discard
	default:
		ec.Stdout = e.Stdout
	}

	switch spec {
	case CaptureStderr, CaptureBoth, CaptureStderrThenIgnoreStdout:
		stderrR, stderrW = io.Pipe()
		ec.Stderr = stderrW
	case CaptureIgnoreStderr, CaptureIgnoreBoth, CaptureStdoutThenIgnoreStderr:
		ec.Stderr = io.Discard
	default:
		ec.Stderr = e.Stderr
	}

	go func() {
		code, err := fn(ec)
		if stdoutW != nil {
			stdoutW.CloseWithError(err)
		}
		if stderrW != nil {
			stderrW.CloseWithError(err)
		}
		res.done <- code
	}()

	if stdoutR != nil {
		res.Stdout = stdoutR
	}
	if stderrR != nil {
		res.Stderr = stderrR
	}

	// With no captured stream to drain lazily, the child must finish
	// before fork_with_capture returns (there is nothing else to block
	// the caller on); the Executor's terminal-reclaim happens in the
	// caller via setForegroundPgrp, since this path never owns the tty.
	if res.Stdout == nil && res.Stderr == nil {
		res.Wait()
	}
	return res, nil
}
