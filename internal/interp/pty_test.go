// Copyright (c) 2019, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

//go:build !windows

package interp_test

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	"github.com/creack/pty"
	qt "github.com/frankban/quicktest"

	"github.com/redox-os/ion-sub002/internal/interp"
	"github.com/redox-os/ion-sub002/internal/pipeline"
)

// TestRunTerminalStdin wires a pseudo-terminal's secondary end as the
// Executor's own stdin, so an external command with no input
// redirection of its own reads from the controlling terminal, mirroring
// an interactive foreground pipeline (spec.md §4.J terminal ownership).
func TestRunTerminalStdin(t *testing.T) {
	primary, secondary, err := pty.Open()
	qt.Assert(t, err, qt.IsNil)
	defer primary.Close()
	defer secondary.Close()

	var stdout, stderr bytes.Buffer
	e := interp.New(nil)
	e.Stdin = secondary
	e.Stdout = &stdout
	e.Stderr = &stderr

	p := &pipeline.Pipeline{
		Disposition: pipeline.Foreground,
		Items: []pipeline.PipeItem{
			{Job: pipeline.Job{Argv: []string{"cat"}}},
		},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		code, err := e.Run(context.Background(), ".", nil, p)
		qt.Check(t, err, qt.IsNil)
		qt.Check(t, code, qt.Equals, 0)
	}()

	_, err = primary.Write([]byte("hello from pty\n"))
	qt.Assert(t, err, qt.IsNil)
	// In canonical mode a pty signals end-of-input with Ctrl-D (EOT),
	// not by closing a file descriptor.
	_, err = primary.Write([]byte{0x04})
	qt.Assert(t, err, qt.IsNil)

	<-done
	qt.Assert(t, stdout.String(), qt.Equals, "hello from pty\n")
}

// TestRunTerminalOutput drives an external command's stdout through a
// pseudo-terminal secondary, reading the result back from the primary,
// confirming the Executor's stdio plumbing composes with a real tty
// (as opposed to the plain os.Pipe used elsewhere in this package).
func TestRunTerminalOutput(t *testing.T) {
	primary, secondary, err := pty.Open()
	qt.Assert(t, err, qt.IsNil)
	defer primary.Close()

	e := interp.New(nil)
	e.Stdin = bytes.NewReader(nil)
	e.Stdout = secondary
	e.Stderr = secondary

	p := &pipeline.Pipeline{
		Disposition: pipeline.Foreground,
		Items: []pipeline.PipeItem{
			{Job: pipeline.Job{Argv: []string{"echo", "over-the-pty"}}},
		},
	}

	code, err := e.Run(context.Background(), ".", nil, p)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 0)
	qt.Assert(t, secondary.Close(), qt.IsNil)

	got, err := bufio.NewReader(primary).ReadString('\n')
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got, qt.Equals, "over-the-pty\r\n")
}
