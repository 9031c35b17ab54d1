// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/redox-os/ion-sub002/internal/interp"
	"github.com/redox-os/ion-sub002/internal/pipeline"
)

func newExecutor(stdout, stderr *bytes.Buffer) *interp.Executor {
	e := interp.New(nil)
	e.Stdin = bytes.NewReader(nil)
	e.Stdout = stdout
	e.Stderr = stderr
	return e
}

func TestRunSimpleCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newExecutor(&stdout, &stderr)
	p := &pipeline.Pipeline{
		Disposition: pipeline.Foreground,
		Items: []pipeline.PipeItem{
			{Job: pipeline.Job{Argv: []string{"echo", "hello"}}},
		},
	}
	code, err := e.Run(context.Background(), ".", nil, p)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 0)
	qt.Assert(t, stdout.String(), qt.Equals, "hello\n")
}

func TestRunPipelineConnectsStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newExecutor(&stdout, &stderr)
	p := &pipeline.Pipeline{
		Disposition: pipeline.Foreground,
		Items: []pipeline.PipeItem{
			{Job: pipeline.Job{Argv: []string{"echo", "hi"}, RedirectTo: pipeline.ConnStdout}},
			{Job: pipeline.Job{Argv: []string{"cat"}}},
		},
	}
	code, err := e.Run(context.Background(), ".", nil, p)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 0)
	qt.Assert(t, stdout.String(), qt.Equals, "hi\n")
}

func TestRunBuiltin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newExecutor(&stdout, &stderr)
	e.Builtins["mybuiltin"] = func(ctx context.Context, ec *interp.ExecContext, argv []string) (int, error) {
		ec.Stdout.Write([]byte("from builtin\n"))
		return 0, nil
	}
	p := &pipeline.Pipeline{
		Disposition: pipeline.Foreground,
		Items: []pipeline.PipeItem{
			{Job: pipeline.Job{Argv: []string{"mybuiltin"}, BuiltinName: "mybuiltin"}},
		},
	}
	code, err := e.Run(context.Background(), ".", nil, p)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 0)
	qt.Assert(t, stdout.String(), qt.Equals, "from builtin\n")
}

func TestRunUnknownBuiltin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newExecutor(&stdout, &stderr)
	p := &pipeline.Pipeline{
		Disposition: pipeline.Foreground,
		Items: []pipeline.PipeItem{
			{Job: pipeline.Job{Argv: []string{"nope"}, BuiltinName: "nope"}},
		},
	}
	code, err := e.Run(context.Background(), ".", nil, p)
	qt.Assert(t, err, qt.Not(qt.IsNil))
	qt.Assert(t, code, qt.Equals, 127)
}

func TestRunOutputRedirectToFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newExecutor(&stdout, &stderr)
	dir := t.TempDir()
	p := &pipeline.Pipeline{
		Disposition: pipeline.Foreground,
		Items: []pipeline.PipeItem{
			{
				Job:     pipeline.Job{Argv: []string{"echo", "to-file"}},
				Outputs: []pipeline.Redirect{{Op: pipeline.RedirOutTrunc, Word: "out.txt"}},
			},
		},
	}
	code, err := e.Run(context.Background(), dir, nil, p)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 0)
	qt.Assert(t, stdout.String(), qt.Equals, "")

	contents, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, string(contents), qt.Equals, "to-file\n")
}

func TestRunCommandNotFound(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newExecutor(&stdout, &stderr)
	p := &pipeline.Pipeline{
		Disposition: pipeline.Foreground,
		Items: []pipeline.PipeItem{
			{Job: pipeline.Job{Argv: []string{"this-binary-does-not-exist-xyz"}}},
		},
	}
	_, err := e.Run(context.Background(), ".", nil, p)
	qt.Assert(t, err, qt.ErrorMatches, ".*command not found.*")
}

func TestForkCaptureStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := newExecutor(&stdout, &stderr)
	res, err := e.ForkCapture(interp.CaptureStdout, ".", nil, func(ec *interp.ExecContext) (int, error) {
		ec.Stdout.Write([]byte("captured\n"))
		return 0, nil
	})
	qt.Assert(t, err, qt.IsNil)
	buf := new(bytes.Buffer)
	buf.ReadFrom(res.Stdout)
	code := res.Wait()
	qt.Assert(t, code, qt.Equals, 0)
	qt.Assert(t, buf.String(), qt.Equals, "captured\n")
}
