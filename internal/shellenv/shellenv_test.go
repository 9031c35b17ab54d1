// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package shellenv_test

import (
	"bytes"
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/redox-os/ion-sub002/internal/scope"
	"github.com/redox-os/ion-sub002/internal/shellenv"
)

func newTestShell(t *testing.T) (*shellenv.Shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	sh := shellenv.New(false, false)
	var stdout, stderr bytes.Buffer
	sh.Exec.Stdout = &stdout
	sh.Exec.Stderr = &stderr
	return sh, &stdout, &stderr
}

func TestRunLineTrueFalse(t *testing.T) {
	sh, _, _ := newTestShell(t)
	code, err := sh.RunLine(context.Background(), "true")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 0)
	qt.Assert(t, sh.LastStatus(), qt.Equals, 0)

	code, err = sh.RunLine(context.Background(), "false")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 1)
	qt.Assert(t, sh.LastStatus(), qt.Equals, 1)
}

func TestRunLineBlankReturnsLastStatus(t *testing.T) {
	sh, _, _ := newTestShell(t)
	sh.RunLine(context.Background(), "false")
	code, err := sh.RunLine(context.Background(), "   ")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 1)
}

func TestRunLineAssignmentThenExpansion(t *testing.T) {
	sh, stdout, _ := newTestShell(t)
	_, err := sh.RunLine(context.Background(), "x = hello")
	qt.Assert(t, err, qt.IsNil)

	_, err = sh.RunLine(context.Background(), "/bin/echo $x")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, stdout.String(), qt.Equals, "hello\n")
}

func TestRunLineArrayAssignmentSplitsFields(t *testing.T) {
	sh, stdout, _ := newTestShell(t)
	_, err := sh.RunLine(context.Background(), "x = [a b c]")
	qt.Assert(t, err, qt.IsNil)

	_, err = sh.RunLine(context.Background(), "/bin/echo @x")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, stdout.String(), qt.Equals, "a b c\n")
}

func TestRunLineExitPropagatesCode(t *testing.T) {
	sh, _, _ := newTestShell(t)
	code, err := sh.RunLine(context.Background(), "exit 5")
	qt.Assert(t, code, qt.Equals, 5)
	qt.Assert(t, err, qt.ErrorMatches, ".*exit requested.*")
}

func TestRunLineCommandNotFoundReportsStderr(t *testing.T) {
	sh, _, stderr := newTestShell(t)
	code, err := sh.RunLine(context.Background(), "this-command-does-not-exist-xyz")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 1)
	qt.Assert(t, stderr.String(), qt.Contains, "command not found")
}

func TestChdirUpdatesPWDAndOLDPWD(t *testing.T) {
	sh, _, _ := newTestShell(t)
	start := sh.Dir()
	qt.Assert(t, sh.Chdir("/tmp"), qt.IsNil)
	qt.Assert(t, sh.Dir(), qt.Equals, "/tmp")

	v, ok := sh.Scope.Get("OLDPWD", scope.Any, 0)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, v.String(), qt.Equals, start)

	v, ok = sh.Scope.Get("PWD", scope.Any, 0)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, v.String(), qt.Equals, "/tmp")
}

func TestIsBuiltinAndIsFunction(t *testing.T) {
	sh, _, _ := newTestShell(t)
	qt.Assert(t, sh.IsBuiltin("cd"), qt.IsTrue)
	qt.Assert(t, sh.IsBuiltin("nope"), qt.IsFalse)

	qt.Assert(t, sh.IsFunction("greet"), qt.IsFalse)
	sh.DefineFunction("greet", nil, "true")
	qt.Assert(t, sh.IsFunction("greet"), qt.IsTrue)
}

func TestRunFunctionBindsPositionalParams(t *testing.T) {
	sh, stdout, _ := newTestShell(t)
	sh.DefineFunction("greet", []string{"name"}, "/bin/echo hi $name")

	code, err := sh.RunFunction(context.Background(), "greet", []string{"greet", "world"}, nil)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 0)
	qt.Assert(t, stdout.String(), qt.Equals, "hi world\n")
}

func TestRunFunctionUnknownName(t *testing.T) {
	sh, _, _ := newTestShell(t)
	_, err := sh.RunFunction(context.Background(), "nope", nil, nil)
	qt.Assert(t, err, qt.ErrorMatches, ".*no such function.*")
}
