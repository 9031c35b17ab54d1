package builtin_test

import (
	"bytes"
	"context"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/redox-os/ion-sub002/internal/builtin"
	"github.com/redox-os/ion-sub002/internal/interp"
)

func TestStatusSuccess(t *testing.T) {
	qt.Assert(t, builtin.Status(0).Success(), qt.IsTrue)
	qt.Assert(t, builtin.Status(1).Success(), qt.IsFalse)
	qt.Assert(t, builtin.Status(2).Code(), qt.Equals, 2)
}

func TestRegistryRegisterHasHelp(t *testing.T) {
	r := builtin.NewRegistry()
	qt.Assert(t, r.Has("greet"), qt.IsFalse)

	r.Register(builtin.Entry{Name: "greet", Help: "say hi", Fn: func(ctx context.Context, ec *interp.ExecContext, args []string) (builtin.Status, error) {
		ec.Stdout.Write([]byte("hi\n"))
		return 0, nil
	}})

	qt.Assert(t, r.Has("greet"), qt.IsTrue)
	help, ok := r.Help("greet")
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, help, qt.Equals, "say hi")
	qt.Assert(t, r.Names(), qt.DeepEquals, []string{"greet"})
}

func TestRegistryExecRunsRegisteredBuiltin(t *testing.T) {
	r := builtin.NewRegistry()
	r.Register(builtin.Entry{Name: "greet", Fn: func(ctx context.Context, ec *interp.ExecContext, args []string) (builtin.Status, error) {
		ec.Stdout.Write([]byte("hi " + args[1] + "\n"))
		return 0, nil
	}})

	var out bytes.Buffer
	ec := &interp.ExecContext{Stdout: &out}
	code, err := r.Exec(context.Background(), ec, []string{"greet", "world"})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 0)
	qt.Assert(t, out.String(), qt.Equals, "hi world\n")
}

func TestRegistryExecUnknownReturns127(t *testing.T) {
	r := builtin.NewRegistry()
	code, err := r.Exec(context.Background(), &interp.ExecContext{}, []string{"nope"})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 127)
}

func TestAsExecutorBuiltinsWrapsStatus(t *testing.T) {
	r := builtin.NewRegistry()
	r.Register(builtin.Entry{Name: "bad", Fn: func(ctx context.Context, ec *interp.ExecContext, args []string) (builtin.Status, error) {
		return 3, nil
	}})

	m := r.AsExecutorBuiltins()
	fn, ok := m["bad"]
	qt.Assert(t, ok, qt.IsTrue)
	code, err := fn(context.Background(), &interp.ExecContext{}, []string{"bad"})
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, code, qt.Equals, 3)
}
