package builtin

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/redox-os/ion-sub002/internal/interp"
	"github.com/redox-os/ion-sub002/internal/job"
	"github.com/redox-os/ion-sub002/internal/scope"
)

// Shell is the minimal mutation surface a built-in needs from the
// owning shell: scope access for "cd" (PWD/OLDPWD), the job table for
// job-control built-ins, and the last pipeline status for "status"
// (spec.md §6, SUPPLEMENTED FEATURES "status built-in contract").
type Shell interface {
	Chdir(path string) error
	Jobs() *job.Table
	Store() *scope.Store
	LastStatus() int
	IsLogin() bool
	IsInteractive() bool
}

type shellKey struct{}

// WithShell attaches a Shell to ctx so built-in Funcs registered below
// can reach it without a global.
func WithShell(ctx context.Context, sh Shell) context.Context {
	return context.WithValue(ctx, shellKey{}, sh)
}

// FromContext retrieves the Shell attached by WithShell.
func FromContext(ctx context.Context) (Shell, bool) {
	sh, ok := ctx.Value(shellKey{}).(Shell)
	return sh, ok
}

// RegisterDefaults registers the built-ins whose *registration
// contract* spec.md §6 puts in scope. Per §1/§9 Non-goals, `calc`,
// `set`, `status`, and `is` get a contract entry but no real logic;
// `random`'s name is reserved per SUPPLEMENTED FEATURES so a caller can
// register the PRNG-backed built-in without inventing a new signature.
// `echo` is also trivial per §1 Non-goals, but spec.md §8's observation
// scenarios use it as the output sink, so it gets the plain
// arg-printing implementation needed to make those properties
// satisfiable. `cd`, `exit`, `true`, `false`, and the job-control
// built-ins are in scope (§4.I cd-shaped resolution, §4.K Job Control)
// and get real implementations.
func RegisterDefaults(r *Registry) {
	r.Register(Entry{Name: "cd", Help: "cd [path]: change the working directory", Fn: builtinCd})
	r.Register(Entry{Name: "exit", Help: "exit [code]: terminate the shell", Fn: builtinExit})
	r.Register(Entry{Name: "true", Help: "true: return success", Fn: builtinTrue})
	r.Register(Entry{Name: "false", Help: "false: return failure", Fn: builtinFalse})
	r.Register(Entry{Name: "jobs", Help: "jobs: list background jobs", Fn: builtinJobs})
	r.Register(Entry{Name: "fg", Help: "fg %n: resume a job in the foreground", Fn: builtinFg})
	r.Register(Entry{Name: "bg", Help: "bg %n: resume a job in the background", Fn: builtinBg})
	r.Register(Entry{Name: "disown", Help: "disown [-a|-r|-h] [%n ...]: remove jobs, or with -h exempt them from SIGHUP on exit", Fn: builtinDisown})
	r.Register(Entry{Name: "suspend", Help: "suspend: stop the shell itself with SIGSTOP", Fn: builtinSuspend})

	r.Register(Entry{Name: "echo", Help: "echo [args...]: print arguments", Fn: builtinEcho})
	r.Register(Entry{Name: "calc", Help: "calc expr: evaluate an arithmetic expression (registration contract only)", Fn: notImplemented})
	r.Register(Entry{Name: "set", Help: "set [opts]: toggle shell options (registration contract only)", Fn: notImplemented})
	r.Register(Entry{Name: "status", Help: "status [-li]: report shell status (registration contract only)", Fn: notImplemented})
	r.Register(Entry{Name: "is", Help: "is a b: structural equality test (registration contract only)", Fn: notImplemented})
	r.Register(Entry{Name: "random", Help: "random [spec]: PRNG-backed value generator (registration contract only)", Fn: notImplemented})
}

func notImplemented(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	fmt.Fprintf(ec.Stderr, "ion: builtin: %q is registered but has no bundled implementation\n", args[0])
	return 1, nil
}

func builtinCd(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	sh, ok := FromContext(ctx)
	if !ok {
		return 1, fmt.Errorf("ion: builtin: cd: no shell in context")
	}
	target := ""
	if len(args) > 1 {
		target = args[1]
	}
	if target == "" {
		if v, ok := sh.Store().Get("HOME", scope.Any, 0); ok {
			target = v.String()
		}
	}
	if err := sh.Chdir(target); err != nil {
		fmt.Fprintf(ec.Stderr, "ion: builtin: cd: %v\n", err)
		return 1, nil
	}
	return 0, nil
}

func builtinExit(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	code := 0
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			code = n & 0xff
		}
	}
	return Status(code), errExit{code: code}
}

// errExit signals the shell's main loop to terminate, distinguishing a
// requested exit from a genuine built-in failure. ExitCode is exported
// so callers outside this package (internal/shellenv's statement
// runner) can recognize it structurally without a dependency cycle.
type errExit struct{ code int }

func (e errExit) Error() string  { return fmt.Sprintf("ion: exit requested (%d)", e.code) }
func (e errExit) ExitCode() int { return e.code }

func builtinTrue(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	return 0, nil
}

func builtinFalse(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	return 1, nil
}

// builtinEcho implements the trivial arg-printing logic spec.md §1
// Non-goals waves off, since §8's observation scenarios use echo as the
// sink for the expander's output.
func builtinEcho(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	fmt.Fprintln(ec.Stdout, strings.Join(args[1:], " "))
	return 0, nil
}

func builtinJobs(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	sh, ok := FromContext(ctx)
	if !ok {
		return 1, fmt.Errorf("ion: builtin: jobs: no shell in context")
	}
	for _, p := range sh.Jobs().List() {
		fmt.Fprintf(ec.Stdout, "[%d] %s\t%s\n", p.ID, p.State, p.Command)
	}
	return 0, nil
}

func jobArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("missing jobspec")
	}
	return parseJobspec(args[1])
}

// parseJobspec strips the optional leading '%' and parses the job ID.
func parseJobspec(s string) (int, error) {
	if len(s) > 0 && s[0] == '%' {
		s = s[1:]
	}
	return strconv.Atoi(s)
}

func builtinFg(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	sh, ok := FromContext(ctx)
	if !ok {
		return 1, fmt.Errorf("ion: builtin: fg: no shell in context")
	}
	id, err := jobArg(args)
	if err != nil {
		fmt.Fprintf(ec.Stderr, "ion: builtin: fg: %v\n", err)
		return 2, nil
	}
	if err := sh.Jobs().Resume(id); err != nil {
		fmt.Fprintf(ec.Stderr, "%v\n", err)
		return 1, nil
	}
	p, _ := sh.Jobs().Get(id)
	return Status(p.Wait() & 0xff), nil
}

func builtinBg(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	sh, ok := FromContext(ctx)
	if !ok {
		return 1, fmt.Errorf("ion: builtin: bg: no shell in context")
	}
	id, err := jobArg(args)
	if err != nil {
		fmt.Fprintf(ec.Stderr, "ion: builtin: bg: %v\n", err)
		return 2, nil
	}
	if err := sh.Jobs().Resume(id); err != nil {
		fmt.Fprintf(ec.Stderr, "%v\n", err)
		return 1, nil
	}
	return 0, nil
}

// builtinDisown implements `disown [-a|-r|-h] [%n ...]` (spec.md §4.K):
// without -h the selected jobs are removed from the table (state ->
// Empty); with -h they are instead marked to ignore SIGHUP on shell
// exit. -a selects every job, -r narrows the selection to Running jobs.
// At least one selector (a flag or a jobspec) is required.
func builtinDisown(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	sh, ok := FromContext(ctx)
	if !ok {
		return 1, fmt.Errorf("ion: builtin: disown: no shell in context")
	}

	var all, runningOnly, markOnly bool
	var ids []int
	for _, a := range args[1:] {
		switch a {
		case "-a":
			all = true
		case "-r":
			runningOnly = true
		case "-h":
			markOnly = true
		default:
			id, err := parseJobspec(a)
			if err != nil {
				fmt.Fprintf(ec.Stderr, "ion: builtin: disown: %v\n", err)
				return 2, nil
			}
			ids = append(ids, id)
		}
	}
	if !all && len(ids) == 0 {
		fmt.Fprintf(ec.Stderr, "ion: builtin: disown: at least one selector required\n")
		return 2, nil
	}

	targets, err := disownTargets(sh.Jobs(), all, runningOnly, ids)
	if err != nil {
		fmt.Fprintf(ec.Stderr, "%v\n", err)
		return 1, nil
	}

	for _, id := range targets {
		if markOnly {
			if err := sh.Jobs().Disown(id); err != nil {
				fmt.Fprintf(ec.Stderr, "%v\n", err)
				return 1, nil
			}
			continue
		}
		sh.Jobs().Collect(id)
	}
	return 0, nil
}

// disownTargets resolves the job IDs an invocation of disown applies to:
// explicit jobspecs if given (each must exist), otherwise every job
// when -a was passed, then narrowed to Running jobs if -r was passed.
func disownTargets(t *job.Table, all, runningOnly bool, ids []int) ([]int, error) {
	var targets []int
	if len(ids) > 0 {
		for _, id := range ids {
			if _, ok := t.Get(id); !ok {
				return nil, fmt.Errorf("ion: builtin: disown: no such job %%%d", id)
			}
			targets = append(targets, id)
		}
	} else if all {
		for _, p := range t.List() {
			targets = append(targets, p.ID)
		}
	}
	if !runningOnly {
		return targets, nil
	}
	var running []int
	for _, id := range targets {
		if p, ok := t.Get(id); ok && p.State == job.Running {
			running = append(running, id)
		}
	}
	return running, nil
}

// builtinSuspend implements `suspend` (spec.md §4.K): stop the shell's
// own process with SIGSTOP, unlike fg/bg/disown which act on a job.
func builtinSuspend(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error) {
	if err := syscall.Kill(os.Getpid(), syscall.SIGSTOP); err != nil {
		fmt.Fprintf(ec.Stderr, "ion: builtin: suspend: %v\n", err)
		return 1, nil
	}
	return 0, nil
}
