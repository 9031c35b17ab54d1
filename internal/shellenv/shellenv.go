// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package shellenv wires the Scope Store, Job table, Signal Plane,
// Executor, built-in Registry, and history log together into the
// Shell struct the rest of the program drives: the CLI entrypoint feeds
// it lines, and built-ins reach back into it through
// internal/builtin.FromContext.
package shellenv

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/redox-os/ion-sub002/internal/builtin"
	"github.com/redox-os/ion-sub002/internal/history"
	"github.com/redox-os/ion-sub002/internal/interp"
	"github.com/redox-os/ion-sub002/internal/job"
	"github.com/redox-os/ion-sub002/internal/scope"
	"github.com/redox-os/ion-sub002/internal/signal"
	"github.com/redox-os/ion-sub002/internal/value"
)

// Shell is the top-level glue: one instance per running `ion` process,
// shared by the interactive loop, script runner, and every built-in
// invoked through it (SUPPLEMENTED FEATURES "status built-in
// contract").
type Shell struct {
	Scope    *scope.Store
	JobTable *job.Table
	Signals  *signal.Plane
	Exec     *interp.Executor
	Builtins *builtin.Registry
	History  *history.File
	Ignore   *history.Matcher
	Log      *logrus.Logger

	mu          sync.Mutex
	dir         string
	lastStatus  int
	login       bool
	interactive bool
	functions   map[string]functionDef
}

type functionDef struct {
	params []string
	body   string
}

// New builds a fully wired Shell: scope store seeded from os.Environ,
// job table, signal plane, built-in registry, and an Executor whose
// command substitution hook runs a nested parse/collect/run of the
// substituted text (spec.md §4.M "used by command substitution").
func New(login, interactive bool) *Shell {
	log := logrus.New()
	dir, _ := os.Getwd()

	sh := &Shell{
		Scope:       scope.New(),
		JobTable:    job.New(log),
		Signals:     signal.New(log),
		Builtins:    builtin.NewRegistry(),
		Log:         log,
		dir:         dir,
		login:       login,
		interactive: interactive,
		functions:   make(map[string]functionDef),
	}
	builtin.RegisterDefaults(sh.Builtins)

	sh.Exec = interp.New(log)
	sh.Exec.Jobs = sh.JobTable
	sh.Exec.Signals = sh.Signals
	sh.Exec.Functions = sh
	sh.Exec.Builtins = sh.Builtins.AsExecutorBuiltins()

	sh.seedEnv()
	sh.Ignore = history.NewMatcher(nil)

	sh.Signals.OnSIGHUP(func() { sh.JobTable.PropagateSIGHUP() })

	return sh
}

func (sh *Shell) seedEnv() {
	for _, kv := range os.Environ() {
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			continue
		}
		sh.Scope.Set(kv[:i], value.Str(kv[i+1:]))
	}
	if _, ok := sh.Scope.Get("PWD", scope.Any, 0); !ok {
		sh.Scope.Set("PWD", value.Str(sh.dir))
	}
}

// --- internal/builtin.Shell ---

func (sh *Shell) Chdir(path string) error {
	if path == "" {
		return fmt.Errorf("HOME not set")
	}
	if !strings.HasPrefix(path, "/") {
		path = sh.Dir() + string(os.PathSeparator) + path
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", path)
	}
	sh.mu.Lock()
	old := sh.dir
	sh.dir = path
	sh.mu.Unlock()
	sh.Scope.Set("OLDPWD", value.Str(old))
	sh.Scope.Set("PWD", value.Str(path))
	return nil
}

func (sh *Shell) Jobs() *job.Table    { return sh.JobTable }
func (sh *Shell) Store() *scope.Store { return sh.Scope }

func (sh *Shell) LastStatus() int {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.lastStatus
}

func (sh *Shell) setLastStatus(code int) {
	sh.mu.Lock()
	sh.lastStatus = code
	sh.mu.Unlock()
}

func (sh *Shell) IsLogin() bool       { return sh.login }
func (sh *Shell) IsInteractive() bool { return sh.interactive }

// Dir returns the shell's current working directory.
func (sh *Shell) Dir() string {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.dir
}

// --- internal/interp.FunctionRunner ---

// RunFunction executes a previously-declared shell function body as a
// nested statement sequence in a fresh namespace-bounded scope, binding
// positional parameters by name.
func (sh *Shell) RunFunction(ctx context.Context, name string, argv []string, ec *interp.ExecContext) (int, error) {
	fn, ok := sh.functions[name]
	if !ok {
		return 127, fmt.Errorf("ion: exec: %s: no such function", name)
	}
	sh.Scope.NewScope(true)
	defer sh.Scope.PopScope()
	for i, p := range fn.params {
		v := ""
		if i+1 < len(argv) {
			v = argv[i+1]
		}
		sh.Scope.Set(p, value.Str(v))
	}
	return sh.runBody(ctx, fn.body)
}

// DefineFunction registers a shell function for later RunFunction calls
// (parsing of the `function` syntax-level construct itself is a
// Non-goal per spec.md §1/§9; callers that do parse it register the
// body here).
func (sh *Shell) DefineFunction(name string, params []string, body string) {
	sh.functions[name] = functionDef{params: params, body: body}
}

func (sh *Shell) IsFunction(name string) bool {
	_, ok := sh.functions[name]
	return ok
}

func (sh *Shell) IsBuiltin(name string) bool {
	return sh.Builtins.Has(name)
}
