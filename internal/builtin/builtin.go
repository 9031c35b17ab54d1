// Package builtin implements the Built-in registration interface
// (spec.md §6): "external code registers name → (function pointer,
// short help) tuples. A function receives (args, shell) → Status,
// where Status is an 8-bit code plus a success/failure predicate."
package builtin

import (
	"context"

	"github.com/redox-os/ion-sub002/internal/interp"
)

// Status is the 8-bit exit code plus success predicate spec.md §6
// names explicitly.
type Status uint8

// Success reports whether the status represents a successful run.
func (s Status) Success() bool { return s == 0 }

// Code returns the numeric exit status.
func (s Status) Code() int { return int(s) }

// Func is one built-in's implementation: spec.md §6's
// "(args, shell) -> Status", adapted to Go's explicit-error idiom by
// running against an *interp.ExecContext rather than a raw shell
// pointer (the Shell glue type in internal/shellenv implements the
// shell-mutation surface individual built-ins need, passed through
// ctx via internal/builtin.FromContext).
type Func func(ctx context.Context, ec *interp.ExecContext, args []string) (Status, error)

// Entry is one registered built-in: its function and short help text
// (spec.md §6).
type Entry struct {
	Name string
	Help string
	Fn   Func
}

// Registry holds every registered built-in, keyed by name.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry creates an empty built-in registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces a built-in.
func (r *Registry) Register(e Entry) {
	r.entries[e.Name] = e
}

// Has reports whether name is a registered built-in (wired into
// internal/pipeline.Resolver, §4.I).
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Help returns the short help string for name.
func (r *Registry) Help(name string) (string, bool) {
	e, ok := r.entries[name]
	return e.Help, ok
}

// Names returns every registered built-in name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for n := range r.entries {
		out = append(out, n)
	}
	return out
}

// Exec adapts a registered Func into an interp.BuiltinFunc: the
// Executor only knows about (int, error) returns, so Status is
// unpacked into its numeric code here.
func (r *Registry) Exec(ctx context.Context, ec *interp.ExecContext, argv []string) (int, error) {
	e, ok := r.entries[argv[0]]
	if !ok {
		return 127, nil
	}
	st, err := e.Fn(ctx, ec, argv)
	return st.Code(), err
}

// AsExecutorBuiltins adapts every registered entry to the map shape
// interp.Executor.Builtins expects.
func (r *Registry) AsExecutorBuiltins() map[string]interp.BuiltinFunc {
	out := make(map[string]interp.BuiltinFunc, len(r.entries))
	for name, e := range r.entries {
		e := e
		out[name] = func(ctx context.Context, ec *interp.ExecContext, argv []string) (int, error) {
			st, err := e.Fn(ctx, ec, argv)
			return st.Code(), err
		}
	}
	return out
}
