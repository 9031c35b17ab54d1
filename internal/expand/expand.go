// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package expand implements the Expander (spec.md §4.H): it drives the
// Word Iterator over an input string, consults the Scope Store for
// variables, launches sub-shells for command/array-process
// substitution, applies brace expansion and range generation, and
// joins the results into an argument vector.
package expand

import (
	"fmt"
	"os"
	"strings"

	"github.com/redox-os/ion-sub002/internal/brace"
	"github.com/redox-os/ion-sub002/internal/globmatch"
	"github.com/redox-os/ion-sub002/internal/scope"
	"github.com/redox-os/ion-sub002/internal/value"
	"github.com/redox-os/ion-sub002/internal/word"
)

// ErrorKind tags the ExpansionError variants of spec.md §4.H.
type ErrorKind int

const (
	ErrUnboundVariable ErrorKind = iota
	ErrBadSelection
	ErrSubprocessError
	ErrArithError
	ErrMethodNotFound
	ErrBadArity
)

// Error is the typed ExpansionError of spec.md §4.H/§7.
type Error struct {
	Kind ErrorKind
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ion: expansion: %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("ion: expansion: %s", e.Name)
}

func (e *Error) Unwrap() error { return e.Err }

// Config wires the Expander to its collaborators: the Scope Store, a
// subshell launcher (Component M, spec.md §4.M), and a filesystem glob
// matcher for Normal tokens whose Glob flag is set.
type Config struct {
	Store *scope.Store
	// RunCommand spawns a subshell for $(...) / @(...) substitution,
	// returning its captured, trailing-newline-trimmed stdout.
	RunCommand func(cmdText string) (string, error)
	// Glob matches a shell glob pattern against the filesystem.
	Glob func(pattern string) ([]string, error)
	// UnboundIsError makes an unbound variable a hard ExpansionError
	// instead of the soft empty-string default (spec.md §7: err_exit).
	UnboundIsError bool
}

// Args expands a full already-split (§4.C) slice of raw arguments into
// the final argv, per spec.md §4.H.
func (c *Config) Args(rawArgs []string) ([]string, error) {
	var out []string
	for _, raw := range rawArgs {
		expanded, err := c.Arg(raw, false)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// word under construction while expanding a single raw argument.
type building struct {
	parts []string
	glob  []bool
}

func newBuilding() *building {
	return &building{parts: []string{""}, glob: []bool{false}}
}

func (b *building) appendLiteral(s string, glob bool) {
	last := len(b.parts) - 1
	b.parts[last] += s
	if glob {
		b.glob[last] = true
	}
}

// appendMulti reattaches the first value to the currently open word and
// appends the rest as new, independently-closed words, matching the
// bash-style field-splitting reattachment the expander performs on
// unquoted array/process/brace expansions (spec.md §4.H step 2).
func (b *building) appendMulti(values []string) {
	if len(values) == 0 {
		return
	}
	last := len(b.parts) - 1
	b.parts[last] += values[0]
	for _, v := range values[1:] {
		b.parts = append(b.parts, v)
		b.glob = append(b.glob, false)
	}
}

// Arg expands a single already-split raw argument into 0 or more final
// argv entries (spec.md §4.H).
func (c *Config) Arg(raw string, doubleQuoted bool) ([]string, error) {
	toks, err := word.Iterate(raw, doubleQuoted)
	if err != nil {
		return nil, &Error{Kind: ErrBadSelection, Name: raw, Err: err}
	}
	b := newBuilding()
	for _, t := range toks {
		if err := c.applyToken(b, t); err != nil {
			return nil, err
		}
	}
	out := make([]string, 0, len(b.parts))
	for i, p := range b.parts {
		if b.glob[i] {
			matches, err := c.globOrLiteral(p)
			if err != nil {
				return nil, err
			}
			out = append(out, matches...)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Config) globOrLiteral(pattern string) ([]string, error) {
	if c.Glob == nil {
		return []string{pattern}, nil
	}
	matches, err := c.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return []string{pattern}, nil
	}
	return matches, nil
}

func (c *Config) applyToken(b *building, t word.Token) error {
	switch t.Kind {
	case word.Normal:
		text := t.Text
		if t.Tilde {
			text = expandTilde(text, c.Store)
		}
		b.appendLiteral(text, t.Glob)
		return nil

	case word.Variable:
		return c.applyVariable(b, t, false)

	case word.ArrayVariable:
		return c.applyVariable(b, t, true)

	case word.Process:
		return c.applyProcess(b, t, false)

	case word.ArrayProcess:
		return c.applyProcess(b, t, true)

	case word.StringMethod, word.ArrayMethod:
		return c.applyMethod(b, t)

	case word.Brace:
		nodes := brace.Split(t.BraceRaw)
		alts := brace.Expand(nodes)
		b.appendMulti(alts)
		return nil

	case word.ArrayLit:
		var all []string
		for _, elemSrc := range t.Elements {
			vals, err := c.Arg(elemSrc, false)
			if err != nil {
				return err
			}
			all = append(all, vals...)
		}
		b.appendMulti(all)
		return nil

	case word.Arithmetic:
		res, err := c.evalArith(t.Expr)
		if err != nil {
			return &Error{Kind: ErrArithError, Name: t.Expr, Err: err}
		}
		b.appendLiteral(res, false)
		return nil
	}
	return nil
}

func expandTilde(prefix string, s *scope.Store) string {
	rest := strings.TrimPrefix(prefix, "~")
	if rest == "" {
		if home, ok := lookupScalar(s, "HOME"); ok {
			return home
		}
		if h, err := os.UserHomeDir(); err == nil {
			return h
		}
		return prefix
	}
	if rest == "+" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	if rest == "-" {
		if old, ok := lookupScalar(s, "OLDPWD"); ok {
			return old
		}
	}
	return prefix // ~user forms are left to the OS layer (out of core scope)
}

func lookupScalar(s *scope.Store, name string) (string, bool) {
	v, ok := s.Get(name, scope.Any, 0)
	if !ok {
		return "", false
	}
	return v.String(), true
}

func (c *Config) applyVariable(b *building, t word.Token, array bool) error {
	v, ok := c.Store.Get(t.Name, scope.Any, 0)
	if !ok {
		if c.UnboundIsError {
			return &Error{Kind: ErrUnboundVariable, Name: t.Name}
		}
		return nil
	}
	if t.HasSelection {
		selected := t.Selection.Select(v)
		if array && !t.DoubleQuoted {
			strs := make([]string, len(selected))
			for i, e := range selected {
				strs[i] = e.String()
			}
			b.appendMulti(strs)
			return nil
		}
		joined := joinValues(selected, t.DoubleQuoted)
		b.appendLiteral(joined, false)
		return nil
	}
	if v.Kind == value.KindArray && !t.DoubleQuoted {
		strs := make([]string, 0, len(v.Elements()))
		for _, e := range v.Elements() {
			strs = append(strs, e.String())
		}
		b.appendMulti(strs)
		return nil
	}
	b.appendLiteral(v.String(), false)
	return nil
}

func joinValues(vs []value.Value, doubleQuoted bool) string {
	strs := make([]string, len(vs))
	for i, v := range vs {
		strs[i] = v.String()
	}
	return strings.Join(strs, " ")
}

func (c *Config) applyProcess(b *building, t word.Token, array bool) error {
	if c.RunCommand == nil {
		return &Error{Kind: ErrSubprocessError, Name: t.Command}
	}
	out, err := c.RunCommand(t.Command)
	if err != nil {
		return &Error{Kind: ErrSubprocessError, Name: t.Command, Err: err}
	}
	out = strings.TrimSuffix(out, "\n")
	if array {
		lines := strings.Split(out, "\n")
		b.appendMulti(lines)
		return nil
	}
	if t.DoubleQuoted {
		b.appendLiteral(out, false)
		return nil
	}
	fields := strings.Fields(out)
	b.appendMulti(fields)
	return nil
}

func (c *Config) evalArith(expr string) (string, error) {
	return EvalArith(expr, func(name string) (value.Value, bool) {
		return c.Store.Get(name, scope.Any, 0)
	})
}

// MethodFunc implements one string/array method named in spec.md §4.H.
type MethodFunc func(c *Config, varValue value.Value, pattern string, hasPattern bool) (value.Value, error)

// Methods is the fixed-arity dispatch table for StringMethod/ArrayMethod
// tokens (spec.md §4.H step 1).
var Methods = map[string]MethodFunc{}

func (c *Config) applyMethod(b *building, t word.Token) error {
	fn, ok := Methods[t.Method]
	if !ok {
		return &Error{Kind: ErrMethodNotFound, Name: t.Method}
	}
	v, ok := c.Store.Get(t.MethodVar, scope.Any, 0)
	if !ok {
		v = value.Str("")
	}
	res, err := fn(c, v, t.MethodPattern, t.HasPattern)
	if err != nil {
		return &Error{Kind: ErrBadArity, Name: t.Method, Err: err}
	}
	if t.Kind == word.ArrayMethod && res.Kind == value.KindArray && !t.DoubleQuoted {
		strs := make([]string, 0, len(res.Elements()))
		for _, e := range res.Elements() {
			strs = append(strs, e.String())
		}
		b.appendMulti(strs)
		return nil
	}
	b.appendLiteral(res.String(), false)
	return nil
}

// DefaultGlob implements Config.Glob using internal/globmatch, giving
// filename expansion (spec.md §4.H step 3) shell-accurate "*"/"?"/"[...]"
// semantics (path-aware, POSIX character classes) rather than
// filepath.Glob's narrower dialect. Patterns are matched one path
// component at a time, so "**" matches within a single component like
// "*" and does not descend into subdirectories.
func DefaultGlob(pattern string) ([]string, error) {
	return globmatch.Expand(pattern)
}

