// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package pipeline

import (
	"fmt"
	"strings"

	"github.com/redox-os/ion-sub002/internal/lexer"
)

// ExpandFunc expands one already-split raw argument into 0 or more
// final argv entries (internal/expand.Config.Arg).
type ExpandFunc func(raw string) ([]string, error)

// Resolver reports whether a command name is a registered built-in or
// shell function (spec.md §4.I).
type Resolver interface {
	IsBuiltin(name string) bool
	IsFunction(name string) bool
}

var connectorTokens = map[string]Connector{
	"|":  ConnStdout,
	"^|": ConnStderr,
	"&|": ConnBoth,
}

var redirTokens = []struct {
	tok string
	op  RedirOp
	out bool
}{
	{"&>>", RedirBothAppend, true},
	{"&>", RedirBothTrunc, true},
	{"^>>", RedirErrAppend, true},
	{"^>", RedirErrTrunc, true},
	{">>", RedirOutAppend, true},
	{">", RedirOutTrunc, true},
	{"<<<", RedirHereString, false},
	{"<<", RedirHeredoc, false},
	{"<", RedirIn, false},
}

// Collect parses an already-terminated statement's raw tokens (as
// produced by internal/lexer.SplitArgs) into a Pipeline, per spec.md
// §4.I: connectors become RedirectFrom, redirections attach to the
// preceding PipeItem in source order, a trailing "&"/"&!" sets
// disposition, and the first argv element after expansion is matched
// against the Resolver to decide built-in vs external.
func Collect(stmtText string, expand ExpandFunc, res Resolver) (*Pipeline, error) {
	rawToks, err := lexer.SplitArgs(stmtText)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{CommandText: stmtText, Disposition: Foreground}
	var curArgv []string
	var curInputs, curOutputs []Redirect

	flushItem := func(conn Connector) error {
		if len(curArgv) == 0 {
			return nil
		}
		item := PipeItem{
			Job:     Job{Argv: curArgv, RedirectTo: conn},
			Inputs:  curInputs,
			Outputs: curOutputs,
		}
		resolveKind(&item, res)
		p.Items = append(p.Items, item)
		curArgv, curInputs, curOutputs = nil, nil, nil
		return nil
	}

	i := 0
	for i < len(rawToks) {
		tok := rawToks[i]

		if conn, ok := connectorTokens[tok]; ok {
			if err := flushItem(conn); err != nil {
				return nil, err
			}
			i++
			continue
		}
		if tok == "&" && i == len(rawToks)-1 {
			p.Disposition = Background
			i++
			continue
		}
		if tok == "&!" && i == len(rawToks)-1 {
			p.Disposition = Disowned
			i++
			continue
		}
		if rop, target, consumed, ok := matchRedirect(tok); ok {
			word := target
			if word == "" {
				if i+1 >= len(rawToks) {
					return nil, fmt.Errorf("ion: parse: redirection %q missing target", tok)
				}
				word = rawToks[i+1]
				consumed++
			}
			expandedWords, err := expand(word)
			if err != nil {
				return nil, err
			}
			w := word
			if len(expandedWords) > 0 {
				w = strings.Join(expandedWords, " ")
			}
			r := Redirect{Op: rop, Word: w}
			if isOutputRedir(rop) {
				curOutputs = append(curOutputs, r)
			} else {
				curInputs = append(curInputs, r)
			}
			i += consumed
			continue
		}

		expanded, err := expand(tok)
		if err != nil {
			return nil, err
		}
		curArgv = append(curArgv, expanded...)
		i++
	}
	if err := flushItem(ConnNone); err != nil {
		return nil, err
	}
	return p, nil
}

// matchRedirect recognizes a redirection token, possibly with the
// target glued on (">file"), returning how many raw tokens it consumed
// from the target (0 if the target still needs to be read separately).
func matchRedirect(tok string) (RedirOp, string, int, bool) {
	for _, r := range redirTokens {
		if tok == r.tok {
			return r.op, "", 1, true
		}
		if strings.HasPrefix(tok, r.tok) && len(tok) > len(r.tok) {
			return r.op, tok[len(r.tok):], 1, true
		}
	}
	return 0, "", 0, false
}

func isOutputRedir(op RedirOp) bool {
	switch op {
	case RedirOutTrunc, RedirOutAppend, RedirErrTrunc, RedirErrAppend, RedirBothTrunc, RedirBothAppend:
		return true
	}
	return false
}

// resolveKind fills in Job.BuiltinName/IsFunction and rewrites a
// "cd"-shaped argv into an implicit "cd" call, per spec.md §4.I.
func resolveKind(item *PipeItem, res Resolver) {
	if len(item.Job.Argv) == 0 {
		return
	}
	name := item.Job.Argv[0]
	if res != nil {
		if res.IsFunction(name) {
			item.Job.IsFunction = true
			return
		}
		if res.IsBuiltin(name) {
			item.Job.BuiltinName = name
			return
		}
	}
	if looksLikeDir(name) {
		item.Job.Argv = append([]string{"cd"}, item.Job.Argv...)
		item.Job.BuiltinName = "cd"
	}
}

func looksLikeDir(arg string) bool {
	if arg == "." || arg == ".." {
		return true
	}
	if strings.HasPrefix(arg, "./") || strings.HasPrefix(arg, "../") || strings.HasPrefix(arg, "/") {
		return true
	}
	if strings.HasSuffix(arg, "/") {
		return true
	}
	return false
}
