// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package lexer

import "strings"

// assignOps lists the recognized compound operators, longest first so a
// left-to-right scan matches greedily (spec.md §4.D).
var assignOps = []string{
	"//=", "**=", "++=", "::=", `\=`,
	"+=", "-=", "*=", "/=", "?=",
	"=",
}

// Assignment is the (lhs, op, rhs) triple returned by the Assignment
// Lexer.
type Assignment struct {
	LHS string
	Op  string // "" if no operator was found
	RHS string
	// HasOp distinguishes "k =" (operator present) from "k" alone (no
	// operator at all); HasRHS distinguishes "k = v" from "k =" (empty
	// RHS).
	HasOp  bool
	HasRHS bool
}

// SplitAssign scans a statement left-to-right, tracking only "["..."]"
// balance, to find the assignment operator (spec.md §4.D).
func SplitAssign(stmt string) Assignment {
	depth := 0
	i := 0
	for i < len(stmt) {
		b := stmt[i]
		if b == '[' {
			depth++
			i++
			continue
		}
		if b == ']' {
			if depth > 0 {
				depth--
			}
			i++
			continue
		}
		if depth == 0 {
			if op, ok := matchOpAt(stmt, i); ok {
				lhs := strings.TrimSpace(stmt[:i])
				rhs := strings.TrimSpace(stmt[i+len(op):])
				return Assignment{
					LHS:    lhs,
					Op:     op,
					HasOp:  true,
					RHS:    rhs,
					HasRHS: rhs != "",
				}
			}
		}
		i++
	}
	return Assignment{LHS: strings.TrimSpace(stmt)}
}

func matchOpAt(s string, i int) (string, bool) {
	for _, op := range assignOps {
		if strings.HasPrefix(s[i:], op) {
			return op, true
		}
	}
	return "", false
}
