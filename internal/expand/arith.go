// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"fmt"
	"strings"

	"github.com/redox-os/ion-sub002/internal/value"
)

// EvalArith evaluates an arithmetic expression via a standard
// shunting-yard over "+ - * / // ** %" with integer-first, then float
// promotion (spec.md §4.H). Variables are resolved as numbers through
// lookup.
func EvalArith(expr string, lookup func(name string) (value.Value, bool)) (string, error) {
	toks, err := tokenizeArith(expr)
	if err != nil {
		return "", err
	}
	rpn, err := toRPN(toks)
	if err != nil {
		return "", err
	}
	return evalRPN(rpn, lookup)
}

type arithTok struct {
	op   string // operator or "(" / ")"
	num  string // numeric or identifier literal
	isOp bool
	isID bool
}

var arithOps = []string{"**", "//", "+", "-", "*", "/", "%", "(", ")"}

func tokenizeArith(s string) ([]arithTok, error) {
	var out []arithTok
	i := 0
	for i < len(s) {
		b := s[i]
		switch {
		case b == ' ' || b == '\t':
			i++
		case b == '(' || b == ')':
			out = append(out, arithTok{op: string(b), isOp: true})
			i++
		case strings.HasPrefix(s[i:], "**"):
			out = append(out, arithTok{op: "**", isOp: true})
			i += 2
		case strings.HasPrefix(s[i:], "//"):
			out = append(out, arithTok{op: "//", isOp: true})
			i += 2
		case strings.ContainsRune("+-*/%", rune(b)):
			out = append(out, arithTok{op: string(b), isOp: true})
			i++
		case b >= '0' && b <= '9':
			j := i
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				j++
			}
			out = append(out, arithTok{num: s[i:j]})
			i = j
		case b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '$':
			j := i + 1
			for j < len(s) && (s[j] == '_' || (s[j] >= 'a' && s[j] <= 'z') || (s[j] >= 'A' && s[j] <= 'Z') || (s[j] >= '0' && s[j] <= '9')) {
				j++
			}
			name := s[i:j]
			name = strings.TrimPrefix(name, "$")
			out = append(out, arithTok{num: name, isID: true})
			i = j
		default:
			return nil, fmt.Errorf("ion: parse: unexpected byte %q in arithmetic expression", b)
		}
	}
	return out, nil
}

func precedence(op string) int {
	switch op {
	case "**":
		return 3
	case "*", "/", "//", "%":
		return 2
	case "+", "-":
		return 1
	}
	return 0
}

func rightAssoc(op string) bool { return op == "**" }

func toRPN(toks []arithTok) ([]arithTok, error) {
	var out, stack []arithTok
	for _, t := range toks {
		switch {
		case !t.isOp:
			out = append(out, t)
		case t.op == "(":
			stack = append(stack, t)
		case t.op == ")":
			found := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.op == "(" {
					found = true
					break
				}
				out = append(out, top)
			}
			if !found {
				return nil, fmt.Errorf("ion: parse: unmatched ) in arithmetic expression")
			}
		default:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.op == "(" {
					break
				}
				if precedence(top.op) > precedence(t.op) || (precedence(top.op) == precedence(t.op) && !rightAssoc(t.op)) {
					stack = stack[:len(stack)-1]
					out = append(out, top)
					continue
				}
				break
			}
			stack = append(stack, t)
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.op == "(" {
			return nil, fmt.Errorf("ion: parse: unmatched ( in arithmetic expression")
		}
		out = append(out, top)
	}
	return out, nil
}

func evalRPN(rpn []arithTok, lookup func(string) (value.Value, bool)) (string, error) {
	var stack []value.Value
	pop := func() (value.Value, error) {
		if len(stack) == 0 {
			return value.Value{}, fmt.Errorf("ion: calculation: stack underflow")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}
	for _, t := range rpn {
		if !t.isOp {
			if t.isID {
				if lookup != nil {
					if v, ok := lookup(t.num); ok {
						stack = append(stack, v)
						continue
					}
				}
				stack = append(stack, value.Str("0"))
				continue
			}
			stack = append(stack, value.Str(t.num))
			continue
		}
		b, err := pop()
		if err != nil {
			return "", err
		}
		a, err := pop()
		if err != nil {
			return "", err
		}
		r, err := value.Arith(t.op, a, b)
		if err != nil {
			return "", err
		}
		stack = append(stack, r)
	}
	if len(stack) != 1 {
		return "", fmt.Errorf("ion: calculation: malformed arithmetic expression")
	}
	return stack[0].String(), nil
}
