// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package word

import (
	"fmt"
	"strings"

	"github.com/redox-os/ion-sub002/internal/rng"
	"github.com/redox-os/ion-sub002/internal/value"
)

// Iterate classifies one already-split argument into a stream of
// WordTokens (spec.md §4.F). doubleQuoted marks that the argument was
// produced entirely inside a double-quoted context (suppresses glob and
// word-splitting downstream, handled by the expander).
func Iterate(arg string, doubleQuoted bool) ([]Token, error) {
	var toks []Token
	i := 0
	n := len(arg)

	isIdentByte := func(b byte) bool {
		return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
	}

	if n > 0 && arg[0] == '~' && !doubleQuoted {
		j := 1
		for j < n && arg[j] != '/' && arg[j] != '$' {
			j++
		}
		toks = append(toks, Token{Kind: Normal, Text: arg[:j], Tilde: true})
		i = j
	}

	for i < n {
		b := arg[i]
		switch {
		case b == '$' && i+1 < n && arg[i+1] == '(':
			end, err := matchParen(arg, i+1)
			if err != nil {
				return nil, err
			}
			inner := arg[i+2 : end]
			if strings.HasPrefix(inner, "(") && strings.HasSuffix(inner, ")") {
				toks = append(toks, Token{Kind: Arithmetic, Expr: inner[1 : len(inner)-1]})
			} else {
				toks = append(toks, Token{Kind: Process, Command: inner, DoubleQuoted: doubleQuoted})
			}
			i = end + 1

		case b == '$' && i+1 < n && arg[i+1] == '{':
			end, err := matchBrace(arg, i+1)
			if err != nil {
				return nil, err
			}
			name, sel, hasSel, err := parseBraced(arg[i+2 : end])
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: Variable, Name: name, Selection: sel, HasSelection: hasSel, DoubleQuoted: doubleQuoted})
			i = end + 1

		case b == '$' && i+1 < n && isIdentByte(arg[i+1]):
			j := i + 1
			for j < n && isIdentByte(arg[j]) {
				j++
			}
			name := arg[i+1 : j]
			if j < n && arg[j] == '(' {
				end, err := matchParen(arg, j)
				if err != nil {
					return nil, err
				}
				mname, mvar, pat, hasPat := parseMethodArgs(name, arg[j+1:end])
				toks = append(toks, Token{Kind: StringMethod, Method: mname, MethodVar: mvar, MethodPattern: pat, HasPattern: hasPat, DoubleQuoted: doubleQuoted})
				i = end + 1
				continue
			}
			toks = append(toks, Token{Kind: Variable, Name: name, DoubleQuoted: doubleQuoted})
			i = j

		case b == '@' && i+1 < n && arg[i+1] == '(':
			end, err := matchParen(arg, i+1)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: ArrayProcess, Command: arg[i+2 : end], DoubleQuoted: doubleQuoted})
			i = end + 1

		case b == '@' && i+1 < n && arg[i+1] == '{':
			end, err := matchBrace(arg, i+1)
			if err != nil {
				return nil, err
			}
			name, sel, hasSel, err := parseBraced(arg[i+2 : end])
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: ArrayVariable, Name: name, Selection: sel, HasSelection: hasSel, DoubleQuoted: doubleQuoted})
			i = end + 1

		case b == '@' && i+1 < n && isIdentByte(arg[i+1]):
			j := i + 1
			for j < n && isIdentByte(arg[j]) {
				j++
			}
			name := arg[i+1 : j]
			if j < n && arg[j] == '(' {
				end, err := matchParen(arg, j)
				if err != nil {
					return nil, err
				}
				mname, mvar, pat, hasPat := parseMethodArgs(name, arg[j+1:end])
				toks = append(toks, Token{Kind: ArrayMethod, Method: mname, MethodVar: mvar, MethodPattern: pat, HasPattern: hasPat, DoubleQuoted: doubleQuoted})
				i = end + 1
				continue
			}
			toks = append(toks, Token{Kind: ArrayVariable, Name: name, DoubleQuoted: doubleQuoted})
			i = j

		case b == '[' && (i == 0 || arg[i-1] == ' '):
			end, err := matchBracket(arg, i)
			if err != nil {
				return nil, err
			}
			elems, err := splitArrayLit(arg[i+1 : end])
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: ArrayLit, Elements: elems})
			i = end + 1

		case b == '{' && braceLooksLikeGroup(arg[i:]):
			end, ok := matchBraceGroup(arg, i)
			if ok {
				toks = append(toks, Token{Kind: Brace, BraceRaw: arg[i : end+1]})
				i = end + 1
				continue
			}
			toks = append(toks, Token{Kind: Normal, Text: string(b)})
			i++

		case (b == '*' || b == '?') && !doubleQuoted:
			j := i
			for j < n && !isIdentByte(arg[j]) && strings.ContainsRune("*?", rune(arg[j])) {
				j++
			}
			toks = append(toks, Token{Kind: Normal, Text: arg[i:j], Glob: true})
			i = j

		default:
			j := i + 1
			for j < n && arg[j] != '$' && arg[j] != '@' && !(arg[j] == '[' && arg[j-1] == ' ') &&
				!(arg[j] == '{' && braceLooksLikeGroup(arg[j:])) &&
				!((arg[j] == '*' || arg[j] == '?') && !doubleQuoted) {
				j++
			}
			text, glob := decodeLiteral(arg[i:j], doubleQuoted)
			toks = append(toks, Token{Kind: Normal, Text: text, Glob: glob})
			i = j
		}
	}
	return toks, nil
}

func braceLooksLikeGroup(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return true
			}
		case ',':
			if depth == 1 {
				return true
			}
		}
	}
	return false
}

func matchBraceGroup(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func matchParen(s string, open int) (int, error) {
	return matchDelim(s, open, '(', ')')
}

func matchBrace(s string, open int) (int, error) {
	return matchDelim(s, open, '{', '}')
}

func matchBracket(s string, open int) (int, error) {
	return matchDelim(s, open, '[', ']')
}

func matchDelim(s string, open int, oc, cc byte) (int, error) {
	depth := 0
	inSingle, inDouble := false, false
	for i := open; i < len(s); i++ {
		b := s[i]
		if inSingle {
			if b == '\'' {
				inSingle = false
			}
			continue
		}
		if inDouble {
			if b == '\\' {
				i++
			} else if b == '"' {
				inDouble = false
			}
			continue
		}
		switch b {
		case '\'':
			inSingle = true
		case '"':
			inDouble = true
		case oc:
			depth++
		case cc:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("ion: lexer: unmatched %q", oc)
}

// parseBraced splits "${name[sel]}"/"@{name[sel]}" contents (with the
// outer "${"/"@{" ... "}" already stripped) into a name and an optional
// selection clause, parsed via internal/rng (spec.md §4.A).
func parseBraced(s string) (string, value.Selection, bool, error) {
	i := strings.IndexByte(s, '[')
	if i < 0 {
		return s, value.Selection{}, false, nil
	}
	if !strings.HasSuffix(s, "]") {
		return "", value.Selection{}, false, fmt.Errorf("ion: lexer: unmatched %q", '[')
	}
	name := s[:i]
	sel, err := rng.ParseSelection(s[i+1 : len(s)-1])
	if err != nil {
		return "", value.Selection{}, false, err
	}
	return name, sel, true, nil
}
