// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package word

import (
	"strings"
)

// splitArrayLit splits the contents of an "[ a b c ]" literal on
// whitespace, honoring nested quotes/parens/braces the way the
// Argument Splitter does (spec.md §4.F: "may contain nested
// methods/subshells per 4.C").
func splitArrayLit(s string) ([]string, error) {
	var elems []string
	var cur strings.Builder
	depthParen, depthBrace, depthBracket := 0, 0, 0
	inSingle, inDouble := false, false
	flush := func() {
		if cur.Len() > 0 {
			elems = append(elems, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		if inSingle {
			cur.WriteByte(b)
			if b == '\'' {
				inSingle = false
			}
			continue
		}
		if inDouble {
			cur.WriteByte(b)
			if b == '\\' && i+1 < len(s) {
				i++
				cur.WriteByte(s[i])
			} else if b == '"' {
				inDouble = false
			}
			continue
		}
		switch b {
		case '\'':
			inSingle = true
			cur.WriteByte(b)
		case '"':
			inDouble = true
			cur.WriteByte(b)
		case '(':
			depthParen++
			cur.WriteByte(b)
		case ')':
			if depthParen > 0 {
				depthParen--
			}
			cur.WriteByte(b)
		case '{':
			depthBrace++
			cur.WriteByte(b)
		case '}':
			if depthBrace > 0 {
				depthBrace--
			}
			cur.WriteByte(b)
		case '[':
			depthBracket++
			cur.WriteByte(b)
		case ']':
			if depthBracket > 0 {
				depthBracket--
			}
			cur.WriteByte(b)
		case ' ', '\t':
			if depthParen == 0 && depthBrace == 0 && depthBracket == 0 {
				flush()
			} else {
				cur.WriteByte(b)
			}
		default:
			cur.WriteByte(b)
		}
	}
	flush()
	return elems, nil
}

// parseMethodArgs splits a method call's argument text on the first
// unquoted/unnested comma into (var, pattern); if there is no comma, the
// pattern defaults to whitespace splitting (spec.md §4.F StringMethod /
// ArrayMethod).
func parseMethodArgs(name, args string) (method, mvar, pattern string, hasPattern bool) {
	parts := splitTopComma(args)
	mvar = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		pattern = strings.TrimSpace(parts[1])
		hasPattern = true
	}
	return name, mvar, pattern, hasPattern
}

func splitTopComma(s string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	inSingle, inDouble := false, false
	for i := 0; i < len(s); i++ {
		b := s[i]
		if inSingle {
			cur.WriteByte(b)
			if b == '\'' {
				inSingle = false
			}
			continue
		}
		if inDouble {
			cur.WriteByte(b)
			if b == '"' {
				inDouble = false
			}
			continue
		}
		switch b {
		case '\'':
			inSingle = true
			cur.WriteByte(b)
		case '"':
			inDouble = true
			cur.WriteByte(b)
		case '(', '[', '{':
			depth++
			cur.WriteByte(b)
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(b)
		case ',':
			if depth == 0 {
				parts = append(parts, cur.String())
				cur.Reset()
				continue
			}
			cur.WriteByte(b)
		default:
			cur.WriteByte(b)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// decodeLiteral decodes backslash escapes in a Normal run. Recognized
// escapes (\n, \t, \\, etc.) are decoded only inside double-quoted
// context; outside quotes, an unknown escape \x becomes the literal
// byte x (already resolved by the Argument Splitter, so here we only
// handle the double-quoted decode pass). It also reports whether a bare
// glob metacharacter ('*', '?', '[') survived for the executor's
// filename-expansion pass.
func decodeLiteral(s string, doubleQuoted bool) (string, bool) {
	if !doubleQuoted {
		return s, strings.ContainsAny(s, "*?[")
	}
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case 'r':
				out.WriteByte('\r')
			case '\\':
				out.WriteByte('\\')
			case '"':
				out.WriteByte('"')
			case '$':
				out.WriteByte('$')
			default:
				out.WriteByte('\\')
				out.WriteByte(s[i+1])
			}
			i++
			continue
		}
		out.WriteByte(s[i])
	}
	return out.String(), false
}
