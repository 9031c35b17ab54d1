// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package brace implements brace expansion (spec.md §4.B): turning
// "pre{x,y,z}post" and nested/multiple brace groups into the Cartesian
// product of strings, with the leftmost group varying slowest. Groups
// with no top-level comma are tried as internal/rng sequences first
// ("{05..10}", "{a..e}", "{1..2..10}"), per spec.md §4.A/§8; only when
// that fails do they fall back to the single-alternative literal rule.
package brace

import (
	"strings"

	"github.com/redox-os/ion-sub002/internal/rng"
)

// Node is either a literal run of text or a Group of alternative
// sub-sequences (each itself a []Node, to support nesting).
type Node struct {
	Lit   string
	Group bool
	Alts  [][]Node
}

// Expand computes the Cartesian product described by a sequence of
// Nodes. len(Expand(nodes)) == the product of each Group's alternative
// count, per spec.md §8.
func Expand(nodes []Node) []string {
	partials := []string{""}
	for _, n := range nodes {
		if !n.Group {
			for i := range partials {
				partials[i] += n.Lit
			}
			continue
		}
		var next []string
		for _, p := range partials {
			for _, alt := range n.Alts {
				for _, suffix := range Expand(alt) {
					next = append(next, p+suffix)
				}
			}
		}
		partials = next
	}
	return partials
}

// Split parses a raw string containing "{a,b,c}" comma groups and/or
// "{a..z}"/"{1..10}" range groups (internal/word classifies both alike
// as a single Brace token; Split tells them apart) into a Node
// sequence. A lone, unclosed "{" is returned as a literal, matching the
// teacher's "malformed brace expansions are simply skipped" contract.
func Split(s string) []Node {
	nodes, _, ok := splitOne(s, 0)
	if !ok {
		return []Node{{Lit: s}}
	}
	return nodes
}

// splitOne parses nodes starting at s[i], stopping at top level (no
// enclosing group) only at end of string.
func splitOne(s string, i int) ([]Node, int, bool) {
	var nodes []Node
	var lit strings.Builder
	flushLit := func() {
		if lit.Len() > 0 {
			nodes = append(nodes, Node{Lit: lit.String()})
			lit.Reset()
		}
	}
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			next := s[i+1]
			if next == '{' || next == '}' || next == ',' {
				lit.WriteByte(next)
			} else {
				lit.WriteByte(c)
				lit.WriteByte(next)
			}
			i += 2
		case c == '{':
			if alts, end, ok := tryRangeGroup(s, i+1); ok {
				flushLit()
				nodes = append(nodes, Node{Group: true, Alts: alts})
				i = end
				continue
			}
			alts, end, ok := splitGroup(s, i+1)
			if !ok {
				lit.WriteByte(c)
				i++
				continue
			}
			flushLit()
			nodes = append(nodes, Node{Group: true, Alts: alts})
			i = end
		case c == '}' || c == ',':
			// Only meaningful inside splitGroup; at top level, literal.
			lit.WriteByte(c)
			i++
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flushLit()
	return nodes, i, true
}

// splitGroup parses the comma-separated alternatives of a brace group
// starting right after the opening '{', stopping at the matching '}'.
func splitGroup(s string, i int) ([][]Node, int, bool) {
	var alts [][]Node
	var cur []Node
	var lit strings.Builder
	flushLit := func() {
		if lit.Len() > 0 {
			cur = append(cur, Node{Lit: lit.String()})
			lit.Reset()
		}
	}
	depth := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			next := s[i+1]
			if next == '{' || next == '}' || next == ',' {
				lit.WriteByte(next)
			} else {
				lit.WriteByte(c)
				lit.WriteByte(next)
			}
			i += 2
		case c == '{':
			if alts, end, ok := tryRangeGroup(s, i+1); ok {
				flushLit()
				cur = append(cur, Node{Group: true, Alts: alts})
				i = end
				continue
			}
			inner, end, ok := splitGroup(s, i+1)
			if !ok {
				lit.WriteByte(c)
				i++
				continue
			}
			flushLit()
			cur = append(cur, Node{Group: true, Alts: inner})
			i = end
		case c == ',' && depth == 0:
			flushLit()
			alts = append(alts, cur)
			cur = nil
			i++
		case c == '}' && depth == 0:
			flushLit()
			alts = append(alts, cur)
			if len(alts) == 1 {
				// "{x}" is not a real group: fall back to a literal.
				return nil, 0, false
			}
			return alts, i + 1, true
		default:
			lit.WriteByte(c)
			i++
		}
	}
	// Unterminated group: not a real brace expansion.
	return nil, 0, false
}

// tryRangeGroup looks for a "{s..e}" / "{a..z}" / "{s..k..e}" range
// starting right after the opening '{' at s[i]. It only accepts groups
// with no top-level comma and no nested braces, so a mixed form like
// "{1..3,x}" still falls through to splitGroup's comma handling.
func tryRangeGroup(s string, i int) ([][]Node, int, bool) {
	end, ok := findGroupEnd(s, i)
	if !ok {
		return nil, 0, false
	}
	raw := s[i:end]
	if strings.ContainsAny(raw, "{,") || !strings.Contains(raw, "..") {
		return nil, 0, false
	}
	// Brace ranges include their end point ("{1..3}" is 1 2 3), so a
	// plain final ".." is handed to rng.Parse as the inclusive "...".
	if !strings.Contains(raw, "...") && !strings.Contains(raw, "..=") {
		k := strings.LastIndex(raw, "..")
		raw = raw[:k] + "..." + raw[k+2:]
	}
	seq, err := rng.Parse(raw)
	if err != nil {
		return nil, 0, false
	}
	alts := make([][]Node, len(seq))
	for idx, v := range seq {
		alts[idx] = []Node{{Lit: v}}
	}
	return alts, end + 1, true
}

// findGroupEnd returns the index of the '}' matching the '{' whose
// contents start at s[i], accounting for nesting and backslash escapes.
func findGroupEnd(s string, i int) (int, bool) {
	depth := 0
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i, true
			}
			depth--
		}
		i++
	}
	return 0, false
}
