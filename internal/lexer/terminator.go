// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package lexer

import "strings"

type quoteMode int

const (
	quoteNone quoteMode = iota
	quoteSingle
	quoteDouble
)

// Terminator wraps a byte stream and decides when a single logical
// statement has ended (spec.md §4.E). Feeding input byte-by-byte
// produces the same termination boundaries as feeding it line-by-line,
// per spec.md §8.
type Terminator struct {
	quote       quoteMode
	bracket     int // "[" depth
	subshell    int // "$(" / "@(" depth
	andOrPend   bool
	comment     bool
	empty       bool
	heredoc     bool
	heredocTerm string
	collecting  bool // accumulating the heredoc terminator phrase
	phraseBuf   []byte
	lineBuf     []byte
	prevByte    byte
	haveEscape  bool
	done        bool
}

// NewTerminator returns a fresh Terminator with empty state.
func NewTerminator() *Terminator {
	return &Terminator{empty: true}
}

// Feed consumes one input byte, updating internal state. It returns
// true once the statement is complete as of this byte.
func (t *Terminator) Feed(b byte) bool {
	if t.done {
		return true
	}

	if t.haveEscape {
		t.haveEscape = false
		t.appendLine(b)
		t.prevByte = b
		return false
	}

	if t.heredoc {
		t.appendLine(b)
		if b == '\n' {
			line := string(t.lineBuf)
			t.lineBuf = nil
			if strings.TrimRight(strings.TrimSuffix(line, "\n"), "\r") == t.heredocTerm {
				t.heredoc = false
			}
		}
		t.prevByte = b
		return false
	}

	if t.comment {
		if b == '\n' {
			t.comment = false
			return t.newline()
		}
		t.prevByte = b
		return false
	}

	switch t.quote {
	case quoteSingle:
		t.appendLine(b)
		if b == '\'' {
			t.quote = quoteNone
		}
		t.prevByte = b
		t.empty = false
		return false
	case quoteDouble:
		t.appendLine(b)
		if b == '\\' {
			t.haveEscape = true
		} else if b == '"' {
			t.quote = quoteNone
		}
		t.prevByte = b
		t.empty = false
		return false
	}

	if t.collecting {
		if b == '\n' {
			t.lineBuf = append(t.lineBuf, b)
			t.StartHeredoc(string(t.phraseBuf))
			t.phraseBuf = nil
			t.collecting = false
			t.prevByte = b
			return false
		}
		t.phraseBuf = append(t.phraseBuf, b)
		t.lineBuf = append(t.lineBuf, b)
		t.prevByte = b
		return false
	}

	switch b {
	case '\'':
		t.quote = quoteSingle
		t.appendLine(b)
		t.empty = false
	case '"':
		t.quote = quoteDouble
		t.appendLine(b)
		t.empty = false
	case '\\':
		t.haveEscape = true
		t.empty = false
	case '#':
		if t.empty || t.prevByte == ' ' || t.prevByte == '\t' || t.prevByte == 0 {
			t.comment = true
		} else {
			t.appendLine(b)
		}
	case '[':
		t.bracket++
		t.appendLine(b)
		t.empty = false
	case ']':
		if t.bracket > 0 {
			t.bracket--
		}
		t.appendLine(b)
		t.empty = false
	case '(':
		if t.prevByte == '$' || t.prevByte == '@' {
			t.subshell++
		}
		t.appendLine(b)
		t.empty = false
	case ')':
		if t.subshell > 0 {
			t.subshell--
		}
		t.appendLine(b)
		t.empty = false
	case '&':
		if t.prevByte == '&' {
			t.andOrPend = true
		}
		t.appendLine(b)
		t.empty = false
	case '|':
		if t.prevByte == '|' {
			t.andOrPend = true
		}
		t.appendLine(b)
		t.empty = false
	case '<':
		if t.prevByte == '<' {
			t.collecting = true
		}
		t.appendLine(b)
		t.empty = false
	case '\n':
		t.prevByte = b
		return t.newline()
	default:
		t.appendLine(b)
		t.empty = false
	}
	t.prevByte = b
	return false
}

func (t *Terminator) appendLine(b byte) {
	t.lineBuf = append(t.lineBuf, b)
}

// newline applies the "newline inside [] becomes a space" rule and the
// termination condition of spec.md §4.E.
func (t *Terminator) newline() bool {
	if t.bracket > 0 {
		t.lineBuf = append(t.lineBuf, ' ')
		return false
	}
	if t.subshell > 0 {
		t.lineBuf = append(t.lineBuf, '\n')
		return false
	}
	if t.andOrPend {
		t.andOrPend = false
		return false
	}
	if t.empty {
		return false
	}
	t.done = true
	return true
}

// StartHeredoc switches the terminator into heredoc-accumulation mode:
// subsequent lines accumulate until one that, trimmed, equals term.
func (t *Terminator) StartHeredoc(term string) {
	t.heredoc = true
	t.heredocTerm = strings.TrimSpace(term)
}

// Done reports whether a complete statement has been seen.
func (t *Terminator) Done() bool { return t.done }

// Text returns the accumulated statement text (without the terminating
// newline).
func (t *Terminator) Text() string { return string(t.lineBuf) }

// IsTerminated feeds an entire buffer and reports whether it ends in a
// complete statement; a convenience wrapper matching spec.md §4.E's
// is_terminated() contract for callers that already have the whole
// input (e.g. a script file read in one shot).
func IsTerminated(input string) bool {
	t := NewTerminator()
	done := false
	for i := 0; i < len(input); i++ {
		if t.Feed(input[i]) {
			done = true
		}
	}
	return done
}
