// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package word implements the Word Iterator (spec.md §4.F): classifying
// one already-split argument (see internal/lexer.SplitArgs) into a
// stream of WordTokens consumed by the expander.
package word

import "github.com/redox-os/ion-sub002/internal/value"

// Kind tags a WordToken variant.
type Kind int

const (
	Normal Kind = iota
	Whitespace
	Variable
	ArrayVariable
	Process
	ArrayProcess
	StringMethod
	ArrayMethod
	Brace
	ArrayLit
	Arithmetic
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "Normal"
	case Whitespace:
		return "Whitespace"
	case Variable:
		return "Variable"
	case ArrayVariable:
		return "ArrayVariable"
	case Process:
		return "Process"
	case ArrayProcess:
		return "ArrayProcess"
	case StringMethod:
		return "StringMethod"
	case ArrayMethod:
		return "ArrayMethod"
	case Brace:
		return "Brace"
	case ArrayLit:
		return "Array"
	case Arithmetic:
		return "Arithmetic"
	}
	return "Unknown"
}

// Token is one classified element of an argument, per spec.md §4.F.
type Token struct {
	Kind Kind

	// Normal
	Text  string
	Glob  bool
	Tilde bool

	// Variable / ArrayVariable / Process / ArrayProcess
	Name         string
	DoubleQuoted bool
	Selection    value.Selection
	HasSelection bool

	// Process / ArrayProcess: raw command source text.
	Command string

	// StringMethod / ArrayMethod
	Method        string
	MethodVar     string
	MethodPattern string
	HasPattern    bool

	// Brace: the raw "{...}" group text, unsplit; the alternatives
	// (including nested groups) are produced by internal/brace.Split
	// when the expander drives this token.
	BraceRaw string

	// ArrayLit: raw whitespace-separated (but bracket/quote-aware)
	// element sources, to be recursively tokenized.
	Elements []string

	// Arithmetic: raw expression source.
	Expr string
}
