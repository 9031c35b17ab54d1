// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package word_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/redox-os/ion-sub002/internal/value"
	"github.com/redox-os/ion-sub002/internal/word"
)

func TestIterateNormal(t *testing.T) {
	toks, err := word.Iterate("hello", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.Normal)
	qt.Assert(t, toks[0].Text, qt.Equals, "hello")
}

func TestIterateVariable(t *testing.T) {
	toks, err := word.Iterate("$foo", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.Variable)
	qt.Assert(t, toks[0].Name, qt.Equals, "foo")
}

func TestIterateArrayVariable(t *testing.T) {
	toks, err := word.Iterate("@foo", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.ArrayVariable)
	qt.Assert(t, toks[0].Name, qt.Equals, "foo")
}

func TestIterateVariableSelection(t *testing.T) {
	toks, err := word.Iterate("${foo[1]}", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	tok := toks[0]
	qt.Assert(t, tok.Kind, qt.Equals, word.Variable)
	qt.Assert(t, tok.Name, qt.Equals, "foo")
	qt.Assert(t, tok.HasSelection, qt.IsTrue)
	qt.Assert(t, tok.Selection, qt.DeepEquals, value.Selection{Kind: value.SelIndex, IndexN: 1})
}

func TestIterateCommandSubstitution(t *testing.T) {
	toks, err := word.Iterate("$(cmd arg)", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.Process)
	qt.Assert(t, toks[0].Command, qt.Equals, "cmd arg")
}

func TestIterateArithmetic(t *testing.T) {
	toks, err := word.Iterate("$((1 + 2))", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.Arithmetic)
	qt.Assert(t, toks[0].Expr, qt.Equals, "1 + 2")
}

func TestIterateArrayProcess(t *testing.T) {
	toks, err := word.Iterate("@(cmd arg)", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.ArrayProcess)
	qt.Assert(t, toks[0].Command, qt.Equals, "cmd arg")
}

func TestIterateStringMethod(t *testing.T) {
	toks, err := word.Iterate("$foo(bar, baz)", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	tok := toks[0]
	qt.Assert(t, tok.Kind, qt.Equals, word.StringMethod)
	qt.Assert(t, tok.Method, qt.Equals, "foo")
	qt.Assert(t, tok.MethodVar, qt.Equals, "bar")
	qt.Assert(t, tok.HasPattern, qt.IsTrue)
	qt.Assert(t, tok.MethodPattern, qt.Equals, "baz")
}

func TestIterateArrayLiteral(t *testing.T) {
	toks, err := word.Iterate("[a b c]", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.ArrayLit)
	qt.Assert(t, toks[0].Elements, qt.DeepEquals, []string{"a", "b", "c"})
}

func TestIterateBraceGroup(t *testing.T) {
	toks, err := word.Iterate("{a,b}", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.Brace)
	qt.Assert(t, toks[0].BraceRaw, qt.Equals, "{a,b}")
}

func TestIterateGlob(t *testing.T) {
	toks, err := word.Iterate("*.go", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 2)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.Normal)
	qt.Assert(t, toks[0].Glob, qt.IsTrue)
	qt.Assert(t, toks[0].Text, qt.Equals, "*")
	qt.Assert(t, toks[1].Kind, qt.Equals, word.Normal)
	qt.Assert(t, toks[1].Text, qt.Equals, ".go")
}

func TestIterateTilde(t *testing.T) {
	toks, err := word.Iterate("~/bin", false)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks[0].Kind, qt.Equals, word.Normal)
	qt.Assert(t, toks[0].Tilde, qt.IsTrue)
	qt.Assert(t, toks[0].Text, qt.Equals, "~")
}

func TestIterateDoubleQuotedEscapes(t *testing.T) {
	toks, err := word.Iterate(`a\nb`, true)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	qt.Assert(t, toks[0].Text, qt.Equals, "a\nb")
}

func TestIterateDoubleQuotedSuppressesGlob(t *testing.T) {
	toks, err := word.Iterate("*.go", true)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, toks, qt.HasLen, 1)
	qt.Assert(t, toks[0].Glob, qt.IsFalse)
	qt.Assert(t, toks[0].Text, qt.Equals, "*.go")
}
