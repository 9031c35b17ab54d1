// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package lexer_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/redox-os/ion-sub002/internal/lexer"
)

func TestSplitAssign(t *testing.T) {
	tests := [...]struct {
		in   string
		want lexer.Assignment
	}{
		{
			"x = 1",
			lexer.Assignment{LHS: "x", Op: "=", HasOp: true, RHS: "1", HasRHS: true},
		},
		{
			"x += 1",
			lexer.Assignment{LHS: "x", Op: "+=", HasOp: true, RHS: "1", HasRHS: true},
		},
		{
			"x =",
			lexer.Assignment{LHS: "x", Op: "=", HasOp: true, RHS: "", HasRHS: false},
		},
		{
			"just-a-name",
			lexer.Assignment{LHS: "just-a-name"},
		},
		{
			"arr[0] = 1",
			lexer.Assignment{LHS: "arr[0]", Op: "=", HasOp: true, RHS: "1", HasRHS: true},
		},
		{
			"m[a=b] = 1",
			lexer.Assignment{LHS: "m[a=b]", Op: "=", HasOp: true, RHS: "1", HasRHS: true},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.in, func(t *testing.T) {
			got := lexer.SplitAssign(test.in)
			qt.Assert(t, got, qt.DeepEquals, test.want)
		})
	}
}
