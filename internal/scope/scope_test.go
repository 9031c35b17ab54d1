// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package scope_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/redox-os/ion-sub002/internal/scope"
	"github.com/redox-os/ion-sub002/internal/value"
)

func TestSetGet(t *testing.T) {
	s := scope.New()
	s.Set("x", value.Str("1"))
	got, ok := s.Get("x", scope.Any, 0)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, got.String(), qt.Equals, "1")
}

func TestNewScopePopScope(t *testing.T) {
	s := scope.New()
	s.Set("x", value.Str("outer"))
	s.NewScope(false)
	s.Set("y", value.Str("inner"))
	_, ok := s.Get("y", scope.Any, 0)
	qt.Assert(t, ok, qt.IsTrue)

	s.PopScope()
	_, ok = s.Get("y", scope.Any, 0)
	qt.Assert(t, ok, qt.IsFalse)
	got, ok := s.Get("x", scope.Any, 0)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, got.String(), qt.Equals, "outer")
}

func TestGetGlobalSkipsOneNamespaceBoundary(t *testing.T) {
	s := scope.New()
	s.Set("root_var", value.Str("root"))
	s.NewScope(true)
	got, ok := s.Get("root_var", scope.Global, 0)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, got.String(), qt.Equals, "root")
}

func TestGetGlobalStopsAtSecondNamespaceBoundary(t *testing.T) {
	s := scope.New()
	s.Set("root_var", value.Str("root"))
	s.NewScope(true)  // boundary 1
	s.NewScope(false) // plain frame inside namespace 1
	s.NewScope(true)  // boundary 2
	s.NewScope(false) // current frame

	_, ok := s.Get("root_var", scope.Global, 0)
	qt.Assert(t, ok, qt.IsFalse)
}

func TestGetSpecific(t *testing.T) {
	s := scope.New()
	s.NewScope(true) // namespace boundary; Specific(0) should search within it
	s.Set("v", value.Str("ns0"))
	s.NewScope(false)

	got, ok := s.Get("v", scope.Specific, 0)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, got.String(), qt.Equals, "ns0")
}

func TestGetMutStopsAtNamespaceBoundary(t *testing.T) {
	s := scope.New()
	s.Set("root_var", value.Str("root"))
	s.NewScope(true)
	_, ok := s.GetMut("root_var")
	qt.Assert(t, ok, qt.IsFalse)
}

func TestRemoveStopsAtNamespaceBoundary(t *testing.T) {
	s := scope.New()
	s.Set("x", value.Str("1"))
	s.NewScope(true)
	s.Set("x", value.Str("2"))
	got, ok := s.Remove("x")
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, got.String(), qt.Equals, "2")
	_, ok = s.Get("x", scope.Any, 0)
	qt.Assert(t, ok, qt.IsTrue) // root's "x" still present, untouched
}

func TestAppendScopes(t *testing.T) {
	s := scope.New()
	s.NewScope(false)
	s.AppendScopes([]bool{true, false})
	qt.Assert(t, s.Depth(), qt.Equals, 4)
	qt.Assert(t, s.Current(), qt.Equals, 3)
}

func TestEnv(t *testing.T) {
	s := scope.New()
	s.Set("A", value.Str("1"))
	s.NewScope(false)
	s.Set("A", value.Str("2"))
	s.Set("arr", value.Array([]value.Value{value.Str("x")}))

	env := s.Env()
	found := false
	for _, kv := range env {
		if kv == "A=2" {
			found = true
		}
		qt.Assert(t, kv, qt.Not(qt.Equals), "arr=x")
	}
	qt.Assert(t, found, qt.IsTrue)
}
