// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/redox-os/ion-sub002/internal/expand"
	"github.com/redox-os/ion-sub002/internal/scope"
	"github.com/redox-os/ion-sub002/internal/value"
)

func TestResolveAliasSubstitutesFirstWord(t *testing.T) {
	s := scope.New()
	s.Set("ll", value.AliasOf("ls -l"))
	got, err := expand.ResolveAlias(s, "ll /tmp")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got, qt.Equals, "ls -l /tmp")
}

func TestResolveAliasNoAlias(t *testing.T) {
	s := scope.New()
	got, err := expand.ResolveAlias(s, "echo hi")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, got, qt.Equals, "echo hi")
}

func TestResolveAliasCycleDetected(t *testing.T) {
	s := scope.New()
	s.Set("a", value.AliasOf("b"))
	s.Set("b", value.AliasOf("a"))
	_, err := expand.ResolveAlias(s, "a")
	qt.Assert(t, err, qt.ErrorMatches, ".*alias cycle detected.*")
}
