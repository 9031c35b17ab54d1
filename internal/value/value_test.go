// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package value_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/redox-os/ion-sub002/internal/value"
)

func TestStringJoin(t *testing.T) {
	v := value.Array([]value.Value{value.Str("a"), value.Str("b"), value.Str("c")})
	qt.Assert(t, v.String(), qt.Equals, "a b c")
}

func TestHashMapOrder(t *testing.T) {
	v := value.HashMap([]string{"z", "a"}, map[string]value.Value{
		"z": value.Str("1"),
		"a": value.Str("2"),
	})
	qt.Assert(t, v.MapKeys(), qt.DeepEquals, []string{"z", "a"})
	got, ok := v.MapGet("a")
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, got.String(), qt.Equals, "2")
}

func TestBTreeMapSorted(t *testing.T) {
	v := value.BTreeMap(map[string]value.Value{
		"z": value.Str("1"),
		"a": value.Str("2"),
	})
	qt.Assert(t, v.MapKeys(), qt.DeepEquals, []string{"a", "z"})
}

func TestArith(t *testing.T) {
	tests := [...]struct {
		op, a, b string
		want     string
		wantErr  string
	}{
		{"+", "2", "3", "5", ""},
		{"+", "2.5", "1", "3.5", ""},
		{"/", "1", "0", "", ".*division by zero.*"},
		{"**", "2", "10", "1024", ""},
	}
	for _, test := range tests {
		test := test
		t.Run("", func(t *testing.T) {
			r, err := value.Arith(test.op, value.Str(test.a), value.Str(test.b))
			if test.wantErr != "" {
				qt.Assert(t, err, qt.ErrorMatches, test.wantErr)
				return
			}
			qt.Assert(t, err, qt.IsNil)
			qt.Assert(t, r.String(), qt.Equals, test.want)
		})
	}
}

func TestArithBroadcast(t *testing.T) {
	a := value.Array([]value.Value{value.Str("1"), value.Str("2"), value.Str("3")})
	r, err := value.Arith("*", a, value.Str("2"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, r.String(), qt.Equals, "2 4 6")
}

func TestArithBroadcastLengthMismatch(t *testing.T) {
	a := value.Array([]value.Value{value.Str("1"), value.Str("2")})
	b := value.Array([]value.Value{value.Str("1"), value.Str("2"), value.Str("3")})
	_, err := value.Arith("+", a, b)
	qt.Assert(t, err, qt.ErrorMatches, ".*array length mismatch.*")
}

func TestArithTypeError(t *testing.T) {
	fn := value.Fn(&value.Function{})
	_, err := value.Arith("+", fn, value.Str("1"))
	qt.Assert(t, err, qt.ErrorMatches, ".*type error.*")
}
