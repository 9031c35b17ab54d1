// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package value

import (
	"fmt"
	"strings"
)

// Primitive is a type annotation, as used in "let x:int = …" and in
// function parameter declarations (spec.md §3).
type Primitive struct {
	// Base is one of "str", "bool", "int", "float", "hmap", "bmap".
	Base string
	// Array marks the "[T]" array form of Base.
	Array bool
	// Indexed marks an "indexed(name, T)" per-element annotation, used
	// for assignments like "arr[0]:int".
	Indexed bool
	Index   string
	// Inner is the element type for hmap[T]/bmap[T]/indexed(name, T).
	Inner *Primitive
}

func (p Primitive) String() string {
	switch {
	case p.Indexed:
		return fmt.Sprintf("indexed(%s, %s)", p.Index, p.Inner)
	case p.Array:
		return "[" + p.Base + "]"
	case p.Base == "hmap", p.Base == "bmap":
		if p.Inner != nil {
			return p.Base + "[" + p.Inner.String() + "]"
		}
		return p.Base
	default:
		return p.Base
	}
}

// Key is a parsed "name[:type | [index(:type)?]]" annotation, produced
// by scanning whitespace-separated name/type sequences (spec.md §3).
type Key struct {
	Name string
	Kind Primitive
	// HasKind reports whether an explicit annotation was present; when
	// false, Kind is the zero value and callers should infer a type.
	HasKind bool
}

// ParseKeys scans a whitespace-separated sequence of
// "name[:type]"/"name[n][:type]" tokens, as used on the left-hand side
// of "let" and in function parameter lists.
func ParseKeys(s string) ([]Key, error) {
	fields := strings.Fields(s)
	keys := make([]Key, 0, len(fields))
	for _, f := range fields {
		k, err := parseKey(f)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func parseKey(tok string) (Key, error) {
	name := tok
	indexPart := ""
	// Only a '[' before the type colon opens an index; one after it
	// belongs to the type ("[int]", "hmap[str]").
	colonAt := strings.IndexByte(tok, ':')
	if i := strings.IndexByte(tok, '['); i >= 0 && (colonAt < 0 || i < colonAt) {
		end := strings.IndexByte(tok[i:], ']')
		if end < 0 {
			return Key{}, fmt.Errorf("ion: parse: unterminated index in %q", tok)
		}
		name = tok[:i]
		indexPart = tok[i+1 : i+end]
		tok = tok[:i] + tok[i+end+1:]
	}
	colon := strings.IndexByte(tok, ':')
	if colon < 0 {
		return Key{Name: name}, nil
	}
	if indexPart == "" {
		name = tok[:colon]
	}
	typeName := tok[colon+1:]
	prim, err := parsePrimitive(typeName)
	if err != nil {
		return Key{}, err
	}
	if indexPart != "" {
		prim = Primitive{Indexed: true, Index: indexPart, Inner: &prim}
	}
	return Key{Name: name, Kind: prim, HasKind: true}, nil
}

func parsePrimitive(s string) (Primitive, error) {
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner, err := parsePrimitive(s[1 : len(s)-1])
		if err != nil {
			return Primitive{}, err
		}
		inner.Array = true
		return inner, nil
	}
	for _, wrap := range []string{"hmap", "bmap"} {
		prefix := wrap + "["
		if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, "]") {
			inner, err := parsePrimitive(s[len(prefix) : len(s)-1])
			if err != nil {
				return Primitive{}, err
			}
			return Primitive{Base: wrap, Inner: &inner}, nil
		}
	}
	switch s {
	case "str", "bool", "int", "float", "hmap", "bmap":
		return Primitive{Base: s}, nil
	}
	return Primitive{}, fmt.Errorf("ion: parse: unknown type annotation %q", s)
}
