// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package value

// SelectionKind tags the Selection variants of spec.md §3.
type SelectionKind int

const (
	SelAll SelectionKind = iota
	SelIndex
	SelRange
	SelKey
	SelNone
)

// Selection is applied to an array or map reference: All, Index(forward
// or backward), Range(start?, end?, step?, inclusive), Key(text), or
// None.
type Selection struct {
	Kind SelectionKind

	// Index
	IndexN        int
	IndexBackward bool

	// Range
	HasStart, HasEnd bool
	Start, End       int
	StartBackward    bool
	EndBackward      bool
	Step             int
	Inclusive        bool

	// Key
	KeyName string
}

// resolveIndex maps a forward/backward index against a container length.
func resolveIndex(n int, backward bool, length int) (int, bool) {
	if backward {
		n = length - 1 - n
	}
	if n < 0 || n >= length {
		return 0, false
	}
	return n, true
}

// Bounds resolves a Selection against a container of the given length,
// returning the list of indices to select, in order. Out-of-range
// selections yield an empty, non-error result (spec.md §4.A).
func (s Selection) Bounds(length int) []int {
	switch s.Kind {
	case SelAll:
		out := make([]int, length)
		for i := range out {
			out[i] = i
		}
		return out
	case SelIndex:
		if idx, ok := resolveIndex(s.IndexN, s.IndexBackward, length); ok {
			return []int{idx}
		}
		return nil
	case SelRange:
		return s.rangeBounds(length)
	default:
		return nil
	}
}

func (s Selection) rangeBounds(length int) []int {
	start := 0
	if s.HasStart {
		if s.StartBackward {
			start = length - s.Start
		} else {
			start = s.Start
		}
	}
	end := length
	if s.HasEnd {
		if s.EndBackward {
			end = length - s.End
		} else {
			end = s.End
		}
		if s.Inclusive {
			end++
		}
	}
	if start < 0 {
		start = 0
	}
	if start >= length {
		return nil
	}
	if end > length {
		end = length
	}
	if end < start {
		return nil
	}
	step := s.Step
	if step == 0 {
		step = 1
	}
	var out []int
	if step > 0 {
		for i := start; i < end; i += step {
			out = append(out, i)
		}
	} else {
		for i := end - 1; i >= start; i += step {
			out = append(out, i)
		}
	}
	return out
}

// Select applies the Selection to a Value, returning the matched
// elements (or map values, for SelKey).
func (s Selection) Select(v Value) []Value {
	switch s.Kind {
	case SelKey:
		if e, ok := v.MapGet(s.KeyName); ok {
			return []Value{e}
		}
		return nil
	case SelNone:
		return nil
	default:
		elems := v.Elements()
		if elems == nil && v.Kind == KindStr {
			// A bare scalar is addressable as a length-1 sequence.
			elems = []Value{v}
		}
		idxs := s.Bounds(len(elems))
		out := make([]Value, 0, len(idxs))
		for _, i := range idxs {
			out = append(out, elems[i])
		}
		return out
	}
}
