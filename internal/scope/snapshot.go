// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package scope

import "github.com/redox-os/ion-sub002/internal/value"

// Clone returns a deep copy of the store, used when forking a subshell:
// mutations in the child must not be visible after collection (spec.md
// §5, §4.M).
func (s *Store) Clone() *Store {
	out := &Store{frames: make([]*Frame, len(s.frames)), current: s.current}
	for i, f := range s.frames {
		nf := &Frame{vars: make(map[string]value.Value, len(f.vars)), namespace: f.namespace}
		for k, v := range f.vars {
			nf.vars[k] = v
		}
		out.frames[i] = nf
	}
	return out
}
