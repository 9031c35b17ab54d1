// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"fmt"

	"github.com/redox-os/ion-sub002/internal/scope"
	"github.com/redox-os/ion-sub002/internal/value"
)

// ResolveAlias performs the single-level textual substitution of a
// command's first word against any registered Alias value, cycle
// guarded. This supplements spec.md's Value::Alias variant (§3), which
// names the variant but does not specify an operation; original_source's
// src/lib/builtins/variables.rs shows aliases resolved this way, as a
// substitution of the first word before the rest of the Expander runs.
func ResolveAlias(store *scope.Store, line string) (string, error) {
	seen := map[string]bool{}
	for {
		first, rest := splitFirstWord(line)
		if first == "" {
			return line, nil
		}
		v, ok := store.Get(first, scope.Any, 0)
		if !ok || v.Kind != value.KindAlias {
			return line, nil
		}
		if seen[first] {
			return "", fmt.Errorf("ion: expansion: alias cycle detected at %q", first)
		}
		seen[first] = true
		line = v.String()
		if rest != "" {
			line += " " + rest
		}
	}
}

func splitFirstWord(s string) (first, rest string) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	start := i
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	first = s[start:i]
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	rest = s[i:]
	return first, rest
}
