package globmatch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Expand walks the filesystem for every path matching the shell glob
// pattern, splitting on "/" and compiling one path component at a time
// so a literal directory component (no metacharacters) is just
// stat'd rather than matched against via ReadDir, matching the spec's
// "expand that argument against the filesystem; if no matches, keep it
// literal" step (spec.md §4.H step 3). Results are returned sorted, the
// same order bash and filepath.Glob both produce.
func Expand(pattern string) ([]string, error) {
	if !HasMeta(pattern) {
		if _, err := os.Lstat(pattern); err != nil {
			return nil, nil
		}
		return []string{pattern}, nil
	}

	abs := strings.HasPrefix(pattern, "/")
	parts := strings.Split(pattern, "/")
	start := "."
	if abs {
		start = "/"
		parts = parts[1:]
	}

	matches := []string{start}
	for _, part := range parts {
		if part == "" {
			continue
		}
		var next []string
		literal := !HasMeta(part)
		for _, dir := range matches {
			if literal {
				candidate := filepath.Join(dir, part)
				if _, err := os.Lstat(candidate); err == nil {
					next = append(next, candidate)
				}
				continue
			}
			re, err := Compile(part)
			if err != nil {
				return nil, nil
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, ent := range entries {
				name := ent.Name()
				if strings.HasPrefix(name, ".") && !strings.HasPrefix(part, ".") {
					continue
				}
				if re.MatchString(name) {
					next = append(next, filepath.Join(dir, name))
				}
			}
		}
		matches = next
	}

	sort.Strings(matches)
	return matches, nil
}
