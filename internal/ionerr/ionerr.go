// Package ionerr formats the shell's "ion: <subsystem>: <detail>"
// diagnostic messages uniformly, matching the prefix spec.md uses
// throughout its error examples.
package ionerr

import "fmt"

// New formats a shell-facing error in the "ion: <subsystem>: <detail>"
// shape used throughout spec.md (e.g. "ion: lexer: unmatched brace").
func New(subsystem, format string, args ...interface{}) error {
	return fmt.Errorf("ion: %s: %s", subsystem, fmt.Sprintf(format, args...))
}

// Wrap prefixes an existing error with its subsystem, preserving it for
// errors.Is/errors.As via %w.
func Wrap(subsystem string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ion: %s: %w", subsystem, err)
}
