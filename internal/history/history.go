// Package history implements the persisted history file layout
// (spec.md §6) and the HISTORY_IGNORE matcher (SUPPLEMENTED FEATURES),
// grounded on original_source's src/lib/shell/history.rs
// (IgnoreSetting/should_save_command) and src/history.rs (file
// truncation on write). Reads during interactive use are delegated to
// github.com/chzyer/readline's own in-memory history ring (wired in
// cmd/ion); this package owns only the on-disk format and the
// ignore-pattern policy, and rewrites the file atomically via
// github.com/google/renameio/v2 to avoid truncating it on a crash
// mid-write.
package history

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/redox-os/ion-sub002/internal/ionerr"
)

// IgnoreKind is one HISTORY_IGNORE pattern kind (spec.md §6).
type IgnoreKind int

const (
	IgnoreAll IgnoreKind = iota
	IgnoreWhitespace
	IgnoreNoSuchCommand
	IgnoreDuplicates
)

// Matcher evaluates HISTORY_IGNORE against a candidate command line,
// first match wins, per original_source's should_save_command.
type Matcher struct {
	kinds   map[IgnoreKind]bool
	regexes []*regexp.Regexp
	seen    map[string]bool
}

// NewMatcher parses the HISTORY_IGNORE array value (spec.md §6: "all",
// "whitespace", "no_such_command", "duplicates", "regex:<expr>").
// Invalid regex patterns are skipped rather than erroring, matching
// original_source's "if let Ok(regex) = ... " silent-skip behavior.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{kinds: make(map[IgnoreKind]bool), seen: make(map[string]bool)}
	const regexPrefix = "regex:"
	for _, p := range patterns {
		switch {
		case p == "all":
			m.kinds[IgnoreAll] = true
		case p == "whitespace":
			m.kinds[IgnoreWhitespace] = true
		case p == "no_such_command":
			m.kinds[IgnoreNoSuchCommand] = true
		case p == "duplicates":
			m.kinds[IgnoreDuplicates] = true
		case strings.HasPrefix(p, regexPrefix) && len(p) > len(regexPrefix):
			if re, err := regexp.Compile(p[len(regexPrefix):]); err == nil {
				m.regexes = append(m.regexes, re)
			}
		}
	}
	return m
}

// ShouldSave reports whether command should be persisted, given the
// previous pipeline's exit status (127 signals "no such command").
// For a command containing the literal substring "HISTORY_IGNORE", the
// "all" and "regex:" rules are skipped, so the command that configures
// history ignoring is not dropped by them (original_source's comment:
// "otherwise we would also ignore the command which sets the
// variable"); the whitespace, no_such_command and duplicates rules
// still apply to it.
func (m *Matcher) ShouldSave(command string, previousStatus int) bool {
	setsIgnoreVar := strings.Contains(command, "HISTORY_IGNORE")

	if m.kinds[IgnoreAll] && !setsIgnoreVar {
		return false
	}
	if m.kinds[IgnoreWhitespace] && len(command) > 0 && isSpaceByte(command[0]) {
		return false
	}
	if m.kinds[IgnoreNoSuchCommand] && previousStatus == 127 {
		return false
	}
	if m.kinds[IgnoreDuplicates] {
		if m.seen[command] {
			return false
		}
		m.seen[command] = true
	}
	for _, re := range m.regexes {
		if re.MatchString(command) && !setsIgnoreVar {
			return false
		}
	}
	return true
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t'
}

// File is the on-disk history log: one entry per line, optionally
// preceded by a "#<unix-epoch-seconds>" timestamp line (spec.md §6).
type File struct {
	Path          string
	MaxEntries    int
	UseTimestamps bool
}

// Append writes one command, truncating the oldest entries once
// MaxEntries is exceeded, grounded on original_source's
// History::write_to_disk (count newlines, seek past the entries to
// drop, rewrite the remainder). The rewrite is done through
// renameio.NewPendingFile plus a final os.Rename-equivalent CloseAtomicallyReplace,
// so a crash mid-rewrite leaves the previous file intact rather than a
// half-written one.
func (f *File) Append(command string) error {
	if f.Path == "" || strings.TrimSpace(command) == "" {
		return nil
	}
	lines, err := f.readLines()
	if err != nil && !os.IsNotExist(err) {
		return ionerr.Wrap("history", err)
	}

	if f.UseTimestamps {
		lines = append(lines, fmt.Sprintf("#%d", time.Now().Unix()))
	}
	lines = append(lines, command)

	if f.MaxEntries > 0 {
		entryStart := firstEntryLineIndex(lines, f.MaxEntries)
		lines = lines[entryStart:]
	}

	out, err := renameio.NewPendingFile(f.Path, renameio.WithPermissions(0o600))
	if err != nil {
		return ionerr.Wrap("history", err)
	}
	defer out.Cleanup()

	w := bufio.NewWriter(out)
	for _, l := range lines {
		if _, err := w.WriteString(l + "\n"); err != nil {
			return ionerr.Wrap("history", err)
		}
	}
	if err := w.Flush(); err != nil {
		return ionerr.Wrap("history", err)
	}
	return out.CloseAtomicallyReplace()
}

// firstEntryLineIndex finds the line index to keep from so that at
// most maxEntries non-timestamp lines remain, preserving any
// timestamp line that immediately precedes a kept entry.
func firstEntryLineIndex(lines []string, maxEntries int) int {
	entries := 0
	for i := len(lines) - 1; i >= 0; i-- {
		if !isTimestampLine(lines[i]) {
			entries++
		}
		if entries == maxEntries {
			if i > 0 && isTimestampLine(lines[i-1]) {
				return i - 1
			}
			return i
		}
	}
	return 0
}

func isTimestampLine(l string) bool {
	if len(l) < 2 || l[0] != '#' {
		return false
	}
	_, err := strconv.ParseInt(l[1:], 10, 64)
	return err == nil
}

func (f *File) readLines() ([]string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	s := strings.TrimSuffix(string(data), "\n")
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "\n"), nil
}

// ReadAll returns every persisted command line (timestamp lines
// excluded), oldest first, for seeding github.com/chzyer/readline's
// history ring at startup.
func (f *File) ReadAll() ([]string, error) {
	lines, err := f.readLines()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ionerr.Wrap("history", err)
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if isTimestampLine(l) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
