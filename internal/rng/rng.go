// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package rng implements range parsing and sequence generation
// (spec.md §4.A): "a..b", "a...b", "a..step..b" and their index-bounds
// counterparts used by "${name[sel]}".
package rng

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse recognizes the textual range forms named in spec.md §4.A and
// generates the resulting sequence of strings.
//
//	s..e       exclusive, unstepped
//	s...e      inclusive, unstepped
//	s..=e      inclusive, unstepped (alternate spelling)
//	s..k..e    exclusive, stepped
//	s..k...e   inclusive, stepped
//	s..k..=e   inclusive, stepped (alternate spelling)
//
// The open-ended forms "s.." and "..e" have no container to bound
// against and are rejected with an error.
func Parse(input string) ([]string, error) {
	parts := strings.Split(input, "..")
	n := len(parts)
	if n < 2 || n > 3 {
		return nil, fmt.Errorf("ion: parse: malformed range %q", input)
	}
	inclusive := false
	last := parts[n-1]
	if strings.HasPrefix(last, ".") || strings.HasPrefix(last, "=") {
		inclusive = true
		parts[n-1] = strings.TrimLeft(last, ".=")
	}
	switch n {
	case 2:
		return finish(inclusive, parts[0], parts[1], 1, false)
	case 3:
		step, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("ion: parse: malformed range step %q", parts[1])
		}
		return finish(inclusive, parts[0], parts[2], step, true)
	}
	return nil, fmt.Errorf("ion: parse: malformed range %q", input)
}

func finish(inclusive bool, startStr, endStr string, step int, explicitStep bool) ([]string, error) {
	start, errS := strconv.Atoi(startStr)
	end, errE := strconv.Atoi(endStr)
	if errS == nil && errE == nil {
		if !explicitStep && start > end {
			step = -step
		}
		digits := maxInt(countMinDigits(startStr), countMinDigits(endStr))
		return numericRange(start, end, step, inclusive, digits)
	}
	if len(startStr) != 1 || len(endStr) != 1 {
		return nil, fmt.Errorf("ion: parse: non-numeric range endpoints must be single characters")
	}
	return charRange(startStr[0], endStr[0], step, inclusive)
}

// countMinDigits returns the zero-padded width implied by a leading zero
// in the textual representation, 0 if none (spec.md §4.A).
func countMinDigits(s string) int {
	t := strings.TrimPrefix(s, "-")
	if t == "" {
		return 0
	}
	if t[0] == '0' {
		return len(s)
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func numericRange(start, end, step int, inclusive bool, digits int) ([]string, error) {
	if step == 0 {
		return nil, fmt.Errorf("ion: calculation: range step cannot be zero")
	}
	if start < end && inclusive {
		end++
	} else if start > end && inclusive {
		end--
	}
	if (start < end && step < 0) || (start > end && step > 0) {
		return nil, nil // empty, not an error
	}
	var out []string
	if start <= end {
		for i := start; i < end; i += step {
			out = append(out, pad(i, digits))
		}
	} else {
		for i := start; i > end; i += step {
			out = append(out, pad(i, digits))
		}
	}
	return out, nil
}

func pad(n, digits int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	for len(body) < digits {
		body = "0" + body
	}
	if neg {
		return "-" + body
	}
	return body
}

func charRange(start, end byte, step int, inclusive bool) ([]string, error) {
	if !isLetter(start) || !isLetter(end) || step == 0 {
		return nil, fmt.Errorf("ion: parse: character range endpoints must be same-case letters")
	}
	if sameCase(start, end) == false {
		return nil, fmt.Errorf("ion: parse: character range endpoints must share case")
	}
	if inclusive {
		if start < end {
			end++
		} else {
			end--
		}
	}
	abs := step
	if abs < 0 {
		abs = -abs
	}
	var out []string
	if start < end {
		for c := int(start); c < int(end); c += abs {
			out = append(out, string(rune(byte(c))))
		}
	} else {
		for c := int(start); c > int(end); c -= abs {
			out = append(out, string(rune(byte(c))))
		}
	}
	return out, nil
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func sameCase(a, b byte) bool {
	aLower := a >= 'a' && a <= 'z'
	bLower := b >= 'a' && b <= 'z'
	return aLower == bLower
}

// Count returns the number of elements Parse(input) produces. It calls
// Parse and measures the result, so the sequence is materialized; used
// by the closed-form-count testable property in spec.md §8.
func Count(input string) (int, error) {
	seq, err := Parse(input)
	if err != nil {
		return 0, err
	}
	return len(seq), nil
}
