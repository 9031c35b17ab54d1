// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package rng

import (
	"strconv"
	"strings"

	"github.com/redox-os/ion-sub002/internal/value"
)

// ParseSelection parses the contents of a "[...]" index/selection clause
// into a value.Selection: "n", "-n", "a..b", or "key" (spec.md §4.A).
func ParseSelection(s string) (value.Selection, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return value.Selection{Kind: value.SelAll}, nil
	}
	if s == "@" || s == ".." {
		return value.Selection{Kind: value.SelAll}, nil
	}
	if strings.Contains(s, "..") {
		return parseRangeSelection(s)
	}
	if n, ok := parseSignedInt(s); ok {
		if n < 0 {
			return value.Selection{Kind: value.SelIndex, IndexN: -n - 1, IndexBackward: true}, nil
		}
		return value.Selection{Kind: value.SelIndex, IndexN: n}, nil
	}
	return value.Selection{Kind: value.SelKey, KeyName: s}, nil
}

func parseSignedInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseRangeSelection(s string) (value.Selection, error) {
	inclusive := false
	parts := strings.SplitN(s, "..", 2)
	left, right := parts[0], parts[1]
	if strings.HasPrefix(right, ".") || strings.HasPrefix(right, "=") {
		inclusive = true
		right = strings.TrimLeft(right, ".=")
	}
	sel := value.Selection{Kind: value.SelRange, Inclusive: inclusive, Step: 1}
	if left != "" {
		n, ok := parseSignedInt(left)
		if !ok {
			return value.Selection{}, strconvErr(left)
		}
		sel.HasStart = true
		if n < 0 {
			sel.StartBackward = true
			sel.Start = -n
		} else {
			sel.Start = n
		}
	}
	if right != "" {
		n, ok := parseSignedInt(right)
		if !ok {
			return value.Selection{}, strconvErr(right)
		}
		sel.HasEnd = true
		if n < 0 {
			sel.EndBackward = true
			sel.End = -n
		} else {
			sel.End = n
		}
	}
	return sel, nil
}

func strconvErr(s string) error {
	return &strconv.NumError{Func: "ParseSelection", Num: s, Err: strconv.ErrSyntax}
}
