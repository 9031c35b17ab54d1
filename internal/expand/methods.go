// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/redox-os/ion-sub002/internal/value"
)

// whitespacePattern is the fixed-arity default pattern for methods whose
// "pattern source" is omitted (spec.md §4.F StringMethod: "pattern =
// second arg or whitespace-pattern").
const whitespacePattern = " \t\n"

func init() {
	Methods["join"] = methodJoin
	Methods["split"] = methodSplit
	Methods["chars"] = methodChars
	Methods["bytes"] = methodBytes
	Methods["len"] = methodLen
	Methods["reverse"] = methodReverse
	Methods["contains"] = methodContains
	Methods["starts_with"] = methodStartsWith
	Methods["ends_with"] = methodEndsWith
	Methods["to_lowercase"] = methodToLower
	Methods["to_uppercase"] = methodToUpper
	Methods["replace"] = methodReplace
	Methods["replacen"] = methodReplacen
	Methods["find"] = methodFind
	Methods["repeat"] = methodRepeat
	Methods["or"] = methodOr
	Methods["nth"] = methodNth
	Methods["count"] = methodCount
	Methods["map_keys"] = methodMapKeys
	Methods["map_values"] = methodMapValues
	Methods["unescape"] = methodUnescape
	Methods["escape"] = methodEscape
	Methods["filter"] = methodFilter
}

func methodJoin(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	sep := " "
	if hasPattern {
		sep = pattern
	}
	elems := v.Elements()
	strs := make([]string, len(elems))
	for i, e := range elems {
		strs[i] = e.String()
	}
	return value.Str(strings.Join(strs, sep)), nil
}

func methodSplit(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	sep := whitespacePattern
	s := v.String()
	var parts []string
	if !hasPattern {
		parts = strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(sep, r) })
	} else {
		parts = strings.Split(s, pattern)
	}
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.Str(p)
	}
	return value.Array(out), nil
}

func methodChars(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	s := v.String()
	out := make([]value.Value, 0, len(s))
	for _, r := range s {
		out = append(out, value.Str(string(r)))
	}
	return value.Array(out), nil
}

func methodBytes(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	s := v.String()
	out := make([]value.Value, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = value.Str(strconv.Itoa(int(s[i])))
	}
	return value.Array(out), nil
}

func methodLen(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if v.Kind == value.KindArray {
		return value.Str(strconv.Itoa(len(v.Elements()))), nil
	}
	return value.Str(strconv.Itoa(len([]rune(v.String())))), nil
}

func methodReverse(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if v.Kind == value.KindArray {
		elems := v.Elements()
		out := make([]value.Value, len(elems))
		for i, e := range elems {
			out[len(elems)-1-i] = e
		}
		return value.Array(out), nil
	}
	r := []rune(v.String())
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return value.Str(string(r)), nil
}

func methodContains(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if !hasPattern {
		return value.Value{}, fmt.Errorf("contains requires a pattern argument")
	}
	if strings.Contains(v.String(), pattern) {
		return value.Str("true"), nil
	}
	return value.Str("false"), nil
}

func methodStartsWith(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if !hasPattern {
		return value.Value{}, fmt.Errorf("starts_with requires a pattern argument")
	}
	return value.Str(strconv.FormatBool(strings.HasPrefix(v.String(), pattern))), nil
}

func methodEndsWith(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if !hasPattern {
		return value.Value{}, fmt.Errorf("ends_with requires a pattern argument")
	}
	return value.Str(strconv.FormatBool(strings.HasSuffix(v.String(), pattern))), nil
}

func methodToLower(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	return value.Str(strings.ToLower(v.String())), nil
}

func methodToUpper(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	return value.Str(strings.ToUpper(v.String())), nil
}

func methodReplace(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	from, to, ok := splitPatternPair(pattern)
	if !ok {
		return value.Value{}, fmt.Errorf("replace requires \"from,to\"")
	}
	return value.Str(strings.ReplaceAll(v.String(), from, to)), nil
}

func methodReplacen(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	from, rest, ok := splitPatternPair(pattern)
	if !ok {
		return value.Value{}, fmt.Errorf("replacen requires \"from,to,count\"")
	}
	to, countStr, ok := splitPatternPair(rest)
	if !ok {
		return value.Value{}, fmt.Errorf("replacen requires \"from,to,count\"")
	}
	n, err := strconv.Atoi(countStr)
	if err != nil {
		return value.Value{}, fmt.Errorf("replacen count must be numeric: %w", err)
	}
	return value.Str(strings.Replace(v.String(), from, to, n)), nil
}

func splitPatternPair(pattern string) (string, string, bool) {
	i := strings.IndexByte(pattern, ',')
	if i < 0 {
		return "", "", false
	}
	return pattern[:i], pattern[i+1:], true
}

func methodFind(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if !hasPattern {
		return value.Value{}, fmt.Errorf("find requires a pattern argument")
	}
	return value.Str(strconv.Itoa(strings.Index(v.String(), pattern))), nil
}

func methodRepeat(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if !hasPattern {
		return value.Value{}, fmt.Errorf("repeat requires a count argument")
	}
	n, err := strconv.Atoi(pattern)
	if err != nil || n < 0 {
		return value.Value{}, fmt.Errorf("repeat count must be a non-negative integer")
	}
	return value.Str(strings.Repeat(v.String(), n)), nil
}

func methodOr(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if v.String() != "" {
		return v, nil
	}
	return value.Str(pattern), nil
}

func methodNth(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if !hasPattern {
		return value.Value{}, fmt.Errorf("nth requires an index argument")
	}
	n, err := strconv.Atoi(pattern)
	if err != nil {
		return value.Value{}, fmt.Errorf("nth index must be numeric: %w", err)
	}
	elems := v.Elements()
	if elems == nil {
		elems = []value.Value{v}
	}
	if n < 0 {
		n = len(elems) + n
	}
	if n < 0 || n >= len(elems) {
		return value.Str(""), nil
	}
	return elems[n], nil
}

func methodCount(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if !hasPattern {
		return value.Value{}, fmt.Errorf("count requires a pattern argument")
	}
	return value.Str(strconv.Itoa(strings.Count(v.String(), pattern))), nil
}

func methodMapKeys(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	keys := v.MapKeys()
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = value.Str(k)
	}
	return value.Array(out), nil
}

func methodMapValues(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	keys := v.MapKeys()
	out := make([]value.Value, 0, len(keys))
	for _, k := range keys {
		if e, ok := v.MapGet(k); ok {
			out = append(out, e)
		}
	}
	return value.Array(out), nil
}

func methodUnescape(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	s, _ := strconv.Unquote(`"` + v.String() + `"`)
	return value.Str(s), nil
}

func methodEscape(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	return value.Str(strconv.Quote(v.String())), nil
}

func methodFilter(c *Config, v value.Value, pattern string, hasPattern bool) (value.Value, error) {
	if !hasPattern {
		return value.Value{}, fmt.Errorf("filter requires a pattern argument")
	}
	elems := v.Elements()
	out := make([]value.Value, 0, len(elems))
	for _, e := range elems {
		if strings.Contains(e.String(), pattern) {
			out = append(out, e)
		}
	}
	return value.Array(out), nil
}
