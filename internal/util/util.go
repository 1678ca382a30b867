// Package util provides helpers for the SQF strings the game passes in.
package util

import (
	"errors"
	"strings"
)

// ErrNotBool is returned by ParseSQFBool for anything but true/false.
var ErrNotBool = errors.New("not an SQF boolean")

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArg trims surrounding quotes and whitespace and unescapes inner quotes.
func CleanArg(s string) string {
	return FixEscapeQuotes(TrimQuotes(strings.TrimSpace(s)))
}

// Contains reports whether str is in slice.
func Contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

// ParseSQFBool parses SQF true/false (any case, optionally quoted).
func ParseSQFBool(s string) (bool, error) {
	switch strings.ToLower(CleanArg(s)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, ErrNotBool
}

// ParseSQFBoolArray parses a stringified SQF array of booleans.
// Input format: [true,false,true]
func ParseSQFBoolArray(s string) ([]bool, error) {
	s = strings.TrimSpace(CleanArg(s))
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, ErrNotBool
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ",")
	out := make([]bool, 0, len(parts))
	for _, p := range parts {
		b, err := ParseSQFBool(p)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

