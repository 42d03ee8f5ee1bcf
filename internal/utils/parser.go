package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeNameVersion normalizes module spec formats so that
// "name/version", "name=version", "name@version" are treated the same.
// Converts = and @ to /, and -- to /, then strips whitespace.
func NormalizeNameVersion(nameVersion string) string {
	s := strings.TrimSpace(nameVersion)
	s = strings.ReplaceAll(s, "=", "/")
	s = strings.ReplaceAll(s, "@", "/")
	s = strings.ReplaceAll(s, "--", "/")
	return s
}

// ParseCount parses a strictly positive integer from a string.
// Returns an error for empty, non-numeric, zero or negative input.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty count")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid count: %s", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("count must be positive: %d", n)
	}
	return n, nil
}
