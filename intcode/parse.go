package intcode

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads a program written as comma-separated decimal integers.
// Surrounding whitespace, including a trailing newline, is ignored.
func Parse(r io.Reader) ([]int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(b))
}

// ParseString is like Parse but reads from a string.
func ParseString(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	prog := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing program word %d: %w", i, err)
		}
		prog[i] = v
	}
	return prog, nil
}
