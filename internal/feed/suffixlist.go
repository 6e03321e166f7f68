package feed

import (
	"bufio"
	"io"
	"strings"
)

const icannMarker = "===BEGIN ICANN DOMAINS==="

// ParseSuffixList reads the public suffix list into raw lines. Interpreting
// the lines is left to the registry builder.
func ParseSuffixList(r io.Reader) ([]string, error) {
	const source = "public suffix list"

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		lines []string
		icann bool
	)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, icannMarker) {
			icann = true
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, NewParseErrorWithCause(source, len(lines)+1, "read failed", err)
	}
	if !icann {
		return nil, NewParseError(source, 0, "missing "+icannMarker+" marker")
	}
	return lines, nil
}
