// Package content implements the contents search mode: scanning files for a
// literal key and reporting line/column positions with a bounded excerpt.
package content

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// maxLeadingContext is the number of runes kept before the first
	// occurrence of the key when a match sits deep inside a long line.
	maxLeadingContext = 20

	// maxExcerptLen caps the rendered excerpt length in runes.
	maxExcerptLen = 80

	// sniffLen is how many bytes are inspected for the binary check.
	sniffLen = 8192

	// maxLineLen bounds the scanner buffer for files with very long lines.
	maxLineLen = 1024 * 1024
)

// LineMatch is one matching line within a file.
type LineMatch struct {
	// Line and Column are 1-based; Column counts runes before the first
	// occurrence of the key.
	Line   int
	Column int
	// Excerpt is the trimmed line, truncated around the first match.
	Excerpt string
}

// SearchFile scans the file at path for literal occurrences of key and
// returns one LineMatch per matching line.
//
// Files that look binary (NUL byte within the first 8 KiB) return no
// matches and no error: content search is a text-file feature and binary
// noise would drown the output.
func SearchFile(path, key string) ([]LineMatch, error) {
	if key == "" {
		return nil, fmt.Errorf("search key must not be empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sniff := make([]byte, sniffLen)
	n, err := f.Read(sniff)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if bytes.IndexByte(sniff[:n], 0) >= 0 {
		return nil, nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	var matches []LineMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineLen)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		idx := strings.Index(line, key)
		if idx < 0 {
			continue
		}
		matches = append(matches, LineMatch{
			Line:    lineNum,
			Column:  len([]rune(line[:idx])) + 1,
			Excerpt: makeExcerpt(line, key),
		})
	}
	if err := scanner.Err(); err != nil {
		return matches, fmt.Errorf("scan %s: %w", path, err)
	}
	return matches, nil
}

// makeExcerpt trims the line and truncates it around the first occurrence
// of the key so very long lines stay readable: at most maxLeadingContext
// runes before the match and maxExcerptLen runes overall.
func makeExcerpt(line, key string) string {
	trimmed := strings.TrimSpace(line)
	runes := []rune(trimmed)

	idx := strings.Index(trimmed, key)
	if idx > 0 {
		lead := len([]rune(trimmed[:idx]))
		if lead > maxLeadingContext {
			runes = runes[lead-maxLeadingContext:]
		}
	}
	if len(runes) > maxExcerptLen {
		runes = runes[:maxExcerptLen]
	}
	return string(runes)
}
