// Package git provides Git operations for gitbatch.
// This file parses line-count statistics.
package git

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

// LineStats holds added and deleted line counts for one path.
type LineStats struct {
	Added   int
	Deleted int
	// Available is false when git reported no counts (binary files, pure
	// renames, no diff at all).
	Available bool
}

// Total returns Added + Deleted.
func (s LineStats) Total() int {
	return s.Added + s.Deleted
}

// ParseNumstat parses git diff --numstat output.
// Each line is: additions\tdeletions\tfilename; binary files show "-\t-\tfilename".
// Counts from every numeric line are summed. Stats are unavailable when no
// line carries numbers.
func ParseNumstat(output string) LineStats {
	var stats LineStats
	for _, line := range strings.Split(output, "\n") {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) < 3 {
			continue
		}

		// Skip binary files (shown as "-")
		if parts[0] == "-" || parts[1] == "-" {
			continue
		}

		add, addErr := strconv.Atoi(parts[0])
		del, delErr := strconv.Atoi(parts[1])
		if addErr != nil || delErr != nil {
			continue
		}
		stats.Added += add
		stats.Deleted += del
		stats.Available = true
	}
	return stats
}

// countLines counts newline-terminated lines in r, plus a final unterminated
// line. Content containing a NUL byte is treated as binary and reported as
// unavailable, matching how git numstat treats it.
func countLines(r io.Reader) (LineStats, error) {
	br := bufio.NewReader(r)
	buf := make([]byte, 32*1024)
	lines := 0
	var last byte
	seen := false

	for {
		n, err := br.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if bytes.IndexByte(chunk, 0) >= 0 {
				return LineStats{}, nil
			}
			lines += bytes.Count(chunk, []byte{'\n'})
			last = chunk[n-1]
			seen = true
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return LineStats{}, err
		}
	}

	if seen && last != '\n' {
		lines++
	}
	if !seen {
		// An empty file is a valid zero-line addition.
		return LineStats{Available: true}, nil
	}
	return LineStats{Added: lines, Available: true}, nil
}
