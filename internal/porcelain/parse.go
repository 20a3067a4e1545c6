// Package porcelain parses `git status --porcelain` (v1) output into
// classified changes.
// This file implements the single-line parser.
package porcelain

import (
	"errors"
	"fmt"
	"strings"

	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

// renameSeparator separates the source and destination of a rename or copy.
const renameSeparator = " -> "

// ParsedLine is one status line broken into its parts.
type ParsedLine struct {
	Index    State
	Worktree State
	// Path is the decoded, repository-relative path (the destination for
	// renames and copies).
	Path string
	// OrigPath is the decoded source path of a rename or copy.
	OrigPath string
	// NeedsExpansion is set for untracked directories ("?? dir/"), which git
	// reports as a single entry.
	NeedsExpansion bool
	// Warning is set when a quoted path could not be decoded as UTF-8 and the
	// raw text was used instead.
	Warning *gberrors.DecodeWarning
}

// Parse parses one porcelain v1 line: two state characters, a separator and
// the path payload.
func Parse(line string) (ParsedLine, error) {
	line = strings.TrimSuffix(line, "\r")
	if len(line) < 4 {
		return ParsedLine{}, fmt.Errorf("%q: %w", line, gberrors.ErrMalformedStatusLine)
	}

	p := ParsedLine{
		Index:    ParseState(line[0]),
		Worktree: ParseState(line[1]),
	}
	if !p.Index.Meaningful() && !p.Worktree.Meaningful() {
		return ParsedLine{}, fmt.Errorf("%q: both states blank: %w", line, gberrors.ErrMalformedStatusLine)
	}

	payload := line[3:]
	if p.isRenameOrCopy() {
		if orig, dest, ok := splitRename(payload); ok {
			p.OrigPath = p.decode(orig)
			payload = dest
		}
	}
	p.Path = p.decode(payload)

	p.NeedsExpansion = strings.HasSuffix(p.Path, "/") &&
		(p.Index.Kind == KindUntracked || p.Worktree.Kind == KindUntracked)

	return p, nil
}

func (p *ParsedLine) isRenameOrCopy() bool {
	for _, s := range []State{p.Index, p.Worktree} {
		if s.Kind == KindRenamed || s.Kind == KindCopied {
			return true
		}
	}
	return false
}

// decode unquotes one path, keeping the first warning.
func (p *ParsedLine) decode(payload string) string {
	path, err := Unquote(payload)
	var w *gberrors.DecodeWarning
	if errors.As(err, &w) && p.Warning == nil {
		p.Warning = w
	}
	return path
}

// splitRename splits "old -> new". The source may be quoted, in which case
// the separator is searched after its closing quote.
func splitRename(payload string) (orig, dest string, ok bool) {
	if strings.HasPrefix(payload, `"`) {
		end := closingQuote(payload)
		if end > 0 && strings.HasPrefix(payload[end+1:], renameSeparator) {
			return payload[:end+1], payload[end+1+len(renameSeparator):], true
		}
	}

	orig, dest, ok = strings.Cut(payload, renameSeparator)
	return orig, dest, ok
}

// closingQuote returns the index of the quote closing the one at index 0,
// skipping backslash escapes, or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
