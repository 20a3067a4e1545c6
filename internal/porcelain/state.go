// Package porcelain parses `git status --porcelain` (v1) output into
// classified changes.
// This file defines the closed set of per-side status codes.
package porcelain

// Kind is the closed enumeration of porcelain status codes.
type Kind int

// Status kinds. KindOther carries any code git may add in the future
// (for example '!' or 'T'); its character is kept in State.Char.
const (
	KindUnmodified Kind = iota
	KindModified
	KindAdded
	KindDeleted
	KindRenamed
	KindCopied
	KindUpdated
	KindUntracked
	KindOther
)

// State is one side (index or working tree) of a status line.
type State struct {
	Kind Kind
	Char byte
}

// ParseState maps a porcelain status character to its State.
func ParseState(c byte) State {
	var k Kind
	switch c {
	case ' ':
		k = KindUnmodified
	case 'M':
		k = KindModified
	case 'A':
		k = KindAdded
	case 'D':
		k = KindDeleted
	case 'R':
		k = KindRenamed
	case 'C':
		k = KindCopied
	case 'U':
		k = KindUpdated
	case '?':
		k = KindUntracked
	default:
		k = KindOther
	}
	return State{Kind: k, Char: c}
}

// Unmodified is the blank state.
//
//nolint:gochecknoglobals // Immutable value used as a constant
var Unmodified = ParseState(' ')

// Untracked is the '?' state used for files found by directory expansion.
//
//nolint:gochecknoglobals // Immutable value used as a constant
var Untracked = ParseState('?')

// Meaningful reports whether the state is anything other than blank.
func (s State) Meaningful() bool {
	return s.Kind != KindUnmodified
}

// Staged reports whether the state, read from the index column, means the
// change is in the staging area.
func (s State) Staged() bool {
	return s.Meaningful() && s.Kind != KindUntracked
}

// Code returns the display code. Untracked is shown as "??".
func (s State) Code() string {
	if s.Kind == KindUntracked {
		return "??"
	}
	return string(s.Char)
}

// String returns the human-readable label.
func (s State) String() string {
	return Label(s.Code())
}

// Label returns the human-readable label for a status code.
// Codes without a label are returned unchanged.
func Label(code string) string {
	switch code {
	case "M":
		return "Modified"
	case "A":
		return "Added"
	case "D":
		return "Deleted"
	case "R":
		return "Renamed"
	case "??":
		return "Untracked"
	default:
		return code
	}
}
