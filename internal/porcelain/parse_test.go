package porcelain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gberrors "github.com/ItsDalk-Lane/gitbatch/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name           string
		line           string
		wantIndex      byte
		wantWorktree   byte
		wantPath       string
		wantOrig       string
		needsExpansion bool
	}{
		{name: "staged modification", line: "M  notes/a.md", wantIndex: 'M', wantWorktree: ' ', wantPath: "notes/a.md"},
		{name: "unstaged modification", line: " M notes/a.md", wantIndex: ' ', wantWorktree: 'M', wantPath: "notes/a.md"},
		{name: "untracked file", line: "?? notes/b.md", wantIndex: '?', wantWorktree: '?', wantPath: "notes/b.md"},
		{name: "path with spaces", line: "A  my notes/first day.md", wantIndex: 'A', wantWorktree: ' ', wantPath: "my notes/first day.md"},
		{name: "untracked directory", line: "?? drafts/", wantIndex: '?', wantWorktree: '?', wantPath: "drafts/", needsExpansion: true},
		{name: "tracked path ending in slash is not expanded", line: "A  sub/", wantIndex: 'A', wantWorktree: ' ', wantPath: "sub/"},
		{name: "rename", line: "R  old.md -> new.md", wantIndex: 'R', wantWorktree: ' ', wantPath: "new.md", wantOrig: "old.md"},
		{name: "arrow in non-rename path is kept", line: "?? a -> b.md", wantIndex: '?', wantWorktree: '?', wantPath: "a -> b.md"},
		{
			name:      "rename with quoted sides",
			line:      `R  "old \"x\" -> y.md" -> "\346\226\260.md"`,
			wantIndex: 'R', wantWorktree: ' ',
			wantPath: "新.md",
			wantOrig: `old "x" -> y.md`,
		},
		{name: "copy", line: "C  a.md -> b.md", wantIndex: 'C', wantWorktree: ' ', wantPath: "b.md", wantOrig: "a.md"},
		{name: "carriage return stripped", line: "M  a.md\r", wantIndex: 'M', wantWorktree: ' ', wantPath: "a.md"},
		{name: "unknown code passes through", line: " T link", wantIndex: ' ', wantWorktree: 'T', wantPath: "link"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.wantIndex, p.Index.Char)
			assert.Equal(t, tc.wantWorktree, p.Worktree.Char)
			assert.Equal(t, tc.wantPath, p.Path)
			assert.Equal(t, tc.wantOrig, p.OrigPath)
			assert.Equal(t, tc.needsExpansion, p.NeedsExpansion)
			assert.Nil(t, p.Warning)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, line := range []string{"", "M", "M ", "M  ", "   x"} {
		t.Run(line, func(t *testing.T) {
			_, err := Parse(line)
			require.ErrorIs(t, err, gberrors.ErrMalformedStatusLine)
		})
	}
}

func TestParse_QuotedCJK(t *testing.T) {
	p, err := Parse(`?? "\346\226\207\346\241\243.md"`)
	require.NoError(t, err)

	assert.Equal(t, "文档.md", p.Path)
	assert.Len(t, []rune("文档"), 2)
	assert.Nil(t, p.Warning)
}

func TestParse_InvalidUTF8FallsBack(t *testing.T) {
	p, err := Parse(`?? "\377bad.md"`)
	require.NoError(t, err)

	require.NotNil(t, p.Warning)
	require.ErrorIs(t, p.Warning, gberrors.ErrInvalidUTF8Path)
	assert.Equal(t, `\377bad.md`, p.Path)
}

func TestParseState(t *testing.T) {
	tests := []struct {
		char       byte
		kind       Kind
		meaningful bool
		staged     bool
		code       string
		label      string
	}{
		{' ', KindUnmodified, false, false, " ", " "},
		{'M', KindModified, true, true, "M", "Modified"},
		{'A', KindAdded, true, true, "A", "Added"},
		{'D', KindDeleted, true, true, "D", "Deleted"},
		{'R', KindRenamed, true, true, "R", "Renamed"},
		{'C', KindCopied, true, true, "C", "C"},
		{'U', KindUpdated, true, true, "U", "U"},
		{'?', KindUntracked, true, false, "??", "Untracked"},
		{'T', KindOther, true, true, "T", "T"},
	}

	for _, tc := range tests {
		t.Run(string(tc.char), func(t *testing.T) {
			s := ParseState(tc.char)
			assert.Equal(t, tc.kind, s.Kind)
			assert.Equal(t, tc.meaningful, s.Meaningful())
			assert.Equal(t, tc.staged, s.Staged())
			assert.Equal(t, tc.code, s.Code())
			assert.Equal(t, tc.label, s.String())
		})
	}
}
