package tui

import (
	"fmt"
	"io"
	"strings"
)

// TableColumn defines a column in a table.
type TableColumn struct {
	Name  string
	Width int
	Align Alignment
}

// Alignment defines text alignment in a column.
type Alignment int

// Alignment constants.
const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table renders fixed-width columns. Cells wider than their column are
// truncated by display width, so CJK paths stay aligned.
type Table struct {
	w       io.Writer
	styles  *TableStyles
	columns []TableColumn
}

// NewTable creates a new table with the given columns.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	return &Table{
		w:       w,
		styles:  NewTableStyles(),
		columns: columns,
	}
}

// WriteHeader writes the table header row.
func (t *Table) WriteHeader() {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(t.line(names)))
}

// WriteRow writes a data row to the table.
func (t *Table) WriteRow(values ...string) {
	_, _ = fmt.Fprintln(t.w, t.line(values))
}

// WriteDimRow writes a row in the dim style, for summaries.
func (t *Table) WriteDimRow(values ...string) {
	_, _ = fmt.Fprintln(t.w, t.styles.Dim.Render(t.line(values)))
}

func (t *Table) line(values []string) string {
	parts := make([]string, len(t.columns))
	for i, col := range t.columns {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		value = Truncate(value, col.Width)
		if col.Align == AlignRight {
			parts[i] = padLeft(value, col.Width)
		} else {
			parts[i] = padRight(value, col.Width)
		}
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}
